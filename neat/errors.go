package neat

import "errors"

var (
	// ErrConfiguration reports an invalid configuration value. It is always fatal
	// to the call that produced it.
	ErrConfiguration = errors.New("configuration error")

	// ErrStructuralIntegrity reports an attempt to insert a gene that would break
	// a genome's structure: a duplicate id or a connection to a missing node.
	// The genome is left unchanged.
	ErrStructuralIntegrity = errors.New("structural integrity error")

	// ErrInvariantViolation reports a broken contract by a pluggable strategy,
	// e.g. a fitness function that left an agent without fitness.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrUnknownFunction reports a gene referring to an activation or aggregation
	// function that the supplied catalog does not contain.
	ErrUnknownFunction = errors.New("unknown function")

	// ErrInputMismatch reports an activation call whose input count differs from
	// the genome's sensor count.
	ErrInputMismatch = errors.New("input count mismatch")

	// ErrActivationDiverged reports that activation exceeded its step bound.
	ErrActivationDiverged = errors.New("activation did not settle")
)
