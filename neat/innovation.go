package neat

import "sync"

// Registry issues innovation ids for node and connection genes.
//
// Both counters only move forward. An id is either auto-issued (counter+1) or
// adopted from a caller that already knows which id a structure should carry;
// adoption lifts the counter to at least that id so later auto-issued ids never
// collide with it. A Registry is safe for concurrent use.
type Registry struct {
	mu         sync.Mutex
	node       int
	connection int
}

// NewRegistry creates a registry with both counters at zero, so the first
// auto-issued id of each kind is 1.
func NewRegistry() *Registry {
	return &Registry{}
}

// NextNodeID returns a fresh node id.
func (r *Registry) NextNodeID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.node++
	return r.node
}

// AdoptNodeID returns id unchanged and advances the node counter to id if it
// is behind.
func (r *Registry) AdoptNodeID(id int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.node = max(r.node, id)
	return id
}

// NextConnectionID returns a fresh connection id.
func (r *Registry) NextConnectionID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connection++
	return r.connection
}

// AdoptConnectionID returns id unchanged and advances the connection counter to
// id if it is behind.
func (r *Registry) AdoptConnectionID(id int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connection = max(r.connection, id)
	return id
}

// NodeCount returns the highest node id issued or adopted so far.
func (r *Registry) NodeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.node
}

// ConnectionCount returns the highest connection id issued or adopted so far.
func (r *Registry) ConnectionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connection
}

// SplitRecord holds the ids produced when a connection is split.
type SplitRecord struct {
	Node int
	In   int
	Out  int
}

// InnovationLog remembers the structural mutations made during one generation so
// that two genomes making the same change receive the same innovation ids.
// It feeds explicit ids to the Registry; call Reset between generations.
type InnovationLog struct {
	mu       sync.Mutex
	registry *Registry
	splits   map[int]SplitRecord // split connection id -> new ids
	links    map[[2]int]int      // (source, destination) -> connection id
}

// NewInnovationLog creates an empty log backed by registry.
func NewInnovationLog(registry *Registry) *InnovationLog {
	return &InnovationLog{
		registry: registry,
		splits:   make(map[int]SplitRecord),
		links:    make(map[[2]int]int),
	}
}

// Reset forgets all recorded mutations.
func (l *InnovationLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.splits = make(map[int]SplitRecord)
	l.links = make(map[[2]int]int)
}

// Link returns the connection id for a new source->destination connection.
func (l *InnovationLog) Link(source, destination int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := [2]int{source, destination}
	if id, ok := l.links[key]; ok {
		return l.registry.AdoptConnectionID(id)
	}
	id := l.registry.NextConnectionID()
	l.links[key] = id
	return id
}

// Split returns the node id and the two connection ids created when the given
// connection is split. Genomes that already hold the recorded node (the same
// connection split twice in one lineage) must ask for fresh ids with taken=true.
func (l *InnovationLog) Split(conn *ConnectGene, taken bool) SplitRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rec, ok := l.splits[conn.ID]; ok && !taken {
		l.registry.AdoptNodeID(rec.Node)
		l.registry.AdoptConnectionID(rec.In)
		l.registry.AdoptConnectionID(rec.Out)
		return rec
	}
	rec := SplitRecord{
		Node: l.registry.NextNodeID(),
		In:   l.registry.NextConnectionID(),
		Out:  l.registry.NextConnectionID(),
	}
	if _, ok := l.splits[conn.ID]; !ok {
		l.splits[conn.ID] = rec
	}
	l.links[[2]int{conn.Source, rec.Node}] = rec.In
	l.links[[2]int{rec.Node, conn.Destination}] = rec.Out
	return rec
}
