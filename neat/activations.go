package neat

import (
	"fmt"
	"math"
)

// ActivationFunc maps a node's aggregated input to its output. It must be pure.
type ActivationFunc func(x float64) float64

// ActivationFunctions maps function names to the built-in activation functions.
// This allows configuration to specify activations by name.
var ActivationFunctions = map[string]ActivationFunc{
	"sigmoid":  Sigmoid,
	"tanh":     Tanh,
	"relu":     ReLU,
	"identity": Identity,
	"clamped":  Clamped,
	"gaussian": Gaussian,
	"abs":      Absolute,
	"sin":      Sine,
	"cos":      Cosine,
	"inv":      Inv,
	"log":      Log,
	"exp":      Exp,
	"hat":      Hat,
	"square":   Square,
	"cube":     Cube,
	"step":     Step,
}

// GetActivation retrieves a built-in activation function by name.
func GetActivation(name string) (ActivationFunc, error) {
	if fn, ok := ActivationFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("%w: activation %q", ErrUnknownFunction, name)
}

// Sigmoid is the logistic function with the steepened slope NEAT traditionally uses.
func Sigmoid(x float64) float64 {
	const k = 4.9
	return 1.0 / (1.0 + math.Exp(-k*clamp(x, -60.0, 60.0)))
}

// Tanh activation function.
func Tanh(x float64) float64 {
	return math.Tanh(x)
}

// ReLU (Rectified Linear Unit) activation function.
func ReLU(x float64) float64 {
	return math.Max(0, x)
}

// Identity activation function (linear).
func Identity(x float64) float64 {
	return x
}

// Clamped clamps output between -1 and 1.
func Clamped(x float64) float64 {
	return clamp(x, -1.0, 1.0)
}

// Gaussian activation function.
func Gaussian(x float64) float64 {
	return math.Exp(-x * x / 2.0)
}

// Absolute value activation function.
func Absolute(x float64) float64 {
	return math.Abs(x)
}

// Sine activation function.
func Sine(x float64) float64 {
	return math.Sin(x)
}

// Cosine activation function.
func Cosine(x float64) float64 {
	return math.Cos(x)
}

// Inv returns 1/x, or 0 for x == 0.
func Inv(x float64) float64 {
	if x == 0.0 {
		return 0.0
	}
	return 1.0 / x
}

// Log returns the natural logarithm, flooring the input at a small epsilon.
func Log(x float64) float64 {
	const epsilon = 1e-9
	return math.Log(math.Max(epsilon, x))
}

// Exp returns e^x with the input clamped to avoid overflow.
func Exp(x float64) float64 {
	return math.Exp(clamp(x, -60.0, 60.0))
}

// Hat activation function (triangular pulse centered at 0).
func Hat(x float64) float64 {
	return math.Max(0.0, 1.0-math.Abs(x))
}

// Square activation function (x^2).
func Square(x float64) float64 {
	return x * x
}

// Cube activation function (x^3).
func Cube(x float64) float64 {
	return x * x * x
}

// Step is the binary step: 1 for positive input, 0 otherwise.
func Step(x float64) float64 {
	if x > 0 {
		return 1.0
	}
	return 0.0
}
