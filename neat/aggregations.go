package neat

import (
	"fmt"
	"math"
	"sort"
)

// AggregationFunc combines a node's partial inputs, keyed by source node id,
// into a single value. It must be pure and accept an empty map.
type AggregationFunc func(inputs map[int]float64) float64

// AggregationFunctions maps function names to the built-in aggregation functions.
var AggregationFunctions = map[string]AggregationFunc{
	"sum":     AggregateSum,
	"product": AggregateProduct,
	"min":     AggregateMin,
	"max":     AggregateMax,
	"mean":    AggregateMean,
	"median":  AggregateMedian,
	"maxabs":  AggregateMaxAbs,
}

// GetAggregation retrieves a built-in aggregation function by name.
func GetAggregation(name string) (AggregationFunc, error) {
	if fn, ok := AggregationFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("%w: aggregation %q", ErrUnknownFunction, name)
}

// inputValues flattens partial inputs in ascending source order, so that
// floating point results do not depend on map iteration order.
func inputValues(inputs map[int]float64) []float64 {
	keys := make([]int, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	values := make([]float64, len(keys))
	for i, k := range keys {
		values[i] = inputs[k]
	}
	return values
}

// AggregateSum calculates the sum of the inputs.
func AggregateSum(inputs map[int]float64) float64 {
	return Sum(inputValues(inputs))
}

// AggregateProduct calculates the product of the inputs (1 when empty).
func AggregateProduct(inputs map[int]float64) float64 {
	product := 1.0
	for _, v := range inputValues(inputs) {
		product *= v
	}
	return product
}

// AggregateMin finds the minimum value among the inputs.
func AggregateMin(inputs map[int]float64) float64 {
	return MinFloat(inputValues(inputs))
}

// AggregateMax finds the maximum value among the inputs.
func AggregateMax(inputs map[int]float64) float64 {
	return MaxFloat(inputValues(inputs))
}

// AggregateMean calculates the average of the inputs.
func AggregateMean(inputs map[int]float64) float64 {
	return Mean(inputValues(inputs))
}

// AggregateMedian calculates the median of the inputs.
func AggregateMedian(inputs map[int]float64) float64 {
	return Median(inputValues(inputs))
}

// AggregateMaxAbs returns the input with the largest magnitude, sign preserved.
func AggregateMaxAbs(inputs map[int]float64) float64 {
	best := 0.0
	for _, v := range inputValues(inputs) {
		if math.Abs(v) > math.Abs(best) {
			best = v
		}
	}
	return best
}
