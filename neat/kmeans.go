package neat

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// KMeansSpeciator clusters agents by the Euclidean distance between their
// Genome.ToVector encodings using Lloyd's algorithm. Species ids are 1..K in
// cluster order; clusters that end up empty produce no species. Ids do not
// carry over between generations, so populations using this speciator skip
// stagnation tracking.
type KMeansSpeciator struct {
	K          int
	Iterations int
	Functions  *Functions

	rng Random
}

// NewKMeansSpeciator creates a k-means speciator.
func NewKMeansSpeciator(k, iterations int, fns *Functions, rng Random) *KMeansSpeciator {
	return &KMeansSpeciator{K: k, Iterations: iterations, Functions: fns, rng: rng}
}

// Speciate implements Speciator. previous is not consulted: clusters are rebuilt
// from scratch every generation.
func (s *KMeansSpeciator) Speciate(agents []*Agent, previous map[int][]int) (map[int][]int, error) {
	if s.K <= 0 {
		return nil, fmt.Errorf("%w: k-means needs at least one cluster, got %d", ErrConfiguration, s.K)
	}
	if len(agents) == 0 {
		return map[int][]int{}, nil
	}

	maxNode, maxConn := 0, 0
	for _, a := range agents {
		maxNode = max(maxNode, a.MaxNodeID())
		maxConn = max(maxConn, a.MaxConnectionID())
	}
	aggs := s.Functions.Aggregations.Names()
	acts := s.Functions.Activations.Names()
	points := make([][]float64, len(agents))
	for i, a := range agents {
		v, err := a.ToVector(maxNode, maxConn, aggs, acts)
		if err != nil {
			return nil, fmt.Errorf("encoding agent %d: %w", a.ID, err)
		}
		points[i] = v
	}

	k := min(s.K, len(points))
	centroids := s.seed(points, k)
	assignment := make([]int, len(points))
	for iter := 0; iter < max(1, s.Iterations); iter++ {
		changed := false
		for i, p := range points {
			if best := nearest(p, centroids); best != assignment[i] {
				assignment[i] = best
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}
		centroids = recenter(points, assignment, centroids)
	}

	result := make(map[int][]int)
	for i, a := range agents {
		sid := assignment[i] + 1
		a.SetSpecies(sid)
		result[sid] = append(result[sid], a.ID)
	}
	return result, nil
}

// seed picks k distinct points as the initial centroids.
func (s *KMeansSpeciator) seed(points [][]float64, k int) [][]float64 {
	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	// Partial Fisher-Yates shuffle.
	for i := 0; i < k; i++ {
		j := i + randomIndex(s.rng, len(order)-i)
		order[i], order[j] = order[j], order[i]
	}
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = append([]float64(nil), points[order[i]]...)
	}
	return centroids
}

// nearest returns the index of the centroid closest to p.
func nearest(p []float64, centroids [][]float64) int {
	best, bestDist := 0, floats.Distance(p, centroids[0], 2)
	for i := 1; i < len(centroids); i++ {
		if d := floats.Distance(p, centroids[i], 2); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// recenter moves each centroid to the mean of its points. A centroid without
// points stays where it is.
func recenter(points [][]float64, assignment []int, centroids [][]float64) [][]float64 {
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for i, p := range points {
		c := assignment[i]
		if sums[c] == nil {
			sums[c] = make([]float64, len(p))
		}
		floats.Add(sums[c], p)
		counts[c]++
	}
	next := make([][]float64, len(centroids))
	for c := range centroids {
		if counts[c] == 0 {
			next[c] = centroids[c]
			continue
		}
		floats.Scale(1/float64(counts[c]), sums[c])
		next[c] = sums[c]
	}
	return next
}
