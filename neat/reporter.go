package neat

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// GenerationStats summarises one evaluated generation.
type GenerationStats struct {
	RunID           string        `csv:"run_id"`
	Generation      int           `csv:"generation"`
	PopulationSize  int           `csv:"population_size"`
	SpeciesCount    int           `csv:"species_count"`
	BestAgentID     int           `csv:"best_agent_id"`
	BestFitness     float64       `csv:"best_fitness"`
	MeanFitness     float64       `csv:"mean_fitness"`
	StdevFitness    float64       `csv:"stdev_fitness"`
	DurationSeconds float64       `csv:"duration_seconds"`
	Duration        time.Duration `csv:"-"`
}

// Reporter receives the statistics of every generation. A returned error fails
// the generation.
type Reporter interface {
	GenerationDone(stats GenerationStats) error
}

// LogReporter logs one line per generation.
type LogReporter struct {
	Logger *slog.Logger
}

// NewLogReporter creates a LogReporter; a nil logger means slog.Default().
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{Logger: logger}
}

func (r *LogReporter) GenerationDone(s GenerationStats) error {
	r.Logger.Info("generation complete",
		"run_id", s.RunID,
		"generation", s.Generation,
		"population", s.PopulationSize,
		"species", s.SpeciesCount,
		"best_agent", s.BestAgentID,
		"best_fitness", s.BestFitness,
		"mean_fitness", s.MeanFitness,
		"stdev_fitness", s.StdevFitness,
		"duration", s.Duration,
	)
	return nil
}

// CSVReporter appends one CSV row per generation, writing the header first.
type CSVReporter struct {
	mu            sync.Mutex
	out           io.Writer
	headerWritten bool
}

// NewCSVReporter creates a CSVReporter writing to out.
func NewCSVReporter(out io.Writer) *CSVReporter {
	return &CSVReporter{out: out}
}

func (r *CSVReporter) GenerationDone(s GenerationStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := []GenerationStats{s}
	if !r.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, r.out); err != nil {
			return fmt.Errorf("writing generation stats: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.out); err != nil {
		return fmt.Errorf("writing generation stats: %w", err)
	}
	return nil
}

// MetricsReporter exports generation statistics as Prometheus metrics.
type MetricsReporter struct {
	generations    prometheus.Counter
	population     prometheus.Gauge
	species        prometheus.Gauge
	bestFitness    prometheus.Gauge
	meanFitness    prometheus.Gauge
	generationTime prometheus.Histogram
}

// NewMetricsReporter registers the NEAT metrics on reg.
func NewMetricsReporter(reg prometheus.Registerer) *MetricsReporter {
	factory := promauto.With(reg)
	return &MetricsReporter{
		generations: factory.NewCounter(prometheus.CounterOpts{
			Name: "neat_generations_total",
			Help: "Total number of generations evaluated",
		}),
		population: factory.NewGauge(prometheus.GaugeOpts{
			Name: "neat_population_size",
			Help: "Number of agents evaluated in the last generation",
		}),
		species: factory.NewGauge(prometheus.GaugeOpts{
			Name: "neat_species",
			Help: "Number of species after the last generation",
		}),
		bestFitness: factory.NewGauge(prometheus.GaugeOpts{
			Name: "neat_best_fitness",
			Help: "Best fitness of the last generation",
		}),
		meanFitness: factory.NewGauge(prometheus.GaugeOpts{
			Name: "neat_mean_fitness",
			Help: "Mean fitness of the last generation",
		}),
		generationTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "neat_generation_duration_seconds",
			Help:    "Wall time of one generation",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
}

func (r *MetricsReporter) GenerationDone(s GenerationStats) error {
	r.generations.Inc()
	r.population.Set(float64(s.PopulationSize))
	r.species.Set(float64(s.SpeciesCount))
	r.bestFitness.Set(s.BestFitness)
	r.meanFitness.Set(s.MeanFitness)
	r.generationTime.Observe(s.Duration.Seconds())
	return nil
}
