// Package engine implements the genetic-algorithm search that turns a set of
// session requests into ranked candidate timetables. A run is a pure, bounded,
// CPU-only computation: the engine performs no I/O, holds no state across runs
// and is deterministic for a given random seed.
package engine

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/smartsched/timetable-engine/pkg/constraint"
	"github.com/smartsched/timetable-engine/pkg/model"
)

// Alternative is one finalist schedule with its validation attachments.
type Alternative struct {
	Schedule        model.Schedule
	Fitness         float64
	Conflicts       []model.Conflict
	HardViolations  int
	Utilization     model.Utilization
	ConflictSummary map[model.ConflictKind]int
}

// Result is the outcome of one optimization run.
type Result struct {
	Alternatives []Alternative
	Generations  int
	Evaluations  int
	BestHistory  []float64
}

// Optimizer evolves candidate timetables for an instance.
type Optimizer interface {
	Optimize(ctx context.Context, inst model.Instance, cfg model.Config) (*Result, error)
}

type geneticOptimizer struct {
	catalog constraint.Catalog
	logger  *zap.Logger
}

// Option customizes the optimizer construction.
type Option func(*geneticOptimizer)

// WithCatalog replaces the default constraint catalog.
func WithCatalog(catalog constraint.Catalog) Option {
	return func(o *geneticOptimizer) {
		o.catalog = catalog
	}
}

// WithLogger attaches a logger for generation progress. The default is a nop
// logger so library use stays silent.
func WithLogger(logger *zap.Logger) Option {
	return func(o *geneticOptimizer) {
		o.logger = logger
	}
}

// New builds a genetic optimizer with the default catalog.
func New(options ...Option) Optimizer {
	optimizer := &geneticOptimizer{
		catalog: constraint.DefaultCatalog(),
		logger:  zap.NewNop(),
	}
	for _, option := range options {
		option(optimizer)
	}
	return optimizer
}

func (o *geneticOptimizer) Optimize(ctx context.Context, inst model.Instance, cfg model.Config) (*Result, error) {
	//** Reject invalid configuration and unusable instances before any search
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkInstance(&inst); err != nil {
		return nil, err
	}

	if cfg.TimeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.TimeBudget)
		defer cancel()
	}

	rng := rand.New(rand.NewSource(cfg.RandomSeed))
	layout := buildLayout(&inst)
	sampler := newSampler(&inst, layout)
	eval := newEvaluator(&inst, o.catalog, cfg.Weights, layout)

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	//** Initial population by randomized greedy assignment
	population := make([]individual, cfg.PopulationSize)
	for i := range population {
		population[i] = sampler.randomIndividual(rng)
	}

	var best individual
	bestFitness := math.Inf(-1)
	stagnation := 0
	history := make([]float64, 0, cfg.Generations)
	evaluations := 0
	generations := 0

	for generation := 0; generation < cfg.Generations; generation++ {
		eval.evaluateAll(population, workers)
		evaluations += len(population)
		generations = generation + 1

		order := sortedByFitness(population)
		generationBest := population[order[0]]
		if generationBest.fitness > bestFitness {
			best = generationBest.clone()
			bestFitness = generationBest.fitness
			stagnation = 0
		} else {
			stagnation++
		}
		history = append(history, bestFitness)

		if generation%10 == 0 {
			o.logger.Debug("generation evaluated",
				zap.Int("generation", generation),
				zap.Float64("best", bestFitness),
				zap.Int("stagnation", stagnation),
			)
		}

		if cfg.StagnationLimit > 0 && stagnation >= cfg.StagnationLimit {
			break
		}
		// Cancellation and time budget are normal early-termination paths,
		// checked only at generation boundaries
		if ctx.Err() != nil {
			break
		}
		if generation == cfg.Generations-1 {
			break
		}

		//** Breed the next generation: elites first, then tournament offspring
		next := make([]individual, 0, cfg.PopulationSize)
		for i := 0; i < cfg.EliteCount && i < len(order); i++ {
			next = append(next, population[order[i]].clone())
		}
		for len(next) < cfg.PopulationSize {
			parent1 := tournament(rng, population, cfg.TournamentSize)
			parent2 := tournament(rng, population, cfg.TournamentSize)
			child1, child2 := crossover(rng, parent1, parent2, cfg.CrossoverRate)
			child1 = sampler.mutate(rng, child1, cfg.MutationRate)
			child2 = sampler.mutate(rng, child2, cfg.MutationRate)
			next = append(next, child1)
			if len(next) < cfg.PopulationSize {
				next = append(next, child2)
			}
		}
		sampler.assertFixedGenes(next)
		population = next
	}

	//** Extract diverse finalists, then rank and truncate. Over-extraction
	//** leaves the ranker enough candidates after deduplication.
	finalists := extractDistinct(population, best, 4*cfg.MaxAlternatives, cfg.DistinctThreshold)
	detector := NewDetector(&inst, WithDetectorCatalog(o.catalog))
	alternatives := rankAlternatives(&inst, detector, eval, finalists, cfg.MaxAlternatives)

	o.logger.Info("optimization finished",
		zap.Int("generations", generations),
		zap.Int("evaluations", evaluations),
		zap.Float64("best_fitness", bestFitness),
		zap.Int("alternatives", len(alternatives)),
	)

	return &Result{
		Alternatives: alternatives,
		Generations:  generations,
		Evaluations:  evaluations,
		BestHistory:  history,
	}, nil
}

// checkInstance rejects inputs the search cannot even start on. Infeasible but
// well-formed inputs are not rejected; their violations surface as conflicts.
func checkInstance(inst *model.Instance) error {
	if len(inst.Requests) == 0 {
		return fmt.Errorf("instance has no session requests")
	}
	if len(inst.Faculty) == 0 {
		return fmt.Errorf("instance has no faculty")
	}
	if len(inst.Classrooms) == 0 && len(inst.Laboratories) == 0 {
		return fmt.Errorf("instance has no rooms")
	}
	for _, request := range inst.Requests {
		if len(inst.Catalog.ForKind(request.Kind)) == 0 && !request.IsFixed() {
			return fmt.Errorf("slot catalog for %v sessions is empty", request.Kind)
		}
	}
	return nil
}

// sortedByFitness returns population indices ordered by fitness descending,
// ties broken by the lower index so the ordering is deterministic.
func sortedByFitness(population []individual) []int {
	order := make([]int, len(population))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if population[order[a]].fitness != population[order[b]].fitness {
			return population[order[a]].fitness > population[order[b]].fitness
		}
		return order[a] < order[b]
	})
	return order
}

// extractDistinct picks up to maxAlternatives individuals whose pairwise gene
// Hamming distance is at least threshold, starting from the best found overall.
func extractDistinct(population []individual, best individual, maxAlternatives, threshold int) []individual {
	candidates := make([]individual, 0, len(population)+1)
	if best.genes != nil {
		candidates = append(candidates, best)
	}
	for _, i := range sortedByFitness(population) {
		candidates = append(candidates, population[i])
	}

	selected := make([]individual, 0, maxAlternatives)
	for _, candidate := range candidates {
		if len(selected) == maxAlternatives {
			break
		}
		distinct := !slices.ContainsFunc(selected, func(existing individual) bool {
			return hammingDistance(existing, candidate) < max(threshold, 1)
		})
		if distinct {
			selected = append(selected, candidate)
		}
	}
	return selected
}
