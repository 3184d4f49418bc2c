package engine

import (
	"sync"

	"github.com/smartsched/timetable-engine/pkg/constraint"
	"github.com/smartsched/timetable-engine/pkg/model"
)

// hardViolationPenalty makes any infeasible schedule score far below every
// feasible one while keeping infeasible individuals comparable to each other.
const hardViolationPenalty = 1000.0

// evaluator computes the multi-objective fitness of an individual: the weighted
// sum of normalized soft scores, or a negative penalty proportional to the hard
// violation count. Results are cached by chromosome hash.
type evaluator struct {
	inst    *model.Instance
	catalog constraint.Catalog
	weights model.Weights
	layout  []genePosition

	mu    sync.Mutex
	cache map[uint64]float64
}

func newEvaluator(inst *model.Instance, catalog constraint.Catalog, weights model.Weights, layout []genePosition) *evaluator {
	return &evaluator{
		inst:    inst,
		catalog: catalog,
		weights: weights,
		layout:  layout,
		cache:   make(map[uint64]float64),
	}
}

// schedule materializes the chromosome into the output representation.
func (e *evaluator) schedule(ind individual) model.Schedule {
	entries := make([]model.ScheduleEntry, len(ind.genes))
	for i, g := range ind.genes {
		position := e.layout[i]
		entries[i] = model.ScheduleEntry{
			Request:    uint64(position.request),
			Occurrence: position.occurrence,
			Slot:       g.Slot,
			Faculty:    g.Faculty,
			Room:       g.Room,
			Shift:      g.Slot.ShiftOf(e.inst.ShiftBoundary),
			Fixed:      g.Fixed,
		}
	}
	return model.Schedule{Entries: entries}
}

func (e *evaluator) fitness(ind individual) float64 {
	key := ind.hash()
	e.mu.Lock()
	if cached, ok := e.cache[key]; ok {
		e.mu.Unlock()
		return cached
	}
	e.mu.Unlock()

	schedule := e.schedule(ind)

	fitness := 0.0
	if violations := e.catalog.HardViolations(e.inst, &schedule); violations > 0 {
		fitness = -hardViolationPenalty * float64(violations)
	} else {
		for _, soft := range e.catalog.Soft {
			weight := e.weightFor(soft.Name())
			if weight == 0 {
				continue
			}
			fitness += weight * soft.Score(e.inst, &schedule)
		}
	}

	e.mu.Lock()
	e.cache[key] = fitness
	e.mu.Unlock()
	return fitness
}

func (e *evaluator) weightFor(name string) float64 {
	switch name {
	case "faculty-preference":
		return e.weights.FacultyPreference
	case "classroom-utilization":
		return e.weights.ClassroomUtilization
	case "lab-utilization":
		return e.weights.LabUtilization
	case "workload-balance":
		return e.weights.WorkloadBalance
	case "cross-shift-sharing":
		return e.weights.CrossShiftSharing
	default:
		return 0
	}
}

// evaluateAll scores a whole generation across a bounded worker pool.
// Individuals are read-only during evaluation and results are written back by
// index, so the population order stays stable regardless of completion order.
func (e *evaluator) evaluateAll(population []individual, workers int) {
	if workers <= 1 || len(population) < 2 {
		for i := range population {
			population[i].fitness = e.fitness(population[i])
		}
		return
	}

	indices := make(chan int)
	var group sync.WaitGroup
	for worker := 0; worker < workers; worker++ {
		group.Add(1)
		go func() {
			defer group.Done()
			for i := range indices {
				population[i].fitness = e.fitness(population[i])
			}
		}()
	}
	for i := range population {
		indices <- i
	}
	close(indices)
	group.Wait()
}
