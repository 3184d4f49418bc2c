package engine

import (
	"math"
	"slices"

	"github.com/smartsched/timetable-engine/pkg/model"
)

// fitnessEpsilon bounds the fitness difference under which two finalists with
// the same conflict profile count as effectively identical.
const fitnessEpsilon = 1e-9

// rankAlternatives validates each finalist, attaches utilization statistics and
// a per-kind conflict summary, orders them by (conflict count ascending,
// fitness descending) and drops effectively identical duplicates.
func rankAlternatives(inst *model.Instance, detector *Detector, eval *evaluator, finalists []individual, limit int) []Alternative {
	alternatives := make([]Alternative, 0, len(finalists))
	for _, finalist := range finalists {
		schedule := eval.schedule(finalist)
		conflicts := detector.Detect(schedule)
		alternatives = append(alternatives, Alternative{
			Schedule:        schedule,
			Fitness:         eval.fitness(finalist),
			Conflicts:       conflicts,
			HardViolations:  len(conflicts),
			Utilization:     schedule.Utilization(inst),
			ConflictSummary: summarizeConflicts(conflicts),
		})
	}

	slices.SortStableFunc(alternatives, func(a, b Alternative) int {
		if a.HardViolations != b.HardViolations {
			return a.HardViolations - b.HardViolations
		}
		switch {
		case a.Fitness > b.Fitness:
			return -1
		case a.Fitness < b.Fitness:
			return 1
		default:
			return 0
		}
	})

	deduplicated := make([]Alternative, 0, limit)
	for _, alternative := range alternatives {
		if len(deduplicated) == limit {
			break
		}
		duplicate := slices.ContainsFunc(deduplicated, func(kept Alternative) bool {
			return effectivelyIdentical(kept, alternative)
		})
		if !duplicate {
			deduplicated = append(deduplicated, alternative)
		}
	}
	return deduplicated
}

// effectivelyIdentical treats two finalists as one solution when they are the
// same slot assignment up to faculty/room substitution and neither their
// conflict profile nor their fitness distinguishes them.
func effectivelyIdentical(a, b Alternative) bool {
	if math.Abs(a.Fitness-b.Fitness) > fitnessEpsilon {
		return false
	}
	for i := range a.Schedule.Entries {
		if a.Schedule.Entries[i].Slot != b.Schedule.Entries[i].Slot {
			return false
		}
	}
	if len(a.ConflictSummary) != len(b.ConflictSummary) {
		return false
	}
	for kind, count := range a.ConflictSummary {
		if b.ConflictSummary[kind] != count {
			return false
		}
	}
	return true
}

func summarizeConflicts(conflicts []model.Conflict) map[model.ConflictKind]int {
	summary := make(map[model.ConflictKind]int)
	for _, conflict := range conflicts {
		summary[conflict.Kind]++
	}
	return summary
}
