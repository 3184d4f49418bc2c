package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartsched/timetable-engine/pkg/constraint"
	"github.com/smartsched/timetable-engine/pkg/model"
)

func rankerFixture(t *testing.T) (model.Instance, *Detector, *evaluator) {
	t.Helper()
	inst := roomyInstance(t)
	layout := buildLayout(&inst)
	eval := newEvaluator(&inst, constraint.DefaultCatalog(), model.DefaultWeights(), layout)
	return inst, NewDetector(&inst), eval
}

func feasibleIndividual(inst *model.Instance) individual {
	genes := make([]gene, len(inst.Requests))
	for i := range genes {
		genes[i] = gene{
			Slot:    inst.Catalog.Lecture[i],
			Faculty: uint64(i % len(inst.Faculty)),
			Room:    model.RoomRef{Kind: model.RoomClassroom, Id: uint64(i % len(inst.Classrooms))},
		}
	}
	return individual{genes: genes}
}

func TestRankAlternativesOrdersByViolationsThenFitness(t *testing.T) {
	inst, detector, eval := rankerFixture(t)

	clean := feasibleIndividual(&inst)

	// Collide two sessions in one room to produce a violation
	broken := clean.clone()
	broken.genes[1].Slot = broken.genes[0].Slot
	broken.genes[1].Room = broken.genes[0].Room
	broken.genes[1].Faculty = broken.genes[0].Faculty

	alternatives := rankAlternatives(&inst, detector, eval, []individual{broken, clean}, 5)

	require.Len(t, alternatives, 2)
	assert.Zero(t, alternatives[0].HardViolations)
	assert.Positive(t, alternatives[1].HardViolations)
	assert.Greater(t, alternatives[0].Fitness, alternatives[1].Fitness)
}

func TestRankAlternativesDropsIdenticalFinalists(t *testing.T) {
	inst, detector, eval := rankerFixture(t)

	clean := feasibleIndividual(&inst)
	twin := clean.clone()

	alternatives := rankAlternatives(&inst, detector, eval, []individual{clean, twin}, 5)

	assert.Len(t, alternatives, 1)
}

func TestRankAlternativesKeepsSlotVariants(t *testing.T) {
	inst, detector, eval := rankerFixture(t)

	clean := feasibleIndividual(&inst)
	variant := clean.clone()
	variant.genes[2].Slot = inst.Catalog.Lecture[10]

	alternatives := rankAlternatives(&inst, detector, eval, []individual{clean, variant}, 5)

	// A different slot assignment is a different solution even when the
	// fitness happens to coincide
	assert.Len(t, alternatives, 2)
}

func TestRankAlternativesTruncatesAtTheLimit(t *testing.T) {
	inst, detector, eval := rankerFixture(t)

	finalists := make([]individual, 0, 6)
	for i := 0; i < 6; i++ {
		variant := feasibleIndividual(&inst)
		variant.genes[0].Slot = inst.Catalog.Lecture[8+i]
		finalists = append(finalists, variant)
	}

	alternatives := rankAlternatives(&inst, detector, eval, finalists, 3)

	assert.Len(t, alternatives, 3)
}

func TestRankAlternativesAttachesDiagnostics(t *testing.T) {
	inst, detector, eval := rankerFixture(t)

	broken := feasibleIndividual(&inst)
	broken.genes[1].Slot = broken.genes[0].Slot
	broken.genes[1].Room = broken.genes[0].Room

	alternatives := rankAlternatives(&inst, detector, eval, []individual{broken}, 1)

	require.Len(t, alternatives, 1)
	alternative := alternatives[0]
	assert.Equal(t, len(alternative.Conflicts), alternative.HardViolations)
	assert.NotEmpty(t, alternative.ConflictSummary)
	assert.Len(t, alternative.Utilization.Classrooms, len(inst.Classrooms))
	assert.NotEmpty(t, alternative.Schedule.Entries)
}
