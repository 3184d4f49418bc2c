// Package constraint holds the catalog of hard and soft scheduling rules. Hard
// constraints report violations as conflicts; soft constraints score a schedule
// in [0,1]. Both read the schedule, never mutate it.
package constraint

import (
	"github.com/smartsched/timetable-engine/pkg/model"
)

// Hard is a non-negotiable rule. Any reported conflict disqualifies the
// schedule from being a final zero-conflict candidate, though the search may
// transiently tolerate violations in intermediate generations.
type Hard interface {
	Kind() model.ConflictKind
	Violations(inst *model.Instance, schedule *model.Schedule) []model.Conflict
}

// Soft is a tunable objective. Score is normalized to [0,1], higher is better.
type Soft interface {
	Name() string
	Score(inst *model.Instance, schedule *model.Schedule) float64
}

// Catalog bundles the active rule set of one run.
type Catalog struct {
	Hard []Hard
	Soft []Soft
}

// DefaultCatalog wires the full required hard set and every soft objective.
// Soft objectives are enabled or disabled through their weights.
func DefaultCatalog() Catalog {
	return Catalog{
		Hard: []Hard{
			FacultyDoubleBooking{},
			RoomDoubleBooking{},
			BatchDoubleBooking{},
			FixedSlotPinning{},
			FacultyAvailability{},
			RoomCompatibility{},
			RoomCapacity{},
			MaxClassesPerDay{},
			WeeklyLoadCap{},
			ShiftCompatibility{},
		},
		Soft: []Soft{
			FacultyPreferenceMatch{},
			ClassroomUtilizationBalance{},
			LabUtilizationBalance{},
			WorkloadBalance{},
			CrossShiftSharing{},
		},
	}
}

// HardViolations counts every hard-constraint violation in the schedule.
func (c Catalog) HardViolations(inst *model.Instance, schedule *model.Schedule) int {
	count := 0
	for _, hard := range c.Hard {
		count += len(hard.Violations(inst, schedule))
	}
	return count
}
