package constraint

import (
	"math"

	"github.com/samber/lo"

	"github.com/smartsched/timetable-engine/pkg/model"
)

// Utilization target bands from the original optimization profile. Rates inside
// the band score full marks, near misses score partial credit.
const (
	minClassroomUtilization = 0.60
	maxClassroomUtilization = 0.85
	minLabUtilization       = 0.50
	maxLabUtilization       = 0.75
)

// FacultyPreferenceMatch rewards placing instructors inside their preferred
// shift. Instructors with no preference always match.
type FacultyPreferenceMatch struct{}

func (FacultyPreferenceMatch) Name() string { return "faculty-preference" }

func (FacultyPreferenceMatch) Score(inst *model.Instance, schedule *model.Schedule) float64 {
	if len(schedule.Entries) == 0 {
		return 1
	}
	matched := lo.CountBy(schedule.Entries, func(entry model.ScheduleEntry) bool {
		preferred := inst.Faculty[entry.Faculty].PreferredShift
		return preferred.Matches(entry.Slot.ShiftOf(inst.ShiftBoundary))
	})
	return float64(matched) / float64(len(schedule.Entries))
}

// ClassroomUtilizationBalance scores how close the classroom pool's average
// occupied-slot fraction sits to the target band.
type ClassroomUtilizationBalance struct{}

func (ClassroomUtilizationBalance) Name() string { return "classroom-utilization" }

func (ClassroomUtilizationBalance) Score(inst *model.Instance, schedule *model.Schedule) float64 {
	if len(inst.Classrooms) == 0 || len(inst.Catalog.Lecture) == 0 {
		return 1
	}
	occupied := lo.CountBy(schedule.Entries, func(entry model.ScheduleEntry) bool {
		return entry.Room.Kind == model.RoomClassroom
	})
	rate := float64(occupied) / float64(len(inst.Classrooms)*len(inst.Catalog.Lecture))
	return bandScore(rate, minClassroomUtilization, maxClassroomUtilization)
}

// LabUtilizationBalance is the laboratory counterpart of the classroom band.
type LabUtilizationBalance struct{}

func (LabUtilizationBalance) Name() string { return "lab-utilization" }

func (LabUtilizationBalance) Score(inst *model.Instance, schedule *model.Schedule) float64 {
	if len(inst.Laboratories) == 0 || len(inst.Catalog.Lab) == 0 {
		return 1
	}
	occupied := lo.CountBy(schedule.Entries, func(entry model.ScheduleEntry) bool {
		return entry.Room.Kind == model.RoomLaboratory
	})
	rate := float64(occupied) / float64(len(inst.Laboratories)*len(inst.Catalog.Lab))
	return bandScore(rate, minLabUtilization, maxLabUtilization)
}

func bandScore(rate, min, max float64) float64 {
	switch {
	case rate >= min && rate <= max:
		return 1
	case rate >= min*0.8 && rate <= max*1.1:
		return 0.75
	default:
		return 0.25
	}
}

// WorkloadBalance rewards an even spread of weekly teaching hours across the
// faculty pool; the score decays with the standard deviation of per-instructor
// hours.
type WorkloadBalance struct{}

func (WorkloadBalance) Name() string { return "workload-balance" }

func (WorkloadBalance) Score(inst *model.Instance, schedule *model.Schedule) float64 {
	if len(inst.Faculty) == 0 {
		return 1
	}
	hours := make(map[uint64]float64, len(inst.Faculty))
	for _, entry := range schedule.Entries {
		hours[entry.Faculty] += float64(entry.Slot.Duration()) / 60
	}
	if len(hours) == 0 {
		return 1
	}

	values := lo.Values(hours)
	mean := lo.Sum(values) / float64(len(inst.Faculty))
	variance := 0.0
	for _, faculty := range inst.Faculty {
		deviation := hours[faculty.Id] - mean
		variance += deviation * deviation
	}
	variance /= float64(len(inst.Faculty))
	return 1 / (1 + math.Sqrt(variance))
}

// CrossShiftSharing rewards rooms serving both shifts, so a resource pool is
// shared across the morning/evening partition instead of duplicated.
type CrossShiftSharing struct{}

func (CrossShiftSharing) Name() string { return "cross-shift-sharing" }

func (CrossShiftSharing) Score(inst *model.Instance, schedule *model.Schedule) float64 {
	shifts := make(map[model.RoomRef]map[model.Shift]bool)
	for _, entry := range schedule.Entries {
		if _, ok := shifts[entry.Room]; !ok {
			shifts[entry.Room] = make(map[model.Shift]bool)
		}
		shifts[entry.Room][entry.Slot.ShiftOf(inst.ShiftBoundary)] = true
	}
	if len(shifts) == 0 {
		return 1
	}
	shared := 0
	for _, used := range shifts {
		if used[model.ShiftMorning] && used[model.ShiftEvening] {
			shared++
		}
	}
	return float64(shared) / float64(len(shifts))
}
