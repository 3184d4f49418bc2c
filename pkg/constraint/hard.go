package constraint

import (
	"fmt"

	"github.com/smartsched/timetable-engine/pkg/model"
)

func newConflict(kind model.ConflictKind, severity model.Severity, entries []int, description string) model.Conflict {
	return model.Conflict{
		Id:          model.ConflictID(kind, entries),
		Kind:        kind,
		Severity:    severity,
		Entries:     entries,
		Description: description,
	}
}

// FacultyDoubleBooking forbids one instructor teaching two overlapping sessions.
type FacultyDoubleBooking struct{}

func (FacultyDoubleBooking) Kind() model.ConflictKind { return model.ConflictFacultyDoubleBooking }

func (FacultyDoubleBooking) Violations(inst *model.Instance, schedule *model.Schedule) []model.Conflict {
	conflicts := make([]model.Conflict, 0)
	for i := 0; i < len(schedule.Entries)-1; i++ {
		for j := i + 1; j < len(schedule.Entries); j++ {
			first, second := schedule.Entries[i], schedule.Entries[j]
			if first.Faculty != second.Faculty || !first.Slot.Overlaps(second.Slot) {
				continue
			}
			conflicts = append(conflicts, newConflict(
				model.ConflictFacultyDoubleBooking,
				model.SeverityHigh,
				[]int{i, j},
				fmt.Sprintf("%v teaches two sessions at %v", inst.Faculty[first.Faculty].Name, first.Slot),
			))
		}
	}
	return conflicts
}

// RoomDoubleBooking forbids two sessions occupying one room at overlapping
// times. Laboratory setup/cleanup buffers count as occupying the adjacent slots.
type RoomDoubleBooking struct{}

func (RoomDoubleBooking) Kind() model.ConflictKind { return model.ConflictRoomDoubleBooking }

func (RoomDoubleBooking) Violations(inst *model.Instance, schedule *model.Schedule) []model.Conflict {
	conflicts := make([]model.Conflict, 0)
	for i := 0; i < len(schedule.Entries)-1; i++ {
		for j := i + 1; j < len(schedule.Entries); j++ {
			first, second := schedule.Entries[i], schedule.Entries[j]
			if first.Room != second.Room {
				continue
			}
			if !schedule.OccupiedWindow(inst, first).Overlaps(schedule.OccupiedWindow(inst, second)) {
				continue
			}
			conflicts = append(conflicts, newConflict(
				model.ConflictRoomDoubleBooking,
				model.SeverityHigh,
				[]int{i, j},
				fmt.Sprintf("%v %d is double-booked at %v", first.Room.Kind, first.Room.Id, first.Slot),
			))
		}
	}
	return conflicts
}

// BatchDoubleBooking forbids a student batch attending two overlapping sessions.
type BatchDoubleBooking struct{}

func (BatchDoubleBooking) Kind() model.ConflictKind { return model.ConflictBatchDoubleBooking }

func (BatchDoubleBooking) Violations(inst *model.Instance, schedule *model.Schedule) []model.Conflict {
	conflicts := make([]model.Conflict, 0)
	for i := 0; i < len(schedule.Entries)-1; i++ {
		for j := i + 1; j < len(schedule.Entries); j++ {
			first, second := schedule.Entries[i], schedule.Entries[j]
			batch1 := inst.Requests[first.Request].Batch
			batch2 := inst.Requests[second.Request].Batch
			if batch1 != batch2 || !first.Slot.Overlaps(second.Slot) {
				continue
			}
			conflicts = append(conflicts, newConflict(
				model.ConflictBatchDoubleBooking,
				model.SeverityHigh,
				[]int{i, j},
				fmt.Sprintf("batch %v has two sessions at %v", inst.Batches[batch1].Name, first.Slot),
			))
		}
	}
	return conflicts
}

// FixedSlotPinning enforces that an externally pinned request keeps its slot.
type FixedSlotPinning struct{}

func (FixedSlotPinning) Kind() model.ConflictKind { return model.ConflictFixedSlotMoved }

func (FixedSlotPinning) Violations(inst *model.Instance, schedule *model.Schedule) []model.Conflict {
	conflicts := make([]model.Conflict, 0)
	for i, entry := range schedule.Entries {
		request := inst.Requests[entry.Request]
		if !request.IsFixed() || entry.Slot == *request.Fixed {
			continue
		}
		conflicts = append(conflicts, newConflict(
			model.ConflictFixedSlotMoved,
			model.SeverityCritical,
			[]int{i},
			fmt.Sprintf("request %d is pinned to %v but placed at %v", request.Id, *request.Fixed, entry.Slot),
		))
	}
	return conflicts
}

// FacultyAvailability enforces the instructor availability mask.
type FacultyAvailability struct{}

func (FacultyAvailability) Kind() model.ConflictKind { return model.ConflictFacultyUnavailable }

func (FacultyAvailability) Violations(inst *model.Instance, schedule *model.Schedule) []model.Conflict {
	conflicts := make([]model.Conflict, 0)
	for i, entry := range schedule.Entries {
		faculty := inst.Faculty[entry.Faculty]
		if faculty.AvailableAt(inst.Catalog, entry.Slot) {
			continue
		}
		conflicts = append(conflicts, newConflict(
			model.ConflictFacultyUnavailable,
			model.SeverityHigh,
			[]int{i},
			fmt.Sprintf("%v is not available at %v", faculty.Name, entry.Slot),
		))
	}
	return conflicts
}

// RoomCompatibility enforces the room variant, the lab type/equipment
// requirement and, for unpinned entries, membership in the right slot pool.
type RoomCompatibility struct{}

func (RoomCompatibility) Kind() model.ConflictKind { return model.ConflictRoomIncompatible }

func (RoomCompatibility) Violations(inst *model.Instance, schedule *model.Schedule) []model.Conflict {
	conflicts := make([]model.Conflict, 0)
	for i, entry := range schedule.Entries {
		request := inst.Requests[entry.Request]
		if reason := incompatibilityReason(inst, request, entry); reason != "" {
			conflicts = append(conflicts, newConflict(
				model.ConflictRoomIncompatible,
				model.SeverityHigh,
				[]int{i},
				reason,
			))
		}
	}
	return conflicts
}

func incompatibilityReason(inst *model.Instance, request model.SessionRequest, entry model.ScheduleEntry) string {
	switch request.Kind {
	case model.SessionLecture:
		if entry.Room.Kind != model.RoomClassroom {
			return fmt.Sprintf("lecture request %d is placed in a laboratory", request.Id)
		}
		if !request.IsFixed() && !inst.Catalog.Contains(model.SessionLecture, entry.Slot) {
			return fmt.Sprintf("lecture request %d uses slot %v outside the lecture catalog", request.Id, entry.Slot)
		}
	case model.SessionLab:
		if entry.Room.Kind != model.RoomLaboratory {
			return fmt.Sprintf("lab request %d is placed in a plain classroom", request.Id)
		}
		lab := inst.Laboratories[entry.Room.Id]
		if request.Requirement.LabType != "" && lab.LabType != request.Requirement.LabType {
			return fmt.Sprintf("lab request %d needs a %q laboratory but %v is %q", request.Id, request.Requirement.LabType, lab.Name, lab.LabType)
		}
		if !lab.HasEquipment(request.Requirement.Equipment) {
			return fmt.Sprintf("laboratory %v lacks equipment required by request %d", lab.Name, request.Id)
		}
		if !request.IsFixed() && !inst.Catalog.Contains(model.SessionLab, entry.Slot) {
			return fmt.Sprintf("lab request %d uses slot %v outside the lab catalog", request.Id, entry.Slot)
		}
	}
	return ""
}

// RoomCapacity enforces that the batch fits in the assigned room.
type RoomCapacity struct{}

func (RoomCapacity) Kind() model.ConflictKind { return model.ConflictCapacityExceeded }

func (RoomCapacity) Violations(inst *model.Instance, schedule *model.Schedule) []model.Conflict {
	conflicts := make([]model.Conflict, 0)
	for i, entry := range schedule.Entries {
		batch := inst.Batches[inst.Requests[entry.Request].Batch]
		var capacity uint64
		var name string
		switch entry.Room.Kind {
		case model.RoomClassroom:
			capacity, name = inst.Classrooms[entry.Room.Id].Capacity, inst.Classrooms[entry.Room.Id].Name
		case model.RoomLaboratory:
			capacity, name = inst.Laboratories[entry.Room.Id].Capacity, inst.Laboratories[entry.Room.Id].Name
		}
		if batch.Size <= capacity {
			continue
		}
		conflicts = append(conflicts, newConflict(
			model.ConflictCapacityExceeded,
			model.SeverityMedium,
			[]int{i},
			fmt.Sprintf("batch %v (%d students) does not fit in %v (capacity %d)", batch.Name, batch.Size, name, capacity),
		))
	}
	return conflicts
}

// MaxClassesPerDay caps the number of sessions an instructor teaches per day.
type MaxClassesPerDay struct{}

func (MaxClassesPerDay) Kind() model.ConflictKind { return model.ConflictMaxClassesPerDay }

func (MaxClassesPerDay) Violations(inst *model.Instance, schedule *model.Schedule) []model.Conflict {
	type key struct {
		faculty uint64
		day     model.Day
	}
	perDay := make(map[key][]int)
	for i, entry := range schedule.Entries {
		k := key{faculty: entry.Faculty, day: entry.Slot.Day}
		perDay[k] = append(perDay[k], i)
	}

	conflicts := make([]model.Conflict, 0)
	// Iterate entries in order so output stays deterministic
	seen := make(map[key]bool)
	for _, entry := range schedule.Entries {
		k := key{faculty: entry.Faculty, day: entry.Slot.Day}
		if seen[k] {
			continue
		}
		seen[k] = true

		faculty := inst.Faculty[k.faculty]
		if faculty.MaxClassesPerDay <= 0 || len(perDay[k]) <= faculty.MaxClassesPerDay {
			continue
		}
		conflicts = append(conflicts, newConflict(
			model.ConflictMaxClassesPerDay,
			model.SeverityMedium,
			perDay[k],
			fmt.Sprintf("%v has %d classes on %v, cap is %d", faculty.Name, len(perDay[k]), k.day, faculty.MaxClassesPerDay),
		))
	}
	return conflicts
}

// WeeklyLoadCap caps an instructor's weekly session count.
type WeeklyLoadCap struct{}

func (WeeklyLoadCap) Kind() model.ConflictKind { return model.ConflictWeeklyLoadExceeded }

func (WeeklyLoadCap) Violations(inst *model.Instance, schedule *model.Schedule) []model.Conflict {
	perFaculty := make(map[uint64][]int)
	for i, entry := range schedule.Entries {
		perFaculty[entry.Faculty] = append(perFaculty[entry.Faculty], i)
	}

	conflicts := make([]model.Conflict, 0)
	seen := make(map[uint64]bool)
	for _, entry := range schedule.Entries {
		if seen[entry.Faculty] {
			continue
		}
		seen[entry.Faculty] = true

		faculty := inst.Faculty[entry.Faculty]
		if faculty.MaxWeeklyClasses <= 0 || len(perFaculty[entry.Faculty]) <= faculty.MaxWeeklyClasses {
			continue
		}
		conflicts = append(conflicts, newConflict(
			model.ConflictWeeklyLoadExceeded,
			model.SeverityMedium,
			perFaculty[entry.Faculty],
			fmt.Sprintf("%v carries %d weekly sessions, cap is %d", faculty.Name, len(perFaculty[entry.Faculty]), faculty.MaxWeeklyClasses),
		))
	}
	return conflicts
}

// ShiftCompatibility keeps shift-bound batches inside their half of the catalog.
type ShiftCompatibility struct{}

func (ShiftCompatibility) Kind() model.ConflictKind { return model.ConflictShiftMismatch }

func (ShiftCompatibility) Violations(inst *model.Instance, schedule *model.Schedule) []model.Conflict {
	conflicts := make([]model.Conflict, 0)
	for i, entry := range schedule.Entries {
		batch := inst.Batches[inst.Requests[entry.Request].Batch]
		if batch.Shift == model.ShiftAny {
			continue
		}
		if entry.Slot.ShiftOf(inst.ShiftBoundary) == batch.Shift {
			continue
		}
		conflicts = append(conflicts, newConflict(
			model.ConflictShiftMismatch,
			model.SeverityMedium,
			[]int{i},
			fmt.Sprintf("batch %v is bound to the %v shift but scheduled at %v", batch.Name, batch.Shift, entry.Slot),
		))
	}
	return conflicts
}
