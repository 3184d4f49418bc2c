package engine

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"

	"github.com/smartsched/timetable-engine/pkg/constraint"
	"github.com/smartsched/timetable-engine/pkg/model"
)

// ErrUnknownConflict is returned when a conflict id does not belong to the
// given schedule.
var ErrUnknownConflict = errors.New("unknown conflict id")

// maxSuggestionsPerEntry caps how many alternatives a single rule proposes.
const maxSuggestionsPerEntry = 3

// Detector scans a schedule (complete or partial) for hard-constraint
// violations and attaches remediation suggestions from a fixed rule table. It
// is a pure read: deterministic, idempotent, and never mutates the schedule.
type Detector struct {
	inst    *model.Instance
	catalog constraint.Catalog
}

// DetectorOption customizes detector construction.
type DetectorOption func(*Detector)

// WithDetectorCatalog replaces the default constraint catalog.
func WithDetectorCatalog(catalog constraint.Catalog) DetectorOption {
	return func(d *Detector) {
		d.catalog = catalog
	}
}

// NewDetector builds a detector over one immutable instance.
func NewDetector(inst *model.Instance, options ...DetectorOption) *Detector {
	detector := &Detector{
		inst:    inst,
		catalog: constraint.DefaultCatalog(),
	}
	for _, option := range options {
		option(detector)
	}
	return detector
}

// Detect reports every hard-constraint violation in the schedule, ordered by
// (kind, offending entries) with suggestions attached.
func (d *Detector) Detect(schedule model.Schedule) []model.Conflict {
	conflicts := make([]model.Conflict, 0)
	for _, hard := range d.catalog.Hard {
		conflicts = append(conflicts, hard.Violations(d.inst, &schedule)...)
	}

	slices.SortFunc(conflicts, func(a, b model.Conflict) int {
		if a.Kind != b.Kind {
			return int(a.Kind) - int(b.Kind)
		}
		return slices.Compare(a.Entries, b.Entries)
	})

	for i := range conflicts {
		conflicts[i].Suggestions = d.suggest(schedule, conflicts[i])
	}
	return conflicts
}

// ResolveConflict returns the remediation suggestions for one reported
// conflict without mutating the schedule. Applying a suggestion is a separate,
// explicit operation performed by the caller.
func (d *Detector) ResolveConflict(schedule model.Schedule, id uuid.UUID) ([]model.Suggestion, error) {
	for _, conflict := range d.Detect(schedule) {
		if conflict.Id == id {
			return conflict.Suggestions, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownConflict, id)
}

// suggest is the fixed remediation rule table, keyed by violation kind.
func (d *Detector) suggest(schedule model.Schedule, conflict model.Conflict) []model.Suggestion {
	switch conflict.Kind {
	case model.ConflictFacultyDoubleBooking:
		return d.suggestFacultySwap(schedule, conflict)
	case model.ConflictRoomDoubleBooking:
		return d.suggestRoomMoves(schedule, conflict)
	case model.ConflictBatchDoubleBooking, model.ConflictShiftMismatch:
		return d.suggestSlotMoves(schedule, conflict, false)
	case model.ConflictMaxClassesPerDay:
		// Only a different day relieves a per-day cap
		return d.suggestSlotMoves(schedule, conflict, true)
	case model.ConflictWeeklyLoadExceeded:
		// No slot move changes the weekly count; hand sessions off instead
		return d.suggestFacultySwap(schedule, conflict)
	case model.ConflictFixedSlotMoved:
		return d.suggestPinRestore(conflict)
	case model.ConflictFacultyUnavailable:
		return append(d.suggestSlotMoves(schedule, conflict, false), d.suggestFacultySwap(schedule, conflict)...)
	case model.ConflictRoomIncompatible, model.ConflictCapacityExceeded:
		return d.suggestCompatibleRooms(schedule, conflict)
	default:
		return nil
	}
}

// suggestFacultySwap proposes reassigning a clashing session to an instructor
// who teaches the subject and is free in that slot.
func (d *Detector) suggestFacultySwap(schedule model.Schedule, conflict model.Conflict) []model.Suggestion {
	suggestions := make([]model.Suggestion, 0)
	for _, index := range conflict.Entries[min(1, len(conflict.Entries)-1):] {
		entry := schedule.Entries[index]
		subject := d.inst.Requests[entry.Request].Subject
		count := 0
		for _, faculty := range d.inst.Faculty {
			if faculty.Id == entry.Faculty || !faculty.Teaches(subject) {
				continue
			}
			if !faculty.AvailableAt(d.inst.Catalog, entry.Slot) || d.facultyBusyAt(schedule, faculty.Id, entry.Slot, index) {
				continue
			}
			id := faculty.Id
			suggestions = append(suggestions, model.Suggestion{
				Action:  "reassign-faculty",
				Entry:   index,
				Faculty: &id,
				Detail:  fmt.Sprintf("%v is free at %v and teaches %v", faculty.Name, entry.Slot, d.inst.Subjects[subject].Name),
			})
			if count++; count == maxSuggestionsPerEntry {
				break
			}
		}
	}
	return suggestions
}

// suggestRoomMoves proposes a consistent simultaneous reassignment of the
// clashing entries onto compatible free rooms via maximum bipartite matching,
// falling back to per-entry candidate lists when no full matching exists.
func (d *Detector) suggestRoomMoves(schedule model.Schedule, conflict model.Conflict) []model.Suggestion {
	entries := conflict.Entries
	roomSet := make(map[model.RoomRef]bool)
	candidatesPerEntry := make(map[int][]model.RoomRef, len(entries))
	for _, index := range entries {
		candidates := d.freeCompatibleRooms(schedule, index)
		candidatesPerEntry[index] = candidates
		for _, room := range candidates {
			roomSet[room] = true
		}
		// The current room stays a legal target for exactly one of the clashing set
		roomSet[schedule.Entries[index].Room] = true
	}

	rooms := lo.Keys(roomSet)
	slices.SortFunc(rooms, compareRoomRefs)

	neighbors := func(entryAny any, roomAny any) (bool, error) {
		index := entryAny.(int)
		room := roomAny.(model.RoomRef)
		if room == schedule.Entries[index].Room {
			return true, nil
		}
		return slices.Contains(candidatesPerEntry[index], room), nil
	}

	entriesAny := lo.Map(entries, func(index int, _ int) any { return index })
	roomsAny := lo.Map(rooms, func(room model.RoomRef, _ int) any { return room })

	graph, err := bipartitegraph.NewBipartiteGraph(entriesAny, roomsAny, neighbors)
	if err == nil {
		matching := graph.LargestMatching()
		if len(matching) == len(entries) {
			suggestions := make([]model.Suggestion, 0, len(entries))
			for _, edge := range matching {
				index := entries[edge.Node1]
				room := rooms[edge.Node2-len(entries)]
				if room == schedule.Entries[index].Room {
					continue
				}
				target := room
				suggestions = append(suggestions, model.Suggestion{
					Action: "move-room",
					Entry:  index,
					Room:   &target,
					Detail: fmt.Sprintf("%v %d is free and compatible at %v", room.Kind, room.Id, schedule.Entries[index].Slot),
				})
			}
			slices.SortFunc(suggestions, func(a, b model.Suggestion) int { return a.Entry - b.Entry })
			return suggestions
		}
	}

	// No full matching: list candidates per entry so the caller can pick
	suggestions := make([]model.Suggestion, 0)
	for _, index := range entries {
		candidates := candidatesPerEntry[index]
		if len(candidates) == 0 {
			continue
		}
		names := lo.Map(candidates[:min(len(candidates), maxSuggestionsPerEntry)], func(room model.RoomRef, _ int) string {
			return fmt.Sprintf("%v %d", room.Kind, room.Id)
		})
		target := candidates[0]
		suggestions = append(suggestions, model.Suggestion{
			Action: "move-room",
			Entry:  index,
			Room:   &target,
			Detail: fmt.Sprintf("compatible free rooms: %v", strings.Join(names, ", ")),
		})
	}
	return suggestions
}

// suggestSlotMoves proposes alternative slots where the batch, instructor and
// room are all free. With otherDayOnly the current day is excluded entirely.
func (d *Detector) suggestSlotMoves(schedule model.Schedule, conflict model.Conflict, otherDayOnly bool) []model.Suggestion {
	suggestions := make([]model.Suggestion, 0)
	for _, index := range conflict.Entries[min(1, len(conflict.Entries)-1):] {
		entry := schedule.Entries[index]
		if entry.Fixed {
			continue // Pinned sessions stay put; the other party has to move
		}
		request := d.inst.Requests[entry.Request]
		count := 0
		for _, slot := range d.inst.Catalog.ForKind(request.Kind) {
			if slot == entry.Slot || !d.slotFreeFor(schedule, index, slot) {
				continue
			}
			if otherDayOnly && slot.Day == entry.Slot.Day {
				continue
			}
			target := slot
			suggestions = append(suggestions, model.Suggestion{
				Action: "move-slot",
				Entry:  index,
				Slot:   &target,
				Detail: fmt.Sprintf("batch, instructor and room are free at %v", slot),
			})
			if count++; count == maxSuggestionsPerEntry {
				break
			}
		}
	}
	return suggestions
}

func (d *Detector) suggestPinRestore(conflict model.Conflict) []model.Suggestion {
	suggestions := make([]model.Suggestion, 0, len(conflict.Entries))
	for _, index := range conflict.Entries {
		// The pinned slot is the only remediation for a moved fixed session
		suggestions = append(suggestions, model.Suggestion{
			Action: "restore-slot",
			Entry:  index,
			Detail: "restore the externally pinned slot",
		})
	}
	return suggestions
}

// suggestCompatibleRooms proposes rooms whose variant, type, equipment and
// capacity satisfy the request, preferring free ones.
func (d *Detector) suggestCompatibleRooms(schedule model.Schedule, conflict model.Conflict) []model.Suggestion {
	suggestions := make([]model.Suggestion, 0)
	for _, index := range conflict.Entries {
		candidates := d.freeCompatibleRooms(schedule, index)
		if len(candidates) == 0 {
			suggestions = append(suggestions, model.Suggestion{
				Action: "move-room",
				Entry:  index,
				Detail: "no compatible room is free in this slot",
			})
			continue
		}
		for _, room := range candidates[:min(len(candidates), maxSuggestionsPerEntry)] {
			target := room
			suggestions = append(suggestions, model.Suggestion{
				Action: "move-room",
				Entry:  index,
				Room:   &target,
				Detail: fmt.Sprintf("%v %d satisfies the room requirement", room.Kind, room.Id),
			})
		}
	}
	return suggestions
}

//** Occupancy helpers

func (d *Detector) facultyBusyAt(schedule model.Schedule, faculty uint64, slot model.TimeSlot, exclude int) bool {
	for i, entry := range schedule.Entries {
		if i == exclude || entry.Faculty != faculty {
			continue
		}
		if entry.Slot.Overlaps(slot) {
			return true
		}
	}
	return false
}

func (d *Detector) roomBusyAt(schedule model.Schedule, room model.RoomRef, slot model.TimeSlot, exclude int) bool {
	for i, entry := range schedule.Entries {
		if i == exclude || entry.Room != room {
			continue
		}
		if schedule.OccupiedWindow(d.inst, entry).Overlaps(slot) {
			return true
		}
	}
	return false
}

func (d *Detector) batchBusyAt(schedule model.Schedule, batch uint64, slot model.TimeSlot, exclude int) bool {
	for i, entry := range schedule.Entries {
		if i == exclude || d.inst.Requests[entry.Request].Batch != batch {
			continue
		}
		if entry.Slot.Overlaps(slot) {
			return true
		}
	}
	return false
}

// slotFreeFor checks the batch, instructor and current room of an entry are all
// free at the candidate slot, and the instructor is available there.
func (d *Detector) slotFreeFor(schedule model.Schedule, index int, slot model.TimeSlot) bool {
	entry := schedule.Entries[index]
	request := d.inst.Requests[entry.Request]
	return !d.batchBusyAt(schedule, request.Batch, slot, index) &&
		!d.facultyBusyAt(schedule, entry.Faculty, slot, index) &&
		!d.roomBusyAt(schedule, entry.Room, slot, index) &&
		d.inst.Faculty[entry.Faculty].AvailableAt(d.inst.Catalog, slot)
}

// freeCompatibleRooms lists rooms satisfying the entry's requirement that are
// unoccupied during its slot, in id order.
func (d *Detector) freeCompatibleRooms(schedule model.Schedule, index int) []model.RoomRef {
	entry := schedule.Entries[index]
	request := d.inst.Requests[entry.Request]
	batch := d.inst.Batches[request.Batch]

	rooms := make([]model.RoomRef, 0)
	switch request.Kind {
	case model.SessionLecture:
		for _, room := range d.inst.Classrooms {
			if room.Capacity < batch.Size {
				continue
			}
			ref := model.RoomRef{Kind: model.RoomClassroom, Id: room.Id}
			if ref != entry.Room && !d.roomBusyAt(schedule, ref, entry.Slot, index) {
				rooms = append(rooms, ref)
			}
		}
	case model.SessionLab:
		for _, lab := range d.inst.Laboratories {
			if lab.Capacity < batch.Size {
				continue
			}
			if request.Requirement.LabType != "" && lab.LabType != request.Requirement.LabType {
				continue
			}
			if !lab.HasEquipment(request.Requirement.Equipment) {
				continue
			}
			ref := model.RoomRef{Kind: model.RoomLaboratory, Id: lab.Id}
			if ref != entry.Room && !d.roomBusyAt(schedule, ref, entry.Slot, index) {
				rooms = append(rooms, ref)
			}
		}
	}
	return rooms
}

func compareRoomRefs(a, b model.RoomRef) int {
	if a.Kind != b.Kind {
		return int(a.Kind) - int(b.Kind)
	}
	return int(a.Id) - int(b.Id)
}
