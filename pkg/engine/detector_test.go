package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartsched/timetable-engine/pkg/model"
)

func scheduleFor(inst *model.Instance, entries ...model.ScheduleEntry) model.Schedule {
	for i := range entries {
		entries[i].Shift = entries[i].Slot.ShiftOf(inst.ShiftBoundary)
	}
	return model.Schedule{Entries: entries}
}

func TestDetectIsIdempotent(t *testing.T) {
	inst := roomyInstance(t)
	slot := inst.Catalog.Lecture[0]

	schedule := scheduleFor(&inst,
		model.ScheduleEntry{Request: 0, Slot: slot, Faculty: 0, Room: model.RoomRef{Kind: model.RoomClassroom, Id: 0}},
		model.ScheduleEntry{Request: 1, Slot: slot, Faculty: 1, Room: model.RoomRef{Kind: model.RoomClassroom, Id: 0}},
	)

	detector := NewDetector(&inst)
	first := detector.Detect(schedule)
	second := detector.Detect(schedule)

	require.NotEmpty(t, first)
	require.Equal(t, first, second)
}

func TestDetectReportsOneConflictPerClashingPair(t *testing.T) {
	// Two different batches pinned into the same room and slot: exactly one
	// room double-booking, nothing else.
	pinned := model.TimeSlot{Day: model.Monday, Start: 9 * 60, End: 10 * 60}
	inst, err := model.NewInstance(model.RawInstance{
		Subjects: []model.Subject{{Id: 0, Name: "algorithms"}, {Id: 1, Name: "databases"}},
		Faculty: []model.Faculty{
			{Id: 0, Name: "turing", Subjects: []uint64{0}},
			{Id: 1, Name: "codd", Subjects: []uint64{1}},
		},
		Batches: []model.Batch{
			{Id: 0, Name: "cs-1", Size: 20},
			{Id: 1, Name: "cs-2", Size: 20},
		},
		Classrooms: []model.Classroom{{Id: 0, Name: "r-101", Capacity: 40}},
		Requests: []model.SessionRequest{
			{Id: 0, Subject: 0, Batch: 0, Kind: model.SessionLecture, Occurrences: 1, Duration: 60, Requirement: model.RoomRequirement{Kind: model.RoomClassroom}, Fixed: &pinned},
			{Id: 1, Subject: 1, Batch: 1, Kind: model.SessionLecture, Occurrences: 1, Duration: 60, Requirement: model.RoomRequirement{Kind: model.RoomClassroom}, Fixed: &pinned},
		},
	})
	require.NoError(t, err)

	schedule := scheduleFor(&inst,
		model.ScheduleEntry{Request: 0, Slot: pinned, Faculty: 0, Room: model.RoomRef{Kind: model.RoomClassroom, Id: 0}, Fixed: true},
		model.ScheduleEntry{Request: 1, Slot: pinned, Faculty: 1, Room: model.RoomRef{Kind: model.RoomClassroom, Id: 0}, Fixed: true},
	)

	conflicts := NewDetector(&inst).Detect(schedule)

	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ConflictRoomDoubleBooking, conflicts[0].Kind)
	assert.Equal(t, []int{0, 1}, conflicts[0].Entries)
}

func TestDetectFlagsEquipmentMismatch(t *testing.T) {
	inst, err := model.NewInstance(model.RawInstance{
		Subjects:   []model.Subject{{Id: 0, Name: "chemistry"}},
		Faculty:    []model.Faculty{{Id: 0, Name: "curie", Subjects: []uint64{0}}},
		Batches:    []model.Batch{{Id: 0, Name: "chem-1", Size: 20}},
		Classrooms: []model.Classroom{{Id: 0, Name: "r-101", Capacity: 40}},
		Laboratories: []model.Laboratory{
			{Id: 0, Name: "chem-lab", LabType: "chemistry", Equipment: []string{"fume-hood"}, Capacity: 24},
		},
		Requests: []model.SessionRequest{{
			Id: 0, Subject: 0, Batch: 0, Kind: model.SessionLab, Occurrences: 1, Duration: 120,
			Requirement: model.RoomRequirement{Kind: model.RoomLaboratory, LabType: "chemistry", Equipment: []string{"centrifuge"}},
		}},
	})
	require.NoError(t, err)

	// The sampler parks the session in the classroom because no laboratory
	// satisfies the equipment requirement
	schedule := scheduleFor(&inst, model.ScheduleEntry{
		Request: 0,
		Slot:    inst.Catalog.Lab[0],
		Faculty: 0,
		Room:    model.RoomRef{Kind: model.RoomClassroom, Id: 0},
	})

	conflicts := NewDetector(&inst).Detect(schedule)

	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ConflictRoomIncompatible, conflicts[0].Kind)

	// No compatible room exists, so the rule table says so instead of guessing
	require.Len(t, conflicts[0].Suggestions, 1)
	assert.Equal(t, "move-room", conflicts[0].Suggestions[0].Action)
	assert.Nil(t, conflicts[0].Suggestions[0].Room)
}

func TestRoomDoubleBookingSuggestsAConsistentMove(t *testing.T) {
	inst := roomyInstance(t)
	slot := inst.Catalog.Lecture[0]

	schedule := scheduleFor(&inst,
		model.ScheduleEntry{Request: 0, Slot: slot, Faculty: 0, Room: model.RoomRef{Kind: model.RoomClassroom, Id: 0}},
		model.ScheduleEntry{Request: 2, Slot: slot, Faculty: 1, Room: model.RoomRef{Kind: model.RoomClassroom, Id: 0}},
	)

	conflicts := NewDetector(&inst).Detect(schedule)
	require.Len(t, conflicts, 1)
	require.Equal(t, model.ConflictRoomDoubleBooking, conflicts[0].Kind)

	// The matching moves part of the pair onto free compatible classrooms
	suggestions := conflicts[0].Suggestions
	require.NotEmpty(t, suggestions)
	targets := make(map[uint64]bool)
	for _, suggestion := range suggestions {
		assert.Equal(t, "move-room", suggestion.Action)
		require.NotNil(t, suggestion.Room)
		assert.Equal(t, model.RoomClassroom, suggestion.Room.Kind)
		assert.NotEqual(t, uint64(0), suggestion.Room.Id)
		assert.False(t, targets[suggestion.Room.Id], "targets must not collide")
		targets[suggestion.Room.Id] = true
	}
}

func TestFacultyDoubleBookingSuggestsQualifiedSwap(t *testing.T) {
	inst := roomyInstance(t)
	slot := inst.Catalog.Lecture[0]

	// turing teaches both clashing algorithms sessions; shannon also teaches
	// algorithms and is free
	schedule := scheduleFor(&inst,
		model.ScheduleEntry{Request: 0, Slot: slot, Faculty: 0, Room: model.RoomRef{Kind: model.RoomClassroom, Id: 0}},
		model.ScheduleEntry{Request: 3, Slot: slot, Faculty: 0, Room: model.RoomRef{Kind: model.RoomClassroom, Id: 1}},
	)

	conflicts := NewDetector(&inst).Detect(schedule)
	require.NotEmpty(t, conflicts)

	var swap *model.Suggestion
	for _, conflict := range conflicts {
		if conflict.Kind != model.ConflictFacultyDoubleBooking {
			continue
		}
		for i := range conflict.Suggestions {
			if conflict.Suggestions[i].Action == "reassign-faculty" {
				swap = &conflict.Suggestions[i]
			}
		}
	}
	require.NotNil(t, swap)
	require.NotNil(t, swap.Faculty)
	assert.Equal(t, uint64(2), *swap.Faculty)
	assert.Equal(t, 1, swap.Entry)
}

func TestBatchClashSuggestsSlotMoves(t *testing.T) {
	inst := roomyInstance(t)
	slot := inst.Catalog.Lecture[0]

	schedule := scheduleFor(&inst,
		model.ScheduleEntry{Request: 0, Slot: slot, Faculty: 0, Room: model.RoomRef{Kind: model.RoomClassroom, Id: 0}},
		model.ScheduleEntry{Request: 1, Slot: slot, Faculty: 1, Room: model.RoomRef{Kind: model.RoomClassroom, Id: 1}},
	)

	conflicts := NewDetector(&inst).Detect(schedule)
	require.Len(t, conflicts, 1)
	require.Equal(t, model.ConflictBatchDoubleBooking, conflicts[0].Kind)

	suggestions := conflicts[0].Suggestions
	require.NotEmpty(t, suggestions)
	assert.LessOrEqual(t, len(suggestions), maxSuggestionsPerEntry)
	for _, suggestion := range suggestions {
		assert.Equal(t, "move-slot", suggestion.Action)
		assert.Equal(t, 1, suggestion.Entry)
		require.NotNil(t, suggestion.Slot)
		assert.NotEqual(t, slot, *suggestion.Slot)
	}
}

func TestResolveConflict(t *testing.T) {
	inst := roomyInstance(t)
	slot := inst.Catalog.Lecture[0]

	schedule := scheduleFor(&inst,
		model.ScheduleEntry{Request: 0, Slot: slot, Faculty: 0, Room: model.RoomRef{Kind: model.RoomClassroom, Id: 0}},
		model.ScheduleEntry{Request: 2, Slot: slot, Faculty: 1, Room: model.RoomRef{Kind: model.RoomClassroom, Id: 0}},
	)

	detector := NewDetector(&inst)
	conflicts := detector.Detect(schedule)
	require.NotEmpty(t, conflicts)

	t.Run("known id", func(t *testing.T) {
		suggestions, err := detector.ResolveConflict(schedule, conflicts[0].Id)
		require.NoError(t, err)
		assert.Equal(t, conflicts[0].Suggestions, suggestions)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := detector.ResolveConflict(schedule, uuid.New())
		assert.ErrorIs(t, err, ErrUnknownConflict)
	})
}

func TestDayCapSuggestsOtherDays(t *testing.T) {
	inst := roomyInstance(t)
	inst.Faculty[0].MaxClassesPerDay = 2

	schedule := scheduleFor(&inst,
		model.ScheduleEntry{Request: 0, Slot: inst.Catalog.Lecture[0], Faculty: 0, Room: model.RoomRef{Kind: model.RoomClassroom, Id: 0}},
		model.ScheduleEntry{Request: 2, Slot: inst.Catalog.Lecture[1], Faculty: 0, Room: model.RoomRef{Kind: model.RoomClassroom, Id: 1}},
		model.ScheduleEntry{Request: 3, Slot: inst.Catalog.Lecture[2], Faculty: 0, Room: model.RoomRef{Kind: model.RoomClassroom, Id: 2}},
	)

	conflicts := NewDetector(&inst).Detect(schedule)
	require.Len(t, conflicts, 1)
	require.Equal(t, model.ConflictMaxClassesPerDay, conflicts[0].Kind)

	// Moving within the same day cannot relieve a per-day cap
	require.NotEmpty(t, conflicts[0].Suggestions)
	for _, suggestion := range conflicts[0].Suggestions {
		require.Equal(t, "move-slot", suggestion.Action)
		require.NotNil(t, suggestion.Slot)
		assert.NotEqual(t, model.Monday, suggestion.Slot.Day)
	}
}

func TestWeeklyCapSuggestsHandingSessionsOff(t *testing.T) {
	inst := roomyInstance(t)
	inst.Faculty[0].MaxWeeklyClasses = 2

	schedule := scheduleFor(&inst,
		model.ScheduleEntry{Request: 0, Slot: inst.Catalog.Lecture[0], Faculty: 0, Room: model.RoomRef{Kind: model.RoomClassroom, Id: 0}},
		model.ScheduleEntry{Request: 2, Slot: inst.Catalog.Lecture[8], Faculty: 0, Room: model.RoomRef{Kind: model.RoomClassroom, Id: 1}},
		model.ScheduleEntry{Request: 3, Slot: inst.Catalog.Lecture[16], Faculty: 0, Room: model.RoomRef{Kind: model.RoomClassroom, Id: 2}},
	)

	conflicts := NewDetector(&inst).Detect(schedule)
	require.Len(t, conflicts, 1)
	require.Equal(t, model.ConflictWeeklyLoadExceeded, conflicts[0].Kind)

	require.NotEmpty(t, conflicts[0].Suggestions)
	for _, suggestion := range conflicts[0].Suggestions {
		assert.Equal(t, "reassign-faculty", suggestion.Action)
		require.NotNil(t, suggestion.Faculty)
		// shannon is the only other instructor qualified for these subjects
		assert.Equal(t, uint64(2), *suggestion.Faculty)
	}
}
