package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRawInstance() RawInstance {
	return RawInstance{
		Subjects: []Subject{{Id: 0, Name: "algorithms"}},
		Faculty: []Faculty{{
			Id:       0,
			Name:     "turing",
			Subjects: []uint64{0},
		}},
		Batches:    []Batch{{Id: 0, Name: "cs-1", Size: 30}},
		Classrooms: []Classroom{{Id: 0, Name: "r-101", Capacity: 40}},
		Requests: []SessionRequest{{
			Id:          0,
			Subject:     0,
			Batch:       0,
			Kind:        SessionLecture,
			Occurrences: 2,
			Duration:    60,
			Requirement: RoomRequirement{Kind: RoomClassroom},
		}},
	}
}

func TestNewInstanceAppliesDefaults(t *testing.T) {
	inst, err := NewInstance(validRawInstance())

	require.NoError(t, err)
	assert.NotEmpty(t, inst.Catalog.Lecture)
	assert.NotEmpty(t, inst.Catalog.Lab)
	assert.Equal(t, DefaultShiftBoundary, inst.ShiftBoundary)
	assert.Equal(t, 2, inst.TotalOccurrences())
}

func TestNewInstanceRejectsDanglingReferences(t *testing.T) {
	t.Run("unknown subject", func(t *testing.T) {
		raw := validRawInstance()
		raw.Requests[0].Subject = 7

		_, err := NewInstance(raw)

		assert.ErrorContains(t, err, "unknown subject")
	})

	t.Run("unknown batch", func(t *testing.T) {
		raw := validRawInstance()
		raw.Requests[0].Batch = 3

		_, err := NewInstance(raw)

		assert.ErrorContains(t, err, "unknown batch")
	})

	t.Run("faculty teaching unknown subject", func(t *testing.T) {
		raw := validRawInstance()
		raw.Faculty[0].Subjects = []uint64{9}

		_, err := NewInstance(raw)

		assert.ErrorContains(t, err, "unknown subject")
	})
}

func TestNewInstanceRejectsMalformedRequests(t *testing.T) {
	t.Run("non-positive occurrences", func(t *testing.T) {
		raw := validRawInstance()
		raw.Requests[0].Occurrences = 0

		_, err := NewInstance(raw)

		assert.ErrorContains(t, err, "occurrence")
	})

	t.Run("lab request requiring a classroom", func(t *testing.T) {
		raw := validRawInstance()
		raw.Requests[0].Kind = SessionLab

		_, err := NewInstance(raw)

		assert.ErrorContains(t, err, "must require a laboratory")
	})

	t.Run("non-positional ids", func(t *testing.T) {
		raw := validRawInstance()
		raw.Subjects[0].Id = 5

		_, err := NewInstance(raw)

		assert.ErrorContains(t, err, "position")
	})
}

func TestFacultyAvailabilityMask(t *testing.T) {
	catalog := DefaultSlotCatalog()
	mask := make([][]bool, catalog.PeriodsPerDay())
	for period := range mask {
		mask[period] = make([]bool, TotalDays)
		for day := range mask[period] {
			mask[period][day] = true
		}
	}
	mask[0][int(Monday)] = false

	faculty := Faculty{Id: 0, Name: "hopper", Availability: mask}

	assert.False(t, faculty.AvailableAt(catalog, TimeSlot{Day: Monday, Start: 9 * 60, End: 10 * 60}))
	assert.True(t, faculty.AvailableAt(catalog, TimeSlot{Day: Tuesday, Start: 9 * 60, End: 10 * 60}))

	// A lab block covering the blocked period is unavailable too
	assert.False(t, faculty.AvailableAt(catalog, TimeSlot{Day: Monday, Start: 9 * 60, End: 12 * 60}))
	assert.True(t, faculty.AvailableAt(catalog, TimeSlot{Day: Monday, Start: 10 * 60, End: 12 * 60}))

	// An empty mask means always available
	assert.True(t, Faculty{}.AvailableAt(catalog, TimeSlot{Day: Monday, Start: 9 * 60, End: 10 * 60}))
}

func TestConflictIDIsDeterministic(t *testing.T) {
	first := ConflictID(ConflictRoomDoubleBooking, []int{1, 4})
	second := ConflictID(ConflictRoomDoubleBooking, []int{1, 4})
	other := ConflictID(ConflictRoomDoubleBooking, []int{1, 5})

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.NotEqual(t, first, ConflictID(ConflictBatchDoubleBooking, []int{1, 4}))
}
