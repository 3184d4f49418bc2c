package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSlotOrderingAndOverlap(t *testing.T) {
	first := TimeSlot{Day: Monday, Start: 9 * 60, End: 10 * 60}
	second := TimeSlot{Day: Monday, Start: 10 * 60, End: 11 * 60}
	otherDay := TimeSlot{Day: Tuesday, Start: 9 * 60, End: 10 * 60}

	assert.Negative(t, first.Compare(second))
	assert.Positive(t, second.Compare(first))
	assert.Negative(t, first.Compare(otherDay))
	assert.Zero(t, first.Compare(first))

	// Back-to-back slots do not overlap
	assert.False(t, first.Overlaps(second))
	assert.False(t, first.Overlaps(otherDay))
	assert.True(t, first.Overlaps(TimeSlot{Day: Monday, Start: 9*60 + 30, End: 10*60 + 30}))
}

func TestTimeSlotShiftClassification(t *testing.T) {
	morning := TimeSlot{Day: Monday, Start: 9 * 60, End: 10 * 60}
	evening := TimeSlot{Day: Monday, Start: 15 * 60, End: 16 * 60}

	assert.Equal(t, ShiftMorning, morning.ShiftOf(DefaultShiftBoundary))
	assert.Equal(t, ShiftEvening, evening.ShiftOf(DefaultShiftBoundary))

	assert.True(t, ShiftAny.Matches(ShiftMorning))
	assert.True(t, ShiftMorning.Matches(ShiftMorning))
	assert.False(t, ShiftMorning.Matches(ShiftEvening))
}

func TestDefaultSlotCatalog(t *testing.T) {
	catalog := DefaultSlotCatalog()

	require.Len(t, catalog.Lecture, TotalDays*8)
	require.Len(t, catalog.Lab, TotalDays*6)
	assert.Equal(t, 8, catalog.PeriodsPerDay())

	// Lecture slots are one hour, lab slots are two to three hours
	for _, slot := range catalog.Lecture {
		assert.Equal(t, 60, slot.Duration())
	}
	for _, slot := range catalog.Lab {
		assert.GreaterOrEqual(t, slot.Duration(), 120)
		assert.LessOrEqual(t, slot.Duration(), 180)
	}

	assert.True(t, catalog.Contains(SessionLecture, TimeSlot{Day: Wednesday, Start: 9 * 60, End: 10 * 60}))
	assert.False(t, catalog.Contains(SessionLab, TimeSlot{Day: Wednesday, Start: 9 * 60, End: 10 * 60}))
}

func TestPeriodIndex(t *testing.T) {
	catalog := DefaultSlotCatalog()

	assert.Equal(t, 0, catalog.PeriodIndex(TimeSlot{Day: Monday, Start: 9 * 60, End: 10 * 60}))
	assert.Equal(t, 4, catalog.PeriodIndex(TimeSlot{Day: Friday, Start: 14 * 60, End: 15 * 60}))
	assert.Equal(t, -1, catalog.PeriodIndex(TimeSlot{Day: Monday, Start: 8 * 60, End: 9 * 60}))
}
