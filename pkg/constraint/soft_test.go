package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartsched/timetable-engine/pkg/model"
)

func TestFacultyPreferenceMatch(t *testing.T) {
	inst := testInstance(t)
	inst.Faculty[0].PreferredShift = model.ShiftMorning
	inst.Faculty[1].PreferredShift = model.ShiftEvening

	morning := model.TimeSlot{Day: model.Monday, Start: 9 * 60, End: 10 * 60}
	evening := model.TimeSlot{Day: model.Monday, Start: 15 * 60, End: 16 * 60}

	t.Run("all matched", func(t *testing.T) {
		schedule := model.Schedule{Entries: []model.ScheduleEntry{
			lectureAt(0, morning, 0, 0),
			lectureAt(0, evening, 1, 1),
		}}
		assert.InDelta(t, 1.0, FacultyPreferenceMatch{}.Score(&inst, &schedule), 1e-9)
	})

	t.Run("half matched", func(t *testing.T) {
		schedule := model.Schedule{Entries: []model.ScheduleEntry{
			lectureAt(0, morning, 0, 0),
			lectureAt(0, morning, 1, 1),
		}}
		assert.InDelta(t, 0.5, FacultyPreferenceMatch{}.Score(&inst, &schedule), 1e-9)
	})

	t.Run("no preference always matches", func(t *testing.T) {
		inst := testInstance(t)
		schedule := model.Schedule{Entries: []model.ScheduleEntry{
			lectureAt(0, evening, 0, 0),
		}}
		assert.InDelta(t, 1.0, FacultyPreferenceMatch{}.Score(&inst, &schedule), 1e-9)
	})
}

func TestBandScore(t *testing.T) {
	assert.InDelta(t, 1.0, bandScore(0.70, minClassroomUtilization, maxClassroomUtilization), 1e-9)
	assert.InDelta(t, 1.0, bandScore(0.60, minClassroomUtilization, maxClassroomUtilization), 1e-9)
	assert.InDelta(t, 0.75, bandScore(0.50, minClassroomUtilization, maxClassroomUtilization), 1e-9)
	assert.InDelta(t, 0.75, bandScore(0.90, minClassroomUtilization, maxClassroomUtilization), 1e-9)
	assert.InDelta(t, 0.25, bandScore(0.10, minClassroomUtilization, maxClassroomUtilization), 1e-9)
	assert.InDelta(t, 0.25, bandScore(0.99, minClassroomUtilization, maxClassroomUtilization), 1e-9)
}

func TestClassroomUtilizationBalance(t *testing.T) {
	inst := testInstance(t)

	// 2 classrooms x 40 lecture slots; 56 occupied slots lands inside the band
	entries := make([]model.ScheduleEntry, 0, 56)
	for i := 0; i < 56; i++ {
		entries = append(entries, lectureAt(0, inst.Catalog.Lecture[i%len(inst.Catalog.Lecture)], 0, uint64(i%2)))
	}
	schedule := model.Schedule{Entries: entries}
	assert.InDelta(t, 1.0, ClassroomUtilizationBalance{}.Score(&inst, &schedule), 1e-9)

	// An almost empty week scores the low band
	schedule = model.Schedule{Entries: entries[:2]}
	assert.InDelta(t, 0.25, ClassroomUtilizationBalance{}.Score(&inst, &schedule), 1e-9)
}

func TestWorkloadBalance(t *testing.T) {
	inst := testInstance(t)
	slot := inst.Catalog.Lecture[0]

	t.Run("even spread scores one", func(t *testing.T) {
		schedule := model.Schedule{Entries: []model.ScheduleEntry{
			lectureAt(0, slot, 0, 0),
			lectureAt(0, inst.Catalog.Lecture[1], 1, 1),
		}}
		assert.InDelta(t, 1.0, WorkloadBalance{}.Score(&inst, &schedule), 1e-9)
	})

	t.Run("skew lowers the score", func(t *testing.T) {
		skewed := model.Schedule{Entries: []model.ScheduleEntry{
			lectureAt(0, inst.Catalog.Lecture[0], 0, 0),
			lectureAt(0, inst.Catalog.Lecture[1], 0, 0),
			lectureAt(0, inst.Catalog.Lecture[2], 0, 0),
			lectureAt(0, inst.Catalog.Lecture[3], 0, 0),
		}}
		even := model.Schedule{Entries: []model.ScheduleEntry{
			lectureAt(0, inst.Catalog.Lecture[0], 0, 0),
			lectureAt(0, inst.Catalog.Lecture[1], 0, 0),
			lectureAt(0, inst.Catalog.Lecture[2], 1, 0),
			lectureAt(0, inst.Catalog.Lecture[3], 1, 0),
		}}
		assert.Less(t, WorkloadBalance{}.Score(&inst, &skewed), WorkloadBalance{}.Score(&inst, &even))
	})

	t.Run("empty schedule scores one", func(t *testing.T) {
		assert.InDelta(t, 1.0, WorkloadBalance{}.Score(&inst, &model.Schedule{}), 1e-9)
	})
}

func TestCrossShiftSharing(t *testing.T) {
	inst := testInstance(t)
	morning := model.TimeSlot{Day: model.Monday, Start: 9 * 60, End: 10 * 60}
	evening := model.TimeSlot{Day: model.Monday, Start: 15 * 60, End: 16 * 60}

	t.Run("room serving both shifts", func(t *testing.T) {
		schedule := model.Schedule{Entries: []model.ScheduleEntry{
			lectureAt(0, morning, 0, 0),
			lectureAt(0, evening, 1, 0),
		}}
		assert.InDelta(t, 1.0, CrossShiftSharing{}.Score(&inst, &schedule), 1e-9)
	})

	t.Run("rooms stuck in one shift", func(t *testing.T) {
		schedule := model.Schedule{Entries: []model.ScheduleEntry{
			lectureAt(0, morning, 0, 0),
			lectureAt(0, evening, 1, 1),
		}}
		assert.InDelta(t, 0.0, CrossShiftSharing{}.Score(&inst, &schedule), 1e-9)
	})
}
