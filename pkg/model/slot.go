package model

import (
	"fmt"
	"slices"
)

// Day is a working day of the teaching week.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

const TotalDays = 5

var dayNames = map[Day]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
}

func (d Day) String() string {
	if name, ok := dayNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Day(%d)", int(d))
}

// Shift partitions the slot catalog into a morning and an evening half. ShiftAny
// marks entities that are not bound to either half.
type Shift int

const (
	ShiftAny Shift = iota
	ShiftMorning
	ShiftEvening
)

func (s Shift) String() string {
	switch s {
	case ShiftMorning:
		return "morning"
	case ShiftEvening:
		return "evening"
	default:
		return "any"
	}
}

// Matches reports whether an entity bound to shift s may occupy a slot in shift
// other. ShiftAny matches both halves.
func (s Shift) Matches(other Shift) bool {
	return s == ShiftAny || other == ShiftAny || s == other
}

// TimeSlot is a contiguous teaching window on a single day. Start and End are
// minutes from midnight. Slots are ordered by (day, start).
type TimeSlot struct {
	Day   Day
	Start int
	End   int
}

func (t TimeSlot) Duration() int {
	return t.End - t.Start
}

// Overlaps reports whether two slots share any time on the same day.
func (t TimeSlot) Overlaps(other TimeSlot) bool {
	return t.Day == other.Day && t.Start < other.End && other.Start < t.End
}

func (t TimeSlot) Compare(other TimeSlot) int {
	if t.Day != other.Day {
		return int(t.Day) - int(other.Day)
	}
	if t.Start != other.Start {
		return t.Start - other.Start
	}
	return t.End - other.End
}

// ShiftOf classifies the slot against the morning/evening boundary (minutes from
// midnight). Slots starting before the boundary belong to the morning shift.
func (t TimeSlot) ShiftOf(boundary int) Shift {
	if t.Start < boundary {
		return ShiftMorning
	}
	return ShiftEvening
}

func (t TimeSlot) String() string {
	return fmt.Sprintf("%v %02d:%02d-%02d:%02d", t.Day, t.Start/60, t.Start%60, t.End/60, t.End%60)
}

// SlotCatalog holds the two disjoint slot pools: one-hour lecture slots and the
// longer laboratory blocks. The engine never mixes them for the same session kind.
type SlotCatalog struct {
	Lecture []TimeSlot
	Lab     []TimeSlot
}

// ForKind returns the slot pool matching the session kind.
func (c SlotCatalog) ForKind(kind SessionKind) []TimeSlot {
	if kind == SessionLab {
		return c.Lab
	}
	return c.Lecture
}

// Contains reports whether the slot belongs to the pool for the given kind.
func (c SlotCatalog) Contains(kind SessionKind, slot TimeSlot) bool {
	return slices.Contains(c.ForKind(kind), slot)
}

// PeriodsPerDay is the number of lecture periods on a single day.
func (c SlotCatalog) PeriodsPerDay() int {
	periods := 0
	for _, slot := range c.Lecture {
		if slot.Day == Monday {
			periods++
		}
	}
	return periods
}

// PeriodIndex maps a lecture slot to its period position within its day, or -1 if
// the slot is not part of the lecture pool.
func (c SlotCatalog) PeriodIndex(slot TimeSlot) int {
	period := 0
	for _, candidate := range c.Lecture {
		if candidate.Day != slot.Day {
			continue
		}
		if candidate.Start == slot.Start && candidate.End == slot.End {
			return period
		}
		period++
	}
	return -1
}

// NewSlotCatalog expands per-day period windows into a full weekly catalog. Both
// window lists are (start, end) minute pairs applied to every working day.
func NewSlotCatalog(lectureWindows, labWindows [][2]int) SlotCatalog {
	catalog := SlotCatalog{
		Lecture: make([]TimeSlot, 0, TotalDays*len(lectureWindows)),
		Lab:     make([]TimeSlot, 0, TotalDays*len(labWindows)),
	}
	for day := Monday; day <= Friday; day++ {
		for _, window := range lectureWindows {
			catalog.Lecture = append(catalog.Lecture, TimeSlot{Day: day, Start: window[0], End: window[1]})
		}
		for _, window := range labWindows {
			catalog.Lab = append(catalog.Lab, TimeSlot{Day: day, Start: window[0], End: window[1]})
		}
	}
	return catalog
}

// DefaultSlotCatalog mirrors the standard institutional day: eight one-hour
// lecture periods from 09:00 to 18:00 (13:00-14:00 is the lunch period) and six
// laboratory blocks of two to three hours.
func DefaultSlotCatalog() SlotCatalog {
	lecture := [][2]int{
		{9 * 60, 10 * 60},
		{10 * 60, 11 * 60},
		{11 * 60, 12 * 60},
		{12 * 60, 13 * 60},
		{14 * 60, 15 * 60},
		{15 * 60, 16 * 60},
		{16 * 60, 17 * 60},
		{17 * 60, 18 * 60},
	}
	lab := [][2]int{
		{9 * 60, 12 * 60},
		{10 * 60, 12 * 60},
		{9 * 60, 11 * 60},
		{14 * 60, 17 * 60},
		{15 * 60, 17 * 60},
		{14 * 60, 16 * 60},
	}
	return NewSlotCatalog(lecture, lab)
}

// DefaultShiftBoundary splits the catalog at 14:00: morning before, evening after.
const DefaultShiftBoundary = 14 * 60
