package model

import "slices"

// Subject is a taught course unit. Ids are positional: Subjects[i].Id == i.
type Subject struct {
	Id         uint64
	Name       string
	Code       string
	Department string
}

// Batch is a student cohort attending sessions together. A shift-bound batch may
// only be scheduled inside its own half of the catalog.
type Batch struct {
	Id    uint64
	Name  string
	Size  uint64
	Shift Shift
}

// Faculty is an instructor. Availability is a mask over the lecture catalog
// indexed as [period][day]; a laboratory block requires every overlapped lecture
// period to be available.
type Faculty struct {
	Id               uint64
	Name             string
	Department       string
	Availability     [][]bool
	MaxClassesPerDay int
	MaxWeeklyClasses int
	PreferredShift   Shift
	Subjects         []uint64
}

// Teaches reports whether the instructor is qualified for the subject.
func (f Faculty) Teaches(subject uint64) bool {
	return slices.Contains(f.Subjects, subject)
}

// AvailableAt checks the availability mask for a slot. Lab blocks span several
// lecture periods; all of them must be free.
func (f Faculty) AvailableAt(catalog SlotCatalog, slot TimeSlot) bool {
	if len(f.Availability) == 0 {
		return true // No mask means always available
	}
	period := 0
	for _, lecture := range catalog.Lecture {
		if lecture.Day != slot.Day {
			continue
		}
		if lecture.Overlaps(slot) {
			if period >= len(f.Availability) || int(slot.Day) >= len(f.Availability[period]) || !f.Availability[period][int(slot.Day)] {
				return false
			}
		}
		period++
	}
	return true
}

// Classroom is a plain teaching room for lecture sessions.
type Classroom struct {
	Id       uint64
	Name     string
	Capacity uint64
	RoomType string
}

// Laboratory is a specialized room for lab sessions. Setup and cleanup buffers
// are reserved immediately before and after any session placed there.
type Laboratory struct {
	Id                 uint64
	Name               string
	Capacity           uint64
	LabType            string
	Equipment          []string
	SafetyRequirements string
	RequiresTechnician bool
	SetupMinutes       int
	CleanupMinutes     int
}

// HasEquipment reports whether the lab's equipment set is a superset of required.
func (l Laboratory) HasEquipment(required []string) bool {
	for _, item := range required {
		if !slices.Contains(l.Equipment, item) {
			return false
		}
	}
	return true
}

// RoomKind discriminates the room variant of a RoomRef.
type RoomKind int

const (
	RoomClassroom RoomKind = iota
	RoomLaboratory
)

func (k RoomKind) String() string {
	if k == RoomLaboratory {
		return "laboratory"
	}
	return "classroom"
}

// RoomRef is a tagged reference into either the classroom or the laboratory pool.
type RoomRef struct {
	Kind RoomKind
	Id   uint64
}

// SessionKind distinguishes lecture requests from laboratory requests.
type SessionKind int

const (
	SessionLecture SessionKind = iota
	SessionLab
)

func (k SessionKind) String() string {
	if k == SessionLab {
		return "lab"
	}
	return "lecture"
}

// RoomRequirement describes what kind of room a session needs. LabType and
// Equipment are only meaningful for laboratory requirements.
type RoomRequirement struct {
	Kind      RoomKind
	LabType   string
	Equipment []string
}

// SessionRequest is one unit of required teaching: a subject taught to a batch,
// Occurrences times a week. A non-nil Fixed slot is externally pinned and must be
// honored verbatim by the engine.
type SessionRequest struct {
	Id          uint64
	Subject     uint64
	Batch       uint64
	Kind        SessionKind
	Occurrences int
	Duration    int
	Requirement RoomRequirement
	Fixed       *TimeSlot
}

// IsFixed reports whether the request's slot is externally mandated.
func (r SessionRequest) IsFixed() bool {
	return r.Fixed != nil
}
