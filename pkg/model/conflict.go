package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ConflictKind enumerates the hard-constraint violation categories.
type ConflictKind int

const (
	ConflictFacultyDoubleBooking ConflictKind = iota
	ConflictRoomDoubleBooking
	ConflictBatchDoubleBooking
	ConflictFixedSlotMoved
	ConflictFacultyUnavailable
	ConflictRoomIncompatible
	ConflictCapacityExceeded
	ConflictMaxClassesPerDay
	ConflictWeeklyLoadExceeded
	ConflictShiftMismatch
)

var conflictKindNames = map[ConflictKind]string{
	ConflictFacultyDoubleBooking: "faculty-double-booking",
	ConflictRoomDoubleBooking:    "room-double-booking",
	ConflictBatchDoubleBooking:   "batch-double-booking",
	ConflictFixedSlotMoved:       "fixed-slot-moved",
	ConflictFacultyUnavailable:   "faculty-unavailable",
	ConflictRoomIncompatible:     "room-incompatible",
	ConflictCapacityExceeded:     "capacity-exceeded",
	ConflictMaxClassesPerDay:     "max-classes-per-day",
	ConflictWeeklyLoadExceeded:   "weekly-load-exceeded",
	ConflictShiftMismatch:        "shift-mismatch",
}

func (k ConflictKind) String() string {
	if name, ok := conflictKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ConflictKind(%d)", int(k))
}

// Severity grades how disruptive a conflict is.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "critical"
	}
}

// Suggestion is a structured remediation proposal. It describes a change the
// caller may apply; the detector never applies it.
type Suggestion struct {
	Action  string
	Entry   int
	Faculty *uint64
	Room    *RoomRef
	Slot    *TimeSlot
	Detail  string
}

// Conflict is one hard-constraint violation. Entries are indices into the
// offending schedule's entry list.
type Conflict struct {
	Id          uuid.UUID
	Kind        ConflictKind
	Severity    Severity
	Entries     []int
	Description string
	Suggestions []Suggestion
}

// conflictNamespace seeds deterministic conflict ids so detection stays
// idempotent: the same violation on the same schedule always produces the same id.
var conflictNamespace = uuid.MustParse("8f0e2f5e-14c6-4c59-9f6e-2cf1a6f0b7d3")

// ConflictID derives a stable id from the violation kind and the offending
// entry coordinates.
func ConflictID(kind ConflictKind, entries []int) uuid.UUID {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%d", int(kind))
	for _, entry := range entries {
		fmt.Fprintf(&builder, "|%d", entry)
	}
	return uuid.NewSHA1(conflictNamespace, []byte(builder.String()))
}
