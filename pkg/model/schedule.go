package model

// ScheduleEntry is the atomic output unit: one occurrence of a session request
// assigned to a slot, an instructor and a room.
type ScheduleEntry struct {
	Request    uint64
	Occurrence int
	Slot       TimeSlot
	Faculty    uint64
	Room       RoomRef
	Shift      Shift
	Fixed      bool
}

// Schedule is an ordered collection of entries covering every session request
// exactly Occurrences times. Entries keep their construction order so conflict
// reports can reference them by index.
type Schedule struct {
	Entries []ScheduleEntry
}

// OccupiedWindow is the time window an entry actually blocks in its room. For
// laboratory sessions the setup and cleanup buffers extend the slot on both sides.
func (s Schedule) OccupiedWindow(inst *Instance, entry ScheduleEntry) TimeSlot {
	window := entry.Slot
	if entry.Room.Kind == RoomLaboratory && int(entry.Room.Id) < len(inst.Laboratories) {
		lab := inst.Laboratories[entry.Room.Id]
		window.Start -= lab.SetupMinutes
		window.End += lab.CleanupMinutes
	}
	return window
}

// Utilization summarizes occupied-slot fractions per room and per instructor.
type Utilization struct {
	Classrooms   map[uint64]float64
	Laboratories map[uint64]float64
	Faculty      map[uint64]float64
}

// Utilization computes occupied-slot fractions against the instance catalogs.
// Classrooms and faculty are measured against the lecture pool, laboratories
// against the lab pool.
func (s Schedule) Utilization(inst *Instance) Utilization {
	utilization := Utilization{
		Classrooms:   make(map[uint64]float64, len(inst.Classrooms)),
		Laboratories: make(map[uint64]float64, len(inst.Laboratories)),
		Faculty:      make(map[uint64]float64, len(inst.Faculty)),
	}

	lectureSlots := len(inst.Catalog.Lecture)
	labSlots := len(inst.Catalog.Lab)

	for _, room := range inst.Classrooms {
		utilization.Classrooms[room.Id] = 0
	}
	for _, lab := range inst.Laboratories {
		utilization.Laboratories[lab.Id] = 0
	}
	for _, faculty := range inst.Faculty {
		utilization.Faculty[faculty.Id] = 0
	}

	for _, entry := range s.Entries {
		switch entry.Room.Kind {
		case RoomClassroom:
			if lectureSlots > 0 {
				utilization.Classrooms[entry.Room.Id] += 1 / float64(lectureSlots)
			}
		case RoomLaboratory:
			if labSlots > 0 {
				utilization.Laboratories[entry.Room.Id] += 1 / float64(labSlots)
			}
		}
		if lectureSlots > 0 {
			utilization.Faculty[entry.Faculty] += 1 / float64(lectureSlots)
		}
	}

	return utilization
}
