package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// Instance is the processed, validated input of one optimization run. It is
// treated as an immutable snapshot: the engine never mutates it and holds no
// state across runs.
type Instance struct {
	Subjects      []Subject
	Faculty       []Faculty
	Batches       []Batch
	Classrooms    []Classroom
	Laboratories  []Laboratory
	Requests      []SessionRequest
	Catalog       SlotCatalog
	ShiftBoundary int
}

// TotalOccurrences is the chromosome length of the instance: one gene per
// request occurrence.
func (inst *Instance) TotalOccurrences() int {
	return lo.SumBy(inst.Requests, func(request SessionRequest) int {
		return request.Occurrences
	})
}

// RawInstance is the wire-shaped input before validation, decodable from JSON.
type RawInstance struct {
	Subjects      []Subject
	Faculty       []Faculty
	Batches       []Batch
	Classrooms    []Classroom
	Laboratories  []Laboratory
	Requests      []SessionRequest
	Catalog       SlotCatalog
	ShiftBoundary int
}

// NewInstance validates referential integrity and positional ids, then freezes
// the input into an Instance. An empty catalog or a dangling reference is
// rejected eagerly rather than surfacing mid-search.
func NewInstance(raw RawInstance) (Instance, error) {
	inst := Instance{
		Subjects:      raw.Subjects,
		Faculty:       raw.Faculty,
		Batches:       raw.Batches,
		Classrooms:    raw.Classrooms,
		Laboratories:  raw.Laboratories,
		Requests:      raw.Requests,
		Catalog:       raw.Catalog,
		ShiftBoundary: raw.ShiftBoundary,
	}

	if len(inst.Catalog.Lecture) == 0 && len(inst.Catalog.Lab) == 0 {
		inst.Catalog = DefaultSlotCatalog()
	}
	if inst.ShiftBoundary == 0 {
		inst.ShiftBoundary = DefaultShiftBoundary
	}

	// Ids are positional so every lookup is a direct index
	if err := verifyPositionalIds(inst); err != nil {
		return Instance{}, err
	}

	for _, request := range inst.Requests {
		if request.Subject >= uint64(len(inst.Subjects)) {
			return Instance{}, fmt.Errorf("request %d references unknown subject %d", request.Id, request.Subject)
		}
		if request.Batch >= uint64(len(inst.Batches)) {
			return Instance{}, fmt.Errorf("request %d references unknown batch %d", request.Id, request.Batch)
		}
		if request.Occurrences <= 0 {
			return Instance{}, fmt.Errorf("request %d must have at least one weekly occurrence", request.Id)
		}
		if request.Kind == SessionLab && request.Requirement.Kind != RoomLaboratory {
			return Instance{}, fmt.Errorf("lab request %d must require a laboratory room", request.Id)
		}
		if request.Kind == SessionLecture && len(inst.Catalog.Lecture) == 0 {
			return Instance{}, fmt.Errorf("request %d needs a lecture slot but the lecture catalog is empty", request.Id)
		}
		if request.Kind == SessionLab && len(inst.Catalog.Lab) == 0 {
			return Instance{}, fmt.Errorf("request %d needs a lab slot but the lab catalog is empty", request.Id)
		}
	}

	for _, faculty := range inst.Faculty {
		for _, subject := range faculty.Subjects {
			if subject >= uint64(len(inst.Subjects)) {
				return Instance{}, fmt.Errorf("faculty %q references unknown subject %d", faculty.Name, subject)
			}
		}
	}

	return inst, nil
}

func verifyPositionalIds(inst Instance) error {
	for i, subject := range inst.Subjects {
		if subject.Id != uint64(i) {
			return fmt.Errorf("subject id %d must equal its position %d", subject.Id, i)
		}
	}
	for i, faculty := range inst.Faculty {
		if faculty.Id != uint64(i) {
			return fmt.Errorf("faculty id %d must equal its position %d", faculty.Id, i)
		}
	}
	for i, batch := range inst.Batches {
		if batch.Id != uint64(i) {
			return fmt.Errorf("batch id %d must equal its position %d", batch.Id, i)
		}
	}
	for i, room := range inst.Classrooms {
		if room.Id != uint64(i) {
			return fmt.Errorf("classroom id %d must equal its position %d", room.Id, i)
		}
	}
	for i, lab := range inst.Laboratories {
		if lab.Id != uint64(i) {
			return fmt.Errorf("laboratory id %d must equal its position %d", lab.Id, i)
		}
	}
	for i, request := range inst.Requests {
		if request.Id != uint64(i) {
			return fmt.Errorf("request id %d must equal its position %d", request.Id, i)
		}
	}
	return nil
}

// InstanceFromJSON decodes an instance file and validates it.
func InstanceFromJSON(file string) (Instance, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Instance{}, err
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return Instance{}, err
	}

	var raw RawInstance
	if err := mapstructure.Decode(inputJson, &raw); err != nil {
		return Instance{}, err
	}
	return NewInstance(raw)
}
