package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/smartsched/timetable-engine/pkg/engine"
	"github.com/smartsched/timetable-engine/pkg/model"
)

// Synthetic-instance benchmark for the optimizer: builds an instance of the
// requested size, runs one seeded optimization and prints a summary line per
// alternative.
func main() {
	subjectsPtr := flag.Int("subjects", 12, "Number of subjects")
	facultyPtr := flag.Int("faculty", 8, "Number of instructors")
	batchesPtr := flag.Int("batches", 4, "Number of batches")
	classroomsPtr := flag.Int("classrooms", 6, "Number of classrooms")
	labsPtr := flag.Int("labs", 2, "Number of laboratories")
	occurrencesPtr := flag.Int("occurrences", 2, "Weekly occurrences per request")
	seedPtr := flag.Int64("seed", 42, "Random seed")
	generationsPtr := flag.Int("generations", 100, "Generation budget")
	flag.Parse()

	inst, err := syntheticInstance(*subjectsPtr, *facultyPtr, *batchesPtr, *classroomsPtr, *labsPtr, *occurrencesPtr)
	if err != nil {
		log.Fatalf("cannot build synthetic instance: %v", err)
	}

	cfg := model.DefaultConfig()
	cfg.RandomSeed = *seedPtr
	cfg.Generations = *generationsPtr

	optimizer := engine.New()
	started := time.Now()
	result, err := optimizer.Optimize(context.Background(), inst, cfg)
	if err != nil {
		log.Fatalf("optimization failed: %v", err)
	}
	elapsed := time.Since(started)

	fmt.Printf("requests=%d genes=%d generations=%d evaluations=%d elapsed=%v\n",
		len(inst.Requests), inst.TotalOccurrences(), result.Generations, result.Evaluations, elapsed)
	for i, alternative := range result.Alternatives {
		fmt.Printf("alternative %d: fitness=%.4f conflicts=%d\n", i+1, alternative.Fitness, alternative.HardViolations)
	}
}

func syntheticInstance(subjects, faculty, batches, classrooms, labs, occurrences int) (model.Instance, error) {
	raw := model.RawInstance{Catalog: model.DefaultSlotCatalog()}

	for i := 0; i < subjects; i++ {
		raw.Subjects = append(raw.Subjects, model.Subject{Id: uint64(i), Name: fmt.Sprintf("subject-%d", i)})
	}
	for i := 0; i < faculty; i++ {
		teachable := make([]uint64, 0, subjects)
		for s := i % subjects; s < subjects; s += faculty {
			teachable = append(teachable, uint64(s))
		}
		raw.Faculty = append(raw.Faculty, model.Faculty{
			Id:               uint64(i),
			Name:             fmt.Sprintf("faculty-%d", i),
			MaxClassesPerDay: 4,
			MaxWeeklyClasses: 16,
			Subjects:         teachable,
		})
	}
	for i := 0; i < batches; i++ {
		raw.Batches = append(raw.Batches, model.Batch{Id: uint64(i), Name: fmt.Sprintf("batch-%d", i), Size: 30})
	}
	for i := 0; i < classrooms; i++ {
		raw.Classrooms = append(raw.Classrooms, model.Classroom{Id: uint64(i), Name: fmt.Sprintf("room-%d", i), Capacity: 40})
	}
	for i := 0; i < labs; i++ {
		raw.Laboratories = append(raw.Laboratories, model.Laboratory{
			Id:             uint64(i),
			Name:           fmt.Sprintf("lab-%d", i),
			Capacity:       30,
			LabType:        "computer",
			Equipment:      []string{"computer"},
			SetupMinutes:   15,
			CleanupMinutes: 15,
		})
	}

	id := uint64(0)
	for s := 0; s < subjects; s++ {
		batch := uint64(s % batches)
		raw.Requests = append(raw.Requests, model.SessionRequest{
			Id:          id,
			Subject:     uint64(s),
			Batch:       batch,
			Kind:        model.SessionLecture,
			Occurrences: occurrences,
			Duration:    60,
			Requirement: model.RoomRequirement{Kind: model.RoomClassroom},
		})
		id++
	}
	if labs > 0 {
		for s := 0; s < subjects/3; s++ {
			raw.Requests = append(raw.Requests, model.SessionRequest{
				Id:          id,
				Subject:     uint64(s),
				Batch:       uint64(s % batches),
				Kind:        model.SessionLab,
				Occurrences: 1,
				Duration:    120,
				Requirement: model.RoomRequirement{Kind: model.RoomLaboratory, LabType: "computer", Equipment: []string{"computer"}},
			})
			id++
		}
	}

	return model.NewInstance(raw)
}
