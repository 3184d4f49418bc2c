package engine

import (
	"encoding/binary"
	"hash/fnv"
	"log"
	"math/rand"

	"github.com/samber/lo"

	"github.com/smartsched/timetable-engine/pkg/model"
)

// gene encodes the assignment of one session occurrence: a slot, an instructor
// and a room. Fixed genes carry an externally pinned slot and are never sampled,
// crossed or mutated.
type gene struct {
	Slot    model.TimeSlot
	Faculty uint64
	Room    model.RoomRef
	Fixed   bool
}

// genePosition maps a chromosome index back to its request and occurrence.
type genePosition struct {
	request    int
	occurrence int
}

func buildLayout(inst *model.Instance) []genePosition {
	layout := make([]genePosition, 0, inst.TotalOccurrences())
	for i, request := range inst.Requests {
		for occurrence := 0; occurrence < request.Occurrences; occurrence++ {
			layout = append(layout, genePosition{request: i, occurrence: occurrence})
		}
	}
	return layout
}

// individual is one candidate schedule in the population.
type individual struct {
	genes   []gene
	fitness float64
}

func (ind individual) clone() individual {
	genes := make([]gene, len(ind.genes))
	copy(genes, ind.genes)
	return individual{genes: genes, fitness: ind.fitness}
}

// hash folds the chromosome into a 64-bit key for the fitness cache.
func (ind individual) hash() uint64 {
	hasher := fnv.New64a()
	var buffer [8]byte
	write := func(value uint64) {
		binary.LittleEndian.PutUint64(buffer[:], value)
		hasher.Write(buffer[:])
	}
	for _, g := range ind.genes {
		write(uint64(g.Slot.Day))
		write(uint64(g.Slot.Start))
		write(uint64(g.Slot.End))
		write(g.Faculty)
		write(uint64(g.Room.Kind))
		write(g.Room.Id)
	}
	return hasher.Sum64()
}

// hammingDistance counts differing genes between two chromosomes.
func hammingDistance(a, b individual) int {
	distance := 0
	for i := range a.genes {
		if a.genes[i] != b.genes[i] {
			distance++
		}
	}
	return distance
}

// candidatePool holds the statically compatible assignment components of one
// request, plus relaxed fallbacks used when the compatible set is empty.
type candidatePool struct {
	slots           []model.TimeSlot
	faculty         []uint64
	fallbackFaculty []uint64
	rooms           []model.RoomRef
	fallbackRooms   []model.RoomRef
}

// sampler draws legal genes for the randomized-greedy initialization and for
// mutation. Compatibility is precomputed per request so sampling stays cheap.
type sampler struct {
	inst   *model.Instance
	layout []genePosition
	pools  []candidatePool
}

func newSampler(inst *model.Instance, layout []genePosition) *sampler {
	pools := make([]candidatePool, len(inst.Requests))
	for i, request := range inst.Requests {
		pools[i] = buildPool(inst, request)
	}
	return &sampler{inst: inst, layout: layout, pools: pools}
}

func buildPool(inst *model.Instance, request model.SessionRequest) candidatePool {
	pool := candidatePool{}
	batch := inst.Batches[request.Batch]

	//** Slots: the pool for the request's kind, narrowed to the batch shift
	catalog := inst.Catalog.ForKind(request.Kind)
	pool.slots = lo.Filter(catalog, func(slot model.TimeSlot, _ int) bool {
		return batch.Shift.Matches(slot.ShiftOf(inst.ShiftBoundary))
	})
	if len(pool.slots) == 0 {
		pool.slots = catalog
	}

	//** Faculty: qualified instructors first, anyone as a last resort
	pool.fallbackFaculty = lo.Map(inst.Faculty, func(faculty model.Faculty, _ int) uint64 {
		return faculty.Id
	})
	pool.faculty = lo.FilterMap(inst.Faculty, func(faculty model.Faculty, _ int) (uint64, bool) {
		return faculty.Id, faculty.Teaches(request.Subject)
	})

	//** Rooms: matching variant, type, equipment and capacity; relax capacity
	//** first, then fall over to the other variant so infeasible requests still
	//** get placed and surface as conflicts instead of failing the run
	switch request.Kind {
	case model.SessionLecture:
		for _, room := range inst.Classrooms {
			ref := model.RoomRef{Kind: model.RoomClassroom, Id: room.Id}
			pool.fallbackRooms = append(pool.fallbackRooms, ref)
			if room.Capacity >= batch.Size {
				pool.rooms = append(pool.rooms, ref)
			}
		}
		if len(pool.fallbackRooms) == 0 {
			for _, lab := range inst.Laboratories {
				pool.fallbackRooms = append(pool.fallbackRooms, model.RoomRef{Kind: model.RoomLaboratory, Id: lab.Id})
			}
		}
	case model.SessionLab:
		for _, lab := range inst.Laboratories {
			if request.Requirement.LabType != "" && lab.LabType != request.Requirement.LabType {
				continue
			}
			if !lab.HasEquipment(request.Requirement.Equipment) {
				continue
			}
			ref := model.RoomRef{Kind: model.RoomLaboratory, Id: lab.Id}
			pool.fallbackRooms = append(pool.fallbackRooms, ref)
			if lab.Capacity >= batch.Size {
				pool.rooms = append(pool.rooms, ref)
			}
		}
		if len(pool.fallbackRooms) == 0 {
			// No laboratory satisfies the requirement at all: park the session
			// in a classroom rather than a wrong lab, the detector will flag it
			for _, room := range inst.Classrooms {
				pool.fallbackRooms = append(pool.fallbackRooms, model.RoomRef{Kind: model.RoomClassroom, Id: room.Id})
			}
			if len(pool.fallbackRooms) == 0 {
				for _, lab := range inst.Laboratories {
					pool.fallbackRooms = append(pool.fallbackRooms, model.RoomRef{Kind: model.RoomLaboratory, Id: lab.Id})
				}
			}
		}
	}

	return pool
}

// sample draws one legal gene for the request, preferring the compatible sets
// and falling back to any legal combination when a set is empty.
func (s *sampler) sample(rng *rand.Rand, request int) gene {
	req := s.inst.Requests[request]
	pool := s.pools[request]

	g := gene{Fixed: req.IsFixed()}
	if req.IsFixed() {
		g.Slot = *req.Fixed
	} else {
		g.Slot = pool.slots[rng.Intn(len(pool.slots))]
	}
	g.Faculty = pickUint64(rng, pool.faculty, pool.fallbackFaculty)
	g.Room = pickRoom(rng, pool.rooms, pool.fallbackRooms)
	return g
}

func pickUint64(rng *rand.Rand, preferred, fallback []uint64) uint64 {
	if len(preferred) > 0 {
		return preferred[rng.Intn(len(preferred))]
	}
	if len(fallback) > 0 {
		return fallback[rng.Intn(len(fallback))]
	}
	return 0
}

func pickRoom(rng *rand.Rand, preferred, fallback []model.RoomRef) model.RoomRef {
	if len(preferred) > 0 {
		return preferred[rng.Intn(len(preferred))]
	}
	if len(fallback) > 0 {
		return fallback[rng.Intn(len(fallback))]
	}
	return model.RoomRef{}
}

// randomIndividual builds one chromosome by randomized greedy assignment.
func (s *sampler) randomIndividual(rng *rand.Rand) individual {
	genes := make([]gene, len(s.layout))
	for i, position := range s.layout {
		genes[i] = s.sample(rng, position.request)
	}
	return individual{genes: genes}
}

// mutate returns a new individual with each unfixed gene resampled with the
// given probability. The receiver individual is left untouched.
func (s *sampler) mutate(rng *rand.Rand, ind individual, rate float64) individual {
	mutated := ind.clone()
	for i, position := range s.layout {
		if mutated.genes[i].Fixed {
			continue
		}
		if rng.Float64() < rate {
			mutated.genes[i] = s.sample(rng, position.request)
		}
	}
	return mutated
}

// crossover mates two parents with uniform gene-level crossover, producing two
// children. Fixed genes are copied unchanged. With probability 1-rate the
// parents pass through unchanged.
func crossover(rng *rand.Rand, a, b individual, rate float64) (individual, individual) {
	first, second := a.clone(), b.clone()
	if rng.Float64() > rate {
		return first, second
	}
	for i := range first.genes {
		if first.genes[i].Fixed {
			continue
		}
		if rng.Float64() < 0.5 {
			first.genes[i], second.genes[i] = second.genes[i], first.genes[i]
		}
	}
	return first, second
}

// tournament samples k individuals uniformly and keeps the fittest. Ties go to
// the earlier population index so selection stays deterministic.
func tournament(rng *rand.Rand, population []individual, size int) individual {
	winner := rng.Intn(len(population))
	for sampled := 1; sampled < size; sampled++ {
		challenger := rng.Intn(len(population))
		if population[challenger].fitness > population[winner].fitness ||
			(population[challenger].fitness == population[winner].fitness && challenger < winner) {
			winner = challenger
		}
	}
	return population[winner]
}

// assertFixedGenes fails loudly if a pinned gene was moved by an operator. This
// is a programming error, not an input condition.
func (s *sampler) assertFixedGenes(population []individual) {
	for _, ind := range population {
		for i, position := range s.layout {
			request := s.inst.Requests[position.request]
			if !request.IsFixed() {
				continue
			}
			if !ind.genes[i].Fixed || ind.genes[i].Slot != *request.Fixed {
				log.Panicf("fixed gene for request %d was moved to %v", request.Id, ind.genes[i].Slot)
			}
		}
	}
}
