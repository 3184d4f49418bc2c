// Package csvio loads scheduling instances from a directory of CSV entity
// tables, one file per entity kind.
package csvio

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"

	"github.com/smartsched/timetable-engine/pkg/model"
)

type subjectRow struct {
	Id         uint64 `csv:"id"`
	Name       string `csv:"name"`
	Code       string `csv:"code"`
	Department string `csv:"department"`
}

type facultyRow struct {
	Id               uint64 `csv:"id"`
	Name             string `csv:"name"`
	Department       string `csv:"department"`
	MaxClassesPerDay int    `csv:"max_classes_per_day"`
	MaxWeeklyClasses int    `csv:"max_weekly_classes"`
	PreferredShift   string `csv:"preferred_shift"`
	Subjects         string `csv:"subjects"`
	Unavailable      string `csv:"unavailable"`
}

type batchRow struct {
	Id    uint64 `csv:"id"`
	Name  string `csv:"name"`
	Size  uint64 `csv:"size"`
	Shift string `csv:"shift"`
}

type classroomRow struct {
	Id       uint64 `csv:"id"`
	Name     string `csv:"name"`
	Capacity uint64 `csv:"capacity"`
	RoomType string `csv:"room_type"`
}

type laboratoryRow struct {
	Id                 uint64 `csv:"id"`
	Name               string `csv:"name"`
	Capacity           uint64 `csv:"capacity"`
	LabType            string `csv:"lab_type"`
	Equipment          string `csv:"equipment"`
	SafetyRequirements string `csv:"safety_requirements"`
	RequiresTechnician bool   `csv:"requires_technician"`
	SetupMinutes       int    `csv:"setup_minutes"`
	CleanupMinutes     int    `csv:"cleanup_minutes"`
}

type requestRow struct {
	Id          uint64 `csv:"id"`
	Subject     uint64 `csv:"subject"`
	Batch       uint64 `csv:"batch"`
	Kind        string `csv:"kind"`
	Occurrences int    `csv:"occurrences"`
	Duration    int    `csv:"duration"`
	LabType     string `csv:"lab_type"`
	Equipment   string `csv:"equipment"`
	FixedDay    string `csv:"fixed_day"`
	FixedStart  string `csv:"fixed_start"`
	FixedEnd    string `csv:"fixed_end"`
}

// LoadInstance reads subjects.csv, faculty.csv, batches.csv, classrooms.csv,
// laboratories.csv and requests.csv from dir into a validated instance with the
// default slot catalog.
func LoadInstance(dir string) (model.Instance, error) {
	var subjects []subjectRow
	var faculty []facultyRow
	var batches []batchRow
	var classrooms []classroomRow
	var laboratories []laboratoryRow
	var requests []requestRow

	if err := readFile(filepath.Join(dir, "subjects.csv"), &subjects); err != nil {
		return model.Instance{}, err
	}
	if err := readFile(filepath.Join(dir, "faculty.csv"), &faculty); err != nil {
		return model.Instance{}, err
	}
	if err := readFile(filepath.Join(dir, "batches.csv"), &batches); err != nil {
		return model.Instance{}, err
	}
	if err := readFile(filepath.Join(dir, "classrooms.csv"), &classrooms); err != nil {
		return model.Instance{}, err
	}
	if err := readFile(filepath.Join(dir, "laboratories.csv"), &laboratories); err != nil {
		return model.Instance{}, err
	}
	if err := readFile(filepath.Join(dir, "requests.csv"), &requests); err != nil {
		return model.Instance{}, err
	}

	catalog := model.DefaultSlotCatalog()
	raw := model.RawInstance{Catalog: catalog}

	raw.Subjects = lo.Map(subjects, func(row subjectRow, _ int) model.Subject {
		return model.Subject{Id: row.Id, Name: row.Name, Code: row.Code, Department: row.Department}
	})
	raw.Batches = lo.Map(batches, func(row batchRow, _ int) model.Batch {
		return model.Batch{Id: row.Id, Name: row.Name, Size: row.Size, Shift: parseShift(row.Shift)}
	})
	raw.Classrooms = lo.Map(classrooms, func(row classroomRow, _ int) model.Classroom {
		return model.Classroom{Id: row.Id, Name: row.Name, Capacity: row.Capacity, RoomType: row.RoomType}
	})
	raw.Laboratories = lo.Map(laboratories, func(row laboratoryRow, _ int) model.Laboratory {
		return model.Laboratory{
			Id:                 row.Id,
			Name:               row.Name,
			Capacity:           row.Capacity,
			LabType:            row.LabType,
			Equipment:          splitList(row.Equipment),
			SafetyRequirements: row.SafetyRequirements,
			RequiresTechnician: row.RequiresTechnician,
			SetupMinutes:       row.SetupMinutes,
			CleanupMinutes:     row.CleanupMinutes,
		}
	})

	for _, row := range faculty {
		availability, err := parseAvailability(row.Unavailable, catalog)
		if err != nil {
			return model.Instance{}, fmt.Errorf("faculty %q: %w", row.Name, err)
		}
		teachable, err := parseIdList(row.Subjects)
		if err != nil {
			return model.Instance{}, fmt.Errorf("faculty %q: %w", row.Name, err)
		}
		raw.Faculty = append(raw.Faculty, model.Faculty{
			Id:               row.Id,
			Name:             row.Name,
			Department:       row.Department,
			Availability:     availability,
			MaxClassesPerDay: row.MaxClassesPerDay,
			MaxWeeklyClasses: row.MaxWeeklyClasses,
			PreferredShift:   parseShift(row.PreferredShift),
			Subjects:         teachable,
		})
	}

	for _, row := range requests {
		request, err := parseRequest(row)
		if err != nil {
			return model.Instance{}, err
		}
		raw.Requests = append(raw.Requests, request)
	}

	return model.NewInstance(raw)
}

func readFile(path string, out any) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := gocsv.UnmarshalFile(file, out); err != nil {
		return fmt.Errorf("cannot parse %v: %w", filepath.Base(path), err)
	}
	return nil
}

func parseRequest(row requestRow) (model.SessionRequest, error) {
	kind := model.SessionLecture
	requirement := model.RoomRequirement{Kind: model.RoomClassroom}
	if strings.EqualFold(row.Kind, "lab") {
		kind = model.SessionLab
		requirement = model.RoomRequirement{
			Kind:      model.RoomLaboratory,
			LabType:   row.LabType,
			Equipment: splitList(row.Equipment),
		}
	}

	request := model.SessionRequest{
		Id:          row.Id,
		Subject:     row.Subject,
		Batch:       row.Batch,
		Kind:        kind,
		Occurrences: row.Occurrences,
		Duration:    row.Duration,
		Requirement: requirement,
	}

	if row.FixedDay != "" {
		day, err := parseDay(row.FixedDay)
		if err != nil {
			return model.SessionRequest{}, fmt.Errorf("request %d: %w", row.Id, err)
		}
		start, err := parseClock(row.FixedStart)
		if err != nil {
			return model.SessionRequest{}, fmt.Errorf("request %d: %w", row.Id, err)
		}
		end, err := parseClock(row.FixedEnd)
		if err != nil {
			return model.SessionRequest{}, fmt.Errorf("request %d: %w", row.Id, err)
		}
		request.Fixed = &model.TimeSlot{Day: day, Start: start, End: end}
	}

	return request, nil
}

func parseShift(value string) model.Shift {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "morning":
		return model.ShiftMorning
	case "evening":
		return model.ShiftEvening
	default:
		return model.ShiftAny
	}
}

var dayByName = map[string]model.Day{
	"monday":    model.Monday,
	"tuesday":   model.Tuesday,
	"wednesday": model.Wednesday,
	"thursday":  model.Thursday,
	"friday":    model.Friday,
}

func parseDay(value string) (model.Day, error) {
	if day, ok := dayByName[strings.ToLower(strings.TrimSpace(value))]; ok {
		return day, nil
	}
	return 0, fmt.Errorf("unknown day %q", value)
}

// parseClock converts "HH:MM" to minutes from midnight.
func parseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed time %q", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed time %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed time %q", value)
	}
	return hours*60 + minutes, nil
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return lo.Map(strings.Split(value, ";"), func(item string, _ int) string {
		return strings.TrimSpace(item)
	})
}

func parseIdList(value string) ([]uint64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	ids := make([]uint64, 0)
	for _, item := range strings.Split(value, ";") {
		id, err := strconv.ParseUint(strings.TrimSpace(item), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed id list %q", value)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseAvailability builds a full availability mask and clears the listed
// "period:day" pairs. Period and day are zero-based indices.
func parseAvailability(unavailable string, catalog model.SlotCatalog) ([][]bool, error) {
	periods := catalog.PeriodsPerDay()
	mask := make([][]bool, periods)
	for period := range mask {
		mask[period] = make([]bool, model.TotalDays)
		for day := range mask[period] {
			mask[period][day] = true
		}
	}

	if strings.TrimSpace(unavailable) == "" {
		return mask, nil
	}
	for _, pair := range strings.Split(unavailable, ";") {
		parts := strings.Split(strings.TrimSpace(pair), ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed unavailable pair %q", pair)
		}
		period, err1 := strconv.Atoi(parts[0])
		day, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil || period < 0 || period >= periods || day < 0 || day >= model.TotalDays {
			return nil, fmt.Errorf("malformed unavailable pair %q", pair)
		}
		mask[period][day] = false
	}
	return mask, nil
}
