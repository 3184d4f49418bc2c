package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Weights tunes the soft objectives of the fitness function. A zero weight
// disables its objective; the sum need not equal 1 because every sub-score is
// normalized before weighting.
type Weights struct {
	FacultyPreference    float64 `mapstructure:"faculty_preference" validate:"gte=0"`
	ClassroomUtilization float64 `mapstructure:"classroom_utilization" validate:"gte=0"`
	LabUtilization       float64 `mapstructure:"lab_utilization" validate:"gte=0"`
	WorkloadBalance      float64 `mapstructure:"workload_balance" validate:"gte=0"`
	CrossShiftSharing    float64 `mapstructure:"cross_shift_sharing" validate:"gte=0"`
}

// DefaultWeights keeps the relative priorities of the original optimization
// profile: utilization goals dominate, preference matching is a tie-breaker.
func DefaultWeights() Weights {
	return Weights{
		FacultyPreference:    0.3,
		ClassroomUtilization: 0.5,
		LabUtilization:       0.6,
		WorkloadBalance:      0.4,
		CrossShiftSharing:    0.3,
	}
}

// Config is the full engine configuration of one run. It is passed explicitly
// into every engine call; no process-wide defaults are consulted.
type Config struct {
	PopulationSize    int           `mapstructure:"population_size" validate:"gt=0"`
	Generations       int           `mapstructure:"generations" validate:"gt=0"`
	MutationRate      float64       `mapstructure:"mutation_rate" validate:"gte=0,lte=1"`
	CrossoverRate     float64       `mapstructure:"crossover_rate" validate:"gte=0,lte=1"`
	EliteCount        int           `mapstructure:"elite_count" validate:"gte=0"`
	TournamentSize    int           `mapstructure:"tournament_size" validate:"gt=0"`
	StagnationLimit   int           `mapstructure:"stagnation_limit" validate:"gte=0"`
	MaxAlternatives   int           `mapstructure:"max_alternatives" validate:"gt=0"`
	DistinctThreshold int           `mapstructure:"distinct_threshold" validate:"gte=0"`
	RandomSeed        int64         `mapstructure:"random_seed"`
	TimeBudget        time.Duration `mapstructure:"time_budget" validate:"gte=0"`
	Workers           int           `mapstructure:"workers" validate:"gte=0"`
	Weights           Weights       `mapstructure:"weights"`
}

// DefaultConfig mirrors the original engine defaults.
func DefaultConfig() Config {
	return Config{
		PopulationSize:    50,
		Generations:       100,
		MutationRate:      0.1,
		CrossoverRate:     0.8,
		EliteCount:        5,
		TournamentSize:    3,
		StagnationLimit:   25,
		MaxAlternatives:   3,
		DistinctThreshold: 2,
		Weights:           DefaultWeights(),
	}
}

// ConfigError identifies the invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (err *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration field %q: %s", err.Field, err.Reason)
}

var configValidator = validator.New()

// Validate rejects an invalid configuration before any search begins. The
// returned error is always a *ConfigError naming the first offending field.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			first := fieldErrors[0]
			return &ConfigError{
				Field:  first.StructNamespace(),
				Reason: fmt.Sprintf("failed %q check with value %v", first.Tag(), first.Value()),
			}
		}
		return err
	}
	if c.EliteCount > c.PopulationSize {
		return &ConfigError{Field: "EliteCount", Reason: "must not exceed population size"}
	}
	if c.TournamentSize > c.PopulationSize {
		return &ConfigError{Field: "TournamentSize", Reason: "must not exceed population size"}
	}
	return nil
}
