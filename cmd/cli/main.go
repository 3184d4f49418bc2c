package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/smartsched/timetable-engine/internal/csvio"
	"github.com/smartsched/timetable-engine/pkg/engine"
	"github.com/smartsched/timetable-engine/pkg/model"
)

func main() {
	jsonPathPtr := flag.String("input", "", "Path to a JSON instance file")
	csvDirPtr := flag.String("csv", "", "Path to a directory of CSV entity tables (alternative to -input)")
	configPathPtr := flag.String("config", "", "Path to an engine configuration file (JSON or YAML); defaults apply when empty")
	outFilePathPtr := flag.String("out", "", "Path to the output file; if empty, results are written to the standard output")
	verbosePtr := flag.Bool("verbose", false, "Log generation progress")
	flag.Parse()

	logger := buildLogger(*verbosePtr)
	defer logger.Sync()

	// Extract input
	var inst model.Instance
	var err error
	switch {
	case *jsonPathPtr != "" && *csvDirPtr != "":
		log.Fatal("specify either -input or -csv, not both")
	case *jsonPathPtr != "":
		inst, err = model.InstanceFromJSON(*jsonPathPtr)
	case *csvDirPtr != "":
		inst, err = csvio.LoadInstance(*csvDirPtr)
	default:
		log.Fatal("an input file or CSV directory must be specified")
	}
	if err != nil {
		log.Fatalf("cannot load instance: %v", err)
	}

	cfg, err := loadConfig(*configPathPtr)
	if err != nil {
		log.Fatalf("cannot load configuration: %v", err)
	}

	// Run the optimization
	optimizer := engine.New(engine.WithLogger(logger))
	result, err := optimizer.Optimize(context.Background(), inst, cfg)
	if err != nil {
		log.Fatalf("optimization failed: %v", err)
	}

	output, err := json.MarshalIndent(buildOutput(result), "", "  ")
	if err != nil {
		log.Fatalf("cannot marshal output: %v", err)
	}

	if *outFilePathPtr == "" {
		fmt.Println(string(output))
	} else if err := os.WriteFile(*outFilePathPtr, output, 0666); err != nil {
		log.Fatalf("cannot write output file: %v", err)
	}
}

func buildLogger(verbose bool) *zap.Logger {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	return logger
}

// loadConfig merges a configuration file and SCHED_-prefixed environment
// variables over the engine defaults.
func loadConfig(path string) (model.Config, error) {
	cfg := model.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("SCHED")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return model.Config{}, err
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

type alternativeOutput struct {
	Rank            int                   `json:"rank"`
	Fitness         float64               `json:"fitness"`
	HardViolations  int                   `json:"hard_violations"`
	Entries         []model.ScheduleEntry `json:"entries"`
	Conflicts       []model.Conflict      `json:"conflicts"`
	Utilization     model.Utilization     `json:"utilization"`
	ConflictSummary map[string]int        `json:"conflict_summary"`
}

type runOutput struct {
	Generations  int                 `json:"generations"`
	Evaluations  int                 `json:"evaluations"`
	Alternatives []alternativeOutput `json:"alternatives"`
}

func buildOutput(result *engine.Result) runOutput {
	output := runOutput{
		Generations: result.Generations,
		Evaluations: result.Evaluations,
	}
	for i, alternative := range result.Alternatives {
		summary := make(map[string]int, len(alternative.ConflictSummary))
		for kind, count := range alternative.ConflictSummary {
			summary[kind.String()] = count
		}
		output.Alternatives = append(output.Alternatives, alternativeOutput{
			Rank:            i + 1,
			Fitness:         alternative.Fitness,
			HardViolations:  alternative.HardViolations,
			Entries:         alternative.Schedule.Entries,
			Conflicts:       alternative.Conflicts,
			Utilization:     alternative.Utilization,
			ConflictSummary: summary,
		})
	}
	return output
}
