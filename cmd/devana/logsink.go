package main

import (
	"github.com/rs/zerolog/log"

	"github.com/devana-go/dva"
)

// zerologSink implements dva.ProgressSink over the CLI's shared zerolog
// logger (main.go's console-writer setup), surfacing every engine's
// Text/Event reports as structured log lines instead of discarding them.
type zerologSink struct {
	engine string
}

func newZerologSink(engineName string) *zerologSink {
	return &zerologSink{engine: engineName}
}

func (s *zerologSink) Text(msg string) {
	log.Info().Str("engine", s.engine).Msg(msg)
}

func (s *zerologSink) Event(e dva.ProgressEvent) {
	log.Debug().
		Str("engine", s.engine).
		Int("generation", e.Generation).
		Float64("best_fitness", e.BestFitness).
		Float64("mean_fitness", e.MeanFitness).
		Float64("std_fitness", e.StdFitness).
		Float64("diversity", e.Diversity).
		Float64("eval_s", e.OpTimings.Evaluation).
		Msg("generation")
}
