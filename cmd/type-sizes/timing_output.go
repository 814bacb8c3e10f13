package main

import (
	"fmt"
	"io"
	"time"

	"typesizes/internal/pipeline"
)

var stageVerbs = map[pipeline.Stage]string{
	pipeline.StageCompile: "compiled",
	pipeline.StageParse:   "parsed",
	pipeline.StageFilter:  "filtered",
	pipeline.StageSort:    "sorted",
	pipeline.StageTrim:    "trimmed",
}

func printStageTimings(out io.Writer, timings pipeline.Timings) error {
	if out == nil {
		return nil
	}
	for _, stage := range pipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		if _, err := fmt.Fprintf(out, "%s %.1f ms\n", stageVerbs[stage], toMillis(timings.Duration(stage))); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "total %.1f ms\n", toMillis(timings.Sum(pipeline.Stages...)))
	return err
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
