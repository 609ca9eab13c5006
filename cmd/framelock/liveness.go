package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/framelock/capture-engine/internal/landmark"
	"github.com/framelock/capture-engine/internal/liveness"
)

type livenessSummary struct {
	Ticks       int    `json:"ticks"`
	Stage       string `json:"stage"`
	Completed   bool   `json:"completed"`
	Triggered   bool   `json:"triggered"`
	TriggerTick int    `json:"trigger_tick,omitempty"`
}

func newLivenessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "liveness <replay.jsonl>",
		Short: "Replay a landmark recording through the head-turn challenge",
		Long: `liveness drives the challenge state machine with a recorded landmark
stream, one JSON result per line. Stage transitions and the capture
trigger are traced to stderr; the final verdict is printed as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLiveness(cmd, args[0])
		},
	}
}

func runLiveness(cmd *cobra.Command, path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	src, err := landmark.NewReplayFile(path)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()
	if src.Len() == 0 {
		return fmt.Errorf("%s holds no landmark frames", path)
	}

	machine := liveness.NewMachine(cfg.Liveness)
	trace := cmd.ErrOrStderr()

	clock := time.Now()
	prev := machine.Stage()
	summary := livenessSummary{Ticks: src.Len()}
	for i := 0; i < src.Len(); i++ {
		res, err := src.Landmarks(nil)
		if err != nil {
			return fmt.Errorf("replay tick %d: %w", i, err)
		}

		st := machine.Update(res, clock)
		clock = clock.Add(cfg.TickInterval)

		if st.Stage != prev {
			fmt.Fprintf(trace, "tick %4d  stage %s -> %s\n", i, prev, st.Stage)
			prev = st.Stage
		}
		if st.Trigger {
			fmt.Fprintf(trace, "tick %4d  challenge complete, face capture triggered\n", i)
			summary.Triggered = true
			summary.TriggerTick = i
		}
	}

	summary.Stage = machine.Stage().String()
	summary.Completed = machine.Completed()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
