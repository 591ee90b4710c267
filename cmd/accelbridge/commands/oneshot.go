package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/teranos/accelbridge/bridge"
	"github.com/teranos/accelbridge/logger"
)

// NewStatusCmd returns the command that prints module status once.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show backend selection and call metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, _, err := buildFacade(logger.Logger)
			if err != nil {
				return err
			}
			return printJSON(f.Status())
		},
	}
}

// NewMemCmd returns the command that prints one memory snapshot.
func NewMemCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mem",
		Short: "Capture a memory snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, _, err := buildFacade(logger.Logger)
			if err != nil {
				return err
			}
			return printJSON(f.GetMemoryInfo(cmd.Context()))
		},
	}
}

// NewOptimizeCmd returns the command that runs one reclaim pass.
func NewOptimizeCmd() *cobra.Command {
	var level int
	var emergency bool

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Run a memory optimization pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, _, err := buildFacade(logger.Logger)
			if err != nil {
				return err
			}
			outcome := f.OptimizeMemory(cmd.Context(), bridge.ClampLevel(level), emergency)
			return printJSON(outcome)
		},
	}
	cmd.Flags().IntVar(&level, "level", int(bridge.LevelMedium), "optimization level 0-4 (none/low/medium/high/critical)")
	cmd.Flags().BoolVar(&emergency, "emergency", false, "request maximal reclamation aggressiveness")
	return cmd
}

// NewGPUCmd returns the command that prints GPU capability, with an optional
// one-shot computation.
func NewGPUCmd() *cobra.Command {
	var computationType string
	var data string

	cmd := &cobra.Command{
		Use:   "gpu",
		Short: "Show GPU capability or dispatch a computation",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, _, err := buildFacade(logger.Logger)
			if err != nil {
				return err
			}
			if computationType != "" {
				res := f.PerformGPUComputation(cmd.Context(), computationType, json.RawMessage(data))
				return printJSON(res)
			}
			return printJSON(f.GetGPUInfo(cmd.Context()))
		},
	}
	cmd.Flags().StringVar(&computationType, "compute", "", "dispatch a computation of this task type instead of querying capability")
	cmd.Flags().StringVar(&data, "data", "{}", "JSON payload for --compute")
	return cmd
}
