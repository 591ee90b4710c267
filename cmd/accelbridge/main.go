package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/accelbridge/cmd/accelbridge/commands"
	"github.com/teranos/accelbridge/logger"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "accelbridge",
	Short: "accelbridge - native capability bridge for memory and GPU operations",
	Long: `accelbridge - native capability bridge for memory and GPU operations.

accelbridge brokers access to an optional native acceleration backend with
automatic fallback to a pure-software implementation. Every operation is
total: backend failures degrade to explicit availability flags instead of
errors.

Examples:
  accelbridge serve              # Start the bridge HTTP server
  accelbridge status             # Show backend selection and metrics
  accelbridge mem                # Capture a memory snapshot
  accelbridge optimize --level 3 # Run a high-intensity reclaim pass
  accelbridge gpu                # Show GPU capability`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(jsonOutput); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit logs as JSON")

	rootCmd.AddCommand(
		commands.NewServeCmd(),
		commands.NewStatusCmd(),
		commands.NewMemCmd(),
		commands.NewOptimizeCmd(),
		commands.NewGPUCmd(),
		commands.NewVersionCmd(),
	)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
