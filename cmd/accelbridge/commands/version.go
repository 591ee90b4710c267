package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/accelbridge/internal/version"
)

// NewVersionCmd returns the command that prints the build version.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the accelbridge version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("accelbridge %s\n", version.Version)
		},
	}
}
