// Package commands implements the accelbridge CLI command set.
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/teranos/accelbridge/backend"
	"github.com/teranos/accelbridge/config"
	"github.com/teranos/accelbridge/facade"
)

// buildFacade resolves configuration, probes for a backend, and wires the
// capability facade. Every command shares this path so CLI one-shots and the
// server observe identical selection behavior.
func buildFacade(logger *zap.SugaredLogger) (*facade.Facade, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	candidates := append([]string{}, cfg.Backend.Paths...)
	candidates = append(candidates, backend.DefaultCandidates()...)

	state := backend.NewState()
	locator := backend.NewLocator(candidates, cfg.Backend.VersionConstraint, state, logger)
	f := facade.New(locator.Backend(), state, cfg.Cache.GPUInfoTTL(), cfg.Cache.StatusTTL(), logger)
	return f, cfg, nil
}

// printJSON renders a one-shot command result to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
