package backend

import (
	"context"
	"os"
	"sync"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/teranos/accelbridge/errors"
)

// Environment override checked before any configured candidate path.
const backendPathEnv = "ACCELBRIDGE_BACKEND_PATH"

// DefaultCandidates returns the ordered accelerator module search paths:
// debug build artifact, release build artifact, packaged install.
func DefaultCandidates() []string {
	return []string{
		"accel/target/wasm32-unknown-unknown/debug/accel_backend.wasm",
		"accel/target/wasm32-unknown-unknown/release/accel_backend.wasm",
		"/usr/local/lib/accelbridge/accel_backend.wasm",
	}
}

// Locator performs backend discovery: it probes candidate paths in order and
// falls back to the software implementation when none yields a usable
// module. The probe runs at most once per process; the result is memoized.
type Locator struct {
	candidates []string
	constraint string
	state      *State
	logger     *zap.SugaredLogger

	once    sync.Once
	backend Backend
}

// NewLocator builds a locator over the given candidate paths. constraint is
// a semver range the native module's version must satisfy ("" disables the
// gate). state receives the selection outcome.
func NewLocator(candidates []string, constraint string, state *State, logger *zap.SugaredLogger) *Locator {
	return &Locator{
		candidates: candidates,
		constraint: constraint,
		state:      state,
		logger:     logger,
	}
}

// Backend returns the selected backend, probing on first call. It never
// fails: exhausting every candidate selects the fallback.
func (l *Locator) Backend() Backend {
	l.once.Do(l.probe)
	return l.backend
}

func (l *Locator) probe() {
	ctx := context.Background()

	paths := l.candidates
	if override := os.Getenv(backendPathEnv); override != "" {
		paths = append([]string{override}, paths...)
	}

	var lastErr error
	for _, path := range paths {
		b, err := l.tryCandidate(ctx, path)
		if err != nil {
			// Missing candidates are expected; only real load failures are
			// worth surfacing
			if !errors.Is(err, os.ErrNotExist) {
				l.logger.Warnw("Accel candidate rejected",
					"path", path,
					"error", err)
				lastErr = err
			}
			continue
		}

		l.logger.Infow("Native accel backend loaded",
			"path", path,
			"version", b.Version())
		l.backend = b
		l.state.recordSelection(b, path, nil)
		return
	}

	fb := NewFallback(l.logger)
	l.logger.Infow("No native accel backend available, using software fallback",
		"candidates", len(paths))
	l.backend = fb
	l.state.recordSelection(fb, "", lastErr)
}

// tryCandidate loads and validates a single candidate path.
func (l *Locator) tryCandidate(ctx context.Context, path string) (*Native, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read %s", path), ErrBackendLoad)
	}

	n, err := NewNative(ctx, wasmBytes, l.logger)
	if err != nil {
		return nil, err
	}

	if err := l.checkVersion(n.Version()); err != nil {
		n.Close()
		return nil, errors.Mark(err, ErrBackendLoad)
	}

	return n, nil
}

// checkVersion validates the module's reported version against the
// configured constraint. Modules that report no version pass only when no
// constraint is set.
func (l *Locator) checkVersion(version string) error {
	if l.constraint == "" {
		return nil
	}
	if version == "" {
		return errors.Newf("module reports no version, constraint %q requires one", l.constraint)
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrapf(err, "invalid module version %q", version)
	}
	c, err := semver.NewConstraint(l.constraint)
	if err != nil {
		return errors.Wrapf(err, "invalid version constraint %q", l.constraint)
	}
	if !c.Check(v) {
		return errors.Newf("module version %s does not satisfy %s", version, l.constraint)
	}
	return nil
}
