// Package pipeline orchestrates a patch run: load the pristine asset
// state, merge every mod in order, then re-encode the merged state into
// storage.
//
// Asset types are independent. One asset failing to decode or merge is
// recorded and excluded from the rest of the run; the remaining types
// continue and are saved. The caller inspects the Report to decide what
// partial success means for it.
package pipeline

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cintagram/tbcpatch/assets"
	"github.com/cintagram/tbcpatch/modfile"
	"github.com/cintagram/tbcpatch/pack"
)

// Asset is one mergeable asset type. The assets package provides the
// implementations; the pipeline only drives the state machine.
type Asset interface {
	// Name identifies the asset type, usually its table name.
	Name() string
	// Load decodes the pristine state from storage.
	Load(st pack.Store) error
	// Merge applies one mod's snapshot, reporting whether the mod
	// touched this asset type at all.
	Merge(mod *modfile.Mod) (bool, error)
	// Save re-encodes the merged state into storage.
	Save(st pack.Store) error
	// Warnings returns non-fatal conditions collected so far.
	Warnings() []assets.Warning
}

// AssetError records one asset type failing during a run.
type AssetError struct {
	Asset string
	Mod   string // empty for load/save failures
	Err   error
}

// Error implements the error interface.
func (e *AssetError) Error() string {
	if e.Mod == "" {
		return fmt.Sprintf("pipeline: asset %s: %v", e.Asset, e.Err)
	}
	return fmt.Sprintf("pipeline: asset %s, mod %s: %v", e.Asset, e.Mod, e.Err)
}

// Unwrap exposes the underlying error.
func (e *AssetError) Unwrap() error { return e.Err }

// Report is the outcome of one run.
type Report struct {
	RunID    string
	Applied  int // mods applied
	Errors   []*AssetError
	Warnings []assets.Warning
}

// OK reports whether every asset type made it through the whole run.
func (r *Report) OK() bool { return len(r.Errors) == 0 }

// --------------------------------------------------------------------

// Pipeline runs the merge state machine over a fixed set of asset
// types. Every Run loads fresh snapshots into its assets, so a
// pipeline can be reused across runs but not concurrently.
type Pipeline struct {
	assets []Asset
	log    zerolog.Logger
}

// New returns a pipeline over the given asset types.
func New(log zerolog.Logger, as ...Asset) *Pipeline {
	return &Pipeline{assets: as, log: log}
}

// Run loads the pristine state from src, merges mods in the given
// order and saves the merged state into dst. Mods are strictly
// sequential; for contested fields the last applicant wins, disjoint
// fields are all retained.
func (p *Pipeline) Run(src, dst pack.Store, mods []*modfile.Mod) *Report {
	rep := &Report{RunID: uuid.NewString(), Applied: len(mods)}
	log := p.log.With().Str("run_id", rep.RunID).Logger()
	log.Info().Int("assets", len(p.assets)).Int("mods", len(mods)).Msg("patch run starting")

	failed := make(map[string]bool)

	for _, a := range p.assets {
		if err := a.Load(src); err != nil {
			log.Error().Str("asset", a.Name()).Err(err).Msg("load failed, asset excluded from run")
			rep.Errors = append(rep.Errors, &AssetError{Asset: a.Name(), Err: err})
			failed[a.Name()] = true
		}
	}

	for _, mod := range mods {
		for _, a := range p.assets {
			if failed[a.Name()] {
				continue
			}
			touched, err := a.Merge(mod)
			if err != nil {
				log.Error().Str("asset", a.Name()).Str("mod", mod.Meta.Name).
					Err(err).Msg("merge failed, asset excluded from run")
				rep.Errors = append(rep.Errors, &AssetError{Asset: a.Name(), Mod: mod.Meta.Name, Err: err})
				failed[a.Name()] = true
				continue
			}
			if touched {
				log.Debug().Str("asset", a.Name()).Str("mod", mod.Meta.Name).Msg("merged")
			}
		}
	}

	// nothing is persisted before every merge has run
	for _, a := range p.assets {
		if failed[a.Name()] {
			continue
		}
		if err := a.Save(dst); err != nil {
			log.Error().Str("asset", a.Name()).Err(err).Msg("save failed")
			rep.Errors = append(rep.Errors, &AssetError{Asset: a.Name(), Err: err})
		}
	}

	for _, a := range p.assets {
		rep.Warnings = append(rep.Warnings, a.Warnings()...)
	}
	for _, w := range rep.Warnings {
		log.Warn().Str("asset", w.Asset).Msg(w.Detail)
	}

	log.Info().Int("errors", len(rep.Errors)).Int("warnings", len(rep.Warnings)).Msg("patch run finished")
	return rep
}
