// Package config loads and saves the CLI/config surface spec.md §6
// describes: a single JSON document carrying the main-system
// parameters, per-coordinate bounds, per-mass targets/weights, the
// frequency sweep, and engine-specific settings. Adapted from the
// teacher's config_loader.go (LoadConfigFromFile/SaveConfigToFile/
// ValidateConfig/ConfigPreset are the direct model; JSON tags follow
// the teacher's snake_case convention from types.go's Config).
package config

import (
	"encoding/json"
	"os"

	"github.com/devana-go/dva"
	"github.com/devana-go/dva/dvaerr"
)

// FrequencyConfig is the `frequency:{start,end,points}` document
// fragment (spec.md §6).
type FrequencyConfig struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Points int     `json:"points"`
}

// ToGrid converts the document fragment to the internal FrequencyGrid.
func (f FrequencyConfig) ToGrid() dva.FrequencyGrid {
	return dva.FrequencyGrid{Start: f.Start, End: f.End, N: f.Points}
}

// BoundsConfig is the per-coordinate `bounds` document fragment: one
// [low, high] pair per DVA parameter, in ParameterNames order. A
// degenerate [v, v] pair marks the coordinate fixed (spec.md §4.7's
// sobol_mixin.py convention of a fixed parameter as a zero-width
// interval).
type BoundsConfig [][2]float64

// ToBounds converts the document fragment into dva.Bounds and the
// derived dva.FixedMask.
func (b BoundsConfig) ToBounds() (dva.Bounds, dva.FixedMask, error) {
	var bounds dva.Bounds
	var fixed dva.FixedMask
	if len(b) != dva.NumDVAParams {
		return bounds, fixed, dvaerr.New(dvaerr.InvalidInput, "expected %d bound pairs, got %d", dva.NumDVAParams, len(b))
	}
	for i, pair := range b {
		bounds.Low[i], bounds.High[i] = pair[0], pair[1]
		if pair[0] == pair[1] {
			fixed[i] = true
		}
	}
	return bounds, fixed, nil
}

// EngineConfig is the engine-specific settings document fragment
// (spec.md §6 `engine:{...}`), carried as a raw map so each engine
// package can decode the fields it understands without this package
// needing to know every engine's shape.
type EngineConfig map[string]any

// Document is the full CLI config document (spec.md §6):
// `{main_params, bounds, targets, weights, frequency:{...}, engine:{...}}`.
type Document struct {
	MainParams dva.MainParams             `json:"main_params"`
	Bounds     BoundsConfig               `json:"bounds"`
	Targets    [dva.NumMasses]dva.Targets `json:"targets"`
	Weights    [dva.NumMasses]dva.Weights `json:"weights"`
	Frequency  FrequencyConfig            `json:"frequency"`
	Engine     EngineConfig               `json:"engine"`
}

// MassTargets assembles the per-mass dva.MassTargets the frf package
// expects from the document's parallel Targets/Weights arrays.
func (d Document) MassTargets() [dva.NumMasses]dva.MassTargets {
	var out [dva.NumMasses]dva.MassTargets
	for i := 0; i < dva.NumMasses; i++ {
		out[i] = dva.MassTargets{Targets: d.Targets[i], Weights: d.Weights[i]}
	}
	return out
}

// Load reads and validates a config document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dvaerr.Wrap(dvaerr.InvalidInput, err, "failed to read config file %q", path)
	}
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, dvaerr.Wrap(dvaerr.InvalidInput, err, "failed to parse config file %q", path)
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Save writes a config document to path as indented JSON.
func Save(doc *Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return dvaerr.Wrap(dvaerr.InvalidInput, err, "failed to marshal config")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return dvaerr.Wrap(dvaerr.InvalidInput, err, "failed to write config file %q", path)
	}
	return nil
}

// Validate checks the invariants the rest of the pipeline assumes:
// a well-formed main_params tuple, exactly NumDVAParams bound pairs
// with low <= high, and a well-formed frequency grid.
func Validate(doc *Document) error {
	if doc == nil {
		return dvaerr.New(dvaerr.InvalidInput, "config document is nil")
	}
	if err := doc.MainParams.Validate(); err != nil {
		return err
	}
	if _, _, err := doc.Bounds.ToBounds(); err != nil {
		return err
	}
	for i, pair := range doc.Bounds {
		if pair[0] > pair[1] {
			return dvaerr.New(dvaerr.InvalidInput, "bounds[%d]: low %g must be <= high %g", i, pair[0], pair[1])
		}
	}
	if err := doc.Frequency.ToGrid().Validate(); err != nil {
		return err
	}
	return nil
}
