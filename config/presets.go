package config

// Preset names a predefined engine-settings bundle for common campaign
// shapes, ported from the teacher's config_loader.go ConfigPreset /
// NewPresetConfig / ListPresets pattern and adapted from the teacher's
// landscape-category presets (unimodal, deceptive, narrow_valley, ...)
// to the DVA domain's actual knobs: how much wall-clock a campaign gets
// to spend.
type Preset string

const (
	// PresetQuick favors fast feedback over optimality: small
	// populations, few generations, suited to interactive exploration.
	PresetQuick Preset = "quick"
	// PresetDefault is a balanced, general-purpose setting.
	PresetDefault Preset = "default"
	// PresetThorough favors solution quality over wall-clock time:
	// large populations, many generations, suited to a final campaign
	// run before accepting a design.
	PresetThorough Preset = "thorough"
)

// EngineDefaults returns the PopSize/MaxGenerations pair a preset
// implies; callers merge these into the engine-specific Config they
// build, since each engine's Config embeds engine.RunConfig.
func EngineDefaults(preset Preset) (popSize, maxGenerations int) {
	switch preset {
	case PresetQuick:
		return 20, 50
	case PresetThorough:
		return 100, 500
	default:
		return 40, 150
	}
}

// ListPresets returns every preset with a human-readable description,
// ported from the teacher's ListPresets.
func ListPresets() map[Preset]string {
	return map[Preset]string{
		PresetQuick:    "small population, few generations - fast interactive feedback",
		PresetDefault:  "balanced population and generation count for general use",
		PresetThorough: "large population, many generations - best quality, slow",
	}
}
