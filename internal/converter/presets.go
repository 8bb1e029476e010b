package converter

import "errors"

// ErrUnknownPreset is returned for preset names outside the fixed table.
var ErrUnknownPreset = errors.New("unknown preset")

// presets are fixed option bundles tuned for a class of source images.
var presets = map[string]Options{
	"logo": {
		Threshold:    Int(128),
		TurdSize:     Int(5),
		AlphaMax:     Float(1.0),
		OptTolerance: Float(0.4),
		TurnPolicy:   TurnPolicyMinority,
	},
	"photo": {
		Threshold:    Int(140),
		TurdSize:     Int(2),
		AlphaMax:     Float(1.3),
		OptTolerance: Float(0.2),
		TurnPolicy:   TurnPolicyMajority,
	},
	"drawing": {
		Threshold:    Int(100),
		TurdSize:     Int(1),
		AlphaMax:     Float(0.8),
		OptTolerance: Float(0.2),
		TurnPolicy:   TurnPolicyMinority,
	},
	"text": {
		Threshold:    Int(160),
		TurdSize:     Int(1),
		AlphaMax:     Float(0.5),
		OptTolerance: Float(0.1),
		TurnPolicy:   TurnPolicyBlack,
	},
}

// PresetOptions looks up a named preset. Unknown names fail loudly rather
// than degrading to an empty option set.
func PresetOptions(name string) (Options, error) {
	opts, ok := presets[name]
	if !ok {
		return Options{}, ErrUnknownPreset
	}
	return opts, nil
}

// Presets returns a copy of the full preset table.
func Presets() map[string]Options {
	out := make(map[string]Options, len(presets))
	for name, opts := range presets {
		out[name] = opts
	}
	return out
}

// ValidPresets lists the accepted preset names.
func ValidPresets() []string {
	return []string{"logo", "photo", "drawing", "text"}
}
