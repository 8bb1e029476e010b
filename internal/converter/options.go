package converter

import (
	"fmt"

	"github.com/roshanlimbu/png-to-svg/internal/tracer"
)

// TurnPolicy selects the tie-breaking rule for ambiguous path junctions.
type TurnPolicy string

const (
	TurnPolicyBlack    TurnPolicy = "black"
	TurnPolicyWhite    TurnPolicy = "white"
	TurnPolicyLeft     TurnPolicy = "left"
	TurnPolicyRight    TurnPolicy = "right"
	TurnPolicyMinority TurnPolicy = "minority"
	TurnPolicyMajority TurnPolicy = "majority"
)

// Defaults applied to unset option fields.
const (
	DefaultThreshold    = 128
	DefaultTurdSize     = 2
	DefaultAlphaMax     = 1.0
	DefaultOptTolerance = 0.2
	DefaultTurnPolicy   = TurnPolicyMinority
	DefaultSteps        = 4
)

// Options is the flat record of conversion tunables. Every field is
// optional; nil (or empty for TurnPolicy) falls back to the default. Fields
// are independent, there are no cross-field invariants.
type Options struct {
	Threshold    *int       `json:"threshold,omitempty"`
	TurdSize     *int       `json:"turdSize,omitempty"`
	AlphaMax     *float64   `json:"alphaMax,omitempty"`
	OptCurve     *bool      `json:"optCurve,omitempty"`
	OptTolerance *float64   `json:"optTolerance,omitempty"`
	TurnPolicy   TurnPolicy `json:"turnPolicy,omitempty"`
	BlackOnWhite *bool      `json:"blackOnWhite,omitempty"`
}

// Pointer helpers for building Options literals.
func Int(v int) *int           { return &v }
func Float(v float64) *float64 { return &v }
func Bool(v bool) *bool        { return &v }

// Merge returns o with every field that is set on overlay replaced by the
// overlay's value.
func (o Options) Merge(overlay Options) Options {
	if overlay.Threshold != nil {
		o.Threshold = overlay.Threshold
	}
	if overlay.TurdSize != nil {
		o.TurdSize = overlay.TurdSize
	}
	if overlay.AlphaMax != nil {
		o.AlphaMax = overlay.AlphaMax
	}
	if overlay.OptCurve != nil {
		o.OptCurve = overlay.OptCurve
	}
	if overlay.OptTolerance != nil {
		o.OptTolerance = overlay.OptTolerance
	}
	if overlay.TurnPolicy != "" {
		o.TurnPolicy = overlay.TurnPolicy
	}
	if overlay.BlackOnWhite != nil {
		o.BlackOnWhite = overlay.BlackOnWhite
	}
	return o
}

// resolve validates the set fields and fills defaults into a concrete
// tracer configuration.
func (o Options) resolve() (tracer.Config, error) {
	cfg := tracer.Config{
		Threshold:    DefaultThreshold,
		TurdSize:     DefaultTurdSize,
		AlphaMax:     DefaultAlphaMax,
		OptCurve:     true,
		OptTolerance: DefaultOptTolerance,
		TurnPolicy:   string(DefaultTurnPolicy),
		BlackOnWhite: true,
	}

	if o.Threshold != nil {
		if *o.Threshold < 0 || *o.Threshold > 255 {
			return cfg, fmt.Errorf("threshold must be between 0 and 255, got %d", *o.Threshold)
		}
		cfg.Threshold = uint8(*o.Threshold)
	}
	if o.TurdSize != nil {
		if *o.TurdSize < 0 {
			return cfg, fmt.Errorf("turdSize must not be negative, got %d", *o.TurdSize)
		}
		cfg.TurdSize = *o.TurdSize
	}
	if o.AlphaMax != nil {
		if *o.AlphaMax < 0 {
			return cfg, fmt.Errorf("alphaMax must not be negative, got %g", *o.AlphaMax)
		}
		cfg.AlphaMax = *o.AlphaMax
	}
	if o.OptCurve != nil {
		cfg.OptCurve = *o.OptCurve
	}
	if o.OptTolerance != nil {
		if *o.OptTolerance < 0 {
			return cfg, fmt.Errorf("optTolerance must not be negative, got %g", *o.OptTolerance)
		}
		cfg.OptTolerance = *o.OptTolerance
	}
	if o.TurnPolicy != "" {
		if !validTurnPolicy(o.TurnPolicy) {
			return cfg, fmt.Errorf("unknown turn policy %q (valid: %v)", o.TurnPolicy, tracer.TurnPolicies())
		}
		cfg.TurnPolicy = string(o.TurnPolicy)
	}
	if o.BlackOnWhite != nil {
		cfg.BlackOnWhite = *o.BlackOnWhite
	}

	return cfg, nil
}

func validTurnPolicy(p TurnPolicy) bool {
	for _, name := range tracer.TurnPolicies() {
		if string(p) == name {
			return true
		}
	}
	return false
}
