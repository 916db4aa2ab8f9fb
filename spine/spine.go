// Package spine derives typographic layout profiles from the three spine
// metrics (AD/PM/ESI) that accompany every document.
//
// The derivation is a pure function: the same metrics always produce the
// same profile, so profiles are never stored as authoritative data — they
// are recomputed from metrics wherever they are needed.
package spine

import (
	"fmt"
	"math"
)

// Metrics are the three caller-supplied spine scores, each in [0,100].
type Metrics struct {
	AD  float64 `json:"ad"`  // Activation Depth
	PM  float64 `json:"pm"`  // Progress Momentum
	ESI float64 `json:"esi"` // Emotional Signal Index
}

// Validate rejects metrics outside [0,100]. Callers at the boundary must
// validate before handing metrics to the pipeline; Derive itself clamps.
func (m Metrics) Validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{{"ad", m.AD}, {"pm", m.PM}, {"esi", m.ESI}} {
		if v.value < 0 || v.value > 100 || math.IsNaN(v.value) {
			return fmt.Errorf("spine: metric %s out of range [0,100]: %v", v.name, v.value)
		}
	}
	return nil
}

// PageSize identifies the page geometry for paginated output.
type PageSize string

const PageA4 PageSize = "A4"

// AccentWeight grades how loud the template accents render.
type AccentWeight string

const (
	AccentSubtle   AccentWeight = "subtle"
	AccentBalanced AccentWeight = "balanced"
	AccentBold     AccentWeight = "bold"
)

// LayoutHints are the concrete typography numbers encoders consume.
// All float fields are rounded to 2 decimals.
type LayoutHints struct {
	PageSize         PageSize     `json:"pageSize"`
	BodyFontSize     float64      `json:"bodyFontSize"`
	HeadingScale     float64      `json:"headingScale"`
	LineHeight       float64      `json:"lineHeight"`
	ParagraphSpacing float64      `json:"paragraphSpacing"`
	Margin           float64      `json:"margin"`
	AccentWeight     AccentWeight `json:"accentWeight"`
}

// Density classifies content packing driven by AD.
type Density string

const (
	DensityLight    Density = "light"
	DensityBalanced Density = "balanced"
	DensityDense    Density = "dense"
)

// Rhythm classifies pacing driven by PM.
type Rhythm string

const (
	RhythmMeasured Rhythm = "measured"
	RhythmSteady   Rhythm = "steady"
	RhythmKinetic  Rhythm = "kinetic"
)

// EmotionalMode classifies tone driven by ESI.
type EmotionalMode string

const (
	ModeCalm    EmotionalMode = "calm"
	ModeWarm    EmotionalMode = "warm"
	ModeIntense EmotionalMode = "intense"
)

// Profile is the derived layout profile for one set of metrics.
type Profile struct {
	Density       Density       `json:"density"`
	Rhythm        Rhythm        `json:"rhythm"`
	EmotionalMode EmotionalMode `json:"emotionalMode"`
	Layout        LayoutHints   `json:"layout"`
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Derive maps metrics to a Profile. Metrics are clamped to [0,100] first.
//
// accentWeight thresholds intentionally use the raw 0-100 esi value (70/35)
// while density/rhythm/emotionalMode use the normalized value (0.67/0.34);
// the two conventions disagree in the 67..70 window and both are part of
// the contract.
func Derive(m Metrics) Profile {
	ad := clamp(m.AD, 0, 100) / 100
	pm := clamp(m.PM, 0, 100) / 100
	esi := clamp(m.ESI, 0, 100) / 100

	layout := LayoutHints{
		PageSize:         PageA4,
		BodyFontSize:     round2(10.5 + (1-ad)*2),
		HeadingScale:     round2(1.22 + pm*0.35),
		LineHeight:       round2(1.35 + (1-pm)*0.3),
		ParagraphSpacing: round2(10 + (1-ad)*8 + esi*4),
		Margin:           round2(48 - pm*10),
		AccentWeight:     accentWeight(clamp(m.ESI, 0, 100)),
	}

	return Profile{
		Density:       grade(ad, DensityDense, DensityBalanced, DensityLight),
		Rhythm:        grade(pm, RhythmKinetic, RhythmSteady, RhythmMeasured),
		EmotionalMode: grade(esi, ModeIntense, ModeWarm, ModeCalm),
		Layout:        layout,
	}
}

func grade[T ~string](v float64, high, mid, low T) T {
	switch {
	case v > 0.67:
		return high
	case v > 0.34:
		return mid
	default:
		return low
	}
}

func accentWeight(rawESI float64) AccentWeight {
	switch {
	case rawESI > 70:
		return AccentBold
	case rawESI > 35:
		return AccentBalanced
	default:
		return AccentSubtle
	}
}

// Score collapses metrics into a single 0-100 figure (2 decimals):
// 35% AD, 40% PM, 25% ESI.
func Score(m Metrics) float64 {
	weighted := m.AD*0.35 + m.PM*0.4 + m.ESI*0.25
	return round2(clamp(weighted, 0, 100))
}
