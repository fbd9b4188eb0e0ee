package model

import "fmt"

// The window tables are discrete engineering data, not formulas. Missing
// combinations are configuration errors, not zero values.

// frameClass folds the five frame materials into the three classes the
// transmission table distinguishes.
type frameClass int

const (
	frameBare frameClass = iota
	frameMetal
	frameWoodLike
)

func classOfFrame(f WindowFrame) (frameClass, error) {
	switch f {
	case FrameNone:
		return frameBare, nil
	case FrameAluminum, FrameThermalBreak:
		return frameMetal, nil
	case FrameWood, FrameInsulated:
		return frameWoodLike, nil
	}
	return 0, fmt.Errorf("unknown window frame %q", f)
}

type transmissionKey struct {
	layers    int
	treatment GlazingTreatment
	class     frameClass
}

var windowTransmissionTable = map[transmissionKey]float64{
	{1, TreatmentClear, frameBare}:          0.86,
	{1, TreatmentClear, frameMetal}:         0.75,
	{1, TreatmentClear, frameWoodLike}:      0.64,
	{1, TreatmentABS, frameBare}:            0.73,
	{1, TreatmentABS, frameMetal}:           0.64,
	{1, TreatmentABS, frameWoodLike}:        0.54,
	{1, TreatmentReflective, frameBare}:     0.31,
	{1, TreatmentReflective, frameMetal}:    0.28,
	{1, TreatmentReflective, frameWoodLike}: 0.24,

	{2, TreatmentClear, frameBare}:          0.76,
	{2, TreatmentClear, frameMetal}:         0.67,
	{2, TreatmentClear, frameWoodLike}:      0.57,
	{2, TreatmentABS, frameBare}:            0.62,
	{2, TreatmentABS, frameMetal}:           0.55,
	{2, TreatmentABS, frameWoodLike}:        0.46,
	{2, TreatmentReflective, frameBare}:     0.29,
	{2, TreatmentReflective, frameMetal}:    0.27,
	{2, TreatmentReflective, frameWoodLike}: 0.22,

	{3, TreatmentClear, frameBare}:          0.68,
	{3, TreatmentClear, frameMetal}:         0.60,
	{3, TreatmentClear, frameWoodLike}:      0.51,
	{3, TreatmentABS, frameBare}:            0.34,
	{3, TreatmentABS, frameMetal}:           0.31,
	{3, TreatmentABS, frameWoodLike}:        0.26,
	{3, TreatmentReflective, frameBare}:     0.34,
	{3, TreatmentReflective, frameMetal}:    0.31,
	{3, TreatmentReflective, frameWoodLike}: 0.26,
}

// windowTransmission returns the fraction of incident solar radiation
// transmitted through the glazing assembly.
func windowTransmission(layers int, t GlazingTreatment, f WindowFrame) (float64, error) {
	class, err := classOfFrame(f)
	if err != nil {
		return 0, err
	}
	v, ok := windowTransmissionTable[transmissionKey{layers, t, class}]
	if !ok {
		return 0, fmt.Errorf("no window transmission coefficient for %d-layer %s glazing with %s frame", layers, t, f)
	}
	return v, nil
}

type uFactorKey struct {
	glass  GlassType
	layers int
	frame  WindowFrame
}

// U-factors in Btu/(h·ft²·°F); resistance is the reciprocal.
var windowUFactorTable = map[uFactorKey]float64{
	{GlassLowE, 2, FrameNone}:         0.30,
	{GlassLowE, 2, FrameAluminum}:     0.67,
	{GlassLowE, 2, FrameThermalBreak}: 0.47,
	{GlassLowE, 2, FrameWood}:         0.41,
	{GlassLowE, 2, FrameInsulated}:    0.33,

	{GlassLowE, 3, FrameNone}:         0.27,
	{GlassLowE, 3, FrameAluminum}:     0.64,
	{GlassLowE, 3, FrameThermalBreak}: 0.43,
	{GlassLowE, 3, FrameWood}:         0.37,
	{GlassLowE, 3, FrameInsulated}:    0.31,

	{GlassNormal, 1, FrameNone}:         1.04,
	{GlassNormal, 1, FrameAluminum}:     1.27,
	{GlassNormal, 1, FrameThermalBreak}: 1.08,
	{GlassNormal, 1, FrameWood}:         0.90,
	{GlassNormal, 1, FrameInsulated}:    0.81,

	{GlassNormal, 2, FrameNone}:         0.48,
	{GlassNormal, 2, FrameAluminum}:     0.81,
	{GlassNormal, 2, FrameThermalBreak}: 0.60,
	{GlassNormal, 2, FrameWood}:         0.53,
	{GlassNormal, 2, FrameInsulated}:    0.44,

	{GlassNormal, 3, FrameNone}:         0.31,
	{GlassNormal, 3, FrameAluminum}:     0.67,
	{GlassNormal, 3, FrameThermalBreak}: 0.46,
	{GlassNormal, 3, FrameWood}:         0.40,
	{GlassNormal, 3, FrameInsulated}:    0.34,
}

// windowResistance returns the window R-value. OTHER glass uses a flat
// resistance regardless of assembly; single-pane low-e glass is not a
// manufacturable combination and the table has no entry for it.
func windowResistance(g GlassType, layers int, f WindowFrame) (float64, error) {
	if g == GlassOther {
		return 2.0, nil
	}
	u, ok := windowUFactorTable[uFactorKey{g, layers, f}]
	if !ok {
		return 0, fmt.Errorf("no window U-factor for %s glass with %d layers and %s frame", g, layers, f)
	}
	return 1.0 / u, nil
}
