package terra

import "math"

// EffectID identifies one entry in the effect catalogue. Values follow
// the class ranges of the ABI: 0x10-0x14 procedural sources (gradient
// stack only), 0x20-0x25 erosion effects (height-space), 0x30-0x31
// color/blend (gradient stack), 0x40-0x44 debug exports (side-effect
// only).
type EffectID uint8

const (
	EffectLinearGradient EffectID = 0x10
	EffectWorley         EffectID = 0x11
	EffectPerlin         EffectID = 0x12
	EffectCurl           EffectID = 0x13
	EffectNoise          EffectID = 0x14

	EffectDijkstra     EffectID = 0x20
	EffectFftClamp     EffectID = 0x21
	EffectBoxBlur      EffectID = 0x22
	EffectGradientify  EffectID = 0x23
	EffectPoissonSolve EffectID = 0x24
	EffectLaminarize   EffectID = 0x25

	EffectColorRamp EffectID = 0x30
	EffectBlendMode EffectID = 0x31

	EffectDebugHessianFlow  EffectID = 0x40
	EffectDebugSplitChannel EffectID = 0x41
	EffectDebugLIC          EffectID = 0x42
	EffectDebugLaplacian    EffectID = 0x43
	EffectDebugRidgeMesh    EffectID = 0x44
)

// StackKind selects which effect catalogue a stack draws from.
type StackKind int

const (
	StackErosion StackKind = iota
	StackGradient
)

// MaxStackSize bounds the number of effects a single stack may hold.
const MaxStackSize = 64

// paramRange classifies how push_effect's packed u8 bytes decode to
// semantic parameter values, per the ABI's substitution rules.
type paramRange int

const (
	rangeLinear01      paramRange = iota // [0,1]
	rangeSignedLinear                    // [-1,1]
	rangeAngle                           // [-pi,pi]
	rangeLinearRanged                    // [lo,hi]
	rangeLogRanged                       // lo*(hi/lo)^(u/255)
	rangeInteger                         // integer-ranged
	rangeEnum                            // enum-clamped
	rangeSeed                            // u*3922
)

// paramSpec describes one packed parameter field of an effect.
type paramSpec struct {
	r          paramRange
	lo, hi     float32 // used by rangeLinearRanged/rangeLogRanged/rangeInteger/rangeEnum
}

// effectSpec is the validation table entry for one effect id: the
// expected parameter byte count and how to decode each byte.
type effectSpec struct {
	stack  StackKind
	params []paramSpec
}

var effectTable = map[EffectID]effectSpec{
	EffectLinearGradient: {StackGradient, []paramSpec{{r: rangeAngle}, {r: rangeLinear01}}},
	EffectWorley:         {StackGradient, []paramSpec{{r: rangeSeed}, {r: rangeLinearRanged, lo: 1, hi: 64}}},
	EffectPerlin:         {StackGradient, []paramSpec{{r: rangeSeed}, {r: rangeLinearRanged, lo: 1, hi: 8}}},
	EffectCurl:           {StackGradient, []paramSpec{{r: rangeSeed}, {r: rangeLinear01}}},
	EffectNoise:          {StackGradient, []paramSpec{{r: rangeSeed}}},

	EffectDijkstra:     {StackErosion, []paramSpec{{r: rangeLinearRanged, lo: 0, hi: 100}, {r: rangeLinearRanged, lo: 0, hi: 100}, {r: rangeLinearRanged, lo: 0, hi: 100}}},
	EffectFftClamp:     {StackErosion, []paramSpec{{r: rangeLinear01}}},
	EffectBoxBlur:      {StackErosion, []paramSpec{{r: rangeInteger, lo: 1, hi: 32}}},
	EffectGradientify:  {StackErosion, nil},
	EffectPoissonSolve: {StackErosion, []paramSpec{{r: rangeInteger, lo: 1, hi: 4000}, {r: rangeLogRanged, lo: 1e-7, hi: 1e-2}}},
	EffectLaminarize:   {StackErosion, []paramSpec{{r: rangeLinear01}, {r: rangeLinearRanged, lo: 0, hi: 8}}},

	EffectColorRamp: {StackGradient, []paramSpec{{r: rangeEnum, lo: 0, hi: 7}}},
	EffectBlendMode: {StackGradient, []paramSpec{{r: rangeEnum, lo: 0, hi: 11}}},

	EffectDebugHessianFlow:  {StackErosion, nil},
	EffectDebugSplitChannel: {StackErosion, nil},
	EffectDebugLIC:          {StackErosion, []paramSpec{{r: rangeInteger, lo: 4, hi: 64}}},
	EffectDebugLaplacian:    {StackErosion, nil},
	EffectDebugRidgeMesh:    {StackErosion, nil},
}

// decodeParam converts one packed u8 byte to its semantic value per spec.
func decodeParam(u byte, spec paramSpec) float32 {
	v := float32(u) / 255
	switch spec.r {
	case rangeLinear01:
		return v
	case rangeSignedLinear:
		return v*2 - 1
	case rangeAngle:
		return float32(v*2*math.Pi - math.Pi)
	case rangeLinearRanged:
		return spec.lo + v*(spec.hi-spec.lo)
	case rangeLogRanged:
		return spec.lo * powf32(spec.hi/spec.lo, v)
	case rangeInteger:
		n := spec.hi - spec.lo + 1
		bucket := float32(int(n * v))
		if bucket > n-1 {
			bucket = n - 1
		}
		return spec.lo + bucket
	case rangeEnum:
		n := spec.hi - spec.lo + 1
		bucket := float32(int(n * v))
		if bucket > n-1 {
			bucket = n - 1
		}
		return spec.lo + bucket
	case rangeSeed:
		return float32(u) * 3922
	}
	return v
}

func powf32(base, exp float32) float32 {
	if base <= 0 {
		return 0
	}
	return float32(math.Pow(float64(base), float64(exp)))
}

// Effect is one decoded, validated entry ready for the driver to run.
type Effect struct {
	ID     EffectID
	Params []float32
}

// DecodeEffect validates id and raw against the catalogue and decodes the
// packed parameters, or returns an EngineError describing why the push
// was rejected (unknown id or wrong byte count; every decode clamps its
// output so out-of-range values can't arise downstream).
func DecodeEffect(stack StackKind, id EffectID, raw []byte) (Effect, *EngineError) {
	spec, ok := effectTable[id]
	if !ok {
		return Effect{}, newEngineError(ErrUnknownEffect, "effect id 0x%02x not in catalogue", id)
	}
	if spec.stack != stack {
		return Effect{}, newEngineError(ErrUnknownEffect, "effect id 0x%02x not valid for this stack", id)
	}
	if len(raw) != len(spec.params) {
		return Effect{}, newEngineError(ErrParamCount, "effect 0x%02x expects %d params, got %d", id, len(spec.params), len(raw))
	}
	params := make([]float32, len(raw))
	for i, b := range raw {
		params[i] = decodeParam(b, spec.params[i])
	}
	return Effect{ID: id, Params: params}, nil
}

// shouldMemoize reports whether the driver snapshots the working buffer
// after running this effect: true for the "expensive" kinds whose output
// is worth caching across a resumed run.
func shouldMemoize(id EffectID) bool {
	switch id {
	case EffectDijkstra, EffectFftClamp, EffectBoxBlur, EffectLaminarize, EffectPoissonSolve:
		return true
	default:
		return false
	}
}
