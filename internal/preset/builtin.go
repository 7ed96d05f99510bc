package preset

import "strings"

const (
	// NameCustom is the reset baseline: every attribute zero.
	NameCustom = "Custom"

	// NameDefault seeds the initial editor state and is never offered for
	// selection.
	NameDefault = "Default"

	// CustomPrefix marks a display name whose values diverge from the preset
	// it was derived from.
	CustomPrefix = "Custom - "

	// ReservedCustom is what a prefixed name trims to when nothing follows
	// the prefix. It can never be saved or deleted.
	ReservedCustom = "Custom -"
)

var builtins = []Preset{
	MustNew(NameCustom, "", Params{}),
	MustNew("T-Shirt Cotton", "Soft, breathable and durable natural fiber.", Params{
		Friction: 0.30, StretchResistance: 35, CompressionResistance: 10, BendResistance: 0.10,
		BendAngleDropoff: 0.4, RestLengthScale: 1, PointMass: 0.60, TangentialDrag: 0.10, Damp: 0.80,
		ScalingRelation: ScalingObjectSpace, MaxIterations: 1000, PushOutRadius: 10,
	}),
	MustNew("Silk", "A strong, natural protein fiber produced by silkworms that is spun into a soft, smooth and lustrous fabric.", Params{
		Friction: 0.05, StretchResistance: 60, CompressionResistance: 10, BendResistance: 0.05,
		BendAngleDropoff: 0.3, RestLengthScale: 1, PointMass: 0.05, TangentialDrag: 0.05, Damp: 0.20,
		ScalingRelation: ScalingObjectSpace, MaxIterations: 1000, PushOutRadius: 0.108,
	}),
	MustNew("Chiffon", "Lightweight, sheer fabric known for its elegant and flowing drape, commonly made from synthetic fibers.", Params{
		Friction: 0.90, StretchResistance: 40, CompressionResistance: 20, BendResistance: 0.2,
		BendAngleDropoff: 0.6, RestLengthScale: 1, PointMass: 0.15, TangentialDrag: 0.40, Damp: 2.0,
		ScalingRelation: ScalingObjectSpace, MaxIterations: 1000, PushOutRadius: 0.108,
	}),
	MustNew("Heavy Denim", "A thick durable fabric that weighs more than 12oz per square yard.", Params{
		Friction: 0.80, StretchResistance: 50, CompressionResistance: 20, BendResistance: 0.4,
		BendAngleDropoff: 0.603, RestLengthScale: 1, PointMass: 2.0, TangentialDrag: 0.10, Damp: 0.80,
		ScalingRelation: ScalingObjectSpace, MaxIterations: 1000, PushOutRadius: 0.108,
	}),
	MustNew("Thick Leather", "A durable, robust material primarily known for its strength, rigidity and longevity. It is typically made from cow or buffalo hide and has a minimum thickness of over 1.4mm.", Params{
		Friction: 0.60, StretchResistance: 40, CompressionResistance: 40, BendResistance: 10,
		BendAngleDropoff: 0.727, RestLengthScale: 1, PointMass: 3.0, TangentialDrag: 0.20, Damp: 8.0,
		ScalingRelation: ScalingObjectSpace, MaxIterations: 1000, PushOutRadius: 10,
	}),
	MustNew("Jelly", "Semi-solid or viscoelastic substance which has a soft, wobbly, elastic texture.", Params{
		Bounce: 0.5, Friction: 0.05, StretchResistance: 20, CompressionResistance: 6, BendResistance: 0.03,
		BendAngleDropoff: 0.1, Rigidity: 0.15, DeformResistance: 0.1, RestLengthScale: 1, PointMass: 0.40,
		TangentialDrag: 0.05, Damp: 0.1, StretchDamp: 0.02, ScalingRelation: ScalingObjectSpace,
		PressureMethod: PressureVolumeTracking, StartPressure: 0.1, AirTightness: 1, Incompressibility: 5,
		MaxIterations: 1000, PushOutRadius: 0.1,
	}),
	MustNew("Solid Rubber", "A dense, non-porous material that is known for its durability, resilience and resistance to wear, water and chemicals.", Params{
		Friction: 2.0, StretchResistance: 20, CompressionResistance: 20, BendResistance: 20,
		RestitutionAngle: 360, Rigidity: 0.3, RestLengthScale: 1, PointMass: 2.0, Damp: 0.80,
		ScalingRelation: ScalingObjectSpace, PressureMethod: PressureVolumeTracking, AirTightness: 1,
		Incompressibility: 20, MaxIterations: 500,
	}),
	MustNew("Concrete", "A building material made from a mixture of broken stone or gravel, sand, cement and water. It can be spread or poured into moulds and forms a mass resembling stone on hardening.", Params{
		Friction: 1.0, StretchResistance: 20, CompressionResistance: 20, RestitutionAngle: 360,
		Rigidity: 4.0, DeformResistance: 6.0, RestLengthScale: 1, PointMass: 20, Damp: 1.0,
		ScalingRelation: ScalingObjectSpace, MaxIterations: 500,
	}),
	MustNew("Lava", "Hot, molten or semi-fluid rock erupted from a volcano or fissure.", Params{
		Friction: 0.603, StretchResistance: 0.01, CompressionResistance: 0.01, BendResistance: 0.70,
		BendAngleDropoff: 0.851, RestitutionAngle: 720, RestLengthScale: 1, PointMass: 10, Damp: 1.5,
		StretchDamp: 0.10, ScalingRelation: ScalingObjectSpace, PressureMethod: PressureVolumeTracking,
		AirTightness: 1, Incompressibility: 5, MaxIterations: 500, PushOutRadius: 10,
	}),
	MustNew(NameDefault, "", Params{}),
}

var builtinIndex = func() map[string]int {
	m := make(map[string]int, len(builtins))
	for i, p := range builtins {
		m[p.Name()] = i
	}
	return m
}()

// Builtins returns the shipped presets in display order.
func Builtins() []Preset {
	return append([]Preset(nil), builtins...)
}

// Builtin looks up a shipped preset by name.
func Builtin(name string) (Preset, bool) {
	i, ok := builtinIndex[name]
	if !ok {
		return Preset{}, false
	}
	return builtins[i], true
}

// BuiltinNames returns the shipped preset names in display order.
func BuiltinNames() []string {
	names := make([]string, len(builtins))
	for i, p := range builtins {
		names[i] = p.Name()
	}
	return names
}

func IsBuiltin(name string) bool {
	_, ok := builtinIndex[name]
	return ok
}

// IsProtected reports whether name may never be saved over or deleted. The
// name is trimmed first.
func IsProtected(name string) bool {
	name = strings.TrimSpace(name)
	return name == ReservedCustom || IsBuiltin(name)
}
