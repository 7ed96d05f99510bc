package preset

import (
	"fmt"
	"math"
)

// Params is the fixed set of nCloth attributes carried by a preset.
// Field tags are the attribute names used both on disk and on the node.
type Params struct {
	Bounce                float64         `json:"bounce" yaml:"bounce"`
	Friction              float64         `json:"friction" yaml:"friction"`
	StretchResistance     float64         `json:"stretchResistance" yaml:"stretchResistance"`
	CompressionResistance float64         `json:"compressionResistance" yaml:"compressionResistance"`
	BendResistance        float64         `json:"bendResistance" yaml:"bendResistance"`
	BendAngleDropoff      float64         `json:"bendAngleDropoff" yaml:"bendAngleDropoff"`
	RestitutionAngle      float64         `json:"restitutionAngle" yaml:"restitutionAngle"`
	Rigidity              float64         `json:"rigidity" yaml:"rigidity"`
	DeformResistance      float64         `json:"deformResistance" yaml:"deformResistance"`
	RestLengthScale       float64         `json:"restLengthScale" yaml:"restLengthScale"`
	PointMass             float64         `json:"pointMass" yaml:"pointMass"`
	TangentialDrag        float64         `json:"tangentialDrag" yaml:"tangentialDrag"`
	Damp                  float64         `json:"damp" yaml:"damp"`
	StretchDamp           float64         `json:"stretchDamp" yaml:"stretchDamp"`
	ScalingRelation       ScalingRelation `json:"scalingRelation" yaml:"scalingRelation"`
	PressureMethod        PressureMethod  `json:"pressureMethod" yaml:"pressureMethod"`
	StartPressure         float64         `json:"startPressure" yaml:"startPressure"`
	AirTightness          float64         `json:"airTightness" yaml:"airTightness"`
	Incompressibility     float64         `json:"incompressibility" yaml:"incompressibility"`
	MaxIterations         int             `json:"maxIterations" yaml:"maxIterations"`
	PushOutRadius         float64         `json:"pushOutRadius" yaml:"pushOutRadius"`
}

type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindEnum
)

// Field describes one parameter: its key, UI label, slider range and how to
// read or write it on a Params value.
type Field struct {
	Key   string
	Label string
	Kind  Kind
	Min   float64
	Max   float64
	Step  float64

	get func(*Params) float64
	set func(*Params, float64)
}

// Get reads the field as a float64. Enum and integer fields return their code.
func (f Field) Get(p Params) float64 {
	return f.get(&p)
}

// Clamp limits v to the slider range of the field.
func (f Field) Clamp(v float64) float64 {
	return math.Max(f.Min, math.Min(f.Max, v))
}

// Options returns the display labels for enum fields, nil otherwise.
func (f Field) Options() []string {
	switch f.Key {
	case "scalingRelation":
		return ScalingRelationLabels()
	case "pressureMethod":
		return PressureMethodLabels()
	}
	return nil
}

// Format renders the value of f on p the way a control surface shows it.
func (f Field) Format(p Params) string {
	v := f.Get(p)
	switch f.Kind {
	case KindInt:
		return fmt.Sprintf("%d", int(v))
	case KindEnum:
		opts := f.Options()
		if i := int(v); i >= 0 && i < len(opts) {
			return opts[i]
		}
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%.3f", v)
}

func floatField(key, label string, min, max float64, ptr func(*Params) *float64) Field {
	return Field{
		Key: key, Label: label, Kind: KindFloat, Min: min, Max: max, Step: 0.01,
		get: func(p *Params) float64 { return *ptr(p) },
		set: func(p *Params, v float64) { *ptr(p) = v },
	}
}

// wholeField is a float attribute driven by an integer slider.
func wholeField(key, label string, min, max float64, ptr func(*Params) *float64) Field {
	f := floatField(key, label, min, max, ptr)
	f.Step = 1
	return f
}

var fields = []Field{
	floatField("bounce", "Bounce", 0, 1, func(p *Params) *float64 { return &p.Bounce }),
	floatField("friction", "Friction", 0, 2, func(p *Params) *float64 { return &p.Friction }),
	wholeField("stretchResistance", "Stretch Resistance", 0, 200, func(p *Params) *float64 { return &p.StretchResistance }),
	wholeField("compressionResistance", "Compression Resistance", 0, 200, func(p *Params) *float64 { return &p.CompressionResistance }),
	floatField("bendResistance", "Bend Resistance", 0, 5, func(p *Params) *float64 { return &p.BendResistance }),
	floatField("bendAngleDropoff", "Bend Angle Dropoff", 0, 5, func(p *Params) *float64 { return &p.BendAngleDropoff }),
	floatField("restitutionAngle", "Restitution Angle", 0, 720, func(p *Params) *float64 { return &p.RestitutionAngle }),
	floatField("rigidity", "Rigidity", 0, 10, func(p *Params) *float64 { return &p.Rigidity }),
	floatField("deformResistance", "Deform Resistance", 0, 10, func(p *Params) *float64 { return &p.DeformResistance }),
	floatField("restLengthScale", "Rest Length Scale", 0, 2, func(p *Params) *float64 { return &p.RestLengthScale }),
	floatField("pointMass", "Mass", 0, 5, func(p *Params) *float64 { return &p.PointMass }),
	floatField("tangentialDrag", "Tangential Drag", 0, 5, func(p *Params) *float64 { return &p.TangentialDrag }),
	floatField("damp", "Damp", 0, 10, func(p *Params) *float64 { return &p.Damp }),
	floatField("stretchDamp", "Stretch Damp", 0, 10, func(p *Params) *float64 { return &p.StretchDamp }),
	{
		Key: "scalingRelation", Label: "Scaling Relation", Kind: KindEnum, Min: 0, Max: 2, Step: 1,
		get: func(p *Params) float64 { return float64(p.ScalingRelation) },
		set: func(p *Params, v float64) { p.ScalingRelation = ScalingRelation(int(v)) },
	},
	{
		Key: "pressureMethod", Label: "Pressure Method", Kind: KindEnum, Min: 0, Max: 1, Step: 1,
		get: func(p *Params) float64 { return float64(p.PressureMethod) },
		set: func(p *Params, v float64) { p.PressureMethod = PressureMethod(int(v)) },
	},
	floatField("startPressure", "Start Pressure", -1, 2, func(p *Params) *float64 { return &p.StartPressure }),
	floatField("airTightness", "Air Tightness", 0, 1, func(p *Params) *float64 { return &p.AirTightness }),
	floatField("incompressibility", "Incompressibility", 0, 200, func(p *Params) *float64 { return &p.Incompressibility }),
	{
		Key: "maxIterations", Label: "Max Iterations", Kind: KindInt, Min: 0, Max: 1000, Step: 1,
		get: func(p *Params) float64 { return float64(p.MaxIterations) },
		set: func(p *Params, v float64) { p.MaxIterations = int(v) },
	},
	floatField("pushOutRadius", "Push Out Radius", 0, 10, func(p *Params) *float64 { return &p.PushOutRadius }),
}

var fieldIndex = func() map[string]int {
	m := make(map[string]int, len(fields))
	for i, f := range fields {
		m[f.Key] = i
	}
	return m
}()

// Fields returns the parameter descriptors in canonical attribute order.
func Fields() []Field {
	return append([]Field(nil), fields...)
}

// Lookup finds a field by attribute key.
func Lookup(key string) (Field, bool) {
	i, ok := fieldIndex[key]
	if !ok {
		return Field{}, false
	}
	return fields[i], true
}

// Value returns the value of the named attribute.
func (p Params) Value(key string) (float64, bool) {
	f, ok := Lookup(key)
	if !ok {
		return 0, false
	}
	return f.Get(p), true
}

// Set returns a copy of p with the named attribute replaced. Integer and enum
// attributes must receive whole numbers.
func (p Params) Set(key string, v float64) (Params, error) {
	f, ok := Lookup(key)
	if !ok {
		return p, fmt.Errorf("%w: unknown attribute %q", ErrInvalidParam, key)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return p, fmt.Errorf("%w: %s is not finite", ErrInvalidParam, key)
	}
	if f.Kind != KindFloat && v != math.Trunc(v) {
		return p, fmt.Errorf("%w: %s must be a whole number, got %v", ErrInvalidParam, key, v)
	}
	if f.Kind == KindEnum && (v < f.Min || v > f.Max) {
		return p, fmt.Errorf("%w: %s code %d", ErrInvalidEnum, key, int(v))
	}
	if f.Kind == KindInt && (v < 0 || v > math.MaxInt32) {
		return p, fmt.Errorf("%w: %s must be between 0 and %d, got %v", ErrInvalidParam, key, math.MaxInt32, v)
	}
	f.set(&p, v)
	return p, nil
}

// Validate reports the first non-finite value, negative iteration count or
// out-of-range enum code.
func (p Params) Validate() error {
	for _, f := range fields {
		v := f.Get(p)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParam, f.Key)
		}
	}
	if p.MaxIterations < 0 || p.MaxIterations > math.MaxInt32 {
		return fmt.Errorf("%w: maxIterations %d out of range", ErrInvalidParam, p.MaxIterations)
	}
	if !p.ScalingRelation.Valid() {
		return fmt.Errorf("%w: scalingRelation code %d", ErrInvalidEnum, int(p.ScalingRelation))
	}
	if !p.PressureMethod.Valid() {
		return fmt.Errorf("%w: pressureMethod code %d", ErrInvalidEnum, int(p.PressureMethod))
	}
	return nil
}
