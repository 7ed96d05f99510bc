package preset

import "fmt"

// ScalingRelation selects the space in which nCloth scales its forces.
type ScalingRelation int

const (
	ScalingLink ScalingRelation = iota
	ScalingObjectSpace
	ScalingWorldSpace
)

var scalingLabels = [...]string{"Link", "Object Space", "World Space"}

func (s ScalingRelation) Valid() bool {
	return s >= ScalingLink && s <= ScalingWorldSpace
}

// String returns the display label, or a numeric form for out-of-range codes.
func (s ScalingRelation) String() string {
	if !s.Valid() {
		return fmt.Sprintf("ScalingRelation(%d)", int(s))
	}
	return scalingLabels[s]
}

// ParseScalingRelation maps a display label back to its code.
func ParseScalingRelation(label string) (ScalingRelation, error) {
	for i, l := range scalingLabels {
		if l == label {
			return ScalingRelation(i), nil
		}
	}
	return ScalingLink, fmt.Errorf("%w: unknown scaling relation %q", ErrInvalidEnum, label)
}

// ScalingRelationFromLabel is ParseScalingRelation with a Link fallback,
// which is how option menus with stale labels are read.
func ScalingRelationFromLabel(label string) ScalingRelation {
	s, err := ParseScalingRelation(label)
	if err != nil {
		return ScalingLink
	}
	return s
}

// ScalingRelationLabels lists the labels in code order.
func ScalingRelationLabels() []string {
	return append([]string(nil), scalingLabels[:]...)
}

// PressureMethod selects how internal pressure is computed.
type PressureMethod int

const (
	PressureManual PressureMethod = iota
	PressureVolumeTracking
)

var pressureLabels = [...]string{"Manual Pressure Setting", "Volume Tracking Model"}

func (p PressureMethod) Valid() bool {
	return p == PressureManual || p == PressureVolumeTracking
}

func (p PressureMethod) String() string {
	if !p.Valid() {
		return fmt.Sprintf("PressureMethod(%d)", int(p))
	}
	return pressureLabels[p]
}

func ParsePressureMethod(label string) (PressureMethod, error) {
	for i, l := range pressureLabels {
		if l == label {
			return PressureMethod(i), nil
		}
	}
	return PressureManual, fmt.Errorf("%w: unknown pressure method %q", ErrInvalidEnum, label)
}

func PressureMethodFromLabel(label string) PressureMethod {
	p, err := ParsePressureMethod(label)
	if err != nil {
		return PressureManual
	}
	return p
}

func PressureMethodLabels() []string {
	return append([]string(nil), pressureLabels[:]...)
}
