package circuit

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Parameter is a symbolic circuit parameter. Two parameters are the same
// parameter iff they have the same name.
type Parameter struct {
	Name string
}

// NewParameter returns the parameter with the given name.
func NewParameter(name string) Parameter { return Parameter{Name: name} }

// IsZero reports whether p is the zero Parameter, i.e. no parameter at all.
func (p Parameter) IsZero() bool { return p.Name == "" }

func (p Parameter) String() string { return p.Name }

// Bindings maps parameters to concrete values.
type Bindings map[Parameter]float64

// Angle is the argument of a rotation gate: Scale*Param + Offset when Param
// is set, the constant Offset otherwise.
type Angle struct {
	Param  Parameter
	Scale  float64
	Offset float64
}

// Const returns a fixed angle.
func Const(v float64) Angle { return Angle{Offset: v} }

// Symbol returns an angle equal to the parameter p.
func Symbol(p Parameter) Angle { return Angle{Param: p, Scale: 1} }

// Scaled returns the angle k*p.
func Scaled(p Parameter, k float64) Angle { return Angle{Param: p, Scale: k} }

// IsBound reports whether the angle has a concrete value.
func (a Angle) IsBound() bool { return a.Param.IsZero() }

// Resolve substitutes the angle's parameter from b.
func (a Angle) Resolve(b Bindings) (float64, error) {
	if a.IsBound() {
		return a.Offset, nil
	}
	v, ok := b[a.Param]
	if !ok {
		return 0, errors.Wrapf(ErrUnbound, "parameter %q", a.Param.Name)
	}
	return a.Scale*v + a.Offset, nil
}

// Value returns the angle of a bound Angle; it panics on a symbolic one.
func (a Angle) Value() float64 {
	if !a.IsBound() {
		panic(errors.Errorf("angle depends on unbound parameter %q", a.Param.Name))
	}
	return a.Offset
}

func (a Angle) String() string {
	if a.IsBound() {
		return FormatAngle(a.Offset)
	}
	s := a.Param.Name
	if a.Scale != 1 {
		s = FormatAngle(a.Scale) + "*" + s
	}
	switch {
	case a.Offset > 0:
		s += "+" + FormatAngle(a.Offset)
	case a.Offset < 0:
		s += "-" + FormatAngle(-a.Offset)
	}
	return s
}

// anglePattern matches a single angle value: numbers, pi expressions, or combinations.
// Examples: "1.5707", "pi", "pi/2", "3*pi/4", "-pi", "-2*pi/3", "3.14e-2"
const anglePattern = `-?(?:\d*\.?\d*\*?pi(?:/\d+\.?\d*)?|\d+\.?\d*(?:[eE][+\-]?\d+)?)`

// piExprRegex matches expressions like: pi, 2pi, 2*pi, pi/2, 3pi/4, 3*pi/4, -pi, -pi/2, -3*pi/4
var piExprRegex = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*pi(?:\s*/\s*(\d+\.?\d*))?$`)

// ParseAngle parses a plain number or a pi expression.
//
// Supported formats:
//   - Plain numbers: "1.5707", "3.14", "-0.5"
//   - Pi constant: "pi"
//   - Pi fractions: "pi/2", "pi/4", "pi/3"
//   - Coefficients: "2pi", "2*pi", "3pi/4", "3*pi/4"
//   - Negative: "-pi", "-pi/2", "-3*pi/4"
func ParseAngle(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if val, err := strconv.ParseFloat(s, 64); err == nil {
		return val, true
	}

	s = strings.ToLower(s)
	matches := piExprRegex.FindStringSubmatch(s)
	if matches == nil {
		return 0, false
	}
	negative := matches[1] == "-"
	coeffStr := matches[2]
	denomStr := matches[3]

	coeff := 1.0
	if coeffStr != "" {
		var err error
		coeff, err = strconv.ParseFloat(coeffStr, 64)
		if err != nil {
			return 0, false
		}
	}

	result := coeff * math.Pi
	if denomStr != "" {
		denom, err := strconv.ParseFloat(denomStr, 64)
		if err != nil || denom == 0 {
			return 0, false
		}
		result /= denom
	}

	if negative {
		result = -result
	}
	return result, true
}

// FormatAngle formats a value, using pi notation for common pi fractions and
// the shortest exact float64 representation otherwise.
func FormatAngle(val float64) string {
	type piForm struct {
		value   float64
		display string
	}
	piForms := []piForm{
		{2 * math.Pi, "2*pi"},
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{math.Pi / 3, "pi/3"},
		{math.Pi / 4, "pi/4"},
		{math.Pi / 6, "pi/6"},
		{math.Pi / 8, "pi/8"},
		{3 * math.Pi / 4, "3*pi/4"},
		{3 * math.Pi / 2, "3*pi/2"},
		{2 * math.Pi / 3, "2*pi/3"},
	}

	for _, pf := range piForms {
		if val == pf.value {
			return pf.display
		}
		if val == -pf.value {
			return "-" + pf.display
		}
	}

	return strconv.FormatFloat(val, 'g', -1, 64)
}

// ParseAngles parses a comma-separated list of angles. Empty entries are
// skipped; any entry that fails to parse makes the whole list invalid.
func ParseAngles(input string) ([]float64, error) {
	var values []float64
	for i, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		val, ok := ParseAngle(part)
		if !ok {
			return nil, errors.Errorf("invalid angle #%d %q: use numbers or pi expressions (e.g. pi/2, 3*pi/4)", i, part)
		}
		values = append(values, val)
	}
	return values, nil
}

// FormatAngles is the inverse of ParseAngles.
func FormatAngles(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = FormatAngle(v)
	}
	return strings.Join(parts, ", ")
}
