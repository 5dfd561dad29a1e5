// Package circuit builds symbolic quantum circuits: gates whose rotation
// angles may depend on named parameters that are bound to values later.
package circuit

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnbound is returned when an operation needs a concrete value for a
// parameter that has none.
var ErrUnbound = errors.New("unbound parameter")

// Gate represents a quantum gate placed on the circuit.
type Gate struct {
	Type    string
	Target  int
	Control int     // -1 if not a controlled gate
	Step    int     // position in circuit timeline
	Params  []Angle // Parameters for parameterized gates
}

// IsControlled reports whether the gate has a control qubit.
func (g Gate) IsControlled() bool { return g.Control >= 0 }

// Qubits returns the qubits the gate acts on, control first.
func (g Gate) Qubits() []int {
	if g.IsControlled() {
		return []int{g.Control, g.Target}
	}
	return []int{g.Target}
}

// Circuit holds a sequence of gates over a fixed register of NumQubits qubits.
// Gates are kept in application order; Step is their index in that order.
type Circuit struct {
	NumQubits int
	Gates     []Gate
	MaxSteps  int
}

// New creates an empty circuit over numQubits qubits.
func New(numQubits int) *Circuit {
	return &Circuit{NumQubits: numQubits}
}

// AddGate appends a fixed gate to the circuit.
func (c *Circuit) AddGate(gateType string, target int, control ...int) {
	c.AddParameterizedGate(gateType, target, nil, control...)
}

// AddParameterizedGate appends a parameterized gate to the circuit.
func (c *Circuit) AddParameterizedGate(gateType string, target int, params []Angle, control ...int) {
	ctrl := -1
	if len(control) > 0 {
		ctrl = control[0]
	}
	step := len(c.Gates)
	c.Gates = append(c.Gates, Gate{
		Type:    gateType,
		Target:  target,
		Control: ctrl,
		Step:    step,
		Params:  params,
	})
	if step >= c.MaxSteps {
		c.MaxSteps = step + 1
	}
}

// RX appends an X-axis rotation.
func (c *Circuit) RX(theta Angle, qubit int) {
	c.AddParameterizedGate("RX", qubit, []Angle{theta})
}

// RY appends a Y-axis rotation.
func (c *Circuit) RY(theta Angle, qubit int) {
	c.AddParameterizedGate("RY", qubit, []Angle{theta})
}

// RZ appends a Z-axis rotation.
func (c *Circuit) RZ(theta Angle, qubit int) {
	c.AddParameterizedGate("RZ", qubit, []Angle{theta})
}

// CRX appends a controlled X-axis rotation.
func (c *Circuit) CRX(theta Angle, control, target int) {
	c.AddParameterizedGate("CRX", target, []Angle{theta}, control)
}

// CRY appends a controlled Y-axis rotation.
func (c *Circuit) CRY(theta Angle, control, target int) {
	c.AddParameterizedGate("CRY", target, []Angle{theta}, control)
}

// CRZ appends a controlled Z-axis rotation.
func (c *Circuit) CRZ(theta Angle, control, target int) {
	c.AddParameterizedGate("CRZ", target, []Angle{theta}, control)
}

// H appends a Hadamard gate.
func (c *Circuit) H(qubit int) { c.AddGate("H", qubit) }

// X appends a Pauli-X gate.
func (c *Circuit) X(qubit int) { c.AddGate("X", qubit) }

// CX appends a CNOT.
func (c *Circuit) CX(control, target int) { c.AddGate("CX", target, control) }

// CZ appends a controlled-Z.
func (c *Circuit) CZ(control, target int) { c.AddGate("CZ", target, control) }

// Append composes sub onto the end of c. Both circuits must act on the same
// register.
func (c *Circuit) Append(sub *Circuit) error {
	if sub.NumQubits != c.NumQubits {
		return errors.Errorf("cannot append a %d-qubit circuit to a %d-qubit circuit", sub.NumQubits, c.NumQubits)
	}
	for _, g := range sub.Gates {
		c.AddParameterizedGate(g.Type, g.Target, g.Params, g.Control)
	}
	return nil
}

// Validate checks that every gate is known, has the right number of angles
// and acts on qubits inside the register.
func (c *Circuit) Validate() error {
	for i, g := range c.Gates {
		spec, ok := gateSpecs[g.Type]
		if !ok {
			return errors.Errorf("gate #%d: unknown gate type %q", i, g.Type)
		}
		if len(g.Params) != spec.numParams {
			return errors.Errorf("gate #%d (%s): want %d angles, got %d", i, g.Type, spec.numParams, len(g.Params))
		}
		if spec.controlled != g.IsControlled() {
			return errors.Errorf("gate #%d (%s): control qubit mismatch", i, g.Type)
		}
		for _, q := range g.Qubits() {
			if q < 0 || q >= c.NumQubits {
				return errors.Errorf("gate #%d (%s): qubit %d outside register of %d qubits", i, g.Type, q, c.NumQubits)
			}
		}
		if g.IsControlled() && g.Control == g.Target {
			return errors.Errorf("gate #%d (%s): control and target are both qubit %d", i, g.Type, g.Target)
		}
	}
	return nil
}

// Parameters returns the distinct parameters used by the circuit, in the
// order they first appear.
func (c *Circuit) Parameters() []Parameter {
	seen := make(map[Parameter]bool)
	var params []Parameter
	for _, g := range c.Gates {
		for _, a := range g.Params {
			if a.IsBound() || seen[a.Param] {
				continue
			}
			seen[a.Param] = true
			params = append(params, a.Param)
		}
	}
	return params
}

// IsBound reports whether no gate depends on a free parameter.
func (c *Circuit) IsBound() bool {
	for _, g := range c.Gates {
		for _, a := range g.Params {
			if !a.IsBound() {
				return false
			}
		}
	}
	return true
}

// Bind returns a copy of the circuit with every angle resolved from b.
// Bindings for parameters the circuit does not use are ignored.
func (c *Circuit) Bind(b Bindings) (*Circuit, error) {
	bound := &Circuit{
		NumQubits: c.NumQubits,
		Gates:     make([]Gate, len(c.Gates)),
		MaxSteps:  c.MaxSteps,
	}
	for i, g := range c.Gates {
		g.Params = append([]Angle(nil), g.Params...)
		for j, a := range g.Params {
			v, err := a.Resolve(b)
			if err != nil {
				return nil, errors.WithMessagef(err, "binding gate #%d (%s)", i, g.Type)
			}
			g.Params[j] = Const(v)
		}
		bound.Gates[i] = g
	}
	return bound, nil
}

// NumGates returns the number of gates of each type.
func (c *Circuit) NumGates() map[string]int {
	counts := make(map[string]int)
	for _, g := range c.Gates {
		counts[g.Type]++
	}
	return counts
}

// GateSummary lists the gate counts by type, e.g. "CRY×4 RX×9".
func (c *Circuit) GateSummary() string {
	counts := c.NumGates()
	parts := make([]string, 0, len(counts))
	for _, gateType := range slices.Sorted(maps.Keys(counts)) {
		parts = append(parts, fmt.Sprintf("%s×%d", gateType, counts[gateType]))
	}
	return strings.Join(parts, " ")
}
