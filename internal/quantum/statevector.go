// Package quantum simulates circuits on a statevector and estimates
// expectation values of Pauli observables.
package quantum

import (
	"math"
	"math/cmplx"

	"github.com/pkg/errors"

	"qtictac/internal/circuit"
)

type Complex = complex128

// StateVector holds the 2^NumQubits amplitudes of a pure state. Basis index
// bit q is the value of qubit q (little-endian).
type StateVector struct {
	Amplitudes []Complex
	NumQubits  int
}

// NewStateVector returns |0...0> over numQubits qubits.
func NewStateVector(numQubits int) *StateVector {
	n := 1 << numQubits
	amps := make([]Complex, n)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

func (s *StateVector) Clone() *StateVector {
	amps := make([]Complex, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// matrix2 is a single-qubit unitary, row-major.
type matrix2 [2][2]Complex

var (
	hMatrix = matrix2{
		{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)},
		{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)},
	}
	xMatrix   = matrix2{{0, 1}, {1, 0}}
	yMatrix   = matrix2{{0, -1i}, {1i, 0}}
	zMatrix   = matrix2{{1, 0}, {0, -1}}
	sMatrix   = matrix2{{1, 0}, {0, 1i}}
	sdgMatrix = matrix2{{1, 0}, {0, -1i}}
	tMatrix   = matrix2{{1, 0}, {0, cmplx.Exp(complex(0, math.Pi/4))}}
)

func rxMatrix(theta float64) matrix2 {
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	return matrix2{{c, js}, {js, c}}
}

func ryMatrix(theta float64) matrix2 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return matrix2{{c, -s}, {s, c}}
}

func rzMatrix(theta float64) matrix2 {
	phase := cmplx.Exp(complex(0, theta/2))
	return matrix2{{cmplx.Conj(phase), 0}, {0, phase}}
}

// ApplyGate applies a bound gate to the state.
func (s *StateVector) ApplyGate(gate circuit.Gate) error {
	var m matrix2
	switch gate.Type {
	case "H":
		m = hMatrix
	case "X", "CX":
		m = xMatrix
	case "Y":
		m = yMatrix
	case "Z", "CZ":
		m = zMatrix
	case "S":
		m = sMatrix
	case "SDG":
		m = sdgMatrix
	case "T":
		m = tMatrix
	case "RX", "CRX", "RY", "CRY", "RZ", "CRZ":
		if len(gate.Params) != 1 {
			return errors.Errorf("%s needs one angle, got %d", gate.Type, len(gate.Params))
		}
		if !gate.Params[0].IsBound() {
			return errors.Wrapf(circuit.ErrUnbound, "%s on qubit %d depends on %q", gate.Type, gate.Target, gate.Params[0].Param.Name)
		}
		theta := gate.Params[0].Value()
		switch gate.Type {
		case "RX", "CRX":
			m = rxMatrix(theta)
		case "RY", "CRY":
			m = ryMatrix(theta)
		default:
			m = rzMatrix(theta)
		}
	default:
		return errors.Errorf("gate %q not supported by the simulator", gate.Type)
	}
	if gate.Target < 0 || gate.Target >= s.NumQubits || gate.Control >= s.NumQubits {
		return errors.Errorf("%s acts outside the %d-qubit register", gate.Type, s.NumQubits)
	}
	s.apply(m, gate.Target, gate.Control)
	return nil
}

// apply applies m to qubit q, only on basis states where qubit control is 1
// when control >= 0.
func (s *StateVector) apply(m matrix2, q, control int) {
	n := len(s.Amplitudes)
	bit := 1 << q
	cBit := 0
	if control >= 0 {
		cBit = 1 << control
	}
	for i := 0; i < n; i++ {
		if i&bit != 0 || i&cBit != cBit {
			continue
		}
		j := i | bit
		a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
		s.Amplitudes[i] = m[0][0]*a0 + m[0][1]*a1
		s.Amplitudes[j] = m[1][0]*a0 + m[1][1]*a1
	}
}

// Probabilities returns |amplitude|^2 for every basis state.
func (s *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(s.Amplitudes))
	for i, amp := range s.Amplitudes {
		probs[i] = real(amp * cmplx.Conj(amp))
	}
	return probs
}

// Norm returns the squared norm of the state; 1 for any valid state.
func (s *StateVector) Norm() float64 {
	total := 0.0
	for _, p := range s.Probabilities() {
		total += p
	}
	return total
}

// Simulate runs a bound circuit from |0...0>.
func Simulate(c *circuit.Circuit) (*StateVector, error) {
	if c.NumQubits <= 0 {
		return nil, errors.Errorf("cannot simulate a circuit with %d qubits", c.NumQubits)
	}
	if !c.IsBound() {
		return nil, errors.Wrapf(circuit.ErrUnbound, "simulating circuit with parameters %v", c.Parameters())
	}
	state := NewStateVector(c.NumQubits)
	for i, gate := range c.Gates {
		if err := state.ApplyGate(gate); err != nil {
			return nil, errors.WithMessagef(err, "gate #%d", i)
		}
	}
	return state, nil
}
