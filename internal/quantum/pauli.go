package quantum

import (
	"math/cmplx"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Pauli is a tensor product of single-qubit Pauli operators. Ops[q] is the
// operator on qubit q, one of 'I', 'X', 'Y', 'Z'.
type Pauli struct {
	Ops []byte
}

// ParsePauli reads a Pauli label such as "IIIIZIIII". The rightmost
// character acts on qubit 0, matching the usual little-endian convention.
func ParsePauli(label string) (Pauli, error) {
	label = strings.ToUpper(strings.TrimSpace(label))
	if label == "" {
		return Pauli{}, errors.New("empty Pauli label")
	}
	n := len(label)
	p := Pauli{Ops: make([]byte, n)}
	for k := 0; k < n; k++ {
		op := label[k]
		switch op {
		case 'I', 'X', 'Y', 'Z':
		default:
			return Pauli{}, errors.Errorf("invalid Pauli operator %q in %q", op, label)
		}
		p.Ops[n-1-k] = op
	}
	return p, nil
}

// ZOn returns the n-qubit Pauli with Z on qubit and identity elsewhere.
func ZOn(n, qubit int) Pauli {
	p := Pauli{Ops: make([]byte, n)}
	for q := range p.Ops {
		p.Ops[q] = 'I'
	}
	p.Ops[qubit] = 'Z'
	return p
}

// NumQubits returns the number of qubits the Pauli acts on.
func (p Pauli) NumQubits() int { return len(p.Ops) }

// String returns the label in the form accepted by ParsePauli.
func (p Pauli) String() string {
	n := len(p.Ops)
	b := make([]byte, n)
	for q, op := range p.Ops {
		b[n-1-q] = op
	}
	return string(b)
}

// IsDiagonal reports whether the Pauli only contains I and Z.
func (p Pauli) IsDiagonal() bool {
	for _, op := range p.Ops {
		if op != 'I' && op != 'Z' {
			return false
		}
	}
	return true
}

// zMask returns the bitmask of the non-identity qubits.
func (p Pauli) zMask() int {
	mask := 0
	for q, op := range p.Ops {
		if op != 'I' {
			mask |= 1 << q
		}
	}
	return mask
}

// Expectation returns <state|P|state>.
func (p Pauli) Expectation(state *StateVector) (float64, error) {
	if p.NumQubits() != state.NumQubits {
		return 0, errors.Errorf("%d-qubit Pauli %s applied to a %d-qubit state", p.NumQubits(), p, state.NumQubits)
	}
	if p.IsDiagonal() {
		mask := p.zMask()
		total := 0.0
		for i, prob := range state.Probabilities() {
			total += prob * paritySign(i&mask)
		}
		return total, nil
	}
	applied := state.Clone()
	for q, op := range p.Ops {
		switch op {
		case 'X':
			applied.apply(xMatrix, q, -1)
		case 'Y':
			applied.apply(yMatrix, q, -1)
		case 'Z':
			applied.apply(zMatrix, q, -1)
		}
	}
	var inner Complex
	for i, amp := range state.Amplitudes {
		inner += cmplx.Conj(amp) * applied.Amplitudes[i]
	}
	return real(inner), nil
}

// paritySign returns -1 when x has an odd number of set bits, 1 otherwise.
func paritySign(x int) float64 {
	if bitsCount(x)%2 == 1 {
		return -1
	}
	return 1
}

func bitsCount(x int) int {
	count := 0
	for x > 0 {
		count += x & 1
		x >>= 1
	}
	return count
}

// Observable is a real linear combination of Pauli strings.
type Observable struct {
	Terms  []Pauli
	Coeffs []float64
}

// NewObservable returns the observable made of a single Pauli label with
// coefficient 1.
func NewObservable(label string) (Observable, error) {
	p, err := ParsePauli(label)
	if err != nil {
		return Observable{}, err
	}
	return Observable{Terms: []Pauli{p}, Coeffs: []float64{1}}, nil
}

// FromPauli wraps a single Pauli as an observable.
func FromPauli(p Pauli) Observable {
	return Observable{Terms: []Pauli{p}, Coeffs: []float64{1}}
}

// Average returns the observable (p_1 + ... + p_k) / k.
func Average(paulis ...Pauli) Observable {
	obs := Observable{}
	for _, p := range paulis {
		obs = obs.Add(1/float64(len(paulis)), p)
	}
	return obs
}

// Add returns a new observable with coeff*p appended.
func (o Observable) Add(coeff float64, p Pauli) Observable {
	return Observable{
		Terms:  append(append([]Pauli(nil), o.Terms...), p),
		Coeffs: append(append([]float64(nil), o.Coeffs...), coeff),
	}
}

// Expectation returns the exact expectation value on the state.
func (o Observable) Expectation(state *StateVector) (float64, error) {
	total := 0.0
	for i, p := range o.Terms {
		v, err := p.Expectation(state)
		if err != nil {
			return 0, err
		}
		total += o.Coeffs[i] * v
	}
	return total, nil
}

func (o Observable) String() string {
	var sb strings.Builder
	for i, p := range o.Terms {
		if i > 0 {
			sb.WriteString(" + ")
		}
		if o.Coeffs[i] != 1 {
			sb.WriteString(strconv.FormatFloat(o.Coeffs[i], 'g', -1, 64))
			sb.WriteString("*")
		}
		sb.WriteString(p.String())
	}
	return sb.String()
}
