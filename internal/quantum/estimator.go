package quantum

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"qtictac/internal/circuit"
)

// Estimator evaluates expectation values of observables on a bound circuit.
// Run blocks until all values are available; values[i] corresponds to
// observables[i].
type Estimator interface {
	Run(ctx context.Context, c *circuit.Circuit, observables ...Observable) (values []float64, err error)
}

// StatevectorEstimator simulates the circuit exactly. With Shots > 0 each
// Pauli term is instead estimated from Shots sampled measurements in the
// term's eigenbasis, which reproduces the statistical noise of hardware runs.
//
// It is safe for concurrent use.
type StatevectorEstimator struct {
	// Shots per Pauli term; 0 means exact expectation values.
	Shots int

	// Seed for the shot sampler. Each Run draws from a stream derived from
	// Seed and a fingerprint of the circuit and observables, so results do not
	// depend on the order concurrent runs are scheduled in.
	Seed uint64
}

var _ Estimator = (*StatevectorEstimator)(nil)

// Run implements Estimator.
func (e *StatevectorEstimator) Run(ctx context.Context, c *circuit.Circuit, observables ...Observable) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	state, err := Simulate(c)
	if err != nil {
		return nil, err
	}
	var rng *rand.Rand
	if e.Shots > 0 {
		rng = rand.New(rand.NewPCG(e.Seed, fingerprint(c, observables)))
	}
	values := make([]float64, len(observables))
	for i, obs := range observables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if rng == nil {
			values[i], err = obs.Expectation(state)
		} else {
			values[i], err = sampleObservable(rng, state, obs, e.Shots)
		}
		if err != nil {
			return nil, errors.WithMessagef(err, "observable #%d (%s)", i, obs)
		}
	}
	if klog.V(3).Enabled() {
		klog.Infof("Estimated %d observables on %d gates (shots=%d, norm=%.12f): %v",
			len(observables), len(c.Gates), e.Shots, state.Norm(), values)
	}
	return values, nil
}

// fingerprint hashes a bound circuit and the observables measured on it.
func fingerprint(c *circuit.Circuit, observables []Observable) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	writeUint := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	writeUint(uint64(c.NumQubits))
	for _, g := range c.Gates {
		h.Write([]byte(g.Type))
		writeUint(uint64(g.Target))
		writeUint(uint64(int64(g.Control)))
		for _, a := range g.Params {
			writeUint(math.Float64bits(a.Value()))
		}
	}
	for _, obs := range observables {
		h.Write([]byte(obs.String()))
	}
	return h.Sum64()
}

// sampleObservable estimates the observable from shots measurements per term.
func sampleObservable(rng *rand.Rand, state *StateVector, obs Observable, shots int) (float64, error) {
	total := 0.0
	for i, p := range obs.Terms {
		if p.NumQubits() != state.NumQubits {
			return 0, errors.Errorf("%d-qubit Pauli %s applied to a %d-qubit state", p.NumQubits(), p, state.NumQubits)
		}
		rotated := state
		if !p.IsDiagonal() {
			rotated = state.Clone()
			for q, op := range p.Ops {
				switch op {
				case 'X':
					rotated.apply(hMatrix, q, -1)
				case 'Y':
					rotated.apply(sdgMatrix, q, -1)
					rotated.apply(hMatrix, q, -1)
				}
			}
		}
		mask := p.zMask()
		cumulative := cumulativeProbabilities(rotated)
		sum := 0.0
		for range shots {
			sum += paritySign(sampleIndex(rng, cumulative) & mask)
		}
		total += obs.Coeffs[i] * sum / float64(shots)
	}
	return total, nil
}

func cumulativeProbabilities(state *StateVector) []float64 {
	probs := state.Probabilities()
	for i := 1; i < len(probs); i++ {
		probs[i] += probs[i-1]
	}
	return probs
}

// sampleIndex draws a basis state index from a cumulative distribution.
func sampleIndex(rng *rand.Rand, cumulative []float64) int {
	r := rng.Float64() * cumulative[len(cumulative)-1]
	idx := sort.SearchFloat64s(cumulative, r)
	return min(idx, len(cumulative)-1)
}
