package ansatz

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"qtictac/internal/board"
	"qtictac/internal/circuit"
)

// WeightsPerRep is the number of weights one repetition of the six blocks uses.
const WeightsPerRep = 9

// EncodingScale maps a cell value in {-1, 0, 1} to the RX angle that encodes it.
const EncodingScale = 2 * math.Pi / 3

// InputName returns the name of the data-encoding parameter of cell j.
func InputName(j int) string { return fmt.Sprintf("x_%d", j) }

// WeightName returns the name of the i-th weight parameter.
func WeightName(i int) string { return fmt.Sprintf("theta_%d", i) }

// DefaultInputs returns the data-encoding parameters x_0 ... x_8, keyed by name.
func DefaultInputs() map[string]circuit.Parameter {
	inputs := make(map[string]circuit.Parameter, NumQubits)
	for j := range NumQubits {
		inputs[InputName(j)] = circuit.NewParameter(InputName(j))
	}
	return inputs
}

// Ansatz is the full classifier circuit together with the parameters it is
// bound through.
type Ansatz struct {
	Circuit *circuit.Circuit

	// Weights in allocation order: Weights[i] is consumed before Weights[i+1].
	Weights []circuit.Parameter

	// Inputs[j] encodes board cell j.
	Inputs [NumQubits]circuit.Parameter

	Layers, Reps int
}

// Build composes the classifier circuit: l layers, each encoding the board
// with RX(2π/3 · x_j) on qubit j and then applying p repetitions of the
// corner, edge, center, center-to-corners, outer-ring and inner blocks.
// Every repetition consumes 9 fresh weights, 9*p*l in total.
//
// inputs must hold the 9 data-encoding parameters keyed "x_0" ... "x_8".
func Build(l, p int, inputs map[string]circuit.Parameter) (*Ansatz, error) {
	if l < 1 {
		return nil, errors.Errorf("number of layers must be >= 1, got %d", l)
	}
	if p < 0 {
		return nil, errors.Errorf("number of repetitions must be >= 0, got %d", p)
	}
	a := &Ansatz{
		Circuit: circuit.New(NumQubits),
		Weights: make([]circuit.Parameter, WeightsPerRep*p*l),
		Layers:  l,
		Reps:    p,
	}
	for j := range NumQubits {
		param, ok := inputs[InputName(j)]
		if !ok {
			return nil, errors.Errorf("missing data-encoding parameter %q", InputName(j))
		}
		a.Inputs[j] = param
	}
	for i := range a.Weights {
		a.Weights[i] = circuit.NewParameter(WeightName(i))
	}

	theta := func(i int) circuit.Angle { return circuit.Symbol(a.Weights[i]) }
	curr := 0
	for range l {
		for j := range NumQubits {
			a.Circuit.RX(circuit.Scaled(a.Inputs[j], EncodingScale), j)
		}
		for range p {
			blocks := []*circuit.Circuit{
				CornerBlock(theta(curr), theta(curr+1)),
				EdgeBlock(theta(curr+2), theta(curr+3)),
				CenterBlock(theta(curr+4), theta(curr+5)),
				CenterToCornersBlock(theta(curr + 6)),
				OuterRingBlock(theta(curr + 7)),
				InnerBlock(theta(curr + 8)),
			}
			for _, block := range blocks {
				if err := a.Circuit.Append(block); err != nil {
					return nil, err
				}
			}
			curr += WeightsPerRep
		}
	}
	return a, nil
}

// NumWeights returns how many weight values Bind expects.
func (a *Ansatz) NumWeights() int { return len(a.Weights) }

// Bindings maps weights[i] to the i-th weight parameter and cell j of b to
// the j-th input parameter.
func (a *Ansatz) Bindings(weights []float64, b board.Board) (circuit.Bindings, error) {
	if len(weights) != len(a.Weights) {
		return nil, errors.Errorf("ansatz has %d weights, got %d values", len(a.Weights), len(weights))
	}
	bindings := make(circuit.Bindings, len(weights)+NumQubits)
	for i, w := range weights {
		bindings[a.Weights[i]] = w
	}
	for j, v := range b {
		bindings[a.Inputs[j]] = float64(v)
	}
	return bindings, nil
}

// Bind returns the circuit with weights and board substituted.
func (a *Ansatz) Bind(weights []float64, b board.Board) (*circuit.Circuit, error) {
	bindings, err := a.Bindings(weights, b)
	if err != nil {
		return nil, err
	}
	return a.Circuit.Bind(bindings)
}
