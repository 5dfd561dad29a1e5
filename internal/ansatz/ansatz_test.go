package ansatz

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtictac/internal/board"
	"qtictac/internal/circuit"
)

func TestBlocks(t *testing.T) {
	a, b := circuit.Const(0.1), circuit.Const(0.2)

	c := CornerBlock(a, b)
	require.Len(t, c.Gates, 8)
	for i, q := range Corners {
		assert.Equal(t, "RX", c.Gates[2*i].Type)
		assert.Equal(t, "RY", c.Gates[2*i+1].Type)
		assert.Equal(t, q, c.Gates[2*i].Target)
		assert.Equal(t, q, c.Gates[2*i+1].Target)
		assert.Equal(t, a, c.Gates[2*i].Params[0])
		assert.Equal(t, b, c.Gates[2*i+1].Params[0])
	}
	assert.Len(t, EdgeBlock(a, b).Gates, 8)
	m := CenterBlock(a, b)
	require.Len(t, m.Gates, 2)
	assert.Equal(t, Center, m.Gates[0].Target)

	o := OuterRingBlock(a)
	require.Len(t, o.Gates, len(OuterRing))
	for i, pair := range OuterRing {
		assert.Equal(t, "CRY", o.Gates[i].Type)
		assert.Equal(t, pair[0], o.Gates[i].Control)
		assert.Equal(t, pair[1], o.Gates[i].Target)
	}

	inn := InnerBlock(a)
	require.Len(t, inn.Gates, 4)
	for i, g := range inn.Gates {
		assert.Equal(t, Edges[i], g.Control)
		assert.Equal(t, Center, g.Target)
	}

	d := CenterToCornersBlock(a)
	require.Len(t, d.Gates, 4)
	for i, g := range d.Gates {
		assert.Equal(t, Center, g.Control)
		assert.Equal(t, Corners[i], g.Target)
	}

	for _, blk := range []*circuit.Circuit{c, m, o, inn, d} {
		assert.Equal(t, NumQubits, blk.NumQubits)
		assert.NoError(t, blk.Validate())
	}
}

func TestBlocksAreDeterministic(t *testing.T) {
	p := circuit.Symbol(circuit.NewParameter("p"))
	q := circuit.Const(1.5)
	assert.Equal(t, CornerBlock(p, q), CornerBlock(p, q))
	assert.Equal(t, EdgeBlock(p, q), EdgeBlock(p, q))
	assert.Equal(t, CenterBlock(p, q), CenterBlock(p, q))
	assert.Equal(t, OuterRingBlock(p), OuterRingBlock(p))
	assert.Equal(t, InnerBlock(q), InnerBlock(q))
	assert.Equal(t, CenterToCornersBlock(q), CenterToCornersBlock(q))
}

func TestBuildParameterCount(t *testing.T) {
	for _, test := range []struct{ l, p int }{{1, 0}, {1, 1}, {1, 2}, {2, 1}, {3, 2}} {
		a, err := Build(test.l, test.p, DefaultInputs())
		require.NoError(t, err)
		assert.Equal(t, 9*test.p*test.l, a.NumWeights())
		assert.Len(t, a.Circuit.Parameters(), 9*test.p*test.l+NumQubits)
		// 9 encoding rotations per layer, 34 gates per repetition.
		assert.Len(t, a.Circuit.Gates, test.l*(9+34*test.p))
		assert.NoError(t, a.Circuit.Validate())
	}
}

func TestBuildOrder(t *testing.T) {
	a, err := Build(2, 1, DefaultInputs())
	require.NoError(t, err)
	gates := a.Circuit.Gates

	// Layer encoding.
	for j := range NumQubits {
		assert.Equal(t, "RX", gates[j].Type)
		assert.Equal(t, j, gates[j].Target)
		assert.Equal(t, circuit.Scaled(circuit.NewParameter(InputName(j)), EncodingScale), gates[j].Params[0])
	}
	// First repetition: corner block consumes theta_0, theta_1.
	assert.Equal(t, "theta_0", gates[9].Params[0].Param.Name)
	assert.Equal(t, "theta_1", gates[10].Params[0].Param.Name)
	// Inner block closes the repetition with theta_8.
	last := gates[9+34-1]
	assert.Equal(t, "CRY", last.Type)
	assert.Equal(t, "theta_8", last.Params[0].Param.Name)
	// Second layer re-encodes the board, then uses theta_9.
	assert.Equal(t, "x_0", gates[43].Params[0].Param.Name)
	assert.Equal(t, "theta_9", gates[52].Params[0].Param.Name)

	// Weight parameters are allocated in order.
	for i, w := range a.Weights {
		assert.Equal(t, WeightName(i), w.Name)
	}
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(0, 1, DefaultInputs())
	assert.Error(t, err)
	_, err = Build(1, -1, DefaultInputs())
	assert.Error(t, err)
	inputs := DefaultInputs()
	delete(inputs, "x_4")
	_, err = Build(1, 1, inputs)
	assert.ErrorContains(t, err, "x_4")
}

func TestCustomInputs(t *testing.T) {
	inputs := make(map[string]circuit.Parameter)
	for j := range NumQubits {
		inputs[InputName(j)] = circuit.NewParameter("cell" + string(rune('A'+j)))
	}
	a, err := Build(1, 1, inputs)
	require.NoError(t, err)
	assert.Equal(t, "cellA", a.Circuit.Gates[0].Params[0].Param.Name)

	bound, err := a.Bind(make([]float64, a.NumWeights()), board.Board{1, 0, 0, 0, 0, 0, 0, 0, -1})
	require.NoError(t, err)
	assert.InDelta(t, EncodingScale, bound.Gates[0].Params[0].Value(), 1e-12)
	assert.InDelta(t, -EncodingScale, bound.Gates[8].Params[0].Value(), 1e-12)
}

func TestBind(t *testing.T) {
	a, err := Build(1, 1, DefaultInputs())
	require.NoError(t, err)
	weights := make([]float64, a.NumWeights())
	for i := range weights {
		weights[i] = float64(i) / 10
	}
	b := board.Board{1, -1, 0, 0, 1, 0, 0, 0, -1}
	bound, err := a.Bind(weights, b)
	require.NoError(t, err)
	require.True(t, bound.IsBound())
	for j := range NumQubits {
		assert.InDelta(t, 2*math.Pi/3*float64(b[j]), bound.Gates[j].Params[0].Value(), 1e-12)
	}
	assert.InDelta(t, 0.0, bound.Gates[9].Params[0].Value(), 1e-12)
	assert.InDelta(t, 0.8, bound.Gates[len(bound.Gates)-1].Params[0].Value(), 1e-12)

	_, err = a.Bind(weights[:3], b)
	assert.Error(t, err)
}

func TestBoundAnsatzQASMRoundTrip(t *testing.T) {
	a, err := Build(1, 2, DefaultInputs())
	require.NoError(t, err)
	weights := make([]float64, a.NumWeights())
	for i := range weights {
		weights[i] = math.Pi / float64(i+1)
	}
	bound, err := a.Bind(weights, board.Board{1, 0, -1, 0, 1, 0, -1, 0, 1})
	require.NoError(t, err)

	qasm, err := bound.ToQASM()
	require.NoError(t, err)
	assert.Contains(t, qasm, "qreg q[9];")
	assert.Contains(t, qasm, "rx(2*pi/3) q[0];")
	assert.Contains(t, qasm, "rx(-2*pi/3) q[2];")
	assert.Contains(t, qasm, "cry(")

	parsed, err := circuit.ParseQASM(qasm)
	require.NoError(t, err)
	require.Equal(t, NumQubits, parsed.NumQubits)
	require.Len(t, parsed.Gates, len(bound.Gates))
	for i, g := range parsed.Gates {
		want := bound.Gates[i]
		assert.Equal(t, want.Type, g.Type, "gate #%d", i)
		assert.Equal(t, want.Target, g.Target, "gate #%d", i)
		assert.Equal(t, want.Control, g.Control, "gate #%d", i)
		require.Len(t, g.Params, len(want.Params))
		for j := range g.Params {
			assert.InDelta(t, want.Params[j].Value(), g.Params[j].Value(), 1e-12, "gate #%d", i)
		}
	}
}
