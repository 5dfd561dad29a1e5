package quantum

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtictac/internal/circuit"
)

func TestParsePauli(t *testing.T) {
	p, err := ParsePauli("IIIIZIIII")
	require.NoError(t, err)
	assert.Equal(t, byte('Z'), p.Ops[4])
	assert.Equal(t, "IIIIZIIII", p.String())

	p, err = ParsePauli("ZIIIIIIII")
	require.NoError(t, err)
	assert.Equal(t, ZOn(9, 8), p)
	p, err = ParsePauli("iiiiiiiiz")
	require.NoError(t, err)
	assert.Equal(t, ZOn(9, 0), p)

	_, err = ParsePauli("IIQ")
	assert.Error(t, err)
	_, err = ParsePauli("")
	assert.Error(t, err)
}

func TestSingleQubitRotations(t *testing.T) {
	for _, theta := range []float64{0, 0.3, math.Pi / 2, 2, math.Pi} {
		c := circuit.New(1)
		c.RX(circuit.Const(theta), 0)
		state, err := Simulate(c)
		require.NoError(t, err)
		z, err := ZOn(1, 0).Expectation(state)
		require.NoError(t, err)
		assert.InDelta(t, math.Cos(theta), z, 1e-12, "RX(%g)", theta)
		y, err := mustPauli(t, "Y").Expectation(state)
		require.NoError(t, err)
		assert.InDelta(t, -math.Sin(theta), y, 1e-12, "RX(%g) <Y>", theta)

		c = circuit.New(1)
		c.RY(circuit.Const(theta), 0)
		state, err = Simulate(c)
		require.NoError(t, err)
		x, err := mustPauli(t, "X").Expectation(state)
		require.NoError(t, err)
		assert.InDelta(t, math.Sin(theta), x, 1e-12, "RY(%g) <X>", theta)
		assert.InDelta(t, 1, state.Norm(), 1e-12)
	}
}

func TestControlledRotation(t *testing.T) {
	// Control in |0>: the target is untouched.
	c := circuit.New(2)
	c.CRY(circuit.Const(1.1), 0, 1)
	state, err := Simulate(c)
	require.NoError(t, err)
	z1, err := ZOn(2, 1).Expectation(state)
	require.NoError(t, err)
	assert.InDelta(t, 1, z1, 1e-12)

	// Control in |1>: the target rotates.
	c = circuit.New(2)
	c.X(0)
	c.CRY(circuit.Const(1.1), 0, 1)
	state, err = Simulate(c)
	require.NoError(t, err)
	z1, err = ZOn(2, 1).Expectation(state)
	require.NoError(t, err)
	assert.InDelta(t, math.Cos(1.1), z1, 1e-12)
	z0, err := ZOn(2, 0).Expectation(state)
	require.NoError(t, err)
	assert.InDelta(t, -1, z0, 1e-12)

	// Control in superposition: <Z_target> averages the two branches.
	c = circuit.New(2)
	c.H(0)
	c.CRY(circuit.Const(math.Pi), 0, 1)
	state, err = Simulate(c)
	require.NoError(t, err)
	z1, err = ZOn(2, 1).Expectation(state)
	require.NoError(t, err)
	assert.InDelta(t, 0, z1, 1e-12)
	// (|00> + |11>)/sqrt(2): both qubits always agree.
	zz, err := mustPauli(t, "ZZ").Expectation(state)
	require.NoError(t, err)
	assert.InDelta(t, 1, zz, 1e-12)
}

func TestBellState(t *testing.T) {
	c := circuit.New(2)
	c.H(0)
	c.CX(0, 1)
	state, err := Simulate(c)
	require.NoError(t, err)
	probs := state.Probabilities()
	assert.InDeltaSlice(t, []float64{0.5, 0, 0, 0.5}, probs, 1e-12)
	for _, label := range []string{"ZZ", "XX"} {
		v, err := mustPauli(t, label).Expectation(state)
		require.NoError(t, err)
		assert.InDelta(t, 1, v, 1e-12, label)
	}
	v, err := mustPauli(t, "YY").Expectation(state)
	require.NoError(t, err)
	assert.InDelta(t, -1, v, 1e-12)
}

func TestSimulateUnbound(t *testing.T) {
	c := circuit.New(1)
	c.RX(circuit.Symbol(circuit.NewParameter("a")), 0)
	_, err := Simulate(c)
	assert.True(t, errors.Is(err, circuit.ErrUnbound))
}

func TestEstimatorExact(t *testing.T) {
	c := circuit.New(3)
	c.RX(circuit.Const(0.7), 0)
	c.RY(circuit.Const(1.3), 2)
	est := &StatevectorEstimator{}
	obsZ0, err := NewObservable("IIZ")
	require.NoError(t, err)
	values, err := est.Run(context.Background(), c, obsZ0, FromPauli(ZOn(3, 2)), Average(ZOn(3, 0), ZOn(3, 2)))
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.InDelta(t, math.Cos(0.7), values[0], 1e-12)
	assert.InDelta(t, math.Cos(1.3), values[1], 1e-12)
	assert.InDelta(t, (math.Cos(0.7)+math.Cos(1.3))/2, values[2], 1e-12)

	_, err = est.Run(context.Background(), c, FromPauli(ZOn(2, 0)))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = est.Run(ctx, c, obsZ0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEstimatorShots(t *testing.T) {
	c := circuit.New(2)
	c.RY(circuit.Const(1.0), 0)
	c.RX(circuit.Const(0.4), 1)
	est := &StatevectorEstimator{Shots: 20000, Seed: 42}
	values, err := est.Run(context.Background(), c,
		FromPauli(ZOn(2, 0)), FromPauli(mustPauli(t, "IX")), FromPauli(mustPauli(t, "YI")))
	require.NoError(t, err)
	// Standard deviation of the mean is at most 1/sqrt(20000) ~ 0.007.
	assert.InDelta(t, math.Cos(1.0), values[0], 0.04)
	assert.InDelta(t, math.Sin(1.0), values[1], 0.04)
	assert.InDelta(t, -math.Sin(0.4), values[2], 0.04)
}

func TestEstimatorShotsReproducible(t *testing.T) {
	c := circuit.New(2)
	c.RY(circuit.Const(1.0), 0)
	c.RX(circuit.Const(0.4), 1)
	obs := []Observable{FromPauli(ZOn(2, 0)), FromPauli(mustPauli(t, "XY"))}
	ctx := context.Background()

	est := &StatevectorEstimator{Shots: 50, Seed: 3}
	first, err := est.Run(ctx, c, obs...)
	require.NoError(t, err)
	// Unrelated runs in between do not shift the sample stream.
	_, err = est.Run(ctx, c, FromPauli(ZOn(2, 1)))
	require.NoError(t, err)
	second, err := est.Run(ctx, c, obs...)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	again, err := (&StatevectorEstimator{Shots: 50, Seed: 3}).Run(ctx, c, obs...)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	// A different circuit samples a different stream.
	assert.NotEqual(t, fingerprint(c, obs), fingerprint(circuit.New(2), obs))
	assert.NotEqual(t, fingerprint(c, obs), fingerprint(c, obs[:1]))
}

func mustPauli(t *testing.T, label string) Pauli {
	t.Helper()
	p, err := ParsePauli(label)
	require.NoError(t, err)
	return p
}
