package classifier

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtictac/internal/ansatz"
	"qtictac/internal/board"
	"qtictac/internal/circuit"
	"qtictac/internal/quantum"
)

// oracleEstimator decodes the board from the encoding layer of a bound ansatz
// and answers every Z observable with the matching entry of the true label:
// corners read the X-wins entry, the center the draw entry and edges the
// O-wins entry.
type oracleEstimator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (e *oracleEstimator) Run(ctx context.Context, c *circuit.Circuit, observables ...quantum.Observable) ([]float64, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	var b board.Board
	for j := range board.Size {
		b[j] = int(math.Round(c.Gates[j].Params[0].Value() / ansatz.EncodingScale))
	}
	label := board.WhoWon(b)
	values := make([]float64, len(observables))
	for i, obs := range observables {
		q := zQubit(obs)
		switch {
		case q == ansatz.Center:
			values[i] = label[board.ClassDraw]
		case q%2 == 0:
			values[i] = label[board.ClassX]
		default:
			values[i] = label[board.ClassO]
		}
	}
	return values, nil
}

func zQubit(obs quantum.Observable) int {
	for q, op := range obs.Terms[0].Ops {
		if op == 'Z' {
			return q
		}
	}
	return -1
}

// constEstimator returns a fixed value per measured qubit.
type constEstimator map[int]float64

func (e constEstimator) Run(_ context.Context, _ *circuit.Circuit, observables ...quantum.Observable) ([]float64, error) {
	values := make([]float64, len(observables))
	for i, obs := range observables {
		values[i] = e[zQubit(obs)]
	}
	return values, nil
}

func TestObservables(t *testing.T) {
	assert.Equal(t, "IIIIZIIII", MiddleObservable.String())
	require.Len(t, CornerObservables, 4)
	require.Len(t, EdgeObservables, 4)
	for i, q := range ansatz.Corners {
		assert.Equal(t, q, zQubit(CornerObservables[i]))
	}
	for i, q := range ansatz.Edges {
		assert.Equal(t, q, zQubit(EdgeObservables[i]))
	}
}

func TestMeasureOrder(t *testing.T) {
	est := constEstimator{0: 0.1, 2: 0.3, 6: 0.5, 8: 0.7, 4: -0.25, 1: -1, 3: -1, 5: 0, 7: 0}
	pred, err := Measure(context.Background(), est, circuit.New(ansatz.NumQubits))
	require.NoError(t, err)
	assert.InDelta(t, 0.4, pred[0], 1e-12)
	assert.InDelta(t, -0.25, pred[1], 1e-12)
	assert.InDelta(t, -0.5, pred[2], 1e-12)
	class, ok := pred.Class()
	assert.True(t, ok)
	assert.Equal(t, board.ClassX, class)
}

func TestMeasureError(t *testing.T) {
	sentinel := errors.New("backend unavailable")
	_, err := Measure(context.Background(), &oracleEstimator{err: sentinel}, circuit.New(ansatz.NumQubits))
	assert.ErrorIs(t, err, sentinel)
}

func TestMeasureExact(t *testing.T) {
	// Without weights, an empty board leaves every qubit in |0>.
	a, err := ansatz.Build(1, 0, ansatz.DefaultInputs())
	require.NoError(t, err)
	est := &quantum.StatevectorEstimator{}
	pred, err := Predict(context.Background(), est, a, nil, board.Board{})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 1, 1}, pred[:], 1e-9)

	// RX(2π/3) on every cell gives <Z> = cos(2π/3) = -1/2.
	full := board.Board{1, -1, 1, -1, 1, -1, -1, 1, -1}
	pred, err = Predict(context.Background(), est, a, nil, full)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-0.5, -0.5, -0.5}, pred[:], 1e-9)
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches(Prediction{0.9, 0.1, -0.3}, board.XWins))
	assert.True(t, Matches(Prediction{-0.9, 0.1, 0.3}, board.OWins))
	assert.False(t, Matches(Prediction{-0.9, 0.1, 0.3}, board.Draw))
	assert.True(t, Matches(Prediction{0.5, 0.5, 0}, board.XWins), "tie resolves to the first class")
	assert.False(t, Matches(Prediction{0.5, 0.5, 0}, board.Draw), "tie resolves to the first class")
	assert.False(t, Matches(Prediction{1, 0, 0}, board.Label{1, 1, -1}), "tied label")
}

func TestScoreFlatPrediction(t *testing.T) {
	// Without weights the empty board measures +1 everywhere, which counts as
	// an X win.
	a, err := ansatz.Build(1, 0, ansatz.DefaultInputs())
	require.NoError(t, err)
	s := &Scorer{Estimator: &quantum.StatevectorEstimator{}}
	acc, err := s.Score(context.Background(), a, nil, []board.Board{{}}, []board.Label{board.XWins})
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)

	acc, err = s.Score(context.Background(), a, nil, []board.Board{{}}, []board.Label{board.OWins})
	require.NoError(t, err)
	assert.Equal(t, 0.0, acc)
}

func testSet(t *testing.T, n int) board.Dataset {
	rng := rand.New(rand.NewPCG(7, 11))
	return board.NewDataset(board.RandomGames(rng, n))
}

func TestScorePerfect(t *testing.T) {
	a, err := ansatz.Build(1, 1, ansatz.DefaultInputs())
	require.NoError(t, err)
	ds := testSet(t, 40)
	var lastDone, lastCorrect int
	s := &Scorer{
		Estimator:   &oracleEstimator{},
		Parallelism: 4,
		OnProgress: func(done, correct, total int) {
			assert.Equal(t, ds.Len(), total)
			lastDone, lastCorrect = done, correct
		},
	}
	acc, err := s.Score(context.Background(), a, make([]float64, a.NumWeights()), ds.Positions, ds.Labels)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)
	assert.Equal(t, ds.Len(), lastDone)
	assert.Equal(t, ds.Len(), lastCorrect)
}

func TestScoreAgainstWrongLabels(t *testing.T) {
	a, err := ansatz.Build(1, 1, ansatz.DefaultInputs())
	require.NoError(t, err)
	positions := []board.Board{
		{1, 1, 1, -1, -1, 0, 0, 0, 0},
		{-1, -1, -1, 1, 1, 0, 1, 0, 0},
		{},
		{1, -1, 0, 0, 0, 0, 0, 0, 0},
	}
	labels := []board.Label{board.XWins, board.XWins, board.OWins, board.Draw}
	s := &Scorer{Estimator: &oracleEstimator{}}
	acc, err := s.Score(context.Background(), a, make([]float64, a.NumWeights()), positions, labels)
	require.NoError(t, err)
	assert.Equal(t, 0.5, acc)
}

func TestScoreRange(t *testing.T) {
	a, err := ansatz.Build(1, 1, ansatz.DefaultInputs())
	require.NoError(t, err)
	ds := testSet(t, 20)
	weights := RandomWeights(rand.New(rand.NewPCG(1, 2)), a.NumWeights())
	s := &Scorer{Estimator: &quantum.StatevectorEstimator{}}
	acc, err := s.Score(context.Background(), a, weights, ds.Positions, ds.Labels)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, acc, 0.0)
	assert.LessOrEqual(t, acc, 1.0)

	// Exact estimation is deterministic.
	again, err := s.Score(context.Background(), a, weights, ds.Positions, ds.Labels)
	require.NoError(t, err)
	assert.Equal(t, acc, again)
}

func TestScoreErrors(t *testing.T) {
	a, err := ansatz.Build(1, 1, ansatz.DefaultInputs())
	require.NoError(t, err)
	weights := make([]float64, a.NumWeights())
	s := &Scorer{Estimator: &oracleEstimator{}}
	ctx := context.Background()

	_, err = s.Score(ctx, a, weights, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyTestSet)

	_, err = s.Score(ctx, a, weights, []board.Board{{}}, nil)
	assert.Error(t, err)

	_, err = s.Score(ctx, a, weights[:1], []board.Board{{}}, []board.Label{board.Draw})
	assert.Error(t, err)

	sentinel := errors.New("job failed")
	s.Estimator = &oracleEstimator{err: sentinel}
	_, err = s.Score(ctx, a, weights, []board.Board{{}}, []board.Label{board.Draw})
	assert.ErrorIs(t, err, sentinel)
}

func TestSquaredError(t *testing.T) {
	assert.Equal(t, 0.0, SquaredError(Prediction(board.Draw), board.Draw))
	assert.InDelta(t, 8.0/3, SquaredError(Prediction(board.XWins), board.Draw), 1e-12)
}

func TestRandomWeights(t *testing.T) {
	w := RandomWeights(rand.New(rand.NewPCG(3, 4)), 100)
	require.Len(t, w, 100)
	for _, v := range w {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 2*math.Pi)
	}
	assert.Equal(t, w, RandomWeights(rand.New(rand.NewPCG(3, 4)), 100))
}

func TestLossWithShotsIsReproducible(t *testing.T) {
	a, err := ansatz.Build(1, 1, ansatz.DefaultInputs())
	require.NoError(t, err)
	ds := testSet(t, 30)
	weights := RandomWeights(rand.New(rand.NewPCG(1, 2)), a.NumWeights())
	var losses []float64
	for range 4 {
		trainer := &Trainer{
			Estimator:   &quantum.StatevectorEstimator{Shots: 20, Seed: 9},
			Parallelism: 8,
		}
		loss, err := trainer.Loss(context.Background(), a, weights, ds)
		require.NoError(t, err)
		losses = append(losses, loss)
	}
	for _, loss := range losses[1:] {
		assert.Equal(t, losses[0], loss)
	}
}

func TestTrainReducesLoss(t *testing.T) {
	a, err := ansatz.Build(1, 1, ansatz.DefaultInputs())
	require.NoError(t, err)
	ds := board.NewDataset([]board.Board{
		{1, 1, 1, -1, -1, 0, 0, 0, 0},
		{-1, -1, -1, 1, 1, 0, 1, 0, 0},
		{1, -1, 0, 0, 0, 0, 0, 0, 0},
		{1, 0, -1, 0, 1, 0, -1, 0, 1},
	})
	rng := rand.New(rand.NewPCG(5, 6))
	init := RandomWeights(rng, a.NumWeights())
	steps := 0
	trainer := &Trainer{
		Estimator:  &quantum.StatevectorEstimator{},
		Iterations: 30,
		Rng:        rng,
		OnStep:     func(iter int, loss float64) { steps++ },
	}
	ctx := context.Background()
	trained, err := trainer.Train(ctx, a, ds, init)
	require.NoError(t, err)
	assert.Equal(t, 30, steps)
	require.Len(t, trained, len(init))

	before, err := trainer.Loss(ctx, a, init, ds)
	require.NoError(t, err)
	after, err := trainer.Loss(ctx, a, trained, ds)
	require.NoError(t, err)
	assert.LessOrEqual(t, after, before)
}

func TestTrainErrors(t *testing.T) {
	a, err := ansatz.Build(1, 1, ansatz.DefaultInputs())
	require.NoError(t, err)
	ds := board.NewDataset([]board.Board{{}})
	rng := rand.New(rand.NewPCG(1, 1))
	trainer := &Trainer{Estimator: &quantum.StatevectorEstimator{}, Iterations: 5, Rng: rng}

	_, err = trainer.Train(context.Background(), a, ds, []float64{1})
	assert.Error(t, err)
	_, err = trainer.Train(context.Background(), a, board.Dataset{}, make([]float64, a.NumWeights()))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = trainer.Train(ctx, a, ds, make([]float64, a.NumWeights()))
	assert.ErrorIs(t, err, context.Canceled)
}
