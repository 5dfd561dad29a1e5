// Package classifier turns expectation values of the ansatz into outcome
// predictions, scores trained weights and trains them.
package classifier

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"qtictac/internal/ansatz"
	"qtictac/internal/board"
	"qtictac/internal/circuit"
	"qtictac/internal/quantum"
)

// Observables read out by the classifier: Z on the center qubit, and Z on
// each corner and each edge qubit.
var (
	MiddleObservable  = quantum.FromPauli(quantum.ZOn(ansatz.NumQubits, ansatz.Center))
	CornerObservables = zObservables(ansatz.Corners)
	EdgeObservables   = zObservables(ansatz.Edges)
)

func zObservables(qubits []int) []quantum.Observable {
	obs := make([]quantum.Observable, len(qubits))
	for i, q := range qubits {
		obs[i] = quantum.FromPauli(quantum.ZOn(ansatz.NumQubits, q))
	}
	return obs
}

// Prediction holds the readout of the classifier in label order:
// corners (X wins), middle (draw), edges (O wins).
type Prediction [3]float64

// Class returns the predicted class and whether it is unambiguous.
func (p Prediction) Class() (int, bool) { return board.Argmax(p[:]) }

// Label converts the prediction to a board.Label for comparison.
func (p Prediction) Label() board.Label { return board.Label(p) }

// MeasureMiddle returns <Z> on the center qubit of a bound circuit.
func MeasureMiddle(ctx context.Context, est quantum.Estimator, bound *circuit.Circuit) (float64, error) {
	values, err := est.Run(ctx, bound, MiddleObservable)
	if err != nil {
		return 0, errors.WithMessage(err, "measuring middle")
	}
	return values[0], nil
}

// MeasureCorners returns the average <Z> over the corner qubits.
func MeasureCorners(ctx context.Context, est quantum.Estimator, bound *circuit.Circuit) (float64, error) {
	return measureAverage(ctx, est, bound, CornerObservables, "corners")
}

// MeasureEdges returns the average <Z> over the edge qubits.
func MeasureEdges(ctx context.Context, est quantum.Estimator, bound *circuit.Circuit) (float64, error) {
	return measureAverage(ctx, est, bound, EdgeObservables, "edges")
}

func measureAverage(ctx context.Context, est quantum.Estimator, bound *circuit.Circuit, observables []quantum.Observable, group string) (float64, error) {
	values, err := est.Run(ctx, bound, observables...)
	if err != nil {
		return 0, errors.WithMessagef(err, "measuring %s", group)
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values)), nil
}

// Measure reads the three observable groups of a bound circuit concurrently
// and returns them as (corners, middle, edges).
func Measure(ctx context.Context, est quantum.Estimator, bound *circuit.Circuit) (Prediction, error) {
	var pred Prediction
	g, gCtx := errgroup.WithContext(ctx)
	measures := [3]func(context.Context, quantum.Estimator, *circuit.Circuit) (float64, error){
		MeasureCorners, MeasureMiddle, MeasureEdges,
	}
	for i, measure := range measures {
		g.Go(func() (err error) {
			pred[i], err = measure(gCtx, est, bound)
			return
		})
	}
	if err := g.Wait(); err != nil {
		return Prediction{}, err
	}
	return pred, nil
}

// Predict binds weights and the board into the ansatz and measures it.
func Predict(ctx context.Context, est quantum.Estimator, a *ansatz.Ansatz, weights []float64, b board.Board) (Prediction, error) {
	bound, err := a.Bind(weights, b)
	if err != nil {
		return Prediction{}, err
	}
	return Measure(ctx, est, bound)
}
