package classifier

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"qtictac/internal/ansatz"
	"qtictac/internal/board"
	"qtictac/internal/quantum"
)

// ErrEmptyTestSet is returned when scoring on no examples.
var ErrEmptyTestSet = errors.New("no test examples to score")

// Scorer evaluates the accuracy of trained weights.
type Scorer struct {
	Estimator quantum.Estimator

	// Parallelism bounds how many examples are evaluated at once.
	// If <= 0, runtime.NumCPU() is used.
	Parallelism int

	// OnProgress, if set, is called after each example with the number of
	// examples done, how many of those were correct, and the total.
	// Calls are serialized.
	OnProgress func(done, correct, total int)
}

func (s *Scorer) parallelism() int {
	if s.Parallelism > 0 {
		return s.Parallelism
	}
	return runtime.NumCPU()
}

// Score binds weights and each test position into the ansatz, measures the
// prediction and compares its argmax with the argmax of the true label. It
// returns the fraction of correct predictions.
//
// A label without a unique maximum counts as a miss; see Matches.
func (s *Scorer) Score(ctx context.Context, a *ansatz.Ansatz, weights []float64, positions []board.Board, labels []board.Label) (float64, error) {
	if len(positions) != len(labels) {
		return 0, errors.Errorf("got %d test positions but %d labels", len(positions), len(labels))
	}
	if len(positions) == 0 {
		return 0, ErrEmptyTestSet
	}
	if len(weights) != a.NumWeights() {
		return 0, errors.Errorf("ansatz has %d weights, got %d values", a.NumWeights(), len(weights))
	}

	var (
		mu      sync.Mutex
		done    int
		correct int
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism())
	for i, pos := range positions {
		g.Go(func() error {
			pred, err := Predict(gCtx, s.Estimator, a, weights, pos)
			if err != nil {
				return errors.WithMessagef(err, "test example #%d (%s)", i, pos)
			}
			hit := Matches(pred, labels[i])
			if klog.V(2).Enabled() {
				klog.Infof("Example #%d %s: prediction=%.4f label=%v hit=%v", i, pos, pred, labels[i], hit)
			}
			mu.Lock()
			defer mu.Unlock()
			done++
			if hit {
				correct++
			}
			if s.OnProgress != nil {
				s.OnProgress(done, correct, len(positions))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	accuracy := float64(correct) / float64(len(positions))
	klog.V(1).Infof("Scored %d examples: %d correct (accuracy=%.4f)", len(positions), correct, accuracy)
	return accuracy, nil
}

// Matches reports whether the predicted class equals the label's class. A
// label without a unique maximum never matches; ties in the prediction resolve
// to the first maximal entry.
func Matches(pred Prediction, label board.Label) bool {
	want, ok := label.Class()
	if !ok {
		return false
	}
	got, _ := pred.Class()
	return got == want
}
