package classifier

import (
	"context"
	"math"
	"math/rand/v2"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"qtictac/internal/ansatz"
	"qtictac/internal/board"
	"qtictac/internal/quantum"
)

// Default SPSA hyperparameters, the usual choice from Spall's guidelines.
const (
	DefaultA     = 0.2
	DefaultC     = 0.1
	DefaultAlpha = 0.602
	DefaultGamma = 0.101
)

// Trainer optimises the ansatz weights with SPSA (simultaneous perturbation
// stochastic approximation): each step estimates the gradient from two loss
// evaluations at weights perturbed in a random ±1 direction.
type Trainer struct {
	Estimator quantum.Estimator

	// Iterations is the number of SPSA steps.
	Iterations int

	// BatchSize is the number of examples drawn for each step. If <= 0 or
	// larger than the dataset, the full dataset is used.
	BatchSize int

	// A and C scale the step size a_k = A/(k+1)^Alpha and the perturbation
	// c_k = C/(k+1)^Gamma. Zero values select the defaults.
	A, C, Alpha, Gamma float64

	// Rng drives minibatch sampling and perturbation directions. Required.
	Rng *rand.Rand

	// Parallelism bounds concurrent example evaluations. If <= 0,
	// runtime.NumCPU() is used.
	Parallelism int

	// OnStep, if set, is called after each step with the step index and the
	// mean of the two perturbed minibatch losses.
	OnStep func(iter int, loss float64)
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// Train runs SPSA starting from init and returns the trained weights. The
// returned weights are never worse than init on the full dataset.
func (t *Trainer) Train(ctx context.Context, a *ansatz.Ansatz, ds board.Dataset, init []float64) ([]float64, error) {
	if len(init) != a.NumWeights() {
		return nil, errors.Errorf("ansatz has %d weights, got %d initial values", a.NumWeights(), len(init))
	}
	if ds.Len() == 0 {
		return nil, errors.New("no training examples")
	}
	if t.Rng == nil {
		return nil, errors.New("Trainer.Rng must be set")
	}
	bigA, bigC := orDefault(t.A, DefaultA), orDefault(t.C, DefaultC)
	alpha, gamma := orDefault(t.Alpha, DefaultAlpha), orDefault(t.Gamma, DefaultGamma)

	weights := append([]float64(nil), init...)
	plus := make([]float64, len(weights))
	minus := make([]float64, len(weights))
	delta := make([]float64, len(weights))
	for k := range t.Iterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ak := bigA / math.Pow(float64(k+1), alpha)
		ck := bigC / math.Pow(float64(k+1), gamma)
		for i := range delta {
			delta[i] = 1
			if t.Rng.IntN(2) == 0 {
				delta[i] = -1
			}
			plus[i] = weights[i] + ck*delta[i]
			minus[i] = weights[i] - ck*delta[i]
		}
		batch := t.batch(ds)
		lossPlus, err := t.Loss(ctx, a, plus, batch)
		if err != nil {
			return nil, errors.WithMessagef(err, "SPSA step %d", k)
		}
		lossMinus, err := t.Loss(ctx, a, minus, batch)
		if err != nil {
			return nil, errors.WithMessagef(err, "SPSA step %d", k)
		}
		diff := (lossPlus - lossMinus) / (2 * ck)
		for i := range weights {
			// delta[i] is ±1, so dividing by it is multiplying by it.
			weights[i] -= ak * diff * delta[i]
		}
		loss := (lossPlus + lossMinus) / 2
		klog.V(1).Infof("SPSA step %d: loss=%.5f a_k=%.4f c_k=%.4f", k, loss, ak, ck)
		if t.OnStep != nil {
			t.OnStep(k, loss)
		}
	}

	initLoss, err := t.Loss(ctx, a, init, ds)
	if err != nil {
		return nil, err
	}
	finalLoss, err := t.Loss(ctx, a, weights, ds)
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("Training loss: %.5f -> %.5f", initLoss, finalLoss)
	if finalLoss > initLoss {
		klog.Warningf("SPSA did not improve the loss (%.5f > %.5f), keeping initial weights", finalLoss, initLoss)
		return append([]float64(nil), init...), nil
	}
	return weights, nil
}

func (t *Trainer) batch(ds board.Dataset) board.Dataset {
	if t.BatchSize <= 0 || t.BatchSize >= ds.Len() {
		return ds
	}
	return ds.Subset(t.Rng.Perm(ds.Len())[:t.BatchSize])
}

// Loss returns the mean squared error between predictions and labels over ds.
func (t *Trainer) Loss(ctx context.Context, a *ansatz.Ansatz, weights []float64, ds board.Dataset) (float64, error) {
	if ds.Len() == 0 {
		return 0, errors.New("no examples to evaluate the loss on")
	}
	parallelism := t.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	losses := make([]float64, ds.Len())
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, pos := range ds.Positions {
		g.Go(func() error {
			pred, err := Predict(gCtx, t.Estimator, a, weights, pos)
			if err != nil {
				return err
			}
			losses[i] = SquaredError(pred, ds.Labels[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	total := 0.0
	for _, l := range losses {
		total += l
	}
	return total / float64(len(losses)), nil
}

// SquaredError returns the mean squared difference between prediction and label.
func SquaredError(pred Prediction, label board.Label) float64 {
	var sum float64
	for i := range pred {
		d := pred[i] - label[i]
		sum += d * d
	}
	return sum / float64(len(pred))
}

// RandomWeights returns n weights drawn uniformly from [0, 2π).
func RandomWeights(rng *rand.Rand, n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = rng.Float64() * 2 * math.Pi
	}
	return weights
}
