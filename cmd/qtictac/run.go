package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"qtictac/internal/ansatz"
	"qtictac/internal/board"
	"qtictac/internal/circuit"
	"qtictac/internal/classifier"
	"qtictac/internal/quantum"
	"qtictac/internal/ui"
)

// run holds the state of one invocation: data, model and estimator.
type run struct {
	rng       *rand.Rand
	estimator *quantum.StatevectorEstimator
	ansatz    *ansatz.Ansatz

	train, test board.Dataset
	weights     []float64
}

// result of a run, printed at the end.
type result struct {
	accuracy float64

	// Set when classifying a single position.
	position   *board.Board
	prediction classifier.Prediction
}

func newRun() *run {
	return &run{
		rng: rand.New(rand.NewPCG(*flagSeed, 0x51a7e)),
		estimator: &quantum.StatevectorEstimator{
			Shots: *flagShots,
			Seed:  *flagSeed,
		},
	}
}

func (r *run) buildAnsatz() (err error) {
	r.ansatz, err = ansatz.Build(*flagLayers, *flagReps, ansatz.DefaultInputs())
	if err != nil {
		return err
	}
	klog.Infof("Ansatz: %d layers x %d reps, %d weights, %d gates (%s), depth %d",
		r.ansatz.Layers, r.ansatz.Reps, r.ansatz.NumWeights(), len(r.ansatz.Circuit.Gates),
		r.ansatz.Circuit.GateSummary(), r.ansatz.Circuit.Depth())
	return nil
}

// prepareData collects positions, labels them and splits them into train and
// test sets.
func (r *run) prepareData() (err error) {
	var positions []board.Board
	if *flagReachable {
		positions = board.Reachable()
	} else {
		positions = board.Dedup(board.RandomGames(r.rng, *flagGames))
	}
	all := board.NewDataset(positions)
	counts := all.ClassCounts()
	klog.Infof("Dataset: %d positions (X wins=%d, draw=%d, O wins=%d)",
		all.Len(), counts[board.ClassX], counts[board.ClassDraw], counts[board.ClassO])
	r.train, r.test, err = board.Split(r.rng, *flagRatio, all.Positions, all.Labels)
	if err != nil {
		return errors.WithMessage(err, "splitting dataset")
	}
	klog.Infof("Split: %d train, %d test", r.train.Len(), r.test.Len())
	return nil
}

// loadWeights reads the initial weights from -weights or -weights_file, or
// draws them at random.
func (r *run) loadWeights() error {
	text := *flagWeights
	if *flagWeightsFile != "" {
		if text != "" {
			return errors.New("only one of -weights and -weights_file can be set")
		}
		contents, err := os.ReadFile(*flagWeightsFile)
		if err != nil {
			return errors.Wrapf(err, "reading weights from %q", *flagWeightsFile)
		}
		text = strings.TrimSpace(string(contents))
	}
	if text == "" {
		r.weights = classifier.RandomWeights(r.rng, r.ansatz.NumWeights())
		klog.V(1).Infof("Initial weights drawn at random")
		return nil
	}
	weights, err := circuit.ParseAngles(text)
	if err != nil {
		return errors.WithMessage(err, "parsing weights")
	}
	if len(weights) != r.ansatz.NumWeights() {
		return errors.Errorf("ansatz with -layers=%d -reps=%d needs %d weights, got %d",
			*flagLayers, *flagReps, r.ansatz.NumWeights(), len(weights))
	}
	r.weights = weights
	return nil
}

// trainAndEvaluate trains the weights, saves what was requested and then
// scores the test set or classifies the -board position. If send is not nil,
// progress messages are sent through it.
func (r *run) trainAndEvaluate(ctx context.Context, send func(tea.Msg)) (*result, error) {
	if err := r.loadWeights(); err != nil {
		return nil, err
	}
	if *flagTrainIters > 0 {
		trainer := &classifier.Trainer{
			Estimator:   r.estimator,
			Iterations:  *flagTrainIters,
			BatchSize:   *flagBatch,
			A:           *flagSpsaA,
			C:           *flagSpsaC,
			Rng:         r.rng,
			Parallelism: *flagParallelism,
			OnStep: func(iter int, loss float64) {
				if send != nil {
					send(ui.StepMsg{Iter: iter, Total: *flagTrainIters, Loss: loss})
				} else if (iter+1)%10 == 0 || iter+1 == *flagTrainIters {
					klog.Infof("Step %d/%d: loss=%.5f", iter+1, *flagTrainIters, loss)
				}
			},
		}
		weights, err := trainer.Train(ctx, r.ansatz, r.train, r.weights)
		if err != nil {
			return nil, errors.WithMessage(err, "training")
		}
		r.weights = weights
	}
	if err := r.save(); err != nil {
		return nil, err
	}

	if *flagBoard != "" {
		b, err := board.Parse(*flagBoard)
		if err != nil {
			return nil, err
		}
		pred, err := classifier.Predict(ctx, r.estimator, r.ansatz, r.weights, b)
		if err != nil {
			return nil, err
		}
		return &result{position: &b, prediction: pred}, nil
	}

	scorer := &classifier.Scorer{
		Estimator:   r.estimator,
		Parallelism: *flagParallelism,
	}
	if send != nil {
		scorer.OnProgress = func(done, correct, total int) {
			send(ui.ScoreMsg{Done: done, Correct: correct, Total: total})
		}
	}
	accuracy, err := scorer.Score(ctx, r.ansatz, r.weights, r.test.Positions, r.test.Labels)
	if err != nil {
		return nil, errors.WithMessage(err, "scoring")
	}
	return &result{accuracy: accuracy}, nil
}

// save writes the weights and the bound circuit, if requested.
func (r *run) save() error {
	if *flagSaveWeights != "" {
		if err := os.WriteFile(*flagSaveWeights, []byte(circuit.FormatAngles(r.weights)+"\n"), 0644); err != nil {
			return errors.Wrapf(err, "saving weights to %q", *flagSaveWeights)
		}
		klog.Infof("Saved %d weights to %q", len(r.weights), *flagSaveWeights)
	}
	if *flagSaveQASM != "" {
		var b board.Board
		if *flagBoard != "" {
			var err error
			if b, err = board.Parse(*flagBoard); err != nil {
				return err
			}
		}
		bound, err := r.ansatz.Bind(r.weights, b)
		if err != nil {
			return err
		}
		qasm, err := bound.ToQASM()
		if err != nil {
			return err
		}
		if err := os.WriteFile(*flagSaveQASM, []byte(qasm), 0644); err != nil {
			return errors.Wrapf(err, "saving circuit to %q", *flagSaveQASM)
		}
		klog.Infof("Saved circuit bound to %s to %q", b, *flagSaveQASM)
	}
	return nil
}

func (r *run) execute(ctx context.Context) error {
	res, err := r.trainAndEvaluate(ctx, nil)
	if err != nil {
		return err
	}
	r.report(res)
	return nil
}

// executeWithTUI runs the pipeline in a goroutine while a bubbletea program
// displays its progress. Quitting the display cancels the pipeline.
func (r *run) executeWithTUI(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	title := fmt.Sprintf("qtictac: %d layers x %d reps, %d train / %d test positions",
		*flagLayers, *flagReps, r.train.Len(), r.test.Len())
	p := tea.NewProgram(ui.NewProgressModel(title))
	type outcome struct {
		res *result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := r.trainAndEvaluate(ctx, p.Send)
		msg := ui.DoneMsg{Err: err}
		if res != nil {
			msg.Accuracy = res.accuracy
			if res.position != nil {
				label := res.prediction.Label()
				msg.Prediction = &label
			}
		}
		p.Send(msg)
		done <- outcome{res, err}
	}()

	final, err := p.Run()
	if err != nil {
		return errors.Wrap(err, "running terminal UI")
	}
	aborted := final.(ui.ProgressModel).Aborted()
	if aborted {
		cancel()
	}
	out := <-done
	if aborted && errors.Is(out.err, context.Canceled) {
		klog.Warningf("Interrupted by the user")
		return nil
	}
	if out.err != nil {
		return out.err
	}
	r.report(out.res)
	return nil
}

func (r *run) report(res *result) {
	if res.position != nil {
		fmt.Println(ui.RenderBoard(*res.position, board.WhoWon(*res.position)))
		fmt.Println("Prediction:")
		fmt.Println(ui.RenderScores(res.prediction.Label()))
		return
	}
	fmt.Printf("Test accuracy: %.2f%% on %d positions\n", 100*res.accuracy, r.test.Len())
}
