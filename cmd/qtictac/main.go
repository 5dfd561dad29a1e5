// qtictac trains and scores a variational quantum classifier that predicts the
// outcome of tic-tac-toe positions.
//
// Typical use:
//
//	qtictac -games=300 -layers=1 -reps=2 -train_iters=150 -save_weights=weights.txt
//	qtictac -weights_file=weights.txt -train_iters=0 -board="XO./.X./..O"
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"

	"qtictac/internal/ui"
)

// Flags
var (
	flagLayers = flag.Int("layers", 1, "Number of data-encoding layers of the ansatz.")
	flagReps   = flag.Int("reps", 1, "Repetitions of the gate blocks per layer.")

	flagRatio = flag.Float64("ratio", 0.7, "Fraction of the positions used for training, in (0, 1).")
	flagSeed  = flag.Uint64("seed", 1, "Seed for game generation, splitting, initial weights and training.")
	flagGames = flag.Int("games", 200, "Number of random games played to collect positions. "+
		"Ignored with -reachable.")
	flagReachable = flag.Bool("reachable", false, "Use every reachable position instead of random games.")

	flagTrainIters = flag.Int("train_iters", 100, "Number of SPSA steps. 0 skips training.")
	flagBatch      = flag.Int("batch", 16, "Minibatch size for each SPSA step. If <= 0 the full training set is used.")
	flagSpsaA      = flag.Float64("spsa_a", 0.2, "SPSA step size scale.")
	flagSpsaC      = flag.Float64("spsa_c", 0.1, "SPSA perturbation scale.")

	flagWeights = flag.String("weights", "", "Comma-separated weights, e.g. \"pi/2, 0.3, -pi/4\". "+
		"If set (or -weights_file), training starts from these values.")
	flagWeightsFile = flag.String("weights_file", "", "File holding the weights, in the format of -weights.")
	flagSaveWeights = flag.String("save_weights", "", "File where to save the trained weights.")
	flagSaveQASM    = flag.String("save_qasm", "", "File where to save the bound circuit as OpenQASM 2.0. "+
		"The circuit is bound to the trained weights and the -board position (empty board if not set).")

	flagParallelism = flag.Int("parallelism", 0, "If > 0 ignore GOMAXPROCS and evaluate these many "+
		"examples simultaneously.")
	flagShots = flag.Int("shots", 0, "If > 0 estimate each observable from this many measurement shots "+
		"instead of exactly.")

	flagTUI   = flag.Bool("tui", false, "Show an interactive progress display.")
	flagDraw  = flag.Bool("draw", false, "Print the ansatz circuit.")
	flagBoard = flag.String("board", "", "Classify this position only, e.g. \"XO./.X./..O\", "+
		"instead of scoring a test set.")
)

// Globals
var (
	// globalCtx used everywhere. It is cancelled on interrupt (ctrl+C).
	globalCtx = context.Background()
)

// safeInterrupt calls onInterrupt on the first SIGINT/SIGTERM and exits on
// the second.
func safeInterrupt(onInterrupt func()) {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigChan
		fmt.Println()
		klog.Errorf("Got interrupted (signal %q), shutting down...", s)
		onInterrupt()
		s = <-sigChan
		klog.Fatalf("Interrupted again (signal %q), exiting.", s)
	}()
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	var globalCancel func()
	globalCtx, globalCancel = context.WithCancel(context.Background())
	defer globalCancel()
	safeInterrupt(globalCancel)

	if *flagRatio <= 0 || *flagRatio >= 1 {
		klog.Fatalf("Invalid -ratio=%g, it must be in (0, 1)", *flagRatio)
	}
	if *flagLayers < 1 || *flagReps < 0 {
		klog.Fatalf("Invalid -layers=%d / -reps=%d", *flagLayers, *flagReps)
	}

	r := newRun()
	must.M(r.buildAnsatz())
	if *flagDraw {
		fmt.Println(ui.RenderCircuit(r.ansatz.Circuit))
	}
	must.M(r.prepareData())
	if *flagTUI {
		must.M(r.executeWithTUI(globalCtx))
	} else {
		must.M(r.execute(globalCtx))
	}
}
