package board

import (
	"math/rand/v2"
	"slices"

	"github.com/pkg/errors"
)

// Dataset holds positions and their labels as parallel slices.
type Dataset struct {
	Positions []Board
	Labels    []Label
}

// NewDataset labels each position with WhoWon.
func NewDataset(positions []Board) Dataset {
	ds := Dataset{
		Positions: positions,
		Labels:    make([]Label, len(positions)),
	}
	for i, b := range positions {
		ds.Labels[i] = WhoWon(b)
	}
	return ds
}

// Len returns the number of examples.
func (ds Dataset) Len() int { return len(ds.Positions) }

// ClassCounts returns how many labels fall in each class. Labels without a
// unique maximum are not counted.
func (ds Dataset) ClassCounts() [3]int {
	var counts [3]int
	for _, l := range ds.Labels {
		if c, ok := l.Class(); ok {
			counts[c]++
		}
	}
	return counts
}

// Subset returns the examples at the given indices, in that order.
func (ds Dataset) Subset(indices []int) Dataset {
	sub := Dataset{
		Positions: make([]Board, len(indices)),
		Labels:    make([]Label, len(indices)),
	}
	for i, idx := range indices {
		sub.Positions[i] = ds.Positions[idx]
		sub.Labels[i] = ds.Labels[idx]
	}
	return sub
}

// IsFinished reports whether the game on b is over: a line is completed or
// no empty cell is left.
func (b Board) IsFinished() bool {
	return WhoWon(b) != Draw || b.Count(Empty) == 0
}

// NextPlayer returns whose turn it is, assuming X moves first.
func (b Board) NextPlayer() int {
	if b.Count(X) > b.Count(O) {
		return O
	}
	return X
}

// Reachable returns every position that can appear in a legal game started
// from the empty board, including the empty board itself. The order is the
// depth-first visiting order, so it is deterministic.
func Reachable() []Board {
	seen := make(map[Board]bool)
	var result []Board
	var visit func(b Board)
	visit = func(b Board) {
		if seen[b] {
			return
		}
		seen[b] = true
		result = append(result, b)
		if b.IsFinished() {
			return
		}
		player := b.NextPlayer()
		for i := range Size {
			if b[i] != Empty {
				continue
			}
			next := b
			next[i] = player
			visit(next)
		}
	}
	visit(Board{})
	return result
}

// RandomGames plays n games with uniformly random legal moves and returns
// their final positions.
func RandomGames(rng *rand.Rand, n int) []Board {
	games := make([]Board, n)
	for g := range n {
		var b Board
		for !b.IsFinished() {
			free := make([]int, 0, Size)
			for i, v := range b {
				if v == Empty {
					free = append(free, i)
				}
			}
			b[free[rng.IntN(len(free))]] = b.NextPlayer()
		}
		games[g] = b
	}
	return games
}

// SplitIndices draws floor(ratio*n) distinct indices uniformly at random for
// the training set. The remaining indices, in ascending order, form the test
// set, so train and test partition [0, n).
func SplitIndices(rng *rand.Rand, ratio float64, n int) (train, test []int, err error) {
	if !(ratio > 0 && ratio < 1) {
		return nil, nil, errors.Errorf("train ratio must be in (0,1), got %g", ratio)
	}
	if n < 0 {
		return nil, nil, errors.Errorf("invalid number of examples %d", n)
	}
	nTrain := int(ratio * float64(n))
	train = rng.Perm(n)[:nTrain]
	inTrain := make([]bool, n)
	for _, idx := range train {
		inTrain[idx] = true
	}
	test = make([]int, 0, n-nTrain)
	for idx := range n {
		if !inTrain[idx] {
			test = append(test, idx)
		}
	}
	return train, test, nil
}

// Split randomly partitions positions and labels into a training and a test
// dataset, with floor(ratio*len) training examples. There is no
// stratification by class.
func Split(rng *rand.Rand, ratio float64, positions []Board, labels []Label) (train, test Dataset, err error) {
	if len(positions) != len(labels) {
		err = errors.Errorf("got %d positions but %d labels", len(positions), len(labels))
		return
	}
	trainIdx, testIdx, err := SplitIndices(rng, ratio, len(labels))
	if err != nil {
		return
	}
	all := Dataset{Positions: positions, Labels: labels}
	return all.Subset(trainIdx), all.Subset(testIdx), nil
}

// Dedup removes repeated positions, keeping the first occurrence of each.
func Dedup(positions []Board) []Board {
	seen := make(map[Board]bool, len(positions))
	return slices.DeleteFunc(slices.Clone(positions), func(b Board) bool {
		if seen[b] {
			return true
		}
		seen[b] = true
		return false
	})
}
