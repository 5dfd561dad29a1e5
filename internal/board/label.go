package board

// Label is the 3-class outcome vector {X wins, draw, O wins}, with +1 on the
// winning class and -1 elsewhere.
type Label [3]float64

// Outcome classes, indices into a Label.
const (
	ClassX    = 0
	ClassDraw = 1
	ClassO    = 2
)

// The three labels WhoWon can return.
var (
	XWins = Label{1, -1, -1}
	Draw  = Label{-1, 1, -1}
	OWins = Label{-1, -1, 1}
)

// WhoWon labels a position by scanning Lines in order: the first triple
// summing to 3 is an X win, -3 an O win. Positions with no completed line,
// finished or not, are labeled Draw.
//
// A position with completed lines for both players is resolved by whichever
// line comes first in Lines.
func WhoWon(b Board) Label {
	for _, line := range Lines {
		total := 0
		for _, idx := range line {
			total += b[idx]
		}
		switch total {
		case 3:
			return XWins
		case -3:
			return OWins
		}
	}
	return Draw
}

// Class returns the index of the largest entry. ok is false when the maximum
// is shared by more than one entry.
func (l Label) Class() (class int, ok bool) {
	return Argmax(l[:])
}

// Argmax returns the index of the largest value and whether it is unique.
func Argmax(values []float64) (idx int, unique bool) {
	if len(values) == 0 {
		return -1, false
	}
	idx, unique = 0, true
	for i := 1; i < len(values); i++ {
		switch {
		case values[i] > values[idx]:
			idx, unique = i, true
		case values[i] == values[idx]:
			unique = false
		}
	}
	return idx, unique
}

// String names the label's class.
func (l Label) String() string {
	class, ok := l.Class()
	if !ok {
		return "ambiguous"
	}
	switch class {
	case ClassX:
		return "X wins"
	case ClassO:
		return "O wins"
	default:
		return "draw"
	}
}
