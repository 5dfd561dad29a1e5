// Package board holds tic-tac-toe positions, their outcome labels and the
// datasets built from them.
package board

import (
	"strings"

	"github.com/pkg/errors"
)

// Cell values.
const (
	O     = -1
	Empty = 0
	X     = 1
)

// Size is the number of cells of a board.
const Size = 9

// Board is a flattened 3x3 grid, row-major, with cells in {O, Empty, X}.
type Board [Size]int

// Lines are the 8 winning triples, in the order WhoWon scans them.
var Lines = [8][3]int{
	{0, 1, 2}, {0, 3, 6}, {0, 4, 8}, {3, 4, 5},
	{1, 4, 7}, {6, 4, 2}, {2, 5, 8}, {6, 7, 8},
}

// FromInts converts a slice of 9 cell values into a Board.
func FromInts(cells []int) (Board, error) {
	var b Board
	if len(cells) != Size {
		return b, errors.Errorf("board needs %d cells, got %d", Size, len(cells))
	}
	copy(b[:], cells)
	return b, b.Validate()
}

// Validate checks that every cell holds O, Empty or X.
func (b Board) Validate() error {
	for i, v := range b {
		if v < O || v > X {
			return errors.Errorf("cell %d has invalid value %d", i, v)
		}
	}
	return nil
}

// Parse reads a board from text. Accepted symbols are X/x, O/o and one of
// ".-_" for empty cells; "/" and whitespace are ignored, so "XO./.X./..O"
// and "XO. .X. ..O" both work.
func Parse(s string) (Board, error) {
	var b Board
	n := 0
	for _, r := range s {
		var v int
		switch r {
		case '/', ' ', '\t', '\n', '\r':
			continue
		case 'X', 'x':
			v = X
		case 'O', 'o':
			v = O
		case '.', '-', '_':
			v = Empty
		default:
			return b, errors.Errorf("invalid board symbol %q in %q", r, s)
		}
		if n >= Size {
			return b, errors.Errorf("board %q has more than %d cells", s, Size)
		}
		b[n] = v
		n++
	}
	if n != Size {
		return b, errors.Errorf("board %q has %d cells, want %d", s, n, Size)
	}
	return b, nil
}

// String renders the board in the form accepted by Parse, rows separated by "/".
func (b Board) String() string {
	var sb strings.Builder
	for i, v := range b {
		if i > 0 && i%3 == 0 {
			sb.WriteByte('/')
		}
		sb.WriteByte(Symbol(v))
	}
	return sb.String()
}

// Symbol returns the display character of a cell value.
func Symbol(v int) byte {
	switch v {
	case X:
		return 'X'
	case O:
		return 'O'
	default:
		return '.'
	}
}

// Count returns how many cells hold the value v.
func (b Board) Count(v int) int {
	n := 0
	for _, c := range b {
		if c == v {
			n++
		}
	}
	return n
}
