package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"qtictac/internal/board"
	"qtictac/internal/circuit"
)

// ──────────────────────────── Board rendering ────────────────────────────

// RenderBoard draws the 3x3 grid with the outcome named by label below it.
func RenderBoard(b board.Board, label board.Label) string {
	var sb strings.Builder
	for row := range 3 {
		if row > 0 {
			sb.WriteString(dimStyle.Render("───┼───┼───"))
			sb.WriteString("\n")
		}
		for col := range 3 {
			if col > 0 {
				sb.WriteString(dimStyle.Render("│"))
			}
			sb.WriteString(" " + renderMark(b[3*row+col]) + " ")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(titleStyle.Render(label.String()))
	return boardStyle.Render(sb.String())
}

func renderMark(v int) string {
	s := string(board.Symbol(v))
	switch v {
	case board.X:
		return xStyle.Render(s)
	case board.O:
		return oStyle.Render(s)
	default:
		return dimStyle.Render(s)
	}
}

// RenderScores lists the three entries of a label or prediction, in class
// order, highlighting the winning class.
func RenderScores(values board.Label) string {
	names := [3]string{"X wins", "draw", "O wins"}
	class, ok := values.Class()
	var sb strings.Builder
	for i, v := range values {
		line := fmt.Sprintf("%-7s %+.4f", names[i], v)
		if ok && i == class {
			sb.WriteString(goodStyle.Render("▸ " + line))
		} else {
			sb.WriteString("  " + valueStyle.Render(line))
		}
		if i < len(values)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// ──────────────────────────── Circuit rendering ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	n := lipgloss.Width(s)
	if n >= width {
		return s
	}
	total := width - n
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// controlSymbol is the wire symbol for the control qubit of a gate.
const controlSymbol = "●"

// targetSymbol returns the wire symbol for the target of a controlled gate,
// or "" if the target is drawn as a box.
func targetSymbol(gateType string) string {
	switch gateType {
	case "CX":
		return "⊕"
	case "CZ":
		return "●"
	default:
		return ""
	}
}

// gateDisplayName returns the short name drawn inside a gate box.
func gateDisplayName(gateType string) string {
	if spec, ok := circuit.LookupGate(gateType); ok && spec.Symbol != "" {
		return spec.Symbol
	}
	return gateType
}

// cellInfo describes what occupies a single cell in the circuit grid.
type cellInfo struct {
	gate        *circuit.Gate
	isControl   bool
	isTarget    bool
	vertAbove   bool
	vertBelow   bool
	passThrough bool
}

// span returns the lowest and highest qubit a gate's drawing covers.
func span(g circuit.Gate) (lo, hi int) {
	if g.IsControlled() {
		return min(g.Control, g.Target), max(g.Control, g.Target)
	}
	return g.Target, g.Target
}

// columns splits each moment of the circuit into drawable columns: gates in
// the same column act on distinct qubits and their vertical connectors do not
// cross.
func columns(c *circuit.Circuit) [][]int {
	var cols [][]int
	for _, moment := range c.Moments() {
		var momentCols [][]int
		var used [][]bool
		for _, gi := range moment {
			lo, hi := span(c.Gates[gi])
			placed := false
			for k := range momentCols {
				free := true
				for q := lo; q <= hi; q++ {
					if used[k][q] {
						free = false
						break
					}
				}
				if free {
					momentCols[k] = append(momentCols[k], gi)
					for q := lo; q <= hi; q++ {
						used[k][q] = true
					}
					placed = true
					break
				}
			}
			if !placed {
				occupied := make([]bool, c.NumQubits)
				for q := lo; q <= hi; q++ {
					occupied[q] = true
				}
				momentCols = append(momentCols, []int{gi})
				used = append(used, occupied)
			}
		}
		cols = append(cols, momentCols...)
	}
	return cols
}

// cellInfos returns rendering information for every qubit of a column.
func cellInfos(c *circuit.Circuit, col []int) []cellInfo {
	infos := make([]cellInfo, c.NumQubits)
	for _, gi := range col {
		g := &c.Gates[gi]
		if g.IsControlled() {
			infos[g.Control].gate = g
			infos[g.Control].isControl = true
			infos[g.Target].gate = g
			infos[g.Target].isTarget = true
			lo, hi := span(*g)
			for q := lo; q <= hi; q++ {
				infos[q].vertAbove = q > lo
				infos[q].vertBelow = q < hi
				infos[q].passThrough = q > lo && q < hi
			}
		} else {
			infos[g.Target].gate = g
		}
	}
	return infos
}

// renderCell returns 3 lines (top, mid, bot) for a single cell.
// Each line is exactly cellW visual characters wide.
func renderCell(info cellInfo) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1

	vertical := func() {
		top, bot = emptyRow, emptyRow
		if info.vertAbove {
			top = vertRow
		}
		if info.vertBelow {
			bot = vertRow
		}
	}
	boxed := func(name string) {
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		top = strings.Repeat(" ", margin) + gateStyle.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+padCenter(name, gateNameW)+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + gateStyle.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)
	}

	switch {
	case info.isControl:
		vertical()
		mid = strings.Repeat("─", dashL) + gateStyle.Render(controlSymbol) + strings.Repeat("─", dashR)

	case info.isTarget:
		if sym := targetSymbol(info.gate.Type); sym != "" {
			vertical()
			mid = strings.Repeat("─", dashL) + gateStyle.Render(sym) + strings.Repeat("─", dashR)
		} else {
			boxed(gateDisplayName(info.gate.Type))
			// Connect the box to the control through its border.
			if info.vertAbove {
				top = boxEdge("┌", "┴", "┐")
			}
			if info.vertBelow {
				bot = boxEdge("└", "┬", "┘")
			}
		}

	case info.gate != nil:
		boxed(gateDisplayName(info.gate.Type))

	case info.passThrough:
		top = vertRow
		mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)
		bot = vertRow

	default:
		// Empty wire
		vertical()
		mid = strings.Repeat("─", cellW)
	}
	return
}

// boxEdge draws the top or bottom border of a gate box with a connector in
// the middle.
func boxEdge(left, connector, right string) string {
	margin := (cellW - gateBoxW) / 2
	rightMargin := cellW - margin - gateBoxW
	half := gateNameW / 2
	edge := left + strings.Repeat("─", half) + connector + strings.Repeat("─", gateNameW-half-1) + right
	return strings.Repeat(" ", margin) + gateStyle.Render(edge) + strings.Repeat(" ", rightMargin)
}

// RenderCircuit draws the circuit as a wire diagram. Gates are packed into
// columns by their moment; long circuits wrap every few columns.
func RenderCircuit(c *circuit.Circuit) string {
	cols := columns(c)
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Circuit: %d qubits, %d gates, depth %d", c.NumQubits, len(c.Gates), c.Depth())))
	sb.WriteString("\n")
	if len(c.Gates) > 0 {
		sb.WriteString(dimStyle.Render(c.GateSummary()))
		sb.WriteString("\n")
	}

	for start := 0; start == 0 || start < len(cols); start += columnsPerRow {
		end := min(start+columnsPerRow, len(cols))
		sb.WriteString("\n")
		if len(cols) > columnsPerRow {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("  columns %d-%d of %d", start, end-1, len(cols))))
			sb.WriteString("\n")
		}

		infos := make([][]cellInfo, end-start)
		for k := start; k < end; k++ {
			infos[k-start] = cellInfos(c, cols[k])
		}
		for qubit := range c.NumQubits {
			topLine := strings.Repeat(" ", labelVisualW)
			midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", fmt.Sprintf("q[%d]", qubit))) + "──"
			botLine := strings.Repeat(" ", labelVisualW)
			for _, colInfos := range infos {
				top, mid, bot := renderCell(colInfos[qubit])
				topLine += top
				midLine += mid
				botLine += bot
			}
			sb.WriteString(topLine + "\n")
			sb.WriteString(midLine + "\n")
			sb.WriteString(botLine + "\n")
		}
	}
	return panelStyle.Render(sb.String())
}
