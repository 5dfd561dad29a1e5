package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"qtictac/internal/board"
)

// phase is the stage of the pipeline the model is reporting on.
type phase int

const (
	phaseTraining phase = iota
	phaseScoring
	phaseDone
)

func (p phase) String() string {
	switch p {
	case phaseTraining:
		return "Training"
	case phaseScoring:
		return "Scoring"
	default:
		return "Done"
	}
}

// StepMsg reports a finished optimisation step.
type StepMsg struct {
	Iter, Total int
	Loss        float64
}

// ScoreMsg reports progress while scoring the test set.
type ScoreMsg struct {
	Done, Correct, Total int
}

// DoneMsg ends the run. Err is set if the pipeline failed. Prediction is set
// instead of Accuracy when a single position was classified.
type DoneMsg struct {
	Accuracy   float64
	Prediction *board.Label
	Err        error
}

// ProgressModel is a bubbletea model showing training and scoring progress.
// Messages are sent to it from the worker goroutines with tea.Program.Send.
type ProgressModel struct {
	title    string
	spinner  spinner.Model
	progress progress.Model

	phase       phase
	iter, iters int
	loss        float64
	bestLoss    float64
	hasLoss     bool

	done, correct, total int

	accuracy   float64
	prediction *board.Label
	err        error
	aborted  bool
}

// NewProgressModel returns a model titled with the run description.
func NewProgressModel(title string) ProgressModel {
	return ProgressModel{
		title: title,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(valueStyle),
		),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Aborted reports whether the user quit before the run finished.
func (m ProgressModel) Aborted() bool { return m.aborted }

// Err returns the error the run finished with, if any.
func (m ProgressModel) Err() error { return m.err }

// ──────────────────────────── Init / Update ────────────────────────────

func (m ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.phase != phaseDone {
				m.aborted = true
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.progress.Width = min(max(msg.Width-10, 10), 60)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StepMsg:
		m.phase = phaseTraining
		m.iter, m.iters = msg.Iter+1, msg.Total
		m.loss = msg.Loss
		if !m.hasLoss || msg.Loss < m.bestLoss {
			m.bestLoss = msg.Loss
		}
		m.hasLoss = true

	case ScoreMsg:
		m.phase = phaseScoring
		m.done, m.correct, m.total = msg.Done, msg.Correct, msg.Total

	case DoneMsg:
		m.phase = phaseDone
		m.accuracy, m.prediction, m.err = msg.Accuracy, msg.Prediction, msg.Err
		return m, tea.Quit
	}
	return m, nil
}

// fraction returns how far the current phase has progressed, in [0, 1].
func (m ProgressModel) fraction() float64 {
	switch m.phase {
	case phaseTraining:
		if m.iters > 0 {
			return float64(m.iter) / float64(m.iters)
		}
	case phaseScoring:
		if m.total > 0 {
			return float64(m.done) / float64(m.total)
		}
	case phaseDone:
		return 1
	}
	return 0
}

// View renders the UI.
func (m ProgressModel) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n\n")

	if m.phase == phaseDone {
		switch {
		case m.err != nil:
			sb.WriteString(errorStyle.Render("Failed: " + m.err.Error()))
		case m.prediction != nil:
			sb.WriteString("Prediction:\n")
			sb.WriteString(RenderScores(*m.prediction))
		default:
			sb.WriteString(goodStyle.Render(fmt.Sprintf("Accuracy: %.2f%%", 100*m.accuracy)))
		}
		sb.WriteString("\n")
		return panelStyle.Render(sb.String())
	}

	fmt.Fprintf(&sb, "%s %s\n", m.spinner.View(), m.phase)
	sb.WriteString(m.progress.ViewAs(m.fraction()))
	sb.WriteString("\n\n")
	if m.hasLoss {
		fmt.Fprintf(&sb, "  Step %d/%d  loss %s  best %s\n", m.iter, m.iters,
			valueStyle.Render(fmt.Sprintf("%.5f", m.loss)), valueStyle.Render(fmt.Sprintf("%.5f", m.bestLoss)))
	}
	if m.phase == phaseScoring {
		fmt.Fprintf(&sb, "  Scored %d/%d  correct %s\n", m.done, m.total,
			valueStyle.Render(fmt.Sprintf("%d", m.correct)))
	}
	sb.WriteString(dimStyle.Render("  q/Esc Quit"))
	return panelStyle.Render(sb.String())
}
