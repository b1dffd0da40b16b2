package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

// maxWorkerRows caps the per-worker bars; larger jobs show only the total.
const maxWorkerRows = 8

const defaultBarWidth = 40

type snapshotMsg struct {
	snapshot bssimport.ProgressSnapshot
}

type finishMsg struct {
	snapshot bssimport.ProgressSnapshot
}

type progressModel struct {
	title    string
	snapshot bssimport.ProgressSnapshot
	bar      progress.Model
	finished bool
}

func newProgressModel(title string) progressModel {
	return progressModel{
		title: title,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultBarWidth)),
	}
}

// Init implements tea.Model.
func (m progressModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snapshot = msg.snapshot
		return m, nil
	case finishMsg:
		m.snapshot = msg.snapshot
		m.finished = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		w := msg.Width - 30
		if w > defaultBarWidth {
			w = defaultBarWidth
		}
		if w < 10 {
			w = 10
		}
		m.bar.Width = w
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m progressModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n")

	if len(m.snapshot) <= maxWorkerRows {
		for i, w := range m.snapshot {
			label := LabelStyle.Render(fmt.Sprintf("worker %-2d", i))
			fmt.Fprintf(&b, "%s %s %s\n", label, m.bar.ViewAs(w.Fraction()), counter(w))
		}
	}

	total := m.snapshot.Totals()
	done := doneWorkers(m.snapshot)
	fmt.Fprintf(&b, "%s %s %s\n", LabelStyle.Render("total    "), m.bar.ViewAs(total.Fraction()), counter(total))
	b.WriteString(MutedStyle.Render(fmt.Sprintf("%d/%d workers done", done, len(m.snapshot))))
	b.WriteString("\n")
	return b.String()
}

func counter(p bssimport.WorkerProgress) string {
	return MutedStyle.Render(fmt.Sprintf("%d/%d", p.Current, p.Total))
}

// ProgressView renders worker progress on a terminal. It implements
// bssimport.ProgressObserver; snapshots are forwarded to a bubbletea
// program running on its own goroutine.
type ProgressView struct {
	program *tea.Program
	done    chan struct{}
	started bool
	stop    sync.Once
	err     error
}

// NewProgressView creates a view writing to out. Input is not read and
// signals are left to the caller.
func NewProgressView(out io.Writer, title string) *ProgressView {
	p := tea.NewProgram(newProgressModel(title),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	return &ProgressView{program: p, done: make(chan struct{})}
}

// Start runs the program in the background.
func (v *ProgressView) Start() {
	v.started = true
	go func() {
		defer close(v.done)
		_, v.err = v.program.Run()
	}()
}

// OnProgress implements bssimport.ProgressObserver.
func (v *ProgressView) OnProgress(snapshot bssimport.ProgressSnapshot) {
	v.program.Send(snapshotMsg{snapshot: snapshot})
}

// OnFinish renders the final snapshot and waits for the program to exit.
func (v *ProgressView) OnFinish(snapshot bssimport.ProgressSnapshot) {
	v.program.Send(finishMsg{snapshot: snapshot})
	v.Stop()
}

// Stop quits the program if it is still running and waits for it.
// Safe to call more than once.
func (v *ProgressView) Stop() error {
	v.stop.Do(func() {
		if !v.started {
			return
		}
		v.program.Quit()
		<-v.done
	})
	return v.err
}
