package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ysw/core/internal/bus"
	"github.com/ysw/core/internal/event"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Show a live status view of sequencer traffic on the bus",
	Long: `monitor subscribes to the SEQUENCER origin and renders
NOTE_ON/NOTE_OFF/NOTE_STATUS/LOOP_DONE/PLAY_DONE traffic as it arrives — the
same kind of thin bus subscriber a real UI would use to stay in sync with
playback. The bus is in-process and monitor creates its own, on which no
sequencer runs, so it does not show traffic from a separate "ysw play".`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	b := bus.New(bus.Config{})
	m := newMonitorModel(b)
	p := tea.NewProgram(m, tea.WithAltScreen())
	go m.listen(p)
	_, err := p.Run()
	return err
}

const maxMonitorHistory = 20

type monitorEventMsg struct {
	ev event.Event
}

type monitorModel struct {
	bus     *bus.Bus
	queue   *bus.Queue
	history []string
	width   int
}

func newMonitorModel(b *bus.Bus) *monitorModel {
	q := bus.NewQueue(32)
	b.Subscribe(event.OriginSequencer, q)
	return &monitorModel{bus: b, queue: q}
}

func (m *monitorModel) listen(p *tea.Program) {
	for ev := range m.queue.C() {
		p.Send(monitorEventMsg{ev: ev})
	}
}

func (m *monitorModel) Init() tea.Cmd {
	return nil
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case monitorEventMsg:
		m.history = append([]string{describeEvent(msg.ev)}, m.history...)
		if len(m.history) > maxMonitorHistory {
			m.history = m.history[:maxMonitorHistory]
		}
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.bus.DeleteQueue(m.queue)
			return m, tea.Quit
		}
	}
	return m, nil
}

func describeEvent(ev event.Event) string {
	switch ev.Type {
	case event.TypeNoteOn:
		return fmt.Sprintf("NOTE_ON   ch%-2d note=%-3d vel=%d", ev.NoteOn.Channel, ev.NoteOn.MIDINote, ev.NoteOn.Velocity)
	case event.TypeNoteOff:
		return fmt.Sprintf("NOTE_OFF  ch%-2d note=%-3d", ev.NoteOff.Channel, ev.NoteOff.MIDINote)
	case event.TypeNoteStatus:
		n := ev.NoteStatus.Note
		return fmt.Sprintf("STATUS    ch%-2d note=%-3d start=%d", n.Channel, n.MIDINote, n.Start)
	case event.TypeLoopDone:
		return "LOOP_DONE"
	case event.TypePlayDone:
		return "PLAY_DONE"
	case event.TypeIdle:
		return "IDLE"
	default:
		return ev.Type.String()
	}
}

func (m *monitorModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4")).
		Padding(0, 1)
	rowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	recentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))

	var b strings.Builder
	b.WriteString(titleStyle.Render("ysw sequencer monitor") + "\n\n")
	if len(m.history) == 0 {
		b.WriteString(rowStyle.Render("(waiting for traffic)") + "\n")
	}
	for i, line := range m.history {
		style := rowStyle
		if i == 0 {
			style = recentStyle
		}
		b.WriteString(style.Render(line) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("q: quit"))
	return b.String()
}
