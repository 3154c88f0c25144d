// Package ui provides the Bubbletea terminal user interface for mpvshadow.
package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"mpvshadow/internal/clip"
	"mpvshadow/internal/devices"
	"mpvshadow/internal/mailbox"
)

// Sources are the mailboxes the UI drains and the selection handle it writes.
type Sources struct {
	Snapshots *mailbox.Mailbox[clip.Snapshot]
	Devices   *mailbox.Mailbox[[]devices.Device]
	Status    *mailbox.Mailbox[Status]
	Selection *devices.Selection
	// Context stops pending mailbox waits. Nil never stops them.
	Context context.Context
	// Trigger is the client-message keyword shown in the idle hint.
	Trigger string
}

// Model is the Bubbletea model for a shadowing session.
type Model struct {
	src Sources

	Snapshot    clip.Snapshot
	HasSnapshot bool
	Devices     []devices.Device
	Status      Status

	// Cursor indexes the device list; 0 is the default/fallback entry.
	Cursor int

	Width  int
	Height int
}

// NewModel creates a model reading from src.
func NewModel(src Sources) Model {
	if src.Selection == nil {
		src.Selection = devices.NewSelection("")
	}
	if src.Context == nil {
		src.Context = context.Background()
	}
	m := Model{src: src, Devices: src.Selection.Known()}
	m.Cursor = m.selectedRow()
	return m
}

// Init starts waiting on every mailbox.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.src.Snapshots != nil {
		cmds = append(cmds, waitForSnapshot(m.src.Context, m.src.Snapshots))
	}
	if m.src.Devices != nil {
		cmds = append(cmds, waitForDevices(m.src.Context, m.src.Devices))
	}
	if m.src.Status != nil {
		cmds = append(cmds, waitForStatus(m.src.Context, m.src.Status))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Devices) {
				m.Cursor++
			}
		case "enter", " ":
			m.selectRow(m.Cursor)
		case "d":
			m.Cursor = 0
			m.selectRow(0)
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case SnapshotMsg:
		m.Snapshot = msg.Snapshot
		m.HasSnapshot = true
		return m, waitForSnapshot(m.src.Context, m.src.Snapshots)

	case DevicesMsg:
		m.Devices = msg.Devices
		m.src.Selection.SetKnown(msg.Devices)
		m.Cursor = min(m.selectedRow(), len(m.Devices))
		return m, waitForDevices(m.src.Context, m.src.Devices)

	case StatusMsg:
		m.Status = msg.Status
		return m, waitForStatus(m.src.Context, m.src.Status)
	}

	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	return renderSession(m)
}

// Selected returns the id the recorder will use next, or "" for the fallback.
func (m Model) Selected() string {
	return m.src.Selection.Selected()
}

func (m *Model) selectRow(row int) {
	if row <= 0 || row > len(m.Devices) {
		m.src.Selection.Select("")
		return
	}
	m.src.Selection.Select(m.Devices[row-1].ID)
}

func (m Model) selectedRow() int {
	id := m.src.Selection.Selected()
	if id == "" {
		return 0
	}
	for i, d := range m.Devices {
		if d.ID == id {
			return i + 1
		}
	}
	return 0
}

// waitForSnapshot blocks until the snapshot mailbox holds a value or ctx ends.
func waitForSnapshot(ctx context.Context, box *mailbox.Mailbox[clip.Snapshot]) tea.Cmd {
	if box == nil {
		return nil
	}
	return func() tea.Msg {
		v, err := box.Wait(ctx)
		if err != nil {
			return nil
		}
		return SnapshotMsg{Snapshot: v}
	}
}

func waitForDevices(ctx context.Context, box *mailbox.Mailbox[[]devices.Device]) tea.Cmd {
	if box == nil {
		return nil
	}
	return func() tea.Msg {
		v, err := box.Wait(ctx)
		if err != nil {
			return nil
		}
		return DevicesMsg{Devices: v}
	}
}

func waitForStatus(ctx context.Context, box *mailbox.Mailbox[Status]) tea.Cmd {
	if box == nil {
		return nil
	}
	return func() tea.Msg {
		v, err := box.Wait(ctx)
		if err != nil {
			return nil
		}
		return StatusMsg{Status: v}
	}
}
