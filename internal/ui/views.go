package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mpvshadow/internal/clip"
	"mpvshadow/internal/textutil"
)

const panelWidth = 64

var (
	accent = lipgloss.Color("#5F87D7")
	muted  = lipgloss.Color("#888888")
	good   = lipgloss.Color("#00AA00")
	warn   = lipgloss.Color("#FFA500")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	subtitleStyle = lipgloss.NewStyle().Foreground(muted).Italic(true)
	labelStyle    = lipgloss.NewStyle().Foreground(muted).Width(10)
	panelStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1).
			Width(panelWidth)
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	helpStyle   = lipgloss.NewStyle().Foreground(muted)
)

// renderSession renders the full screen.
func renderSession(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")
	b.WriteString(renderSnapshot(m))
	b.WriteString("\n\n")
	b.WriteString(renderDevices(m))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("↑/↓ move · enter select · d default · q quit"))
	b.WriteString("\n")

	return b.String()
}

func renderHeader(m Model) string {
	title := titleStyle.Render("mpvshadow - subtitle shadowing")

	var status string
	switch {
	case m.Status.Connected:
		dot := lipgloss.NewStyle().Foreground(good).Render("●")
		status = fmt.Sprintf("%s connected to %s", dot, m.Status.Socket)
		if m.Status.MediaPath != "" {
			status += " · " + filepath.Base(m.Status.MediaPath)
		}
	case m.Status.Socket != "":
		dot := lipgloss.NewStyle().Foreground(warn).Render("○")
		status = fmt.Sprintf("%s waiting for mpv on %s", dot, m.Status.Socket)
	default:
		status = "starting..."
	}
	if m.Status.Detail != "" {
		status += " (" + m.Status.Detail + ")"
	}

	return title + "\n" + subtitleStyle.Render(status)
}

func row(label, value string) string {
	return labelStyle.Render(label) + value + "\n"
}

func renderSnapshot(m Model) string {
	if !m.HasSnapshot {
		trigger := m.src.Trigger
		if trigger == "" {
			trigger = "the cut keybinding"
		}
		return panelStyle.Render(fmt.Sprintf("No cut yet. Send %s from mpv to shadow the current line.", trigger))
	}
	s := m.Snapshot

	var content strings.Builder
	content.WriteString(lipgloss.NewStyle().Bold(true).Render(textutil.Truncate(s.Text, panelWidth-4)))
	content.WriteString("\n\n")

	window := fmt.Sprintf("%.2f-%.2fs (%.2fs)", s.Window.Start, s.Window.End, s.Window.Length())
	if s.HasTrack {
		window += fmt.Sprintf(" · audio stream %d", s.TrackIndex)
	}
	content.WriteString(row("Window", window))
	content.WriteString(row("Clip", filepath.Base(s.ClipPath)))
	content.WriteString(row("Take", renderTake(s)))
	content.WriteString(row("Probe", renderProbe(s)))
	if s.Pitch != nil {
		content.WriteString(row("Pitch", renderPitch(s)))
	}

	return panelStyle.Render(strings.TrimRight(content.String(), "\n"))
}

func renderTake(s clip.Snapshot) string {
	if !s.HasMic() {
		return lipgloss.NewStyle().Foreground(muted).Render("recording or unavailable")
	}
	name := filepath.Base(s.LatestMicPath)
	if s.MicPath != "" {
		name = filepath.Base(s.MicPath)
	}
	if s.MicDevice != "" {
		name += " via " + s.MicDevice
	}
	return name
}

func renderProbe(s clip.Snapshot) string {
	if s.Probe == nil {
		return lipgloss.NewStyle().Foreground(muted).Render("pending")
	}
	return fmt.Sprintf("first bytes %dms · RMS %.3f · peak %.3f",
		s.Probe.Latency.Milliseconds(), s.Probe.RMS, s.Probe.Peak)
}

func renderPitch(s clip.Snapshot) string {
	p := s.Pitch
	ref := "-"
	if p.Reference.HasMedian {
		ref = fmt.Sprintf("%.0fHz", p.Reference.MedianHz)
	}
	take := "-"
	if p.Take.HasMedian {
		take = fmt.Sprintf("%.0fHz", p.Take.MedianHz)
	}
	out := fmt.Sprintf("ref %s · take %s", ref, take)
	if p.HasOffset {
		out += fmt.Sprintf(" · %+.0f¢", p.OffsetCents)
	}
	if p.SharedFrames > 0 {
		out += fmt.Sprintf(" · contour %.0f¢", p.ContourCents)
	}
	return out
}

func renderDevices(m Model) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Microphone"))
	b.WriteString("\n")

	selected := m.selectedRow()
	entries := make([]string, 0, len(m.Devices)+1)
	entries = append(entries, "default (first available)")
	for _, d := range m.Devices {
		entries = append(entries, d.Label())
	}
	if len(m.Devices) == 0 {
		entries[0] += lipgloss.NewStyle().Foreground(muted).Render(" · no capture devices found")
	}

	for i, label := range entries {
		pointer := textutil.Ternary(i == m.Cursor, cursorStyle.Render("▸ "), "  ")
		mark := textutil.Ternary(i == selected, lipgloss.NewStyle().Foreground(good).Render("●"), "○")
		b.WriteString(fmt.Sprintf("%s%s %s\n", pointer, mark, label))
	}
	return strings.TrimRight(b.String(), "\n")
}
