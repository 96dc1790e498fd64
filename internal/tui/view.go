package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"

	"imgtriage/pkg/utils"
)

var (
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	moveKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))  // cyan
	skipKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("227")) // yellow
	quitKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func (m model) View() string {
	termW, termH := m.termW, m.termH
	if termW <= 0 {
		termW = 80
	}
	if termH <= 0 {
		termH = 24
	}

	imgW := termW * 7 / 10
	sideW := termW - imgW
	panelH := termH - 2

	// panel frames eat two columns of border plus padding
	innerW := imgW - 4
	innerH := panelH - 2
	if innerW < 8 {
		innerW = 8
	}
	if innerH < 4 {
		innerH = 4
	}

	img := panelStyle.Width(imgW - 2).Height(panelH).Render(m.imagePanel(innerW, innerH))
	side := panelStyle.Width(sideW - 2).Height(panelH).Render(m.sidePanel(sideW - 4))
	return lipgloss.JoinHorizontal(lipgloss.Top, img, side)
}

func (m model) imagePanel(w, h int) string {
	switch m.st {
	case statusEmpty:
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center,
			doneStyle.Render("All images have been sorted!"))
	case statusLoading:
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center,
			fmt.Sprintf("%s decoding %s", m.sp.View(), filepath.Base(m.current)))
	}
	if m.res.Err != nil {
		msg := errStyle.Render("cannot preview") + "\n\n" +
			runewidth.Truncate(m.res.Err.Error(), w, "…") + "\n\n" +
			dimStyle.Render("the file can still be classified")
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, msg)
	}
	preview := renderImage(m.res.Img, w, h)
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, preview)
}

func (m model) sidePanel(w int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Keys") + "\n")
	for _, line := range m.keybindLines() {
		b.WriteString(line + "\n")
	}
	b.WriteString(quitKeyStyle.Render("[q] quit") + "\n\n")

	b.WriteString(titleStyle.Render("File") + "\n")
	if m.st == statusEmpty {
		b.WriteString(dimStyle.Render("(none)") + "\n")
	} else {
		b.WriteString(runewidth.Truncate(filepath.Base(m.current), w, "…") + "\n")
		if m.res != nil && m.res.Err == nil {
			b.WriteString(fmt.Sprintf("%dx%d  %s\n", m.res.Width, m.res.Height, utils.HumanizeBytes(m.res.FileSize)))
			if !m.res.Taken.IsZero() {
				b.WriteString("taken " + m.res.Taken.Format("2006-01-02 15:04") + "\n")
			}
		}
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Remaining: %d\n", m.remaining()))
	b.WriteString(fmt.Sprintf("Progress: %d / %d\n\n", m.handled, m.total))

	b.WriteString(titleStyle.Render("Last action") + "\n")
	if m.lastAction == "" {
		b.WriteString(dimStyle.Render("(none)") + "\n")
	} else {
		b.WriteString(wrapTo(m.lastAction, w) + "\n")
	}

	if m.showHelp {
		b.WriteString("\n" + m.helpText())
	} else {
		b.WriteString("\n" + dimStyle.Render("? help"))
	}
	return b.String()
}

// keybindLines lists the configured bindings in stable key order.
func (m model) keybindLines() []string {
	keys := make([]rune, 0, len(m.cfg.Bindings))
	for r := range m.cfg.Bindings {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	lines := make([]string, 0, len(keys))
	for _, r := range keys {
		dest := m.cfg.Bindings[r]
		if dest.Skip {
			lines = append(lines, skipKeyStyle.Render(fmt.Sprintf("[%c] skip", r)))
		} else {
			lines = append(lines, moveKeyStyle.Render(fmt.Sprintf("[%c] -> %s", r, dest.Dir)))
		}
	}
	return lines
}

func (m model) helpText() string {
	lines := []string{
		"Help (press ? to close):",
		"  <key>  route the image per the list above",
		"  q      quit (abandons an in-flight decode)",
		"Conflicts and failures are reported and the",
		"queue advances; re-run to handle them again.",
	}
	return dimStyle.Render(strings.Join(lines, "\n"))
}

// wrapTo hard-wraps s to width w, breaking on cell width rather than bytes.
func wrapTo(s string, w int) string {
	if w <= 0 || runewidth.StringWidth(s) <= w {
		return s
	}
	var b strings.Builder
	line := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if line+rw > w {
			b.WriteByte('\n')
			line = 0
		}
		b.WriteRune(r)
		line += rw
	}
	return b.String()
}
