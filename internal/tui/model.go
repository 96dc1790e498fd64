package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"imgtriage/internal/config"
	"imgtriage/internal/decoder"
	"imgtriage/internal/router"
	"imgtriage/internal/scan"
)

type status int

const (
	statusLoading status = iota
	statusReady
	statusEmpty
)

type keyMap struct {
	Quit key.Binding
	Help key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

type model struct {
	cfg   *config.Config
	queue *scan.Queue
	dec   *decoder.Worker
	sp    spinner.Model
	keys  keyMap

	st         status
	current    string          // path being decoded or shown
	res        *decoder.Result // decode result for current; Err set means no preview
	total      int
	handled    int
	lastAction string

	termW, termH int
	showHelp     bool
}

func newModel(cfg *config.Config, paths []string) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := model{
		cfg:   cfg,
		queue: scan.NewQueue(paths),
		dec:   decoder.NewWorker(),
		sp:    sp,
		keys:  defaultKeyMap(),
		total: len(paths),
	}
	if next, ok := m.queue.PopFront(); ok {
		m.current = next
		m.st = statusLoading
		m.dec.Request(next)
	} else {
		m.st = statusEmpty
	}
	return m
}

// Run drives the classification loop until the queue drains or the operator
// quits.
func Run(cfg *config.Config, paths []string) error {
	m := newModel(cfg, paths)
	defer m.dec.Close()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// decodeMsg carries one decoder result into the update loop.
type decodeMsg decoder.Result

// waitDecodeMsg arms exactly one read of the decode channel. It is issued
// once per dispatched request so results are consumed strictly in order.
func (m model) waitDecodeMsg() tea.Cmd {
	results := m.dec.Results()
	return func() tea.Msg {
		res, ok := <-results
		if !ok {
			return nil
		}
		return decodeMsg(res)
	}
}

func (m model) Init() tea.Cmd {
	if m.st == statusEmpty {
		return m.sp.Tick
	}
	return tea.Batch(m.sp.Tick, m.waitDecodeMsg())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			// quitting mid-decode abandons the in-flight result
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		}
		if m.st != statusReady {
			// keys arriving while decoding or after the queue drained are
			// dropped, never queued
			return m, nil
		}
		runes := []rune(msg.String())
		if len(runes) != 1 {
			return m, nil
		}
		dest, ok := m.cfg.Bindings[runes[0]]
		if !ok {
			return m, nil
		}
		out := router.Route(m.current, dest)
		m.lastAction = out.String()
		m.handled++
		return m.advance()

	case tea.WindowSizeMsg:
		m.termW, m.termH = msg.Width, msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.sp, cmd = m.sp.Update(msg)
		return m, cmd

	case decodeMsg:
		res := decoder.Result(msg)
		if res.Path != m.current {
			// stale result from a superseded request; discard and keep
			// waiting for the current one
			return m, m.waitDecodeMsg()
		}
		m.res = &res
		m.st = statusReady
		return m, nil
	}
	return m, nil
}

// advance moves on to the next queued file. The current file is done in all
// outcome cases; conflicts and failures are reported, not retried.
func (m model) advance() (tea.Model, tea.Cmd) {
	next, ok := m.queue.PopFront()
	if !ok {
		m.st = statusEmpty
		m.current = ""
		m.res = nil
		return m, nil
	}
	m.current = next
	m.res = nil
	m.st = statusLoading
	m.dec.Request(next)
	return m, m.waitDecodeMsg()
}

// remaining counts the files not yet classified, including the one on screen.
func (m model) remaining() int {
	n := m.queue.Len()
	if m.st != statusEmpty {
		n++
	}
	return n
}
