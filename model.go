package main

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"github.com/PedroElizalde01/pdiff/diff"
	"github.com/PedroElizalde01/pdiff/git"
	"github.com/PedroElizalde01/pdiff/internal/config"
	"github.com/PedroElizalde01/pdiff/internal/log"
	"github.com/PedroElizalde01/pdiff/source"
	"github.com/PedroElizalde01/pdiff/ui"
)

// loader lists the entries of the sidebar and loads the pair behind each one.
type loader interface {
	Mode() string
	Files() ([]string, error)
	Pair(file string) (source.Pair, error)
	// Toggle returns the loader for the other mode, or nil.
	Toggle() loader
}

type gitLoader struct {
	mode git.Mode
}

func (l gitLoader) Mode() string { return l.mode.String() }

func (l gitLoader) Files() ([]string, error) { return git.ListChangedFiles(l.mode) }

func (l gitLoader) Pair(file string) (source.Pair, error) { return git.FilePair(l.mode, file) }

func (l gitLoader) Toggle() loader { return gitLoader{mode: l.mode.Toggle()} }

// fileLoader shows a single pair of files.
type fileLoader struct {
	fs               afero.Fs
	oldPath, newPath string
}

func (l fileLoader) Mode() string { return "files" }

func (l fileLoader) Files() ([]string, error) {
	return []string{filepath.Base(l.oldPath) + " -> " + filepath.Base(l.newPath)}, nil
}

func (l fileLoader) Pair(string) (source.Pair, error) {
	return source.LoadPair(l.fs, l.oldPath, l.newPath)
}

func (l fileLoader) Toggle() loader { return nil }

type filesLoadedMsg struct {
	req   int
	mode  string
	files []string
	err   error
}

type pairLoadedMsg struct {
	req   int
	mode  string
	file  string
	pair  source.Pair
	hunks []diff.Hunk
	err   error
}

type model struct {
	src           loader
	context       int
	styles        ui.Styles
	focus         ui.Focus
	files         []string
	selected      int
	noChanges     bool
	pair          *source.Pair
	hunks         []diff.Hunk
	rows          []diff.Row
	hunkStarts    []int
	cursor        int
	cursors       map[string]int
	sidebarScroll int
	diffScroll    int
	width         int
	height        int
	errMsg        string
	filesReq      int
	diffReq       int
}

func initialModel(src loader, cfg config.Config, context int) model {
	return model{
		src:      src,
		context:  context,
		styles:   ui.NewStyles(cfg.Theme),
		focus:    ui.FocusFiles,
		files:    []string{"(loading...)"},
		rows:     loadingRows("loading..."),
		cursors:  map[string]int{},
		width:    120,
		height:   32,
		filesReq: 1,
	}
}

func (m model) Init() tea.Cmd {
	return loadFilesCmd(m.src, m.filesReq)
}

func loadFilesCmd(src loader, req int) tea.Cmd {
	return func() tea.Msg {
		files, err := src.Files()
		return filesLoadedMsg{
			req:   req,
			mode:  src.Mode(),
			files: files,
			err:   err,
		}
	}
}

func loadPairCmd(src loader, file string, req int) tea.Cmd {
	return func() tea.Msg {
		msg := pairLoadedMsg{req: req, mode: src.Mode(), file: file}
		msg.pair, msg.err = src.Pair(file)
		if msg.err == nil {
			msg.hunks = msg.pair.Hunks()
		}
		return msg
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureSidebarVisible()
		m.ensureCursorVisible()
		return m, nil
	case filesLoadedMsg:
		if msg.req != m.filesReq || msg.mode != m.src.Mode() {
			return m, nil
		}
		if msg.err != nil {
			log.WithError(msg.err).Debug("listing files failed")
			m.errMsg = git.FriendlyError(msg.err)
			m.showNoChanges()
			return m, nil
		}

		prevFile := m.selectedFile()
		m.errMsg = ""
		if len(msg.files) == 0 {
			m.showNoChanges()
			return m, nil
		}

		m.noChanges = false
		m.files = msg.files
		m.selected = clamp(m.selected, 0, len(m.files)-1)
		if prevFile != "" {
			if idx := indexOf(prevFile, m.files); idx >= 0 {
				m.selected = idx
			}
		}
		m.ensureSidebarVisible()
		return m, m.reloadPair()
	case pairLoadedMsg:
		if msg.req != m.diffReq || msg.mode != m.src.Mode() || msg.file != m.selectedFile() {
			return m, nil
		}
		if msg.err != nil {
			log.WithError(msg.err).Debug("loading pair failed")
			m.errMsg = git.FriendlyError(msg.err)
			m.clearPair()
			m.rows = noDiffRows()
			return m, nil
		}

		m.errMsg = ""
		m.pair = &msg.pair
		m.hunks = msg.hunks
		m.cursor = m.cursors[m.selectedFile()]
		m.diffScroll = 0
		m.buildRows()
		return m, nil
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "s":
			next := m.src.Toggle()
			if next == nil {
				return m, nil
			}
			m.saveCursor()
			m.src = next
			m.noChanges = false
			m.files = []string{"(loading...)"}
			m.selected = 0
			m.clearPair()
			m.rows = loadingRows("loading...")
			m.sidebarScroll = 0
			m.errMsg = ""
			m.filesReq++
			return m, loadFilesCmd(m.src, m.filesReq)
		case "+":
			m.setContext(m.context + 1)
			return m, nil
		case "-":
			m.setContext(m.context - 1)
			return m, nil
		}

		switch m.focus {
		case ui.FocusFiles:
			switch key {
			case "up", "k":
				cmd := m.moveSelection(-1)
				return m, cmd
			case "down", "j":
				cmd := m.moveSelection(1)
				return m, cmd
			case "enter", "right", "l":
				m.focus = ui.FocusOld
				return m, nil
			}
		case ui.FocusOld, ui.FocusNew:
			switch key {
			case "up", "k":
				m.moveCursor(-1)
			case "down", "j":
				m.moveCursor(1)
			case "left", "h":
				if m.focus == ui.FocusNew {
					m.focus = ui.FocusOld
				} else {
					m.focus = ui.FocusFiles
				}
			case "right", "l":
				m.focus = ui.FocusNew
			case "n":
				m.jumpHunk(1)
			case "p":
				m.jumpHunk(-1)
			case "g":
				m.goTop()
			case "G":
				m.goBottom()
			}
			return m, nil
		}
	}

	return m, nil
}

func (m model) View() string {
	rm := ui.RenderModel{
		Width:         m.width,
		Height:        m.height,
		ModeLabel:     m.src.Mode(),
		Focus:         m.focus,
		Files:         m.files,
		Selected:      m.selected,
		SidebarScroll: m.sidebarScroll,
		Rows:          m.rows,
		Cursor:        m.cursor,
		DiffScroll:    m.diffScroll,
		SelectedFile:  m.selectedFile(),
		Context:       m.context,
		Error:         m.errMsg,
		Styles:        m.styles,
	}
	if m.pair != nil {
		rm.ModTime = m.pair.New.ModTime
		rm.Size = m.pair.New.Size
	}
	return ui.Render(rm)
}

// buildRows lays out the loaded pair with the current context size.
func (m *model) buildRows() {
	if m.pair == nil {
		return
	}
	m.rows, m.hunkStarts = diff.SideBySide(m.hunks, m.pair.Old.Lines, m.pair.New.Lines, m.context)
	if len(m.rows) == 0 {
		m.rows = noDiffRows()
		m.hunkStarts = nil
	}
	m.ensureCursorVisible()
}

func (m *model) setContext(context int) {
	if context < 0 || context == m.context {
		return
	}
	m.context = context
	log.Debugf("context set to %d", context)
	m.buildRows()
}

func (m *model) showNoChanges() {
	m.noChanges = true
	m.files = []string{"(no changes)"}
	m.selected = 0
	m.clearPair()
	m.rows = noDiffRows()
	m.sidebarScroll = 0
}

func (m *model) clearPair() {
	m.pair = nil
	m.hunks = nil
	m.hunkStarts = nil
	m.cursor = 0
	m.diffScroll = 0
}

// reloadPair requests the pair of the selected file.
func (m *model) reloadPair() tea.Cmd {
	m.clearPair()
	file := m.selectedFile()
	if file == "" {
		m.rows = noDiffRows()
		return nil
	}
	m.rows = loadingRows("loading diff...")
	m.diffReq++
	return loadPairCmd(m.src, file, m.diffReq)
}

func (m *model) moveSelection(delta int) tea.Cmd {
	if !m.hasRealFiles() {
		return nil
	}

	m.saveCursor()
	next := clamp(m.selected+delta, 0, len(m.files)-1)
	if next == m.selected {
		return nil
	}

	m.selected = next
	m.ensureSidebarVisible()
	return m.reloadPair()
}

func (m *model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = clamp(m.cursor+delta, 0, len(m.rows)-1)
	m.saveCursor()
	m.ensureCursorVisible()
}

func (m *model) jumpHunk(direction int) {
	if len(m.hunkStarts) == 0 {
		return
	}

	if direction > 0 {
		for _, idx := range m.hunkStarts {
			if idx > m.cursor {
				m.setCursor(idx)
				return
			}
		}
		return
	}

	for i := len(m.hunkStarts) - 1; i >= 0; i-- {
		if m.hunkStarts[i] < m.cursor {
			m.setCursor(m.hunkStarts[i])
			return
		}
	}
}

func (m *model) goTop() {
	if len(m.rows) == 0 {
		return
	}
	m.setCursor(0)
}

func (m *model) goBottom() {
	if len(m.rows) == 0 {
		return
	}
	m.setCursor(len(m.rows) - 1)
}

func (m *model) setCursor(idx int) {
	m.cursor = idx
	m.saveCursor()
	m.ensureCursorVisible()
}

func (m *model) saveCursor() {
	file := m.selectedFile()
	if file == "" {
		return
	}
	m.cursors[file] = m.cursor
}

func (m *model) hasRealFiles() bool {
	if m.noChanges || len(m.files) == 0 {
		return false
	}
	if len(m.files) == 1 && m.files[0] == "(loading...)" {
		return false
	}
	return true
}

func (m *model) selectedFile() string {
	if !m.hasRealFiles() || m.selected < 0 || m.selected >= len(m.files) {
		return ""
	}
	return m.files[m.selected]
}

func (m *model) bodyHeight() int {
	if m.height <= 1 {
		return 1
	}
	return m.height - 1
}

func (m *model) ensureSidebarVisible() {
	if len(m.files) == 0 {
		m.sidebarScroll = 0
		return
	}

	visible := max(m.bodyHeight()-1, 1)
	if m.selected < m.sidebarScroll {
		m.sidebarScroll = m.selected
	}
	if m.selected >= m.sidebarScroll+visible {
		m.sidebarScroll = m.selected - visible + 1
	}
	m.sidebarScroll = clamp(m.sidebarScroll, 0, max(len(m.files)-visible, 0))
}

func (m *model) ensureCursorVisible() {
	if len(m.rows) == 0 {
		m.cursor = 0
		m.diffScroll = 0
		return
	}

	m.cursor = clamp(m.cursor, 0, len(m.rows)-1)
	visible := max(m.bodyHeight()-1, 1)
	if m.cursor < m.diffScroll {
		m.diffScroll = m.cursor
	}
	if m.cursor >= m.diffScroll+visible {
		m.diffScroll = m.cursor - visible + 1
	}
	m.diffScroll = clamp(m.diffScroll, 0, max(len(m.rows)-visible, 0))
}

func noDiffRows() []diff.Row {
	return []diff.Row{{Old: "(no diff)", New: "(no diff)", Kind: diff.Meta}}
}

func loadingRows(message string) []diff.Row {
	return []diff.Row{{Old: fmt.Sprintf("(%s)", message), New: fmt.Sprintf("(%s)", message), Kind: diff.Meta}}
}

func indexOf(needle string, list []string) int {
	for i := range list {
		if list[i] == needle {
			return i
		}
	}
	return -1
}

func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
