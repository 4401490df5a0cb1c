package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/PedroElizalde01/pdiff/diff"
	"github.com/PedroElizalde01/pdiff/internal/config"
)

type Focus int

const (
	FocusFiles Focus = iota
	FocusOld
	FocusNew
)

func (f Focus) String() string {
	switch f {
	case FocusOld:
		return "old"
	case FocusNew:
		return "new"
	default:
		return "files"
	}
}

// Styles are the lipgloss styles used for rows and report lines.
type Styles struct {
	Header    lipgloss.Style
	Title     lipgloss.Style
	Selected  lipgloss.Style
	Unfocused lipgloss.Style
	Meta      lipgloss.Style
	Hunk      lipgloss.Style
	Context   lipgloss.Style
	OldLine   lipgloss.Style
	NewLine   lipgloss.Style
	Cursor    lipgloss.Style
	Separator lipgloss.Style
}

// NewStyles builds Styles from a configured color theme using the default
// renderer, which detects the color support of stdout.
func NewStyles(theme config.Theme) Styles {
	return NewRendererStyles(lipgloss.DefaultRenderer(), theme)
}

// NewRendererStyles builds Styles bound to r. Tabs are left alone; panes
// expand them before rendering.
func NewRendererStyles(r *lipgloss.Renderer, theme config.Theme) Styles {
	style := func() lipgloss.Style {
		return r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	}
	return Styles{
		Header:    style().Bold(true),
		Title:     style().Bold(true),
		Selected:  style().Bold(true).Reverse(true),
		Unfocused: style().Bold(true),
		Meta:      style().Foreground(lipgloss.Color(theme.Meta)),
		Hunk:      style().Foreground(lipgloss.Color(theme.Hunk)).Bold(true),
		Context:   style(),
		OldLine:   style().Foreground(lipgloss.Color(theme.Deleted)),
		NewLine:   style().Foreground(lipgloss.Color(theme.Added)),
		Cursor:    style().Background(lipgloss.Color(theme.Cursor)),
		Separator: style().Foreground(lipgloss.Color(theme.Meta)),
	}
}

type RenderModel struct {
	Width         int
	Height        int
	ModeLabel     string
	Focus         Focus
	Files         []string
	Selected      int
	SidebarScroll int
	Rows          []diff.Row
	Cursor        int
	DiffScroll    int
	SelectedFile  string
	Context       int
	ModTime       time.Time
	Size          int64
	Error         string
	Styles        Styles
}

func Render(m RenderModel) string {
	if m.Width <= 0 || m.Height <= 0 {
		return ""
	}
	if len(m.Files) == 0 {
		m.Files = []string{"(no changes)"}
	}
	if len(m.Rows) == 0 {
		m.Rows = []diff.Row{{Old: "(no diff)", New: "(no diff)", Kind: diff.Meta}}
	}
	s := m.Styles

	headerLine := s.Header.Render(fitWidth(headerText(m), m.Width))

	bodyHeight := m.Height - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	sidebarWidth := calcSidebarWidth(m.Width)
	mainWidth := m.Width - sidebarWidth - 2
	if mainWidth < 4 {
		mainWidth = 4
		sidebarWidth = m.Width - mainWidth - 2
		if sidebarWidth < 1 {
			sidebarWidth = 1
		}
	}

	leftPaneWidth := (mainWidth - 1) / 2
	rightPaneWidth := mainWidth - 1 - leftPaneWidth
	if leftPaneWidth < 1 {
		leftPaneWidth = 1
	}
	if rightPaneWidth < 1 {
		rightPaneWidth = 1
	}

	sidebar := renderSidebar(m, sidebarWidth, bodyHeight)
	oldPane, newPane := renderPanes(m, leftPaneWidth, rightPaneWidth, bodyHeight)
	sep := s.Separator.Render("│")
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, sep, oldPane, sep, newPane)

	return lipgloss.JoinVertical(lipgloss.Left, headerLine, body)
}

func headerText(m RenderModel) string {
	text := fmt.Sprintf("pdiff | mode: %s | focus: %s | context: %d", strings.ToUpper(m.ModeLabel), m.Focus.String(), m.Context)
	if m.SelectedFile != "" {
		text += " | file: " + m.SelectedFile
	}
	if !m.ModTime.IsZero() {
		text += " | modified " + humanize.Time(m.ModTime)
	}
	if m.Size > 0 {
		text += " | " + humanize.Bytes(uint64(m.Size))
	}
	if m.Error != "" {
		text += " | error: " + m.Error
	}
	return text
}

func renderSidebar(m RenderModel, width, height int) string {
	lines := make([]string, 0, height)
	lines = append(lines, m.Styles.Title.Render(fitWidth("CHANGES", width)))

	listHeight := height - 1
	if listHeight < 1 {
		return strings.Join(lines, "\n")
	}

	for i := 0; i < listHeight; i++ {
		idx := m.SidebarScroll + i
		line := ""
		if idx >= 0 && idx < len(m.Files) {
			line = m.Files[idx]
		}
		line = fitWidth(line, width)

		if idx == m.Selected {
			if m.Focus == FocusFiles {
				line = m.Styles.Selected.Render(line)
			} else {
				line = m.Styles.Unfocused.Render(line)
			}
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func renderPanes(m RenderModel, leftWidth, rightWidth, height int) (string, string) {
	oldLines := make([]string, 0, height)
	newLines := make([]string, 0, height)
	oldLines = append(oldLines, m.Styles.Title.Render(fitWidth("OLD", leftWidth)))
	newLines = append(newLines, m.Styles.Title.Render(fitWidth("NEW", rightWidth)))

	contentHeight := height - 1
	if contentHeight < 1 {
		return strings.Join(oldLines, "\n"), strings.Join(newLines, "\n")
	}

	oldNoWidth := lineNumberWidth(m.Rows, true)
	newNoWidth := lineNumberWidth(m.Rows, false)
	showCursor := m.Focus == FocusOld || m.Focus == FocusNew

	for i := 0; i < contentHeight; i++ {
		idx := m.DiffScroll + i
		if idx < 0 || idx >= len(m.Rows) {
			oldLines = append(oldLines, fitWidth("", leftWidth))
			newLines = append(newLines, fitWidth("", rightWidth))
			continue
		}

		row := m.Rows[idx]
		cursor := showCursor && idx == m.Cursor
		oldLines = append(oldLines, renderPaneLine(m.Styles, row, row.Old, row.OldNo, oldNoWidth, leftWidth, cursor, true))
		newLines = append(newLines, renderPaneLine(m.Styles, row, row.New, row.NewNo, newNoWidth, rightWidth, cursor, false))
	}

	return strings.Join(oldLines, "\n"), strings.Join(newLines, "\n")
}

func renderPaneLine(s Styles, row diff.Row, text string, no *int, noWidth, width int, cursor bool, oldPane bool) string {
	noText := ""
	if no != nil {
		noText = strconv.Itoa(*no)
	}
	style := paneStyle(s, row, oldPane)
	text = style.Render(expandTabs(text))
	line := formatPaneCell(noText, text, noWidth, width)

	if cursor {
		line = s.Cursor.Render(line)
	}
	return line
}

func paneStyle(s Styles, row diff.Row, oldPane bool) lipgloss.Style {
	switch row.Kind {
	case diff.Meta:
		return s.Meta
	case diff.Header:
		return s.Hunk
	case diff.Context:
		return s.Context
	}

	if oldPane && row.OldNo != nil {
		return s.OldLine
	}
	if !oldPane && row.NewNo != nil {
		return s.NewLine
	}
	return s.Context
}

func lineNumberWidth(rows []diff.Row, old bool) int {
	maxNo := 0
	for i := range rows {
		if old {
			if rows[i].OldNo != nil && *rows[i].OldNo > maxNo {
				maxNo = *rows[i].OldNo
			}
		} else {
			if rows[i].NewNo != nil && *rows[i].NewNo > maxNo {
				maxNo = *rows[i].NewNo
			}
		}
	}
	if maxNo < 1 {
		return 3
	}
	width := len(strconv.Itoa(maxNo))
	if width < 3 {
		return 3
	}
	return width
}

func calcSidebarWidth(totalWidth int) int {
	width := 32
	if totalWidth < 90 {
		width = 28
	}
	if totalWidth > 140 {
		width = 36
	}
	maxAllowed := totalWidth - 20
	if maxAllowed < 16 {
		maxAllowed = 16
	}
	if width > maxAllowed {
		width = maxAllowed
	}
	if width < 16 {
		width = 16
	}
	return width
}

func fitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().MaxWidth(width).Width(width).Render(s)
}

func formatPaneCell(noText, text string, noWidth, width int) string {
	prefix := fmt.Sprintf("%*s ", noWidth, noText)
	contentWidth := width - lipgloss.Width(prefix)
	if contentWidth < 0 {
		contentWidth = 0
	}
	text = lipgloss.NewStyle().MaxWidth(contentWidth).Render(text)
	return fitWidth(prefix+text, width)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

// ColorizeUnified colors the lines of a unified report as written by
// diff.WriteUnified. The first two lines are the file headers.
func ColorizeUnified(report string, s Styles) string {
	if report == "" {
		return ""
	}
	lines := strings.SplitAfter(report, "\n")
	var b strings.Builder
	for i, line := range lines {
		body := strings.TrimSuffix(line, "\n")
		nl := line[len(body):]
		switch {
		case i < 2:
			b.WriteString(s.Header.Render(body))
		case strings.HasPrefix(body, "@@ "):
			b.WriteString(s.Hunk.Render(body))
		case strings.HasPrefix(body, "-"):
			b.WriteString(s.OldLine.Render(body))
		case strings.HasPrefix(body, "+"):
			b.WriteString(s.NewLine.Render(body))
		case strings.HasPrefix(body, "\\"):
			b.WriteString(s.Meta.Render(body))
		default:
			b.WriteString(body)
		}
		b.WriteString(nl)
	}
	return b.String()
}
