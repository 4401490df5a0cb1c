package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PedroElizalde01/pdiff/diff"
	"github.com/PedroElizalde01/pdiff/internal/config"
	"github.com/PedroElizalde01/pdiff/ui"
)

func newFileModel(t *testing.T, context int) model {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "old.txt", []byte("x\ny\nc\nz\n0\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "new.txt", []byte("x\nb\ny\nz\n1\n"), 0o644))
	m := initialModel(fileLoader{fs: fs, oldPath: "old.txt", newPath: "new.txt"}, config.Default(), context)
	return drive(m, m.Init())
}

// drive runs cmd and feeds the resulting messages to m until no command is
// left.
func drive(m model, cmd tea.Cmd) model {
	for cmd != nil {
		next, nextCmd := m.Update(cmd())
		m = next.(model)
		cmd = nextCmd
	}
	return m
}

func press(m model, keys ...string) model {
	for _, key := range keys {
		var msg tea.KeyMsg
		switch key {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}
		next, cmd := m.Update(msg)
		m = drive(next.(model), cmd)
	}
	return m
}

func TestModelLoadsPair(t *testing.T) {
	m := newFileModel(t, 3)

	assert.Equal(t, []string{"old.txt -> new.txt"}, m.files)
	assert.Equal(t, "old.txt -> new.txt", m.selectedFile())
	assert.Empty(t, m.errMsg)
	require.NotNil(t, m.pair)
	assert.Len(t, m.hunks, 3)
	assert.Equal(t, diff.Header, m.rows[0].Kind)
	assert.Equal(t, "@@ -1,5 +1,5 @@", m.rows[0].Old)
	assert.Equal(t, []int{0}, m.hunkStarts)
	assert.Contains(t, m.View(), "10 B")
}

func TestModelChangesContext(t *testing.T) {
	m := newFileModel(t, 3)

	m = press(m, "-", "-", "-")
	assert.Equal(t, 0, m.context)
	assert.Len(t, m.hunkStarts, 3)

	m = press(m, "-")
	assert.Equal(t, 0, m.context)

	m = press(m, "+", "+", "+")
	assert.Equal(t, 3, m.context)
	assert.Equal(t, []int{0}, m.hunkStarts)
}

func TestModelNavigation(t *testing.T) {
	m := newFileModel(t, 0)
	require.Len(t, m.hunkStarts, 3)

	m = press(m, "enter")
	assert.Equal(t, ui.FocusOld, m.focus)

	m = press(m, "n")
	assert.Equal(t, m.hunkStarts[1], m.cursor)
	m = press(m, "n")
	assert.Equal(t, m.hunkStarts[2], m.cursor)
	m = press(m, "p")
	assert.Equal(t, m.hunkStarts[1], m.cursor)

	m = press(m, "G")
	assert.Equal(t, len(m.rows)-1, m.cursor)
	m = press(m, "g")
	assert.Equal(t, 0, m.cursor)

	m = press(m, "l")
	assert.Equal(t, ui.FocusNew, m.focus)
	m = press(m, "h", "h")
	assert.Equal(t, ui.FocusFiles, m.focus)
}

func TestModelToggleWithoutOtherMode(t *testing.T) {
	m := newFileModel(t, 3)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	assert.Nil(t, cmd)
	assert.Equal(t, "files", next.(model).src.Mode())
}

func TestModelIgnoresStaleResults(t *testing.T) {
	m := newFileModel(t, 3)
	rows := m.rows

	next, cmd := m.Update(pairLoadedMsg{req: m.diffReq - 1, mode: "files", file: m.selectedFile()})
	assert.Nil(t, cmd)
	assert.Equal(t, rows, next.(model).rows)

	next, _ = m.Update(filesLoadedMsg{req: m.filesReq, mode: "WORKTREE", files: []string{"other"}})
	assert.Equal(t, m.files, next.(model).files)
}

func TestModelLoadError(t *testing.T) {
	m := initialModel(fileLoader{fs: afero.NewMemMapFs(), oldPath: "missing.txt", newPath: "new.txt"}, config.Default(), 3)
	m = drive(m, m.Init())

	assert.NotEmpty(t, m.errMsg)
	assert.Nil(t, m.pair)
	assert.Equal(t, noDiffRows(), m.rows)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, clamp(-1, 0, 5))
	assert.Equal(t, 5, clamp(9, 0, 5))
	assert.Equal(t, 3, clamp(3, 0, 5))
}

func TestIndexOf(t *testing.T) {
	assert.Equal(t, 1, indexOf("b", []string{"a", "b"}))
	assert.Equal(t, -1, indexOf("c", []string{"a", "b"}))
}
