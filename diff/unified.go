package diff

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// DefaultContext is the number of unchanged lines shown around each hunk.
const DefaultContext = 3

// Window is a block of a unified report: a region of both sequences padded
// with context that contains one or more hunks.
type Window struct {
	Old   Range
	New   Range
	Hunks []Hunk
}

// Windows pads every hunk with up to context unchanged lines on each side and
// merges hunks whose padded regions overlap or touch. hunks must be sorted and
// non-overlapping, as returned by [Patience]; na and nb are the lengths of the
// old and new sequences. Padding saturates at the sequence bounds.
func Windows(hunks []Hunk, na, nb, context int) []Window {
	if len(hunks) == 0 {
		return nil
	}
	context = max(context, 0)

	var windows []Window
	for _, h := range hunks {
		start := h.Remove.Start - min(context, h.Remove.Start)
		end := h.Remove.End + min(context, max(na-h.Remove.End, 0))
		if n := len(windows); n > 0 && start <= windows[n-1].Old.End {
			top := &windows[n-1]
			top.Old.End = max(top.Old.End, end)
			top.Hunks = append(top.Hunks, h)
			continue
		}
		windows = append(windows, Window{Old: Range{start, end}, Hunks: []Hunk{h}})
	}

	// Context lines are equal on both sides, so the new side is padded by
	// exactly as much as the old side was.
	for i := range windows {
		w := &windows[i]
		first, last := w.Hunks[0], w.Hunks[len(w.Hunks)-1]
		w.New.Start = max(0, first.Insert.Start-(first.Remove.Start-w.Old.Start))
		w.New.End = min(nb, last.Insert.End+(w.Old.End-last.Remove.End))
	}
	return windows
}

// Label identifies one input in the report header, typically a file path and
// its modification time. An empty Stamp is left out.
type Label struct {
	Name  string
	Stamp string
}

func (l Label) String() string {
	if l.Stamp == "" {
		return l.Name
	}
	return l.Name + "\t" + l.Stamp
}

// Report is everything needed to render a unified diff of A against B.
type Report struct {
	Old     Label
	New     Label
	A       []string
	B       []string
	Hunks   []Hunk
	Context int

	// NoEOLMarker writes "\ No newline at end of file" after the last line of
	// a sequence when that line lacks its terminating '\n'.
	NoEOLMarker bool
}

// WriteUnified writes r in unified diff format to w. Nothing at all is
// written when r has no hunks. Lines are written as is; a line that does not
// end in '\n' is terminated by one.
func WriteUnified(w io.Writer, r Report) error {
	if len(r.Hunks) == 0 {
		return nil
	}
	uw := &unifiedWriter{w: bufio.NewWriter(w), r: r}
	if err := uw.write(); err != nil {
		return err
	}
	return uw.w.Flush()
}

// Unified returns r rendered by [WriteUnified].
func Unified(r Report) string {
	var sb strings.Builder
	_ = WriteUnified(&sb, r)
	return sb.String()
}

type unifiedWriter struct {
	w *bufio.Writer
	r Report
}

func (uw *unifiedWriter) write() error {
	if _, err := fmt.Fprintf(uw.w, "--- %s\n+++ %s\n", uw.r.Old, uw.r.New); err != nil {
		return err
	}
	for _, win := range Windows(uw.r.Hunks, len(uw.r.A), len(uw.r.B), uw.r.Context) {
		if err := uw.writeWindow(win); err != nil {
			return err
		}
	}
	return nil
}

func (uw *unifiedWriter) writeWindow(win Window) error {
	if _, err := fmt.Fprintf(uw.w, "@@ -%s +%s @@\n", headerRange(win.Old), headerRange(win.New)); err != nil {
		return err
	}
	pos := win.Old.Start
	for _, h := range win.Hunks {
		if err := uw.writeLines(' ', uw.r.A, Range{pos, h.Remove.Start}); err != nil {
			return err
		}
		if err := uw.writeLines('-', uw.r.A, h.Remove); err != nil {
			return err
		}
		if err := uw.writeLines('+', uw.r.B, h.Insert); err != nil {
			return err
		}
		pos = h.Remove.End
	}
	return uw.writeLines(' ', uw.r.A, Range{pos, win.Old.End})
}

func (uw *unifiedWriter) writeLines(prefix byte, seq []string, r Range) error {
	for i := r.Start; i < r.End; i++ {
		if err := uw.w.WriteByte(prefix); err != nil {
			return err
		}
		line := seq[i]
		if _, err := uw.w.WriteString(line); err != nil {
			return err
		}
		if strings.HasSuffix(line, "\n") {
			continue
		}
		if err := uw.w.WriteByte('\n'); err != nil {
			return err
		}
		if uw.r.NoEOLMarker && i == len(seq)-1 {
			if _, err := uw.w.WriteString("\\ No newline at end of file\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// headerRange formats r for a window header: a 1-based start line and a
// length. An empty range names the line after which it sits, as diff(1) does.
func headerRange(r Range) string {
	start := r.Start + 1
	if r.Empty() {
		start = r.Start
	}
	return fmt.Sprintf("%d,%d", start, r.Len())
}
