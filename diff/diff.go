// Package diff computes line diffs with the patience algorithm and renders
// them as unified reports or side-by-side rows.
package diff

import (
	"fmt"
	"strings"
)

type Kind int

const (
	Meta Kind = iota
	Header
	Del
	Add
	Change
	Context
)

type Row struct {
	OldNo *int
	NewNo *int
	Old   string
	New   string
	Kind  Kind
}

type blockRow struct {
	delIdx int
	addIdx int
}

// SideBySide lays out hunks as rows for a two-pane view. Every window (see
// [Windows]) starts with a header row, whose indices are returned as the
// second value. Removed and inserted lines of a hunk are paired up by
// position; leftovers become pure deletions or additions.
func SideBySide(hunks []Hunk, a, b []string, context int) ([]Row, []int) {
	windows := Windows(hunks, len(a), len(b), context)
	if len(windows) == 0 {
		return nil, nil
	}

	rows := make([]Row, 0, 8*len(windows))
	hunkStarts := make([]int, 0, len(windows))

	for _, w := range windows {
		header := fmt.Sprintf("@@ -%s +%s @@", headerRange(w.Old), headerRange(w.New))
		rows = append(rows, Row{Old: header, New: header, Kind: Header})
		hunkStarts = append(hunkStarts, len(rows)-1)

		oldLine, newLine := w.Old.Start, w.New.Start
		keep := func(end int) {
			for oldLine < end {
				rows = append(rows, Row{
					OldNo: intPtr(oldLine + 1),
					NewNo: intPtr(newLine + 1),
					Old:   display(a[oldLine]),
					New:   display(b[newLine]),
					Kind:  Context,
				})
				oldLine++
				newLine++
			}
		}

		for _, h := range w.Hunks {
			keep(h.Remove.Start)
			for _, p := range alignEditRowsByIndex(h.Remove.Len(), h.Insert.Len()) {
				row := Row{Kind: Change}
				if p.delIdx >= 0 {
					i := h.Remove.Start + p.delIdx
					row.OldNo = intPtr(i + 1)
					row.Old = display(a[i])
				}
				if p.addIdx >= 0 {
					j := h.Insert.Start + p.addIdx
					row.NewNo = intPtr(j + 1)
					row.New = display(b[j])
				}
				if row.NewNo == nil {
					row.Kind = Del
				}
				if row.OldNo == nil {
					row.Kind = Add
				}
				rows = append(rows, row)
			}
			oldLine, newLine = h.Remove.End, h.Insert.End
		}
		keep(w.Old.End)
	}
	return rows, hunkStarts
}

func alignEditRowsByIndex(dels, adds int) []blockRow {
	n := max(dels, adds)
	rows := make([]blockRow, 0, n)
	for i := 0; i < n; i++ {
		row := blockRow{delIdx: -1, addIdx: -1}
		if i < dels {
			row.delIdx = i
		}
		if i < adds {
			row.addIdx = i
		}
		rows = append(rows, row)
	}
	return rows
}

// display strips the line terminator kept by tokenization.
func display(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

func intPtr(v int) *int {
	n := v
	return &n
}
