// Package source turns files and in-memory content into line sequences ready
// to be diffed.
package source

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/PedroElizalde01/pdiff/diff"
	"github.com/PedroElizalde01/pdiff/internal/log"
)

// TimeFormat is the timestamp layout used in report headers.
const TimeFormat = "2006-01-02 15:04:05.000000000 -0700"

// File is a named sequence of lines.
type File struct {
	Name    string
	ModTime time.Time
	Size    int64
	Lines   []string
}

// Label returns the report header label of f. Files without a modification
// time, such as git blobs, are labeled by name only.
func (f File) Label() diff.Label {
	l := diff.Label{Name: f.Name}
	if !f.ModTime.IsZero() {
		l.Stamp = f.ModTime.Format(TimeFormat)
	}
	return l
}

// Lines splits data after every '\n'. Each line keeps its terminator, so a
// missing newline at the end of the data is a difference like any other. Data
// ending in '\n' does not produce a trailing empty line.
func Lines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	// The lines share the memory of a single string conversion.
	lines := strings.SplitAfter(string(data), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// FromBytes builds a File from in-memory content.
func FromBytes(name string, modTime time.Time, data []byte) File {
	return File{
		Name:    name,
		ModTime: modTime,
		Size:    int64(len(data)),
		Lines:   Lines(data),
	}
}

// Load reads the file at path from fs.
func Load(fs afero.Fs, path string) (File, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return File{}, err
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return File{}, err
	}
	f := FromBytes(path, info.ModTime(), data)
	log.Debugf("loaded %s: %d bytes, %d lines", path, f.Size, len(f.Lines))
	return f, nil
}

// Pair is the old and new side of a comparison.
type Pair struct {
	Old File
	New File
}

// LoadPair loads oldPath and newPath from fs.
func LoadPair(fs afero.Fs, oldPath, newPath string) (Pair, error) {
	oldFile, err := Load(fs, oldPath)
	if err != nil {
		return Pair{}, err
	}
	newFile, err := Load(fs, newPath)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Old: oldFile, New: newFile}, nil
}

// Hunks diffs the pair line by line.
func (p Pair) Hunks() []diff.Hunk {
	hunks := diff.Patience(p.Old.Lines, p.New.Lines)
	log.Debugf("diffed %s and %s: %d hunks", p.Old.Name, p.New.Name, len(hunks))
	return hunks
}

// Report returns the unified report of the pair with the given context.
func (p Pair) Report(context int) diff.Report {
	return diff.Report{
		Old:         p.Old.Label(),
		New:         p.New.Label(),
		A:           p.Old.Lines,
		B:           p.New.Lines,
		Hunks:       p.Hunks(),
		Context:     context,
		NoEOLMarker: true,
	}
}
