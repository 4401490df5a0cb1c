package git

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/PedroElizalde01/pdiff/internal/log"
	"github.com/PedroElizalde01/pdiff/source"
)

type Mode int

const (
	Worktree Mode = iota
	Staged
)

func (m Mode) String() string {
	if m == Staged {
		return "STAGED"
	}
	return "WORKTREE"
}

func (m Mode) Toggle() Mode {
	if m == Staged {
		return Worktree
	}
	return Staged
}

// ListChangedFiles lists the paths, relative to the repository root, that
// differ between index and worktree (Worktree, untracked files included) or
// between HEAD and index (Staged).
func ListChangedFiles(mode Mode) ([]string, error) {
	args := []string{"diff", "--name-only"}
	if mode == Staged {
		args = []string{"diff", "--cached", "--name-only"}
	}

	out, err := runGit(args...)
	if err != nil {
		return nil, err
	}

	files := parseNonEmptyLines(out)
	if mode == Worktree {
		untrackedOut, err := runGit("ls-files", "--others", "--exclude-standard", "--full-name", ":/")
		if err != nil {
			return nil, err
		}
		files = appendUnique(files, parseNonEmptyLines(untrackedOut))
	}
	log.Debugf("%s: %d changed files", mode, len(files))
	return files, nil
}

// FilePair returns both sides of file, a path relative to the repository
// root. In Worktree mode the index version is compared with the file on disk;
// in Staged mode the HEAD version is compared with the index version. A side
// that does not exist, like the base of a new file, is empty.
func FilePair(mode Mode, file string) (source.Pair, error) {
	if mode == Staged {
		oldFile, err := blob("HEAD", file)
		if err != nil {
			return source.Pair{}, err
		}
		newFile, err := blob("", file)
		if err != nil {
			return source.Pair{}, err
		}
		return source.Pair{Old: oldFile, New: newFile}, nil
	}

	oldFile, err := blob("", file)
	if err != nil {
		return source.Pair{}, err
	}
	root, err := TopLevel()
	if err != nil {
		return source.Pair{}, err
	}
	newFile, err := source.Load(afero.NewOsFs(), filepath.Join(root, filepath.FromSlash(file)))
	if errors.Is(err, os.ErrNotExist) {
		return source.Pair{Old: oldFile, New: source.FromBytes(file, time.Time{}, nil)}, nil
	}
	if err != nil {
		return source.Pair{}, err
	}
	newFile.Name = file
	return source.Pair{Old: oldFile, New: newFile}, nil
}

// TopLevel returns the absolute path of the repository root.
func TopLevel() (string, error) {
	out, err := runGit("rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// blob reads file from rev, or from the index when rev is empty. A missing
// object reads as empty content.
func blob(rev, file string) (source.File, error) {
	object := rev + ":" + file
	out, err := runGit("show", object)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && isMissingObject(cmdErr.Output) {
			log.Debugf("%s does not exist, treating it as empty", object)
			return source.FromBytes(object, time.Time{}, nil), nil
		}
		return source.File{}, err
	}
	return source.FromBytes(object, time.Time{}, []byte(out)), nil
}

func isMissingObject(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "does not exist") ||
		strings.Contains(lower, "exists on disk, but not in") ||
		strings.Contains(lower, "invalid object name")
}

type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	if strings.TrimSpace(e.Output) != "" {
		return e.Output
	}
	return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func FriendlyError(err error) string {
	if err == nil {
		return ""
	}

	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		lower := strings.ToLower(cmdErr.Output)
		if strings.Contains(lower, "not a git repository") {
			return "Not a git repository. Run pdiff --git inside a git repository."
		}
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return "git executable not found in PATH."
	}
	return err.Error()
}

func runGit(args ...string) (string, error) {
	log.Tracef("git %s", strings.Join(args, " "))
	cmd := exec.Command("git", args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		output := strings.TrimSpace(stdout.String() + "\n" + stderr.String())
		return output, &CommandError{
			Args:   append([]string(nil), args...),
			Output: output,
			Err:    err,
		}
	}
	return stdout.String(), nil
}

func parseNonEmptyLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func appendUnique(base []string, extra []string) []string {
	if len(extra) == 0 {
		return base
	}
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, item := range base {
		seen[item] = struct{}{}
	}
	for _, item := range extra {
		if _, exists := seen[item]; exists {
			continue
		}
		base = append(base, item)
		seen[item] = struct{}{}
	}
	return base
}
