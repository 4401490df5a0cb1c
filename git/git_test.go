package git

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PedroElizalde01/pdiff/diff"
)

func TestMode(t *testing.T) {
	assert.Equal(t, "WORKTREE", Worktree.String())
	assert.Equal(t, "STAGED", Staged.String())
	assert.Equal(t, Staged, Worktree.Toggle())
	assert.Equal(t, Worktree, Staged.Toggle())
}

func TestParseNonEmptyLines(t *testing.T) {
	assert.Equal(t, []string{}, parseNonEmptyLines("  \n\n"))
	assert.Equal(t, []string{"a.go", "b/c.go"}, parseNonEmptyLines("a.go\n\n  b/c.go \n"))
}

func TestAppendUnique(t *testing.T) {
	got := appendUnique([]string{"a", "b"}, []string{"b", "c", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestFriendlyError(t *testing.T) {
	tests := map[string]struct {
		err  error
		want string
	}{
		"Nil": {
			err:  nil,
			want: "",
		},
		"NotARepository": {
			err:  &CommandError{Args: []string{"diff"}, Output: "fatal: not a git repository (or any of the parent directories): .git"},
			want: "Not a git repository. Run pdiff --git inside a git repository.",
		},
		"CommandWithoutOutput": {
			err:  &CommandError{Args: []string{"diff", "--cached"}, Err: errors.New("exit status 2")},
			want: "git diff --cached: exit status 2",
		},
		"Other": {
			err:  errors.New("boom"),
			want: "boom",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.want, FriendlyError(test.err))
		})
	}
}

func TestIsMissingObject(t *testing.T) {
	assert.True(t, isMissingObject("fatal: path 'x' does not exist in 'HEAD'"))
	assert.True(t, isMissingObject("fatal: path 'x' exists on disk, but not in the index"))
	assert.True(t, isMissingObject("fatal: invalid object name 'HEAD'."))
	assert.False(t, isMissingObject("fatal: not a git repository"))
}

// initRepo creates a repository with one commit and changes the working
// directory to it.
func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("GIT_CONFIG_GLOBAL", filepath.Join(dir, ".gitconfig-none"))
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")

	mustGit(t, "init", "-q")
	mustGit(t, "config", "user.email", "test@example.com")
	mustGit(t, "config", "user.name", "test")
	writeFile(t, "tracked.txt", "x\ny\nc\nz\n0\n")
	writeFile(t, "sub/staged.txt", "one\n")
	mustGit(t, "add", ".")
	mustGit(t, "commit", "-q", "-m", "init")
	return dir
}

func mustGit(t *testing.T, args ...string) {
	t.Helper()
	_, err := runGit(args...)
	require.NoError(t, err, "git %v", args)
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
}

func TestRepository(t *testing.T) {
	initRepo(t)

	writeFile(t, "tracked.txt", "x\nb\ny\nz\n1\n")
	writeFile(t, "untracked.txt", "new\n")
	writeFile(t, "sub/staged.txt", "one\ntwo\n")
	mustGit(t, "add", "sub/staged.txt")

	worktree, err := ListChangedFiles(Worktree)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tracked.txt", "untracked.txt"}, worktree)

	staged, err := ListChangedFiles(Staged)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub/staged.txt"}, staged)

	t.Run("WorktreeChange", func(t *testing.T) {
		pair, err := FilePair(Worktree, "tracked.txt")
		require.NoError(t, err)
		assert.Equal(t, ":tracked.txt", pair.Old.Name)
		assert.Equal(t, "tracked.txt", pair.New.Name)
		assert.Equal(t, []diff.Hunk{
			{Remove: diff.Range{Start: 1, End: 1}, Insert: diff.Range{Start: 1, End: 2}},
			{Remove: diff.Range{Start: 2, End: 3}, Insert: diff.Range{Start: 3, End: 3}},
			{Remove: diff.Range{Start: 4, End: 5}, Insert: diff.Range{Start: 4, End: 5}},
		}, pair.Hunks())
	})

	t.Run("Untracked", func(t *testing.T) {
		pair, err := FilePair(Worktree, "untracked.txt")
		require.NoError(t, err)
		assert.Empty(t, pair.Old.Lines)
		assert.Equal(t, []string{"new\n"}, pair.New.Lines)
	})

	t.Run("Staged", func(t *testing.T) {
		pair, err := FilePair(Staged, "sub/staged.txt")
		require.NoError(t, err)
		assert.Equal(t, []string{"one\n"}, pair.Old.Lines)
		assert.Equal(t, []string{"one\n", "two\n"}, pair.New.Lines)
	})

	t.Run("DeletedInWorktree", func(t *testing.T) {
		require.NoError(t, os.Remove("tracked.txt"))
		pair, err := FilePair(Worktree, "tracked.txt")
		require.NoError(t, err)
		assert.Len(t, pair.Old.Lines, 5)
		assert.Empty(t, pair.New.Lines)
	})
}
