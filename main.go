package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/afero"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/PedroElizalde01/pdiff/diff"
	"github.com/PedroElizalde01/pdiff/git"
	"github.com/PedroElizalde01/pdiff/internal/config"
	"github.com/PedroElizalde01/pdiff/internal/log"
	"github.com/PedroElizalde01/pdiff/source"
	"github.com/PedroElizalde01/pdiff/ui"
)

var version = "dev"

// Exit codes follow diff(1).
const (
	exitSame    = 0
	exitDiffer  = 1
	exitTrouble = 2
)

var errUsage = errors.New("usage error")

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	log.InitLogger()
	log.Debugf("args captured: args=%v", args)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "pdiff: %v\n", err)
		return exitTrouble
	}
	if cfg.Source != "" {
		log.Infof("using config %s", cfg.Source)
	}

	code := exitSame
	app := newApp(cfg, stdout, &code)
	app.Writer = stdout
	app.ErrWriter = stderr
	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintf(stderr, "pdiff: %v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "\nUsage:\n%s\n", app.UsageText)
		}
		log.WithError(err).Debug("run failed")
		return exitTrouble
	}
	return code
}

func newApp(cfg config.Config, stdout io.Writer, code *int) *cli.Command {
	contextFlag := &cli.IntFlag{
		Name:    "context",
		Aliases: []string{"c", "U"},
		Usage:   "number of context lines around each change",
		Value:   diff.DefaultContext,
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("PDIFF_CONTEXT"),
		),
	}
	colorFlag := &cli.StringFlag{
		Name:  "color",
		Usage: "color the report: auto, always or never",
		Value: "auto",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("PDIFF_COLOR"),
		),
	}
	if cfg.Source != "" {
		contextFlag.Sources.Chain = append(contextFlag.Sources.Chain, yaml.YAML("context", altsrc.StringSourcer(cfg.Source)))
		colorFlag.Sources.Chain = append(colorFlag.Sources.Chain, yaml.YAML("color", altsrc.StringSourcer(cfg.Source)))
	}

	return &cli.Command{
		Name:      "pdiff",
		Usage:     "compare files line by line with the patience algorithm",
		UsageText: "pdiff [options] OLD NEW\npdiff --tui [options] OLD NEW\npdiff --git [--staged] [options]",
		Version:   version,
		Flags: []cli.Flag{
			contextFlag,
			colorFlag,
			&cli.BoolFlag{
				Name:    "tui",
				Aliases: []string{"t"},
				Usage:   "browse the diff in a terminal viewer",
			},
			&cli.BoolFlag{
				Name:    "git",
				Aliases: []string{"g"},
				Usage:   "browse the changes of the current git repository",
			},
			&cli.BoolFlag{
				Name:  "staged",
				Usage: "with --git, start with the staged changes",
			},
		},
		// Errors are reported by run, which owns the exit code.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			n := cmd.Int("context")
			if n < 0 {
				return fmt.Errorf("%w: context must not be negative, got %d", errUsage, n)
			}
			color := cmd.String("color")
			switch color {
			case "auto", "always", "never":
			default:
				return fmt.Errorf("%w: unknown color mode %q", errUsage, color)
			}
			paths := cmd.Args().Slice()

			if cmd.Bool("git") {
				if len(paths) != 0 {
					return fmt.Errorf("%w: --git takes no file arguments", errUsage)
				}
				mode := git.Worktree
				if cmd.Bool("staged") {
					mode = git.Staged
				}
				return runViewer(gitLoader{mode: mode}, cfg, n)
			}
			if cmd.Bool("staged") {
				return fmt.Errorf("%w: --staged requires --git", errUsage)
			}
			if len(paths) != 2 {
				return fmt.Errorf("%w: expected two files, got %d", errUsage, len(paths))
			}

			if cmd.Bool("tui") {
				return runViewer(fileLoader{fs: afero.NewOsFs(), oldPath: paths[0], newPath: paths[1]}, cfg, n)
			}
			differ, err := writeReport(stdout, paths[0], paths[1], n, useColor(color, stdout), cfg.Theme)
			if err != nil {
				return err
			}
			if differ {
				*code = exitDiffer
			}
			return nil
		},
	}
}

// writeReport writes the unified report of oldPath and newPath to w and
// reports whether the files differ.
func writeReport(w io.Writer, oldPath, newPath string, context int, color bool, theme config.Theme) (bool, error) {
	pair, err := source.LoadPair(afero.NewOsFs(), oldPath, newPath)
	if err != nil {
		return false, fmt.Errorf("failed to load input: %w", err)
	}
	r := pair.Report(context)
	if len(r.Hunks) == 0 {
		return false, nil
	}

	if !color {
		if err := diff.WriteUnified(w, r); err != nil {
			return true, fmt.Errorf("failed to write report: %w", err)
		}
		return true, nil
	}

	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(termenv.ANSI256)
	colored := ui.ColorizeUnified(diff.Unified(r), ui.NewRendererStyles(renderer, theme))
	if _, err := io.WriteString(w, colored); err != nil {
		return true, fmt.Errorf("failed to write report: %w", err)
	}
	return true, nil
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	return isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runViewer(src loader, cfg config.Config, context int) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !isTerminal(os.Stdout) {
		return errors.New("the viewer needs a terminal")
	}
	log.Debugf("starting viewer in %s mode", src.Mode())
	p := tea.NewProgram(initialModel(src, cfg, context), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
