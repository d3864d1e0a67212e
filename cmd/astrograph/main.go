// Command astrograph builds procedurally generated star systems and
// renders observatory star charts over a simulated tick range.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/star/astrograph/internal/diagnostics"
	"github.com/star/astrograph/internal/driver"
	"github.com/star/astrograph/internal/errkind"
	"github.com/star/astrograph/internal/generate"
	"github.com/star/astrograph/internal/ioformat"
	"github.com/star/astrograph/internal/ticks"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return errkind.BadInput.ExitCode()
	}

	var global []string
	for len(args) > 0 && (args[0] == "-v" || args[0] == "-vv") {
		global, args = append(global, args[0]), args[1:]
	}
	if len(args) == 0 {
		usage()
		return errkind.BadInput.ExitCode()
	}

	sub, rest := args[0], args[1:]
	logger := newLogger(sub, append(global, rest...))

	var err error
	switch sub {
	case "build":
		err = runBuild(rest, logger)
	case "simulate":
		err = runSimulate(rest, logger)
	case "-h", "-help", "--help", "help":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "astrograph: unknown subcommand %q\n", sub)
		usage()
		return errkind.BadInput.ExitCode()
	}

	if err == nil {
		return 0
	}

	logger.Error("astrograph failed", "error", err)
	var ke *errkind.Error
	if errors.As(err, &ke) {
		return ke.Kind.ExitCode()
	}
	return 1
}

func usage() {
	fmt.Fprint(os.Stderr, `usage:
  astrograph build [-c STAR_COUNT] [-s SEED] -o OUT.json
  astrograph simulate -p PROGRAM.json
  astrograph simulate -u UNIVERSE.json -O OBSERVATORIES.json -s START -e END -t STEP [-o OUT_DIR]

global flags (may appear before the subcommand):
  -v, -vv            increase log verbosity
`)
}

// newLogger scans both the global args and a subcommand's own args for
// -v/-vv, since a subcommand's FlagSet hasn't parsed anything yet when the
// logger is built.
func newLogger(sub string, rest []string) *slog.Logger {
	level := slog.LevelWarn
	for _, a := range rest {
		switch a {
		case "-v":
			level = slog.LevelInfo
		case "-vv":
			level = slog.LevelDebug
		}
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runBuild(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	starCount := fs.Int("c", 8, "number of stars to generate")
	seedFlag := fs.String("s", "", "PRNG seed (decimal or 0x-prefixed hex); random if omitted")
	out := fs.String("o", "", "universe output path")
	fs.Bool("v", false, "verbose logging")
	fs.Bool("vv", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return errkind.Wrap(errkind.BadInput, "parsing build flags", err)
	}

	if *out == "" {
		return errkind.New(errkind.BadInput, "build requires -o OUT.json")
	}

	seed, err := resolveSeed(*seedFlag)
	if err != nil {
		return err
	}

	opts := generate.DefaultOptions()
	opts.StarCount = *starCount

	start := time.Now()
	tree, err := generate.Generate(seed, opts, logger)
	diagnostics.ObserveGenerationDuration(time.Since(start))
	if err != nil {
		return err
	}

	data, err := ioformat.MarshalUniverse(tree)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return errkind.Wrap(errkind.IoFailure, "writing universe file "+*out, err)
	}

	logger.Info("generated universe", "seed", seed.String(), "stars", *starCount, "bodies", len(tree.Flat()), "path", *out)
	return nil
}

func resolveSeed(s string) (*big.Int, error) {
	if s == "" {
		return generate.ParseSeed(fmt.Sprintf("%d", time.Now().UnixNano()))
	}
	return generate.ParseSeed(s)
}

func runSimulate(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	programPath := fs.String("p", "", "program file path")
	universePath := fs.String("u", "", "universe file path (requires -O)")
	observatoriesPath := fs.String("O", "", "observatories file path (requires -u)")
	startFlag := fs.String("s", "", "start tick (required with -u/-O; ignored with -p)")
	endFlag := fs.String("e", "", "end tick (required with -u/-O; ignored with -p)")
	stepFlag := fs.Int64("t", 0, "tick step (required with -u/-O; ignored with -p)")
	outFlag := fs.String("o", "", "output directory (default . with -u/-O; ignored with -p)")
	workers := fs.Int("workers", runtime.NumCPU(), "worker pool size")
	metricsAddr := fs.String("metrics-addr", "", "bind address for the diagnostics server; disabled when empty")
	metricsToken := fs.String("metrics-token", "", "bearer token required by the diagnostics server; auth disabled when empty")
	fs.Bool("v", false, "verbose logging")
	fs.Bool("vv", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return errkind.Wrap(errkind.BadInput, "parsing simulate flags", err)
	}

	prog, err := resolveProgram(*programPath, *universePath, *observatoriesPath, *startFlag, *endFlag, *stepFlag, *outFlag, logger)
	if err != nil {
		return err
	}

	opts := driver.DefaultOptions()
	opts.Workers = *workers
	opts.OutputRoot = prog.OutputRoot

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *metricsAddr != "" {
		srv := diagnostics.NewServer(*metricsAddr, diagnostics.AuthConfig{
			Enabled: *metricsToken != "",
			Token:   *metricsToken,
		}, logger)
		go func() {
			logger.Info("starting diagnostics server", "addr", *metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("diagnostics server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	result, err := driver.Run(ctx, driver.Program{
		Tree:          prog.Tree,
		Observatories: prog.Observatories,
		Start:         prog.Start,
		End:           prog.End,
		Step:          prog.Step,
	}, opts, logger)
	logger.Info("simulation result", "tasks_run", result.TasksRun, "tasks_failed", result.TasksFailed, "cancelled", result.Cancelled)
	return err
}

func resolveProgram(programPath, universePath, observatoriesPath, start, end string, step int64, out string, logger *slog.Logger) (*ioformat.ResolvedProgram, error) {
	if programPath != "" {
		return ioformat.LoadProgram(programPath, logger)
	}
	if universePath == "" || observatoriesPath == "" {
		return nil, errkind.New(errkind.BadInput, "simulate requires either -p PROGRAM.json or both -u UNIVERSE.json and -O OBSERVATORIES.json")
	}
	if start == "" || end == "" || step <= 0 {
		return nil, errkind.New(errkind.BadInput, "simulate requires -s, -e, and a positive -t when not using -p")
	}

	universeData, err := os.ReadFile(universePath)
	if err != nil {
		return nil, errkind.Wrap(errkind.IoFailure, "reading universe file "+universePath, err)
	}
	tree, err := ioformat.ParseUniverse(universeData, logger)
	if err != nil {
		return nil, err
	}

	obsData, err := os.ReadFile(observatoriesPath)
	if err != nil {
		return nil, errkind.Wrap(errkind.IoFailure, "reading observatories file "+observatoriesPath, err)
	}
	observatories, err := ioformat.ParseObservatories(obsData)
	if err != nil {
		return nil, err
	}

	startTick, err := ticks.Parse(start)
	if err != nil {
		return nil, errkind.Wrap(errkind.BadInput, "parsing -s", err)
	}
	endTick, err := ticks.Parse(end)
	if err != nil {
		return nil, errkind.Wrap(errkind.BadInput, "parsing -e", err)
	}
	if out == "" {
		out = "."
	}

	return &ioformat.ResolvedProgram{
		Tree:          tree,
		Observatories: observatories,
		Start:         startTick,
		End:           endTick,
		Step:          step,
		OutputRoot:    out,
	}, nil
}
