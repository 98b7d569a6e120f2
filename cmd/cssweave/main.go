package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cssweave/config"
	"cssweave/css"
	"cssweave/state"
)

// programVersion resolves the build version embedded by the Go toolchain,
// falling back to "dev" when none is available (e.g. `go run`).
func programVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// initializeAppContext prepares application context before command execution but
// after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if env.Log, err = env.Cfg.Logging.Prepare(); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", programVersion()), zap.String("runtime", runtime.Version()))
	if len(configFile) == 0 {
		env.Log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}
	env.RestoreStdLog()
	return
}

// Ignore urfave/cli default error handling - cli.Exit() looks
// non-transparent and unnecessary; regular errors are returned from
// subcommands instead.
var errWasHandled bool

// this is called before appContext is destroyed, so we have a chance to
// properly log any error from subcommand
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := state.EnvFromContext(ctx)
	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func main() {
	// allow graceful shutdown on interrupt.
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            "cssweave",
		Usage:           "selector algebra for a CSS-preprocessor: resolve, extend and weave selector lists",
		Version:         programVersion() + " (" + runtime.Version() + ")",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
		},
		Commands: []*cli.Command{
			{
				Name:         "resolve",
				Usage:        "resolves '&' parent references in SELECTOR against PARENT",
				OnUsageError: usageErrorHandler,
				Action:       runResolve,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "parent", Aliases: []string{"p"}, Usage: "parent `SELECTOR` list ('&' resolves at base level when omitted)"},
				},
				ArgsUsage: "SELECTOR",
			},
			{
				Name:         "extend",
				Usage:        "applies '@extend TARGET => REPLACEMENT' rules to SELECTOR",
				OnUsageError: usageErrorHandler,
				Action:       runExtend,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "rule", Aliases: []string{"r"}, Usage: "one `TARGET=>REPLACEMENT` extend rule, may repeat"},
				},
				ArgsUsage: "SELECTOR",
			},
			{
				Name:         "weave",
				Usage:        "combinatorially interleaves two or more selector lists",
				OnUsageError: usageErrorHandler,
				Action:       runWeave,
				ArgsUsage:    "SELECTOR SELECTOR [SELECTOR...]",
			},
			{
				Name:  "dumpconfig",
				Usage: "dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       runDumpConfig,
				ArgsUsage:    "DESTINATION",
			},
		},
	}

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deffered functions after that
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func runResolve(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one SELECTOR argument, got %d", cmd.Args().Len())
	}
	own, err := css.ParseSelectorList([]byte(cmd.Args().Get(0)))
	if err != nil {
		return fmt.Errorf("unable to parse selector: %w", err)
	}

	var parent *css.CommaSequence
	if p := cmd.String("parent"); len(p) > 0 {
		if parent, err = css.ParseSelectorList([]byte(p)); err != nil {
			return fmt.Errorf("unable to parse parent selector: %w", err)
		}
	}

	resolved, err := own.ResolveParentRefs(parent)
	if err != nil {
		return fmt.Errorf("unable to resolve parent references: %w", err)
	}

	env.Log.Debug("Resolved parent references", zap.String("input", own.String()), zap.String("output", resolved.String()))
	fmt.Fprintln(os.Stdout, resolved.String())
	return nil
}

func runExtend(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one SELECTOR argument, got %d", cmd.Args().Len())
	}
	own, err := css.ParseSelectorList([]byte(cmd.Args().Get(0)))
	if err != nil {
		return fmt.Errorf("unable to parse selector: %w", err)
	}

	m := css.NewExtendMap()
	m.SetLimits(css.Limits{
		MaxExpansionSize: env.Cfg.Weave.MaxExpansionSize,
		MaxExtendDepth:   env.Cfg.Weave.MaxExtendDepth,
	})

	for i, rule := range cmd.StringSlice("rule") {
		target, replacement, found := strings.Cut(rule, "=>")
		if !found {
			return fmt.Errorf("malformed --rule %q: expected TARGET=>REPLACEMENT", rule)
		}
		targetList, err := css.ParseSelectorList([]byte(strings.TrimSpace(target)))
		if err != nil {
			return fmt.Errorf("unable to parse extend target %q: %w", target, err)
		}
		targetMember := targetList.Sequences[0].Members[0]
		if len(targetList.Sequences) != 1 || len(targetList.Sequences[0].Members) != 1 || targetMember.Kind != css.MemberSimple {
			return fmt.Errorf("extend target %q must be a single compound selector", target)
		}
		replacementList, err := css.ParseSelectorList([]byte(strings.TrimSpace(replacement)))
		if err != nil {
			return fmt.Errorf("unable to parse extend replacement %q: %w", replacement, err)
		}
		if len(replacementList.Sequences) != 1 {
			return fmt.Errorf("extend replacement %q must be a single selector", replacement)
		}
		m.Add(targetMember.Simple.Members, replacementList.Sequences[0], i+1, "")
	}

	extended, err := own.Extend(m)
	if err != nil {
		return fmt.Errorf("unable to apply extend rules: %w", err)
	}

	env.Log.Debug("Applied extend rules", zap.String("input", own.String()), zap.Int("rules", len(cmd.StringSlice("rule"))), zap.String("output", extended.String()))
	fmt.Fprintln(os.Stdout, extended.String())
	return nil
}

func runWeave(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if cmd.Args().Len() < 2 {
		return fmt.Errorf("expected at least two SELECTOR arguments, got %d", cmd.Args().Len())
	}

	var path [][]css.SequenceMember
	var perErr error
	for i := 0; i < cmd.Args().Len(); i++ {
		cs, e := css.ParseSelectorList([]byte(cmd.Args().Get(i)))
		if e != nil {
			perErr = multierr.Append(perErr, fmt.Errorf("selector %d (%q): %w", i, cmd.Args().Get(i), e))
			continue
		}
		if len(cs.Sequences) != 1 {
			perErr = multierr.Append(perErr, fmt.Errorf("selector %d (%q) must be a single sequence, not a comma list", i, cmd.Args().Get(i)))
			continue
		}
		path = append(path, cs.Sequences[0].Members)
	}
	if perErr != nil {
		return perErr
	}

	limits := css.Limits{MaxExpansionSize: env.Cfg.Weave.MaxExpansionSize}
	results, err := css.WeaveTraced(path, limits, env.Log)
	if err != nil {
		return fmt.Errorf("unable to weave selectors: %w", err)
	}

	env.Log.Debug("Wove selector paths", zap.Int("inputs", len(path)), zap.Int("alternatives", len(results)))
	for _, r := range results {
		seq := &css.Sequence{Members: r}
		fmt.Fprintln(os.Stdout, seq.String())
	}
	return nil
}

func runDumpConfig(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		err   error
		data  []byte
		state string
	)

	out := os.Stdout
	if len(fname) > 0 {
		fname = filepath.Join(filepath.Dir(fname), config.CleanFileName(filepath.Base(fname)))
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()
	}

	if cmd.Bool("default") {
		state = "default"
		data, err = config.Prepare()
	} else {
		state = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Info("Outputing configuration", zap.String("state", state), zap.String("file", fname))

	_, err = out.Write(data)
	if err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
