package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/abiosoft/readline"
	"github.com/ncsh/ncsh/commands"
	"github.com/ncsh/ncsh/core"
	"github.com/ncsh/ncsh/core/config"
	"github.com/ncsh/ncsh/core/logger"
	"github.com/ncsh/ncsh/core/ttylog"
	"github.com/ncsh/ncsh/core/vos"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type shellOptions struct {
	config *config.Configuration

	// dir is the initial working directory, the current one if empty.
	dir        string
	hasCommand bool
	command    string
	script     string
	record     string
}

// appLogger writes to stderr with --debug and to the configuration's app log
// otherwise.
func appLogger(cmd *cobra.Command, cfg *config.Configuration) (*log.Logger, func()) {
	if debug {
		return log.New(cmd.ErrOrStderr(), "[ncsh] ", log.LstdFlags), func() {}
	}

	if !configDirExists(cfg) {
		return log.New(io.Discard, "", 0), func() {}
	}
	fd, err := cfg.OpenAppLog()
	if err != nil {
		return log.New(io.Discard, "", 0), func() {}
	}
	return log.New(fd, "[ncsh] ", log.LstdFlags), func() { fd.Close() }
}

func configDirExists(cfg *config.Configuration) bool {
	exists, err := afero.DirExists(afero.NewOsFs(), cfg.Dir())
	return err == nil && exists
}

func terminalSize() (width, height int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80, 24
	}
	return width, height
}

func historyLimit(size int) int {
	if size == 0 {
		// Disables the history file.
		return -1
	}
	return size
}

func runShell(cmd *cobra.Command, opts shellOptions) (int, error) {
	cfg := opts.config
	appLog, closeAppLog := appLogger(cmd, cfg)
	defer closeAppLog()

	dir := opts.dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return 1, err
		}
		dir = wd
	}

	var files vos.VIO = vos.NewHostIO()
	if opts.record != "" {
		fd, err := os.OpenFile(opts.record, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
		if err != nil {
			return 1, err
		}
		defer fd.Close()
		width, height := terminalSize()
		files = ttylog.NewRecorder(files, ttylog.NewAsciicastLogSink(fd, width, height), appLog)
		appLog.Printf("recording session to %q", opts.record)
	}

	env := vos.NewHostEnv()
	for key, value := range cfg.Env {
		if _, ok := env.LookupEnv(key); !ok {
			env.Setenv(key, value)
		}
	}
	sys := vos.New(afero.NewOsFs(), env, files, dir)

	session := &commands.Session{
		Aliases: commands.NewAliasTable(),
		History: commands.NewHistory(cfg.HistorySize),
	}
	for name, value := range cfg.Aliases {
		if err := session.Aliases.Set(name, value); err != nil {
			appLog.Printf("skipping alias: %v", err)
		}
	}

	events := logger.NewNopLogger()
	if cfg.EventLog && configDirExists(cfg) {
		fd, err := cfg.OpenEventLog()
		if err != nil {
			return 1, fmt.Errorf("opening event log: %w", err)
		}
		defer fd.Close()
		events = logger.NewJsonLinesLogRecorder(fd)
	}

	commands.DefaultColor = cfg.Color
	useColor := cfg.Color == "always" || (cfg.Color == "auto" && commands.IsTerminal(os.Stderr))

	interp, err := core.NewInterpreter(
		sys,
		commands.NewDefaultRegistry(session),
		core.WithAliases(session.Aliases),
		core.WithArenaCapacity(cfg.ArenaCapacity),
		core.WithLogger(appLog),
		core.WithEventRecorder(events.NewSession()),
		core.WithColor(useColor),
	)
	if err != nil {
		return 1, err
	}
	defer interp.Close()

	sh := commands.NewShell(sys, interp, session.History)
	sh.Init(cfg.Path)
	if cfg.Prompt != "" {
		sh.Prompt = cfg.Prompt
	}
	if !useColor && sh.Prompt == commands.DefaultColorPrompt {
		sh.Prompt = commands.DefaultPrompt
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case opts.hasCommand:
		return sh.RunCommand(ctx, opts.command), nil

	case opts.script != "":
		fd, err := os.Open(opts.script)
		if err != nil {
			return 1, err
		}
		defer fd.Close()
		return sh.RunLines(ctx, fd), nil

	case term.IsTerminal(int(os.Stdin.Fd())):
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt)
		defer signal.Stop(sigs)
		sh.Interrupt = sigs

		rlConfig := &readline.Config{
			HistoryLimit:    historyLimit(cfg.HistorySize),
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		}
		if cfg.HistorySize > 0 && configDirExists(cfg) {
			rlConfig.HistoryFile = cfg.HistoryPath()
		}
		return sh.RunInteractive(ctx, rlConfig)

	default:
		return sh.RunLines(ctx, vos.Reader(sys.Stdin())), nil
	}
}
