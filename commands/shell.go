package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/abiosoft/readline"
	"github.com/ncsh/ncsh/core"
	"github.com/ncsh/ncsh/core/vos"
)

const (
	EnvHome            = "HOME"
	EnvPWD             = "PWD"
	EnvOldPWD          = "OLDPWD"
	EnvPath            = "PATH"
	EnvPrompt          = "PS1"
	EnvHostname        = "HOSTNAME"
	EnvUser            = "USER"
	DefaultColorPrompt = `\033[01;32m\u@\h\033[00m:\033[01;34m\w\033[00m\$ `
	DefaultPrompt      = `\u@\h:\w\$ `
)

// Shell reads lines and hands them to the interpreter until the input ends
// or a builtin asks it to exit.
type Shell struct {
	VirtualOS   vos.VOS
	Interpreter *core.Interpreter
	History     *History

	// Prompt is used when PS1 isn't set.
	Prompt string

	// Interrupt cancels the running line when it receives a value.
	Interrupt <-chan os.Signal

	quit     atomic.Bool
	exitCode atomic.Int32

	mu         sync.Mutex
	cancelLine context.CancelFunc
}

// NewShell creates a shell, exit builtins run against sys stop it.
func NewShell(sys *vos.OS, interp *core.Interpreter, history *History) *Shell {
	if history == nil {
		history = NewHistory(0)
	}

	s := &Shell{
		VirtualOS:   sys,
		Interpreter: interp,
		History:     history,
		Prompt:      DefaultPrompt,
	}
	sys.SetExitHandler(s.Exit)
	return s
}

// Exit stops the shell with the given status, the rest of the running line
// is skipped.
func (s *Shell) Exit(code int) {
	s.exitCode.Store(int32(code))
	s.quit.Store(true)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelLine != nil {
		s.cancelLine()
	}
}

// Exited reports whether a builtin asked the shell to exit.
func (s *Shell) Exited() bool {
	return s.quit.Load()
}

// Init sets up the environment similar to login, variables that are already
// set are left alone.
func (s *Shell) Init(path string) {
	setDefault := func(key, value string) {
		if _, ok := s.VirtualOS.LookupEnv(key); !ok && value != "" {
			s.VirtualOS.Setenv(key, value)
		}
	}

	if wd, err := s.VirtualOS.Getwd(); err == nil {
		s.VirtualOS.Setenv(EnvPWD, wd)
	}
	setDefault(EnvPath, path)
	if host, err := os.Hostname(); err == nil {
		setDefault(EnvHostname, host)
	}
	if u, err := user.Current(); err == nil {
		setDefault(EnvUser, u.Username)
		setDefault(EnvHome, u.HomeDir)
	}
}

func (s *Shell) prompt() string {
	prompt := s.VirtualOS.Getenv(EnvPrompt)
	if prompt == "" {
		prompt = s.Prompt
	}
	prompt = strings.ReplaceAll(prompt, `\u`, s.VirtualOS.Getenv(EnvUser))
	prompt = strings.ReplaceAll(prompt, `\h`, s.VirtualOS.Getenv(EnvHostname))

	pwd, _ := s.VirtualOS.Getwd()
	home := s.VirtualOS.Getenv(EnvHome)
	if home != "" && (pwd == home || strings.HasPrefix(pwd, strings.TrimSuffix(home, "/")+"/")) {
		pwd = "~" + strings.TrimPrefix(pwd, home)
	}
	prompt = strings.ReplaceAll(prompt, `\w`, pwd)

	if os.Geteuid() == 0 {
		prompt = strings.ReplaceAll(prompt, `\$`, "#")
	} else {
		prompt = strings.ReplaceAll(prompt, `\$`, "$")
	}

	return unescape(prompt)
}

// status is the shell's exit status: the code passed to exit or the status
// of the last line.
func (s *Shell) status() int {
	if s.quit.Load() {
		return int(s.exitCode.Load())
	}
	return s.Interpreter.Status()
}

func (s *Shell) runLine(ctx context.Context, line string) int {
	lineCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.cancelLine = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.cancelLine = nil
		s.mu.Unlock()
	}()

	if s.Interrupt != nil {
		// Drop interrupts that arrived while no line was running.
		select {
		case <-s.Interrupt:
		default:
		}

		go func() {
			select {
			case <-s.Interrupt:
				cancel()
			case <-lineCtx.Done():
			}
		}()
	}

	status, _ := s.Interpreter.Run(lineCtx, line)
	return status
}

// RunCommand runs a single line, waits for its background statements and
// returns the shell's exit status.
func (s *Shell) RunCommand(ctx context.Context, line string) int {
	s.runLine(ctx, line)
	s.Interpreter.Wait()
	return s.status()
}

// RunLines runs every line read from r, stopping early if a builtin exits
// the shell.
func (s *Shell) RunLines(ctx context.Context, r io.Reader) int {
	scanner := bufio.NewScanner(r)
	for !s.quit.Load() && scanner.Scan() {
		s.runLine(ctx, scanner.Text())
	}
	s.Interpreter.Wait()

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(s.VirtualOS.Stderr(), "ncsh: %v\n", err)
		return 1
	}
	return s.status()
}

// RunInteractive prompts for lines with readline until the input is closed,
// then waits for background statements. Streams missing from cfg are taken
// from the virtual OS.
func (s *Shell) RunInteractive(ctx context.Context, cfg *readline.Config) (int, error) {
	defer s.Interpreter.Wait()

	if cfg.Stdin == nil {
		cfg.Stdin = readline.NewCancelableStdin(s.VirtualOS.Stdin())
	}
	if cfg.Stdout == nil {
		cfg.Stdout = s.VirtualOS.Stdout()
	}
	if cfg.Stderr == nil {
		cfg.Stderr = s.VirtualOS.Stderr()
	}
	if err := cfg.Init(); err != nil {
		return 1, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return 1, err
	}
	defer rl.Close()

	s.History.OnClear = rl.ResetHistory
	defer func() { s.History.OnClear = nil }()

	for !s.quit.Load() {
		rl.SetPrompt(s.prompt())
		line, err := rl.Readline()

		switch {
		case err == io.EOF:
			return s.status(), nil

		case err == readline.ErrInterrupt:
			// Interrupt clears line.
			continue

		case err != nil:
			return 1, err

		case strings.TrimSpace(line) == "":
			continue

		default:
			status := s.runLine(ctx, line)
			s.History.Add(line, status)
		}
	}

	return s.status(), nil
}
