package commands

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"

	"github.com/ncsh/ncsh/core/vos"
	"golang.org/x/sys/unix"
)

// maxSignal is one past the highest signal number kill accepts.
const maxSignal = 65

func parseSignal(spec string) (syscall.Signal, error) {
	if n, err := strconv.Atoi(spec); err == nil {
		if n < 0 || n >= maxSignal {
			return 0, fmt.Errorf("%s: invalid signal specification", spec)
		}
		return syscall.Signal(n), nil
	}

	name := strings.ToUpper(spec)
	if !strings.HasPrefix(name, "SIG") {
		name = "SIG" + name
	}
	if sig := unix.SignalNum(name); sig != 0 {
		return sig, nil
	}
	return 0, fmt.Errorf("%s: invalid signal specification", spec)
}

// isSignalFlag reports whether arg is the -SIGNAL form getopt can't parse.
func isSignalFlag(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}
	switch arg[1] {
	case '-', 's', 'l', 'h':
		return false
	}
	return true
}

// Kill implements the kill builtin.
func Kill(virtOS vos.VOS) int {
	sig := unix.SIGTERM
	if args := virtOS.Args(); len(args) > 1 && isSignalFlag(args[1]) {
		parsed, err := parseSignal(args[1][1:])
		if err != nil {
			fmt.Fprintf(virtOS.Stderr(), "kill: %v\n", err)
			return 1
		}
		sig = parsed
		virtOS = virtOS.Invoke(append([]string{args[0]}, args[2:]...), virtOS)
	}

	cmd := &SimpleCommand{
		Use:   "kill [-s SIGNAL | -SIGNAL] PID... or kill -l",
		Short: "Send a signal to a process, SIGTERM if none is given.",
	}
	sigSpec := cmd.Flags().String('s', "", "name or number of the signal to send")
	list := cmd.Flags().Bool('l', "list signal names")

	return cmd.Run(virtOS, func() int {
		w := virtOS.Stdout()
		if *list {
			for i := 1; i < maxSignal; i++ {
				if name := unix.SignalName(syscall.Signal(i)); name != "" {
					fmt.Fprintf(w, "%2d) %s\n", i, name)
				}
			}
			return 0
		}

		if *sigSpec != "" {
			parsed, err := parseSignal(*sigSpec)
			if err != nil {
				fmt.Fprintf(virtOS.Stderr(), "kill: %v\n", err)
				return 1
			}
			sig = parsed
		}

		pids := cmd.Flags().Args()
		if len(pids) == 0 {
			fmt.Fprintf(virtOS.Stderr(), "usage: %s\n", cmd.Use)
			return 2
		}

		ret := 0
		for _, arg := range pids {
			pid, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Fprintf(virtOS.Stderr(), "kill: %s: arguments must be process IDs\n", arg)
				ret = 1
				continue
			}
			if err := unix.Kill(pid, sig); err != nil {
				fmt.Fprintf(virtOS.Stderr(), "kill: (%d) - %v\n", pid, err)
				ret = 1
			}
		}
		return ret
	})
}

var _ vos.ProcessFunc = Kill
