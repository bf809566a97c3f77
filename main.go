// main.go - the CLI entry point: component wiring, optional program load,
// and the REPL that feeds lines to either the program store or the
// executor's immediate-mode path.
//
// Grounded on the teacher's main.go: a boilerplate banner, a small hand-
// rolled os.Args scan (no flag package, matching the teacher's own style),
// component construction, then handing off to the run loop.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"os"
	"strings"
)

func usage() {
	fmt.Println("Usage: rvbasic [-headless] [-version] [program.bas]")
}

func main() {
	headless := false
	showVersion := false
	var program string

	for _, arg := range os.Args[1:] {
		switch {
		case arg == "-headless":
			headless = true
		case arg == "-version":
			showVersion = true
		case arg == "-help" || arg == "-h":
			usage()
			return
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(os.Stderr, "rvbasic: unknown option %s\n", arg)
			usage()
			os.Exit(1)
		default:
			program = arg
		}
	}

	if showVersion {
		printVersion()
		return
	}

	var video VideoOutput
	if headless {
		video = NewHeadlessVideoOutput()
	} else {
		video = NewEbitenVideoOutput()
	}

	vm := NewInterpreter(video)
	defer vm.Close()

	frontend := NewAppFrontend(vm, video)
	if err := frontend.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "rvbasic: display init failed: %v\n", err)
		os.Exit(1)
	}
	defer frontend.Stop()

	if program != "" {
		data, err := os.ReadFile(program)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rvbasic: %v\n", err)
			os.Exit(1)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if err := vm.Exec.runImmediateLine(line); err != nil {
				fmt.Fprintf(os.Stderr, "rvbasic: %v\n", err)
				os.Exit(1)
			}
		}

		// In headless mode nothing else feeds the keyboard (the ebiten
		// backend's key handler is never wired), so GET/INKEY would block
		// forever without a raw-mode console reader. repl() is never
		// reached on this path, so it can't race the REPL's own line-based
		// stdin consumer (textio.go's ReadLine).
		var console *ConsoleInput
		if headless {
			console = NewConsoleInput(vm.Keyboard)
			if err := console.Start(); err != nil {
				fmt.Fprintf(os.Stderr, "rvbasic: %v\n", err)
				console = nil
			}
		}

		// os.Exit below bypasses deferred cleanup, so the terminal must be
		// restored explicitly on every exit path rather than relying on a
		// defer console.Stop().
		runErr := vm.Exec.Run()
		if console != nil {
			console.Stop()
		}
		if runErr != nil {
			if be, ok := runErr.(*BasicError); ok && be.Kind == ErrEscape {
				os.Exit(0)
			}
			fmt.Fprintf(os.Stderr, "%v\n", runErr)
			os.Exit(1)
		}
		if headless {
			return
		}
	}

	repl(vm)
}

// repl implements §6.7's immediate-mode loop: a line with a leading number
// is stored into the program; anything else either dispatches to the
// star-command layer (a leading '*') or runs immediately.
func repl(vm *Interpreter) {
	fmt.Println()
	for {
		raw, err := vm.TextIO.ReadLine("> ", 255)
		if err != nil {
			return
		}
		line := strings.TrimSpace(string(raw))
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "*") {
			c, err := vm.Exec.runStarCommand(strings.TrimSpace(line[1:]))
			if err != nil {
				if be, ok := err.(*BasicError); ok {
					fmt.Println(be.Error())
					continue
				}
				fmt.Println(err)
				continue
			}
			if c.kind == ctrlEnd {
				return
			}
			continue
		}
		if err := vm.Exec.runImmediateLine(line); err != nil {
			if be, ok := err.(*BasicError); ok {
				if be.Kind == ErrEscape {
					continue
				}
				fmt.Println(be.Error())
				continue
			}
			fmt.Println(err)
		}
	}
}
