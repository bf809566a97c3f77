//go:build !windows

// consoleinput.go - raw stdin reader feeding the keyboard collaborator when
// no GUI backend is attached, the headless console transcript mode's path
// for GET/INKEY to see real keystrokes instead of blocking forever.
//
// Grounded on the teacher's terminal_host.go: golang.org/x/term puts stdin
// into raw, non-blocking mode; a background goroutine pumps bytes into the
// keyboard queue; Stop restores the previous terminal state. The REPL's own
// line-based prompt (textio.go's ReadLine over a buffered stdin reader) is
// a separate consumer of stdin, so this reader is only ever started for the
// duration of a headless `rvbasic program.bas` run, never alongside repl().

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// ConsoleInput reads raw stdin bytes and feeds them to a Keyboard, the
// headless-mode analogue of the ebiten backend's key handler wiring in
// appfrontend.go.
type ConsoleInput struct {
	keyboard *Keyboard

	fd          int
	oldState    *term.State
	nonblockSet bool

	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewConsoleInput(keyboard *Keyboard) *ConsoleInput {
	return &ConsoleInput{keyboard: keyboard, stopCh: make(chan struct{}), done: make(chan struct{})}
}

// Start puts stdin into raw, non-blocking mode and begins feeding bytes to
// the keyboard in a background goroutine. It is a no-op when stdin isn't a
// terminal (e.g. input redirected from a file) - GET/INKEY then simply see
// no keystrokes, matching how a real machine with no keyboard attached
// would behave.
func (c *ConsoleInput) Start() error {
	c.fd = int(os.Stdin.Fd())
	if !term.IsTerminal(c.fd) {
		close(c.done)
		return nil
	}

	old, err := term.MakeRaw(c.fd)
	if err != nil {
		close(c.done)
		return fmt.Errorf("console input: raw mode: %w", err)
	}
	c.oldState = old

	if err := syscall.SetNonblock(c.fd, true); err != nil {
		_ = term.Restore(c.fd, c.oldState)
		c.oldState = nil
		close(c.done)
		return fmt.Errorf("console input: nonblocking stdin: %w", err)
	}
	c.nonblockSet = true

	go c.readLoop()
	return nil
}

func (c *ConsoleInput) readLoop() {
	defer close(c.done)
	buf := make([]byte, 1)
	for {
		select {
		case <-c.stopCh:
			return
		default:
		}
		n, err := syscall.Read(c.fd, buf)
		if n > 0 {
			b := buf[0]
			if b == '\r' {
				b = '\n' // raw mode sends CR for Enter; BASIC GET/INKEY expect LF
			}
			c.keyboard.Feed(b)
		}
		switch {
		case err == syscall.EAGAIN || err == syscall.EWOULDBLOCK:
			time.Sleep(5 * time.Millisecond)
		case err != nil:
			return
		case n == 0:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// Stop restores the prior terminal state and waits for the reader goroutine
// to exit.
func (c *ConsoleInput) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	<-c.done
	if c.nonblockSet {
		_ = syscall.SetNonblock(c.fd, false)
		c.nonblockSet = false
	}
	if c.oldState != nil {
		_ = term.Restore(c.fd, c.oldState)
		c.oldState = nil
	}
}
