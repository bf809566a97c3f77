//go:build windows

// consoleinput_windows.go - Windows variant of ConsoleInput: os.Stdin.Read
// has no non-blocking mode on this platform, so Stop can't interrupt an
// in-flight read the way the unix variant's syscall.SetNonblock does; it
// simply waits for the next keystroke to unblock the reader goroutine,
// mirroring the teacher's terminal_host_windows.go.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"
)

// ConsoleInput reads raw stdin bytes and feeds them to a Keyboard, the
// headless-mode analogue of the ebiten backend's key handler wiring in
// appfrontend.go.
type ConsoleInput struct {
	keyboard *Keyboard

	fd       int
	oldState *term.State

	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewConsoleInput(keyboard *Keyboard) *ConsoleInput {
	return &ConsoleInput{keyboard: keyboard, stopCh: make(chan struct{}), done: make(chan struct{})}
}

// Start puts stdin into raw mode and begins feeding bytes to the keyboard in
// a background goroutine.
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

	go func() {
		defer close(c.done)
		buf := make([]byte, 1)
		for {
			select {
			case <-c.stopCh:
				return
			default:
			}
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				b := buf[0]
				if b == '\r' {
					b = '\n'
				}
				c.keyboard.Feed(b)
			}
			if err != nil {
				return
			}
		}
	}()
	return nil
}

// Stop restores the prior terminal state and waits for the reader goroutine
// to exit.
func (c *ConsoleInput) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	<-c.done
	if c.oldState != nil {
		_ = term.Restore(c.fd, c.oldState)
		c.oldState = nil
	}
}
