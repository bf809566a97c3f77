// starcommand.go - the "*command" layer reached via OSCLI/the REPL prompt
// (§6.6). Grounded on cpu_z80.go's port-table dispatch style: a fixed table
// keyed on the command word, not a general shell.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import (
	"bufio"
	"encoding/binary"
	"os"
	"strconv"
	"strings"
)

// runStarCommand dispatches a single OSCLI command line. It is also the
// entry point used by the REPL when the user types a line starting with
// '*' (the leading '*' has already been stripped by the caller).
func (ex *Executor) runStarCommand(cmd string) (ctrl, error) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ctrl{kind: ctrlContinue}, nil
	}
	word := strings.ToUpper(fields[0])
	rest := fields[1:]

	switch word {
	case "QUIT", "BYE":
		return ctrl{kind: ctrlEnd}, nil

	case "KEY":
		if len(rest) < 2 {
			return ctrl{}, NewError(ErrBadCommand, 0)
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return ctrl{}, NewError(ErrBadCommand, 0)
		}
		ex.vm.Keyboard.SetFnKeyString(n, []byte(strings.Join(rest[1:], " ")))
		return ctrl{kind: ctrlContinue}, nil

	case "CD", "DIR":
		if len(rest) < 1 {
			return ctrl{kind: ctrlContinue}, nil
		}
		if err := os.Chdir(rest[0]); err != nil {
			return ctrl{}, NewError(ErrFileNotFound, 0)
		}
		return ctrl{kind: ctrlContinue}, nil

	case "HELP":
		banner := "rvbasic\r\n"
		ex.vm.VDU.WriteString([]byte(banner))
		return ctrl{kind: ctrlContinue}, nil

	case "SHOW", "SPOOL":
		// Listing the current variable workspace / echoing output to a
		// spool file has no destination to write to outside the console
		// here; accepted as a no-op.
		return ctrl{kind: ctrlContinue}, nil

	case "EXEC":
		if len(rest) < 1 {
			return ctrl{}, NewError(ErrBadCommand, 0)
		}
		f, err := os.Open(rest[0])
		if err != nil {
			return ctrl{}, NewError(ErrFileNotFound, 0)
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if err := ex.runImmediateLine(scanner.Text()); err != nil {
				return ctrl{}, err
			}
		}
		return ctrl{kind: ctrlContinue}, nil

	case "SAVE":
		if len(rest) < 1 {
			return ctrl{}, NewError(ErrBadCommand, 0)
		}
		low, high := ex.vm.Arena.Page(), ex.vm.Arena.Top()
		data := ex.vm.Arena.ReadBytes(low, high-low)
		if err := os.WriteFile(rest[0], data, 0644); err != nil {
			return ctrl{}, NewError(ErrIOError, 0)
		}
		return ctrl{kind: ctrlContinue}, nil

	case "LOAD":
		if len(rest) < 1 {
			return ctrl{}, NewError(ErrBadCommand, 0)
		}
		data, err := os.ReadFile(rest[0])
		if err != nil {
			return ctrl{}, NewError(ErrFileNotFound, 0)
		}
		ex.vm.Arena.WriteBytes(ex.vm.Arena.Page(), data)
		ex.vm.Arena.SetTop(ex.vm.Arena.Page() + uint32(len(data)))
		return ctrl{kind: ctrlContinue}, nil

	case "RENUMBER":
		args := rest
		if len(args) == 1 && strings.Contains(args[0], ",") {
			args = strings.Split(args[0], ",")
		}
		start, step := uint16(10), uint16(10)
		if len(args) >= 1 && strings.TrimSpace(args[0]) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return ctrl{}, NewError(ErrBadCommand, 0)
			}
			start = uint16(n)
		}
		if len(args) >= 2 && strings.TrimSpace(args[1]) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(args[1]))
			if err != nil {
				return ctrl{}, NewError(ErrBadCommand, 0)
			}
			step = uint16(n)
		}
		ex.vm.Program.Renumber(start, step)
		return ctrl{kind: ctrlContinue}, nil

	case "REFRESH":
		if ex.vm.Framebuffer.Mode().Teletext {
			renderMode7(ex.vm.Framebuffer, ex.vm.Mode7, ex.vm.Palette)
		} else {
			renderTextPlane(ex.vm.Framebuffer, ex.vm.TextPlane, ex.vm.Palette)
		}
		ex.vm.Framebuffer.Flush(ex.vm.Video)
		return ctrl{kind: ctrlContinue}, nil

	case "WINTITLE":
		cfg := ex.vm.Video.GetDisplayConfig()
		cfg.Title = strings.Join(rest, " ")
		if err := ex.vm.Video.SetDisplayConfig(cfg); err != nil {
			return ctrl{}, err
		}
		return ctrl{kind: ctrlContinue}, nil

	case "FULLSCREEN":
		cfg := ex.vm.Video.GetDisplayConfig()
		cfg.Fullscreen = !(len(rest) > 0 && strings.EqualFold(rest[0], "OFF"))
		if err := ex.vm.Video.SetDisplayConfig(cfg); err != nil {
			return ctrl{}, err
		}
		return ctrl{kind: ctrlContinue}, nil

	case "NEWMODE":
		return ctrl{}, NewError(ErrUnsupported, 0)

	case "SCREENSAVE":
		if len(rest) < 1 {
			return ctrl{}, NewError(ErrBadCommand, 0)
		}
		bank := ex.vm.Framebuffer.DisplayBank()
		buf := make([]byte, len(bank.Pixels)*4)
		for i, px := range bank.Pixels {
			binary.BigEndian.PutUint32(buf[i*4:], px)
		}
		if err := os.WriteFile(rest[0], buf, 0644); err != nil {
			return ctrl{}, NewError(ErrIOError, 0)
		}
		return ctrl{kind: ctrlContinue}, nil

	case "SCREENLOAD":
		if len(rest) < 1 {
			return ctrl{}, NewError(ErrBadCommand, 0)
		}
		data, err := os.ReadFile(rest[0])
		if err != nil {
			return ctrl{}, NewError(ErrFileNotFound, 0)
		}
		bank := ex.vm.Framebuffer.WriteBank()
		for i := 0; i*4+4 <= len(data) && i < len(bank.Pixels); i++ {
			bank.Pixels[i] = binary.BigEndian.Uint32(data[i*4:])
		}
		ex.vm.Framebuffer.Flush(ex.vm.Video)
		return ctrl{kind: ctrlContinue}, nil

	default:
		return ctrl{}, NewError(ErrBadCommand, 0)
	}
}

// runImmediateLine feeds one line of source text through the same path the
// REPL uses: a leading line number stores it into the program, otherwise it
// runs immediately (used by *EXEC to replay a text file of commands).
func (ex *Executor) runImmediateLine(raw string) error {
	raw = strings.TrimRight(raw, "\r\n")
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if lineNo, rest, ok := ParseLineNumber(raw); ok {
		t, err := ex.vm.tok.Tokenize(lineNo, rest)
		if err != nil {
			return err
		}
		ex.vm.Program.InsertLine(t)
		return nil
	}
	t, err := ex.vm.tok.Tokenize(0, raw)
	if err != nil {
		return err
	}
	return ex.RunDirect(t)
}
