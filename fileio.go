// fileio.go - the file I/O collaborator of §6.4.
//
// Grounded on file_io.go/file_io_constants.go's small-integer channel-table
// model (OPENIN/OPENOUT/OPENUP map to a handle used by BGET/BPUT/EOF/EXT/
// PTR/CLOSE), adapted from memory-mapped registers to direct *os.File
// handles - the teacher's channel table survives, its MMIO plumbing does
// not (nothing in this domain is memory-mapped I/O).

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import (
	"io"
	"os"
)

const maxOpenFiles = 8

type fileMode int

const (
	fileModeIn fileMode = iota
	fileModeOut
	fileModeUp
)

type openFile struct {
	f    *os.File
	mode fileMode
}

// FileIO implements §6.4: open{In|Out|Up}, bget, bput, eof, ext, ptr, close.
// Handles are small integers (1..maxOpenFiles), matching the teacher's
// channel-table convention of never exposing raw OS file descriptors to
// BASIC code.
type FileIO struct {
	handles [maxOpenFiles + 1]*openFile
}

func NewFileIO() *FileIO { return &FileIO{} }

func (fio *FileIO) allocHandle() (int, error) {
	for i := 1; i <= maxOpenFiles; i++ {
		if fio.handles[i] == nil {
			return i, nil
		}
	}
	return 0, NewError(ErrIOError, 0)
}

func (fio *FileIO) OpenIn(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, NewError(ErrFileNotFound, 0)
	}
	h, err := fio.allocHandle()
	if err != nil {
		f.Close()
		return 0, err
	}
	fio.handles[h] = &openFile{f: f, mode: fileModeIn}
	return h, nil
}

func (fio *FileIO) OpenOut(path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, NewError(ErrIOError, 0)
	}
	h, err := fio.allocHandle()
	if err != nil {
		f.Close()
		return 0, err
	}
	fio.handles[h] = &openFile{f: f, mode: fileModeOut}
	return h, nil
}

func (fio *FileIO) OpenUp(path string) (int, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return 0, NewError(ErrIOError, 0)
	}
	h, err := fio.allocHandle()
	if err != nil {
		f.Close()
		return 0, err
	}
	fio.handles[h] = &openFile{f: f, mode: fileModeUp}
	return h, nil
}

func (fio *FileIO) handle(h int) (*openFile, error) {
	if h < 1 || h > maxOpenFiles || fio.handles[h] == nil {
		return nil, NewError(ErrIOError, 0)
	}
	return fio.handles[h], nil
}

func (fio *FileIO) BGet(h int) (byte, error) {
	of, err := fio.handle(h)
	if err != nil {
		return 0, err
	}
	var b [1]byte
	if _, err := of.f.Read(b[:]); err != nil {
		return 0, NewError(ErrIOError, 0)
	}
	return b[0], nil
}

func (fio *FileIO) BPut(h int, b byte) error {
	of, err := fio.handle(h)
	if err != nil {
		return err
	}
	_, werr := of.f.Write([]byte{b})
	if werr != nil {
		return NewError(ErrIOError, 0)
	}
	return nil
}

func (fio *FileIO) Eof(h int) (bool, error) {
	of, err := fio.handle(h)
	if err != nil {
		return false, err
	}
	pos, _ := of.f.Seek(0, io.SeekCurrent)
	info, serr := of.f.Stat()
	if serr != nil {
		return false, NewError(ErrIOError, 0)
	}
	return pos >= info.Size(), nil
}

func (fio *FileIO) Ext(h int) (int64, error) {
	of, err := fio.handle(h)
	if err != nil {
		return 0, err
	}
	info, serr := of.f.Stat()
	if serr != nil {
		return 0, NewError(ErrIOError, 0)
	}
	return info.Size(), nil
}

func (fio *FileIO) Ptr(h int) (int64, error) {
	of, err := fio.handle(h)
	if err != nil {
		return 0, err
	}
	return of.f.Seek(0, io.SeekCurrent)
}

func (fio *FileIO) SetPtr(h int, pos int64) error {
	of, err := fio.handle(h)
	if err != nil {
		return err
	}
	_, serr := of.f.Seek(pos, io.SeekStart)
	if serr != nil {
		return NewError(ErrIOError, 0)
	}
	return nil
}

func (fio *FileIO) Close(h int) error {
	if h == 0 {
		// CLOSE#0 closes every open channel, per BASIC convention.
		for i := 1; i <= maxOpenFiles; i++ {
			if fio.handles[i] != nil {
				fio.handles[i].f.Close()
				fio.handles[i] = nil
			}
		}
		return nil
	}
	of, err := fio.handle(h)
	if err != nil {
		return err
	}
	of.f.Close()
	fio.handles[h] = nil
	return nil
}
