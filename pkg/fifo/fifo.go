// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0

// Package fifo wires a single named-pipe path into a read/write endpoint
// pair, yielded exactly once.
package fifo

import (
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/delta/codecharacter-driver/pkg/driverrors"
)

// Pair owns a filesystem path created as a FIFO plus its opened read and
// write endpoints. Both endpoints are opened non-blocking; the path is
// unlinked together with its enclosing scratch directory, not by Pair
// itself.
type Pair struct {
	path string

	once   sync.Once
	taken  bool
	write  *os.File
	read   *os.File
	openEr error
}

// New creates the FIFO node at path with rw permissions for the owning user.
func New(path string) (*Pair, error) {
	if err := unix.Mkfifo(path, 0666); err != nil {
		return nil, driverrors.Wrap(driverrors.FifoCreationError, err)
	}
	return &Pair{path: path}, nil
}

// Path returns the FIFO node's filesystem path.
func (p *Pair) Path() string {
	return p.path
}

// Ends opens both endpoints, non-blocking, and returns (write, read) exactly
// once. Every call after the first returns a FifoCreationError.
func (p *Pair) Ends() (*os.File, *os.File, error) {
	p.once.Do(func() {
		read, err := os.OpenFile(p.path, os.O_RDONLY|unix.O_NONBLOCK, os.ModeNamedPipe)
		if err != nil {
			p.openEr = err
			return
		}
		write, err := os.OpenFile(p.path, os.O_WRONLY|unix.O_NONBLOCK, os.ModeNamedPipe)
		if err != nil {
			read.Close()
			p.openEr = err
			return
		}
		p.read = read
		p.write = write
	})
	if p.taken {
		return nil, nil, driverrors.New(driverrors.FifoCreationError, "endpoints for %s already taken", p.path)
	}
	p.taken = true
	if p.openEr != nil {
		return nil, nil, driverrors.Wrap(driverrors.FifoCreationError, p.openEr)
	}
	return p.write, p.read, nil
}

// Close closes both endpoints if they were opened. The FIFO node itself is
// removed by the owning scratch directory.
func (p *Pair) Close() {
	if p.write != nil {
		p.write.Close()
	}
	if p.read != nil {
		p.read.Close()
	}
}
