// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0

// Package pollentry holds the two kinds of object the readiness multiplexer
// registers: ProcessEntry (a spawned child, watched for exit) and
// StderrEntry (a captured stderr pipe, watched for readable/hang-up).
package pollentry

import (
	"io"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/delta/codecharacter-driver/pkg/types"
)

// ProcessEntry wraps a spawned child paired with its Role. wait must only be
// called after readiness has been signaled on the child's exit notifier.
type ProcessEntry struct {
	cmdProcess *os.Process
	role       types.Role
	pidfd      int
}

// NewProcessEntry wraps proc, opening a pidfd exit notifier for it.
func NewProcessEntry(proc *os.Process, role types.Role) (*ProcessEntry, error) {
	fd, err := unix.PidfdOpen(proc.Pid, 0)
	if err != nil {
		return nil, err
	}
	return &ProcessEntry{cmdProcess: proc, role: role, pidfd: fd}, nil
}

// NotifierFD returns the pidfd that becomes readable when the child exits.
func (p *ProcessEntry) NotifierFD() int {
	return p.pidfd
}

// Role returns the participant this process belongs to.
func (p *ProcessEntry) Role() types.Role {
	return p.role
}

// Wait blocks until the child has been reaped and returns its exit code.
func (p *ProcessEntry) Wait() (int, error) {
	state, err := p.cmdProcess.Wait()
	unix.Close(p.pidfd)
	if err != nil {
		return -1, err
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok {
		if ws.Signaled() {
			return 128 + int(ws.Signal()), nil
		}
		return ws.ExitStatus(), nil
	}
	return state.ExitCode(), nil
}

// Kill sends the strongest available termination signal. Infallible from the
// caller's perspective: a process already gone is not an error here.
func (p *ProcessEntry) Kill() {
	_ = p.cmdProcess.Kill()
}

// StderrEntry captures a child's stderr stream into a growing buffer.
type StderrEntry struct {
	pipe *os.File
	role types.Role
	buf  []byte
}

// NewStderrEntry wraps an already-opened stderr read pipe.
func NewStderrEntry(pipe *os.File, role types.Role) *StderrEntry {
	return &StderrEntry{pipe: pipe, role: role}
}

// FD returns the stderr read end's file descriptor.
func (s *StderrEntry) FD() int {
	return int(s.pipe.Fd())
}

// AbsorbReadable drains currently readable bytes into the buffer. Returns
// true once the stream has reached end-of-file.
func (s *StderrEntry) AbsorbReadable() (bool, error) {
	chunk := make([]byte, 4096)
	for {
		n, err := s.pipe.Read(chunk)
		if n > 0 {
			s.buf = append(s.buf, chunk[:n]...)
		}
		if err == io.EOF {
			return true, nil
		}
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return false, nil
			}
			return false, err
		}
		if n < len(chunk) {
			return false, nil
		}
	}
}

// TakeOutput yields the buffered output and role, consuming the entry.
func (s *StderrEntry) TakeOutput() (string, types.Role) {
	s.pipe.Close()
	return string(s.buf), s.role
}
