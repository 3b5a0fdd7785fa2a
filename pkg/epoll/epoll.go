// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0

// Package epoll is the readiness multiplexer the cohort event loop pumps: a
// thin registry over Linux epoll distinguishing process-exit notifiers from
// stderr read ends.
package epoll

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/delta/codecharacter-driver/pkg/pollentry"
)

// Entry is either a ProcessEntry or a StderrEntry, registered under the same
// multiplexer.
type Entry struct {
	Process *pollentry.ProcessEntry
	Stderr  *pollentry.StderrEntry
}

// MessageKind is the closed set of outcomes process_event can report.
type MessageKind int

const (
	// Nop: the stderr entry absorbed bytes but is not closed.
	Nop MessageKind = iota
	// Unregister: the stderr entry reached end-of-file; collect its output.
	Unregister
	// HandleExplicitly: a process-exit notifier fired; wait and act on it.
	HandleExplicitly
)

// CallbackMessage is process_event's result.
type CallbackMessage struct {
	Kind MessageKind
	Key  int
}

// Multiplexer owns registered entries and the underlying epoll descriptor.
type Multiplexer struct {
	epfd    int
	entries map[int]*Entry
}

// New creates an empty multiplexer backed by a fresh epoll instance.
func New() (*Multiplexer, error) {
	fd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, err
	}
	return &Multiplexer{epfd: fd, entries: make(map[int]*Entry)}, nil
}

// RegisterProcess registers a ProcessEntry on its exit notifier.
func (m *Multiplexer) RegisterProcess(p *pollentry.ProcessEntry) error {
	key := p.NotifierFD()
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(key)}
	if err := unix.EpollCtl(m.epfd, unix.EPOLL_CTL_ADD, key, &ev); err != nil {
		return err
	}
	m.entries[key] = &Entry{Process: p}
	return nil
}

// RegisterStderr registers a StderrEntry for readable and hang-up interest.
func (m *Multiplexer) RegisterStderr(s *pollentry.StderrEntry) error {
	key := s.FD()
	ev := unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLHUP | unix.EPOLLRDHUP, Fd: int32(key)}
	if err := unix.EpollCtl(m.epfd, unix.EPOLL_CTL_ADD, key, &ev); err != nil {
		return err
	}
	m.entries[key] = &Entry{Stderr: s}
	return nil
}

// Unregister removes and returns the entry registered under key.
func (m *Multiplexer) Unregister(key int) (*Entry, error) {
	entry, ok := m.entries[key]
	if !ok {
		return nil, fmt.Errorf("no entry registered for key %d", key)
	}
	if err := unix.EpollCtl(m.epfd, unix.EPOLL_CTL_DEL, key, nil); err != nil {
		return nil, err
	}
	delete(m.entries, key)
	return entry, nil
}

// Poll waits up to timeoutMS milliseconds for readiness events, up to
// maxEvents at a time.
func (m *Multiplexer) Poll(timeoutMS, maxEvents int) ([]unix.EpollEvent, error) {
	events := make([]unix.EpollEvent, maxEvents)
	n, err := unix.EpollWait(m.epfd, events, timeoutMS)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}
	return events[:n], nil
}

// ProcessEvent dispatches a single readiness event to Nop, Unregister, or
// HandleExplicitly per the entry kind registered under its key.
func (m *Multiplexer) ProcessEvent(ev unix.EpollEvent) (CallbackMessage, error) {
	key := int(ev.Fd)
	entry, ok := m.entries[key]
	if !ok {
		return CallbackMessage{}, fmt.Errorf("event for unregistered key %d", key)
	}
	if entry.Process != nil {
		return CallbackMessage{Kind: HandleExplicitly, Key: key}, nil
	}
	eof, err := entry.Stderr.AbsorbReadable()
	if err != nil {
		return CallbackMessage{}, err
	}
	if eof {
		return CallbackMessage{Kind: Unregister, Key: key}, nil
	}
	return CallbackMessage{Kind: Nop, Key: key}, nil
}

// IsEmpty reports whether every registered entry has been unregistered.
func (m *Multiplexer) IsEmpty() bool {
	return len(m.entries) == 0
}

// RegisteredKeys returns the currently registered descriptor keys.
func (m *Multiplexer) RegisteredKeys() []int {
	keys := make([]int, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys
}

// Close releases the underlying epoll descriptor.
func (m *Multiplexer) Close() {
	unix.Close(m.epfd)
}
