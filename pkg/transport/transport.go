// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0

// Package transport defines the seam between the cohort event loop and the
// message-queue transport that delivers match requests and collects
// responses — out of scope itself (spec.md §1), but the seam it plugs into
// isn't. StdioTransport is a minimal stdin/stdout JSON-lines implementation
// for local exercise and testing.
package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/delta/codecharacter-driver/pkg/types"
)

// RequestSource delivers match requests as they arrive from the transport.
type RequestSource interface {
	Requests(ctx context.Context) (<-chan types.Request, error)
}

// ResponseSink publishes a match's final or intermediate status back to the
// transport.
type ResponseSink interface {
	Publish(ctx context.Context, resp types.GameStatus) error
}

// wireRequest detects which of NormalGameRequest/PvPGameRequest a line
// decodes as, by checking for the tagged fields unique to each shape.
type wireRequest struct {
	PlayerCode json.RawMessage `json:"player_code"`
	Player1    json.RawMessage `json:"player1"`
	Player2    json.RawMessage `json:"player2"`
}

// StdioTransport reads one JSON request per line from an input stream and
// writes one JSON response per line to an output stream. Concurrent
// Publish calls are serialized so that lines from different match
// goroutines never interleave.
type StdioTransport struct {
	in  io.Reader
	out io.Writer

	mu sync.Mutex
}

// NewStdioTransport wires a transport over the given streams.
func NewStdioTransport(in io.Reader, out io.Writer) *StdioTransport {
	return &StdioTransport{in: in, out: out}
}

// Requests scans the input stream line by line, decoding each into a tagged
// Request and sending it on the returned channel. The channel closes when
// the input stream reaches EOF or ctx is done; a malformed line is skipped.
func (t *StdioTransport) Requests(ctx context.Context) (<-chan types.Request, error) {
	out := make(chan types.Request)
	scanner := bufio.NewScanner(t.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	go func() {
		defer close(out)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			req, ok := decodeRequest(line)
			if !ok {
				continue
			}
			select {
			case out <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func decodeRequest(line []byte) (types.Request, bool) {
	var w wireRequest
	if err := json.Unmarshal(line, &w); err != nil {
		return types.Request{}, false
	}
	if w.Player1 != nil || w.Player2 != nil {
		var pvp types.PvPGameRequest
		if err := json.Unmarshal(line, &pvp); err != nil {
			return types.Request{}, false
		}
		return types.Request{Mode: types.PvP, PvP: &pvp}, true
	}
	if w.PlayerCode != nil {
		var normal types.NormalGameRequest
		if err := json.Unmarshal(line, &normal); err != nil {
			return types.Request{}, false
		}
		return types.Request{Mode: types.Normal, Normal: &normal}, true
	}
	return types.Request{}, false
}

// Publish writes resp as a single JSON line.
func (t *StdioTransport) Publish(ctx context.Context, resp types.GameStatus) error {
	body, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := fmt.Fprintln(t.out, string(body)); err != nil {
		return err
	}
	return nil
}
