// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0
package cohort

import (
	"fmt"

	"github.com/delta/codecharacter-driver/pkg/types"
)

// transitionID keys a (state, event) pair the way the teacher's discovery
// FSM keys its TransitionID — but here Fire is synchronous: a match runs on
// a single OS thread (spec.md §5), so there is no event queue or goroutine
// pump to adapt, only the state/transition vocabulary.
type transitionID struct {
	from  string
	event string
}

// transition maps a (state, event) pair to its destination state.
type transition struct {
	to string
}

// matchFSM tracks a single match's progress through
// Init → Staged → Wired → Spawned → Pumping → {Completed, Aborted}.
type matchFSM struct {
	current     string
	history     []string
	transitions map[transitionID]transition
}

func newMatchFSM() *matchFSM {
	f := &matchFSM{
		current: types.StateInit,
		history: []string{types.StateInit},
		transitions: map[transitionID]transition{
			{types.StateInit, types.EventStage}:    {types.StateStaged},
			{types.StateStaged, types.EventWire}:   {types.StateWired},
			{types.StateWired, types.EventSpawn}:   {types.StateSpawned},
			{types.StateSpawned, types.EventPump}:  {types.StatePumping},
			{types.StatePumping, types.EventFinish}: {types.StateCompleted},
		},
	}
	return f
}

// Fire applies event from the current state. Abort is reachable from every
// state, matching spec.md §4.5 ("Aborted is reachable from every earlier
// state").
func (f *matchFSM) Fire(event string) error {
	if event == types.EventAbort {
		f.current = types.StateAborted
		f.history = append(f.history, f.current)
		return nil
	}
	t, ok := f.transitions[transitionID{f.current, event}]
	if !ok {
		return fmt.Errorf("no transition for event %q in state %q", event, f.current)
	}
	f.current = t.to
	f.history = append(f.history, f.current)
	return nil
}

// Current returns the match's current state.
func (f *matchFSM) Current() string {
	return f.current
}

// History returns the ordered sequence of states the match has passed through.
func (f *matchFSM) History() []string {
	return f.history
}
