// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0
package types

// Structured-log field keys, threaded through zap's SugaredLogger the way
// the teacher threads GameID through every Infow/Errorw/Debugw call.
const (
	GameID = "game_id"
	Role_  = "role"
	Err    = "error"
)

// Cohort state-machine state and event names (pkg/cohort). Centralized here
// the way the teacher centralizes its own FSM state/event constants in this
// package.
const (
	StateInit     = "Init"
	StateStaged   = "Staged"
	StateWired    = "Wired"
	StateSpawned  = "Spawned"
	StatePumping  = "Pumping"
	StateCompleted = "Completed"
	StateAborted  = "Aborted"

	EventStage   = "Stage"
	EventWire    = "Wire"
	EventSpawn   = "Spawn"
	EventPump    = "Pump"
	EventFinish  = "Finish"
	EventAbort   = "Abort"
)
