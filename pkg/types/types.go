// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0
package types

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Language is the closed set of player-code languages the driver can launch.
type Language string

const (
	CPP    Language = "CPP"
	Java   Language = "JAVA"
	Python Language = "PYTHON"
)

// GameMode discriminates a single-player match against the simulator from a
// two-player match arbitrated by the simulator.
type GameMode string

const (
	Normal GameMode = "Normal"
	PvP    GameMode = "PvP"
)

// Role tags a process or stderr stream with the participant it belongs to.
type Role string

const (
	RolePlayer    Role = "Player"
	RolePlayer1   Role = "Player1"
	RolePlayer2   Role = "Player2"
	RoleSimulator Role = "Simulator"
)

// Attacker is a fixed-shape troop spec sent to players and the simulator.
type Attacker struct {
	ID                    uint32 `json:"id"`
	HP                    uint32 `json:"hp"`
	Range                 uint32 `json:"range"`
	AttackPower           uint32 `json:"attack_power"`
	Speed                 uint32 `json:"speed"`
	Price                 uint32 `json:"price"`
	IsAerial              uint32 `json:"is_aerial"`
	Weight                uint32 `json:"weight"`
	NumAbilityTurns       uint32 `json:"num_ability_turns"`
	AbilityActivationCost uint32 `json:"ability_activation_cost"`
}

// Defender is a fixed-shape troop spec sent to players and the simulator.
type Defender struct {
	ID          uint32 `json:"id"`
	HP          uint32 `json:"hp"`
	Range       uint32 `json:"range"`
	AttackPower uint32 `json:"attack_power"`
	Price       uint32 `json:"price"`
	IsAerial    uint32 `json:"is_aerial"`
}

// GameParameters are the Normal-mode match parameters.
type GameParameters struct {
	Attackers []Attacker `json:"attackers"`
	Defenders []Defender `json:"defenders"`
	NoOfTurns uint32     `json:"no_of_turns"`
	NoOfCoins uint32     `json:"no_of_coins"`
}

// PvPGameParameters are the PvP-mode match parameters. NoOfCoins is a
// per-turn coin budget rather than a total.
type PvPGameParameters struct {
	Attackers []Attacker `json:"attackers"`
	Defenders []Defender `json:"defenders"`
	NoOfTurns uint32     `json:"no_of_turns"`
	NoOfCoins uint32     `json:"no_of_coins"`
}

// PlayerCode is the player's submitted source and its language.
type PlayerCode struct {
	SourceCode string   `json:"source_code"`
	Language   Language `json:"language"`
}

// NormalGameRequest is the wire shape of a Normal-mode match request.
type NormalGameRequest struct {
	GameID     string         `json:"game_id"`
	Parameters GameParameters `json:"parameters"`
	PlayerCode PlayerCode     `json:"player_code"`
	Map        [][]uint8      `json:"-"`
}

// normalGameRequestWire mirrors NormalGameRequest but keeps Map as the
// double-encoded JSON string the wire format actually uses (spec.md §3).
type normalGameRequestWire struct {
	GameID     string         `json:"game_id"`
	Parameters GameParameters `json:"parameters"`
	PlayerCode PlayerCode     `json:"player_code"`
	Map        string         `json:"map"`
}

// UnmarshalJSON decodes the double-encoded map field into a 2-D byte array.
func (r *NormalGameRequest) UnmarshalJSON(data []byte) error {
	var wire normalGameRequestWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	var m [][]uint8
	if err := json.Unmarshal([]byte(wire.Map), &m); err != nil {
		return fmt.Errorf("decoding map field: %w", err)
	}
	r.GameID = wire.GameID
	r.Parameters = wire.Parameters
	r.PlayerCode = wire.PlayerCode
	r.Map = m
	return nil
}

// MarshalJSON re-encodes the map field as a JSON string, matching the wire format.
func (r NormalGameRequest) MarshalJSON() ([]byte, error) {
	rows := make([][]int, len(r.Map))
	for i, row := range r.Map {
		rows[i] = make([]int, len(row))
		for j, cell := range row {
			rows[i][j] = int(cell)
		}
	}
	mapBytes, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}
	return json.Marshal(normalGameRequestWire{
		GameID:     r.GameID,
		Parameters: r.Parameters,
		PlayerCode: r.PlayerCode,
		Map:        string(mapBytes),
	})
}

// PvPGameRequest is the wire shape of a PvP-mode match request.
type PvPGameRequest struct {
	GameID     string            `json:"game_id"`
	Parameters PvPGameParameters `json:"parameters"`
	Player1    PlayerCode        `json:"player1"`
	Player2    PlayerCode        `json:"player2"`
}

// Request is the tagged union accepted by the cohort event loop.
type Request struct {
	Mode   GameMode
	Normal *NormalGameRequest
	PvP    *PvPGameRequest
}

// GameID returns the correlation key common to both request shapes.
func (r *Request) GameID() string {
	if r.Mode == PvP {
		return r.PvP.GameID
	}
	return r.Normal.GameID
}

// GameStatusEnum is the closed set of response statuses.
type GameStatusEnum string

const (
	Executing    GameStatusEnum = "EXECUTING"
	Executed     GameStatusEnum = "EXECUTED"
	ExecuteError GameStatusEnum = "EXECUTE_ERROR"
)

// GameResult carries the optional result payload of a GameStatus.
type GameResult struct {
	DestructionPercentage float64 `json:"destruction_percentage"`
	CoinsUsed             uint64  `json:"coins_used"`
	HasErrors             bool    `json:"has_errors"`
	Log                   string  `json:"log"`
}

// GameStatus is the response wire shape returned for a match.
type GameStatus struct {
	GameID     string         `json:"game_id"`
	GameStatus GameStatusEnum `json:"game_status"`
	GameResult *GameResult    `json:"game_result"`
}

// Config is the process-wide configuration read from the environment once at
// startup (spec.md §6). LoadConfig parses the environment straight into this
// single typed struct; there is no separate as-read form.
type Config struct {
	EpollWaitTimeoutMS int
	RuntimeMemoryLimit string
	RuntimeTimeLimit   string
	MapSize            int
	PythonRunnerImage  string
	CppRunnerImage     string
	JavaRunnerImage    string
	SimulatorImage     string
	PvPSimulatorPath   string
}

const (
	envEpollWaitTimeout  = "EPOLL_WAIT_TIMEOUT"
	envRuntimeMemory     = "RUNTIME_MEMORY_LIMIT"
	envRuntimeTimeLimit  = "RUNTIME_TIME_LIMIT"
	envMapSize           = "MAP_SIZE"
	envPythonRunnerImage = "PYTHON_RUNNER_IMAGE"
	envCppRunnerImage    = "CPP_RUNNER_IMAGE"
	envJavaRunnerImage   = "JAVA_RUNNER_IMAGE"
	envSimulatorImage    = "SIMULATOR_IMAGE"
	envPvPSimulatorPath  = "PVP_SIMULATOR_PATH"

	defaultEpollWaitTimeoutMS = 1000
)

// LoadConfig reads the driver configuration from the process environment.
func LoadConfig() (*Config, error) {
	timeout := defaultEpollWaitTimeoutMS
	if v := os.Getenv(envEpollWaitTimeout); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", envEpollWaitTimeout, err)
		}
		timeout = parsed
	}
	mapSize := 0
	if v := os.Getenv(envMapSize); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", envMapSize, err)
		}
		mapSize = parsed
	}
	return &Config{
		EpollWaitTimeoutMS: timeout,
		RuntimeMemoryLimit: os.Getenv(envRuntimeMemory),
		RuntimeTimeLimit:   os.Getenv(envRuntimeTimeLimit),
		MapSize:            mapSize,
		PythonRunnerImage:  os.Getenv(envPythonRunnerImage),
		CppRunnerImage:     os.Getenv(envCppRunnerImage),
		JavaRunnerImage:    os.Getenv(envJavaRunnerImage),
		SimulatorImage:     os.Getenv(envSimulatorImage),
		PvPSimulatorPath:   os.Getenv(envPvPSimulatorPath),
	}, nil
}

// PollTimeout returns the configured multiplexer poll timeout.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.EpollWaitTimeoutMS) * time.Millisecond
}
