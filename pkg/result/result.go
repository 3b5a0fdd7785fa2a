// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0

// Package result assembles a match's GameStatus from the player's stderr
// buffer and the simulator's stdout log.
package result

import (
	"strconv"
	"strings"

	"github.com/delta/codecharacter-driver/pkg/driverrors"
	"github.com/delta/codecharacter-driver/pkg/types"
)

// turnwiseLogs scans a player's stderr buffer into a per-turn log map.
//
//   TURN <n>        — enter capture state for turn n
//   <line>          — while capturing, accumulate trimmed lines
//   ENDLOG          — commit the accumulated logs, leave capture state
//
// A malformed TURN header (one whose argument doesn't parse as a
// non-negative integer) aborts capture without committing.
func turnwiseLogs(playerLog string) map[int][]string {
	logs := make(map[int][]string)

	processing := false
	curTurn := 0
	var curLogs []string

	for _, ln := range strings.Split(playerLog, "\n") {
		ln = strings.TrimSpace(ln)
		if !processing && strings.HasPrefix(ln, "TURN ") {
			n, err := strconv.Atoi(strings.TrimPrefix(ln, "TURN "))
			if err != nil || n < 0 {
				continue
			}
			processing = true
			curTurn = n
			continue
		}
		if processing && ln == "ENDLOG" {
			processing = false
			logs[curTurn] = curLogs
			curLogs = nil
			continue
		}
		if processing {
			curLogs = append(curLogs, ln)
		}
	}
	return logs
}

// CreateFinalResponse rewrites the simulator's stdout log, interleaving each
// turn's player log lines (prefixed PRINT,) immediately after that turn's
// TURN, <n> header, and derives destruction percentage and coins used from
// the DESTRUCTION/COINS lines.
func CreateFinalResponse(gameID string, initialCoins uint32, playerLog, simulatorLog string) types.GameStatus {
	logs := turnwiseLogs(playerLog)

	var final strings.Builder
	coinsLeft := initialCoins
	destruction := 0.0

	for _, ln := range strings.Split(simulatorLog, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		final.WriteString(ln)
		final.WriteString("\n")

		switch {
		case strings.HasPrefix(ln, "TURN"):
			if n, err := strconv.Atoi(strings.TrimPrefix(ln, "TURN, ")); err == nil {
				if lines, ok := logs[n]; ok {
					for _, log := range lines {
						final.WriteString("PRINT, ")
						final.WriteString(log)
						final.WriteString("\n")
					}
				}
			}
		case strings.HasPrefix(ln, "DESTRUCTION"):
			trimmed := strings.TrimSuffix(strings.TrimPrefix(ln, "DESTRUCTION, "), "%")
			if x, err := strconv.ParseFloat(trimmed, 64); err == nil {
				destruction = x
			}
		case strings.HasPrefix(ln, "COINS"):
			if k, err := strconv.Atoi(strings.TrimPrefix(ln, "COINS, ")); err == nil {
				coinsLeft = uint32(k)
			}
		}
	}

	return types.GameStatus{
		GameID:     gameID,
		GameStatus: types.Executed,
		GameResult: &types.GameResult{
			DestructionPercentage: destruction,
			CoinsUsed:             uint64(initialCoins - coinsLeft),
			HasErrors:             false,
			Log:                   final.String(),
		},
	}
}

// CreateExecutingResponse is the provisional status returned while a match
// is still running.
func CreateExecutingResponse(gameID string) types.GameStatus {
	return types.GameStatus{GameID: gameID, GameStatus: types.Executing}
}

// CreateErrorResponse renders a DriverError into the error response shape,
// every log line prefixed ERRORS, .
func CreateErrorResponse(gameID string, err *driverrors.DriverError) types.GameStatus {
	return types.GameStatus{
		GameID:     gameID,
		GameStatus: types.ExecuteError,
		GameResult: &types.GameResult{
			HasErrors: true,
			Log:       err.LogBlock(),
		},
	}
}
