// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0

// Package runner launches cohort participants (players and the simulator)
// as containerized child processes bound to already-wired FIFO endpoints.
// The PvP simulator is the exception: it runs as a direct host process (see
// SimulatorRunner.RunPvP).
package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/delta/codecharacter-driver/pkg/driverrors"
	"github.com/delta/codecharacter-driver/pkg/types"
)

// sanitize turns a player subdirectory path into a container-name-safe token.
func sanitize(playerDir string) string {
	return strings.ReplaceAll(playerDir, "/", "_")
}

// GameType is the match mode a player launcher passes to the player's
// container as its final argument.
type GameType string

const (
	GameTypeNormal GameType = "Normal"
	GameTypePvP    GameType = "PvP"
)

// Spawned is a launched participant: its live command plus the stderr read
// end the cohort loop registers with the multiplexer.
type Spawned struct {
	Cmd    *exec.Cmd
	Stderr *os.File
}

// Runnable launches a single player process bound to stdin/stdout.
type Runnable interface {
	Run(ctx context.Context, stdin, stdout *os.File, gameType GameType) (*Spawned, error)
}

// dockerArgs assembles the common resource-limited container invocation
// shared by every launcher: memory/swap cap, CPU count, CPU-seconds ulimit,
// auto-removal, and a per-match container name.
func dockerArgs(cfg *types.Config, name string) []string {
	return []string{
		"run",
		fmt.Sprintf("--memory=%s", cfg.RuntimeMemoryLimit),
		fmt.Sprintf("--memory-swap=%s", cfg.RuntimeMemoryLimit),
		"--cpus=1",
		"--ulimit",
		fmt.Sprintf("cpu=%s:%s", cfg.RuntimeTimeLimit, cfg.RuntimeTimeLimit),
		"--rm",
		"--name", name,
		"-i",
	}
}

// start launches a docker command wired to stdin/stdout, with stderr
// captured into a pipe the caller registers with the multiplexer.
func start(ctx context.Context, args []string, dir string, stdin, stdout *os.File) (*Spawned, error) {
	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Dir = dir
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	stderrRead, stderrWrite, err := os.Pipe()
	if err != nil {
		return nil, driverrors.Wrap(driverrors.UnidentifiedError, err)
	}
	cmd.Stderr = stderrWrite
	if err := cmd.Start(); err != nil {
		stderrRead.Close()
		stderrWrite.Close()
		return nil, driverrors.New(driverrors.UnidentifiedError, "couldn't spawn process: %s", err)
	}
	stderrWrite.Close()
	return &Spawned{Cmd: cmd, Stderr: stderrRead}, nil
}
