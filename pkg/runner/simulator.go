// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0
package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/delta/codecharacter-driver/pkg/driverrors"
	"github.com/delta/codecharacter-driver/pkg/types"
)

// SimulatorRunner launches the authoritative game simulator.
type SimulatorRunner struct {
	GameID string
	Config *types.Config
}

// Run launches the simulator in Normal mode, stdin/stdout bound to the
// single player FIFO pair.
func (r *SimulatorRunner) Run(ctx context.Context, stdin, stdout *os.File) (*Spawned, error) {
	name := fmt.Sprintf("%s_simulator", r.GameID)
	args := append(dockerArgs(r.Config, name),
		r.Config.SimulatorImage,
		"--type=Normal",
	)
	return start(ctx, args, "", stdin, stdout)
}

// RunPvP launches the simulator in PvP mode. The simulator is handed the raw
// file descriptor numbers of both player-side FIFO endpoints and opens them
// itself, rather than using its own stdin/stdout for player traffic; stdin
// and stdout are reserved for the dedicated control channel.
//
// Unlike Run, this bypasses the docker wrapper: passing host file
// descriptors into a container's own fd table isn't expressible through
// plain `docker run` flags (docker only ever wires 0/1/2 into the
// container), so the PvP simulator is launched as a direct child process
// with p1/p2 FIFO endpoints attached via ExtraFiles, from the host binary at
// Config.PvPSimulatorPath rather than the Config.SimulatorImage docker tag
// Run uses. Resource limiting (--memory/--cpus/--ulimit) has no equivalent
// on this path and is not applied here, matching the original driver's own
// active run_pvp, which also runs the simulator as a bare host process with
// no container or rlimit wrapping.
func (r *SimulatorRunner) RunPvP(ctx context.Context, stdin, stdout, p1in, p1out, p2in, p2out *os.File) (*Spawned, error) {
	cmd := exec.CommandContext(ctx, r.Config.PvPSimulatorPath,
		"--type=PvP",
		"p1_in=3",
		"p1_out=4",
		"p2_in=5",
		"p2_out=6",
	)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.ExtraFiles = []*os.File{p1in, p1out, p2in, p2out}
	stderrRead, stderrWrite, err := os.Pipe()
	if err != nil {
		return nil, driverrors.Wrap(driverrors.UnidentifiedError, err)
	}
	cmd.Stderr = stderrWrite
	if err := cmd.Start(); err != nil {
		stderrRead.Close()
		stderrWrite.Close()
		return nil, driverrors.New(driverrors.UnidentifiedError, "couldn't spawn the simulator process: %s", err)
	}
	stderrWrite.Close()
	return &Spawned{Cmd: cmd, Stderr: stderrRead}, nil
}
