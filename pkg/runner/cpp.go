// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0
package runner

import (
	"context"
	"fmt"
	"os"

	"github.com/delta/codecharacter-driver/pkg/types"
)

// CppRunner launches a compiled C++ player binary.
type CppRunner struct {
	CurrentDir string
	GameID     string
	PlayerDir  string
	Config     *types.Config
}

// Run mounts PlayerDir into the sandbox image and runs the player's binary,
// bound to the wired FIFO endpoints.
func (r *CppRunner) Run(ctx context.Context, stdin, stdout *os.File, gameType GameType) (*Spawned, error) {
	name := fmt.Sprintf("%s_%s_cpp_runner", r.GameID, sanitize(r.PlayerDir))
	args := append(dockerArgs(r.Config, name),
		"-v", fmt.Sprintf("%s/%s:/player_code", r.CurrentDir, r.PlayerDir),
		r.Config.CppRunnerImage,
		string(gameType),
	)
	return start(ctx, args, r.CurrentDir, stdin, stdout)
}
