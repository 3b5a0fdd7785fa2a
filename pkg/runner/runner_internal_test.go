// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0
package runner

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/delta/codecharacter-driver/pkg/types"
)

var _ = Describe("dockerArgs", func() {
	It("includes the configured resource limits", func() {
		cfg := &types.Config{RuntimeMemoryLimit: "300m", RuntimeTimeLimit: "5"}
		args := dockerArgs(cfg, "match_player_runner")

		want := []string{"run", "--memory=300m", "--memory-swap=300m", "--cpus=1", "--ulimit", "cpu=5:5", "--rm", "--name", "match_player_runner", "-i"}
		Expect(args).To(Equal(want))
	})
})

var _ = Describe("sanitize", func() {
	It("replaces slashes with underscores", func() {
		Expect(sanitize("pvp_game/player_1")).To(Equal("pvp_game_player_1"))
	})
})
