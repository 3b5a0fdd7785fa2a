// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0
package main_test

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/delta/codecharacter-driver/cmd/driver"
	"github.com/delta/codecharacter-driver/pkg/transport"
	"github.com/delta/codecharacter-driver/pkg/types"

	"go.uber.org/zap"
)

var _ = Describe("Serve", func() {
	It("publishes an executing status followed by a final status per request", func() {
		gameID := fmt.Sprintf("main-test-%d", rand.Int63())
		line := fmt.Sprintf(
			`{"game_id":%q,"parameters":{"attackers":[],"defenders":[],"no_of_turns":500,"no_of_coins":10},"player_code":{"source_code":"print(x)","language":"PYTHON"},"map":"[[0]]"}`+"\n",
			gameID,
		)

		tr := transport.NewStdioTransport(strings.NewReader(line), newDiscard())
		logger := zap.NewNop().Sugar()
		config := &types.Config{EpollWaitTimeoutMS: 100}

		published := make(chan types.GameStatus, 16)
		sink := &capturingSink{inner: tr, published: published}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		Expect(Serve(ctx, logger, config, tr, sink)).To(Succeed())
		close(published)

		var statuses []types.GameStatus
		for s := range published {
			statuses = append(statuses, s)
		}
		Expect(statuses).To(HaveLen(2))
		Expect(statuses[0].GameStatus).To(Equal(types.Executing))
		Expect(statuses[0].GameID).To(Equal(gameID))
		Expect(statuses[1].GameStatus).To(Equal(types.ExecuteError))
		Expect(statuses[1].GameID).To(Equal(gameID))
	})
})

type capturingSink struct {
	inner     transport.ResponseSink
	published chan types.GameStatus
}

func (s *capturingSink) Publish(ctx context.Context, resp types.GameStatus) error {
	s.published <- resp
	return s.inner.Publish(ctx, resp)
}

type discard struct{}

func newDiscard() *discard { return &discard{} }

func (d *discard) Write(p []byte) (int, error) { return len(p), nil }
