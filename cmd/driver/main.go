// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/delta/codecharacter-driver/pkg/cohort"
	l "github.com/delta/codecharacter-driver/pkg/logger"
	"github.com/delta/codecharacter-driver/pkg/result"
	"github.com/delta/codecharacter-driver/pkg/transport"
	"github.com/delta/codecharacter-driver/pkg/types"
)

func main() {
	logger, err := l.NewProductionLogger()
	if err != nil {
		panic(err)
	}
	config, err := types.LoadConfig()
	if err != nil {
		logger.Fatalw("failed to load config", "error", err)
	}
	logger.Debugf("Starting with the config:\n%+v", config)

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	stdio := transport.NewStdioTransport(os.Stdin, os.Stdout)
	if err := Serve(ctx, logger, config, stdio, stdio); err != nil {
		logger.Errorw("serve exited with an error", "error", err)
	}
}

// Serve is the driver's outer loop: one goroutine per concurrently-running
// match, each running its own single-threaded cohort event loop (spec.md
// §5), fed by source and drained into sink. Serve returns once source's
// channel closes and every in-flight match goroutine has finished.
func Serve(ctx context.Context, logger *zap.SugaredLogger, config *types.Config, source transport.RequestSource, sink transport.ResponseSink) error {
	requests, err := source.Requests(ctx)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for req := range requests {
		req := req
		wg.Add(1)
		go func() {
			defer wg.Done()
			handleMatch(ctx, logger, config, sink, req)
		}()
	}
	wg.Wait()
	return nil
}

func handleMatch(ctx context.Context, logger *zap.SugaredLogger, config *types.Config, sink transport.ResponseSink, req types.Request) {
	gameID := req.GameID()
	if err := sink.Publish(ctx, result.CreateExecutingResponse(gameID)); err != nil {
		logger.Errorw("failed to publish executing status", "game_id", gameID, "error", err)
	}

	var status types.GameStatus
	switch req.Mode {
	case types.PvP:
		status = cohort.RunPvP(ctx, logger, config, req.PvP)
	default:
		status = cohort.RunNormal(ctx, logger, config, req.Normal)
	}

	if err := sink.Publish(ctx, status); err != nil {
		logger.Errorw("failed to publish final status", "game_id", gameID, "error", err)
	}
}
