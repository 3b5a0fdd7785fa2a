// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0

// Package cohort is the core match event loop: FIFO wiring, cohort spawn,
// readiness pump, abort-on-failure, and result assembly.
package cohort

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/delta/codecharacter-driver/pkg/driverrors"
	"github.com/delta/codecharacter-driver/pkg/epoll"
	"github.com/delta/codecharacter-driver/pkg/fifo"
	"github.com/delta/codecharacter-driver/pkg/pollentry"
	"github.com/delta/codecharacter-driver/pkg/result"
	"github.com/delta/codecharacter-driver/pkg/runner"
	"github.com/delta/codecharacter-driver/pkg/scratch"
	"github.com/delta/codecharacter-driver/pkg/types"
	"github.com/delta/codecharacter-driver/pkg/workspace"
)

const maxPollEvents = 16

func newRunnable(lang types.Language, currentDir, gameID, playerDir string, cfg *types.Config) runner.Runnable {
	switch lang {
	case types.CPP:
		return &runner.CppRunner{CurrentDir: currentDir, GameID: gameID, PlayerDir: playerDir, Config: cfg}
	case types.Java:
		return &runner.JavaRunner{CurrentDir: currentDir, GameID: gameID, PlayerDir: playerDir, Config: cfg}
	default:
		return &runner.PythonRunner{CurrentDir: currentDir, GameID: gameID, PlayerDir: playerDir, Config: cfg}
	}
}

// pump drives the multiplexer to completion, collecting each participant's
// stderr output keyed by Role. On any child exiting non-zero (or failing to
// be reaped), it kills every remaining ProcessEntry, opportunistically drains
// remaining stderr entries, and returns the mapped error.
func pump(log *zap.SugaredLogger, mux *epoll.Multiplexer, cfg *types.Config) (map[types.Role]string, *driverrors.DriverError) {
	outputs := make(map[types.Role]string)

	for !mux.IsEmpty() {
		events, err := mux.Poll(cfg.EpollWaitTimeoutMS, maxPollEvents)
		if err != nil {
			return nil, driverrors.Wrap(driverrors.EpollError, err)
		}
		for _, ev := range events {
			msg, err := mux.ProcessEvent(ev)
			if err != nil {
				return nil, driverrors.Wrap(driverrors.EpollError, err)
			}
			switch msg.Kind {
			case epoll.Nop:
				// stderr entry absorbed bytes but isn't closed yet.
			case epoll.Unregister:
				entry, err := mux.Unregister(msg.Key)
				if err != nil {
					return nil, driverrors.Wrap(driverrors.EpollError, err)
				}
				buf, role := entry.Stderr.TakeOutput()
				outputs[role] = buf
			case epoll.HandleExplicitly:
				entry, err := mux.Unregister(msg.Key)
				if err != nil {
					return nil, driverrors.Wrap(driverrors.EpollError, err)
				}
				code, err := entry.Process.Wait()
				if err != nil {
					abort(log, mux)
					return nil, driverrors.New(driverrors.UnidentifiedError, "failed to reap %s: %s", entry.Process.Role(), err)
				}
				if code != 0 {
					abort(log, mux)
					return nil, driverrors.FromExitCode(code, "program exited with non-zero exit code: "+itoa(code))
				}
			}
		}
	}
	return outputs, nil
}

// abort kills every remaining ProcessEntry and opportunistically drains
// remaining stderr entries. Errors during teardown are swallowed: there is
// no recovery action left to take.
func abort(log *zap.SugaredLogger, mux *epoll.Multiplexer) {
	for _, key := range mux.RegisteredKeys() {
		entry, err := mux.Unregister(key)
		if err != nil {
			continue
		}
		if entry.Process != nil {
			entry.Process.Kill()
			continue
		}
		if entry.Stderr != nil {
			_, _ = entry.Stderr.AbsorbReadable()
		}
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// RunNormal executes a Normal-mode match end to end and returns its final
// GameStatus.
func RunNormal(ctx context.Context, log *zap.SugaredLogger, cfg *types.Config, req *types.NormalGameRequest) types.GameStatus {
	log = log.With(types.GameID, req.GameID)
	log.Infow("starting normal game execution", "language", req.PlayerCode.Language)

	fsm := newMatchFSM()

	dir, err := scratch.New(req.GameID)
	if err != nil {
		return result.CreateErrorResponse(req.GameID, driverrors.Wrap(driverrors.UnidentifiedError, err))
	}
	defer dir.Close()

	playerDir := dir.SubPath("player")
	if err := dir.CreateSubDir("player"); err != nil {
		return result.CreateErrorResponse(req.GameID, driverrors.Wrap(driverrors.UnidentifiedError, err))
	}
	if err := workspace.Stage(playerDir, req.PlayerCode); err != nil {
		return result.CreateErrorResponse(req.GameID, err.(*driverrors.DriverError))
	}
	_ = fsm.Fire(types.EventStage)

	pipeA, errA := fifo.New(dir.SubPath("p1_in"))
	pipeB, errB := fifo.New(dir.SubPath("p2_in"))
	if errA != nil {
		return result.CreateErrorResponse(req.GameID, errA.(*driverrors.DriverError))
	}
	if errB != nil {
		return result.CreateErrorResponse(req.GameID, errB.(*driverrors.DriverError))
	}
	defer pipeA.Close()
	defer pipeB.Close()

	writeA, readA, err := pipeA.Ends()
	if err != nil {
		return result.CreateErrorResponse(req.GameID, err.(*driverrors.DriverError))
	}
	writeB, readB, err := pipeB.Ends()
	if err != nil {
		return result.CreateErrorResponse(req.GameID, err.(*driverrors.DriverError))
	}
	_ = fsm.Fire(types.EventWire)

	if err := WriteInitialNormalInput(writeA, req, cfg.MapSize); err != nil {
		return result.CreateErrorResponse(req.GameID, driverrors.Wrap(driverrors.UnidentifiedError, err))
	}
	if err := WriteInitialNormalInput(writeB, req, cfg.MapSize); err != nil {
		return result.CreateErrorResponse(req.GameID, driverrors.Wrap(driverrors.UnidentifiedError, err))
	}

	playerRunner := newRunnable(req.PlayerCode.Language, dir.Path(), req.GameID, "player", cfg)
	simRunner := &runner.SimulatorRunner{GameID: req.GameID, Config: cfg}

	spawnedPlayer, err := playerRunner.Run(ctx, readA, writeB, runner.GameTypeNormal)
	if err != nil {
		return result.CreateErrorResponse(req.GameID, err.(*driverrors.DriverError))
	}
	spawnedSim, err := simRunner.Run(ctx, readB, writeA)
	if err != nil {
		_ = spawnedPlayer.Cmd.Process.Kill()
		return result.CreateErrorResponse(req.GameID, err.(*driverrors.DriverError))
	}
	_ = fsm.Fire(types.EventSpawn)

	mux, err := epoll.New()
	if err != nil {
		_ = spawnedPlayer.Cmd.Process.Kill()
		_ = spawnedSim.Cmd.Process.Kill()
		return result.CreateErrorResponse(req.GameID, driverrors.Wrap(driverrors.EpollError, err))
	}
	defer mux.Close()

	if resp, ok := registerAll(mux, req.GameID,
		[]spawnedRole{{spawnedPlayer, types.RolePlayer}, {spawnedSim, types.RoleSimulator}}); !ok {
		return resp
	}
	_ = fsm.Fire(types.EventPump)

	outputs, driverErr := pump(log, mux, cfg)
	if driverErr != nil {
		_ = fsm.Fire(types.EventAbort)
		return result.CreateErrorResponse(req.GameID, driverErr)
	}
	_ = fsm.Fire(types.EventFinish)

	log.Infow("successfully executed")
	return result.CreateFinalResponse(req.GameID, req.Parameters.NoOfCoins, outputs[types.RolePlayer], outputs[types.RoleSimulator])
}

type spawnedRole struct {
	spawned *runner.Spawned
	role    types.Role
}

// registerAll registers a ProcessEntry and StderrEntry for every spawned
// participant. A single registration failure tears down everything already
// registered plus every not-yet-registered process, upholding the
// all-or-nothing cohort spawn contract.
func registerAll(mux *epoll.Multiplexer, gameID string, spawned []spawnedRole) (types.GameStatus, bool) {
	var teardown []*os.Process
	for _, s := range spawned {
		teardown = append(teardown, s.spawned.Cmd.Process)
	}
	for _, s := range spawned {
		procEntry, err := pollentry.NewProcessEntry(s.spawned.Cmd.Process, s.role)
		if err != nil {
			killAll(teardown)
			return result.CreateErrorResponse(gameID, driverrors.Wrap(driverrors.EpollError, err)), false
		}
		if err := mux.RegisterProcess(procEntry); err != nil {
			killAll(teardown)
			return result.CreateErrorResponse(gameID, driverrors.Wrap(driverrors.EpollError, err)), false
		}
		stderrEntry := pollentry.NewStderrEntry(s.spawned.Stderr, s.role)
		if err := mux.RegisterStderr(stderrEntry); err != nil {
			killAll(teardown)
			return result.CreateErrorResponse(gameID, driverrors.Wrap(driverrors.EpollError, err)), false
		}
	}
	return types.GameStatus{}, true
}

func killAll(procs []*os.Process) {
	for _, p := range procs {
		_ = p.Kill()
	}
}

// mergePlayerLogs concatenates both players' TURN/ENDLOG stderr buffers into
// a single stream the result assembler's turn scanner can parse. A turn
// number logged by both players keeps only the later one in the merged map;
// the wire format carries one combined log regardless of mode.
func mergePlayerLogs(player1Log, player2Log string) string {
	return player1Log + "\n" + player2Log
}

// RunPvP executes a PvP-mode match end to end and returns its final
// GameStatus. Five FIFOs wire player1<->simulator and player2<->simulator
// full-duplex pairs plus a dedicated control channel the simulator uses only
// to receive its initial input; gameplay moves for each player travel over
// raw file descriptors the simulator opens itself (see runner.SimulatorRunner.RunPvP).
func RunPvP(ctx context.Context, log *zap.SugaredLogger, cfg *types.Config, req *types.PvPGameRequest) types.GameStatus {
	log = log.With(types.GameID, req.GameID)
	log.Infow("starting pvp game execution", "player1", req.Player1.Language, "player2", req.Player2.Language)

	fsm := newMatchFSM()

	dir, err := scratch.New(req.GameID)
	if err != nil {
		return result.CreateErrorResponse(req.GameID, driverrors.Wrap(driverrors.UnidentifiedError, err))
	}
	defer dir.Close()

	player1Dir := dir.SubPath("pvp_game/player_1")
	player2Dir := dir.SubPath("pvp_game/player_2")
	if err := dir.CreateSubDir("pvp_game/player_1"); err != nil {
		return result.CreateErrorResponse(req.GameID, driverrors.Wrap(driverrors.UnidentifiedError, err))
	}
	if err := dir.CreateSubDir("pvp_game/player_2"); err != nil {
		return result.CreateErrorResponse(req.GameID, driverrors.Wrap(driverrors.UnidentifiedError, err))
	}
	if blame := workspace.StagePvP(player1Dir, req.Player1, player2Dir, req.Player2); blame != nil {
		if blame.Player1Err != nil {
			return result.CreateErrorResponse(req.GameID, blame.Player1Err.(*driverrors.DriverError))
		}
		return result.CreateErrorResponse(req.GameID, blame.Player2Err.(*driverrors.DriverError))
	}
	_ = fsm.Fire(types.EventStage)

	pipeP1In, errP1In := fifo.New(dir.SubPath("p1_in"))
	pipeP1Out, errP1Out := fifo.New(dir.SubPath("p2_in"))
	pipeP2In, errP2In := fifo.New(dir.SubPath("p3_in"))
	pipeP2Out, errP2Out := fifo.New(dir.SubPath("p4_in"))
	pipeCtrl, errCtrl := fifo.New(dir.SubPath("p5_in"))
	for _, e := range []error{errP1In, errP1Out, errP2In, errP2Out, errCtrl} {
		if e != nil {
			return result.CreateErrorResponse(req.GameID, e.(*driverrors.DriverError))
		}
	}
	for _, p := range []*fifo.Pair{pipeP1In, pipeP1Out, pipeP2In, pipeP2Out, pipeCtrl} {
		defer p.Close()
	}

	writeP1In, readP1In, err := pipeP1In.Ends()
	if err != nil {
		return result.CreateErrorResponse(req.GameID, err.(*driverrors.DriverError))
	}
	writeP1Out, readP1Out, err := pipeP1Out.Ends()
	if err != nil {
		return result.CreateErrorResponse(req.GameID, err.(*driverrors.DriverError))
	}
	writeP2In, readP2In, err := pipeP2In.Ends()
	if err != nil {
		return result.CreateErrorResponse(req.GameID, err.(*driverrors.DriverError))
	}
	writeP2Out, readP2Out, err := pipeP2Out.Ends()
	if err != nil {
		return result.CreateErrorResponse(req.GameID, err.(*driverrors.DriverError))
	}
	writeCtrl, readCtrl, err := pipeCtrl.Ends()
	if err != nil {
		return result.CreateErrorResponse(req.GameID, err.(*driverrors.DriverError))
	}
	_ = fsm.Fire(types.EventWire)

	for _, w := range []*os.File{writeP1Out, writeP2Out, writeCtrl} {
		if err := WriteInitialPvPInput(w, req); err != nil {
			return result.CreateErrorResponse(req.GameID, driverrors.Wrap(driverrors.UnidentifiedError, err))
		}
	}

	player1Runner := newRunnable(req.Player1.Language, dir.Path(), req.GameID, "pvp_game/player_1", cfg)
	player2Runner := newRunnable(req.Player2.Language, dir.Path(), req.GameID, "pvp_game/player_2", cfg)
	simRunner := &runner.SimulatorRunner{GameID: req.GameID, Config: cfg}

	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return result.CreateErrorResponse(req.GameID, driverrors.Wrap(driverrors.UnidentifiedError, err))
	}
	defer devNull.Close()

	spawnedPlayer1, err := player1Runner.Run(ctx, readP1Out, writeP1In, runner.GameTypePvP)
	if err != nil {
		return result.CreateErrorResponse(req.GameID, err.(*driverrors.DriverError))
	}
	spawnedPlayer2, err := player2Runner.Run(ctx, readP2Out, writeP2In, runner.GameTypePvP)
	if err != nil {
		_ = spawnedPlayer1.Cmd.Process.Kill()
		return result.CreateErrorResponse(req.GameID, err.(*driverrors.DriverError))
	}
	spawnedSim, err := simRunner.RunPvP(ctx, readCtrl, devNull, readP1In, writeP1Out, readP2In, writeP2Out)
	if err != nil {
		_ = spawnedPlayer1.Cmd.Process.Kill()
		_ = spawnedPlayer2.Cmd.Process.Kill()
		return result.CreateErrorResponse(req.GameID, err.(*driverrors.DriverError))
	}
	_ = fsm.Fire(types.EventSpawn)

	mux, err := epoll.New()
	if err != nil {
		_ = spawnedPlayer1.Cmd.Process.Kill()
		_ = spawnedPlayer2.Cmd.Process.Kill()
		_ = spawnedSim.Cmd.Process.Kill()
		return result.CreateErrorResponse(req.GameID, driverrors.Wrap(driverrors.EpollError, err))
	}
	defer mux.Close()

	if resp, ok := registerAll(mux, req.GameID, []spawnedRole{
		{spawnedPlayer1, types.RolePlayer1},
		{spawnedPlayer2, types.RolePlayer2},
		{spawnedSim, types.RoleSimulator},
	}); !ok {
		return resp
	}
	_ = fsm.Fire(types.EventPump)

	outputs, driverErr := pump(log, mux, cfg)
	if driverErr != nil {
		_ = fsm.Fire(types.EventAbort)
		return result.CreateErrorResponse(req.GameID, driverErr)
	}
	_ = fsm.Fire(types.EventFinish)

	log.Infow("successfully executed")
	mergedPlayerLog := mergePlayerLogs(outputs[types.RolePlayer1], outputs[types.RolePlayer2])
	return result.CreateFinalResponse(req.GameID, req.Parameters.NoOfCoins, mergedPlayerLog, outputs[types.RoleSimulator])
}
