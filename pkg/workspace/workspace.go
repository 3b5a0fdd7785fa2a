// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0

// Package workspace stages a player's boilerplate and source code into its
// scratch subdirectory before the cohort is spawned.
package workspace

import (
	"io"
	"os"
	"path/filepath"

	"github.com/delta/codecharacter-driver/pkg/driverrors"
	"github.com/delta/codecharacter-driver/pkg/types"
)

// boilerplateRoot is the parent directory holding the per-language
// boilerplate trees shipped with the driver image.
var boilerplateRoot = "player_code"

// FileName returns the conventional source filename (without extension) for
// a language; Normal and PvP mode use the same name. Java's public-class-name requirement forces a
// distinct name; C++ and Python always build/run a fixed entry point.
func FileName(lang types.Language) string {
	if lang == types.Java {
		return "Player"
	}
	return "run"
}

func extension(lang types.Language) string {
	switch lang {
	case types.CPP:
		return "cpp"
	case types.Java:
		return "java"
	default:
		return "py"
	}
}

func boilerplateDir(lang types.Language) string {
	switch lang {
	case types.CPP:
		return filepath.Join(boilerplateRoot, "cpp")
	case types.Java:
		return filepath.Join(boilerplateRoot, "java")
	default:
		return filepath.Join(boilerplateRoot, "python")
	}
}

// CopyDirAll recursively copies every entry of src into dst, which must
// already exist.
func CopyDirAll(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := os.MkdirAll(dstPath, 0755); err != nil {
				return err
			}
			if err := CopyDirAll(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

// Stage copies the language boilerplate into playerDir (already created
// under the match's scratch directory) and writes the player's source.
func Stage(playerDir string, code types.PlayerCode) error {
	if err := CopyDirAll(boilerplateDir(code.Language), playerDir); err != nil {
		return driverrors.New(driverrors.UnidentifiedError, "failed to copy player code boilerplate: %s", err)
	}
	sourcePath := filepath.Join(playerDir, FileName(code.Language)+"."+extension(code.Language))
	file, err := os.Create(sourcePath)
	if err != nil {
		return driverrors.New(driverrors.UnidentifiedError, "failed to copy player code: %s", err)
	}
	defer file.Close()
	if _, err := file.WriteString(code.SourceCode); err != nil {
		return driverrors.New(driverrors.UnidentifiedError, "failed to copy player code: %s", err)
	}
	return file.Sync()
}

// StageBlame is the error a single staging failure produces. StagePvP blames
// both players symmetrically whichever one actually failed, matching the
// original implementation's create_pvp_error_response(..., true, true) call.
type StageBlame struct {
	Player1Err error
	Player2Err error
}

// StagePvP stages both players' workspaces. On a single failure, both
// players are reported as errored in the eventual response even though only
// one of them actually failed to stage — this mirrors the symmetric blame
// the original implementation assigns for any pre-spawn PvP failure.
func StagePvP(player1Dir string, code1 types.PlayerCode, player2Dir string, code2 types.PlayerCode) *StageBlame {
	err1 := Stage(player1Dir, code1)
	err2 := Stage(player2Dir, code2)
	if err1 == nil && err2 == nil {
		return nil
	}
	if err1 == nil {
		err1 = err2
	}
	if err2 == nil {
		err2 = err1
	}
	return &StageBlame{Player1Err: err1, Player2Err: err2}
}
