// Copyright (c) 2021-2024 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/ephemeral.
//
// SPDX-License-Identifier: Apache-2.0

// Package scratch manages the per-match scratch directory under the OS temp
// root, mirroring the original implementation's GameDir.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/delta/codecharacter-driver/pkg/utils"
)

// Dir is a per-match scratch directory. Creation doubles as a uniqueness
// lock: a game_id already in use fails to create, since the directory
// already exists.
type Dir struct {
	fullPath string
}

// New creates the scratch directory for gameID under the OS temp root. The
// creation itself is the uniqueness lock: it uses an atomic exclusive
// mkdir, so of two concurrent New calls racing on the same gameID, exactly
// one succeeds and the other gets an error, which the cohort loop reports
// as an UnidentifiedError carrying this error's message. A stat-then-mkdir check
// would leave a window between the two racing goroutines' checks where both
// see no existing directory and both proceed to create it.
func New(gameID string) (*Dir, error) {
	full := filepath.Join(os.TempDir(), gameID)
	if err := utils.Fio.CreateDirExclusive(full); err != nil {
		return nil, fmt.Errorf("scratch dir %s already exists or could not be created: %w", full, err)
	}
	return &Dir{fullPath: full}, nil
}

// CreateSubDir creates a subdirectory (and any missing parents) under the
// scratch directory.
func (d *Dir) CreateSubDir(name string) error {
	return utils.Fio.CreatePath(filepath.Join(d.fullPath, name))
}

// Path returns the scratch directory's absolute path.
func (d *Dir) Path() string {
	return d.fullPath
}

// SubPath returns the absolute path of a named entry under the scratch
// directory, without creating it.
func (d *Dir) SubPath(name string) string {
	return filepath.Join(d.fullPath, name)
}

// Close recursively removes the scratch directory. Removal failures are
// swallowed, matching the infallible Drop semantics of the original GameDir:
// the caller has no recovery action to take on cleanup failure.
func (d *Dir) Close() {
	_ = utils.Fio.Delete(d.fullPath)
}
