// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package serverbase

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/alexflint/go-filemutex"
	"github.com/tracewell/tracewell/pkg/utilfn"
)

func AcquireTracewellServerLock() (FDLock, error) {
	tracewellHome := utilfn.ExpandHomeDir(GetTracewellHome())
	lockFileName := filepath.Join(tracewellHome, TracewellLockFile)
	log.Printf("#base acquiring lock on %s\n", lockFileName)
	m, err := filemutex.New(lockFileName)
	if err != nil {
		return nil, fmt.Errorf("filemutex new error: %w", err)
	}
	err = m.TryLock()
	if err != nil {
		return nil, fmt.Errorf("filemutex trylock error: %w", err)
	}
	return m, nil
}
