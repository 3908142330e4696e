// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package serverbase

import (
	"log"
	"os"
	"path/filepath"

	"github.com/tracewell/tracewell/pkg/utilfn"
	"golang.org/x/sys/unix"
)

func AcquireTracewellServerLock() (FDLock, error) {
	tracewellHome := utilfn.ExpandHomeDir(GetTracewellHome())
	lockFileName := filepath.Join(tracewellHome, TracewellLockFile)
	log.Printf("#base acquiring lock on %s\n", lockFileName)
	fd, err := os.OpenFile(lockFileName, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, err
	}
	err = unix.Flock(int(fd.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		fd.Close()
		return nil, err
	}
	return fd, nil
}
