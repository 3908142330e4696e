// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package serverbase

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tracewell/tracewell/pkg/base"
	"github.com/tracewell/tracewell/pkg/utilfn"
)

// TracewellServerVersion is the current version of the search core server.
// This gets set from the main entrypoint during initialization.
var TracewellServerVersion = "v0.1.0"

// TracewellBuildTime is the build timestamp of the server binary.
var TracewellBuildTime = ""

// TracewellCommit is the git commit hash of this build.
var TracewellCommit = ""

// TracewellId is the unique identifier for this server instance.
var TracewellId string

// TracewellFirstRun indicates if this is the first run of this server instance.
var TracewellFirstRun bool

const TracewellLockFile = "tracewell.lock"
const TracewellIdFile = "tracewell.id"
const TracewellDataDir = "data"
const TracewellDevEnvName = "TRACEWELL_DEV"
const TracewellTEventsFile = "tevents.jsonl"

// Default production port for server
const ProdWebServerPort = 5005

// Development port for server
const DevWebServerPort = 6005

// Default production port for the WebSocket server
const ProdWebSocketPort = 5006

// Development port for the WebSocket server
const DevWebSocketPort = 6006

type FDLock interface {
	Close() error
}

// IsDev returns true if the server is running in development mode
func IsDev() bool {
	return os.Getenv(TracewellDevEnvName) == "1"
}

// GetTracewellHome returns the appropriate home directory based on mode
func GetTracewellHome() string {
	if IsDev() {
		return base.DevTracewellHome
	}
	return base.TracewellHome
}

// GetDomainSocketName returns the full domain socket path
func GetDomainSocketName() string {
	return GetTracewellHome() + base.DefaultDomainSocketName
}

// WebServerPortOverride, when non-zero, takes precedence over the
// dev/production default. Set from a CLI flag at startup.
var WebServerPortOverride int

// GetWebServerPort returns the appropriate web server port based on mode
func GetWebServerPort() int {
	if WebServerPortOverride != 0 {
		return WebServerPortOverride
	}
	if IsDev() {
		return DevWebServerPort
	}
	return ProdWebServerPort
}

// GetWebSocketPort returns the appropriate WebSocket server port based on mode
func GetWebSocketPort() int {
	if IsDev() {
		return DevWebSocketPort
	}
	return ProdWebSocketPort
}

// EnsureTracewellId ensures that the tracewell.id file exists and contains a valid UUID.
// If the file doesn't exist, it creates it with a new UUID.
// If the file exists but contains an invalid UUID, it overwrites it with a new UUID.
// Returns:
// - The UUID (either read from the file or newly generated)
// - A boolean indicating if a new UUID was generated (true) or read from an existing file (false)
// - An error if one occurred during the process
func EnsureTracewellId() (string, bool, error) {
	idFilePath := filepath.Join(utilfn.ExpandHomeDir(GetTracewellHome()), TracewellIdFile)

	content, err := os.ReadFile(idFilePath)
	if err == nil {
		idStr := strings.TrimSpace(string(content))
		_, err := uuid.Parse(idStr)
		if err == nil {
			return idStr, false, nil
		}
	}

	newUuid, err := uuid.NewV7()
	if err != nil {
		return "", false, fmt.Errorf("failed to generate tracewell ID: %w", err)
	}
	newId := newUuid.String()

	err = os.WriteFile(idFilePath, []byte(newId), 0644)
	if err != nil {
		return "", false, fmt.Errorf("failed to write tracewell.id file: %w", err)
	}

	return newId, true, nil
}

// GetTracewellDataDir returns the path to the data directory
func GetTracewellDataDir() string {
	return filepath.Join(GetTracewellHome(), TracewellDataDir)
}

func EnsureHomeDir() error {
	homeDir := utilfn.ExpandHomeDir(GetTracewellHome())
	return os.MkdirAll(homeDir, 0755)
}

func EnsureDataDir() error {
	dataDir := utilfn.ExpandHomeDir(GetTracewellDataDir())
	return os.MkdirAll(dataDir, 0755)
}

// GetTEventsFilePath returns the full path to the tevents.jsonl file
func GetTEventsFilePath() string {
	return filepath.Join(GetTracewellDataDir(), TracewellTEventsFile)
}
