// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tracewell/tracewell/server/pkg/serverbase"
	"github.com/tracewell/tracewell/server/pkg/web"
)

var (
	// these get set via -X during build
	TracewellVersion   = ""
	TracewellBuildTime = ""
	TracewellCommit    = ""
)

func getVersion() string {
	if serverbase.TracewellCommit != "" {
		return fmt.Sprintf("%s+%s", serverbase.TracewellServerVersion, serverbase.TracewellCommit)
	}
	return fmt.Sprintf("%s+dev", serverbase.TracewellServerVersion)
}

// runServer brings up the search core's HTTP/WebSocket transport and blocks
// until a shutdown signal arrives.
func runServer() error {
	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	var wg sync.WaitGroup

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-signalChan
		log.Printf("received signal: %v - shutting down\n", sig)
		cancelFn()
		signal.Stop(signalChan)
	}()

	if serverbase.IsDev() {
		log.Printf("starting tracewell search core %s (dev mode)\n", serverbase.TracewellServerVersion)
	} else {
		log.Printf("starting tracewell search core %s (%s)\n", serverbase.TracewellServerVersion, serverbase.TracewellCommit)
	}

	if err := serverbase.EnsureHomeDir(); err != nil {
		return fmt.Errorf("cannot create tracewell home directory (%s): %w", serverbase.GetTracewellHome(), err)
	}
	if err := serverbase.EnsureDataDir(); err != nil {
		return fmt.Errorf("cannot create tracewell data directory (%s): %w", serverbase.GetTracewellDataDir(), err)
	}

	lock, err := serverbase.AcquireTracewellServerLock()
	if err != nil {
		return fmt.Errorf("error acquiring tracewell lock (another instance is likely running): %w", err)
	}
	defer lock.Close() // defer keeps the lock alive for the process lifetime

	tracewellId, isFirstRun, err := serverbase.EnsureTracewellId()
	if err != nil {
		return fmt.Errorf("error ensuring tracewell ID: %w", err)
	}
	serverbase.TracewellId = tracewellId
	serverbase.TracewellFirstRun = isFirstRun

	if err := web.RunAllWebServers(ctx); err != nil {
		return fmt.Errorf("error starting web servers: %w", err)
	}

	log.Printf("search core started successfully\n")

	<-ctx.Done()
	log.Printf("shutting down search core...\n")
	wg.Wait()
	log.Printf("shutdown complete\n")
	return nil
}

func main() {
	if TracewellVersion != "" {
		serverbase.TracewellServerVersion = TracewellVersion
	}
	serverbase.TracewellBuildTime = TracewellBuildTime
	serverbase.TracewellCommit = TracewellCommit

	rootCmd := &cobra.Command{
		Use:   "tracewell",
		Short: "Tracewell is a real-time log/goroutine/watch search core",
		Long:  `Tracewell indexes and searches live telemetry streamed from an instrumented Go program.`,
	}

	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Run the Tracewell search core server",
		Long:  `Run the Tracewell search core, exposing the RPC/WebSocket transport and HTTP control surface.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, _ := cmd.Flags().GetInt("port")
			if port != 0 {
				serverbase.WebServerPortOverride = port
			}
			return runServer()
		},
	}
	serverCmd.Flags().Int("port", 0, "Override the default web server port (default: 5005 for production, 6005 for development)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of Tracewell",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s\n", getVersion())
		},
	}

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().Bool("dev", false, "Run in development mode")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		isDev, _ := cmd.Flags().GetBool("dev")
		if isDev {
			os.Setenv(serverbase.TracewellDevEnvName, "1")
		}
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
