package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/qevo/internal/server"
	"github.com/cwbudde/qevo/internal/store"
)

var (
	serveAddr    string
	serveDataDir string
	serveNoSave  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP job server",
	Long: `Starts an HTTP server that accepts optimization jobs, streams their
progress over SSE and persists completed runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var runStore store.Store
		if !serveNoSave {
			fsStore, err := store.NewFSStore(serveDataDir)
			if err != nil {
				return fmt.Errorf("failed to create run store: %w", err)
			}
			runStore = fsStore
		}

		srv := server.NewServer(serveAddr, runStore)
		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "./data", "Base directory for persisted runs")
	serveCmd.Flags().BoolVar(&serveNoSave, "no-save", false, "Disable run persistence")
	rootCmd.AddCommand(serveCmd)
}
