// Command devark uploads local AI coding sessions to the
// devark backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/devark-ai/devark/internal/api"
	"github.com/devark-ai/devark/internal/auth"
	"github.com/devark-ai/devark/internal/config"
	"github.com/devark-ai/devark/internal/parser"
	"github.com/devark-ai/devark/internal/state"
	devsync "github.com/devark-ai/devark/internal/sync"
)

// version is stamped at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "devark",
	Short: "Sync local AI coding sessions to devark",
	Long: `devark reads Claude Code transcripts from your machine,
strips credentials, paths, and other sensitive data, and uploads
sanitized session summaries to your devark account.`,
	SilenceUsage: true,
}

// app wires the shared subsystems for every subcommand.
type app struct {
	cfg     config.Config
	client  *api.Client
	tokens  auth.TokenStore
	auth    *auth.Service
	store   *state.Store
	readers []*parser.Reader
	engine  *devsync.Engine
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()
	client := api.NewClient(cfg.APIBaseURL)
	tokens := auth.NewFileTokenStore(fs, cfg.TokenPath())
	store := state.NewStore(fs, cfg.StatePath())

	var readers []*parser.Reader
	var engineReaders []devsync.SessionReader
	for _, dir := range cfg.ResolveClaudeDirs() {
		r := parser.NewReader(fs, dir)
		readers = append(readers, r)
		engineReaders = append(engineReaders, r)
	}

	return &app{
		cfg:     cfg,
		client:  client,
		tokens:  tokens,
		auth:    auth.NewService(client, tokens),
		store:   store,
		readers: readers,
		engine: devsync.NewEngine(
			client, store, engineReaders...,
		),
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
