// Command plinko-pir-server runs the Plinko PIR query server: it
// loads an immutable database snapshot and answers plaintext,
// set-parity, and full-set PIR queries over HTTP/JSON (spec §1, §6).
package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"plinko-pir/internal/config"
	"plinko-pir/internal/database"
	"plinko-pir/internal/httpapi"
	"plinko-pir/internal/logging"
	"plinko-pir/internal/pirerr"
	"plinko-pir/internal/query"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		port                int
		databasePath        string
		databaseTimeoutSecs int
		logLevel            string
	)

	cmd := &cobra.Command{
		Use:   "plinko-pir-server",
		Short: "Serve Private Information Retrieval queries against a fixed database snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := config.Overrides{}
			if cmd.Flags().Changed("port") {
				overrides.Port = &port
			}
			if cmd.Flags().Changed("database-path") {
				overrides.DatabasePath = &databasePath
			}
			if cmd.Flags().Changed("database-timeout") {
				d := time.Duration(databaseTimeoutSecs) * time.Second
				overrides.DatabaseWaitTimeout = &d
			}
			if cmd.Flags().Changed("log-level") {
				overrides.LogLevel = &logLevel
			}
			return run(overrides)
		},
	}

	cmd.Flags().IntVar(&port, "port", config.DefaultPort, "listen port")
	cmd.Flags().StringVar(&databasePath, "database-path", config.DefaultDatabasePath, "path to the flat binary database snapshot")
	cmd.Flags().IntVar(&databaseTimeoutSecs, "database-timeout", int(config.DefaultDatabaseWaitTimeout/time.Second), "seconds to wait for the database file (0 = check once)")
	cmd.Flags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "DEBUG|INFO|WARNING|ERROR|CRITICAL")

	return cmd
}

func run(overrides config.Overrides) error {
	cfg, err := config.Load(os.Getenv, overrides)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	root := logging.New(cfg.LogLevel, logging.Stdout)
	log := logging.Component(root, "main")

	if cfg.DeprecatedPathNotice != "" {
		log.Warn().Msg(cfg.DeprecatedPathNotice)
	}

	log.Info().
		Str("listen_address", cfg.ListenAddress()).
		Str("database_path", cfg.DatabasePath).
		Dur("database_timeout", cfg.DatabaseWaitTimeout).
		Msg("starting plinko-pir-server")

	dbLog := logging.Component(root, "database")
	db, err := database.Load(cfg.DatabasePath, cfg.DatabaseWaitTimeout, dbLog)
	if err != nil {
		var perr *pirerr.Error
		if errors.As(err, &perr) {
			return fmt.Errorf("%s: %s", perr.Kind, perr.Message)
		}
		return err
	}

	log.Info().
		Uint64("database_size", db.Size()).
		Uint64("chunk_size", db.ChunkSize()).
		Uint64("set_size", db.SetSize()).
		Msg("database loaded")
	log.Warn().Msg("privacy mode: server will never log a queried index, PRF key, or index set")

	engine := query.New(db)
	server := httpapi.New(engine, logging.Component(root, "httpapi"))

	log.Info().Str("addr", cfg.ListenAddress()).Msg("listening")
	if err := http.ListenAndServe(cfg.ListenAddress(), server.Routes()); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
