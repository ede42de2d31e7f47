package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"yatube/internal/config"
	"yatube/internal/db"
	"yatube/internal/logger"
	"yatube/internal/repository"
)

type app struct {
	cfgPath string
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
}

func (a *app) setup() error {
	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, log
	return nil
}

func (a *app) openDB() (*gorm.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	gdb, err := db.Open(a.cfg.Database, a.logger)
	if err != nil {
		return nil, err
	}
	a.db = gdb
	return gdb, nil
}

func (a *app) close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *app) repo() (*repository.Repository, error) {
	gdb, err := a.openDB()
	if err != nil {
		return nil, err
	}
	return repository.New(gdb), nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "yatube",
		Short:         "Yatube blogging platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "path to a YAML config file (default ./app.yaml if present)")

	rootCmd.AddCommand(
		serveCmd(a),
		migrateCmd(a),
		cacheCmd(a),
		groupCmd(a),
		userCmd(a),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
