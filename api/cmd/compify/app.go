package main

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"compify/api/internal/credential"
	"compify/api/internal/solver"
	"compify/api/internal/solver/gemini"
	"compify/api/internal/store"
)

// app is the wiring shared by every command: store, credential and gateway.
type app struct {
	db    *sql.DB
	creds *credential.Provider
	gw    *solver.Gateway
}

func newApp(ctx context.Context) (*app, error) {
	db, summary, err := store.Open(ctx, cfg.DatabaseURL, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	logger.Info("db connected", zap.String("db", summary))

	creds, err := credential.Load(ctx, store.NewCredentialRepo(db), cfg.GeminiAPIKey, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load credential: %w", err)
	}

	engines := solver.NewEngines(cfg.Engine,
		gemini.New(cfg.GeminiModel, logger),
		gemini.NewLegacy(cfg.GeminiModel, logger),
	)
	if _, err := engines.Get(""); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("COMPIFY_ENGINE: %w", err)
	}
	gw := solver.NewGateway(engines, creds, solver.Budgets{Solve: cfg.SolveBudget, Verify: cfg.VerifyBudget}, logger)

	return &app{db: db, creds: creds, gw: gw}, nil
}

func (a *app) Close() error { return a.db.Close() }

// gateway returns the gateway bound to engine, or the default one.
func (a *app) gateway(engine string) (*solver.Gateway, error) {
	if engine == "" {
		return a.gw, nil
	}
	return a.gw.Using(engine)
}
