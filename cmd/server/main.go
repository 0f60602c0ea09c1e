/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (env + optional .env, flags override)
  2. Build structured logger (slog, JSON)
  3. Open the SQLite store, or fall back to in-memory when no DB_PATH
  4. Wire rule store, YTD ledger, employee directory, run engine
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides DB_PATH; empty = in-memory)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/payroll.db"

  # Run fully in memory (seeded demo employees, no persistence)
  ./server

SEE ALSO:
  - config/config.go: Environment configuration
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maplepay/payroll-engine/api"
	"github.com/maplepay/payroll-engine/config"
	"github.com/maplepay/payroll-engine/employees"
	"github.com/maplepay/payroll-engine/paystub"
	"github.com/maplepay/payroll-engine/payrun"
	"github.com/maplepay/payroll-engine/store"
	"github.com/maplepay/payroll-engine/store/sqlite"
	"github.com/maplepay/payroll-engine/taxrules"
	"github.com/maplepay/payroll-engine/ytd"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path (empty = in-memory)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	rules, err := taxrules.DefaultStore()
	if err != nil {
		logger.Error("failed to load tax rules", "error", err)
		os.Exit(1)
	}

	source := employees.SeedDirectory()

	// Storage: one SQLite store backs both runs and the YTD ledger so
	// approval is a single transaction. Without a DB path everything is
	// in memory.
	var (
		runStore payrun.Store
		ledger   ytd.Ledger
	)
	if *dbPath != "" {
		st, err := sqlite.New(*dbPath)
		if err != nil {
			logger.Error("failed to initialize database", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer st.Close()
		runStore, ledger = st, st
		logger.Info("using sqlite storage", "path", *dbPath)
	} else {
		runStore, ledger = store.NewMemory(), ytd.NewMemory()
		logger.Info("using in-memory storage")
	}

	engine := payrun.NewEngine(runStore, rules, ledger, source,
		payrun.WithLogger(logger),
		payrun.WithPeriodDays(cfg.PeriodDays),
		payrun.WithStubGenerator(paystub.NewPDFGenerator(cfg.StubDir, source)),
	)

	handler := api.NewHandler(engine, rules, ledger, source)
	router := api.NewRouter(handler, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
