package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"

	"moonhall/chat"
	"moonhall/contract"
	"moonhall/docstore"
	"moonhall/follow"
	"moonhall/internal"
	"moonhall/notify"
	"moonhall/presence"
	"moonhall/runtime"
	"moonhall/sink"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the session lifecycle, and
// centralizes error reporting, so every defer (database close included)
// executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Store & domain collaborators
	store := docstore.NewBadgerStore(db, log)
	tracker := presence.NewTracker(store, log, config.PresenceStaleAfter)
	history := chat.NewHistory(store, log, config.HistoryLimit)

	var registry contract.FollowerRegistry
	if config.FollowerIndex {
		registry = follow.NewIndexRegistry(store, log)
	} else {
		registry = follow.NewScanRegistry(store, log)
	}
	engine := notify.NewEngine(store, registry, log)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Profile & session
	if config.DisplayName != "" {
		if err := store.Update(ctx, "users", config.UserID, map[string]any{"displayName": config.DisplayName}); err != nil {
			return fmt.Errorf("profile bootstrap failed: %w", err)
		}
	}

	session := runtime.NewSession(log, store, tracker, history, config.UserID, config.RestartInterval,
		engine, sink.NewLogSink(log))
	session.Start(ctx)

	// 6. Optional store inspector
	if config.DebugPort > 0 {
		internal.StartDebugServer(db, config.DebugPort, "/inspect", internal.DocumentMapper, func() map[string]any {
			return map[string]any{
				"User":   config.UserID,
				"Unread": session.Feed().Unread(),
				"Time":   time.Now().Format(time.RFC822),
			}
		})
		log.Info("Inspector listening", "port", config.DebugPort)
	}

	// 7. Wait for Stop
	<-ctx.Done()
	log.Info("Shutting down gracefully...")

	session.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
