package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/frontier/internal/api"
	"github.com/talgya/frontier/internal/engine"
	"github.com/talgya/frontier/internal/persistence"
)

func newRunCmd(opts *options) *cobra.Command {
	var (
		port      int
		speed     float64
		interval  time.Duration
		saveEvery int
		keep      int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the game server with its HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(opts.dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			sim, err := openGame(opts, db)
			if err != nil {
				return err
			}
			if sim.Turn() == 0 {
				save(db, sim, keep)
			}

			eng := engine.NewEngine(playTurn(sim))
			eng.Interval = interval
			eng.SaveEvery = saveEvery
			if err := eng.SetSpeed(speed); err != nil {
				return err
			}
			eng.OnTurn = func(turn int) {
				slog.Debug("turn played", "turn", turn, "date", engine.TurnDate(turn))
			}
			eng.OnSave = func(turn int) { save(db, sim, keep) }

			adminKey := os.Getenv("FRONTIER_ADMIN_KEY")
			if adminKey == "" {
				slog.Warn("FRONTIER_ADMIN_KEY not set, admin POST endpoints will be disabled")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			api.NewServer(sim, eng, db, port, adminKey).Start(ctx)

			fmt.Printf("\nFrontier is running: turn %d (%s).\n", sim.Turn(), engine.TurnDate(sim.Turn()))
			fmt.Printf("API: http://localhost:%d/api/v1/status\n", port)
			fmt.Println("Playing turns... (Ctrl+C to stop)")

			eng.Run(ctx)

			slog.Info("final save...")
			save(db, sim, keep)
			fmt.Println("Game stopped. State saved.")
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP API port")
	cmd.Flags().Float64Var(&speed, "speed", 1, "Turn speed multiplier (0 = paused)")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Base time between turns")
	cmd.Flags().IntVar(&saveEvery, "save-every", 10, "Turns between saves (0 = only on exit)")
	cmd.Flags().IntVar(&keep, "keep", 20, "Saves to keep (0 = keep all)")
	return cmd
}

func save(db *persistence.DB, sim *engine.Simulation, keep int) {
	id, err := db.SaveGame(sim)
	if err != nil {
		slog.Error("save failed", "error", err)
		return
	}
	slog.Info("game saved", "save", id, "turn", sim.Turn())
	if keep <= 0 {
		return
	}
	if n, err := db.Prune(keep); err != nil {
		slog.Error("prune failed", "error", err)
	} else if n > 0 {
		slog.Debug("old saves pruned", "count", n)
	}
}
