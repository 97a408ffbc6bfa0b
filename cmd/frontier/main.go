// Command frontier runs the colonization turn engine: a persistent
// server with an HTTP API, or a headless batch of turns.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/talgya/frontier/internal/engine"
	"github.com/talgya/frontier/internal/entropy"
	"github.com/talgya/frontier/internal/persistence"
	"github.com/talgya/frontier/internal/rules"
	"github.com/talgya/frontier/internal/world"
)

type options struct {
	rulesPath string
	dbPath    string
	seed      int64
	small     bool
	verbose   bool
}

func main() {
	var opts options
	rootCmd := &cobra.Command{
		Use:   "frontier",
		Short: "Colonization AI and native settlement turn engine",
		Long: `Plays a colonization game turn by turn: European AI players move their
units by mission while native settlements grow, trade, demand tribute and
go to war.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().StringVarP(&opts.rulesPath, "rules", "r", "", "Path to a YAML ruleset (default: built-in rules)")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", envOrDefault("FRONTIER_DB_PATH", "data/frontier.db"), "SQLite database path")
	rootCmd.PersistentFlags().Int64Var(&opts.seed, "seed", 0, "Seed for a new game (0 = random)")
	rootCmd.PersistentFlags().BoolVar(&opts.small, "small", false, "Generate a small test map")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(newRunCmd(&opts), newSimulateCmd(&opts), newSavesCmd(&opts))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadRules(path string) (*rules.Ruleset, error) {
	if path == "" {
		return rules.Default(), nil
	}
	rs, err := rules.Load(path)
	if err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	return rs, nil
}

// newGame generates a fresh game. A zero seed is drawn from random.org
// when RANDOM_ORG_API_KEY is set, from crypto/rand otherwise.
func newGame(opts *options, rs *rules.Ruleset) (*engine.Simulation, error) {
	seed := opts.seed
	if seed == 0 {
		seed = entropy.NewSeed(entropy.NewClient(os.Getenv("RANDOM_ORG_API_KEY")))
	}
	cfg := engine.DefaultSetupConfig()
	if opts.small {
		cfg.Map = world.SmallTestConfig()
		cfg.SettlementsPerNation = 2
		cfg.ColoniesPerPlayer = 1
	}
	cfg.Map.Seed = seed

	slog.Info("generating new game", "seed", seed, "radius", cfg.Map.Radius)
	rng := entropy.NewSource(seed)
	sim, err := engine.NewSimulation(engine.NewGame(rs, cfg, rng), rng)
	if err != nil {
		return nil, fmt.Errorf("new simulation: %w", err)
	}
	return sim, nil
}

// openGame resumes the latest save in db, or starts a new game when there
// is none. A nil db always starts a new game.
func openGame(opts *options, db *persistence.DB) (*engine.Simulation, error) {
	rs, err := loadRules(opts.rulesPath)
	if err != nil {
		return nil, err
	}
	if db != nil {
		latest, err := db.GetMeta("latest_save")
		if err == nil && latest != "" {
			sim, err := db.LoadGame(latest, rs)
			if err != nil {
				return nil, fmt.Errorf("load save %s: %w", latest, err)
			}
			slog.Info("game restored", "save", latest, "turn", sim.Turn(), "date", engine.TurnDate(sim.Turn()))
			return sim, nil
		}
		slog.Info("no saved game found")
	}
	return newGame(opts, rs)
}

func openDB(path string) (*persistence.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	db, err := persistence.Open(path)
	if err != nil {
		return nil, err
	}
	slog.Info("database opened", "path", path)
	return db, nil
}

// playTurn is the engine step for a simulation.
func playTurn(sim *engine.Simulation) func() int {
	return func() int {
		turn := sim.Turn()
		sim.NewTurn()
		return turn
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
