package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/talgya/frontier/internal/engine"
	"github.com/talgya/frontier/internal/persistence"
	"github.com/talgya/frontier/internal/social"
)

func newSimulateCmd(opts *options) *cobra.Command {
	var (
		turns  int
		resume bool
		store  bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a batch of turns headless and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			if turns <= 0 {
				return fmt.Errorf("turns must be positive: %d", turns)
			}
			var db *persistence.DB
			if resume || store {
				var err error
				if db, err = openDB(opts.dbPath); err != nil {
					return err
				}
				defer db.Close()
			}
			gameDB := db
			if !resume {
				gameDB = nil
			}
			sim, err := openGame(opts, gameDB)
			if err != nil {
				return err
			}

			eng := engine.NewEngine(playTurn(sim))
			eng.SaveEvery = 0
			start := time.Now()
			first := sim.Turn()
			for i := 0; i < turns; i++ {
				eng.Step()
			}
			slog.Info("batch finished", "turns", turns, "elapsed", time.Since(start).Round(time.Millisecond))

			if store {
				save(db, sim, 0)
			}
			printSummary(sim, first)
			return nil
		},
	}
	cmd.Flags().IntVarP(&turns, "turns", "n", 50, "Turns to play")
	cmd.Flags().BoolVar(&resume, "resume", false, "Continue the latest save instead of a new game")
	cmd.Flags().BoolVar(&store, "save", false, "Save the final state to the database")
	return cmd
}

func printSummary(sim *engine.Simulation, first int) {
	titleColor := color.New(color.FgCyan, color.Bold)
	warnColor := color.New(color.FgRed)

	sim.View(func() {
		g := sim.Game
		scale := g.Scale()

		titleColor.Printf("\nTurns %d to %d (%s to %s)\n", first, g.Turn-1, engine.TurnDate(first), engine.TurnDate(g.Turn-1))
		st := sim.Stats
		fmt.Printf("   Battles: %s   Tributes: %s   Births: %s   Famines: %s   Collapses: %s\n",
			humanize.Comma(int64(st.Battles)), humanize.Comma(int64(st.Tributes)),
			humanize.Comma(int64(st.Births)), humanize.Comma(int64(st.Famines)),
			humanize.Comma(int64(st.Collapses)))

		titleColor.Println("\nPlayers:")
		players := tablewriter.NewTable(os.Stdout,
			tablewriter.WithHeader([]string{"Player", "Gold", "Colonies", "Settlements", "Units", "Missions"}),
		)
		for _, ap := range sim.AI.Players() {
			p := g.Player(ap.ID)
			name := p.Name
			if p.Dead {
				name = warnColor.Sprint(name + " (dead)")
			}
			players.Append([]string{
				name,
				humanize.Comma(int64(p.Gold)),
				strconv.Itoa(len(g.ColoniesOf(p.ID))),
				strconv.Itoa(len(g.SettlementsOf(p.ID))),
				strconv.Itoa(len(g.UnitsOf(p.ID))),
				formatCounts(ap.MissionCounts()),
			})
		}
		players.Render()

		titleColor.Println("\nNative settlements:")
		settlements := tablewriter.NewTable(os.Stdout,
			tablewriter.WithHeader([]string{"Settlement", "Nation", "Type", "Braves", "Goods", "Most hated", "Alarm", "Missionary"}),
		)
		for _, is := range g.AllSettlements() {
			hated, alarm := "-", "-"
			if is.MostHated != "" {
				if p := g.Player(is.MostHated); p != nil {
					hated = p.Name
				}
				if t := is.AlarmFor(is.MostHated); t != nil {
					alarm = fmt.Sprintf("%d %s", t.Value, t.Level(scale))
					if t.Level(scale) >= social.Angry {
						alarm = warnColor.Sprint(alarm)
					}
				}
			}
			missionary := "-"
			if u := g.Unit(is.Missionary); u != nil {
				if p := g.Player(u.Owner); p != nil {
					missionary = p.Name
				}
			}
			settlements.Append([]string{
				is.Name,
				g.Player(is.Owner).Name,
				is.Type,
				strconv.Itoa(len(is.OwnedUnits)),
				humanize.Comma(int64(is.Goods.Total())),
				hated,
				alarm,
				missionary,
			})
		}
		settlements.Render()
	})
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s %d", k, counts[k])
	}
	return out
}
