package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/talgya/frontier/internal/engine"
)

func newSavesCmd(opts *options) *cobra.Command {
	var (
		limit int
		prune int
	)
	cmd := &cobra.Command{
		Use:   "saves",
		Short: "List stored saves, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(opts.dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if prune > 0 {
				n, err := db.Prune(prune)
				if err != nil {
					return fmt.Errorf("prune: %w", err)
				}
				color.New(color.FgYellow).Printf("Pruned %d saves.\n", n)
			}

			saves, err := db.ListSaves(limit)
			if err != nil {
				return fmt.Errorf("list saves: %w", err)
			}
			if len(saves) == 0 {
				fmt.Println("No saves.")
				return nil
			}
			latest, _ := db.GetMeta("latest_save")

			table := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"Save", "Turn", "Date", "Seed", "AI objects", "Saved"}),
			)
			for _, s := range saves {
				id := s.ID
				if id == latest {
					id = color.New(color.FgGreen, color.Bold).Sprint(id)
				}
				table.Append([]string{
					id,
					strconv.Itoa(s.Turn),
					engine.TurnDate(s.Turn),
					strconv.FormatInt(s.Seed, 10),
					humanize.Comma(int64(s.AIObjects)),
					humanize.Time(s.CreatedAt),
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Saves to list")
	cmd.Flags().IntVar(&prune, "prune", 0, "Delete all but the newest N saves first")
	return cmd
}
