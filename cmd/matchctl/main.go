// Command matchctl is the Matchwatch operations CLI.
//
// Usage:
//
//	matchctl today --competition PL
//	matchctl today --competition CL --date 2026-09-15
//	matchctl tracked
//	matchctl record 497555
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kxbet/matchwatch/internal/config"
	"github.com/kxbet/matchwatch/internal/db"
	"github.com/kxbet/matchwatch/internal/footballdata"
	"github.com/kxbet/matchwatch/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

func main() {
	// Load .env from repo root if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "matchctl",
		Short: "Matchwatch operations CLI",
	}

	root.AddCommand(todayCmd())
	root.AddCommand(trackedCmd())
	root.AddCommand(recordCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// today command
// --------------------------------------------------------------------------

func todayCmd() *cobra.Command {
	var competition, date string
	cmd := &cobra.Command{
		Use:   "today",
		Short: "List a competition's matches for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			day := time.Now().UTC()
			if date != "" {
				day, err = time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("parse --date: %w", err)
				}
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			client := footballdata.NewClient(cfg.FootballDataToken, cfg.ProviderRPM, logger)
			matches, err := client.CompetitionMatches(ctx, competition, day)
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				fmt.Printf("No matches on %s for %s\n", day.Format("2006-01-02"), config.CompetitionName(competition))
				return nil
			}
			for _, m := range matches {
				fmt.Printf("%s  %s\n", m.ID, m.Label())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&competition, "competition", "PL", "Competition code (PL, PD, SA, BL1, FL1, CL)")
	cmd.Flags().StringVar(&date, "date", "", "Day to list, YYYY-MM-DD (default today)")
	return cmd
}

// --------------------------------------------------------------------------
// tracked command
// --------------------------------------------------------------------------

func trackedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tracked",
		Short: "List tracked matches and their subscriber counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st store.Store) error {
				state, err := st.Load(ctx)
				if err != nil {
					return err
				}
				ids := state.TrackedMatchIDs()
				if len(ids) == 0 {
					fmt.Println("No tracked matches")
					return nil
				}
				for _, matchID := range ids {
					rec := state.Record(matchID)
					fmt.Printf("%s  subscribers=%d status=%s score=%s\n",
						matchID, len(state.SubscribersOf(matchID)), rec.LastStatus, rec.LastFullTime)
				}
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// record command
// --------------------------------------------------------------------------

func recordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record <matchID>",
		Short: "Print one match's alert dedup record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st store.Store) error {
				rec, err := st.Record(ctx, args[0])
				if err != nil {
					return err
				}
				out, err := json.MarshalIndent(rec, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			})
		},
	}
}

// withStore opens the configured store, runs fn, and closes it.
func withStore(fn func(ctx context.Context, st store.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var st store.Store
	if cfg.UsePostgres() {
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		st = store.NewPostgresStore(pool)
	} else {
		st = store.NewFileStore(cfg.StorePath)
	}
	defer st.Close()

	return fn(ctx, st)
}
