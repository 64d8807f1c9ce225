package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/AdamBeresnev/shuttle-league/internal/db"
	"github.com/AdamBeresnev/shuttle-league/internal/league"
	"github.com/AdamBeresnev/shuttle-league/internal/schedule"
	"github.com/AdamBeresnev/shuttle-league/internal/store"
	"github.com/AdamBeresnev/shuttle-league/internal/utils"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

var seedFile string

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "League definition YAML (defaults to SEED_FILE, then the built-in league)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(standingsCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied to %s\n", dbPath)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed an empty database with a league definition",
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedFile == "" {
			seedFile = cfg.SeedFile
		}
		def, err := schedule.LoadOrDefault(seedFile)
		if err != nil {
			return err
		}

		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		res, err := schedule.NewSeeder(database, store.NewLeagueStore(database), clockwork.NewRealClock()).Seed(cmd.Context(), def)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d teams, %d players, %d ties and %d matches\n", res.Teams, res.Players, res.Ties, res.Matches)
		return nil
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings",
	Short: "Print the league table and medals",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		reader := database
		if !db.IsMemory(dbPath) {
			if reader, err = db.InitReadDB(dbPath); err != nil {
				return err
			}
			defer reader.Close()
		}

		snap, err := store.NewLeagueStore(reader).Snapshot(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read league: %w", err)
		}
		st := snap.Standings()
		return printStandings(cmd.OutOrStdout(), st, league.ResolveMedals(st, snap.Final))
	},
}

// openDB opens the configured database with every migration applied.
func openDB() (*sqlx.DB, error) {
	database, err := db.InitDB(dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(database.DB); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func printStandings(w io.Writer, st league.Standings, medals league.Medals) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTeam\tP\tW\tL\tPts\tGW\tGL\tAvg lead\tQualification")
	for _, row := range st.Rows {
		qualification := ""
		if row.Qualification != league.QualificationNone {
			qualification = string(row.Qualification)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%s\n",
			row.Rank, row.Team, row.TiesPlayed, row.TiesWon, row.TiesLost, row.TiePoints,
			row.GamesWon, row.GamesLost, row.AverageMatchLead, qualification)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d of %d ties completed\n", st.CompletedTies, st.TotalTies)
	if !st.LeagueComplete {
		return nil
	}
	fmt.Fprintf(w, "Finalists: %s vs %s\n", utils.OrZero(medals.Finalist1), utils.OrZero(medals.Finalist2))
	if medals.BronzeTeam != nil {
		fmt.Fprintf(w, "Bronze: %s\n", *medals.BronzeTeam)
	}
	if medals.GoldTeam != nil {
		fmt.Fprintf(w, "Gold: %s, Silver: %s\n", *medals.GoldTeam, utils.OrZero(medals.SilverTeam))
	}
	return nil
}
