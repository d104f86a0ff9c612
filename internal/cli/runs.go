package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/foldswitch/internal/store"
)

var runsDB string

// runsCmd lists runs recorded with compare --db
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List comparison runs stored in a database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openRunsDB()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		runs, err := s.Runs()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs recorded.")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(out, "%s  %s  %-24s %-8s rows=%d candidates=%d excluded=%d threshold=%.2f\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04"), strings.Join(r.Categories, " vs "),
				r.Predictor, r.Rows, r.Candidates, r.Excluded, r.Threshold)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the scores of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openRunsDB()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		rows, err := s.Scores(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, r := range rows {
			mark := " "
			if r.Candidate {
				mark = "*"
			}
			fmt.Fprintf(out, "%s %-12s %-16s cross=%.4f same=%.4f pairs=%d/%d mismatches=%d\n",
				mark, r.Accession, r.Category, r.CrossScore, r.SameScore, r.CrossPairs, r.SamePairs, r.Mismatches)
		}
		return nil
	},
}

func init() {
	runsCmd.PersistentFlags().StringVar(&runsDB, "db", "", "SQLite database (default: output.db from config)")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func openRunsDB() (*store.Store, error) {
	path := runsDB
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.Output.DB
	}
	if path == "" {
		return nil, fmt.Errorf("no database given: use --db or set output.db")
	}
	return store.Open(path)
}
