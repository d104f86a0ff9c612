package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ppiankov/foldswitch/internal/model"
	"github.com/ppiankov/foldswitch/internal/msa"
	"github.com/ppiankov/foldswitch/internal/pipeline"
	"github.com/ppiankov/foldswitch/internal/predict"
	"github.com/ppiankov/foldswitch/internal/store"
)

// compareFlags holds the raw flag values; only flags the user set override
// the layered config
type compareFlags struct {
	email      string
	threshold  float64
	trim       int
	skip       bool
	downloads  string
	alignment  string
	clustalo   string
	csv        string
	json       string
	md         string
	db         string
	workers    int
	noCache    bool
	zeroPolicy string
	timeout    time.Duration
}

var cmpFlags compareFlags

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <fasta_a> <fasta_b>",
	Short: "Score secondary structure discrepancy between two FASTA families",
	Long: `Compare predicts secondary structure for every sequence in both files,
aligns all sequences together, projects the predictions onto the alignment
and scores each sequence against the other family.

The category of each sequence is its file name without the extension.

Example:
  foldswitch compare kaiB.fasta trx.fasta -e you@example.org
  foldswitch compare kaiB.fasta trx.fasta --skip --downloads ./jpred_archives
  foldswitch compare a.fa b.fa --skip --alignment aln.fa --np -40 -t 0.2 --json report.json`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	f := compareCmd.Flags()
	f.SetNormalizeFunc(compareFlagAliases)

	// Predictor flags
	f.StringVarP(&cmpFlags.email, "email", "e", "", "email address for JPred submission")
	f.BoolVar(&cmpFlags.skip, "skip", false, "skip JPred submission and read archives from the downloads directory")
	f.StringVar(&cmpFlags.downloads, "downloads", "", "directory holding JPred result archives")
	f.IntVar(&cmpFlags.trim, "trim", 0, "residues to predict: n>0 drops the first n, n<0 keeps the last |n| (alias --np)")
	f.BoolVar(&cmpFlags.noCache, "no-cache", false, "disable the prediction cache")
	f.IntVar(&cmpFlags.workers, "workers", 0, "concurrent predictions and comparison workers")

	// Aligner flags
	f.StringVar(&cmpFlags.alignment, "alignment", "", "precomputed aligned FASTA (skips clustalo)")
	f.StringVar(&cmpFlags.clustalo, "clustalo", "", "path to the clustalo binary")

	// Scoring flags
	f.Float64VarP(&cmpFlags.threshold, "threshold", "t", 0, "candidate threshold on the cross-family score")
	f.StringVar(&cmpFlags.zeroPolicy, "zero-policy", "", "pairs with no helix or strand: skip or fail")

	// Output flags
	f.StringVar(&cmpFlags.csv, "csv", "", "summary CSV path (default summary.txt)")
	f.StringVar(&cmpFlags.json, "json", "", "output JSON path (optional)")
	f.StringVar(&cmpFlags.md, "md", "", "output Markdown path (optional)")
	f.StringVar(&cmpFlags.db, "db", "", "SQLite database to record the run in (optional)")
	f.DurationVar(&cmpFlags.timeout, "timeout", 0, "overall timeout (0 for none)")
}

// compareFlagAliases maps the short historical names onto current flags
func compareFlagAliases(f *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "np":
		name = "trim"
	case "thres":
		name = "threshold"
	}
	return pflag.NormalizedName(name)
}

// applyCompareFlags overrides cfg with every flag the user set
func applyCompareFlags(flags *pflag.FlagSet, v compareFlags, cfg *model.Config) {
	set := flags.Changed

	if set("email") {
		cfg.Predictor.Email = v.email
	}
	if set("downloads") {
		cfg.Predictor.DownloadsDir = v.downloads
	}
	if set("skip") && v.skip {
		cfg.Predictor.Provider = "archive"
	}
	if set("trim") {
		cfg.Scoring.Trim = v.trim
	}
	if set("no-cache") {
		cfg.Cache.Enabled = !v.noCache
	}
	if set("workers") && v.workers > 0 {
		cfg.Concurrency.PredictWorkers = v.workers
		cfg.Concurrency.CompareWorkers = v.workers
	}
	if set("alignment") {
		cfg.Aligner.Provider = "file"
		cfg.Aligner.AlignmentFile = v.alignment
	}
	if set("clustalo") {
		cfg.Aligner.Binary = v.clustalo
	}
	if set("threshold") {
		cfg.Scoring.Threshold = v.threshold
	}
	if set("zero-policy") {
		cfg.Scoring.ZeroPolicy = v.zeroPolicy
	}
	if set("csv") {
		cfg.Output.CSV = v.csv
	}
	if set("json") {
		cfg.Output.JSON = v.json
	}
	if set("md") {
		cfg.Output.Markdown = v.md
	}
	if set("db") {
		cfg.Output.DB = v.db
	}
	if verbose {
		cfg.Output.Verbose = true
	}
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyCompareFlags(cmd.Flags(), cmpFlags, cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cmpFlags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmpFlags.timeout)
		defer cancel()
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Comparing: %s vs %s\n", args[0], args[1])
		fmt.Fprintf(os.Stderr, "Predictor: %s\n", cfg.Predictor.Provider)
		fmt.Fprintf(os.Stderr, "Aligner:   %s\n", cfg.Aligner.Provider)
		fmt.Fprintf(os.Stderr, "Cache:     %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	provider, err := predict.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("predictor: %w", err)
	}
	aligner, err := msa.NewAligner(cfg.Aligner, cfg.WorkDir)
	if err != nil {
		return fmt.Errorf("aligner: %w", err)
	}

	p := pipeline.NewPipeline(cfg, provider, aligner, os.Stderr)

	report, err := p.Run(ctx, args[0], args[1])
	if err != nil {
		return fmt.Errorf("compare failed: %w", err)
	}

	if err := p.RenderReport(report); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if cfg.Predictor.Provider == "archive" {
		stray, err := unmatchedArchives(cfg.Predictor.DownloadsDir, report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ list archives: %v\n", err)
		} else if len(stray) > 0 {
			fmt.Fprintf(os.Stderr, "⚠️  %d archives in %s match no input sequence: %s\n",
				len(stray), cfg.Predictor.DownloadsDir, strings.Join(stray, ", "))
		}
	}

	if cfg.Output.DB != "" {
		if err := saveRun(cfg.Output.DB, report); err != nil {
			return err
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ Recorded run %s in %s\n", report.RunID, cfg.Output.DB)
		}
	}

	return nil
}

// unmatchedArchives lists archived accessions that are neither a row nor an
// exclusion of report
func unmatchedArchives(dir string, report *model.Report) ([]string, error) {
	archive, err := predict.NewArchiveProvider(dir)
	if err != nil {
		return nil, err
	}
	accs, err := archive.Accessions()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(report.Rows)+len(report.Excluded))
	for _, row := range report.Rows {
		seen[row.Accession] = true
	}
	for _, ex := range report.Excluded {
		seen[ex.Accession] = true
	}

	var stray []string
	for _, acc := range accs {
		if !seen[acc] {
			stray = append(stray, acc)
		}
	}
	return stray, nil
}

func saveRun(path string, report *model.Report) (err error) {
	s, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close database: %w", closeErr)
		}
	}()
	if err := s.SaveReport(report); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}
