package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var keepDownloads bool

// cleanCmd removes temporary files left by previous runs
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the work directory and temporary files",
	Long: `Clean removes the work directory, which holds clustalo temp files and,
by default, the downloaded JPred archives.

Use --keep-downloads to keep the archives for later --skip runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		removed, err := cleanWorkDir(cfg.WorkDir, cfg.Predictor.DownloadsDir, keepDownloads)
		if err != nil {
			return err
		}
		for _, path := range removed {
			fmt.Fprintf(os.Stderr, "✓ Removed %s\n", path)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Temporary folders deleted.")
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&keepDownloads, "keep-downloads", false, "keep downloaded JPred archives")
	rootCmd.AddCommand(cleanCmd)
}

// cleanWorkDir deletes workDir. With keep set, downloads survives wherever
// it sits inside workDir, along with the directories leading to it.
func cleanWorkDir(workDir, downloads string, keep bool) ([]string, error) {
	var removed []string

	if !keep && downloads != "" {
		if _, err := os.Stat(downloads); err == nil {
			if err := os.RemoveAll(downloads); err != nil {
				return removed, fmt.Errorf("remove %s: %w", downloads, err)
			}
			removed = append(removed, downloads)
		}
	}

	if workDir == "" {
		return removed, nil
	}
	if _, err := os.Stat(workDir); os.IsNotExist(err) {
		return removed, nil
	}

	protect := ""
	if keep {
		protect = downloads
	}
	kept, err := removeExcept(workDir, protect)
	if err != nil {
		return removed, err
	}
	if kept {
		return removed, nil
	}
	return append(removed, workDir), nil
}

// removeExcept deletes dir except for protect and its ancestors. It reports
// whether anything was kept.
func removeExcept(dir, protect string) (bool, error) {
	if protect != "" {
		if sameDir(dir, protect) {
			return true, nil
		}
		if within(protect, dir) {
			entries, err := os.ReadDir(dir)
			if err != nil {
				return false, fmt.Errorf("read %s: %w", dir, err)
			}
			kept := false
			for _, e := range entries {
				k, err := removeExcept(filepath.Join(dir, e.Name()), protect)
				if err != nil {
					return false, err
				}
				kept = kept || k
			}
			if kept {
				return true, nil
			}
			if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
				return false, fmt.Errorf("remove %s: %w", dir, err)
			}
			return false, nil
		}
	}
	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("remove %s: %w", dir, err)
	}
	return false, nil
}

// within reports whether path lies strictly inside dir
func within(path, dir string) bool {
	absPath, errP := filepath.Abs(path)
	absDir, errD := filepath.Abs(dir)
	if errP != nil || errD != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func sameDir(a, b string) bool {
	sa, errA := os.Stat(a)
	sb, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(sa, sb)
}
