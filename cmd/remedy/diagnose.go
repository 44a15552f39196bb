package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"remedy/internal/driver"
	"remedy/internal/source"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose [flags] <scenario.toml|directory>",
	Short: "Diagnose declared type mismatches and suggest repairs",
	Long:  `Diagnose every mismatch declared in a scenario file (or all *.toml files within a directory) and print ranked conversion suggestions`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDiagnose,
}

func init() {
	diagnoseCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	diagnoseCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	diagnoseCmd.Flags().String("ui", "auto", "progress UI mode (auto|on|off)")
	diagnoseCmd.Flags().Bool("disk-cache", false, "cache diagnosis results on disk keyed by file digest")
	diagnoseCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json":
		// supported
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	enableDiskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

	paths, baseDir, err := collectScenarioPaths(args[0])
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no scenario files found under %s", args[0])
	}

	opts := driver.Options{
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
	}
	if enableDiskCache {
		cache, err := driver.OpenDiskCache("remedy")
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
		opts.Cache = cache
	}

	fs := source.NewFileSet()
	fs.SetBaseDir(baseDir)

	metrics := &driver.Metrics{}
	start := time.Now()

	// The progress TUI owns stdout while running, so only use it for the
	// pretty format on an interactive terminal.
	var results []driver.FileResult
	if format == "pretty" && shouldUseTUI(mode) && !quiet {
		results, err = runDiagnoseWithUI(cmd.Context(), "diagnosing scenarios", fs, paths, opts, metrics)
	} else {
		results, err = driver.DiagnoseAll(cmd.Context(), fs, paths, opts, metrics, nil)
	}
	if err != nil {
		return fmt.Errorf("diagnosis failed: %w", err)
	}
	elapsed := time.Since(start)

	pathMode := "auto"
	if fullPath {
		pathMode = "absolute"
	}

	exit := 0
	switch format {
	case "pretty":
		p := printer{fs: fs, color: useColor, pathMode: pathMode, quiet: quiet}
		exit = p.print(os.Stdout, results)
	case "json":
		exit, err = printJSON(os.Stdout, fs, results, pathMode)
		if err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}

	if showTimings {
		fmt.Fprintf(os.Stderr, "diagnosed %d file(s) in %.1f ms (%s)\n",
			len(results), float64(elapsed)/float64(time.Millisecond), metrics.Summary())
	}

	if exit != 0 {
		os.Exit(exit)
	}
	return nil
}

// collectScenarioPaths expands a file or directory argument into the list
// of scenario files to diagnose, sorted for deterministic output.
func collectScenarioPaths(arg string) ([]string, string, error) {
	st, err := os.Stat(arg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to stat path: %w", err)
	}
	if !st.IsDir() {
		return []string{arg}, filepath.Dir(arg), nil
	}

	var paths []string
	err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".toml") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to walk directory: %w", err)
	}
	sort.Strings(paths)
	return paths, arg, nil
}
