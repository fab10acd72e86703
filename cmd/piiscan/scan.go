package piiscan

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/redactyl/piiscan/internal/config"
	"github.com/redactyl/piiscan/internal/engine"
	"github.com/redactyl/piiscan/internal/policy"
	"github.com/redactyl/piiscan/internal/report"
	"github.com/redactyl/piiscan/internal/tui"
	"github.com/redactyl/piiscan/internal/types"
)

var (
	flagText            string
	flagStdin           bool
	flagPolicy          string
	flagThreshold       float64
	flagFloor           float64
	flagFormat          string
	flagJSON            bool
	flagTUI             bool
	flagInclude         string
	flagExclude         string
	flagExcludeDirs     string
	flagMaxBytes        int64
	flagEnable          string
	flagDisable         string
	flagDefaultExcludes bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan [PATH]",
		Short: "Scan text, a file or a directory tree",
		Long: `Scan text, a file or a directory tree and decide Accept or Reject.

Exit status is 0 for Accept, 1 for Reject and 2 for errors.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVar(&flagText, "text", "", "scan this string instead of a path")
	cmd.Flags().BoolVar(&flagStdin, "stdin", false, "scan standard input instead of a path")
	cmd.Flags().StringVar(&flagPolicy, "policy", "", "policy document (YAML or JSON)")
	cmd.Flags().Float64Var(&flagThreshold, "threshold", policy.DefaultThreshold, "default policy threshold for labels without their own")
	cmd.Flags().Float64Var(&flagFloor, "floor", 0, "drop findings scoring below this value")
	cmd.Flags().StringVarP(&flagFormat, "format", "f", "text", "output format: text|json|yaml|table|sarif")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "shortcut for --format json")
	cmd.Flags().BoolVar(&flagTUI, "tui", false, "browse results in an interactive viewer")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().StringVar(&flagExcludeDirs, "exclude-dirs", "", "comma-separated directory names to skip")
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 1<<20, "skip files larger than this (0 = unlimited)")
	cmd.Flags().StringVar(&flagEnable, "enable", "", "only report these labels (comma-separated)")
	cmd.Flags().StringVar(&flagDisable, "disable", "", "never report these labels (comma-separated)")
	cmd.Flags().BoolVar(&flagDefaultExcludes, "default-excludes", true,
		"skip lock files, media and build artifacts, and prune these directories: "+strings.Join(engine.DefaultExcludeDirs(), ", "))
	cmd.MarkFlagsMutuallyExclusive("text", "stdin")
	cmd.MarkFlagsMutuallyExclusive("json", "format")
}

func runScan(cmd *cobra.Command, args []string) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	log := newLogger(errOut)

	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	if (cmd.Flags().Changed("text") || flagStdin) && len(args) == 1 {
		return errors.New("a PATH cannot be combined with --text or --stdin")
	}

	format, err := report.ParseFormat(flagFormat)
	if err != nil {
		return err
	}
	if flagJSON {
		format = report.FormatJSON
	}

	// Load configs: CLI > local > global
	cfgDir := target
	if fi, err := os.Stat(target); err == nil && !fi.IsDir() {
		cfgDir = filepath.Dir(target)
	}
	gcfg, lcfg, err := loadConfigs(cfgDir)
	if err != nil {
		return err
	}

	cfg, err := engineConfig(cmd, target, lcfg, gcfg)
	if err != nil {
		return err
	}
	cfg.Logger = log

	prof, err := loadProfile(cmd, lcfg, gcfg)
	if err != nil {
		return err
	}
	warnFloor(log, cfg.Floor, prof)

	noColor := pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor) || !isTerminal(out)

	var (
		findings []types.Finding
		stats    engine.Result
		viewRoot string
	)
	switch {
	case cmd.Flags().Changed("text"):
		findings = engine.NewDetector(cfg).ScanText(flagText, cfg.Floor)
	case flagStdin:
		findings, err = engine.NewDetector(cfg).ScanReader(cmd.InOrStdin(), cfg.Floor)
		if err != nil {
			return fmt.Errorf("scan error: %w", err)
		}
	default:
		if fi, err := os.Stat(target); err == nil && fi.IsDir() {
			viewRoot = target
		}
		if !format.Structured() && !flagTUI {
			_, _ = fmt.Fprintf(errOut, "Scanning %s with %d labels...\n", target, engine.NewDetector(cfg).Library.Len())
			attachProgress(&cfg, errOut)
		}
		stats, err = engine.ScanWithStats(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("scan error: %w", err)
		}
		if cfg.Progress != nil {
			_, _ = fmt.Fprintln(errOut)
		}
		findings = stats.Findings
	}

	res := policy.Result(findings, prof)

	if flagTUI {
		if err := tui.Run(res, viewRoot); err != nil {
			return err
		}
	} else {
		opts := report.Options{
			NoColor:      noColor,
			Duration:     stats.Duration,
			FilesScanned: stats.FilesScanned,
			FileErrors:   stats.FileErrors,
			Version:      version,
		}
		if err := report.Write(out, format, res, opts); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}

	if code := report.ExitCode(res.Decision); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// engineConfig merges flags with the local and global config files.
func engineConfig(cmd *cobra.Command, root string, lcfg, gcfg config.FileConfig) (engine.Config, error) {
	enable, err := parseLabels(splitList(pickString(flagEnable, lcfg.Enable, gcfg.Enable)))
	if err != nil {
		return engine.Config{}, fmt.Errorf("--enable: %w", err)
	}
	disable, err := parseLabels(splitList(pickString(flagDisable, lcfg.Disable, gcfg.Disable)))
	if err != nil {
		return engine.Config{}, fmt.Errorf("--disable: %w", err)
	}
	structural := lcfg.StructuralLabels
	if structural == nil {
		structural = gcfg.StructuralLabels
	}
	boosted, err := parseLabels(structural)
	if err != nil {
		return engine.Config{}, fmt.Errorf("structural_labels: %w", err)
	}
	excludeDirs := splitList(flagExcludeDirs)
	if excludeDirs == nil {
		excludeDirs = lcfg.ExcludeDirs
	}
	if excludeDirs == nil {
		excludeDirs = gcfg.ExcludeDirs
	}

	return engine.Config{
		Root:             root,
		Floor:            pickFlag(cmd, "floor", flagFloor, lcfg.Floor, gcfg.Floor),
		IncludeGlobs:     pickString(flagInclude, lcfg.Include, gcfg.Include),
		ExcludeGlobs:     pickString(flagExclude, lcfg.Exclude, gcfg.Exclude),
		ExcludeDirs:      excludeDirs,
		DefaultExcludes:  pickFlag(cmd, "default-excludes", flagDefaultExcludes, lcfg.DefaultExcludes, gcfg.DefaultExcludes),
		MaxBytes:         pickFlag(cmd, "max-bytes", flagMaxBytes, lcfg.MaxBytes, gcfg.MaxBytes),
		Threads:          pickInt(flagThreads, lcfg.Threads, gcfg.Threads),
		EnableLabels:     enable,
		DisableLabels:    disable,
		StructuralLabels: boosted,
	}, nil
}

// loadProfile resolves the policy: --policy, then the config files, then the
// built-in default. An explicit --threshold overrides the document's default.
func loadProfile(cmd *cobra.Command, lcfg, gcfg config.FileConfig) (policy.Profile, error) {
	th := pickFlag(cmd, "threshold", flagThreshold, lcfg.Threshold, gcfg.Threshold)
	if th < 0 {
		return policy.Profile{}, fmt.Errorf("%w: threshold %v must be a non-negative number", policy.ErrMalformed, th)
	}
	path := pickString(flagPolicy, lcfg.Policy, gcfg.Policy)
	if path == "" {
		return policy.Default(th), nil
	}
	doc, err := policy.LoadFile(path)
	if err != nil {
		return policy.Profile{}, err
	}
	if err := doc.CheckVersion(version); err != nil {
		return policy.Profile{}, err
	}
	prof, err := doc.Profile(th)
	if err != nil {
		return policy.Profile{}, fmt.Errorf("%s: %w", path, err)
	}
	if cmd.Flags().Changed("threshold") {
		prof.DefaultThreshold = th
	}
	return prof, nil
}

// warnFloor flags thresholds that the floor makes unreachable.
func warnFloor(log *slog.Logger, floor float64, p policy.Profile) {
	if floor <= 0 {
		return
	}
	if p.DefaultThreshold < floor {
		log.Warn("floor is above the default threshold; findings between them are dropped before policy evaluation",
			"floor", floor, "threshold", p.DefaultThreshold)
	}
	for l, th := range p.Thresholds {
		if th < floor {
			log.Warn("floor is above a label threshold", "label", l, "floor", floor, "threshold", th)
		}
	}
}

// attachProgress prints a textual progress bar on w when it is a terminal.
func attachProgress(cfg *engine.Config, w io.Writer) {
	if !isTerminal(w) {
		return
	}
	total, err := engine.CountTargets(*cfg)
	if err != nil || total == 0 {
		return
	}
	var (
		done atomic.Int64
		mu   sync.Mutex
	)
	cfg.Progress = func() {
		n := done.Add(1)
		if n%10 == 0 || n == int64(total) {
			pct := float64(n) / float64(total) * 100
			mu.Lock()
			_, _ = fmt.Fprintf(w, "\r[%d/%d] %.0f%%", n, total, pct)
			mu.Unlock()
		}
	}
}
