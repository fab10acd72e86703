package engine

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	doublestar "github.com/bmatcuk/doublestar/v4"
	xxhash "github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/redactyl/piiscan/internal/ignore"
	"github.com/redactyl/piiscan/internal/patterns"
	"github.com/redactyl/piiscan/internal/scoring"
	"github.com/redactyl/piiscan/internal/types"
)

var (
	// ErrInput reports a scan target that does not exist or cannot be read.
	ErrInput = errors.New("input error")
	// ErrBinary reports a single file whose content is not text.
	ErrBinary = errors.New("binary content")
	// ErrTooLarge reports a single-file root larger than Config.MaxBytes.
	ErrTooLarge = errors.New("file too large")
)

// Config controls scanning behavior including scope, performance, and filters.
type Config struct {
	Root  string
	Floor float64

	IncludeGlobs string
	ExcludeGlobs string
	// ExcludeDirs names directories pruned before descending, matched by
	// base name at any depth.
	ExcludeDirs     []string
	DefaultExcludes bool
	MaxBytes        int64
	Threads         int

	EnableLabels     []types.Label
	DisableLabels    []types.Label
	StructuralLabels []types.Label

	// Progress is called once per processed file. It may be called from
	// several goroutines.
	Progress func()
	Logger   *slog.Logger
}

// Result contains findings and basic scan statistics.
type Result struct {
	Findings     []types.Finding
	FileErrors   []types.FileError
	FilesScanned int
	Duration     time.Duration
}

// Detector runs a pattern library and scorer over text. The zero value is not
// usable; build one with NewDetector or DefaultDetector.
type Detector struct {
	Library patterns.Library
	Scorer  scoring.Scorer
}

// DefaultDetector uses the built-in library and scorer.
func DefaultDetector() Detector {
	return Detector{Library: patterns.Default(), Scorer: scoring.Default()}
}

// NewDetector builds a detector honoring the label filters and extra
// structurally boosted labels in cfg.
func NewDetector(cfg Config) Detector {
	d := DefaultDetector()
	d.Library = d.Library.Filter(cfg.EnableLabels, cfg.DisableLabels)
	if len(cfg.StructuralLabels) > 0 {
		d.Scorer = d.Scorer.WithBoosted(cfg.StructuralLabels...)
	}
	return d
}

// ScanText scans text with the built-in detector.
func ScanText(text string, floor float64) []types.Finding {
	return DefaultDetector().ScanText(text, floor)
}

// ScanFile scans one file with the built-in detector.
func ScanFile(path string, floor float64) ([]types.Finding, error) {
	return DefaultDetector().ScanFile(path, floor)
}

// ScanText returns every match scoring at least floor, ordered by offset.
// Matches of different labels at the same offset keep library order.
func (d Detector) ScanText(text string, floor float64) []types.Finding {
	out := []types.Finding{}
	if text == "" {
		return out
	}
	for _, def := range d.Library.Definitions() {
		for _, loc := range matchSpans(def, text) {
			start, end := loc[0], loc[1]
			score, validated := d.Scorer.Score(def, text, start, end)
			if score < floor {
				continue
			}
			out = append(out, types.Finding{
				Label:     def.Label,
				Match:     text[start:end],
				Score:     score,
				Offset:    start,
				Validated: validated,
			})
		}
	}
	slices.SortStableFunc(out, func(a, b types.Finding) int { return cmp.Compare(a.Offset, b.Offset) })
	return out
}

// matchSpans returns the byte spans def matches in text. patterns.New rejects
// matchers that can match an empty span; one that still produces an empty
// match is a broken library and panics.
func matchSpans(def patterns.Definition, text string) [][]int {
	locs := def.Re.FindAllStringIndex(text, -1)
	for _, loc := range locs {
		if loc[0] == loc[1] {
			panic(fmt.Sprintf("engine: %s pattern %q matched an empty span at offset %d", def.Label, def.Re.String(), loc[0]))
		}
	}
	return locs
}

// ScanFile reads path, decodes it as text and scans it. Findings carry the
// path and 1-based line and column.
func (d Detector) ScanFile(path string, floor float64) ([]types.Finding, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}
	if looksBinary(b) {
		return nil, fmt.Errorf("%w: %s", ErrBinary, path)
	}
	text := decodeText(b)
	return locate(d.ScanText(text, floor), text, path), nil
}

// ScanReader reads r to the end and scans the decoded text. Findings carry
// line and column but no path.
func (d Detector) ScanReader(r io.Reader, floor float64) ([]types.Finding, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}
	if looksBinary(b) {
		return nil, ErrBinary
	}
	text := decodeText(b)
	return locate(d.ScanText(text, floor), text, ""), nil
}

// locate fills in path, line and column for findings taken from text.
func locate(fs []types.Finding, text, path string) []types.Finding {
	if len(fs) == 0 {
		return fs
	}
	starts := lineStarts(text)
	for i := range fs {
		off := fs[i].Offset
		ln := sort.Search(len(starts), func(j int) bool { return starts[j] > off }) - 1
		fs[i].Path = path
		fs[i].Line = ln + 1
		fs[i].Column = columnOf(text, starts[ln], off)
	}
	return fs
}

// ScanTree walks root and scans every eligible file. Directories whose name is
// in excluded are not descended into. Per-file failures are returned as
// FileErrors; only a missing root or a cancelled context is fatal.
func ScanTree(ctx context.Context, root string, floor float64, excluded []string) ([]types.Finding, []types.FileError, error) {
	res, err := ScanWithStats(ctx, Config{Root: root, Floor: floor, ExcludeDirs: excluded})
	if err != nil {
		return nil, nil, err
	}
	return res.Findings, res.FileErrors, nil
}

// Scan runs a scan and returns only findings (without stats).
func Scan(ctx context.Context, cfg Config) ([]types.Finding, error) {
	res, err := ScanWithStats(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return res.Findings, nil
}

// ScanWithStats scans cfg.Root, a directory tree or a single file, and returns
// findings along with per-file errors, timing and counts.
func ScanWithStats(ctx context.Context, cfg Config) (Result, error) {
	var result Result
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	started := time.Now()

	info, err := os.Stat(cfg.Root)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrInput, err)
	}
	det := NewDetector(cfg)

	if !info.IsDir() {
		if cfg.MaxBytes > 0 && info.Size() > cfg.MaxBytes {
			return result, fmt.Errorf("%w: %s: %d bytes exceeds limit of %d", ErrTooLarge, cfg.Root, info.Size(), cfg.MaxBytes)
		}
		fs, err := det.ScanFile(cfg.Root, cfg.Floor)
		if err != nil {
			return result, err
		}
		result.Findings = fs
		result.FilesScanned = 1
		result.Duration = time.Since(started)
		if cfg.Progress != nil {
			cfg.Progress()
		}
		return result, nil
	}

	ign, err := ignore.Load(filepath.Join(cfg.Root, ignore.FileName))
	if err != nil {
		log.Warn("ignore file not loaded", "path", ignore.FileName, "err", err)
	}
	items, err := collect(cfg, ign, log)
	if err != nil {
		return result, err
	}

	if cfg.Threads <= 0 {
		cfg.Threads = runtime.GOMAXPROCS(0)
	}
	slots := make([]fileOutcome, len(items))
	memo := newContentMemo()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Threads)
	for i, it := range items {
		if gctx.Err() != nil {
			break
		}
		if it.skip != nil {
			slots[i] = fileOutcome{fileErr: it.skip}
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			slots[i] = scanTarget(det, cfg.Floor, it, memo)
			if cfg.Progress != nil {
				cfg.Progress()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	result.Findings = []types.Finding{}
	for _, s := range slots {
		if s.fileErr != nil {
			log.Debug("file skipped", "path", s.fileErr.Path, "reason", s.fileErr.Reason, "err", s.fileErr.Err)
			result.FileErrors = append(result.FileErrors, *s.fileErr)
			continue
		}
		result.FilesScanned++
		result.Findings = append(result.Findings, s.findings...)
	}
	result.Duration = time.Since(started)
	log.Info("scan complete",
		"root", cfg.Root,
		"files", result.FilesScanned,
		"findings", len(result.Findings),
		"skipped", len(result.FileErrors),
		"duration", result.Duration)
	return result, nil
}

type fileOutcome struct {
	findings []types.Finding
	fileErr  *types.FileError
}

func scanTarget(det Detector, floor float64, it item, memo *contentMemo) fileOutcome {
	b, err := os.ReadFile(it.abs)
	if err != nil {
		return fileOutcome{fileErr: &types.FileError{Path: it.rel, Reason: types.SkipUnreadable, Err: err}}
	}
	if looksBinary(b) {
		return fileOutcome{fileErr: &types.FileError{Path: it.rel, Reason: types.SkipBinary}}
	}
	text := decodeText(b)
	key := xxhash.Sum64String(text)
	fs, ok := memo.get(key)
	if !ok {
		fs = det.ScanText(text, floor)
		memo.put(key, fs)
	}
	return fileOutcome{findings: locate(slices.Clone(fs), text, it.rel)}
}

// contentMemo caches findings by content hash so identical files in one run
// are scanned once. Stored slices are never handed out without cloning.
type contentMemo struct {
	mu sync.Mutex
	m  map[uint64][]types.Finding
}

func newContentMemo() *contentMemo {
	return &contentMemo{m: map[uint64][]types.Finding{}}
}

func (c *contentMemo) get(k uint64) ([]types.Finding, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fs, ok := c.m[k]
	return fs, ok
}

func (c *contentMemo) put(k uint64, fs []types.Finding) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[k] = slices.Clone(fs)
}

// allowedByGlobs returns true if the given path is allowed by the include/exclude
// glob configuration. Include globs are comma-separated and, if provided, act as
// a positive filter. Exclude globs are subtracted last.
func allowedByGlobs(relPath string, cfg Config) bool {
	rp := strings.ReplaceAll(relPath, "\\", "/")
	includes := parseGlobsList(cfg.IncludeGlobs)
	excludes := parseGlobsList(cfg.ExcludeGlobs)
	if len(includes) > 0 && !matchAnyGlob(rp, includes) {
		return false
	}
	if len(excludes) > 0 && matchAnyGlob(rp, excludes) {
		return false
	}
	return true
}

func parseGlobsList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p, trimGlobPrefix(p))
		}
	}
	return out
}

func matchAnyGlob(pathToMatch string, globs []string) bool {
	base := filepath.Base(pathToMatch)
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, pathToMatch); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, base); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}
