package piiscan

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/redactyl/piiscan/internal/config"
	"github.com/redactyl/piiscan/internal/types"
)

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt(cli int, local, global *int) int {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

// pickFlag is for flags whose zero value is meaningful: an explicitly set
// flag wins, then the local and global files, then the flag default.
func pickFlag[T any](cmd *cobra.Command, name string, cli T, local, global *T) T {
	if cmd.Flags().Changed(name) {
		return cli
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return cli
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

// loadConfigs returns the global and repo-local configs. Missing files are
// not an error; unreadable or malformed ones are.
func loadConfigs(dir string) (global, local config.FileConfig, err error) {
	if _, perr := config.GlobalPath(); perr == nil {
		if global, err = config.LoadGlobal(); err != nil && !errors.Is(err, config.ErrNotFound) {
			return global, local, err
		}
	}
	if local, err = config.LoadLocal(dir); err != nil && !errors.Is(err, config.ErrNotFound) {
		return global, local, err
	}
	return global, local, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseLabels converts names to labels, rejecting unknown names.
func parseLabels(names []string) ([]types.Label, error) {
	var out []types.Label
	for _, n := range names {
		l, ok := types.ParseLabel(n)
		if !ok {
			return nil, &unknownLabelError{name: n}
		}
		out = append(out, l)
	}
	return out, nil
}

type unknownLabelError struct {
	name string
}

func (e *unknownLabelError) Error() string {
	names := make([]string, 0, len(types.AllLabels()))
	for _, l := range types.AllLabels() {
		names = append(names, string(l))
	}
	return "unknown label " + e.name + " (available: " + strings.Join(names, ", ") + ")"
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
