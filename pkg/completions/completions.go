// Package completions registers cobra shell-completion callbacks for
// wl-format-filter's flags, mirroring the teacher's pkg/completions
// (a Completer type holding RegisterFlagCompletionFunc callbacks wired up
// from a single RegisterCompletions entry point).
package completions

import (
	"strings"

	"wlproxy/pkg/formatfilter"

	"github.com/spf13/cobra"
)

// Completer holds no state of its own — unlike the teacher's variant,
// wl-format-filter's completions are static (format names, log levels)
// rather than fetched from a remote service, so there is nothing to
// cache. The type is kept for parity with the teacher's shape and as a
// home for future stateful completions.
type Completer struct{}

func NewCompleter() *Completer {
	return &Completer{}
}

func (c *Completer) filterPrefix(candidates []string, toComplete string) []string {
	results := []string{}
	for _, candidate := range candidates {
		name := candidate
		if idx := strings.IndexByte(candidate, '\t'); idx >= 0 {
			name = candidate[:idx]
		}
		if strings.HasPrefix(name, toComplete) {
			results = append(results, candidate)
		}
	}
	return results
}

// CompleteFilterSpec completes a --allow/--deny argument against the known
// wl_shm/wl_drm pixel format names plus the "all" wildcard and the
// "linear"/"invalid" modifier keywords, since a filter spec is
// FORMAT[:MODIFIER].
func (c *Completer) CompleteFilterSpec(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	formatPart := toComplete
	prefix := ""
	if idx := strings.IndexByte(toComplete, ':'); idx >= 0 {
		prefix = toComplete[:idx+1]
		formatPart = toComplete[idx+1:]
		return c.completeModifier(prefix, formatPart), cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}

	candidates := make([]string, 0, len(formatfilter.WaylandFormats)+1)
	candidates = append(candidates, "all\tmatch every format")
	for name := range formatfilter.WaylandFormats {
		candidates = append(candidates, name)
	}
	return c.filterPrefix(candidates, formatPart), cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func (c *Completer) completeModifier(prefix, toComplete string) []string {
	modifiers := []string{
		"linear\tDRM_FORMAT_MOD_LINEAR",
		"invalid\tno explicit modifier",
	}
	matches := c.filterPrefix(modifiers, toComplete)
	results := make([]string, 0, len(matches))
	for _, m := range matches {
		results = append(results, prefix+m)
	}
	return results
}

// CompleteLogLevel completes --log-level against the levels pkg/logger
// understands.
func (c *Completer) CompleteLogLevel(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	levels := []string{
		"debug\tverbose, per-message tracing",
		"info\tconnection lifecycle events",
		"warn\trecoverable protocol errors",
		"error\tunrecoverable errors",
		"fatal\tprocess-ending errors",
		"panic\tpanic-and-exit errors",
	}
	return c.filterPrefix(levels, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// RegisterCompletions wires the Completer's callbacks onto the root
// command's own flags — there are no subcommands to search, since
// wl-format-filter's entire surface lives on rootCmd itself.
func RegisterCompletions(rootCmd *cobra.Command) {
	completer := NewCompleter()

	rootCmd.RegisterFlagCompletionFunc("allow", completer.CompleteFilterSpec)
	rootCmd.RegisterFlagCompletionFunc("deny", completer.CompleteFilterSpec)
	rootCmd.RegisterFlagCompletionFunc("log-level", completer.CompleteLogLevel)
}
