// Command vsearch finds a keyword in HTML and text documents, matching
// Traditional and Simplified Chinese variants of the same characters.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dl/vsearch/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, append(cli.LoadConfigArgs(), os.Args[1:]...), os.Stderr)
	stop()
	os.Exit(code)
}

func execute(ctx context.Context, args []string, stderr io.Writer) int {
	var cfg cli.Config
	var color string
	code := 0

	cmd := &cobra.Command{
		Use:   "vsearch [flags] KEYWORD [PATH...]",
		Short: "Search documents for a keyword, folding Chinese character variants",
		Long: `vsearch searches HTML and text documents for KEYWORD.

Directories are walked recursively, honouring .gitignore. With no PATH the
document is read from standard input. With --dict, text and keyword are both
passed through the variant table so that 資訊 matches 信息.

Default flags are read one per line from $` + cli.ConfigPathEnv + `, the user
config dir (vsearch/config) or ~/.vsearch.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := cli.ParseColorMode(color)
			if err != nil {
				return err
			}
			cfg.Color = mode
			cfg.Keyword = args[0]
			cfg.Paths = args[1:]
			code = cli.Run(cmd.Context(), cfg)
			return nil
		},
	}
	bindFlags(cmd.Flags(), &cfg, &color)
	cmd.SetArgs(args)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "vsearch: %v\n", err)
		return 2
	}
	return code
}

func bindFlags(f *pflag.FlagSet, cfg *cli.Config, color *string) {
	f.SortFlags = false

	f.BoolVarP(&cfg.MatchCase, "match-case", "c", false, "match case exactly")
	f.BoolVarP(&cfg.WholeWord, "whole-word", "w", false, "only match whole words")
	f.BoolVarP(&cfg.Regex, "regex", "e", false, "treat KEYWORD as a regular expression")
	f.BoolVarP(&cfg.Exact, "exact", "x", false, "match the literal text without variant folding")
	f.BoolVarP(&cfg.PCRE, "pcre", "P", false, "use PCRE for regular expressions (implies --regex)")
	f.StringVar(&cfg.Dictionary, "dict", "", "variant `table` (from<TAB>to per line)")

	f.BoolVar(&cfg.JSONOutput, "json", false, "print matches as JSON lines")
	f.BoolVar(&cfg.CountOnly, "count", false, "print only the number of matches per file")
	f.BoolVarP(&cfg.FileNamesOnly, "files-with-matches", "l", false, "print only names of files with matches")
	f.StringVar(color, "color", "auto", "when to use color: auto, always or never")
	f.IntVarP(&cfg.MaxColumns, "max-columns", "M", 0, "trim context to this many bytes around each match")

	f.BoolVar(&cfg.WatchMode, "watch", false, "keep running and re-search files as they change")
	f.BoolVar(&cfg.Overlays, "overlays", false, "with --watch, print highlight overlays to stderr")
	f.StringVar(&cfg.ExcludeID, "exclude-id", "", "skip the element with this `id` and its subtree")
	f.StringVar(&cfg.SettingsPath, "settings", "", "highlight settings `file` (YAML)")

	f.StringVarP(&cfg.Glob, "glob", "g", "", "only search files matching this glob")
	f.BoolVar(&cfg.NoIgnore, "no-ignore", false, "do not respect .gitignore files")
	f.BoolVar(&cfg.Hidden, "hidden", false, "search hidden files and directories")
	f.IntVarP(&cfg.Workers, "workers", "j", 0, "number of concurrent workers (0 = 2 x CPUs)")
	f.Int64Var(&cfg.MaxSize, "max-filesize", 0, "skip documents larger than this many bytes (0 = 64MiB)")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log debug output")
}
