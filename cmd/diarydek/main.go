package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/diarydek/diarydek/internal/config"
	"github.com/diarydek/diarydek/internal/domain"
	"github.com/diarydek/diarydek/internal/journal"
	"github.com/diarydek/diarydek/internal/query"
)

const version = "0.4.0"

const longHelp = `diarydek: a commandline tool for adding entries to a diary database.

Merging databases:

    diarydek --database ~/a.db export > a.csv
    diarydek --database ~/b.db export > b.csv
    diarydek --database ~/ab.db import a.csv
    diarydek --database ~/ab.db import b.csv

Start-up file (~/.diarydekrc, JSON):

    {
        "database": "~/Dropbox/diarydek.db",
        "separator": ":"
    }`

// app holds what the root command resolves before any subcommand runs
type app struct {
	rcFile   string
	database string
	debug    bool

	cfg config.Config
	log *slog.Logger
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if domain.IsUsage(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "diarydek",
		Short:         "Keep a tagged diary in a local database",
		Long:          longHelp,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.rcFile, "config", config.DefaultRCFile, "start-up file")
	rootCmd.PersistentFlags().StringVar(&a.database, "database", "", "database location (defaults to "+config.DefaultDatabase+")")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "turn on tracer information")

	rootCmd.AddCommand(a.addCmd())
	rootCmd.AddCommand(a.listCmd())
	rootCmd.AddCommand(a.tagsCmd())
	rootCmd.AddCommand(a.renameTagCmd())
	rootCmd.AddCommand(a.exportCmd())
	rootCmd.AddCommand(a.importCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func (a *app) setup(stderr io.Writer) error {
	level := slog.LevelInfo
	if a.debug {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(a.rcFile)
	if err != nil {
		return err
	}
	if a.database != "" {
		cfg.Database = a.database
	}
	a.cfg = cfg

	a.log.Debug("configuration", "rc", a.rcFile, "database", cfg.Database, "separator", cfg.Separator)
	return nil
}

func (a *app) open(ctx context.Context) (*journal.Journal, error) {
	return journal.Open(ctx, a.cfg, a.log)
}

// splitWords separates the words before the separator token from the tags after it
func splitWords(words []string, sep string) (string, []string) {
	for i, w := range words {
		if w == sep {
			return strings.Join(words[:i], " "), words[i+1:]
		}
	}
	return strings.Join(words, " "), nil
}

func (a *app) addCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "add words... [: tag...]",
		Short: "Add a diary entry, optionally followed by tags after the separator",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, tags := splitWords(args, a.cfg.Separator)
			if strings.TrimSpace(body) == "" {
				return domain.ErrEmptyEntry
			}

			stamp := domain.NewDateTime(time.Now())
			if at != "" {
				s, err := domain.ParseStamp(at)
				if err != nil {
					return err
				}
				stamp = s.Canonical()
			}

			j, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer j.Close()

			entry, err := j.AddEntry(cmd.Context(), stamp, body, tags)
			if err != nil {
				return err
			}
			a.log.Debug("added", "id", entry.ID, "stamp", entry.Stamp.Raw, "tags", tags)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "time", "", `time of item, "yyyy-mm-dd" or "yyyy-mm-dd HH:MM:SS" (defaults to now)`)
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var since string

	cmd := &cobra.Command{
		Use:   "list [words...] [: tag]",
		Short: "Print entries, optionally filtered by text, one tag, or time",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, tags := splitWords(args, a.cfg.Separator)

			var cutoff *domain.Stamp
			if since != "" {
				s, err := domain.ParseStamp(since)
				if err != nil {
					return err
				}
				cutoff = &s
			}

			// reject bad filters before the database file is created or opened
			filter := query.Filter{Text: text, Tags: tags, Since: cutoff}
			if err := filter.Validate(); err != nil {
				return err
			}

			j, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer j.Close()

			listed, err := j.ListEntries(cmd.Context(), text, tags, cutoff)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, l := range listed {
				fmt.Fprintf(out, "%s %s", l.Stamp.Raw, l.Body)
				if len(l.Tags) > 0 {
					fmt.Fprintf(out, " : %s", strings.Join(l.Tags, " "))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "restrict to entries after yyyy-mm-dd or 'yyyy-mm-dd HH:MM:SS'")
	return cmd
}

func (a *app) tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "Show tags in database, with counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer j.Close()

			counts, err := j.TagCounts(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Tags in database, with counts:")
			for _, c := range counts {
				fmt.Fprintf(out, " %10s: %d\n", c.Text, c.Count)
			}
			return nil
		},
	}
}

func (a *app) renameTagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename-tag old new",
		Short: "Rename a tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer j.Close()

			return j.RenameTag(cmd.Context(), args[0], args[1])
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all entries in a format that import can read back",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "xlsx" {
				return fmt.Errorf("unknown format %q (want csv or xlsx)", format)
			}

			j, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer j.Close()

			if output == "" || output == "-" {
				return export(cmd.Context(), j, format, cmd.OutOrStdout())
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := export(cmd.Context(), j, format, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", output, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func export(ctx context.Context, j *journal.Journal, format string, w io.Writer) error {
	if format == "xlsx" {
		return j.ExportXLSX(ctx, w)
	}
	return j.ExportCSV(ctx, w)
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file.csv|-]",
		Short: "Add entries from a CSV file written by export",
		Long:  "Add entries from a CSV file written by export. Entries are appended, never deduplicated. If any row is malformed nothing is imported.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open %s: %w", args[0], err)
				}
				defer f.Close()
				in = f
			}

			j, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer j.Close()

			n, err := j.ImportCSV(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.log.Info("import complete", "entries", n)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show application version number",
		Args:  cobra.NoArgs,
		// no start-up file or database needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "diarydek version %s\n", version)
			return nil
		},
	}
}
