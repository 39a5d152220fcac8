package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/vocfr-backend/internal/app"
	"github.com/heartmarshall/vocfr-backend/internal/app/importer"
	"github.com/heartmarshall/vocfr-backend/internal/app/importer/corpus"
	"github.com/heartmarshall/vocfr-backend/internal/config"
	"github.com/heartmarshall/vocfr-backend/internal/domain"
)

const importTimeout = 30 * time.Minute

// env is what every store-backed subcommand starts from.
type env struct {
	cfg        *config.Config
	log        *slog.Logger
	store      importer.Store
	closeStore func()
}

func openEnv(ctx context.Context, g *globalFlags) (*env, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFile(g.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load app config: %w", err)
	}

	log := app.NewLogger(cfg.Log)
	store, closeStore, err := app.OpenStore(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, store: store, closeStore: closeStore}, nil
}

func importCmd(g *globalFlags) *cobra.Command {
	var (
		phases []string
		dryRun bool
		reset  bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import vocabulary, audio timestamps and catalogs into the store",
		Long: `Runs the import phases in order: ` + strings.Join(importer.Phases(), ", ") + `.
Each phase is skipped when its content is already stored. A phase whose file
is absent from the bundle is reported and the remaining phases still run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if reset && dryRun {
				return errors.New("--reset cannot be combined with --dry-run")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), importTimeout)
			defer cancel()

			icfg, err := importer.LoadConfig(g.importConfigPath)
			if err != nil {
				return err
			}
			// CLI flags override config.
			if dryRun {
				icfg.DryRun = true
			}

			e, err := openEnv(ctx, g)
			if err != nil {
				return err
			}
			defer e.closeStore()

			loader := corpus.NewLoader(e.log, os.DirFS(icfg.ContentDir), icfg.SearchDirs()...)
			pipeline := importer.NewPipeline(e.log, e.store, loader, *icfg)

			if reset {
				if err := pipeline.Importer().Reset(ctx); err != nil {
					return err
				}
				e.log.Info("stored content removed")
			}

			if err := pipeline.Run(ctx, phases); err != nil {
				return fmt.Errorf("pipeline failed: %w", err)
			}

			failed := writePhaseResults(cmd.OutOrStdout(), pipeline.Results())
			if failed > 0 {
				return fmt.Errorf("pipeline completed with errors in %d phase(s)", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&phases, "phase", nil, "phases to run, comma-separated (default: all)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and assemble without writing to the store")
	cmd.Flags().BoolVar(&reset, "reset", false, "delete stored content before importing")
	return cmd
}

// writePhaseResults prints one line per phase that ran and returns how many
// phases failed. A catalog phase whose file is absent is not a failure; the
// vocabulary is.
func writePhaseResults(w io.Writer, results map[string]importer.PhaseResult) int {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PHASE\tINSERTED\tSKIPPED\tDURATION\tSTATUS")

	failed := 0
	for _, phase := range importer.Phases() {
		r, ok := results[phase]
		if !ok {
			continue
		}
		status := "ok"
		switch {
		case r.IsMissingContent() && phase != importer.PhaseVocabulary:
			status = "no content"
		case r.Err != nil || r.Errors > 0:
			status = "failed"
			failed++
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", phase, r.Inserted, r.Skipped, r.Duration.Round(time.Millisecond), status)
	}
	_ = tw.Flush()
	return failed
}

func reportCmd(g *globalFlags) *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize stored content and audio coverage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx, g)
			if err != nil {
				return err
			}
			defer e.closeStore()

			out, err := app.BuildContentReport(ctx, e.store, os.DirFS(e.cfg.Assets.Dir), e.cfg.Assets, validate)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if err := out.Report.WriteText(w); err != nil {
				return err
			}
			if validate {
				fmt.Fprintf(w, "\n%d issue(s)\n", len(out.Issues))
				for _, issue := range out.Issues {
					fmt.Fprintln(w, issue.String())
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", false, "also list content issues (missing images, nouns without forms)")
	return cmd
}

func audioCmd(g *globalFlags) *cobra.Command {
	var sectionID string

	cmd := &cobra.Command{
		Use:   "audio <canonical>",
		Short: "Resolve playable audio for a word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx, g)
			if err != nil {
				return err
			}
			defer e.closeStore()

			graph, err := e.store.LoadGraph(ctx)
			if err != nil {
				return fmt.Errorf("load graph: %w", err)
			}

			word, ok := graph.WordByID(args[0])
			if !ok {
				return fmt.Errorf("word %q: %w", args[0], domain.ErrNotFound)
			}
			var section *domain.Section
			if sectionID != "" {
				if section, ok = graph.SectionByID(sectionID); !ok {
					return fmt.Errorf("section %q: %w", sectionID, domain.ErrNotFound)
				}
			}

			resolver, err := app.NewAudioResolver(e.log, os.DirFS(e.cfg.Assets.Dir), e.cfg.Assets)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			ref, ok := resolver.Resolve(word, section)
			switch {
			case !ok:
				fmt.Fprintln(w, "no audio available")
			case ref.IsSegment():
				fmt.Fprintf(w, "%s\t%s [%.3f-%.3f]\n", ref.Strategy, ref.Path, ref.Start, ref.End)
			default:
				fmt.Fprintf(w, "%s\t%s\n", ref.Strategy, ref.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sectionID, "section", "", "section the word is shown in (default: its first section)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vocfr %s\n", app.BuildVersion())
		},
	}
}
