package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill"
)

var (
	outputPath string
	watchMode  bool
)

var fillCmd = &cobra.Command{
	Use:   "fill TEMPLATE CONTEXT",
	Short: "Fill a template with a JSON or YAML context",
	Long: `Fill TEMPLATE with the values of CONTEXT and write the result to --output.

Unresolved placeholders are reported as warnings. With --strict, an unbound
relationship, a table that cannot be populated or an unbound picture stops
the fill and no output is written.`,
	Args: cobra.ExactArgs(2),
	RunE: runFill,
}

func init() {
	fillCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (required)")
	fillCmd.Flags().Bool("strict", false, "Fail on unresolved relationships, tables and pictures")
	fillCmd.Flags().String("delimiter", deckfill.DefaultDelimiter, "Token delimiter")
	fillCmd.Flags().Int("workers", 1, "Number of slides filled concurrently")
	fillCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Fill again whenever the template or context changes")
	fillCmd.MarkFlagRequired("output")
}

func runFill(cmd *cobra.Command, args []string) error {
	templatePath, contextPath := args[0], args[1]

	engine, err := newEngine()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fill := func(ctx context.Context) error {
		return fillOnce(ctx, engine, templatePath, contextPath, outputPath, cmd.OutOrStdout())
	}

	if !watchMode {
		return fill(ctx)
	}
	if err := fill(ctx); err != nil {
		logger.Error("fill failed", zap.Error(err))
	}
	return watch(ctx, []string{templatePath, contextPath}, fill)
}

// newEngine builds an engine from the loaded configuration. Templates are
// read from disk on every fill so that watch mode sees edits.
func newEngine() (*deckfill.Engine, error) {
	return deckfill.New(deckfill.Options{
		Delimiter:  cfg.Delimiter,
		StrictMode: cfg.StrictMode,
		Workers:    cfg.Workers,
		Logger:     logger,
	})
}

func fillOnce(ctx context.Context, engine *deckfill.Engine, templatePath, contextPath, out string, w io.Writer) error {
	data, err := deckfill.LoadContextFile(contextPath)
	if err != nil {
		return err
	}
	report, err := engine.FillFile(ctx, templatePath, out, data)
	if err != nil {
		return err
	}
	printReport(w, out, report)
	return nil
}

func printReport(w io.Writer, out string, r *deckfill.Report) {
	fmt.Fprintf(w, "Wrote %s\n", out)
	fmt.Fprintf(w, "  slides:           %d\n", r.Slides)
	fmt.Fprintf(w, "  tokens replaced:  %d\n", r.TokensReplaced)
	fmt.Fprintf(w, "  tables expanded:  %d (%d rows)\n", r.TablesExpanded, r.RowsGenerated)
	fmt.Fprintf(w, "  pictures:         %d\n", len(r.Pictures))
	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "  warnings:         %d\n", len(r.Warnings))
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "    - %s\n", warning)
		}
	}
}
