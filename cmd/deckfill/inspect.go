package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill"
	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/pptx"
)

var (
	inspectContext string
	inspectJSON    bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect TEMPLATE",
	Short: "List the placeholders of a template",
	Long: `List the tokens, relationship tables and picture placeholders of TEMPLATE.

With --context, keys the template needs but the context does not bind are
listed as missing.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectContext, "context", "", "Context file to check against the template")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Print the inventory as JSON")
	inspectCmd.Flags().String("delimiter", deckfill.DefaultDelimiter, "Token delimiter")
}

func runInspect(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}
	pres, err := pptx.OpenFile(args[0])
	if err != nil {
		return err
	}

	var data deckfill.Context
	if inspectContext != "" {
		if data, err = deckfill.LoadContextFile(inspectContext); err != nil {
			return err
		}
	}

	inv := engine.Inspect(pres, data)
	if inspectJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(inv)
	}
	printInventory(cmd.OutOrStdout(), engine.Codec(), inv, data != nil)
	return nil
}

func printInventory(w io.Writer, codec deckfill.Codec, inv *deckfill.Inventory, checked bool) {
	fmt.Fprintf(w, "Tokens (%d):\n", len(inv.Tokens))
	for _, t := range inv.Tokens {
		fmt.Fprintf(w, "  slide %d  %-24s %-8s %s\n", t.Slide, t.Shape, t.Location, codec.Wrap(t.Key))
	}
	fmt.Fprintf(w, "Relationships (%d):\n", len(inv.Relationships))
	for _, r := range inv.Relationships {
		fmt.Fprintf(w, "  slide %d  %-24s %s [%s]\n", r.Slide, r.Shape, r.Name, strings.Join(r.Fields, ", "))
	}
	fmt.Fprintf(w, "Pictures (%d):\n", len(inv.Pictures))
	for _, p := range inv.Pictures {
		g := p.Geometry
		fmt.Fprintf(w, "  slide %d  %-24s %s at (%d,%d) %dx%d\n", p.Slide, p.Shape, p.ID, g.Left, g.Top, g.Width, g.Height)
	}
	if checked {
		if len(inv.MissingKeys) == 0 {
			fmt.Fprintln(w, "All keys are bound.")
			return
		}
		fmt.Fprintf(w, "Missing keys (%d):\n", len(inv.MissingKeys))
		for _, k := range inv.MissingKeys {
			fmt.Fprintf(w, "  %s\n", k)
		}
	}
}
