package main

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/ts4z/brochure/i18n"
	"github.com/ts4z/brochure/model"
	"github.com/ts4z/brochure/state"
	"github.com/ts4z/brochure/textutil"
)

var (
	listJSON  bool
	importAll bool
)

// isTerminal reports whether w is a terminal, for picking table or JSON
// output.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeFeatureTable(w io.Writer, byLang map[string][]model.FeatureItem, langs []string) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "lang\t#\ttitle\tdesc\n")
	for _, l := range langs {
		for i, it := range byLang[l] {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", l, i+1, it.Title, textutil.Truncate(it.Desc, 50))
		}
	}
	return tw.Flush()
}

func fetchAllFeatures(ctx context.Context, storage state.FeatureStorage) (map[string][]model.FeatureItem, []string, error) {
	langs, err := storage.FetchFeatureLangs(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching feature languages: %w", err)
	}
	byLang := map[string][]model.FeatureItem{}
	for _, l := range langs {
		items, err := storage.FetchFeatures(ctx, l)
		if err != nil {
			return nil, nil, fmt.Errorf("fetching %s features: %w", l, err)
		}
		byLang[l] = items
	}
	return byLang, langs, nil
}

func listFeatures(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	storage := newStorage(ctx)
	defer storage.Close()

	byLang, langs, err := fetchAllFeatures(ctx, storage)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if listJSON || !isTerminal(out) {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(byLang)
	}
	return writeFeatureTable(out, byLang, langs)
}

// sanitizeFeatures strips markup from imported copy.  Cards are rendered
// escaped anyway; this keeps stray tags out of storage and features.json.
func sanitizeFeatures(byLang map[string][]model.FeatureItem) (dropped int) {
	p := bluemonday.StrictPolicy()
	for l, items := range byLang {
		kept := items[:0]
		for _, it := range items {
			// Sanitize escapes what it keeps; cards escape again on render.
			it.Title = strings.TrimSpace(html.UnescapeString(p.Sanitize(it.Title)))
			it.Desc = strings.TrimSpace(html.UnescapeString(p.Sanitize(it.Desc)))
			if it.Title == "" {
				dropped++
				continue
			}
			kept = append(kept, it)
		}
		byLang[l] = kept
	}
	return dropped
}

func readFeatures(path string) (map[string][]model.FeatureItem, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return state.ParseFeaturesYAML(data)
}

func importFeatures(cmd *cobra.Command, args []string) error {
	byLang, err := readFeatures(args[0])
	if err != nil {
		return err
	}
	if n := sanitizeFeatures(byLang); n > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "dropped %d items with no title\n", n)
	}

	ctx := context.Background()
	storage := newStorage(ctx)
	defer storage.Close()

	for l, items := range byLang {
		if !i18n.Supported(l) && !importAll {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipping unsupported language %q (use --all)\n", l)
			continue
		}
		if err := storage.SaveFeatures(ctx, l, items); err != nil {
			return fmt.Errorf("saving %s features: %w", l, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d features\n", l, len(items))
	}
	return nil
}

func exportFeatures(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	storage := newStorage(ctx)
	defer storage.Close()

	byLang, _, err := fetchAllFeatures(ctx, storage)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(byLang); err != nil {
		return fmt.Errorf("encoding features: %w", err)
	}
	return enc.Close()
}

func featuresCommand() *cobra.Command {
	featuresCmd := &cobra.Command{
		Short: "Manage the feature cards",
		Use:   "features",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List features; a table on a terminal, JSON otherwise",
		RunE:  listFeatures,
	}
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Always print JSON")

	importCmd := &cobra.Command{
		Use:   "import [file.yaml|-]",
		Short: "Replace feature lists from YAML keyed by language",
		Args:  cobra.ExactArgs(1),
		RunE:  importFeatures,
	}
	importCmd.Flags().BoolVar(&importAll, "all", false, "Import languages the site has no pages for")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Print all feature lists as YAML",
		RunE:  exportFeatures,
	}

	featuresCmd.AddCommand(listCmd, importCmd, exportCmd)
	return featuresCmd
}
