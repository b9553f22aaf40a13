package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ts4z/brochure/assets"
	"github.com/ts4z/brochure/features"
	"github.com/ts4z/brochure/i18n"
	"github.com/ts4z/brochure/settings"
	"github.com/ts4z/brochure/site"
	"github.com/ts4z/brochure/state"
)

// renderPage produces a page as a visitor with no preferences would first
// see it, features loaded.
func renderPage(ctx context.Context, storage state.FeatureStorage, cat *i18n.Catalog) ([]byte, error) {
	doc, err := site.NewDocument(cat)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	page := site.Init(ctx, doc, &site.Config{
		Lang:     cat.Lang,
		Store:    settings.NewMemoryStore(),
		Clock:    clock,
		Features: &features.StorageFetcher{Storage: storage, Lang: cat.Lang},
	})
	if err := page.Settle(ctx); err != nil {
		return nil, fmt.Errorf("can't settle %s page: %w", cat.Lang, err)
	}
	var buf bytes.Buffer
	doc.Update(func() { err = doc.Render(&buf) })
	if err != nil {
		return nil, fmt.Errorf("can't render %s page: %w", cat.Lang, err)
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// renderSite writes every language's page, its features.json and the static
// assets under dir.
func renderSite(ctx context.Context, storage state.FeatureStorage, dir string) ([]string, error) {
	written := []string{}
	for _, l := range i18n.Languages() {
		cat := i18n.Lookup(l)
		html, err := renderPage(ctx, storage, cat)
		if err != nil {
			return written, err
		}
		pagePath := filepath.Join(dir, filepath.FromSlash(cat.Path), "index.html")
		if err := writeFile(pagePath, html); err != nil {
			return written, err
		}
		written = append(written, pagePath)

		items, err := storage.FetchFeatures(ctx, l)
		if err != nil {
			return written, fmt.Errorf("fetching %s features: %w", l, err)
		}
		js, err := json.Marshal(items)
		if err != nil {
			return written, err
		}
		jsPath := filepath.Join(dir, filepath.FromSlash(cat.Path), "features.json")
		if err := writeFile(jsPath, js); err != nil {
			return written, err
		}
		written = append(written, jsPath)
	}

	err := fs.WalkDir(assets.FS, "fs", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(assets.FS, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(dir, filepath.FromSlash(path))
		written = append(written, dst)
		return writeFile(dst, data)
	})
	return written, err
}

func renderCmdRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	storage := newStorage(ctx)
	defer storage.Close()

	written, err := renderSite(ctx, storage, args[0])
	for _, p := range written {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return err
}

func renderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "render [dir]",
		Short: "Write the site as static files",
		Args:  cobra.ExactArgs(1),
		RunE:  renderCmdRun,
	}
}
