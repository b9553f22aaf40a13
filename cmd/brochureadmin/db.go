package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ts4z/brochure/assets"
	"github.com/ts4z/brochure/bakery"
	"github.com/ts4z/brochure/dbutil"
	"github.com/ts4z/brochure/he"
	"github.com/ts4z/brochure/model"
	"github.com/ts4z/brochure/state"
)

var (
	siteName      string
	cookieDomain  string
	originDomains []string
)

// initDB creates the schema and seeds anything missing: the bundled feature
// lists and a site config with one cookie key.  Existing rows are kept.
func initDB(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	sqlDB, err := dbutil.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	storage := state.NewDBStorage(sqlDB)
	defer storage.Close()

	if err := storage.InitSchema(ctx); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "schema ok\n")

	seed, err := state.ParseFeaturesYAML(assets.FeaturesYAML)
	if err != nil {
		return err
	}
	for l, items := range seed {
		_, err := storage.FetchFeatures(ctx, l)
		switch {
		case err == nil:
			fmt.Fprintf(out, "%s: features present, leaving them\n", l)
			continue
		case !he.IsNotFound(err):
			return fmt.Errorf("checking %s features: %w", l, err)
		}
		if err := storage.SaveFeatures(ctx, l, items); err != nil {
			return fmt.Errorf("seeding %s features: %w", l, err)
		}
		fmt.Fprintf(out, "%s: seeded %d features\n", l, len(items))
	}

	_, err = storage.FetchSiteConfig(ctx)
	switch {
	case err == nil:
		fmt.Fprintf(out, "site config present, leaving it\n")
		return nil
	case !he.IsNotFound(err):
		return fmt.Errorf("checking site config: %w", err)
	}
	key, err := bakery.NewKeyPair(clock.Now(), bakery.DefaultRotation)
	if err != nil {
		return err
	}
	sc := &model.SiteConfig{
		Name:                 siteName,
		CookieDomain:         cookieDomain,
		AllowedOriginDomains: originDomains,
		CookieKeys:           []model.CookieKeyPair{key},
	}
	if err := storage.SaveSiteConfig(ctx, sc); err != nil {
		return fmt.Errorf("saving site config: %w", err)
	}
	fmt.Fprintf(out, "site config created\n")
	return nil
}

func dbCommand() *cobra.Command {
	dbCmd := &cobra.Command{
		Short: "Database setup",
		Use:   "db",
	}
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create tables and seed defaults",
		RunE:  initDB,
	}
	initCmd.Flags().StringVar(&siteName, "name", "brochure", "Site name")
	initCmd.Flags().StringVar(&cookieDomain, "cookie-domain", "", "Domain for the theme cookie")
	initCmd.Flags().StringSliceVar(&originDomains, "origin", nil, "Domains allowed to fetch features.json cross-origin")
	dbCmd.AddCommand(initCmd)
	return dbCmd
}
