package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ts4z/brochure/bakery"
	"github.com/ts4z/brochure/config"
	"github.com/ts4z/brochure/ts"
)

var rotation = bakery.DefaultRotation

func listKeys(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	storage := newStorage(ctx)
	defer storage.Close()

	sc, err := storage.FetchSiteConfig(ctx)
	if err != nil {
		return fmt.Errorf("fetching site config: %w", err)
	}

	out := cmd.OutOrStdout()
	now := clock.Now()
	fmt.Fprintf(out, "Current keys (as of %v):\n\n", ts.Format(now))

	for i, key := range sc.CookieKeys {
		fmt.Fprintf(out, "Key %d:\n", i+1)
		fmt.Fprintf(out, "  Mint window:  %v to %v\n",
			ts.Format(key.Validity.MintFrom),
			ts.Format(key.Validity.MintUntil))
		fmt.Fprintf(out, "  Honor until: %v\n", ts.Format(key.Validity.HonorUntil))
		fmt.Fprintf(out, "  Status: %v\n\n", bakery.KeyStatus(now, key.Validity))
	}
	return nil
}

func rotateKeys(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	storage := newStorage(ctx)
	defer storage.Close()

	sc, err := storage.FetchSiteConfig(ctx)
	if err != nil {
		return fmt.Errorf("fetching site config: %w", err)
	}

	key, err := bakery.Rotate(sc, clock.Now(), rotation)
	if err != nil {
		return err
	}

	if err := storage.SaveSiteConfig(ctx, sc); err != nil {
		return fmt.Errorf("saving updated config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Key rotation complete:\n")
	fmt.Fprintf(out, "  Start minting: %v\n", ts.Format(key.Validity.MintFrom))
	fmt.Fprintf(out, "  Stop minting:  %v\n", ts.Format(key.Validity.MintUntil))
	fmt.Fprintf(out, "  Honor until:   %v\n", ts.Format(key.Validity.HonorUntil))
	fmt.Fprintf(out, "  Keys kept:     %d\n", len(sc.CookieKeys))
	return nil
}

// durationFlag parses Go durations as well as days and weeks.
func durationFlag(dst *time.Duration) func(string) error {
	return func(s string) error {
		d, err := config.ParseDuration(s)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}

func keyCommand() *cobra.Command {
	keyCmd := &cobra.Command{
		Short: "Manage cookie keys",
		Use:   "key",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List current keys and their status",
		RunE:  listKeys,
	}

	rotateCmd := &cobra.Command{
		Use:   "rotate",
		Short: "Remove expired keys and add a new key",
		RunE:  rotateKeys,
	}
	rotateCmd.Flags().Func("start-offset", "How long to wait before the key becomes valid (e.g. 1d)", durationFlag(&rotation.StartOffset))
	rotateCmd.Flags().Func("mint-duration", "How long the key should be valid for minting (default 180d)", durationFlag(&rotation.MintDuration))
	rotateCmd.Flags().Func("honor-offset", "How long after minting ends to honor the key (default 180d)", durationFlag(&rotation.HonorOffset))

	keyCmd.AddCommand(listCmd, rotateCmd)
	return keyCmd
}
