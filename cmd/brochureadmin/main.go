package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/ts4z/brochure/config"
	"github.com/ts4z/brochure/dbutil"
	"github.com/ts4z/brochure/state"
)

var clock clockwork.Clock = clockwork.NewRealClock()

func newStorage(ctx context.Context) state.Storage {
	if config.SQLConnector() == config.ConnectorBuiltin {
		log.Printf("using builtin storage; changes will not be saved")
	}
	storage, _, err := dbutil.OpenStorage(ctx, clock.Now())
	if err != nil {
		log.Fatalf("can't open storage: %v", err)
	}
	return storage
}

func main() {
	config.Init()

	rootCmd := &cobra.Command{
		Short: "Brochure administration tool",
		Use:   "brochureadmin",
	}
	rootCmd.AddCommand(keyCommand(), featuresCommand(), dbCommand(), renderCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
