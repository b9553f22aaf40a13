package main

import (
	"context"
	"io/fs"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/ts4z/brochure/app/handlers"
	"github.com/ts4z/brochure/assets"
	"github.com/ts4z/brochure/bakery"
	"github.com/ts4z/brochure/config"
	"github.com/ts4z/brochure/dbcache"
	"github.com/ts4z/brochure/dbnotify"
	"github.com/ts4z/brochure/dbutil"
	"github.com/ts4z/brochure/state"
	"github.com/ts4z/brochure/ts"
	"github.com/ts4z/brochure/webapp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	config.Init()

	clock := ts.NewRealClock()
	subFS, err := fs.Sub(assets.FS, "fs")
	if err != nil {
		log.Fatalf("fs.Sub: %v", err)
	}

	unprotectedStorage, db, err := dbutil.OpenStorage(ctx, clock.Now())
	if err != nil {
		log.Fatalf("can't configure storage: %v", err)
	}
	defer unprotectedStorage.Close()

	featureStorage := dbcache.NewFeatureStorage(dbcache.FeatureStorageCacheSize, unprotectedStorage)
	siteStorage := dbcache.NewSiteConfigStorage(unprotectedStorage, clock)

	pingers := []handlers.Pinger{}
	if db != nil {
		pingers = append(pingers, db.DB())
		listener, err := dbnotify.NewDBNotifyListener(db.DB(),
			dbnotify.NewChangeDispatcher(state.FeaturesTable, featureStorage, featureStorage),
			dbnotify.NewChangeDispatcher(state.SiteConfigTable, siteStorage, nil))
		if err != nil {
			log.Fatalf("can't set up change listener: %v", err)
		}
		go listener.ListenForever(ctx)
	}

	app, err := webapp.New(ctx, &webapp.Config{
		FeatureStorage: featureStorage,
		SiteStorage:    siteStorage,
		BakeryFactory: bakery.NewFactory(clock, siteStorage, bakery.Options{
			Secure: config.SecureCookies(),
			MaxAge: 365 * 24 * time.Hour,
		}),
		SubFS:          subFS,
		Clock:          clock,
		FeaturesURL:    config.FeaturesURL(),
		SendDelay:      config.SendDelay(),
		StatusDuration: config.StatusDuration(),
		Caching:        config.Caching(),
		Pingers:        pingers,
	})
	if err != nil {
		log.Fatalf("can't start: %v", err)
	}

	log.Printf("listening on %s", config.ListenAddress())
	if err := app.Serve(ctx, config.ListenAddress()); err != nil {
		log.Fatalf("can't serve: %v", err)
	}
}
