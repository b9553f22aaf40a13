package dbutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/ts4z/brochure/assets"
	"github.com/ts4z/brochure/config"
	"github.com/ts4z/brochure/state"
)

type cloudEnvSettings struct {
	dbUser,
	dbPwd,
	dbName,
	instanceConnectionName,
	usePrivate string
}

func (s *cloudEnvSettings) getenv() error {
	unset := []string{}
	getenv := func(k string) string {
		v := os.Getenv(k)
		if v == "" {
			unset = append(unset, k)
		}
		return v
	}

	s.dbUser = getenv("DB_USER")                                  // e.g. 'my-db-user'
	s.dbPwd = getenv("DB_PASS")                                   // e.g. 'my-db-password'
	s.dbName = getenv("DB_NAME")                                  // e.g. 'my-database'
	s.instanceConnectionName = getenv("INSTANCE_CONNECTION_NAME") // e.g. 'project:region:instance'
	s.usePrivate = os.Getenv("PRIVATE_IP")

	if len(unset) > 0 {
		return fmt.Errorf("cloudsqlconn: unset variables: %+v", unset)
	}
	return nil
}

func connectWithConnector(ctx context.Context) (*sql.DB, error) {
	env := &cloudEnvSettings{}
	if err := env.getenv(); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("user=%s password=%s database=%s", env.dbUser, env.dbPwd, env.dbName)
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	var opts []cloudsqlconn.Option
	if env.usePrivate != "" {
		opts = append(opts, cloudsqlconn.WithDefaultDialOptions(cloudsqlconn.WithPrivateIP()))
	}
	// Refresh on demand rather than in the background; we run on
	// serverless instances that get their CPU throttled.
	opts = append(opts, cloudsqlconn.WithLazyRefresh())
	d, err := cloudsqlconn.NewDialer(ctx, opts...)
	if err != nil {
		return nil, err
	}
	config.DialFunc = func(ctx context.Context, network, instance string) (net.Conn, error) {
		return d.Dial(ctx, env.instanceConnectionName)
	}
	dbURI := stdlib.RegisterConnConfig(config)
	dbPool, err := sql.Open("pgx", dbURI)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	return dbPool, nil
}

func connectWithPgx(ctx context.Context) (*sql.DB, error) {
	url := config.DBURL()
	if url == "" {
		return nil, errors.New("database URL is empty")
	}
	log.Printf("Connecting to database")
	return sql.Open("pgx", url)
}

// Connect opens the configured SQL database.  It fails for the builtin
// connector, which has no database.
func Connect(ctx context.Context) (*sql.DB, error) {
	factories := map[string]func(context.Context) (*sql.DB, error){
		config.ConnectorCloudSQL: connectWithConnector,
		config.ConnectorPGX:      connectWithPgx,
	}
	factory, ok := factories[config.SQLConnector()]
	if !ok {
		return nil, fmt.Errorf("sql connector %q has no database", config.SQLConnector())
	}
	return factory(ctx)
}

// OpenStorage returns the configured storage.  db is nil for the builtin
// store.
func OpenStorage(ctx context.Context, now time.Time) (storage state.Storage, db *state.DBStorage, err error) {
	if config.SQLConnector() == config.ConnectorBuiltin {
		bs, err := state.NewBuiltinStorage(assets.FeaturesYAML, now)
		if err != nil {
			return nil, nil, err
		}
		return bs, nil, nil
	}
	sqlDB, err := Connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	dbs := state.NewDBStorage(sqlDB)
	return dbs, dbs, nil
}
