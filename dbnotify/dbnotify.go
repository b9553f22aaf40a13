/*
package dbnotify provides a backchannel from the database so each server
drops cached rows that another process changed.  Storage sends a
state.NotificationEvent on "<table>_changes" inside the writing transaction.
*/
package dbnotify

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/ts4z/brochure/state"
)

const (
	sleepOnErrorTime = 5 * time.Second
)

type Consumer interface {
	TableName() string
	Consume(ctx context.Context, event *state.NotificationEvent)
}

type CacheStorage interface {
	CacheInvalidate(ctx context.Context, key string)
}

// Warmer re-reads a key after invalidation, so the next request doesn't
// pay for it.
type Warmer interface {
	Warm(ctx context.Context, key string) error
}

// ChangeDispatcher is a Consumer that invalidates a cache and optionally
// reads through it again.
type ChangeDispatcher struct {
	tableName string
	cache     CacheStorage
	warmer    Warmer
}

func NewChangeDispatcher(tableName string, cache CacheStorage, warmer Warmer) *ChangeDispatcher {
	return &ChangeDispatcher{
		tableName: tableName,
		cache:     cache,
		warmer:    warmer,
	}
}

func (cd *ChangeDispatcher) TableName() string {
	return cd.tableName
}

func (cd *ChangeDispatcher) Consume(ctx context.Context, event *state.NotificationEvent) {
	cd.cache.CacheInvalidate(ctx, event.Key)
	if cd.warmer == nil {
		return
	}
	if err := cd.warmer.Warm(ctx, event.Key); err != nil {
		log.Printf("can't warm %s %q after notification: %v", cd.tableName, event.Key, err)
	}
}

type DBNotifyListener struct {
	db                  *sql.DB
	tableNameToConsumer map[string]Consumer
}

func NewDBNotifyListener(db *sql.DB, consumers ...Consumer) (*DBNotifyListener, error) {
	m := make(map[string]Consumer)
	for _, c := range consumers {
		tableName := c.TableName()
		if _, exists := m[tableName]; exists {
			return nil, fmt.Errorf("duplicate consumer for table %s", tableName)
		}
		m[tableName] = c
	}
	return &DBNotifyListener{db: db, tableNameToConsumer: m}, nil
}

func channelFor(table string) string {
	return table + "_changes"
}

func parseEvent(payload string) (*state.NotificationEvent, error) {
	event := &state.NotificationEvent{}
	if err := json.Unmarshal([]byte(payload), event); err != nil {
		return nil, fmt.Errorf("can't unmarshal notification payload %q: %w", payload, err)
	}
	if event.Table == "" {
		return nil, fmt.Errorf("notification payload %q names no table", payload)
	}
	return event, nil
}

// Dispatch hands event to its table's consumer.
func (cl *DBNotifyListener) Dispatch(ctx context.Context, event *state.NotificationEvent) bool {
	c, ok := cl.tableNameToConsumer[event.Table]
	if !ok {
		log.Printf("no listener for table %s", event.Table)
		return false
	}
	c.Consume(ctx, event)
	return true
}

// Listen blocks, consuming notifications until ctx ends or the connection
// fails.
func (cl *DBNotifyListener) Listen(ctx context.Context) error {
	conn, err := cl.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	var pgxConn *stdlib.Conn
	err = conn.Raw(func(driverConn any) error {
		pgxConn = driverConn.(*stdlib.Conn)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to get pgx connection: %w", err)
	}

	for table := range cl.tableNameToConsumer {
		channel := channelFor(table)
		if _, err := pgxConn.Conn().Exec(ctx, "LISTEN "+channel); err != nil {
			return fmt.Errorf("failed to listen on channel %s: %w", channel, err)
		}
	}

	for {
		var notification *pgconn.Notification
		if nf, err := pgxConn.Conn().WaitForNotification(ctx); err == nil {
			notification = nf
		} else {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("error waiting for notification: %w", err)
		}

		log.Printf("(received db notification %d %s)", notification.PID, notification.Payload)

		event, err := parseEvent(notification.Payload)
		if err != nil {
			log.Print(err)
			time.Sleep(sleepOnErrorTime)
			continue
		}
		cl.Dispatch(ctx, event)
	}
}

// ListenForever restarts Listen after failures until ctx ends.
func (cl *DBNotifyListener) ListenForever(ctx context.Context) {
	for {
		err := cl.Listen(ctx)
		if ctx.Err() != nil {
			return
		}
		log.Printf("db notification listener stopped: %v; restarting", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(sleepOnErrorTime):
		}
	}
}
