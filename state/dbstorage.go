package state

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ts4z/brochure/he"
	"github.com/ts4z/brochure/model"
)

//go:embed schema.sql
var Schema string

type DBStorage struct {
	db *sql.DB
}

var _ Storage = &DBStorage{}

func NewDBStorage(db *sql.DB) *DBStorage {
	return &DBStorage{db: db}
}

// DB is exposed for dbnotify, which needs its own connection.
func (s *DBStorage) DB() *sql.DB {
	return s.db
}

func (s *DBStorage) Close() {
	s.db.Close()
}

// InitSchema creates missing tables.
func (s *DBStorage) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("can't create schema: %w", err)
	}
	return nil
}

func (s *DBStorage) FetchFeatures(ctx context.Context, lang string) ([]model.FeatureItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, description FROM features WHERE lang=$1 ORDER BY position`, lang)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.FeatureItem{}
	for rows.Next() {
		var it model.FeatureItem
		if err := rows.Scan(&it.Title, &it.Desc); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	if len(items) == 0 {
		return nil, he.HTTPCodedErrorf(404, "no features for language %q", lang)
	}
	return items, nil
}

func (s *DBStorage) FetchFeatureLangs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT lang FROM features ORDER BY lang`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	langs := []string{}
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		langs = append(langs, l)
	}
	return langs, rows.Err()
}

// notify queues a change notification; Postgres delivers it on commit.
func notify(ctx context.Context, tx *sql.Tx, table, key string) error {
	payload, err := json.Marshal(&NotificationEvent{Table: table, Key: key})
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, table+"_changes", string(payload))
	return err
}

// SaveFeatures replaces a language's list.
func (s *DBStorage) SaveFeatures(ctx context.Context, lang string, items []model.FeatureItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM features WHERE lang=$1`, lang); err != nil {
		return fmt.Errorf("can't clear %s features: %w", lang, err)
	}
	for i, it := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO features (lang, position, title, description) VALUES ($1, $2, $3, $4)`,
			lang, i, it.Title, it.Desc); err != nil {
			return fmt.Errorf("can't insert feature %d: %w", i, err)
		}
	}
	if err := notify(ctx, tx, FeaturesTable, lang); err != nil {
		return fmt.Errorf("can't notify: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Printf("wrote %d %s features", len(items), lang)
	return nil
}

func (s *DBStorage) FetchSiteConfig(ctx context.Context) (*model.SiteConfig, error) {
	var bytes []byte
	err := s.db.QueryRowContext(ctx, `SELECT model_data FROM site_config WHERE site_config_id=1`).Scan(&bytes)
	if err == sql.ErrNoRows {
		return nil, he.HTTPCodedErrorf(404, "no site config; run brochureadmin db init")
	}
	if err != nil {
		return nil, err
	}
	config := &model.SiteConfig{}
	if err := json.Unmarshal(bytes, config); err != nil {
		return nil, fmt.Errorf("can't decode site config: %w", err)
	}
	return config, nil
}

func (s *DBStorage) SaveSiteConfig(ctx context.Context, config *model.SiteConfig) error {
	bytes, err := json.Marshal(config)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO site_config (site_config_id, model_data) VALUES (1, $1)
		 ON CONFLICT (site_config_id) DO UPDATE
		 SET model_data=EXCLUDED.model_data, optimistic_lock=site_config.optimistic_lock+1`,
		bytes); err != nil {
		return fmt.Errorf("can't save site config: %w", err)
	}
	if err := notify(ctx, tx, SiteConfigTable, ""); err != nil {
		return fmt.Errorf("can't notify: %w", err)
	}
	return tx.Commit()
}
