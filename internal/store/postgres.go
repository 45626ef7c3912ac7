package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/marketlens/scout/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS listings (
	id           BIGSERIAL PRIMARY KEY,
	source       TEXT        NOT NULL,
	title        TEXT        NOT NULL,
	price        BIGINT      NOT NULL,
	price_text   TEXT        NOT NULL DEFAULT '',
	image_url    TEXT        NOT NULL DEFAULT '',
	product_url  TEXT        NOT NULL,
	location     TEXT        NOT NULL DEFAULT '',
	condition    TEXT        NOT NULL DEFAULT '',
	seller_name  TEXT        NOT NULL DEFAULT '',
	captured_at  TIMESTAMPTZ NOT NULL,
	UNIQUE (source, product_url)
);
CREATE INDEX IF NOT EXISTS listings_source_price_idx ON listings (source, price);
`

// PostgresStore archives listings in Postgres. Writes are append-only:
// conflicts on (source, product_url) leave the original capture in place.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to databaseURL and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	log.Info().Msg("Listing archive connected")
	return &PostgresStore{db: db}, nil
}

// UpsertMany inserts listings, skipping product URLs already archived.
func (p *PostgresStore) UpsertMany(ctx context.Context, listings []models.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO listings (source, title, price, price_text, image_url, product_url, location, condition, seller_name, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (source, product_url) DO NOTHING`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range listings {
		if l.ProductURL == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx,
			l.Source, l.Title, l.Price, l.PriceText, l.ImageURL,
			l.ProductURL, l.Location, l.Condition, l.SellerName, l.CapturedAt,
		); err != nil {
			return fmt.Errorf("failed to archive listing %s: %w", l.ProductURL, err)
		}
	}
	return tx.Commit()
}

// Find returns archived listings matching q.
func (p *PostgresStore) Find(ctx context.Context, q Query) ([]models.Listing, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Source != "" {
		where = append(where, "source = "+arg(string(q.Source)))
	}
	if q.ExcludeURL != "" {
		where = append(where, "product_url <> "+arg(q.ExcludeURL))
	}
	if q.MinPrice > 0 {
		where = append(where, "price >= "+arg(q.MinPrice))
	}
	if q.MaxPrice > 0 {
		where = append(where, "price <= "+arg(q.MaxPrice))
	}
	for _, tok := range q.TitleTokens {
		where = append(where, "title ILIKE "+arg("%"+tok+"%"))
	}

	query := "SELECT source, title, price, price_text, image_url, product_url, location, condition, seller_name, captured_at FROM listings"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if q.SortByPrice {
		query += " ORDER BY price ASC"
	} else {
		query += " ORDER BY id ASC"
	}
	if q.Limit > 0 {
		query += " LIMIT " + arg(q.Limit)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(&l.Source, &l.Title, &l.Price, &l.PriceText, &l.ImageURL,
			&l.ProductURL, &l.Location, &l.Condition, &l.SellerName, &l.CapturedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// FindByURL returns the archived listing with the given product URL, or nil.
func (p *PostgresStore) FindByURL(ctx context.Context, productURL string) (*models.Listing, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT source, title, price, price_text, image_url, product_url, location, condition, seller_name, captured_at
		FROM listings WHERE product_url = $1 LIMIT 1`, productURL)

	var l models.Listing
	err := row.Scan(&l.Source, &l.Title, &l.Price, &l.PriceText, &l.ImageURL,
		&l.ProductURL, &l.Location, &l.Condition, &l.SellerName, &l.CapturedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Close releases the database handle.
func (p *PostgresStore) Close() error { return p.db.Close() }
