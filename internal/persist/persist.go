package persist

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mercadito/storefront/internal/cart"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - cart_items without the stock column
// 2 - cart_items with the per-line stock bound and discount range check
const currentSchemaVersion = 2

// DB is the durable cart snapshot. It satisfies cart.Persister.
type DB struct {
	db    *sql.DB
	swept bool
}

// Open creates or opens the snapshot database at the given path.
// Applies required pragmas, the schema, and the migration sweep.
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect snapshot database: %w", err)
	}

	// SQLite only supports one writer at a time; a single connection
	// avoids SQLITE_BUSY on concurrent snapshot writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	swept, err := migrate(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate snapshot schema: %w", err)
	}

	return &DB{db: db, swept: swept}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Swept reports whether the migration sweep discarded a populated
// snapshot during Open. The caller should tell the user to re-add
// their items exactly once.
func (d *DB) Swept() bool {
	return d.swept
}

// Load reads the persisted item list. An absent snapshot is an empty
// cart, not an error.
func (d *DB) Load(ctx context.Context) ([]cart.Item, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT product_id, name, description, image_url, price, quantity, stock, discount
		FROM cart_items
		ORDER BY product_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}
	defer rows.Close()

	var items []cart.Item
	for rows.Next() {
		var it cart.Item
		var discount sql.NullFloat64
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.ImageURL,
			&it.Price, &it.Quantity, &it.Stock, &discount); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		if discount.Valid {
			d := discount.Float64
			it.Discount = &d
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}
	return items, nil
}

// Replace rewrites the whole snapshot atomically. An empty item list
// leaves an empty (but current-version) snapshot behind.
func (d *DB) Replace(ctx context.Context, items []cart.Item) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM cart_items`); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	if len(items) > 0 {
		stmt, prepErr := tx.PrepareContext(ctx, `
			INSERT INTO cart_items
			(product_id, name, description, image_url, price, quantity, stock, discount)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if prepErr != nil {
			err = fmt.Errorf("replace snapshot: %w", prepErr)
			return err
		}
		defer stmt.Close()

		for _, it := range items {
			var discount any
			if it.Discount != nil {
				discount = *it.Discount
			}
			if _, err = stmt.ExecContext(ctx, it.ID, it.Name, it.Description,
				it.ImageURL, it.Price, it.Quantity, it.Stock, discount); err != nil {
				return fmt.Errorf("replace snapshot line %d: %w", it.ID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// migrate brings the snapshot to the current schema version and returns
// whether a populated pre-current snapshot had to be discarded.
//
// Older snapshot shapes are not carried forward: the cart is cheap to
// rebuild and stale lines without a stock bound cannot be validated, so
// the migration is clear-and-notify rather than a column backfill.
func migrate(db *sql.DB) (swept bool, err error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return false, fmt.Errorf("get user_version: %w", err)
	}

	if version < currentSchemaVersion {
		populated, err := hasRows(db)
		if err != nil {
			return false, err
		}
		if populated {
			swept = true
		}
		// Drop the outdated shape entirely; the schema below recreates it.
		if _, err := db.Exec(`DROP TABLE IF EXISTS cart_items`); err != nil {
			return false, fmt.Errorf("drop outdated snapshot: %w", err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return false, fmt.Errorf("execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return false, fmt.Errorf("set user_version: %w", err)
	}

	return swept, nil
}

// hasRows reports whether a cart_items table exists and holds rows.
// Tolerates the table being absent (fresh database).
func hasRows(db *sql.DB) (bool, error) {
	var name string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='cart_items'",
	).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("inspect snapshot: %w", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM cart_items").Scan(&count); err != nil {
		return false, fmt.Errorf("count snapshot rows: %w", err)
	}
	return count > 0, nil
}
