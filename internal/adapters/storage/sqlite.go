package storage

// sqlite.go — persistencia canónica del watchlist.
//
// Estrategia:
//   - Una tabla, una fila por par (user_id, asset_id). La unicidad la
//     garantiza el índice UNIQUE del schema, no la aplicación: el
//     INSERT ... ON CONFLICT DO NOTHING es atómico frente a inserts
//     concurrentes del mismo par.
//   - created_at se guarda como RFC3339Nano en UTC — orden lexicográfico
//     == orden cronológico, y el listado sale directo del índice.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/retrotoken/internal/domain"
)

const schema = `
-- Una fila por asset seguido, sin duplicados por usuario
CREATE TABLE IF NOT EXISTS watchlist_items (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL,
    asset_id   TEXT NOT NULL,
    created_at TEXT NOT NULL,
    UNIQUE (user_id, asset_id)
);

CREATE INDEX IF NOT EXISTS idx_watchlist_user ON watchlist_items(user_id, created_at DESC);
`

// SQLiteStore implementa ports.WatchlistStore usando SQLite (pure Go, sin CGo).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// ListByUser devuelve las filas del usuario, las más recientes primero.
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]domain.WatchlistItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, asset_id, created_at
		FROM watchlist_items
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("storage.ListByUser: query: %w", err)
	}
	defer rows.Close()

	items := []domain.WatchlistItem{}
	for rows.Next() {
		var it domain.WatchlistItem
		var createdAt string
		if err := rows.Scan(&it.ID, &it.UserID, &it.AssetID, &createdAt); err != nil {
			return nil, fmt.Errorf("storage.ListByUser: scan row: %w", err)
		}
		it.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("storage.ListByUser: parse created_at %q: %w", createdAt, err)
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

// Exists indica si el par (userId, assetId) ya está en el watchlist.
func (s *SQLiteStore) Exists(ctx context.Context, userID, assetID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM watchlist_items WHERE user_id = ? AND asset_id = ?`,
		userID, assetID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage.Exists: query: %w", err)
	}
	return true, nil
}

// Insert crea la fila del par. Devuelve domain.ErrConflict si ya existe.
// El ON CONFLICT DO NOTHING hace el check-and-insert atómico: con dos inserts
// concurrentes del mismo par exactamente uno ve RowsAffected == 1.
func (s *SQLiteStore) Insert(ctx context.Context, userID, assetID string) (domain.WatchlistItem, error) {
	if userID == "" || assetID == "" {
		return domain.WatchlistItem{}, domain.ErrInvalidAsset
	}

	item := domain.WatchlistItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		AssetID:   assetID,
		CreatedAt: time.Now().UTC(),
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO watchlist_items (id, user_id, asset_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, asset_id) DO NOTHING
	`, item.ID, item.UserID, item.AssetID, item.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return domain.WatchlistItem{}, fmt.Errorf("storage.Insert: exec: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return domain.WatchlistItem{}, fmt.Errorf("storage.Insert: rows affected: %w", err)
	}
	if n == 0 {
		return domain.WatchlistItem{}, domain.ErrConflict
	}

	return item, nil
}

// DeleteByUserAndAsset borra la fila del par y devuelve cuántas eliminó.
// Repetir el borrado de un par ausente no es un error a este nivel.
func (s *SQLiteStore) DeleteByUserAndAsset(ctx context.Context, userID, assetID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM watchlist_items WHERE user_id = ? AND asset_id = ?`,
		userID, assetID,
	)
	if err != nil {
		return 0, fmt.Errorf("storage.DeleteByUserAndAsset: exec: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage.DeleteByUserAndAsset: rows affected: %w", err)
	}
	return n, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
