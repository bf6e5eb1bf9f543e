// Package sqlite persists exported graph documents, one per paper.
package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"papergraph-backend/internal/errors"
	"papergraph-backend/internal/serialization"
)

// SnapshotSummary describes a stored snapshot without its document.
type SnapshotSummary struct {
	PaperID   string    `json:"paperId"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SnapshotRepository stores serialized graph documents keyed by paper id.
type SnapshotRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSnapshotRepository opens (creating if needed) the database at dbPath.
func NewSnapshotRepository(ctx context.Context, dbPath string, logger *zap.Logger) (*SnapshotRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, databaseError("Open", "opening sqlite database", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, databaseError("Open", "connecting to sqlite", err)
	}

	for _, pragma := range allPragmas() {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, databaseError("Open", "setting pragma", err)
		}
	}
	for _, stmt := range allSchemaStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, databaseError("Open", "creating schema", err)
		}
	}

	logger.Debug("Snapshot repository ready", zap.String("path", dbPath))
	return &SnapshotRepository{db: db, logger: logger}, nil
}

// Close closes the database.
func (r *SnapshotRepository) Close() error {
	return r.db.Close()
}

// Save writes doc as the current snapshot for paperID, replacing any
// previous one.
func (r *SnapshotRepository) Save(ctx context.Context, paperID string, doc serialization.Document) error {
	data, err := serialization.Marshal(doc, serialization.FormatJSON)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO graph_snapshots (paper_id, document, node_count, edge_count, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(paper_id) DO UPDATE SET
			document = excluded.document,
			node_count = excluded.node_count,
			edge_count = excluded.edge_count,
			updated_at = excluded.updated_at`,
		paperID, string(data), len(doc.Nodes), len(doc.Edges), time.Now().UTC().UnixNano(),
	)
	if err != nil {
		return databaseError("Save", "saving snapshot", err)
	}

	r.logger.Debug("Snapshot saved",
		zap.String("paper_id", paperID),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("edges", len(doc.Edges)),
	)
	return nil
}

// Load returns the stored document for paperID.
func (r *SnapshotRepository) Load(ctx context.Context, paperID string) (serialization.Document, error) {
	var data string
	err := r.db.QueryRowContext(ctx,
		`SELECT document FROM graph_snapshots WHERE paper_id = ?`, paperID,
	).Scan(&data)
	if stderrors.Is(err, sql.ErrNoRows) {
		return serialization.Document{}, notFound("Load", paperID)
	}
	if err != nil {
		return serialization.Document{}, databaseError("Load", "loading snapshot", err)
	}
	return serialization.Unmarshal([]byte(data), serialization.FormatJSON)
}

// Delete removes the snapshot for paperID.
func (r *SnapshotRepository) Delete(ctx context.Context, paperID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM graph_snapshots WHERE paper_id = ?`, paperID)
	if err != nil {
		return databaseError("Delete", "deleting snapshot", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return databaseError("Delete", "deleting snapshot", err)
	}
	if n == 0 {
		return notFound("Delete", paperID)
	}
	return nil
}

// List returns summaries of all snapshots ordered by paper id.
func (r *SnapshotRepository) List(ctx context.Context) ([]SnapshotSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT paper_id, node_count, edge_count, updated_at FROM graph_snapshots ORDER BY paper_id`)
	if err != nil {
		return nil, databaseError("List", "listing snapshots", err)
	}
	defer rows.Close()

	var out []SnapshotSummary
	for rows.Next() {
		var s SnapshotSummary
		var updated int64
		if err := rows.Scan(&s.PaperID, &s.Nodes, &s.Edges, &updated); err != nil {
			return nil, databaseError("List", "scanning snapshot row", err)
		}
		s.UpdatedAt = time.Unix(0, updated).UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, databaseError("List", "listing snapshots", err)
	}
	return out, nil
}

func databaseError(op, msg string, cause error) error {
	return errors.Internal(errors.CodeDatabaseError.String(), msg).
		WithDetails(cause.Error()).
		WithOperation(op).
		WithResource("snapshot").
		WithCause(cause).
		Build()
}

func notFound(op, paperID string) error {
	return errors.NotFound(errors.CodeSnapshotNotFound.String(), "snapshot not found").
		WithDetailsf("paper %q", paperID).
		WithOperation(op).
		WithResource("snapshot").
		Build()
}
