package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"papergraph-backend/internal/domain/graph"
	"papergraph-backend/internal/domain/shared"
	"papergraph-backend/internal/errors"
	"papergraph-backend/internal/serialization"
)

// SnapshotStore persists graph documents per paper.
type SnapshotStore interface {
	Save(ctx context.Context, paperID string, doc serialization.Document) error
	Load(ctx context.Context, paperID string) (serialization.Document, error)
}

// Autosaver keeps one paper's snapshot in step with a live store.
type Autosaver struct {
	store   *graph.Store
	repo    SnapshotStore
	paperID string
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	saved uint64
}

// NewAutosaver creates an autosaver for paperID.
func NewAutosaver(store *graph.Store, repo SnapshotStore, paperID string, logger *zap.Logger) *Autosaver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Autosaver{
		store:   store,
		repo:    repo,
		paperID: paperID,
		timeout: 10 * time.Second,
		logger:  logger,
	}
}

// Restore loads the stored snapshot into the live store. A missing
// snapshot leaves the store empty and is not an error.
func (a *Autosaver) Restore(ctx context.Context) error {
	doc, err := a.repo.Load(ctx, a.paperID)
	if errors.IsNotFound(err) {
		a.logger.Info("No stored snapshot, starting empty", zap.String("paper_id", a.paperID))
		return nil
	}
	if err != nil {
		return err
	}
	built, err := serialization.Import(doc)
	if err != nil {
		return err
	}
	a.store.ReplaceWith(built)
	a.logger.Info("Restored snapshot",
		zap.String("paper_id", a.paperID),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("edges", len(doc.Edges)),
	)
	return nil
}

// Start saves after every committed change until the returned stop
// function is called.
func (a *Autosaver) Start() (stop func()) {
	return a.store.Subscribe(func(change shared.GraphChange) {
		a.save(change.Version)
	})
}

// Flush saves the current graph immediately. It serializes with observer
// saves, so an older save can never land after it.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saveLocked(ctx, a.store.Snapshot())
}

func (a *Autosaver) save(version uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.saveLocked(ctx, a.store.Snapshot()); err != nil {
		a.logger.Error("Autosave failed",
			zap.String("paper_id", a.paperID),
			zap.Uint64("version", version),
			zap.Error(err),
		)
	}
}

// saveLocked writes snap unless a save at that version or later already
// landed. Observers can run out of order. Callers hold a.mu.
func (a *Autosaver) saveLocked(ctx context.Context, snap *graph.Snapshot) error {
	if a.saved != 0 && snap.Version() <= a.saved {
		return nil
	}
	if err := a.repo.Save(ctx, a.paperID, serialization.ExportSnapshot(snap)); err != nil {
		return err
	}
	a.saved = snap.Version()
	return nil
}
