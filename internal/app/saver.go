package app

import (
	"context"
	"errors"

	"github.com/lexivid/annotator-backend/internal/clients/neo4jdb"
	"github.com/lexivid/annotator-backend/internal/document"
	"github.com/lexivid/annotator-backend/internal/export"
	"github.com/lexivid/annotator-backend/internal/logger"
	"github.com/lexivid/annotator-backend/internal/repos"
	"github.com/lexivid/annotator-backend/internal/types"
)

// snapshotSaver persists every accepted mutation: the postgres row is the
// source of truth, the neo4j projection is a best-effort mirror.
type snapshotSaver struct {
	log       *logger.Logger
	graphRepo repos.AnnotationGraphRepo
	neo       *neo4jdb.Client
}

var _ document.Saver = (*snapshotSaver)(nil)

func (s *snapshotSaver) Save(ctx context.Context, snap types.AnnotationSnapshot) error {
	if _, err := s.graphRepo.Upsert(ctx, nil, snap, snap.ID); err != nil {
		return err
	}
	if s.neo != nil {
		if err := export.ProjectSnapshot(ctx, s.neo, s.log, snap); err != nil {
			// already logged inside the projector; the row is saved
			return nil
		}
	}
	return nil
}

// snapshotStore restores the last saved state when a document is reopened.
type snapshotStore struct {
	graphRepo repos.AnnotationGraphRepo
}

var _ document.SnapshotStore = (*snapshotStore)(nil)

func (s *snapshotStore) Latest(ctx context.Context, videoID, annotator string) (types.AnnotationSnapshot, bool, error) {
	row, err := s.graphRepo.GetByVideoAndAnnotator(ctx, nil, videoID, annotator)
	if errors.Is(err, repos.ErrSnapshotNotFound) {
		return types.AnnotationSnapshot{}, false, nil
	}
	if err != nil {
		return types.AnnotationSnapshot{}, false, err
	}
	snap, err := repos.Snapshot(row)
	if err != nil {
		return types.AnnotationSnapshot{}, false, err
	}
	return snap, true, nil
}
