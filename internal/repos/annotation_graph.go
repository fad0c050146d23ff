package repos

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lexivid/annotator-backend/internal/logger"
	"github.com/lexivid/annotator-backend/internal/types"
)

var ErrSnapshotNotFound = errors.New("annotation snapshot not found")

type AnnotationGraphRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, snap types.AnnotationSnapshot, videoID string) (*types.AnnotationGraph, error)
	GetByVideoAndAnnotator(ctx context.Context, tx *gorm.DB, videoID, annotator string) (*types.AnnotationGraph, error)
	ListByVideo(ctx context.Context, tx *gorm.DB, videoID string) ([]*types.AnnotationGraph, error)
}

type annotationGraphRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnnotationGraphRepo(db *gorm.DB, baseLog *logger.Logger) AnnotationGraphRepo {
	return &annotationGraphRepo{db: db, log: baseLog.With("repo", "AnnotationGraphRepo")}
}

// Upsert stores the whole snapshot, overwriting the previous one for the
// same (video, annotator) pair.
func (r *annotationGraphRepo) Upsert(ctx context.Context, tx *gorm.DB, snap types.AnnotationSnapshot, videoID string) (*types.AnnotationGraph, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	relations, err := json.Marshal(snap.Relations)
	if err != nil {
		return nil, err
	}
	definitions, err := json.Marshal(snap.Definitions)
	if err != nil {
		return nil, err
	}
	vocab, err := json.Marshal(snap.ConceptVocabulary)
	if err != nil {
		return nil, err
	}

	row := &types.AnnotationGraph{
		VideoID:             videoID,
		Annotator:           snap.Annotator,
		Language:            snap.Language,
		Relations:           relations,
		Definitions:         definitions,
		ConceptVocabulary:   vocab,
		AnnotationCompleted: snap.IsCompleted,
		LastModification:    time.Now().UTC(),
	}
	err = transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "video_id"}, {Name: "annotator"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"language", "relations", "definitions", "concept_vocabulary",
				"annotation_completed", "last_modification", "updated_at",
			}),
		}).
		Create(row).Error
	if err != nil {
		r.log.Warn("Upsert failed", "error", err, "video_id", videoID, "annotator", snap.Annotator)
		return nil, err
	}
	return row, nil
}

func (r *annotationGraphRepo) GetByVideoAndAnnotator(ctx context.Context, tx *gorm.DB, videoID, annotator string) (*types.AnnotationGraph, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.AnnotationGraph
	err := transaction.WithContext(ctx).
		Where("video_id = ? AND annotator = ?", videoID, annotator).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *annotationGraphRepo) ListByVideo(ctx context.Context, tx *gorm.DB, videoID string) ([]*types.AnnotationGraph, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.AnnotationGraph
	if err := transaction.WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("last_modification DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Snapshot decodes a stored row back into the wire form.
func Snapshot(row *types.AnnotationGraph) (types.AnnotationSnapshot, error) {
	snap := types.AnnotationSnapshot{
		ID:          row.VideoID,
		Annotator:   row.Annotator,
		Language:    row.Language,
		IsCompleted: row.AnnotationCompleted,
	}
	if len(row.Relations) > 0 {
		if err := json.Unmarshal(row.Relations, &snap.Relations); err != nil {
			return types.AnnotationSnapshot{}, err
		}
	}
	if len(row.Definitions) > 0 {
		if err := json.Unmarshal(row.Definitions, &snap.Definitions); err != nil {
			return types.AnnotationSnapshot{}, err
		}
	}
	if len(row.ConceptVocabulary) > 0 {
		if err := json.Unmarshal(row.ConceptVocabulary, &snap.ConceptVocabulary); err != nil {
			return types.AnnotationSnapshot{}, err
		}
	}
	if snap.ConceptVocabulary == nil {
		snap.ConceptVocabulary = map[string][]string{}
	}
	return snap, nil
}
