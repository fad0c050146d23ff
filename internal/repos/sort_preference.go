package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lexivid/annotator-backend/internal/logger"
	"github.com/lexivid/annotator-backend/internal/types"
)

type SortPreferenceRepo interface {
	Get(ctx context.Context, tx *gorm.DB, annotator, listName string) (string, error)
	Set(ctx context.Context, tx *gorm.DB, annotator, listName, sortKey string) error
}

type sortPreferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSortPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) SortPreferenceRepo {
	return &sortPreferenceRepo{db: db, log: baseLog.With("repo", "SortPreferenceRepo")}
}

// Get returns the stored preference, or "" when the annotator never sorted
// this list. Callers fall back to their own default.
func (r *sortPreferenceRepo) Get(ctx context.Context, tx *gorm.DB, annotator, listName string) (string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.SortPreference
	err := transaction.WithContext(ctx).
		Where("annotator = ? AND list_name = ?", annotator, listName).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return row.SortKey, nil
}

func (r *sortPreferenceRepo) Set(ctx context.Context, tx *gorm.DB, annotator, listName, sortKey string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	row := &types.SortPreference{
		Annotator: annotator,
		ListName:  listName,
		SortKey:   sortKey,
	}
	err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "annotator"}, {Name: "list_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"sort_key", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		r.log.Warn("Set failed", "error", err, "annotator", annotator, "list", listName)
	}
	return err
}
