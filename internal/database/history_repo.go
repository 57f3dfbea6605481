package database

import (
	"context"
	"fmt"

	"github.com/kdimtricp/cinesuggest/internal/models"
)

const maxHistoryLimit = 100

type HistoryRepository struct {
	db *DB
}

func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Record(ctx context.Context, entry *models.HistoryEntry) error {
	result := r.db.GORM().WithContext(ctx).Create(entry)
	if result.Error != nil {
		return fmt.Errorf("failed to record recommendation: %w", result.Error)
	}
	return nil
}

// Recent returns the newest entries first. limit is clamped to [1, 100].
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	var entries []models.HistoryEntry
	result := r.db.GORM().WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&entries)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list recommendation history: %w", result.Error)
	}
	return entries, nil
}

func (r *HistoryRepository) CountForMovie(ctx context.Context, movieID int) (int64, error) {
	var count int64
	result := r.db.GORM().WithContext(ctx).Model(&models.HistoryEntry{}).Where("movie_id = ?", movieID).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count recommendation history: %w", result.Error)
	}
	return count, nil
}
