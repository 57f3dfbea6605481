package models

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry records one served recommendation.
type HistoryEntry struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	MovieID   int       `json:"movie_id"`
	Title     string    `json:"title"`
	Results   []string  `gorm:"serializer:json" json:"results"`
	CreatedAt time.Time `json:"created_at"`
}

func (HistoryEntry) TableName() string {
	return "recommendation_history"
}

func NewHistoryEntry(movieID int, title string, results []string) *HistoryEntry {
	return &HistoryEntry{
		ID:        uuid.New().String(),
		MovieID:   movieID,
		Title:     title,
		Results:   append([]string{}, results...),
		CreatedAt: time.Now().UTC(),
	}
}
