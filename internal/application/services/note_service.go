package services

import (
	"context"
	"time"

	"github.com/taskmaster/dayboard/internal/domain/entities"
	"github.com/taskmaster/dayboard/internal/infrastructure/logger"
	"github.com/taskmaster/dayboard/internal/infrastructure/metrics"
	"github.com/taskmaster/dayboard/internal/ports"
)

const notesTable = "notes"

// NoteService reads a user's notes from the store
type NoteService struct {
	store   ports.StoreGateway
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewNoteService creates a new note service
func NewNoteService(store ports.StoreGateway, logger *logger.Logger, metrics *metrics.Metrics) *NoteService {
	return &NoteService{
		store:   store,
		logger:  logger.WithComponent("note_service"),
		metrics: metrics,
	}
}

// FetchUserNotes returns the owner's notes, most recently updated first.
// Store failures yield an empty slice and rows that fail validation are
// skipped; the result is never nil.
func (s *NoteService) FetchUserNotes(ctx context.Context, ownerID string) []entities.Note {
	if ownerID == "" {
		s.logger.Warnw("Note fetch without owner", "error", entities.ErrMissingOwner)
		return []entities.Note{}
	}

	start := time.Now()
	rows, err := s.store.Select(ctx, ports.SelectQuery{
		Table:      notesTable,
		EqColumn:   "user_id",
		EqValue:    ownerID,
		OrderBy:    "updated_at",
		Descending: true,
	})
	s.logger.LogStoreCall("select", notesTable, len(rows), msSince(start), err)
	if err != nil {
		s.logger.Errorw("Error fetching notes", "user_id", ownerID, "error", err)
		s.metrics.RecordFetchFailure(notesTable)
		return []entities.Note{}
	}

	return collect(rows, "note", toNote, s.logger, s.metrics)
}

// RecentNotes returns the owner's most recently updated notes for the
// dashboard.
func (s *NoteService) RecentNotes(ctx context.Context, ownerID string) []entities.Note {
	return entities.RecentNotes(s.FetchUserNotes(ctx, ownerID))
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
