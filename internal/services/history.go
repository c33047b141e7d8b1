package services

import (
	"context"
	"errors"
	"log"

	"ulemsee/internal/models"
	"ulemsee/internal/repository"
)

type historyStore interface {
	List(ctx context.Context, limit int) ([]*models.HistoryEntry, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) (int, error)
}

// HistoryService wraps the history store with change notifications.
type HistoryService struct {
	store  historyStore
	events EventPublisher
}

func NewHistoryService(store historyStore, events EventPublisher) *HistoryService {
	return &HistoryService{store: store, events: events}
}

func (s *HistoryService) List(ctx context.Context, limit int) ([]*models.HistoryEntry, error) {
	items, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	log.Printf("Returning %d history items", len(items))
	return items, nil
}

func (s *HistoryService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return &ValidationError{Fields: map[string]string{"id": "History item ID is required"}}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("History item not found: %s", id)
			return &NotFoundError{Message: "History item not found"}
		}
		return err
	}

	log.Printf("Deleted history item: %s", id)
	s.publish(ctx, models.HistoryEvent{Type: models.HistoryDeleted, Payload: models.HistoryDeletedPayload{ID: id}})
	return nil
}

func (s *HistoryService) Clear(ctx context.Context) (int, error) {
	n, err := s.store.Clear(ctx)
	if err != nil {
		return 0, err
	}

	log.Printf("Cleared %d history items", n)
	s.publish(ctx, models.HistoryEvent{Type: models.HistoryCleared, Payload: models.HistoryClearedPayload{Removed: n}})
	return n, nil
}

func (s *HistoryService) publish(ctx context.Context, event models.HistoryEvent) {
	if s.events != nil {
		s.events.Publish(ctx, event)
	}
}
