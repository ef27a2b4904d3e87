package memstore

import (
	"context"

	"ride-share/internal/domain/event"
)

// EventRepo appends transitions to an in-memory audit log.
type EventRepo struct {
	s *Store
}

func (repo *EventRepo) Append(ctx context.Context, tr *event.Transition) error {
	if err := requireTx(ctx); err != nil {
		return err
	}
	if err := tr.Validate(); err != nil {
		return err
	}
	if tr.ID == "" {
		tr.ID = newID()
	}
	cp := *tr
	repo.s.events = append(repo.s.events, &cp)
	return nil
}
