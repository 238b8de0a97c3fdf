// Package entries is the write path for household items. Every mutation
// invalidates the cached weeks covering the item's dates before returning.
package entries

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fdg312/family-hub/internal/storage"
	"github.com/fdg312/family-hub/internal/weekview"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
)

const maxListDays = 366

// Invalidator drops the cached week covering a date.
type Invalidator interface {
	InvalidateDate(ctx context.Context, date string) error
}

// Kind describes one entity kind to the generic service.
type Kind[T any] struct {
	Name     string
	Store    storage.EntityStore[T]
	ID       func(*T) *uuid.UUID
	Date     func(*T) string
	Validate func(*T) error
}

type Service[T any] struct {
	kind   Kind[T]
	weeks  Invalidator
	logger logrus.FieldLogger
}

func NewService[T any](kind Kind[T], weeks Invalidator, logger logrus.FieldLogger) *Service[T] {
	return &Service[T]{kind: kind, weeks: weeks, logger: logger.WithField("kind", kind.Name)}
}

// List returns the items dated within [from, to].
func (s *Service[T]) List(ctx context.Context, from, to string) ([]T, error) {
	f, err := weekview.ParseDate(from)
	if err != nil {
		return nil, fmt.Errorf("%w: from: %v", ErrInvalidRequest, err)
	}
	t, err := weekview.ParseDate(to)
	if err != nil {
		return nil, fmt.Errorf("%w: to: %v", ErrInvalidRequest, err)
	}
	if t.Before(f) {
		return nil, fmt.Errorf("%w: to is before from", ErrInvalidRequest)
	}
	if t.Sub(f).Hours()/24 > maxListDays {
		return nil, fmt.Errorf("%w: range exceeds %d days", ErrInvalidRequest, maxListDays)
	}

	return s.kind.Store.ListInRange(ctx, from, to)
}

func (s *Service[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	item, err := s.kind.Store.Get(ctx, id)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	return item, nil
}

func (s *Service[T]) Create(ctx context.Context, item T) (*T, error) {
	if err := s.kind.Validate(&item); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	*s.kind.ID(&item) = uuid.Nil

	if err := s.kind.Store.Upsert(ctx, &item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, s.kind.Date(&item))
	return &item, nil
}

// Update replaces the item. When the date moves to another week both weeks
// are invalidated.
func (s *Service[T]) Update(ctx context.Context, id uuid.UUID, item T) (*T, error) {
	if err := s.kind.Validate(&item); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	previous, err := s.kind.Store.Get(ctx, id)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	oldDate := s.kind.Date(previous)

	*s.kind.ID(&item) = id
	if err := s.kind.Store.Upsert(ctx, &item); err != nil {
		return nil, mapStorageErr(err)
	}

	newDate := s.kind.Date(&item)
	s.invalidate(ctx, newDate)
	if sameWeek, _ := inSameWeek(oldDate, newDate); !sameWeek {
		s.invalidate(ctx, oldDate)
	}
	return &item, nil
}

func (s *Service[T]) Delete(ctx context.Context, id uuid.UUID) error {
	previous, err := s.kind.Store.Get(ctx, id)
	if err != nil {
		return mapStorageErr(err)
	}
	if err := s.kind.Store.Delete(ctx, id); err != nil {
		return mapStorageErr(err)
	}
	s.invalidate(ctx, s.kind.Date(previous))
	return nil
}

// invalidate logs failures; the write itself already succeeded.
func (s *Service[T]) invalidate(ctx context.Context, date string) {
	if s.weeks == nil || date == "" {
		return
	}
	if err := s.weeks.InvalidateDate(ctx, date); err != nil {
		s.logger.WithError(err).WithField("date", date).Error("week cache invalidation failed")
	}
}

func inSameWeek(a, b string) (bool, error) {
	ta, err := weekview.ParseDate(a)
	if err != nil {
		return false, err
	}
	tb, err := weekview.ParseDate(b)
	if err != nil {
		return false, err
	}
	return weekview.MondayOf(ta).Equal(weekview.MondayOf(tb)), nil
}

func mapStorageErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
