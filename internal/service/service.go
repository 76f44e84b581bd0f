// Package service holds the use cases behind the HTTP handlers. Services take an
// Actor for every write, return apierror values, and publish realtime events
// after the write has committed.
package service

import (
	"fmt"
	"time"

	"go-insumos-ws/internal/apierror"
	"go-insumos-ws/internal/model"
	"go-insumos-ws/internal/repository"
	"go-insumos-ws/internal/ws"
	"go-insumos-ws/pkg/validator"
)

// EventPublisher delivers realtime events. *ws.Hub implements it.
type EventPublisher interface {
	Publish(e ws.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(ws.Event) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// Paged is one page of a listing.
type Paged[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func newPaged[T any](items []T, total int64, p repository.Page) Paged[T] {
	n := p.Normalize()
	if items == nil {
		items = []T{}
	}
	return Paged[T]{Items: items, Total: total, Page: n.Page, Limit: n.Limit}
}

func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return apierror.ValidationFields(validator.Fields(errs))
	}
	return nil
}

const dateLayout = "2006-01-02"

// parseDate reads a YYYY-MM-DD calendar day. Empty means no date.
func parseDate(field, s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return nil, apierror.ValidationFields(map[string]string{field: "must be a date in YYYY-MM-DD format"})
	}
	return &d, nil
}

func actorRef(a model.Actor) *model.Actor {
	return &a
}

func say(a model.Actor, format string, args ...interface{}) string {
	return a.Name + " " + fmt.Sprintf(format, args...)
}
