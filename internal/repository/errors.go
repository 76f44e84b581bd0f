package repository

import (
	"errors"

	"go-insumos-ws/internal/apierror"

	"gorm.io/gorm"
)

// translate turns a gorm error into an apierror. Errors that are already
// classified pass through untouched, so closures run inside a transaction
// can return apierror values directly.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	var ae *apierror.Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierror.NotFound(what + " not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apierror.Conflict(what + " already exists")
	}
	return apierror.Internal("database error", err)
}

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Normalize clamps p to sane bounds.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > maxLimit {
		p.Limit = defaultLimit
	}
	return p
}

func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

func paginate(p Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		n := p.Normalize()
		return db.Offset(n.Offset()).Limit(n.Limit)
	}
}
