package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// GormUnitOfWork runs a function inside one database transaction.
// gorm.DB.Transaction commits on nil, rolls back on error and on panic.
type GormUnitOfWork struct {
	db   *gorm.DB
	opts *sql.TxOptions
}

func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// WithIsolation returns a copy that opens transactions at the given level
func (u *GormUnitOfWork) WithIsolation(level sql.IsolationLevel) *GormUnitOfWork {
	return &GormUnitOfWork{db: u.db, opts: &sql.TxOptions{Isolation: level}}
}

func (u *GormUnitOfWork) Do(ctx context.Context, fn func(tx *gorm.DB) error) error {
	ctx, span := startSpan(ctx, "UnitOfWork")
	var err error
	defer func() { endSpan(span, err) }()

	if u.opts != nil {
		err = u.db.WithContext(ctx).Transaction(fn, u.opts)
	} else {
		err = u.db.WithContext(ctx).Transaction(fn)
	}
	return err
}
