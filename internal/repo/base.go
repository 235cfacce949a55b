package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Clock returns the current time. Repositories stamp rows with it.
type Clock func() time.Time

// UTCNow is the default Clock.
func UTCNow() time.Time {
	return time.Now().UTC()
}

// Base provides a shared foundation for domain repositories.
type Base struct {
	db    *gorm.DB
	clock Clock
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db, clock: UTCNow}
}

// WithClock returns a copy of b that stamps rows using clock.
func (b Base) WithClock(clock Clock) Base {
	if clock == nil {
		clock = UTCNow
	}
	b.clock = clock
	return b
}

// WithTx returns a copy of b bound to tx.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	b.db = tx
	return b
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Now returns the clock's current time in UTC.
func (b Base) Now() time.Time {
	if b.clock == nil {
		return UTCNow()
	}
	return b.clock().UTC()
}
