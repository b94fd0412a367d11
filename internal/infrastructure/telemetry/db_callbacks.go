package telemetry

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type gormRegister func(name string, fn func(*gorm.DB)) error

// registerAround installs before and after hooks on every GORM operation
func registerAround(db *gorm.DB, prefix string, before, after func(*gorm.DB)) error {
	cb := db.Callback()
	hooks := []struct {
		op            string
		before, after gormRegister
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, h := range hooks {
		if err := h.before(prefix+":before_"+h.op, before); err != nil {
			return fmt.Errorf("register %s before %s: %w", prefix, h.op, err)
		}
		if err := h.after(prefix+":after_"+h.op, after); err != nil {
			return fmt.Errorf("register %s after %s: %w", prefix, h.op, err)
		}
	}
	return nil
}

type startTimeKey struct{ prefix string }

func markStart(prefix string) func(*gorm.DB) {
	key := startTimeKey{prefix}
	return func(db *gorm.DB) {
		if db.Statement.Context == nil {
			db.Statement.Context = context.Background()
		}
		db.Statement.Context = context.WithValue(db.Statement.Context, key, time.Now())
	}
}

func elapsedSince(db *gorm.DB, prefix string) (time.Duration, bool) {
	if db.Statement.Context == nil {
		return 0, false
	}
	start, ok := db.Statement.Context.Value(startTimeKey{prefix}).(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}
