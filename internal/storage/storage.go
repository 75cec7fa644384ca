// Package storage persists the two records the bot keeps between
// restarts: the set of VIP chat ids and the update offset.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Store is a flat key-value persistence layer. Every Save overwrites the
// previous record wholesale.
type Store interface {
	// LoadVIPs returns the persisted VIP chat ids. A missing record yields
	// an empty slice.
	LoadVIPs() ([]int64, error)
	SaveVIPs(ids []int64) error

	// LoadOffset returns the persisted offset and whether one was found.
	LoadOffset() (offset int, ok bool, err error)
	SaveOffset(offset int) error

	Close() error
}

// Open returns the Store for driver rooted at dir.
func Open(driver, dir string) (Store, error) {
	switch driver {
	case "", "json":
		return NewJSONStore(dir)
	case "sqlite":
		return NewSQLiteStore(filepath.Join(dir, "bot.db"))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
