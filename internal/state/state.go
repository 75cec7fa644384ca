// Package state holds the bot's in-memory view of the VIP set and the
// update offset, flushing each mutation to a storage.Store before
// returning.
//
// A State is owned by the polling goroutine and is not safe for
// concurrent use. Handling updates in parallel would need a lock around
// GrantVIP and Advance.
package state

import (
	"fmt"
	"log/slog"
	"slices"

	"tg-audio-bot/internal/storage"
)

type State struct {
	store  storage.Store
	logger *slog.Logger

	vips      map[int64]struct{}
	offset    int
	hasOffset bool
}

// Load reads both records from store.
func Load(store storage.Store, logger *slog.Logger) (*State, error) {
	ids, err := store.LoadVIPs()
	if err != nil {
		return nil, fmt.Errorf("load vip users: %w", err)
	}
	offset, ok, err := store.LoadOffset()
	if err != nil {
		return nil, fmt.Errorf("load offset: %w", err)
	}

	vips := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		vips[id] = struct{}{}
	}
	return &State{
		store:     store,
		logger:    logger,
		vips:      vips,
		offset:    offset,
		hasOffset: ok,
	}, nil
}

func (s *State) IsVIP(chatID int64) bool {
	_, ok := s.vips[chatID]
	return ok
}

// VIPCount returns the size of the VIP set.
func (s *State) VIPCount() int {
	return len(s.vips)
}

// GrantVIP adds chatID and persists the set. It reports whether the id was
// newly added. A persistence failure is logged and the in-memory
// membership is kept.
func (s *State) GrantVIP(chatID int64) bool {
	if s.IsVIP(chatID) {
		return false
	}
	s.vips[chatID] = struct{}{}

	if err := s.store.SaveVIPs(s.vipList()); err != nil {
		s.logger.Error("failed to persist vip users", "chat_id", chatID, "error", err)
	}
	return true
}

// Offset returns the next update id to request and whether one has ever
// been stored.
func (s *State) Offset() (int, bool) {
	return s.offset, s.hasOffset
}

// Advance moves the offset to next and persists it. Values not greater
// than the current offset are ignored.
func (s *State) Advance(next int) bool {
	if s.hasOffset && next <= s.offset {
		return false
	}
	s.offset = next
	s.hasOffset = true

	if err := s.store.SaveOffset(next); err != nil {
		s.logger.Error("failed to persist offset", "offset", next, "error", err)
	}
	return true
}

func (s *State) vipList() []int64 {
	ids := make([]int64, 0, len(s.vips))
	for id := range s.vips {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
