package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ytget/yt-music-bot/internal/model"
	"github.com/ytget/yt-music-bot/internal/paginate"
)

var (
	// ErrNoSession is returned when the user has not searched yet
	ErrNoSession = errors.New("no search session")

	// ErrTrackNotFound is returned for an index outside the stored results
	ErrTrackNotFound = errors.New("track not found")
)

type searchSession struct {
	results []model.Track
	page    int
}

// Store holds one search session per user key
type Store struct {
	sessions map[string]*searchSession
	mu       sync.RWMutex
	pageSize int
}

// NewStore creates an empty store using paginate.PageSize
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*searchSession),
		pageSize: paginate.PageSize,
	}
}

// Put replaces the user's session with results and resets the page to 0
func (s *Store) Put(userKey string, results []model.Track) {
	owned := make([]model.Track, len(results))
	copy(owned, results)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userKey] = &searchSession{results: owned}
}

// Page returns the user's current page
func (s *Store) Page(userKey string) (paginate.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userKey]
	if !ok {
		return paginate.Page{}, ErrNoSession
	}
	return paginate.Slice(sess.results, sess.page, s.pageSize)
}

// SetPage moves the user's cursor to page. The cursor is only updated when
// the page exists in the current result set.
func (s *Store) SetPage(userKey string, page int) (paginate.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userKey]
	if !ok {
		return paginate.Page{}, ErrNoSession
	}
	view, err := paginate.Slice(sess.results, page, s.pageSize)
	if err != nil {
		return paginate.Page{}, err
	}
	sess.page = page
	return view, nil
}

// Track returns a copy of the result at the 0-based absolute index
func (s *Store) Track(userKey string, index int) (model.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userKey]
	if !ok {
		return model.Track{}, ErrNoSession
	}
	if index < 0 || index >= len(sess.results) {
		return model.Track{}, fmt.Errorf("%w: index %d of %d", ErrTrackNotFound, index, len(sess.results))
	}
	return sess.results[index], nil
}

// Len returns the number of stored sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
