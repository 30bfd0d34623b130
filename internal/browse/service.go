// Package browse is the page controller behind a listing view. Each session
// owns the only mutable filter and pagination state for one view; every
// derived page is computed by the pure filter and pagination functions.
package browse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vyrlo/listing-browser/internal/config"
	"github.com/vyrlo/listing-browser/internal/filter"
	"github.com/vyrlo/listing-browser/internal/models"
	"github.com/vyrlo/listing-browser/internal/pagination"
	"github.com/vyrlo/listing-browser/internal/suggest"
)

var ErrSessionNotFound = errors.New("browse session not found")

const FeaturedFallbackNotice = "No featured listings match these filters, showing all listings instead."

type ListingSource interface {
	Listings(ctx context.Context) ([]models.Listing, error)
}

type SessionStore interface {
	Create(ctx context.Context, session models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, session models.Session) (bool, error)
}

type Page struct {
	SessionID string             `json:"sessionId,omitempty"`
	Items     []models.Listing   `json:"items"`
	Page      int                `json:"page"`
	HasMore   bool               `json:"hasMore"`
	Total     int                `json:"total"`
	Empty     bool               `json:"empty"`
	Filter    models.FilterState `json:"filter"`
	Notice    string             `json:"notice,omitempty"`
}

type SuggestionResult struct {
	Seq         uint64              `json:"seq"`
	Stale       bool                `json:"stale"`
	State       suggest.State       `json:"state"`
	Suggestions []models.Suggestion `json:"suggestions"`
}

type Service struct {
	listings   ListingSource
	store      SessionStore
	aggregator *suggest.Aggregator
	tuning     config.Tuning
	logger     *slog.Logger
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionLocks
}

// sessionLocks is the in-memory coordination state of one session. writeMu
// serializes every read-modify-write of the stored row; guard only drops
// overlapping page loads.
type sessionLocks struct {
	writeMu   sync.Mutex
	guard     pagination.Guard
	sequencer suggest.Sequencer
}

func NewService(listings ListingSource, store SessionStore, aggregator *suggest.Aggregator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		listings:   listings,
		store:      store,
		aggregator: aggregator,
		tuning:     aggregator.Tuning(),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		sessions:   make(map[string]*sessionLocks),
	}
}

// NormalizeFilter trims the free-text fields and pins the quick filter to a
// known mode.
func NormalizeFilter(state models.FilterState) models.FilterState {
	return models.FilterState{
		Name:        strings.TrimSpace(state.Name),
		Location:    strings.TrimSpace(state.Location),
		CategoryID:  strings.TrimSpace(state.CategoryID),
		QuickFilter: models.ParseQuickFilter(strings.ToLower(strings.TrimSpace(string(state.QuickFilter)))),
	}
}

func (s *Service) Start(ctx context.Context, initial models.FilterState) (models.Session, error) {
	now := s.now()
	session := models.Session{
		ID:         uuid.NewString(),
		Filter:     NormalizeFilter(initial),
		Pagination: pagination.NewState(s.tuning.ItemsPerPage),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Create(ctx, session); err != nil {
		return models.Session{}, fmt.Errorf("create browse session: %w", err)
	}
	s.logger.Debug("browse session started", "session_id", session.ID, "quick_filter", session.Filter.QuickFilter)
	return session, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Session, error) {
	session, err := s.store.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return models.Session{}, fmt.Errorf("load browse session: %w", err)
	}
	if session == nil {
		return models.Session{}, ErrSessionNotFound
	}
	return *session, nil
}

// UpdateFilter replaces the session filter and resets pagination so the next
// page starts from the top of the new result set. It waits for a page load
// of the same session that is already running.
func (s *Service) UpdateFilter(ctx context.Context, id string, next models.FilterState) (models.Session, error) {
	locks := s.locks(id)
	locks.writeMu.Lock()
	defer locks.writeMu.Unlock()

	session, err := s.Get(ctx, id)
	if err != nil {
		return models.Session{}, err
	}

	session.Filter = NormalizeFilter(next)
	session.Pagination = pagination.Reset(session.Pagination)
	session.UpdatedAt = s.now()

	if err := s.save(ctx, session); err != nil {
		return models.Session{}, err
	}
	return session, nil
}

// Next serves the session's next page. A call made while another page load
// for the same session is running fails with pagination.ErrBusy.
func (s *Service) Next(ctx context.Context, id string) (Page, error) {
	locks := s.locks(id)
	var page Page
	err := locks.guard.Do(func() error {
		locks.writeMu.Lock()
		defer locks.writeMu.Unlock()

		session, err := s.Get(ctx, id)
		if err != nil {
			return err
		}

		listings, err := s.listings.Listings(ctx)
		if err != nil {
			return err
		}

		result := filter.Apply(listings, session.Filter)
		items, nextState := pagination.NextPage(result.Listings, session.Pagination)

		page = Page{
			SessionID: session.ID,
			Items:     items,
			Page:      session.Pagination.Page,
			HasMore:   nextState.HasMore,
			Total:     len(result.Listings),
			Empty:     len(result.Listings) == 0,
		}

		if result.FellBack {
			session.Filter.QuickFilter = result.State.QuickFilter
			if !session.NoticeShown {
				session.NoticeShown = true
				page.Notice = FeaturedFallbackNotice
			}
		}
		page.Filter = session.Filter

		session.Pagination = nextState
		session.UpdatedAt = s.now()
		return s.save(ctx, session)
	})
	if err != nil {
		return Page{}, err
	}
	return page, nil
}

// Query computes one page of a filter without a session. Pages are numbered
// from 1.
func (s *Service) Query(ctx context.Context, state models.FilterState, pageNumber int) (Page, error) {
	listings, err := s.listings.Listings(ctx)
	if err != nil {
		return Page{}, err
	}

	result := filter.Apply(listings, NormalizeFilter(state))
	paginationState := pagination.NewState(s.tuning.ItemsPerPage)
	if pageNumber > 1 {
		paginationState.Page = pageNumber
	}
	items, nextState := pagination.NextPage(result.Listings, paginationState)

	page := Page{
		Items:   items,
		Page:    paginationState.Page,
		HasMore: nextState.HasMore,
		Total:   len(result.Listings),
		Empty:   len(result.Listings) == 0,
		Filter:  result.State,
	}
	if result.FellBack {
		page.Notice = FeaturedFallbackNotice
	}
	return page, nil
}

// Suggest runs a suggestion lookup for the session. When a newer lookup for
// the same session was issued meanwhile the result is reported stale and its
// items are dropped.
func (s *Service) Suggest(ctx context.Context, id string, query string, location string) (SuggestionResult, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return SuggestionResult{}, err
	}

	sequencer := &s.locks(id).sequencer
	seq := sequencer.Next()

	machine := suggest.NewMachine().InputChanged(query, location, seq, s.tuning.MinQueryLength)
	if machine.State == suggest.StateIdle {
		return SuggestionResult{Seq: seq, State: machine.State, Suggestions: []models.Suggestion{}}, nil
	}

	suggestions, err := s.aggregator.GetSuggestions(ctx, machine.Query, machine.Location)
	if !sequencer.IsLatest(seq) {
		return SuggestionResult{Seq: seq, Stale: true, State: machine.State, Suggestions: []models.Suggestion{}}, nil
	}
	if err != nil {
		return SuggestionResult{Seq: seq, State: suggest.StateError}, err
	}

	machine, _ = machine.ResultsArrived(seq, suggestions)
	if machine.Suggestions == nil {
		machine.Suggestions = []models.Suggestion{}
	}
	return SuggestionResult{Seq: seq, State: machine.State, Suggestions: machine.Suggestions}, nil
}

func (s *Service) LocationSuggestions(ctx context.Context, query string) ([]models.Suggestion, error) {
	return s.aggregator.LocationSuggestions(ctx, query)
}

// Forget drops the in-memory coordination state of purged sessions.
func (s *Service) Forget(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.sessions, strings.TrimSpace(id))
	}
}

func (s *Service) save(ctx context.Context, session models.Session) error {
	saved, err := s.store.Save(ctx, session)
	if err != nil {
		return fmt.Errorf("save browse session: %w", err)
	}
	if !saved {
		return ErrSessionNotFound
	}
	return nil
}

// locks returns the coordination state for id, creating it on first use.
// Request-scoped ids may alias a reused buffer, so the key is cloned.
func (s *Service) locks(id string) *sessionLocks {
	key := strings.TrimSpace(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	locks, ok := s.sessions[key]
	if !ok {
		locks = &sessionLocks{}
		s.sessions[strings.Clone(key)] = locks
	}
	return locks
}
