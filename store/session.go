// ABOUTME: Session-driven backend selection between server and local storage
// ABOUTME: Authenticated sessions get the SQL store; everyone else gets a local scope

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/networkia/networkia/db"
	"github.com/networkia/networkia/localstore"
	"github.com/networkia/networkia/models"
)

// DefaultLocalScope is used when no scope is configured for local mode.
const DefaultLocalScope = "demo"

// Session identifies the caller. Authentication happens upstream; an empty
// UserID means signed out.
type Session struct {
	UserID string
}

func (s Session) Authenticated() bool {
	return strings.TrimSpace(s.UserID) != ""
}

// Selector hands out the right Store for a session.
type Selector struct {
	db         *sql.DB
	kv         *localstore.KV
	localScope string

	mu     sync.Mutex
	locals map[string]*LocalStore
}

// NewSelector wires both backends. database may be nil for a local-only
// setup, in which case every session is served locally.
func NewSelector(database *sql.DB, kv *localstore.KV, localScope string) *Selector {
	if localScope == "" {
		localScope = DefaultLocalScope
	}
	return &Selector{
		db:         database,
		kv:         kv,
		localScope: localScope,
		locals:     make(map[string]*LocalStore),
	}
}

// LocalScope is the scope signed-out sessions are served from.
func (s *Selector) LocalScope() string { return s.localScope }

// For returns the server store for authenticated sessions when a database is
// configured, and the local store otherwise.
func (s *Selector) For(session Session) Store {
	if session.Authenticated() && s.db != nil {
		return NewSQLStore(s.db, strings.TrimSpace(session.UserID))
	}
	return s.Local(s.localScope)
}

// Local returns the local store for scope. Stores are cached so that all
// callers of one scope share a write lock.
func (s *Selector) Local(scope string) *LocalStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ls, ok := s.locals[scope]; ok {
		return ls
	}
	ls := NewLocalStore(s.kv, scope)
	s.locals[scope] = ls
	return ls
}

// Server returns the SQL store for owner, or nil when running local-only.
func (s *Selector) Server(owner string) Store {
	if s.db == nil {
		return nil
	}
	return NewSQLStore(s.db, owner)
}

// All enumerates a store for every server owner and every local scope holding
// data. Background jobs use it to sweep the whole dataset.
func (s *Selector) All(ctx context.Context) ([]Store, error) {
	var stores []Store

	if s.db != nil {
		owners, err := db.ListOwners(s.db)
		if err != nil {
			return nil, fmt.Errorf("failed to list owners: %w", err)
		}
		for _, owner := range owners {
			stores = append(stores, NewSQLStore(s.db, owner))
		}
	}

	if s.kv != nil {
		keys, err := s.kv.Keys()
		if err != nil {
			return nil, fmt.Errorf("failed to list local keys: %w", err)
		}
		scopes := make(map[string]bool)
		for _, k := range keys {
			scope, rest, ok := strings.Cut(string(k), ":")
			if ok && strings.HasPrefix(rest, kindContact+":") {
				scopes[scope] = true
			}
		}
		names := make([]string, 0, len(scopes))
		for name := range scopes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			stores = append(stores, s.Local(name))
		}
	}

	return stores, nil
}

// PublicProfile finds a shared profile by slug. Server profiles win over the
// default local scope.
func (s *Selector) PublicProfile(ctx context.Context, slug string) (*models.Contact, error) {
	if s.db != nil {
		contact, err := NewSQLStore(s.db, "").FindContactBySlug(ctx, slug)
		if err == nil || !errors.Is(err, ErrNotFound) {
			return contact, err
		}
	}
	return s.Local(s.localScope).FindContactBySlug(ctx, slug)
}
