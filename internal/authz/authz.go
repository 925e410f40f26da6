// Package authz caches which moderators of a community may remove
// content and which may restrict users.
package authz

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Farengier/usernotes-bot/internal/clock"
	"github.com/Farengier/usernotes-bot/internal/metrics"
	"github.com/Farengier/usernotes-bot/internal/platform"
	log "github.com/sirupsen/logrus"
)

// RefreshInterval is how long a moderator roster is trusted.
const RefreshInterval = 24 * time.Hour

const (
	permAll    = "all"
	permPosts  = "posts"
	permAccess = "access"
)

type ModeratorLister interface {
	Moderators(ctx context.Context, community string) ([]platform.Moderator, error)
}

// Set is an immutable set of user names.
type Set map[string]struct{}

func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Tracker holds the capability snapshot of one community. Reads refresh
// the snapshot lazily once it is older than RefreshInterval; a failed
// refresh keeps serving the previous snapshot.
type Tracker struct {
	community string
	lister    ModeratorLister
	clock     clock.Clock

	mtx         sync.RWMutex
	lastRefresh time.Time
	removers    Set
	restrictors Set
}

func NewTracker(community string, lister ModeratorLister, c clock.Clock) *Tracker {
	return &Tracker{
		community:   community,
		lister:      lister,
		clock:       c,
		removers:    Set{},
		restrictors: Set{},
	}
}

func (t *Tracker) Community() string {
	return t.community
}

// Removers returns moderators allowed to remove content. The set is
// valid even when err is not nil.
func (t *Tracker) Removers(ctx context.Context) (Set, error) {
	err := t.refreshIfStale(ctx)
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return t.removers, err
}

// Restrictors returns moderators allowed to restrict users. The set is
// valid even when err is not nil.
func (t *Tracker) Restrictors(ctx context.Context) (Set, error) {
	err := t.refreshIfStale(ctx)
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return t.restrictors, err
}

func (t *Tracker) CanRemove(ctx context.Context, user string) (bool, error) {
	s, err := t.Removers(ctx)
	return s.Has(user), err
}

func (t *Tracker) CanRestrict(ctx context.Context, user string) (bool, error) {
	s, err := t.Restrictors(ctx)
	return s.Has(user), err
}

// LastRefresh is the zero time until the first successful refresh.
func (t *Tracker) LastRefresh() time.Time {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return t.lastRefresh
}

func (t *Tracker) refreshIfStale(ctx context.Context) error {
	t.mtx.RLock()
	fresh := !t.lastRefresh.IsZero() && t.clock.Now().Sub(t.lastRefresh) < RefreshInterval
	t.mtx.RUnlock()
	if fresh {
		return nil
	}
	return t.Refresh(ctx)
}

// Refresh re-reads the moderator roster.
func (t *Tracker) Refresh(ctx context.Context) error {
	mods, err := t.lister.Moderators(ctx, t.community)
	if err != nil {
		metrics.Refreshes.WithLabelValues(t.community, "failed").Inc()
		return fmt.Errorf("moderators of %s: %w", t.community, err)
	}

	removers, restrictors := Set{}, Set{}
	for _, m := range mods {
		if hasAny(m.Permissions, permAll, permPosts) {
			removers[m.Name] = struct{}{}
		}
		if hasAny(m.Permissions, permAll, permAccess) {
			restrictors[m.Name] = struct{}{}
		}
	}

	t.mtx.Lock()
	t.removers = removers
	t.restrictors = restrictors
	t.lastRefresh = t.clock.Now()
	t.mtx.Unlock()

	metrics.Refreshes.WithLabelValues(t.community, "ok").Inc()
	log.Infof("[Authz %s] refreshed removers: %v", t.community, removers.Names())
	log.Infof("[Authz %s] refreshed restrictors: %v", t.community, restrictors.Names())
	return nil
}

func hasAny(perms []string, want ...string) bool {
	for _, p := range perms {
		for _, w := range want {
			if p == w {
				return true
			}
		}
	}
	return false
}

// Cache hands out one Tracker per community.
type Cache struct {
	lister ModeratorLister
	clock  clock.Clock

	mtx      sync.Mutex
	trackers map[string]*Tracker
}

func NewCache(lister ModeratorLister, c clock.Clock) *Cache {
	return &Cache{
		lister:   lister,
		clock:    c,
		trackers: map[string]*Tracker{},
	}
}

func (c *Cache) Tracker(community string) *Tracker {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	t, ok := c.trackers[community]
	if !ok {
		t = NewTracker(community, c.lister, c.clock)
		c.trackers[community] = t
	}
	return t
}

func (c *Cache) CapableRemovers(ctx context.Context, community string) (Set, error) {
	return c.Tracker(community).Removers(ctx)
}

func (c *Cache) CapableRestrictors(ctx context.Context, community string) (Set, error) {
	return c.Tracker(community).Restrictors(ctx)
}
