package tickets

import (
	"context"
	"sort"
	"sync"
	"time"

	"referral-giveaway-bot/internal/domain/referral"
	domainseason "referral-giveaway-bot/internal/domain/season"
	"referral-giveaway-bot/internal/domain/user"
)

// memStore is an in-memory user.Repository and referral.Ledger. A single
// mutex stands in for the per-row lock.
type memStore struct {
	mu    sync.Mutex
	users map[int64]*user.User
	facts map[int64][]user.ChannelFact
	edges map[[2]int64]time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users: map[int64]*user.User{},
		facts: map[int64][]user.ChannelFact{},
		edges: map[[2]int64]time.Time{},
	}
}

func (m *memStore) apply(id int64, fn user.MutateFunc) (*user.User, error) {
	cur, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	work := cloneUser(cur)
	if fn != nil {
		if err := fn(work); err != nil {
			return nil, err
		}
	}
	m.users[id] = work
	return cloneUser(work), nil
}

func (m *memStore) Upsert(_ context.Context, id int64, name string, now time.Time, fn user.MutateFunc) (*user.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	created := false
	if u, ok := m.users[id]; ok {
		if name != "" {
			u.DisplayName = name
		}
		u.LastSeenAt = now
	} else {
		m.users[id] = &user.User{ID: id, DisplayName: name, LastSeenAt: now, CreatedAt: now}
		created = true
	}
	u, err := m.apply(id, fn)
	return u, created, err
}

func (m *memStore) Mutate(_ context.Context, id int64, fn user.MutateFunc) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.apply(id, fn)
}

func (m *memStore) SaveSubscriptions(_ context.Context, id int64, facts []user.ChannelFact, fn user.MutateFunc) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return nil, user.ErrNotFound
	}
	u, err := m.apply(id, fn)
	if err != nil {
		return nil, err
	}
	m.facts[id] = append([]user.ChannelFact(nil), facts...)
	return u, nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (m *memStore) ListSubscriptions(_ context.Context, id int64) ([]user.ChannelFact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]user.ChannelFact(nil), m.facts[id]...), nil
}

func (m *memStore) Top(_ context.Context, seasonID int64, limit int) ([]user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]user.User, 0, len(m.users))
	for _, u := range m.users {
		if u.SeasonID == seasonID && u.TotalTickets > 0 {
			out = append(out, *cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalTickets != out[j].TotalTickets {
			return out[i].TotalTickets > out[j].TotalTickets
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) Stats(_ context.Context, seasonID int64) (*user.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := &user.Stats{}
	for _, u := range m.users {
		st.Registered++
		if u.Activated {
			st.Activated++
		}
		if u.SeasonID != seasonID || !u.AllSubscribed {
			continue
		}
		if u.TotalTickets > 0 {
			st.Eligible++
		}
		st.TotalTickets += u.TotalTickets
	}
	return st, nil
}

func (m *memStore) TryAttribute(_ context.Context, e referral.Edge, fn user.MutateFunc) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]int64{e.ReferrerID, e.ReferredID}
	if _, ok := m.edges[key]; ok {
		return false, nil
	}
	if _, err := m.apply(e.ReferrerID, fn); err != nil {
		return false, err
	}
	m.edges[key] = e.CreatedAt
	return true, nil
}

func (m *memStore) CountByReferrer(_ context.Context, referrerID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.edges {
		if k[0] == referrerID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) get(id int64) *user.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneUser(m.users[id])
}

func cloneUser(u *user.User) *user.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.LastSpinAt != nil {
		t := *u.LastSpinAt
		c.LastSpinAt = &t
	}
	return &c
}

type fakeSeasons struct {
	mu      sync.Mutex
	current domainseason.Season
}

func (f *fakeSeasons) GetOrCreateActiveSeason(context.Context) (*domainseason.Season, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.current
	return &s, nil
}

func (f *fakeSeasons) ForceNewSeason(context.Context) (*domainseason.Season, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = domainseason.Season{ID: f.current.ID + 1, StartedAt: f.current.EndsAt, EndsAt: f.current.EndsAt.Add(7 * 24 * time.Hour)}
	s := f.current
	return &s, nil
}

func (f *fakeSeasons) advance() {
	_, _ = f.ForceNewSeason(context.Background())
}

// fakeOracle answers from a (user, channel) table; missing entries are false.
type fakeOracle struct {
	mu      sync.Mutex
	members map[int64]map[string]bool
}

func (o *fakeOracle) set(userID int64, channel string, member bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.members == nil {
		o.members = map[int64]map[string]bool{}
	}
	if o.members[userID] == nil {
		o.members[userID] = map[string]bool{}
	}
	o.members[userID][channel] = member
}

func (o *fakeOracle) IsMember(_ context.Context, userID int64, channel string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.members[userID][channel]
}

type fakeSettings struct {
	mu     sync.Mutex
	values map[string]bool
}

func (f *fakeSettings) GetBool(_ context.Context, key string, def bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return def, nil
}

func (f *fakeSettings) SetBool(_ context.Context, key string, value bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values == nil {
		f.values = map[string]bool{}
	}
	f.values[key] = value
	return nil
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var (
	channelA = "@sponsor_a"
	channelB = "@sponsor_b"
)

type harness struct {
	svc      *Service
	store    *memStore
	seasons  *fakeSeasons
	oracle   *fakeOracle
	settings *fakeSettings
	clock    *clock
}

func newHarness() *harness {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	h := &harness{
		store:    newMemStore(),
		seasons:  &fakeSeasons{current: domainseason.Season{ID: 1, StartedAt: start, EndsAt: start.Add(7 * 24 * time.Hour)}},
		oracle:   &fakeOracle{},
		settings: &fakeSettings{},
		clock:    &clock{t: start.Add(time.Hour)},
	}
	h.svc = NewService(h.store, h.store, h.seasons, h.oracle, h.settings, Options{
		Channels:    []string{channelA, channelB},
		BotUsername: "@giveaway_bot",
		Prize:       "iPhone",
	}).WithClock(h.clock.Now)
	return h
}

func (h *harness) subscribeAll(userID int64) {
	h.oracle.set(userID, channelA, true)
	h.oracle.set(userID, channelB, true)
}
