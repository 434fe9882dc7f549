package database

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/princinho/weatherbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryUsers is an in-process UserStore.
type MemoryUsers struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[string]models.User)}
}

func (m *MemoryUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryUsers) Insert(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Username]; ok {
		return ErrDuplicate
	}
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	m.users[user.Username] = *user
	return nil
}

func (m *MemoryUsers) SeedAdmin(ctx context.Context, user *models.User) (bool, error) {
	u := *user
	u.Admin = true
	if err := m.Insert(ctx, &u); err != nil {
		if err == ErrDuplicate {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *MemoryUsers) UpdatePassword(_ context.Context, username, hash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return 0, nil
	}
	u.PasswordHash = hash
	m.users[username] = u
	return 1, nil
}

// MemoryStations is an in-process StationStore. Every mutation holds the
// write lock, which gives the same per-document atomicity as the database.
type MemoryStations struct {
	mu       sync.RWMutex
	stations map[bson.ObjectID]*models.Station
}

func NewMemoryStations() *MemoryStations {
	return &MemoryStations{stations: make(map[bson.ObjectID]*models.Station)}
}

func (m *MemoryStations) Insert(_ context.Context, st *models.Station) (bson.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st.ID.IsZero() {
		st.ID = bson.NewObjectID()
	}
	m.stations[st.ID] = cloneStation(st)
	return st.ID, nil
}

func (m *MemoryStations) FindByID(_ context.Context, id bson.ObjectID) (*models.Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.stations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneStation(st), nil
}

func (m *MemoryStations) List(_ context.Context, skip, limit int64) ([]models.Station, error) {
	all := m.sorted(func(*models.Station) bool { return true })
	if skip < 0 {
		skip = 0
	}
	if skip >= int64(len(all)) {
		return []models.Station{}, nil
	}
	all = all[skip:]
	if limit > 0 && limit < int64(len(all)) {
		all = all[:limit]
	}
	return all, nil
}

func (m *MemoryStations) FindMany(_ context.Context, f models.StationFilter) ([]models.Station, error) {
	return m.sorted(func(st *models.Station) bool {
		if f.WithAlerts && len(st.Alerts) == 0 {
			return false
		}
		return containsFold(st.Region, f.Region) &&
			containsFold(st.State, f.State) &&
			containsFold(st.City, f.City) &&
			containsFold(st.Place, f.Place)
	}), nil
}

func (m *MemoryStations) Update(_ context.Context, id bson.ObjectID, patch models.StationPatch, now time.Time) (int64, error) {
	return m.mutate(id, func(st *models.Station) bool {
		patch.Apply(st)
		return true
	}, now)
}

func (m *MemoryStations) Delete(_ context.Context, id bson.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stations[id]; !ok {
		return 0, nil
	}
	delete(m.stations, id)
	return 1, nil
}

func (m *MemoryStations) PushComment(_ context.Context, id bson.ObjectID, c models.Comment, now time.Time) (int64, error) {
	return m.mutate(id, func(st *models.Station) bool {
		st.Comments = append(st.Comments, c)
		return true
	}, now)
}

func (m *MemoryStations) SetComment(_ context.Context, id bson.ObjectID, commentID string, patch models.CommentPatch, now time.Time) (int64, error) {
	return m.mutate(id, func(st *models.Station) bool {
		for i := range st.Comments {
			if st.Comments[i].ID == commentID {
				patch.Apply(&st.Comments[i])
				return true
			}
		}
		return false
	}, now)
}

func (m *MemoryStations) PullComment(_ context.Context, id bson.ObjectID, commentID string, now time.Time) (int64, error) {
	return m.mutate(id, func(st *models.Station) bool {
		kept := st.Comments[:0]
		for _, c := range st.Comments {
			if c.ID != commentID {
				kept = append(kept, c)
			}
		}
		found := len(kept) != len(st.Comments)
		st.Comments = kept
		return found
	}, now)
}

func (m *MemoryStations) PushReading(_ context.Context, id bson.ObjectID, r models.Reading, now time.Time) (int64, error) {
	return m.mutate(id, func(st *models.Station) bool {
		st.Readings = append(st.Readings, r)
		return true
	}, now)
}

func (m *MemoryStations) SetReading(_ context.Context, id bson.ObjectID, readingID string, patch models.ReadingPatch, now time.Time) (int64, error) {
	return m.mutate(id, func(st *models.Station) bool {
		for i := range st.Readings {
			if st.Readings[i].ID == readingID {
				patch.Apply(&st.Readings[i])
				return true
			}
		}
		return false
	}, now)
}

func (m *MemoryStations) PullReading(_ context.Context, id bson.ObjectID, readingID string, now time.Time) (int64, error) {
	return m.mutate(id, func(st *models.Station) bool {
		kept := st.Readings[:0]
		for _, r := range st.Readings {
			if r.ID != readingID {
				kept = append(kept, r)
			}
		}
		found := len(kept) != len(st.Readings)
		st.Readings = kept
		return found
	}, now)
}

// mutate applies fn to a private copy of the station and commits it only
// when fn reports a match.
func (m *MemoryStations) mutate(id bson.ObjectID, fn func(*models.Station) bool, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.stations[id]
	if !ok {
		return 0, nil
	}
	next := cloneStation(st)
	if !fn(next) {
		return 0, nil
	}
	ts := now
	next.LastUpdatedAt = &ts
	m.stations[id] = next
	return 1, nil
}

func (m *MemoryStations) sorted(keep func(*models.Station) bool) []models.Station {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Station, 0, len(m.stations))
	for _, st := range m.stations {
		if keep(st) {
			out = append(out, *cloneStation(st))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out
}

func cloneStation(st *models.Station) *models.Station {
	cp := *st
	cp.Alerts = append([]string{}, st.Alerts...)
	cp.Comments = append([]models.Comment{}, st.Comments...)
	cp.Readings = append([]models.Reading{}, st.Readings...)
	if st.LastUpdatedAt != nil {
		ts := *st.LastUpdatedAt
		cp.LastUpdatedAt = &ts
	}
	return &cp
}

func containsFold(s, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// MemoryRevocations is an in-process blacklist.
type MemoryRevocations struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{tokens: make(map[string]time.Time)}
}

func (m *MemoryRevocations) Revoke(_ context.Context, token string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[token]; !ok {
		m.tokens[token] = at
	}
	return nil
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tokens[token]
	return ok, nil
}

func (m *MemoryRevocations) Close(context.Context) error { return nil }
