package services

import (
	"context"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/go-redis/redis/v8"

	"soporte/internal/entities"
	"soporte/internal/repositories"
	apperrors "soporte/pkg/errors"
)

type memoryCache struct {
	mu      sync.Mutex
	data    map[string]string
	ttl     map[string]time.Duration
	failGet error
	failSet error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	m.data[key] = value.(string)
	m.ttl[key] = expiration
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return "", m.failGet
	}
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

// fakeTicketRepo запоминает выборки и отвечает заготовленными данными.
type fakeTicketRepo struct {
	ids        []uint64
	tickets    []entities.Ticket
	count      uint64
	found      *entities.Ticket
	err        error
	selections []repositories.TicketSelection
	idCalls    int
}

func (f *fakeTicketRepo) FindTicketIDs(_ context.Context, sel repositories.TicketSelection) ([]uint64, error) {
	f.idCalls++
	f.selections = append(f.selections, sel)
	return f.ids, f.err
}

func (f *fakeTicketRepo) CountTickets(_ context.Context, sel repositories.TicketSelection) (uint64, error) {
	f.selections = append(f.selections, sel)
	return f.count, f.err
}

func (f *fakeTicketRepo) GetTickets(_ context.Context, sel repositories.TicketSelection) ([]entities.Ticket, error) {
	f.selections = append(f.selections, sel)
	return f.tickets, f.err
}

func (f *fakeTicketRepo) FindTicket(_ context.Context, sel repositories.TicketSelection) (*entities.Ticket, error) {
	f.selections = append(f.selections, sel)
	if f.found == nil {
		return nil, apperrors.ErrNotFound
	}
	return f.found, f.err
}

type fakeQueueRepo struct {
	queues []entities.Queue
	access sq.Sqlizer
}

func (f *fakeQueueRepo) GetQueues(_ context.Context, access sq.Sqlizer) ([]entities.Queue, error) {
	f.access = access
	return f.queues, nil
}

type fakeUserRepo struct {
	staff []entities.User
}

func (f *fakeUserRepo) FindUser(_ context.Context, id uint64, defaultPerPage int) (*entities.User, error) {
	for _, u := range f.staff {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) GetActiveStaff(context.Context) ([]entities.User, error) {
	return f.staff, nil
}

type fakeSavedSearchRepo struct {
	searches []entities.SavedSearch
	lookups  []uint64
}

func (f *fakeSavedSearchRepo) FindVisible(_ context.Context, id, userID uint64) (*entities.SavedSearch, error) {
	f.lookups = append(f.lookups, id)
	for _, s := range f.searches {
		if s.ID == id && s.VisibleTo(userID) {
			return &s, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeSavedSearchRepo) GetVisible(_ context.Context, userID uint64) ([]entities.SavedSearch, error) {
	visible := make([]entities.SavedSearch, 0)
	for _, s := range f.searches {
		if s.VisibleTo(userID) {
			visible = append(visible, s)
		}
	}
	return visible, nil
}

type fakeKBItemRepo struct {
	items []entities.KBItem
}

func (f *fakeKBItemRepo) GetKBItems(context.Context) ([]entities.KBItem, error) {
	return f.items, nil
}

type fakeCustomFieldRepo struct {
	values map[uint64]string
	asked  []uint64
}

func (f *fakeCustomFieldRepo) GetFirstValues(_ context.Context, ids []uint64) (map[uint64]string, error) {
	f.asked = append(f.asked, ids...)
	out := map[uint64]string{}
	for _, id := range ids {
		if v, ok := f.values[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func sampleTicket(id uint64, priority int) entities.Ticket {
	return entities.Ticket{
		ID:             id,
		Title:          "Impresora sin tóner",
		QueueID:        3,
		QueueTitle:     "Soporte",
		QueueSlug:      "soporte",
		Status:         1,
		Priority:       priority,
		Created:        time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		AssignedToName: null.StringFrom("Ana Gómez"),
		SubmitterEmail: null.StringFrom("cliente@example.com"),
	}
}
