package application

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/bookworm-api/internal/domain/entity"
	repo "github.com/oksasatya/bookworm-api/internal/domain/repository"
)

// memUsers is an in-memory UserRepository with the same uniqueness rules as the database.
type memUsers struct {
	mu      sync.Mutex
	byID    map[string]*entity.User
	seq     int
	failErr error
	// createHook runs before Create commits, letting tests simulate a concurrent insert
	createHook func()
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*entity.User{}} }

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	if m.createHook != nil {
		m.createHook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
		if existing.Username == u.Username {
			return repo.ErrDuplicateUsername
		}
	}
	m.seq++
	u.ID = "user-" + strconv.Itoa(m.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) find(match func(*entity.User) bool) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	for _, u := range m.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.ID == id })
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.Email == email })
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.Username == username })
}

func (m *memUsers) delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
}

// memBooks is an in-memory BookRepository.
type memBooks struct {
	mu        sync.Mutex
	books     map[string]*entity.Book
	seq       int
	clock     time.Time
	failErr   error
	deleteErr error
	reads     int
}

func newMemBooks() *memBooks {
	return &memBooks{books: map[string]*entity.Book{}, clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memBooks) Create(_ context.Context, b *entity.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.seq++
	m.clock = m.clock.Add(time.Minute)
	b.ID = "book-" + strconv.Itoa(m.seq)
	b.CreatedAt, b.UpdatedAt = m.clock, m.clock
	cp := *b
	m.books[b.ID] = &cp
	return nil
}

func (m *memBooks) GetByID(_ context.Context, id string) (*entity.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.failErr != nil {
		return nil, m.failErr
	}
	b, ok := m.books[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *b
	cp.Author = &entity.Author{ID: b.UserID, Username: "owner-" + b.UserID}
	return &cp, nil
}

func (m *memBooks) sorted(match func(*entity.Book) bool) []entity.Book {
	out := []entity.Book{}
	for _, b := range m.books {
		if match(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memBooks) List(_ context.Context, offset, limit int) ([]entity.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	all := m.sorted(func(*entity.Book) bool { return true })
	if offset >= len(all) {
		return []entity.Book{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memBooks) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.books)), m.failErr
}

func (m *memBooks) ListByUser(_ context.Context, userID string) ([]entity.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(b *entity.Book) bool { return b.UserID == userID }), m.failErr
}

func (m *memBooks) Update(_ context.Context, b *entity.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[b.ID]; !ok {
		return repo.ErrNotFound
	}
	m.clock = m.clock.Add(time.Minute)
	b.UpdatedAt = m.clock
	cp := *b
	cp.Author = nil
	m.books[b.ID] = &cp
	return nil
}

func (m *memBooks) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.books[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.books, id)
	return nil
}

// fakeImages records uploads and deletions.
type fakeImages struct {
	uploaded  []string
	deleted   []string
	uploadErr error
	deleteErr error
}

func (f *fakeImages) Upload(_ context.Context, ownerID, payload string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	if !strings.HasPrefix(payload, "data:") && !strings.HasPrefix(payload, "http") {
		return "", ErrInvalidImage
	}
	url := "https://cdn.test/" + ownerID + "/" + strconv.Itoa(len(f.uploaded)+1)
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeImages) Delete(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return f.deleteErr
}

// fakeIndex is an in-memory BookIndex.
type fakeIndex struct {
	docs      map[string]entity.Book
	searchErr error
	lastSize  int
}

func newFakeIndex() *fakeIndex { return &fakeIndex{docs: map[string]entity.Book{}} }

func (f *fakeIndex) Index(_ context.Context, b *entity.Book) error {
	f.docs[b.ID] = *b
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, id string) error {
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, q string, size int) ([]entity.Book, error) {
	f.lastSize = size
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	out := []entity.Book{}
	for _, b := range f.docs {
		if strings.Contains(strings.ToLower(b.Title+" "+b.Caption), strings.ToLower(q)) {
			out = append(out, b)
		}
	}
	return out, nil
}

// fakeCache is an in-memory BookCache.
type fakeCache struct {
	items map[string]entity.Book
}

func newFakeCache() *fakeCache { return &fakeCache{items: map[string]entity.Book{}} }

func (f *fakeCache) Get(_ context.Context, id string) (*entity.Book, bool) {
	b, ok := f.items[id]
	if !ok {
		return nil, false
	}
	return &b, true
}

func (f *fakeCache) Set(_ context.Context, b *entity.Book) { f.items[b.ID] = *b }

func (f *fakeCache) Invalidate(_ context.Context, id string) { delete(f.items, id) }

// fakePublisher records published jobs.
type fakePublisher struct {
	jobs []any
	err  error
}

func (f *fakePublisher) PublishJSON(_ context.Context, body any) error {
	f.jobs = append(f.jobs, body)
	return f.err
}
