package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yusufkecer/anamnesis-backend/internal/domain"
	"github.com/yusufkecer/anamnesis-backend/internal/repository"
)

type memStore struct {
	mu       sync.Mutex
	patients map[string]domain.Patient
	saves    int
}

func newMemStore() *memStore {
	return &memStore{patients: map[string]domain.Patient{}}
}

func (m *memStore) List(_ context.Context) ([]domain.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Patient, 0, len(m.patients))
	for _, p := range m.patients {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) Get(_ context.Context, id string) (*domain.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) Save(_ context.Context, p *domain.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patients[p.ID] = *p
	m.saves++
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.patients, id)
	return nil
}

// racingStore runs onGet once, after a document is read and before it is
// returned, to land a write in the middle of a read.
type racingStore struct {
	*memStore
	onGet func()
}

func (r *racingStore) Get(ctx context.Context, id string) (*domain.Patient, error) {
	p, err := r.memStore.Get(ctx, id)
	if hook := r.onGet; hook != nil {
		r.onGet = nil
		hook()
	}
	return p, err
}

type memCache struct {
	entries map[string]domain.Patient
	gens    map[string]int64
	evicted []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]domain.Patient{}, gens: map[string]int64{}}
}

func (c *memCache) key(id string, gen int64) string {
	return fmt.Sprintf("%s:%d", id, gen)
}

func (c *memCache) Get(_ context.Context, id string) (*domain.Patient, int64, bool, error) {
	gen := c.gens[id]
	p, ok := c.entries[c.key(id, gen)]
	if !ok {
		return nil, gen, false, nil
	}
	return &p, gen, true, nil
}

func (c *memCache) Set(_ context.Context, p *domain.Patient, gen int64) error {
	c.entries[c.key(p.ID, gen)] = *p
	return nil
}

// cached reports whether a read would be served from the cache.
func (c *memCache) cached(id string) bool {
	_, ok := c.entries[c.key(id, c.gens[id])]
	return ok
}

func (c *memCache) Invalidate(_ context.Context, id string) error {
	c.gens[id]++
	c.evicted = append(c.evicted, id)
	return nil
}

type memAccounts struct {
	nextID   int64
	accounts map[int64]domain.Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{accounts: map[int64]domain.Account{}}
}

func (m *memAccounts) Create(_ context.Context, email, hash string, role domain.Role) (int64, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return 0, repository.ErrDuplicateEmail
		}
	}
	m.nextID++
	m.accounts[m.nextID] = domain.Account{ID: m.nextID, Email: email, PasswordHash: hash, Role: role}
	return m.nextID, nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, nil
}

func (m *memAccounts) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *memAccounts) List(_ context.Context) ([]domain.Account, error) {
	var out []domain.Account
	for _, a := range m.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (m *memAccounts) UpdatePassword(_ context.Context, id int64, hash string) error {
	a := m.accounts[id]
	a.PasswordHash = hash
	m.accounts[id] = a
	return nil
}

func (m *memAccounts) Delete(_ context.Context, id int64) error {
	if _, ok := m.accounts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

type memTokens struct {
	accounts *memAccounts
	nextID   int64
	tokens   []domain.PasswordResetToken
}

func (m *memTokens) Create(_ context.Context, accountID int64, token string, expiresAt time.Time) error {
	m.nextID++
	m.tokens = append(m.tokens, domain.PasswordResetToken{ID: m.nextID, AccountID: accountID, Token: token, ExpiresAt: expiresAt})
	return nil
}

func (m *memTokens) GetValidByEmailAndToken(_ context.Context, email, token string) (*domain.PasswordResetToken, error) {
	for _, t := range m.tokens {
		a := m.accounts.accounts[t.AccountID]
		if a.Email == email && t.Token == token && !t.Used && t.ExpiresAt.After(time.Now()) {
			return &t, nil
		}
	}
	return nil, nil
}

func (m *memTokens) MarkUsed(_ context.Context, id int64) error {
	for i := range m.tokens {
		if m.tokens[i].ID == id {
			m.tokens[i].Used = true
		}
	}
	return nil
}

func (m *memTokens) DeleteByAccountID(_ context.Context, accountID int64) error {
	kept := m.tokens[:0]
	for _, t := range m.tokens {
		if t.AccountID != accountID {
			kept = append(kept, t)
		}
	}
	m.tokens = kept
	return nil
}

type sentMail struct {
	to, code string
}

type memMailer struct {
	sent []sentMail
	err  error
}

func (m *memMailer) SendPasswordReset(_ context.Context, to, code string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, code})
	return nil
}
