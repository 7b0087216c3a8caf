package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/orgodyssey/odyssey/internal/core/domain"
	"github.com/orgodyssey/odyssey/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Unit of work
// ---------------------------------------------------------------------------

// stubTx runs fn directly and records which kind of unit of work was asked for.
// With snapshot set, a failed read-write unit restores the state captured
// before fn ran.
type stubTx struct {
	readWrite int
	readOnly  int

	snapshot func() (restore func())
	// failCommit is returned once by the next read-write unit after fn succeeds.
	failCommit error
	// replayOnce rolls back and reruns the next read-write callback, the way
	// a driver retries after a transient abort.
	replayOnce bool
}

func (t *stubTx) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	t.readWrite++
	restore := func() {}
	if t.snapshot != nil {
		restore = t.snapshot()
	}

	if t.replayOnce {
		t.replayOnce = false
		if err := fn(ctx); err != nil {
			restore()
			return err
		}
		restore()
	}

	err := fn(ctx)
	if err == nil && t.failCommit != nil {
		err, t.failCommit = t.failCommit, nil
	}
	if err != nil {
		restore()
	}
	return err
}

func (t *stubTx) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	t.readOnly++
	return fn(ctx)
}

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byEmail map[string]*domain.User
	nextID  int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// snapshot captures the current users and returns a func restoring them.
func (r *stubUserRepo) snapshot() func() {
	saved := make(map[string]*domain.User, len(r.byEmail))
	for k, u := range r.byEmail {
		saved[k] = cloneUser(u)
	}
	nextID := r.nextID
	return func() {
		r.byEmail = saved
		r.nextID = nextID
	}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = r.nextID
	r.byEmail[copy.Email] = copy
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) MarkEmailConfirmed(_ context.Context, email string) error {
	u, ok := r.byEmail[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.EmailConfirmed = true
	return nil
}

func (r *stubUserRepo) GrantAdmin(_ context.Context, email string) error {
	u, ok := r.byEmail[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Admin = true
	return nil
}

func (r *stubUserRepo) DeleteUnconfirmed(_ context.Context, email string) error {
	if u, ok := r.byEmail[email]; ok && !u.EmailConfirmed {
		delete(r.byEmail, email)
	}
	return nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, int64, error) {
	var admins int64
	for _, u := range r.byEmail {
		if u.Admin {
			admins++
		}
	}
	return int64(len(r.byEmail)), admins, nil
}

// ---------------------------------------------------------------------------
// In-memory employer and relation repositories
// ---------------------------------------------------------------------------

type stubEmployerRepo struct {
	byID    map[int64]*domain.Employer
	nextID  int64
	updates int
	// relations is shared so Delete can drop parent edges like the real stores.
	relations *stubRelationRepo
}

func newStubStores() (*stubEmployerRepo, *stubRelationRepo) {
	rels := &stubRelationRepo{edges: make(map[domain.Relation]struct{})}
	return &stubEmployerRepo{byID: make(map[int64]*domain.Employer), relations: rels}, rels
}

func cloneEmployer(e *domain.Employer) *domain.Employer {
	clone := *e
	if e.EndDate != nil {
		end := *e.EndDate
		clone.EndDate = &end
	}
	return &clone
}

func (r *stubEmployerRepo) Create(_ context.Context, e *domain.Employer) (*domain.Employer, error) {
	for _, existing := range r.byID {
		if existing.Name == e.Name {
			return nil, domain.ErrEmployerExists
		}
	}
	r.nextID++
	copy := cloneEmployer(e)
	copy.ID = r.nextID
	r.byID[copy.ID] = copy
	return cloneEmployer(copy), nil
}

func (r *stubEmployerRepo) Update(_ context.Context, e *domain.Employer) error {
	if _, ok := r.byID[e.ID]; !ok {
		return domain.ErrEmployerNotFound
	}
	r.updates++
	r.byID[e.ID] = cloneEmployer(e)
	return nil
}

func (r *stubEmployerRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrEmployerNotFound
	}
	delete(r.byID, id)
	for rel := range r.relations.edges {
		if rel.ChildID == id {
			delete(r.relations.edges, rel)
		}
	}
	return nil
}

func (r *stubEmployerRepo) FindByName(_ context.Context, name string) (*domain.Employer, error) {
	for _, e := range r.byID {
		if e.Name == name {
			return cloneEmployer(e), nil
		}
	}
	return nil, domain.ErrEmployerNotFound
}

func (r *stubEmployerRepo) List(_ context.Context) ([]*domain.Employer, error) {
	out := make([]*domain.Employer, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, cloneEmployer(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubEmployerRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

type stubRelationRepo struct {
	edges  map[domain.Relation]struct{}
	addErr error
}

func (r *stubRelationRepo) Add(_ context.Context, rel domain.Relation) error {
	if r.addErr != nil {
		return r.addErr
	}
	r.edges[rel] = struct{}{}
	return nil
}

func (r *stubRelationRepo) Exists(_ context.Context, rel domain.Relation) (bool, error) {
	_, ok := r.edges[rel]
	return ok, nil
}

func (r *stubRelationRepo) HasChildren(_ context.Context, parentID int64) (bool, error) {
	for rel := range r.edges {
		if rel.ParentID == parentID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubRelationRepo) List(_ context.Context) ([]domain.Relation, error) {
	out := make([]domain.Relation, 0, len(r.edges))
	for rel := range r.edges {
		out = append(out, rel)
	}
	return out, nil
}

func (r *stubRelationRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.edges)), nil
}

// ---------------------------------------------------------------------------
// Token, ledger, session and mail stubs
// ---------------------------------------------------------------------------

// stubCipher produces readable tokens: "tok|<email>|<rfc3339>".
type stubCipher struct{}

func (stubCipher) Seal(email string, issuedAt time.Time) (string, error) {
	return "tok|" + email + "|" + issuedAt.UTC().Format(time.RFC3339), nil
}

func (stubCipher) Open(token string) (string, time.Time, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 3 || parts[0] != "tok" {
		return "", time.Time{}, errors.New("malformed token")
	}
	ts, err := time.Parse(time.RFC3339, parts[2])
	if err != nil {
		return "", time.Time{}, err
	}
	return parts[1], ts, nil
}

type stubLedger struct {
	used map[string]bool
	err  error
}

func newStubLedger() *stubLedger { return &stubLedger{used: make(map[string]bool)} }

func (l *stubLedger) Redeem(_ context.Context, token string, _ time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.used[token] {
		return false, nil
	}
	l.used[token] = true
	return true, nil
}

func (l *stubLedger) Release(_ context.Context, token string) error {
	delete(l.used, token)
	return nil
}

type stubSessions struct {
	revoked map[string]time.Time
	err     error
}

func newStubSessions() *stubSessions { return &stubSessions{revoked: make(map[string]time.Time)} }

func (s *stubSessions) Revoke(_ context.Context, jti string, until time.Time) error {
	s.revoked[jti] = until
	return nil
}

func (s *stubSessions) IsRevoked(_ context.Context, jti string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.revoked[jti]
	return ok, nil
}

type stubMailer struct {
	mu   sync.Mutex
	sent []ports.Message
	err  error
}

func (m *stubMailer) Send(_ context.Context, msg ports.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}
