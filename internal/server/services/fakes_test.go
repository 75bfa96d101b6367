package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/thabitrevor/wedding/internal/common"
	"github.com/thabitrevor/wedding/internal/dbx"
	"github.com/thabitrevor/wedding/internal/logging"
	"github.com/thabitrevor/wedding/internal/server/config"
	"github.com/thabitrevor/wedding/internal/server/locks"
	"github.com/thabitrevor/wedding/internal/server/models"
	"github.com/thabitrevor/wedding/internal/server/notify"
	"github.com/thabitrevor/wedding/internal/server/repositories/photos"
	"github.com/thabitrevor/wedding/internal/server/repositories/rsvps"
)

// callLog records collaborator calls in order across goroutines.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(c string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, c)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func (l *callLog) count(c string) int {
	n := 0
	for _, x := range l.snapshot() {
		if x == c {
			n++
		}
	}
	return n
}

// fakeRSVPRepo is an in-memory store with an email unique constraint.
type fakeRSVPRepo struct {
	mu      sync.Mutex
	log     *callLog
	byEmail map[string]*models.RSVP
	order   []*models.RSVP
	created []*models.RSVP

	findErr   error
	createErr error
	listErr   error

	// blockFind and blockCreate make the call wait for ctx to end.
	blockFind   bool
	blockCreate bool
}

func newFakeRSVPRepo(log *callLog) *fakeRSVPRepo {
	return &fakeRSVPRepo{log: log, byEmail: map[string]*models.RSVP{}}
}

func (f *fakeRSVPRepo) FindByEmail(ctx context.Context, email string) (*models.RSVP, error) {
	f.log.add("find:" + email)
	if f.blockFind {
		<-ctx.Done()
		return nil, fmt.Errorf("db error: %w", ctx.Err())
	}
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.byEmail[email]; ok {
		return r, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRSVPRepo) Create(ctx context.Context, r *models.RSVP) error {
	f.log.add("insert:" + r.Email)
	if f.blockCreate {
		<-ctx.Done()
		return fmt.Errorf("db error: %w", ctx.Err())
	}
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[r.Email]; ok {
		return common.ErrorAlreadyExists
	}
	r.ID = "id-" + r.Email
	f.byEmail[r.Email] = r
	f.order = append(f.order, r)
	f.created = append(f.created, r)
	return nil
}

func (f *fakeRSVPRepo) List(ctx context.Context) ([]*models.RSVP, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.RSVP(nil), f.order...), nil
}

type fakeRepoManager struct {
	rsvps  rsvps.Repository
	photos photos.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) RSVPs(dbx.DBTX) rsvps.Repository             { return m.rsvps }
func (m *fakeRepoManager) Photos(dbx.DBTX) photos.Repository           { return m.photos }

// fakeNotifier records messages and returns err.
type fakeNotifier struct {
	log  *callLog
	err  error
	mu   sync.Mutex
	sent []notify.Message
}

func (n *fakeNotifier) SendRSVPConfirmation(ctx context.Context, m notify.Message) error {
	n.log.add("notify:" + m.Email)
	n.mu.Lock()
	n.sent = append(n.sent, m)
	n.mu.Unlock()
	return n.err
}

func (n *fakeNotifier) messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.sent...)
}

type fakeLocker struct {
	log *callLog
	err error
}

func (l *fakeLocker) Acquire(ctx context.Context, key string) (locks.ReleaseFunc, error) {
	l.log.add("lock:" + key)
	if l.err != nil {
		return nil, l.err
	}
	return func(context.Context) error {
		l.log.add("unlock:" + key)
		return nil
	}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		StoreTimeout:  time.Second,
		NotifyTimeout: time.Second,
		CoupleNames:   "Thabi & Trevor",
	}
}

type rsvpFixture struct {
	log      *callLog
	repo     *fakeRSVPRepo
	notifier *fakeNotifier
	locker   *fakeLocker
	svc      *RSVPService
}

func newRSVPFixture(t *testing.T) *rsvpFixture {
	t.Helper()
	log := &callLog{}
	f := &rsvpFixture{
		log:      log,
		repo:     newFakeRSVPRepo(log),
		notifier: &fakeNotifier{log: log},
		locker:   &fakeLocker{log: log},
	}
	f.svc = NewRSVPService(nil, &fakeRepoManager{rsvps: f.repo}, f.notifier, f.locker, logging.Discard(), testConfig())
	f.svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(f.svc.Wait)
	return f
}
