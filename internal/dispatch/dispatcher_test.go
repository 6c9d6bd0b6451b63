package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow/notify/internal/domain"
	"github.com/taskflow/notify/internal/store"
)

// callLog records channel attempts in invocation order across goroutines.
type callLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *callLog) add(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

func (l *callLog) count(prefix string) int {
	n := 0
	for _, e := range l.all() {
		if len(e) >= len(prefix) && e[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

type mockNotificationStore struct {
	store.NotificationStore

	mu      sync.Mutex
	created []*domain.Notification
	err     error
}

func (m *mockNotificationStore) Create(_ context.Context, n *domain.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotificationStore) createdFor(userID uuid.UUID) []*domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Notification
	for _, n := range m.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// mockMembershipStore mimics the real store: members with preference "none"
// are filtered out of the listing.
type mockMembershipStore struct {
	members []domain.ProjectMember
	err     error
}

func (m *mockMembershipStore) ListProjectMembers(
	_ context.Context,
	_ uuid.UUID,
) ([]domain.ProjectMember, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.ProjectMember
	for _, member := range m.members {
		if member.Preference != domain.PreferenceNone {
			out = append(out, member)
		}
	}
	return out, nil
}

type mockUserStore struct {
	store.UserStore

	users map[uuid.UUID]*domain.User
}

func (m *mockUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

type mockPushSender struct {
	log *callLog
	err error
}

func (m *mockPushSender) Send(_ context.Context, userID uuid.UUID, _ *domain.Notification) error {
	m.log.add("push:" + userID.String())
	return m.err
}

type mockEmailSender struct {
	log   *callLog
	errBy map[string]error
	delay time.Duration
}

func (m *mockEmailSender) Send(_ context.Context, to string, _ *domain.Notification) error {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.log.add("email:" + to)
	if m.errBy != nil {
		return m.errBy[to]
	}
	return nil
}

type fixture struct {
	dispatcher    *Dispatcher
	notifications *mockNotificationStore
	log           *callLog
	email         *mockEmailSender
	push          *mockPushSender
}

func newFixture(t *testing.T, members []domain.ProjectMember, users map[uuid.UUID]*domain.User) *fixture {
	t.Helper()

	log := &callLog{}
	notifications := &mockNotificationStore{}
	push := &mockPushSender{log: log}
	email := &mockEmailSender{log: log}

	d := New(
		notifications,
		&mockMembershipStore{members: members},
		&mockUserStore{users: users},
		push,
		email,
		Config{WorkerCount: 4},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	return &fixture{dispatcher: d, notifications: notifications, log: log, email: email, push: push}
}

func memberUser(pref domain.DeliveryPreference, email string) (domain.ProjectMember, *domain.User) {
	id := uuid.New()
	return domain.ProjectMember{UserID: id, Preference: pref}, &domain.User{
		ID:         id,
		Email:      email,
		Name:       "member",
		Preference: pref,
		CreatedAt:  time.Now(),
	}
}

func dispatchEvent(t *testing.T, f *fixture) Result {
	t.Helper()
	event, err := domain.NewNotificationEvent(domain.TypeTaskCreated, uuid.New(), "X", "Task X was created")
	require.NoError(t, err)

	result, err := f.dispatcher.Dispatch(context.Background(), event)
	require.NoError(t, err, "dispatch must not fail for per-member errors")
	return result
}

func TestDispatchMixedPreferences(t *testing.T) {
	t.Parallel()

	// Project with members [A(push), B(email), C(none)].
	a, userA := memberUser(domain.PreferencePush, "a@example.com")
	b, userB := memberUser(domain.PreferenceEmail, "b@example.com")
	c, userC := memberUser(domain.PreferenceNone, "c@example.com")

	f := newFixture(t,
		[]domain.ProjectMember{a, b, c},
		map[uuid.UUID]*domain.User{userA.ID: userA, userB.ID: userB, userC.ID: userC})

	result := dispatchEvent(t, f)

	assert.Equal(t, 2, result.Persisted, "exactly two notification rows: A and B")
	assert.Len(t, f.notifications.createdFor(a.UserID), 1)
	assert.Len(t, f.notifications.createdFor(b.UserID), 1)
	assert.Empty(t, f.notifications.createdFor(c.UserID), "preference none gets no row")

	assert.Equal(t, 1, f.log.count("push:"), "exactly one push attempt")
	assert.Equal(t, 1, f.log.count("email:"), "exactly one email attempt")
	assert.Contains(t, f.log.all(), "push:"+a.UserID.String())
	assert.Contains(t, f.log.all(), "email:b@example.com")
}

func TestDispatchBothSendsPushBeforeEmail(t *testing.T) {
	t.Parallel()

	m, user := memberUser(domain.PreferenceBoth, "both@example.com")
	f := newFixture(t, []domain.ProjectMember{m}, map[uuid.UUID]*domain.User{user.ID: user})

	result := dispatchEvent(t, f)

	assert.Equal(t, 1, result.Persisted)
	require.Equal(t, []string{
		"push:" + m.UserID.String(),
		"email:both@example.com",
	}, f.log.all(), "both channels, push attempted first")
}

func TestDispatchEmailFailureIsIsolated(t *testing.T) {
	t.Parallel()

	a, userA := memberUser(domain.PreferencePush, "a@example.com")
	b, userB := memberUser(domain.PreferenceEmail, "b@example.com")

	f := newFixture(t,
		[]domain.ProjectMember{a, b},
		map[uuid.UUID]*domain.User{userA.ID: userA, userB.ID: userB})
	f.email.errBy = map[string]error{"b@example.com": errors.New("provider unavailable")}

	result := dispatchEvent(t, f)

	assert.Equal(t, 1, result.EmailFailures)
	assert.Equal(t, 1, f.log.count("push:"), "A's push still happens")

	// B's row survives the failed email and stays unread.
	rows := f.notifications.createdFor(b.UserID)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Read)
}

func TestDispatchPushOfflineIsNotAFailure(t *testing.T) {
	t.Parallel()

	m, user := memberUser(domain.PreferencePush, "a@example.com")
	f := newFixture(t, []domain.ProjectMember{m}, map[uuid.UUID]*domain.User{user.ID: user})
	// The real push sender returns nil for offline users; the mock does too.

	result := dispatchEvent(t, f)
	assert.Zero(t, result.PushFailures)
	assert.Equal(t, 1, result.Persisted)
}

func TestDispatchUnknownRecipientCountsEmailFailure(t *testing.T) {
	t.Parallel()

	m, _ := memberUser(domain.PreferenceEmail, "ghost@example.com")
	f := newFixture(t, []domain.ProjectMember{m}, map[uuid.UUID]*domain.User{})

	result := dispatchEvent(t, f)
	assert.Equal(t, 1, result.EmailFailures)
	assert.Equal(t, 1, result.Persisted, "the row is still recorded")
}

func TestDispatchMembershipLoadFailure(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	d := New(
		&mockNotificationStore{},
		&mockMembershipStore{err: errors.New("db down")},
		&mockUserStore{},
		&mockPushSender{log: log},
		&mockEmailSender{log: log},
		DefaultConfig(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	event, err := domain.NewNotificationEvent(domain.TypeTaskCreated, uuid.New(), "X", "body")
	require.NoError(t, err)

	_, err = d.Dispatch(context.Background(), event)
	assert.Error(t, err)
	assert.Empty(t, log.all(), "no sends when membership cannot be loaded")
}

func TestDispatchInvalidEvent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, nil)
	_, err := f.dispatcher.Dispatch(context.Background(), &domain.NotificationEvent{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDispatchProcessesManyMembersConcurrently(t *testing.T) {
	t.Parallel()

	members := make([]domain.ProjectMember, 8)
	users := make(map[uuid.UUID]*domain.User, 8)
	for i := range members {
		m, u := memberUser(domain.PreferenceEmail, fmt.Sprintf("u%d@example.com", i))
		members[i] = m
		users[u.ID] = u
	}

	f := newFixture(t, members, users)
	f.email.delay = 20 * time.Millisecond

	start := time.Now()
	result := dispatchEvent(t, f)
	elapsed := time.Since(start)

	assert.Equal(t, 8, result.Persisted)
	assert.Equal(t, 8, f.log.count("email:"))
	// Sequential processing would take >=160ms; four workers bound it well
	// below that. Generous margin to stay robust on loaded CI machines.
	assert.Less(t, elapsed, 120*time.Millisecond, "slow emails must not serialize the fan-out")
}
