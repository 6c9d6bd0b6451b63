// Package dispatch turns one notification-worthy domain event into zero or
// more delivered notifications, one per interested project member, honoring
// each member's channel preference.
//
// Members are processed concurrently by a bounded pool of goroutines so a
// slow email provider delays only its own member. Processing is isolated per
// member: an email failure is logged, never aborts siblings, and never rolls
// back the member's already-persisted notification row (at-least-recorded,
// best-effort-delivered). Nothing is guaranteed to the triggering caller.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/taskflow/notify/internal/domain"
	"github.com/taskflow/notify/internal/push"
	"github.com/taskflow/notify/internal/store"
)

// PushSender delivers a notification over a user's live connection.
type PushSender interface {
	Send(ctx context.Context, userID uuid.UUID, n *domain.Notification) error
}

// EmailSender renders a notification into a transactional email and submits
// it to the provider.
type EmailSender interface {
	Send(ctx context.Context, to string, n *domain.Notification) error
}

// Config holds dispatcher tuning knobs.
type Config struct {
	// WorkerCount bounds the number of members processed concurrently.
	// Zero or negative falls back to 4.
	WorkerCount int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{WorkerCount: 4}
}

// Result summarizes one fan-out for observability. It carries no delivery
// guarantee: a counted email failure still has its notification row
// persisted, and a push to an offline user counts as delivered-nowhere
// without being a failure.
type Result struct {
	Members       int
	Persisted     int
	PushFailures  int
	EmailFailures int
	StoreFailures int
}

// Dispatcher fans out notification events to project members.
type Dispatcher struct {
	notifications store.NotificationStore
	memberships   store.MembershipStore
	users         store.UserStore
	push          PushSender
	email         EmailSender
	sem           chan struct{}
	logger        *slog.Logger
}

// New creates a Dispatcher. All collaborators are required.
func New(
	notifications store.NotificationStore,
	memberships store.MembershipStore,
	users store.UserStore,
	pushSender PushSender,
	emailSender EmailSender,
	cfg Config,
	logger *slog.Logger,
) *Dispatcher {
	if notifications == nil || memberships == nil || users == nil {
		panic("dispatcher stores cannot be nil")
	}
	if pushSender == nil || emailSender == nil {
		panic("dispatcher senders cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	workers := cfg.WorkerCount
	if workers <= 0 {
		workers = DefaultConfig().WorkerCount
	}

	return &Dispatcher{
		notifications: notifications,
		memberships:   memberships,
		users:         users,
		push:          pushSender,
		email:         emailSender,
		sem:           make(chan struct{}, workers),
		logger:        logger.With(slog.String("component", "dispatcher")),
	}
}

// HandleEvent implements events.Handler. Fan-out failures are contained
// here; only a failure to load the membership list surfaces, and the emitter
// merely logs it.
func (d *Dispatcher) HandleEvent(ctx context.Context, event *domain.NotificationEvent) error {
	_, err := d.Dispatch(ctx, event)
	return err
}

// Dispatch delivers the event to every member of its project whose
// preference is not "none". It returns once all members have been processed.
// The returned error is non-nil only when the membership list could not be
// loaded; per-member failures are reflected in the Result counters.
func (d *Dispatcher) Dispatch(ctx context.Context, event *domain.NotificationEvent) (Result, error) {
	if err := event.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid event: %w", err)
	}

	members, err := d.memberships.ListProjectMembers(ctx, event.ProjectID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load project members: %w", err)
	}

	log := d.logger.With(
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.Type)),
		slog.String("project_id", event.ProjectID.String()))

	if len(members) == 0 {
		log.Debug("no interested members, nothing to dispatch")
		return Result{}, nil
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	result := Result{Members: len(members)}

	for _, member := range members {
		wg.Add(1)
		d.sem <- struct{}{}
		go func(m domain.ProjectMember) {
			defer func() {
				<-d.sem
				wg.Done()
			}()

			outcome := d.notifyMember(ctx, log, event, m)

			mu.Lock()
			result.Persisted += outcome.Persisted
			result.PushFailures += outcome.PushFailures
			result.EmailFailures += outcome.EmailFailures
			result.StoreFailures += outcome.StoreFailures
			mu.Unlock()
		}(member)
	}
	wg.Wait()

	log.Info("dispatch complete",
		slog.Int("members", result.Members),
		slog.Int("persisted", result.Persisted),
		slog.Int("push_failures", result.PushFailures),
		slog.Int("email_failures", result.EmailFailures),
		slog.Int("store_failures", result.StoreFailures))

	return result, nil
}

// notifyMember handles one member end to end: persist the notification row,
// then attempt the preferred channels, push before email.
func (d *Dispatcher) notifyMember(
	ctx context.Context,
	log *slog.Logger,
	event *domain.NotificationEvent,
	member domain.ProjectMember,
) Result {
	var outcome Result

	memberLog := log.With(slog.String("user_id", member.UserID.String()))

	n, err := domain.NewNotification(member.UserID, event.Title, event.Message, event.Type)
	if err != nil {
		memberLog.Error("failed to build notification", slog.String("error", err.Error()))
		outcome.StoreFailures++
		return outcome
	}

	// The row is written before any delivery attempt so the notification is
	// recorded even if both channels fail.
	if err := d.notifications.Create(ctx, n); err != nil {
		memberLog.Error("failed to persist notification", slog.String("error", err.Error()))
		outcome.StoreFailures++
		return outcome
	}
	outcome.Persisted++

	if member.Preference.WantsPush() {
		if err := d.push.Send(ctx, member.UserID, n); err != nil {
			// A stale connection was already evicted by the sender; nothing
			// further to do on this channel.
			if errors.Is(err, push.ErrConnectionStale) {
				memberLog.Debug("push connection stale", slog.String("error", err.Error()))
			} else {
				memberLog.Warn("push delivery failed", slog.String("error", err.Error()))
			}
			outcome.PushFailures++
		}
	}

	if member.Preference.WantsEmail() {
		if err := d.sendEmail(ctx, member.UserID, n); err != nil {
			memberLog.Warn("email delivery failed", slog.String("error", err.Error()))
			outcome.EmailFailures++
		}
	}

	return outcome
}

func (d *Dispatcher) sendEmail(ctx context.Context, userID uuid.UUID, n *domain.Notification) error {
	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up recipient: %w", err)
	}

	if err := d.email.Send(ctx, user.Email, n); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
