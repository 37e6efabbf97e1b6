package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rush-skills/plane/internal/model"
	"github.com/rush-skills/plane/internal/repository"
	"github.com/rush-skills/plane/internal/service/workspace"
	apperrors "github.com/rush-skills/plane/pkg/errors"
	"github.com/rush-skills/plane/pkg/logger"
	"github.com/rush-skills/plane/pkg/messaging"
	"github.com/rush-skills/plane/pkg/metrics"
	"github.com/rush-skills/plane/pkg/validator"
)

const notFoundMessage = "Notification does not exists"

const (
	transitionSnooze    = "snooze"
	transitionRead      = "read"
	transitionUnread    = "unread"
	transitionArchive   = "archive"
	transitionUnarchive = "unarchive"
)

// Service is the notification feed of a single user inside a workspace.
// Every operation is scoped to (workspace, receiver); notifications of other users are NotFound.
type Service interface {
	List(ctx context.Context, workspaceSlug string, userID uuid.UUID, params model.NotificationListParams) ([]*model.Notification, error)
	Get(ctx context.Context, workspaceSlug, id string, userID uuid.UUID) (*model.Notification, error)
	PartialUpdateSnooze(ctx context.Context, workspaceSlug, id string, userID uuid.UUID, snoozedTill *string) (*model.Notification, error)
	MarkRead(ctx context.Context, workspaceSlug, id string, userID uuid.UUID) (*model.Notification, error)
	MarkUnread(ctx context.Context, workspaceSlug, id string, userID uuid.UUID) (*model.Notification, error)
	Archive(ctx context.Context, workspaceSlug, id string, userID uuid.UUID) (*model.Notification, error)
	Unarchive(ctx context.Context, workspaceSlug, id string, userID uuid.UUID) (*model.Notification, error)
}

type Option func(*service)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithSnoozePolicy(policy model.SnoozePolicy) Option {
	return func(s *service) { s.snoozePolicy = policy }
}

type service struct {
	repo         repository.NotificationRepository
	memberships  repository.MembershipRepository
	workspaces   workspace.Resolver
	publisher    messaging.Publisher
	metrics      *metrics.Metrics
	logger       *logger.Logger
	now          func() time.Time
	snoozePolicy model.SnoozePolicy
}

func NewService(
	repo repository.NotificationRepository,
	memberships repository.MembershipRepository,
	workspaces workspace.Resolver,
	publisher messaging.Publisher,
	m *metrics.Metrics,
	log *logger.Logger,
	opts ...Option,
) Service {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	if log == nil {
		log = logger.NewLogger(nil)
	}
	s := &service{
		repo:        repo,
		memberships: memberships,
		workspaces:  workspaces,
		publisher:   publisher,
		metrics:     m,
		logger:      log,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) List(ctx context.Context, workspaceSlug string, userID uuid.UUID, params model.NotificationListParams) ([]*model.Notification, error) {
	workspaceID, err := s.workspaces.ResolveID(ctx, workspaceSlug)
	if errors.Is(err, repository.ErrNotFound) {
		return []*model.Notification{}, nil
	}
	if err != nil {
		return nil, s.internal(err, "failed to resolve workspace", "workspace", workspaceSlug)
	}

	filter := &model.NotificationFilter{
		WorkspaceID:  workspaceID,
		ReceiverID:   userID,
		Now:          s.now(),
		Snoozed:      model.ParseBoolFilter(params.Snoozed),
		Read:         model.ParseBoolFilter(params.Read),
		Archived:     model.ParseBoolFilter(params.Archived),
		SnoozePolicy: s.snoozePolicy,
		Order:        model.ParseSortOrder(params.OrderBy),
	}

	if err := s.restrictByType(ctx, filter, model.ParseNotificationType(params.Type)); err != nil {
		return nil, s.internal(err, "failed to resolve issue memberships", "workspace", workspaceSlug, "type", params.Type)
	}

	notifications, err := s.repo.FindMany(ctx, filter)
	if err != nil {
		return nil, s.internal(err, "failed to list notifications", "workspace", workspaceSlug)
	}

	if s.metrics != nil {
		s.metrics.ListResults.Observe(float64(len(notifications)))
	}
	return notifications, nil
}

func (s *service) restrictByType(ctx context.Context, filter *model.NotificationFilter, t model.NotificationType) error {
	var lookup func(ctx context.Context, workspaceID, userID uuid.UUID) ([]uuid.UUID, error)
	switch t {
	case model.NotificationTypeWatching:
		lookup = s.memberships.IssueIDsWatchedBy
	case model.NotificationTypeAssigned:
		lookup = s.memberships.IssueIDsAssignedTo
	case model.NotificationTypeCreated:
		lookup = s.memberships.IssueIDsCreatedBy
	default:
		return nil
	}

	ids, err := lookup(ctx, filter.WorkspaceID, filter.ReceiverID)
	if err != nil {
		return err
	}
	filter.RestrictEntities = true
	filter.EntityIDs = ids
	return nil
}

func (s *service) Get(ctx context.Context, workspaceSlug, id string, userID uuid.UUID) (*model.Notification, error) {
	notificationID, err := uuid.Parse(id)
	if err != nil {
		return nil, s.notFound()
	}

	workspaceID, err := s.workspaces.ResolveID(ctx, workspaceSlug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, s.notFound()
	}
	if err != nil {
		return nil, s.internal(err, "failed to resolve workspace", "workspace", workspaceSlug)
	}

	n, err := s.repo.FindOne(ctx, notificationID, workspaceID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, s.notFound()
	}
	if err != nil {
		return nil, s.internal(err, "failed to get notification", "workspace", workspaceSlug, "notification_id", id)
	}
	return n, nil
}

// PartialUpdateSnooze only ever writes snoozed_till; a nil value clears it.
// The record is resolved before the timestamp is parsed, so an unknown id is NotFound whatever the body.
func (s *service) PartialUpdateSnooze(ctx context.Context, workspaceSlug, id string, userID uuid.UUID, snoozedTill *string) (*model.Notification, error) {
	return s.transition(ctx, workspaceSlug, id, userID, transitionSnooze, model.NotificationEventSnoozed,
		func(n *model.Notification, _ time.Time) error {
			if snoozedTill == nil {
				n.SnoozedTill = nil
				return nil
			}
			t, err := validator.ParseTimestamp(*snoozedTill)
			if err != nil {
				return s.count(apperrors.Validation(map[string][]string{
					"snoozed_till": {validator.InvalidTimestampMessage},
				}, err))
			}
			n.SnoozedTill = &t
			return nil
		})
}

func (s *service) MarkRead(ctx context.Context, workspaceSlug, id string, userID uuid.UUID) (*model.Notification, error) {
	return s.transition(ctx, workspaceSlug, id, userID, transitionRead, model.NotificationEventRead,
		func(n *model.Notification, now time.Time) error { n.ReadAt = &now; return nil })
}

func (s *service) MarkUnread(ctx context.Context, workspaceSlug, id string, userID uuid.UUID) (*model.Notification, error) {
	return s.transition(ctx, workspaceSlug, id, userID, transitionUnread, model.NotificationEventUnread,
		func(n *model.Notification, _ time.Time) error { n.ReadAt = nil; return nil })
}

func (s *service) Archive(ctx context.Context, workspaceSlug, id string, userID uuid.UUID) (*model.Notification, error) {
	return s.transition(ctx, workspaceSlug, id, userID, transitionArchive, model.NotificationEventArchived,
		func(n *model.Notification, now time.Time) error { n.ArchivedAt = &now; return nil })
}

func (s *service) Unarchive(ctx context.Context, workspaceSlug, id string, userID uuid.UUID) (*model.Notification, error) {
	return s.transition(ctx, workspaceSlug, id, userID, transitionUnarchive, model.NotificationEventUnarchived,
		func(n *model.Notification, _ time.Time) error { n.ArchivedAt = nil; return nil })
}

// transition loads the caller's notification, applies mutate and saves it.
// Transitions carry no state guard, so repeating one is harmless.
// A mutate error aborts before anything is saved.
func (s *service) transition(
	ctx context.Context,
	workspaceSlug, id string,
	userID uuid.UUID,
	name, eventType string,
	mutate func(n *model.Notification, now time.Time) error,
) (*model.Notification, error) {
	n, err := s.Get(ctx, workspaceSlug, id, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := mutate(n, now); err != nil {
		return nil, err
	}
	n.UpdatedAt = now

	if err := s.repo.Save(ctx, n); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.notFound()
		}
		return nil, s.internal(err, "failed to save notification", "workspace", workspaceSlug, "notification_id", id, "transition", name)
	}

	if s.metrics != nil {
		s.metrics.Transitions.WithLabelValues(name).Inc()
	}
	s.publish(ctx, eventType, n, now)
	return n, nil
}

// publish is best effort; a failed publish never fails the transition
func (s *service) publish(ctx context.Context, eventType string, n *model.Notification, at time.Time) {
	event := model.NotificationEvent{
		Type:           eventType,
		NotificationID: n.ID,
		WorkspaceID:    n.WorkspaceID,
		ReceiverID:     n.ReceiverID,
		OccurredAt:     at,
	}

	status := "ok"
	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		status = "error"
		s.logger.Warn("Failed to publish notification event",
			"error", err.Error(), "type", eventType, "notification_id", n.ID.String())
	}
	if s.metrics != nil {
		s.metrics.EventsPublished.WithLabelValues(status).Inc()
	}
}

func (s *service) notFound() error {
	return s.count(apperrors.NotFound(notFoundMessage, nil))
}

func (s *service) internal(err error, msg string, fields ...interface{}) error {
	s.logger.Error(err, msg, fields...)
	return s.count(apperrors.Internal(fmt.Errorf("%s: %w", msg, err)))
}

func (s *service) count(err *apperrors.AppError) error {
	if s.metrics != nil {
		s.metrics.Errors.WithLabelValues(err.Kind.String()).Inc()
	}
	return err
}
