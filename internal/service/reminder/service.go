package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medassist/assistant-api/internal/model"
	"github.com/medassist/assistant-api/internal/repository"
	apperrors "github.com/medassist/assistant-api/pkg/errors"
	"github.com/medassist/assistant-api/pkg/logger"
	"github.com/medassist/assistant-api/pkg/messaging"
	"github.com/medassist/assistant-api/pkg/metrics"
)

// NotifySink receives rendered notification messages. The HTTP layer
// plugs a websocket or no-op sink in; tests plug a recorder.
type NotifySink func(message string)

const (
	DefaultInterval  = 30 * time.Second
	DefaultBackoff   = 60 * time.Second
	DefaultLookahead = 60 * time.Minute

	notificationChannel = "notifications"
)

type Config struct {
	Interval     time.Duration
	ErrorBackoff time.Duration
	Lookahead    time.Duration
	// Clock is overridable for tests; defaults to time.Now.
	Clock func() time.Time
}

func (c *Config) withDefaults() {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = DefaultBackoff
	}
	if c.Lookahead <= 0 {
		c.Lookahead = DefaultLookahead
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
}

// Service owns reminder CRUD and the per-user due-check loop. One
// instance serves one loop; instances for different users do not
// coordinate.
type Service struct {
	repo      repository.ReminderRepository
	apptRepo  repository.AppointmentRepository
	medRepo   repository.MedicationRepository
	notifRepo repository.NotificationRepository
	broker    messaging.Broker
	logger    *logger.Logger
	metrics   *metrics.Metrics
	cfg       Config

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	// seen dedupes lookahead notices for the lifetime of the loop.
	seen map[string]struct{}
}

func NewService(
	repo repository.ReminderRepository,
	apptRepo repository.AppointmentRepository,
	medRepo repository.MedicationRepository,
	notifRepo repository.NotificationRepository,
	broker messaging.Broker,
	cfg Config,
	logger *logger.Logger,
	m *metrics.Metrics,
) *Service {
	cfg.withDefaults()
	return &Service{
		repo:      repo,
		apptRepo:  apptRepo,
		medRepo:   medRepo,
		notifRepo: notifRepo,
		broker:    broker,
		logger:    logger,
		metrics:   m,
		cfg:       cfg,
		seen:      make(map[string]struct{}),
	}
}

// Start launches the due-check loop for the user. Calling Start on a
// running service is a no-op.
func (s *Service) Start(ctx context.Context, userID uuid.UUID, sink NotifySink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	s.seen = make(map[string]struct{})

	go s.loop(loopCtx, userID, sink, s.done)
}

// Stop cancels the loop and waits for it to exit, so a Start issued
// right after is never swallowed by a loop still winding down. Safe to
// call when not running.
func (s *Service) Stop() {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.cancel = nil
	done := s.done
	s.mu.Unlock()

	<-done
}

func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Service) loop(ctx context.Context, userID uuid.UUID, sink NotifySink, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := s.runCycle(ctx, userID, sink); err != nil {
			s.logger.Error(err, "reminder check cycle failed")
			if s.metrics != nil {
				s.metrics.ReminderCycleErrors.Inc()
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.cfg.ErrorBackoff):
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// runCycle performs one due check: fire overdue unnotified reminders,
// then surface lookahead notices for reminders and flagged
// appointments.
func (s *Service) runCycle(ctx context.Context, userID uuid.UUID, sink NotifySink) error {
	start := s.cfg.Clock()
	defer func() {
		if s.metrics != nil {
			s.metrics.ReminderCheckLatency.Observe(time.Since(start).Seconds())
			s.metrics.ReminderCyclesTotal.Inc()
		}
	}()

	now := s.cfg.Clock()
	date := now.Format(model.DateLayout)
	clock := now.Format(model.TimeLayout)

	due, err := s.repo.ListDue(ctx, userID, date, clock)
	if err != nil {
		return fmt.Errorf("failed to list due reminders: %w", err)
	}
	for _, r := range due {
		// Marking comes first so a store error cannot lead to the same
		// reminder firing again on the retry cycle.
		if err := s.repo.MarkNotified(ctx, r.ID, now); err != nil {
			return fmt.Errorf("failed to mark reminder notified: %w", err)
		}
		message := fmt.Sprintf("Time to take %s (%s)", r.MedicationName, r.Dose)
		s.emit(ctx, userID, "medication_due", message, sink)
	}

	// Lookahead stops at end of day; a window crossing midnight picks
	// the remainder up on the next day's cycles.
	until := now.Add(s.cfg.Lookahead)
	if until.Day() != now.Day() {
		until = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 0, 0, now.Location())
	}
	untilClock := until.Format(model.TimeLayout)

	upcoming, err := s.repo.ListUpcoming(ctx, userID, date, clock, untilClock)
	if err != nil {
		return fmt.Errorf("failed to list upcoming reminders: %w", err)
	}
	for _, r := range upcoming {
		key := "reminder:" + r.ID.String()
		if _, dup := s.seen[key]; dup {
			continue
		}
		s.seen[key] = struct{}{}
		sink(fmt.Sprintf("Upcoming: %s (%s) at %s", r.MedicationName, r.Dose, r.Time))
		if s.metrics != nil {
			s.metrics.NotificationsEmitted.WithLabelValues("medication_soon").Inc()
		}
	}

	appts, err := s.apptRepo.ListUpcoming(ctx, userID, date, clock, untilClock)
	if err != nil {
		return fmt.Errorf("failed to list upcoming appointments: %w", err)
	}
	for _, a := range appts {
		key := "appointment:" + a.ID.String()
		if _, dup := s.seen[key]; dup {
			continue
		}
		s.seen[key] = struct{}{}
		sink(fmt.Sprintf("Upcoming appointment with %s at %s", a.Doctor, a.Time))
		if s.metrics != nil {
			s.metrics.NotificationsEmitted.WithLabelValues("appointment_soon").Inc()
		}
	}

	return nil
}

// emit delivers a due notification to the sink, persists it and
// publishes it on the broker. The caller has already marked the
// reminder notified; persistence failures here are logged only.
func (s *Service) emit(ctx context.Context, userID uuid.UUID, kind, message string, sink NotifySink) {
	sink(message)
	if s.metrics != nil {
		s.metrics.NotificationsEmitted.WithLabelValues(kind).Inc()
	}

	notif := &model.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Message: message,
	}
	if err := s.notifRepo.Create(ctx, notif); err != nil {
		s.logger.Error(err, "failed to persist notification")
		return
	}

	if s.broker != nil {
		event := &model.NotificationEvent{
			ID:        notif.ID,
			UserID:    userID,
			Type:      kind,
			Message:   message,
			CreatedAt: notif.CreatedAt,
		}
		if err := s.broker.Publish(ctx, notificationChannel, event); err != nil {
			s.logger.Error(err, "failed to publish notification event")
		}
	}
}

// AddReminder resolves the medication by name and schedules a dose.
func (s *Service) AddReminder(ctx context.Context, userID uuid.UUID, req *model.CreateReminderRequest) (*model.Reminder, error) {
	if err := model.ValidateDateString(req.Date); err != nil {
		return nil, apperrors.NewValidation(err.Error(), err)
	}
	if err := model.ValidateTimeString(req.Time); err != nil {
		return nil, apperrors.NewValidation(err.Error(), err)
	}

	med, err := s.medRepo.GetByName(ctx, req.MedicationName)
	if err != nil {
		return nil, err
	}

	reminder := &model.Reminder{
		ID:           uuid.New(),
		UserID:       userID,
		MedicationID: med.ID,
		Dose:         req.Dose,
		Date:         req.Date,
		Time:         req.Time,
		Frequency:    req.Frequency,
	}
	if err := s.repo.Create(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

func (s *Service) ListReminders(ctx context.Context, userID uuid.UUID) ([]*model.ReminderWithMedication, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *Service) DeleteReminder(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}

// DeleteByContent removes reminders matching the legacy identity tuple
// of medication, dose, date and time.
func (s *Service) DeleteByContent(ctx context.Context, userID uuid.UUID, req *model.DeleteReminderByContentRequest) (int64, error) {
	med, err := s.medRepo.GetByName(ctx, req.MedicationName)
	if err != nil {
		return 0, err
	}
	return s.repo.DeleteByContent(ctx, userID, med.ID, req.Dose, req.Date, req.Time)
}
