package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medassist/assistant-api/internal/model"
	apperrors "github.com/medassist/assistant-api/pkg/errors"
	"github.com/medassist/assistant-api/pkg/logger"
)

type fakeReminderRepo struct {
	mu            sync.Mutex
	reminders     map[uuid.UUID]*model.ReminderWithMedication
	failUntil     int
	calls         int
	markFailUntil int
	markCalls     int
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{reminders: make(map[uuid.UUID]*model.ReminderWithMedication)}
}

func (r *fakeReminderRepo) add(userID uuid.UUID, name, dose, date, clock string) *model.ReminderWithMedication {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem := &model.ReminderWithMedication{
		Reminder: model.Reminder{
			ID:           uuid.New(),
			UserID:       userID,
			MedicationID: uuid.New(),
			Dose:         dose,
			Date:         date,
			Time:         clock,
		},
		MedicationName: name,
	}
	r.reminders[rem.ID] = rem
	return rem
}

func (r *fakeReminderRepo) Create(ctx context.Context, reminder *model.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reminders[reminder.ID] = &model.ReminderWithMedication{Reminder: *reminder}
	return nil
}

func (r *fakeReminderRepo) Get(ctx context.Context, id uuid.UUID) (*model.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem, ok := r.reminders[id]
	if !ok {
		return nil, apperrors.NewNotFound("reminder", nil)
	}
	copied := rem.Reminder
	return &copied, nil
}

func (r *fakeReminderRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.ReminderWithMedication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ReminderWithMedication
	for _, rem := range r.reminders {
		if rem.UserID == userID {
			copied := *rem
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeReminderRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem, ok := r.reminders[id]
	if !ok || rem.UserID != userID {
		return apperrors.NewNotFound("reminder", nil)
	}
	delete(r.reminders, id)
	return nil
}

func (r *fakeReminderRepo) DeleteByContent(ctx context.Context, userID, medicationID uuid.UUID, dose, date, clock string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, rem := range r.reminders {
		if rem.UserID == userID && rem.MedicationID == medicationID &&
			rem.Dose == dose && rem.Date == date && rem.Time == clock {
			delete(r.reminders, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeReminderRepo) ListDue(ctx context.Context, userID uuid.UUID, date, clock string) ([]*model.ReminderWithMedication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.calls <= r.failUntil {
		return nil, errors.New("store unavailable")
	}
	var out []*model.ReminderWithMedication
	for _, rem := range r.reminders {
		if rem.UserID == userID && rem.Date == date && rem.Time <= clock && rem.NotifiedAt == nil {
			copied := *rem
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeReminderRepo) ListUpcoming(ctx context.Context, userID uuid.UUID, date, from, to string) ([]*model.ReminderWithMedication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ReminderWithMedication
	for _, rem := range r.reminders {
		if rem.UserID == userID && rem.Date == date && rem.Time > from && rem.Time <= to {
			copied := *rem
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeReminderRepo) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markCalls++
	if r.markCalls <= r.markFailUntil {
		return errors.New("store unavailable")
	}
	rem, ok := r.reminders[id]
	if !ok {
		return apperrors.NewNotFound("reminder", nil)
	}
	rem.NotifiedAt = &at
	return nil
}

func (r *fakeReminderRepo) listDueCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeAppointmentRepo struct {
	mu    sync.Mutex
	appts []*model.Appointment
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appts = append(r.appts, a)
	return nil
}

func (r *fakeAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return nil, apperrors.NewNotFound("appointment", nil)
}

func (r *fakeAppointmentRepo) Update(ctx context.Context, a *model.Appointment) error { return nil }
func (r *fakeAppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error         { return nil }

func (r *fakeAppointmentRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}

func (r *fakeAppointmentRepo) ListUpcoming(ctx context.Context, userID uuid.UUID, date, from, to string) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, a := range r.appts {
		if a.UserID == userID && a.Date == date && a.Time > from && a.Time <= to && a.Reminder {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu    sync.Mutex
	notes []*model.Notification
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
	return nil
}

func (r *fakeNotificationRepo) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	return nil, nil
}
func (r *fakeNotificationRepo) MarkRead(ctx context.Context, userID, id uuid.UUID) error { return nil }
func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) error  { return nil }
func (r *fakeNotificationRepo) Delete(ctx context.Context, userID, id uuid.UUID) error   { return nil }
func (r *fakeNotificationRepo) Clear(ctx context.Context, userID uuid.UUID) error        { return nil }
func (r *fakeNotificationRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeNotificationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

type sinkRecorder struct {
	mu       sync.Mutex
	messages []string
}

func (s *sinkRecorder) sink(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
}

func (s *sinkRecorder) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

func testClock() func() time.Time {
	fixed := time.Date(2026, 8, 26, 10, 0, 0, 0, time.Local)
	return func() time.Time { return fixed }
}

func newTestService(repo *fakeReminderRepo, appts *fakeAppointmentRepo, notifs *fakeNotificationRepo, cfg Config) *Service {
	if cfg.Clock == nil {
		cfg.Clock = testClock()
	}
	log := logger.NewLogger(nil)
	return NewService(repo, appts, nil, notifs, nil, cfg, log, nil)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.True(t, cond(), "condition not met within %v", timeout)
}

func TestDueReminderFiresOnceWithinOneInterval(t *testing.T) {
	repo := newFakeReminderRepo()
	appts := &fakeAppointmentRepo{}
	notifs := &fakeNotificationRepo{}
	userID := uuid.New()
	repo.add(userID, "Paracetamol", "500mg", "26-08-2026", "10:00")

	svc := newTestService(repo, appts, notifs, Config{Interval: 10 * time.Millisecond})
	rec := &sinkRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx, userID, rec.sink)
	defer svc.Stop()

	waitFor(t, time.Second, func() bool { return len(rec.all()) >= 1 })
	assert.Equal(t, "Time to take Paracetamol (500mg)", rec.all()[0])

	// Several more cycles must not re-fire the notified reminder.
	waitFor(t, time.Second, func() bool { return repo.listDueCalls() >= 5 })
	assert.Len(t, rec.all(), 1)
	assert.Equal(t, 1, notifs.count())
}

func TestOverdueReminderIsPickedUp(t *testing.T) {
	repo := newFakeReminderRepo()
	userID := uuid.New()
	// Scheduled two hours before the fixed clock, still unnotified.
	repo.add(userID, "Metformin", "850mg", "26-08-2026", "08:00")

	svc := newTestService(repo, &fakeAppointmentRepo{}, &fakeNotificationRepo{}, Config{Interval: 10 * time.Millisecond})
	rec := &sinkRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx, userID, rec.sink)
	defer svc.Stop()

	waitFor(t, time.Second, func() bool { return len(rec.all()) >= 1 })
	assert.Equal(t, "Time to take Metformin (850mg)", rec.all()[0])
}

func TestUpcomingNoticesAreDeduped(t *testing.T) {
	repo := newFakeReminderRepo()
	appts := &fakeAppointmentRepo{}
	userID := uuid.New()
	repo.add(userID, "Aspirin", "75mg", "26-08-2026", "10:30")
	appts.Create(context.Background(), &model.Appointment{
		ID:       uuid.New(),
		UserID:   userID,
		Date:     "26-08-2026",
		Time:     "10:45",
		Doctor:   "Dr. Patel",
		Reminder: true,
		Status:   model.AppointmentStatusScheduled,
	})

	svc := newTestService(repo, appts, &fakeNotificationRepo{}, Config{Interval: 10 * time.Millisecond})
	rec := &sinkRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx, userID, rec.sink)
	defer svc.Stop()

	waitFor(t, time.Second, func() bool { return repo.listDueCalls() >= 5 })
	messages := rec.all()
	assert.Len(t, messages, 2)
	assert.Contains(t, messages, "Upcoming: Aspirin (75mg) at 10:30")
	assert.Contains(t, messages, "Upcoming appointment with Dr. Patel at 10:45")
}

func TestLoopSurvivesStoreErrors(t *testing.T) {
	repo := newFakeReminderRepo()
	userID := uuid.New()
	repo.add(userID, "Paracetamol", "500mg", "26-08-2026", "09:00")
	repo.failUntil = 3

	svc := newTestService(repo, &fakeAppointmentRepo{}, &fakeNotificationRepo{}, Config{
		Interval:     10 * time.Millisecond,
		ErrorBackoff: 10 * time.Millisecond,
	})
	rec := &sinkRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx, userID, rec.sink)
	defer svc.Stop()

	waitFor(t, time.Second, func() bool { return len(rec.all()) >= 1 })
	assert.Equal(t, "Time to take Paracetamol (500mg)", rec.all()[0])
	assert.GreaterOrEqual(t, repo.listDueCalls(), 4)
}

func TestMarkFailureDoesNotDoubleFire(t *testing.T) {
	repo := newFakeReminderRepo()
	notifs := &fakeNotificationRepo{}
	userID := uuid.New()
	repo.add(userID, "Paracetamol", "500mg", "26-08-2026", "10:00")
	repo.markFailUntil = 2

	svc := newTestService(repo, &fakeAppointmentRepo{}, notifs, Config{
		Interval:     10 * time.Millisecond,
		ErrorBackoff: 10 * time.Millisecond,
	})
	rec := &sinkRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx, userID, rec.sink)
	defer svc.Stop()

	// Two failed mark attempts abort their cycles without notifying;
	// the third cycle marks and fires.
	waitFor(t, time.Second, func() bool { return len(rec.all()) >= 1 })
	waitFor(t, time.Second, func() bool { return repo.listDueCalls() >= 6 })
	assert.Len(t, rec.all(), 1)
	assert.Equal(t, 1, notifs.count())
}

func TestStopThenRestart(t *testing.T) {
	repo := newFakeReminderRepo()
	userID := uuid.New()

	svc := newTestService(repo, &fakeAppointmentRepo{}, &fakeNotificationRepo{}, Config{Interval: 10 * time.Millisecond})
	rec := &sinkRecorder{}
	ctx := context.Background()

	svc.Start(ctx, userID, rec.sink)
	waitFor(t, time.Second, func() bool { return repo.listDueCalls() >= 1 })

	// Stop returns only after the loop has exited, so an immediate
	// Start always takes effect.
	svc.Stop()
	assert.False(t, svc.Running())

	calls := repo.listDueCalls()
	svc.Start(ctx, userID, rec.sink)
	defer svc.Stop()
	assert.True(t, svc.Running())
	waitFor(t, time.Second, func() bool { return repo.listDueCalls() > calls })
}

func TestStartIsIdempotentAndStopEndsLoop(t *testing.T) {
	repo := newFakeReminderRepo()
	userID := uuid.New()

	svc := newTestService(repo, &fakeAppointmentRepo{}, &fakeNotificationRepo{}, Config{Interval: 10 * time.Millisecond})
	rec := &sinkRecorder{}

	ctx := context.Background()
	svc.Start(ctx, userID, rec.sink)
	svc.Start(ctx, userID, rec.sink)
	assert.True(t, svc.Running())

	waitFor(t, time.Second, func() bool { return repo.listDueCalls() >= 2 })

	svc.Stop()
	waitFor(t, time.Second, func() bool { return !svc.Running() })

	calls := repo.listDueCalls()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, repo.listDueCalls())
}

func TestAddReminderValidatesAndResolvesMedication(t *testing.T) {
	repo := newFakeReminderRepo()
	meds := &fakeMedicationRepo{}
	med := &model.Medication{ID: uuid.New(), Name: "Paracetamol", PriceCents: 599, Quantity: 10}
	meds.meds = append(meds.meds, med)

	log := logger.NewLogger(nil)
	svc := NewService(repo, &fakeAppointmentRepo{}, meds, &fakeNotificationRepo{}, nil, Config{Clock: testClock()}, log, nil)
	userID := uuid.New()

	_, err := svc.AddReminder(context.Background(), userID, &model.CreateReminderRequest{
		MedicationName: "Paracetamol",
		Dose:           "500mg",
		Date:           "2026-08-26",
		Time:           "10:00",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	rem, err := svc.AddReminder(context.Background(), userID, &model.CreateReminderRequest{
		MedicationName: "Paracetamol",
		Dose:           "500mg",
		Date:           "26-08-2026",
		Time:           "22:00",
	})
	require.NoError(t, err)
	assert.Equal(t, med.ID, rem.MedicationID)
}

type fakeMedicationRepo struct {
	meds []*model.Medication
}

func (r *fakeMedicationRepo) Create(ctx context.Context, med *model.Medication) error {
	r.meds = append(r.meds, med)
	return nil
}

func (r *fakeMedicationRepo) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	for _, med := range r.meds {
		if med.ID == id {
			return med, nil
		}
	}
	return nil, apperrors.NewNotFound("medication", nil)
}

func (r *fakeMedicationRepo) GetByName(ctx context.Context, name string) (*model.Medication, error) {
	for _, med := range r.meds {
		if med.Name == name {
			return med, nil
		}
	}
	return nil, apperrors.NewNotFound("medication", nil)
}

func (r *fakeMedicationRepo) List(ctx context.Context) ([]*model.Medication, error) {
	return r.meds, nil
}

func (r *fakeMedicationRepo) Search(ctx context.Context, term string) ([]*model.Medication, error) {
	return r.meds, nil
}

func (r *fakeMedicationRepo) Count(ctx context.Context) (int, error) {
	return len(r.meds), nil
}
