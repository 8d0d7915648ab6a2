package worker

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medassist/assistant-api/internal/model"
	"github.com/medassist/assistant-api/internal/repository"
	"github.com/medassist/assistant-api/pkg/logger"
)

const (
	pulseInterval = 3 * time.Second
	pulseBaseMin  = 70
	pulseBaseMax  = 85
	pulseJitter   = 5
)

// PulseSimulator generates synthetic pulse readings for one user on a
// ticker, mimicking a wearable feed. Values wander around a per-run
// baseline so consecutive readings look plausible.
type PulseSimulator struct {
	repo     repository.HealthReadingRepository
	logger   *logger.Logger
	interval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

func NewPulseSimulator(repo repository.HealthReadingRepository, logger *logger.Logger) *PulseSimulator {
	return &PulseSimulator{
		repo:     repo,
		logger:   logger,
		interval: pulseInterval,
	}
}

// Start launches the feed. Starting a running simulator is a no-op.
func (w *PulseSimulator) Start(ctx context.Context, userID uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true

	go w.loop(loopCtx, userID)
}

func (w *PulseSimulator) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

func (w *PulseSimulator) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *PulseSimulator) loop(ctx context.Context, userID uuid.UUID) {
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	baseline := pulseBaseMin + rand.Intn(pulseBaseMax-pulseBaseMin+1)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bpm := baseline + rand.Intn(2*pulseJitter+1) - pulseJitter
			reading := &model.HealthReading{
				ID:          uuid.New(),
				UserID:      userID,
				ReadingType: "pulse",
				Value:       strconv.Itoa(bpm),
			}
			if err := w.repo.Create(ctx, reading); err != nil {
				w.logger.Error(err, "failed to record simulated pulse")
				continue
			}

			level := model.ClassifyPulse(float64(bpm))
			if level != model.PulseLevelNormal {
				w.logger.Warn(fmt.Sprintf("simulated pulse out of range: %d bpm (%s)", bpm, level))
			}
		}
	}
}
