package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openmuni/casework/internal/application/port"
	appworkflow "github.com/openmuni/casework/internal/application/workflow"
	"github.com/openmuni/casework/internal/domain/entity"
	"github.com/openmuni/casework/internal/domain/workflow"
)

// expirableStates are the states the sweep may expire. Draft requests are not
// swept: a draft sits with its case worker indefinitely until submitted or
// cancelled.
var expirableStates = []workflow.State{
	workflow.StateSubmitted,
	workflow.StateUnderReview,
	workflow.StatePendingDocuments,
}

// ExpirySweeper periodically expires requests that have sat in an in-flight
// state beyond the configured TTL. Each expiry goes through the workflow
// service, so it gets the same transaction, audit record, and events as any
// other transition.
type ExpirySweeper struct {
	requests port.RequestRepository
	service  appworkflow.Service
	logger   *zap.Logger

	interval  time.Duration
	ttl       time.Duration
	batchSize int

	mu        sync.Mutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

// SweeperOption configures an ExpirySweeper
type SweeperOption func(*ExpirySweeper)

// WithBatchSize sets how many stale requests a single sweep picks up
func WithBatchSize(n int) SweeperOption {
	return func(w *ExpirySweeper) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// NewExpirySweeper creates a new expiry sweeper
func NewExpirySweeper(
	requests port.RequestRepository,
	service appworkflow.Service,
	interval, ttl time.Duration,
	logger *zap.Logger,
	opts ...SweeperOption,
) *ExpirySweeper {
	w := &ExpirySweeper{
		requests:  requests,
		service:   service,
		logger:    logger,
		interval:  interval,
		ttl:       ttl,
		batchSize: 50,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name returns the worker name
func (w *ExpirySweeper) Name() string {
	return "expiry-sweeper"
}

// Start starts the sweep loop
func (w *ExpirySweeper) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("expiry sweeper is already running")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.isRunning = true

	w.logger.Info("ExpirySweeper started",
		zap.Duration("interval", w.interval),
		zap.Duration("ttl", w.ttl))

	go w.loop()
	return nil
}

// Stop stops the sweep loop and waits for an in-progress sweep to finish
func (w *ExpirySweeper) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done
	return nil
}

func (w *ExpirySweeper) loop() {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.SweepOnce(w.ctx)
		}
	}
}

// SweepOnce runs a single sweep pass and returns the number of requests expired
func (w *ExpirySweeper) SweepOnce(ctx context.Context) int {
	cutoff := time.Now().Add(-w.ttl)

	stale, err := w.requests.ListStale(ctx, expirableStates, cutoff, w.batchSize)
	if err != nil {
		w.logger.Error("Expiry sweep query failed", zap.Error(err))
		return 0
	}
	if len(stale) == 0 {
		return 0
	}

	system := entity.SystemUser()
	expired := 0
	for _, req := range stale {
		if ctx.Err() != nil {
			break
		}
		if _, err := w.service.Expire(ctx, req.ID, system); err != nil {
			// A request may have been transitioned between the query and the
			// expire call; the state guard catches that and it is not a sweep
			// failure.
			if errors.Is(err, workflow.ErrInvalidTransition) {
				continue
			}
			w.logger.Error("Failed to expire request",
				zap.Int64("request_id", req.ID),
				zap.Error(err))
			continue
		}
		expired++
	}

	if expired > 0 {
		w.logger.Info("Expiry sweep completed",
			zap.Int("expired", expired),
			zap.Int("candidates", len(stale)))
	}
	return expired
}
