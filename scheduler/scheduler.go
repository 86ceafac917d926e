// Package scheduler runs the single cooperative loop that drives every
// managed Client through allocation, registration, periodic work, and
// message drain. Grounded on
// original_source/simplyprint_ws_client/core/scheduler.py; the bounded
// per-tick fan-out uses golang.org/x/sync/errgroup in place of the
// source's asyncio.gather(return_exceptions=True).
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/simplyprint/ws-client/client"
	"github.com/simplyprint/ws-client/connection"
	"github.com/simplyprint/ws-client/connmanager"
)

// TickFunc runs one client's domain-specific periodic work (polling a
// physical printer, refreshing telemetry). The embedding application
// supplies this; the scheduler only enforces the timeout and logs
// failures.
type TickFunc func(ctx context.Context, c *client.Client) error

const (
	defaultTickPeriod  = 1 * time.Second
	defaultTickTimeout = 5 * time.Second
	defaultConcurrency = 8
)

type entry struct {
	client     *client.Client
	active     bool
	lastTicked time.Time
	removing   bool
}

// Scheduler is the single loop that owns every managed Client's
// life-cycle.
type Scheduler struct {
	mgr    *connmanager.Manager
	onTick TickFunc
	logger *zap.SugaredLogger

	tickPeriod  time.Duration
	tickTimeout time.Duration

	mu      sync.Mutex
	entries map[*client.Client]*entry

	wake chan struct{}
	stop chan struct{}
}

// New builds a Scheduler. onTick may be nil if the embedding
// application has no periodic work beyond protocol maintenance.
func New(mgr *connmanager.Manager, onTick TickFunc, logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		mgr:         mgr,
		onTick:      onTick,
		logger:      logger,
		tickPeriod:  defaultTickPeriod,
		tickTimeout: defaultTickTimeout,
		entries:     map[*client.Client]*entry{},
		wake:        make(chan struct{}, 1),
		stop:        make(chan struct{}),
	}
}

// Manage registers c as active and wires its change signal to wake the
// loop early.
func (s *Scheduler) Manage(c *client.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.SetWaker(s.wakeLocked)
	s.entries[c] = &entry{client: c, active: true}
}

// SetActive flips a client's desired allocation state; setting it false
// begins an orderly removal once the client reaches NOT_CONNECTED or
// CONNECTING.
func (s *Scheduler) SetActive(c *client.Client, active bool) {
	s.mu.Lock()
	e, ok := s.entries[c]
	if ok {
		e.active = active
		if !active {
			e.removing = true
		}
	}
	s.mu.Unlock()
	s.wakeLocked()
}

func (s *Scheduler) wakeLocked() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Stop halts the loop.
func (s *Scheduler) Stop() { close(s.stop) }

// Run executes the scheduler loop until Stop is called or ctx is
// cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case <-ticker.C:
		case <-s.wake:
		}

		s.pass(ctx)
	}
}

// pass is one scheduler iteration: select due clients, service them
// bounded-concurrently, then reap any completed removals.
func (s *Scheduler) pass(ctx context.Context) {
	due := s.dueEntries()
	if len(due) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultConcurrency)

	for _, e := range due {
		e := e
		g.Go(func() error {
			s.service(gctx, e)
			return nil
		})
	}
	_ = g.Wait()

	s.reap()
}

// dueEntries picks clients with pending changes, a due tick, or a
// registration-state/goal mismatch.
func (s *Scheduler) dueEntries() []*entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var due []*entry
	for _, e := range s.entries {
		needsTick := now.Sub(e.lastTicked) >= s.tickPeriod
		st := e.client.State()
		allocated := st != client.StateNotConnected && st != client.StateConnecting
		goalMismatch := e.active != allocated
		if e.client.HasPendingWork() || needsTick || goalMismatch || e.removing {
			due = append(due, e)
		}
	}
	return due
}

// service advances one client: allocate/deallocate, add/remove
// handshake, domain tick, then drain and send its outbound queue.
func (s *Scheduler) service(ctx context.Context, e *entry) {
	c := e.client

	multi := s.mgr.Mode() == connection.ModeMulti

	if e.active {
		s.mgr.Allocate(c)
		if multi {
			if out, ok := c.EnsureAdded(true); ok {
				s.mgr.Send(c, out)
			}
		}
	} else {
		if multi {
			if out, ok := c.EnsureRemoved(); ok {
				s.mgr.Send(c, out)
			}
		}
		s.mgr.Deallocate(c)
	}

	if c.State() == client.StateConnected && s.onTick != nil {
		tctx, cancel := context.WithTimeout(ctx, s.tickTimeout)
		err := s.onTick(tctx, c)
		cancel()
		if err != nil && s.logger != nil {
			s.logger.Warnw("client tick failed", "err", err)
		}
	}

	s.mu.Lock()
	e.lastTicked = time.Now()
	s.mu.Unlock()

	for _, out := range c.Consume() {
		s.mgr.Send(c, out)
	}
}

// reap removes clients that asked to be deactivated and have settled
// into NOT_CONNECTED or CONNECTING.
func (s *Scheduler) reap() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c, e := range s.entries {
		st := c.State()
		if e.removing && (st == client.StateNotConnected || st == client.StateConnecting) {
			delete(s.entries, c)
		}
	}
}
