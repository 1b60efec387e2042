package usecase

import (
	"context"
	"sync"
	"time"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/internal/domain/repository"
	"flightlog-service/pkg/logger"
	"flightlog-service/pkg/metrics"
)

// SyncCoordinator mirrors the local collection into the remote datastore.
//
// Connectivity states: uninitialized -> checking -> online/offline, with
// an independent idle/syncing activity flag and an orthogonal error flag.
// Local mutations always land in the store first; the coordinator only
// counts them and schedules a debounced full reconciliation. A push never
// blocks a mutation, at most one push is in flight, and a failed push
// keeps the pending count so the change stays eligible for the next
// trigger.
type SyncCoordinator struct {
	store   *LocalStore
	remote  repository.RemoteFlightRepository // nil in standalone mode
	owner   entity.UserIdentity
	checker ConnectivityChecker
	quiet   time.Duration
	probe   time.Duration
	metrics *metrics.Metrics // optional
	log     logger.Logger

	mu       sync.Mutex
	online   bool
	pulled   bool
	syncing  bool
	pending  int
	lastSync *time.Time
	hasError bool
	errMsg   string
	timer    *timerHandle
	closed   bool

	unsubscribe func()
	pushCtx     context.Context
	watchCancel context.CancelFunc
	wg          sync.WaitGroup
}

// NewSyncCoordinator wires the coordinator. remote may be nil, in which
// case the coordinator stays offline and the store works purely locally.
func NewSyncCoordinator(
	store *LocalStore,
	remote repository.RemoteFlightRepository,
	owner entity.UserIdentity,
	checker ConnectivityChecker,
	quiet time.Duration,
	probeInterval time.Duration,
	m *metrics.Metrics,
	log logger.Logger,
) *SyncCoordinator {
	return &SyncCoordinator{
		store:   store,
		remote:  remote,
		owner:   owner,
		checker: checker,
		quiet:   quiet,
		probe:   probeInterval,
		metrics: m,
		log:     log,
	}
}

// Start probes connectivity, subscribes to store mutations and launches
// the connectivity watcher. The first online transition with a known
// owner triggers exactly one initial pull.
func (c *SyncCoordinator) Start(ctx context.Context) error {
	if c.remote != nil {
		if err := entity.ParseOwnerID(c.owner.ID); err != nil {
			return err
		}
	}

	// In-flight pushes are never forcibly aborted on teardown; they run
	// on a context that survives Close and complete or fail naturally.
	c.pushCtx = context.WithoutCancel(ctx)

	watchCtx, cancel := context.WithCancel(ctx)
	c.watchCancel = cancel

	c.unsubscribe = c.store.Subscribe(c.onMutation)

	online := c.remote != nil && c.checker.Online(ctx)
	c.setOnline(online)
	c.log.Info("Sync coordinator started", "online", online, "owner", c.owner.ID)

	if c.remote != nil {
		c.wg.Add(1)
		go c.watch(watchCtx)
	}

	return nil
}

// watch re-probes connectivity on a fixed interval and feeds transitions
// into the state machine.
func (c *SyncCoordinator) watch(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.probe)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.setOnline(c.checker.Online(ctx))
		}
	}
}

// SetOnline feeds an external online/offline signal into the state
// machine, the browser connectivity event boundary.
func (c *SyncCoordinator) SetOnline(online bool) {
	c.setOnline(online && c.remote != nil)
}

func (c *SyncCoordinator) setOnline(online bool) {
	c.mu.Lock()
	if c.closed || online == c.online {
		c.mu.Unlock()
		return
	}

	c.online = online
	if !online {
		// Pending changes survive the offline transition; only the
		// scheduled push is dropped.
		c.cancelTimerLocked()
		c.mu.Unlock()
		c.log.Info("Connectivity lost, sync paused")
		return
	}

	firstPull := !c.pulled && c.remote != nil
	if firstPull {
		c.pulled = true
	}
	c.mu.Unlock()

	c.log.Info("Connectivity restored")

	// Returning online does not replay pending pushes automatically;
	// the next mutation's debounce or a force sync triggers that.
	if firstPull {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.initialPull()
		}()
	}
}

// initialPull loads the owner's remote rows once. When the local
// collection is already non-empty, local wins and the pull result is
// discarded: there is no multi-device merge.
func (c *SyncCoordinator) initialPull() {
	records, err := c.remote.LoadAll(c.pushCtx, c.owner.ID)
	if err != nil {
		c.log.Error("Initial pull failed", "error", err)
		c.mu.Lock()
		c.hasError = true
		c.errMsg = err.Error()
		c.mu.Unlock()
		if c.metrics != nil {
			c.metrics.ErrorsCount.WithLabelValues("initial_pull").Inc()
		}
		return
	}

	if len(records) == 0 {
		c.log.Info("Initial pull complete, remote empty")
		return
	}
	if c.store.Count() > 0 {
		c.log.Info("Local collection non-empty, discarding remote pull", "remoteRecords", len(records))
		return
	}

	if err := c.store.Hydrate(records); err != nil {
		c.log.Error("Failed to persist pulled records", "error", err)
	}
	c.log.Info("Initial pull complete", "records", len(records))
}

// onMutation is the store change listener. Every mutation counts as a
// pending change; while online it also restarts the debounce timer so
// rapid successive mutations collapse into a single push.
func (c *SyncCoordinator) onMutation() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.pending++
	if c.metrics != nil {
		c.metrics.PendingChanges.Set(float64(c.pending))
	}

	if c.online && c.remote != nil {
		c.restartTimerLocked()
	}
}

func (c *SyncCoordinator) restartTimerLocked() {
	c.cancelTimerLocked()
	c.timer = scheduleAfter(c.quiet, func() {
		c.push()
	})
}

func (c *SyncCoordinator) cancelTimerLocked() {
	if c.timer != nil {
		c.timer.Cancel()
		c.timer = nil
	}
}

// ForceSync bypasses the debounce timer and pushes immediately. While
// offline it is a warning no-op, not an error.
func (c *SyncCoordinator) ForceSync() (bool, error) {
	c.mu.Lock()
	if c.remote == nil || !c.online {
		c.mu.Unlock()
		c.log.Warn("Force sync ignored while offline")
		return false, nil
	}
	c.cancelTimerLocked()
	c.mu.Unlock()

	return c.push()
}

// push runs one full reconciliation with a point-in-time snapshot of the
// local collection. Only one push may be in flight; a timer firing while
// one is running is dropped and a follow-up is scheduled when the
// current push resolves with changes still pending.
func (c *SyncCoordinator) push() (bool, error) {
	c.mu.Lock()
	if c.closed || c.remote == nil || !c.online || c.syncing {
		c.mu.Unlock()
		return false, nil
	}

	captured := c.pending
	c.syncing = true
	c.mu.Unlock()

	snapshot := c.store.Snapshot()

	if c.metrics != nil {
		c.metrics.PushesTotal.Inc()
	}
	start := time.Now()
	err := c.remote.ReconcileAll(c.pushCtx, c.owner.ID, snapshot)
	if c.metrics != nil {
		c.metrics.PushDuration.Observe(time.Since(start).Seconds())
	}

	c.mu.Lock()
	c.syncing = false

	if err != nil {
		// The change is still pending and eligible for the next trigger;
		// local data is never discarded on a failed push.
		c.hasError = true
		c.errMsg = err.Error()
		if c.metrics != nil {
			c.metrics.PushFailuresTotal.Inc()
		}
		c.mu.Unlock()
		c.log.Error("Push failed", "error", err, "records", len(snapshot))
		return false, err
	}

	now := time.Now().UTC()
	c.lastSync = &now
	c.pending -= captured
	if c.pending < 0 {
		c.pending = 0
	}
	c.hasError = false
	c.errMsg = ""
	if c.metrics != nil {
		c.metrics.PendingChanges.Set(float64(c.pending))
		c.metrics.RecordsSynced.Add(float64(len(snapshot)))
	}

	// Mutations that arrived while this push was in flight get their own
	// follow-up cycle.
	if c.pending > 0 && c.online && !c.closed {
		c.restartTimerLocked()
	}
	c.mu.Unlock()

	c.log.Info("Push complete", "records", len(snapshot))
	return true, nil
}

// Status returns a point-in-time snapshot of the sync state.
func (c *SyncCoordinator) Status() entity.SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := entity.SyncState{
		Online:         c.online,
		IsSyncing:      c.syncing,
		PendingChanges: c.pending,
		HasError:       c.hasError,
		ErrorMessage:   c.errMsg,
	}
	if c.lastSync != nil {
		t := *c.lastSync
		state.LastSync = &t
	}
	return state
}

// ClearError dismisses the error flag. The next successful operation
// clears it as well.
func (c *SyncCoordinator) ClearError() {
	c.mu.Lock()
	c.hasError = false
	c.errMsg = ""
	c.mu.Unlock()
}

// Close cancels any pending debounce timer and stops the watcher. An
// in-flight push is left to complete or fail naturally.
func (c *SyncCoordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancelTimerLocked()
	c.mu.Unlock()

	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	if c.watchCancel != nil {
		c.watchCancel()
	}
	c.wg.Wait()
}
