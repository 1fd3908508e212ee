// Package monitor keeps the published unread count in step with the mail
// client's index files and with the client process coming and going.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tbunread/tbunread/internal/config"
	"github.com/tbunread/tbunread/internal/count"
)

// Sink receives every published value: a rendered snapshot or
// count.Sentinel. Calls never overlap.
type Sink interface {
	Emit(value string) error
}

type Monitor struct {
	root     string
	process  string
	suffix   string
	interval time.Duration
	debounce time.Duration

	agg         *count.Aggregator
	sink        Sink
	procs       ProcessTable
	newNotifier func(root string) (Notifier, error)
	foldCase    bool
	logger      *slog.Logger
	health      *passHealth

	// emitMu serialises aggregation passes and sink writes across loops.
	emitMu sync.Mutex
}

func NewMonitor(cfg *config.Config, root string, sink Sink, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		root:        root,
		process:     cfg.Monitor.Process,
		suffix:      cfg.Monitor.Suffix,
		interval:    cfg.PollInterval(),
		debounce:    cfg.Monitor.Debounce,
		agg:         count.NewAggregator(root, cfg.Monitor.Suffix),
		sink:        sink,
		procs:       SystemProcesses{},
		newNotifier: NewNotifier,
		foldCase:    foldExeCase,
		logger:      logger,
		health:      newPassHealth(),
	}
}

// Run subscribes to changes below the watch root and runs the
// filesystem-change and process-presence loops until one of them fails or
// ctx is cancelled. A failure in either loop stops the other; its error is
// returned. Cancellation of ctx returns nil.
func (m *Monitor) Run(ctx context.Context) error {
	n, err := m.newNotifier(m.root)
	if err != nil {
		return err
	}

	m.logger.Info("monitor started", "root", m.root, "process", m.process, "interval", m.interval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.watchFiles(gctx, n) })
	g.Go(func() error { return m.watchPresence(gctx) })

	err = g.Wait()
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		m.logger.Info("monitor stopped")
		return nil
	}
	return err
}

// watchPresence runs the process-presence loop. Presence is seeded as
// running, and the first tick acts on whatever it observes.
func (m *Monitor) watchPresence(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	wasRunning, first := true, true
	for {
		exes, err := m.procs.Executables(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			m.logger.Warn("unable to determine client presence", "err", err)
		default:
			running := clientRunning(exes, m.process, m.foldCase)
			switch presenceTransition(wasRunning, running, first) {
			case actionUnknown:
				m.logger.Info("mail client not running", "process", m.process)
				if err := m.markUnknown(); err != nil {
					return err
				}
			case actionRefresh:
				m.logger.Info("mail client running", "process", m.process)
				if err := m.refresh("presence"); err != nil {
					return err
				}
			}
			wasRunning, first = running, false
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// refresh runs one aggregation pass and publishes the result. A failed pass
// is logged and skipped; only a sink failure is returned.
func (m *Monitor) refresh(trigger string) error {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	snap, err := m.agg.Run()
	if err != nil {
		m.logger.Error("failed to update unread count", "trigger", trigger, "err", err)
		m.health.recordFailure(err)
		m.reportHealth()
		return nil
	}
	m.health.recordSuccess()
	m.reportHealth()

	m.logger.Debug("unread count updated", "trigger", trigger, "accounts", len(snap.Accounts), "counts", snap.String())
	return m.emitLocked(snap.String())
}

// markUnknown publishes the sentinel in place of a count.
func (m *Monitor) markUnknown() error {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()
	return m.emitLocked(count.Sentinel)
}

// emitLocked writes value to the sink. Caller must hold m.emitMu.
func (m *Monitor) emitLocked(value string) error {
	if err := m.sink.Emit(value); err != nil {
		return fmt.Errorf("failed to publish unread count: %w", err)
	}
	return nil
}

// reportHealth logs when consecutive pass failures cross the threshold and
// when passes recover.
func (m *Monitor) reportHealth() {
	r, changed := m.health.statusChanged(passFailureThreshold)
	if !changed {
		return
	}
	if r.status == statusDegraded {
		m.logger.Warn("unread count is stale", "status", r.status.String(), "failed_passes", r.failures,
			"last_err", r.lastErr, "last_failure", r.lastFail.Format(time.RFC3339))
		return
	}
	m.logger.Info("unread count recovered", "status", r.status.String())
}
