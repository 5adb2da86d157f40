package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/mattsolo1/tagfolder/pkg/models"
)

// Trigger schedules a refresh of paths, or of everything when none are
// given. Triggers arriving within the settings' ScanDelay of each other are
// merged into one refresh. A trigger that fires while a refresh is running
// is queued and runs once that refresh completes.
func (o *Orchestrator) Trigger(paths ...string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	coalesced := o.timer != nil || o.running
	if len(paths) == 0 {
		o.pendingFull = true
	}
	for _, p := range paths {
		o.pending[p] = true
	}
	o.metrics.RecordTrigger(coalesced)

	delay := o.settings.ScanDelay
	if o.timer != nil {
		o.timer.Reset(delay)
		return
	}
	o.timer = time.AfterFunc(delay, o.fire)
}

// fire runs the pending refresh, or marks a rerun when one is in flight.
func (o *Orchestrator) fire() {
	o.mu.Lock()
	o.timer = nil
	if o.running {
		o.rerun = true
		o.mu.Unlock()
		return
	}
	o.running = true
	ctx := o.baseCtx
	o.mu.Unlock()

	for {
		o.mu.Lock()
		paths, full := o.takePending()
		o.mu.Unlock()

		var err error
		if full {
			err = o.Refresh(ctx)
		} else if len(paths) > 0 {
			err = o.Refresh(ctx, paths...)
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			o.log.WithError(err).Warn("Scheduled refresh failed")
		}

		o.mu.Lock()
		if !o.rerun || ctx.Err() != nil {
			o.running = false
			o.rerun = false
			o.mu.Unlock()
			return
		}
		o.rerun = false
		o.mu.Unlock()
	}
}

// takePending drains the pending paths. Must hold mu.
func (o *Orchestrator) takePending() ([]string, bool) {
	full := o.pendingFull
	paths := make([]string, 0, len(o.pending))
	for p := range o.pending {
		paths = append(paths, p)
	}
	o.pending = make(map[string]bool)
	o.pendingFull = false
	return paths, full
}

// Run performs an initial refresh and then turns changes into debounced
// refreshes until ctx is done or changes is closed.
func (o *Orchestrator) Run(ctx context.Context, changes <-chan models.Change) error {
	o.mu.Lock()
	o.baseCtx = ctx
	o.mu.Unlock()
	defer o.stop()

	if err := o.Refresh(ctx); err != nil {
		if errors.Is(err, ErrRebuildFailed) {
			o.log.WithError(err).Error("Initial build failed")
		} else {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			o.log.WithField("path", c.Path).WithField("change", c.Type.String()).Debug("Document change")
			if c.Path == "" {
				o.Trigger()
				continue
			}
			o.Trigger(c.Path)
		}
	}
}

// stop cancels a pending debounce timer.
func (o *Orchestrator) stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}
