package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/minimmo/pkg/game"
	"github.com/cbodonnell/minimmo/pkg/game/constants"
	"github.com/cbodonnell/minimmo/pkg/log"
)

// Mover runs a single cycle of random movement.
type Mover interface {
	MoveRandomCharacters(ctx context.Context) ([]game.Step, error)
}

type MoverWorker struct {
	mover    Mover
	interval time.Duration
}

type NewMoverWorkerOptions struct {
	Mover Mover
	// Interval defaults to constants.MoverInterval
	Interval time.Duration
}

// NewMoverWorker creates a new MoverWorker.
// The worker periodically nudges a few positioned characters one cell
// in a random direction.
func NewMoverWorker(opts NewMoverWorkerOptions) *MoverWorker {
	interval := opts.Interval
	if interval <= 0 {
		interval = constants.MoverInterval
	}
	return &MoverWorker{
		mover:    opts.Mover,
		interval: interval,
	}
}

// Start runs a cycle on every tick until ctx is cancelled.
// A failed cycle is logged and the next tick runs as usual.
func (w *MoverWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Info("Mover started with interval %s", w.interval)
	for {
		select {
		case <-ctx.Done():
			log.Info("Mover stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce runs one cycle and returns the accepted steps.
func (w *MoverWorker) RunOnce(ctx context.Context) []game.Step {
	steps, err := w.mover.MoveRandomCharacters(ctx)
	if err != nil {
		log.Error("Failed to move characters: %v", err)
	}
	for _, s := range steps {
		log.Debug("Moved character %d from %s to %s", s.CharacterID, s.From, s.To)
	}
	return steps
}
