package dialogue

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Merlinthewizord/Scintara/pkg/logger"
)

// minInterval is the smallest allowed tick interval.
const minInterval = time.Minute

// Scheduler drives the engine on a fixed interval. Each tick is a blocking
// unit of work: the loop waits for the run to finish before rearming the
// timer, so runs never overlap. Per-tick failures are logged and do not
// terminate the loop.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
	log      *logger.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a scheduler with the interval floored at one minute.
func NewScheduler(engine *Engine, interval time.Duration, log *logger.Logger) *Scheduler {
	if interval < minInterval {
		interval = minInterval
	}
	return &Scheduler{
		engine:   engine,
		interval: interval,
		log:      log,
	}
}

// Start launches the scheduling loop. The first run happens immediately.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		// Cancellation is checked between ticks, not only while sleeping.
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.tick(ctx)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(s.interval)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	rec, err := s.engine.GenerateAndArchive(ctx, "scheduler")
	if err != nil {
		s.log.Warn("dialogue generation failed", zap.Error(err))
		return
	}
	if rec == nil {
		s.log.Debug("automatic generation disabled, skipping tick")
	}
}

// Stop cancels the loop and waits for any in-flight run to finish.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}
