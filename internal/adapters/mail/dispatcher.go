package mail

import (
	"context"
	"sync"
	"time"

	lg "github.com/mohamedaliSwe/mimi-style/internal/infra/log"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const sendTimeout = 30 * time.Second

// Observer is told the outcome of every send attempt.
type Observer interface {
	MailSent(err error)
}

// Dispatcher sends mail in the background. Callers never see the outcome;
// failures are logged.
type Dispatcher struct {
	sender Sender
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	log    *zap.Logger
	obs    Observer
}

func NewDispatcher(sender Sender, maxInFlight int64, log *zap.Logger) *Dispatcher {
	if maxInFlight <= 0 {
		maxInFlight = 4
	}
	return &Dispatcher{
		sender: sender,
		sem:    semaphore.NewWeighted(maxInFlight),
		log:    log,
	}
}

func (d *Dispatcher) Dispatch(msg Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := d.sem.Acquire(ctx, 1); err != nil {
			d.log.Warn("mail dropped", zap.String("subject", msg.Subject), zap.Error(err))
			return
		}
		defer d.sem.Release(1)

		err := d.sender.Send(ctx, msg)
		if d.obs != nil {
			d.obs.MailSent(err)
		}
		if err != nil {
			fields := []zap.Field{zap.String("subject", msg.Subject), zap.Error(err)}
			for _, to := range msg.To {
				fields = append(fields, lg.Email(to))
			}
			d.log.Error("send mail", fields...)
		}
	}()
}

// Observe must be called before the first Dispatch.
func (d *Dispatcher) Observe(o Observer) {
	d.obs = o
}

// Wait blocks until every dispatched message was handled or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
