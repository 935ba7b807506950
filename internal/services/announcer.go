package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"prizewheel/internal/message"
	"prizewheel/internal/metrics"
	"prizewheel/internal/models"
	"prizewheel/internal/notify"

	"github.com/google/logger"
	"github.com/panjf2000/ants/v2"
)

// SpinRecorder stores revealed spins.
type SpinRecorder interface {
	RecordSpin(r *models.SpinResult) error
}

// Announcer records revealed campaign spins and forwards the rendered result
// message to a Notifier. Delivery is fire-and-forget.
type Announcer struct {
	recorder SpinRecorder
	notifier notify.Notifier
	pool     *ants.Pool
	timeout  time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewAnnouncer starts a delivery pool with the given number of workers.
func NewAnnouncer(recorder SpinRecorder, notifier notify.Notifier, workers int, timeout time.Duration) (*Announcer, error) {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p any) {
		logger.Errorf("Notification worker panicked: %v", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("notification pool: %w", err)
	}
	return &Announcer{
		recorder: recorder,
		notifier: notifier,
		pool:     pool,
		timeout:  timeout,
	}, nil
}

// OnReveal is a RevealHook. Demo spins carry no campaign and are ignored;
// spins without a lead are recorded but not announced.
func (a *Announcer) OnReveal(ev Reveal) {
	if ev.Campaign == nil {
		return
	}
	if !a.acquire() {
		metrics.Notifications.WithLabelValues(metrics.ResultDropped).Inc()
		logger.Warningf("Dropped reveal for campaign %s after shutdown", ev.Campaign.Slug)
		return
	}
	defer a.wg.Done()

	result := &models.SpinResult{
		CampaignID: ev.Campaign.ID,
		PrizeID:    ev.Prize.ID,
		PrizeName:  ev.Prize.Name,
		Rotation:   ev.Rotation,
	}
	if ev.Lead != nil {
		result.LeadID = ev.Lead.ID
	}
	if a.recorder != nil {
		if err := a.recorder.RecordSpin(result); err != nil {
			logger.Errorf("Failed to record spin for campaign %s: %v", ev.Campaign.Slug, err)
		}
	}

	if ev.Lead == nil {
		metrics.Notifications.WithLabelValues(metrics.ResultSkipped).Inc()
		return
	}

	msg := BuildResultMessage(ev.Campaign, ev.Lead, ev.Prize)
	a.wg.Add(1)
	err := a.pool.Submit(func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.notifier.Send(ctx, msg); err != nil {
			metrics.Notifications.WithLabelValues(metrics.ResultFailed).Inc()
			logger.Warningf("Result notification for lead %s failed: %v", ev.Lead.ID, err)
			return
		}
		metrics.Notifications.WithLabelValues(metrics.ResultSent).Inc()
	})
	if err != nil {
		a.wg.Done()
		metrics.Notifications.WithLabelValues(metrics.ResultDropped).Inc()
		logger.Warningf("Dropped result notification for lead %s: %v", ev.Lead.ID, err)
	}
}

// acquire reserves a slot in wg unless the announcer is closed. Once closed
// is set no Add can start from a zero counter, so Close's Wait is safe.
func (a *Announcer) acquire() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return false
	}
	a.wg.Add(1)
	return true
}

// Wait blocks until every submitted notification has finished.
func (a *Announcer) Wait() {
	a.wg.Wait()
}

// Close stops accepting reveals, waits for in-flight notifications and stops
// the pool. Reveals arriving after Close are dropped.
func (a *Announcer) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()
	a.wg.Wait()
	a.pool.Release()
}

// BuildResultMessage renders the customer message for a won prize.
func BuildResultMessage(c *models.Campaign, l *models.Lead, p models.Prize) *notify.Message {
	validity := message.ValidityDays(c.Callout)
	tmpl := message.TemplateOrDefault(p.MessageTemplate)
	return &notify.Message{
		Lead:     notify.Lead{Name: l.Name, WhatsApp: l.Phone},
		Campaign: notify.Campaign{Slug: c.Slug, ValidityDays: validity},
		Prize:    notify.Prize{ID: p.ID, Name: p.Name},
		Template: tmpl,
		Message: message.Render(tmpl, message.Values{
			Prize:        p.Name,
			ValidityDays: validity,
			Name:         l.Name,
			WhatsApp:     l.Phone,
		}),
	}
}
