package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"stolik/internal/domain"
	"stolik/internal/metrics"
	"stolik/internal/models"
)

const deadLetterKey = "notify:deadletter"

// Dispatcher delivers queued notifications through a single goroutine so
// messages for one booking keep their enqueue order (admin alert before the
// user confirmation). Failed deliveries are retried with backoff; exhausted
// ones go to a redis dead-letter list when redis is available.
type Dispatcher struct {
	sender      domain.MessageSender
	redis       *redis.Client
	retryPolicy RetryPolicy
	queue       chan models.Notification
	logger      *zerolog.Logger
	done        chan struct{}
}

func NewDispatcher(sender domain.MessageSender, redisClient *redis.Client, retry RetryPolicy, queueSize int, logger *zerolog.Logger) *Dispatcher {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 30 * time.Second
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if queueSize <= 0 {
		queueSize = models.DispatcherQueueSize
	}

	return &Dispatcher{
		sender:      sender,
		redis:       redisClient,
		retryPolicy: retry,
		queue:       make(chan models.Notification, queueSize),
		logger:      logger,
		done:        make(chan struct{}),
	}
}

// Enqueue implements domain.NotificationQueue. It never blocks the caller;
// a full queue rejects the notification.
func (d *Dispatcher) Enqueue(n models.Notification) bool {
	select {
	case d.queue <- n:
		return true
	default:
		return false
	}
}

// Start runs the dispatch loop until ctx is cancelled, then drains whatever
// is already queued before returning.
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info().Msg("notification dispatcher started")
	defer close(d.done)
	defer d.logger.Info().Msg("notification dispatcher stopped")

	for {
		select {
		case <-ctx.Done():
			d.drain()
			return
		case n := <-d.queue:
			d.deliver(ctx, n)
		}
	}
}

// Stopped is closed once the dispatch loop has exited.
func (d *Dispatcher) Stopped() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) drain() {
	for {
		select {
		case n := <-d.queue:
			d.deliver(context.Background(), n)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n models.Notification) {
	var lastErr error
	for attempt := 1; attempt <= d.retryPolicy.MaxRetries; attempt++ {
		lastErr = d.sender.SendMessage(n.ChatID, n.Text)
		if lastErr == nil {
			metrics.IncNotification(n.Kind, "sent")
			d.logger.Debug().
				Str("kind", n.Kind).
				Int64("booking_id", n.BookingID).
				Msg("notification delivered")
			return
		}

		d.logger.Warn().
			Err(lastErr).
			Str("kind", n.Kind).
			Int64("booking_id", n.BookingID).
			Int("attempt", attempt).
			Msg("notification delivery failed")

		if attempt == d.retryPolicy.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			// Shutdown in progress, no point waiting out the backoff.
			attempt = d.retryPolicy.MaxRetries
		case <-time.After(d.retryPolicy.NextDelay(attempt)):
		}
	}

	metrics.IncNotification(n.Kind, "failed")
	d.pushDeadLetter(n, lastErr)
}

func (d *Dispatcher) pushDeadLetter(n models.Notification, cause error) {
	if d.redis == nil {
		return
	}

	entry := struct {
		models.Notification
		Error    string    `json:"error"`
		FailedAt time.Time `json:"failed_at"`
	}{Notification: n, FailedAt: time.Now()}
	if cause != nil {
		entry.Error = cause.Error()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		d.logger.Error().Err(err).Int64("booking_id", n.BookingID).Msg("encode dead letter")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.redis.LPush(ctx, deadLetterKey, data).Err(); err != nil {
		d.logger.Error().Err(err).Int64("booking_id", n.BookingID).Msg("dead letter push failed")
		return
	}
	metrics.IncNotification(n.Kind, "dead_letter")
}
