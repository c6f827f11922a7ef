package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hotel-booking-backend/internal/logger"
	"hotel-booking-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionStore is the part of the store the workers need.
type SubscriptionStore interface {
	SubscriptionsForUser(ctx context.Context, userID uuid.UUID) ([]model.PushSubscription, error)
	DeleteSubscriptionByEndpoint(ctx context.Context, endpoint string) error
}

// StatusChange is one job: a booking moved from one status to another.
type StatusChange struct {
	BookingID uuid.UUID
	UserID    uuid.UUID
	Field     string
	From      string
	To        string
}

// Payload is the JSON body delivered to the browser.
type Payload struct {
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	BookingID uuid.UUID `json:"bookingId"`
	Status    string    `json:"status"`
}

func payloadFor(job StatusChange) Payload {
	title := "Booking updated"
	body := fmt.Sprintf("Your booking is now %s.", job.To)
	if job.Field == "payment_status" {
		title = "Payment updated"
		body = fmt.Sprintf("Your payment is now %s.", job.To)
	}
	return Payload{Title: title, Body: body, BookingID: job.BookingID, Status: job.To}
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan StatusChange
	store   SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewWorkerPool creates a new worker pool. webpushOptions may be nil, in
// which case jobs are accepted and discarded.
func NewWorkerPool(size, queueSize int, s SubscriptionStore, webpushOptions *webpush.Options) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if queueSize <= 0 {
		queueSize = size
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan StatusChange, queueSize),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		log:     logger.Component("notification"),
	}
}

// Start launches the worker goroutines. They exit when ctx is cancelled.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Wait blocks until every worker has exited.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	wp.log.Debug().Int("worker", id).Msg("worker started")
	for {
		select {
		case job := <-wp.jobs:
			wp.notify(ctx, job)
		case <-ctx.Done():
			wp.log.Debug().Int("worker", id).Msg("worker shutting down")
			return
		}
	}
}

// Dispatch queues a job without blocking. A full queue drops the job.
func (wp *WorkerPool) Dispatch(job StatusChange) bool {
	if wp == nil {
		return false
	}
	select {
	case wp.jobs <- job:
		return true
	default:
		wp.log.Warn().Str("booking_id", job.BookingID.String()).Msg("notification queue full, dropping job")
		return false
	}
}

func (wp *WorkerPool) notify(ctx context.Context, job StatusChange) {
	if wp.webpush == nil {
		return
	}

	subscriptions, err := wp.store.SubscriptionsForUser(ctx, job.UserID)
	if err != nil {
		wp.log.Error().Err(err).Str("user_id", job.UserID.String()).Msg("fetching subscriptions failed")
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(payloadFor(job))
	if err != nil {
		wp.log.Error().Err(err).Msg("encoding payload failed")
		return
	}

	wp.log.Info().
		Int("subscriptions", len(subscriptions)).
		Str("booking_id", job.BookingID.String()).
		Str("to", job.To).
		Msg("sending notifications")
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("sending notification failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		wp.log.Info().Str("endpoint", sub.Endpoint).Msg("subscription expired, deleting")
		if err := wp.store.DeleteSubscriptionByEndpoint(ctx, sub.Endpoint); err != nil {
			wp.log.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("deleting expired subscription failed")
		}
	}
}
