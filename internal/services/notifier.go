package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chachabrian/tourbook-backend/internal/logger"
	"github.com/chachabrian/tourbook-backend/pkg/utils"
	"github.com/google/uuid"
)

type JobKind string

const (
	JobAdminBookingAlert   JobKind = "admin_booking_alert"
	JobBookingConfirmation JobKind = "booking_confirmation"
	JobBookingSMS          JobKind = "booking_sms"
	JobStatusUpdate        JobKind = "status_update"
	JobPasswordReset       JobKind = "password_reset"
	JobTestEmail           JobKind = "test_email"
)

// Job is a fully rendered message. Workers only deliver it.
type Job struct {
	ID      string   `json:"id"`
	Kind    JobKind  `json:"kind"`
	To      []string `json:"to"`
	Subject string   `json:"subject,omitempty"`
	Body    string   `json:"body"`
}

func (j Job) IsSMS() bool {
	return j.Kind == JobBookingSMS
}

const maxRetryDelay = 30 * time.Second

var (
	ErrQueueClosed = errors.New("notification queue closed")
	ErrQueueFull   = errors.New("notification queue full")
	// ErrPermanent marks a delivery failure that retrying cannot fix.
	ErrPermanent = errors.New("permanent delivery failure")
)

type Mailer interface {
	Send(to []string, subject, body string) error
}

type SMSSender interface {
	Send(ctx context.Context, message string, recipients []string) error
}

// JobHandler delivers one job.
type JobHandler interface {
	Deliver(ctx context.Context, job Job) error
}

// NotificationQueue accepts jobs for asynchronous delivery.
type NotificationQueue interface {
	Enqueue(ctx context.Context, job Job) error
	Close() error
}

// Deliverer routes jobs to the mail or SMS transport.
type Deliverer struct {
	Mailer Mailer
	SMS    SMSSender
}

// NewDeliverer leaves out transports whose credentials are missing so their
// jobs fail permanently instead of being retried.
func NewDeliverer(mailer *utils.SMTPMailer, sms *utils.ATSender) *Deliverer {
	d := &Deliverer{}
	if mailer != nil && mailer.Configured() {
		d.Mailer = mailer
	} else {
		logger.Warning("SMTP not configured; email notifications will be dropped")
	}
	if sms != nil && sms.Configured() {
		d.SMS = sms
	}
	return d
}

func (d *Deliverer) Deliver(ctx context.Context, job Job) error {
	if len(job.To) == 0 {
		return fmt.Errorf("%w: job %s has no recipients", ErrPermanent, job.ID)
	}
	if job.IsSMS() {
		if d.SMS == nil {
			return fmt.Errorf("%w: no SMS sender configured", ErrPermanent)
		}
		return d.SMS.Send(ctx, job.Body, job.To)
	}
	if d.Mailer == nil {
		return fmt.Errorf("%w: no mailer configured", ErrPermanent)
	}
	return d.Mailer.Send(job.To, job.Subject, job.Body)
}

// Dispatcher is the in-process queue: a buffered channel drained by a fixed
// pool of workers, each retrying a job with exponential backoff.
type Dispatcher struct {
	handler     JobHandler
	jobs        chan Job
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration

	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(handler JobHandler, workers, maxAttempts int, baseDelay time.Duration) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	d := &Dispatcher{
		handler:     handler,
		jobs:        make(chan Job, 256),
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    maxRetryDelay,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work(i + 1)
	}
	return d
}

func (d *Dispatcher) Enqueue(ctx context.Context, job Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}

	select {
	case d.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Close stops accepting jobs and waits until queued ones are finished.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()
	d.wg.Wait()
	return nil
}

func (d *Dispatcher) work(id int) {
	defer d.wg.Done()
	for job := range d.jobs {
		d.run(job)
	}
	logger.Printf("Notification worker %d stopped", id)
}

func (d *Dispatcher) run(job Job) {
	var err error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = d.handler.Deliver(ctx, job)
		cancel()
		if err == nil {
			logger.Printf("Delivered %s notification %s on attempt %d", job.Kind, job.ID, attempt)
			return
		}
		if errors.Is(err, ErrPermanent) {
			break
		}
		if attempt < d.maxAttempts {
			logger.Warning(fmt.Sprintf("Delivery of %s notification %s failed (attempt %d/%d): %v", job.Kind, job.ID, attempt, d.maxAttempts, err))
			time.Sleep(d.backoff(attempt))
		}
	}
	logger.Error(fmt.Sprintf("Giving up on %s notification %s", job.Kind, job.ID), err)
}

func (d *Dispatcher) backoff(attempt int) time.Duration {
	return retryDelay(d.baseDelay, d.maxDelay, attempt)
}

// retryDelay doubles base for every failed attempt, capped at ceiling.
func retryDelay(base, ceiling time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := base << (attempt - 1)
	if delay > ceiling || delay <= 0 {
		return ceiling
	}
	return delay
}
