package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chachabrian/tourbook-backend/internal/logger"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const attemptHeader = "x-attempt"

// RoutingKey is the topic a job is published under.
func RoutingKey(kind JobKind) string {
	return "notify." + string(kind)
}

// AMQPPublisher is the NotificationQueue used when a broker is configured.
// Delivery happens in cmd/notifier.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Enqueue(ctx context.Context, job Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	msg, err := jobPublishing(job, 0)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(job.Kind), false, false, msg)
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func jobPublishing(job Job, attempt int) (amqp.Publishing, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Headers:      amqp.Table{attemptHeader: int32(attempt)},
		Body:         body,
	}, nil
}

type AMQPConsumerConfig struct {
	URL         string
	Exchange    string
	Queue       string
	MaxAttempts int
	Prefetch    int
	// RetryDelay is the wait before the first retry; it doubles per attempt.
	RetryDelay time.Duration
}

// AMQPConsumer drains the notification queue. A failed job is re-published
// with its attempt counter bumped after the same backoff the in-process
// Dispatcher uses; once attempts run out it is rejected to the dead-letter
// exchange.
type AMQPConsumer struct {
	cfg     AMQPConsumerConfig
	handler JobHandler

	conn      *amqp.Connection
	ch        *amqp.Channel
	republish func(ctx context.Context, routingKey string, msg amqp.Publishing) error
	wait      func(ctx context.Context, d time.Duration) error
}

func NewAMQPConsumer(cfg AMQPConsumerConfig, handler JobHandler) *AMQPConsumer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 8
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	return &AMQPConsumer{cfg: cfg, handler: handler, wait: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *AMQPConsumer) deadLetterExchange() string {
	return c.cfg.Exchange + ".dlx"
}

func (c *AMQPConsumer) Connect() error {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("rabbit dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel failed: %w", err)
	}

	fail := func(step string, err error) error {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("%s failed: %w", step, err)
	}

	if err := ch.ExchangeDeclare(c.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fail("declare exchange", err)
	}
	if err := ch.ExchangeDeclare(c.deadLetterExchange(), "topic", true, false, false, false, nil); err != nil {
		return fail("declare dlx", err)
	}
	args := amqp.Table{"x-dead-letter-exchange": c.deadLetterExchange()}
	q, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, args)
	if err != nil {
		return fail("declare queue", err)
	}
	if err := ch.QueueBind(q.Name, "notify.*", c.cfg.Exchange, false, nil); err != nil {
		return fail("bind queue", err)
	}
	dlq := c.cfg.Queue + ".dlq"
	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return fail("declare dlq", err)
	}
	if err := ch.QueueBind(dlq, "#", c.deadLetterExchange(), false, nil); err != nil {
		return fail("bind dlq", err)
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fail("set qos", err)
	}

	c.conn = conn
	c.ch = ch
	c.republish = func(ctx context.Context, routingKey string, msg amqp.Publishing) error {
		return ch.PublishWithContext(ctx, c.cfg.Exchange, routingKey, false, false, msg)
	}
	return nil
}

func (c *AMQPConsumer) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *AMQPConsumer) Run(ctx context.Context) error {
	msgs, err := c.ch.ConsumeWithContext(ctx, c.cfg.Queue, "notifier", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume failed: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			c.handleDelivery(ctx, d)
		}
	}
}

func (c *AMQPConsumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var job Job
	if err := json.Unmarshal(d.Body, &job); err != nil {
		logger.Error("[notify] malformed job on "+d.RoutingKey+", dead-lettering", err)
		_ = d.Nack(false, false)
		return
	}

	err := c.handler.Deliver(ctx, job)
	if err == nil {
		_ = d.Ack(false)
		return
	}

	attempt := attemptOf(d.Headers) + 1
	if attempt >= c.cfg.MaxAttempts || errors.Is(err, ErrPermanent) {
		logger.Error(fmt.Sprintf("[notify] giving up on %s job %s after %d attempt(s)", job.Kind, job.ID, attempt), err)
		_ = d.Nack(false, false)
		return
	}

	if werr := c.wait(ctx, retryDelay(c.cfg.RetryDelay, maxRetryDelay, attempt)); werr != nil {
		logger.Warning(fmt.Sprintf("[notify] shutting down, requeueing %s job %s", job.Kind, job.ID))
		_ = d.Nack(false, true)
		return
	}

	msg, merr := jobPublishing(job, attempt)
	if merr == nil {
		merr = c.republish(ctx, d.RoutingKey, msg)
	}
	if merr != nil {
		logger.Error("[notify] retry publish failed, requeueing", merr)
		_ = d.Nack(false, true)
		return
	}
	logger.Warning(fmt.Sprintf("[notify] %s job %s failed (attempt %d/%d), retrying: %v", job.Kind, job.ID, attempt, c.cfg.MaxAttempts, err))
	_ = d.Ack(false)
}

func attemptOf(headers amqp.Table) int {
	switch v := headers[attemptHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
