package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/rabbitmq/amqp091-go"

	"budget/internal/log"
)

const (
	defaultAttempts = 3
	defaultDelay    = time.Second
	publishTimeout  = 5 * time.Second
)

var ErrNotConnected = errors.New("amqp client is not connected")

// Options tune connection retries. Zero values use the defaults.
type Options struct {
	Attempts uint
	Delay    time.Duration
	Logger   *log.Logger
}

// Client publishes reports to a direct exchange. A durable queue named after
// the routing key is bound so reports are kept until someone reads them.
type Client struct {
	url          string
	exchangeName string
	routingKey   string
	attempts     uint
	delay        time.Duration
	logger       *log.Logger
	dial         func(url string) (*amqp091.Connection, error)

	conn    *amqp091.Connection
	channel *amqp091.Channel
	now     func() time.Time
}

func newClient(url, exchangeName, routingKey string, opts Options) *Client {
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		routingKey:   routingKey,
		attempts:     opts.Attempts,
		delay:        opts.Delay,
		logger:       opts.Logger,
		dial:         amqp091.Dial,
		now:          time.Now,
	}
	if c.attempts == 0 {
		c.attempts = defaultAttempts
	}
	if c.delay == 0 {
		c.delay = defaultDelay
	}
	if c.logger == nil {
		c.logger = log.Discard()
	}
	c.logger = c.logger.WithComponent(log.ComponentAMQP)
	return c
}

// NewClient connects to the broker, retrying connection failures, and
// declares the exchange and queue.
func NewClient(ctx context.Context, url, exchangeName, routingKey string, opts Options) (*Client, error) {
	c := newClient(url, exchangeName, routingKey, opts)
	if err := c.connectWithRetry(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connectWithRetry(ctx context.Context) error {
	return retry.Do(
		func() error { return c.connect() },
		retry.RetryIf(isConnectionError),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.WarnContext(ctx, "AMQP connection failed, retrying", "attempt", n+1, log.FieldError, err)
		}),
	)
}

func (c *Client) connect() error {
	conn, err := c.dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c.conn = conn
	c.channel = channel

	if err := c.setup(); err != nil {
		c.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}
	return nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.routingKey, // name
		true,         // durable
		false,        // delete when unused
		false,        // exclusive
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = c.channel.QueueBind(
		c.routingKey,   // queue name
		c.routingKey,   // routing key
		c.exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PublishReport sends the report lines as a persistent JSON message. A
// dropped connection is re-established before the publish is retried.
func (c *Client) PublishReport(ctx context.Context, lines []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := NewReportMessage(lines, c.now()).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = retry.Do(
		func() error {
			if c.conn == nil || c.conn.IsClosed() {
				if err := c.connect(); err != nil {
					return err
				}
			}
			return c.publish(ctx, body)
		},
		retry.RetryIf(isConnectionError),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("publish report: %w", err)
	}

	c.logger.InfoContext(ctx, "Published report",
		log.FieldCount, len(lines),
		log.FieldExchange, c.exchangeName,
		log.FieldRoutingKey, c.routingKey)
	return nil
}

func (c *Client) publish(ctx context.Context, body []byte) error {
	if c.channel == nil {
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.routingKey,   // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    c.now(),
			Body:         body,
		},
	)
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		if err != nil && !errors.Is(err, amqp091.ErrClosed) {
			return err
		}
	}
	return nil
}

// isConnectionError reports whether err looks like a transport failure worth
// retrying after reconnecting.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) || errors.Is(err, ErrNotConnected) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection refused", "connection closed", "connection reset", "eof", "broken pipe", "use of closed network connection", "no such host", "i/o timeout"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
