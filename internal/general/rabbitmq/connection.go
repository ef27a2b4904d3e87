package rabbitmq

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"ride-share/internal/general/config"
	"ride-share/internal/general/logger"
	"ride-share/internal/general/observability"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	heartbeat   = 10 * time.Second
	dialTimeout = 30 * time.Second
	minBackoff  = time.Second
	maxBackoff  = 30 * time.Second
)

// Client owns one AMQP connection plus a confirm-mode publishing channel for the
// notification topology. It re-dials in the background whenever either closes.
type Client struct {
	url    string
	logger *logger.Logger
	logCtx context.Context

	mu      sync.RWMutex
	conn    *amqp.Connection
	pubChan *amqp.Channel

	pubMu       sync.Mutex
	pubConfirms chan amqp.Confirmation

	closeOnce sync.Once
	closed    chan struct{}
	reconnect chan struct{}
}

// URL builds the broker address from the rabbitmq config section.
func URL(cfg *config.Config) string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(cfg.RabbitMQ.User, cfg.RabbitMQ.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.RabbitMQ.Host, cfg.RabbitMQ.Port),
		Path:   "/",
	}
	return u.String()
}

// ConnectRabbitMQ dials once, declares the notification topology and starts the
// reconnect watcher. Later failures are retried in the background.
func ConnectRabbitMQ(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Client, error) {
	client := &Client{
		url:       URL(cfg),
		logger:    logger,
		logCtx:    context.WithoutCancel(ctx),
		closed:    make(chan struct{}),
		reconnect: make(chan struct{}, 1),
	}
	if err := client.connectOnce(); err != nil {
		return nil, err
	}
	go client.watch()
	return client, nil
}

// Close stops the watcher and releases the connection. Safe to call twice.
func (client *Client) Close() {
	client.closeOnce.Do(func() { close(client.closed) })

	client.mu.Lock()
	if client.pubChan != nil {
		_ = client.pubChan.Close()
		client.pubChan = nil
	}
	if client.conn != nil {
		_ = client.conn.Close()
		client.conn = nil
	}
	client.mu.Unlock()

	// publishers blocked on a confirm see the closed channel and fail
	client.pubMu.Lock()
	if client.pubConfirms != nil {
		close(client.pubConfirms)
		client.pubConfirms = nil
	}
	client.pubMu.Unlock()
}

// --- internals ---

func (client *Client) connectOnce() (err error) {
	conn, err := amqp.DialConfig(client.url, amqp.Config{
		Heartbeat: heartbeat,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		client.logger.Error(client.logCtx, "rabbitmq_dial_failed", "Failed to dial RabbitMQ", err, nil)
		return fmt.Errorf("rabbitmq dial failed: %w", err)
	}
	defer func() {
		if err != nil {
			_ = conn.Close()
		}
	}()

	ch, err := client.openPublisher(conn)
	if err != nil {
		return err
	}

	client.pubMu.Lock()
	stale := client.pubConfirms
	client.pubConfirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	client.pubMu.Unlock()
	if stale != nil {
		close(stale)
	}

	go client.logReturns(ch.NotifyReturn(make(chan amqp.Return, 1)))

	client.mu.Lock()
	if client.pubChan != nil && !client.pubChan.IsClosed() {
		_ = client.pubChan.Close()
	}
	client.conn = conn
	client.pubChan = ch
	client.mu.Unlock()

	go client.watchClose(conn, ch)

	client.logger.Info(client.logCtx, "rabbitmq_connected", "RabbitMQ connection established successfully", nil)
	return nil
}

// openPublisher opens a channel, (re)declares the topology and switches the channel to
// confirm mode.
func (client *Client) openPublisher(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		client.logger.Error(client.logCtx, "rabbitmq_open_channel_failed", "Failed to open RabbitMQ channel", err, nil)
		return nil, fmt.Errorf("rabbitmq: failed to open channel: %w", err)
	}
	if err := declareTopology(ch); err != nil {
		_ = ch.Close()
		client.logger.Error(client.logCtx, "rabbitmq_declare_topology_failed", "Failed to declare RabbitMQ topology", err, nil)
		return nil, fmt.Errorf("rabbitmq: failed to declare topology: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		client.logger.Error(client.logCtx, "rabbitmq_enable_confirms_failed", "Failed to enable publisher confirms", err, nil)
		return nil, fmt.Errorf("rabbitmq: failed to enable confirms: %w", err)
	}
	return ch, nil
}

// logReturns drains unroutable notifications (published with mandatory=true).
func (client *Client) logReturns(returns <-chan amqp.Return) {
	for r := range returns {
		client.logger.Error(client.logCtx, "rabbitmq_returned",
			"Notification was returned as unroutable",
			fmt.Errorf("code=%d text=%s", r.ReplyCode, r.ReplyText),
			map[string]any{"exchange": r.Exchange, "routing_key": r.RoutingKey, "size": len(r.Body)},
		)
	}
	client.logger.Debug(client.logCtx, "rabbitmq_return_stream_closed", "Return stream closed", nil)
}

// watchClose asks the watcher for a reconnect once conn or ch goes away.
func (client *Client) watchClose(conn *amqp.Connection, ch *amqp.Channel) {
	connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
	chClosed := ch.NotifyClose(make(chan *amqp.Error, 1))
	select {
	case <-client.closed:
		return
	case <-connClosed:
	case <-chClosed:
	}
	select {
	case client.reconnect <- struct{}{}:
	default:
	}
}

func (client *Client) watch() {
	for {
		select {
		case <-client.closed:
			return
		case <-client.reconnect:
		}

		backoff := minBackoff
		for attempt := 1; ; attempt++ {
			err := client.connectOnce()
			observability.BrokerReconnectsTotal.WithLabelValues(reconnectOutcome(err)).Inc()
			if err == nil {
				client.logger.Info(client.logCtx, "rabbitmq_reconnected", "Reconnected to RabbitMQ and re-declared topology",
					map[string]any{"attempts": attempt})
				break
			}
			client.logger.Error(client.logCtx, "retry_attempted", "Failed to reconnect to RabbitMQ", err,
				map[string]any{"attempt": attempt, "backoff": backoff.String()})

			select {
			case <-client.closed:
				return
			case <-time.After(backoff):
			}
			backoff = nextBackoff(backoff)
		}
	}
}

// nextBackoff doubles d up to maxBackoff.
func nextBackoff(d time.Duration) time.Duration {
	return min(2*d, maxBackoff)
}

func reconnectOutcome(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}
