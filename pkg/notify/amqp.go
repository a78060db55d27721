package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/chainsafe/revenue-middleware/internal/metrics"
)

// Producer publishes a JSON body to an exchange.
type Producer interface {
	Publish(ctx context.Context, exchange, routingKey string, body any) error
	Close()
}

// AMQPProducer publishes to a RabbitMQ topic exchange.
type AMQPProducer struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	declared map[string]bool
}

// NopProducer is used when no broker is configured or the broker is unreachable at startup.
type NopProducer struct {
	Logger *zap.Logger
}

// Publish logs and drops the message.
func (p *NopProducer) Publish(_ context.Context, exchange, routingKey string, _ any) error {
	if p.Logger != nil {
		p.Logger.Debug("publish skipped, no broker",
			zap.String("exchange", exchange),
			zap.String("routing_key", routingKey))
	}
	return nil
}

// Close is a no-op.
func (p *NopProducer) Close() {}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewAMQPProducer dials the broker with a bounded timeout.
func NewAMQPProducer(amqpURL string, dialTimeout time.Duration) (*AMQPProducer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}

	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(dialTimeout)})
	if err != nil {
		return nil, fmt.Errorf("failed to dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open amqp channel: %w", err)
	}

	return &AMQPProducer{conn: conn, channel: ch, declared: make(map[string]bool)}, nil
}

// Publish declares the exchange on first use and publishes body as JSON.
// A failed publish reopens the channel once and retries.
func (p *AMQPProducer) Publish(ctx context.Context, exchange, routingKey string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal amqp body: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err = p.publishLocked(ctx, exchange, routingKey, payload); err == nil {
		return nil
	}

	ch, chErr := p.conn.Channel()
	if chErr != nil {
		return fmt.Errorf("publish failed: %w (reopen: %v)", err, chErr)
	}
	p.channel = ch
	p.declared = make(map[string]bool)
	return p.publishLocked(ctx, exchange, routingKey, payload)
}

func (p *AMQPProducer) publishLocked(ctx context.Context, exchange, routingKey string, payload []byte) error {
	if !p.declared[exchange] {
		if err := p.channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
		}
		p.declared[exchange] = true
	}
	return p.channel.PublishWithContext(ctx, exchange, routingKey, false, false, amqp091.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        payload,
	})
}

// Close closes the channel and the connection.
func (p *AMQPProducer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Forwarder copies bus events to a broker exchange, routed by topic.
type Forwarder struct {
	bus      *Bus
	producer Producer
	exchange string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewForwarder creates a forwarder. Run starts it.
func NewForwarder(bus *Bus, producer Producer, exchange string, logger *zap.Logger) *Forwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Forwarder{
		bus:      bus,
		producer: producer,
		exchange: exchange,
		timeout:  5 * time.Second,
		logger:   logger.Named("forwarder"),
	}
}

// Run forwards events until ctx is done or the bus is closed.
func (f *Forwarder) Run(ctx context.Context) error {
	sub := f.bus.Subscribe(nil)
	defer sub.Close()

	f.logger.Info("forwarding notifications", zap.String("exchange", f.exchange))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			f.forward(ctx, ev)
		}
	}
}

func (f *Forwarder) forward(ctx context.Context, ev Event) {
	pubCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := f.producer.Publish(pubCtx, f.exchange, string(ev.Topic), ev); err != nil {
		metrics.ErrorsTotal.WithLabelValues("forwarder", "publish").Inc()
		f.logger.Warn("failed to forward event",
			zap.String("topic", string(ev.Topic)),
			zap.Stringer("entity_id", ev.EntityID),
			zap.Error(err))
	}
}
