package mo

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/engagement-updater/modules/engagement/domain/events"
	"github.com/iota-uz/engagement-updater/pkg/eventbus"
)

type SubscriberOptions struct {
	URL            string
	Exchange       string
	QueuePrefix    string
	PrefetchCount  int
	RequeueDelay   time.Duration
	ReconnectDelay time.Duration
	RoutingPattern string
	Bus            eventbus.EventBusWithError
	Logger         logrus.FieldLogger
}

func (o *SubscriberOptions) setDefaults() {
	if o.PrefetchCount < 1 {
		o.PrefetchCount = 1
	}
	if o.RequeueDelay <= 0 {
		o.RequeueDelay = 30 * time.Second
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = 5 * time.Second
	}
	if o.RoutingPattern == "" {
		o.RoutingPattern = "employee.engagement.*"
	}
}

// Subscriber consumes engagement change events from the OS2mo exchange and
// dispatches them on the in-process event bus. With the default prefetch of
// one, a single event is processed to completion before the next is taken.
type Subscriber struct {
	opts    SubscriberOptions
	healthy atomic.Bool
}

func NewSubscriber(opts SubscriberOptions) (*Subscriber, error) {
	if opts.URL == "" {
		return nil, errors.New("amqp: url is required")
	}
	if opts.Exchange == "" {
		return nil, errors.New("amqp: exchange is required")
	}
	if opts.Bus == nil {
		return nil, errors.New("amqp: event bus is required")
	}
	if opts.Logger == nil {
		return nil, errors.New("amqp: logger is required")
	}
	opts.setDefaults()
	return &Subscriber{opts: opts}, nil
}

// Run consumes until the context is cancelled, reconnecting with a delay
// after broker failures.
func (s *Subscriber) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.consume(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.opts.Logger.WithError(err).Warn("amqp: consume loop failed; reconnecting")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.opts.ReconnectDelay):
		}
	}
}

func (s *Subscriber) consume(ctx context.Context) error {
	conn, err := amqp.Dial(s.opts.URL)
	if err != nil {
		return errors.Wrap(err, "dialling broker")
	}
	defer func() {
		s.healthy.Store(false)
		_ = conn.Close()
	}()

	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "opening channel")
	}
	if err := ch.Qos(s.opts.PrefetchCount, 0, false); err != nil {
		return errors.Wrap(err, "setting prefetch")
	}
	if err := ch.ExchangeDeclare(s.opts.Exchange, "topic", true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "declaring exchange")
	}

	queueName := s.opts.QueuePrefix + "_engagement"
	queue, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "declaring queue")
	}
	if err := ch.QueueBind(queue.Name, s.opts.RoutingPattern, s.opts.Exchange, false, nil); err != nil {
		return errors.Wrap(err, "binding queue")
	}

	deliveries, err := ch.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "starting consumer")
	}

	s.healthy.Store(true)
	s.opts.Logger.WithFields(logrus.Fields{
		"queue":   queue.Name,
		"pattern": s.opts.RoutingPattern,
	}).Info("amqp: consuming")

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			return errors.Wrap(amqpErr, "connection closed")
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			s.handle(ctx, delivery)
		}
	}
}

func (s *Subscriber) handle(ctx context.Context, delivery amqp.Delivery) {
	log := s.opts.Logger.WithField("routing-key", delivery.RoutingKey)

	key, err := events.ParseRoutingKey(delivery.RoutingKey)
	if err != nil {
		log.WithError(err).Warn("amqp: dropping message with invalid routing key")
		_ = delivery.Nack(false, false)
		return
	}

	var payload events.Payload
	if err := json.Unmarshal(delivery.Body, &payload); err != nil {
		log.WithError(err).Warn("amqp: dropping message with invalid payload")
		_ = delivery.Nack(false, false)
		return
	}

	err = s.opts.Bus.PublishE(ctx, key, payload)
	switch {
	case err == nil:
		_ = delivery.Ack(false)
	case errors.Is(err, eventbus.ErrNoSubscribers):
		log.Warn("amqp: no subscriber for message; acknowledging")
		_ = delivery.Ack(false)
	default:
		// Sleep before requeueing so a failing downstream is not hammered.
		log.WithError(err).Error("amqp: handling failed; requeueing")
		select {
		case <-ctx.Done():
		case <-time.After(s.opts.RequeueDelay):
		}
		_ = delivery.Nack(false, true)
	}
}

// Healthy reports whether the subscriber currently holds an open broker
// connection.
func (s *Subscriber) Healthy() bool {
	return s.healthy.Load()
}
