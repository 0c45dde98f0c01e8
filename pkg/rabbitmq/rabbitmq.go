package rabbitmq

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/streadway/amqp"
)

const (
	// OrderEventsQueue receives lifecycle notifications (order created,
	// quoted, paid, cancelled, completed) for downstream consumers such
	// as email notification workers.
	OrderEventsQueue = "order_events"
	// StartWorkQueue carries the explicit start-work jobs enqueued when
	// a payment succeeds. The in-process worker consumes it and moves
	// the order from paid to in_progress.
	StartWorkQueue = "start_work"
)

// OrderEvent is the message body published to OrderEventsQueue.
type OrderEvent struct {
	Event      string    `json:"event"`
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// StartWorkJob is the message body published to StartWorkQueue.
// NotBefore delays the transition so the customer sees the paid state
// before work formally begins.
type StartWorkJob struct {
	OrderID   string    `json:"order_id"`
	PaymentID string    `json:"payment_id"`
	NotBefore time.Time `json:"not_before"`
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the
// queues this service uses.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	for _, queue := range []string{OrderEventsQueue, StartWorkQueue} {
		_, err = ch.QueueDeclare(
			queue,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to declare %s: %w", queue, err)
		}
	}

	log.Println("RabbitMQ client connected and queues declared.")

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// publish marshals body to JSON and sends it to the named queue on the
// default exchange as a persistent message.
func (c *Client) publish(queue string, body interface{}) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal message to JSON: %w", err)
	}

	err = c.channel.Publish(
		"",    // exchange: default exchange
		queue, // routing key: the queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message to %s: %w", queue, err)
	}
	return nil
}

// PublishOrderEvent publishes a lifecycle event to OrderEventsQueue.
func (c *Client) PublishOrderEvent(event OrderEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	return c.publish(OrderEventsQueue, event)
}

// PublishStartWork enqueues a start-work job.
func (c *Client) PublishStartWork(job StartWorkJob) error {
	return c.publish(StartWorkQueue, job)
}

// ConsumeStartWork registers a consumer on StartWorkQueue. The handler
// is invoked per delivery, each on its own goroutine because a handler
// may sleep out a job's NotBefore delay and must not hold up the jobs
// behind it. A nil return acks the message, an error nacks it without
// requeue (a stale job must not loop forever).
func (c *Client) ConsumeStartWork(messageHandler func(msg amqp.Delivery) error) error {
	return c.consume(StartWorkQueue, false, true, messageHandler)
}

// ConsumeOrderEvents registers a consumer on OrderEventsQueue.
// Deliveries are handled in order on a single goroutine; failed
// deliveries are requeued.
func (c *Client) ConsumeOrderEvents(messageHandler func(msg amqp.Delivery) error) error {
	return c.consume(OrderEventsQueue, true, false, messageHandler)
}

func (c *Client) consume(queue string, requeue, concurrent bool, messageHandler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		queue,
		"",    // consumer tag
		false, // auto-ack: manual acknowledgement
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer on %s: %w", queue, err)
	}

	handleDelivery := func(msg amqp.Delivery) {
		if err := messageHandler(msg); err != nil {
			log.Printf("Error processing message %d from %s: %v", msg.DeliveryTag, queue, err)
			if nackErr := msg.Nack(false, requeue); nackErr != nil {
				log.Printf("Error nacking message %d: %v", msg.DeliveryTag, nackErr)
			}
		} else {
			if ackErr := msg.Ack(false); ackErr != nil {
				log.Printf("Error acking message %d: %v", msg.DeliveryTag, ackErr)
			}
		}
	}

	go dispatch(msgs, concurrent, handleDelivery)

	return nil
}

// dispatch feeds deliveries to handleDelivery. With concurrent set,
// each delivery runs on its own goroutine so one slow delivery cannot
// head-of-line block the rest of the queue.
func dispatch(msgs <-chan amqp.Delivery, concurrent bool, handleDelivery func(msg amqp.Delivery)) {
	for msg := range msgs {
		if concurrent {
			go handleDelivery(msg)
		} else {
			handleDelivery(msg)
		}
	}
}
