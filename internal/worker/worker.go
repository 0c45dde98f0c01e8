// Package worker runs the queue consumer that moves paid orders into
// production. Publishing a StartWorkJob on payment and consuming it
// here keeps the paid -> in_progress step observable and retryable
// instead of hiding it in a timer.
package worker

import (
	"encoding/json"
	"errors"
	"time"

	"digitizing/internal/models"
	"digitizing/internal/services"
	"digitizing/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// StartWorkWorker consumes start-work jobs and applies the order
// transition through the order service.
type StartWorkWorker struct {
	client       *rabbitmq.Client
	orderService *services.OrderService
	log          *logrus.Logger
}

// NewStartWorkWorker creates a new StartWorkWorker.
func NewStartWorkWorker(client *rabbitmq.Client, orderService *services.OrderService, log *logrus.Logger) *StartWorkWorker {
	return &StartWorkWorker{
		client:       client,
		orderService: orderService,
		log:          log,
	}
}

// Run registers the start-work consumer. The client hands each
// delivery its own goroutine, so a job sleeping out its NotBefore
// delay does not delay the jobs queued behind it.
func (w *StartWorkWorker) Run() error {
	w.log.WithField("queue", rabbitmq.StartWorkQueue).Info("start-work worker running")
	return w.client.ConsumeStartWork(w.handle)
}

func (w *StartWorkWorker) handle(msg amqp.Delivery) error {
	var job rabbitmq.StartWorkJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		w.log.WithError(err).Warn("dropping malformed start-work job")
		return err
	}

	// Honor the publisher's delay without requeue churn.
	if wait := time.Until(job.NotBefore); wait > 0 {
		time.Sleep(wait)
	}

	err := w.orderService.StartWork(job.OrderID)
	switch {
	case err == nil:
		w.log.WithField("order_id", job.OrderID).Info("order moved to in_progress")
		return nil
	case errors.Is(err, models.ErrIllegalTransition), errors.Is(err, models.ErrNotFound):
		// The order was cancelled or already progressed while the job
		// sat in the queue. The job is stale, not failed.
		w.log.WithFields(logrus.Fields{
			"order_id": job.OrderID,
			"reason":   err.Error(),
		}).Info("dropping stale start-work job")
		return nil
	default:
		w.log.WithError(err).WithField("order_id", job.OrderID).Error("start-work job failed")
		return err
	}
}
