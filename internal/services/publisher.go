package services

import "digitizing/pkg/rabbitmq"

// EventPublisher is the slice of the RabbitMQ client the services
// depend on. A nil publisher disables event publication (tests, dev
// runs without a broker).
type EventPublisher interface {
	PublishOrderEvent(event rabbitmq.OrderEvent) error
	PublishStartWork(job rabbitmq.StartWorkJob) error
}
