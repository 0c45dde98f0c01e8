package services

import (
	"errors"
	"fmt"
	"time"

	"digitizing/internal/authz"
	"digitizing/internal/models"
	"digitizing/internal/repositories"
	"digitizing/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const sessionLifetime = 30 * time.Minute

// WebhookEvent is the payload of a payment-provider webhook delivery.
// IdempotencyKey is the provider's event id and dedupes retries.
type WebhookEvent struct {
	PaymentID      string `json:"payment_id" validate:"required"`
	IdempotencyKey string `json:"idempotency_key" validate:"required"`
	Succeeded      bool   `json:"succeeded"`
	TransactionID  string `json:"transaction_id"`
	PaymentMethod  string `json:"payment_method"`
	ErrorMessage   string `json:"error_message"`
}

// PaymentService handles payment sessions and the provider webhook.
type PaymentService struct {
	paymentRepo repositories.PaymentRepository
	orderRepo   repositories.OrderRepository
	quoteRepo   repositories.QuoteRepository
	publisher   EventPublisher
	provider    string
	startDelay  time.Duration
	log         *logrus.Logger
}

// NewPaymentService creates a new PaymentService. startDelay is how
// long after a successful payment the start-work job may run.
func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	orderRepo repositories.OrderRepository,
	quoteRepo repositories.QuoteRepository,
	publisher EventPublisher,
	startDelay time.Duration,
	log *logrus.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		quoteRepo:   quoteRepo,
		publisher:   publisher,
		provider:    "mock",
		startDelay:  startDelay,
		log:         log,
	}
}

// CreateSession opens a payment session for a quoted order. The quote
// amount is snapshotted into a pending Payment; later quote edits are
// already forbidden once a payment succeeds, so the snapshot cannot
// drift from what was actually paid.
func (s *PaymentService) CreateSession(subject authz.Subject, orderID string) (*models.PaymentSession, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(subject, authz.ActionPayOrder, authz.Resource{OwnerID: order.UserID}) {
		return nil, models.ErrUnauthorized
	}

	quote, err := s.quoteRepo.GetByOrderID(orderID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNoQuote
		}
		return nil, err
	}

	if order.Status != models.StatusQuoted {
		return nil, fmt.Errorf("order %s is not awaiting payment (status %s): %w",
			orderID, order.Status, models.ErrIllegalTransition)
	}

	payment := &models.Payment{
		OrderID:  orderID,
		UserID:   order.UserID,
		Amount:   quote.Amount,
		Provider: s.provider,
		Status:   models.PaymentPending,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}

	session := &models.PaymentSession{
		ID:         payment.ID,
		OrderID:    orderID,
		Amount:     payment.Amount,
		Provider:   s.provider,
		SessionURL: fmt.Sprintf("https://mock-payment-gateway.com/pay/%s", uuid.New().String()),
		ExpiresAt:  time.Now().Add(sessionLifetime),
	}
	return session, nil
}

// HandleWebhook processes a provider notification. The operation is
// idempotent: a replay with an already-seen idempotency key, or for a
// payment that already reached a final state, returns the stored
// payment without side effects — no duplicate timeline entries and no
// second start-work job.
func (s *PaymentService) HandleWebhook(event WebhookEvent) (*models.Payment, error) {
	if event.IdempotencyKey == "" {
		return nil, fmt.Errorf("idempotency key is required: %w", models.ErrValidation)
	}

	if seen, err := s.paymentRepo.GetByIdempotencyKey(event.IdempotencyKey); err == nil {
		return seen, nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	payment, err := s.paymentRepo.GetByID(event.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status.Final() {
		return payment, nil
	}

	payment.IdempotencyKey = event.IdempotencyKey

	if !event.Succeeded {
		payment.Status = models.PaymentFailed
		payment.ErrorLog = event.ErrorMessage
		if err := s.paymentRepo.Update(payment); err != nil {
			return nil, err
		}
		return payment, nil
	}

	now := time.Now()
	payment.Status = models.PaymentSucceeded
	payment.PaidAt = &now
	payment.TransactionID = event.TransactionID
	payment.PaymentMethod = event.PaymentMethod
	payment.ReceiptURL = fmt.Sprintf("/api/v1/payments/%s/receipt", payment.ID)
	if err := s.paymentRepo.Update(payment); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(payment.OrderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(models.StatusPaid) {
		return nil, fmt.Errorf("order %s cannot move from %s to %s: %w",
			order.ID, order.Status, models.StatusPaid, models.ErrIllegalTransition)
	}
	if err := s.orderRepo.UpdateStatus(order.ID, models.StatusPaid); err != nil {
		return nil, err
	}
	if err := s.orderRepo.AppendTimeline(&models.TimelineEntry{
		OrderID: order.ID,
		Status:  models.StatusPaid,
		Note:    "Payment received successfully",
	}); err != nil {
		return nil, err
	}

	s.publishPaid(order, payment)
	return payment, nil
}

// ListPayments returns the caller's payments, or all payments (with
// filters) for admins.
func (s *PaymentService) ListPayments(subject authz.Subject, filters models.PaymentFilters) ([]models.Payment, error) {
	if subject.IsAdmin() {
		return s.paymentRepo.GetAll(filters)
	}
	if subject.UserID == "" {
		return nil, models.ErrNotAuthenticated
	}
	return s.paymentRepo.GetByUserID(subject.UserID)
}

// GetPayment returns one payment to its owner or an admin.
func (s *PaymentService) GetPayment(subject authz.Subject, paymentID string) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(subject, authz.ActionReadPayment, authz.Resource{OwnerID: payment.UserID}) {
		return nil, models.ErrUnauthorized
	}
	return payment, nil
}

// publishPaid emits the paid event and enqueues the explicit start-work
// job that replaces any in-process timer. Publish failures are logged,
// not fatal: an admin can still start work by hand.
func (s *PaymentService) publishPaid(order *models.Order, payment *models.Payment) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderEvent(rabbitmq.OrderEvent{
		Event:   "order.paid",
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  string(models.StatusPaid),
	}); err != nil && s.log != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Warn("failed to publish order.paid event")
	}
	if err := s.publisher.PublishStartWork(rabbitmq.StartWorkJob{
		OrderID:   order.ID,
		PaymentID: payment.ID,
		NotBefore: time.Now().Add(s.startDelay),
	}); err != nil && s.log != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Warn("failed to enqueue start-work job")
	}
}
