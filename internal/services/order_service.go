package services

import (
	"errors"
	"fmt"

	"digitizing/internal/authz"
	"digitizing/internal/models"
	"digitizing/internal/repositories"
	"digitizing/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
)

// OrderService owns the order lifecycle: creation, quoting, status
// transitions, deliverables and the per-order message thread. Every
// status mutation goes through transition, which is the only code path
// allowed to change an order's status.
type OrderService struct {
	orderRepo       repositories.OrderRepository
	quoteRepo       repositories.QuoteRepository
	paymentRepo     repositories.PaymentRepository
	deliverableRepo repositories.DeliverableRepository
	messageRepo     repositories.MessageRepository
	publisher       EventPublisher
	log             *logrus.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	quoteRepo repositories.QuoteRepository,
	paymentRepo repositories.PaymentRepository,
	deliverableRepo repositories.DeliverableRepository,
	messageRepo repositories.MessageRepository,
	publisher EventPublisher,
	log *logrus.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:       orderRepo,
		quoteRepo:       quoteRepo,
		paymentRepo:     paymentRepo,
		deliverableRepo: deliverableRepo,
		messageRepo:     messageRepo,
		publisher:       publisher,
		log:             log,
	}
}

// CreateOrder submits a new order for the calling customer. At least
// one artwork file is required; the order starts in pending with its
// first timeline entry.
func (s *OrderService) CreateOrder(subject authz.Subject, order *models.Order) (*models.Order, error) {
	if !authz.Can(subject, authz.ActionCreateOrder, authz.Resource{}) {
		return nil, models.ErrNotAuthenticated
	}
	if len(order.Files) == 0 {
		return nil, fmt.Errorf("at least one artwork file is required: %w", models.ErrValidation)
	}

	order.UserID = subject.UserID
	order.Status = models.StatusPending

	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.orderRepo.AppendTimeline(&models.TimelineEntry{
		OrderID: order.ID,
		Status:  models.StatusPending,
		Note:    "Order submitted and awaiting review",
	}); err != nil {
		return nil, fmt.Errorf("failed to record order submission: %w", err)
	}

	s.publishEvent("order.created", order)
	return order, nil
}

// ListOrders returns the caller's orders, or all orders for admins.
func (s *OrderService) ListOrders(subject authz.Subject, filters models.OrderFilters) ([]models.Order, error) {
	if subject.IsAdmin() {
		return s.orderRepo.GetAll(filters)
	}
	if subject.UserID == "" {
		return nil, models.ErrNotAuthenticated
	}
	return s.orderRepo.GetByUserID(subject.UserID, filters)
}

// GetOrder returns the full aggregate view of one order: the order plus
// its quote, latest payment, deliverables, messages and timeline.
func (s *OrderService) GetOrder(subject authz.Subject, orderID string) (*models.OrderView, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(subject, authz.ActionReadOrder, authz.Resource{OwnerID: order.UserID}) {
		return nil, models.ErrUnauthorized
	}

	view := &models.OrderView{Order: *order}

	if quote, quoteErr := s.quoteRepo.GetByOrderID(orderID); quoteErr == nil {
		view.Quote = quote
	} else if !errors.Is(quoteErr, models.ErrNotFound) {
		return nil, quoteErr
	}

	payments, err := s.paymentRepo.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if len(payments) > 0 {
		view.Payment = &payments[0]
	}

	if view.Deliverables, err = s.deliverableRepo.GetByOrderID(orderID); err != nil {
		return nil, err
	}
	if view.Messages, err = s.messageRepo.GetByOrderID(orderID); err != nil {
		return nil, err
	}
	if view.Timeline, err = s.orderRepo.GetTimeline(orderID); err != nil {
		return nil, err
	}
	return view, nil
}

// AddQuote attaches a priced quote to an order and moves it to quoted.
// The quote amount must equal the sum of its breakdown lines. Re-quoting
// an already quoted order replaces the quote; once a payment has
// succeeded the quote is immutable.
func (s *OrderService) AddQuote(subject authz.Subject, quote *models.Quote) (*models.Quote, error) {
	if !authz.Can(subject, authz.ActionManageOrder, authz.Resource{}) {
		return nil, models.ErrAccessDenied
	}

	order, err := s.orderRepo.GetByID(quote.OrderID)
	if err != nil {
		return nil, err
	}

	if total := quote.BreakdownTotal(); total != quote.Amount {
		return nil, fmt.Errorf("quote amount %.2f does not match breakdown total %.2f: %w",
			quote.Amount, total, models.ErrValidation)
	}

	locked, err := s.hasSucceededPayment(order.ID)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, models.ErrQuoteLocked
	}

	switch order.Status {
	case models.StatusPending:
		quote.CreatedBy = subject.AdminID
		if err := s.quoteRepo.Save(quote); err != nil {
			return nil, err
		}
		if err := s.transition(order, models.StatusQuoted, fmt.Sprintf("Quote provided: $%g", quote.Amount)); err != nil {
			return nil, err
		}
	case models.StatusQuoted:
		// Replacement quote; status unchanged.
		quote.CreatedBy = subject.AdminID
		if err := s.quoteRepo.Save(quote); err != nil {
			return nil, err
		}
		if err := s.orderRepo.AppendTimeline(&models.TimelineEntry{
			OrderID: order.ID,
			Status:  models.StatusQuoted,
			Note:    fmt.Sprintf("Quote updated: $%g", quote.Amount),
		}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("cannot quote an order in status %s: %w", order.Status, models.ErrIllegalTransition)
	}

	s.publishEvent("order.quoted", order)
	return quote, nil
}

// UpdateStatus performs an admin-driven status transition, validated
// against the legal transition table. Cancelling an order whose payment
// already succeeded marks the payment refunded.
func (s *OrderService) UpdateStatus(subject authz.Subject, orderID string, status models.OrderStatus, note string) (*models.Order, error) {
	if !authz.Can(subject, authz.ActionManageOrder, authz.Resource{}) {
		return nil, models.ErrAccessDenied
	}
	if !status.Valid() {
		return nil, fmt.Errorf("unknown order status %q: %w", status, models.ErrValidation)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if err := s.transition(order, status, note); err != nil {
		return nil, err
	}

	if status == models.StatusCancelled {
		if err := s.refundSucceededPayment(order); err != nil {
			return nil, err
		}
	}

	s.publishEvent("order.status_changed", order)
	return order, nil
}

// StartWork moves a paid order to in_progress. Called by the start-work
// queue worker; a stale job (the order was cancelled or already moved)
// fails with ErrIllegalTransition and the caller drops it.
func (s *OrderService) StartWork(orderID string) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if err := s.transition(order, models.StatusInProgress, "Work has started on your order"); err != nil {
		return err
	}
	s.publishEvent("order.in_progress", order)
	return nil
}

// UploadDeliverable appends a finished file to an order. The first
// deliverable completes the order; a paid order is moved through
// in_progress first. Further uploads to a complete order just extend
// the list.
func (s *OrderService) UploadDeliverable(subject authz.Subject, deliverable *models.Deliverable) (*models.Deliverable, error) {
	if !authz.Can(subject, authz.ActionManageOrder, authz.Resource{}) {
		return nil, models.ErrAccessDenied
	}

	order, err := s.orderRepo.GetByID(deliverable.OrderID)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case models.StatusPaid, models.StatusInProgress, models.StatusComplete:
	default:
		return nil, fmt.Errorf("cannot upload deliverable for order in status %s: %w",
			order.Status, models.ErrIllegalTransition)
	}

	deliverable.UploadedBy = subject.AdminID
	if err := s.deliverableRepo.Create(deliverable); err != nil {
		return nil, err
	}

	if order.Status == models.StatusPaid {
		if err := s.transition(order, models.StatusInProgress, "Work has started on your order"); err != nil {
			return nil, err
		}
	}
	if order.Status == models.StatusInProgress {
		if err := s.transition(order, models.StatusComplete, "Deliverable files uploaded and ready for download"); err != nil {
			return nil, err
		}
		s.publishEvent("order.completed", order)
	}

	return deliverable, nil
}

// GetDeliverables returns an order's deliverables to its owner or an admin.
func (s *OrderService) GetDeliverables(subject authz.Subject, orderID string) ([]models.Deliverable, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(subject, authz.ActionReadOrder, authz.Resource{OwnerID: order.UserID}) {
		return nil, models.ErrUnauthorized
	}
	return s.deliverableRepo.GetByOrderID(orderID)
}

// SendMessage appends an admin message to an order's thread.
func (s *OrderService) SendMessage(subject authz.Subject, message *models.Message) (*models.Message, error) {
	if !authz.Can(subject, authz.ActionManageOrder, authz.Resource{}) {
		return nil, models.ErrAccessDenied
	}
	if _, err := s.orderRepo.GetByID(message.OrderID); err != nil {
		return nil, err
	}
	message.FromAdmin = true
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}
	return message, nil
}

// transition validates the move against the transition table, updates
// the stored status and appends a timeline entry. order.Status is
// updated in place on success.
func (s *OrderService) transition(order *models.Order, next models.OrderStatus, note string) error {
	if !order.Status.CanTransitionTo(next) {
		return fmt.Errorf("order %s cannot move from %s to %s: %w",
			order.ID, order.Status, next, models.ErrIllegalTransition)
	}
	if err := s.orderRepo.UpdateStatus(order.ID, next); err != nil {
		return err
	}
	order.Status = next
	return s.orderRepo.AppendTimeline(&models.TimelineEntry{
		OrderID: order.ID,
		Status:  next,
		Note:    note,
	})
}

func (s *OrderService) hasSucceededPayment(orderID string) (bool, error) {
	payments, err := s.paymentRepo.GetByOrderID(orderID)
	if err != nil {
		return false, err
	}
	for _, payment := range payments {
		if payment.Status == models.PaymentSucceeded {
			return true, nil
		}
	}
	return false, nil
}

// refundSucceededPayment compensates a cancellation that happened after
// payment: the succeeded payment is marked refunded and noted on the
// timeline.
func (s *OrderService) refundSucceededPayment(order *models.Order) error {
	payments, err := s.paymentRepo.GetByOrderID(order.ID)
	if err != nil {
		return err
	}
	for i := range payments {
		if payments[i].Status != models.PaymentSucceeded {
			continue
		}
		payments[i].Status = models.PaymentRefunded
		if err := s.paymentRepo.Update(&payments[i]); err != nil {
			return err
		}
		if err := s.orderRepo.AppendTimeline(&models.TimelineEntry{
			OrderID: order.ID,
			Status:  models.StatusCancelled,
			Note:    fmt.Sprintf("Payment %s refunded due to cancellation", payments[i].ID),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderService) publishEvent(event string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishOrderEvent(rabbitmq.OrderEvent{
		Event:   event,
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  string(order.Status),
	})
	if err != nil && s.log != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Warnf("failed to publish %s event", event)
	}
}
