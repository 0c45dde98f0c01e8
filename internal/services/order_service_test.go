package services_test

import (
	"errors"
	"io"
	"testing"

	"digitizing/internal/authz"
	"digitizing/internal/models"
	"digitizing/internal/repositories"
	"digitizing/internal/services"
	"digitizing/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// recordingPublisher captures published events and jobs for assertions.
type recordingPublisher struct {
	events []rabbitmq.OrderEvent
	jobs   []rabbitmq.StartWorkJob
}

func (p *recordingPublisher) PublishOrderEvent(event rabbitmq.OrderEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) PublishStartWork(job rabbitmq.StartWorkJob) error {
	p.jobs = append(p.jobs, job)
	return nil
}

type orderServiceFixture struct {
	service     *services.OrderService
	orderRepo   *repositories.MockOrderRepository
	quoteRepo   *repositories.MockQuoteRepository
	paymentRepo *repositories.MockPaymentRepository
	publisher   *recordingPublisher
}

func newOrderServiceFixture() *orderServiceFixture {
	log := logrus.New()
	log.SetOutput(io.Discard)

	f := &orderServiceFixture{
		orderRepo:   repositories.NewMockOrderRepository(),
		quoteRepo:   repositories.NewMockQuoteRepository(),
		paymentRepo: repositories.NewMockPaymentRepository(),
		publisher:   &recordingPublisher{},
	}
	f.service = services.NewOrderService(
		f.orderRepo,
		f.quoteRepo,
		f.paymentRepo,
		repositories.NewMockDeliverableRepository(),
		repositories.NewMockMessageRepository(),
		f.publisher,
		log,
	)
	return f
}

var (
	customer = authz.Subject{UserID: "user-1"}
	admin    = authz.Subject{AdminID: "adm-1", Role: models.RoleAdmin}
)

func newTestOrder() *models.Order {
	return &models.Order{
		ServiceType: models.ServiceDigitizing,
		Details: models.OrderDetails{
			DesignName:     "Phoenix Logo",
			Width:          4,
			Height:         3,
			Units:          "inches",
			OutputFormat:   "DST",
			Complexity:     "medium",
			TurnaroundTime: "standard",
		},
		Files: []models.UploadedFile{
			{Filename: "phoenix.png", Filesize: 204800, Mimetype: "image/png", URL: "https://files.example.com/phoenix.png"},
		},
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	f := newOrderServiceFixture()

	order, err := f.service.CreateOrder(customer, newTestOrder())
	assert.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "user-1", order.UserID)
	assert.Equal(t, models.StatusPending, order.Status)

	timeline, err := f.orderRepo.GetTimeline(order.ID)
	assert.NoError(t, err)
	assert.Len(t, timeline, 1)
	assert.Equal(t, models.StatusPending, timeline[0].Status)
	assert.Equal(t, "Order submitted and awaiting review", timeline[0].Note)

	assert.Len(t, f.publisher.events, 1)
	assert.Equal(t, "order.created", f.publisher.events[0].Event)
}

func TestOrderService_CreateOrder_RequiresFile(t *testing.T) {
	f := newOrderServiceFixture()

	order := newTestOrder()
	order.Files = nil
	_, err := f.service.CreateOrder(customer, order)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestOrderService_CreateOrder_RequiresAuthentication(t *testing.T) {
	f := newOrderServiceFixture()

	_, err := f.service.CreateOrder(authz.Subject{}, newTestOrder())
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)
}

func TestOrderService_AddQuote(t *testing.T) {
	f := newOrderServiceFixture()
	order, _ := f.service.CreateOrder(customer, newTestOrder())

	quote := &models.Quote{
		OrderID: order.ID,
		Amount:  350,
		Breakdown: []models.QuoteBreakdownItem{
			{Description: "Digitizing setup", Amount: 150},
			{Description: "Stitch work", Amount: 200},
		},
	}
	saved, err := f.service.AddQuote(admin, quote)
	assert.NoError(t, err)
	assert.Equal(t, "adm-1", saved.CreatedBy)

	updated, _ := f.orderRepo.GetByID(order.ID)
	assert.Equal(t, models.StatusQuoted, updated.Status)

	timeline, _ := f.orderRepo.GetTimeline(order.ID)
	assert.Len(t, timeline, 2)
	assert.Equal(t, "Quote provided: $350", timeline[1].Note)
}

func TestOrderService_AddQuote_BreakdownMustSum(t *testing.T) {
	f := newOrderServiceFixture()
	order, _ := f.service.CreateOrder(customer, newTestOrder())

	quote := &models.Quote{
		OrderID: order.ID,
		Amount:  400,
		Breakdown: []models.QuoteBreakdownItem{
			{Description: "Digitizing setup", Amount: 150},
			{Description: "Stitch work", Amount: 200},
		},
	}
	_, err := f.service.AddQuote(admin, quote)
	assert.ErrorIs(t, err, models.ErrValidation)

	// The order must not have moved.
	unchanged, _ := f.orderRepo.GetByID(order.ID)
	assert.Equal(t, models.StatusPending, unchanged.Status)
}

func TestOrderService_AddQuote_ReplacesWhileQuoted(t *testing.T) {
	f := newOrderServiceFixture()
	order, _ := f.service.CreateOrder(customer, newTestOrder())

	first := &models.Quote{
		OrderID:   order.ID,
		Amount:    350,
		Breakdown: []models.QuoteBreakdownItem{{Description: "Digitizing", Amount: 350}},
	}
	_, err := f.service.AddQuote(admin, first)
	assert.NoError(t, err)

	second := &models.Quote{
		OrderID:   order.ID,
		Amount:    300,
		Breakdown: []models.QuoteBreakdownItem{{Description: "Digitizing, adjusted", Amount: 300}},
	}
	_, err = f.service.AddQuote(admin, second)
	assert.NoError(t, err)

	current, err := f.quoteRepo.GetByOrderID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, 300.0, current.Amount)

	// Status stayed quoted; the replacement is still on the timeline.
	updated, _ := f.orderRepo.GetByID(order.ID)
	assert.Equal(t, models.StatusQuoted, updated.Status)
	timeline, _ := f.orderRepo.GetTimeline(order.ID)
	assert.Equal(t, "Quote updated: $300", timeline[len(timeline)-1].Note)
}

func TestOrderService_AddQuote_LockedAfterPayment(t *testing.T) {
	f := newOrderServiceFixture()
	order, _ := f.service.CreateOrder(customer, newTestOrder())

	quote := &models.Quote{
		OrderID:   order.ID,
		Amount:    350,
		Breakdown: []models.QuoteBreakdownItem{{Description: "Digitizing", Amount: 350}},
	}
	_, err := f.service.AddQuote(admin, quote)
	assert.NoError(t, err)

	err = f.paymentRepo.Create(&models.Payment{
		OrderID: order.ID,
		UserID:  "user-1",
		Amount:  350,
		Status:  models.PaymentSucceeded,
	})
	assert.NoError(t, err)

	retry := &models.Quote{
		OrderID:   order.ID,
		Amount:    500,
		Breakdown: []models.QuoteBreakdownItem{{Description: "Digitizing", Amount: 500}},
	}
	_, err = f.service.AddQuote(admin, retry)
	assert.ErrorIs(t, err, models.ErrQuoteLocked)
}

func TestOrderService_AddQuote_RequiresAdmin(t *testing.T) {
	f := newOrderServiceFixture()
	order, _ := f.service.CreateOrder(customer, newTestOrder())

	quote := &models.Quote{
		OrderID:   order.ID,
		Amount:    350,
		Breakdown: []models.QuoteBreakdownItem{{Description: "Digitizing", Amount: 350}},
	}
	_, err := f.service.AddQuote(customer, quote)
	assert.ErrorIs(t, err, models.ErrAccessDenied)
}

func TestOrderService_UpdateStatus_TransitionTable(t *testing.T) {
	cases := []struct {
		from    models.OrderStatus
		to      models.OrderStatus
		allowed bool
	}{
		{models.StatusPending, models.StatusQuoted, true},
		{models.StatusQuoted, models.StatusPaid, true},
		{models.StatusPaid, models.StatusInProgress, true},
		{models.StatusInProgress, models.StatusComplete, true},
		{models.StatusPending, models.StatusCancelled, true},
		{models.StatusQuoted, models.StatusCancelled, true},
		{models.StatusPaid, models.StatusCancelled, true},
		{models.StatusInProgress, models.StatusCancelled, true},
		{models.StatusPending, models.StatusPaid, false},
		{models.StatusPending, models.StatusComplete, false},
		{models.StatusQuoted, models.StatusInProgress, false},
		{models.StatusPaid, models.StatusComplete, false},
		{models.StatusComplete, models.StatusCancelled, false},
		{models.StatusComplete, models.StatusInProgress, false},
		{models.StatusCancelled, models.StatusPending, false},
		{models.StatusCancelled, models.StatusPaid, false},
	}

	for _, tc := range cases {
		f := newOrderServiceFixture()
		order, _ := f.service.CreateOrder(customer, newTestOrder())
		assert.NoError(t, f.orderRepo.UpdateStatus(order.ID, tc.from))

		_, err := f.service.UpdateStatus(admin, order.ID, tc.to, "status change")
		if tc.allowed {
			assert.NoError(t, err, "%s -> %s should be allowed", tc.from, tc.to)
		} else {
			assert.ErrorIs(t, err, models.ErrIllegalTransition, "%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestOrderService_UpdateStatus_UnknownStatus(t *testing.T) {
	f := newOrderServiceFixture()
	order, _ := f.service.CreateOrder(customer, newTestOrder())

	_, err := f.service.UpdateStatus(admin, order.ID, "shipped", "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestOrderService_CancelAfterPayment_RefundsPayment(t *testing.T) {
	f := newOrderServiceFixture()
	order, _ := f.service.CreateOrder(customer, newTestOrder())
	assert.NoError(t, f.orderRepo.UpdateStatus(order.ID, models.StatusPaid))

	payment := &models.Payment{
		OrderID: order.ID,
		UserID:  "user-1",
		Amount:  350,
		Status:  models.PaymentSucceeded,
	}
	assert.NoError(t, f.paymentRepo.Create(payment))

	_, err := f.service.UpdateStatus(admin, order.ID, models.StatusCancelled, "Customer requested cancellation")
	assert.NoError(t, err)

	refunded, err := f.paymentRepo.GetByID(payment.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, refunded.Status)
}

func TestOrderService_StartWork(t *testing.T) {
	f := newOrderServiceFixture()
	order, _ := f.service.CreateOrder(customer, newTestOrder())
	assert.NoError(t, f.orderRepo.UpdateStatus(order.ID, models.StatusPaid))

	assert.NoError(t, f.service.StartWork(order.ID))

	updated, _ := f.orderRepo.GetByID(order.ID)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	timeline, _ := f.orderRepo.GetTimeline(order.ID)
	assert.Equal(t, "Work has started on your order", timeline[len(timeline)-1].Note)
}

func TestOrderService_StartWork_StaleJob(t *testing.T) {
	f := newOrderServiceFixture()
	order, _ := f.service.CreateOrder(customer, newTestOrder())
	assert.NoError(t, f.orderRepo.UpdateStatus(order.ID, models.StatusCancelled))

	err := f.service.StartWork(order.ID)
	assert.ErrorIs(t, err, models.ErrIllegalTransition)
}

func TestOrderService_UploadDeliverable_CompletesOrder(t *testing.T) {
	f := newOrderServiceFixture()
	order, _ := f.service.CreateOrder(customer, newTestOrder())
	assert.NoError(t, f.orderRepo.UpdateStatus(order.ID, models.StatusInProgress))

	deliverable := &models.Deliverable{
		OrderID:     order.ID,
		Filename:    "phoenix.dst",
		Filesize:    51200,
		Mimetype:    "application/octet-stream",
		DownloadURL: "https://files.example.com/phoenix.dst",
	}
	saved, err := f.service.UploadDeliverable(admin, deliverable)
	assert.NoError(t, err)
	assert.Equal(t, "adm-1", saved.UploadedBy)

	updated, _ := f.orderRepo.GetByID(order.ID)
	assert.Equal(t, models.StatusComplete, updated.Status)
	timeline, _ := f.orderRepo.GetTimeline(order.ID)
	assert.Equal(t, "Deliverable files uploaded and ready for download", timeline[len(timeline)-1].Note)
}

func TestOrderService_UploadDeliverable_PaidOrderMovesThroughInProgress(t *testing.T) {
	f := newOrderServiceFixture()
	order, _ := f.service.CreateOrder(customer, newTestOrder())
	assert.NoError(t, f.orderRepo.UpdateStatus(order.ID, models.StatusPaid))

	_, err := f.service.UploadDeliverable(admin, &models.Deliverable{
		OrderID:     order.ID,
		Filename:    "phoenix.dst",
		Mimetype:    "application/octet-stream",
		DownloadURL: "https://files.example.com/phoenix.dst",
	})
	assert.NoError(t, err)

	timeline, _ := f.orderRepo.GetTimeline(order.ID)
	var statuses []models.OrderStatus
	for _, entry := range timeline {
		statuses = append(statuses, entry.Status)
	}
	// Both lifecycle steps are on the audit trail, in order.
	assert.Equal(t, []models.OrderStatus{
		models.StatusPending, models.StatusInProgress, models.StatusComplete,
	}, statuses)
}

func TestOrderService_UploadDeliverable_RejectedBeforePayment(t *testing.T) {
	f := newOrderServiceFixture()
	order, _ := f.service.CreateOrder(customer, newTestOrder())

	_, err := f.service.UploadDeliverable(admin, &models.Deliverable{
		OrderID:     order.ID,
		Filename:    "phoenix.dst",
		Mimetype:    "application/octet-stream",
		DownloadURL: "https://files.example.com/phoenix.dst",
	})
	assert.ErrorIs(t, err, models.ErrIllegalTransition)
}

func TestOrderService_GetOrder_AssemblesView(t *testing.T) {
	f := newOrderServiceFixture()
	order, _ := f.service.CreateOrder(customer, newTestOrder())

	_, err := f.service.AddQuote(admin, &models.Quote{
		OrderID:   order.ID,
		Amount:    350,
		Breakdown: []models.QuoteBreakdownItem{{Description: "Digitizing", Amount: 350}},
	})
	assert.NoError(t, err)

	_, err = f.service.SendMessage(admin, &models.Message{
		OrderID:    order.ID,
		SenderName: "Support",
		Content:    "Your quote is ready.",
	})
	assert.NoError(t, err)

	view, err := f.service.GetOrder(customer, order.ID)
	assert.NoError(t, err)
	assert.NotNil(t, view.Quote)
	assert.Equal(t, 350.0, view.Quote.Amount)
	assert.Len(t, view.Messages, 1)
	assert.True(t, view.Messages[0].FromAdmin)
	assert.Len(t, view.Timeline, 2)
}

func TestOrderService_GetOrder_DeniedForStranger(t *testing.T) {
	f := newOrderServiceFixture()
	order, _ := f.service.CreateOrder(customer, newTestOrder())

	_, err := f.service.GetOrder(authz.Subject{UserID: "user-2"}, order.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	// Admins can always read.
	_, err = f.service.GetOrder(admin, order.ID)
	assert.NoError(t, err)
}

func TestOrderService_ListOrders(t *testing.T) {
	f := newOrderServiceFixture()
	_, err := f.service.CreateOrder(customer, newTestOrder())
	assert.NoError(t, err)
	_, err = f.service.CreateOrder(authz.Subject{UserID: "user-2"}, newTestOrder())
	assert.NoError(t, err)

	mine, err := f.service.ListOrders(customer, models.OrderFilters{})
	assert.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := f.service.ListOrders(admin, models.OrderFilters{})
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.service.ListOrders(authz.Subject{}, models.OrderFilters{})
	assert.True(t, errors.Is(err, models.ErrNotAuthenticated))
}
