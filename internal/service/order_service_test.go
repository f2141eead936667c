package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/workhub/marketplace-backend/internal/models"
	"github.com/workhub/marketplace-backend/internal/pkg/apperror"
	"github.com/workhub/marketplace-backend/internal/repository"
)

type mockOrderStore struct {
	mock.Mock
}

func (m *mockOrderStore) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderStore) Update(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderStore) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Order, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderStore) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Order, error) {
	args := m.Called(ctx, freelancerID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderStore) FindActive(ctx context.Context, clientID, freelancerID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, clientID, freelancerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderStore) CountByFreelancer(ctx context.Context, freelancerID uuid.UUID, projectStatus string) (int, error) {
	args := m.Called(ctx, freelancerID, projectStatus)
	return args.Int(0), args.Error(1)
}

type mockFreelancerStore struct {
	mock.Mock
}

func (m *mockFreelancerStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FreelancerProfile), args.Error(1)
}

func (m *mockFreelancerStore) GetRatePlan(ctx context.Context, freelancerID uuid.UUID, planType string) (*models.RatePlan, error) {
	args := m.Called(ctx, freelancerID, planType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RatePlan), args.Error(1)
}

type recordingHub struct {
	events []string
}

func (h *recordingHub) BroadcastToUser(userID uuid.UUID, event string, data interface{}) error {
	h.events = append(h.events, event)
	return nil
}

func strPtr(s string) *string {
	return &s
}

func testRequirements() models.RequirementList {
	return models.RequirementList{
		{ID: "req-1", Type: models.RequirementTypeText, Question: strPtr("Цель проекта?"), Required: true},
		{ID: "req-2", Type: models.RequirementTypeMultipleChoice, Question: strPtr("Стиль?"),
			Options: []string{"минимализм", "классика"}},
		{ID: "req-3", Type: models.RequirementTypeFile, Question: strPtr("Материалы бренда"), MaxFiles: 3},
	}
}

func testProfile(freelancerID uuid.UUID) *models.FreelancerProfile {
	return &models.FreelancerProfile{
		UserID:       freelancerID,
		DisplayName:  "Test Freelancer",
		Skills:       []string{"go"},
		Requirements: testRequirements(),
	}
}

func TestOrderService_CreateOrder_CopiesPriceAndRequirements(t *testing.T) {
	orders := new(mockOrderStore)
	freelancers := new(mockFreelancerStore)
	svc := NewOrderService(orders, freelancers, nil)
	ctx := context.Background()

	clientID := uuid.New()
	freelancerID := uuid.New()
	profile := testProfile(freelancerID)

	freelancers.On("GetProfile", ctx, freelancerID).Return(profile, nil)
	freelancers.On("GetRatePlan", ctx, freelancerID, models.PlanTypeStandard).
		Return(&models.RatePlan{FreelancerID: freelancerID, PlanType: models.PlanTypeStandard, Price: 120}, nil)
	orders.On("Create", ctx, mock.AnythingOfType("*models.Order")).Return(nil)

	order, err := svc.CreateOrder(ctx, clientID, "client@example.com", CreateOrderInput{
		FreelancerID: freelancerID,
		PlanType:     models.PlanTypeStandard,
	})

	assert.NoError(t, err)
	assert.Equal(t, clientID, order.ClientID)
	assert.Equal(t, float64(120), order.Price)
	assert.Equal(t, models.PaymentStatusUnpaid, order.PaymentStatus)
	assert.Equal(t, models.ProjectStatusPending, order.ProjectStatus)
	assert.Len(t, order.Snapshot, 3)
	orders.AssertExpectations(t)
}

func TestOrderService_CreateOrder_SnapshotIsolatedFromProfileEdits(t *testing.T) {
	orders := new(mockOrderStore)
	freelancers := new(mockFreelancerStore)
	svc := NewOrderService(orders, freelancers, nil)
	ctx := context.Background()

	freelancerID := uuid.New()
	profile := testProfile(freelancerID)

	freelancers.On("GetProfile", ctx, freelancerID).Return(profile, nil)
	freelancers.On("GetRatePlan", ctx, freelancerID, models.PlanTypeBasic).
		Return(&models.RatePlan{PlanType: models.PlanTypeBasic, Price: 50}, nil)
	orders.On("Create", ctx, mock.AnythingOfType("*models.Order")).Return(nil)

	order, err := svc.CreateOrder(ctx, uuid.New(), "client@example.com", CreateOrderInput{
		FreelancerID: freelancerID,
		PlanType:     models.PlanTypeBasic,
	})
	assert.NoError(t, err)

	// Правим живую анкету после создания заказа.
	*profile.Requirements[0].Question = "Совсем другой вопрос"
	profile.Requirements[1].Options[0] = "другой вариант"
	profile.Requirements = append(profile.Requirements[:1], profile.Requirements[2:]...)

	assert.Len(t, order.Snapshot, 3)
	assert.Equal(t, "Цель проекта?", *order.Snapshot[0].Question)
	assert.Equal(t, "минимализм", order.Snapshot[1].Options[0])
}

func TestOrderService_CreateOrder_FreelancerNotFound(t *testing.T) {
	orders := new(mockOrderStore)
	freelancers := new(mockFreelancerStore)
	svc := NewOrderService(orders, freelancers, nil)
	ctx := context.Background()

	freelancerID := uuid.New()
	freelancers.On("GetProfile", ctx, freelancerID).Return(nil, repository.ErrProfileNotFound)

	_, err := svc.CreateOrder(ctx, uuid.New(), "client@example.com", CreateOrderInput{
		FreelancerID: freelancerID,
		PlanType:     models.PlanTypeBasic,
	})

	assert.ErrorIs(t, err, apperror.ErrFreelancerNotFound)
	assert.True(t, apperror.IsNotFound(err))
}

func TestOrderService_CreateOrder_PlanNotFound(t *testing.T) {
	orders := new(mockOrderStore)
	freelancers := new(mockFreelancerStore)
	svc := NewOrderService(orders, freelancers, nil)
	ctx := context.Background()

	freelancerID := uuid.New()
	freelancers.On("GetProfile", ctx, freelancerID).Return(testProfile(freelancerID), nil)
	freelancers.On("GetRatePlan", ctx, freelancerID, models.PlanTypePremium).
		Return(nil, repository.ErrPlanNotFound)

	_, err := svc.CreateOrder(ctx, uuid.New(), "client@example.com", CreateOrderInput{
		FreelancerID: freelancerID,
		PlanType:     models.PlanTypePremium,
	})

	assert.ErrorIs(t, err, apperror.ErrPlanNotFound)
}

func TestOrderService_CapturePayment_Idempotent(t *testing.T) {
	orders := new(mockOrderStore)
	svc := NewOrderService(orders, nil, nil)
	ctx := context.Background()

	clientID := uuid.New()
	orderID := uuid.New()
	order := &models.Order{
		ID:            orderID,
		ClientID:      clientID,
		FreelancerID:  uuid.New(),
		PaymentStatus: models.PaymentStatusUnpaid,
		ProjectStatus: models.ProjectStatusPending,
	}

	orders.On("GetByID", ctx, orderID).Return(order, nil)
	orders.On("Update", ctx, order).Return(nil).Once()

	first, err := svc.CapturePayment(ctx, clientID, orderID)
	assert.NoError(t, err)
	assert.False(t, first.AlreadyPaid)
	assert.Equal(t, models.PaymentStatusPaid, first.Order.PaymentStatus)

	second, err := svc.CapturePayment(ctx, clientID, orderID)
	assert.NoError(t, err)
	assert.True(t, second.AlreadyPaid)
	assert.Equal(t, models.PaymentStatusPaid, second.Order.PaymentStatus)

	// Повторный вызов не пишет в хранилище.
	orders.AssertNumberOfCalls(t, "Update", 1)
}

func TestOrderService_SubmitAnswers_RejectedWhileUnpaid(t *testing.T) {
	orders := new(mockOrderStore)
	svc := NewOrderService(orders, nil, nil)
	ctx := context.Background()

	clientID := uuid.New()
	orderID := uuid.New()
	order := &models.Order{
		ID:            orderID,
		ClientID:      clientID,
		PaymentStatus: models.PaymentStatusUnpaid,
		Snapshot:      testRequirements(),
		Answers:       models.AnswerList{},
	}

	orders.On("GetByID", ctx, orderID).Return(order, nil)

	_, err := svc.SubmitAnswers(ctx, clientID, orderID, []models.RequirementAnswer{
		{ID: "req-1", Text: strPtr("редизайн сайта")},
	})

	assert.ErrorIs(t, err, apperror.ErrOrderNotPaid)
	assert.True(t, apperror.IsInvalidState(err))
	assert.Empty(t, order.Answers)
	orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestOrderService_SubmitAnswers_DropsUnknownIDs(t *testing.T) {
	orders := new(mockOrderStore)
	svc := NewOrderService(orders, nil, nil)
	ctx := context.Background()

	clientID := uuid.New()
	orderID := uuid.New()
	order := &models.Order{
		ID:            orderID,
		ClientID:      clientID,
		PaymentStatus: models.PaymentStatusPaid,
		ProjectStatus: models.ProjectStatusPending,
		Snapshot:      testRequirements(),
	}

	orders.On("GetByID", ctx, orderID).Return(order, nil)
	orders.On("Update", ctx, order).Return(nil)

	updated, err := svc.SubmitAnswers(ctx, clientID, orderID, []models.RequirementAnswer{
		{ID: "req-1", Text: strPtr("редизайн сайта")},
		{ID: "призрак", Text: strPtr("не из снапшота")},
		{ID: "req-2", Options: []string{"минимализм"}},
	})

	assert.NoError(t, err)
	assert.Len(t, updated.Answers, 2)
	assert.Equal(t, "req-1", updated.Answers[0].ID)
	assert.Equal(t, "req-2", updated.Answers[1].ID)
	assert.Equal(t, models.ProjectStatusPending, updated.ProjectStatus)
}

func TestOrderService_SubmitAnswers_RejectedInTerminalStatus(t *testing.T) {
	for _, status := range []string{models.ProjectStatusCompleted, models.ProjectStatusCancelled} {
		t.Run(status, func(t *testing.T) {
			orders := new(mockOrderStore)
			svc := NewOrderService(orders, nil, nil)
			ctx := context.Background()

			clientID := uuid.New()
			orderID := uuid.New()
			order := &models.Order{
				ID:            orderID,
				ClientID:      clientID,
				FreelancerID:  uuid.New(),
				PaymentStatus: models.PaymentStatusPaid,
				ProjectStatus: status,
				Snapshot:      testRequirements(),
			}

			orders.On("GetByID", ctx, orderID).Return(order, nil)

			_, err := svc.SubmitAnswers(ctx, clientID, orderID, []models.RequirementAnswer{
				{ID: "req-1", Text: strPtr("поздний ответ")},
			})

			assert.Error(t, err)
			assert.True(t, apperror.IsInvalidState(err))
			assert.Equal(t, status, order.ProjectStatus)
			assert.Empty(t, order.Answers)
			orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)

			// Терминальный заказ нельзя вернуть в работу и через Accept.
			_, err = svc.Accept(ctx, order.FreelancerID, orderID)
			assert.True(t, apperror.IsInvalidState(err))
			assert.Equal(t, status, order.ProjectStatus)
		})
	}
}

func TestOrderService_SubmitAnswers_ApprovedOrderBackToPending(t *testing.T) {
	orders := new(mockOrderStore)
	svc := NewOrderService(orders, nil, nil)
	ctx := context.Background()

	clientID := uuid.New()
	orderID := uuid.New()
	order := &models.Order{
		ID:            orderID,
		ClientID:      clientID,
		PaymentStatus: models.PaymentStatusPaid,
		ProjectStatus: models.ProjectStatusApproved,
		Snapshot:      testRequirements(),
	}

	orders.On("GetByID", ctx, orderID).Return(order, nil)
	orders.On("Update", ctx, order).Return(nil)

	updated, err := svc.SubmitAnswers(ctx, clientID, orderID, []models.RequirementAnswer{
		{ID: "req-1", Text: strPtr("уточнённый ответ")},
	})

	assert.NoError(t, err)
	assert.Equal(t, models.ProjectStatusPending, updated.ProjectStatus)
}

func TestOrderService_SubmitAnswers_ReplacesWholesale(t *testing.T) {
	orders := new(mockOrderStore)
	svc := NewOrderService(orders, nil, nil)
	ctx := context.Background()

	clientID := uuid.New()
	orderID := uuid.New()
	order := &models.Order{
		ID:            orderID,
		ClientID:      clientID,
		PaymentStatus: models.PaymentStatusPaid,
		ProjectStatus: models.ProjectStatusPending,
		Snapshot:      testRequirements(),
		Answers: models.AnswerList{
			{ID: "req-1", Text: strPtr("старый ответ")},
			{ID: "req-2", Options: []string{"классика"}},
		},
	}

	orders.On("GetByID", ctx, orderID).Return(order, nil)
	orders.On("Update", ctx, order).Return(nil)

	updated, err := svc.SubmitAnswers(ctx, clientID, orderID, []models.RequirementAnswer{
		{ID: "req-3", Files: []models.DeliveryFile{{Name: "brand.zip", URL: "/uploads/brand.zip", Size: 1024}}},
	})

	assert.NoError(t, err)
	assert.Len(t, updated.Answers, 1)
	assert.Equal(t, "req-3", updated.Answers[0].ID)
}

func TestOrderService_TransitionTable(t *testing.T) {
	type action string
	const (
		actAccept  action = "accept"
		actReject  action = "reject"
		actDeliver action = "deliver"
	)

	cases := []struct {
		name    string
		status  string
		act     action
		wantErr bool
		next    string
	}{
		{"accept из pending", models.ProjectStatusPending, actAccept, false, models.ProjectStatusApproved},
		{"reject из pending", models.ProjectStatusPending, actReject, false, models.ProjectStatusCancelled},
		{"deliver из pending", models.ProjectStatusPending, actDeliver, true, models.ProjectStatusPending},
		{"accept из approved", models.ProjectStatusApproved, actAccept, true, models.ProjectStatusApproved},
		{"reject из approved", models.ProjectStatusApproved, actReject, true, models.ProjectStatusApproved},
		{"deliver из approved", models.ProjectStatusApproved, actDeliver, false, models.ProjectStatusCompleted},
		{"accept из cancelled", models.ProjectStatusCancelled, actAccept, true, models.ProjectStatusCancelled},
		{"reject из cancelled", models.ProjectStatusCancelled, actReject, true, models.ProjectStatusCancelled},
		{"deliver из cancelled", models.ProjectStatusCancelled, actDeliver, true, models.ProjectStatusCancelled},
		{"accept из completed", models.ProjectStatusCompleted, actAccept, true, models.ProjectStatusCompleted},
		{"reject из completed", models.ProjectStatusCompleted, actReject, true, models.ProjectStatusCompleted},
		{"deliver из completed", models.ProjectStatusCompleted, actDeliver, true, models.ProjectStatusCompleted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orders := new(mockOrderStore)
			svc := NewOrderService(orders, nil, nil)
			ctx := context.Background()

			freelancerID := uuid.New()
			orderID := uuid.New()
			order := &models.Order{
				ID:            orderID,
				ClientID:      uuid.New(),
				FreelancerID:  freelancerID,
				PaymentStatus: models.PaymentStatusPaid,
				ProjectStatus: tc.status,
			}

			orders.On("GetByID", ctx, orderID).Return(order, nil)
			orders.On("Update", ctx, order).Return(nil)

			var err error
			switch tc.act {
			case actAccept:
				_, err = svc.Accept(ctx, freelancerID, orderID)
			case actReject:
				_, err = svc.Reject(ctx, freelancerID, orderID, nil)
			case actDeliver:
				_, err = svc.Deliver(ctx, freelancerID, orderID, DeliverInput{Message: "готово"})
			}

			if tc.wantErr {
				assert.Error(t, err)
				assert.True(t, apperror.IsInvalidState(err))
				orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.next, order.ProjectStatus)
		})
	}
}

func TestOrderService_ForeignOrderForbidden(t *testing.T) {
	orders := new(mockOrderStore)
	svc := NewOrderService(orders, nil, nil)
	ctx := context.Background()

	orderID := uuid.New()
	order := &models.Order{
		ID:            orderID,
		ClientID:      uuid.New(),
		FreelancerID:  uuid.New(),
		ProjectStatus: models.ProjectStatusPending,
	}

	orders.On("GetByID", ctx, orderID).Return(order, nil)

	stranger := uuid.New()

	_, err := svc.Accept(ctx, stranger, orderID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.CapturePayment(ctx, stranger, orderID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.GetForClient(ctx, stranger, orderID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestOrderService_ActiveOrder(t *testing.T) {
	orders := new(mockOrderStore)
	svc := NewOrderService(orders, nil, nil)
	ctx := context.Background()

	clientID := uuid.New()
	freelancerID := uuid.New()

	expected := &models.Order{ID: uuid.New(), ClientID: clientID, FreelancerID: freelancerID,
		ProjectStatus: models.ProjectStatusPending}
	orders.On("FindActive", ctx, clientID, freelancerID).Return(expected, nil)

	order, err := svc.ActiveOrder(ctx, clientID, freelancerID)
	assert.NoError(t, err)
	assert.Equal(t, expected, order)
}

func TestOrderService_CompletedCount(t *testing.T) {
	orders := new(mockOrderStore)
	svc := NewOrderService(orders, nil, nil)
	ctx := context.Background()

	freelancerID := uuid.New()
	orders.On("CountByFreelancer", ctx, freelancerID, models.ProjectStatusCompleted).Return(7, nil)

	count, err := svc.CompletedCount(ctx, freelancerID)

	assert.NoError(t, err)
	assert.Equal(t, 7, count)
	orders.AssertExpectations(t)
}

func TestOrderService_ActiveOrder_NotFound(t *testing.T) {
	orders := new(mockOrderStore)
	svc := NewOrderService(orders, nil, nil)
	ctx := context.Background()

	clientID := uuid.New()
	freelancerID := uuid.New()
	orders.On("FindActive", ctx, clientID, freelancerID).Return(nil, repository.ErrNoActiveOrder)

	_, err := svc.ActiveOrder(ctx, clientID, freelancerID)
	assert.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

// Полный сценарий Premium-заказа: создание, оплата, ответы на 2 из 3
// вопросов, принятие, сдача и отказ в повторном принятии.
func TestOrderService_PremiumScenario(t *testing.T) {
	orders := new(mockOrderStore)
	freelancers := new(mockFreelancerStore)
	hub := &recordingHub{}
	svc := NewOrderService(orders, freelancers, hub)
	ctx := context.Background()

	clientID := uuid.New()
	freelancerID := uuid.New()
	profile := testProfile(freelancerID)

	freelancers.On("GetProfile", ctx, freelancerID).Return(profile, nil)
	freelancers.On("GetRatePlan", ctx, freelancerID, models.PlanTypePremium).
		Return(&models.RatePlan{PlanType: models.PlanTypePremium, Price: 250}, nil)

	var stored *models.Order
	orders.On("Create", ctx, mock.AnythingOfType("*models.Order")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*models.Order)
			stored.ID = uuid.New()
		}).Return(nil)

	order, err := svc.CreateOrder(ctx, clientID, "client@example.com", CreateOrderInput{
		FreelancerID: freelancerID,
		PlanType:     models.PlanTypePremium,
	})
	assert.NoError(t, err)
	assert.Equal(t, float64(250), order.Price)

	orders.On("GetByID", ctx, stored.ID).Return(stored, nil)
	orders.On("Update", ctx, stored).Return(nil)

	payment, err := svc.CapturePayment(ctx, clientID, stored.ID)
	assert.NoError(t, err)
	assert.False(t, payment.AlreadyPaid)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)

	updated, err := svc.SubmitAnswers(ctx, clientID, stored.ID, []models.RequirementAnswer{
		{ID: "req-1", Text: strPtr("интернет-магазин")},
		{ID: "req-2", Options: []string{"минимализм"}},
	})
	assert.NoError(t, err)
	assert.Len(t, updated.Answers, 2)

	_, err = svc.Accept(ctx, freelancerID, stored.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.ProjectStatusApproved, stored.ProjectStatus)

	delivered, err := svc.Deliver(ctx, freelancerID, stored.ID, DeliverInput{
		Message: "готово, макеты во вложении",
		Files:   []models.DeliveryFile{{Name: "final.zip", URL: "/uploads/final.zip", Size: 2048}},
	})
	assert.NoError(t, err)
	assert.Equal(t, models.ProjectStatusCompleted, delivered.ProjectStatus)
	assert.NotNil(t, delivered.DeliveredAt)
	assert.Len(t, delivered.DeliveryFiles, 1)

	_, err = svc.Accept(ctx, freelancerID, stored.ID)
	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
	assert.Equal(t, models.ProjectStatusCompleted, stored.ProjectStatus)

	assert.Equal(t, []string{
		EventOrderNew,
		EventOrderPaid,
		EventOrderAccepted,
		EventOrderDelivered,
	}, hub.events)
}
