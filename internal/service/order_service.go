package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/workhub/marketplace-backend/internal/logger"
	"github.com/workhub/marketplace-backend/internal/models"
	"github.com/workhub/marketplace-backend/internal/pkg/apperror"
	"github.com/workhub/marketplace-backend/internal/repository"
	"github.com/workhub/marketplace-backend/internal/validation"
)

// События заказа, отправляемые через WebSocket.
const (
	EventOrderNew       = "orders.new"
	EventOrderPaid      = "orders.paid"
	EventOrderAccepted  = "orders.accepted"
	EventOrderRejected  = "orders.rejected"
	EventOrderDelivered = "orders.delivered"
)

// OrderStore описывает взаимодействие сервиса с хранилищем заказов.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Order, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Order, error)
	FindActive(ctx context.Context, clientID, freelancerID uuid.UUID) (*models.Order, error)
	CountByFreelancer(ctx context.Context, freelancerID uuid.UUID, projectStatus string) (int, error)
}

// FreelancerStore читает анкету и тариф фрилансера при создании заказа.
type FreelancerStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error)
	GetRatePlan(ctx context.Context, freelancerID uuid.UUID, planType string) (*models.RatePlan, error)
}

// WSNotifier интерфейс для отправки WebSocket уведомлений.
type WSNotifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data interface{}) error
}

// OrderService содержит бизнес-логику жизненного цикла заказа: создание со
// снапшотом требований, оплату, приём ответов на бриф и машину состояний
// выполнения.
type OrderService struct {
	orders      OrderStore
	freelancers FreelancerStore
	hub         WSNotifier
}

// NewOrderService создаёт сервис заказов.
func NewOrderService(orders OrderStore, freelancers FreelancerStore, hub WSNotifier) *OrderService {
	return &OrderService{
		orders:      orders,
		freelancers: freelancers,
		hub:         hub,
	}
}

// CreateOrderInput данные для создания заказа.
type CreateOrderInput struct {
	FreelancerID uuid.UUID
	PlanType     string
	ClientEmail  string
}

// CreateOrder создаёт заказ от имени клиента actorID. Цена и список
// требований копируются из текущего состояния анкеты фрилансера: снапшот
// делается глубокой копией и дальше живёт своей жизнью.
func (s *OrderService) CreateOrder(ctx context.Context, actorID uuid.UUID, actorEmail string, in CreateOrderInput) (*models.Order, error) {
	if err := validation.ValidatePlanType(in.PlanType); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	profile, err := s.freelancers.GetProfile(ctx, in.FreelancerID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.ErrFreelancerNotFound
		}
		return nil, err
	}

	plan, err := s.freelancers.GetRatePlan(ctx, in.FreelancerID, in.PlanType)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return nil, apperror.ErrPlanNotFound
		}
		return nil, err
	}

	clientEmail := in.ClientEmail
	if clientEmail == "" {
		clientEmail = actorEmail
	}

	order := &models.Order{
		ClientID:       actorID,
		ClientEmail:    clientEmail,
		FreelancerID:   in.FreelancerID,
		FreelancerName: profile.DisplayName,
		PlanType:       plan.PlanType,
		Price:          plan.Price,
		PaymentStatus:  models.PaymentStatusUnpaid,
		ProjectStatus:  models.ProjectStatusPending,
		Snapshot:       profile.Requirements.Clone(),
		Answers:        models.AnswerList{},
		DeliveryFiles:  models.DeliveryFileList{},
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.notify(order.FreelancerID, EventOrderNew, order)
	return order, nil
}

// PaymentResult итог захвата оплаты.
type PaymentResult struct {
	Order       *models.Order `json:"order"`
	AlreadyPaid bool          `json:"already_paid"`
}

// CapturePayment отмечает заказ оплаченным. Операция идемпотентна: повторный
// вызов на оплаченном заказе возвращает успех с флагом already_paid и ничего
// не меняет. Реальной платёжной интеграции нет, это заглушка шлюза.
func (s *OrderService) CapturePayment(ctx context.Context, actorID uuid.UUID, orderID uuid.UUID) (*PaymentResult, error) {
	order, err := s.getOwnedByClient(ctx, actorID, orderID)
	if err != nil {
		return nil, err
	}

	if order.IsPaid() {
		return &PaymentResult{Order: order, AlreadyPaid: true}, nil
	}

	order.PaymentStatus = models.PaymentStatusPaid
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.notify(order.FreelancerID, EventOrderPaid, order)
	return &PaymentResult{Order: order, AlreadyPaid: false}, nil
}

// SubmitAnswers принимает ответы клиента на бриф. Заказ должен быть оплачен
// и не находиться в терминальном статусе. Ответы с id вне снапшота молча
// отбрасываются, остальные заменяют прошлый набор целиком.
func (s *OrderService) SubmitAnswers(ctx context.Context, actorID uuid.UUID, orderID uuid.UUID, answers []models.RequirementAnswer) (*models.Order, error) {
	if err := validation.ValidateAnswers(answers); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	order, err := s.getOwnedByClient(ctx, actorID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.IsPaid() {
		return nil, apperror.ErrOrderNotPaid
	}

	if order.IsTerminal() {
		return nil, apperror.Newf(apperror.ErrCodeInvalidState,
			"заказ в статусе %q нельзя изменить", order.ProjectStatus)
	}

	known := order.Snapshot.IDSet()
	filtered := make(models.AnswerList, 0, len(answers))
	for _, answer := range answers {
		if _, ok := known[answer.ID]; ok {
			filtered = append(filtered, answer)
		}
	}

	order.Answers = filtered
	order.ProjectStatus = models.ProjectStatusPending

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// Accept переводит заказ из pending в approved. Доступно только исполнителю.
func (s *OrderService) Accept(ctx context.Context, actorID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.getOwnedByFreelancer(ctx, actorID, orderID)
	if err != nil {
		return nil, err
	}

	if order.ProjectStatus != models.ProjectStatusPending {
		return nil, apperror.Newf(apperror.ErrCodeInvalidState,
			"заказ в статусе %q нельзя принять", order.ProjectStatus)
	}

	order.ProjectStatus = models.ProjectStatusApproved
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.notify(order.ClientID, EventOrderAccepted, order)
	return order, nil
}

// Reject переводит заказ из pending в cancelled с необязательной причиной.
func (s *OrderService) Reject(ctx context.Context, actorID uuid.UUID, orderID uuid.UUID, reason *string) (*models.Order, error) {
	if reason != nil {
		if err := validation.ValidateRejectReason(*reason); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	order, err := s.getOwnedByFreelancer(ctx, actorID, orderID)
	if err != nil {
		return nil, err
	}

	if order.ProjectStatus != models.ProjectStatusPending {
		return nil, apperror.Newf(apperror.ErrCodeInvalidState,
			"заказ в статусе %q нельзя отклонить", order.ProjectStatus)
	}

	order.ProjectStatus = models.ProjectStatusCancelled
	order.RejectReason = reason
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.notify(order.ClientID, EventOrderRejected, order)
	return order, nil
}

// DeliverInput данные сдачи работы.
type DeliverInput struct {
	Message string
	Files   []models.DeliveryFile
}

// Deliver переводит заказ из approved в completed: сохраняет сообщение и
// файлы сдачи, проставляет delivered_at.
func (s *OrderService) Deliver(ctx context.Context, actorID uuid.UUID, orderID uuid.UUID, in DeliverInput) (*models.Order, error) {
	if err := validation.ValidateDeliveryMessage(in.Message); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	order, err := s.getOwnedByFreelancer(ctx, actorID, orderID)
	if err != nil {
		return nil, err
	}

	if order.ProjectStatus != models.ProjectStatusApproved {
		return nil, apperror.Newf(apperror.ErrCodeInvalidState,
			"заказ в статусе %q нельзя сдать", order.ProjectStatus)
	}

	now := time.Now()
	files := in.Files
	if files == nil {
		files = []models.DeliveryFile{}
	}

	order.ProjectStatus = models.ProjectStatusCompleted
	order.DeliveryMessage = &in.Message
	order.DeliveryFiles = files
	order.DeliveredAt = &now

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.notify(order.ClientID, EventOrderDelivered, order)
	return order, nil
}

// GetForClient возвращает заказ клиента с проверкой владения.
func (s *OrderService) GetForClient(ctx context.Context, actorID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {
	return s.getOwnedByClient(ctx, actorID, orderID)
}

// GetForFreelancer возвращает заказ исполнителя с проверкой владения.
func (s *OrderService) GetForFreelancer(ctx context.Context, actorID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {
	return s.getOwnedByFreelancer(ctx, actorID, orderID)
}

// ListForClient возвращает заказы клиента, новые первыми.
func (s *OrderService) ListForClient(ctx context.Context, actorID uuid.UUID) ([]models.Order, error) {
	return s.orders.ListByClient(ctx, actorID)
}

// CompletedCount возвращает число завершённых заказов фрилансера.
// Используется в публичной карточке каталога.
func (s *OrderService) CompletedCount(ctx context.Context, freelancerID uuid.UUID) (int, error) {
	return s.orders.CountByFreelancer(ctx, freelancerID, models.ProjectStatusCompleted)
}

// ListForFreelancer возвращает заказы исполнителя, новые первыми.
func (s *OrderService) ListForFreelancer(ctx context.Context, actorID uuid.UUID) ([]models.Order, error) {
	return s.orders.ListByFreelancer(ctx, actorID)
}

// ActiveOrder возвращает последний заказ пары клиент-фрилансер в статусе
// pending. Заказ в работе (approved) активным не считается.
func (s *OrderService) ActiveOrder(ctx context.Context, actorID uuid.UUID, freelancerID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindActive(ctx, actorID, freelancerID)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveOrder) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "активный заказ не найден")
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) getOwnedByClient(ctx context.Context, actorID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ClientID != actorID {
		return nil, apperror.ErrForbidden
	}
	return order, nil
}

func (s *OrderService) getOwnedByFreelancer(ctx context.Context, actorID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.FreelancerID != actorID {
		return nil, apperror.ErrForbidden
	}
	return order, nil
}

func (s *OrderService) getOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) notify(userID uuid.UUID, event string, order *models.Order) {
	if s.hub == nil {
		return
	}
	if err := s.hub.BroadcastToUser(userID, event, order); err != nil {
		logger.Log.WithError(err).WithField("event", event).Warn("Не удалось отправить уведомление о заказе")
	}
}
