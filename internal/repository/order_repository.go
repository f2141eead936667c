package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/workhub/marketplace-backend/internal/models"
)

// Ошибки уровня репозитория.
var (
	ErrOrderNotFound = errors.New("order not found")
	ErrNoActiveOrder = errors.New("no active order")
)

// OrderRepository отвечает за работу с заказами.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository создаёт новый экземпляр.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, client_id, client_email, freelancer_id, freelancer_name, plan_type, price,
	       payment_status, project_status, requirements_snapshot, requirement_answers,
	       reject_reason, delivery_message, delivery_files, delivered_at, created_at, updated_at`

// Create сохраняет новый заказ вместе со снапшотом требований.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (client_id, client_email, freelancer_id, freelancer_name, plan_type, price,
		                    payment_status, project_status, requirements_snapshot, requirement_answers, delivery_files)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		order.ClientID,
		order.ClientEmail,
		order.FreelancerID,
		order.FreelancerName,
		order.PlanType,
		order.Price,
		order.PaymentStatus,
		order.ProjectStatus,
		order.Snapshot,
		order.Answers,
		order.DeliveryFiles,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return fmt.Errorf("order repository: insert order %w", err)
	}

	return nil
}

// GetByID возвращает заказ по идентификатору.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: get by id %w", err)
	}

	return &order, nil
}

// Update перезаписывает изменяемые поля заказа одной записью.
// Снапшот требований никогда не обновляется: колонка requirements_snapshot
// отсутствует в SET намеренно.
func (r *OrderRepository) Update(ctx context.Context, order *models.Order) error {
	query := `
		UPDATE orders
		SET payment_status = $2,
			project_status = $3,
			requirement_answers = $4,
			reject_reason = $5,
			delivery_message = $6,
			delivery_files = $7,
			delivered_at = $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		order.ID,
		order.PaymentStatus,
		order.ProjectStatus,
		order.Answers,
		order.RejectReason,
		order.DeliveryMessage,
		order.DeliveryFiles,
		order.DeliveredAt,
	).Scan(&order.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("order repository: update order %w", err)
	}

	return nil
}

// ListByClient возвращает заказы клиента, новые первыми.
func (r *OrderRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	query := `SELECT ` + orderColumns + ` FROM orders WHERE client_id = $1 ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &orders, query, clientID); err != nil {
		return nil, fmt.Errorf("order repository: list by client %w", err)
	}

	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// ListByFreelancer возвращает заказы фрилансера, новые первыми.
func (r *OrderRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	query := `SELECT ` + orderColumns + ` FROM orders WHERE freelancer_id = $1 ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &orders, query, freelancerID); err != nil {
		return nil, fmt.Errorf("order repository: list by freelancer %w", err)
	}

	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// FindActive возвращает самый свежий заказ пары клиент-фрилансер, который
// ещё находится в статусе pending. Заказы approved, cancelled и completed
// активными не считаются.
func (r *OrderRepository) FindActive(ctx context.Context, clientID, freelancerID uuid.UUID) (*models.Order, error) {
	var order models.Order
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE client_id = $1 AND freelancer_id = $2 AND project_status = $3
		ORDER BY created_at DESC
		LIMIT 1
	`

	if err := r.db.GetContext(ctx, &order, query, clientID, freelancerID, models.ProjectStatusPending); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveOrder
		}
		return nil, fmt.Errorf("order repository: find active %w", err)
	}

	return &order, nil
}

// CountByFreelancer возвращает количество заказов фрилансера по статусу.
func (r *OrderRepository) CountByFreelancer(ctx context.Context, freelancerID uuid.UUID, projectStatus string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM orders WHERE freelancer_id = $1 AND project_status = $2`

	if err := r.db.GetContext(ctx, &count, query, freelancerID, projectStatus); err != nil {
		return 0, fmt.Errorf("order repository: count by freelancer %w", err)
	}

	return count, nil
}
