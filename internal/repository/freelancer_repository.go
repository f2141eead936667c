package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/workhub/marketplace-backend/internal/models"
)

// Ошибки уровня репозитория.
var (
	ErrProfileNotFound = errors.New("freelancer profile not found")
	ErrPlanNotFound    = errors.New("rate plan not found")
)

// FreelancerRepository отвечает за анкеты фрилансеров, тарифы и каталог.
type FreelancerRepository struct {
	db *sqlx.DB
}

// NewFreelancerRepository создаёт экземпляр репозитория.
func NewFreelancerRepository(db *sqlx.DB) *FreelancerRepository {
	return &FreelancerRepository{db: db}
}

const profileColumns = `user_id, display_name, bio, skills, location, photo_id, listing_status, rejection_reason, requirements, created_at, updated_at`

// scanProfile читает строку профиля вместе с массивом навыков.
func scanProfile(row sqlx.ColScanner) (*models.FreelancerProfile, error) {
	var profile models.FreelancerProfile
	var skills pq.StringArray

	if err := row.Scan(
		&profile.UserID,
		&profile.DisplayName,
		&profile.Bio,
		&skills,
		&profile.Location,
		&profile.PhotoID,
		&profile.ListingStatus,
		&profile.RejectionReason,
		&profile.Requirements,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}

	profile.Skills = []string(skills)
	if profile.Skills == nil {
		profile.Skills = []string{}
	}
	if profile.Requirements == nil {
		profile.Requirements = models.RequirementList{}
	}

	return &profile, nil
}

// GetProfile возвращает анкету фрилансера.
func (r *FreelancerRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM freelancer_profiles WHERE user_id = $1`

	row := r.db.QueryRowxContext(ctx, query, userID)
	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("freelancer repository: get profile %w", err)
	}

	return profile, nil
}

// UpsertProfile создаёт или обновляет анкету фрилансера.
// Список требований заменяется целиком, статус модерации не трогается.
func (r *FreelancerRepository) UpsertProfile(ctx context.Context, profile *models.FreelancerProfile) error {
	query := `
		INSERT INTO freelancer_profiles (user_id, display_name, bio, skills, location, photo_id, requirements, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
			bio = EXCLUDED.bio,
			skills = EXCLUDED.skills,
			location = EXCLUDED.location,
			photo_id = EXCLUDED.photo_id,
			requirements = EXCLUDED.requirements,
			updated_at = NOW()
		RETURNING ` + profileColumns + `
	`

	row := r.db.QueryRowxContext(
		ctx, query,
		profile.UserID,
		profile.DisplayName,
		profile.Bio,
		pq.Array(profile.Skills),
		profile.Location,
		profile.PhotoID,
		profile.Requirements,
	)

	updated, err := scanProfile(row)
	if err != nil {
		return fmt.Errorf("freelancer repository: upsert profile %w", err)
	}

	*profile = *updated
	return nil
}

// UpdateListingStatus меняет статус модерации анкеты.
func (r *FreelancerRepository) UpdateListingStatus(ctx context.Context, userID uuid.UUID, status string, reason *string) error {
	query := `
		UPDATE freelancer_profiles
		SET listing_status = $2, rejection_reason = $3, updated_at = NOW()
		WHERE user_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID, status, reason)
	if err != nil {
		return fmt.Errorf("freelancer repository: update listing status %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("freelancer repository: rows affected %w", err)
	}
	if affected == 0 {
		return ErrProfileNotFound
	}

	return nil
}

// ListByListingStatus возвращает анкеты с заданным статусом модерации.
func (r *FreelancerRepository) ListByListingStatus(ctx context.Context, status string, limit, offset int) ([]models.FreelancerProfile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM freelancer_profiles
		WHERE listing_status = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryxContext(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("freelancer repository: list by status %w", err)
	}
	defer rows.Close()

	profiles := make([]models.FreelancerProfile, 0)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("freelancer repository: scan profile %w", err)
		}
		profiles = append(profiles, *profile)
	}

	return profiles, rows.Err()
}

// UpsertRatePlan создаёт или обновляет тариф фрилансера.
func (r *FreelancerRepository) UpsertRatePlan(ctx context.Context, plan *models.RatePlan) error {
	query := `
		INSERT INTO rate_plans (freelancer_id, plan_type, price, description, delivery_days)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (freelancer_id, plan_type) DO UPDATE
		SET price = EXCLUDED.price,
			description = EXCLUDED.description,
			delivery_days = EXCLUDED.delivery_days,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		plan.FreelancerID, plan.PlanType, plan.Price, plan.Description, plan.DeliveryDays,
	).Scan(&plan.ID, &plan.CreatedAt, &plan.UpdatedAt); err != nil {
		return fmt.Errorf("freelancer repository: upsert rate plan %w", err)
	}

	return nil
}

// GetRatePlan возвращает тариф фрилансера по типу.
func (r *FreelancerRepository) GetRatePlan(ctx context.Context, freelancerID uuid.UUID, planType string) (*models.RatePlan, error) {
	var plan models.RatePlan
	query := `
		SELECT id, freelancer_id, plan_type, price, description, delivery_days, created_at, updated_at
		FROM rate_plans
		WHERE freelancer_id = $1 AND plan_type = $2
	`
	if err := r.db.GetContext(ctx, &plan, query, freelancerID, planType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("freelancer repository: get rate plan %w", err)
	}

	return &plan, nil
}

// ListRatePlans возвращает все тарифы фрилансера.
func (r *FreelancerRepository) ListRatePlans(ctx context.Context, freelancerID uuid.UUID) ([]models.RatePlan, error) {
	var plans []models.RatePlan
	query := `
		SELECT id, freelancer_id, plan_type, price, description, delivery_days, created_at, updated_at
		FROM rate_plans
		WHERE freelancer_id = $1
		ORDER BY price
	`
	if err := r.db.SelectContext(ctx, &plans, query, freelancerID); err != nil {
		return nil, fmt.Errorf("freelancer repository: list rate plans %w", err)
	}

	if plans == nil {
		plans = []models.RatePlan{}
	}
	return plans, nil
}

// DeleteRatePlan удаляет тариф фрилансера.
func (r *FreelancerRepository) DeleteRatePlan(ctx context.Context, freelancerID uuid.UUID, planType string) error {
	query := `DELETE FROM rate_plans WHERE freelancer_id = $1 AND plan_type = $2`
	res, err := r.db.ExecContext(ctx, query, freelancerID, planType)
	if err != nil {
		return fmt.Errorf("freelancer repository: delete rate plan %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("freelancer repository: rows affected %w", err)
	}
	if affected == 0 {
		return ErrPlanNotFound
	}

	return nil
}

// SearchParams параметры поиска по каталогу.
type SearchParams struct {
	Search string
	Skills []string
	Limit  int
	Offset int
}

// SearchResult результат поиска с пагинацией.
type SearchResult struct {
	Freelancers []models.FreelancerSearchResult `json:"freelancers"`
	Total       int                             `json:"total"`
	Limit       int                             `json:"limit"`
	Offset      int                             `json:"offset"`
	HasMore     bool                            `json:"has_more"`
}

// Search возвращает одобренные анкеты фрилансеров с фильтрацией.
func (r *FreelancerRepository) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	conditions := []string{`fp.listing_status = 'approved'`, `u.is_active = TRUE`}
	args := []interface{}{}
	argNum := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(`(fp.display_name ILIKE $%d OR fp.bio ILIKE $%d)`, argNum, argNum))
		args = append(args, "%"+params.Search+"%")
		argNum++
	}

	if len(params.Skills) > 0 {
		conditions = append(conditions, fmt.Sprintf(`fp.skills && $%d`, argNum))
		args = append(args, pq.Array(params.Skills))
		argNum++
	}

	where := strings.Join(conditions, " AND ")

	countQuery := `
		SELECT COUNT(*)
		FROM freelancer_profiles fp
		JOIN users u ON u.id = fp.user_id
		WHERE ` + where

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("freelancer repository: count search %w", err)
	}

	query := fmt.Sprintf(`
		SELECT fp.user_id, u.username, fp.display_name, fp.bio, fp.skills, fp.location, fp.photo_id,
		       (SELECT MIN(rp.price) FROM rate_plans rp WHERE rp.freelancer_id = fp.user_id) AS min_price,
		       fp.created_at
		FROM freelancer_profiles fp
		JOIN users u ON u.id = fp.user_id
		WHERE %s
		ORDER BY fp.updated_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argNum, argNum+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("freelancer repository: search %w", err)
	}
	defer rows.Close()

	results := make([]models.FreelancerSearchResult, 0)
	for rows.Next() {
		var item models.FreelancerSearchResult
		var skills pq.StringArray

		if err := rows.Scan(
			&item.UserID,
			&item.Username,
			&item.DisplayName,
			&item.Bio,
			&skills,
			&item.Location,
			&item.PhotoID,
			&item.MinPrice,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("freelancer repository: scan search result %w", err)
		}

		item.Skills = []string(skills)
		if item.Skills == nil {
			item.Skills = []string{}
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("freelancer repository: search rows %w", err)
	}

	return &SearchResult{
		Freelancers: results,
		Total:       total,
		Limit:       params.Limit,
		Offset:      params.Offset,
		HasMore:     params.Offset+len(results) < total,
	}, nil
}
