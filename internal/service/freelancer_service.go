package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/workhub/marketplace-backend/internal/cache"
	"github.com/workhub/marketplace-backend/internal/models"
	"github.com/workhub/marketplace-backend/internal/pkg/apperror"
	"github.com/workhub/marketplace-backend/internal/repository"
	"github.com/workhub/marketplace-backend/internal/validation"
)

// FreelancerProfileRepository описывает зависимости FreelancerService от слоя хранилища.
type FreelancerProfileRepository interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error)
	UpsertProfile(ctx context.Context, profile *models.FreelancerProfile) error
	UpdateListingStatus(ctx context.Context, userID uuid.UUID, status string, reason *string) error
	ListByListingStatus(ctx context.Context, status string, limit, offset int) ([]models.FreelancerProfile, error)
	UpsertRatePlan(ctx context.Context, plan *models.RatePlan) error
	GetRatePlan(ctx context.Context, freelancerID uuid.UUID, planType string) (*models.RatePlan, error)
	ListRatePlans(ctx context.Context, freelancerID uuid.UUID) ([]models.RatePlan, error)
	DeleteRatePlan(ctx context.Context, freelancerID uuid.UUID, planType string) error
	Search(ctx context.Context, params repository.SearchParams) (*repository.SearchResult, error)
}

// FreelancerService управляет анкетами, тарифами и требованиями фрилансеров,
// а также публичным каталогом и модерацией.
type FreelancerService struct {
	repo         FreelancerProfileRepository
	catalogCache *cache.CatalogCache
}

// NewFreelancerService создаёт сервис фрилансеров.
func NewFreelancerService(repo FreelancerProfileRepository, catalogCache *cache.CatalogCache) *FreelancerService {
	return &FreelancerService{
		repo:         repo,
		catalogCache: catalogCache,
	}
}

// ProfileInput данные анкеты фрилансера.
type ProfileInput struct {
	DisplayName string
	Bio         *string
	Skills      []string
	Location    *string
	PhotoID     *uuid.UUID
}

// GetProfile возвращает анкету фрилансера.
func (s *FreelancerService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.ErrFreelancerNotFound
		}
		return nil, err
	}
	return profile, nil
}

// GetPublicProfile возвращает анкету для каталога: только одобренные анкеты.
func (s *FreelancerService) GetPublicProfile(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.ListingStatus != models.ListingStatusApproved {
		return nil, apperror.ErrFreelancerNotFound
	}
	return profile, nil
}

// UpdateProfile сохраняет анкету фрилансера. actorID — автор запроса: анкету
// может менять только сам фрилансер. Статус модерации правка не меняет, им
// управляют только Approve и Reject.
func (s *FreelancerService) UpdateProfile(ctx context.Context, actorID uuid.UUID, in ProfileInput) (*models.FreelancerProfile, error) {
	if err := validation.ValidateDisplayName(in.DisplayName); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if in.Bio != nil {
		if err := validation.ValidateBio(*in.Bio); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	if err := validation.ValidateSkills(in.Skills); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	existing, err := s.repo.GetProfile(ctx, actorID)
	if err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
		return nil, err
	}

	requirements := models.RequirementList{}
	if existing != nil {
		requirements = existing.Requirements
	}

	skills := in.Skills
	if skills == nil {
		skills = []string{}
	}

	profile := &models.FreelancerProfile{
		UserID:       actorID,
		DisplayName:  in.DisplayName,
		Bio:          in.Bio,
		Skills:       skills,
		Location:     in.Location,
		PhotoID:      in.PhotoID,
		Requirements: requirements,
	}

	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}

	s.catalogCache.Invalidate(ctx)
	return s.repo.GetProfile(ctx, actorID)
}

// UpdateRequirements заменяет анкету требований фрилансера целиком.
// Каждое определение проверяется с учётом своего типа. Изменение не
// затрагивает снапшоты уже созданных заказов.
func (s *FreelancerService) UpdateRequirements(ctx context.Context, actorID uuid.UUID, requirements models.RequirementList) (*models.FreelancerProfile, error) {
	if err := validation.ValidateRequirements(requirements); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	profile, err := s.repo.GetProfile(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.ErrFreelancerNotFound
		}
		return nil, err
	}

	if requirements == nil {
		requirements = models.RequirementList{}
	}
	profile.Requirements = requirements

	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}

	return s.repo.GetProfile(ctx, actorID)
}

// RatePlanInput данные тарифного плана.
type RatePlanInput struct {
	PlanType     string
	Price        float64
	Description  *string
	DeliveryDays *int
}

// UpsertRatePlan создаёт или обновляет тариф фрилансера.
func (s *FreelancerService) UpsertRatePlan(ctx context.Context, actorID uuid.UUID, in RatePlanInput) (*models.RatePlan, error) {
	if err := validation.ValidatePlanType(in.PlanType); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePrice(in.Price); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if _, err := s.repo.GetProfile(ctx, actorID); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.ErrFreelancerNotFound
		}
		return nil, err
	}

	plan := &models.RatePlan{
		FreelancerID: actorID,
		PlanType:     in.PlanType,
		Price:        in.Price,
		Description:  in.Description,
		DeliveryDays: in.DeliveryDays,
	}

	if err := s.repo.UpsertRatePlan(ctx, plan); err != nil {
		return nil, err
	}

	s.catalogCache.Invalidate(ctx)
	return s.repo.GetRatePlan(ctx, actorID, in.PlanType)
}

// ListRatePlans возвращает тарифы фрилансера.
func (s *FreelancerService) ListRatePlans(ctx context.Context, freelancerID uuid.UUID) ([]models.RatePlan, error) {
	return s.repo.ListRatePlans(ctx, freelancerID)
}

// DeleteRatePlan удаляет тариф фрилансера.
func (s *FreelancerService) DeleteRatePlan(ctx context.Context, actorID uuid.UUID, planType string) error {
	if err := validation.ValidatePlanType(planType); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if err := s.repo.DeleteRatePlan(ctx, actorID, planType); err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return apperror.ErrPlanNotFound
		}
		return err
	}

	s.catalogCache.Invalidate(ctx)
	return nil
}

// Search ищет одобренных фрилансеров в публичном каталоге. Результаты
// кешируются в Redis на время CatalogCacheTTL.
func (s *FreelancerService) Search(ctx context.Context, params repository.SearchParams) (*repository.SearchResult, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	key := s.catalogCache.Key(params)
	var cached repository.SearchResult
	if s.catalogCache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	result, err := s.repo.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	s.catalogCache.Set(ctx, key, result)
	return result, nil
}

// ListForModeration возвращает анкеты в заданном статусе модерации.
func (s *FreelancerService) ListForModeration(ctx context.Context, status string, limit, offset int) ([]models.FreelancerProfile, error) {
	if _, ok := models.ValidListingStatuses[status]; !ok {
		return nil, apperror.Newf(apperror.ErrCodeValidation, "неизвестный статус модерации %q", status)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByListingStatus(ctx, status, limit, offset)
}

// Approve одобряет анкету фрилансера и публикует её в каталоге.
func (s *FreelancerService) Approve(ctx context.Context, freelancerID uuid.UUID) error {
	if err := s.repo.UpdateListingStatus(ctx, freelancerID, models.ListingStatusApproved, nil); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return apperror.ErrFreelancerNotFound
		}
		return err
	}

	s.catalogCache.Invalidate(ctx)
	return nil
}

// Reject отклоняет анкету фрилансера с указанием причины.
func (s *FreelancerService) Reject(ctx context.Context, freelancerID uuid.UUID, reason string) error {
	if err := validation.ValidateRejectReason(reason); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if err := s.repo.UpdateListingStatus(ctx, freelancerID, models.ListingStatusRejected, &reason); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return apperror.ErrFreelancerNotFound
		}
		return err
	}

	s.catalogCache.Invalidate(ctx)
	return nil
}
