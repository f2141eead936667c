package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"

	"github.com/workhub/marketplace-backend/internal/logger"
	"github.com/workhub/marketplace-backend/internal/models"
	"github.com/workhub/marketplace-backend/internal/repository"
)

// SeedService наполняет базу демо-данными для разработки: администратор,
// клиент и фрилансер с тарифами, анкетой требований и одним заказом.
type SeedService struct {
	users       AuthUserRepository
	freelancers FreelancerProfileRepository
	orders      OrderStore
}

// NewSeedService создаёт сервис демо-данных.
func NewSeedService(users AuthUserRepository, freelancers FreelancerProfileRepository, orders OrderStore) *SeedService {
	return &SeedService{
		users:       users,
		freelancers: freelancers,
		orders:      orders,
	}
}

// SeedResult отчёт о созданных демо-записях.
type SeedResult struct {
	Users   int  `json:"users"`
	Plans   int  `json:"plans"`
	Orders  int  `json:"orders"`
	Skipped bool `json:"skipped"`
}

// Seed создаёт демо-данные. Повторный запуск пропускается, если демо-клиент
// уже существует.
func (s *SeedService) Seed(ctx context.Context) (*SeedResult, error) {
	if _, err := s.users.GetByEmail(ctx, "client@example.com"); err == nil {
		return &SeedResult{Skipped: true}, nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	result := &SeedResult{}

	if _, err := s.seedUser(ctx, "admin@example.com", "admin", models.RoleAdmin); err != nil {
		return nil, err
	}
	client, err := s.seedUser(ctx, "client@example.com", "demo_client", models.RoleClient)
	if err != nil {
		return nil, err
	}
	freelancer, err := s.seedUser(ctx, "freelancer@example.com", "demo_freelancer", models.RoleFreelancer)
	if err != nil {
		return nil, err
	}
	result.Users = 3

	bio := "Разрабатываю веб-приложения на заказ: от лендингов до сложных SPA."
	question1 := "Какова цель вашего проекта?"
	question2 := "Опишите желаемый результат подробнее"
	question3 := "Какой стиль вам ближе?"
	brief := "Пожалуйста, подготовьте материалы бренда до начала работы."

	profile := &models.FreelancerProfile{
		UserID:      freelancer.ID,
		DisplayName: "Демо Фрилансер",
		Bio:         &bio,
		Skills:      []string{"go", "postgresql", "react"},
		Requirements: models.RequirementList{
			{ID: uuid.NewString(), Type: models.RequirementTypeText, Question: &question1, Required: true},
			{ID: uuid.NewString(), Type: models.RequirementTypeTextarea, Question: &question2},
			{ID: uuid.NewString(), Type: models.RequirementTypeMultipleChoice, Question: &question3,
				Options: []string{"минимализм", "классика", "яркий"}},
			{ID: uuid.NewString(), Type: models.RequirementTypeInstructions, Content: &brief},
		},
	}
	if err := s.freelancers.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	if err := s.freelancers.UpdateListingStatus(ctx, freelancer.ID, models.ListingStatusApproved, nil); err != nil {
		return nil, err
	}

	plans := []models.RatePlan{
		{FreelancerID: freelancer.ID, PlanType: models.PlanTypeBasic, Price: 50},
		{FreelancerID: freelancer.ID, PlanType: models.PlanTypeStandard, Price: 120},
		{FreelancerID: freelancer.ID, PlanType: models.PlanTypePremium, Price: 250},
	}
	for i := range plans {
		if err := s.freelancers.UpsertRatePlan(ctx, &plans[i]); err != nil {
			return nil, err
		}
		result.Plans++
	}

	order := &models.Order{
		ClientID:       client.ID,
		ClientEmail:    client.Email,
		FreelancerID:   freelancer.ID,
		FreelancerName: profile.DisplayName,
		PlanType:       models.PlanTypeStandard,
		Price:          120,
		PaymentStatus:  models.PaymentStatusUnpaid,
		ProjectStatus:  models.ProjectStatusPending,
		Snapshot:       profile.Requirements.Clone(),
		Answers:        models.AnswerList{},
		DeliveryFiles:  models.DeliveryFileList{},
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	result.Orders = 1

	logger.Log.WithField("users", result.Users).Info("Демо-данные созданы")
	return result, nil
}

func (s *SeedService) seedUser(ctx context.Context, email, username, role string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("seed service: хеширование пароля %w", err)
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
