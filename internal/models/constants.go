package models

// Роли пользователей
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
	RoleAdmin      = "admin"
)

// PlanType типы тарифных планов фрилансера
const (
	PlanTypeBasic    = "Basic"
	PlanTypeStandard = "Standard"
	PlanTypePremium  = "Premium"
)

// PaymentStatus статусы оплаты заказа. Переход только unpaid -> paid.
const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// ProjectStatus статусы выполнения заказа.
// pending -> approved -> completed, pending -> cancelled.
// cancelled и completed терминальные.
const (
	ProjectStatusPending   = "pending"
	ProjectStatusApproved  = "approved"
	ProjectStatusCancelled = "cancelled"
	ProjectStatusCompleted = "completed"
)

// RequirementType типы вопросов анкеты требований
const (
	RequirementTypeText           = "text"
	RequirementTypeTextarea       = "textarea"
	RequirementTypeMultipleChoice = "multiple_choice"
	RequirementTypeFile           = "file"
	RequirementTypeInstructions   = "instructions"
)

// ListingStatus статусы модерации анкеты фрилансера
const (
	ListingStatusPendingReview = "pending_review"
	ListingStatusApproved      = "approved"
	ListingStatusRejected      = "rejected"
)

// ValidPlanTypes список валидных типов тарифов
var ValidPlanTypes = map[string]struct{}{
	PlanTypeBasic:    {},
	PlanTypeStandard: {},
	PlanTypePremium:  {},
}

// ValidRequirementTypes список валидных типов вопросов
var ValidRequirementTypes = map[string]struct{}{
	RequirementTypeText:           {},
	RequirementTypeTextarea:       {},
	RequirementTypeMultipleChoice: {},
	RequirementTypeFile:           {},
	RequirementTypeInstructions:   {},
}

// ValidRoles список валидных ролей
var ValidRoles = map[string]struct{}{
	RoleClient:     {},
	RoleFreelancer: {},
	RoleAdmin:      {},
}

// ValidListingStatuses список валидных статусов модерации
var ValidListingStatuses = map[string]struct{}{
	ListingStatusPendingReview: {},
	ListingStatusApproved:      {},
	ListingStatusRejected:      {},
}
