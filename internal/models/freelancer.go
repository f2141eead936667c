package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RequirementDefinition описывает один вопрос анкеты требований фрилансера.
// Тип вопроса определяет, какие поля имеют смысл: question/required для всех
// отвечаемых типов, options/allow_multiple только для multiple_choice,
// accepts/max_files только для file, content только для instructions.
type RequirementDefinition struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Question      *string  `json:"question,omitempty"`
	Required      bool     `json:"required"`
	Options       []string `json:"options,omitempty"`
	AllowMultiple bool     `json:"allow_multiple,omitempty"`
	Accepts       []string `json:"accepts,omitempty"`
	MaxFiles      int      `json:"max_files,omitempty"`
	Content       *string  `json:"content,omitempty"`
}

// Validate проверяет определение вопроса с учётом его типа.
func (d *RequirementDefinition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("требование должно иметь идентификатор")
	}
	if _, ok := ValidRequirementTypes[d.Type]; !ok {
		return fmt.Errorf("неизвестный тип требования %q", d.Type)
	}

	switch d.Type {
	case RequirementTypeInstructions:
		if d.Content == nil || *d.Content == "" {
			return fmt.Errorf("требование-инструкция %s должно содержать текст", d.ID)
		}
	case RequirementTypeMultipleChoice:
		if d.Question == nil || *d.Question == "" {
			return fmt.Errorf("требование %s должно содержать вопрос", d.ID)
		}
		if len(d.Options) == 0 {
			return fmt.Errorf("требование %s с выбором должно содержать варианты ответа", d.ID)
		}
	case RequirementTypeFile:
		if d.Question == nil || *d.Question == "" {
			return fmt.Errorf("требование %s должно содержать вопрос", d.ID)
		}
		if d.MaxFiles < 0 {
			return fmt.Errorf("требование %s: max_files не может быть отрицательным", d.ID)
		}
	default:
		if d.Question == nil || *d.Question == "" {
			return fmt.Errorf("требование %s должно содержать вопрос", d.ID)
		}
	}

	return nil
}

// ExpectsAnswer сообщает, ожидается ли ответ клиента на этот вопрос.
func (d *RequirementDefinition) ExpectsAnswer() bool {
	return d.Type != RequirementTypeInstructions
}

// RequirementList упорядоченный список вопросов анкеты.
// Хранится в колонке JSONB.
type RequirementList []RequirementDefinition

// Value сериализует список для записи в БД.
func (l RequirementList) Value() (driver.Value, error) {
	if l == nil {
		l = RequirementList{}
	}
	return json.Marshal(l)
}

// Scan читает список из колонки JSONB.
func (l *RequirementList) Scan(src interface{}) error {
	if src == nil {
		*l = RequirementList{}
		return nil
	}

	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, l)
	case string:
		return json.Unmarshal([]byte(data), l)
	default:
		return fmt.Errorf("requirement list: неподдерживаемый тип колонки %T", src)
	}
}

// Clone возвращает глубокую копию списка. Используется при создании снапшота
// заказа: копия не держит ссылок на живой список профиля, поэтому
// последующие правки анкеты фрилансера не затрагивают прошлые заказы.
func (l RequirementList) Clone() RequirementList {
	if l == nil {
		return RequirementList{}
	}

	out := make(RequirementList, 0, len(l))
	for _, d := range l {
		copied := d
		if d.Question != nil {
			q := *d.Question
			copied.Question = &q
		}
		if d.Content != nil {
			c := *d.Content
			copied.Content = &c
		}
		if d.Options != nil {
			copied.Options = append([]string(nil), d.Options...)
		}
		if d.Accepts != nil {
			copied.Accepts = append([]string(nil), d.Accepts...)
		}
		out = append(out, copied)
	}
	return out
}

// IDSet возвращает множество идентификаторов вопросов.
func (l RequirementList) IDSet() map[string]struct{} {
	set := make(map[string]struct{}, len(l))
	for _, d := range l {
		set[d.ID] = struct{}{}
	}
	return set
}

// FreelancerProfile описывает анкету фрилансера, включая список требований
// к заказам. listing_status управляется модерацией администратора.
type FreelancerProfile struct {
	UserID          uuid.UUID       `db:"user_id" json:"user_id"`
	DisplayName     string          `db:"display_name" json:"display_name"`
	Bio             *string         `db:"bio" json:"bio,omitempty"`
	Skills          []string        `db:"skills" json:"skills"`
	Location        *string         `db:"location" json:"location,omitempty"`
	PhotoID         *uuid.UUID      `db:"photo_id" json:"photo_id,omitempty"`
	ListingStatus   string          `db:"listing_status" json:"listing_status"`
	RejectionReason *string         `db:"rejection_reason" json:"rejection_reason,omitempty"`
	Requirements    RequirementList `db:"requirements" json:"requirements"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// RatePlan описывает тарифный план фрилансера (Basic/Standard/Premium).
type RatePlan struct {
	ID           uuid.UUID `db:"id" json:"id"`
	FreelancerID uuid.UUID `db:"freelancer_id" json:"freelancer_id"`
	PlanType     string    `db:"plan_type" json:"plan_type"`
	Price        float64   `db:"price" json:"price"`
	Description  *string   `db:"description" json:"description,omitempty"`
	DeliveryDays *int      `db:"delivery_days" json:"delivery_days,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// FreelancerSearchResult результат поиска фрилансера в публичном каталоге.
type FreelancerSearchResult struct {
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	Username    string     `db:"username" json:"username"`
	DisplayName string     `db:"display_name" json:"display_name"`
	Bio         *string    `db:"bio" json:"bio,omitempty"`
	Skills      []string   `json:"skills"`
	Location    *string    `db:"location" json:"location,omitempty"`
	PhotoID     *uuid.UUID `db:"photo_id" json:"photo_id,omitempty"`
	MinPrice    *float64   `db:"min_price" json:"min_price,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
