package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RequirementAnswer ответ клиента на вопрос анкеты. Ключом служит id вопроса
// из снапшота требований заказа.
type RequirementAnswer struct {
	ID      string         `json:"id"`
	Text    *string        `json:"text,omitempty"`
	Options []string       `json:"options,omitempty"`
	Files   []DeliveryFile `json:"files,omitempty"`
}

// DeliveryFile описывает загруженный файл: имя, ссылка и размер.
// Сами файлы хранит файловое хранилище, заказ держит только эти тройки.
type DeliveryFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// AnswerList список ответов клиента, колонка JSONB.
type AnswerList []RequirementAnswer

// Value сериализует список для записи в БД.
func (l AnswerList) Value() (driver.Value, error) {
	if l == nil {
		l = AnswerList{}
	}
	return json.Marshal(l)
}

// Scan читает список из колонки JSONB.
func (l *AnswerList) Scan(src interface{}) error {
	if src == nil {
		*l = AnswerList{}
		return nil
	}

	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, l)
	case string:
		return json.Unmarshal([]byte(data), l)
	default:
		return fmt.Errorf("answer list: неподдерживаемый тип колонки %T", src)
	}
}

// DeliveryFileList список файлов сдачи работы, колонка JSONB.
type DeliveryFileList []DeliveryFile

// Value сериализует список для записи в БД.
func (l DeliveryFileList) Value() (driver.Value, error) {
	if l == nil {
		l = DeliveryFileList{}
	}
	return json.Marshal(l)
}

// Scan читает список из колонки JSONB.
func (l *DeliveryFileList) Scan(src interface{}) error {
	if src == nil {
		*l = DeliveryFileList{}
		return nil
	}

	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, l)
	case string:
		return json.Unmarshal([]byte(data), l)
	default:
		return fmt.Errorf("delivery file list: неподдерживаемый тип колонки %T", src)
	}
}

// Order описывает покупку тарифа фрилансера клиентом.
//
// requirements_snapshot заполняется один раз при создании копией текущей
// анкеты фрилансера и дальше не изменяется, даже если фрилансер
// редактирует свои требования. requirement_answers принимаются только
// после оплаты и заменяются целиком при каждой отправке.
type Order struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	ClientID        uuid.UUID        `db:"client_id" json:"client_id"`
	ClientEmail     string           `db:"client_email" json:"client_email"`
	FreelancerID    uuid.UUID        `db:"freelancer_id" json:"freelancer_id"`
	FreelancerName  string           `db:"freelancer_name" json:"freelancer_name"`
	PlanType        string           `db:"plan_type" json:"plan_type"`
	Price           float64          `db:"price" json:"price"`
	PaymentStatus   string           `db:"payment_status" json:"payment_status"`
	ProjectStatus   string           `db:"project_status" json:"project_status"`
	Snapshot        RequirementList  `db:"requirements_snapshot" json:"requirements_snapshot"`
	Answers         AnswerList       `db:"requirement_answers" json:"requirement_answers"`
	RejectReason    *string          `db:"reject_reason" json:"reject_reason,omitempty"`
	DeliveryMessage *string          `db:"delivery_message" json:"delivery_message,omitempty"`
	DeliveryFiles   DeliveryFileList `db:"delivery_files" json:"delivery_files"`
	DeliveredAt     *time.Time       `db:"delivered_at" json:"delivered_at,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// IsPaid сообщает, оплачен ли заказ.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// IsTerminal сообщает, находится ли заказ в терминальном статусе.
func (o *Order) IsTerminal() bool {
	return o.ProjectStatus == ProjectStatusCancelled || o.ProjectStatus == ProjectStatusCompleted
}
