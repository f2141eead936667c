package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/workhub/marketplace-backend/internal/models"
)

// Константы валидации
const (
	MinUsernameLength          = 3
	MaxUsernameLength          = 30
	MinDisplayNameLength       = 2
	MaxDisplayNameLength       = 100
	MaxBioLength               = 1000
	MaxLocationLength          = 100
	MaxSkillLength             = 50
	MaxSkillsCount             = 50
	MaxPlanDescriptionLength   = 1000
	MinPrice                   = 0.0
	MaxPrice                   = 100000000.0 // 100 миллионов
	MaxRequirementsCount       = 30
	MaxRequirementTextLength   = 1000
	MaxAnswerTextLength        = 5000
	MaxDeliveryMessageLength   = 5000
	MaxRejectReasonLength      = 1000
	MaxRequirementOptionsCount = 20
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	if !strings.Contains(email, "@") {
		return fmt.Errorf("email должен содержать символ @")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	if !strings.Contains(domainPart, ".") {
		return fmt.Errorf("доменная часть email должна содержать точку")
	}

	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	// Только буквы, цифры и подчеркивание
	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}

	if len(username) > 0 && unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}

	return nil
}

// ValidateDisplayName проверяет отображаемое имя.
func ValidateDisplayName(displayName string) error {
	if displayName == "" {
		return fmt.Errorf("отображаемое имя обязательно")
	}

	displayName = strings.TrimSpace(displayName)

	if err := ValidateLength("отображаемое имя", displayName, MinDisplayNameLength, MaxDisplayNameLength); err != nil {
		return err
	}

	displayNameRegex := regexp.MustCompile(`^[a-zA-Zа-яА-ЯёЁ0-9\s\-_.,!?()]+$`)
	if !displayNameRegex.MatchString(displayName) {
		return fmt.Errorf("отображаемое имя содержит недопустимые символы")
	}

	return nil
}

// ValidateBio проверяет описание профиля.
func ValidateBio(bio string) error {
	return ValidateLength("описание профиля", bio, 0, MaxBioLength)
}

// ValidateSkills проверяет список навыков.
func ValidateSkills(skills []string) error {
	if len(skills) > MaxSkillsCount {
		return fmt.Errorf("количество навыков не может превышать %d", MaxSkillsCount)
	}

	for _, skill := range skills {
		if strings.TrimSpace(skill) == "" {
			return fmt.Errorf("навык не может быть пустым")
		}
		if err := ValidateLength("навык", skill, 1, MaxSkillLength); err != nil {
			return err
		}
	}

	return nil
}

// ValidatePlanType проверяет тип тарифного плана.
func ValidatePlanType(planType string) error {
	if planType == "" {
		return fmt.Errorf("тип тарифа обязателен")
	}
	if _, ok := models.ValidPlanTypes[planType]; !ok {
		return fmt.Errorf("тип тарифа должен быть Basic, Standard или Premium")
	}
	return nil
}

// ValidatePrice проверяет цену тарифа.
func ValidatePrice(price float64) error {
	if price < MinPrice {
		return fmt.Errorf("цена не может быть отрицательной")
	}
	if price > MaxPrice {
		return fmt.Errorf("цена не может превышать %.0f", MaxPrice)
	}
	return nil
}

// ValidateRequirements проверяет список вопросов анкеты целиком:
// каждый вопрос по его типу плюс уникальность идентификаторов.
func ValidateRequirements(requirements models.RequirementList) error {
	if len(requirements) > MaxRequirementsCount {
		return fmt.Errorf("количество требований не может превышать %d", MaxRequirementsCount)
	}

	seen := make(map[string]struct{}, len(requirements))
	for i := range requirements {
		req := &requirements[i]
		if err := req.Validate(); err != nil {
			return err
		}
		if _, dup := seen[req.ID]; dup {
			return fmt.Errorf("идентификатор требования %s повторяется", req.ID)
		}
		seen[req.ID] = struct{}{}

		if req.Question != nil {
			if err := ValidateLength("вопрос требования", *req.Question, 0, MaxRequirementTextLength); err != nil {
				return err
			}
		}
		if len(req.Options) > MaxRequirementOptionsCount {
			return fmt.Errorf("требование %s: количество вариантов не может превышать %d", req.ID, MaxRequirementOptionsCount)
		}
	}

	return nil
}

// ValidateAnswers проверяет форму ответов клиента. Соответствие ответов
// снапшоту проверяет сервис заказов, здесь только форма.
func ValidateAnswers(answers []models.RequirementAnswer) error {
	for _, a := range answers {
		if strings.TrimSpace(a.ID) == "" {
			return fmt.Errorf("ответ должен ссылаться на идентификатор требования")
		}
		if a.Text != nil {
			if err := ValidateLength("текст ответа", *a.Text, 0, MaxAnswerTextLength); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateDeliveryMessage проверяет сообщение при сдаче работы.
func ValidateDeliveryMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("сообщение о сдаче работы обязательно")
	}
	return ValidateLength("сообщение о сдаче работы", message, 1, MaxDeliveryMessageLength)
}

// ValidateRejectReason проверяет причину отклонения.
func ValidateRejectReason(reason string) error {
	return ValidateLength("причина отклонения", reason, 0, MaxRejectReasonLength)
}
