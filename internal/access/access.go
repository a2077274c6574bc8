// Package access реализует движок решений о доступе к закрытым разделам дашборда.
//
// Функция Evaluate является чистым запросом над снимком записи пользователя. Операции
// ConsumeTrial, ActivateSubscription, GrantPremium и RevokePremium ничего не
// сохраняют сами: они возвращают частичное обновление models.UserUpdate, которое
// вызывающая сторона сливает с записью в хранилище.
package access

import (
	"encoding/json"
	"time"

	"github.com/magabrotheeeer/crimewatch/internal/models"
)

// Reason причина отказа в доступе. Пустое значение означает отсутствие причины.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonNotAuthenticated Reason = "not_authenticated"
	ReasonAdminDisabled    Reason = "admin_disabled"
	ReasonTrialsExhausted  Reason = "trials_exhausted"
	ReasonUnknown          Reason = "unknown"
)

// MarshalJSON сериализует пустую причину как null.
func (r Reason) MarshalJSON() ([]byte, error) {
	if r == ReasonNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

// UnmarshalJSON принимает null как пустую причину.
func (r *Reason) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ReasonNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = Reason(s)
	return nil
}

// Result итог проверки доступа.
type Result struct {
	Valid  bool   `json:"valid"`
	Reason Reason `json:"reason"`
}

func allow() Result { return Result{Valid: true} }

func deny(r Reason) Result { return Result{Valid: false, Reason: r} }

// Evaluate решает, может ли владелец записи открыть закрытый раздел.
// Правила проверяются строго по порядку, срабатывает первое подходящее:
// отсутствие записи, премиум-доступ, активная подписка, роль.
// Дата окончания пробного периода не проверяется.
func Evaluate(u *models.User, now time.Time) Result {
	if u == nil {
		return deny(ReasonNotAuthenticated)
	}
	if u.PremiumOverride {
		return allow()
	}
	if HasActiveSubscription(u, now) {
		return allow()
	}

	switch u.Role {
	case models.RoleSuperAdmin:
		return allow()
	case models.RoleAdmin:
		if u.AccessEnabled {
			return allow()
		}
		return deny(ReasonAdminDisabled)
	case models.RoleUser:
		if u.TrialsRemaining > 0 {
			return allow()
		}
		return deny(ReasonTrialsExhausted)
	default:
		return deny(ReasonUnknown)
	}
}

// HasActiveSubscription сообщает, действует ли подписка на момент now.
// Активная подписка без даты окончания считается бессрочной.
func HasActiveSubscription(u *models.User, now time.Time) bool {
	if u.SubscriptionStatus != models.SubscriptionActive {
		return false
	}
	return u.SubscriptionExpiryDate == nil || u.SubscriptionExpiryDate.After(now)
}
