package access

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/crimewatch/internal/lib/month"
	"github.com/magabrotheeeer/crimewatch/internal/models"
)

// ErrUnauthorized возвращается, когда привилегированную операцию вызывает не суперадминистратор.
var ErrUnauthorized = errors.New("unauthorized")

const (
	// DefaultTrialUses число пробных использований у нового USER.
	DefaultTrialUses = 3
	// DefaultTrialDays длина пробного окна, отсчитывается от первого использования.
	DefaultTrialDays = 7
)

// Policy задаёт параметры пробного периода и зарезервированный адрес суперадминистратора.
type Policy struct {
	TrialUses       int
	TrialDays       int
	SuperAdminEmail string
}

// DefaultPolicy используется функциями пакета без явной политики.
var DefaultPolicy = Policy{
	TrialUses:       DefaultTrialUses,
	TrialDays:       DefaultTrialDays,
	SuperAdminEmail: "superadmin@crimewatch.com",
}

// ConsumeTrial списывает одно пробное использование по политике по умолчанию.
func ConsumeTrial(u models.User, now time.Time) models.UserUpdate {
	return DefaultPolicy.ConsumeTrial(u, now)
}

// ConsumeTrial списывает одно пробное использование.
// Если хотя бы одно условие не выполнено (роль не USER, премиум, активная подписка,
// нет оставшихся попыток), возвращается пустое обновление без ошибки.
// При первом списании один раз проставляются даты пробного окна и статус trial.
func (p Policy) ConsumeTrial(u models.User, now time.Time) models.UserUpdate {
	if u.Role != models.RoleUser {
		return models.UserUpdate{}
	}
	if u.PremiumOverride {
		return models.UserUpdate{}
	}
	if u.SubscriptionStatus == models.SubscriptionActive {
		return models.UserUpdate{}
	}
	if u.TrialsRemaining <= 0 {
		return models.UserUpdate{}
	}

	remaining := u.TrialsRemaining - 1
	stamp := now
	upd := models.UserUpdate{
		TrialsRemaining:     &remaining,
		LastDashboardAccess: &stamp,
	}

	if u.TrialStartDate == nil {
		start := now
		expiry := now.AddDate(0, 0, p.TrialDays)
		status := models.SubscriptionTrial
		upd.TrialStartDate = &start
		upd.TrialExpiryDate = &expiry
		upd.SubscriptionStatus = &status
	}
	return upd
}

// ActivateSubscription возвращает обновление, активирующее подписку на months
// календарных месяцев начиная с now. Поля пробного периода не затрагиваются.
// Оплата не проверяется: вызывающая сторона отвечает за её подтверждение.
func ActivateSubscription(planID string, months int, now time.Time) models.UserUpdate {
	status := models.SubscriptionActive
	plan := planID
	start := now
	expiry := month.AddMonths(now, months)
	return models.UserUpdate{
		SubscriptionStatus:     &status,
		SubscriptionPlan:       &plan,
		SubscriptionStartDate:  &start,
		SubscriptionExpiryDate: &expiry,
	}
}

// GrantPremium выдаёт премиум-доступ и заодно включает доступ администратора.
func GrantPremium(actor *models.User) (models.UserUpdate, error) {
	const op = "access.GrantPremium"
	if err := requireSuperAdmin(actor); err != nil {
		return models.UserUpdate{}, fmt.Errorf("%s: %w", op, err)
	}
	premium, enabled := true, true
	return models.UserUpdate{PremiumOverride: &premium, AccessEnabled: &enabled}, nil
}

// RevokePremium снимает премиум-доступ. AccessEnabled не меняется.
func RevokePremium(actor *models.User) (models.UserUpdate, error) {
	const op = "access.RevokePremium"
	if err := requireSuperAdmin(actor); err != nil {
		return models.UserUpdate{}, fmt.Errorf("%s: %w", op, err)
	}
	premium := false
	return models.UserUpdate{PremiumOverride: &premium}, nil
}

// SetAccessEnabled включает или выключает доступ администратора.
func SetAccessEnabled(actor *models.User, enabled bool) (models.UserUpdate, error) {
	const op = "access.SetAccessEnabled"
	if err := requireSuperAdmin(actor); err != nil {
		return models.UserUpdate{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.UserUpdate{AccessEnabled: &enabled}, nil
}

func requireSuperAdmin(actor *models.User) error {
	if actor == nil || actor.Role != models.RoleSuperAdmin {
		return ErrUnauthorized
	}
	return nil
}

// NewUser создаёт запись по умолчанию для впервые аутентифицированного субъекта.
// Регистрация с зарезервированным адресом всегда получает роль SUPER_ADMIN.
func (p Policy) NewUser(uid, email, displayName string, requested models.Role, region *string, now time.Time) models.User {
	role := p.ResolveRole(email, requested)

	u := models.User{
		UID:                uid,
		Email:              email,
		DisplayName:        displayName,
		Role:               role,
		AccessEnabled:      role != models.RoleAdmin,
		SubscriptionStatus: models.SubscriptionNone,
		CreatedAt:          now,
	}
	if role == models.RoleUser {
		u.TrialsRemaining = p.TrialUses
	}
	if role == models.RoleAdmin {
		u.Region = region
	}
	return u
}

// ResolveRole применяет правило зарезервированного адреса. Неизвестная роль
// трактуется как USER.
func (p Policy) ResolveRole(email string, requested models.Role) models.Role {
	if p.SuperAdminEmail != "" && strings.EqualFold(strings.TrimSpace(email), p.SuperAdminEmail) {
		return models.RoleSuperAdmin
	}
	switch requested {
	case models.RoleAdmin:
		return models.RoleAdmin
	default:
		return models.RoleUser
	}
}
