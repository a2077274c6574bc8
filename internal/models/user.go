// Package models содержит доменную модель пользователя дашборда:
// роль, счётчик пробных использований, данные подписки и флаги доступа.
// Структуры используются в бизнес-логике, хранилище и при сериализации событий.
package models

import (
	"fmt"
	"time"
)

// Role закрытое перечисление ролей пользователя.
type Role string

const (
	// RoleUser обычный пользователь с пробными использованиями.
	RoleUser Role = "USER"
	// RoleAdmin администратор региона, доступ включается вручную.
	RoleAdmin Role = "ADMIN"
	// RoleSuperAdmin суперадминистратор, управляет доступом остальных.
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Valid сообщает, входит ли роль в закрытый набор.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// ParseRole разбирает строковое значение роли.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// SubscriptionStatus состояние подписки пользователя.
type SubscriptionStatus string

const (
	SubscriptionNone   SubscriptionStatus = "none"
	SubscriptionTrial  SubscriptionStatus = "trial"
	SubscriptionActive SubscriptionStatus = "active"
)

// Preferences хранит пользовательские настройки дашборда.
type Preferences struct {
	PreferredState string `json:"preferred_state,omitempty"`
}

// User представляет запись пользователя, по которой принимается решение о доступе.
// Все nullable-даты хранятся указателями: nil означает, что значение не задано.
type User struct {
	UID                    string             `json:"uid"`
	Email                  string             `json:"email"`
	DisplayName            string             `json:"display_name"`
	Role                   Role               `json:"role"`
	Region                 *string            `json:"region,omitempty"`
	Preferences            Preferences        `json:"preferences"`
	AccessEnabled          bool               `json:"access_enabled"`
	PremiumOverride        bool               `json:"premium_override"`
	TrialsRemaining        int                `json:"trials_remaining"`
	TrialStartDate         *time.Time         `json:"trial_start_date,omitempty"`
	TrialExpiryDate        *time.Time         `json:"trial_expiry_date,omitempty"`
	SubscriptionStatus     SubscriptionStatus `json:"subscription_status"`
	SubscriptionPlan       *string            `json:"subscription_plan,omitempty"`
	SubscriptionStartDate  *time.Time         `json:"subscription_start_date,omitempty"`
	SubscriptionExpiryDate *time.Time         `json:"subscription_expiry_date,omitempty"`
	LastDashboardAccess    *time.Time         `json:"last_dashboard_access,omitempty"`
	CreatedAt              time.Time          `json:"created_at"`
}

// Principal аутентифицированный субъект, полученный от сервиса идентификации.
type Principal struct {
	UID         string
	Email       string
	Role        Role
	DisplayName string
	Region      string
}

// Credentials учётные данные для входа, хранятся отдельно от записи доступа.
// Роль здесь уже разрешена с учётом зарезервированного адреса.
type Credentials struct {
	UID          string
	Email        string
	PasswordHash string
	DisplayName  string
	Role         Role
	Region       string
}

// Stats сводка для панели суперадминистратора.
type Stats struct {
	TotalUsers          int `json:"total_users"`
	TotalAdmins         int `json:"total_admins"`
	ActiveSubscriptions int `json:"active_subscriptions"`
	TrialUsers          int `json:"trial_users"`
	UnreadMessages      int `json:"unread_messages"`
}
