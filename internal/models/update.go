package models

import "time"

// UserUpdate частичный набор полей записи пользователя.
// Заполненные (non-nil) поля сливаются с сохранённой записью, остальные не меняются.
type UserUpdate struct {
	AccessEnabled          *bool
	PremiumOverride        *bool
	TrialsRemaining        *int
	TrialStartDate         *time.Time
	TrialExpiryDate        *time.Time
	SubscriptionStatus     *SubscriptionStatus
	SubscriptionPlan       *string
	SubscriptionStartDate  *time.Time
	SubscriptionExpiryDate *time.Time
	LastDashboardAccess    *time.Time
	Preferences            *Preferences
}

// IsEmpty возвращает true, если обновление не содержит ни одного поля.
func (u UserUpdate) IsEmpty() bool {
	return u.AccessEnabled == nil &&
		u.PremiumOverride == nil &&
		u.TrialsRemaining == nil &&
		u.TrialStartDate == nil &&
		u.TrialExpiryDate == nil &&
		u.SubscriptionStatus == nil &&
		u.SubscriptionPlan == nil &&
		u.SubscriptionStartDate == nil &&
		u.SubscriptionExpiryDate == nil &&
		u.LastDashboardAccess == nil &&
		u.Preferences == nil
}

// Apply сливает обновление с копией записи и возвращает новый снимок.
// Исходная запись не изменяется.
func (u UserUpdate) Apply(user User) User {
	if u.AccessEnabled != nil {
		user.AccessEnabled = *u.AccessEnabled
	}
	if u.PremiumOverride != nil {
		user.PremiumOverride = *u.PremiumOverride
	}
	if u.TrialsRemaining != nil {
		user.TrialsRemaining = *u.TrialsRemaining
	}
	if u.TrialStartDate != nil {
		user.TrialStartDate = u.TrialStartDate
	}
	if u.TrialExpiryDate != nil {
		user.TrialExpiryDate = u.TrialExpiryDate
	}
	if u.SubscriptionStatus != nil {
		user.SubscriptionStatus = *u.SubscriptionStatus
	}
	if u.SubscriptionPlan != nil {
		user.SubscriptionPlan = u.SubscriptionPlan
	}
	if u.SubscriptionStartDate != nil {
		user.SubscriptionStartDate = u.SubscriptionStartDate
	}
	if u.SubscriptionExpiryDate != nil {
		user.SubscriptionExpiryDate = u.SubscriptionExpiryDate
	}
	if u.LastDashboardAccess != nil {
		user.LastDashboardAccess = u.LastDashboardAccess
	}
	if u.Preferences != nil {
		user.Preferences = *u.Preferences
	}
	return user
}
