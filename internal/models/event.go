package models

import "time"

// EventType тип события доступа, публикуемого в брокер.
type EventType string

const (
	EventTrialConsumed         EventType = "trial.consumed"
	EventTrialExhausted        EventType = "trial.exhausted"
	EventTrialExpiring         EventType = "trial.expiring"
	EventSubscriptionActivated EventType = "subscription.activated"
	EventSubscriptionExpiring  EventType = "subscription.expiring"
	EventPremiumChanged        EventType = "premium.changed"
)

// Event уведомление об изменении состояния доступа пользователя.
// Тип события одновременно служит ключом маршрутизации.
type Event struct {
	Type            EventType  `json:"type"`
	UserUID         string     `json:"user_uid"`
	Email           string     `json:"email"`
	DisplayName     string     `json:"display_name"`
	TrialsRemaining int        `json:"trials_remaining"`
	Plan            string     `json:"plan,omitempty"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
	Premium         *bool      `json:"premium,omitempty"`
	OccurredAt      time.Time  `json:"occurred_at"`
}

// NewEvent собирает событие по снимку записи пользователя.
func NewEvent(t EventType, u User, now time.Time) Event {
	return Event{
		Type:            t,
		UserUID:         u.UID,
		Email:           u.Email,
		DisplayName:     u.DisplayName,
		TrialsRemaining: u.TrialsRemaining,
		OccurredAt:      now,
	}
}
