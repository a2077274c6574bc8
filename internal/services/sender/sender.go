// Package services содержит отправку писем по событиям доступа.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/crimewatch/internal/lib/sl"
	"github.com/magabrotheeeer/crimewatch/internal/lib/smtp"
	"github.com/magabrotheeeer/crimewatch/internal/models"
)

// PricingURL страница тарифов, на которую ведут письма об окончании пробного периода.
const PricingURL = "https://crimewatch.app/pricing"

// SenderService отправляет письма по событиям из брокера.
type SenderService struct {
	dialer smtp.Dialer
	log    *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, dialer smtp.Dialer) *SenderService {
	return &SenderService{
		dialer: dialer,
		log:    log,
	}
}

// HandleEvent разбирает событие и отправляет соответствующее письмо.
// События без письма (например, trial.consumed) подтверждаются без отправки.
func (s *SenderService) HandleEvent(ctx context.Context, body []byte) error {
	const op = "services.SenderService.HandleEvent"
	log := s.log.With(slog.String("op", op))

	var event models.Event
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w", op, err)
	}
	if event.Email == "" {
		log.Warn("event without recipient, skipping", slog.String("type", string(event.Type)), slog.String("user_uid", event.UserUID))
		return nil
	}

	subject, text, ok := composeEmail(event)
	if !ok {
		log.Debug("no email for event", slog.String("type", string(event.Type)), slog.String("user_uid", event.UserUID))
		return nil
	}
	log = log.With(slog.String("type", string(event.Type)), slog.String("user_uid", event.UserUID))

	msg := smtp.Message{
		From:    s.dialer.From(),
		To:      []string{event.Email},
		Subject: subject,
		Body:    text,
	}
	if err := smtp.Send(ctx, s.dialer, msg); err != nil {
		log.Error("failed to send email", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("email sent", slog.String("subject", subject))
	return nil
}

func greeting(e models.Event) string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return e.Email
}

func composeEmail(e models.Event) (subject, text string, ok bool) {
	switch e.Type {
	case models.EventTrialExhausted:
		return "Your CrimeWatch trial has ended",
			fmt.Sprintf("Hello, %s!\n\nYou have used all of your free dashboard trials.\n"+
				"Choose a plan to keep exploring crime statistics: %s\n", greeting(e), PricingURL), true
	case models.EventTrialExpiring:
		return "Your CrimeWatch trial window ends today",
			fmt.Sprintf("Hello, %s!\n\nYour trial window ends today and you still have %d trial use(s) left.\n"+
				"Plans are available at %s\n", greeting(e), e.TrialsRemaining, PricingURL), true
	case models.EventSubscriptionActivated:
		expiry := "no expiry date"
		if e.ExpiryDate != nil {
			expiry = "valid until " + e.ExpiryDate.Format("02 Jan 2006")
		}
		return "Your CrimeWatch subscription is active",
			fmt.Sprintf("Hello, %s!\n\nThank you for subscribing. Plan %s is now active, %s.\n",
				greeting(e), e.Plan, expiry), true
	case models.EventSubscriptionExpiring:
		return "Your CrimeWatch subscription expires tomorrow",
			fmt.Sprintf("Hello, %s!\n\nYour subscription (%s) expires tomorrow.\n"+
				"Renew it to keep access to the dashboard: %s\n", greeting(e), e.Plan, PricingURL), true
	case models.EventPremiumChanged:
		if e.Premium != nil && *e.Premium {
			return "Premium access granted",
				fmt.Sprintf("Hello, %s!\n\nAn administrator has granted you premium access to CrimeWatch.\n", greeting(e)), true
		}
		return "Premium access revoked",
			fmt.Sprintf("Hello, %s!\n\nYour premium access to CrimeWatch has been revoked.\n", greeting(e)), true
	default:
		return "", "", false
	}
}
