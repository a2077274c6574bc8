package rabbitmq

import "github.com/magabrotheeeer/crimewatch/internal/models"

const (
	// QueueAccessEvents получает события, порождённые действиями пользователей и суперадминистратора.
	QueueAccessEvents = "notification.access"
	// QueueReminders получает напоминания планировщика.
	QueueReminders = "notification.reminders"
)

// QueueConfig описывает очередь и ключи маршрутизации, по которым она привязана.
type QueueConfig struct {
	QueueName   string
	RoutingKeys []string
}

// GetNotificationQueues возвращает очереди уведомлений о доступе.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{
			QueueName: QueueAccessEvents,
			RoutingKeys: []string{
				string(models.EventTrialConsumed),
				string(models.EventTrialExhausted),
				string(models.EventSubscriptionActivated),
				string(models.EventPremiumChanged),
			},
		},
		{
			QueueName: QueueReminders,
			RoutingKeys: []string{
				string(models.EventTrialExpiring),
				string(models.EventSubscriptionExpiring),
			},
		},
	}
}
