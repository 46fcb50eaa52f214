package rabbitmq

import "github.com/magabrotheeeer/billing-admin/internal/models"

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// BillingQueues возвращает очереди, которые объявляются вместе с обменником billing.
func BillingQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "billing.reminders", RoutingKey: models.EventClientDueSoon},
		{QueueName: "billing.audit.clients.created", RoutingKey: models.EventClientCreated},
		{QueueName: "billing.audit.clients.updated", RoutingKey: models.EventClientUpdated},
		{QueueName: "billing.audit.clients.deleted", RoutingKey: models.EventClientDeleted},
		{QueueName: "billing.audit.clients.renewed", RoutingKey: models.EventClientRenewed},
		{QueueName: "billing.audit.clients.reactivated", RoutingKey: models.EventClientReactivated},
		{QueueName: "billing.audit.payments.appended", RoutingKey: models.EventPaymentAppended},
		{QueueName: "billing.audit.payments.edited", RoutingKey: models.EventPaymentEdited},
		{QueueName: "billing.audit.payments.deleted", RoutingKey: models.EventPaymentDeleted},
	}
}
