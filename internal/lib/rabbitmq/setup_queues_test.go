package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/billing-admin/internal/models"
)

func TestBillingQueues(t *testing.T) {
	queues := BillingQueues()

	require.NotEmpty(t, queues, "queues list should not be empty")

	first := queues[0]
	assert.Equal(t, "billing.reminders", first.QueueName)
	assert.Equal(t, models.EventClientDueSoon, first.RoutingKey)

	seenQueue := map[string]bool{}
	seenKey := map[string]bool{}
	for _, q := range queues {
		assert.Falsef(t, seenQueue[q.QueueName], "duplicate queue name: %s", q.QueueName)
		assert.Falsef(t, seenKey[q.RoutingKey], "duplicate routing key: %s", q.RoutingKey)
		seenQueue[q.QueueName] = true
		seenKey[q.RoutingKey] = true
	}
}
