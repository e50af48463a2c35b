package rabbitmq

import (
	"errors"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEventQueues(t *testing.T) {
	queues := GetEventQueues()

	require.Len(t, queues, 2)

	seen := map[string]bool{}
	for _, q := range queues {
		assert.Equal(t, RoutingFeedbackTranslated, q.RoutingKey)
		assert.Falsef(t, seen[q.QueueName], "duplicate queue name: %s", q.QueueName)
		seen[q.QueueName] = true
	}
	assert.True(t, seen[QueueUsageRecord])
	assert.True(t, seen[QueueNotificationDigest])
}

type fakeTopology struct {
	exchanges []string
	queues    []string
	bindings  map[string]string
	bindErr   error
}

func (f *fakeTopology) Qos(int, int, bool) error { return nil }

func (f *fakeTopology) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	f.exchanges = append(f.exchanges, name+":"+kind)
	return nil
}

func (f *fakeTopology) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	f.queues = append(f.queues, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeTopology) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	if f.bindErr != nil {
		return f.bindErr
	}
	if f.bindings == nil {
		f.bindings = map[string]string{}
	}
	f.bindings[name] = exchange + "/" + key
	return nil
}

func TestDeclare(t *testing.T) {
	t.Run("declares exchange and binds queues", func(t *testing.T) {
		topo := &fakeTopology{}

		require.NoError(t, Declare(topo, ExchangeEvents, GetEventQueues()))

		assert.Equal(t, []string{ExchangeEvents + ":direct"}, topo.exchanges)
		assert.ElementsMatch(t, []string{QueueUsageRecord, QueueNotificationDigest}, topo.queues)
		assert.Equal(t, ExchangeEvents+"/"+RoutingFeedbackTranslated, topo.bindings[QueueUsageRecord])
	})

	t.Run("bind error is wrapped with queue name", func(t *testing.T) {
		topo := &fakeTopology{bindErr: errors.New("boom")}

		err := Declare(topo, ExchangeEvents, GetEventQueues())
		require.Error(t, err)
		assert.Contains(t, err.Error(), QueueUsageRecord)
	})
}
