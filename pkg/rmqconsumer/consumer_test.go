package rmqconsumer

import (
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"file-storage-api/config"
	"file-storage-api/internal/infrastructure/mq"
)

func Test_delivery_Table(t *testing.T) {
	cases := []struct {
		name       string
		routingKey string
		body       string
		wantErr    error
		wantFields map[string]any
	}{
		{
			name:       "file uploaded",
			routingKey: mq.ActionFileUploaded,
			body:       `{"event_id":"7d1a0b5e-3c4f-4a8e-9f0a-2b6f1c0d9e11","event_action":"file.uploaded","user_id":1,"file_id":5,"payload":{"original_name":"a.txt"}}`,
			wantFields: map[string]any{"action": mq.ActionFileUploaded, "user_id": int64(1), "file_id": int64(5)},
		},
		{
			name:       "user deleted has no file",
			routingKey: mq.ActionUserDeleted,
			body:       `{"event_id":"7d1a0b5e-3c4f-4a8e-9f0a-2b6f1c0d9e12","event_action":"user.deleted","user_id":3}`,
			wantFields: map[string]any{"action": mq.ActionUserDeleted, "user_id": int64(3)},
		},
		{
			name:       "unknown routing key",
			routingKey: "PATCH",
			body:       `{}`,
			wantErr:    ErrUnknownAction,
		},
		{
			name:       "broken body",
			routingKey: mq.ActionFileDeleted,
			body:       `{"event_id":`,
		},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			c := New(config.MQ{}, zap.New(core), nil)

			err := c.delivery(amqp091.Delivery{RoutingKey: tt.routingKey, Body: []byte(tt.body)})
			if tt.wantFields == nil {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				assert.Zero(t, logs.Len())
				return
			}

			require.NoError(t, err)
			require.Equal(t, 1, logs.Len())
			ctx := logs.All()[0].ContextMap()
			for k, v := range tt.wantFields {
				assert.Equal(t, v, ctx[k], k)
			}
			if _, ok := tt.wantFields["file_id"]; !ok {
				assert.NotContains(t, ctx, "file_id")
			}
		})
	}
}

func TestConnect_InvalidDSN(t *testing.T) {
	c := New(config.MQ{}, zap.NewNop(), nil)

	err := c.Connect("amqp://bad:://dsn")
	require.Error(t, err)
	require.Nil(t, c.chConsume)
	require.Nil(t, c.conn)
}
