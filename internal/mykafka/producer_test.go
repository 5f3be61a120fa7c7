package mykafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	t.Parallel()

	ownerID := uint(3)
	ev, err := NewEvent(ProductCreated, ProductPayload{ID: 1, Title: "Shoe", Price: 9.5, Public: true, OwnerID: &ownerID})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, ProductCreated, ev.Type)
	assert.False(t, ev.OccurredAt.IsZero())

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "product_created", decoded["type"])
	payload := decoded["payload"].(map[string]any)
	assert.Equal(t, "Shoe", payload["title"])
	assert.EqualValues(t, 3, payload["owner_id"])
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	t.Parallel()

	_, err := NewProducer(nil)
	assert.Error(t, err)

	p, err := NewProducer([]string{"localhost:9092"})
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestNoop(t *testing.T) {
	t.Parallel()

	var pub Publisher = Noop{}
	assert.NoError(t, pub.PublishEvent(context.Background(), TopicUserEvents, "1", struct{}{}))
}
