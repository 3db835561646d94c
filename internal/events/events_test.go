package events

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	var r Recorder
	require.NoError(t, r.Publish(context.Background(), TopicOrderCreated, "O1", OrderCreatedEvent{OrderId: "O1"}))
	require.NoError(t, r.Publish(context.Background(), TopicOrderCancelled, "O1", OrderCancelledEvent{OrderId: "O1"}))

	assert.Equal(t, []string{TopicOrderCreated, TopicOrderCancelled}, r.Topics())
	msgs := r.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "O1", msgs[0].Payload.(OrderCreatedEvent).OrderId)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := LogPublisher{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	err := p.Publish(context.Background(), TopicListingToggled, "P1", ListingToggledEvent{ProductId: "P1", Active: true, By: "bob"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"topic":"listing-toggled"`)
	assert.Contains(t, buf.String(), `\"product_id\":\"P1\"`)
}
