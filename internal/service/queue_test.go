package service

import (
	"context"
	"testing"
	"time"

	"iris-go/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameQueueKeepsOnlyLatest(t *testing.T) {
	analyzer := newTestAnalyzer(&countingActuator{}, nil)
	queue := NewFrameQueue(analyzer, nullLogger(), nil)

	assert.False(t, queue.Offer(frameRequest(ts(0), []string{"Dog"})))
	assert.True(t, queue.Offer(frameRequest(ts(1), []string{"Cat"})))
	assert.True(t, queue.Offer(frameRequest(ts(2), []string{"Person"})))
	assert.Equal(t, int64(2), queue.Dropped())

	req := queue.take()
	require.NotNil(t, req)
	assert.Equal(t, "Person", req.Objects[0].Labels[0].Text)
	assert.Nil(t, queue.take())
}

func TestFrameQueueRun(t *testing.T) {
	actuator := &countingActuator{}
	analyzer := newTestAnalyzer(actuator, nil)

	results := make(chan *models.FrameResponse, 4)
	queue := NewFrameQueue(analyzer, nullLogger(), func(resp *models.FrameResponse) {
		results <- resp
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- queue.Run(ctx) }()

	queue.Offer(frameRequest(ts(0), []string{"Bicycle"}))

	select {
	case resp := <-results:
		assert.True(t, resp.Alert)
		assert.Equal(t, "Bicycle", resp.Obstacle)
	case <-time.After(2 * time.Second):
		t.Fatal("frame was not processed")
	}
	assert.Equal(t, int64(1), queue.Processed())
	assert.Equal(t, 1, actuator.Count())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
