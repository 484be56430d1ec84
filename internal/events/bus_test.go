package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishReachesSubscribers(t *testing.T) {
	bus := NewBus()

	var a, b int
	bus.Subscribe(TopicOpenCart, func() { a++ })
	bus.Subscribe(TopicOpenCart, func() { b++ })

	n := bus.Publish(TopicOpenCart)

	assert.Equal(t, 2, n)
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}

func TestBus_TopicsAreIsolated(t *testing.T) {
	bus := NewBus()

	called := false
	bus.Subscribe("other", func() { called = true })

	assert.Equal(t, 0, bus.Publish(TopicOpenCart))
	assert.False(t, called)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	calls := 0
	unsubscribe := bus.Subscribe(TopicOpenCart, func() { calls++ })
	bus.Publish(TopicOpenCart)

	unsubscribe()
	unsubscribe()
	bus.Publish(TopicOpenCart)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.Subscribers(TopicOpenCart))
}

func TestBus_UnsubscribeKeepsOthers(t *testing.T) {
	bus := NewBus()

	var first, second int
	unsubscribe := bus.Subscribe(TopicOpenCart, func() { first++ })
	bus.Subscribe(TopicOpenCart, func() { second++ })

	unsubscribe()
	bus.Publish(TopicOpenCart)

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestBus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewBus()

	reached := false
	bus.Subscribe(TopicOpenCart, func() { panic("boom") })
	bus.Subscribe(TopicOpenCart, func() { reached = true })

	assert.NotPanics(t, func() { bus.Publish(TopicOpenCart) })
	assert.True(t, reached)
}
