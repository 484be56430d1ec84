package websocket

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/ikkim/kicks-storefront/internal/cart"
	"github.com/ikkim/kicks-storefront/internal/events"
	"github.com/ikkim/kicks-storefront/internal/storage"
	"github.com/ikkim/kicks-storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func setupHub(t *testing.T) (*Hub, *cart.Registry) {
	t.Helper()

	backend := storage.NewMemoryBackend()
	persister := cart.NewPersister(backend, time.Second)
	t.Cleanup(persister.Close)

	registry := cart.NewRegistry(backend, persister, "kicks_cart", cart.Options{
		Logger: logger.New(io.Discard),
	})

	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	return hub, registry
}

func newTestClient(hub *Hub, sess *cart.Session) *Client {
	return &Client{Hub: hub, Session: sess, Send: make(chan []byte, sendBufferSize)}
}

func receive(t *testing.T, client *Client) ServerMessage {
	t.Helper()
	select {
	case data, ok := <-client.Send:
		require.True(t, ok, "send channel closed")
		var msg ServerMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return ServerMessage{}
	}
}

func TestHub_RegisterSendsCurrentCart(t *testing.T) {
	hub, registry := setupHub(t)
	sess := registry.Open(context.Background(), "scope-a")
	sess.Store.AddToCart(cart.Product{ID: 1, Title: "Runner", Price: 120}, "42", "green", 2)

	client := newTestClient(hub, sess)
	hub.Register(client)

	msg := receive(t, client)
	assert.Equal(t, TypeCartUpdated, msg.Type)
	require.NotNil(t, msg.Badge)
	require.NotNil(t, msg.Badge.Count)
	assert.Equal(t, 2, *msg.Badge.Count)
	require.NotNil(t, msg.Summary)
	assert.Equal(t, "$240.00", msg.Summary.TotalLabel)
}

func TestHub_RelaysStoreChangesAndOpenRequests(t *testing.T) {
	hub, registry := setupHub(t)
	sess := registry.Open(context.Background(), "scope-a")

	client := newTestClient(hub, sess)
	hub.Register(client)
	receive(t, client)

	sess.Store.AddToCart(cart.Product{ID: 7, Title: "Trail", Price: 99.5}, "", "", 1)
	msg := receive(t, client)
	assert.Equal(t, TypeCartUpdated, msg.Type)
	assert.Equal(t, 1, *msg.Badge.Count)

	assert.Equal(t, 1, sess.Events.Publish(events.TopicOpenCart))
	msg = receive(t, client)
	assert.Equal(t, TypeCartOpen, msg.Type)
}

func TestHub_ScopesAreIsolated(t *testing.T) {
	hub, registry := setupHub(t)
	a := registry.Open(context.Background(), "scope-a")
	b := registry.Open(context.Background(), "scope-b")

	clientA := newTestClient(hub, a)
	clientB := newTestClient(hub, b)
	hub.Register(clientA)
	hub.Register(clientB)
	receive(t, clientA)
	receive(t, clientB)

	a.Store.AddToCart(cart.Product{ID: 1, Price: 10}, "", "", 1)
	receive(t, clientA)

	select {
	case data := <-clientB.Send:
		t.Fatalf("scope-b received %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_UnregisterStopsWatching(t *testing.T) {
	hub, registry := setupHub(t)
	sess := registry.Open(context.Background(), "scope-a")

	first := newTestClient(hub, sess)
	second := newTestClient(hub, sess)
	hub.Register(first)
	hub.Register(second)
	receive(t, first)
	receive(t, second)

	assert.Equal(t, 1, sess.Store.Subscribers())
	assert.Equal(t, 1, sess.Events.Subscribers(events.TopicOpenCart))

	hub.Unregister(first)
	assert.Eventually(t, func() bool { return hub.Connections("scope-a") == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, sess.Store.Subscribers())

	hub.Unregister(second)
	assert.Eventually(t, func() bool { return hub.Connections("scope-a") == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, sess.Store.Subscribers())
	assert.Equal(t, 0, sess.Events.Subscribers(events.TopicOpenCart))

	_, ok := <-first.Send
	assert.False(t, ok)
}

func TestHub_HandleClientMessage(t *testing.T) {
	hub, registry := setupHub(t)
	sess := registry.Open(context.Background(), "scope-a")

	client := newTestClient(hub, sess)
	hub.Register(client)
	receive(t, client)

	hub.HandleClientMessage(client, []byte(`{"type":"ping"}`))
	assert.Equal(t, TypePong, receive(t, client).Type)

	hub.HandleClientMessage(client, []byte(`{"type":"open_cart"}`))
	assert.Equal(t, TypeCartOpen, receive(t, client).Type)

	// malformed and unknown messages are ignored
	hub.HandleClientMessage(client, []byte(`not json`))
	hub.HandleClientMessage(client, []byte(`{"type":"dance"}`))
	select {
	case data := <-client.Send:
		t.Fatalf("unexpected message %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_RateLimit(t *testing.T) {
	hub, registry := setupHub(t)
	sess := registry.Open(context.Background(), "scope-a")

	client := newTestClient(hub, sess)
	hub.Register(client)
	receive(t, client)

	for i := 0; i < maxMessagesPerSecond+5; i++ {
		hub.HandleClientMessage(client, []byte(`{"type":"ping"}`))
	}

	pongs := 0
	for {
		select {
		case <-client.Send:
			pongs++
			continue
		case <-time.After(100 * time.Millisecond):
		}
		break
	}
	assert.Equal(t, maxMessagesPerSecond, pongs)
}
