package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_DeliversToClientOnly(t *testing.T) {
	n := NewNotifier(4)

	a, unsubA := n.Subscribe("a")
	defer unsubA()
	b, unsubB := n.Subscribe("b")
	defer unsubB()

	n.Notify(Change{Client: "a", Collection: "cart", Version: 2})

	require.Len(t, a, 1)
	assert.Equal(t, int64(2), (<-a).Version)
	assert.Len(t, b, 0)
}

func TestNotifier_UnsubscribeClosesChannel(t *testing.T) {
	n := NewNotifier(1)

	ch, unsubscribe := n.Subscribe("a")
	assert.Equal(t, 1, n.Subscribers("a"))

	unsubscribe()
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, n.Subscribers("a"))

	// Notifying after everyone left is harmless.
	n.Notify(Change{Client: "a"})
}

func TestNotifier_SlowSubscriberDoesNotBlock(t *testing.T) {
	n := NewNotifier(1)
	ch, unsubscribe := n.Subscribe("a")
	defer unsubscribe()

	for v := int64(1); v <= 5; v++ {
		n.Notify(Change{Client: "a", Version: v})
	}

	require.Len(t, ch, 1)
	assert.Equal(t, int64(1), (<-ch).Version)
}

func TestNotifier_ConcurrentUse(t *testing.T) {
	n := NewNotifier(0)
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, unsubscribe := n.Subscribe("a")
			unsubscribe()
		}()
		go func() {
			defer wg.Done()
			n.Notify(Change{Client: "a"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, n.Subscribers("a"))
}

func TestKeyedMutex_ReleasesKeys(t *testing.T) {
	k := newKeyedMutex()

	unlock := k.Lock("x")
	assert.Equal(t, 1, k.size())
	unlock()
	assert.Equal(t, 0, k.size())
}

func TestNotifier_CloseEndsSubscriptions(t *testing.T) {
	n := NewNotifier(1)
	a, unsubA := n.Subscribe("a")
	b, unsubB := n.Subscribe("b")

	n.Close()
	n.Close()

	_, open := <-a
	assert.False(t, open)
	_, open = <-b
	assert.False(t, open)
	assert.Equal(t, 0, n.Subscribers("a"))

	// Unsubscribing after Close must not close the channel twice.
	unsubA()
	unsubB()

	late, unsubLate := n.Subscribe("a")
	defer unsubLate()
	_, open = <-late
	assert.False(t, open)
	assert.Equal(t, 0, n.Subscribers("a"))

	n.Notify(Change{Client: "a"})
}
