package bot

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueue_FIFO(t *testing.T) {
	q := newEventQueue()
	for _, text := range []string{"a", "b", "c"} {
		require.True(t, q.Enqueue(TextMessage{Text: text}))
	}
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"a", "b", "c"} {
		ev, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, ev.(TextMessage).Text)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestEventQueue_SignalCoalesces(t *testing.T) {
	q := newEventQueue()
	q.Enqueue(TextMessage{Text: "a"})
	q.Enqueue(TextMessage{Text: "b"})

	select {
	case <-q.Wait():
	case <-time.After(time.Second):
		t.Fatal("expected a signal")
	}

	select {
	case <-q.Wait():
		t.Fatal("signals should coalesce into one")
	default:
	}
}

func TestEventQueue_Close(t *testing.T) {
	q := newEventQueue()
	q.Enqueue(TextMessage{Text: "kept"})
	q.Close()
	q.Close()

	assert.False(t, q.Enqueue(TextMessage{Text: "rejected"}))

	_, open := <-q.Wait()
	assert.False(t, open, "wait channel closed")

	ev, ok := q.TryDequeue()
	require.True(t, ok, "events queued before close are kept")
	assert.Equal(t, "kept", ev.(TextMessage).Text)
}

func TestEventQueue_ConcurrentEnqueue(t *testing.T) {
	q := newEventQueue()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Enqueue(TextMessage{})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, q.Len())
}
