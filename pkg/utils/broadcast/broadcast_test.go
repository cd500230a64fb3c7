package broadcast_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heilmeiera/time-discrete-race-simulator/pkg/utils/broadcast"
)

func TestBroadcastFanOut(t *testing.T) {
	source := make(chan int)
	srv := broadcast.NewBroadcastServer("test", source)
	defer srv.Close()

	first := srv.Subscribe()
	second := srv.Subscribe()

	go func() { source <- 42 }()

	assert.Equal(t, 42, <-first)
	assert.Equal(t, 42, <-second)
}

func TestBroadcastCancelSubscription(t *testing.T) {
	source := make(chan int)
	srv := broadcast.NewBroadcastServer("test", source)
	defer srv.Close()

	ch := srv.Subscribe()
	srv.CancelSubscription(ch)

	select {
	case _, open := <-ch:
		require.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("channel was not closed")
	}
}

func TestBroadcastSkipsSlowListener(t *testing.T) {
	source := make(chan int)
	srv := broadcast.NewBroadcastServer("test", source,
		broadcast.WithSendTimeout[int](time.Millisecond))
	defer srv.Close()

	fast := srv.Subscribe()
	srv.Subscribe() // never read

	done := make(chan struct{})
	go func() {
		source <- 1
		source <- 2
		close(done)
	}()

	assert.Equal(t, 1, <-fast)
	assert.Equal(t, 2, <-fast)
	<-done
}
