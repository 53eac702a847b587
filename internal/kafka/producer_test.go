package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProducer_CloseThenCancelShutsDownCleanly(t *testing.T) {
	// urutan shutdown di main: Close() dulu, lalu cancel(). Dua-duanya
	// bisa balapan di select loop; tidak boleh panic double close.
	ctx, cancel := context.WithCancel(context.Background())
	p := NewProducer([]string{"127.0.0.1:1"}, "orders.test", 4)
	p.Start(ctx)

	p.Close()
	cancel()

	done := make(chan struct{})
	go func() {
		p.WaitClosed()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer did not shut down")
	}

	// Close ulang tetap aman
	assert.NotPanics(t, func() { p.Close() })
}

func TestProducer_CancelAloneDrainsAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewProducer([]string{"127.0.0.1:1"}, "orders.test", 4)
	p.Start(ctx)

	cancel()

	done := make(chan struct{})
	go func() {
		p.WaitClosed()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer did not stop after cancel")
	}
}
