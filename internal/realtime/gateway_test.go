package realtime

import (
	"testing"
	"time"
)

func TestPingLoopStopsWhenReaderExits(t *testing.T) {
	g := NewGateway(NewHub(nil), nil)
	done := make(chan struct{})
	close(done)

	finished := make(chan struct{})
	go func() {
		g.pingLoop("tenant-1", "conn-1", nil, done)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("ping loop kept running after the reader closed the connection")
	}
}
