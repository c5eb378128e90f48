package services

import (
	"sync"
	"testing"
)

func TestConnection_SendAfterCloseDropsFrame(t *testing.T) {
	c := newTestConn()
	c.Close()

	if c.Send([]byte(`{"event":"x"}`)) {
		t.Error("Send after Close = true, want false")
	}
}

func TestConnection_CloseIsIdempotent(t *testing.T) {
	c := newTestConn()
	c.Close()
	c.Close()
}

func TestConnection_ConcurrentSendAndClose(t *testing.T) {
	// Broadcasters hold connection snapshots taken before a disconnect;
	// their sends must drop cleanly while the connection tears down.
	for i := 0; i < 100; i++ {
		c := newTestConn()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Send([]byte(`x`))
		}()
		go func() {
			defer wg.Done()
			c.Close()
		}()
		wg.Wait()
	}
}
