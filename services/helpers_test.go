package services

import (
	"encoding/json"
	"testing"

	"github.com/DRafi2006/FOUND/models"
	"github.com/DRafi2006/FOUND/utils"
)

func newTestConn() *Connection {
	// No socket and no write pump: frames queue on the send channel
	// where the test can read them back.
	return NewConnection(nil, 16)
}

func testLogger() *utils.Logger {
	return utils.NewLogger()
}

// drain collects every frame currently queued on a connection.
func drain(c *Connection) [][]byte {
	var out [][]byte
	for {
		select {
		case payload := <-c.send:
			out = append(out, payload)
		default:
			return out
		}
	}
}

// decodeFrame unwraps an outbound frame into its event name and payload.
func decodeFrame(t *testing.T, payload []byte) (string, map[string]interface{}) {
	t.Helper()

	var frame models.Frame
	if err := json.Unmarshal(payload, &frame); err != nil {
		t.Fatalf("failed to decode frame: %v", err)
	}
	var data map[string]interface{}
	if err := json.Unmarshal(frame.Data, &data); err != nil {
		t.Fatalf("failed to decode frame data: %v", err)
	}
	return frame.Event, data
}
