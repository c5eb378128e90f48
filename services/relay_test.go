package services

import (
	"encoding/json"
	"testing"
)

func TestMessageRelay_DeliversToOtherMembersOnly(t *testing.T) {
	rooms := NewRoomRouter()
	relay := NewMessageRelay(rooms, testLogger())

	a := newTestConn()
	b := newTestConn()
	rooms.Join(a, "m1")
	rooms.Join(b, "m1")

	relay.RelayMessage("m1", json.RawMessage(`{"_id":"x1","text":"hi"}`), "A", a.ID)

	if got := len(drain(a)); got != 0 {
		t.Errorf("sender received %d frames, want 0", got)
	}

	frames := drain(b)
	if len(frames) != 2 {
		t.Fatalf("recipient received %d frames, want 2 (message + delivered status)", len(frames))
	}

	event, data := decodeFrame(t, frames[0])
	if event != "receive_message" {
		t.Errorf("first event = %s, want receive_message", event)
	}
	if data["senderId"] != "A" || data["text"] != "hi" {
		t.Errorf("message data = %v, want senderId=A text=hi", data)
	}
	if ts, _ := data["timestamp"].(string); ts == "" {
		t.Error("message has no server timestamp")
	}

	event, data = decodeFrame(t, frames[1])
	if event != "message_status" {
		t.Errorf("second event = %s, want message_status", event)
	}
	if data["messageId"] != "x1" || data["status"] != "delivered" {
		t.Errorf("status data = %v, want messageId=x1 status=delivered", data)
	}
	if _, ok := data["readBy"]; ok {
		t.Error("delivered status carries readBy, want omitted")
	}
}

func TestMessageRelay_EmptyRoomSilentlyDrops(t *testing.T) {
	rooms := NewRoomRouter()
	relay := NewMessageRelay(rooms, testLogger())

	a := newTestConn()
	rooms.Join(a, "m1")

	// Only the sender is in the room: zero deliveries, no error.
	relay.RelayMessage("m1", json.RawMessage(`{"_id":"x1","text":"hi"}`), "A", a.ID)

	if got := len(drain(a)); got != 0 {
		t.Errorf("sender received %d frames, want 0", got)
	}
}

func TestMessageRelay_MalformedMessageDropped(t *testing.T) {
	rooms := NewRoomRouter()
	relay := NewMessageRelay(rooms, testLogger())

	a := newTestConn()
	b := newTestConn()
	rooms.Join(a, "m1")
	rooms.Join(b, "m1")

	relay.RelayMessage("m1", json.RawMessage(`"not an object"`), "A", a.ID)

	if got := len(drain(b)); got != 0 {
		t.Errorf("recipient received %d frames for malformed message, want 0", got)
	}
}

func TestMessageRelay_ReadReceipt(t *testing.T) {
	rooms := NewRoomRouter()
	relay := NewMessageRelay(rooms, testLogger())

	a := newTestConn()
	b := newTestConn()
	rooms.Join(a, "m1")
	rooms.Join(b, "m1")

	relay.RelayReadReceipt("m1", "x1", "B", b.ID)

	if got := len(drain(b)); got != 0 {
		t.Errorf("reader received %d frames, want 0 (no echo)", got)
	}

	frames := drain(a)
	if len(frames) != 1 {
		t.Fatalf("sender received %d frames, want 1", len(frames))
	}
	event, data := decodeFrame(t, frames[0])
	if event != "message_status" {
		t.Errorf("event = %s, want message_status", event)
	}
	if data["messageId"] != "x1" || data["status"] != "read" || data["readBy"] != "B" {
		t.Errorf("status data = %v, want messageId=x1 status=read readBy=B", data)
	}
}

func TestTypingTracker_BroadcastsWithoutAutoClear(t *testing.T) {
	rooms := NewRoomRouter()
	typing := NewTypingTracker(rooms, testLogger())

	a := newTestConn()
	b := newTestConn()
	rooms.Join(a, "m1")
	rooms.Join(b, "m1")

	typing.SetTyping("m1", "A", true, a.ID)

	if got := len(drain(a)); got != 0 {
		t.Errorf("typist received %d frames, want 0", got)
	}

	frames := drain(b)
	if len(frames) != 1 {
		t.Fatalf("other member received %d frames, want 1", len(frames))
	}
	event, data := decodeFrame(t, frames[0])
	if event != "user_typing" {
		t.Errorf("event = %s, want user_typing", event)
	}
	if data["userId"] != "A" || data["typing"] != true {
		t.Errorf("data = %v, want userId=A typing=true", data)
	}

	// No typing_stop was sent, and none is synthesized: the last
	// observed state stands until the client clears it.
	if got := len(drain(b)); got != 0 {
		t.Errorf("received %d unsolicited frames after typing_start, want 0", got)
	}
}

func TestTypingTracker_TypingStop(t *testing.T) {
	rooms := NewRoomRouter()
	typing := NewTypingTracker(rooms, testLogger())

	a := newTestConn()
	b := newTestConn()
	rooms.Join(a, "m1")
	rooms.Join(b, "m1")

	typing.SetTyping("m1", "A", false, a.ID)

	frames := drain(b)
	if len(frames) != 1 {
		t.Fatalf("other member received %d frames, want 1", len(frames))
	}
	_, data := decodeFrame(t, frames[0])
	if data["typing"] != false {
		t.Errorf("typing = %v, want false", data["typing"])
	}
}
