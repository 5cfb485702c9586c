package ws

import (
	"encoding/json"
	"testing"
)

func testClient(profileID string) *Client {
	return &Client{ProfileID: profileID, send: make(chan []byte, 4)}
}

func recvFrame(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case b := <-c.send:
		var m map[string]interface{}
		if err := json.Unmarshal(b, &m); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		return m
	default:
		t.Fatal("no frame queued")
		return nil
	}
}

func TestBroadcastToChatReachesRoomMembers(t *testing.T) {
	hub := NewHub()
	a, b, outsider := testClient("alice"), testClient("bob"), testClient("carol")
	hub.Register(a)
	hub.Register(b)
	hub.Register(outsider)
	hub.Join("c1", a)
	hub.Join("c1", b)

	hub.BroadcastToChat("c1", map[string]string{"type": "message.sent", "chat_id": "c1"})

	for _, c := range []*Client{a, b} {
		frame := recvFrame(t, c)
		if frame["type"] != "message.sent" {
			t.Fatalf("frame = %v", frame)
		}
	}
	select {
	case <-outsider.send:
		t.Fatal("outsider received a room broadcast")
	default:
	}
}

func TestLeaveStopsDelivery(t *testing.T) {
	hub := NewHub()
	a := testClient("alice")
	hub.Register(a)
	hub.Join("c1", a)
	hub.Leave("c1", a)

	hub.BroadcastToChat("c1", map[string]string{"type": "message.sent"})
	select {
	case <-a.send:
		t.Fatal("client received after leaving the room")
	default:
	}
}

func TestSendToProfileHitsAllConnections(t *testing.T) {
	hub := NewHub()
	phone, laptop := testClient("alice"), testClient("alice")
	hub.Register(phone)
	hub.Register(laptop)

	hub.SendToProfile("alice", map[string]string{"type": "chat.read"})

	if recvFrame(t, phone)["type"] != "chat.read" {
		t.Fatal("phone missed the frame")
	}
	if recvFrame(t, laptop)["type"] != "chat.read" {
		t.Fatal("laptop missed the frame")
	}
}

func TestUnregisterRemovesFromRooms(t *testing.T) {
	hub := NewHub()
	a := testClient("alice")
	hub.Register(a)
	hub.Join("c1", a)
	hub.Unregister(a)

	hub.BroadcastToChat("c1", map[string]string{"type": "message.sent"})
	if _, open := <-a.send; open {
		t.Fatal("send channel should be closed and drained after unregister")
	}

	// a second unregister must not panic on the closed channel
	hub.Unregister(a)
}

func TestSlowClientDoesNotBlockBroadcast(t *testing.T) {
	hub := NewHub()
	slow := &Client{ProfileID: "slow", send: make(chan []byte)} // unbuffered, nobody reading
	fast := testClient("fast")
	hub.Register(slow)
	hub.Register(fast)
	hub.Join("c1", slow)
	hub.Join("c1", fast)

	done := make(chan struct{})
	go func() {
		hub.BroadcastToChat("c1", map[string]string{"type": "message.sent"})
		close(done)
	}()
	<-done

	if recvFrame(t, fast)["type"] != "message.sent" {
		t.Fatal("fast client missed the frame")
	}
}
