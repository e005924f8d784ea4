package chat

import (
	"encoding/json"
	"testing"
	"time"
)

func TestMessage_JSONShape(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))

	sys := NewSystemMessage("Alice joined the chat", at)
	sys.ID = 1
	data, err := json.Marshal(sys)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"id":1,"type":"system","message":"Alice joined the chat","timestamp":"2024-05-01T11:00:00Z","username":null}`
	if string(data) != want {
		t.Errorf("system message JSON = %s, want %s", data, want)
	}

	msg := NewUserMessage("Alice", "hi", at)
	msg.ID = 2
	data, err = json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want = `{"id":2,"type":"message","message":"hi","timestamp":"2024-05-01T11:00:00Z","username":"Alice"}`
	if string(data) != want {
		t.Errorf("user message JSON = %s, want %s", data, want)
	}
}

func TestMessage_Author(t *testing.T) {
	if got := NewSystemMessage("x", time.Now()).Author(); got != "" {
		t.Errorf("Author() = %q, want empty", got)
	}
	if got := NewUserMessage("Bob", "x", time.Now()).Author(); got != "Bob" {
		t.Errorf("Author() = %q, want Bob", got)
	}
}

func TestLastIDAndSince(t *testing.T) {
	msgs := []Message{{ID: 3}, {ID: 4}, {ID: 7}}

	if got := LastID(msgs); got != 7 {
		t.Errorf("LastID() = %d, want 7", got)
	}
	if got := LastID(nil); got != 0 {
		t.Errorf("LastID(nil) = %d, want 0", got)
	}

	tests := []struct {
		since int64
		want  []int64
	}{
		{0, []int64{3, 4, 7}},
		{3, []int64{4, 7}},
		{5, []int64{7}},
		{7, []int64{}},
		{-10, []int64{3, 4, 7}},
	}
	for _, tt := range tests {
		got := Since(msgs, tt.since)
		if len(got) != len(tt.want) {
			t.Fatalf("Since(%d) len = %d, want %d", tt.since, len(got), len(tt.want))
		}
		for i := range got {
			if got[i].ID != tt.want[i] {
				t.Errorf("Since(%d)[%d].ID = %d, want %d", tt.since, i, got[i].ID, tt.want[i])
			}
		}
	}

	if got := Since(nil, 0); got == nil {
		t.Error("Since(nil) returned nil, want empty slice")
	}
}
