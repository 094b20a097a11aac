package events

import (
	"testing"
	"time"

	"github.com/Merlinthewizord/Scintara/internal/model"
	"github.com/Merlinthewizord/Scintara/pkg/logger"
)

func TestConnectWithoutURL(t *testing.T) {
	t.Parallel()

	pub, err := Connect(Config{}, logger.NewNop())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if pub != nil {
		t.Fatalf("pub=%v, want nil without URL", pub)
	}
}

func TestNilPublisherIsSafe(t *testing.T) {
	t.Parallel()

	var pub *Publisher
	pub.RecordCreated(&model.ConversationRecord{
		ID:        "abc",
		CreatedAt: time.Now(),
		Preview:   "hello",
	})
	pub.RecordCreated(nil)
	pub.Close()
}
