package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type exampleStore struct {
	marked map[string]bool
}

func (s *exampleStore) Get(context.Context, string) (string, error) {
	return "", nil
}

func (s *exampleStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if s.marked[key] {
		return false, nil
	}
	s.marked[key] = true
	return true, nil
}

func (s *exampleStore) IdempotencyKey(scope, id string) string {
	return "gc:idempotency:" + scope + ":" + id
}

func (s *exampleStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.marked, key)
	}
	return nil
}

func ExampleManager_ProcessOnce() {
	ctx := context.Background()
	manager, _ := NewManager(&exampleStore{marked: map[string]bool{}}, 7*24*time.Hour)
	eventID := uuid.MustParse("f47ac10b-58cc-4372-a567-0e02b2c3d479")

	for i := 0; i < 2; i++ {
		skipped, _ := manager.ProcessOnce(ctx, "notification-worker", eventID, func(context.Context) error {
			fmt.Println("notification stored")
			return nil
		})
		if skipped {
			fmt.Println("duplicate delivery skipped")
		}
	}
	// Output:
	// notification stored
	// duplicate delivery skipped
}
