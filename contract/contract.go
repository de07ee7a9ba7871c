//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"moonhall/domain"
	"moonhall/domain/event"
)

// Worker doesn't protect itself.
// Can be silly, focused. Supervision lives elsewhere.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker
// interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink consumes domain events fanned out by the runtime. A sink
// returning an error only affects itself; the fan-out keeps going.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// FollowerRegistry answers "who wants to hear about this topic". Two
// strategies exist behind this interface: a full scan of user records and
// a maintained reverse index. Correctness tests are written against the
// interface so the strategies stay swappable.
type FollowerRegistry interface {
	Follow(ctx context.Context, userID string, topic domain.FollowedTopic) error
	Unfollow(ctx context.Context, userID, topicID string) error
	IsFollowing(ctx context.Context, userID, topicID string) (bool, error)
	FollowersOf(ctx context.Context, topicID string) ([]string, error)
}
