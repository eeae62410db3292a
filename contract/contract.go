//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-sync/domain"
	"chat-sync/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
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

// SnapshotHandler is invoked serially for every change of the remote log.
type SnapshotHandler func(snapshot domain.Snapshot)

// Subscription is the token of a standing remote subscription.
// Unsubscribe must be safe to call more than once.
type Subscription interface {
	Unsubscribe()
}

// RemoteLog abstracts the hosted ordered log and its binary storage.
// Every successful Append eventually shows up in exactly one snapshot.
type RemoteLog interface {
	Subscribe(ctx context.Context, orderKey string, handler SnapshotHandler) (Subscription, error)
	Append(ctx context.Context, entry domain.Entry) (string, error)
	UploadBinary(ctx context.Context, blob domain.Blob) (string, error)
}

// CacheStore keeps the last known list on the device.
// Save never fails visibly, Load returns an empty list when nothing usable is stored.
type CacheStore interface {
	Save(list domain.MessageList)
	Load() domain.MessageList
}

type SessionProvider interface {
	ResolveIdentity(ctx context.Context) (string, error)
}

// BinarySource reads a local binary designated by an opaque device reference.
type BinarySource interface {
	Open(ctx context.Context, ref string) (domain.Blob, error)
}

type ViewSink interface {
	Consume(ctx context.Context, e event.ViewEvent) error
}
