package datasync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-gamesync/internal/storage/memory"
	"github.com/goliatone/go-gamesync/pkg/activity"
	"github.com/goliatone/go-gamesync/pkg/clients/documents"
	queueclient "github.com/goliatone/go-gamesync/pkg/clients/queue"
	queueiface "github.com/goliatone/go-gamesync/pkg/interfaces/queue"
	"github.com/goliatone/go-gamesync/pkg/interfaces/store"
	"github.com/goliatone/go-gamesync/pkg/retry"
	"github.com/goliatone/go-gamesync/pkg/secrets"
)

type fakeRecords struct {
	data    map[string]string
	version int
}

func (f *fakeRecords) UpdateUserData(_ context.Context, data map[string]string) (int, error) {
	f.data = data
	return f.version, nil
}

type flakyDocs struct {
	failures int
	upserts  int
	docs     map[string]store.Document
}

func (f *flakyDocs) Upsert(_ context.Context, id string, doc store.Document) store.Document {
	f.upserts++
	if f.failures > 0 {
		f.failures--
		return nil
	}
	if f.docs == nil {
		f.docs = map[string]store.Document{}
	}
	f.docs[id] = doc
	return doc
}

func (f *flakyDocs) Read(_ context.Context, id string) store.Document { return f.docs[id] }

func (f *flakyDocs) Delete(_ context.Context, id string) bool {
	if _, ok := f.docs[id]; !ok {
		return false
	}
	delete(f.docs, id)
	return true
}

func newQueueClient(backing *memory.Queue) *queueclient.Client {
	return queueclient.New(queueclient.Config{Credential: secrets.Credential{Literal: "conn"}}, nil,
		func(context.Context, queueclient.Config, string) (queueiface.Queue, error) { return backing, nil })
}

func newDocumentsClient() *documents.Client {
	return documents.New(documents.Config{ConnectionString: "AccountEndpoint=x;AccountKey=y;"}, nil,
		func(context.Context, documents.Config, string) (store.DocumentStore, error) {
			return memory.NewDocumentStore(), nil
		})
}

func TestSyncPlayerDataWritesRecordAndEnqueues(t *testing.T) {
	backing := memory.NewQueue()
	records := &fakeRecords{version: 3}
	hooks := &activity.Recorder{}
	svc := NewService(records, newQueueClient(backing), WithActivity(hooks))

	ok := svc.SyncPlayerData(context.Background(), "p1", map[string]any{"title": "Knight", "stats": map[string]int{"str": 5}})
	if !ok {
		t.Fatalf("expected sync to succeed")
	}
	if records.data["title"] != "Knight" || records.data["stats"] != `{"str":5}` {
		t.Fatalf("unexpected stringified data %v", records.data)
	}
	if backing.Len() != 1 {
		t.Fatalf("expected one queued operation, got %d", backing.Len())
	}
	msg, _ := backing.Receive(context.Background())
	var op queueclient.PlayerDataOperation
	if err := queueclient.Decode(msg.Body, &op); err != nil || op.Operation != queueclient.OpUpdate || op.PlayerID != "p1" {
		t.Fatalf("unexpected operation %+v %v", op, err)
	}
	if got := hooks.Verbs(); len(got) != 1 || got[0] != activity.VerbDataSynced {
		t.Fatalf("unexpected activity %v", got)
	}
}

func TestSyncPlayerDataStopsWhenRecordWriteFails(t *testing.T) {
	backing := memory.NewQueue()
	svc := NewService(&fakeRecords{version: 0}, newQueueClient(backing))
	if svc.SyncPlayerData(context.Background(), "p1", map[string]any{"a": 1}) {
		t.Fatalf("expected failure")
	}
	if backing.Len() != 0 {
		t.Fatalf("nothing should be queued")
	}
	if svc.SyncPlayerData(context.Background(), "p1", map[string]any{"bad": make(chan int)}) {
		t.Fatalf("expected failure for unserializable value")
	}
}

func TestWorkerAppliesQueuedOperations(t *testing.T) {
	backing := memory.NewQueue()
	qc := newQueueClient(backing)
	ctx := context.Background()
	qc.EnqueuePlayerDataOperation(ctx, queueclient.OpCreate, "p1", map[string]any{"score": 10})
	qc.EnqueuePlayerDataOperation(ctx, queueclient.OpUpdate, "p2", map[string]any{"score": 20})
	qc.EnqueuePlayerDataOperation(ctx, queueclient.OpRead, "p1", nil)
	qc.EnqueuePlayerDataOperation(ctx, queueclient.OpDelete, "p2", nil)

	docs := newDocumentsClient()
	stamp := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	worker := NewWorker(docs, WithConcurrency(1), WithWorkerClock(func() time.Time { return stamp }))

	res, err := worker.Run(ctx, backing)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Processed != 4 || res.Failed != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	doc := docs.Read(ctx, "p1")
	if doc == nil || doc[LastUpdatedField] != "2024-02-02T00:00:00Z" || doc["score"] != float64(10) {
		t.Fatalf("unexpected document %v", doc)
	}
	if docs.Read(ctx, "p2") != nil {
		t.Fatalf("expected p2 deleted")
	}
}

func TestWorkerRetriesTransientFailures(t *testing.T) {
	docs := &flakyDocs{failures: 2}
	worker := NewWorker(docs, WithRetry(3, retry.ExponentialBackoff{Base: time.Microsecond}))
	op := queueclient.PlayerDataOperation{Operation: queueclient.OpUpdate, PlayerID: "p1", Data: map[string]any{"a": "b"}}

	if err := worker.Apply(context.Background(), op); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if docs.upserts != 3 {
		t.Fatalf("expected 3 attempts, got %d", docs.upserts)
	}

	docs = &flakyDocs{failures: 5}
	worker = NewWorker(docs, WithRetry(2, retry.ExponentialBackoff{Base: time.Microsecond}))
	if err := worker.Apply(context.Background(), op); !errors.Is(err, ErrDocumentWrite) {
		t.Fatalf("expected write failure, got %v", err)
	}
}

func TestWorkerRejectsBadMessages(t *testing.T) {
	worker := NewWorker(&flakyDocs{})
	ctx := context.Background()

	if err := worker.Process(ctx, "not base64!"); err == nil {
		t.Fatalf("expected decode error")
	}
	body, _ := queueclient.Encode(queueclient.PlayerDataOperation{Operation: "merge", PlayerID: "p1"})
	if err := worker.Process(ctx, body); !errors.Is(err, ErrUnknownOperation) {
		t.Fatalf("expected unknown operation, got %v", err)
	}
	body, _ = queueclient.Encode(queueclient.PlayerDataOperation{Operation: queueclient.OpDelete})
	if err := worker.Process(ctx, body); !errors.Is(err, ErrMissingPlayer) {
		t.Fatalf("expected missing player, got %v", err)
	}

	backing := memory.NewQueue()
	_ = backing.Enqueue(ctx, queueiface.Message{Body: "garbage"})
	res, err := worker.Run(ctx, backing)
	if err != nil || res.Failed != 1 || res.Processed != 0 {
		t.Fatalf("expected one failed message, got %+v %v", res, err)
	}
}

func TestDeletePlayerDataEnqueues(t *testing.T) {
	backing := memory.NewQueue()
	svc := NewService(&fakeRecords{version: 1}, newQueueClient(backing))
	if !svc.DeletePlayerData(context.Background(), "p9") {
		t.Fatalf("expected enqueue")
	}
	msg, _ := backing.Receive(context.Background())
	var op queueclient.PlayerDataOperation
	_ = queueclient.Decode(msg.Body, &op)
	if op.Operation != queueclient.OpDelete || op.PlayerID != "p9" {
		t.Fatalf("unexpected op %+v", op)
	}
}
