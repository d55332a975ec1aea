package datasync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-gamesync/pkg/clients/queue"
	queueiface "github.com/goliatone/go-gamesync/pkg/interfaces/queue"
	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
	"github.com/goliatone/go-gamesync/pkg/interfaces/store"
	"github.com/goliatone/go-gamesync/pkg/retry"
	"golang.org/x/sync/errgroup"
)

// LastUpdatedField is stamped on every upserted player document.
const LastUpdatedField = "_lastUpdated"

var (
	ErrUnknownOperation = errors.New("datasync: unknown operation")
	ErrMissingPlayer    = errors.New("datasync: missing player id")
	ErrDocumentWrite    = errors.New("datasync: document write failed")
)

// Documents is the document store the worker applies operations to. The
// documents client satisfies it.
type Documents interface {
	Upsert(ctx context.Context, id string, doc store.Document) store.Document
	Read(ctx context.Context, id string) store.Document
	Delete(ctx context.Context, id string) bool
}

// Result summarises a Run.
type Result struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// Worker consumes player data operations.
type Worker struct {
	docs        Documents
	logger      logger.Logger
	backoff     retry.Backoff
	attempts    int
	concurrency int
	now         func() time.Time
}

type WorkerOption func(*Worker)

func WithWorkerLogger(lgr logger.Logger) WorkerOption {
	return func(w *Worker) { w.logger = logger.OrNop(lgr) }
}

// WithRetry sets how often a failing operation is attempted.
func WithRetry(attempts int, backoff retry.Backoff) WorkerOption {
	return func(w *Worker) {
		if attempts > 0 {
			w.attempts = attempts
		}
		if backoff != nil {
			w.backoff = backoff
		}
	}
}

func WithConcurrency(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

func WithWorkerClock(now func() time.Time) WorkerOption {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

func NewWorker(docs Documents, opts ...WorkerOption) *Worker {
	w := &Worker{
		docs:        docs,
		logger:      &logger.Nop{},
		backoff:     retry.DefaultBackoff(),
		attempts:    3,
		concurrency: 4,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Process decodes one queue message body and applies it.
func (w *Worker) Process(ctx context.Context, body string) error {
	var op queue.PlayerDataOperation
	if err := queue.Decode(body, &op); err != nil {
		return err
	}
	return w.Apply(ctx, op)
}

// Apply executes op against the document store, retrying transient failures.
func (w *Worker) Apply(ctx context.Context, op queue.PlayerDataOperation) error {
	if !op.Operation.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownOperation, op.Operation)
	}
	if op.PlayerID == "" {
		return ErrMissingPlayer
	}
	lgr := w.logger.With(logger.F("player_id", op.PlayerID), logger.F("operation", string(op.Operation)))
	err := retry.Do(ctx, w.attempts, w.backoff, func(ctx context.Context) error {
		switch op.Operation {
		case queue.OpCreate, queue.OpUpdate:
			doc := store.Document{}
			for k, v := range op.Data {
				doc[k] = v
			}
			doc[store.IDField] = op.PlayerID
			doc[LastUpdatedField] = w.now().UTC().Format(time.RFC3339Nano)
			if w.docs.Upsert(ctx, op.PlayerID, doc) == nil {
				return ErrDocumentWrite
			}
		case queue.OpRead:
			if w.docs.Read(ctx, op.PlayerID) == nil {
				lgr.Debug("player document not available")
			}
		case queue.OpDelete:
			if !w.docs.Delete(ctx, op.PlayerID) {
				return ErrDocumentWrite
			}
		}
		return nil
	})
	if err != nil {
		lgr.Error("player data operation failed", logger.Err(err))
		return err
	}
	lgr.Info("player data operation applied")
	return nil
}

// Run drains src until it reports queue.ErrEmpty or ctx is done. Messages
// that still fail after retries are counted and logged, not returned.
func (w *Worker) Run(ctx context.Context, src queueiface.Receiver) (Result, error) {
	var processed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	for {
		if err := gctx.Err(); err != nil {
			break
		}
		msg, err := src.Receive(gctx)
		if errors.Is(err, queueiface.ErrEmpty) {
			break
		}
		if err != nil {
			_ = g.Wait()
			return Result{Processed: int(processed.Load()), Failed: int(failed.Load())}, err
		}
		g.Go(func() error {
			if err := w.Process(gctx, msg.Body); err != nil {
				failed.Add(1)
				return nil
			}
			processed.Add(1)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return Result{Processed: int(processed.Load()), Failed: int(failed.Load())}, err
}

// Poll runs the worker every interval until ctx is cancelled.
func (w *Worker) Poll(ctx context.Context, src queueiface.Receiver, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		res, err := w.Run(ctx, src)
		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("player data worker run failed", logger.Err(err))
		}
		if res.Processed > 0 || res.Failed > 0 {
			w.logger.Info("player data worker drained queue", logger.F("processed", res.Processed), logger.F("failed", res.Failed))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
