// Package controller keeps the authoritative message list in sync with the remote log.
//
// The remote log is the only source of truth. Every snapshot it delivers replaces
// the in-memory list wholesale, is mirrored to the local cache and announced to
// the views. Sends never touch the list: a sent message shows up once the remote
// log has accepted it and the subscription delivered the snapshot carrying it.
package controller

import (
	"chat-sync/attachment"
	"chat-sync/contract"
	"chat-sync/domain"
	"chat-sync/domain/event"
	"chat-sync/errors"
	"chat-sync/observability"
	"chat-sync/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type State int32

const (
	Uninitialized State = iota
	Subscribing
	Synced
	SyncedPendingWrite
	TornDown
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Subscribing:
		return "subscribing"
	case Synced:
		return "synced"
	case SyncedPendingWrite:
		return "synced (pending write)"
	case TornDown:
		return "torn down"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

const (
	defaultEventBuffer = 16
	defaultSinkTimeout = 2 * time.Second
)

type Option func(*Controller)

func WithBinarySource(source contract.BinarySource) Option {
	return func(c *Controller) { c.binaries = source }
}

func WithMetrics(metrics *observability.Metrics) Option {
	return func(c *Controller) { c.metrics = metrics }
}

func WithEventBuffer(size int) Option {
	return func(c *Controller) { c.eventBuffer = size }
}

func WithSinkTimeout(d time.Duration) Option {
	return func(c *Controller) { c.sinkTimeout = d }
}

// WithClock sets the clock used to name uploaded objects.
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) { c.clock = clock }
}

// Controller owns one subscription and one authoritative list.
// Instances are independent, nothing is shared at package level.
type Controller struct {
	log      *slog.Logger
	remote   contract.RemoteLog
	cache    contract.CacheStore
	binaries contract.BinarySource
	metrics  *observability.Metrics
	clock    func() time.Time

	eventBuffer int
	sinkTimeout time.Duration
	sinks       []contract.ViewSink

	supervisor  *workers.Supervisor
	cacheWriter *workers.CacheWriter
	fanout      *workers.ViewFanout
	workersDone chan struct{}

	// list is read without locking, always replaced, never mutated
	list    atomic.Pointer[domain.MessageList]
	state   atomic.Int32
	pending atomic.Int32

	// mu serializes notifications, Subscribe and Teardown
	mu          sync.Mutex
	lastSeq     uint64
	remoteSeen  bool
	tornDown    bool
	sub         contract.Subscription
	lifecycle   context.Context
	stopWorkers context.CancelFunc
	teardown    sync.Once
}

func New(log *slog.Logger, remote contract.RemoteLog, cache contract.CacheStore, opts ...Option) *Controller {
	c := &Controller{
		log:         log,
		remote:      remote,
		cache:       cache,
		clock:       time.Now,
		eventBuffer: defaultEventBuffer,
		sinkTimeout: defaultSinkTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = observability.NewMetrics()
	}
	empty := domain.MessageList{}
	c.list.Store(&empty)
	c.lifecycle, c.stopWorkers = context.WithCancel(context.Background())
	return c
}

// Listen registers a renderer. Sinks added after Subscribe are ignored.
func (c *Controller) Listen(sinks ...contract.ViewSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, sinks...)
}

// Messages returns a copy of the authoritative list.
func (c *Controller) Messages() domain.MessageList {
	return slices.Clone(*c.list.Load())
}

func (c *Controller) State() State {
	s := State(c.state.Load())
	if s == Synced && c.pending.Load() > 0 {
		return SyncedPendingWrite
	}
	return s
}

func (c *Controller) Metrics() *observability.Metrics { return c.metrics }

// Subscribe shows the cached list if any, then opens the standing remote
// subscription ordered by creation time. The returned token cancels it.
func (c *Controller) Subscribe(ctx context.Context) (contract.Subscription, error) {
	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		return nil, errors.ErrTornDown
	}
	if State(c.state.Load()) != Uninitialized {
		c.mu.Unlock()
		return nil, errors.ErrAlreadySubscribed
	}
	c.state.Store(int32(Subscribing))
	c.startWorkers()
	c.restoreFromCache()
	c.mu.Unlock()

	sub, err := c.remote.Subscribe(ctx, domain.OrderKey, c.onSnapshot)
	if err != nil {
		c.mu.Lock()
		if !c.tornDown {
			c.state.Store(int32(Uninitialized))
		}
		c.mu.Unlock()
		c.log.Error("Remote subscription failed", "error", err)
		return nil, fmt.Errorf("%w: %v", errors.ErrSubscribe, err)
	}

	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		sub.Unsubscribe()
		return nil, errors.ErrTornDown
	}
	c.sub = sub
	c.mu.Unlock()
	c.log.Info("Subscribed to remote log", "order", domain.OrderKey)
	return subscription{c}, nil
}

// startWorkers runs once, under mu.
func (c *Controller) startWorkers() {
	if c.supervisor != nil {
		return
	}
	c.cacheWriter = workers.NewCacheWriter(c.log, c.cache)
	c.fanout = workers.NewViewFanout(c.log, c.metrics, c.eventBuffer, c.sinkTimeout).Add(c.sinks...)
	c.supervisor = workers.NewSupervisor(c.log)
	c.supervisor.Add(c.cacheWriter, c.fanout)
	c.workersDone = make(chan struct{})
	go func() {
		defer close(c.workersDone)
		c.supervisor.Run(c.lifecycle)
	}()
}

// restoreFromCache publishes the fallback copy, under mu.
func (c *Controller) restoreFromCache() {
	cached, _ := c.cache.Load().Valid()
	if len(cached) == 0 || c.remoteSeen {
		return
	}
	ordered := cached.Ordered()
	c.list.Store(&ordered)
	c.metrics.ListSize.Set(float64(len(ordered)))
	c.log.Info("Showing cached history until first snapshot", "size", len(ordered))
	c.publish(event.ListReplaced{Seq: 0, Messages: slices.Clone(ordered), FromCache: true})
	c.publish(event.ScrollToBottom{Seq: 0})
}

func (c *Controller) onSnapshot(snapshot domain.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tornDown {
		return
	}
	if c.remoteSeen && snapshot.Seq <= c.lastSeq {
		c.metrics.SnapshotsStale.Inc()
		c.log.Debug("Stale snapshot discarded", "seq", snapshot.Seq, "applied", c.lastSeq)
		return
	}

	valid, dropped := snapshot.Messages.Valid()
	if dropped > 0 {
		c.metrics.InvalidMessages.Add(float64(dropped))
		c.log.Warn("Invalid messages left out of snapshot", "seq", snapshot.Seq, "dropped", dropped)
	}
	ordered := valid.Ordered()
	c.list.Store(&ordered)
	c.lastSeq = snapshot.Seq
	c.remoteSeen = true
	c.state.CompareAndSwap(int32(Subscribing), int32(Synced))
	c.metrics.SnapshotsApplied.Inc()
	c.metrics.ListSize.Set(float64(len(ordered)))

	c.cacheWriter.Schedule(slices.Clone(ordered))
	c.publish(event.ListReplaced{Seq: snapshot.Seq, Messages: slices.Clone(ordered)})
	c.publish(event.ScrollToBottom{Seq: snapshot.Seq})
}

func (c *Controller) publish(evt event.ViewEvent) {
	if !c.fanout.Publish(c.lifecycle, evt) {
		c.log.Debug("View event dropped after teardown", "seq", evt.Sequence())
	}
}

// SendText appends a text entry to the remote log.
//
// The message is not inserted locally: it appears in Messages only after the
// remote log accepted it and the subscription delivered the next snapshot, so
// callers observe one network round trip of latency before their own message shows.
func (c *Controller) SendText(ctx context.Context, author, text string) (err error) {
	defer func() { c.metrics.Send(string(domain.KindText), err) }()
	if c.isTornDown() {
		return errors.ErrTornDown
	}
	entry, err := domain.NewTextEntry(author, text)
	if err != nil {
		return err
	}
	return c.append(ctx, entry)
}

// SendAttachment uploads a local binary then appends an entry referencing it.
//
// Like SendText, the message only shows once the subscription reflects it. If the
// append fails after a successful upload the uploaded binary is left orphaned.
func (c *Controller) SendAttachment(ctx context.Context, author, localRef string) (err error) {
	defer func() { c.metrics.Send(string(domain.KindAttachment), err) }()
	if c.isTornDown() {
		return errors.ErrTornDown
	}
	if strings.TrimSpace(author) == "" {
		return fmt.Errorf("%w: author is required", errors.ErrValidation)
	}
	if c.binaries == nil {
		return fmt.Errorf("%w: attachments are not enabled", errors.ErrValidation)
	}
	blob, err := c.binaries.Open(ctx, localRef)
	if err != nil {
		return err
	}
	blob.Name = attachment.ObjectName(author, attachment.Extension(blob.ContentType), c.clock())

	c.pending.Add(1)
	ref, err := c.remote.UploadBinary(ctx, blob)
	c.pending.Add(-1)
	if err != nil {
		c.log.Error("Upload failed", "object", blob.Name, "error", err)
		return fmt.Errorf("%w: %v", errors.ErrUpload, err)
	}

	entry, err := domain.NewAttachmentEntry(author, ref)
	if err != nil {
		return err
	}
	if err = c.append(ctx, entry); err != nil {
		c.metrics.OrphanedBlobs.Inc()
		c.log.Warn("Uploaded binary left without message", "ref", ref)
		return err
	}
	return nil
}

func (c *Controller) append(ctx context.Context, entry domain.Entry) error {
	c.pending.Add(1)
	defer c.pending.Add(-1)
	id, err := c.remote.Append(ctx, entry)
	if err != nil {
		c.log.Error("Append failed", "author", entry.Author, "kind", entry.Body.Kind(), "error", err)
		return fmt.Errorf("%w: %v", errors.ErrRemoteWrite, err)
	}
	c.log.Debug("Entry accepted, waiting for snapshot", "id", id)
	return nil
}

func (c *Controller) isTornDown() bool {
	return State(c.state.Load()) == TornDown
}

// Teardown cancels the subscription and stops the workers. Once it returns no
// notification changes the list anymore. The last scheduled cache write is flushed.
// It must not be called from a view sink.
func (c *Controller) Teardown() {
	c.teardown.Do(func() {
		// Set under mu before the workers stop, no cache write is scheduled after the flush
		c.mu.Lock()
		c.tornDown = true
		c.state.Store(int32(TornDown))
		sub := c.sub
		c.sub = nil
		done := c.workersDone
		c.mu.Unlock()

		c.stopWorkers()
		if sub != nil {
			sub.Unsubscribe()
		}
		if done != nil {
			<-done
		}
		c.log.Info("Sync controller torn down")
	})
}

type subscription struct {
	c *Controller
}

func (s subscription) Unsubscribe() { s.c.Teardown() }
