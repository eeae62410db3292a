package remotelog

import (
	"chat-sync/codec"
	"chat-sync/contract"
	"chat-sync/domain"
	"chat-sync/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Stream speaks to the realtime endpoint of the hosted log over one websocket.
// A single read loop dispatches snapshots to subscribers and acks to pending appends.
type Stream struct {
	log        *slog.Logger
	conn       *websocket.Conn
	collection string

	writeMu sync.Mutex

	mu       sync.Mutex
	pending  map[string]chan serverFrame
	subs     map[uint64]*streamSubscription
	nextSub  uint64
	localSeq uint64

	closed    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

type streamSubscription struct {
	owner   *Stream
	id      uint64
	handler contract.SnapshotHandler
	active  atomic.Bool
}

func (s *streamSubscription) Unsubscribe() {
	if !s.active.CompareAndSwap(true, false) {
		return
	}
	s.owner.mu.Lock()
	delete(s.owner.subs, s.id)
	last := len(s.owner.subs) == 0
	s.owner.mu.Unlock()
	if last {
		if err := s.owner.write(clientFrame{Op: opUnsubscribe, Collection: s.owner.collection}); err != nil {
			s.owner.log.Debug("Unsubscribe frame not sent", "error", err)
		}
	}
}

// Dial opens the websocket and starts the read loop.
func Dial(ctx context.Context, log *slog.Logger, url, collection string) (*Stream, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not connect to %s: %w", url, err)
	}
	return NewStream(log, conn, collection), nil
}

func NewStream(log *slog.Logger, conn *websocket.Conn, collection string) *Stream {
	s := &Stream{
		log:        log,
		conn:       conn,
		collection: collection,
		pending:    make(map[string]chan serverFrame),
		subs:       make(map[uint64]*streamSubscription),
		closed:     make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *Stream) Subscribe(ctx context.Context, orderKey string, handler contract.SnapshotHandler) (contract.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case <-s.closed:
		return nil, s.err()
	default:
	}

	s.mu.Lock()
	s.nextSub++
	sub := &streamSubscription{owner: s, id: s.nextSub, handler: handler}
	sub.active.Store(true)
	first := len(s.subs) == 0
	s.subs[sub.id] = sub
	s.mu.Unlock()

	if first {
		frame := clientFrame{Op: opSubscribe, Collection: s.collection, OrderBy: orderKey}
		if err := s.write(frame); err != nil {
			sub.Unsubscribe()
			return nil, err
		}
	}
	return sub, nil
}

// Append waits for the server acknowledgement. It does not wait for the snapshot
// carrying the new entry.
func (s *Stream) Append(ctx context.Context, entry domain.Entry) (string, error) {
	if err := domain.ValidateBody(entry.Body); err != nil {
		return "", err
	}
	requestID := uuid.NewString()
	ack := make(chan serverFrame, 1)

	s.mu.Lock()
	s.pending[requestID] = ack
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, requestID)
		s.mu.Unlock()
	}()

	doc := codec.FromEntry(entry)
	if err := s.write(clientFrame{Op: opAppend, Collection: s.collection, RequestID: requestID, Entry: &doc}); err != nil {
		return "", err
	}

	select {
	case frame := <-ack:
		if frame.Error != "" {
			return "", fmt.Errorf("append rejected: %s", frame.Error)
		}
		return frame.ID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-s.closed:
		return "", s.err()
	}
}

func (s *Stream) Close() error {
	s.shutdown(errors.ErrStreamClosed)
	return s.conn.Close()
}

func (s *Stream) write(frame clientFrame) error {
	data, err := codec.JSON.Marshal(frame)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	select {
	case <-s.closed:
		return s.err()
	default:
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Stream) readLoop() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.shutdown(fmt.Errorf("%w: %v", errors.ErrStreamClosed, err))
			return
		}
		var frame serverFrame
		if err = codec.JSON.Unmarshal(data, &frame); err != nil {
			s.log.Warn("Malformed frame ignored", "error", err)
			continue
		}
		switch frame.Type {
		case typeSnapshot:
			s.dispatchSnapshot(frame)
		case typeAck:
			s.mu.Lock()
			ack, ok := s.pending[frame.RequestID]
			s.mu.Unlock()
			if ok {
				select {
				case ack <- frame:
				default:
				}
			}
		case typeError:
			s.log.Error("Remote log error", "error", frame.Error)
		default:
			s.log.Debug("Unknown frame type", "type", frame.Type)
		}
	}
}

func (s *Stream) dispatchSnapshot(frame serverFrame) {
	list, dropped := codec.ToMessages(frame.Messages).Valid()
	if dropped > 0 {
		s.log.Warn("Invalid documents skipped", "seq", frame.Seq, "dropped", dropped)
	}

	s.mu.Lock()
	seq := frame.Seq
	if seq == 0 {
		seq = s.localSeq + 1
	}
	s.localSeq = max(s.localSeq, seq)
	subs := make([]*streamSubscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		if sub.active.Load() {
			sub.handler(domain.Snapshot{Seq: seq, Messages: list})
		}
	}
}

func (s *Stream) shutdown(err error) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closeErr = err
		s.mu.Unlock()
		close(s.closed)
	})
}

func (s *Stream) err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeErr
}
