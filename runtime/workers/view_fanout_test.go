package workers

import (
	"chat-sync/domain/event"
	"chat-sync/mocks"
	"chat-sync/observability"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestViewFanout_Fanout(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	first := mocks.NewMockViewSink(ctrl)
	second := mocks.NewMockViewSink(ctrl)
	fanout := NewViewFanout(log, observability.NewMetrics(), 4, time.Second).Add(first, second)

	evt := event.ScrollToBottom{Seq: 3}
	// Given both sinks are consumed in registration order
	gomock.InOrder(
		first.EXPECT().Consume(gomock.Any(), evt).Return(nil),
		second.EXPECT().Consume(gomock.Any(), evt).Return(nil),
	)

	fanout.Fanout(context.Background(), evt)
}

func TestViewFanout_Failing_Sink_Does_Not_Stop_Others(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	metrics := observability.NewMetrics()
	slow := mocks.NewMockViewSink(ctrl)
	healthy := mocks.NewMockViewSink(ctrl)
	fanout := NewViewFanout(slog.Default(), metrics, 4, 20*time.Millisecond).Add(slow, healthy)

	slow.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ event.ViewEvent) error {
			<-ctx.Done() // Waiting for timeout to trigger cancellation
			return ctx.Err()
		})
	healthy.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil)

	fanout.Fanout(context.Background(), event.ScrollToBottom{Seq: 1})

	req.Equal(1.0, testutil.ToFloat64(metrics.ViewEventsDropped))
}

func TestViewFanout_Run_Delivers_In_Order(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockViewSink(ctrl)
	fanout := NewViewFanout(slog.Default(), nil, 8, time.Second).Add(sink)

	received := make(chan uint64, 3)
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e event.ViewEvent) error {
			received <- e.Sequence()
			return nil
		}).Times(3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = fanout.Run(ctx) }()

	for seq := uint64(1); seq <= 3; seq++ {
		req.True(fanout.Publish(ctx, event.ListReplaced{Seq: seq}))
	}

	for want := uint64(1); want <= 3; want++ {
		select {
		case got := <-received:
			req.Equal(want, got)
		case <-time.After(time.Second):
			req.Fail(fmt.Sprintf("event %d not delivered", want))
		}
	}
}

func TestViewFanout_Publish_Gives_Up_When_Context_Done(t *testing.T) {
	fanout := NewViewFanout(slog.Default(), nil, 0, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.False(t, fanout.Publish(ctx, event.ScrollToBottom{}))
}
