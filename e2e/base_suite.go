package e2e

import (
	"chat-sync/codec"
	"chat-sync/controller"
	"chat-sync/domain"
	"chat-sync/domain/event"
	"chat-sync/remotelog"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

// BaseSyncSuite runs scenarios against a deployed realtime endpoint.
// Scenarios are skipped when E2E_REMOTE_URL is not set.
type BaseSyncSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSyncSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.RemoteURL == "" {
		s.T().Skip("E2E_REMOTE_URL not set")
	}
}

// memoryCache stands in for the disk cache: scenarios only look at the remote side.
type memoryCache struct {
	mu   sync.Mutex
	list domain.MessageList
}

func (m *memoryCache) Save(list domain.MessageList) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.list = list
}

func (m *memoryCache) Load() domain.MessageList {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list
}

// debugSink logs every replaced list when E2E_DEBUG_JSON is enabled.
type debugSink struct {
	t    *testing.T
	name string
}

func (d debugSink) Consume(_ context.Context, e event.ViewEvent) error {
	if replaced, ok := e.(event.ListReplaced); ok {
		data, err := codec.JSON.MarshalIndent(codec.FromList(replaced.Messages), "", "  ")
		if err != nil {
			return err
		}
		d.t.Logf("%s SNAPSHOT %d:\n%s", d.name, replaced.Seq, data)
	}
	return nil
}

// WithController provides a subscribed controller within a contextual test step
func (s *BaseSyncSuite) WithController(name string, fn func(ctx context.Context, c *controller.Controller)) {
	t := s.T()
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	stream, err := remotelog.Dial(ctx, log, s.Config.RemoteURL, s.Config.Collection)
	s.Require().NoError(err, "Failed to connect to realtime endpoint at "+s.Config.RemoteURL)
	defer func() { _ = stream.Close() }()

	c := controller.New(log, remotelog.NewClient(stream, remotelog.NewUploader(s.Config.UploadURL, 10*time.Second)), &memoryCache{})
	if s.Config.DebugJSON {
		c.Listen(debugSink{t: t, name: name})
	}
	defer c.Teardown()
	_, err = c.Subscribe(ctx)
	s.Require().NoError(err)

	fn(ctx, c)
}
