package e2e

import (
	"chat-sync/controller"
	"chat-sync/domain"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type testSyncSuite struct {
	BaseSyncSuite
}

func TestSyncSuite(t *testing.T) {
	suite.Run(t, &testSyncSuite{})
}

func (s *testSyncSuite) TestSendIsObservedThroughSubscription() {
	text := "e2e " + uuid.NewString()

	s.Run("Send a text and wait for the snapshot carrying it", func() {
		s.WithController("alice sends", func(ctx context.Context, c *controller.Controller) {
			s.Require().NoError(c.SendText(ctx, "alice", text))
			s.Require().Eventually(func() bool {
				_, found := find(c.Messages(), text)
				return found
			}, 10*time.Second, 100*time.Millisecond)
		})
	})

	s.Run("Another client sees the server timestamp", func() {
		s.WithController("bob reads", func(ctx context.Context, c *controller.Controller) {
			var message domain.Message
			s.Require().Eventually(func() bool {
				var found bool
				message, found = find(c.Messages(), text)
				return found
			}, 10*time.Second, 100*time.Millisecond)
			s.Equal("alice", message.Author)
			s.NotNil(message.CreatedAt)
		})
	})
}

func find(list domain.MessageList, text string) (domain.Message, bool) {
	for _, m := range list {
		if m.Text() == text {
			return m, true
		}
	}
	return domain.Message{}, false
}
