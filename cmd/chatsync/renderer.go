package main

import (
	"chat-sync/domain"
	"chat-sync/domain/event"
	"chat-sync/projection"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gookit/color"
)

// terminal prints the timeline rows not shown yet. Replacements are wholesale
// so already printed rows are recognised by id.
type terminal struct {
	mu       sync.Mutex
	out      io.Writer
	colours  bool
	timeline *projection.Timeline
	printed  map[string]struct{}
}

func newTerminal(out io.Writer, identity string, colours bool) *terminal {
	return &terminal{
		out:      out,
		colours:  colours,
		timeline: projection.NewTimeline(identity),
		printed:  make(map[string]struct{}),
	}
}

func (t *terminal) Consume(ctx context.Context, e event.ViewEvent) error {
	if err := t.timeline.Consume(ctx, e); err != nil {
		return err
	}
	replaced, ok := e.(event.ListReplaced)
	if !ok {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if replaced.FromCache {
		t.line(color.FgGray, "-- offline copy, waiting for the chat room --")
	}
	for _, row := range t.timeline.Rows() {
		if _, seen := t.printed[row.ID]; seen {
			continue
		}
		t.printed[row.ID] = struct{}{}
		t.line(rowColour(row), format(row))
	}
	return ctx.Err()
}

func (t *terminal) line(c color.Color, text string) {
	if t.colours {
		text = c.Render(text)
	}
	_, _ = fmt.Fprintln(t.out, text)
}

func rowColour(row projection.Row) color.Color {
	if row.Mine {
		return color.FgGreen
	}
	return color.FgCyan
}

func format(row projection.Row) string {
	at := "--:--"
	if row.At != nil {
		at = row.At.Local().Format(time.Kitchen)
	}
	author := row.Author
	if row.Mine {
		author = "me"
	}
	body := row.Text
	if row.Kind == domain.KindAttachment {
		body = "[image] " + row.Ref
	}
	return fmt.Sprintf("[%s] %s: %s", at, author, body)
}
