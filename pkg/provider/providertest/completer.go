// Package providertest provides a scripted completer for tests.
package providertest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adrianliechti/ingester/pkg/provider"
)

var _ provider.Completer = (*Completer)(nil)

// Completer answers every call with the result of Func and records the requests it saw.
type Completer struct {
	Func func(messages []provider.Message, options *provider.CompleteOptions) (string, error)

	mu    sync.Mutex
	calls []Call
}

type Call struct {
	Messages []provider.Message
	Options  *provider.CompleteOptions
}

// Reply returns a completer that answers every call with text.
func Reply(text string) *Completer {
	return &Completer{
		Func: func([]provider.Message, *provider.CompleteOptions) (string, error) {
			return text, nil
		},
	}
}

func (c *Completer) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{Messages: messages, Options: options})
	c.mu.Unlock()

	text, err := c.Func(messages, options)

	if err != nil {
		return nil, err
	}

	return &provider.Completion{
		Message: &provider.Message{
			Role: provider.MessageRoleAssistant,

			Content: []provider.Content{
				provider.TextContent(text),
			},
		},
	}, nil
}

func (c *Completer) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Call(nil), c.calls...)
}

// HasImage reports whether any message of the call carries a file.
func (c Call) HasImage() bool {
	for _, m := range c.Messages {
		for _, content := range m.Content {
			if content.File != nil {
				return true
			}
		}
	}

	return false
}

// Prompt returns the text of all messages of the call.
func (c Call) Prompt() string {
	var text string

	for _, m := range c.Messages {
		if text != "" {
			text += "\n\n"
		}

		text += m.Text()
	}

	return text
}

// Gauge tracks the number of calls in flight and the highest number seen.
type Gauge struct {
	current atomic.Int64
	peak    atomic.Int64
}

func (g *Gauge) enter() {
	n := g.current.Add(1)

	for {
		peak := g.peak.Load()

		if n <= peak || g.peak.CompareAndSwap(peak, n) {
			return
		}
	}
}

func (g *Gauge) leave() {
	g.current.Add(-1)
}

func (g *Gauge) Peak() int {
	return int(g.peak.Load())
}

// Slow returns a completer that holds every call for delay before answering with text. Calls in
// flight are tracked by g.
func Slow(g *Gauge, delay time.Duration, text string) *Completer {
	return &Completer{
		Func: func([]provider.Message, *provider.CompleteOptions) (string, error) {
			g.enter()
			defer g.leave()

			time.Sleep(delay)

			return text, nil
		},
	}
}
