package mailer

import (
	"context"
	"sync"
)

// MemoryMailer records messages. It is safe for concurrent use because
// deliveries happen on background goroutines.
type MemoryMailer struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

func NewMemoryMailer() *MemoryMailer {
	return &MemoryMailer{}
}

// FailWith makes subsequent sends return err without recording the message.
func (m *MemoryMailer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemoryMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *MemoryMailer) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}
