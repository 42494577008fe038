package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/SergeiKhy/campaign-tracker/internal/mailer"
)

// MockMailer implements mailer.Mailer for testing
type MockMailer struct {
	mu   sync.Mutex
	sent []mailer.Message

	// FailFor адреса, доставка на которые завершается ошибкой
	FailFor map[string]error

	nextID int
}

func NewMockMailer() *MockMailer {
	return &MockMailer{
		sent:    []mailer.Message{},
		FailFor: make(map[string]error),
	}
}

func (m *MockMailer) Send(ctx context.Context, msg *mailer.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.FailFor[msg.To]; ok {
		return "", err
	}

	m.sent = append(m.sent, *msg)
	m.nextID++
	return fmt.Sprintf("mock-message-%d", m.nextID), nil
}

// Sent возвращает копию всех доставленных сообщений
func (m *MockMailer) Sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]mailer.Message, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *MockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = []mailer.Message{}
	m.nextID = 0
}
