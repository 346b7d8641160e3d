package mocks

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/voxo-cms/internal/ai"
	"github.com/voxo-cms/internal/mailer"
)

// MockMailer records deliveries; addresses in FailFor are rejected
type MockMailer struct {
	mu      sync.Mutex
	Sent    []string
	FailFor map[string]bool
}

// Verify interface compliance
var _ mailer.Mailer = (*MockMailer)(nil)

func NewMockMailer() *MockMailer {
	return &MockMailer{FailFor: make(map[string]bool)}
}

func (m *MockMailer) Send(ctx context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailFor[to] {
		return errors.New("mailbox unavailable")
	}
	m.Sent = append(m.Sent, to)
	return nil
}

// SentTo returns a copy of the delivered addresses
func (m *MockMailer) SentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Sent...)
}

// MockModel answers prompts by stage: the first matching key in Replies wins
type MockModel struct {
	Replies map[string]string
	Err     error
	Prompts []string
}

// Verify interface compliance
var _ ai.TextGenerator = (*MockModel)(nil)

func (m *MockModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	for key, reply := range m.Replies {
		if strings.Contains(prompt, key) {
			return reply, nil
		}
	}
	return "", nil
}

func (m *MockModel) Close() error {
	return nil
}

// Factory returns an ai.Factory handing out m
func (m *MockModel) Factory() ai.Factory {
	return func(ctx context.Context, apiKey, model string) (ai.TextGenerator, error) {
		return m, nil
	}
}
