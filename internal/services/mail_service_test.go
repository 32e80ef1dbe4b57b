package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	to      []string
	subject string
	body    string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMessage
	fail bool
}

func (r *recordingSender) Send(to []string, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("smtp unreachable")
	}
	r.sent = append(r.sent, sentMessage{to: to, subject: subject, body: body})
	return nil
}

func (r *recordingSender) messages() []sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentMessage(nil), r.sent...)
}

func TestMailServiceDeliversQueuedJobs(t *testing.T) {
	sender := &recordingSender{}
	svc := newMailService(sender, true)

	for i := 0; i < 3; i++ {
		svc.Enqueue([]string{"alice@example.com"}, fmt.Sprintf("subject %d", i), "body")
	}
	svc.Stop()

	sent := sender.messages()
	require.Len(t, sent, 3)
	for i, msg := range sent {
		assert.Equal(t, []string{"alice@example.com"}, msg.to)
		assert.Equal(t, fmt.Sprintf("subject %d", i), msg.subject, "jobs deliver in order")
	}
}

func TestMailServiceDisabledDropsEverything(t *testing.T) {
	sender := &recordingSender{}
	svc := newMailService(sender, false)

	svc.Enqueue([]string{"alice@example.com"}, "hello", "body")
	svc.Stop()

	assert.Empty(t, sender.messages())
}

func TestMailServiceToleratesSenderFailure(t *testing.T) {
	sender := &recordingSender{fail: true}
	svc := newMailService(sender, true)

	svc.Enqueue([]string{"alice@example.com"}, "hello", "body")
	svc.Stop()

	// The failure is logged and swallowed, callers never see it.
	assert.Empty(t, sender.messages())
}
