package services

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/insightdesk/backend/internal/models"
	"github.com/insightdesk/backend/pkg/logger"
)

func TestNotifierDelivery(t *testing.T) {
	testSetupOnce.Do(logger.Init)
	mailer := &memoryMailer{}
	notifier := NewNotifier(mailer, 10)

	notifier.SendOTP("admin@test.com", "123456")

	if !waitFor(t, time.Second, func() bool { return mailer.count() == 1 }) {
		t.Fatalf("expected one delivery, got %d", mailer.count())
	}
	mail := mailer.last()
	if mail.to[0] != "admin@test.com" || !strings.Contains(mail.body, "123456") {
		t.Fatalf("unexpected delivery: %+v", mail)
	}
}

func TestNotifierSurvivesDeliveryFailure(t *testing.T) {
	mailer := &memoryMailer{failNext: errSMTPDown}
	notifier := NewNotifier(mailer, 10)

	req := &models.Request{
		Name:        "Dana",
		Email:       "dana@test.com",
		RequestType: "Report",
	}

	// The first send fails inside the worker; the caller never sees it and
	// the queue keeps draining.
	notifier.SendConfirmation(req)
	notifier.SendCompletion(req)

	if !waitFor(t, time.Second, func() bool { return mailer.count() == 1 }) {
		t.Fatalf("expected the second notification delivered, got %d", mailer.count())
	}
	if subject := mailer.last().subject; !strings.Contains(subject, "complete") {
		t.Fatalf("unexpected surviving delivery: %q", subject)
	}
}

func TestNotifierDropsWhenQueueIsFull(t *testing.T) {
	mailer := &gatedMailer{started: make(chan struct{}, 8), release: make(chan struct{})}
	notifier := NewNotifier(mailer, 1)

	notifier.SendOTP("a@test.com", "111111")
	<-mailer.started // worker is now parked inside Send

	notifier.SendOTP("b@test.com", "222222") // buffered
	notifier.SendOTP("c@test.com", "333333") // dropped, queue full

	close(mailer.release)

	if !waitFor(t, time.Second, func() bool { return mailer.count() == 2 }) {
		t.Fatalf("expected two deliveries, got %d", mailer.count())
	}

	// Give the worker a beat; the dropped message must never surface.
	time.Sleep(50 * time.Millisecond)
	if mailer.count() != 2 {
		t.Fatalf("expected the overflow message dropped, got %d deliveries", mailer.count())
	}
}

func TestNotifierSkipsEmptyRecipients(t *testing.T) {
	mailer := &memoryMailer{}
	notifier := NewNotifier(mailer, 10)

	notifier.SendNewRequest(&models.Request{Name: "Dana"}, nil)

	time.Sleep(50 * time.Millisecond)
	if mailer.count() != 0 {
		t.Fatalf("expected nothing sent without recipients, got %d", mailer.count())
	}
}

var errSMTPDown = &smtpDownError{}

type smtpDownError struct{}

func (*smtpDownError) Error() string { return "smtp connection refused" }

// gatedMailer blocks deliveries until released so tests can fill the queue
// deterministically.
type gatedMailer struct {
	mu      sync.Mutex
	sent    int
	started chan struct{}
	release chan struct{}
}

func (m *gatedMailer) Send(to []string, subject, body string) error {
	m.started <- struct{}{}
	<-m.release
	m.mu.Lock()
	m.sent++
	m.mu.Unlock()
	return nil
}

func (m *gatedMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent
}
