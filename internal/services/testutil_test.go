package services

import (
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/insightdesk/backend/internal/database"
	"github.com/insightdesk/backend/pkg/logger"
	"gorm.io/gorm"
)

var testSetupOnce sync.Once

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testSetupOnce.Do(logger.Init)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	return db
}

type sentMail struct {
	to      []string
	subject string
	body    string
}

// memoryMailer records deliveries; an optional failure burns off one Send
// call with an error.
type memoryMailer struct {
	mu       sync.Mutex
	sent     []sentMail
	failNext error
}

func (m *memoryMailer) Send(to []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (m *memoryMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *memoryMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

// waitFor polls until the condition holds or the deadline passes. Delivery
// runs on the notifier's worker goroutine, so tests observe it indirectly.
func waitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return condition()
}
