package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"club-mailer/database"
	"club-mailer/logger"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type mockTransport struct {
	mock.Mock
	mu   sync.Mutex
	sent []Message
}

func (m *mockTransport) Name() string { return "mock" }

func (m *mockTransport) Send(ctx context.Context, msg Message) error {
	args := m.Called(ctx, msg)
	if args.Error(0) == nil {
		m.mu.Lock()
		m.sent = append(m.sent, msg)
		m.mu.Unlock()
	}
	return args.Error(0)
}

func (m *mockTransport) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

func factoryFor(tr Transport) TransportFactory {
	return TransportFactoryFunc(func(cfg *database.ClubConfig) (Transport, error) {
		return tr, nil
	})
}

func configuredStore(t *testing.T) *database.MemoryStore {
	t.Helper()
	store := database.NewMemoryStore()
	require.NoError(t, store.SaveClubConfig(context.Background(), &database.ClubConfig{
		SenderName:        "Rotary Club",
		SenderEmail:       "club@x.org",
		TransportEndpoint: "https://relay.example.com",
	}))
	return store
}

func newTestDispatcher(t *testing.T, store *database.MemoryStore, tr Transport) *Dispatcher {
	return NewDispatcher(store, store, factoryFor(tr), logger.NewTestLogger(t), time.Second, fixedClock)
}

func bulkRecipient(name, email string) database.Recipient {
	return database.Recipient{
		Keys:            []string{"Name", "Email"},
		Values:          map[string]string{"Name": name, "Email": email},
		NormalizedName:  name,
		NormalizedEmail: email,
	}
}

// failingAppender rejects every sent log write.
type failingAppender struct{}

func (failingAppender) AppendSentLog(context.Context, *database.SentLogEntry) error {
	return errors.New("disk full")
}
