package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"club-mailer/apperrors"
	"club-mailer/database"
	"club-mailer/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDispatch_SendsAndLogsEachRecipient(t *testing.T) {
	store := configuredStore(t)
	tr := &mockTransport{}
	tr.On("Send", mock.Anything, mock.Anything).Return(nil)
	d := newTestDispatcher(t, store, tr)

	res, err := d.Dispatch(context.Background(), Job{
		Kind:       database.LogTypeBulk,
		Template:   Template{Subject: "Hi {Name}", Body: "Meeting on {EventDate}"},
		Recipients: []database.Recipient{bulkRecipient("Ana", "ana@x.org"), bulkRecipient("Ben", "ben@x.org")},
		EventDate:  "2024-04-01",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 0, res.Failed)
	require.Len(t, res.Outcomes, 2)
	assert.True(t, res.Outcomes[0].Sent)

	sent := tr.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "Hi Ana", sent[0].Subject)
	assert.Equal(t, "Meeting on 2024-04-01", sent[0].Body)
	assert.Equal(t, "Rotary Club", sent[0].FromName)
	assert.Equal(t, "club@x.org", sent[0].FromEmail)
	assert.Equal(t, "ben@x.org", sent[1].To)

	logs, err := store.ListSentLogs(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "ben@x.org", logs[0].Email)
	assert.Equal(t, "2024-03-01", logs[0].Date)
	assert.Equal(t, "3/1/2024, 9:15:00 AM", logs[0].Timestamp)
	assert.Equal(t, database.LogTypeBulk, logs[0].Type)
	assert.Equal(t, database.LogStatusSuccess, logs[0].Status)
	assert.Equal(t, "Hi Ben", logs[0].Subject)
}

func TestDispatch_FailureIsCountedAndSkipped(t *testing.T) {
	store := configuredStore(t)
	tr := &mockTransport{}
	tr.On("Send", mock.Anything, mock.MatchedBy(func(m Message) bool { return m.To == "bad@x.org" })).
		Return(errors.New("mailbox unavailable"))
	tr.On("Send", mock.Anything, mock.Anything).Return(nil)
	d := newTestDispatcher(t, store, tr)

	res, err := d.Dispatch(context.Background(), Job{
		Kind:     database.LogTypeBulk,
		Template: Template{Subject: "S", Body: "B"},
		Recipients: []database.Recipient{
			bulkRecipient("Ana", "ana@x.org"),
			bulkRecipient("Bad", "bad@x.org"),
			bulkRecipient("NoMail", ""),
			bulkRecipient("Cy", "cy@x.org"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, len(res.Outcomes), res.Sent+res.Failed)
	assert.Contains(t, res.Outcomes[1].Error, "mailbox unavailable")
	assert.Equal(t, "recipient has no email address", res.Outcomes[2].Error)

	logs, _ := store.ListSentLogs(context.Background())
	assert.Len(t, logs, 2, "failures are not logged")
	tr.AssertNumberOfCalls(t, "Send", 3)
}

func TestDispatch_MissingConfigurationFailsFast(t *testing.T) {
	tests := []struct {
		name string
		cfg  *database.ClubConfig
	}{
		{name: "never configured"},
		{name: "missing endpoint", cfg: &database.ClubConfig{SenderName: "Club", SenderEmail: "c@x.org"}},
		{name: "blank sender email", cfg: &database.ClubConfig{SenderName: "Club", SenderEmail: "  ", TransportEndpoint: "smtp://m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := database.NewMemoryStore()
			if tt.cfg != nil {
				require.NoError(t, store.SaveClubConfig(context.Background(), tt.cfg))
			}
			tr := &mockTransport{}
			d := newTestDispatcher(t, store, tr)

			_, err := d.Dispatch(context.Background(), Job{
				Kind:       database.LogTypeBulk,
				Template:   Template{Subject: "S", Body: "B"},
				Recipients: []database.Recipient{bulkRecipient("Ana", "ana@x.org")},
			})
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfigurationMissing))
			tr.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		})
	}
}

func TestDispatch_LogDateOverride(t *testing.T) {
	store := configuredStore(t)
	tr := &mockTransport{}
	tr.On("Send", mock.Anything, mock.Anything).Return(nil)
	d := newTestDispatcher(t, store, tr)

	_, err := d.Dispatch(context.Background(), Job{
		Kind:       database.LogTypeBirthday,
		Template:   Template{Subject: "Happy Birthday!", Body: "Happy Birthday {name}!"},
		Recipients: []database.Recipient{bulkRecipient("Ana", "ana@x.org")},
		LogDate:    "2024-03-10",
	})
	require.NoError(t, err)

	sent, err := store.WasSent(context.Background(), "ana@x.org", "2024-03-10", database.LogTypeBirthday)
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestDispatch_LogFailureCountsAsFailed(t *testing.T) {
	store := configuredStore(t)
	tr := &mockTransport{}
	tr.On("Send", mock.Anything, mock.Anything).Return(nil)
	d := NewDispatcher(store, failingAppender{}, factoryFor(tr), logger.NewNoOpLogger(), time.Second, fixedClock)

	res, err := d.Dispatch(context.Background(), Job{
		Kind:       database.LogTypeBulk,
		Template:   Template{Subject: "S", Body: "B"},
		Recipients: []database.Recipient{bulkRecipient("Ana", "ana@x.org")},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Sent)
	assert.Equal(t, 1, res.Failed)
	assert.Contains(t, res.Outcomes[0].Error, "disk full")
}

func TestDispatch_SurvivesCallerCancellation(t *testing.T) {
	store := configuredStore(t)
	tr := &mockTransport{}
	tr.On("Send", mock.Anything, mock.Anything).Return(nil)
	d := newTestDispatcher(t, store, tr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := d.Dispatch(ctx, Job{
		Kind:       database.LogTypeBulk,
		Template:   Template{Subject: "S", Body: "B"},
		Recipients: []database.Recipient{bulkRecipient("Ana", "ana@x.org"), bulkRecipient("Ben", "ben@x.org")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)
}

func TestDispatch_PerSendTimeout(t *testing.T) {
	store := configuredStore(t)
	tr := &mockTransport{}
	tr.On("Send", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
	})
	d := newTestDispatcher(t, store, tr)

	_, err := d.Dispatch(context.Background(), Job{
		Kind:       database.LogTypeBulk,
		Template:   Template{Subject: "S", Body: "B"},
		Recipients: []database.Recipient{bulkRecipient("Ana", "ana@x.org")},
	})
	require.NoError(t, err)
}
