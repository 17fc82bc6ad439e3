package services

import (
	"testing"

	"club-mailer/apperrors"
	"club-mailer/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedWorkspace() *Workspace {
	ws := NewWorkspace()
	ws.LoadBatch(&Batch{
		Recipients: []database.Recipient{bulkRecipient("Ana", "ana@x.org"), bulkRecipient("Ben", "ben@x.org")},
		Columns:    []string{"Name", "Email"},
	})
	return ws
}

func TestWorkspace_UpdateRecipient(t *testing.T) {
	ws := loadedWorkspace()

	require.NoError(t, ws.UpdateRecipient(0, "Email", "ana.lima@x.org"))
	require.NoError(t, ws.UpdateRecipient(0, "Name", "Ana Lima"))
	require.NoError(t, ws.UpdateRecipient(1, "Club", "South"))

	s := ws.Snapshot()
	assert.Equal(t, "ana.lima@x.org", s.Recipients[0].NormalizedEmail)
	assert.Equal(t, "Ana Lima", s.Recipients[0].NormalizedName)
	assert.Equal(t, "South", s.Recipients[1].Values["Club"])
	assert.Equal(t, []string{"Name", "Email", "Club"}, s.Recipients[1].Keys)
	assert.Equal(t, []string{"Name", "Email", "Club"}, s.Columns)
	assert.Equal(t, "ben@x.org", s.Recipients[1].NormalizedEmail)

	err := ws.UpdateRecipient(5, "Name", "x")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
	err = ws.UpdateRecipient(0, " ", "x")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))
}

func TestWorkspace_RemoveRecipient(t *testing.T) {
	ws := loadedWorkspace()

	require.NoError(t, ws.RemoveRecipient(0))
	s := ws.Snapshot()
	require.Len(t, s.Recipients, 1)
	assert.Equal(t, "Ben", s.Recipients[0].NormalizedName)

	assert.Error(t, ws.RemoveRecipient(1))
	assert.Error(t, ws.RemoveRecipient(-1))
}

func TestWorkspace_SnapshotIsACopy(t *testing.T) {
	ws := loadedWorkspace()
	s := ws.Snapshot()
	s.Recipients[0].Values["Name"] = "changed"

	assert.Equal(t, "Ana", ws.Snapshot().Recipients[0].Values["Name"])
}

func TestWorkspace_EventDate(t *testing.T) {
	ws := NewWorkspace()

	require.NoError(t, ws.SetEventDate("April 1, 2024"))
	assert.Equal(t, "2024-04-01", ws.Snapshot().EventDate)

	require.NoError(t, ws.SetEventDate(""))
	assert.Empty(t, ws.Snapshot().EventDate)

	err := ws.SetEventDate("someday")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))
}

func TestWorkspace_LoadAndReset(t *testing.T) {
	ws := NewWorkspace()
	ws.Load(&database.ScheduledItem{
		ID:         "item-1",
		Subject:    "S",
		Body:       "B",
		EventDate:  "2024-04-01",
		Recipients: []database.Recipient{bulkRecipient("Ana", "ana@x.org")},
		Columns:    []string{"Name", "Email"},
	})

	s := ws.Snapshot()
	assert.Equal(t, "item-1", s.EditingID)
	assert.Equal(t, Template{Subject: "S", Body: "B"}, s.Template())
	assert.Len(t, s.Recipients, 1)

	ws.Reset()
	s = ws.Snapshot()
	assert.Empty(t, s.EditingID)
	assert.Empty(t, s.Recipients)
	assert.NotNil(t, s.Recipients)
}
