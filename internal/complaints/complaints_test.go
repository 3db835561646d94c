package complaints

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s := NewStore()
	s.Append(Complaint{ID: "C1", ProductID: "P1", Complainant: "alice", Status: StatusPending})
	s.Append(Complaint{ID: "C2", ProductID: "P1", Complainant: "dave", Status: StatusPending})

	assert.Len(t, s.All(), 2)
	mine := s.ByComplainant("alice")
	require.Len(t, mine, 1)
	assert.Equal(t, "C1", mine[0].ID)

	_, err := s.Find("C9")
	assert.ErrorIs(t, err, ErrNotFound)

	at := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	got, err := s.Modify("C1", func(c *Complaint) error {
		c.Resolve("refunded", "admin", at)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, got.Status)
	assert.True(t, got.Status.Processed())
	assert.Equal(t, at, got.RespondedAt)

	stored, _ := s.Find("C1")
	assert.Equal(t, "admin", stored.AdminUser)

	_, err = s.Modify("C9", func(*Complaint) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, StatusProcessing.Processed())
	assert.True(t, StatusClosed.Processed())
}
