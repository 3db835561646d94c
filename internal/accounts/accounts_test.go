package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidPhone(t *testing.T) {
	cases := map[string]bool{
		"13800000001":  true,
		"19999999999":  true,
		"23800000001":  false,
		"1380000000":   false,
		"138000000011": false,
		"1380000000a":  false,
		"":             false,
	}
	for phone, want := range cases {
		assert.Equal(t, want, ValidPhone(phone), phone)
	}
}

func TestStore(t *testing.T) {
	s := NewStore()
	alice := Account{Username: "alice", Password: "password1", Role: RoleCustomer, Phone: "13800000001"}

	require.NoError(t, s.Create(alice))
	assert.ErrorIs(t, s.Create(alice), ErrDuplicateUsername)
	assert.True(t, s.Exists("alice"))
	assert.False(t, s.Exists("bob"))

	got, err := s.Find("alice")
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	_, err = s.Find("bob")
	assert.ErrorIs(t, err, ErrNotFound)

	alice.Email = "alice@example.com"
	require.NoError(t, s.Update(alice))
	got, _ = s.Find("alice")
	assert.Equal(t, "alice@example.com", got.Email)

	assert.ErrorIs(t, s.Update(Account{Username: "bob"}), ErrNotFound)
	assert.Equal(t, 1, s.Count())

	require.NoError(t, s.Create(Account{Username: "aaron", Password: "password1"}))
	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "aaron", all[0].Username)
	assert.Equal(t, "alice", all[1].Username)
}

func TestRoles(t *testing.T) {
	assert.True(t, Account{Role: RoleAdmin}.IsAdmin())
	assert.False(t, Account{Role: RoleCustomer}.IsAdmin())
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleCustomer, ParseRole("anything"))
}
