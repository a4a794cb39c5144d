package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusAcceptsNameAndLabel(t *testing.T) {
	for _, s := range statusOrder {
		byName, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, byName)

		byLabel, err := ParseStatus(s.Label())
		require.NoError(t, err)
		assert.Equal(t, s, byLabel)
	}

	_, err := ParseStatus("Shipped")
	assert.ErrorIs(t, err, ErrUnknownStatus)
	_, err = ParseStatus("")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to ApplicationStatus
		want     bool
	}{
		{StatusRequested, StatusDraftDelivered, true},
		{StatusDraftDelivered, StatusInProduction, true},
		{StatusDraftDelivered, StatusModificationRequested, true},
		{StatusModificationRequested, StatusDraftDelivered, true},
		{StatusInProduction, StatusCompleted, true},
		{StatusCompleted, StatusDeleted, true},
		{StatusRequested, StatusDeleted, true},
		{StatusInProduction, StatusInProduction, true},
		{StatusCompleted, StatusRequested, false},
		{StatusRequested, StatusInProduction, false},
		{StatusDeleted, StatusRequested, false},
		{StatusRequested, ApplicationStatus("Shipped"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusDeleted.Terminal())
	assert.False(t, StatusInProduction.Terminal())
}

func TestParseChoices(t *testing.T) {
	v, ok := ParseYesNo("yes")
	require.True(t, ok)
	assert.Equal(t, Yes, v)
	v, ok = ParseYesNo("아니오")
	require.True(t, ok)
	assert.Equal(t, No, v)
	_, ok = ParseYesNo("maybe")
	assert.False(t, ok)

	k, ok := ParseLawyerKind("직원")
	require.True(t, ok)
	assert.Equal(t, KindStaff, k)
	_, ok = ParseLawyerKind("")
	assert.False(t, ok)
}

func TestApplicationIDPattern(t *testing.T) {
	assert.True(t, ApplicationIDPattern.MatchString("LN-2025-4821"))
	assert.False(t, ApplicationIDPattern.MatchString("LN-25-4821"))
	assert.False(t, ApplicationIDPattern.MatchString("LN-2025-482"))
}
