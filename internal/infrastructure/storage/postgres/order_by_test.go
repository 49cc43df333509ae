package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/apperror"
)

func TestParseOrderBy(t *testing.T) {
	cols := []string{"name", "created_at", "bill_date"}

	cases := []struct {
		in   string
		want string
	}{
		{"", "name ASC"},
		{"name", "name ASC"},
		{"+name", "name ASC"},
		{"-created_at", "created_at DESC"},
		{"bill_date", "bill_date ASC"},
	}

	for _, tc := range cases {
		got, err := ParseOrderBy(tc.in, cols, "name ASC")
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseOrderBy_RejectsUnknownColumn(t *testing.T) {
	_, err := ParseOrderBy("password_hash", []string{"name"}, "name ASC")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	_, err = ParseOrderBy("name; DROP TABLE users", []string{"name"}, "name ASC")
	require.Error(t, err)
}
