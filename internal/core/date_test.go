package core

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-03-10", "2025-03-10T00:00:00", true},
		{"2025-03-10T14:30:05", "2025-03-10T14:30:05", true},
		{"2025-03-10T14:30:05-03:00", "2025-03-10T14:30:05", true},
		{"2025-03-10 08:00:00", "2025-03-10T08:00:00", true},
		{"10/03/2025", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			d, err := ParseDate(tc.in)
			if !tc.ok {
				assert.True(t, IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, d.String())
		})
	}
}

func TestDateDayBounds(t *testing.T) {
	d := NewDateTime(2025, 3, 10, 14, 30, 0)
	assert.Equal(t, "2025-03-10T00:00:00", d.StartOfDay().String())
	assert.Equal(t, "2025-03-10T23:59:59", d.EndOfDay().String())
}

func TestDateJSON(t *testing.T) {
	var v struct {
		When Date `json:"when"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"when":"2024-12-31"}`), &v))
	assert.Equal(t, NewDate(2024, 12, 31), v.When)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"when":"2024-12-31T00:00:00"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"when":12}`), &v))
}
