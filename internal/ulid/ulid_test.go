package ulid

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWithPrefix(t *testing.T) {
	cases := []struct {
		name   string
		gen    func() string
		prefix string
	}{
		{"review", ReviewID, "rev-"},
		{"pass", PassID, "pass-"},
		{"finding", FindingID, "find-"},
		{"report", ReportID, "rpt-"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := tc.gen()
			assert.True(t, strings.HasPrefix(id, tc.prefix), "id %q should have prefix %q", id, tc.prefix)
			assert.True(t, Validate(id))
		})
	}
}

func TestParse(t *testing.T) {
	id := ReviewID()

	prefix, _, err := Parse(id)
	require.NoError(t, err)
	assert.Equal(t, PrefixReview, prefix)
}

func TestParseInvalid(t *testing.T) {
	_, _, err := Parse("rev-not-a-ulid")
	assert.Error(t, err)

	assert.False(t, Validate("hello"))
}

func TestSortOrder(t *testing.T) {
	earlier := NewWithTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	later := NewWithTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Less(t, earlier, later)
}

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := Generate()
		require.False(t, seen[id], "duplicate ULID generated")
		seen[id] = true
	}
}
