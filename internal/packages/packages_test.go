package packages_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockx-backend-go/internal/packages"
)

func TestDefaultCatalogTiers(t *testing.T) {
	c := packages.MustDefault()

	want := map[string]time.Duration{
		"7days-free": 7 * 24 * time.Hour,
		"1month":     30 * 24 * time.Hour,
		"3months":    90 * 24 * time.Hour,
		"6months":    180 * 24 * time.Hour,
		"1year":      365 * 24 * time.Hour,
		"5min-test":  5 * time.Minute,
	}
	require.Len(t, c.All(), len(want))
	for id, d := range want {
		p, ok := c.Get(id)
		require.True(t, ok, id)
		assert.Equal(t, d, p.Duration(), id)
	}
	assert.Equal(t, "1 Month", c.Label("1month"))
	assert.Equal(t, packages.UnknownLabel, c.Label("lifetime"))
}

func TestEndDateAddsDuration(t *testing.T) {
	c := packages.MustDefault()
	start := time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)

	for _, p := range c.All() {
		end, err := c.EndDate(start, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.Duration(), end.Sub(start), p.ID)
	}

	_, err := c.EndDate(start, "nope")
	assert.ErrorIs(t, err, packages.ErrUnknownPackage)
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	cases := map[string]string{
		"empty":     "packages: []",
		"no id":     "packages:\n  - label: x\n    days: 1",
		"both":      "packages:\n  - id: a\n    days: 1\n    minutes: 1",
		"neither":   "packages:\n  - id: a",
		"duplicate": "packages:\n  - id: a\n    days: 1\n  - id: a\n    days: 2",
		"malformed": "packages: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := packages.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestIsExpiredMatchesRemaining(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	offsets := []time.Duration{-48 * time.Hour, -time.Second, 0, time.Nanosecond, time.Minute, 72 * time.Hour}
	for _, off := range offsets {
		end := now.Add(off)
		assert.Equal(t, off, packages.Remaining(end, now))
		assert.Equal(t, off <= 0, packages.IsExpired(end, now), off.String())
		assert.Equal(t, packages.IsExpired(end, now), packages.FormatRemaining(end, now) == packages.ExpiredLabel, off.String())
	}
}

func TestFormatRemaining(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		left time.Duration
		want string
	}{
		{-time.Hour, "Expired"},
		{0, "Expired"},
		{30 * time.Second, "1 minute"},
		{time.Minute, "1 minute"},
		{time.Minute + time.Second, "2 minutes"},
		{59*time.Minute + 59*time.Second, "60 minutes"},
		{time.Hour, "1 day"},
		{24 * time.Hour, "1 day"},
		{24*time.Hour + time.Second, "2 days"},
		{30 * 24 * time.Hour, "30 days"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, packages.FormatRemaining(now.Add(tc.left), now), tc.left.String())
	}
}
