package pagination

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	for _, id := range []int64{1, 42, 1 << 40} {
		assert.Equal(t, id, DecodeCursor(EncodeCursor(id)))
	}
}

func TestDecodeCursor_InvalidMeansStart(t *testing.T) {
	cases := map[string]string{
		"empty":    "",
		"garbage":  "!!not-base64!!",
		"non-int":  base64.RawURLEncoding.EncodeToString([]byte("abc")),
		"zero":     base64.RawURLEncoding.EncodeToString([]byte("0")),
		"negative": base64.RawURLEncoding.EncodeToString([]byte("-5")),
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, int64(0), DecodeCursor(c))
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, ClampLimit(0, 20, 100))
	assert.Equal(t, 20, ClampLimit(-3, 20, 100))
	assert.Equal(t, 1, ClampLimit(1, 20, 100))
	assert.Equal(t, 100, ClampLimit(5000, 20, 100))
	assert.Equal(t, 100, ClampLimit(5000, 20, 1000))
	assert.Equal(t, 10, ClampLimit(0, 50, 10))
}

func TestSlice(t *testing.T) {
	id := func(v int64) int64 { return v }

	page, p := Slice([]int64{9, 8, 7}, 3, id)
	assert.Equal(t, []int64{9, 8, 7}, page)
	assert.False(t, p.HasMore)
	assert.Nil(t, p.NextCursor)

	page, p = Slice([]int64{9, 8, 7, 6}, 3, id)
	assert.Equal(t, []int64{9, 8, 7}, page)
	assert.True(t, p.HasMore)
	require.NotNil(t, p.NextCursor)
	assert.Equal(t, int64(7), DecodeCursor(*p.NextCursor))
}

// fetch emulates "id < cursor ORDER BY id DESC LIMIT n" over 1..total.
func fetch(total, cursor int64, n int) []int64 {
	start := total
	if cursor > 0 {
		start = cursor - 1
	}
	var out []int64
	for id := start; id >= 1 && len(out) < n; id-- {
		out = append(out, id)
	}
	return out
}

func TestSlice_FollowingCursorVisitsEveryRowOnce(t *testing.T) {
	for _, total := range []int64{0, 1, 5, 20, 21, 99} {
		for _, limit := range []int{1, 3, 20} {
			var seen []int64
			cursor := ""
			for i := 0; i < 1000; i++ {
				rows := fetch(total, DecodeCursor(cursor), Overfetch(limit))
				page, p := Slice(rows, limit, func(v int64) int64 { return v })
				seen = append(seen, page...)
				if !p.HasMore {
					break
				}
				cursor = *p.NextCursor
			}
			require.Len(t, seen, int(total), "total=%d limit=%d", total, limit)
			for i, v := range seen {
				assert.Equal(t, total-int64(i), v)
			}
		}
	}
}
