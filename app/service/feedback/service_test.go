package feedback

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	svc, err := NewAtPath(filepath.Join(t.TempDir(), "feedback.jsonl"))
	require.NoError(t, err)

	return svc
}

func TestRecordAndList(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Record(KindReaction, "👍", "the earth is round"))
	require.NoError(t, svc.Record(KindRating, "5", "water boils at 100C"))

	entries, err := svc.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Equal(t, KindReaction, entries[0].Kind)
	require.Equal(t, "👍", entries[0].Value)
	require.Equal(t, "the earth is round", entries[0].ClaimText)
	require.NotZero(t, entries[0].Timestamp)

	require.Equal(t, KindRating, entries[1].Kind)
	require.Equal(t, "5", entries[1].Value)
}

func TestListEmptyStore(t *testing.T) {
	svc := newTestService(t)

	entries, err := svc.List()
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRecordAppends(t *testing.T) {
	svc := newTestService(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Record(KindRating, "3", "claim"))
	}

	entries, err := svc.List()
	require.NoError(t, err)
	require.Len(t, entries, 5)
}
