package listing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	kind, ok := ParseKind("JOB")
	require.True(t, ok)
	require.Equal(t, KindJob, kind)

	kind, ok = ParseKind("TALENT")
	require.True(t, ok)
	require.Equal(t, KindTalent, kind)

	for _, bad := range []string{"", "job", "GIG", "JOBS"} {
		_, ok := ParseKind(bad)
		require.False(t, ok, "kind %q should not parse", bad)
	}
}

func TestMerge_EntryFieldsWin(t *testing.T) {
	content := map[string]any{
		"title":     "Backend Engineer",
		"wallet":    "forged-wallet-in-content",
		"timestamp": int64(1),
	}
	e := &RegistryEntry{
		Kind:       KindJob,
		CID:        "cid-1",
		PostID:     "JOB-1700000000000-ab12cd",
		Signature:  "sig-1",
		Wallet:     "real-wallet",
		ObservedAt: 1700000000000,
		Slot:       42,
	}
	rec := Merge(content, e)

	require.Equal(t, "Backend Engineer", rec["title"])
	require.Equal(t, "real-wallet", rec["wallet"])
	require.Equal(t, int64(1700000000000), rec["timestamp"])
	require.Equal(t, uint64(42), rec["slot"])
	require.Equal(t, "JOB", rec["type"])
}

func TestMerge_ZeroSlotOmitted(t *testing.T) {
	rec := Merge(nil, &RegistryEntry{Kind: KindTalent, PostID: "p"})
	_, present := rec["slot"]
	require.False(t, present)
}

func TestNewPostID_Shape(t *testing.T) {
	id := NewPostID(KindJob)
	parts := strings.SplitN(id, "-", 3)
	require.Len(t, parts, 3)
	require.Equal(t, "JOB", parts[0])
	require.Len(t, parts[2], 6)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		seen[NewPostID(KindTalent)] = true
	}
	require.Greater(t, len(seen), 1)
}
