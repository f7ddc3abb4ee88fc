package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type row struct {
	key     string
	version time.Time
	value   string
}

func (r row) EntityKey() string        { return r.key }
func (r row) EntityVersion() time.Time { return r.version }

func keysOf(rows []row) []string {
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.key
	}
	return keys
}

func TestMerge_RemoteNewerWins(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	local := []row{{key: "a", version: base, value: "stale"}}
	remote := []row{{key: "a", version: base.Add(time.Minute), value: "fresh"}}

	merged := Merge(local, remote)

	assert.Len(t, merged, 1)
	assert.Equal(t, "fresh", merged[0].value)
}

func TestMerge_LocalNewerKept(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	local := []row{{key: "a", version: base.Add(time.Minute), value: "pending edit"}}
	remote := []row{{key: "a", version: base, value: "old snapshot"}}

	merged := Merge(local, remote)

	assert.Len(t, merged, 1)
	assert.Equal(t, "pending edit", merged[0].value)
}

func TestMerge_RemoteWinsTies(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	local := []row{{key: "a", version: base, value: "local"}}
	remote := []row{{key: "a", version: base, value: "remote"}}

	merged := Merge(local, remote)

	assert.Len(t, merged, 1)
	assert.Equal(t, "remote", merged[0].value)
}

func TestMerge_PreservesLocalOrderAppendsNew(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	local := []row{
		{key: "b", version: base},
		{key: "a", version: base},
	}
	remote := []row{
		{key: "a", version: base.Add(time.Second)},
		{key: "c", version: base},
		{key: "d", version: base},
	}

	merged := Merge(local, remote)

	assert.Equal(t, []string{"b", "a", "c", "d"}, keysOf(merged))
}

func TestMerge_InputsNotMutated(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	local := []row{{key: "a", version: base, value: "local"}}
	remote := []row{{key: "a", version: base.Add(time.Second), value: "remote"}}

	_ = Merge(local, remote)

	assert.Equal(t, "local", local[0].value)
	assert.Equal(t, "remote", remote[0].value)
}

func TestMerge_DuplicateRemoteKeysLastVersionWins(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	remote := []row{
		{key: "a", version: base.Add(time.Minute), value: "newer"},
		{key: "a", version: base, value: "older"},
	}

	merged := Merge(nil, remote)

	assert.Len(t, merged, 1)
	assert.Equal(t, "newer", merged[0].value)
}

func TestMerge_EmptySides(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []row{{key: "a", version: base}}

	assert.Equal(t, []string{"a"}, keysOf(Merge(rows, nil)))
	assert.Equal(t, []string{"a"}, keysOf(Merge(nil, rows)))
	assert.Empty(t, Merge[row](nil, nil))
}

func TestRemove(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	local := []row{
		{key: "a", version: base},
		{key: "b", version: base},
		{key: "c", version: base},
	}

	assert.Equal(t, []string{"a", "c"}, keysOf(Remove(local, "b")))
	assert.Equal(t, []string{"a", "b", "c"}, keysOf(Remove(local, "missing")))
}
