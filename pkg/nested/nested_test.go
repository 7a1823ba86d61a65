package nested

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plan() []interface{} {
	return []interface{}{
		map[string]interface{}{"id": "a1", "action": "fix gate", "owner": "ops"},
		map[string]interface{}{"id": "a2", "action": "repaint", "owner": "vendor"},
		map[string]interface{}{"action": "no id yet"},
	}
}

func TestLocate(t *testing.T) {
	items := plan()

	idx, ok := Locate(items, "a2")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	idx, ok = Locate(items, "2")
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	// index 0 has an id, so it must be addressed by that id
	_, ok = Locate(items, "0")
	assert.False(t, ok)

	_, ok = Locate(items, "9")
	assert.False(t, ok)

	_, ok = Locate(items, "missing")
	assert.False(t, ok)
}

func TestHasIDIgnoresIndexes(t *testing.T) {
	items := plan()

	assert.True(t, HasID(items, "a1"))
	assert.False(t, HasID(items, "2"))
	assert.False(t, HasID(items, "0"))
}

func TestLocateNumericIDs(t *testing.T) {
	items := []interface{}{
		map[string]interface{}{"id": float64(10)},
		map[string]interface{}{"id": float64(11)},
	}

	idx, ok := Locate(items, "11")
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestReplaceKeepsSiblings(t *testing.T) {
	items := plan()

	out, err := Replace(items, "a1", map[string]interface{}{"action": "fix gate latch", "owner": "ops"})
	require.NoError(t, err)

	require.Len(t, out, 3)
	assert.Equal(t, map[string]interface{}{"id": "a1", "action": "fix gate latch", "owner": "ops"}, out[0])
	assert.Equal(t, items[1], out[1])
	assert.Equal(t, items[2], out[2])

	// the input is left alone
	assert.Equal(t, "fix gate", items[0].(map[string]interface{})["action"])
}

func TestReplaceByIndex(t *testing.T) {
	out, err := Replace(plan(), "2", map[string]interface{}{"action": "indexed"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"action": "indexed"}, out[2])
}

func TestReplaceMissing(t *testing.T) {
	_, err := Replace(plan(), "zz", map[string]interface{}{})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRemove(t *testing.T) {
	items := plan()

	out, err := Remove(items, "a1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, items[1], out[0])
	assert.Equal(t, items[2], out[1])
	assert.Len(t, items, 3)

	out, err = Remove(items, "2")
	require.NoError(t, err)
	assert.Len(t, out, 2)

	_, err = Remove(items, "a9")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestAppend(t *testing.T) {
	items := plan()
	out := Append(items, map[string]interface{}{"id": "a3"})
	assert.Len(t, out, 4)
	assert.Len(t, items, 3)
}

func TestItems(t *testing.T) {
	doc := map[string]interface{}{
		"plan":  plan(),
		"empty": nil,
		"sign":  map[string]interface{}{"by": "x"},
	}

	items, err := Items(doc, "plan")
	require.NoError(t, err)
	assert.Len(t, items, 3)

	items, err = Items(doc, "empty")
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = Items(doc, "absent")
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = Items(doc, "sign")
	assert.ErrorIs(t, err, ErrNotArray)
}
