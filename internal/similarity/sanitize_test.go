package similarity

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize_NonFiniteBecomesNil(t *testing.T) {
	in := map[string]interface{}{
		"nan":     math.NaN(),
		"posinf":  math.Inf(1),
		"neginf":  math.Inf(-1),
		"regular": 1.5,
	}
	out := Sanitize(in).(map[string]interface{})
	assert.Nil(t, out["nan"])
	assert.Nil(t, out["posinf"])
	assert.Nil(t, out["neginf"])
	assert.Equal(t, 1.5, out["regular"])
}

func TestSanitize_NestedStructures(t *testing.T) {
	in := map[string]interface{}{
		"players": []interface{}{
			map[string]interface{}{"score": math.NaN(), "name": "a"},
			map[string]interface{}{"score": 0.75, "name": "b"},
		},
	}
	out := Sanitize(in).(map[string]interface{})
	players := out["players"].([]interface{})
	require.Len(t, players, 2)
	assert.Nil(t, players[0].(map[string]interface{})["score"])
	assert.Equal(t, 0.75, players[1].(map[string]interface{})["score"])
	assert.Equal(t, "b", players[1].(map[string]interface{})["name"])
}

func TestSanitize_PreservesSliceOrder(t *testing.T) {
	in := []interface{}{3, 1, 2}
	out := Sanitize(in).([]interface{})
	assert.Equal(t, []interface{}{3, 1, 2}, out)
}

func TestSanitize_NumericWidths(t *testing.T) {
	assert.Equal(t, 7, Sanitize(int64(7)))
	assert.Equal(t, 7, Sanitize(int8(7)))
	assert.Equal(t, 7, Sanitize(uint32(7)))
	assert.Equal(t, 7, Sanitize(uint64(7)))
	assert.Equal(t, float64(1.25), Sanitize(float32(1.25)))
}

func TestSanitize_FormatsTimestamps(t *testing.T) {
	ts := time.Date(2025, 3, 9, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-09T12:30:00Z", Sanitize(ts))
}

func TestSanitize_Idempotent(t *testing.T) {
	in := map[string]interface{}{
		"a": math.NaN(),
		"b": []interface{}{int64(1), float32(2), time.Now()},
		"c": "text",
		"d": nil,
	}
	once := Sanitize(in)
	twice := Sanitize(once)
	assert.Equal(t, once, twice)
}

func TestSanitize_PassthroughScalars(t *testing.T) {
	assert.Equal(t, "abc", Sanitize("abc"))
	assert.Equal(t, true, Sanitize(true))
	assert.Nil(t, Sanitize(nil))
}
