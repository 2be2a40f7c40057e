package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGameAction(t *testing.T) {
	for a := ActionNone; a <= ActionRotateCCW; a++ {
		parsed, err := ParseGameAction(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, parsed)
	}

	_, err := ParseGameAction("Hold")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestGameActionJSON(t *testing.T) {
	var v struct {
		Action GameAction `json:"action"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"action": "CCW"}`), &v))
	assert.Equal(t, ActionRotateCCW, v.Action)

	for _, raw := range []string{`{"action": null}`, `{"action": 5}`, `{"action": "Hold"}`} {
		v.Action = ActionMoveLeft
		err := json.Unmarshal([]byte(raw), &v)
		assert.ErrorIs(t, err, ErrUnknownAction, raw)
		assert.Equal(t, ActionMoveLeft, v.Action, raw)
	}

	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"action": "Left"}`, string(b))
}
