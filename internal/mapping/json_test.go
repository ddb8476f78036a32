package mapping

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemMarshalIncludesTypeDiscriminator(t *testing.T) {
	item := Item{Kind: KindDirectionPad, DirectionPad: &DirectionPad{
		Position:        Position{X: 10, Y: 20},
		InitialDuration: 100,
		MaxOffsetX:      50,
		MaxOffsetY:      50,
	}}
	b, err := json.Marshal(item)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.Equal(t, "DirectionPad", fields["type"])
	assert.Equal(t, float64(100), fields["initial_duration"])
}

func TestItemUnmarshalDispatchesOnType(t *testing.T) {
	raw := []byte(`{"type":"Swipe","note":"","pointer_id":1,"positions":[{"x":0,"y":0},{"x":100,"y":0}],"interval":100,"bind":["KeyE"]}`)
	var item Item
	require.NoError(t, json.Unmarshal(raw, &item))
	assert.Equal(t, KindSwipe, item.Kind)
	require.NotNil(t, item.Swipe)
	assert.Equal(t, uint64(100), item.Swipe.Interval)
	assert.Equal(t, []Position{{X: 0, Y: 0}, {X: 100, Y: 0}}, item.Swipe.Positions)
}

func TestItemUnmarshalRejectsUnknownType(t *testing.T) {
	raw := []byte(`{"type":"NotAKind"}`)
	var item Item
	assert.Error(t, json.Unmarshal(raw, &item))
}

func TestConfigRoundTripsThroughJSON(t *testing.T) {
	cfg := Config{
		Version:      "1",
		OriginalSize: Size{Width: 1920, Height: 1080},
		Mappings: []Item{
			{Kind: KindSingleTap, SingleTap: &SingleTap{Position: Position{X: 1, Y: 2}, Bind: Bind{"KeyA"}}},
			{Kind: KindFire, Fire: &Fire{Position: Position{X: 3, Y: 4}, Sensitivity: 1.5}},
		},
	}
	b, err := json.Marshal(cfg)
	require.NoError(t, err)

	var got Config
	require.NoError(t, json.Unmarshal(b, &got))
	require.Len(t, got.Mappings, 2)
	assert.Equal(t, KindSingleTap, got.Mappings[0].Kind)
	assert.Equal(t, KindFire, got.Mappings[1].Kind)
	assert.Equal(t, float32(1.5), got.Mappings[1].Fire.Sensitivity)
}
