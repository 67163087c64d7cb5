package casting

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoint(t *testing.T) {
	p := NewPoint(3, -4)
	require.Equal(t, NewPoint(4, -2), p.Add(NewPoint(1, 2)))
	require.Equal(t, NewPoint(-3, 4), p.Reverse())
	require.Equal(t, NewPoint(30, -40), p.Scale(10))
	require.True(t, p.Equals(NewPoint(3, -4)))
	require.False(t, p.Equals(NewPoint(-3, 4)))
	require.Equal(t, "(3, -4)", p.String())
}

func TestActor_MoveNext(t *testing.T) {
	a := NewActor()
	a.SetPosition(NewPoint(10, 10))
	a.SetVelocity(NewPoint(-5, 15))

	a.MoveNext()
	require.Equal(t, NewPoint(5, 25), a.Position())
	require.Equal(t, NewPoint(-5, 15), a.Velocity())
}

func TestColor_Text(t *testing.T) {
	require.Equal(t, "#ffff00", Yellow.Hex())

	data, err := json.Marshal(struct{ C Color }{C: Red})
	require.NoError(t, err)
	require.Equal(t, `{"C":"#ff0000"}`, string(data))

	var out struct{ C Color }
	require.NoError(t, json.Unmarshal([]byte(`{"C":"#ffffff"}`), &out))
	require.Equal(t, White, out.C)

	_, err = ParseColor("#fff")
	require.Error(t, err)
	_, err = ParseColor("#gggggg")
	require.Error(t, err)
}
