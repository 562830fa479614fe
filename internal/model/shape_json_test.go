package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeJSONRoundTrip(t *testing.T) {
	p := NewRectangle("r1", 564, 150)
	p.Position = V(10, 20)
	p.Rotation = 30

	data, err := MarshalShape(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"polygon"`)

	back, err := UnmarshalShape(data)
	require.NoError(t, err)
	assert.Equal(t, p, back)

	c := NewCircle("c1", 60, UnitCM)
	data, err = MarshalShape(c)
	require.NoError(t, err)
	back, err = UnmarshalShape(data)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}

func TestUnmarshalShapeRejectsUnknownType(t *testing.T) {
	_, err := UnmarshalShape([]byte(`{"type":"ellipse","id":"x"}`))
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestDrawableShapeJSON(t *testing.T) {
	d := DrawableShape{
		Shape:  NewCircle("c", 5, UnitMM).WithPosition(V(1, 2)),
		PartID: "101",
		Attributes: Attributes{
			BorderStyle: BorderDotted,
			BorderColor: "#ff0000",
			FillColor:   "#00ff00",
		},
	}
	data, err := json.Marshal(d)
	require.NoError(t, err)

	var back DrawableShape
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d, back)
}

func TestDrawableShapeJSONWithoutShape(t *testing.T) {
	var d DrawableShape
	require.NoError(t, json.Unmarshal([]byte(`{"part_id":"101","fill_color":"#fff"}`), &d))
	assert.Nil(t, d.Shape)
	assert.Equal(t, "101", d.PartID)

	var l Layout
	require.NoError(t, json.Unmarshal([]byte(`{"name":"x","shapes":[{"part_id":"101"}]}`), &l))
	require.Len(t, l.Shapes, 1)
	assert.Nil(t, l.Shapes[0].Shape)

	err := json.Unmarshal([]byte(`{"shape":{"type":"star"}}`), &d)
	assert.Error(t, err)
}

func TestCatalogPartJSON(t *testing.T) {
	p := NewCatalogPart("Peça", 3)
	data, err := json.Marshal(p)
	require.NoError(t, err)

	var back CatalogPart
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)

	var bare CatalogPart
	require.NoError(t, json.Unmarshal([]byte(`{"id":"9","name":"n","quantity":1}`), &bare))
	assert.Nil(t, bare.Shape)
}
