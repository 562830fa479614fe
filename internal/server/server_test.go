package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/SlabLayout/internal/catalog"
	"github.com/piwi3910/SlabLayout/internal/model"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return New(catalog.NewDefaultMemory(), log.New(io.Discard))
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func errorMessage(t *testing.T, data []byte) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	msg, _ := body["error"].(string)
	return msg
}

func TestHealth(t *testing.T) {
	status, data := do(t, newTestApp(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))
}

func TestListAndGetParts(t *testing.T) {
	app := newTestApp(t)

	status, data := do(t, app, http.MethodGet, "/parts", "")
	require.Equal(t, http.StatusOK, status)
	var parts []model.CatalogPart
	require.NoError(t, json.Unmarshal(data, &parts))
	require.Len(t, parts, 3)
	assert.Equal(t, "Peça A", parts[0].Name)

	circle, ok := parts[0].Shape.(*model.Circle)
	require.True(t, ok, "expected circle, got %T", parts[0].Shape)
	assert.Equal(t, 600.0, circle.Radius)

	status, data = do(t, app, http.MethodGet, "/parts/102", "")
	require.Equal(t, http.StatusOK, status)
	var part model.CatalogPart
	require.NoError(t, json.Unmarshal(data, &part))
	assert.Equal(t, 4, part.Quantity)
}

func TestGetUnknownPart(t *testing.T) {
	status, data := do(t, newTestApp(t), http.MethodGet, "/parts/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, errorMessage(t, data), "not found")
}

func TestCreatePart(t *testing.T) {
	app := newTestApp(t)

	status, data := do(t, app, http.MethodPost, "/parts", `{"name":"Tampo","quantity":3}`)
	require.Equal(t, http.StatusCreated, status)
	var part model.CatalogPart
	require.NoError(t, json.Unmarshal(data, &part))
	assert.NotEmpty(t, part.ID)
	assert.Equal(t, 3, part.Quantity)

	w, h, ok := part.Shape.(*model.Polygon).RectSize()
	require.True(t, ok)
	assert.Equal(t, model.DefaultPartSize, w)
	assert.Equal(t, model.DefaultPartSize, h)

	status, _ = do(t, app, http.MethodGet, "/parts/"+part.ID, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestCreatePartValidation(t *testing.T) {
	app := newTestApp(t)
	tests := map[string]string{
		"malformed":      `{"name":`,
		"missing name":   `{"quantity":1}`,
		"negative count": `{"name":"x","quantity":-1}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			status, data := do(t, app, http.MethodPost, "/parts", body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.NotEmpty(t, errorMessage(t, data))
		})
	}
}

func TestBulkCreateParts(t *testing.T) {
	app := newTestApp(t)

	status, data := do(t, app, http.MethodPost, "/parts/bulk", `[{"name":"A","quantity":1},{"name":"B","quantity":2}]`)
	require.Equal(t, http.StatusCreated, status)
	var created []model.CatalogPart
	require.NoError(t, json.Unmarshal(data, &created))
	require.Len(t, created, 2)
	assert.Equal(t, "B", created[1].Name)

	_, data = do(t, app, http.MethodGet, "/parts", "")
	var parts []model.CatalogPart
	require.NoError(t, json.Unmarshal(data, &parts))
	assert.Len(t, parts, 5)
}

func TestBulkCreateRejectsWholeBatch(t *testing.T) {
	app := newTestApp(t)

	status, data := do(t, app, http.MethodPost, "/parts/bulk", `[{"name":"A","quantity":1},{"name":"","quantity":2}]`)
	require.Equal(t, http.StatusBadRequest, status)
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, 1.0, body["index"])

	_, data = do(t, app, http.MethodGet, "/parts", "")
	var parts []model.CatalogPart
	require.NoError(t, json.Unmarshal(data, &parts))
	assert.Len(t, parts, 3)

	status, _ = do(t, app, http.MethodPost, "/parts/bulk", `{"name":"A"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUpdatePart(t *testing.T) {
	app := newTestApp(t)

	body := `{"id":"ignored","name":"Peça B2","quantity":7,"border_style":"dotted","border_color":"#ff0000","fill_color":"#ffd6a5"}`
	status, data := do(t, app, http.MethodPut, "/parts/102", body)
	require.Equal(t, http.StatusOK, status)

	var part model.CatalogPart
	require.NoError(t, json.Unmarshal(data, &part))
	assert.Equal(t, "102", part.ID)
	assert.Equal(t, "Peça B2", part.Name)
	assert.Equal(t, model.BorderDotted, part.BorderStyle)

	// Shape kept from the stored part
	w, h, ok := part.Shape.(*model.Polygon).RectSize()
	require.True(t, ok)
	assert.Equal(t, 564.0, w)
	assert.Equal(t, 480.0, h)
	assert.Equal(t, "102", part.Shape.ShapeID())
}

func TestUpdatePartWithShape(t *testing.T) {
	app := newTestApp(t)

	body := `{"name":"Redonda","quantity":1,"shape":{"type":"circle","id":"x","position":{"x":50,"y":50},"radius":20,"unit":"cm"}}`
	status, data := do(t, app, http.MethodPut, "/parts/101", body)
	require.Equal(t, http.StatusOK, status, string(data))

	var part model.CatalogPart
	require.NoError(t, json.Unmarshal(data, &part))
	c, ok := part.Shape.(*model.Circle)
	require.True(t, ok)
	assert.Equal(t, "101", c.ID)
	assert.True(t, c.Position.IsZero())
	assert.InDelta(t, 200, c.CanonicalRadius(), 1e-9)
}

func TestUpdatePartErrors(t *testing.T) {
	app := newTestApp(t)

	status, _ := do(t, app, http.MethodPut, "/parts/missing", `{"name":"x","quantity":1}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, http.MethodPut, "/parts/101", `{"name":"x","quantity":1,"shape":{"type":"ellipse"}}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPut, "/parts/101", `{"name":"x","quantity":1,"shape":{"type":"circle","radius":-5,"unit":"mm"}}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPut, "/parts/101", `{"name":"x","quantity":-2}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMaterials(t *testing.T) {
	app := newTestApp(t)

	status, data := do(t, app, http.MethodGet, "/materials", "")
	require.Equal(t, http.StatusOK, status)
	var materials []model.Material
	require.NoError(t, json.Unmarshal(data, &materials))
	require.Len(t, materials, 3)
	assert.Equal(t, "Chapa C", materials[2].Name)

	status, data = do(t, app, http.MethodPost, "/materials", `{"name":"Chapa D","width":3000,"height":2000}`)
	require.Equal(t, http.StatusCreated, status)
	var mat model.Material
	require.NoError(t, json.Unmarshal(data, &mat))
	assert.Equal(t, 6e6, mat.Area())

	status, data = do(t, app, http.MethodGet, "/materials/"+mat.ID, "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(data), "Chapa D")

	status, _ = do(t, app, http.MethodGet, "/materials/zzz", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreateMaterialValidation(t *testing.T) {
	app := newTestApp(t)
	for _, body := range []string{`{"width":10,"height":10}`, `{"name":"x","width":0,"height":10}`, `not json`} {
		status, data := do(t, app, http.MethodPost, "/materials", body)
		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.NotEmpty(t, errorMessage(t, data))
	}
}
