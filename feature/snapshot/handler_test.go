package snapshot

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) (*fiber.App, *memBackend) {
	backend := &memBackend{data: []byte(packagesSnapshot), found: true}
	app := fiber.New()
	NewHandler(newTestManager(backend)).RegisterRoutes(app)
	return app, backend
}

func call(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]any
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestHandler_SnapshotRoutes(t *testing.T) {
	app, backend := setupTestApp(t)

	status, body := call(t, app, "GET", "/snapshot/status", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["loaded"])

	status, body = call(t, app, "GET", "/snapshot", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 3.0, body["schemaVersion"])

	flights := map[string]any{"flights": []map[string]string{{"airline": "TAP", "departureDate": "2025-06-10", "returnDate": "2025-06-20"}}}
	status, body = call(t, app, "PUT", "/snapshot/packages/pkg-1/flights?dry_run=true", flights)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["dry_run"])
	assert.Zero(t, backend.saves)

	status, _ = call(t, app, "PUT", "/snapshot/packages/pkg-1/flights", flights)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, backend.saves)

	status, body = call(t, app, "PATCH", "/snapshot/packages/pkg-1/groups/g1/status", map[string]any{"status": "pending_validation", "clearValidation": true})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "pending_validation", body["status"])
	assert.NotContains(t, body, "validationDate")

	status, body = call(t, app, "POST", "/snapshot/reload", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["loaded"])
}

func TestHandler_UpdateFlightsRequiresList(t *testing.T) {
	app, backend := setupTestApp(t)

	status, _ := call(t, app, "PUT", "/snapshot/packages/pkg-1/flights", map[string]any{"status": "published"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Zero(t, backend.saves)

	// An explicit empty list still removes every group.
	status, body := call(t, app, "PUT", "/snapshot/packages/pkg-1/flights", map[string]any{"flights": []any{}})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, backend.saves)
	plan := body["plan"].(map[string]any)
	assert.Empty(t, plan["departures"])
}

func TestHandler_SnapshotErrors(t *testing.T) {
	app, _ := setupTestApp(t)

	status, _ := call(t, app, "PUT", "/snapshot/packages/missing/flights", map[string]any{"flights": []any{}})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = call(t, app, "PATCH", "/snapshot/packages/pkg-1/groups/nope/status", map[string]any{"status": "validated"})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body := call(t, app, "PATCH", "/snapshot/packages/pkg-1/groups/g1/status", map[string]any{"status": "done"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])
}
