package migrate

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacySnapshot = `{
  "schemaVersion": 0,
  "packages": [
    {
      "id": "pkg-legacy",
      "ops": {
        "opsId": "ops-legacy",
        "groups": [
          {
            "id": "grp-1",
            "opsStatus": "validate",
            "validatedAt": "2024-01-01T00:00:00.000Z",
            "departure_date": "2024-02-01",
            "airline": "TAP",
            "flightLabel": "TAP - départ 2024-02-01"
          },
          {
            "id": "grp-2",
            "status": "pending",
            "flightDate": "2024-03-10",
            "suppliers": [{"name": "Riad Atlas", "cost": 1250.50}]
          }
        ]
      }
    }
  ],
  "bookings": [
    {
      "id": "bkg-legacy",
      "packageId": "pkg-legacy",
      "payment": {"totalPrice": 0, "paidAmount": 0},
      "groupId": "grp-1",
      "opsGroupId": "grp-2"
    }
  ]
}`

func decodeFixture(t *testing.T, raw string) State {
	t.Helper()
	state, err := Decode([]byte(raw))
	require.NoError(t, err)
	return state
}

func dig(t *testing.T, v any, path ...any) any {
	t.Helper()
	for _, p := range path {
		switch key := p.(type) {
		case string:
			m, ok := v.(map[string]any)
			require.True(t, ok, "expected object at %v", key)
			v = m[key]
		case int:
			s, ok := v.([]any)
			require.True(t, ok, "expected array at %d", key)
			require.Greater(t, len(s), key)
			v = s[key]
		}
	}
	return v
}

func TestMigrate_LegacySnapshot(t *testing.T) {
	migrated, report := Default().MigrateWithReport(decodeFixture(t, legacySnapshot))

	assert.Equal(t, CurrentSchemaVersion(), migrated.Version())
	assert.Equal(t, 0, report.From)
	assert.Equal(t, 3, report.To)
	assert.Equal(t, []string{"ops-status", "booking-departure-group", "group-collections"}, report.Applied)

	project := dig(t, map[string]any(migrated), "packages", 0, "opsProject")
	assert.Equal(t, "ops-legacy", dig(t, project, "id"))
	assert.Equal(t, "pkg-legacy", dig(t, project, "packageId"))

	first := dig(t, project, "groups", 0)
	assert.Equal(t, "validated", dig(t, first, "status"))
	assert.Equal(t, "2024-01-01T00:00:00.000Z", dig(t, first, "validationDate"))
	assert.Equal(t, "2024-02-01", dig(t, first, "departureDate"))
	assert.Equal(t, "TAP - depart 2024-02-01", dig(t, first, "flightLabel"))
	assert.Equal(t, []any{}, dig(t, first, "suppliers"))
	assert.Equal(t, []any{}, dig(t, first, "timeline"))

	second := dig(t, project, "groups", 1)
	assert.Equal(t, "pending_validation", dig(t, second, "status"))
	assert.Equal(t, "2024-03-10", dig(t, second, "departureDate"))
	assert.Equal(t, "Riad Atlas", dig(t, second, "suppliers", 0, "name"))
	_, hasValidation := second.(map[string]any)["validationDate"]
	assert.False(t, hasValidation)

	booking := dig(t, map[string]any(migrated), "bookings", 0)
	assert.Equal(t, "grp-1", dig(t, booking, "departureGroupId"))
}

func TestMigrate_DoesNotModifyInput(t *testing.T) {
	input := decodeFixture(t, legacySnapshot)
	before, err := input.Encode()
	require.NoError(t, err)

	Default().Migrate(input)

	after, err := input.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestMigrate_CurrentOrAheadIsUntouched(t *testing.T) {
	for _, version := range []int{CurrentSchemaVersion(), CurrentSchemaVersion() + 4} {
		raw := `{"schemaVersion": ` + strconv.Itoa(version) + `,
			"packages": [{"id": "p", "ops": {"groups": [{"status": "done"}]}}],
			"bookings": [{"groupId": "g"}], "price": 10.50}`
		input := decodeFixture(t, raw)
		before, err := input.Encode()
		require.NoError(t, err)

		migrated := Default().Migrate(input)

		after, err := migrated.Encode()
		require.NoError(t, err)
		assert.Equal(t, version, migrated.Version())
		assert.Equal(t, string(before), string(after))
	}
}

func TestMigrate_WholeDecimalVersionIsKept(t *testing.T) {
	raw := `{"schemaVersion": 5.0,
		"packages": [{"id": "p", "opsProject": {"groups": [
			{"airline": "TAP", "departureDate": "2025-06-02", "flightLabel": "custom"}]}}]}`
	input := decodeFixture(t, raw)
	before, err := input.Encode()
	require.NoError(t, err)

	migrated, report := Default().MigrateWithReport(input)

	assert.Empty(t, report.Applied)
	assert.Equal(t, 5, migrated.Version())
	assert.Equal(t, "custom", dig(t, map[string]any(migrated), "packages", 0, "opsProject", "groups", 0, "flightLabel"))
	after, err := migrated.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestMigrate_InvalidVersionStartsAtZero(t *testing.T) {
	for _, raw := range []string{
		`{"bookings": [{"groupId": "g"}]}`,
		`{"schemaVersion": -1, "bookings": [{"groupId": "g"}]}`,
		`{"schemaVersion": 1.5, "bookings": [{"groupId": "g"}]}`,
		`{"schemaVersion": "2", "bookings": [{"groupId": "g"}]}`,
		`{"schemaVersion": null, "bookings": [{"groupId": "g"}]}`,
	} {
		migrated := Default().Migrate(decodeFixture(t, raw))
		assert.Equal(t, CurrentSchemaVersion(), migrated.Version(), raw)
		assert.Equal(t, "g", dig(t, map[string]any(migrated), "bookings", 0, "departureGroupId"), raw)
	}
}

func TestMigrate_ResumesFromStoredVersion(t *testing.T) {
	// At version 1 the ops-status step already ran and must not run again.
	raw := `{"schemaVersion": 1,
		"packages": [{"id": "p", "opsProject": {"groups": [{"status": "done"}]}}],
		"bookings": [{"flightGroupId": "g"}]}`

	migrated, report := Default().MigrateWithReport(decodeFixture(t, raw))

	assert.Equal(t, []string{"booking-departure-group", "group-collections"}, report.Applied)
	assert.Equal(t, "done", dig(t, map[string]any(migrated), "packages", 0, "opsProject", "groups", 0, "status"))
	assert.Equal(t, "g", dig(t, map[string]any(migrated), "bookings", 0, "departureGroupId"))
}

func TestMigrate_UnexpectedShapesPassThrough(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"Empty", `{}`},
		{"PackagesNotArray", `{"packages": {"id": "p"}, "bookings": "broken"}`},
		{"PackageNotObject", `{"packages": ["p", 3, null]}`},
		{"NoOpsProject", `{"packages": [{"id": "p"}]}`},
		{"GroupsNotArray", `{"packages": [{"id": "p", "ops": {"groups": "none"}}]}`},
		{"GroupNotObject", `{"packages": [{"opsProject": {"groups": [null, "g"]}}]}`},
		{"BookingNotObject", `{"bookings": [null, 1]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := decodeFixture(t, tt.raw)

			migrated := Default().Migrate(input)

			assert.Equal(t, CurrentSchemaVersion(), migrated.Version())
			delete(migrated, VersionKey)
			expected := decodeFixture(t, tt.raw)
			assert.Equal(t, expected, migrated)
		})
	}
}

func TestMigrate_NilState(t *testing.T) {
	migrated := Default().Migrate(nil)
	assert.Equal(t, State{VersionKey: CurrentSchemaVersion()}, migrated)
}

func TestMigrate_EmptyRegistryClampsToZero(t *testing.T) {
	migrated := NewRegistry().Migrate(State{})
	assert.Equal(t, 0, migrated[VersionKey])
}

func TestDecode(t *testing.T) {
	state, err := Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, state)

	state, err = Decode([]byte("null"))
	require.NoError(t, err)
	assert.NotNil(t, state)

	_, err = Decode([]byte("[1,2]"))
	assert.Error(t, err)

	state, err = Decode([]byte(`{"schemaVersion": 2}`))
	require.NoError(t, err)
	assert.Equal(t, 2, state.Version())
}
