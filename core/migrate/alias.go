package migrate

import (
	"travel-ops/core/reconcile"
	"travel-ops/core/utils"
)

// statusAliases maps historical departure status spellings to the canonical enum.
var statusAliases = map[string]reconcile.Status{
	"validated":           reconcile.StatusValidated,
	"validate":            reconcile.StatusValidated,
	"done":                reconcile.StatusValidated,
	"closed":              reconcile.StatusValidated,
	"approved":            reconcile.StatusValidated,
	"validation_pending":  reconcile.StatusPendingValidation,
	"pending_validation":  reconcile.StatusPendingValidation,
	"pending":             reconcile.StatusPendingValidation,
	"to_validate":         reconcile.StatusPendingValidation,
	"awaiting_validation": reconcile.StatusPendingValidation,
}

// Field alias priority lists. The first key holding a non-null value wins.
var (
	groupStatusFields     = []string{"status", "opsStatus"}
	validationDateFields  = []string{"validationDate", "validatedAt", "validation_date", "confirmedAt"}
	departureDateFields   = []string{"departureDate", "departure_date", "flightDate"}
	opsProjectFields      = []string{"opsProject", "ops"}
	opsProjectIDFields    = []string{"id", "opsId"}
	departureGroupIDField = []string{"departureGroupId", "groupId", "opsGroupId", "flightGroupId"}
)

// ResolveStatus normalizes a raw stored status. Known aliases map to their
// canonical value, the literal "validated" is kept, anything else becomes
// pending_validation.
func ResolveStatus(raw any) reconcile.Status {
	s, ok := utils.String(raw)
	if !ok {
		return reconcile.StatusPendingValidation
	}
	if status, known := statusAliases[s]; known {
		return status
	}
	if s == string(reconcile.StatusValidated) {
		return reconcile.StatusValidated
	}
	return reconcile.StatusPendingValidation
}

// ResolveField returns the value of the first alias present in m.
func ResolveField(m map[string]any, aliases []string) (any, bool) {
	return utils.FirstPresent(m, aliases...)
}

// forwardFill sets aliases[0] on m from the first present alias. m is left
// untouched when none is present.
func forwardFill(m map[string]any, aliases []string) {
	if v, ok := ResolveField(m, aliases); ok {
		m[aliases[0]] = v
	}
}
