package checks

import (
	"fmt"
	"reflect"
	"strings"

	"travel-ops/core/database"
	"travel-ops/feature/departures/models"

	"gorm.io/gorm"
)

// ServerReport strictly types the result of a server integrity check.
type ServerReport struct {
	Driver  string                 `json:"driver"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

// TableReport lists what differs between one table and its model.
type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "error"
}

// CheckServerIntegrity verifies the departure tables using the GORM models as
// the source of truth.
func CheckServerIntegrity(db *gorm.DB) (*ServerReport, error) {
	return checkModels(db, models.All())
}

func checkModels(db *gorm.DB, expected []any) (*ServerReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &ServerReport{
		Driver:  db.Dialector.Name(),
		Tables:  make(map[string]TableReport),
		Matched: true,
		Errors:  []string{},
	}

	for _, model := range expected {
		tabler, ok := model.(interface{ TableName() string })
		if !ok {
			return nil, fmt.Errorf("model %T does not implement TableName", model)
		}
		tableName := tabler.TableName()

		actualCols, err := database.GetTableColumns(db, tableName)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", tableName, err))
			report.Matched = false
			continue
		}

		tblReport := compareColumns(reflect.Indirect(reflect.ValueOf(model)).Type(), actualCols)
		if tblReport.Status != "ok" {
			report.Matched = false
		}
		report.Tables[tableName] = tblReport
	}

	return report, nil
}

// compareColumns checks every tagged field of model against the table.
func compareColumns(model reflect.Type, actualCols []database.ColumnInfo) TableReport {
	tblReport := TableReport{
		MissingColumns: []string{},
		TypeMismatches: []string{},
		Status:         "ok",
	}

	actualMap := make(map[string]database.ColumnInfo, len(actualCols))
	for _, col := range actualCols {
		actualMap[col.Field] = col
	}

	for i := 0; i < model.NumField(); i++ {
		gormTag := model.Field(i).Tag.Get("gorm")

		colName := parseGormColumn(gormTag)
		if colName == "" {
			continue // associations
		}
		actCol, exists := actualMap[colName]
		if !exists {
			tblReport.MissingColumns = append(tblReport.MissingColumns, colName)
			tblReport.Status = "error"
			continue
		}

		expType := strings.ToLower(parseGormType(gormTag))
		if expType == "" {
			continue
		}
		// Soft check: int(11) satisfies int, varchar(36) must match exactly.
		if !strings.Contains(actCol.Type, expType) {
			mismatch := fmt.Sprintf("%s: expected %s, got %s", colName, expType, actCol.Type)
			tblReport.TypeMismatches = append(tblReport.TypeMismatches, mismatch)
			tblReport.Status = "error"
		}
	}

	return tblReport
}

// Helpers to parse simple GORM tags
func parseGormColumn(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "column:") {
			return strings.TrimPrefix(p, "column:")
		}
	}
	return ""
}

func parseGormType(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "type:") {
			return strings.TrimPrefix(p, "type:")
		}
	}
	return ""
}
