package table

import (
	"github.com/go-jet/jet/v2/postgres"
)

var Preference = newPreferenceTable("public", "preference", "")

type preferenceTable struct {
	postgres.Table

	// Columns
	Key       postgres.ColumnString
	Value     postgres.ColumnString
	UpdatedAt postgres.ColumnTimestampz

	AllColumns     postgres.ColumnList
	MutableColumns postgres.ColumnList
}

type PreferenceTable struct {
	preferenceTable

	EXCLUDED preferenceTable
}

// AS creates new PreferenceTable with assigned alias
func (a PreferenceTable) AS(alias string) *PreferenceTable {
	return newPreferenceTable(a.SchemaName(), a.TableName(), alias)
}

// Schema creates new PreferenceTable with assigned schema name
func (a PreferenceTable) FromSchema(schemaName string) *PreferenceTable {
	return newPreferenceTable(schemaName, a.TableName(), a.Alias())
}

// WithPrefix creates new PreferenceTable with assigned table prefix
func (a PreferenceTable) WithPrefix(prefix string) *PreferenceTable {
	return newPreferenceTable(a.SchemaName(), prefix+a.TableName(), a.TableName())
}

// WithSuffix creates new PreferenceTable with assigned table suffix
func (a PreferenceTable) WithSuffix(suffix string) *PreferenceTable {
	return newPreferenceTable(a.SchemaName(), a.TableName()+suffix, a.TableName())
}

func newPreferenceTable(schemaName, tableName, alias string) *PreferenceTable {
	return &PreferenceTable{
		preferenceTable: newPreferenceTableImpl(schemaName, tableName, alias),
		EXCLUDED:        newPreferenceTableImpl("", "excluded", ""),
	}
}

func newPreferenceTableImpl(schemaName, tableName, alias string) preferenceTable {
	var (
		KeyColumn       = postgres.StringColumn("key")
		ValueColumn     = postgres.StringColumn("value")
		UpdatedAtColumn = postgres.TimestampzColumn("updated_at")
		allColumns      = postgres.ColumnList{KeyColumn, ValueColumn, UpdatedAtColumn}
		mutableColumns  = postgres.ColumnList{ValueColumn, UpdatedAtColumn}
	)

	return preferenceTable{
		Table: postgres.NewTable(schemaName, tableName, alias, allColumns...),

		//Columns
		Key:       KeyColumn,
		Value:     ValueColumn,
		UpdatedAt: UpdatedAtColumn,

		AllColumns:     allColumns,
		MutableColumns: mutableColumns,
	}
}
