// Package source reads the tabular input files of the population pipeline.
//
// Each file kind declares its columns and the header spellings accepted for
// them. Headers are resolved once when the file is opened; a missing required
// column fails the open instead of surfacing row by row.
package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrMissingColumn is returned when a required column has no matching header
var ErrMissingColumn = errors.New("missing required column")

// Column names used by the pipeline stages
const (
	ColSegment = "segment"
	ColModel   = "model"
	ColYear    = "year"
	ColPrice   = "price"
	ColChassis = "chassis"

	ColName         = "name"
	ColTaxID        = "tax_id"
	ColRole         = "role"
	ColEmail        = "email"
	ColPhone        = "phone"
	ColMunicipality = "municipality"
	ColAge          = "age"

	ColCustomer      = "customer"
	ColVehicle       = "vehicle"
	ColSalesperson   = "salesperson"
	ColDate          = "date"
	ColPaymentMethod = "payment_method"
)

// Column declares a logical column and the header aliases that map to it
type Column struct {
	Name     string
	Aliases  []string
	Required bool
}

// Schema is the declared column table of one source file kind
type Schema struct {
	Kind    string
	Columns []Column
}

// CatalogSchema describes the vehicle catalog
var CatalogSchema = Schema{
	Kind: "catalog",
	Columns: []Column{
		{Name: ColSegment, Aliases: []string{"Segmento", "Segment"}, Required: true},
		{Name: ColModel, Aliases: []string{"Modelo", "Model"}, Required: true},
		{Name: ColYear, Aliases: []string{"Ano", "Year"}},
		{Name: ColPrice, Aliases: []string{"Preço", "Preco", "Price", "Valor"}},
		{Name: ColChassis, Aliases: []string{"Chassi", "Chassis"}},
	},
}

// RosterSchema describes the person/customer roster
var RosterSchema = Schema{
	Kind: "roster",
	Columns: []Column{
		{Name: ColName, Aliases: []string{"Nome", "Name"}, Required: true},
		{Name: ColTaxID, Aliases: []string{"CPF", "CPF/CNPJ", "CNPJ"}, Required: true},
		{Name: ColRole, Aliases: []string{"Tipo", "Type"}, Required: true},
		{Name: ColEmail, Aliases: []string{"Email", "E-mail"}},
		{Name: ColPhone, Aliases: []string{"Telefone", "Phone"}},
		{Name: ColMunicipality, Aliases: []string{"Municipio", "Município", "Cidade"}},
		{Name: ColAge, Aliases: []string{"Idade", "Age"}},
	},
}

// SalesSchema describes the historical sales file
var SalesSchema = Schema{
	Kind: "sales",
	Columns: []Column{
		{Name: ColCustomer, Aliases: []string{"Cliente", "Customer"}, Required: true},
		{Name: ColVehicle, Aliases: []string{"Veículo", "Veiculo", "Modelo"}, Required: true},
		{Name: ColSalesperson, Aliases: []string{"Vendedor", "Salesperson"}},
		{Name: ColDate, Aliases: []string{"Data", "Date"}},
		{Name: ColPaymentMethod, Aliases: []string{"Forma de venda", "Forma de pagamento"}},
	},
}

// SchemaFor returns the schema of a file kind (catalog, roster or sales)
func SchemaFor(kind string) (Schema, bool) {
	switch strings.ToLower(kind) {
	case CatalogSchema.Kind:
		return CatalogSchema, true
	case RosterSchema.Kind:
		return RosterSchema, true
	case SalesSchema.Kind:
		return SalesSchema, true
	}
	return Schema{}, false
}

// Format is the encoding of a source file
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromName picks the format from the file extension. Anything that is
// not .xlsx is read as delimited text.
func FormatFromName(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Row is one data row with its logical columns resolved
type Row struct {
	// Line is the 1-based line (csv) or row (xlsx) number in the source file
	Line   int
	values map[string]string
}

// NewRow builds a row from logical column values
func NewRow(line int, values map[string]string) Row {
	return Row{Line: line, values: values}
}

// Get returns the trimmed value of a logical column, or "" when absent
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.values[column])
}

// Optional returns nil when the column is blank or holds a missing-value marker
func (r Row) Optional(column string) *string {
	v := r.Get(column)
	if IsMissing(v) {
		return nil
	}
	return &v
}

// Values returns a copy of the row's logical column values
func (r Row) Values() map[string]string {
	if len(r.values) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// IsMissing reports whether v is blank or a textual missing-value marker
// written by spreadsheet exports (nan, null, none).
func IsMissing(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "nan", "null", "none":
		return true
	}
	return false
}

// Table is a fully read source file
type Table struct {
	Kind string
	Rows []Row
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

func missingColumnError(kind string, col Column) error {
	return fmt.Errorf("%w: %s file has no %q column (accepted headers: %s)",
		ErrMissingColumn, kind, col.Name, strings.Join(col.Aliases, ", "))
}
