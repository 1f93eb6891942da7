package source_test

import (
	"strings"
	"testing"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRead_RosterWithBOMAndStrayWhitespace(t *testing.T) {
	data := "\ufeffNome, CPF,Tipo,Email,Telefone,Município,Idade\n" +
		"Ana Silva,123.456.789-00,Cliente,ana@example.com,11999990000,Campinas,34.0\n" +
		"Bruno Costa,987.654.321-00,Usuario,,,,\n"

	table, err := source.Read(strings.NewReader(data), source.FormatCSV, source.RosterSchema, source.Options{})
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	ana := table.Rows[0]
	assert.Equal(t, 2, ana.Line)
	assert.Equal(t, "Ana Silva", ana.Get(source.ColName))
	assert.Equal(t, "123.456.789-00", ana.Get(source.ColTaxID))
	assert.Equal(t, "Cliente", ana.Get(source.ColRole))
	assert.Equal(t, "Campinas", *ana.Optional(source.ColMunicipality))
	assert.Equal(t, "34.0", ana.Get(source.ColAge))

	bruno := table.Rows[1]
	assert.Equal(t, 3, bruno.Line)
	assert.Nil(t, bruno.Optional(source.ColEmail))
	assert.Nil(t, bruno.Optional(source.ColAge))
}

func TestRead_HeaderMatchingIgnoresCaseAndComposition(t *testing.T) {
	// "Município" spelled with a combining acute accent
	data := "NOME,cpf/cnpj,tipo,Munici\u0301pio\nAna,1,cliente,Campinas\n"

	table, err := source.Read(strings.NewReader(data), source.FormatCSV, source.RosterSchema, source.Options{})
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "Ana", table.Rows[0].Get(source.ColName))
	assert.Equal(t, "1", table.Rows[0].Get(source.ColTaxID))
	assert.Equal(t, "Campinas", table.Rows[0].Get(source.ColMunicipality))
}

func TestRead_MissingRequiredColumnFailsFast(t *testing.T) {
	data := "Nome,Tipo\nAna,Cliente\n"

	_, err := source.Read(strings.NewReader(data), source.FormatCSV, source.RosterSchema, source.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrMissingColumn)
	assert.Contains(t, err.Error(), "tax_id")
	assert.Contains(t, err.Error(), "CPF")
}

func TestRead_EmptyFile(t *testing.T) {
	_, err := source.Read(strings.NewReader(""), source.FormatCSV, source.CatalogSchema, source.Options{})
	assert.ErrorContains(t, err, "missing header")
}

func TestRead_CustomDelimiterAndBlankLines(t *testing.T) {
	data := "Segmento;Modelo\nMotos;CG 160\n;\n\nCarros;Civic\n"

	table, err := source.Read(strings.NewReader(data), source.FormatCSV, source.CatalogSchema, source.Options{Delimiter: ";"})
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "CG 160", table.Rows[0].Get(source.ColModel))
	assert.Equal(t, "Civic", table.Rows[1].Get(source.ColModel))
	assert.Equal(t, 5, table.Rows[1].Line)
}

func TestRead_ShortRecordLeavesColumnsEmpty(t *testing.T) {
	data := "Cliente,Veículo,Vendedor,Data\nAna Silva,CG 160\n"

	table, err := source.Read(strings.NewReader(data), source.FormatCSV, source.SalesSchema, source.Options{})
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "", table.Rows[0].Get(source.ColSalesperson))
	assert.Nil(t, table.Rows[0].Optional(source.ColPaymentMethod))
}

func TestRead_XLSXFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Segmento", "Modelo"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Motos", "CG 160"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"Motos", "Biz 125"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	table, err := source.Read(buf, source.FormatXLSX, source.CatalogSchema, source.Options{})
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "Motos", table.Rows[0].Get(source.ColSegment))
	assert.Equal(t, "Biz 125", table.Rows[1].Get(source.ColModel))
	assert.Equal(t, 3, table.Rows[1].Line)
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", "  ", "nan", "NaN", "null", "None"} {
		assert.True(t, source.IsMissing(v), v)
	}
	for _, v := range []string{"Ana", "0", "nancy"} {
		assert.False(t, source.IsMissing(v), v)
	}
}

func TestFormatFromName(t *testing.T) {
	assert.Equal(t, source.FormatXLSX, source.FormatFromName("vendas.XLSX"))
	assert.Equal(t, source.FormatCSV, source.FormatFromName("vendas.csv"))
	assert.Equal(t, source.FormatCSV, source.FormatFromName("vendas"))
}

func TestSchemaFor(t *testing.T) {
	s, ok := source.SchemaFor("Roster")
	require.True(t, ok)
	assert.Equal(t, "roster", s.Kind)

	_, ok = source.SchemaFor("invoices")
	assert.False(t, ok)
}

func TestRowValues(t *testing.T) {
	row := source.NewRow(3, map[string]string{source.ColName: "Ana", source.ColTaxID: "1"})
	values := row.Values()
	assert.Equal(t, map[string]string{source.ColName: "Ana", source.ColTaxID: "1"}, values)

	values[source.ColName] = "changed"
	assert.Equal(t, "Ana", row.Get(source.ColName))

	assert.Nil(t, source.Row{Line: 1}.Values())
}
