package pipeline_test

import (
	"context"
	"strings"
	"testing"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/pipeline"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/source"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/storage"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupStore(t *testing.T) *repository.Store {
	return repository.NewStore(testutil.SetupTestDB(t))
}

func stageDeps(store *repository.Store) pipeline.StageDeps {
	return pipeline.StageDeps{Store: store, Logger: zap.NewNop()}
}

func readTable(t *testing.T, schema source.Schema, data string) *source.Table {
	t.Helper()
	table, err := source.Read(strings.NewReader(data), source.FormatCSV, schema, source.Options{})
	require.NoError(t, err)
	return table
}

// writeSources stores the three input files in a local storage directory
func writeSources(t *testing.T, catalog, roster, sales string) *storage.LocalStorage {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	for name, data := range map[string]string{
		"catalog.csv": catalog,
		"roster.csv":  roster,
		"sales.csv":   sales,
	} {
		_, err := s.Put(ctx, name, strings.NewReader(data))
		require.NoError(t, err)
	}
	return s
}

const (
	catalogCSV = "Segmento,Modelo\n" +
		"Motos,CG 160\n" +
		"Motos,Biz 125\n" +
		"Carros,Civic\n"

	rosterCSV = "\ufeffNome, CPF,Tipo,Email,Município,Idade\n" +
		"Ana Silva,123.456.789-00,Cliente,ana@example.com,Campinas,34.0\n" +
		"Carla Souza,222.333.444-55,Cliente,,Sorocaba,51\n" +
		"Diego Lima,333.444.555-66,Cliente,,Campinas,\n" +
		"Bruno Costa,987.654.321-00,Usuario,,,\n" +
		"Ana Silva,12345678900,Cliente,,,\n"

	salesCSV = "Cliente,Veículo,Vendedor,Data,Forma de venda\n" +
		"Ana Silva,CG 160,Bruno Costa,2024-03-05,Financiamento\n" +
		"Carla Souza,Civic,Unknown Person,05/04/2024,À vista\n" +
		"Diego Lima,Fusca,Bruno Costa,2024-04-06,Consórcio\n"
)
