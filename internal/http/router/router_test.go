package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/auth"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/config"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/http/handler"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/http/middleware"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/http/router"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/pipeline"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/service"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/storage"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testAPIKey = "test-api-key"

const (
	catalogCSV = "Segmento,Modelo,Ano,Preço\n" +
		"Motos,CG 160,2024,\"R$ 15.990,00\"\n" +
		"Motos,Biz 125,,\n" +
		"Carros,Civic,2023,\n"

	rosterCSV = "Nome,CPF,Tipo,Município,Idade\n" +
		"Ana Silva,123.456.789-00,Cliente,Campinas,34\n" +
		"Carla Souza,222.333.444-55,Cliente,Sorocaba,51\n" +
		"Bruno Costa,987.654.321-00,Vendedor,,\n"

	salesCSV = "Cliente,Veículo,Vendedor,Data,Forma de venda\n" +
		"Ana Silva,CG 160,Bruno Costa,2024-03-05,Financiamento\n" +
		"Carla Souza,Civic,Unknown Person,2024-04-05,À vista\n"
)

type testServer struct {
	handler http.Handler
	store   *repository.Store
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := repository.NewStore(db)
	logger := zap.NewNop()

	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		App:  config.AppConfig{Name: "dealerconnect", Environment: "development"},
		Auth: config.AuthConfig{APIKey: testAPIKey, JWTSecret: "test-secret"},
		Pipeline: config.PipelineConfig{
			CatalogFile: "catalog.csv",
			RosterFile:  "roster.csv",
			SalesFile:   "sales.csv",
			Delimiter:   ",",
			Seed:        42,
		},
		Storage:    config.StorageConfig{MaxUploadSizeMB: 1},
		Classifier: config.ClassifierConfig{Threshold: 6},
		RateLimit:  config.RateLimitConfig{Enabled: false},
	}

	reg := prometheus.NewRegistry()
	orch := pipeline.NewOrchestrator(store, files, cfg.Pipeline, logger,
		pipeline.WithMetrics(pipeline.NewMetrics(reg)),
		pipeline.WithBcryptCost(bcrypt.MinCost),
	)

	validator := auth.NewJWTValidator(cfg.Auth.JWTSecret)
	classifier := service.NewClassifier(&cfg.Classifier, logger)

	handlers := router.Handlers{
		Catalog:   handler.NewCatalogHandler(service.NewCatalogService(store.Segments, store.Vehicles, logger), logger),
		Customer:  handler.NewCustomerHandler(service.NewCustomerService(store.Customers, classifier, logger), logger),
		Sale:      handler.NewSaleHandler(service.NewSaleService(store.Sales, logger), logger),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(store.Persons, store.Customers, logger), logger),
		Pipeline: handler.NewPipelineHandler(
			service.NewPipelineService(orch, files, cfg.Pipeline, cfg.Storage.MaxUploadSizeMB, logger),
			cfg.Storage.MaxUploadSizeMB, logger),
		Auth: handler.NewAuthHandler(
			service.NewAuthService(store.Persons, store.StaffUsers, validator, time.Hour, logger), logger),
	}

	rt := router.NewRouter(cfg, logger, db,
		auth.NewMiddleware(&cfg.Auth, validator, logger),
		middleware.NewRateLimiter(&cfg.RateLimit, logger),
		middleware.NewHTTPMetrics(reg),
		reg,
		handlers,
	)
	return &testServer{handler: rt.Setup(), store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

var apiKey = map[string]string{"x-api-key": testAPIKey}

func decode(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target), w.Body.String())
}

// populate uploads the three sources and runs the pipeline through the API
func (s *testServer) populate(t *testing.T) pipeline.Report {
	t.Helper()
	for kind, data := range map[string]string{"catalog": catalogCSV, "roster": rosterCSV, "sales": salesCSV} {
		w := s.do(t, http.MethodPut, "/api/v1/pipeline/sources/"+kind, strings.NewReader(data), apiKey)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := s.do(t, http.MethodPost, "/api/v1/pipeline/run", nil, apiKey)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report pipeline.Report
	decode(t, w, &report)
	return report
}

type customerPage struct {
	Data  []domain.CustomerDTO `json:"data"`
	Total int64                `json:"total"`
}

func TestHealthEndpoints(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w = s.do(t, http.MethodGet, "/health/db", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestPipelineEndpoints_RequireAdmin(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/pipeline/run", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/pipeline/sources/catalog", strings.NewReader(catalogCSV),
		map[string]string{"x-api-key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	s.populate(t)

	// a salesperson may log in but not repopulate
	login, _ := json.Marshal(domain.LoginRequest{TaxID: "987.654.321-00", Password: pipeline.DefaultStaffCredential})
	w = s.do(t, http.MethodPost, "/api/v1/auth/login", bytes.NewReader(login), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res domain.LoginResponse
	decode(t, w, &res)
	assert.Equal(t, domain.StaffProfileSalesperson, res.User.Profile)

	bearer := map[string]string{"Authorization": "Bearer " + res.Token}
	w = s.do(t, http.MethodGet, "/api/v1/auth/me", nil, bearer)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, "/api/v1/pipeline/run", nil, bearer)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPipelineRun_ThenQueries(t *testing.T) {
	s := setupServer(t)
	report := s.populate(t)

	assert.Equal(t, pipeline.StateDone, report.State)
	sales := report.Stage(pipeline.StageSales)
	require.NotNil(t, sales)
	assert.Equal(t, 2, sales.Imported)

	t.Run("segments", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/segments", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var segments []domain.SegmentDTO
		decode(t, w, &segments)
		require.Len(t, segments, 2)
		assert.Equal(t, "Carros", segments[0].Name)
	})

	t.Run("vehicles search", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/vehicles?search=cg", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var page struct {
			Data []domain.VehicleDTO `json:"data"`
		}
		decode(t, w, &page)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "CG 160", page.Data[0].Model)
		require.NotNil(t, page.Data[0].Price)
		assert.Equal(t, "15990", page.Data[0].Price.String())
	})

	t.Run("vehicles bad segment", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/vehicles?segment=abc", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	var ana domain.CustomerDTO
	t.Run("customers by formatted tax id", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/customers?taxId=123.456.789-00", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var page customerPage
		decode(t, w, &page)
		require.Len(t, page.Data, 1)
		ana = page.Data[0]
		assert.Equal(t, "Ana Silva", ana.Person.Name)
		assert.Equal(t, domain.ClassificationUnclassified, ana.Classification)
		assert.Equal(t, domain.CustomerStatusNewContact, ana.Status)
	})

	t.Run("customer by id", func(t *testing.T) {
		w := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/customers/%d", ana.PersonID), nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, http.MethodGet, "/api/v1/customers/99999", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = s.do(t, http.MethodGet, "/api/v1/customers/abc", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update status", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/customers/%d/status", ana.PersonID)

		w := s.do(t, http.MethodPatch, path, strings.NewReader(`{"status":"negotiating"}`), nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = s.do(t, http.MethodPatch, path, strings.NewReader(`{"status":"archived"}`), apiKey)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		var apiErr domain.APIError
		decode(t, w, &apiErr)
		assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
		assert.Contains(t, apiErr.Errors, "status")

		w = s.do(t, http.MethodPatch, path, strings.NewReader(`{"status":"negotiating"}`), apiKey)
		require.Equal(t, http.StatusOK, w.Code)
		var dto domain.CustomerDTO
		decode(t, w, &dto)
		assert.Equal(t, domain.CustomerStatusNegotiating, dto.Status)
	})

	t.Run("classify", func(t *testing.T) {
		w := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/customers/%d/classify", ana.PersonID), nil, apiKey)
		require.Equal(t, http.StatusOK, w.Code)
		var res domain.ClassificationResultDTO
		decode(t, w, &res)
		assert.NotEqual(t, domain.ClassificationUnclassified, res.Classification)
	})

	t.Run("sales most recent first", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/sales", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var page struct {
			Data []domain.SaleDTO `json:"data"`
		}
		decode(t, w, &page)
		require.Len(t, page.Data, 2)
		assert.Equal(t, "Civic", page.Data[0].Vehicle.Model)
		assert.Equal(t, pipeline.SentinelName, page.Data[0].Salesperson.Person.Name)
		assert.Equal(t, "Bruno Costa", page.Data[1].Salesperson.Person.Name)

		w = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/sales?customer=%d", ana.PersonID), nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		decode(t, w, &page)
		assert.Len(t, page.Data, 1)
	})

	t.Run("dashboard", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/dashboard/stats", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var stats domain.DashboardStats
		decode(t, w, &stats)
		assert.Equal(t, int64(2), stats.TotalCustomers)
		// two synthetic leads, Bruno and the sentinel
		assert.Equal(t, int64(4), stats.TotalLeads)
	})

	t.Run("status", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/pipeline/status", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var status service.PipelineStatus
		decode(t, w, &status)
		assert.Equal(t, pipeline.StateDone, status.State)
		require.NotNil(t, status.LastReport)
		assert.Equal(t, report.RunID, status.LastReport.RunID)
	})

	t.Run("metrics", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/metrics", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "dealerconnect_pipeline_runs_total")
		assert.Contains(t, w.Body.String(), "dealerconnect_http_requests_total")
	})
}

func TestUploadSource_Rejections(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodPut, "/api/v1/pipeline/sources/inventory", strings.NewReader("a\n"), apiKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/pipeline/sources/catalog", strings.NewReader("Modelo\nCivic\n"), apiKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	big := "Segmento,Modelo\n" + strings.Repeat("Motos,CG 160\n", 100_000)
	w = s.do(t, http.MethodPut, "/api/v1/pipeline/sources/catalog", strings.NewReader(big), apiKey)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestUploadSource_Multipart(t *testing.T) {
	s := setupServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "catalog.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(catalogCSV))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := s.do(t, http.MethodPut, "/api/v1/pipeline/sources/catalog", &buf, map[string]string{
		"x-api-key":    testAPIKey,
		"Content-Type": mw.FormDataContentType(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var upload service.SourceUpload
	decode(t, w, &upload)
	assert.Equal(t, 3, upload.Rows)
	assert.Equal(t, "catalog.csv", upload.Name)
}

func TestPipelineRun_MissingSourcesReturnsFailedReport(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/pipeline/run", nil, apiKey)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var report pipeline.Report
	decode(t, w, &report)
	assert.Equal(t, pipeline.StateFailed, report.State)
	assert.NotEmpty(t, report.Error)
}
