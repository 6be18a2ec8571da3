package ui

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabstat/app"
	"tabstat/internal/config"
	idataset "tabstat/internal/dataset"
)

const salesBody = `{
	"name": "sales",
	"rows": [
		{"region": "North", "sales": "$1,200", "units": 3},
		{"region": "South", "sales": "900", "units": 5},
		{"region": "North", "sales": "1,050", "units": 7},
		{"region": "South", "sales": "800", "units": 2}
	]
}`

func newTestServer(t *testing.T, cfg config.ServerConfig) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	service := app.NewAnalysisService(idataset.NewMemoryStore(), config.Default().Analysis, nil)
	server := NewServer(service, cfg, nil)
	server.Initialize()
	return server
}

func do(server *Server, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	return w
}

func upload(t *testing.T, server *Server) string {
	t.Helper()
	w := do(server, http.MethodPost, "/api/datasets", "application/json", []byte(salesBody))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp ingestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Dataset.ID.String()
}

func TestHealth(t *testing.T) {
	server := newTestServer(t, config.Default().Server)

	w := do(server, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestUploadJSON(t *testing.T) {
	server := newTestServer(t, config.Default().Server)

	w := do(server, http.MethodPost, "/api/datasets", "application/json", []byte(salesBody))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp ingestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "sales", resp.Dataset.Name)
	assert.Equal(t, "json", resp.Dataset.Source)
	assert.Equal(t, 4, resp.Dataset.RowCount)
	assert.Equal(t, []string{"sales", "units"}, resp.NumericHeaders)
	assert.Equal(t, []string{"region"}, resp.CategoricalHeaders)
	assert.Len(t, resp.Profiles, 3)
}

func TestUploadMultipartCSV(t *testing.T) {
	server := newTestServer(t, config.Default().Server)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "scores.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("team,score\nred,1\nblue,2\nred,3\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := do(server, http.MethodPost, "/api/datasets", mw.FormDataContentType(), body.Bytes())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp ingestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "scores", resp.Dataset.Name)
	assert.Equal(t, "csv", resp.Dataset.Source)
	assert.Equal(t, []string{"score"}, resp.NumericHeaders)
}

func TestUploadErrors(t *testing.T) {
	cfg := config.Default().Server
	cfg.MaxUploadMB = 1
	server := newTestServer(t, cfg)

	w := do(server, http.MethodPost, "/api/datasets", "application/json", []byte(`{"rows": [`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(server, http.MethodPost, "/api/datasets", "application/json", []byte(`[]`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	big := []byte(`{"rows": ["` + strings.Repeat("x", 2<<20) + `"]}`)
	w = do(server, http.MethodPost, "/api/datasets", "application/json", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestDatasetLifecycle(t *testing.T) {
	server := newTestServer(t, config.Default().Server)
	id := upload(t, server)

	w := do(server, http.MethodGet, "/api/datasets", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)

	w = do(server, http.MethodGet, "/api/datasets/"+id, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(server, http.MethodDelete, "/api/datasets/"+id, "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(server, http.MethodGet, "/api/datasets/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(server, http.MethodGet, "/api/datasets/not-an-id", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	server := newTestServer(t, config.Default().Server)
	id := upload(t, server)

	w := do(server, http.MethodPost, "/api/datasets/"+id+"/stats", "application/json",
		[]byte(`{"variables": ["sales"], "group_by": "region"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		GroupBy string `json:"group_by"`
		Results []struct {
			Group    string `json:"group"`
			Variable string `json:"variable"`
			Stats    struct {
				N    int     `json:"n"`
				Mean float64 `json:"mean"`
			} `json:"stats"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "region", resp.GroupBy)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "North", resp.Results[0].Group)
	assert.Equal(t, 2, resp.Results[0].Stats.N)
	assert.InDelta(t, 1125, resp.Results[0].Stats.Mean, 1e-9)

	w = do(server, http.MethodPost, "/api/datasets/"+id+"/stats", "application/json",
		[]byte(`{"variables": ["region"]}`))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(server, http.MethodPost, "/api/datasets/"+id+"/stats", "application/json",
		[]byte(`{"variables": ["nope"]}`))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(server, http.MethodPost, "/api/datasets/"+id+"/stats", "application/json", []byte(`{"variables": 3}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistogramsEndpoint(t *testing.T) {
	server := newTestServer(t, config.Default().Server)
	id := upload(t, server)

	w := do(server, http.MethodGet, "/api/datasets/"+id+"/histograms?variables=sales,units", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Histograms []struct {
			Variable string `json:"variable"`
			N        int    `json:"n"`
		} `json:"histograms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Histograms, 2)
	assert.Equal(t, "sales", resp.Histograms[0].Variable)
	assert.Equal(t, 4, resp.Histograms[0].N)
}

func TestBoxPlotsEndpoint(t *testing.T) {
	server := newTestServer(t, config.Default().Server)
	id := upload(t, server)

	w := do(server, http.MethodPost, "/api/datasets/"+id+"/boxplots", "application/json",
		[]byte(`{"variables": ["units"]}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"label":"units"`)
}

func TestClusterAndQuadrantEndpoints(t *testing.T) {
	server := newTestServer(t, config.Default().Server)
	id := upload(t, server)

	w := do(server, http.MethodPost, "/api/datasets/"+id+"/clusters", "application/json", []byte(`{"k": 2}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"x_column":"sales"`)

	w = do(server, http.MethodPost, "/api/datasets/"+id+"/quadrants", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"y_column":"units"`)

	w = do(server, http.MethodPost, "/api/datasets/"+id+"/quadrants", "application/json",
		[]byte(`{"x": "region", "y": "units"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestClusterNeedsTwoNumericColumns(t *testing.T) {
	server := newTestServer(t, config.Default().Server)

	w := do(server, http.MethodPost, "/api/datasets", "application/json",
		[]byte(`[{"team": "red", "score": 1}, {"team": "blue", "score": 2}]`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp ingestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = do(server, http.MethodPost, "/api/datasets/"+resp.Dataset.ID.String()+"/clusters", "application/json", []byte(`{"k": 2}`))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestReportEndpoint(t *testing.T) {
	server := newTestServer(t, config.Default().Server)
	id := upload(t, server)

	w := do(server, http.MethodGet, "/api/datasets/"+id+"/report?variables=sales&k=2&quadrants=true", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, w.Body.String(), "# Statistical summary: sales")
	assert.Contains(t, w.Body.String(), "## Clusters: sales vs units (k = 2)")
	assert.Contains(t, w.Body.String(), "## Quadrants: sales vs units")

	w = do(server, http.MethodGet, "/api/datasets/"+id+"/report?variables=sales&format=html", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<html")

	w = do(server, http.MethodGet, "/api/datasets/"+id+"/report?format=pdf", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(server, http.MethodGet, "/api/datasets/"+id+"/report?k=two", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHTMLEscapesDatasetText(t *testing.T) {
	server := newTestServer(t, config.Default().Server)

	body := `{"name": "<script>alert(1)</script>", "rows": [
		{"<img src=x onerror=alert(1)>": "a", "n": 1},
		{"<img src=x onerror=alert(1)>": "b", "n": 2}
	]}`
	w := do(server, http.MethodPost, "/api/datasets", "application/json", []byte(body))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp ingestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = do(server, http.MethodGet, "/api/datasets/"+resp.Dataset.ID.String()+"/report?variables=n&format=html", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.NotContains(t, w.Body.String(), "<img")
	assert.NotContains(t, w.Body.String(), "<script>")
}
