package ui

import (
	stderrors "errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"tabstat/adapters/api"
	"tabstat/adapters/datareadiness"
	"tabstat/adapters/excel"
	"tabstat/app"
	"tabstat/domain/core"
	"tabstat/domain/dataset"
	"tabstat/domain/stats/brief"
	"tabstat/internal/analysis"
	idataset "tabstat/internal/dataset"
	"tabstat/internal/errors"
	"tabstat/internal/report"
	"tabstat/ports"
)

// datasetSummary is a dataset without its rows
type datasetSummary struct {
	ID        core.ID                       `json:"id"`
	Name      string                        `json:"name"`
	Source    string                        `json:"source"`
	Header    []string                      `json:"header"`
	Kinds     map[string]dataset.ColumnKind `json:"kinds"`
	RowCount  int                           `json:"row_count"`
	CreatedAt time.Time                     `json:"created_at"`
}

func summarize(ds *dataset.Dataset) datasetSummary {
	return datasetSummary{
		ID:        ds.ID,
		Name:      ds.Name,
		Source:    ds.Source,
		Header:    ds.Header,
		Kinds:     ds.Kinds,
		RowCount:  ds.Len(),
		CreatedAt: ds.CreatedAt,
	}
}

type ingestResponse struct {
	Dataset            datasetSummary                `json:"dataset"`
	NumericHeaders     []string                      `json:"numeric_headers"`
	CategoricalHeaders []string                      `json:"categorical_headers"`
	Profiles           []datareadiness.ColumnProfile `json:"profiles"`
	DefaultSelection   idataset.Selection            `json:"default_selection"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleUpload ingests a multipart "file" field (xlsx or csv) or a JSON
// body. JSON rows are read from ?path=, from "rows" when the body is an
// object carrying it, or from the document root.
func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.uploadLimit())

	var (
		reader ports.RowReader
		name   string
		source string
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			s.respondError(c, uploadError(err, "missing file field"))
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			s.respondError(c, errors.Wrap(err, "failed to open upload"))
			return
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			s.respondError(c, uploadError(err, "failed to read upload"))
			return
		}
		dataReader := excel.NewDataReaderFromBytes(fileHeader.Filename, content)
		reader = dataReader
		source = dataReader.FileType()
		name = c.DefaultPostForm("name", strings.TrimSuffix(fileHeader.Filename, filepath.Ext(fileHeader.Filename)))
	} else {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			s.respondError(c, uploadError(err, "failed to read body"))
			return
		}
		dataPath := c.Query("path")
		if dataPath == "" && gjson.GetBytes(body, "rows").IsArray() {
			dataPath = "rows"
		}
		jsonReader := api.NewJSONRowReader(body, dataPath)
		reader = jsonReader
		source = "json"
		name = jsonReader.Name("name", c.DefaultQuery("name", "dataset"))
	}

	result, err := s.service.Ingest(c.Request.Context(), name, source, reader)
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.logger.Info("ingested %s %q: %d rows, %d numeric columns", result.Dataset.ID, name, result.Dataset.Len(), len(result.NumericHeaders))
	c.JSON(http.StatusCreated, ingestResponse{
		Dataset:            summarize(result.Dataset),
		NumericHeaders:     result.NumericHeaders,
		CategoricalHeaders: result.CategoricalHeaders,
		Profiles:           result.Profiles,
		DefaultSelection:   result.DefaultSelection,
	})
}

func uploadError(err error, message string) error {
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		return errors.TooLarge("upload exceeds " + strconv.FormatInt(maxErr.Limit>>20, 10) + " MB")
	}
	return errors.InvalidInput(message + ": " + err.Error())
}

func (s *Server) handleListDatasets(c *gin.Context) {
	list, err := s.service.Datasets(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	out := make([]datasetSummary, len(list))
	for i, ds := range list {
		out[i] = summarize(ds)
	}
	c.JSON(http.StatusOK, gin.H{"datasets": out, "count": len(out)})
}

func (s *Server) handleGetDataset(c *gin.Context) {
	id, ok := s.datasetID(c)
	if !ok {
		return
	}
	ds, err := s.service.Dataset(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dataset": summarize(ds), "rows": ds.Rows})
}

func (s *Server) handleResetDataset(c *gin.Context) {
	id, ok := s.datasetID(c)
	if !ok {
		return
	}
	if err := s.service.Reset(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleStats(c *gin.Context) {
	id, ok := s.datasetID(c)
	if !ok {
		return
	}
	var req app.StatsRequest
	if !s.bindOptionalJSON(c, &req) {
		return
	}
	records, err := s.service.Stats(c.Request.Context(), id, req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group_by": req.GroupBy, "results": roundStats(records)})
}

func (s *Server) handleHistograms(c *gin.Context) {
	id, ok := s.datasetID(c)
	if !ok {
		return
	}
	req := statsQuery(c)
	histograms, err := s.service.Histograms(c.Request.Context(), id, req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	for i := range histograms {
		for j := range histograms[i].Bins {
			histograms[i].Bins[j].Start = brief.RoundOutput(histograms[i].Bins[j].Start)
			histograms[i].Bins[j].End = brief.RoundOutput(histograms[i].Bins[j].End)
		}
	}
	c.JSON(http.StatusOK, gin.H{"group_by": req.GroupBy, "histograms": histograms})
}

func (s *Server) handleBoxPlots(c *gin.Context) {
	id, ok := s.datasetID(c)
	if !ok {
		return
	}
	var req app.StatsRequest
	if !s.bindOptionalJSON(c, &req) {
		return
	}
	plots, err := s.service.BoxPlots(c.Request.Context(), id, req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	out := make([]analysis.BoxPlot, len(plots))
	for i, p := range plots {
		out[i] = p.Rounded()
	}
	c.JSON(http.StatusOK, gin.H{"boxplots": out})
}

func (s *Server) handleCluster(c *gin.Context) {
	id, ok := s.datasetID(c)
	if !ok {
		return
	}
	var req app.ClusterRequest
	if !s.bindOptionalJSON(c, &req) {
		return
	}
	result, err := s.service.Cluster(c.Request.Context(), id, req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result.Rounded())
}

func (s *Server) handleQuadrants(c *gin.Context) {
	id, ok := s.datasetID(c)
	if !ok {
		return
	}
	var req app.QuadrantRequest
	if !s.bindOptionalJSON(c, &req) {
		return
	}
	result, err := s.service.Quadrants(c.Request.Context(), id, req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result.Rounded())
}

// handleReport renders markdown, or HTML with ?format=html. A k parameter
// adds a cluster section and quadrants=true a quadrant section; both use
// the x and y parameters.
func (s *Server) handleReport(c *gin.Context) {
	id, ok := s.datasetID(c)
	if !ok {
		return
	}

	req := app.ReportRequest{Stats: statsQuery(c)}
	x, y := c.Query("x"), c.Query("y")
	if raw := c.Query("k"); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(c, errors.InvalidInput("k must be an integer"))
			return
		}
		req.Cluster = &app.ClusterRequest{X: x, Y: y, K: k}
	}
	if withQuadrants, _ := strconv.ParseBool(c.Query("quadrants")); withQuadrants {
		req.Quadrants = &app.QuadrantRequest{X: x, Y: y}
	}

	md, err := s.service.Report(c.Request.Context(), id, req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	switch c.DefaultQuery("format", "md") {
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", report.RenderHTML(md, "Statistical summary"))
	case "md", "markdown":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
	default:
		s.respondError(c, errors.InvalidInput("format must be md or html"))
	}
}

// datasetID parses the :id parameter. A malformed id cannot name a stored
// dataset and is reported as not found.
func (s *Server) datasetID(c *gin.Context) (core.ID, bool) {
	id, err := core.ParseID(c.Param("id"))
	if err != nil {
		s.respondError(c, errors.NotFound("dataset "+c.Param("id")))
		return "", false
	}
	return id, true
}

// bindOptionalJSON binds a JSON body; an empty body leaves req untouched
func (s *Server) bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !stderrors.Is(err, io.EOF) {
		s.respondError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return false
	}
	return true
}

// statsQuery reads variables (repeated or comma separated) and group_by
func statsQuery(c *gin.Context) app.StatsRequest {
	var variables []string
	for _, raw := range c.QueryArray("variables") {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				variables = append(variables, v)
			}
		}
	}
	return app.StatsRequest{Variables: variables, GroupBy: c.Query("group_by")}
}

func roundStats(records []brief.VariableStats) []brief.VariableStats {
	out := make([]brief.VariableStats, len(records))
	for i, r := range records {
		r.Stats = r.Stats.Rounded()
		out[i] = r
	}
	return out
}
