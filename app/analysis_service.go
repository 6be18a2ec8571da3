package app

import (
	"context"

	"tabstat/adapters/datareadiness"
	"tabstat/domain/core"
	"tabstat/domain/dataset"
	"tabstat/domain/spatial"
	"tabstat/domain/stats/brief"
	"tabstat/internal"
	"tabstat/internal/analysis"
	enginebrief "tabstat/internal/analysis/brief"
	"tabstat/internal/config"
	idataset "tabstat/internal/dataset"
	"tabstat/internal/errors"
	"tabstat/internal/report"
	"tabstat/ports"
)

// AnalysisService is the use-case facade shared by the HTTP server and the CLI
type AnalysisService struct {
	repo       ports.DatasetRepository
	ingestor   *idataset.Ingestor
	aggregator *analysis.GroupAggregator
	clusterer  *analysis.KMeansClusterer
	quadrants  *analysis.QuadrantClassifier
	logger     *internal.Logger
}

// StatsRequest selects variables and an optional grouping column
type StatsRequest struct {
	Variables []string `json:"variables" form:"variables"`
	GroupBy   string   `json:"group_by,omitempty" form:"group_by"`
}

// ClusterRequest selects two numeric columns and a cluster count. Empty
// columns default to the first two numeric columns.
type ClusterRequest struct {
	X             string `json:"x"`
	Y             string `json:"y"`
	K             int    `json:"k"`
	MaxIterations int    `json:"max_iterations,omitempty"`
}

// QuadrantRequest selects two numeric columns, defaulting like ClusterRequest
type QuadrantRequest struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// ReportRequest describes the sections of a report
type ReportRequest struct {
	Stats     StatsRequest
	Cluster   *ClusterRequest
	Quadrants *QuadrantRequest
}

// NewAnalysisService wires the engine components from the analysis config
func NewAnalysisService(repo ports.DatasetRepository, cfg config.AnalysisConfig, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	engine := enginebrief.NewEngine()
	profiling := datareadiness.ProfilingConfig{
		SampleSize:       cfg.SampleSize,
		NumericThreshold: cfg.NumericThreshold,
	}
	return &AnalysisService{
		repo:       repo,
		ingestor:   idataset.NewIngestor(profiling, logger),
		aggregator: analysis.NewGroupAggregator(engine, cfg.MaxParallelism),
		clusterer:  analysis.NewKMeansClusterer(cfg.KMeansMaxIterations),
		quadrants:  analysis.NewQuadrantClassifier(engine),
		logger:     logger.WithComponent("AnalysisService"),
	}
}

// Ingest reads raw rows, classifies and normalizes them and stores the result
func (s *AnalysisService) Ingest(ctx context.Context, name, source string, reader ports.RowReader) (*idataset.IngestResult, error) {
	header, rows, err := reader.ReadRows(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to read rows")
	}
	return s.IngestRows(ctx, name, source, header, rows)
}

// IngestRows is Ingest for rows already in memory
func (s *AnalysisService) IngestRows(ctx context.Context, name, source string, header []string, rows []dataset.Row) (*idataset.IngestResult, error) {
	result, err := s.ingestor.Ingest(name, source, header, rows)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	if err := s.repo.Put(ctx, result.Dataset); err != nil {
		return nil, errors.Wrap(err, "failed to store dataset")
	}
	return result, nil
}

// Dataset returns a stored dataset
func (s *AnalysisService) Dataset(ctx context.Context, id core.ID) (*dataset.Dataset, error) {
	ds, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	return ds, nil
}

// Datasets lists every stored dataset
func (s *AnalysisService) Datasets(ctx context.Context) ([]*dataset.Dataset, error) {
	return s.repo.List(ctx)
}

// Reset discards a dataset
func (s *AnalysisService) Reset(ctx context.Context, id core.ID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.FromDomain(err)
	}
	s.logger.Info("dataset %s reset", id)
	return nil
}

// Stats computes descriptive statistics for the selection
func (s *AnalysisService) Stats(ctx context.Context, id core.ID, req StatsRequest) ([]brief.VariableStats, error) {
	ds, err := s.Dataset(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.StatsFor(ctx, ds, req)
}

// StatsFor is Stats over a dataset the caller already holds
func (s *AnalysisService) StatsFor(ctx context.Context, ds *dataset.Dataset, req StatsRequest) ([]brief.VariableStats, error) {
	records, err := s.aggregator.Aggregate(ctx, ds, req.Variables, req.GroupBy)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	s.logger.Debug("stats for %s: %d records", ds.ID, len(records))
	return records, nil
}

// Histograms bins the selection
func (s *AnalysisService) Histograms(ctx context.Context, id core.ID, req StatsRequest) ([]brief.Histogram, error) {
	ds, err := s.Dataset(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.HistogramsFor(ctx, ds, req)
}

// HistogramsFor is Histograms over a dataset the caller already holds
func (s *AnalysisService) HistogramsFor(ctx context.Context, ds *dataset.Dataset, req StatsRequest) ([]brief.Histogram, error) {
	hists, err := s.aggregator.Histograms(ctx, ds, req.Variables, req.GroupBy)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	return hists, nil
}

// BoxPlots builds box-plot geometry for the selection
func (s *AnalysisService) BoxPlots(ctx context.Context, id core.ID, req StatsRequest) ([]analysis.BoxPlot, error) {
	ds, err := s.Dataset(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.BoxPlotsFor(ctx, ds, req)
}

// BoxPlotsFor is BoxPlots over a dataset the caller already holds
func (s *AnalysisService) BoxPlotsFor(ctx context.Context, ds *dataset.Dataset, req StatsRequest) ([]analysis.BoxPlot, error) {
	records, err := s.StatsFor(ctx, ds, req)
	if err != nil {
		return nil, err
	}
	return analysis.BoxPlots(records, req.GroupBy != ""), nil
}

// Cluster runs k-means over two numeric columns
func (s *AnalysisService) Cluster(ctx context.Context, id core.ID, req ClusterRequest) (spatial.ClusterResult, error) {
	ds, err := s.Dataset(ctx, id)
	if err != nil {
		return spatial.ClusterResult{}, err
	}
	return s.ClusterFor(ctx, ds, req)
}

// ClusterFor is Cluster over a dataset the caller already holds
func (s *AnalysisService) ClusterFor(ctx context.Context, ds *dataset.Dataset, req ClusterRequest) (spatial.ClusterResult, error) {
	x, y, err := resolveAxes(ds, req.X, req.Y)
	if err != nil {
		return spatial.ClusterResult{}, errors.FromDomain(err)
	}

	result := s.clusterer.Cluster(analysis.ExtractPoints(ds, x, y), req.K, req.MaxIterations)
	result.XColumn = x
	result.YColumn = y
	s.logger.Debug("k-means on %s (%s, %s): k=%d, %d iterations, converged=%v",
		ds.ID, x, y, req.K, result.Iterations, result.Converged)
	return result, nil
}

// Quadrants labels points by the mean split of two numeric columns
func (s *AnalysisService) Quadrants(ctx context.Context, id core.ID, req QuadrantRequest) (spatial.QuadrantResult, error) {
	ds, err := s.Dataset(ctx, id)
	if err != nil {
		return spatial.QuadrantResult{}, err
	}
	return s.QuadrantsFor(ctx, ds, req)
}

// QuadrantsFor is Quadrants over a dataset the caller already holds
func (s *AnalysisService) QuadrantsFor(ctx context.Context, ds *dataset.Dataset, req QuadrantRequest) (spatial.QuadrantResult, error) {
	x, y, err := resolveAxes(ds, req.X, req.Y)
	if err != nil {
		return spatial.QuadrantResult{}, errors.FromDomain(err)
	}
	result, err := s.quadrants.Classify(ds, x, y)
	if err != nil {
		return spatial.QuadrantResult{}, errors.FromDomain(err)
	}
	return result, nil
}

// Report renders the requested sections as Markdown
func (s *AnalysisService) Report(ctx context.Context, id core.ID, req ReportRequest) (string, error) {
	ds, err := s.Dataset(ctx, id)
	if err != nil {
		return "", err
	}
	return s.ReportFor(ctx, ds, req)
}

// ReportFor is Report over a dataset the caller already holds
func (s *AnalysisService) ReportFor(ctx context.Context, ds *dataset.Dataset, req ReportRequest) (string, error) {
	records, err := s.StatsFor(ctx, ds, req.Stats)
	if err != nil {
		return "", err
	}
	in := report.Input{Dataset: ds, GroupBy: req.Stats.GroupBy, Stats: records}

	if req.Cluster != nil {
		result, err := s.ClusterFor(ctx, ds, *req.Cluster)
		if err != nil {
			return "", err
		}
		in.Cluster = &result
	}
	if req.Quadrants != nil {
		result, err := s.QuadrantsFor(ctx, ds, *req.Quadrants)
		if err != nil {
			return "", err
		}
		in.Quadrants = &result
	}
	return report.Markdown(in), nil
}

// resolveAxes fills empty axes with the first two numeric columns and checks
// that both are numeric
func resolveAxes(ds *dataset.Dataset, x, y string) (string, string, error) {
	numeric := ds.NumericHeaders()
	if len(numeric) < 2 {
		return "", "", core.ErrInsufficientNumericColumns
	}
	if x == "" {
		x = numeric[0]
	}
	if y == "" {
		y = numeric[1]
	}
	if err := analysis.RequireNumeric(ds, x, y); err != nil {
		return "", "", err
	}
	return x, y, nil
}
