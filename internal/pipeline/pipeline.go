// Package pipeline sequences the proximity run: load the point table, filter
// it against the camp location, persist the retained rows, render the map.
package pipeline

import (
	"errors"

	"camp-proximity/internal/config"
	"camp-proximity/internal/excel"
	"camp-proximity/internal/mapgen"
	"camp-proximity/internal/models"
	"camp-proximity/internal/proximity"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

type Pipeline struct {
	cfg config.Config
	log *zap.Logger
}

func New(cfg config.Config, log *zap.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, log: log}
}

// Run executes the full load → filter → persist → render sequence. No step
// failure aborts the run: a failed or empty load degrades to a camp-only
// map, a failed write is reported and the map is still rendered. The
// returned error aggregates the non-fatal failures for reporting; the run
// itself always completes.
func (p *Pipeline) Run() error {
	var report *multierror.Error

	table, err := excel.LoadOrCreate(p.cfg.InputFile)
	if err != nil {
		p.logLoadFailure(err)
		report = multierror.Append(report, err)
		if renderErr := p.render(models.Table{}); renderErr != nil {
			report = multierror.Append(report, renderErr)
		}
		return report.ErrorOrNil()
	}
	p.log.Info("geodetic data loaded",
		zap.String("file", p.cfg.InputFile),
		zap.Int("rows", len(table.Rows)))

	filtered := proximity.Filter(table, p.cfg.Camp, p.cfg.ThresholdKm, p.log)

	if filtered.Empty() {
		p.log.Info("no points within threshold of the camp",
			zap.Float64("threshold_km", p.cfg.ThresholdKm))
	} else {
		p.log.Info("points retained within threshold",
			zap.Int("rows", len(filtered.Rows)),
			zap.Float64("threshold_km", p.cfg.ThresholdKm))
		if err := excel.WriteTable(p.cfg.FilteredFile, filtered); err != nil {
			p.log.Error("could not save filtered table",
				zap.String("file", p.cfg.FilteredFile), zap.Error(err))
			report = multierror.Append(report, err)
		} else {
			p.log.Info("filtered table saved", zap.String("file", p.cfg.FilteredFile))
		}
	}

	if err := p.render(filtered); err != nil {
		report = multierror.Append(report, err)
	}
	return report.ErrorOrNil()
}

func (p *Pipeline) render(t models.Table) error {
	if err := mapgen.Render(t, p.cfg.Camp, p.cfg.MapFile, p.log); err != nil {
		p.log.Error("could not save map", zap.String("file", p.cfg.MapFile), zap.Error(err))
		return err
	}
	p.log.Info("map saved", zap.String("file", p.cfg.MapFile))
	return nil
}

func (p *Pipeline) logLoadFailure(err error) {
	var schemaErr *excel.SchemaError
	var emptyErr *excel.EmptySourceError
	var missingErr *excel.MissingSourceError
	switch {
	case errors.As(err, &schemaErr):
		p.log.Error("input table schema is invalid",
			zap.String("file", schemaErr.File),
			zap.Strings("missing_columns", schemaErr.Missing))
	case errors.As(err, &emptyErr):
		p.log.Error("input table holds no data rows", zap.String("file", emptyErr.File))
	case errors.As(err, &missingErr):
		p.log.Error("input table could not be opened", zap.String("file", missingErr.File),
			zap.Error(missingErr.Err))
	default:
		p.log.Error("could not load geodetic data", zap.Error(err))
	}
}
