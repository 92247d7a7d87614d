package output

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/tigerroll/surfin-energy/internal/config"
	"github.com/tigerroll/surfin-energy/internal/domain/model"
	"github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage"
	"github.com/tigerroll/surfin-energy/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

const (
	contentTypeCSV     = "text/csv"
	contentTypeParquet = "application/x-parquet"
	contentTypeXLSX    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Exporter renders tables in memory and uploads them, so a failed render
// never leaves a partial object behind.
type Exporter struct {
	conn     storage.StorageConnection
	cfg      config.OutputConfig
	recorder metrics.MetricRecorder
}

// NewExporter creates an Exporter writing through conn.
func NewExporter(conn storage.StorageConnection, cfg config.OutputConfig, recorder metrics.MetricRecorder) *Exporter {
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	return &Exporter{conn: conn, cfg: cfg, recorder: recorder}
}

// OutputExists reports whether the final dataset is already present.
func (e *Exporter) OutputExists(ctx context.Context) (bool, error) {
	return e.conn.Exists(ctx, "", e.cfg.Path)
}

type rendered struct {
	path        string
	contentType string
	buf         *bytes.Buffer
}

// Export renders every configured artifact and uploads them. The merged
// table goes first and the final CSV last, so the presence of the final CSV
// implies a complete run. When an upload fails, the objects already written
// by this call are deleted again.
func (e *Exporter) Export(ctx context.Context, stacked []model.StackedRow, rows []model.SplitRow, bounds []model.Boundaries) ([]string, error) {
	start := time.Now()
	defer func() {
		e.recorder.RecordDuration(ctx, "export", time.Since(start), map[string]string{"path": e.cfg.Path})
	}()

	var outs []rendered
	if e.cfg.MergedPath != "" {
		buf := new(bytes.Buffer)
		if err := WriteMergedCSV(buf, stacked); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", e.cfg.MergedPath, err)
		}
		outs = append(outs, rendered{e.cfg.MergedPath, contentTypeCSV, buf})
	}
	if e.cfg.ParquetPath != "" {
		buf := new(bytes.Buffer)
		if err := WriteParquet(buf, rows, e.cfg.ParquetCompression); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", e.cfg.ParquetPath, err)
		}
		outs = append(outs, rendered{e.cfg.ParquetPath, contentTypeParquet, buf})
	}
	if e.cfg.XLSXPath != "" {
		buf := new(bytes.Buffer)
		if err := WriteXLSX(buf, rows, bounds); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", e.cfg.XLSXPath, err)
		}
		outs = append(outs, rendered{e.cfg.XLSXPath, contentTypeXLSX, buf})
	}
	buf := new(bytes.Buffer)
	if err := WriteFinalCSV(buf, rows); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", e.cfg.Path, err)
	}
	outs = append(outs, rendered{e.cfg.Path, contentTypeCSV, buf})

	written := make([]string, 0, len(outs))
	for _, o := range outs {
		if err := e.upload(ctx, o); err != nil {
			e.rollback(ctx, written)
			return nil, err
		}
		written = append(written, o.path)
	}
	return written, nil
}

// rollback removes objects uploaded by a failed Export.
func (e *Exporter) rollback(ctx context.Context, written []string) {
	ctx = context.WithoutCancel(ctx)
	for _, path := range written {
		if err := e.conn.DeleteObject(ctx, "", path); err != nil {
			logger.Warnf("Failed to remove %s after a failed export: %v", path, err)
			continue
		}
		logger.Infof("Removed %s after a failed export.", path)
	}
}

func (e *Exporter) upload(ctx context.Context, o rendered) error {
	size := o.buf.Len()
	if err := e.conn.Upload(ctx, "", o.path, o.buf, o.contentType); err != nil {
		return fmt.Errorf("failed to upload %s: %w", o.path, err)
	}
	logger.Infof("Saved to: %s (%d bytes, storage '%s')", o.path, size, e.conn.Name())
	return nil
}
