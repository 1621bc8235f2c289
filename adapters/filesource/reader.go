package filesource

import (
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"dataprof/adapters/memsource"
	"dataprof/domain/core"
	"dataprof/internal"
	apperrors "dataprof/internal/errors"
	"dataprof/ports"
)

// numericThreshold is the share of non-empty cells that must parse as
// numbers for a column to be typed numeric
const numericThreshold = 0.9

// defaultSheet is the worksheet read from XLSX files
const defaultSheet = "Sheet1"

// Source reads a CSV or XLSX file into a columnar frame once and serves
// the DataSource port from it. The file is parsed lazily on first use.
type Source struct {
	path     string
	fileType string
	logger   *internal.Logger

	once  sync.Once
	inner *memsource.Source
	err   error
}

// NewSource creates a file-backed source. The file type is decided by
// extension; anything but .csv and .xlsx is rejected.
func NewSource(path string) (*Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var fileType string
	switch ext {
	case ".csv":
		fileType = "csv"
	case ".xlsx":
		fileType = "xlsx"
	default:
		return nil, apperrors.FileError(path, core.ErrUnsupportedFile)
	}
	return &Source{
		path:     path,
		fileType: fileType,
		logger:   internal.DefaultLogger.WithPrefix("filesource"),
	}, nil
}

func (s *Source) Schema(ctx context.Context) (ports.Schema, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	return s.inner.Schema(ctx)
}

func (s *Source) RowCount(ctx context.Context) (int64, error) {
	if err := s.load(); err != nil {
		return 0, err
	}
	return s.inner.RowCount(ctx)
}

func (s *Source) Head(ctx context.Context, limit int) (ports.Frame, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	return s.inner.Head(ctx, limit)
}

func (s *Source) Aggregate(ctx context.Context, specs []ports.AggSpec) (*ports.AggResult, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	return s.inner.Aggregate(ctx, specs)
}

func (s *Source) load() error {
	s.once.Do(func() {
		if _, err := os.Stat(s.path); os.IsNotExist(err) {
			s.err = apperrors.FileError(s.path, core.ErrNotFound)
			return
		}

		var rows [][]string
		var err error
		switch s.fileType {
		case "csv":
			rows, err = readCSV(s.path)
		default:
			rows, err = readXLSX(s.path)
		}
		if err != nil {
			s.err = apperrors.FileError(s.path, err)
			return
		}
		if len(rows) < 2 {
			s.err = apperrors.FileError(s.path, core.ErrEmptyDataset)
			return
		}

		frame, err := buildFrame(rows)
		if err != nil {
			s.err = apperrors.FileError(s.path, err)
			return
		}
		s.logger.Info("loaded %s (%d columns, %d rows)", s.path, len(frame.Schema()), frame.RowCount())
		s.inner = memsource.NewSource(frame)
	})
	return s.err
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetRows(defaultSheet)
}

// buildFrame types each column from its cells and loads it. A column is
// numeric when at least 90% of its non-empty cells parse as numbers;
// numeric columns keep unparseable cells as nulls.
func buildFrame(rows [][]string) (*memsource.Frame, error) {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	data := rows[1:]

	frame := memsource.NewFrame()
	for col, name := range headers {
		cells := make([]string, len(data))
		for row := range data {
			if col < len(data[row]) {
				cells[row] = strings.TrimSpace(data[row][col])
			}
		}

		if isNumericColumn(cells) {
			values := make([]float64, len(cells))
			for i, cell := range cells {
				v, err := strconv.ParseFloat(cell, 64)
				if cell == "" || err != nil {
					values[i] = math.NaN()
					continue
				}
				values[i] = v
			}
			if err := frame.AddNumeric(name, values); err != nil {
				return nil, err
			}
			continue
		}

		valid := make([]bool, len(cells))
		for i, cell := range cells {
			valid[i] = cell != ""
		}
		if err := frame.AddString(name, cells, valid); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func isNumericColumn(cells []string) bool {
	nonEmpty, numeric := 0, 0
	for _, cell := range cells {
		if cell == "" {
			continue
		}
		nonEmpty++
		if _, err := strconv.ParseFloat(cell, 64); err == nil {
			numeric++
		}
	}
	if nonEmpty == 0 {
		return false
	}
	return float64(numeric)/float64(nonEmpty) >= numericThreshold
}
