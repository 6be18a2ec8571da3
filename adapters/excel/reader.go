package excel

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"tabstat/domain/dataset"
	"tabstat/internal"
)

// DataReader handles reading Excel and CSV files into raw rows.
// It implements ports.RowReader.
type DataReader struct {
	name     string
	fileType string // "xlsx" or "csv"
	open     func() (io.ReadCloser, error)
	logger   *internal.Logger
}

// NewDataReader creates a reader for a file on disk. The type follows the
// extension: .csv is CSV, anything else is treated as a workbook.
func NewDataReader(filePath string) *DataReader {
	return &DataReader{
		name:     filePath,
		fileType: fileTypeOf(filePath),
		open: func() (io.ReadCloser, error) {
			if _, err := os.Stat(filePath); os.IsNotExist(err) {
				return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(fileTypeOf(filePath)), filePath)
			}
			return os.Open(filePath)
		},
		logger: internal.DefaultLogger.WithComponent("DataReader"),
	}
}

// NewDataReaderFromBytes creates a reader for uploaded content. filename
// only decides the file type.
func NewDataReaderFromBytes(filename string, content []byte) *DataReader {
	return &DataReader{
		name:     filename,
		fileType: fileTypeOf(filename),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
		logger: internal.DefaultLogger.WithComponent("DataReader"),
	}
}

// FileType returns "xlsx" or "csv"
func (r *DataReader) FileType() string {
	return r.fileType
}

func fileTypeOf(name string) string {
	if strings.ToLower(filepath.Ext(name)) == ".csv" {
		return "csv"
	}
	return "xlsx"
}

// ReadRows reads the header row and every non-blank data row. Cells are
// trimmed Text, or Empty when blank.
func (r *DataReader) ReadRows(ctx context.Context) ([]string, []dataset.Row, error) {
	r.logger.Debug("reading %s file: %s", r.fileType, r.name)

	src, err := r.open()
	if err != nil {
		return nil, nil, err
	}
	defer src.Close()

	readStart := time.Now()
	var records [][]string
	switch r.fileType {
	case "csv":
		records, err = readCSV(src)
	default:
		records, err = readWorkbook(src)
	}
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	r.logger.Debug("%s read in %.2fms (%d records)", r.name, float64(time.Since(readStart).Nanoseconds())/1e6, len(records))

	if len(records) < 2 {
		return nil, nil, fmt.Errorf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType))
	}

	header, rows := processRecords(records)
	r.logger.Info("%s file processed (%d columns, %d rows)", strings.ToUpper(r.fileType), len(header), len(rows))
	return header, rows, nil
}

// readWorkbook returns the rows of the first sheet
func readWorkbook(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// processRecords converts string records into a header and raw rows.
// Blank header cells become column_N and repeated names get a _N suffix.
// Rows with no non-blank cell are dropped.
func processRecords(records [][]string) ([]string, []dataset.Row) {
	header := uniqueHeaders(records[0])

	rows := make([]dataset.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(dataset.Row, len(header))
		blank := true
		for j, col := range header {
			cell := dataset.Empty()
			if j < len(record) {
				cell = dataset.Text(strings.TrimSpace(record[j]))
			}
			if !cell.IsEmpty() {
				blank = false
			}
			row[col] = cell
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return header, rows
}

// uniqueHeaders names blank headers column_N and suffixes repeats with _1,
// _2, ... skipping any name already taken
func uniqueHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	next := make(map[string]int)
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		if used[name] {
			base := name
			n := next[base]
			for {
				n++
				name = base + "_" + strconv.Itoa(n)
				if !used[name] {
					break
				}
			}
			next[base] = n
		}
		used[name] = true
		headers[i] = name
	}
	return headers
}
