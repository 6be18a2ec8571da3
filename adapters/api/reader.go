package api

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"tabstat/domain/dataset"
)

// JSONRowReader reads rows from a JSON document. The rows are an array of
// objects (or a single object) found at DataPath; an empty DataPath means
// the document root. It implements ports.RowReader.
type JSONRowReader struct {
	body     []byte
	dataPath string
}

// NewJSONRowReader creates a reader over body
func NewJSONRowReader(body []byte, dataPath string) *JSONRowReader {
	return &JSONRowReader{body: body, dataPath: dataPath}
}

// ReadRows returns the rows and a header holding every key in first-seen
// order. Numbers become Number cells, strings Text, null Empty, and any
// other value the Text of its raw JSON.
func (r *JSONRowReader) ReadRows(ctx context.Context) ([]string, []dataset.Row, error) {
	if !gjson.ValidBytes(r.body) {
		return nil, nil, fmt.Errorf("invalid JSON document")
	}

	var dataResult gjson.Result
	if r.dataPath == "" {
		dataResult = gjson.ParseBytes(r.body)
	} else {
		dataResult = gjson.GetBytes(r.body, r.dataPath)
		if !dataResult.Exists() {
			return nil, nil, fmt.Errorf("data path '%s' not found in document", r.dataPath)
		}
	}

	var objects []gjson.Result
	switch {
	case dataResult.IsArray():
		objects = dataResult.Array()
	case dataResult.IsObject():
		objects = []gjson.Result{dataResult}
	default:
		return nil, nil, fmt.Errorf("data path '%s' is not an array or object", r.dataPath)
	}

	var header []string
	seen := make(map[string]bool)
	rows := make([]dataset.Row, 0, len(objects))

	for i, obj := range objects {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
		if !obj.IsObject() {
			return nil, nil, fmt.Errorf("row %d is not a JSON object", i)
		}

		row := make(dataset.Row)
		obj.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			if !seen[name] {
				seen[name] = true
				header = append(header, name)
			}
			row[name] = cellOf(value)
			return true
		})
		rows = append(rows, row)
	}

	return header, rows, nil
}

// Name returns the string at path, or fallback when absent
func (r *JSONRowReader) Name(path, fallback string) string {
	if v := gjson.GetBytes(r.body, path); v.Exists() && v.String() != "" {
		return v.String()
	}
	return fallback
}

func cellOf(value gjson.Result) dataset.Cell {
	switch value.Type {
	case gjson.Null:
		return dataset.Empty()
	case gjson.Number:
		return dataset.Number(value.Float())
	case gjson.String:
		return dataset.Text(value.String())
	default:
		return dataset.Text(value.Raw)
	}
}
