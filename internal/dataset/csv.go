package dataset

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"

	"scratchnet/internal/matrix"
)

const (
	inputPrefix  = "x"
	targetPrefix = "y"
)

// WriteCSV writes d with a header of x0..x{D-1} followed by y0..y{O-1}.
// Values use the shortest decimal form that parses back to the same float64.
func WriteCSV(w io.Writer, d *Dataset) error {
	if err := d.Validate(); err != nil {
		return err
	}
	header := append(columnNames(inputPrefix, d.Features()), columnNames(targetPrefix, d.Outputs())...)
	records := make([][]string, 0, d.Samples()+1)
	records = append(records, header)
	for i := 0; i < d.Samples(); i++ {
		record := make([]string, 0, len(header))
		record = appendRow(record, d.X, i)
		record = appendRow(record, d.Y, i)
		records = append(records, record)
	}
	// Kept as strings: gota's float series prints with %f and would drop digits.
	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return errors.Wrap(df.Err, "dataset: build dataframe")
	}
	if err := df.WriteCSV(w); err != nil {
		return errors.Wrap(err, "dataset: write csv")
	}
	return nil
}

func columnNames(prefix string, n int) []string {
	names := make([]string, n)
	for j := range names {
		names[j] = fmt.Sprintf("%s%d", prefix, j)
	}
	return names
}

func appendRow(record []string, m *matrix.Dense, i int) []string {
	for _, v := range m.Row(i) {
		record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return record
}

// ReadCSV loads a dataset written by WriteCSV. Columns named x<i> become
// inputs and y<i> targets; any other column is ignored. Indices of each kind
// must run from 0 without gaps.
func ReadCSV(r io.Reader) (*Dataset, error) {
	df := dataframe.ReadCSV(r,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.Float),
	)
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "dataset: read csv")
	}
	if df.Nrow() == 0 {
		return nil, errors.New("dataset: csv has no rows")
	}
	inputs, err := columnsWithPrefix(df.Names(), inputPrefix)
	if err != nil {
		return nil, err
	}
	targets, err := columnsWithPrefix(df.Names(), targetPrefix)
	if err != nil {
		return nil, err
	}
	x, err := toMatrix(df, inputs)
	if err != nil {
		return nil, err
	}
	y, err := toMatrix(df, targets)
	if err != nil {
		return nil, err
	}
	return &Dataset{X: x, Y: y}, nil
}

func columnsWithPrefix(names []string, prefix string) ([]string, error) {
	byIndex := map[int]string{}
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(name, prefix))
		if err != nil || idx < 0 {
			continue
		}
		byIndex[idx] = name
	}
	if len(byIndex) == 0 {
		return nil, errors.Errorf("dataset: no %q columns", prefix+"0")
	}
	indices := make([]int, 0, len(byIndex))
	for idx := range byIndex {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	out := make([]string, len(indices))
	for i, idx := range indices {
		if idx != i {
			return nil, errors.Errorf("dataset: column %s%d missing", prefix, i)
		}
		out[i] = byIndex[idx]
	}
	return out, nil
}

func toMatrix(df dataframe.DataFrame, names []string) (*matrix.Dense, error) {
	rows := df.Nrow()
	m := matrix.Zeros(rows, len(names))
	for j, name := range names {
		for i, v := range df.Col(name).Float() {
			if math.IsNaN(v) {
				return nil, errors.Errorf("dataset: column %s row %d is not numeric", name, i)
			}
			m.Set(i, j, v)
		}
	}
	return m, nil
}
