// Package parser decodes the listings CSV into a models.Table.
package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-nyc-airbnb/models"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Columns lists the columns a source must provide, in model order.
var Columns = models.Fields

// Float columns load as text and are checked by numbers, because gota turns
// unparseable floats into NaN without reporting them.
var columnTypes = map[string]series.Type{
	models.FieldHostID:        series.Int,
	models.FieldPrice:         series.String,
	models.FieldRegion:        series.String,
	models.FieldNeighbourhood: series.String,
	models.FieldLongitude:     series.String,
	models.FieldLatitude:      series.String,
	models.FieldRoomType:      series.String,
	models.FieldAvailability:  series.Int,
}

// ErrNotNumeric is returned for a numeric column cell that is neither blank,
// a missing-value marker nor a number.
var ErrNotNumeric = errors.New("value is not numeric")

// ParseCSV reads a listings CSV with a header row. Columns outside Columns are
// ignored. Blank or NA prices and coordinates become NaN; any other
// non-numeric value in a numeric column is an error, as is a non-integer
// host id or availability. A header with no rows yields an empty table.
func ParseCSV(r io.Reader) (*models.Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return ParseRecords(records)
}

// ParseRecords decodes string records whose first row is the header, using
// the same typing rules as ParseCSV.
func ParseRecords(records [][]string) (*models.Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("load records: missing header row")
	}
	if len(records) == 1 {
		// gota refuses to build a frame without rows.
		for _, col := range Columns {
			if !slices.Contains(records[0], col) {
				return nil, fmt.Errorf("select columns: missing column %q", col)
			}
		}
		return models.NewTable(nil), nil
	}

	df := dataframe.LoadRecords(records, loadOptions()...)
	if df.Err != nil {
		return nil, fmt.Errorf("load records: %w", df.Err)
	}
	return FromDataFrame(df)
}

// missingValues are read as NaN in numeric columns.
var missingValues = []string{"NA", "NaN", "<nil>"}

func loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.NaNValues(missingValues),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(columnTypes),
	}
}

// FromDataFrame materialises listings from a dataframe holding Columns.
func FromDataFrame(df dataframe.DataFrame) (*models.Table, error) {
	df = df.Select(Columns)
	if df.Err != nil {
		return nil, fmt.Errorf("select columns: %w", df.Err)
	}

	hosts, err := df.Col(models.FieldHostID).Int()
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", models.FieldHostID, err)
	}
	availability, err := df.Col(models.FieldAvailability).Int()
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", models.FieldAvailability, err)
	}
	prices, err := numbers(df, models.FieldPrice)
	if err != nil {
		return nil, err
	}
	longitudes, err := numbers(df, models.FieldLongitude)
	if err != nil {
		return nil, err
	}
	latitudes, err := numbers(df, models.FieldLatitude)
	if err != nil {
		return nil, err
	}
	regions := df.Col(models.FieldRegion).Records()
	neighbourhoods := df.Col(models.FieldNeighbourhood).Records()
	roomTypes := df.Col(models.FieldRoomType).Records()

	listings := make([]models.Listing, df.Nrow())
	for i := range listings {
		listings[i] = models.Listing{
			HostID:        int64(hosts[i]),
			Price:         prices[i],
			Region:        regions[i],
			Neighbourhood: neighbourhoods[i],
			Longitude:     longitudes[i],
			Latitude:      latitudes[i],
			RoomType:      roomTypes[i],
			Availability:  availability[i],
		}
	}
	return models.NewTable(listings), nil
}

// numbers reads a float column. Blank cells and missing-value markers are NaN;
// anything else must parse as a number.
func numbers(df dataframe.DataFrame, field string) ([]float64, error) {
	col := df.Col(field)
	if col.Type() == series.Float {
		return col.Float(), nil
	}

	cells := col.Records()
	out := make([]float64, len(cells))
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" || slices.Contains(missingValues, cell) {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s row %d: %q: %w", field, i+1, cell, ErrNotNumeric)
		}
		out[i] = v
	}
	return out, nil
}
