package render

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/aluiziolira/go-nyc-airbnb/chart"
	"github.com/aluiziolira/go-nyc-airbnb/models"
)

func sampleTable() *models.Table {
	return models.NewTable([]models.Listing{
		{HostID: 1, Price: 100, Region: "Manhattan", Longitude: -73.98, Latitude: 40.75, RoomType: "Entire home/apt", Availability: 200},
		{HostID: 2, Price: 150, Region: "Brooklyn", Longitude: -73.95, Latitude: 40.65, RoomType: "Private room", Availability: 100},
		{HostID: 1, Price: 50, Region: "Manhattan", Longitude: -73.99, Latitude: 40.76, RoomType: "Private room", Availability: 300},
	})
}

func TestPNGScatter(t *testing.T) {
	fig := chart.Scatter(sampleTable(), chart.Encoding{
		X:           models.FieldLongitude,
		Y:           models.FieldLatitude,
		Color:       models.FieldRoomType,
		Title:       "Airbnb Distribution in NYC",
		EqualAspect: true,
	})

	var buf bytes.Buffer
	if err := PNG(&buf, fig, 640, 480); err != nil {
		t.Fatalf("render: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 480 {
		t.Fatalf("bounds = %v, want 640x480", b)
	}
}

func TestPNGSinglePoint(t *testing.T) {
	table := models.NewTable(sampleTable().Listings[:1])
	fig := chart.Scatter(table, chart.Encoding{X: models.FieldLongitude, Y: models.FieldLatitude})

	var buf bytes.Buffer
	if err := PNG(&buf, fig, 0, 0); err != nil {
		t.Fatalf("render: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != DefaultWidth || b.Dy() != DefaultHeight {
		t.Fatalf("bounds = %v, want defaults", b)
	}
}

func TestPNGBar(t *testing.T) {
	fig := chart.Bar([]string{"219517861", "107434423"}, []float64{327, 232}, chart.Encoding{X: "host", Y: "count"})

	var buf bytes.Buffer
	if err := PNG(&buf, fig, 800, 600); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestPNGErrors(t *testing.T) {
	tests := []struct {
		name string
		fig  chart.Figure
		want error
	}{
		{
			name: "empty figure",
			fig:  chart.Scatter(models.NewTable(nil), chart.Encoding{X: models.FieldLongitude, Y: models.FieldLatitude, Color: models.FieldRoomType}),
			want: ErrEmptyFigure,
		},
		{
			name: "histogram",
			fig:  chart.Histogram(sampleTable(), chart.Encoding{X: models.FieldPrice}),
			want: ErrUnsupported,
		},
		{
			name: "categorical axis",
			fig:  chart.Scatter(sampleTable(), chart.Encoding{X: models.FieldRoomType, Y: models.FieldPrice}),
			want: ErrUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PNG(&bytes.Buffer{}, tt.fig, 320, 240)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
