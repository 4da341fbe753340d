// Package export writes the tables behind a chart as CSV files.
package export

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"BollingerChart/internal/model"
)

const dateLayout = "2006-01-02"

// PriceRowDTO is one (date, symbol) cell of a PriceSeries. AdjClose is empty
// for missing values.
type PriceRowDTO struct {
	Date     string `csv:"date"`
	Symbol   string `csv:"symbol"`
	AdjClose string `csv:"adj_close"`
}

// BandRowDTO is one row of a BandSeries.
type BandRowDTO struct {
	Date   string  `csv:"date"`
	Symbol string  `csv:"symbol"`
	Lower  float64 `csv:"lower"`
	Center float64 `csv:"center"`
	Upper  float64 `csv:"upper"`
}

// PriceRows flattens series into long format, date-major.
func PriceRows(series *model.PriceSeries) []*PriceRowDTO {
	rows := make([]*PriceRowDTO, 0, series.Len()*len(series.Symbols))
	for r, d := range series.Dates {
		for i, symbol := range series.Symbols {
			v := series.Values[i][r]
			cell := ""
			if !math.IsNaN(v) {
				cell = strconv.FormatFloat(v, 'f', -1, 64)
			}
			rows = append(rows, &PriceRowDTO{Date: d.Format(dateLayout), Symbol: symbol, AdjClose: cell})
		}
	}
	return rows
}

// BandRows converts bands to CSV rows.
func BandRows(bands *model.BandSeries) []*BandRowDTO {
	rows := make([]*BandRowDTO, bands.Len())
	for i, d := range bands.Dates {
		rows[i] = &BandRowDTO{
			Date:   d.Format(dateLayout),
			Symbol: bands.Symbol,
			Lower:  bands.Lower[i],
			Center: bands.Center[i],
			Upper:  bands.Upper[i],
		}
	}
	return rows
}

// WriteCSV writes "<title>.prices.csv" and, when bands is non-empty,
// "<title>.bands.csv" into dir. Existing files are overwritten.
func WriteCSV(dir, title string, series *model.PriceSeries, bands *model.BandSeries) ([]string, error) {
	pricePath := filepath.Join(dir, title+".prices.csv")
	priceRows := PriceRows(series)
	if err := marshalFile(pricePath, &priceRows); err != nil {
		return nil, err
	}
	paths := []string{pricePath}

	if bands.Len() > 0 {
		bandPath := filepath.Join(dir, title+".bands.csv")
		bandRows := BandRows(bands)
		if err := marshalFile(bandPath, &bandRows); err != nil {
			return paths, err
		}
		paths = append(paths, bandPath)
	}

	log.WithFields(log.Fields{"files": len(paths), "rows": series.Len()}).Info("exported chart data")
	return paths, nil
}

func marshalFile(path string, rows interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(rows, file); err != nil {
		return fmt.Errorf("error marshalling %s: %w", path, err)
	}
	return nil
}
