package datasets

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// WriteCSV writes a header row followed by one row per record.
func (d *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := append(append([]string{}, FeatureColumns...), ColPrice)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write csv header")
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for i, r := range d.records {
		row := []string{
			f(r.SquareFootage),
			strconv.Itoa(r.YearBuilt),
			strconv.Itoa(r.Bedrooms),
			f(r.Bathrooms),
			strconv.Itoa(r.Garage),
			r.PropertyType,
			r.Neighborhood,
			strconv.Itoa(r.HasPool),
			strconv.Itoa(r.HasFireplace),
			strconv.Itoa(r.HasHardwoodFloors),
			strconv.Itoa(r.RecentlyUpdated),
			f(r.Price),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write csv row %d", i)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}
