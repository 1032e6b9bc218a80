// Package datasets generates the synthetic housing data the price model is trained on.
//
// Generation is deterministic: the same sample count and seed always produce a
// bit-identical Dataset, because every draw comes from one PCG stream and columns are
// drawn in a fixed order.
package datasets

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// Column names in feature order. PropertyType and Neighborhood hold category strings.
const (
	ColSquareFootage     = "square_footage"
	ColYearBuilt         = "year_built"
	ColBedrooms          = "bedrooms"
	ColBathrooms         = "bathrooms"
	ColGarage            = "garage"
	ColPropertyType      = "property_type"
	ColNeighborhood      = "neighborhood"
	ColHasPool           = "has_pool"
	ColHasFireplace      = "has_fireplace"
	ColHasHardwoodFloors = "has_hardwood_floors"
	ColRecentlyUpdated   = "recently_updated"
	ColPrice             = "price"
)

// FeatureColumns is the fixed model input order.
var FeatureColumns = []string{
	ColSquareFootage, ColYearBuilt, ColBedrooms, ColBathrooms, ColGarage,
	ColPropertyType, ColNeighborhood,
	ColHasPool, ColHasFireplace, ColHasHardwoodFloors, ColRecentlyUpdated,
}

// NumFeatures is len(FeatureColumns).
const NumFeatures = 11

// Record is one synthetic property.
type Record struct {
	SquareFootage     float64
	YearBuilt         int
	Bedrooms          int
	Bathrooms         float64
	Garage            int
	PropertyType      string
	Neighborhood      string
	HasPool           int
	HasFireplace      int
	HasHardwoodFloors int
	RecentlyUpdated   int
	Price             float64
}

// Dataset is an ordered, read-only collection of records.
type Dataset struct {
	records []Record
	seed    uint64
}

// GenerateHousing draws n records with the given seed. n <= 0 yields an empty dataset.
func GenerateHousing(n int, seed uint64) *Dataset {
	if n <= 0 {
		return &Dataset{seed: seed}
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	records := make([]Record, n)

	sqft := distuv.Normal{Mu: SquareFootageMean, Sigma: SquareFootageSigma, Src: rng}
	for i := range records {
		records[i].SquareFootage = clip(sqft.Rand(), MinSquareFootage, MaxSquareFootage)
	}
	for i := range records {
		records[i].YearBuilt = MinYearBuilt + rng.IntN(MaxYearBuilt-MinYearBuilt)
	}

	bedrooms := sampler(bedroomChoice, rng)
	for i := range records {
		records[i].Bedrooms = int(bedrooms())
	}
	bathrooms := sampler(bathroomChoice, rng)
	for i := range records {
		records[i].Bathrooms = bathrooms()
	}
	garage := sampler(garageChoice, rng)
	for i := range records {
		records[i].Garage = int(garage())
	}
	propertyType := labelSampler(propertyTypeLabels, rng)
	for i := range records {
		records[i].PropertyType = propertyType()
	}
	neighborhood := labelSampler(neighborhoodLabels, rng)
	for i := range records {
		records[i].Neighborhood = neighborhood()
	}

	flags := []struct {
		dist   choice
		set    func(r *Record, v int)
	}{
		{poolChoice, func(r *Record, v int) { r.HasPool = v }},
		{fireplaceChoice, func(r *Record, v int) { r.HasFireplace = v }},
		{hardwoodChoice, func(r *Record, v int) { r.HasHardwoodFloors = v }},
		{updatedChoice, func(r *Record, v int) { r.RecentlyUpdated = v }},
	}
	for _, f := range flags {
		draw := sampler(f.dist, rng)
		for i := range records {
			f.set(&records[i], int(draw()))
		}
	}

	noise := distuv.Normal{Mu: 0, Sigma: NoiseSigma, Src: rng}
	for i := range records {
		records[i].Price = clip(BaseValue(records[i])+noise.Rand(), MinPrice, MaxPrice)
	}

	return &Dataset{records: records, seed: seed}
}

// BaseValue applies the pricing rules to r without noise or clipping.
// Type and neighborhood factors are applied one after the other; unknown
// categories use a factor of 1.
func BaseValue(r Record) float64 {
	price := float64(BasePrice)
	price += (r.SquareFootage - 2000) * PerSquareFoot
	price += float64(r.YearBuilt-1980) * PerYear
	price += float64(r.Bedrooms) * PerBedroom
	price += r.Bathrooms * PerBathroom
	price += float64(r.Garage) * PerGarage

	price *= PropertyTypeFactor(r.PropertyType)
	price *= NeighborhoodFactor(r.Neighborhood)

	price += float64(r.HasPool) * PoolBonus
	price += float64(r.HasFireplace) * FireplaceBonus
	price += float64(r.HasHardwoodFloors) * HardwoodBonus
	price += float64(r.RecentlyUpdated) * UpdatedBonus
	return price
}

func sampler(c choice, src rand.Source) func() float64 {
	cat := distuv.NewCategorical(c.Weights, src)
	return func() float64 { return c.Values[int(cat.Rand())] }
}

func labelSampler(l labels, src rand.Source) func() string {
	cat := distuv.NewCategorical(l.Weights, src)
	return func() string { return l.Values[int(cat.Rand())] }
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Seed returns the seed the dataset was generated with.
func (d *Dataset) Seed() uint64 { return d.seed }

// Record returns a copy of the i-th record.
func (d *Dataset) Record(i int) Record { return d.records[i] }

// Records returns a copy of all records.
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Subset returns a new dataset holding the records at idx, in that order.
func (d *Dataset) Subset(idx []int) (*Dataset, error) {
	out := make([]Record, len(idx))
	for k, i := range idx {
		if i < 0 || i >= len(d.records) {
			return nil, errors.NewValueError("Dataset.Subset", "index out of range")
		}
		out[k] = d.records[i]
	}
	return &Dataset{records: out, seed: d.seed}, nil
}

// Column returns a categorical column by name.
func (d *Dataset) Column(name string) ([]string, error) {
	var get func(r Record) string
	switch name {
	case ColPropertyType:
		get = func(r Record) string { return r.PropertyType }
	case ColNeighborhood:
		get = func(r Record) string { return r.Neighborhood }
	default:
		return nil, errors.NewValueError("Dataset.Column", "no categorical column "+name)
	}
	out := make([]string, len(d.records))
	for i, r := range d.records {
		out[i] = get(r)
	}
	return out, nil
}

// Prices returns the label vector.
func (d *Dataset) Prices() *mat.VecDense {
	if len(d.records) == 0 {
		return &mat.VecDense{}
	}
	v := mat.NewVecDense(len(d.records), nil)
	for i, r := range d.records {
		v.SetVec(i, r.Price)
	}
	return v
}

// FeatureMatrix builds the n×11 matrix in FeatureColumns order, using the given
// codes for the two categorical columns.
func (d *Dataset) FeatureMatrix(propertyTypeCodes, neighborhoodCodes []int) (*mat.Dense, error) {
	n := len(d.records)
	if n == 0 {
		return nil, errors.NewModelError("Dataset.FeatureMatrix", "empty data", errors.ErrEmptyData)
	}
	if len(propertyTypeCodes) != n {
		return nil, errors.NewDimensionError("Dataset.FeatureMatrix", n, len(propertyTypeCodes), 0)
	}
	if len(neighborhoodCodes) != n {
		return nil, errors.NewDimensionError("Dataset.FeatureMatrix", n, len(neighborhoodCodes), 0)
	}

	X := mat.NewDense(n, NumFeatures, nil)
	for i, r := range d.records {
		X.SetRow(i, []float64{
			r.SquareFootage,
			float64(r.YearBuilt),
			float64(r.Bedrooms),
			r.Bathrooms,
			float64(r.Garage),
			float64(propertyTypeCodes[i]),
			float64(neighborhoodCodes[i]),
			float64(r.HasPool),
			float64(r.HasFireplace),
			float64(r.HasHardwoodFloors),
			float64(r.RecentlyUpdated),
		})
	}
	return X, nil
}

// Validate checks the documented ranges of every record.
func (d *Dataset) Validate() error {
	for i, r := range d.records {
		switch {
		case r.SquareFootage < MinSquareFootage || r.SquareFootage > MaxSquareFootage:
			return errors.Newf("record %d: square_footage %v outside [%d, %d]", i, r.SquareFootage, MinSquareFootage, MaxSquareFootage)
		case r.Price < MinPrice || r.Price > MaxPrice:
			return errors.Newf("record %d: price %v outside [%d, %d]", i, r.Price, MinPrice, MaxPrice)
		case r.YearBuilt < MinYearBuilt || r.YearBuilt >= MaxYearBuilt:
			return errors.Newf("record %d: year_built %d outside [%d, %d)", i, r.YearBuilt, MinYearBuilt, MaxYearBuilt)
		case math.IsNaN(r.Price) || math.IsNaN(r.SquareFootage):
			return errors.Newf("record %d: NaN value", i)
		}
	}
	return nil
}
