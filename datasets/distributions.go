package datasets

// choice is a discrete distribution over float values.
type choice struct {
	Values  []float64
	Weights []float64
}

// labels is a discrete distribution over category strings.
type labels struct {
	Values  []string
	Weights []float64
}

// 生成の決定性を保つため分布表は非公開にし、外部にはコピーだけを渡す
var (
	bedroomChoice = choice{
		Values:  []float64{2, 3, 4, 5},
		Weights: []float64{0.2, 0.4, 0.3, 0.1},
	}
	bathroomChoice = choice{
		Values:  []float64{1, 1.5, 2, 2.5, 3, 3.5, 4},
		Weights: []float64{0.1, 0.15, 0.3, 0.2, 0.15, 0.08, 0.02},
	}
	garageChoice = choice{
		Values:  []float64{0, 1, 2, 3},
		Weights: []float64{0.1, 0.2, 0.6, 0.1},
	}
	propertyTypeLabels = labels{
		Values:  []string{"single-family", "condo", "townhouse", "multi-family"},
		Weights: []float64{0.6, 0.2, 0.15, 0.05},
	}
	neighborhoodLabels = labels{
		Values:  []string{"downtown", "suburbs", "waterfront", "rural"},
		Weights: []float64{0.2, 0.5, 0.2, 0.1},
	}
	poolChoice      = flag(0.2)
	fireplaceChoice = flag(0.4)
	hardwoodChoice  = flag(0.5)
	updatedChoice   = flag(0.3)
)

func flag(p float64) choice {
	return choice{Values: []float64{0, 1}, Weights: []float64{1 - p, p}}
}

// Pricing rules. Prices are in whole currency units.
const (
	BasePrice = 5_000_000

	PerSquareFoot = 3000
	PerYear       = 30_000
	PerBedroom    = 500_000
	PerBathroom   = 300_000
	PerGarage     = 200_000

	PoolBonus      = 400_000
	FireplaceBonus = 200_000
	HardwoodBonus  = 150_000
	UpdatedBonus   = 300_000

	NoiseSigma = 500_000

	MinPrice = 2_000_000
	MaxPrice = 50_000_000

	SquareFootageMean  = 2200
	SquareFootageSigma = 600
	MinSquareFootage   = 800
	MaxSquareFootage   = 6000

	// year_built is drawn from [MinYearBuilt, MaxYearBuilt)
	MinYearBuilt = 1950
	MaxYearBuilt = 2024
)

var propertyTypeFactor = map[string]float64{
	"single-family": 1.0,
	"condo":         0.8,
	"townhouse":     0.9,
	"multi-family":  1.1,
}

var neighborhoodFactor = map[string]float64{
	"downtown":   1.2,
	"suburbs":    1.0,
	"waterfront": 1.5,
	"rural":      0.8,
}

// PropertyTypes returns the generated property types in sampling order.
func PropertyTypes() []string {
	return append([]string(nil), propertyTypeLabels.Values...)
}

// Neighborhoods returns the generated neighborhoods in sampling order.
func Neighborhoods() []string {
	return append([]string(nil), neighborhoodLabels.Values...)
}

// PropertyTypeFactor は物件種別による価格倍率を返す。未知の種別は 1。
func PropertyTypeFactor(propertyType string) float64 {
	if f, ok := propertyTypeFactor[propertyType]; ok {
		return f
	}
	return 1
}

// NeighborhoodFactor は地域による価格倍率を返す。未知の地域は 1。
func NeighborhoodFactor(neighborhood string) float64 {
	if f, ok := neighborhoodFactor[neighborhood]; ok {
		return f
	}
	return 1
}
