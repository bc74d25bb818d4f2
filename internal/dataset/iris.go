package dataset

import (
	"math"
	"math/rand"
)

// irisClass holds per-class feature statistics (mean, standard deviation)
// for sepal_length, sepal_width, petal_length, petal_width, taken from the
// canonical 150-sample iris measurements.
type irisClass struct {
	mean [4]float64
	std  [4]float64
}

var irisClasses = []irisClass{
	{ // setosa
		mean: [4]float64{5.006, 3.428, 1.462, 0.246},
		std:  [4]float64{0.352, 0.379, 0.174, 0.105},
	},
	{ // versicolor
		mean: [4]float64{5.936, 2.770, 4.260, 1.326},
		std:  [4]float64{0.516, 0.314, 0.470, 0.198},
	},
	{ // virginica
		mean: [4]float64{6.588, 2.974, 5.552, 2.026},
		std:  [4]float64{0.636, 0.322, 0.552, 0.275},
	},
}

const irisSeed = 4913

// Iris returns the in-process canonical reference classification dataset:
// 150 rows, 4 features, 3 balanced classes, drawn from the canonical
// per-class iris statistics with a fixed seed. Every call returns an
// identical table.
func Iris() *Dataset {
	rng := rand.New(rand.NewSource(irisSeed))

	d := &Dataset{
		Features:   []string{"sepal_length", "sepal_width", "petal_length", "petal_width"},
		TargetName: "target",
		Task:       TaskClassification,
		Rows:       make([][]float64, 0, 150),
		Target:     make([]float64, 0, 150),
	}

	for class, c := range irisClasses {
		for i := 0; i < 50; i++ {
			row := make([]float64, 4)
			for j := 0; j < 4; j++ {
				v := c.mean[j] + rng.NormFloat64()*c.std[j]
				// Measurements are recorded to one decimal, never negative.
				v = math.Round(v*10) / 10
				if v < 0.1 {
					v = 0.1
				}
				row[j] = v
			}
			d.Rows = append(d.Rows, row)
			d.Target = append(d.Target, float64(class))
		}
	}

	return d
}
