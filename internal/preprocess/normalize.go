package preprocess

import (
	"gonum.org/v1/gonum/stat"
	"math"
)

// 标准差小于此值的列视为常数列，缩放系数取1
const minScale = 10 * 2.220446049250313e-16

// standardScaler 按列标准化。withMean为false时只除以标准差，不减去均值，用于保持独热列的稀疏性
type standardScaler struct {
	withMean bool
	mean     []float64
	scale    []float64
}

func newStandardScaler(withMean bool) *standardScaler {
	return &standardScaler{withMean: withMean}
}

func (s *standardScaler) fit(columns [][]float64) {
	mean := make([]float64, len(columns))
	scale := make([]float64, len(columns))
	for ci, column := range columns {
		m, variance := stat.PopMeanVariance(column, nil)
		mean[ci] = m
		scale[ci] = math.Sqrt(variance)
		if scale[ci] < minScale {
			scale[ci] = 1
		}
	}
	s.mean = mean
	s.scale = scale
}

func (s *standardScaler) transform(columns [][]float64) [][]float64 {
	result := make([][]float64, len(columns))
	for ci, column := range columns {
		scaled := make([]float64, len(column))
		for i, f := range column {
			if s.withMean {
				f -= s.mean[ci]
			}
			scaled[i] = f / s.scale[ci]
		}
		result[ci] = scaled
	}
	return result
}
