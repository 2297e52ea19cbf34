package preprocess

import (
	"fmt"
	"github.com/packagewjx/feature-transformer/internal/utils"
	"math"
	"sort"
)

// stringColumn 类别列的原始数据，missing标记缺失值
type stringColumn struct {
	values  []string
	missing []bool
}

// medianImputer 使用拟合数据每列的中位数填充NaN
type medianImputer struct {
	statistics []float64
}

func (m *medianImputer) fit(names []string, columns [][]float64) error {
	statistics := make([]float64, len(columns))
	for ci, column := range columns {
		valid := make([]float64, 0, len(column))
		for _, f := range column {
			if !math.IsNaN(f) {
				valid = append(valid, f)
			}
		}
		if len(valid) == 0 {
			return fmt.Errorf("列%s在拟合数据中没有有效值，无法计算中位数", names[ci])
		}
		statistics[ci] = utils.Median(valid)
	}

	m.statistics = statistics
	return nil
}

func (m *medianImputer) transform(columns [][]float64) [][]float64 {
	result := make([][]float64, len(columns))
	for ci, column := range columns {
		filled := make([]float64, len(column))
		for i, f := range column {
			if math.IsNaN(f) {
				filled[i] = m.statistics[ci]
			} else {
				filled[i] = f
			}
		}
		result[ci] = filled
	}
	return result
}

// mostFrequentImputer 使用拟合数据每列出现次数最多的值填充缺失值。次数相同时取字典序最小的值
type mostFrequentImputer struct {
	statistics []string
}

func (m *mostFrequentImputer) fit(names []string, columns []*stringColumn) error {
	statistics := make([]string, len(columns))
	for ci, column := range columns {
		counts := make(map[string]int)
		for i, v := range column.values {
			if !column.missing[i] {
				counts[v]++
			}
		}
		if len(counts) == 0 {
			return fmt.Errorf("列%s在拟合数据中没有有效值，无法计算众数", names[ci])
		}

		candidates := make([]string, 0, len(counts))
		for v := range counts {
			candidates = append(candidates, v)
		}
		sort.Strings(candidates)
		best := candidates[0]
		for _, v := range candidates[1:] {
			if counts[v] > counts[best] {
				best = v
			}
		}
		statistics[ci] = best
	}

	m.statistics = statistics
	return nil
}

func (m *mostFrequentImputer) transform(columns []*stringColumn) [][]string {
	result := make([][]string, len(columns))
	for ci, column := range columns {
		filled := make([]string, len(column.values))
		for i, v := range column.values {
			if column.missing[i] {
				filled[i] = m.statistics[ci]
			} else {
				filled[i] = v
			}
		}
		result[ci] = filled
	}
	return result
}
