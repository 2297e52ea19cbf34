package preprocess

import (
	"sort"
)

// oneHotEncoder 每个类别值对应一个指示列，类别按字典序排列。未见过的类别整块输出0
type oneHotEncoder struct {
	categories [][]string
	index      []map[string]int
}

func (o *oneHotEncoder) fit(columns [][]string) {
	categories := make([][]string, len(columns))
	for ci, column := range columns {
		seen := make(map[string]struct{})
		for _, v := range column {
			seen[v] = struct{}{}
		}
		values := make([]string, 0, len(seen))
		for v := range seen {
			values = append(values, v)
		}
		sort.Strings(values)
		categories[ci] = values
	}
	o.setCategories(categories)
}

func (o *oneHotEncoder) setCategories(categories [][]string) {
	index := make([]map[string]int, len(categories))
	for ci, values := range categories {
		index[ci] = make(map[string]int, len(values))
		for i, v := range values {
			index[ci][v] = i
		}
	}
	o.categories = categories
	o.index = index
}

func (o *oneHotEncoder) width() int {
	w := 0
	for _, values := range o.categories {
		w += len(values)
	}
	return w
}

// transform 返回按列存放的指示矩阵，宽度由拟合时的类别决定
func (o *oneHotEncoder) transform(columns [][]string) [][]float64 {
	result := make([][]float64, 0, o.width())
	for ci, column := range columns {
		block := make([][]float64, len(o.categories[ci]))
		for k := range block {
			block[k] = make([]float64, len(column))
		}
		for i, v := range column {
			if k, ok := o.index[ci][v]; ok {
				block[k][i] = 1
			}
		}
		result = append(result, block...)
	}
	return result
}
