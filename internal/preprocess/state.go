package preprocess

import (
	"fmt"
	"github.com/packagewjx/feature-transformer/pkg/core"
	"github.com/pkg/errors"
	"math"
	"sort"
)

// FittedState 已拟合预处理对象的全部参数，可以直接序列化
type FittedState struct {
	Schema      core.Schema         `json:"schema"`
	Numerical   []NumericalParams   `json:"numerical"`
	Categorical []CategoricalParams `json:"categorical"`
}

type NumericalParams struct {
	Column string  `json:"column"`
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	Scale  float64 `json:"scale"`
}

// CategoricalParams 独热列只做缩放不减均值，因此只保存标准差
type CategoricalParams struct {
	Column       string    `json:"column"`
	MostFrequent string    `json:"mostFrequent"`
	Categories   []string  `json:"categories"`
	Scale        []float64 `json:"scale"`
}

// Snapshot 导出拟合参数。返回的数据与预处理对象不共享内存
func (c *ColumnTransformer) Snapshot() (*FittedState, error) {
	if c.state != Trained {
		return nil, ErrNotFitted
	}

	state := &FittedState{
		Schema: core.Schema{
			NumericalColumns:   append([]string{}, c.schema.NumericalColumns...),
			CategoricalColumns: append([]string{}, c.schema.CategoricalColumns...),
			TargetColumn:       c.schema.TargetColumn,
		},
		Numerical:   make([]NumericalParams, len(c.schema.NumericalColumns)),
		Categorical: make([]CategoricalParams, len(c.schema.CategoricalColumns)),
	}

	for i, name := range c.schema.NumericalColumns {
		state.Numerical[i] = NumericalParams{
			Column: name,
			Median: c.numImputer.statistics[i],
			Mean:   c.numScaler.mean[i],
			Scale:  c.numScaler.scale[i],
		}
	}

	offset := 0
	for i, name := range c.schema.CategoricalColumns {
		n := len(c.catEncoder.categories[i])
		state.Categorical[i] = CategoricalParams{
			Column:       name,
			MostFrequent: c.catImputer.statistics[i],
			Categories:   append([]string{}, c.catEncoder.categories[i]...),
			Scale:        append([]float64{}, c.catScaler.scale[offset:offset+n]...),
		}
		offset += n
	}

	return state, nil
}

// Restore 由导出的参数重建一个已拟合的预处理对象
func Restore(state *FittedState) (*ColumnTransformer, error) {
	if state == nil {
		return nil, fmt.Errorf("拟合参数为空")
	}
	if err := state.Validate(); err != nil {
		return nil, errors.Wrap(err, "拟合参数校验失败")
	}

	c, err := NewColumnTransformer(&state.Schema)
	if err != nil {
		return nil, err
	}

	c.numImputer = &medianImputer{statistics: make([]float64, len(state.Numerical))}
	c.numScaler = newStandardScaler(true)
	c.numScaler.mean = make([]float64, len(state.Numerical))
	c.numScaler.scale = make([]float64, len(state.Numerical))
	for i, params := range state.Numerical {
		c.numImputer.statistics[i] = params.Median
		c.numScaler.mean[i] = params.Mean
		c.numScaler.scale[i] = params.Scale
	}

	c.catImputer = &mostFrequentImputer{statistics: make([]string, len(state.Categorical))}
	c.catEncoder = &oneHotEncoder{}
	c.catScaler = newStandardScaler(false)
	categories := make([][]string, len(state.Categorical))
	for i, params := range state.Categorical {
		c.catImputer.statistics[i] = params.MostFrequent
		categories[i] = append([]string{}, params.Categories...)
		c.catScaler.scale = append(c.catScaler.scale, params.Scale...)
	}
	c.catEncoder.setCategories(categories)
	c.state = Trained

	return c, nil
}

func (s *FittedState) Validate() error {
	if err := s.Schema.Validate(); err != nil {
		return err
	}
	if len(s.Numerical) != len(s.Schema.NumericalColumns) {
		return fmt.Errorf("数值列参数数量%d与schema中的%d不一致", len(s.Numerical), len(s.Schema.NumericalColumns))
	}
	if len(s.Categorical) != len(s.Schema.CategoricalColumns) {
		return fmt.Errorf("类别列参数数量%d与schema中的%d不一致", len(s.Categorical), len(s.Schema.CategoricalColumns))
	}

	for i, params := range s.Numerical {
		if params.Column != s.Schema.NumericalColumns[i] {
			return fmt.Errorf("第%d个数值列参数属于%s，应为%s", i, params.Column, s.Schema.NumericalColumns[i])
		}
		if !isFinite(params.Median) || !isFinite(params.Mean) || !validScale(params.Scale) {
			return fmt.Errorf("数值列%s的参数无效", params.Column)
		}
	}

	for i, params := range s.Categorical {
		if params.Column != s.Schema.CategoricalColumns[i] {
			return fmt.Errorf("第%d个类别列参数属于%s，应为%s", i, params.Column, s.Schema.CategoricalColumns[i])
		}
		n := len(params.Categories)
		if n == 0 {
			return fmt.Errorf("类别列%s没有任何类别", params.Column)
		}
		if len(params.Scale) != n {
			return fmt.Errorf("类别列%s的缩放参数数量与类别数量%d不一致", params.Column, n)
		}
		if !sort.StringsAreSorted(params.Categories) {
			return fmt.Errorf("类别列%s的类别没有排序", params.Column)
		}
		found := false
		for k, category := range params.Categories {
			if k > 0 && category == params.Categories[k-1] {
				return fmt.Errorf("类别列%s存在重复类别%s", params.Column, category)
			}
			if category == params.MostFrequent {
				found = true
			}
			if !validScale(params.Scale[k]) {
				return fmt.Errorf("类别列%s类别%s的缩放参数无效", params.Column, category)
			}
		}
		if !found {
			return fmt.Errorf("类别列%s的众数%s不在类别表中", params.Column, params.MostFrequent)
		}
	}

	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func validScale(f float64) bool {
	return isFinite(f) && f > 0
}
