package preprocess

import (
	"fmt"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/packagewjx/feature-transformer/pkg/core"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"log"
	"math"
	"strconv"
	"strings"
)

// ColumnTransformer 数值列经过中位数填充与标准化，类别列经过众数填充、独热编码与不减均值的缩放，
// 输出时数值列在前，类别列在后。
//
// 拟合只能进行一次，之后只读，可以在多个转换调用之间共享。
type ColumnTransformer struct {
	schema core.Schema
	state  State

	numImputer *medianImputer
	numScaler  *standardScaler
	catImputer *mostFrequentImputer
	catEncoder *oneHotEncoder
	catScaler  *standardScaler
}

var _ Transformer = &ColumnTransformer{}

// NewColumnTransformer 构建一个尚未拟合的预处理对象
func NewColumnTransformer(schema *core.Schema) (*ColumnTransformer, error) {
	if err := schema.Validate(); err != nil {
		return nil, errors.Wrap(err, "构建预处理对象出错")
	}

	log.Printf("数值列：%v\n", schema.NumericalColumns)
	log.Printf("类别列：%v\n", schema.CategoricalColumns)

	return &ColumnTransformer{
		schema: core.Schema{
			NumericalColumns:   append([]string{}, schema.NumericalColumns...),
			CategoricalColumns: append([]string{}, schema.CategoricalColumns...),
			TargetColumn:       schema.TargetColumn,
		},
		state: Untrained,
	}, nil
}

func (c *ColumnTransformer) Schema() core.Schema {
	return c.schema
}

func (c *ColumnTransformer) State() State {
	return c.state
}

// Fit 计算中位数、众数、类别表、均值与标准差。出错时不改变任何已有状态
func (c *ColumnTransformer) Fit(df dataframe.DataFrame) error {
	if c.state == Trained {
		return ErrAlreadyFitted
	}
	if df.Nrow() == 0 {
		return fmt.Errorf("拟合数据没有任何行")
	}

	numColumns, catColumns, err := c.readColumns(df)
	if err != nil {
		return errors.Wrap(err, "读取拟合数据出错")
	}

	numImputer := &medianImputer{}
	if err := numImputer.fit(c.schema.NumericalColumns, numColumns); err != nil {
		return errors.Wrap(err, "数值列中位数填充拟合出错")
	}
	numScaler := newStandardScaler(true)
	numScaler.fit(numImputer.transform(numColumns))

	catImputer := &mostFrequentImputer{}
	if err := catImputer.fit(c.schema.CategoricalColumns, catColumns); err != nil {
		return errors.Wrap(err, "类别列众数填充拟合出错")
	}
	filled := catImputer.transform(catColumns)
	catEncoder := &oneHotEncoder{}
	catEncoder.fit(filled)
	catScaler := newStandardScaler(false)
	catScaler.fit(catEncoder.transform(filled))

	c.numImputer = numImputer
	c.numScaler = numScaler
	c.catImputer = catImputer
	c.catEncoder = catEncoder
	c.catScaler = catScaler
	c.state = Trained

	return nil
}

// Transform 使用已拟合的参数转换数据，不会修改参数
func (c *ColumnTransformer) Transform(df dataframe.DataFrame) (*mat.Dense, error) {
	if c.state != Trained {
		return nil, ErrNotFitted
	}
	if df.Nrow() == 0 {
		return nil, fmt.Errorf("待转换数据没有任何行")
	}

	numColumns, catColumns, err := c.readColumns(df)
	if err != nil {
		return nil, errors.Wrap(err, "读取待转换数据出错")
	}

	numBlock := c.numScaler.transform(c.numImputer.transform(numColumns))
	catBlock := c.catScaler.transform(c.catEncoder.transform(c.catImputer.transform(catColumns)))

	columns := append(numBlock, catBlock...)
	result := mat.NewDense(df.Nrow(), len(columns), nil)
	for j, column := range columns {
		result.SetCol(j, column)
	}
	return result, nil
}

func (c *ColumnTransformer) FitTransform(df dataframe.DataFrame) (*mat.Dense, error) {
	if err := c.Fit(df); err != nil {
		return nil, err
	}
	return c.Transform(df)
}

// NumFeatures 输出矩阵的列数
func (c *ColumnTransformer) NumFeatures() int {
	if c.state != Trained {
		return 0
	}
	return len(c.schema.NumericalColumns) + c.catEncoder.width()
}

// FeatureNames 输出矩阵每列的名称。独热列命名为"列名_类别"
func (c *ColumnTransformer) FeatureNames() []string {
	if c.state != Trained {
		return nil
	}
	names := make([]string, 0, c.NumFeatures())
	names = append(names, c.schema.NumericalColumns...)
	for ci, name := range c.schema.CategoricalColumns {
		for _, category := range c.catEncoder.categories[ci] {
			names = append(names, name+"_"+category)
		}
	}
	return names
}

func (c *ColumnTransformer) readColumns(df dataframe.DataFrame) ([][]float64, []*stringColumn, error) {
	numColumns := make([][]float64, len(c.schema.NumericalColumns))
	for i, name := range c.schema.NumericalColumns {
		column, err := readNumericColumn(df, name)
		if err != nil {
			return nil, nil, err
		}
		numColumns[i] = column
	}

	catColumns := make([]*stringColumn, len(c.schema.CategoricalColumns))
	for i, name := range c.schema.CategoricalColumns {
		column, err := readStringColumn(df, name)
		if err != nil {
			return nil, nil, err
		}
		catColumns[i] = column
	}

	return numColumns, catColumns, nil
}

// readNumericColumn 缺失值读取为NaN
func readNumericColumn(df dataframe.DataFrame, name string) ([]float64, error) {
	col := df.Col(name)
	if col.Err != nil {
		return nil, errors.Wrap(col.Err, fmt.Sprintf("找不到数值列%s", name))
	}

	result := make([]float64, col.Len())
	for i := 0; i < col.Len(); i++ {
		elem := col.Elem(i)
		if elem.IsNA() {
			result[i] = math.NaN()
			continue
		}

		switch col.Type() {
		case series.Float, series.Int:
			result[i] = elem.Float()
		default:
			f, err := strconv.ParseFloat(strings.TrimSpace(elem.String()), 64)
			if err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("数值列%s第%d行的值[%s]无法转换为数字", name, i, elem.String()))
			}
			if math.IsInf(f, 0) {
				return nil, fmt.Errorf("数值列%s第%d行的值[%s]不是有限数", name, i, elem.String())
			}
			result[i] = f
		}
	}
	return result, nil
}

func readStringColumn(df dataframe.DataFrame, name string) (*stringColumn, error) {
	col := df.Col(name)
	if col.Err != nil {
		return nil, errors.Wrap(col.Err, fmt.Sprintf("找不到类别列%s", name))
	}

	result := &stringColumn{
		values:  make([]string, col.Len()),
		missing: make([]bool, col.Len()),
	}
	for i := 0; i < col.Len(); i++ {
		elem := col.Elem(i)
		if elem.IsNA() {
			result.missing[i] = true
			continue
		}
		result.values[i] = elem.String()
	}
	return result, nil
}
