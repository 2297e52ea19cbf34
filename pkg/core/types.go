package core

import (
	"fmt"
)

// Schema 描述一个数据集中参与转换的列。目标列不能出现在输入列中
type Schema struct {
	NumericalColumns   []string `json:"numericalColumns" mapstructure:"numericalColumns"`
	CategoricalColumns []string `json:"categoricalColumns" mapstructure:"categoricalColumns"`
	TargetColumn       string   `json:"targetColumn" mapstructure:"targetColumn"`
}

const (
	DefaultTargetColumn = "math_score"
)

var (
	DefaultNumericalColumns   = []string{"writing_score", "reading_score"}
	DefaultCategoricalColumns = []string{"gender", "race_ethnicity", "parental_level_of_education", "lunch",
		"test_preparation_course"}
)

// DefaultSchema 学生成绩数据集的列定义
func DefaultSchema() *Schema {
	return &Schema{
		NumericalColumns:   append([]string{}, DefaultNumericalColumns...),
		CategoricalColumns: append([]string{}, DefaultCategoricalColumns...),
		TargetColumn:       DefaultTargetColumn,
	}
}

func (s *Schema) Validate() error {
	if s == nil {
		return fmt.Errorf("schema不能为空")
	}
	if len(s.NumericalColumns)+len(s.CategoricalColumns) == 0 {
		return fmt.Errorf("至少需要一个输入列")
	}
	if s.TargetColumn == "" {
		return fmt.Errorf("目标列名不能为空")
	}

	seen := make(map[string]struct{})
	for _, name := range s.InputColumns() {
		if name == "" {
			return fmt.Errorf("输入列名不能为空")
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("列%s重复声明", name)
		}
		if name == s.TargetColumn {
			return fmt.Errorf("目标列%s不能作为输入列", name)
		}
		seen[name] = struct{}{}
	}

	return nil
}

// InputColumns 返回所有输入列，数值列在前，类别列在后
func (s *Schema) InputColumns() []string {
	columns := make([]string, 0, len(s.NumericalColumns)+len(s.CategoricalColumns))
	columns = append(columns, s.NumericalColumns...)
	return append(columns, s.CategoricalColumns...)
}

// AllColumns 输入列加上目标列
func (s *Schema) AllColumns() []string {
	return append(s.InputColumns(), s.TargetColumn)
}

func (s *Schema) Equal(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.TargetColumn == other.TargetColumn &&
		stringsEqual(s.NumericalColumns, other.NumericalColumns) &&
		stringsEqual(s.CategoricalColumns, other.CategoricalColumns)
}

func (s Schema) String() string {
	return fmt.Sprintf("numerical=%v categorical=%v target=%s", s.NumericalColumns, s.CategoricalColumns,
		s.TargetColumn)
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
