package dataset

import (
	"fmt"
	"github.com/go-gota/gota/dataframe"
	"github.com/pkg/errors"
	"strconv"
	"strings"
)

// RequireColumns 检查数据集中存在所有给定的列，多余的列不影响
func RequireColumns(df dataframe.DataFrame, names []string) error {
	existing := make(map[string]struct{}, df.Ncol())
	for _, name := range df.Names() {
		existing[name] = struct{}{}
	}

	missing := make([]string, 0)
	for _, name := range names {
		if _, ok := existing[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) != 0 {
		return fmt.Errorf("数据集缺少列：%s", strings.Join(missing, ", "))
	}
	return nil
}

// SplitTarget 将目标列从数据集中分离出来。目标列的每一行都必须是数字
func SplitTarget(df dataframe.DataFrame, target string) (dataframe.DataFrame, []float64, error) {
	if err := RequireColumns(df, []string{target}); err != nil {
		return dataframe.DataFrame{}, nil, err
	}

	col := df.Col(target)
	if col.Err != nil {
		return dataframe.DataFrame{}, nil, errors.Wrap(col.Err, fmt.Sprintf("读取目标列%s出错", target))
	}

	values := make([]float64, col.Len())
	for i := 0; i < col.Len(); i++ {
		elem := col.Elem(i)
		if elem.IsNA() {
			return dataframe.DataFrame{}, nil, fmt.Errorf("目标列%s第%d行缺失", target, i)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(elem.String()), 64)
		if err != nil {
			return dataframe.DataFrame{}, nil, errors.Wrap(err, fmt.Sprintf("目标列%s第%d行不是数字", target, i))
		}
		values[i] = f
	}

	inputs := df.Drop(target)
	if inputs.Err != nil {
		return dataframe.DataFrame{}, nil, errors.Wrap(inputs.Err, fmt.Sprintf("删除目标列%s出错", target))
	}

	return inputs, values, nil
}
