package utils

import (
	"encoding/csv"
	"fmt"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"io"
	"strconv"
)

func WriteMatrixHeader(out io.Writer, names []string) error {
	writer := csv.NewWriter(out)
	err := writer.Write(names)
	if err != nil {
		return errors.Wrap(err, "写入表头出错")
	}
	writer.Flush()
	return writer.Error()
}

// WriteMatrix 按行写出矩阵，precision小于0时使用最短的精确表示
func WriteMatrix(out io.Writer, m mat.Matrix, precision int) error {
	writer := csv.NewWriter(out)

	rows, cols := m.Dims()
	record := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			record[j] = strconv.FormatFloat(m.At(i, j), 'f', precision, 64)
		}
		err := writer.Write(record)
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("写入第%d行数据出错", i))
		}
	}

	writer.Flush()
	return writer.Error()
}
