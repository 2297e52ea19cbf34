package dataset

import (
	"fmt"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/packagewjx/feature-transformer/internal/utils"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"log"
)

// MissingValues 这些字符串在读取时被视为缺失值
var MissingValues = []string{"", "NA", "NaN", "<nil>"}

type Loader interface {
	Load(fileName string) (dataframe.DataFrame, error)
}

type DataFormat string

const (
	CSV = DataFormat("csv")
)

func NewLoader(format DataFormat, fs afero.Fs) Loader {
	switch format {
	case CSV:
		return &csvLoader{fs: fs}
	default:
		return nil
	}
}

type csvLoader struct {
	fs afero.Fs
}

// Load 所有列都按字符串读取，数值的解析留给预处理步骤，以便报告具体出错的列
func (c *csvLoader) Load(fileName string) (dataframe.DataFrame, error) {
	fin, err := c.fs.Open(fileName)
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrap(err, fmt.Sprintf("打开数据文件%s出错", fileName))
	}
	defer func() {
		_ = fin.Close()
	}()

	counter := &utils.ReadCounter{Reader: fin}
	df := dataframe.ReadCSV(counter,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(MissingValues))
	if df.Err != nil {
		return dataframe.DataFrame{}, errors.Wrap(df.Err, fmt.Sprintf("解析数据文件%s出错", fileName))
	}
	log.Printf("读取%s完毕，共%d字节，%d行%d列\n", fileName, counter.Count, df.Nrow(), df.Ncol())

	return df, nil
}
