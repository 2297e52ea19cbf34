/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"github.com/packagewjx/feature-transformer/internal/registry"
	"github.com/packagewjx/feature-transformer/internal/transformation"
	"github.com/packagewjx/feature-transformer/internal/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/mat"
	"log"
	"os"
)

const (
	FlagTrainOut        = "train-out"
	FlagTestOut         = "test-out"
	OutputPrecisionFlag = "outputPrecision"

	DefaultOutputPrecision = 6
)

var (
	trainOut        string
	testOut         string
	outputPrecision int
)

// transformCmd represents the transform command
var transformCmd = &cobra.Command{
	Use:   "transform trainFile testFile",
	Short: "在训练集上拟合预处理对象，转换训练集与测试集",
	Long: "数值列使用中位数填充缺失值后标准化，类别列使用众数填充缺失值后独热编码，再除以标准差。\n" +
		"预处理对象只在训练集上拟合，测试集中未出现过的类别编码为全0。转换结果的最后一列为目标列。",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("参数错误")
		} else if args[0] == args[1] {
			return fmt.Errorf("trainFile与testFile不能一致")
		} else if outputPrecision < 0 {
			return fmt.Errorf("输出精度不能小于0")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := schemaFromConfig()
		if err != nil {
			return err
		}
		config := &transformation.Config{
			Schema:       schema,
			ArtifactPath: viper.GetString(ConfigArtifact),
		}

		if dsn := viper.GetString(ConfigMysqlDsn); dsn != "" {
			dao, err := registry.NewDao(dsn)
			if err != nil {
				return err
			}
			config.Registry = dao
		}

		d, err := transformation.NewDataTransformation(config)
		if err != nil {
			return err
		}
		result, err := d.InitiateDataTransformation(args[0], args[1])
		if err != nil {
			return err
		}

		header := append(append([]string{}, result.FeatureNames...), schema.TargetColumn)
		if trainOut != "" {
			if err := outputMatrix(trainOut, header, result.Train); err != nil {
				return err
			}
		}
		if testOut != "" {
			if err := outputMatrix(testOut, header, result.Test); err != nil {
				return err
			}
		}

		fmt.Printf("预处理对象：%s\nID：%s\n特征数量：%d\n", result.ArtifactPath, result.ArtifactId,
			len(result.FeatureNames))
		return nil
	},
}

func outputMatrix(fileName string, header []string, m mat.Matrix) error {
	fout, err := os.Create(fileName)
	if err != nil {
		return errors.Wrap(err, "创建输出文件错误")
	}
	defer fout.Close()

	if err := utils.WriteMatrixHeader(fout, header); err != nil {
		return errors.Wrap(err, "写入表头错误")
	}
	if err := utils.WriteMatrix(fout, m, outputPrecision); err != nil {
		return errors.Wrap(err, "写入输出文件错误")
	}
	rows, cols := m.Dims()
	log.Printf("已输出%d行%d列到%s\n", rows, cols, fileName)
	return nil
}

func init() {
	rootCmd.AddCommand(transformCmd)

	transformCmd.Flags().StringVar(&trainOut, FlagTrainOut, "",
		"转换后的训练集输出文件，为空时不输出")
	transformCmd.Flags().StringVar(&testOut, FlagTestOut, "",
		"转换后的测试集输出文件，为空时不输出")
	transformCmd.Flags().IntVarP(&outputPrecision, OutputPrecisionFlag, "p", DefaultOutputPrecision,
		"输出文件数据精度，默认为6")
}
