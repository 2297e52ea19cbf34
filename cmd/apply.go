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
	"github.com/packagewjx/feature-transformer/internal/artifact"
	"github.com/packagewjx/feature-transformer/internal/transformation"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// applyCmd represents the apply command
var applyCmd = &cobra.Command{
	Use:   "apply artifactFile inputFile outputFile",
	Short: "使用保存的预处理对象转换新的数据",
	Long:  "输入数据需要包含预处理对象中记录的所有输入列，目标列可以不存在。输出文件不包含目标列。",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 3 {
			return fmt.Errorf("参数错误")
		} else if args[1] == args[2] {
			return fmt.Errorf("inputFile与outputFile不能一致")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := afero.NewOsFs()
		a, err := artifact.Read(fs, args[0])
		if err != nil {
			return err
		}

		d, err := transformation.NewDataTransformation(&transformation.Config{
			Schema: &a.Schema,
			Fs:     fs,
		})
		if err != nil {
			return err
		}
		features, err := d.Apply(args[0], args[1])
		if err != nil {
			return err
		}

		return outputMatrix(args[2], a.FeatureNames, features)
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().IntVarP(&outputPrecision, OutputPrecisionFlag, "p", DefaultOutputPrecision,
		"输出文件数据精度，默认为6")
}
