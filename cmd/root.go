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
	"github.com/packagewjx/feature-transformer/pkg/core"
	"github.com/spf13/cobra"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// 配置文件中的键
const (
	ConfigNumericalColumns   = "numericalColumns"
	ConfigCategoricalColumns = "categoricalColumns"
	ConfigTargetColumn       = "targetColumn"
	ConfigArtifact           = "artifact"
	ConfigMysqlDsn           = "mysqlDsn"
)

// Global Flags
const (
	FlagConfig   = "config"
	FlagArtifact = "artifact"
	FlagMysqlDsn = "mysql-dsn"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "feature-transformer",
	Short: "表格数据特征预处理工具",
	Long: "在训练集上拟合数值列与类别列的预处理对象，转换训练集与测试集，并将拟合好的预处理对象保存到文件中，\n" +
		"供推理时使用apply命令转换新的数据。\n" +
		"列的定义从配置文件（默认为$HOME/.feature-transformer.yaml）中读取，未配置时使用学生成绩数据集的列。",
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, FlagConfig, "",
		"配置文件，默认为$HOME/.feature-transformer.yaml")
	rootCmd.PersistentFlags().String(FlagArtifact, artifact.DefaultPath,
		"预处理对象文件的路径")
	rootCmd.PersistentFlags().String(FlagMysqlDsn, "",
		"登记预处理对象的MySQL连接串，为空时不登记")
	_ = viper.BindPFlag(ConfigArtifact, rootCmd.PersistentFlags().Lookup(FlagArtifact))
	_ = viper.BindPFlag(ConfigMysqlDsn, rootCmd.PersistentFlags().Lookup(FlagMysqlDsn))

	viper.SetDefault(ConfigNumericalColumns, core.DefaultNumericalColumns)
	viper.SetDefault(ConfigCategoricalColumns, core.DefaultCategoricalColumns)
	viper.SetDefault(ConfigTargetColumn, core.DefaultTargetColumn)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".feature-transformer" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".feature-transformer")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// schemaFromConfig 从配置中读取列定义
func schemaFromConfig() (*core.Schema, error) {
	schema := &core.Schema{}
	if err := viper.Unmarshal(schema); err != nil {
		return nil, fmt.Errorf("解析列定义出错：%v", err)
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return schema, nil
}
