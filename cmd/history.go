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
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"text/tabwriter"
)

const (
	FlagLimit    = "limit"
	DefaultLimit = 10
)

var limit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "列出最近登记的预处理对象",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 {
			return fmt.Errorf("参数错误")
		} else if viper.GetString(ConfigMysqlDsn) == "" {
			return fmt.Errorf("必须配置%s", ConfigMysqlDsn)
		} else if limit <= 0 {
			return fmt.Errorf("limit必须大于0")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		dao, err := registry.NewDao(viper.GetString(ConfigMysqlDsn))
		if err != nil {
			return err
		}
		records, err := dao.QueryRecentArtifacts(limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tPATH\tFEATURES\tTRAIN\tTEST\tCREATED")
		for _, r := range records {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n", r.ArtifactId, r.Path, r.NumFeatures, r.TrainRows,
				r.TestRows, r.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&limit, FlagLimit, "n", DefaultLimit, "列出的记录数量")
}
