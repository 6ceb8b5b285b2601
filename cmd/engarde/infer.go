// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/magpierre/engarde/datatable"
)

func newInferCmd(a *app) *cobra.Command {
	var in inputFlags
	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Print the dtype and inferred type of every column",
		Example: `  engarde infer --input data.parquet
  engarde infer --sqlite shop.db --query "select * from orders" --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.infer(cmd.Context(), &in)
		},
	}
	in.register(cmd)
	return cmd
}

type columnInfo struct {
	Column   string `json:"column"`
	Dtype    string `json:"dtype"`
	Inferred string `json:"inferred"`
	Nulls    int    `json:"nulls"`
	Unique   bool   `json:"unique"`
}

func (a *app) infer(ctx context.Context, in *inputFlags) error {
	ctx, cancel := timeoutContext(ctx, a.v.GetInt(cfgKeyTimeout))
	defer cancel()

	f, err := in.load(ctx, in.options(""))
	if err != nil {
		return err
	}
	defer f.Release()

	cols, err := f.Columns()
	if err != nil {
		return err
	}
	infos := make([]columnInfo, len(cols))
	for i, s := range cols {
		infos[i] = columnInfo{
			Column:   s.Name(),
			Dtype:    s.DataType().String(),
			Inferred: datatable.InferType(s),
			Nulls:    s.NullCount(),
			Unique:   s.IsUnique(),
		}
	}
	a.logger.Debug("inferred types", "input", in.name(), "rows", f.NumRows(), "cols", len(infos))

	if a.json() {
		out, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal columns: %w", err)
		}
		_, err = fmt.Fprintln(a.stdout, string(out))
		return err
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COLUMN\tDTYPE\tINFERRED\tNULLS\tUNIQUE")
	fmt.Fprintln(w, "------\t-----\t--------\t-----\t------")
	for _, c := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\n", c.Column, c.Dtype, c.Inferred, c.Nulls, c.Unique)
	}
	w.Flush()

	for _, line := range strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\n") {
		fmt.Fprintln(a.stdout, strings.TrimRight(line, " "))
	}
	_, err = fmt.Fprintf(a.stdout, "Total: %d column(s), %d row(s)\n", len(infos), f.NumRows())
	return err
}
