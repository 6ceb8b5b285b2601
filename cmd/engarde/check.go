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
	"github.com/magpierre/engarde/source"
	"github.com/magpierre/engarde/suite"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		in        inputFlags
		suitePath string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a check suite against a table",
		Example: `  engarde check --suite suite.yaml --input data.csv
  engarde check --suite suite.yaml --input data.csv --index id --output checked.parquet
  engarde check --suite suite.yaml --sqlite shop.db --query "select * from orders"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.check(cmd.Context(), &in, suitePath, output)
		},
	}
	cmd.Flags().StringVarP(&suitePath, "suite", "s", "", "check suite file (YAML)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the table here when every check passes")
	_ = cmd.MarkFlagRequired("suite")
	in.register(cmd)
	return cmd
}

func (a *app) check(ctx context.Context, in *inputFlags, suitePath, output string) error {
	ctx, cancel := timeoutContext(ctx, a.v.GetInt(cfgKeyTimeout))
	defer cancel()

	s, err := suite.Load(suitePath)
	if err != nil {
		return err
	}
	plan, err := s.Compile(ctx, suite.Options{Name: in.name(), Logger: a.logger})
	if err != nil {
		return err
	}

	opts := in.options(plan.Index())
	var produced *datatable.Frame
	report, err := plan.Run(ctx, func(ctx context.Context) (*datatable.Frame, error) {
		f, err := in.load(ctx, opts)
		if err != nil {
			return nil, err
		}
		a.logger.Debug("loaded table", "input", in.name(), "rows", f.NumRows(), "cols", f.NumCols())
		produced = f
		return f, nil
	})
	if produced != nil {
		defer produced.Release()
	}
	if produced == nil && err != nil {
		return err
	}
	if perr := a.printReport(report); perr != nil {
		return perr
	}
	if err != nil {
		return err
	}

	a.logger.Info("checks passed",
		"checks", len(report.Results),
		"warned", report.Count(suite.StatusWarned))

	if output != "" {
		if err := source.WriteFile(output, produced, source.WriteOptions{Index: opts.Index}); err != nil {
			return err
		}
		a.logger.Info("wrote table", "path", output)
	}
	return nil
}

type reportJSON struct {
	RunID   string         `json:"run_id"`
	Passed  bool           `json:"passed"`
	Results []suite.Result `json:"results"`
}

func (a *app) printReport(report *suite.Report) error {
	if a.json() {
		out, err := json.MarshalIndent(reportJSON{
			RunID:   a.runID,
			Passed:  report.Passed(),
			Results: report.Results,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		_, err = fmt.Fprintln(a.stdout, string(out))
		return err
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tMESSAGE")
	fmt.Fprintln(w, "--\t----\t------\t-------")
	for _, res := range report.Results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", res.ID, res.Type, res.Status, oneLine(res.Message))
	}
	w.Flush()

	for _, line := range strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\n") {
		fmt.Fprintln(a.stdout, strings.TrimRight(line, " "))
	}
	_, err := fmt.Fprintf(a.stdout, "Total: %d check(s), %d passed, %d failed, %d warned, %d skipped\n",
		len(report.Results),
		report.Count(suite.StatusPassed),
		report.Count(suite.StatusFailed),
		report.Count(suite.StatusWarned),
		report.Count(suite.StatusSkipped))
	return err
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
