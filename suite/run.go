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

package suite

import (
	"context"
	"time"

	"github.com/magpierre/engarde/checks"
	"github.com/magpierre/engarde/datatable"
	"github.com/magpierre/engarde/pipeline"
)

// Status is the outcome of one check.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusWarned  Status = "warned"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of one check of a run.
type Result struct {
	ID      string        `json:"id"`
	Type    string        `json:"type"`
	Status  Status        `json:"status"`
	Message string        `json:"message,omitempty"`
	Elapsed time.Duration `json:"elapsed_ns"`
	Err     error         `json:"-"`
}

// Report lists the results of a run in check order.
type Report struct {
	Results []Result `json:"results"`
}

// Passed reports whether no check failed. Warnings do not count.
func (r *Report) Passed() bool {
	return len(r.Failed()) == 0
}

// Failed returns the failed results.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			out = append(out, res)
		}
	}
	return out
}

// Count returns the number of results with the given status.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Check runs the plan against f.
func (p *Plan) Check(ctx context.Context, f *datatable.Frame) (*Report, error) {
	return p.Run(ctx, func(context.Context) (*datatable.Frame, error) {
		return f, nil
	})
}

// Run produces a frame and runs every check on it in order. A validation
// failure of an on_fail: warn check is logged and recorded; any other error
// stops the run and is returned along with the report, in which the
// remaining checks are marked skipped.
func (p *Plan) Run(ctx context.Context, produce pipeline.Producer) (*Report, error) {
	report := &Report{Results: make([]Result, 0, len(p.steps))}

	cks := make([]pipeline.Check, len(p.steps))
	for i, st := range p.steps {
		cks[i] = func(f *datatable.Frame) (*datatable.Frame, error) {
			start := time.Now()
			_, err := st.run(ctx, f)
			res := Result{
				ID:      st.spec.ID,
				Type:    st.spec.Type,
				Status:  StatusPassed,
				Elapsed: time.Since(start),
			}
			if err != nil {
				res.Status = StatusFailed
				res.Message = err.Error()
				res.Err = err
			}
			if err != nil && st.spec.OnFail == OnFailWarn && checks.IsValidationError(err) {
				res.Status = StatusWarned
				p.logger.Warn("check failed", "id", res.ID, "type", res.Type, "error", err)
				err = nil
			}
			report.Results = append(report.Results, res)
			if err != nil {
				return nil, err
			}
			return f, nil
		}
	}

	stage := pipeline.NewStage(p.name, produce, cks, pipeline.WithLogger(p.logger))
	_, err := stage.Run(ctx)
	for _, st := range p.steps[len(report.Results):] {
		report.Results = append(report.Results, Result{ID: st.spec.ID, Type: st.spec.Type, Status: StatusSkipped})
	}
	return report, err
}
