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

// Package pipeline attaches checks to the functions that produce frames.
//
// A Stage holds a producer and an ordered list of checks. Running it calls
// the producer, runs every check on the result and returns the produced
// frame untouched, or the first error:
//
//	stage := pipeline.NewStage("orders", load,
//		[]pipeline.Check{
//			pipeline.NoneMissing("id"),
//			pipeline.IsShape(pipeline.AnySize, 4),
//		},
//		pipeline.WithLogger(logger),
//	)
//	f, err := stage.Run(ctx)
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magpierre/engarde/checks"
	"github.com/magpierre/engarde/datatable"
	"github.com/magpierre/engarde/internal/logging"
)

// ErrNoProducer is returned by Run on a stage without a producer.
var ErrNoProducer = errors.New("stage has no producer")

// Check validates a frame, returning it unchanged on success.
type Check func(*datatable.Frame) (*datatable.Frame, error)

// Producer produces a frame.
type Producer func(context.Context) (*datatable.Frame, error)

// AnySize matches any number of rows or columns in IsShape.
const AnySize = checks.AnySize

// Stage runs Checks, in order, on the frame returned by Producer.
type Stage struct {
	Name     string
	Producer Producer
	Checks   []Check
	Logger   *slog.Logger
}

// Option configures a Stage.
type Option func(*Stage)

// WithLogger logs each check at debug level, and failures at info.
func WithLogger(l *slog.Logger) Option {
	return func(s *Stage) {
		s.Logger = l
	}
}

// NewStage creates a Stage.
func NewStage(name string, p Producer, cks []Check, opts ...Option) *Stage {
	s := &Stage{Name: name, Producer: p, Checks: cks}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run calls the producer and runs each check on its frame. The frame is
// returned as produced. A failing check stops the run and its error is
// returned as is.
func (s *Stage) Run(ctx context.Context) (*datatable.Frame, error) {
	if s.Producer == nil {
		return nil, fmt.Errorf("stage %q: %w", s.Name, ErrNoProducer)
	}
	logger := s.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With("stage", s.Name)

	f, err := s.Producer(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, logger, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Check runs the stage's checks on f without calling the producer.
func (s *Stage) Check(ctx context.Context, f *datatable.Frame) (*datatable.Frame, error) {
	logger := s.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := s.check(ctx, logger.With("stage", s.Name), f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Stage) check(ctx context.Context, logger *slog.Logger, f *datatable.Frame) error {
	for i, ck := range s.Checks {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		_, err := ck(f)
		elapsed := time.Since(start)
		if err != nil {
			attrs := []any{"step", i + 1, "elapsed", elapsed, "error", err}
			if verr, ok := checks.AsValidationError(err); ok {
				attrs = append(attrs, "check", verr.Check)
			}
			logger.Info("check failed", attrs...)
			return err
		}
		logger.Debug("check passed", "step", i+1, "elapsed", elapsed)
	}
	return nil
}

// Wrap decorates p so that every frame it returns is checked first.
func Wrap(p Producer, cks ...Check) Producer {
	s := &Stage{Producer: p, Checks: cks}
	return s.Run
}

// Chain combines checks into one that runs them in order.
func Chain(cks ...Check) Check {
	return func(f *datatable.Frame) (*datatable.Frame, error) {
		for _, ck := range cks {
			if _, err := ck(f); err != nil {
				return nil, err
			}
		}
		return f, nil
	}
}
