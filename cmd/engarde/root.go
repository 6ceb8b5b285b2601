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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/magpierre/engarde/checks"
	"github.com/magpierre/engarde/internal/logging"
)

const (
	exitSuccess    = 0
	exitValidation = 1
	exitError      = 2
)

const (
	configFileName = "engarde"
	configFileType = "yaml"
	envPrefix      = "ENGARDE"

	cfgKeyLogLevel = "log_level"
	cfgKeyJSON     = "json"
	cfgKeyTimeout  = "timeout"

	// defaultTimeout is in seconds.
	defaultTimeout = 60
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type app struct {
	v          *viper.Viper
	configFile string
	stdout     io.Writer
	stderr     io.Writer

	logger *slog.Logger
	runID  string
}

func newApp(stdout, stderr io.Writer) *app {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault(cfgKeyLogLevel, "info")
	v.SetDefault(cfgKeyTimeout, defaultTimeout)
	return &app{v: v, stdout: stdout, stderr: stderr, logger: logging.NewNop()}
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintf(stderr, "engarde: %v\n", err)
	return exitCode(err)
}

func exitCode(err error) int {
	if checks.IsValidationError(err) {
		return exitValidation
	}
	return exitError
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "engarde",
		Short: "Validate tabular data against check suites",
		Long: `engarde loads a table from CSV, Parquet, JSON or SQLite and runs a
suite of checks against it: missing values, shape, uniqueness, ranges,
dtypes, relations and Go-expression predicates.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default: ./engarde.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.Bool("json", false, "JSON output and logs")
	pf.Int("timeout", defaultTimeout, "timeout in seconds")
	for key, flag := range map[string]string{
		cfgKeyLogLevel: "log-level",
		cfgKeyJSON:     "json",
		cfgKeyTimeout:  "timeout",
	} {
		// Lookup cannot fail for flags defined above.
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	cmd.AddCommand(newCheckCmd(a))
	cmd.AddCommand(newInferCmd(a))
	return cmd
}

// init loads the configuration and builds the logger for this run.
func (a *app) init() error {
	if err := a.loadConfig(); err != nil {
		return err
	}

	logger, err := logging.New(a.stderr, logging.Options{
		Level: a.v.GetString(cfgKeyLogLevel),
		JSON:  a.v.GetBool(cfgKeyJSON),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", checks.ErrConfiguration, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("create run id: %w", err)
	}
	a.runID = id.String()
	a.logger = logger.With("run_id", a.runID)
	if a.v.ConfigFileUsed() != "" {
		a.logger.Debug("loaded config", "path", a.v.ConfigFileUsed())
	}
	return nil
}

// loadConfig reads engarde.yaml from the working directory, or the file
// named by --config. A missing default file is not an error.
func (a *app) loadConfig() error {
	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
	} else {
		a.v.SetConfigName(configFileName)
		a.v.SetConfigType(configFileType)
		a.v.AddConfigPath(".")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && a.configFile == "" {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func (a *app) json() bool {
	return a.v.GetBool(cfgKeyJSON)
}

// timeoutContext bounds parent by timeoutSeconds, 60 seconds when <= 0.
func timeoutContext(parent context.Context, timeoutSeconds int) (context.Context, context.CancelFunc) {
	if timeoutSeconds <= 0 {
		timeoutSeconds = defaultTimeout
	}
	return context.WithTimeout(parent, time.Duration(timeoutSeconds)*time.Second)
}
