// Copyright ©2026 The nlp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command nlpsolve runs the solver driver against a JSON problem file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gosolve/nlp/model"
	"github.com/gosolve/nlp/solver"
)

var (
	preset     string
	configPath string
	optionArgs []string
	verbose    bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nlpsolve <problem-file>",
		Short: "Solve a nonlinearly constrained problem with a pluggable mechanism/relaxation/subproblem stack",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	cmd.Flags().StringVar(&preset, "preset", "", "named option preset (ipopt|filtersqp|byrd)")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML file of option overrides, applied before --option")
	cmd.Flags().StringArrayVar(&optionArgs, "option", nil, "key=value option override, repeatable, highest priority")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the per-iteration statistics line")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	opts, err := solver.NewOptions(preset)
	if err != nil {
		return err
	}
	if configPath != "" {
		if err := opts.LoadConfigFile(configPath); err != nil {
			return err
		}
	}
	for _, kv := range optionArgs {
		key, value, ok := splitOption(kv)
		if !ok {
			return &solver.OptionError{Msg: fmt.Sprintf("malformed --option %q, want key=value", kv)}
		}
		opts.Set(key, value)
	}

	loader := model.NewJSONLoader()
	model.RegisterBuiltinEvaluators(loader)
	problem, err := loader.Load(args[0])
	if err != nil {
		return err
	}

	level := solver.LogSilent
	if verbose {
		level = solver.LogSummary
	}
	logger := solver.NewLogger(cmd.OutOrStdout(), level)

	driver, err := solver.Build(problem, opts, logger)
	if err != nil {
		return err
	}

	x0 := make([]float64, problem.NumVariables())
	result, err := driver.Solve(problem, x0)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "status: %s\n", result.Status)
	fmt.Fprintf(cmd.OutOrStdout(), "objective: %.10g\n", result.Iterate.Progress.Objective)
	fmt.Fprintf(cmd.OutOrStdout(), "x: %v\n", result.Iterate.X)
	fmt.Fprintf(cmd.OutOrStdout(), "iterations: %d\n", result.Iterations)
	if result.Fault != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "fault: %s\n", result.Fault)
	}

	if !result.Status.Successful() {
		os.Exit(1)
	}
	return nil
}

// splitOption splits "key=value" on the first '=', reporting ok=false if
// there is none.
func splitOption(kv string) (key, value string, ok bool) {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:], true
		}
	}
	return "", "", false
}
