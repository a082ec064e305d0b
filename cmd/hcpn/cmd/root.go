/*
Copyright © 2024 Jonathan Taylor <jonrtaylor12@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package cmd

import (
	"context"
	"github.com/jt05610/hcpn"
	"github.com/jt05610/hcpn/builder"
	"github.com/jt05610/hcpn/env"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"path/filepath"
)

var (
	inputFile   string
	includeDirs []string
	environment = env.Default()
	logger      = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hcpn",
	Short: "Work with hierarchical coloured Petri nets",
	Long: `Work with hierarchical coloured Petri nets described in hcpn YAML files.
Settings can also come from HCPN_* environment variables or a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, err := env.New()
		if err != nil {
			return err
		}
		for key, flag := range map[string]string{
			env.FontKey:     "font",
			env.RankDirKey:  "rankdir",
			env.LogLevelKey: "log-level",
			env.MaxStepsKey: "max-steps",
			env.OutputKey:   "output",
			env.FormatKey:   "format",
		} {
			if f := cmd.Flags().Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return err
				}
			}
		}
		if environment, err = env.Load(v); err != nil {
			return err
		}
		logger, err = environment.Logger()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// loadModel builds the input file, resolving includes next to it and then in the --include directories.
func loadModel(ctx context.Context) (*hcpn.Model, error) {
	logger.Debug("loading model", zap.String("file", inputFile), zap.Strings("include", includeDirs))
	b := builder.NewBuilder(filepath.Dir(inputFile)).WithSearchDirs(includeDirs...)
	return b.Build(ctx, filepath.Base(inputFile))
}

func init() {
	d := env.Default()
	rootCmd.PersistentFlags().StringVarP(&inputFile, "input", "i", "", "input file")
	rootCmd.PersistentFlags().StringSliceVarP(&includeDirs, "include", "I", nil, "directories searched for included files")
	rootCmd.PersistentFlags().String("font", string(d.Font), "font used in figures")
	rootCmd.PersistentFlags().String("rankdir", string(d.RankDir), "figure layout direction (LR, RL, TB, BT)")
	rootCmd.PersistentFlags().String("log-level", d.LogLevel, "log level")
	rootCmd.PersistentFlags().Int("max-steps", d.MaxSteps, "step budget for a single substitution descent")
	_ = rootCmd.MarkPersistentFlagRequired("input")
}
