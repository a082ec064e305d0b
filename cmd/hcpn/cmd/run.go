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
	"fmt"
	"github.com/jt05610/hcpn"
	"github.com/jt05610/hcpn/hcpnfile"
	"github.com/spf13/cobra"
)

var (
	module   string
	steps    int
	saveFile string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fire transitions of a module until it is quiescent",
	Long: `Fire transitions of a module, in declaration order, until none is enabled or the step limit is reached.
Substitution transitions run their child modules.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		m, err := loadModel(ctx)
		if err != nil {
			return err
		}
		if module == "" {
			if len(m.Modules()) == 0 {
				return fmt.Errorf("%s: no modules", inputFile)
			}
			module = m.Modules()[0]
		}
		x := hcpn.NewExecutor(m, hcpn.WithLogger(logger), hcpn.WithMaxSteps(environment.MaxSteps))
		fired, err := x.Run(ctx, module, steps)
		out := cmd.OutOrStdout()
		for i, t := range fired {
			_, _ = fmt.Fprintf(out, "%d. %s.%s\n", i+1, module, t)
		}
		if err != nil {
			return err
		}
		for _, name := range m.Modules() {
			mk, _ := m.Marking(name)
			_, _ = fmt.Fprintf(out, "%s:\n%s\n", name, mk)
		}
		if saveFile == "" {
			return nil
		}
		return hcpnfile.Create(ctx, saveFile, m)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&module, "module", "m", "", "module to run, the first registered module by default")
	runCmd.Flags().IntVarP(&steps, "steps", "n", 100, "maximum number of firings")
	runCmd.Flags().StringVarP(&saveFile, "save", "s", "", "write the final state to this file")
}
