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
	"github.com/jt05610/hcpn/analysis"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Describe a hierarchy",
	Long: `Describe a hierarchy: its modules, substitutions and fusion sets, the level of each module, and the incidence
matrix and reachable markings of each module. Reachability treats each module on its own, firing substitution
transitions as ordinary ones.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadModel(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, m)
		levels, err := analysis.Levels(m)
		if err != nil {
			return err
		}
		order, err := analysis.Order(m)
		if err != nil {
			return err
		}
		roots, err := analysis.Roots(m)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Roots: %v\n", roots)
		_, _ = fmt.Fprintln(out, "Levels:")
		for _, name := range order {
			_, _ = fmt.Fprintf(out, "  %d %s\n", levels[name], name)
		}
		for _, name := range m.Modules() {
			mod, _ := m.Lookup(name)
			inc := (&analysis.Net{Module: mod}).Incidence()
			if inc == nil {
				continue
			}
			_, _ = fmt.Fprintf(out, "Incidence %s %v x %v:\n%v\n", name, mod.Transitions(), mod.Places(),
				mat.Formatted(inc, mat.Prefix(""), mat.Squeeze()))
		}
		for _, name := range m.Modules() {
			mod, _ := m.Lookup(name)
			eng, ok := mod.(hcpn.Engine)
			if !ok {
				continue
			}
			ss, err := analysis.Reachability(cmd.Context(), eng, maxStates)
			if err != nil {
				return fmt.Errorf("reachability of %s: %w", name, err)
			}
			_, _ = fmt.Fprintf(out, "Reachability %s: %d markings, %d dead", name, ss.Len(), len(ss.Dead()))
			if !ss.Complete {
				_, _ = fmt.Fprintf(out, ", stopped at %d", maxStates)
			}
			if len(ss.Growing) > 0 {
				_, _ = fmt.Fprint(out, ", possibly unbounded")
			}
			_, _ = fmt.Fprintln(out)
		}
		return nil
	},
}

var maxStates int

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().IntVar(&maxStates, "states", 1000, "maximum number of markings explored per module, 0 for no limit")
}
