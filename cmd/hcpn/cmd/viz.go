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
	"github.com/jt05610/hcpn/graphviz"
	"github.com/jt05610/hcpn/viz"
	"github.com/spf13/cobra"
	"os"
	"path/filepath"
	"strings"
)

var noFusion bool

// vizCmd represents the viz command
var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Create a graphviz figure from a hierarchy",
	Long:  `Create a graphviz figure from a hierarchy with one cluster per module and its current marking.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadModel(cmd.Context())
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
		var opts []viz.Option
		opts = append(opts, viz.WithName(name))
		if noFusion {
			opts = append(opts, viz.WithoutFusion())
		}
		g, err := viz.Render(m, m.Markings(), opts...)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(environment.Output, os.ModePerm); err != nil {
			return err
		}
		outPath := filepath.Join(environment.Output, name+"."+string(environment.Format))
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "writing figure for %s to %s...", inputFile, outPath)
		w := graphviz.New(&graphviz.Config{
			Name:    name,
			Font:    environment.Font,
			RankDir: environment.RankDir,
			Format:  environment.Format,
		})
		if err := w.Save(outPath, g); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "done")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vizCmd)
	vizCmd.Flags().StringP("output", "o", ".", "output directory")
	vizCmd.Flags().StringP("format", "f", "svg", "output format (dot, svg, png, jpg)")
	vizCmd.Flags().BoolVar(&noFusion, "no-fusion", false, "leave fusion sets out of the figure")
}
