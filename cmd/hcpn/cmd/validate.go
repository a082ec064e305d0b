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
	"github.com/spf13/cobra"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a hierarchy for structural errors",
	Long:  `Check a hierarchy for structural errors and list every violation found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadModel(cmd.Context())
		if err != nil {
			return err
		}
		violations := hcpn.Validate(m)
		out := cmd.OutOrStdout()
		for _, v := range violations {
			_, _ = fmt.Fprintln(out, v)
		}
		if len(violations) > 0 {
			return fmt.Errorf("%s: %d violations", inputFile, len(violations))
		}
		_, _ = fmt.Fprintf(out, "%s: ok\n", inputFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
