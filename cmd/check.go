/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notargets/gotvd/fluxcalc"
)

// CheckCmd represents the check command
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare the assembled jacobian with finite differences",
	Long: `
Checks the value path, the coefficient path and both together against central
differences of the residual,

gotvd check -I input.yaml --step 1.e-6 --tolerance 1.e-5`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		p, err := setupProblem(cmd)
		if err != nil {
			return
		}
		step, _ := cmd.Flags().GetFloat64("step")
		tol, _ := cmd.Flags().GetFloat64("tolerance")
		sol := p.InitialSolution()
		var failed []fluxcalc.Paths
		for _, paths := range []fluxcalc.Paths{fluxcalc.ValuePath, fluxcalc.CoefficientPath, fluxcalc.AllPaths} {
			jc, err := p.CheckJacobian(context.Background(), sol, paths, step)
			if err != nil {
				return err
			}
			fmt.Printf("[%s]\t%12.6e\t= Max relative error at (%d,%d)\n", paths, jc.MaxError, jc.Row, jc.Col)
			if jc.MaxError > tol {
				failed = append(failed, paths)
			}
		}
		if len(failed) != 0 {
			return fmt.Errorf("jacobian check failed for paths %v, tolerance %g", failed, tol)
		}
		return
	},
}

func init() {
	rootCmd.AddCommand(CheckCmd)
	addProblemFlags(CheckCmd)
	CheckCmd.Flags().Float64("step", 1.e-6, "finite difference step")
	CheckCmd.Flags().Float64("tolerance", 1.e-5, "largest acceptable relative error")
}
