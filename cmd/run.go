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
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gotvd/InputParameters"
	"github.com/notargets/gotvd/assembly"
	"github.com/notargets/gotvd/simulation"
	"github.com/notargets/gotvd/utils"
)

const exampleFile = `
########################################
Title: "Two phase column"
Variables: [pressure, saturation]
Equation: saturation
Mesh:
  Dimension: 2   # Or give an SU2 mesh with File:
  NX: 8
  NY: 4
  XMax: 2
  YMax: 1
  Triangles: true
Ranks: 2
Threads: 2
Limiter: vanleer # none, minmod, superbee
Law:
  Type: unsaturated # saturated, multicomponent, heat
  Density: 1000
  Viscosity: 0.001
Material:
  Permeability: 1.e-12
  Gravity: [0, -9.8, 0]
Initial:
  pressure:
    Type: linear
    Value: 1.e5
    Gradient: [0, -9800, 0]
  saturation:
    Type: constant
    Value: 0.6
########################################
`

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Assemble the advective residual and jacobian at the initial solution",
	Long: `
Builds the mesh and partition from the input file, runs every rank and reports
the assembled residual and jacobian,

gotvd run -I input.yaml --ranks 4 --threads 2`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			p   *simulation.Problem
			sys *assembly.System
		)
		if p, err = setupProblem(cmd); err != nil {
			return
		}
		sol := p.InitialSolution()
		start := time.Now()
		err = countInstructions(func() (err error) {
			sys, err = p.Assemble(context.Background(), sol)
			return
		})
		if err != nil {
			return
		}
		fmt.Printf("Assembly time: %v\n", time.Since(start))
		fmt.Printf("Memory usage: %s\n", utils.GetMemUsage())
		fmt.Printf("%d\t\t\t= Degrees of freedom\n", p.NumDofs())
		fmt.Printf("%d\t\t\t= Jacobian non zeros\n", sys.NNZ())
		fmt.Printf("%12.6e\t\t= Residual norm\n", sys.ResidualNorm())
		return
	},
}

func init() {
	rootCmd.AddCommand(RunCmd)
	addProblemFlags(RunCmd)
}

func addProblemFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("inputConditionsFile", "I", "", "input parameters file in YAML format")
	cmd.Flags().IntP("ranks", "r", 0, "number of ranks, overrides the input file")
	cmd.Flags().IntP("threads", "t", 0, "worker threads per rank, overrides the input file")
}

func readInput(fileName string) (ip *InputParameters.InputParameters, err error) {
	var data []byte
	if len(fileName) == 0 {
		fmt.Printf("Example File:%s\n", exampleFile)
		return nil, fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile)")
	}
	if data, err = os.ReadFile(fileName); err != nil {
		return
	}
	ip = &InputParameters.InputParameters{}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	return
}

func setupProblem(cmd *cobra.Command) (p *simulation.Problem, err error) {
	var (
		ip       *InputParameters.InputParameters
		fileName string
	)
	if fileName, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
		return
	}
	if ip, err = readInput(fileName); err != nil {
		return
	}
	if err = viper.BindPFlags(cmd.Flags()); err != nil {
		return
	}
	if r := viper.GetInt("ranks"); r > 0 {
		ip.Ranks = r
	}
	if t := viper.GetInt("threads"); t > 0 {
		ip.Threads = t
	}
	if err = ip.Validate(); err != nil {
		return
	}
	ip.Print()
	return simulation.NewProblem(ip, newLogger())
}
