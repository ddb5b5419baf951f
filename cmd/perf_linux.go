//go:build linux

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
	"fmt"

	"github.com/hodgesds/perf-utils"
	"github.com/spf13/viper"
)

// countInstructions runs f, under a hardware instruction counter when asked to
func countInstructions(f func() error) (err error) {
	if !viper.GetBool("perfCounters") {
		return f()
	}
	var fErr error
	pv, err := perf.CPUInstructions(func() error {
		fErr = f()
		return fErr
	})
	if fErr != nil {
		return fErr
	}
	if err != nil {
		return fmt.Errorf("perf counters unavailable: %w", err)
	}
	fmt.Printf("%d\t\t= CPU instructions\n", pv.Value)
	return
}
