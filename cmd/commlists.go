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
	"sort"

	"github.com/spf13/cobra"
)

// CommListsCmd represents the commlists command
var CommListsCmd = &cobra.Command{
	Use:   "commlists",
	Short: "Print what every rank exchanges with its neighbours",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		p, err := setupProblem(cmd)
		if err != nil {
			return
		}
		lists, err := p.CommLists(context.Background())
		if err != nil {
			return
		}
		for r := 0; r < len(lists); r++ {
			peers := make([]int, 0, len(lists[r]))
			for q := range lists[r] {
				peers = append(peers, q)
			}
			sort.Ints(peers)
			for _, q := range peers {
				send, recv := lists[r][q][0], lists[r][q][1]
				fmt.Printf("rank %d <-> rank %d: send %d nodes %d pairs %d triples [%016x], "+
					"receive %d nodes %d pairs %d triples [%016x]\n", r, q,
					send.Nodes, send.Pairs, send.Triples, send.Checksum,
					recv.Nodes, recv.Pairs, recv.Triples, recv.Checksum)
			}
		}
		return
	},
}

func init() {
	rootCmd.AddCommand(CommListsCmd)
	addProblemFlags(CommListsCmd)
}
