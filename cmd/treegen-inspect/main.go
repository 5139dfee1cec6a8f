// Copyright 2024 The tree-gen Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Binary treegen-inspect is a companion tool to tree-gen: it resolves a
// .tree source file into a Tree Model and lets you browse the resulting
// node-type hierarchy, either as a one-shot text dump or, interactively,
// in a terminal UI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/QE-Lab/tree-gen/treelang"
	"github.com/QE-Lab/tree-gen/treemodel"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "treegen-inspect INPUT",
		Short: "Browse the Tree Model resolved from a .tree source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := resolveFile(args[0])
			if err != nil {
				return err
			}
			return newProgram(m).run()
		},
	}
	root.AddCommand(newDumpCommand())
	return root
}

func newDumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dump INPUT",
		Short: "Print the resolved node-type hierarchy as plain text and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := resolveFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), dumpModel(m))
			return nil
		},
	}
}

func resolveFile(path string) (*treemodel.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := treelang.NewParser(f)
	if err != nil {
		return nil, err
	}
	file, err := p.ParseFile()
	if err != nil {
		return nil, err
	}

	m, _, err := treemodel.Resolve(file)
	if err != nil {
		return nil, err
	}
	return m, nil
}
