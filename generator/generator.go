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

// Binary tree-gen reads a .tree source file, resolves it into a Tree
// Model, and emits a native Go class hierarchy plus, optionally, a
// parallel Python class hierarchy sharing the same CBOR wire format.
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/golang/glog"

	"github.com/QE-Lab/tree-gen/dyngen"
	"github.com/QE-Lab/tree-gen/gogen"
	"github.com/QE-Lab/tree-gen/treelang"
	"github.com/QE-Lab/tree-gen/treemodel"
)

var packageName = flag.String("package", "", "The name of the Go package to generate. Defaults to the .tree file's declared namespace.")

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 3 && len(args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: tree-gen INPUT HEADER_OUT SOURCE_OUT [DYNAMIC_OUT]")
		os.Exit(1)
	}

	inputPath := args[0]
	headerOut := args[1]
	sourceOut := args[2]
	var dynamicOut string
	if len(args) == 4 {
		dynamicOut = args[3]
	}

	if err := run(inputPath, headerOut, sourceOut, dynamicOut); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", inputPath, err)
		os.Exit(1)
	}
}

// run implements the CLI's single operation: parse, resolve, emit. Errors
// from treelang and treemodel already format as "<line>:<col>: <message>"
// (see [treelang.Error], [treemodel.Error]); run returns them unchanged,
// and main prepends the input path, matching the single-line contract
// callers parse.
func run(inputPath, headerOut, sourceOut, dynamicOut string) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	p, err := treelang.NewParser(f)
	if err != nil {
		return err
	}
	file, err := p.ParseFile()
	if err != nil {
		return err
	}

	model, warnings, err := treemodel.Resolve(file)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		log.Warning(w)
	}

	pkg := *packageName
	if pkg == "" {
		pkg = model.Namespace
	}

	cg := &gogen.CodeGenerator{PackageName: pkg}
	code, err := cg.Generate(model)
	if err != nil {
		return err
	}
	if err := writeFile(headerOut, code.Header); err != nil {
		return err
	}
	if err := writeFile(sourceOut, code.Source); err != nil {
		return err
	}

	if dynamicOut != "" {
		dg := &dyngen.CodeGenerator{ModuleName: pkg}
		pysrc, err := dg.Generate(model)
		if err != nil {
			return err
		}
		if err := writeFile(dynamicOut, pysrc.Source); err != nil {
			return err
		}
	}

	return nil
}

// writeFile writes contents to path, bypassing genutil.OpenFile/SyncFile:
// those call log.Exitf on failure, which would terminate the process
// without the single-line "<input>: <message>" error run's caller relies
// on to produce a precise exit-code-1 diagnostic.
func writeFile(path, contents string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(contents); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
