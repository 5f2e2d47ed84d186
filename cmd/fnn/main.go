// Copyright 2025 the fnn authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package main provides the fnn CLI.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/fnn-ml/fnn/nn"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("fnn %s\n", version)
	case "describe":
		if len(os.Args) != 3 {
			log.Fatal("usage: fnn describe <model.txt>")
		}
		describe(os.Args[2])
	case "build":
		if len(os.Args) != 4 {
			log.Fatal("usage: fnn build <arch.yaml> <model.txt>")
		}
		build(os.Args[2], os.Args[3])
	default:
		usage()
	}
}

func usage() {
	fmt.Println("fnn - sequential networks with tangent-linear and adjoint operators")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version                        Show version")
	fmt.Println("  describe <model.txt>           Print the architecture of a persisted network")
	fmt.Println("  build <arch.yaml> <model.txt>  Build a network from a YAML spec and persist it")
}

// describe loads a persisted network and prints one line per layer.
func describe(path string) {
	net, err := nn.Load(path, 1)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", path, err)
	}

	fmt.Printf("%s: %d -> %d, %d layers, %d parameters\n",
		path, net.InputSize(), net.OutputSize(), net.Len(), net.ParameterCount())
	for i := 0; i < net.Len(); i++ {
		layer := net.Layer(i)
		start, end := net.ParameterRange(i)
		switch l := layer.(type) {
		case *nn.Dense:
			fmt.Printf("  %2d  %-13s %4d -> %-4d %-6s  parameters [%d, %d)\n",
				i, l.Kind(), l.InputSize(), l.OutputSize(), l.Activation().Kind(), start, end)
		case *nn.Normalisation:
			fmt.Printf("  %2d  %-13s %4d -> %-4d alpha=%g beta=%g\n",
				i, l.Kind(), l.InputSize(), l.OutputSize(), l.Alpha(), l.Beta())
		case *nn.Dropout:
			fmt.Printf("  %2d  %-13s %4d -> %-4d rate=%g\n",
				i, l.Kind(), l.InputSize(), l.OutputSize(), l.Rate())
		default:
			fmt.Printf("  %2d  %-13s %4d -> %d\n",
				i, layer.Kind(), layer.InputSize(), layer.OutputSize())
		}
	}
}

// build constructs a network from a YAML architecture spec and writes
// it in the persisted text format.
func build(specPath, outPath string) {
	data, err := os.ReadFile(specPath)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", specPath, err)
	}

	spec, err := nn.ParseSpec(data)
	if err != nil {
		log.Fatalf("Failed to parse %s: %v", specPath, err)
	}

	net, err := spec.Build(1)
	if err != nil {
		log.Fatalf("Failed to build network: %v", err)
	}

	if err := nn.Save(net, outPath); err != nil {
		log.Fatalf("Failed to save %s: %v", outPath, err)
	}
	fmt.Printf("Wrote %s: %d -> %d, %d layers, %d parameters\n",
		outPath, net.InputSize(), net.OutputSize(), net.Len(), net.ParameterCount())
}
