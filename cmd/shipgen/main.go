// Command shipgen writes one generated ship to a YAML, JSON or OBJ file.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lawnchairsociety/shipyard/internal/export"
	"github.com/lawnchairsociety/shipyard/internal/logger"
	"github.com/lawnchairsociety/shipyard/internal/ship"
)

func main() {
	seed := flag.String("seed", "", "Ship seed (default: random)")
	mass := flag.Float64("mass", 0, "Force total mass, clamped to [10, 1000] (default: drawn from the seed)")
	format := flag.String("format", "", "Output format: yaml, json or obj (default: from -out extension, else yaml)")
	output := flag.String("out", "", "Output file (default: stdout)")
	verbose := flag.Bool("v", false, "Log generation stages to stderr")
	flag.Parse()

	if *verbose {
		logger.Initialize(logger.Config{Level: "DEBUG"})
	}

	f, err := resolveFormat(*format, *output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var opts []ship.Option
	if *mass > 0 {
		opts = append(opts, ship.WithMass(*mass))
	}
	s := ship.Generate(*seed, opts...)

	if err := write(*output, f, s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *output != "" {
		fmt.Printf("Ship %s written to %s\n", s.Seed, *output)
		fmt.Printf("  Mass: %.1f  Length: %.2f  Meshes: %d\n", s.Budget.Total, s.TotalLength, s.Root.MeshCount())
		fmt.Printf("  Thrusters: %d (%s)  Pods: %s  Deck: %s\n",
			s.Thrusters.Count, s.Thrusters.Layout, s.Cargo.Pod.Shape, s.Deck.Shape)
	}
}

func resolveFormat(format, output string) (export.Format, error) {
	if format != "" {
		return export.ParseFormat(format)
	}
	if ext := filepath.Ext(output); ext != "" {
		return export.ParseFormat(ext)
	}
	return export.FormatYAML, nil
}

func write(path string, f export.Format, s *ship.Ship) error {
	var w io.Writer = os.Stdout
	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		}
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer file.Close()
		w = file
	}

	bw := bufio.NewWriter(w)
	if err := export.Write(bw, f, s); err != nil {
		return err
	}
	return bw.Flush()
}
