// Command genmock writes a synthetic fort.14 mesh and a matching fort.13
// attribute file for exercising the editor without a real ADCIRC grid.
//
// The mesh is a structured triangulation over the default Galveston Bay box
// plus a margin, so some nodes fall outside the box. Depth slopes from dry
// land in the north to open water in the south, so some nodes sit above the
// NAVD threshold. The attribute file carries a Manning's n block with a
// random value per node and a second attribute block that the editor must
// pass through untouched.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -nx 40 -ny 40 -seed 7 \
//	  -mesh-out testdata/fort.14 \
//	  -attr-out testdata/fort.13
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/couchcryptid/mannings-editor/internal/adapter/fort14"
	"github.com/couchcryptid/mannings-editor/internal/domain"
)

const (
	margin = 0.25

	// Depth at the southern and northern edges of the grid.
	southDepth = 8.0
	northDepth = -2.0

	secondAttribute = "primitive_weighting_in_continuity_equation"
	secondDefault   = 0.03
)

type params struct {
	nx, ny int
	seed   uint64
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("genmock", flag.ContinueOnError)
	var p params
	var meshOut, attrOut string
	fs.IntVar(&p.nx, "nx", 20, "grid columns")
	fs.IntVar(&p.ny, "ny", 20, "grid rows")
	fs.Uint64Var(&p.seed, "seed", 1, "random seed for attribute values")
	fs.StringVar(&meshOut, "mesh-out", "", "output path for the fort.14 mesh")
	fs.StringVar(&attrOut, "attr-out", "", "output path for the fort.13 attributes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if meshOut == "" || attrOut == "" {
		fs.Usage()
		return errors.New("missing required flags: -mesh-out, -attr-out")
	}
	if p.nx < 2 || p.ny < 2 {
		return fmt.Errorf("grid must be at least 2x2, got %dx%d", p.nx, p.ny)
	}

	mesh, elements := buildMesh(p)

	if err := writeFile(meshOut, func(w io.Writer) error {
		return fort14.Write(w, mesh, elements)
	}); err != nil {
		return fmt.Errorf("writing mesh: %w", err)
	}
	log.Printf("wrote mesh: %s (%d nodes, %d elements)", meshOut, mesh.Len(), len(elements))

	if err := writeFile(attrOut, func(w io.Writer) error {
		return writeAttributes(w, mesh, p.seed)
	}); err != nil {
		return fmt.Errorf("writing attributes: %w", err)
	}
	log.Printf("wrote attributes: %s", attrOut)

	printStats(mesh)
	return nil
}

// buildMesh lays out nx*ny nodes row by row from the south-west corner and
// splits every grid cell into two triangles.
func buildMesh(p params) (*domain.Mesh, []fort14.Element) {
	box := domain.DefaultBox
	xmin, xmax := box.XMin-margin, box.XMax+margin
	ymin, ymax := box.YMin-margin, box.YMax+margin
	dx := (xmax - xmin) / float64(p.nx-1)
	dy := (ymax - ymin) / float64(p.ny-1)

	nodes := make([]domain.Node, 0, p.nx*p.ny)
	for j := range p.ny {
		frac := float64(j) / float64(p.ny-1)
		depth := southDepth + frac*(northDepth-southDepth)
		for i := range p.nx {
			nodes = append(nodes, domain.Node{
				X:     xmin + float64(i)*dx,
				Y:     ymin + float64(j)*dy,
				Depth: depth,
			})
		}
	}

	elements := make([]fort14.Element, 0, 2*(p.nx-1)*(p.ny-1))
	id := func(i, j int) int { return j*p.nx + i + 1 }
	for j := range p.ny - 1 {
		for i := range p.nx - 1 {
			elements = append(elements,
				fort14.Element{id(i, j), id(i+1, j), id(i+1, j+1)},
				fort14.Element{id(i, j), id(i+1, j+1), id(i, j+1)},
			)
		}
	}

	title := fmt.Sprintf("genmock %dx%d structured grid", p.nx, p.ny)
	return domain.NewMesh(title, nodes), elements
}

// writeAttributes emits a two-attribute fort.13. Every node gets a random
// Manning's n; every other node gets a non-default value of the second
// attribute.
func writeAttributes(w io.Writer, mesh *domain.Mesh, seed uint64) error {
	rng := rand.New(rand.NewPCG(seed, seed))
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s attributes\n", mesh.Title)
	fmt.Fprintf(bw, "%d\n", mesh.Len())
	fmt.Fprintln(bw, 2)
	fmt.Fprintln(bw, domain.ManningsAttribute)
	fmt.Fprintln(bw, "unitless")
	fmt.Fprintln(bw, 1)
	fmt.Fprintf(bw, "%.6f\n", 0.02)
	fmt.Fprintln(bw, secondAttribute)
	fmt.Fprintln(bw, "unitless")
	fmt.Fprintln(bw, 1)
	fmt.Fprintf(bw, "%.6f\n", secondDefault)

	fmt.Fprintln(bw, domain.ManningsAttribute)
	fmt.Fprintln(bw, mesh.Len())
	for id := 1; id <= mesh.Len(); id++ {
		v := domain.RandomMin + rng.Float64()*(domain.RandomMax-domain.RandomMin)
		fmt.Fprintf(bw, "%d %.6f\n", id, v)
	}

	fmt.Fprintln(bw, secondAttribute)
	fmt.Fprintln(bw, (mesh.Len()+1)/2)
	for id := 1; id <= mesh.Len(); id += 2 {
		fmt.Fprintf(bw, "%d %.6f\n", id, 2*secondDefault)
	}

	return bw.Flush()
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printStats(mesh *domain.Mesh) {
	inBox := domain.BoxPredicate(domain.DefaultBox)
	aboveDatum := domain.And(inBox, domain.DatumPredicate(domain.DefaultNAVD))

	var boxCount, datumCount int
	for id := 1; id <= mesh.Len(); id++ {
		if inBox(id, mesh) {
			boxCount++
		}
		if aboveDatum(id, mesh) {
			datumCount++
		}
	}

	fmt.Println()
	fmt.Println("=== Selection Summary ===")
	fmt.Printf("  nodes:               %d\n", mesh.Len())
	fmt.Printf("  criterion 1 (box):   %d\n", boxCount)
	fmt.Printf("  criterion 2 (datum): %d\n", datumCount)
}
