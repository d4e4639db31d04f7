package fort14

import (
	"bufio"
	"fmt"
	"io"

	"github.com/couchcryptid/mannings-editor/internal/domain"
)

// Element is a triangle given by three 1-based node ids.
type Element [3]int

// Write emits mesh and elements as a fort.14 stream with empty open and
// land boundary tables.
func Write(w io.Writer, mesh *domain.Mesh, elements []Element) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, mesh.Title)
	fmt.Fprintf(bw, "%d %d\n", len(elements), mesh.Len())
	for id := 1; id <= mesh.Len(); id++ {
		n, _ := mesh.Node(id)
		fmt.Fprintf(bw, "%d %.8f %.8f %.6f\n", id, n.X, n.Y, n.Depth)
	}
	for i, e := range elements {
		fmt.Fprintf(bw, "%d 3 %d %d %d\n", i+1, e[0], e[1], e[2])
	}
	fmt.Fprintln(bw, "0 = Number of open boundaries")
	fmt.Fprintln(bw, "0 = Total number of open boundary nodes")
	fmt.Fprintln(bw, "0 = Number of land boundaries")
	fmt.Fprintln(bw, "0 = Total number of land boundary nodes")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write mesh: %w", err)
	}
	return nil
}
