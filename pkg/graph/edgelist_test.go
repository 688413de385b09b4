package graph

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sameGraph(t *testing.T, a, b *Graph) {
	t.Helper()

	if a.NumberOfNodes() != b.NumberOfNodes() || a.NumberOfEdges() != b.NumberOfEdges() {
		t.Fatalf("graphs differ: %d/%d nodes, %d/%d edges",
			a.NumberOfNodes(), b.NumberOfNodes(), a.NumberOfEdges(), b.NumberOfEdges())
	}
	a.ForEdges(func(u, v uint64, w float64) {
		if u == v {
			if got := b.SelfLoopWeight(u); got != w {
				t.Errorf("SelfLoopWeight(%d) = %v, want %v", u, got, w)
			}
			return
		}
		if got := b.EdgeWeight(u, v); got != w {
			t.Errorf("EdgeWeight(%d,%d) = %v, want %v", u, v, got, w)
		}
	})
}

func TestEdgeListRoundTrip(t *testing.T) {
	b := NewBuilder(5)
	_ = b.AddEdge(0, 1, 1)
	_ = b.AddEdge(1, 2, 0.1)
	_ = b.AddEdge(3, 3, 2.5)
	g := b.Build()

	var buf bytes.Buffer
	if err := WriteEdgeList(&buf, g); err != nil {
		t.Fatalf("WriteEdgeList failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "# nodes 5\n") {
		t.Errorf("missing nodes header in %q", buf.String())
	}

	read, err := ReadEdgeList(&buf)
	if err != nil {
		t.Fatalf("ReadEdgeList failed: %v", err)
	}
	// Node 4 has no edges and survives only through the header.
	sameGraph(t, g, read)
}

func TestReadEdgeListWithoutHeader(t *testing.T) {
	input := `
# a comment
0 1
1 2 3.5

4 2 0.5
`
	g, err := ReadEdgeList(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadEdgeList failed: %v", err)
	}
	if g.NumberOfNodes() != 5 {
		t.Errorf("NumberOfNodes() = %d, want 5", g.NumberOfNodes())
	}
	if w := g.EdgeWeight(0, 1); w != 1 {
		t.Errorf("EdgeWeight(0,1) = %v, want default weight 1", w)
	}
	if w := g.EdgeWeight(2, 1); w != 3.5 {
		t.Errorf("EdgeWeight(2,1) = %v, want 3.5", w)
	}
}

func TestReadEdgeListErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		cause error
	}{
		{"single field", "0\n", ErrMalformedEdgeList},
		{"too many fields", "0 1 2 3\n", ErrMalformedEdgeList},
		{"bad node", "a 1\n", ErrMalformedEdgeList},
		{"bad weight", "0 1 heavy\n", ErrMalformedEdgeList},
		{"bad header", "# nodes many\n", ErrMalformedEdgeList},
		{"node beyond header", "# nodes 2\n0 2\n", ErrNodeOutOfRange},
		{"negative weight", "0 1 -1\n", ErrInvalidWeight},
		{"huge header", "# nodes 1000000000000\n0 1\n", ErrMalformedEdgeList},
		{"huge node id", "0 999999999999\n", ErrMalformedEdgeList},
		{"largest node id", "0 18446744073709551615\n", ErrMalformedEdgeList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadEdgeList(strings.NewReader(tt.input))
			if !errors.Is(err, tt.cause) {
				t.Errorf("ReadEdgeList() error = %v, want %v", err, tt.cause)
			}
		})
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	g, _, err := PlantedPartition(3, 8, 0.6, 0.05, 11)
	if err != nil {
		t.Fatalf("PlantedPartition failed: %v", err)
	}

	dir := t.TempDir()
	for _, name := range []string{"graph.txt", "graph.txt" + CompressedSuffix} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := SaveFile(path, g); err != nil {
				t.Fatalf("SaveFile failed: %v", err)
			}
			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile failed: %v", err)
			}
			sameGraph(t, g, loaded)
		})
	}

	plain, _ := os.ReadFile(filepath.Join(dir, "graph.txt"))
	compressed, _ := os.ReadFile(filepath.Join(dir, "graph.txt"+CompressedSuffix))
	if bytes.Equal(plain, compressed) {
		t.Error("compressed file should differ from the plain edge list")
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("LoadFile should fail for a missing file")
	}

	corrupt := filepath.Join(dir, "corrupt"+CompressedSuffix)
	if err := os.WriteFile(corrupt, []byte("not snappy"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := LoadFile(corrupt); err == nil || !strings.Contains(err.Error(), "decompress") {
		t.Errorf("LoadFile() error = %v, want a decompression error", err)
	}
}
