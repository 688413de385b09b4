package graph

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/snappy"
)

// ErrMalformedEdgeList is returned for unparsable edge list input
var ErrMalformedEdgeList = errors.New("malformed edge list")

// CompressedSuffix marks snappy compressed edge list files
const CompressedSuffix = ".sz"

const nodesHeader = "# nodes "

// WriteEdgeList writes g as text: a "# nodes n" header, then one "u v w" line
// per edge with u <= v. Self-loops are written as "u u w".
func WriteEdgeList(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s%d\n", nodesHeader, g.NumberOfNodes())

	g.ForEdges(func(u, v uint64, weight float64) {
		bw.WriteString(strconv.FormatUint(u, 10))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatUint(v, 10))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(weight, 'g', -1, 64))
		bw.WriteByte('\n')
	})
	return bw.Flush()
}

// ReadEdgeList parses the WriteEdgeList format. Blank lines and other comments
// are skipped. A missing weight means 1. Without a nodes header the node count
// is one past the largest id.
func ReadEdgeList(r io.Reader) (*Graph, error) {
	var (
		edges    []Edge
		n        uint64
		declared bool
		line     int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(text, nodesHeader) {
			count, err := strconv.ParseUint(strings.TrimSpace(text[len(nodesHeader):]), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedEdgeList, line, err)
			}
			if count > MaxNodes {
				return nil, fmt.Errorf("%w: line %d: %d nodes exceed the limit of %d", ErrMalformedEdgeList, line, count, MaxNodes)
			}
			n, declared = count, true
			continue
		}
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		e, err := parseEdge(text)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedEdgeList, line, err)
		}
		if e.U >= MaxNodes || e.V >= MaxNodes {
			return nil, fmt.Errorf("%w: line %d: node id beyond the limit of %d nodes", ErrMalformedEdgeList, line, MaxNodes)
		}
		edges = append(edges, e)
		if !declared {
			n = max(n, e.U+1, e.V+1)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return FromEdges(n, edges)
}

func parseEdge(text string) (Edge, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 || len(fields) > 3 {
		return Edge{}, fmt.Errorf("want \"u v [w]\", got %q", text)
	}

	u, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return Edge{}, err
	}
	v, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return Edge{}, err
	}
	w := 1.0
	if len(fields) == 3 {
		if w, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return Edge{}, err
		}
	}
	return Edge{U: u, V: v, Weight: w}, nil
}

// SaveFile writes g as an edge list. Paths ending in CompressedSuffix are
// snappy compressed.
func SaveFile(path string, g *Graph) error {
	var buf bytes.Buffer
	if err := WriteEdgeList(&buf, g); err != nil {
		return err
	}

	data := buf.Bytes()
	if strings.HasSuffix(path, CompressedSuffix) {
		data = snappy.Encode(nil, data)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadFile reads an edge list written by SaveFile
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph: %w", err)
	}

	if strings.HasSuffix(path, CompressedSuffix) {
		if data, err = snappy.Decode(nil, data); err != nil {
			return nil, fmt.Errorf("failed to decompress graph: %w", err)
		}
	}
	return ReadEdgeList(bytes.NewReader(data))
}
