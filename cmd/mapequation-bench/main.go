// Command mapequation-bench runs the map equation optimizer on a generated
// planted partition graph, or on an edge list file, with each parallelization strategy and prints a
// comparison against a label propagation baseline.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/prometheus/common/expfmt"

	"github.com/dd0wney/cluso-mapequation/pkg/algorithms"
	"github.com/dd0wney/cluso-mapequation/pkg/algorithms/mapequation"
	"github.com/dd0wney/cluso-mapequation/pkg/graph"
	"github.com/dd0wney/cluso-mapequation/pkg/logging"
	"github.com/dd0wney/cluso-mapequation/pkg/metrics"
	"github.com/dd0wney/cluso-mapequation/pkg/partition"
	"github.com/dd0wney/cluso-mapequation/pkg/validation"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)
)

type benchResult struct {
	name       string
	clusters   int
	levels     int
	codelength float64
	modularity float64
	planted    bool
	known      bool
	duration   time.Duration
	err        error
}

// validateFlags checks the worker count and, when the graph is generated, the
// generator flags before any work starts
func validateFlags(input string, groups, groupSize, workers int, pIn, pOut float64) error {
	return validation.NewConfigValidator("flags").
		NonNegative("workers", workers).
		When(input == "", func(cv *validation.ConfigValidator) {
			cv.MinInt("groups", groups, 1).
				MinInt("group-size", groupSize, 1).
				Probability("p-in", pIn).
				Probability("p-out", pOut)
		}).
		Validate()
}

func main() {
	configPath := flag.String("config", "", "YAML optimizer configuration")
	input := flag.String("input", "", "Load the graph from an edge list instead of generating it")
	output := flag.String("output", "", "Save the generated graph as an edge list (.sz to compress)")
	groups := flag.Int("groups", 8, "Number of planted groups")
	groupSize := flag.Int("group-size", 50, "Nodes per planted group")
	pIn := flag.Float64("p-in", 0.3, "Edge probability inside a group")
	pOut := flag.Float64("p-out", 0.01, "Edge probability across groups")
	seed := flag.Int64("seed", 1, "Random seed of the generator")
	strategies := flag.String("strategies", strings.Join(mapequation.StrategyNames, ","), "Comma separated strategies to run")
	hierarchical := flag.Bool("hierarchical", false, "Enable hierarchical refinement")
	workers := flag.Int("workers", 0, "Workers of the parallel strategies (0 = GOMAXPROCS)")
	dumpMetrics := flag.Bool("metrics", false, "Print collected Prometheus metrics")
	flag.Parse()

	if err := validateFlags(*input, *groups, *groupSize, *workers, *pIn, *pOut); err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}

	cfg := mapequation.DefaultConfig()
	if *configPath != "" {
		loaded, err := mapequation.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	if setFlags["hierarchical"] || *configPath == "" {
		cfg.Hierarchical = *hierarchical
	}
	if setFlags["workers"] || *configPath == "" {
		cfg.Workers = *workers
	}

	logger := logging.NewLogger(os.Stderr, cfg.LogLevel)
	registry := metrics.DefaultRegistry()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println(titleStyle.Render("Map Equation Benchmark"))

	start := time.Now()
	g, planted, err := loadGraph(*input, *groups, *groupSize, *pIn, *pOut, *seed)
	if err != nil {
		log.Fatalf("Failed to prepare graph: %v", err)
	}
	fmt.Printf("Prepared %d nodes and %d edges in %v\n", g.NumberOfNodes(), g.NumberOfEdges(), time.Since(start))

	if *output != "" {
		if err := graph.SaveFile(*output, g); err != nil {
			log.Fatalf("Failed to save graph: %v", err)
		}
		fmt.Printf("Saved graph to %s\n", *output)
	}

	if planted != nil {
		plantedPart := partition.FromVector(planted)
		fmt.Printf("Planted partition: codelength %.4f bits, modularity %.4f\n",
			mapequation.MapEquation(g, plantedPart), algorithms.Modularity(g, plantedPart))
	}

	var results []benchResult
	for _, token := range strings.Split(*strategies, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		run := cfg
		run.Strategy = token
		results = append(results, runMapEquation(ctx, g, planted, run, logger, registry))
	}
	results = append(results, runLabelPropagation(ctx, g, planted))

	fmt.Println(renderTable(results))

	if *dumpMetrics {
		registry.UpdateSystemMetrics()
		if err := writeMetrics(os.Stdout, registry); err != nil {
			log.Fatalf("Failed to write metrics: %v", err)
		}
	}

	for _, r := range results {
		if r.err != nil {
			os.Exit(1)
		}
	}
}

// loadGraph reads path when given. Otherwise it generates a planted partition
// graph and also returns the planted groups.
func loadGraph(path string, groups, size int, pIn, pOut float64, seed int64) (*graph.Graph, []uint64, error) {
	if path != "" {
		g, err := graph.LoadFile(path)
		return g, nil, err
	}
	fmt.Printf("Groups: %d x %d nodes, p-in %.3f, p-out %.3f, seed %d\n", groups, size, pIn, pOut, seed)
	return graph.PlantedPartition(groups, size, pIn, pOut, seed)
}

func runMapEquation(ctx context.Context, g *graph.Graph, planted []uint64, cfg mapequation.Config, logger logging.Logger, registry *metrics.Registry) benchResult {
	result := benchResult{name: cfg.Strategy}

	optimizer, err := mapequation.NewFromConfig(g, cfg,
		mapequation.WithLogger(logger),
		mapequation.WithMetrics(registry),
	)
	if err != nil {
		result.err = err
		return result
	}
	result.name = optimizer.String()

	start := time.Now()
	detected, err := algorithms.Detect(ctx, optimizer, g)
	result.duration = time.Since(start)
	if err != nil {
		result.err = err
		return result
	}

	stats, err := optimizer.Result()
	if err != nil {
		result.err = err
		return result
	}

	result.clusters = len(detected.Communities)
	result.levels = len(stats.Levels)
	result.codelength = detected.MapEquation
	result.modularity = detected.Modularity
	result.planted, result.known = matchesPlanted(optimizer, planted), planted != nil
	return result
}

func runLabelPropagation(ctx context.Context, g *graph.Graph, planted []uint64) benchResult {
	lp := algorithms.NewLabelPropagation(g, 100)
	result := benchResult{name: lp.String(), levels: 1}

	start := time.Now()
	detected, err := algorithms.Detect(ctx, lp, g)
	result.duration = time.Since(start)
	if err != nil {
		result.err = err
		return result
	}

	p, err := lp.Partition()
	if err != nil {
		result.err = err
		return result
	}

	result.clusters = len(detected.Communities)
	result.codelength = mapequation.MapEquation(g, p)
	result.modularity = detected.Modularity
	result.planted, result.known = matchesPlanted(lp, planted), planted != nil
	return result
}

// matchesPlanted reports whether the detected partition equals the planted
// one up to relabeling. Planted ids are already in first appearance order.
func matchesPlanted(d algorithms.CommunityDetector, planted []uint64) bool {
	if planted == nil {
		return false
	}
	p, err := d.Partition()
	if err != nil {
		return false
	}
	compact := p.Clone()
	compact.Compact()
	return compact.Equal(partition.FromVector(planted))
}

func renderTable(results []benchResult) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF"))).
		Headers("Algorithm", "Clusters", "Levels", "Codelength", "Modularity", "Planted", "Time").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, r := range results {
		if r.err != nil {
			t.Row(r.name, errorStyle.Render(r.err.Error()), "", "", "", "", r.duration.Round(time.Microsecond).String())
			continue
		}
		planted := "-"
		switch {
		case r.known && r.planted:
			planted = successStyle.Render("yes")
		case r.known:
			planted = "no"
		}
		t.Row(
			r.name,
			fmt.Sprintf("%d", r.clusters),
			fmt.Sprintf("%d", r.levels),
			fmt.Sprintf("%.4f", r.codelength),
			fmt.Sprintf("%.4f", r.modularity),
			planted,
			r.duration.Round(time.Microsecond).String(),
		)
	}
	return t.Render()
}

// writeMetrics prints every gathered family in the Prometheus text format
func writeMetrics(w io.Writer, registry *metrics.Registry) error {
	families, err := registry.GetPrometheusRegistry().Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
