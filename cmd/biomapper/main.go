// Command biomapper maps biological entity identifiers to knowledge graph
// nodes. It runs either one entity (-entity) or a whole dataset (-dataset)
// through the annotation, normalization, linking, and resolution pipeline.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/kgfoundry/biomapper/internal/annotate"
	"github.com/kgfoundry/biomapper/internal/config"
	"github.com/kgfoundry/biomapper/internal/dataset"
	"github.com/kgfoundry/biomapper/internal/httpcache"
	"github.com/kgfoundry/biomapper/internal/kg"
	"github.com/kgfoundry/biomapper/internal/link"
	"github.com/kgfoundry/biomapper/internal/mapper"
	"github.com/kgfoundry/biomapper/internal/normalize"
	"github.com/kgfoundry/biomapper/internal/resolve"
	"github.com/kgfoundry/biomapper/pkg/types"
)

var (
	datasetPath = flag.String("dataset", "", "Path to a TSV/CSV dataset to map")
	entityJSON  = flag.String("entity", "", "Single entity as a JSON object of fields")
	entityType  = flag.String("type", "metabolite", "Entity type (metabolite, protein, lipid, ...)")
	idFields    = flag.String("id-fields", "", "Comma-separated fields holding identifiers (default: every field except 'name')")
	outputPath  = flag.String("output", "", "Mapped TSV output path (default: <dataset>_mapped.tsv)")
	statsPath   = flag.String("stats", "", "Summary stats JSON path (default: <dataset>_stats.json)")
)

// annotatorsByType is the default entity type -> annotator dispatch table.
var annotatorsByType = map[string][]string{
	"metabolite": {annotate.WorkbenchSlug, annotate.KestrelHybridSlug},
	"lipid":      {annotate.WorkbenchSlug, annotate.KestrelHybridSlug},
	"protein":    {annotate.KestrelHybridSlug},
	"gene":       {annotate.KestrelHybridSlug},
	"disease":    {annotate.KestrelHybridSlug},
	"pathway":    {annotate.KestrelTextSlug},
}

func main() {
	flag.Parse()

	cfg := config.LoadConfig()
	setupLogging(cfg.LogLevel)

	if (*datasetPath == "") == (*entityJSON == "") {
		log.Fatal("exactly one of -dataset or -entity is required")
	}

	m, cleanup, err := buildMapper(cfg)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *entityJSON != "" {
		if err := runEntity(ctx, m); err != nil {
			log.Fatalf("Mapping failed: %v", err)
		}
		return
	}
	if err := runDataset(ctx, m, cfg); err != nil {
		log.Fatalf("Dataset mapping failed: %v", err)
	}
}

func setupLogging(level string) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

// buildMapper wires the pipeline from configuration. The returned cleanup
// closes the lookup cache.
func buildMapper(cfg *config.Config) (*mapper.Mapper, func(), error) {
	cleanup := func() {}

	var cache *httpcache.Cache
	if cfg.Cache.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating cache directory: %w", err)
		}
		c, err := httpcache.Open(cfg.Cache.Path, cfg.Cache.TTL)
		if err != nil {
			return nil, nil, fmt.Errorf("opening lookup cache: %w", err)
		}
		cache = c
		cleanup = func() { c.Close() }
	}

	client := kg.NewClient(kg.Config{
		BaseURL:        cfg.KG.BaseURL,
		APIKey:         cfg.KG.APIKey,
		Timeout:        cfg.KG.Timeout,
		RequestsPerSec: cfg.KG.RequestsPerSec,
		Burst:          cfg.KG.Burst,
		Breaker: kg.BreakerConfig{
			MaxFailures: uint32(cfg.KG.BreakerFailures),
			Timeout:     cfg.KG.BreakerTimeout,
		},
		Cache: cache,
	})

	registry := annotate.NewRegistry()
	annotators := []annotate.Annotator{
		annotate.NewWorkbench(annotate.WorkbenchConfig{
			BaseURL: cfg.Annotation.WorkbenchBaseURL,
			Cache:   cache,
		}),
		annotate.NewKestrelText(client, annotate.SearchConfig{}),
		annotate.NewKestrelHybrid(client, annotate.SearchConfig{}),
	}
	for _, a := range annotators {
		if err := registry.Register(a); err != nil {
			return nil, nil, err
		}
	}

	engine, err := annotate.NewEngine(registry, annotate.EngineOptions{
		Types:  annotatorsByType,
		Policy: annotate.FailurePolicy(cfg.Annotation.OnFailure),
		Mode:   annotate.Mode(cfg.Annotation.Mode),
	})
	if err != nil {
		return nil, nil, err
	}

	opts := normalize.Options{Delimiters: cfg.Mapping.ArrayDelimiters}
	if cfg.Mapping.VocabOverridesPath != "" {
		overrides, err := normalize.LoadOverrides(cfg.Mapping.VocabOverridesPath)
		if err != nil {
			return nil, nil, err
		}
		opts.Overrides = overrides
	}

	m := mapper.New(engine, normalize.New(opts), link.New(client, nil), resolve.New(), slog.Default())
	return m, cleanup, nil
}

func runEntity(ctx context.Context, m *mapper.Mapper) error {
	var fields map[string]any
	if err := json.Unmarshal([]byte(*entityJSON), &fields); err != nil {
		return fmt.Errorf("parsing -entity: %w", err)
	}
	entity := types.NewEntity(*entityType, fields)

	provided := providedFields(entity)
	result, err := m.MapEntity(ctx, entity, provided)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runDataset(ctx context.Context, m *mapper.Mapper, cfg *config.Config) error {
	ds, err := dataset.Load(*datasetPath, *entityType)
	if err != nil {
		return err
	}
	slog.Info("dataset loaded", "path", ds.Path, "rows", len(ds.Entities))

	provided := *idFields
	var fields []string
	if provided != "" {
		fields = splitList(provided)
	} else {
		for _, col := range ds.Columns {
			if col != "name" {
				fields = append(fields, col)
			}
		}
	}

	results, failures, err := m.MapDataset(ctx, ds.Entities, *entityType, fields)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(*datasetPath, filepath.Ext(*datasetPath))
	mappedOut := *outputPath
	if mappedOut == "" {
		mappedOut = base + "_mapped.tsv"
	}
	statsOut := *statsPath
	if statsOut == "" {
		statsOut = base + "_stats.json"
	}

	if err := dataset.WriteMapped(mappedOut, ds.Columns, results); err != nil {
		return err
	}
	stats := m.Summarize(*datasetPath, *entityType, results, failures)
	if err := dataset.WriteStats(statsOut, stats); err != nil {
		return err
	}
	if cfg.Mapping.WriteReferenceSlices {
		if err := dataset.WriteReferenceSlices(base, ds.Columns, results); err != nil {
			return err
		}
	}

	slog.Info("dataset mapped",
		"run_id", stats.RunID,
		"total", stats.TotalItems,
		"resolved", stats.Resolved,
		"ambiguous", stats.Ambiguous,
		"unresolved", stats.Unresolved,
		"failures", len(stats.Failures),
		"mapped_output", mappedOut,
		"stats_output", statsOut)
	return nil
}

func providedFields(entity types.Entity) []string {
	if *idFields != "" {
		return splitList(*idFields)
	}
	var fields []string
	for field := range entity.Fields {
		if field != "name" {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)
	return fields
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
