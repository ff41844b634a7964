// Package mapper drives the four-stage pipeline: annotation, normalization,
// linking, resolution. It owns nothing domain-specific itself; each stage is
// injected, and the mapper's job is sequencing, batch demultiplexing, and
// aggregating dataset-level statistics.
package mapper

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kgfoundry/biomapper/internal/annotate"
	"github.com/kgfoundry/biomapper/internal/link"
	"github.com/kgfoundry/biomapper/internal/normalize"
	"github.com/kgfoundry/biomapper/internal/resolve"
	"github.com/kgfoundry/biomapper/pkg/types"
)

// Mapper runs entities through the pipeline.
type Mapper struct {
	engine     *annotate.Engine
	normalizer *normalize.Normalizer
	linker     *link.Linker
	resolver   *resolve.Resolver
	log        *slog.Logger
}

// New wires a mapper from its four stages.
func New(engine *annotate.Engine, normalizer *normalize.Normalizer, linker *link.Linker, resolver *resolve.Resolver, logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{
		engine:     engine,
		normalizer: normalizer,
		linker:     linker,
		resolver:   resolver,
		log:        logger,
	}
}

// MapEntity runs one entity through all four stages. providedFields names
// the entity fields the caller marked as identifiers.
func (m *Mapper) MapEntity(ctx context.Context, entity types.Entity, providedFields []string) (types.MappingResult, error) {
	assigned, failures, err := m.engine.Annotate(ctx, entity, providedFields)
	if err != nil {
		return types.MappingResult{}, err
	}

	ids := m.normalizer.NormalizeEntity(entity, providedFields, assigned)
	if n := ids.DropCount(); n > 0 {
		m.log.Warn("identifier values dropped during normalization",
			"entity_type", entity.Type, "dropped", n)
	}

	candidates, err := m.linker.Link(ctx, ids)
	if err != nil {
		return types.MappingResult{}, err
	}

	result := types.MappingResult{
		Entity:             entity,
		Assigned:           assigned,
		AnnotationFailures: failures,
		IDs:                ids,
		Candidates:         candidates,
		Resolution:         m.resolver.Resolve(candidates),
	}
	m.log.Debug("entity mapped",
		"entity_type", entity.Type,
		"status", result.Resolution.Overall.Status,
		"node", result.Resolution.Overall.NodeID)
	return result, nil
}

// MapDataset maps a batch of same-typed entities, using the annotators' and
// linker's bulk variants so remote call count stays bounded by distinct query
// keys rather than rows. Row failures are reported alongside results and
// never abort the pass; the returned error covers only configuration problems
// and context cancellation.
func (m *Mapper) MapDataset(ctx context.Context, entities []types.Entity, entityType string, providedFields []string) ([]types.MappingResult, []types.RowFailure, error) {
	assignedList, failureList, err := m.engine.AnnotateBatch(ctx, entities, entityType, providedFields)
	if err != nil {
		var confErr *types.ConfigurationError
		if errors.As(err, &confErr) || ctx.Err() != nil {
			return nil, nil, err
		}
		// Batch annotation aborted (abort policy); re-run row by row so
		// each row fails or succeeds on its own.
		return m.mapRows(ctx, entities, providedFields)
	}

	idSets := make([]types.NormalizedIDSet, len(entities))
	for i, entity := range entities {
		idSets[i] = m.normalizer.NormalizeEntity(entity, providedFields, assignedList[i])
	}

	candidateSets, err := m.linker.LinkBatch(ctx, idSets)
	if err != nil {
		return nil, nil, err
	}

	results := make([]types.MappingResult, len(entities))
	for i, entity := range entities {
		results[i] = types.MappingResult{
			Entity:             entity,
			Assigned:           assignedList[i],
			AnnotationFailures: failureList[i],
			IDs:                idSets[i],
			Candidates:         candidateSets[i],
			Resolution:         m.resolver.Resolve(candidateSets[i]),
		}
	}
	return results, nil, nil
}

// mapRows is the row-at-a-time fallback used when batch annotation aborts.
func (m *Mapper) mapRows(ctx context.Context, entities []types.Entity, providedFields []string) ([]types.MappingResult, []types.RowFailure, error) {
	var results []types.MappingResult
	var failures []types.RowFailure
	for i, entity := range entities {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		result, err := m.MapEntity(ctx, entity, providedFields)
		if err != nil {
			var confErr *types.ConfigurationError
			if errors.As(err, &confErr) {
				return nil, nil, err
			}
			m.log.Warn("row failed", "row", i, "error", err)
			failures = append(failures, types.RowFailure{Row: i, Reason: err.Error()})
			continue
		}
		results = append(results, result)
	}
	return results, failures, nil
}

// Summarize aggregates one dataset pass into summary statistics.
func (m *Mapper) Summarize(dataset, entityType string, results []types.MappingResult, failures []types.RowFailure) types.SummaryStats {
	stats := types.SummaryStats{
		RunID:      uuid.NewString(),
		Dataset:    dataset,
		EntityType: entityType,
		TotalItems: len(results) + len(failures),
		Failures:   failures,
	}

	// Chosen-node ownership across the dataset, for many-to-one detection.
	owners := make(map[string]int)
	for i := range results {
		if node := results[i].ChosenNode(); node != "" {
			owners[node]++
		}
	}

	for i := range results {
		r := &results[i]
		hasProvided := r.IDs.HasProvided()
		hasAssigned := r.IDs.HasAssigned()

		switch {
		case hasProvided && hasAssigned:
			stats.HasBothOriginIDs++
		case hasProvided:
			stats.HasOnlyProvidedIDs++
		case hasAssigned:
			stats.HasOnlyAssignedIDs++
		}
		if hasProvided {
			stats.HasValidProvided++
		}
		if hasAssigned {
			stats.HasValidAssigned++
		}
		if hasProvided || hasAssigned {
			stats.HasValidIDs++
		} else if r.IDs.DropCount() == 0 && len(r.IDs.UnrecognizedProvided) == 0 {
			stats.HasNoIDs++
		}
		if r.IDs.DropCount() > 0 {
			stats.HasInvalidIDs++
		}

		overall := r.Resolution.Overall
		switch overall.Status {
		case types.StatusResolved:
			stats.Resolved++
		case types.StatusAmbiguous:
			stats.Ambiguous++
		default:
			stats.Unresolved++
		}

		mapped := overall.Status == types.StatusResolved
		providedMapped := r.Resolution.Provided.Status == types.StatusResolved
		assignedMapped := r.Resolution.Assigned.Status == types.StatusResolved
		if mapped {
			stats.MappedToKG++
		}
		if providedMapped {
			stats.MappedProvided++
		}
		if assignedMapped {
			stats.MappedAssigned++
		}
		if providedMapped && assignedMapped {
			stats.MappedBoth++
			if r.Resolution.Provided.NodeID == r.Resolution.Assigned.NodeID {
				stats.AssignedAgreeing++
			}
		}
		if r.IDs.DropCount() > 0 && !mapped {
			stats.InvalidAndUnmapped++
		}

		// Multiplicity: one entity fanning out to several candidate nodes
		// is one-to-many; several entities landing on the same chosen node
		// are each many-to-one; both at once is a multi mapping.
		oneToMany := len(r.Candidates.Nodes) > 1
		manyToOne := mapped && owners[overall.NodeID] > 1
		switch {
		case oneToMany && manyToOne:
			stats.MultiMappings++
		case oneToMany:
			stats.OneToManyMappings++
		case manyToOne:
			stats.ManyToOneMappings++
		case mapped:
			stats.OneToOneMappings++
		}
	}

	stats.Performance = types.Performance{
		Coverage:          types.SafeDivide(stats.MappedToKG, stats.TotalItems),
		AssignedCoverage:  types.SafeDivide(stats.MappedAssigned, stats.TotalItems),
		AssignedPrecision: types.SafeDivide(stats.AssignedAgreeing, stats.MappedBoth),
		AssignedRecall:    types.SafeDivide(stats.AssignedAgreeing, stats.MappedProvided),
	}
	return stats
}
