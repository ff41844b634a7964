package annotate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kgfoundry/biomapper/pkg/types"
)

// FailurePolicy decides what happens when an annotator fails for an entity.
type FailurePolicy string

const (
	// PolicySkip records the failure in provenance and continues with the
	// remaining annotators' evidence.
	PolicySkip FailurePolicy = "skip"

	// PolicyAbort propagates the failure and aborts the entity.
	PolicyAbort FailurePolicy = "abort"
)

// Mode decides which entities get annotated at all.
type Mode string

const (
	// ModeAll annotates every entity.
	ModeAll Mode = "all"

	// ModeMissing annotates only entities with no usable provided ID
	// fields, saving remote calls for rows that already carry identifiers.
	ModeMissing Mode = "missing"

	// ModeNone disables annotation.
	ModeNone Mode = "none"
)

// EngineOptions configures an annotation engine.
type EngineOptions struct {
	// Types maps an entity type to the annotator slugs that apply to it,
	// in dispatch order.
	Types map[string][]string

	// Policy is the failure policy (default: PolicySkip).
	Policy FailurePolicy

	// Mode selects which entities to annotate (default: ModeAll).
	Mode Mode

	Logger *slog.Logger
}

// Engine dispatches annotators per entity type. The type table is fixed at
// construction; dispatching an entity type with no table entry is a
// configuration error, not an empty result, so typos fail loudly.
type Engine struct {
	registry *Registry
	types    map[string][]string
	policy   FailurePolicy
	mode     Mode
	log      *slog.Logger
}

// NewEngine builds an engine over the registry. Every slug in the type table
// must be registered.
func NewEngine(registry *Registry, opts EngineOptions) (*Engine, error) {
	if opts.Policy == "" {
		opts.Policy = PolicySkip
	}
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	switch opts.Policy {
	case PolicySkip, PolicyAbort:
	default:
		return nil, types.NewConfigurationError("unknown annotation failure policy %q", opts.Policy)
	}
	switch opts.Mode {
	case ModeAll, ModeMissing, ModeNone:
	default:
		return nil, types.NewConfigurationError("unknown annotation mode %q", opts.Mode)
	}

	for entityType, slugs := range opts.Types {
		for _, slug := range slugs {
			if _, ok := registry.Get(slug); !ok {
				return nil, types.NewConfigurationError(
					"entity type %q references unregistered annotator %q", entityType, slug)
			}
		}
	}

	return &Engine{
		registry: registry,
		types:    opts.Types,
		policy:   opts.Policy,
		mode:     opts.Mode,
		log:      opts.Logger,
	}, nil
}

// Annotate runs every annotator configured for the entity's type and merges
// their evidence. providedFields lets ModeMissing decide whether the entity
// already carries identifiers. Under PolicySkip, failures come back in the
// second return value; under PolicyAbort the first failure is returned as an
// error.
func (e *Engine) Annotate(ctx context.Context, entity types.Entity, providedFields []string) (types.AssignedIDs, []types.AnnotationFailure, error) {
	slugs, err := e.slugsFor(entity.Type)
	if err != nil {
		return nil, nil, err
	}

	assigned := make(types.AssignedIDs)
	if !e.shouldAnnotate(entity, providedFields) {
		return assigned, nil, nil
	}

	var failures []types.AnnotationFailure
	for _, slug := range slugs {
		annotator, _ := e.registry.Get(slug)
		evidence, err := annotator.Annotate(ctx, entity)
		if err != nil {
			if e.policy == PolicyAbort {
				return nil, nil, err
			}
			e.log.Warn("annotator failed, skipping",
				"annotator", slug, "entity_type", entity.Type, "error", err)
			failures = append(failures, types.AnnotationFailure{Slug: slug, Reason: err.Error()})
			continue
		}
		assigned.Merge(slug, evidence)
	}
	return assigned, failures, nil
}

// AnnotateBatch runs the configured annotators over a batch of same-typed
// entities, using each annotator's bulk variant so one remote call covers the
// whole batch. Results align one-to-one with the input. Under PolicySkip an
// annotator failure marks the failure on every entity in the batch.
func (e *Engine) AnnotateBatch(ctx context.Context, entities []types.Entity, entityType string, providedFields []string) ([]types.AssignedIDs, [][]types.AnnotationFailure, error) {
	slugs, err := e.slugsFor(entityType)
	if err != nil {
		return nil, nil, err
	}

	assigned := make([]types.AssignedIDs, len(entities))
	failures := make([][]types.AnnotationFailure, len(entities))
	for i := range entities {
		assigned[i] = make(types.AssignedIDs)
	}

	// Only entities the mode selects go into the sub-batch; results are
	// demultiplexed back by position.
	var batch []types.Entity
	var positions []int
	for i, entity := range entities {
		if e.shouldAnnotate(entity, providedFields) {
			batch = append(batch, entity)
			positions = append(positions, i)
		}
	}
	if len(batch) == 0 {
		return assigned, failures, nil
	}

	for _, slug := range slugs {
		annotator, _ := e.registry.Get(slug)
		results, err := annotator.AnnotateBulk(ctx, batch)
		if err != nil {
			if e.policy == PolicyAbort {
				return nil, nil, err
			}
			e.log.Warn("bulk annotator failed, skipping batch",
				"annotator", slug, "entity_type", entityType, "batch_size", len(batch), "error", err)
			failure := types.AnnotationFailure{Slug: slug, Reason: err.Error()}
			for _, pos := range positions {
				failures[pos] = append(failures[pos], failure)
			}
			continue
		}
		if len(results) != len(batch) {
			return nil, nil, fmt.Errorf("annotator %q: bulk result count %d does not match batch size %d",
				slug, len(results), len(batch))
		}
		for j, evidence := range results {
			assigned[positions[j]].Merge(slug, evidence)
		}
	}
	return assigned, failures, nil
}

func (e *Engine) slugsFor(entityType string) ([]string, error) {
	if e.mode == ModeNone {
		return nil, nil
	}
	slugs, ok := e.types[entityType]
	if !ok {
		return nil, types.NewConfigurationError("no annotators configured for entity type %q", entityType)
	}
	return slugs, nil
}

func (e *Engine) shouldAnnotate(entity types.Entity, providedFields []string) bool {
	switch e.mode {
	case ModeNone:
		return false
	case ModeMissing:
		return !entity.HasAnyValue(providedFields)
	default:
		return true
	}
}
