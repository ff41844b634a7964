package annotate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/kgfoundry/biomapper/internal/httpcache"
	"github.com/kgfoundry/biomapper/internal/kg"
	"github.com/kgfoundry/biomapper/pkg/types"
)

// WorkbenchSlug identifies the Metabolomics Workbench RefMet annotator.
const WorkbenchSlug = "workbench"

// DefaultWorkbenchURL is the Metabolomics Workbench REST API root.
const DefaultWorkbenchURL = "https://www.metabolomicsworkbench.org/rest"

// WorkbenchConfig configures the RefMet annotator.
type WorkbenchConfig struct {
	// BaseURL is the REST API root (default: DefaultWorkbenchURL).
	BaseURL string

	// NameField is the entity field queried against RefMet (default:
	// "name").
	NameField string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// RequestsPerSec caps outbound request rate (default: 10).
	RequestsPerSec float64

	// Burst is the rate limiter burst size (default: 5).
	Burst int

	// Cache, when non-nil, serves repeated name lookups without a remote
	// call.
	Cache *httpcache.Cache
}

// Workbench annotates metabolites with RefMet database cross-references by
// name. It queries GET {base}/refmet/name/{name}/all/ and passes the response
// fields through untouched: the RefMet payload carries fields like
// "refmet_id", "pubchem_cid", "inchi_key", and "smiles" whose interpretation
// belongs to the Normalizer.
type Workbench struct {
	baseURL   string
	nameField string
	client    *http.Client
	breaker   *kg.Breaker
	limiter   *rate.Limiter
	cache     *httpcache.Cache
}

var _ Annotator = (*Workbench)(nil)

// NewWorkbench creates a RefMet annotator, applying defaults for unset
// fields.
func NewWorkbench(config WorkbenchConfig) *Workbench {
	if config.BaseURL == "" {
		config.BaseURL = DefaultWorkbenchURL
	}
	if config.NameField == "" {
		config.NameField = "name"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RequestsPerSec == 0 {
		config.RequestsPerSec = 10
	}
	if config.Burst == 0 {
		config.Burst = 5
	}

	return &Workbench{
		baseURL:   config.BaseURL,
		nameField: config.NameField,
		client:    &http.Client{Timeout: config.Timeout},
		breaker:   kg.NewBreaker(WorkbenchSlug, kg.BreakerConfig{}),
		limiter:   rate.NewLimiter(rate.Limit(config.RequestsPerSec), config.Burst),
		cache:     config.Cache,
	}
}

// Slug implements Annotator.
func (w *Workbench) Slug() string { return WorkbenchSlug }

// Annotate looks the entity's name up in RefMet and returns the raw response
// fields. An empty name yields empty evidence without a remote call.
func (w *Workbench) Annotate(ctx context.Context, entity types.Entity) (types.RawEvidence, error) {
	name := entity.Text(w.nameField)
	if name == "" {
		return types.RawEvidence{}, nil
	}
	return w.lookup(ctx, name)
}

// AnnotateBulk looks up a batch of entities, issuing one remote call per
// distinct name; duplicate names within the batch reuse the first result.
func (w *Workbench) AnnotateBulk(ctx context.Context, entities []types.Entity) ([]types.RawEvidence, error) {
	byName := make(map[string]types.RawEvidence)
	var names []string
	for _, entity := range entities {
		name := entity.Text(w.nameField)
		if name == "" {
			continue
		}
		if _, seen := byName[name]; !seen {
			byName[name] = nil
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		evidence, err := w.lookup(ctx, name)
		if err != nil {
			return nil, err
		}
		byName[name] = evidence
	}

	results := make([]types.RawEvidence, len(entities))
	for i, entity := range entities {
		name := entity.Text(w.nameField)
		if name == "" {
			results[i] = types.RawEvidence{}
			continue
		}
		results[i] = byName[name].Clone()
	}
	return results, nil
}

func (w *Workbench) lookup(ctx context.Context, name string) (types.RawEvidence, error) {
	fetch := func() ([]byte, error) {
		return w.breaker.Execute(ctx, func() ([]byte, error) {
			return w.doGet(ctx, name)
		})
	}

	var body []byte
	var err error
	if w.cache != nil {
		body, err = w.cache.Do(WorkbenchSlug, "refmet/name:"+name, fetch)
	} else {
		body, err = fetch()
	}
	if err != nil {
		return nil, types.NewRemoteSourceError(WorkbenchSlug, "refmet/name", err)
	}
	return parseRefmetResponse(body)
}

func (w *Workbench) doGet(ctx context.Context, name string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, w.client.Timeout)
	defer cancel()

	if err := w.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := w.baseURL + "/refmet/name/" + url.PathEscape(name) + "/all/"
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("workbench returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// parseRefmetResponse decodes a RefMet payload into evidence, preserving
// field names and value text byte-for-byte. Numeric values keep their
// original literal form (json.Number, not float) so IDs never pick up
// floating point artifacts. Unmatched names come back as an empty object or
// array, which yields empty evidence.
func parseRefmetResponse(body []byte) (types.RawEvidence, error) {
	var raw any
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return nil, types.NewRemoteSourceError(WorkbenchSlug, "refmet/name",
			fmt.Errorf("malformed response: %w", err))
	}

	record, ok := raw.(map[string]any)
	if !ok {
		// A JSON array or scalar means no match for the name.
		return types.RawEvidence{}, nil
	}

	evidence := make(types.RawEvidence, len(record))
	for field, value := range record {
		switch v := value.(type) {
		case string:
			evidence[field] = []string{v}
		case json.Number:
			evidence[field] = []string{v.String()}
		case nil:
			// Absent value; nothing to pass through.
		}
	}
	return evidence, nil
}
