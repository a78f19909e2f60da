// Package registry normalizes the two configuration documents describing the
// source population — the source catalog and the tenant/activation document —
// into flat identity lists for the attribution and alerting stages.
//
// Both documents are external feeds and arrive in more than one historical
// shape. Extraction is fail-soft by contract: a malformed or absent document
// yields an empty list and a logged, counted extraction error, never a
// propagated failure.
package registry

import (
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/rudderlabs/rudder-go-kit/logger"
	"github.com/rudderlabs/rudder-go-kit/stats"
)

// CatalogSource is one entry of the source catalog document.
type CatalogSource struct {
	Name        string `mapstructure:"name"`
	URL         string `mapstructure:"url"`
	Description string `mapstructure:"description"`
	Type        string `mapstructure:"type"`
	Active      bool   `mapstructure:"-"`
}

// TenantSource is one source activated by a tenant. Presence in the tenant
// document implies the source is active regardless of the catalog's flag.
type TenantSource struct {
	Name   string
	Tenant string
	Active bool
}

// Adapter extracts source identities from raw configuration documents.
type Adapter struct {
	log              logger.Logger
	extractionErrors stats.Measurement
}

// New creates a registry adapter.
func New(log logger.Logger, statsFactory stats.Stats) *Adapter {
	return &Adapter{
		log: log.Child("registry"),
		extractionErrors: statsFactory.NewTaggedStat(
			"monitor_extraction_errors", stats.CountType, stats.Tags{"component": "registry"},
		),
	}
}

// ExtractCatalogSources extracts the source catalog. The document's top-level
// "sources" entry is accepted either as a list of records or as a mapping of
// source name to attributes; missing optional attributes default to the empty
// string and active=true.
func (a *Adapter) ExtractCatalogSources(doc []byte) []CatalogSource {
	var parsed struct {
		Sources any `yaml:"sources"`
	}
	if err := yaml.Unmarshal(doc, &parsed); err != nil {
		a.softFail("unmarshalling source catalog: %v", err)
		return nil
	}
	if parsed.Sources == nil {
		a.softFail("source catalog has no sources entry")
		return nil
	}

	var catalog []CatalogSource
	switch shaped := parsed.Sources.(type) {
	case []any:
		for _, item := range shaped {
			if src, ok := a.decodeCatalogRecord(item, ""); ok {
				catalog = append(catalog, src)
			}
		}
	case map[string]any:
		for _, name := range sortedKeys(shaped) {
			if src, ok := a.decodeCatalogRecord(shaped[name], name); ok {
				catalog = append(catalog, src)
			}
		}
	default:
		a.softFail("source catalog sources entry has unsupported shape %T", parsed.Sources)
	}
	return catalog
}

func (a *Adapter) decodeCatalogRecord(item any, name string) (CatalogSource, bool) {
	attrs, ok := item.(map[string]any)
	if !ok {
		// A bare string in the list form is a name-only source.
		if name == "" {
			name = strings.TrimSpace(cast.ToString(item))
		}
		if name == "" {
			a.softFail("skipping catalog record with unsupported shape %T", item)
			return CatalogSource{}, false
		}
		return CatalogSource{Name: name, Active: true}, true
	}

	var src CatalogSource
	if err := mapstructure.WeakDecode(attrs, &src); err != nil {
		a.softFail("decoding catalog record: %v", err)
		return CatalogSource{}, false
	}
	if src.Name == "" {
		src.Name = name
	}
	if src.Name == "" {
		a.softFail("skipping catalog record without a name")
		return CatalogSource{}, false
	}
	src.Active = activeFlag(attrs)
	return src, true
}

// ExtractTenantSources extracts the tenant/activation document. The tenant
// blocks live under a singular or plural top-level key and come either as a
// list of blocks or as a mapping of tenant name to block; every source name a
// tenant lists is emitted as one active TenantSource.
func (a *Adapter) ExtractTenantSources(doc []byte) []TenantSource {
	var parsed map[string]any
	if err := yaml.Unmarshal(doc, &parsed); err != nil {
		a.softFail("unmarshalling tenant document: %v", err)
		return nil
	}

	blocks, ok := parsed["tenants"]
	if !ok {
		blocks, ok = parsed["tenant"]
	}
	if !ok || blocks == nil {
		a.softFail("tenant document has no tenant entry")
		return nil
	}

	var tenants []TenantSource
	switch shaped := blocks.(type) {
	case []any:
		for _, block := range shaped {
			tenants = append(tenants, a.decodeTenantBlock(block, "")...)
		}
	case map[string]any:
		for _, name := range sortedKeys(shaped) {
			tenants = append(tenants, a.decodeTenantBlock(shaped[name], name)...)
		}
	default:
		a.softFail("tenant entry has unsupported shape %T", blocks)
	}
	return tenants
}

func (a *Adapter) decodeTenantBlock(block any, tenantName string) []TenantSource {
	attrs, ok := block.(map[string]any)
	if !ok {
		a.softFail("skipping tenant block with unsupported shape %T", block)
		return nil
	}
	if tenantName == "" {
		for _, key := range []string{"name", "tenant"} {
			if v, ok := attrs[key]; ok {
				tenantName = cast.ToString(v)
				break
			}
		}
	}

	listed, ok := attrs["sources"].([]any)
	if !ok {
		a.softFail("tenant %q lists no sources", tenantName)
		return nil
	}
	var tenants []TenantSource
	for _, item := range listed {
		name := cast.ToString(item)
		if attrs, ok := item.(map[string]any); ok {
			name = cast.ToString(attrs["name"])
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tenants = append(tenants, TenantSource{Name: name, Tenant: tenantName, Active: true})
	}
	return tenants
}

func (a *Adapter) softFail(format string, args ...any) {
	a.log.Warnf(format, args...)
	a.extractionErrors.Increment()
}

// KnownSources builds the reference set used for fuzzy matching: the
// case-normalized union of both families' names, deduplicated and sorted so
// that classifier tie-breaks are deterministic.
func KnownSources(catalog []CatalogSource, tenants []TenantSource) []string {
	names := make([]string, 0, len(catalog)+len(tenants))
	for _, src := range catalog {
		names = append(names, strings.ToLower(src.Name))
	}
	for _, src := range tenants {
		names = append(names, strings.ToLower(src.Name))
	}
	names = lo.Uniq(names)
	sort.Strings(names)
	return names
}

// ActiveSourceCount derives the active source population fed to the alert
// evaluator: the tenant document's distinct source names when present,
// falling back to catalog entries flagged active.
func ActiveSourceCount(catalog []CatalogSource, tenants []TenantSource) int {
	if len(tenants) > 0 {
		return len(lo.UniqBy(tenants, func(t TenantSource) string {
			return strings.ToLower(t.Name)
		}))
	}
	active := 0
	for _, src := range catalog {
		if src.Active {
			active++
		}
	}
	return active
}

func activeFlag(attrs map[string]any) bool {
	raw, ok := attrs["active"]
	if !ok || raw == nil {
		return true
	}
	active, err := cast.ToBoolE(raw)
	if err != nil {
		return true
	}
	return active
}

func sortedKeys(m map[string]any) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
