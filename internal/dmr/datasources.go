// Package dmr decodes management CLI payloads into canonical resource
// lists. The CLI emits several incompatible encodings for the same logical
// resource depending on server version and invocation: JSON maps keyed by
// type, bare name lists, and raw DMR bracket-notation text. Each shape gets
// its own decoder behind the same contract: best-effort, never an error.
// An unrecognized payload logs a warning and yields an empty list so a parse
// failure cannot masquerade as a host failure.
package dmr

import (
	"sort"

	"github.com/mramin786/jboss-monitor/internal/logger"
	"github.com/mramin786/jboss-monitor/internal/monitor"
)

// datasource sections recognized in payloads, in output order.
var datasourceTypes = []string{monitor.TypeDataSource, monitor.TypeXADataSource}

// ParseDatasources converts a datasource payload in any recognized shape
// into a canonical resource list, sorted by type then name.
//
// Recognized shapes:
//  1. map type → name → details, where details carries an "enabled" bool
//  2. map type → list of names (older servers; status assumed up because
//     this shape carries no enablement information)
//  3. raw DMR bracket-notation text, scanned structurally
func ParseDatasources(payload interface{}, log logger.Logger) []monitor.ResourceStatus {
	if log == nil {
		log = logger.Noop()
	}

	switch data := payload.(type) {
	case map[string]interface{}:
		return parseDatasourceMap(data, log)
	case string:
		return ParseBracketDatasources(data)
	default:
		log.Warn("datasource payload has unrecognized shape %T", payload)
		return []monitor.ResourceStatus{}
	}
}

func parseDatasourceMap(data map[string]interface{}, log logger.Logger) []monitor.ResourceStatus {
	out := []monitor.ResourceStatus{}

	for _, typ := range datasourceTypes {
		section, ok := data[typ]
		if !ok || section == nil {
			continue
		}

		switch entries := section.(type) {
		case map[string]interface{}:
			// Modern shape: name → details with an enabled flag.
			for name, raw := range entries {
				status := monitor.StatusDown
				if details, ok := raw.(map[string]interface{}); ok {
					if enabled, _ := details["enabled"].(bool); enabled {
						status = monitor.StatusUp
					}
				}
				out = append(out, monitor.ResourceStatus{
					Name:   name,
					Type:   typ,
					Status: status,
				})
			}
		case []interface{}:
			// Legacy shape: bare name list. Enablement cannot be
			// determined from this shape, so status is assumed up.
			for _, raw := range entries {
				name, ok := raw.(string)
				if !ok {
					continue
				}
				out = append(out, monitor.ResourceStatus{
					Name:   name,
					Type:   typ,
					Status: monitor.StatusUp,
				})
			}
		default:
			log.Warn("datasource section %q has unrecognized shape %T", typ, section)
		}
	}

	sortResources(out)
	return out
}

// sortResources orders a resource list by type then name so parser output
// is deterministic regardless of map iteration order.
func sortResources(resources []monitor.ResourceStatus) {
	sort.Slice(resources, func(i, j int) bool {
		if resources[i].Type != resources[j].Type {
			return resources[i].Type < resources[j].Type
		}
		return resources[i].Name < resources[j].Name
	})
}
