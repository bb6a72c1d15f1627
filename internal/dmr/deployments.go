package dmr

import (
	"sort"

	"github.com/mramin786/jboss-monitor/internal/logger"
	"github.com/mramin786/jboss-monitor/internal/monitor"
)

// ParseDeployments converts a deployment payload in any recognized shape
// into a canonical resource list, sorted by name. The type tag is inferred
// from the deployment name's file extension (war, ear, jar, ...).
//
// Recognized shapes:
//  1. map name → details with an "enabled" bool
//  2. list of entries, each carrying either an address path whose last
//     element names the deployment plus a nested result object, or a direct
//     name/enabled pair
func ParseDeployments(payload interface{}, log logger.Logger) []monitor.ResourceStatus {
	if log == nil {
		log = logger.Noop()
	}

	out := []monitor.ResourceStatus{}

	switch data := payload.(type) {
	case map[string]interface{}:
		for name, raw := range data {
			details, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			enabled, _ := details["enabled"].(bool)
			out = append(out, deploymentStatus(name, enabled))
		}
	case []interface{}:
		for _, raw := range data {
			entry, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			if rec, ok := parseAddressedDeployment(entry); ok {
				out = append(out, rec)
				continue
			}
			if rec, ok := parseNamedDeployment(entry); ok {
				out = append(out, rec)
			}
		}
	default:
		log.Warn("deployment payload has unrecognized shape %T", payload)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// parseAddressedDeployment extracts a deployment from an entry shaped like
//
//	{"address": [{"deployment": "app.war"}], "result": {"enabled": true}}
//
// The enabled flag defaults to true when the result object is absent.
func parseAddressedDeployment(entry map[string]interface{}) (monitor.ResourceStatus, bool) {
	address, ok := entry["address"].([]interface{})
	if !ok || len(address) == 0 {
		return monitor.ResourceStatus{}, false
	}

	for _, part := range address {
		addrPart, ok := part.(map[string]interface{})
		if !ok {
			continue
		}
		name, ok := addrPart["deployment"].(string)
		if !ok {
			continue
		}

		enabled := true
		if result, ok := entry["result"].(map[string]interface{}); ok {
			if flag, ok := result["enabled"].(bool); ok {
				enabled = flag
			}
		}
		return deploymentStatus(name, enabled), true
	}
	return monitor.ResourceStatus{}, false
}

// parseNamedDeployment extracts a deployment from an entry carrying a direct
// name/enabled pair. The enabled flag defaults to true when absent.
func parseNamedDeployment(entry map[string]interface{}) (monitor.ResourceStatus, bool) {
	name, ok := entry["name"].(string)
	if !ok {
		return monitor.ResourceStatus{}, false
	}

	enabled := true
	if flag, ok := entry["enabled"].(bool); ok {
		enabled = flag
	}
	return deploymentStatus(name, enabled), true
}

func deploymentStatus(name string, enabled bool) monitor.ResourceStatus {
	status := monitor.StatusDown
	if enabled {
		status = monitor.StatusUp
	}
	return monitor.ResourceStatus{
		Name:   name,
		Type:   monitor.DeploymentType(name),
		Status: status,
	}
}
