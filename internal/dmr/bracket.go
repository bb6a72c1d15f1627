package dmr

import (
	"regexp"
	"strings"

	"github.com/mramin786/jboss-monitor/internal/monitor"
)

// DMR bracket notation is the CLI's native, non-JSON dump format:
//
//	{
//	    "outcome" => "success",
//	    "result" => {
//	        "data-source" => {
//	            "ExampleDS" => {
//	                "enabled" => true,
//	                "jndi-name" => "java:jboss/datasources/ExampleDS"
//	            }
//	        },
//	        "xa-data-source" => undefined
//	    }
//	}
//
// There is no off-the-shelf decoder for it, so resource names are recovered
// by structural scanning: locate each type section, then walk its immediate
// child blocks and look for an enabled flag inside each one.

var (
	sectionRe = regexp.MustCompile(`"(data-source|xa-data-source)"\s*=>\s*\{`)
	entryRe   = regexp.MustCompile(`"([^"]+)"\s*=>\s*\{`)
	enabledRe = regexp.MustCompile(`"enabled"\s*=>\s*(true|false)`)
)

// ParseBracketDatasources scans raw DMR bracket-notation text for
// datasource name/enabled pairs. Best-effort: it returns whatever it can
// recover and an empty list for text it cannot make sense of.
func ParseBracketDatasources(raw string) []monitor.ResourceStatus {
	out := []monitor.ResourceStatus{}

	for _, loc := range sectionRe.FindAllStringSubmatchIndex(raw, -1) {
		typ := raw[loc[2]:loc[3]]
		// loc[1]-1 is the section's opening brace.
		block, ok := braceBlock(raw, loc[1]-1)
		if !ok {
			continue
		}
		out = append(out, scanSectionEntries(block, typ)...)
	}

	sortResources(out)
	return out
}

// scanSectionEntries extracts the immediate child entries of a section
// block. Nested blocks (connection properties and the like) are skipped by
// only accepting entries that open at depth 1 relative to the section.
func scanSectionEntries(block string, typ string) []monitor.ResourceStatus {
	var out []monitor.ResourceStatus

	for _, loc := range entryRe.FindAllStringSubmatchIndex(block, -1) {
		if braceDepth(block[:loc[0]]) != 1 {
			continue
		}
		name := block[loc[2]:loc[3]]
		entry, ok := braceBlock(block, loc[1]-1)
		if !ok {
			continue
		}

		status := monitor.StatusDown
		if m := enabledRe.FindStringSubmatch(entry); m != nil && m[1] == "true" {
			status = monitor.StatusUp
		}
		out = append(out, monitor.ResourceStatus{
			Name:   name,
			Type:   typ,
			Status: status,
		})
	}
	return out
}

// braceBlock returns the substring from the opening brace at index open
// through its matching close brace, inclusive. Returns false when the text
// is truncated or open does not sit on a brace.
func braceBlock(s string, open int) (string, bool) {
	if open < 0 || open >= len(s) || s[open] != '{' {
		return "", false
	}
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[open : i+1], true
			}
		}
	}
	return "", false
}

// braceDepth counts unbalanced open braces in s. Used to tell a section's
// immediate children apart from deeper nesting.
func braceDepth(s string) int {
	return strings.Count(s, "{") - strings.Count(s, "}")
}
