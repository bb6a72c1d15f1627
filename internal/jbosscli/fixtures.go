package jbosscli

import "strings"

// Simulation fixtures: deterministic payloads served instead of invoking
// the CLI, keyed by command substring. They let the full polling stack run
// against no live controller (local development, degraded environments,
// tests).
//
// The connection-test lookup must precede the datasource listing because
// test-connection commands also contain the datasources subsystem path.
var fixtures = []struct {
	substring string
	payload   string
}{
	{"test-connection-in-pool", `[true]`},
	{"subsystem=datasources", `{
		"data-source": {
			"ExampleDS": {"enabled": true, "jndi-name": "java:jboss/datasources/ExampleDS", "driver-name": "h2"},
			"ReportDS":  {"enabled": false, "jndi-name": "java:jboss/datasources/ReportDS", "driver-name": "postgresql"}
		},
		"xa-data-source": {
			"OrdersXA": {"enabled": true, "jndi-name": "java:jboss/datasources/OrdersXA", "driver-name": "oracle"}
		}
	}`},
	{"deployment=", `{
		"sample-app.war": {"enabled": true, "runtime-name": "sample-app.war"}
	}`},
	{"server-state", `running`},
}

// fixtureFor returns the simulation payload for a command, matching by
// substring in registration order.
func fixtureFor(command string) (string, bool) {
	for _, f := range fixtures {
		if strings.Contains(command, f.substring) {
			return f.payload, true
		}
	}
	return "", false
}
