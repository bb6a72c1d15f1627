package jbosscli

import (
	"fmt"
	"strings"
)

// Management commands issued by the polling engine. These are passed to the
// CLI verbatim via --command.
const (
	CommandServerState = ":read-attribute(name=server-state)"
	CommandDatasources = "/subsystem=datasources:read-resource(recursive=true)"
	CommandDeployments = "/deployment=*:read-resource(recursive=true)"
)

// TestConnectionCommand builds the connection test command for one
// datasource pool.
func TestConnectionCommand(datasource string) string {
	return fmt.Sprintf("/subsystem=datasources/data-source=%s:test-connection-in-pool", datasource)
}

// IsReadOnly reports whether a command only reads server state and is
// therefore safe to serve from the result cache. Connection tests hit the
// database pool and are never cached.
func IsReadOnly(command string) bool {
	if strings.Contains(command, "test-connection-in-pool") {
		return false
	}
	return strings.Contains(command, ":read-attribute(") ||
		strings.Contains(command, ":read-resource(")
}
