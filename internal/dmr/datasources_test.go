package dmr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mramin786/jboss-monitor/internal/logger"
	"github.com/mramin786/jboss-monitor/internal/monitor"
)

// decode is a test helper mirroring how the command gateway hands decoded
// JSON payloads to the parsers.
func decode(t *testing.T, raw string) interface{} {
	t.Helper()
	var payload interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload
}

func TestParseDatasourcesModernShape(t *testing.T) {
	payload := decode(t, `{
		"data-source": {
			"AppDS":   {"enabled": true, "jndi-name": "java:jboss/datasources/AppDS"},
			"BatchDS": {"enabled": false}
		}
	}`)

	got := ParseDatasources(payload, logger.Noop())

	assert.Equal(t, []monitor.ResourceStatus{
		{Name: "AppDS", Type: monitor.TypeDataSource, Status: monitor.StatusUp},
		{Name: "BatchDS", Type: monitor.TypeDataSource, Status: monitor.StatusDown},
	}, got)
}

func TestParseDatasourcesLegacyListShape(t *testing.T) {
	payload := decode(t, `{"data-source": ["AppDS", "BatchDS"]}`)

	got := ParseDatasources(payload, logger.Noop())

	// The list shape carries no enablement info, so status is assumed up.
	assert.Equal(t, []monitor.ResourceStatus{
		{Name: "AppDS", Type: monitor.TypeDataSource, Status: monitor.StatusUp},
		{Name: "BatchDS", Type: monitor.TypeDataSource, Status: monitor.StatusUp},
	}, got)
}

func TestParseDatasourcesShapesAgreeOnEnabled(t *testing.T) {
	modern := ParseDatasources(decode(t, `{"data-source": {"DS1": {"enabled": true}}}`), logger.Noop())
	legacy := ParseDatasources(decode(t, `{"data-source": ["DS1"]}`), logger.Noop())

	want := monitor.ResourceStatus{Name: "DS1", Type: monitor.TypeDataSource, Status: monitor.StatusUp}
	assert.Contains(t, modern, want)
	assert.Contains(t, legacy, want)
}

func TestParseDatasourcesXA(t *testing.T) {
	payload := decode(t, `{
		"data-source":    {"AppDS": {"enabled": true}},
		"xa-data-source": {"OrdersXA": {"enabled": false}}
	}`)

	got := ParseDatasources(payload, logger.Noop())

	assert.Equal(t, []monitor.ResourceStatus{
		{Name: "AppDS", Type: monitor.TypeDataSource, Status: monitor.StatusUp},
		{Name: "OrdersXA", Type: monitor.TypeXADataSource, Status: monitor.StatusDown},
	}, got)
}

func TestParseDatasourcesXAListShape(t *testing.T) {
	payload := decode(t, `{"xa-data-source": ["OrdersXA"]}`)

	got := ParseDatasources(payload, logger.Noop())

	assert.Equal(t, []monitor.ResourceStatus{
		{Name: "OrdersXA", Type: monitor.TypeXADataSource, Status: monitor.StatusUp},
	}, got)
}

func TestParseDatasourcesMissingEnabledIsDown(t *testing.T) {
	payload := decode(t, `{"data-source": {"AppDS": {"jndi-name": "java:/AppDS"}}}`)

	got := ParseDatasources(payload, logger.Noop())

	require.Len(t, got, 1)
	assert.Equal(t, monitor.StatusDown, got[0].Status)
}

func TestParseDatasourcesUnrecognizedShapes(t *testing.T) {
	tests := []struct {
		name    string
		payload interface{}
	}{
		{"nil payload", nil},
		{"number", float64(42)},
		{"list at top level", []interface{}{"AppDS"}},
		{"section holds a number", map[string]interface{}{"data-source": float64(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logger.NewBufferLogger()
			got := ParseDatasources(tt.payload, log)

			assert.NotNil(t, got)
			assert.Empty(t, got)
			assert.True(t, log.HasLevel("warn"))
		})
	}
}

func TestParseDatasourcesStringPayloadFallsBackToBracketScan(t *testing.T) {
	raw := `{
    "outcome" => "success",
    "result" => {
        "data-source" => {
            "ExampleDS" => {
                "enabled" => true,
                "jndi-name" => "java:jboss/datasources/ExampleDS"
            }
        }
    }
}`

	got := ParseDatasources(raw, logger.Noop())

	assert.Equal(t, []monitor.ResourceStatus{
		{Name: "ExampleDS", Type: monitor.TypeDataSource, Status: monitor.StatusUp},
	}, got)
}
