package dmr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mramin786/jboss-monitor/internal/logger"
	"github.com/mramin786/jboss-monitor/internal/monitor"
)

func TestParseDeploymentsMapShape(t *testing.T) {
	payload := decode(t, `{
		"storefront.war": {"enabled": true, "runtime-name": "storefront.war"},
		"legacy-api.ear": {"enabled": false}
	}`)

	got := ParseDeployments(payload, logger.Noop())

	assert.Equal(t, []monitor.ResourceStatus{
		{Name: "legacy-api.ear", Type: "ear", Status: monitor.StatusDown},
		{Name: "storefront.war", Type: "war", Status: monitor.StatusUp},
	}, got)
}

func TestParseDeploymentsMapShapeSkipsNonObjectValues(t *testing.T) {
	payload := decode(t, `{
		"storefront.war": {"enabled": true},
		"stray-key": "not a deployment"
	}`)

	got := ParseDeployments(payload, logger.Noop())

	require.Len(t, got, 1)
	assert.Equal(t, "storefront.war", got[0].Name)
}

func TestParseDeploymentsAddressedListShape(t *testing.T) {
	payload := decode(t, `[
		{"address": [{"deployment": "storefront.war"}], "result": {"enabled": true}},
		{"address": [{"deployment": "batch-jobs.jar"}], "result": {"enabled": false}}
	]`)

	got := ParseDeployments(payload, logger.Noop())

	assert.Equal(t, []monitor.ResourceStatus{
		{Name: "batch-jobs.jar", Type: "jar", Status: monitor.StatusDown},
		{Name: "storefront.war", Type: "war", Status: monitor.StatusUp},
	}, got)
}

func TestParseDeploymentsAddressedEntryWithoutResultDefaultsUp(t *testing.T) {
	payload := decode(t, `[{"address": [{"deployment": "storefront.war"}]}]`)

	got := ParseDeployments(payload, logger.Noop())

	require.Len(t, got, 1)
	assert.Equal(t, monitor.StatusUp, got[0].Status)
}

func TestParseDeploymentsNamedListShape(t *testing.T) {
	payload := decode(t, `[
		{"name": "storefront.war", "enabled": true},
		{"name": "reporting.war", "enabled": false},
		{"name": "no-flag.war"}
	]`)

	got := ParseDeployments(payload, logger.Noop())

	assert.Equal(t, []monitor.ResourceStatus{
		{Name: "no-flag.war", Type: "war", Status: monitor.StatusUp},
		{Name: "reporting.war", Type: "war", Status: monitor.StatusDown},
		{Name: "storefront.war", Type: "war", Status: monitor.StatusUp},
	}, got)
}

func TestParseDeploymentsUnrecognizedShape(t *testing.T) {
	log := logger.NewBufferLogger()

	got := ParseDeployments("not a structure", log)

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.True(t, log.HasLevel("warn"))
}

func TestParseDeploymentsListSkipsMalformedEntries(t *testing.T) {
	payload := decode(t, `[
		42,
		{"address": "wrong type"},
		{"address": []},
		{"no-name": true},
		{"name": "good.war", "enabled": true}
	]`)

	got := ParseDeployments(payload, logger.Noop())

	assert.Equal(t, []monitor.ResourceStatus{
		{Name: "good.war", Type: "war", Status: monitor.StatusUp},
	}, got)
}
