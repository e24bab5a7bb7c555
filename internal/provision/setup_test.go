package provision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embedctl/internal/config"
)

func TestSetupFromScratch(t *testing.T) {
	h := newHarness(t,
		// authentication
		say(testKey),
		choose("EU"),
		// connection
		choose("postgres"),
		say("pg"),
		say("db.internal"),
		say(""),
		say("analytics"),
		say("reader"),
		say("s3cret"),
		// environment
		say("production"),
		say("main"),
		no(),
		// token
		yes(),
		choose("emb-1"),
		say("1h"),
		say(""),
		no(),
	)
	h.svc.seedEmbeddables(map[string]any{"id": "emb-1", "name": "Sales"})

	summary, err := h.orch.Setup(context.Background(), SetupOptions{})
	require.NoError(t, err)
	h.prompter.done()

	assert.Equal(t, config.RegionEU, summary.Region)
	assert.Equal(t, "pg", summary.Connection)
	assert.Equal(t, "env-1", summary.Environment)
	assert.Equal(t, 1, summary.Connections)
	assert.Equal(t, 1, summary.Environments)
	assert.True(t, summary.DefaultSet)
	require.NotNil(t, summary.Token)
	assert.Equal(t, "1h", summary.Token.Expiry)

	cfg, ok := h.store.Get()
	require.True(t, ok)
	assert.Equal(t, "env-1", cfg.DefaultEnvironment)

	body := h.svc.tokenRequest()
	assert.Equal(t, float64(3600), body["expiryInSeconds"])
	assert.Equal(t, "env-1", body["environment"])
}

func TestSetupReusesExistingResources(t *testing.T) {
	h := newHarness(t,
		choose("existing"),
		choose("pg"),
		no(), // do not create an environment
		choose("env-1"),
	)
	h.login(t)
	h.svc.seedConnections(map[string]any{"name": "pg", "type": "postgres"})
	h.svc.seedEnvironments(map[string]any{"id": "env-1", "name": "prod", "datasources": map[string]any{"main": "pg"}})

	summary, err := h.orch.Setup(context.Background(), SetupOptions{SkipToken: true})
	require.NoError(t, err)
	h.prompter.done()

	assert.Equal(t, "pg", summary.Connection)
	assert.Equal(t, "env-1", summary.Environment)
	assert.Equal(t, 1, summary.Connections)
	assert.Equal(t, 1, summary.Environments)
	assert.False(t, summary.DefaultSet)
	assert.Nil(t, summary.Token)
	assert.Zero(t, h.svc.callCount("POST"))
}

func TestSetupWithoutEmbeddablesWarns(t *testing.T) {
	h := newHarness(t,
		choose("existing"),
		choose("pg"),
		no(),
		choose("env-1"),
		yes(), // generate a token
	)
	h.login(t)
	h.svc.seedConnections(map[string]any{"name": "pg", "type": "postgres"})
	h.svc.seedEnvironments(map[string]any{"id": "env-1", "name": "prod"})

	summary, err := h.orch.Setup(context.Background(), SetupOptions{})
	require.NoError(t, err)
	assert.Nil(t, summary.Token)
	require.Len(t, h.out.warnings, 1)
	assert.Contains(t, h.out.warnings[0], "No embeddables")
}

func TestSetupCancelKeepsEarlierSteps(t *testing.T) {
	h := newHarness(t,
		choose("postgres"),
		say("pg"),
		say("db.internal"),
		say(""),
		say("analytics"),
		say("reader"),
		say("s3cret"),
		cancel(),
	)
	h.login(t)

	summary, err := h.orch.Setup(context.Background(), SetupOptions{})
	assert.ErrorIs(t, err, ErrCancelled)
	require.NotNil(t, summary)
	assert.Equal(t, "pg", summary.Connection)
	assert.Equal(t, 1, h.svc.connectionCount())
	assert.Zero(t, h.svc.environmentCount())
}
