package prebuilt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/tool"
)

func TestAccountToolkit(t *testing.T) {
	r := tool.NewRegistry()
	require.NoError(t, r.Register(AccountToolkit(DemoAccountDirectory())))

	assert.Equal(t, []string{"get_user_info", "get_org_info"}, r.Names())

	tc := core.NewToolContext(context.Background())

	got, err := r.Invoke(tc, "get_user_info", map[string]any{"user_id": "user_123"})
	require.NoError(t, err)

	user, ok := got.(User)
	require.True(t, ok)
	assert.Equal(t, "org_456", user.OrgID)

	got, err = r.Invoke(tc, "get_org_info", map[string]any{"org_id": user.OrgID})
	require.NoError(t, err)
	assert.Equal(t, Org{ID: "org_456", Name: "Acme Corp", Plan: "Enterprise"}, got)
}

func TestAccountToolkit_Errors(t *testing.T) {
	dir := NewAccountDirectory(nil, nil)

	r := tool.NewRegistry()
	require.NoError(t, r.Register(AccountToolkit(dir)))

	tc := core.NewToolContext(context.Background())

	_, err := r.Invoke(tc, "get_user_info", map[string]any{"user_id": "user_404"})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, err, core.ErrToolExecution)

	_, err = r.Invoke(tc, "get_org_info", map[string]any{"org_id": nil})
	assert.ErrorIs(t, err, core.ErrInvalidArguments)

	dir.PutOrg(Org{ID: "org_1", Name: "Globex", Plan: "Enterprise"})

	got, err := r.Invoke(tc, "get_org_info", map[string]any{"org_id": "org_1"})
	require.NoError(t, err)
	assert.Equal(t, "Globex", got.(Org).Name)
}
