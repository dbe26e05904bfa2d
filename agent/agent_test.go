package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/util"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/session"
	"github.com/hupe1980/agentkit/tool"
	"github.com/hupe1980/agentkit/tool/prebuilt"
	"github.com/hupe1980/agentkit/tool/rag"
)

func trendingKeywordsTool() tool.Tool {
	return tool.NewFunctionTool(
		"get_trending_keywords",
		"Return trending keywords for a topic",
		util.ObjectSchema(map[string]any{
			"topic": map[string]any{"type": "string"},
		}, "topic"),
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			topic := args["topic"].(string)
			if topic == "ai" {
				return map[string]any{
					"topic":    topic,
					"keywords": []string{"generative AI", "multi-agent systems", "LLM agents"},
				}, nil
			}

			return map[string]any{"topic": topic, "keywords": []string{"unknown"}}, nil
		},
	)
}

func failingTool() tool.Tool {
	return tool.NewFunctionTool("explode", "always fails", nil, func(*core.ToolContext, map[string]any) (any, error) {
		return nil, errors.New("kaboom")
	})
}

func action(id, name string, args map[string]any) core.RequiredAction {
	return core.RequiredAction{ID: id, ToolName: name, Arguments: args}
}

func newReadyAgent(t *testing.T, client model.Client, optFns ...func(o *Options)) (*Agent, *session.InMemoryStore) {
	t.Helper()

	store := session.NewInMemoryStore()

	a, err := New("Researcher", client, store, optFns...)
	require.NoError(t, err)
	require.NoError(t, a.Setup(context.Background()))

	return a, store
}

func withTools(items ...tool.Registrable) func(o *Options) {
	return func(o *Options) { o.Tools = items }
}

func TestNew_Validation(t *testing.T) {
	store := session.NewInMemoryStore()
	client := model.NewMockClient("m")

	_, err := New("", client, store)
	assert.Error(t, err)

	_, err = New("a", nil, store)
	assert.Error(t, err)

	_, err = New("a", client, nil)
	assert.Error(t, err)

	_, err = New("a", client, store, withTools(trendingKeywordsTool(), trendingKeywordsTool()))
	assert.ErrorIs(t, err, core.ErrDuplicateToolName)
}

func TestRun_NoToolsSingleRound(t *testing.T) {
	client := model.NewMockClient("m").AddText("hello there")
	a, store := newReadyAgent(t, client)

	resp, err := a.Run(context.Background(), "hi")
	require.NoError(t, err)

	assert.Equal(t, "hello there", resp.Output)
	assert.Equal(t, core.FinishCompleted, resp.FinishReason)
	assert.Equal(t, 1, resp.Steps)
	assert.Equal(t, 1, client.Calls())
	assert.Empty(t, resp.Actions)
	assert.NotEmpty(t, resp.SessionID)

	sess, err := store.Get(context.Background(), resp.SessionID)
	require.NoError(t, err)
	require.Len(t, sess.Turns, 2)
	assert.Equal(t, core.RoleUser, sess.Turns[0].Role)
	assert.Equal(t, core.RoleAssistant, sess.Turns[1].Role)
	assert.Equal(t, "Researcher", sess.EndpointID)
}

func TestRun_ResearcherTrendingKeywords(t *testing.T) {
	client := model.NewMockClient("m").
		AddActions(action("call_1", "get_trending_keywords", map[string]any{"topic": "ai"})).
		AddText("Trending in AI: generative AI, multi-agent systems, LLM agents")

	a, store := newReadyAgent(t, client, withTools(trendingKeywordsTool()))

	resp, err := a.Run(context.Background(), "What is trending in ai?")
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Steps)
	assert.Equal(t, core.FinishCompleted, resp.FinishReason)
	assert.Contains(t, resp.Output, "multi-agent systems")

	require.Len(t, resp.Actions, 1)
	pa := resp.Actions[0]
	assert.Equal(t, "call_1", pa.ActionID)
	assert.False(t, pa.Failed())
	assert.Equal(t, map[string]any{
		"topic":    "ai",
		"keywords": []string{"generative AI", "multi-agent systems", "LLM agents"},
	}, pa.Output)

	// The second round sees the tool result.
	reqs := client.Requests()
	require.Len(t, reqs, 2)
	last := reqs[1].Turns[len(reqs[1].Turns)-1]
	assert.Equal(t, core.RoleTool, last.Role)
	require.Len(t, last.Results, 1)
	assert.Equal(t, "call_1", last.Results[0].ActionID)

	sess, err := store.Get(context.Background(), resp.SessionID)
	require.NoError(t, err)
	require.Len(t, sess.Turns, 4)
	assert.Equal(t, []core.Role{core.RoleUser, core.RoleAssistant, core.RoleTool, core.RoleAssistant},
		[]core.Role{sess.Turns[0].Role, sess.Turns[1].Role, sess.Turns[2].Role, sess.Turns[3].Role})
}

func TestRun_UnknownTopicKeywords(t *testing.T) {
	client := model.NewMockClient("m").
		AddActions(action("call_1", "get_trending_keywords", map[string]any{"topic": "gardening"})).
		AddText("nothing notable")

	a, _ := newReadyAgent(t, client, withTools(trendingKeywordsTool()))

	resp, err := a.Run(context.Background(), "trends in gardening?")
	require.NoError(t, err)
	require.Len(t, resp.Actions, 1)
	assert.Equal(t, []string{"unknown"}, resp.Actions[0].Output.(map[string]any)["keywords"])
}

func TestRun_KToolRoundsTakeKPlusOneSteps(t *testing.T) {
	const k = 3

	client := model.NewMockClient("m")
	for i := 0; i < k; i++ {
		client.AddActions(action(fmt.Sprintf("call_%d", i), "get_trending_keywords", map[string]any{"topic": "ai"}))
	}

	client.AddText("final")

	a, _ := newReadyAgent(t, client, withTools(trendingKeywordsTool()))

	resp, err := a.Run(context.Background(), "go")
	require.NoError(t, err)

	assert.Equal(t, k+1, resp.Steps)
	assert.Equal(t, k+1, client.Calls())
	assert.Len(t, resp.Actions, k)
	assert.Equal(t, "final", resp.Output)
}

func TestRun_StepLimitReached(t *testing.T) {
	client := model.NewMockClient("m")

	var n int

	client.SetScript(func(_ context.Context, _ *model.Request) (*model.Response, error) {
		n++

		return &model.Response{
			Text:         fmt.Sprintf("thinking %d", n),
			Actions:      []core.RequiredAction{action(fmt.Sprintf("call_%d", n), "get_trending_keywords", map[string]any{"topic": "ai"})},
			FinishReason: "tool_calls",
		}, nil
	})

	a, _ := newReadyAgent(t, client, withTools(trendingKeywordsTool()), func(o *Options) { o.MaxSteps = 5 })

	resp, err := a.Run(context.Background(), "loop forever", func(o *RunOptions) { o.MaxSteps = 3 })
	require.NoError(t, err)

	assert.Equal(t, core.FinishStepLimitReached, resp.FinishReason)
	assert.Equal(t, 3, resp.Steps)
	assert.Equal(t, 3, client.Calls())
	assert.Equal(t, "thinking 3", resp.Output)
	assert.Len(t, resp.Actions, 3)
}

func TestRun_AgentDefaultMaxSteps(t *testing.T) {
	client := model.NewMockClient("m")
	client.SetScript(func(_ context.Context, _ *model.Request) (*model.Response, error) {
		return &model.Response{Actions: []core.RequiredAction{action("", "get_trending_keywords", map[string]any{"topic": "ai"})}}, nil
	})

	a, _ := newReadyAgent(t, client, withTools(trendingKeywordsTool()), func(o *Options) { o.MaxSteps = 2 })

	resp, err := a.Run(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Steps)
	assert.Equal(t, core.FinishStepLimitReached, resp.FinishReason)
}

func TestRun_NonPositiveMaxStepsFallsBackToDefault(t *testing.T) {
	for _, maxSteps := range []int{0, -1} {
		t.Run(fmt.Sprintf("max_steps=%d", maxSteps), func(t *testing.T) {
			client := model.NewMockClient("m")
			client.SetScript(func(_ context.Context, _ *model.Request) (*model.Response, error) {
				return &model.Response{Actions: []core.RequiredAction{action("", "get_trending_keywords", map[string]any{"topic": "ai"})}}, nil
			})

			a, _ := newReadyAgent(t, client, withTools(trendingKeywordsTool()), func(o *Options) { o.MaxSteps = maxSteps })

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			resp, err := a.Run(ctx, "go", func(o *RunOptions) { o.MaxSteps = maxSteps })
			require.NoError(t, err)
			assert.Equal(t, core.FinishStepLimitReached, resp.FinishReason)
			assert.Equal(t, DefaultMaxSteps, resp.Steps)
			assert.Equal(t, DefaultMaxSteps, client.Calls())
		})
	}
}

func TestRun_ToolFailuresBecomeResults(t *testing.T) {
	client := model.NewMockClient("m").
		AddActions(
			action("a1", "explode", map[string]any{}),
			action("a2", "does_not_exist", map[string]any{}),
			action("a3", "get_trending_keywords", map[string]any{}),
		).
		AddText("recovered")

	a, _ := newReadyAgent(t, client, withTools(trendingKeywordsTool(), failingTool()))

	resp, err := a.Run(context.Background(), "go")
	require.NoError(t, err)

	assert.Equal(t, "recovered", resp.Output)
	require.Len(t, resp.Actions, 3)

	for _, pa := range resp.Actions {
		assert.True(t, pa.Failed(), pa.ActionID)
	}

	assert.Contains(t, resp.Actions[0].Error, "kaboom")
	assert.Contains(t, resp.Actions[1].Error, core.CodeUnknownTool)
	assert.Contains(t, resp.Actions[2].Error, core.CodeInvalidArguments)
}

func TestRun_StopOnToolError(t *testing.T) {
	client := model.NewMockClient("m").
		AddResponse(&model.Response{Text: "trying", Actions: []core.RequiredAction{action("a1", "explode", nil)}}).
		AddText("never reached")

	a, _ := newReadyAgent(t, client, withTools(failingTool()))

	resp, err := a.Run(context.Background(), "go", func(o *RunOptions) { o.StopOnToolError = true })
	require.NoError(t, err)

	assert.Equal(t, core.FinishToolErrorTerminal, resp.FinishReason)
	assert.Equal(t, "trying", resp.Output)
	assert.Equal(t, 1, client.Calls())
}

func TestRun_ToolsRunConcurrentlyInActionOrder(t *testing.T) {
	var started sync.WaitGroup

	started.Add(2)

	release := make(chan struct{})

	go func() {
		started.Wait()
		close(release)
	}()

	slow := tool.NewFunctionTool("slow", "", nil, func(*core.ToolContext, map[string]any) (any, error) {
		started.Done()

		select {
		case <-release:
		case <-time.After(2 * time.Second):
			return nil, errors.New("tools did not run concurrently")
		}

		time.Sleep(20 * time.Millisecond)

		return "slow", nil
	})

	fast := tool.NewFunctionTool("fast", "", nil, func(*core.ToolContext, map[string]any) (any, error) {
		started.Done()

		select {
		case <-release:
		case <-time.After(2 * time.Second):
			return nil, errors.New("tools did not run concurrently")
		}

		return "fast", nil
	})

	client := model.NewMockClient("m").
		AddActions(action("first", "slow", map[string]any{}), action("second", "fast", map[string]any{})).
		AddText("done")

	a, _ := newReadyAgent(t, client, withTools(slow, fast))

	resp, err := a.Run(context.Background(), "go")
	require.NoError(t, err)
	require.Len(t, resp.Actions, 2)

	assert.Equal(t, "first", resp.Actions[0].ActionID)
	assert.Equal(t, "slow", resp.Actions[0].Output)
	assert.Equal(t, "second", resp.Actions[1].ActionID)
	assert.Equal(t, "fast", resp.Actions[1].Output)

	toolTurn := client.Requests()[1].Turns[2]
	require.Len(t, toolTurn.Results, 2)
	assert.Equal(t, "first", toolTurn.Results[0].ActionID)
}

func TestRun_Hooks(t *testing.T) {
	client := model.NewMockClient("m").
		AddActions(
			action("a1", "get_trending_keywords", map[string]any{"topic": "ai"}),
			action("a2", "explode", map[string]any{}),
		).
		AddText("ok")

	a, _ := newReadyAgent(t, client, withTools(trendingKeywordsTool(), failingTool()))

	var (
		remote    int
		fulfilled []string
	)

	resp, err := a.Run(context.Background(), "go", func(o *RunOptions) {
		o.OnInvokedRemoteService = func(req *model.Request, resp *model.Response) {
			remote++
			assert.NotEmpty(t, req.SessionID)
			assert.NotNil(t, resp)
		}
		o.OnFulfilledRequiredAction = func(required core.RequiredAction, performed core.PerformedAction) {
			assert.Equal(t, required.ID, performed.ActionID)
			fulfilled = append(fulfilled, required.ID)
		}
	})
	require.NoError(t, err)

	assert.Equal(t, "ok", resp.Output)
	assert.Equal(t, 2, remote)
	assert.Equal(t, []string{"a1", "a2"}, fulfilled)
}

func TestRun_PanickingHooksAreIsolated(t *testing.T) {
	client := model.NewMockClient("m").
		AddActions(action("a1", "get_trending_keywords", map[string]any{"topic": "ai"})).
		AddText("still fine")

	a, _ := newReadyAgent(t, client, withTools(trendingKeywordsTool()))

	resp, err := a.Run(context.Background(), "go", func(o *RunOptions) {
		o.OnInvokedRemoteService = func(*model.Request, *model.Response) { panic("observer bug") }
		o.OnFulfilledRequiredAction = func(core.RequiredAction, core.PerformedAction) { panic("observer bug") }
	})
	require.NoError(t, err)
	assert.Equal(t, "still fine", resp.Output)
	assert.Equal(t, 2, resp.Steps)
}

func TestRun_SessionContinuity(t *testing.T) {
	client := model.NewMockClient("m").AddText("first answer").AddText("second answer")
	a, store := newReadyAgent(t, client)
	ctx := context.Background()

	first, err := a.Run(ctx, "one")
	require.NoError(t, err)

	second, err := a.Run(ctx, "two", func(o *RunOptions) { o.SessionID = first.SessionID })
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	reqs := client.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, first.SessionID, reqs[1].SessionID)
	assert.Len(t, reqs[1].Turns, 3)
	assert.Equal(t, "first answer", reqs[1].Turns[1].Text)

	sess, err := store.Get(ctx, first.SessionID)
	require.NoError(t, err)
	assert.Len(t, sess.Turns, 4)
}

func TestRun_SupportAgentAcrossTwoTurns(t *testing.T) {
	const clientContext = "[Context: The logged in user ID is: user_123] "

	client := model.NewMockClient("m").
		AddActions(action("kb_1", "knowledge_base", map[string]any{"query": "responses api"})).
		AddText("The Responses API is available on the Enterprise plan.").
		AddActions(action("u1", "get_user_info", map[string]any{"user_id": "user_123"})).
		AddActions(action("o1", "get_org_info", map[string]any{"org_id": "org_456"})).
		AddText("Yes, your org is on the Enterprise plan.")

	retriever := rag.NewMemoryRetriever(rag.Document{ID: "responses_api", Content: "The Responses API is available to organizations on the Enterprise plan."})

	a, store := newReadyAgent(t, client, withTools(
		rag.NewKnowledgeBaseTool(retriever),
		prebuilt.AccountToolkit(prebuilt.DemoAccountDirectory()),
	))
	ctx := context.Background()

	first, err := a.Run(ctx, clientContext+"Tell me about the Responses API?")
	require.NoError(t, err)
	require.Len(t, first.Actions, 1)
	assert.False(t, first.Actions[0].Failed())

	second, err := a.Run(ctx, clientContext+"Is my user account eligible for the Responses API?", func(o *RunOptions) {
		o.SessionID = first.SessionID
	})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, 3, second.Steps)
	assert.Equal(t, "Yes, your org is on the Enterprise plan.", second.Output)

	require.Len(t, second.Actions, 2)
	assert.Equal(t, "org_456", second.Actions[0].Output.(prebuilt.User).OrgID)
	assert.Equal(t, "Enterprise", second.Actions[1].Output.(prebuilt.Org).Plan)

	sess, err := store.Get(ctx, first.SessionID)
	require.NoError(t, err)
	require.Len(t, sess.Turns, 10)
	assert.Equal(t, clientContext+"Is my user account eligible for the Responses API?", sess.Turns[4].Text)
}

func TestRun_SessionIDForwardedEveryRound(t *testing.T) {
	client := model.NewMockClient("m").
		AddActions(action("a1", "get_trending_keywords", map[string]any{"topic": "ai"})).
		AddActions(action("a2", "get_trending_keywords", map[string]any{"topic": "go"})).
		AddText("done")

	a, _ := newReadyAgent(t, client, withTools(trendingKeywordsTool()))

	resp, err := a.Run(context.Background(), "go")
	require.NoError(t, err)

	for _, req := range client.Requests() {
		assert.Equal(t, resp.SessionID, req.SessionID)
		assert.Equal(t, "Researcher", req.EndpointID)
		assert.Equal(t, a.Revision(), req.Revision)
		assert.Len(t, req.Tools, 1)
	}
}

func TestRun_SessionNotFound(t *testing.T) {
	client := model.NewMockClient("m").AddText("hi")
	a, store := newReadyAgent(t, client)
	ctx := context.Background()

	_, err := a.Run(ctx, "x", func(o *RunOptions) { o.SessionID = "missing" })
	assert.ErrorIs(t, err, core.ErrSessionNotFound)

	resp, err := a.Run(ctx, "x")
	require.NoError(t, err)
	require.NoError(t, a.DeleteSession(ctx, resp.SessionID))

	_, err = a.Run(ctx, "y", func(o *RunOptions) { o.SessionID = resp.SessionID })
	assert.ErrorIs(t, err, core.ErrSessionNotFound)

	foreign, err := store.Create(ctx, "SomeoneElse")
	require.NoError(t, err)

	_, err = a.Run(ctx, "z", func(o *RunOptions) { o.SessionID = foreign })
	assert.ErrorIs(t, err, core.ErrSessionNotFound)

	assert.Equal(t, 1, client.Calls())
}

func TestDeleteSession_Unknown(t *testing.T) {
	a, _ := newReadyAgent(t, model.NewMockClient("m"))

	err := a.DeleteSession(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestRun_SetupRequired(t *testing.T) {
	client := model.NewMockClient("m").AddText("a").AddText("b")
	store := session.NewInMemoryStore()
	ctx := context.Background()

	a, err := New("Researcher", client, store)
	require.NoError(t, err)
	assert.False(t, a.Ready())

	_, err = a.Run(ctx, "hi")
	assert.ErrorIs(t, err, core.ErrSetupRequired)

	require.NoError(t, a.Setup(ctx))
	assert.True(t, a.Ready())

	_, err = a.Run(ctx, "hi")
	require.NoError(t, err)

	require.NoError(t, a.AddTools(trendingKeywordsTool()))
	assert.False(t, a.Ready())

	_, err = a.Run(ctx, "hi")
	assert.ErrorIs(t, err, core.ErrSetupRequired)

	require.NoError(t, a.Setup(ctx))

	_, err = a.Run(ctx, "hi")
	require.NoError(t, err)

	a.SetInstructions(NewInstructionFromText("be brief"))

	_, err = a.Run(ctx, "hi")
	assert.ErrorIs(t, err, core.ErrSetupRequired)
}

func TestSetup_IdempotentAndRegisters(t *testing.T) {
	client := model.NewMockClient("m")
	a, err := New("Researcher", client, session.NewInMemoryStore(), func(o *Options) {
		o.Instructions = NewInstructionFromTemplate("You research {{.domain}}.", map[string]any{"domain": "tech"})
		o.Tools = []tool.Registrable{trendingKeywordsTool()}
	})
	require.NoError(t, err)

	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			assert.NoError(t, a.Setup(ctx))
		}()
	}

	wg.Wait()

	require.NoError(t, a.Setup(ctx))

	regs := client.Registrations()
	require.Len(t, regs, 1)
	assert.Equal(t, "Researcher", regs[0].AgentName)
	assert.Equal(t, "You research tech.", regs[0].Instructions)
	assert.Len(t, regs[0].Tools, 1)
	assert.Equal(t, a.Revision(), regs[0].Revision)

	prev := a.Revision()

	require.NoError(t, a.AddTools(failingTool()))
	require.NoError(t, a.Setup(ctx))
	assert.Len(t, client.Registrations(), 2)
	assert.NotEqual(t, prev, a.Revision())
}

type failingRegistrar struct {
	*model.MockClient
}

func (failingRegistrar) Register(context.Context, model.Registration) error {
	return errors.New("endpoint unavailable")
}

func TestSetup_SyncError(t *testing.T) {
	a, err := New("Researcher", failingRegistrar{model.NewMockClient("m")}, session.NewInMemoryStore())
	require.NoError(t, err)

	err = a.Setup(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSync)

	var syncErr *core.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, "Researcher", syncErr.Agent)
	assert.False(t, a.Ready())
}

func TestSetup_InstructionProviderError(t *testing.T) {
	a, err := New("Researcher", model.NewMockClient("m"), session.NewInMemoryStore(), func(o *Options) {
		o.Instructions = NewInstructionFromFunc(func(context.Context) (string, error) {
			return "", errors.New("no prompt")
		})
	})
	require.NoError(t, err)

	assert.ErrorIs(t, a.Setup(context.Background()), core.ErrSync)
}

func TestRun_FatalRemote(t *testing.T) {
	client := model.NewMockClient("m").
		AddActions(action("a1", "get_trending_keywords", map[string]any{"topic": "ai"})).
		AddError(errors.New("service down"))

	a, store := newReadyAgent(t, client, withTools(trendingKeywordsTool()))

	sid, err := store.Create(context.Background(), "Researcher")
	require.NoError(t, err)

	_, err = a.Run(context.Background(), "go", func(o *RunOptions) { o.SessionID = sid })
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrFatalRemote)

	var remoteErr *core.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, 2, remoteErr.Step)
	assert.Contains(t, err.Error(), "service down")

	// The completed first round stays persisted.
	sess, err := store.Get(context.Background(), sid)
	require.NoError(t, err)
	assert.Len(t, sess.Turns, 3)
}

func TestRun_FatalRemoteOnFirstRoundDiscardsNewSession(t *testing.T) {
	client := model.NewMockClient("m").AddError(errors.New("service down"))

	a, store := newReadyAgent(t, client)

	_, err := a.Run(context.Background(), "go")
	require.ErrorIs(t, err, core.ErrFatalRemote)
	assert.Equal(t, 0, store.Len())
}

func TestRun_FatalRemoteKeepsCallerSession(t *testing.T) {
	client := model.NewMockClient("m").AddError(errors.New("service down"))

	a, store := newReadyAgent(t, client)

	sid, err := store.Create(context.Background(), a.EndpointID())
	require.NoError(t, err)

	_, err = a.Run(context.Background(), "go", func(o *RunOptions) { o.SessionID = sid })
	require.ErrorIs(t, err, core.ErrFatalRemote)

	sess, err := store.Get(context.Background(), sid)
	require.NoError(t, err)
	assert.Empty(t, sess.Turns)
}

func TestRun_UsageAndSampling(t *testing.T) {
	client := model.NewMockClient("m").
		AddResponse(&model.Response{Text: "x", Usage: core.Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5}})

	temp := 0.2
	maxTokens := 64

	a, _ := newReadyAgent(t, client, func(o *Options) {
		o.Sampling = model.Sampling{Temperature: &temp, MaxTokens: &maxTokens}
	})

	override := 0.9

	resp, err := a.Run(context.Background(), "hi", func(o *RunOptions) {
		o.Sampling = model.Sampling{Temperature: &override}
	})
	require.NoError(t, err)

	assert.Equal(t, 5, resp.Usage.TotalTokens)

	req := client.Requests()[0]
	require.NotNil(t, req.Sampling.Temperature)
	assert.InDelta(t, 0.9, *req.Sampling.Temperature, 1e-9)
	require.NotNil(t, req.Sampling.MaxTokens)
	assert.Equal(t, 64, *req.Sampling.MaxTokens)
}

func TestAsTool_IndependentStepBudget(t *testing.T) {
	noop := tool.NewFunctionTool("noop", "", nil, func(*core.ToolContext, map[string]any) (any, error) {
		return "ok", nil
	})

	workerClient := model.NewMockClient("worker")
	workerClient.SetScript(func(_ context.Context, _ *model.Request) (*model.Response, error) {
		return &model.Response{
			Text:    "worker partial",
			Actions: []core.RequiredAction{action("", "noop", map[string]any{})},
		}, nil
	})

	store := session.NewInMemoryStore()
	ctx := context.Background()

	worker, err := New("Worker", workerClient, store, func(o *Options) {
		o.Tools = []tool.Registrable{noop}
		o.MaxSteps = 10
	})
	require.NoError(t, err)
	require.NoError(t, worker.Setup(ctx))

	workerTool := worker.AsTool("ask_worker", "Delegate to the worker", func(o *AgentToolOptions) { o.MaxSteps = 2 })
	assert.Equal(t, tool.KindAgent, workerTool.Kind())

	supervisorClient := model.NewMockClient("supervisor").
		AddActions(action("d1", "ask_worker", map[string]any{"input": "research ai"})).
		AddText("summary")

	supervisor, err := New("Supervisor", supervisorClient, store, func(o *Options) {
		o.Tools = []tool.Registrable{workerTool}
		o.MaxSteps = 3
	})
	require.NoError(t, err)
	require.NoError(t, supervisor.Setup(ctx))

	resp, err := supervisor.Run(ctx, "coordinate")
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Steps)
	assert.Equal(t, "summary", resp.Output)
	require.Len(t, resp.Actions, 1)
	assert.Equal(t, "worker partial", resp.Actions[0].Output)
	assert.Equal(t, 2, workerClient.Calls())

	// The worker ran in its own session.
	assert.NotEqual(t, resp.SessionID, workerClient.Requests()[0].SessionID)
}

func TestAsTool_Parameters(t *testing.T) {
	a, _ := newReadyAgent(t, model.NewMockClient("m"), func(o *Options) { o.Description = "Finds trends" })

	at := a.AsTool("", "")
	assert.Equal(t, "Researcher", at.Name())
	assert.Equal(t, "Finds trends", at.Description())
	assert.Equal(t, []string{"input"}, util.RequiredFields(at.Parameters()))
}

func TestFinishReasonOf(t *testing.T) {
	assert.Equal(t, core.FinishCompleted, finishReasonOf(""))
	assert.Equal(t, core.FinishCompleted, finishReasonOf("stop"))
	assert.Equal(t, core.FinishCompleted, finishReasonOf("end_turn"))
	assert.Equal(t, core.FinishCompleted, finishReasonOf("FinishReasonStop"))
	assert.Equal(t, core.FinishOther, finishReasonOf("length"))
	assert.Equal(t, core.FinishOther, finishReasonOf("content_filter"))
}

func TestInstruction_Resolve(t *testing.T) {
	ctx := context.Background()

	static := NewInstructionFromText("static")
	assert.True(t, static.IsStatic())

	got, err := static.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "static", got)

	tmpl := NewInstructionFromTemplate("Hello {{.name | upper}}", map[string]any{"name": "ada"})
	assert.False(t, tmpl.IsStatic())

	got, err = tmpl.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hello ADA", got)

	dyn := NewInstructionFromFunc(func(context.Context) (string, error) { return "dynamic", nil })
	got, err = dyn.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dynamic", got)
}
