// Package rag exposes knowledge bases to agents as query-only tools.
package rag

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/util"
	"github.com/hupe1980/agentkit/tool"
)

// Document is a retrieved knowledge base passage.
type Document struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Retriever queries a knowledge base.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]Document, error)
}

// RetrieverFunc adapts a function to Retriever.
type RetrieverFunc func(ctx context.Context, query string, topK int) ([]Document, error)

// Retrieve implements Retriever.
func (f RetrieverFunc) Retrieve(ctx context.Context, query string, topK int) ([]Document, error) {
	return f(ctx, query, topK)
}

// Options configures a KnowledgeBaseTool.
type Options struct {
	Name        string
	Description string
	TopK        int
	MaxTopK     int
}

// KnowledgeBaseTool answers questions by querying a Retriever.
type KnowledgeBaseTool struct {
	retriever Retriever
	opts      Options
}

var _ tool.Tool = (*KnowledgeBaseTool)(nil)

// NewKnowledgeBaseTool creates a knowledge base tool over r.
func NewKnowledgeBaseTool(r Retriever, optFns ...func(o *Options)) *KnowledgeBaseTool {
	opts := Options{
		Name:        "knowledge_base",
		Description: "Search the knowledge base for passages relevant to a question.",
		TopK:        5,
		MaxTopK:     20,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &KnowledgeBaseTool{retriever: r, opts: opts}
}

// Name implements tool.Tool.
func (t *KnowledgeBaseTool) Name() string { return t.opts.Name }

// Description implements tool.Tool.
func (t *KnowledgeBaseTool) Description() string { return t.opts.Description }

// Kind implements tool.Tool.
func (t *KnowledgeBaseTool) Kind() tool.Kind { return tool.KindRemote }

// Parameters implements tool.Tool.
func (t *KnowledgeBaseTool) Parameters() map[string]any {
	return util.ObjectSchema(map[string]any{
		"query": map[string]any{
			"type":        "string",
			"description": "Natural language search query",
		},
		"top_k": map[string]any{
			"type":        "integer",
			"description": fmt.Sprintf("Number of passages to return (default %d)", t.opts.TopK),
		},
	}, "query")
}

// Call implements tool.Tool.
func (t *KnowledgeBaseTool) Call(tc *core.ToolContext, args map[string]any) (any, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return nil, core.NewToolError(t.Name(), core.CodeInvalidArguments, "query must not be empty", nil)
	}

	topK := t.opts.TopK
	if v, ok := args["top_k"].(float64); ok && v > 0 {
		topK = int(v)
	}

	if t.opts.MaxTopK > 0 && topK > t.opts.MaxTopK {
		topK = t.opts.MaxTopK
	}

	docs, err := t.retriever.Retrieve(tc.Context(), query, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	tc.Logger().Debug("tool.rag.retrieved", "tool", t.Name(), "query", query, "documents", len(docs))

	return map[string]any{
		"query":     query,
		"documents": docs,
	}, nil
}
