package rag

import (
	"context"
	"fmt"
	"sync"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/tmc/langchaingo/embeddings"
)

// PineconeOptions configures a PineconeRetriever.
type PineconeOptions struct {
	IndexName string
	Namespace string
	// ContentKey is the metadata field holding the passage text.
	ContentKey string
}

// PineconeRetriever queries a Pinecone index with embeddings from a
// langchaingo embedder.
type PineconeRetriever struct {
	client   *pinecone.Client
	embedder embeddings.Embedder
	opts     PineconeOptions

	once    sync.Once
	idxConn *pinecone.IndexConnection
	connErr error
}

var _ Retriever = (*PineconeRetriever)(nil)

// NewPineconeRetriever creates a retriever. The index connection is opened
// on first use.
func NewPineconeRetriever(client *pinecone.Client, embedder embeddings.Embedder, optFns ...func(o *PineconeOptions)) (*PineconeRetriever, error) {
	opts := PineconeOptions{ContentKey: "content"}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.IndexName == "" {
		return nil, fmt.Errorf("pinecone index name is required")
	}

	return &PineconeRetriever{client: client, embedder: embedder, opts: opts}, nil
}

// NewPineconeClient creates a Pinecone client from an API key.
func NewPineconeClient(apiKey string) (*pinecone.Client, error) {
	pc, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create pinecone client: %w", err)
	}

	return pc, nil
}

func (r *PineconeRetriever) conn(ctx context.Context) (*pinecone.IndexConnection, error) {
	r.once.Do(func() {
		idxDesc, err := r.client.DescribeIndex(ctx, r.opts.IndexName)
		if err != nil {
			r.connErr = fmt.Errorf("describe index: %w", err)
			return
		}

		r.idxConn, r.connErr = r.client.Index(pinecone.NewIndexConnParams{
			Host:      idxDesc.Host,
			Namespace: r.opts.Namespace,
		})
	})

	return r.idxConn, r.connErr
}

// Retrieve implements Retriever.
func (r *PineconeRetriever) Retrieve(ctx context.Context, query string, topK int) ([]Document, error) {
	idxConn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	result, err := idxConn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeValues:   false,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}

	docs := make([]Document, 0, len(result.Matches))

	for _, match := range result.Matches {
		if match == nil || match.Vector == nil {
			continue
		}

		doc := Document{ID: match.Vector.Id, Score: float64(match.Score)}

		if match.Vector.Metadata != nil {
			doc.Metadata = match.Vector.Metadata.AsMap()
			if content, ok := doc.Metadata[r.opts.ContentKey].(string); ok {
				doc.Content = content
			}
		}

		docs = append(docs, doc)
	}

	return docs, nil
}
