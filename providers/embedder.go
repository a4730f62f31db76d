package providers

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vaultrag-api/errs"
)

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingData struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type embeddingResponse struct {
	Data []embeddingData `json:"data"`
}

// Embed returns one vector per input text, in input order. Large inputs are
// split into batches of EmbedBatchSize which may run in parallel; in-flight
// requests stay bounded by the client semaphore.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	for offset := 0; offset < len(texts); offset += c.cfg.EmbedBatchSize {
		start := offset
		end := offset + c.cfg.EmbedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		g.Go(func() error {
			var resp embeddingResponse
			err := c.postJSON(gctx, "/v1/embeddings", embeddingRequest{
				Model: c.cfg.EmbeddingModel,
				Input: batch,
			}, &resp)
			if err != nil {
				return err
			}

			if len(resp.Data) != len(batch) {
				return errs.ProviderPermanent(fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(batch), len(resp.Data)))
			}

			for _, d := range resp.Data {
				if d.Index < 0 || d.Index >= len(batch) {
					return errs.ProviderPermanent(fmt.Errorf("embedding index %d out of range for batch of %d", d.Index, len(batch)))
				}
				if len(d.Embedding) != c.cfg.EmbeddingDimension {
					return errs.ProviderPermanent(fmt.Errorf("embedding dimension mismatch: expected %d, got %d", c.cfg.EmbeddingDimension, len(d.Embedding)))
				}
				vectors[start+d.Index] = d.Embedding
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, v := range vectors {
		if v == nil {
			return nil, errs.ProviderPermanent(fmt.Errorf("no embedding returned for input %d", i))
		}
	}

	return vectors, nil
}
