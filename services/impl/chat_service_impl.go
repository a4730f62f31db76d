package impl

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/vaultrag-api/models"
	"github.com/vaultrag-api/providers"
	"github.com/vaultrag-api/services"
	"github.com/vaultrag-api/services/memory"
	"github.com/vaultrag-api/vectorstore"
)

// ChatOptions carries the tunables of a chat turn. Non-positive counts fall
// back to the service defaults at construction. Temperature zero is a valid
// setting; a negative DefaultTemperature selects the default.
type ChatOptions struct {
	EmbeddingModel     string
	MaxHistory         int
	TopKDefault        int
	DefaultTemperature float64
	MaxContextChars    int
}

type chatServiceImpl struct {
	sessions  services.SessionService
	messages  services.MessageService
	agents    services.AgentService
	vectors   services.VectorStore
	embedder  providers.Embedder
	completer providers.ChatCompleter
	cache     services.EmbeddingCache
	locks     *memory.SessionLocks
	opts      ChatOptions
}

func NewChatService(
	sessions services.SessionService,
	messages services.MessageService,
	agents services.AgentService,
	vectors services.VectorStore,
	embedder providers.Embedder,
	completer providers.ChatCompleter,
	cache services.EmbeddingCache,
	locks *memory.SessionLocks,
	opts ChatOptions,
) services.ChatService {
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = 10
	}
	if opts.TopKDefault <= 0 {
		opts.TopKDefault = 5
	}
	if opts.DefaultTemperature < 0 {
		opts.DefaultTemperature = 0.3
	}
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = 8000
	}
	return &chatServiceImpl{
		sessions:  sessions,
		messages:  messages,
		agents:    agents,
		vectors:   vectors,
		embedder:  embedder,
		completer: completer,
		cache:     cache,
		locks:     locks,
		opts:      opts,
	}
}

// Chat runs one full turn. The session lock is held for the whole turn, so
// concurrent requests against the same session serialize and their message
// pairs never interleave.
//
// The user message is persisted before the completion call: if the provider
// fails, the turn errors but the user message survives, and no assistant
// message is written.
func (s *chatServiceImpl) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	if err := ValidateChatRequest(req); err != nil {
		return nil, err
	}

	release := s.locks.Lock(req.SessionID)
	defer release()

	vaultID := req.VaultID
	systemPrompt := DefaultSystemPrompt
	if req.AgentID != nil {
		agent, err := s.agents.Get(ctx, *req.AgentID)
		if err != nil {
			return nil, err
		}
		vaultID = &agent.VaultID
		systemPrompt = agent.SystemPrompt
	}

	topK := s.opts.TopKDefault
	temperature := s.opts.DefaultTemperature
	if req.Config != nil {
		if req.Config.TopK != nil {
			topK = *req.Config.TopK
		}
		if req.Config.Temperature != nil {
			temperature = *req.Config.Temperature
		}
	}

	if _, err := s.sessions.GetOrCreate(ctx, req.SessionID, nil); err != nil {
		return nil, err
	}

	// History is loaded before the new user message is saved, so the prompt
	// never contains the question twice.
	history, err := s.messages.Recent(ctx, req.SessionID, s.opts.MaxHistory)
	if err != nil {
		return nil, err
	}

	// Persisting the user message and embedding the query are independent;
	// a plain group (no shared cancel) lets the persist finish even when the
	// embedding fails, keeping the user's intent durable.
	var queryVector []float32
	var g errgroup.Group
	g.Go(func() error {
		_, err := s.messages.Save(ctx, req.SessionID, models.RoleUser, req.Message)
		return err
	})
	g.Go(func() error {
		var err error
		queryVector, err = s.embedQuery(ctx, req.Message)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// An unknown or deleted vault is not an error here: retrieval over it is
	// simply empty and the model answers without context.
	results, err := s.vectors.Search(ctx, queryVector, topK, vaultID)
	if err != nil {
		return nil, err
	}

	prompt := composePrompt(systemPrompt, results, memory.ToPrompt(history), req.Message, s.opts.MaxContextChars)
	answer, err := s.completer.Complete(ctx, prompt, temperature)
	if err != nil {
		return nil, err
	}

	if _, err := s.messages.Save(ctx, req.SessionID, models.RoleAssistant, answer); err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateLastActive(ctx, req.SessionID); err != nil {
		// The turn already succeeded; activity tracking is advisory.
		log.Printf("Failed to update activity for session %s: %v", req.SessionID, err)
	}

	return &models.ChatResponse{
		SessionID: req.SessionID,
		Answer:    answer,
		Sources:   toSources(results),
	}, nil
}

func (s *chatServiceImpl) embedQuery(ctx context.Context, text string) ([]float32, error) {
	if s.cache != nil {
		if vec, ok := s.cache.Get(ctx, s.opts.EmbeddingModel, text); ok {
			return vec, nil
		}
	}
	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Put(ctx, s.opts.EmbeddingModel, text, vectors[0])
	}
	return vectors[0], nil
}

func toSources(results []vectorstore.SearchResult) []models.Source {
	sources := make([]models.Source, len(results))
	for i, r := range results {
		sources[i] = models.Source{
			DocumentID: r.DocumentID,
			Title:      r.Title,
			Snippet:    r.Snippet,
			Score:      r.Score,
		}
	}
	return sources
}
