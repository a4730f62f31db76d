package impl

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaultrag-api/chunker"
	"github.com/vaultrag-api/errs"
	"github.com/vaultrag-api/models"
	"github.com/vaultrag-api/providers"
	"github.com/vaultrag-api/services"
	"github.com/vaultrag-api/vectorstore"
)

type documentServiceImpl struct {
	db       *gorm.DB
	vectors  services.VectorStore
	embedder providers.Embedder
	vaults   services.VaultService
	window   int
	overlap  int
}

func NewDocumentService(db *gorm.DB, vectors services.VectorStore, embedder providers.Embedder, vaults services.VaultService, window, overlap int) services.DocumentService {
	return &documentServiceImpl{
		db:       db,
		vectors:  vectors,
		embedder: embedder,
		vaults:   vaults,
		window:   window,
		overlap:  overlap,
	}
}

// Ingest runs the full pipeline for one document: validate, chunk, embed,
// persist the metadata row, then commit the embeddings transactionally. If
// embedding storage fails, the metadata row is removed again so no document
// is listed without being searchable.
func (s *documentServiceImpl) Ingest(ctx context.Context, req models.IngestRequest) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", errs.Validation("document text must not be empty")
	}

	if req.VaultID != nil {
		if err := s.vaults.Exists(ctx, *req.VaultID); err != nil {
			return "", err
		}
	}

	chunks := chunker.Split(req.Text, s.window, s.overlap)
	if len(chunks) == 0 {
		return "", errs.Validation("document text produced no chunks")
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return "", err
	}
	if len(vectors) != len(chunks) {
		return "", errs.Internal(fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks)))
	}

	metadata, err := models.ConvertToJSON(req.Metadata)
	if err != nil {
		return "", errs.Validation("invalid metadata: %v", err)
	}

	now := time.Now().UTC()
	doc := &models.Document{
		ID:        uuid.New().String(),
		VaultID:   req.VaultID,
		Title:     req.Title,
		Source:    req.Source,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return "", errs.StoreUnavailable(fmt.Errorf("create document: %w", err))
	}

	records := make([]vectorstore.ChunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = vectorstore.ChunkRecord{
			Ordinal:    c.Ordinal,
			Text:       c.Text,
			TokenCount: c.TokenCount,
			Vector:     vectors[i],
		}
	}
	if err := s.vectors.UpsertChunks(ctx, doc.ID, req.VaultID, req.Title, req.Source, records); err != nil {
		// Compensate: a document row without embeddings would be visible in
		// listings but invisible to retrieval.
		if derr := s.db.WithContext(ctx).Where("id = ?", doc.ID).Delete(&models.Document{}).Error; derr != nil {
			log.Printf("Failed to roll back document %s after embedding failure: %v", doc.ID, derr)
		}
		return "", err
	}

	log.Printf("Ingested document %s (%d chunks)", doc.ID, len(chunks))
	return doc.ID, nil
}

func (s *documentServiceImpl) List(ctx context.Context, vaultID *string, limit, offset int) (*models.DocumentListResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	countQuery := s.db.WithContext(ctx).Model(&models.Document{})
	if vaultID != nil {
		countQuery = countQuery.Where("vault_id = ?", *vaultID)
	}
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, errs.StoreUnavailable(fmt.Errorf("count documents: %w", err))
	}

	var docs []models.Document
	findQuery := s.db.WithContext(ctx).Model(&models.Document{})
	if vaultID != nil {
		findQuery = findQuery.Where("vault_id = ?", *vaultID)
	}
	err := findQuery.Order("created_at DESC").Limit(limit).Offset(offset).Find(&docs).Error
	if err != nil {
		return nil, errs.StoreUnavailable(fmt.Errorf("list documents: %w", err))
	}

	infos := make([]models.DocumentInfo, 0, len(docs))
	for _, doc := range docs {
		info, err := s.toInfo(ctx, doc)
		if err != nil {
			return nil, err
		}
		infos = append(infos, *info)
	}

	return &models.DocumentListResponse{
		Documents: infos,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	}, nil
}

func (s *documentServiceImpl) Get(ctx context.Context, documentID string) (*models.DocumentInfo, error) {
	var doc models.Document
	if err := s.db.WithContext(ctx).Where("id = ?", documentID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("document", documentID)
		}
		return nil, errs.StoreUnavailable(fmt.Errorf("get document: %w", err))
	}
	return s.toInfo(ctx, doc)
}

// Delete removes the document's embeddings first, then the metadata row.
// Ordered this way a crash between the steps leaves a listed-but-unsearchable
// document, never a searchable ghost.
func (s *documentServiceImpl) Delete(ctx context.Context, documentID string) error {
	var doc models.Document
	if err := s.db.WithContext(ctx).Where("id = ?", documentID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("document", documentID)
		}
		return errs.StoreUnavailable(fmt.Errorf("get document: %w", err))
	}

	if err := s.vectors.DeleteByDocument(ctx, documentID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("id = ?", documentID).Delete(&models.Document{}).Error; err != nil {
		return errs.StoreUnavailable(fmt.Errorf("delete document: %w", err))
	}

	log.Printf("Deleted document %s", documentID)
	return nil
}

func (s *documentServiceImpl) toInfo(ctx context.Context, doc models.Document) (*models.DocumentInfo, error) {
	metadata, err := models.JSONToMap(doc.Metadata)
	if err != nil {
		return nil, errs.Internal(fmt.Errorf("decode metadata for document %s: %w", doc.ID, err))
	}
	count, err := s.vectors.CountByDocument(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	return &models.DocumentInfo{
		ID:         doc.ID,
		VaultID:    doc.VaultID,
		Title:      doc.Title,
		Source:     doc.Source,
		Metadata:   metadata,
		CreatedAt:  doc.CreatedAt,
		ChunkCount: count,
	}, nil
}
