package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// Bootstraps the relational schema and the pgvector embedding store without
// going through the server. Useful for provisioning a fresh database before
// the first deploy: go run scripts/create_tables.go
func main() {
	fmt.Println("Creating RAG service database tables...")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost port=5432 user=raguser password=ragpassword dbname=rag sslmode=disable"
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	dimension := 1536
	if v := os.Getenv("EMBEDDING_DIMENSION"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &dimension); err != nil {
			log.Fatal("Invalid EMBEDDING_DIMENSION:", err)
		}
	}

	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,

		`CREATE TABLE IF NOT EXISTS vaults (
			vault_id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			vault_id TEXT REFERENCES vaults(vault_id) ON DELETE CASCADE,
			title TEXT,
			source TEXT,
			metadata_json JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_vault_id ON documents (vault_id)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_created ON documents (created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_active_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_last_active ON sessions (last_active_at)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			role TEXT NOT NULL CHECK (role IN ('user', 'assistant', 'system')),
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session_created ON messages (session_id, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS agents (
			agent_id TEXT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			vault_id TEXT NOT NULL REFERENCES vaults(vault_id) ON DELETE CASCADE,
			system_prompt TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT idx_agents_vault_name UNIQUE (vault_id, name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_agents_created ON agents (created_at DESC)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunk_embeddings (
			chunk_id UUID PRIMARY KEY,
			document_id TEXT NOT NULL,
			vault_id TEXT,
			ordinal INT NOT NULL,
			text TEXT NOT NULL,
			token_count INT NOT NULL,
			title TEXT,
			source TEXT,
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, dimension),
		`CREATE INDEX IF NOT EXISTS idx_chunk_embeddings_document ON chunk_embeddings (document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chunk_embeddings_vault ON chunk_embeddings (vault_id)`,
	}

	for i, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("Statement %d failed: %v", i+1, err)
		}
	}

	// The ivfflat index needs data to pick sensible clusters; creating it
	// up front is still fine for a fresh install.
	_, err = db.Exec(`DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_indexes
		WHERE schemaname = current_schema()
			AND indexname = 'idx_chunk_embeddings_embedding'
	) THEN
		EXECUTE 'CREATE INDEX idx_chunk_embeddings_embedding ON chunk_embeddings USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)';
	END IF;
END
$$`)
	if err != nil {
		log.Fatal("Failed to create vector index:", err)
	}

	fmt.Println("All tables created successfully.")
}
