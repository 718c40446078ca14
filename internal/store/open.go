package store

import (
	"context"
	"log"

	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/config"
)

// Open builds the document handle for the configured backend. It never
// fails: a missing credential yields a handle that reports ErrUnavailable on
// every call, and remote backends connect on first use.
func Open(cfg *config.Config) Document {
	var doc Document
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Printf("INFO: Using in-memory store")
		doc = NewMemoryDocument(Schemas)
	case config.BackendSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			log.Printf("ERROR: SUPABASE_URL or SUPABASE_KEY is not set, store is unavailable")
			return Unavailable("supabase credentials are not configured")
		}
		doc = Lazy(func(ctx context.Context) (Document, error) {
			d, err := NewSupabaseDocument(cfg.SupabaseURL, cfg.SupabaseKey, Schemas)
			if err != nil {
				return nil, err
			}
			return d, nil
		})
	default:
		if len(cfg.GoogleCredentials) == 0 {
			log.Printf("ERROR: No Google service account configured, store is unavailable")
			return Unavailable("google service account is not configured")
		}
		doc = Lazy(func(ctx context.Context) (Document, error) {
			d, err := NewSheetsDocument(ctx, cfg.GoogleCredentials, cfg.SpreadsheetName, cfg.SpreadsheetID)
			if err != nil {
				return nil, err
			}
			return d, nil
		})
	}
	return WithTimeout(doc, cfg.StoreTimeout)
}
