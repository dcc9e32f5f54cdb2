package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/supabase-community/supabase-go"

	"prism-studio-server/modules/common/config"
)

// ObjectStore - minimal surface of the temporary upload bucket
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(path string) string
	Remove(ctx context.Context, path string) error
}

// SupabaseStore - temp bucket backed by Supabase Storage
type SupabaseStore struct {
	client *supabase.Client
	bucket string
}

// NewSupabaseStore - nil when Supabase is not configured; staged delivery
// then reports remediation instead of silently falling back
func NewSupabaseStore() *SupabaseStore {
	cfg := config.GetConfig()

	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		log.Println("⚠️ Supabase not configured - staged delivery disabled")
		return nil
	}

	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		log.Printf("❌ Failed to create Supabase client: %v", err)
		return nil
	}

	log.Printf("✅ Supabase storage initialized (bucket: %s)", cfg.StorageBucket)
	return &SupabaseStore{
		client: client,
		bucket: cfg.StorageBucket,
	}
}

// Upload - put the object into the temp bucket
func (s *SupabaseStore) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "image/jpeg"
	}

	_, err := s.client.Storage.UploadFile(s.bucket, path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("storage upload failed: %w", err)
	}

	log.Printf("📤 Uploaded %d bytes to %s/%s (%s)", len(data), s.bucket, path, contentType)
	return nil
}

// PublicURL - dereferenceable address for the staged object
func (s *SupabaseStore) PublicURL(path string) string {
	resp := s.client.Storage.GetPublicUrl(s.bucket, path)
	return resp.SignedURL
}

// Remove - delete the staged object
func (s *SupabaseStore) Remove(ctx context.Context, path string) error {
	if _, err := s.client.Storage.RemoveFile(s.bucket, []string{path}); err != nil {
		return fmt.Errorf("storage remove failed: %w", err)
	}
	return nil
}
