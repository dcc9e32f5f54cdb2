package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"prism-studio-server/modules/common/utils"
)

const (
	// InlineThreshold - payloads at or under this size ride inside the
	// downstream request body as a data URL
	InlineThreshold = 500 * 1024

	// MaxUploadSize - hard cap on an uploaded image
	MaxUploadSize = 10 << 20
)

// Mode - how the image reaches the downstream provider
type Mode string

const (
	ModeInline Mode = "inline"
	ModeStaged Mode = "staged"
)

// Decide - pure size-based strategy selection
func Decide(size int64, threshold int64) Mode {
	if size <= threshold {
		return ModeInline
	}
	return ModeStaged
}

// Delivery - a prepared payload reference for the downstream request.
// Inline deliveries carry a data URL; staged deliveries carry a public
// object URL plus the path to remove afterwards.
type Delivery struct {
	Mode Mode
	URL  string

	objectPath string
	store      ObjectStore
}

// PrepareDelivery - apply the strategy decision: small payloads become data
// URLs, large ones are staged under a random object name.
func PrepareDelivery(ctx context.Context, store ObjectStore, data []byte, mimeType string, threshold int64) (*Delivery, error) {
	if Decide(int64(len(data)), threshold) == ModeInline {
		log.Printf("📦 Inline delivery: %d bytes ≤ %d threshold", len(data), threshold)
		return &Delivery{
			Mode: ModeInline,
			URL:  utils.ImageToDataURL(data, mimeType),
		}, nil
	}

	if store == nil {
		return nil, fmt.Errorf("image exceeds %d bytes and no object storage is configured; set SUPABASE_URL and SUPABASE_SERVICE_KEY or compress the image below 500KB", threshold)
	}

	objectPath := fmt.Sprintf("input-%s.jpg", uuid.NewString())
	if err := store.Upload(ctx, objectPath, data, mimeType); err != nil {
		return nil, fmt.Errorf("failed to stage image (%d bytes): %w; create the temp bucket (Storage → New bucket → public) or compress the image below 500KB", len(data), err)
	}

	publicURL := store.PublicURL(objectPath)
	log.Printf("📤 Staged delivery: %d bytes → %s", len(data), objectPath)

	return &Delivery{
		Mode:       ModeStaged,
		URL:        publicURL,
		objectPath: objectPath,
		store:      store,
	}, nil
}

// Cleanup - remove the staged object once the downstream call has finished.
// Removal failures are logged, never escalated.
func (d *Delivery) Cleanup(ctx context.Context) {
	if d == nil || d.Mode != ModeStaged || d.store == nil {
		return
	}
	if err := d.store.Remove(ctx, d.objectPath); err != nil {
		log.Printf("⚠️ Failed to remove staged object %s: %v", d.objectPath, err)
		return
	}
	log.Printf("🧹 Removed staged object: %s", d.objectPath)
}
