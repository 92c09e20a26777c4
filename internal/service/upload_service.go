package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"soundmap/internal/config"
	"soundmap/internal/models"
	"soundmap/internal/observability"
	"soundmap/internal/ratelimit"
	"soundmap/internal/storage"
)

const DefaultAudioMaxUploadSizeMB = 50

// allowedAudioTypes is the accepted MIME allowlist for uploaded audio.
var allowedAudioTypes = map[string]string{
	"audio/webm":  ".webm",
	"audio/mpeg":  ".mp3",
	"audio/wav":   ".wav",
	"audio/ogg":   ".ogg",
	"audio/mp4":   ".m4a",
	"audio/m4a":   ".m4a",
	"audio/x-m4a": ".m4a",
}

type UploadAudioInput struct {
	UserID      string
	Filename    string
	ContentType string
	Content     []byte
}

// UploadResult is a stored audio blob's public address plus the caller's
// remaining upload quota.
type UploadResult struct {
	Key       string
	URL       string
	Remaining int
	ResetAt   time.Time
}

// UploadService validates audio uploads, enforces the per-user quota and
// writes accepted blobs to the object store.
type UploadService struct {
	store    storage.ObjectStore
	limiter  *ratelimit.Limiter
	policy   ratelimit.Policy
	maxBytes int64
}

func NewUploadService(store storage.ObjectStore, limiter *ratelimit.Limiter, cfg *config.Config) *UploadService {
	maxUploadSizeMB := DefaultAudioMaxUploadSizeMB
	policy := ratelimit.UploadPolicy

	if cfg != nil {
		if cfg.AudioMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.AudioMaxUploadSizeMB
		}
		if cfg.UploadRateLimit > 0 {
			policy.MaxRequests = cfg.UploadRateLimit
		}
		if cfg.UploadRateWindowMin > 0 {
			policy.Window = time.Duration(cfg.UploadRateWindowMin) * time.Minute
		}
	}

	return &UploadService{
		store:    store,
		limiter:  limiter,
		policy:   policy,
		maxBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Upload checks the caller's quota before validating the payload, so rejected
// uploads still consume a slot.
func (s *UploadService) Upload(ctx context.Context, in UploadAudioInput) (*UploadResult, error) {
	res, err := s.limiter.CheckAndConsume(ctx, "upload:user:"+in.UserID, s.policy)
	if err != nil {
		// Quota state is unavailable; let the upload through rather than
		// blocking all uploads on a store outage.
		slog.WarnContext(ctx, "rate limit check failed, allowing upload", "error", err, "user_id", in.UserID)
		res = ratelimit.Result{Allowed: true}
	}
	if !res.Allowed {
		observability.UploadsTotal.WithLabelValues("rate_limited").Inc()
		return nil, models.NewRateLimitError(res.ResetAt)
	}

	if len(in.Content) == 0 {
		observability.UploadsTotal.WithLabelValues("invalid").Inc()
		return nil, models.NewValidationError("No audio file uploaded")
	}

	contentType := normalizeContentType(in.ContentType)
	ext, ok := allowedAudioTypes[contentType]
	if !ok {
		observability.UploadsTotal.WithLabelValues("invalid").Inc()
		return nil, models.NewValidationError(fmt.Sprintf("Unsupported audio type %q", contentType))
	}

	if int64(len(in.Content)) > s.maxBytes {
		observability.UploadsTotal.WithLabelValues("invalid").Inc()
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)))
	}

	if fromName := filepath.Ext(in.Filename); fromName != "" && extMatchesType(fromName, contentType) {
		ext = strings.ToLower(fromName)
	}

	key, err := generateAudioKey(ext)
	if err != nil {
		observability.UploadsTotal.WithLabelValues("failed").Inc()
		return nil, models.NewInternalError(err)
	}

	if err := s.store.Put(ctx, key, in.Content, contentType); err != nil {
		observability.UploadsTotal.WithLabelValues("failed").Inc()
		slog.ErrorContext(ctx, "failed to store audio upload",
			"error", err,
			"key", key,
			"size", len(in.Content),
			"content_type", contentType,
			"user_id", in.UserID,
		)
		return nil, models.NewInternalErrorMessage("Upload failed", err)
	}

	observability.UploadsTotal.WithLabelValues("accepted").Inc()
	observability.UploadBytes.Observe(float64(len(in.Content)))

	return &UploadResult{
		Key:       key,
		URL:       "/audio/" + key,
		Remaining: res.Remaining,
		ResetAt:   res.ResetAt,
	}, nil
}

// Fetch returns a stored audio blob, or (nil, nil) when the key is unknown.
func (s *UploadService) Fetch(ctx context.Context, key string) (*storage.Object, error) {
	return s.store.Get(ctx, key)
}

// normalizeContentType lowercases the media type and strips parameters such
// as "codecs=opus".
func normalizeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

func extMatchesType(ext, contentType string) bool {
	canonical, ok := allowedAudioTypes[contentType]
	if !ok {
		return false
	}
	ext = strings.ToLower(ext)
	if ext == canonical {
		return true
	}
	// mp4/m4a and mpeg/mp3 family extensions are interchangeable enough to
	// preserve from the client filename.
	switch contentType {
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return ext == ".mp4" || ext == ".m4a"
	case "audio/mpeg":
		return ext == ".mp3" || ext == ".mpeg"
	}
	return false
}

// generateAudioKey names blobs "<unix-millis>-<random>.<ext>" so keys sort
// chronologically and never collide.
func generateAudioKey(ext string) (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), hex.EncodeToString(suffix), ext), nil
}
