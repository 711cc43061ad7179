package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// CloudinaryStore implements ObjectStore against the Cloudinary upload and
// admin APIs.
type CloudinaryStore struct {
	api       *resty.Client
	admin     *resty.Client
	apiKey    string
	apiSecret string
	logger    *zap.Logger
}

var _ ObjectStore = (*CloudinaryStore)(nil)

// NewCloudinaryStore creates a store client for the given cloud.
func NewCloudinaryStore(cloudName, apiKey, apiSecret string, logger *zap.Logger) *CloudinaryStore {
	base := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s", cloudName)

	api := resty.New().
		SetBaseURL(base).
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetHeader("Accept", "application/json")

	admin := resty.New().
		SetBaseURL(base).
		SetTimeout(15 * time.Second).
		SetBasicAuth(apiKey, apiSecret).
		SetHeader("Accept", "application/json")

	return &CloudinaryStore{
		api:       api,
		admin:     admin,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		logger:    logger,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *CloudinaryStore) Rename(ctx context.Context, fromID, toID string) (string, error) {
	params := map[string]string{
		"from_public_id": fromID,
		"to_public_id":   toID,
		"overwrite":      "true",
		"invalidate":     "true",
	}

	var out uploadResponse
	resp, err := s.api.R().
		SetContext(ctx).
		SetFormData(s.sign(params)).
		SetResult(&out).
		SetError(&out).
		Post("/image/rename")
	if err != nil {
		return "", fmt.Errorf("rename %s: %w", fromID, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("rename %s: %s", fromID, storeMessage(out, resp.StatusCode()))
	}

	return out.SecureURL, nil
}

func (s *CloudinaryStore) Exists(ctx context.Context, publicID string) (string, bool, error) {
	var out uploadResponse
	resp, err := s.admin.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&out).
		Get("/resources/image/upload/" + publicID)
	if err != nil {
		return "", false, fmt.Errorf("check %s: %w", publicID, err)
	}
	if resp.StatusCode() == 404 {
		return "", false, nil
	}
	if resp.IsError() {
		return "", false, fmt.Errorf("check %s: %s", publicID, storeMessage(out, resp.StatusCode()))
	}

	return out.SecureURL, true, nil
}

func (s *CloudinaryStore) UploadByURL(ctx context.Context, remoteURL, publicID string) (string, error) {
	params := map[string]string{
		"public_id": publicID,
		"overwrite": "true",
	}

	signed := s.sign(params)
	signed["file"] = remoteURL

	var out uploadResponse
	resp, err := s.api.R().
		SetContext(ctx).
		SetFormData(signed).
		SetResult(&out).
		SetError(&out).
		Post("/image/upload")
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", publicID, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("upload %s: %s", publicID, storeMessage(out, resp.StatusCode()))
	}

	return out.SecureURL, nil
}

func (s *CloudinaryStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	resp, err := s.admin.R().
		SetContext(ctx).
		SetQueryParam("prefix", prefix).
		Delete("/resources/image/upload")
	if err != nil {
		return fmt.Errorf("delete prefix %s: %w", prefix, err)
	}
	if resp.IsError() {
		return fmt.Errorf("delete prefix %s: status %d", prefix, resp.StatusCode())
	}

	s.logger.Debug("object store prefix deleted", zap.String("prefix", prefix))
	return nil
}

// sign adds the api_key, timestamp and request signature the upload API
// requires: SHA-1 over the sorted signable params joined with '&', with the
// API secret appended.
func (s *CloudinaryStore) sign(params map[string]string) map[string]string {
	signed := make(map[string]string, len(params)+3)
	for k, v := range params {
		signed[k] = v
	}
	signed["timestamp"] = strconv.FormatInt(time.Now().Unix(), 10)

	keys := make([]string, 0, len(signed))
	for k := range signed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+signed[k])
	}

	digest := sha1.Sum([]byte(strings.Join(pairs, "&") + s.apiSecret))
	signed["signature"] = hex.EncodeToString(digest[:])
	signed["api_key"] = s.apiKey
	return signed
}

func storeMessage(out uploadResponse, status int) string {
	if out.Error.Message != "" {
		return out.Error.Message
	}
	return fmt.Sprintf("status %d", status)
}
