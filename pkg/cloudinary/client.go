package cloudinary

import (
	"crypto/sha1"
	"encoding/hex"
	stdErrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ahonkala/meepledex-backend/pkg/config"
)

const deliveryBaseURL = "https://res.cloudinary.com"

var (
	errCloudNameRequired = stdErrors.New("cloudinary cloud name is required")
	errAPIKeyRequired    = stdErrors.New("cloudinary api key is required")
	errAPISecretRequired = stdErrors.New("cloudinary api secret is required")
	errPublicIDRequired  = stdErrors.New("cloudinary public id is required")
)

// Transformation describes the delivery-time image transformation.
type Transformation struct {
	Width   int
	Height  int
	Crop    string
	Quality string
	Format  string
}

// UploadSignature is what a browser needs to upload directly to Cloudinary.
type UploadSignature struct {
	APIKey    string            `json:"api_key"`
	CloudName string            `json:"cloud_name"`
	Timestamp int64             `json:"timestamp"`
	Signature string            `json:"signature"`
	Params    map[string]string `json:"params"`
}

// Client builds delivery URLs and signs direct-upload requests. It never
// proxies image bytes itself.
type Client struct {
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
}

// NewClient validates the Cloudinary credentials.
func NewClient(cfg config.CloudinaryConfig) (*Client, error) {
	cloudName := strings.TrimSpace(cfg.CloudName)
	if cloudName == "" {
		return nil, errCloudNameRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	apiSecret := strings.TrimSpace(cfg.APISecret)
	if apiSecret == "" {
		return nil, errAPISecretRequired
	}

	return &Client{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		folder:    strings.Trim(strings.TrimSpace(cfg.Folder), "/"),
	}, nil
}

// Folder returns the configured upload folder.
func (c *Client) Folder() string {
	if c == nil {
		return ""
	}
	return c.folder
}

// DeliveryURL builds a CDN URL for the stored public id with an optional
// transformation segment.
func (c *Client) DeliveryURL(publicID string, transform *Transformation) (string, error) {
	publicID = strings.TrimSpace(strings.Trim(publicID, "/"))
	if publicID == "" {
		return "", errPublicIDRequired
	}

	segments := []string{deliveryBaseURL, c.cloudName, "image", "upload"}
	if t := transformSegment(transform); t != "" {
		segments = append(segments, t)
	}
	segments = append(segments, publicID)
	return strings.Join(segments, "/"), nil
}

// SignUpload produces the signed parameter set for a direct browser upload.
// Cloudinary expects the signature to be the SHA1 hex digest of the sorted
// key=value pairs joined with "&" and suffixed with the API secret.
func (c *Client) SignUpload(publicID string, now time.Time) (*UploadSignature, error) {
	publicID = strings.TrimSpace(publicID)

	params := map[string]string{
		"timestamp": fmt.Sprintf("%d", now.Unix()),
	}
	if c.folder != "" {
		params["folder"] = c.folder
	}
	if publicID != "" {
		params["public_id"] = publicID
	}

	return &UploadSignature{
		APIKey:    c.apiKey,
		CloudName: c.cloudName,
		Timestamp: now.Unix(),
		Signature: c.sign(params),
		Params:    params,
	}, nil
}

func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, params[k]))
	}

	payload := strings.Join(pairs, "&") + c.apiSecret
	digest := sha1.Sum([]byte(payload))
	return hex.EncodeToString(digest[:])
}

func transformSegment(t *Transformation) string {
	if t == nil {
		return ""
	}

	parts := []string{}
	if t.Width > 0 {
		parts = append(parts, fmt.Sprintf("w_%d", t.Width))
	}
	if t.Height > 0 {
		parts = append(parts, fmt.Sprintf("h_%d", t.Height))
	}
	if crop := strings.TrimSpace(t.Crop); crop != "" {
		parts = append(parts, "c_"+crop)
	}
	if quality := strings.TrimSpace(t.Quality); quality != "" {
		parts = append(parts, "q_"+quality)
	}
	if format := strings.TrimSpace(t.Format); format != "" {
		parts = append(parts, "f_"+format)
	}
	return strings.Join(parts, ",")
}
