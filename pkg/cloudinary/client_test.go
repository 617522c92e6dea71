package cloudinary

import (
	"crypto/sha1"
	"encoding/hex"
	"testing"
	"time"

	"github.com/ahonkala/meepledex-backend/pkg/config"
)

func testCloudinaryConfig() config.CloudinaryConfig {
	return config.CloudinaryConfig{
		CloudName: "demo",
		APIKey:    "key123",
		APISecret: "shhh",
		Folder:    "meepledex",
	}
}

func TestNewClientValidation(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*config.CloudinaryConfig)
	}{
		{"missing cloud name", func(c *config.CloudinaryConfig) { c.CloudName = "" }},
		{"missing api key", func(c *config.CloudinaryConfig) { c.APIKey = "" }},
		{"missing api secret", func(c *config.CloudinaryConfig) { c.APISecret = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testCloudinaryConfig()
			tc.mut(&cfg)
			if _, err := NewClient(cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDeliveryURL(t *testing.T) {
	c, err := NewClient(testCloudinaryConfig())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	url, err := c.DeliveryURL("meepledex/carcassonne-cover", nil)
	if err != nil {
		t.Fatalf("delivery url: %v", err)
	}
	if url != "https://res.cloudinary.com/demo/image/upload/meepledex/carcassonne-cover" {
		t.Fatalf("url = %s", url)
	}

	url, err = c.DeliveryURL("meepledex/carcassonne-cover", &Transformation{
		Width:   400,
		Height:  300,
		Crop:    "fill",
		Quality: "auto",
		Format:  "webp",
	})
	if err != nil {
		t.Fatalf("delivery url: %v", err)
	}
	want := "https://res.cloudinary.com/demo/image/upload/w_400,h_300,c_fill,q_auto,f_webp/meepledex/carcassonne-cover"
	if url != want {
		t.Fatalf("url = %s, want %s", url, want)
	}
}

func TestDeliveryURLRequiresPublicID(t *testing.T) {
	c, err := NewClient(testCloudinaryConfig())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.DeliveryURL("  ", nil); err == nil {
		t.Fatal("expected error for empty public id")
	}
}

func TestSignUpload(t *testing.T) {
	c, err := NewClient(testCloudinaryConfig())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	now := time.Unix(1700000000, 0)
	sig, err := c.SignUpload("carcassonne-cover", now)
	if err != nil {
		t.Fatalf("sign upload: %v", err)
	}

	if sig.APIKey != "key123" || sig.CloudName != "demo" || sig.Timestamp != 1700000000 {
		t.Fatalf("signature envelope = %+v", sig)
	}
	if sig.Params["folder"] != "meepledex" || sig.Params["public_id"] != "carcassonne-cover" {
		t.Fatalf("params = %v", sig.Params)
	}

	// recompute the expected digest over the sorted param string
	payload := "folder=meepledex&public_id=carcassonne-cover&timestamp=1700000000" + "shhh"
	digest := sha1.Sum([]byte(payload))
	if sig.Signature != hex.EncodeToString(digest[:]) {
		t.Fatalf("signature = %s", sig.Signature)
	}
}

func TestSignUploadWithoutPublicID(t *testing.T) {
	cfg := testCloudinaryConfig()
	cfg.Folder = ""
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	sig, err := c.SignUpload("", time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("sign upload: %v", err)
	}
	if _, ok := sig.Params["public_id"]; ok {
		t.Fatal("public_id should be omitted")
	}
	if _, ok := sig.Params["folder"]; ok {
		t.Fatal("folder should be omitted")
	}
}
