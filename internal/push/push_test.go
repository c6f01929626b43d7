package push

import (
	"encoding/base64"
	"encoding/json"
	"testing"
)

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate VAPID keys: %v", err)
	}

	// The browser Push API wants the public key as a base64url
	// uncompressed P-256 point and the private key as the raw scalar.
	pubBytes, err := base64.RawURLEncoding.DecodeString(pub)
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	if len(pubBytes) != 65 {
		t.Errorf("public key length = %d, want 65", len(pubBytes))
	}
	if pubBytes[0] != 0x04 {
		t.Errorf("public key prefix = %#x, want 0x04 (uncompressed point)", pubBytes[0])
	}

	privBytes, err := base64.RawURLEncoding.DecodeString(priv)
	if err != nil {
		t.Fatalf("decode private key: %v", err)
	}
	if len(privBytes) != 32 {
		t.Errorf("private key length = %d, want 32", len(privBytes))
	}

	pub2, _, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("second generation: %v", err)
	}
	if pub == pub2 {
		t.Error("expected different keys on second generation")
	}
}

func TestPayloadJSON(t *testing.T) {
	full := Payload{
		Title: "Shopping list ready",
		Body:  "本周计划",
		URL:   "/shopping",
		Tag:   "shopping-list",
	}
	data, err := json.Marshal(full)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["title"] != "Shopping list ready" {
		t.Errorf("title = %q, want %q", decoded["title"], "Shopping list ready")
	}
	if decoded["tag"] != "shopping-list" {
		t.Errorf("tag = %q, want %q", decoded["tag"], "shopping-list")
	}

	// URL and Tag are optional and omitted when empty.
	minimal, err := json.Marshal(Payload{Title: "t", Body: "b"})
	if err != nil {
		t.Fatalf("marshal minimal: %v", err)
	}
	var keys map[string]any
	if err := json.Unmarshal(minimal, &keys); err != nil {
		t.Fatalf("unmarshal minimal: %v", err)
	}
	if _, ok := keys["url"]; ok {
		t.Error("empty url should be omitted")
	}
	if _, ok := keys["tag"]; ok {
		t.Error("empty tag should be omitted")
	}
}
