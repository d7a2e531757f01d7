package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/docutrust/docutrust"
	"github.com/docutrust/docutrust/jwt"
)

func TestSignFlow(t *testing.T) {
	key, err := docutrust.GenerateKeypair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}

	doc := docutrust.Document{
		ID:          "doc-1",
		Title:       "agreement",
		Fingerprint: docutrust.Fingerprint([]byte("the content")),
		Status:      "pending",
	}

	var submitted docutrust.SignRequest
	var sawToken string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/documents/doc-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(doc)
	})
	mux.HandleFunc("/api/v1/documents/doc-1/sign", func(w http.ResponseWriter, r *http.Request) {
		sawToken = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if err := json.NewDecoder(r.Body).Decode(&submitted); err != nil {
			t.Errorf("decode sign request: %v", err)
		}
		signed := doc
		signed.Status = "completed"
		json.NewEncoder(w).Encode(signed)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := New(server.URL, "example.com")
	c.UseIdentity("p-alice", key.PrivateKey)

	signed, err := c.Sign(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if signed.Status != "completed" {
		t.Fatalf("expected server response, got %+v", signed)
	}

	// the submitted signature must recover to the client's own address
	recovered, err := docutrust.RecoverSigner(doc.Fingerprint, submitted.Signature)
	if err != nil {
		t.Fatalf("recover signer: %v", err)
	}
	if recovered != key.Address {
		t.Fatalf("recovered %s, want %s", recovered, key.Address)
	}
	if submitted.SignerID != "p-alice" {
		t.Fatalf("signer id not carried: %q", submitted.SignerID)
	}

	// the session token must validate against the identity's public key
	if sawToken == "" {
		t.Fatalf("expected an Authorization header")
	}
	_, claims, err := jwt.Validate(sawToken, key.PublicKey)
	if err != nil {
		t.Fatalf("session token invalid: %v", err)
	}
	if claims.Issuer != "p-alice" || claims.Audience != "example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAPIErrorDecoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "principal has already signed this document"})
	}))
	defer server.Close()

	c := New(server.URL, "example.com")
	_, err := c.GetDocument(context.Background(), "doc-1")

	apiErr, ok := err.(APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusConflict {
		t.Fatalf("expected 409, got %d", apiErr.Status)
	}
	if !strings.Contains(apiErr.Message, "already signed") {
		t.Fatalf("unexpected message: %q", apiErr.Message)
	}
}

func TestGetDocumentCached(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		json.NewEncoder(w).Encode(docutrust.Document{ID: "doc-1"})
	}))
	defer server.Close()

	c := New(server.URL, "example.com")
	ctx := context.Background()

	if _, err := c.GetDocument(ctx, "doc-1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := c.GetDocument(ctx, "doc-1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected one upstream fetch, got %d", hits)
	}
}
