package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/docutrust/docutrust"
	"github.com/docutrust/docutrust/jwt"
)

const (
	defaultTimeout  = 10 * time.Second
	sessionLifetime = 5 * time.Minute
)

// APIError carries the server's error payload alongside the HTTP status.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Kind    string `json:"kind,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to a document server. Documents are cached briefly since the
// ledger only ever grows; Sign drops the cached entry it just outdated.
type Client struct {
	client   *http.Client
	cache    *cache.Cache
	base     string
	audience string

	principalID string
	privatekey  string
}

func New(base string, audience string) *Client {
	return &Client{
		client:   &http.Client{Timeout: defaultTimeout},
		cache:    cache.New(30*time.Second, time.Minute),
		base:     base,
		audience: audience,
	}
}

// UseIdentity sets the signing identity. Requests made afterwards carry a
// self-issued session token signed with this key.
func (c *Client) UseIdentity(principalID string, privatekey string) {
	c.principalID = principalID
	c.privatekey = privatekey
}

func (c *Client) sessionToken() (string, error) {
	if c.principalID == "" || c.privatekey == "" {
		return "", nil
	}

	cacheKey := "session:" + c.principalID
	if x, found := c.cache.Get(cacheKey); found {
		return x.(string), nil
	}

	now := time.Now()
	token, err := jwt.Create(jwt.Claims{
		Issuer:         c.principalID,
		Subject:        "docutrust",
		Audience:       c.audience,
		IssuedAt:       strconv.FormatInt(now.Unix(), 10),
		ExpirationTime: strconv.FormatInt(now.Add(sessionLifetime).Unix(), 10),
		JWTID:          uuid.New().String(),
	}, c.privatekey)
	if err != nil {
		return "", fmt.Errorf("failed to create session token: %v", err)
	}

	c.cache.Set(cacheKey, token, sessionLifetime-30*time.Second)
	return token, nil
}

func (c *Client) request(ctx context.Context, method, path string, body any, response any) error {

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.sessionToken()
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if response == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}

func (c *Client) Register(ctx context.Context, req docutrust.RegisterRequest) (docutrust.Principal, error) {
	var principal docutrust.Principal
	err := c.request(ctx, http.MethodPost, "/api/v1/register", req, &principal)
	if err != nil {
		return docutrust.Principal{}, err
	}
	return principal, nil
}

func (c *Client) CreateDocument(ctx context.Context, req docutrust.CreateDocumentRequest) (docutrust.Document, error) {
	var doc docutrust.Document
	err := c.request(ctx, http.MethodPost, "/api/v1/documents", req, &doc)
	if err != nil {
		return docutrust.Document{}, err
	}
	return doc, nil
}

func (c *Client) GetDocument(ctx context.Context, id string) (docutrust.Document, error) {
	cacheKey := "document:" + id
	if x, found := c.cache.Get(cacheKey); found {
		return x.(docutrust.Document), nil
	}

	var doc docutrust.Document
	err := c.request(ctx, http.MethodGet, "/api/v1/documents/"+id, nil, &doc)
	if err != nil {
		return docutrust.Document{}, err
	}

	c.cache.Set(cacheKey, doc, cache.DefaultExpiration)
	return doc, nil
}

// Sign fetches the document, signs its fingerprint with the configured
// identity and submits the signature.
func (c *Client) Sign(ctx context.Context, documentID string) (docutrust.Document, error) {
	if c.privatekey == "" {
		return docutrust.Document{}, fmt.Errorf("no signing identity configured")
	}

	doc, err := c.GetDocument(ctx, documentID)
	if err != nil {
		return docutrust.Document{}, err
	}

	signature, err := docutrust.SignFingerprint(doc.Fingerprint, c.privatekey)
	if err != nil {
		return docutrust.Document{}, fmt.Errorf("failed to sign fingerprint: %v", err)
	}

	var signed docutrust.Document
	err = c.request(ctx, http.MethodPost, "/api/v1/documents/"+documentID+"/sign", docutrust.SignRequest{
		SignerID:  c.principalID,
		Signature: signature,
	}, &signed)
	if err != nil {
		return docutrust.Document{}, err
	}

	c.cache.Delete("document:" + documentID)
	return signed, nil
}

func (c *Client) Verify(ctx context.Context, documentID string) (docutrust.VerificationReport, error) {
	var report docutrust.VerificationReport
	err := c.request(ctx, http.MethodGet, "/api/v1/documents/"+documentID+"/verify", nil, &report)
	if err != nil {
		return docutrust.VerificationReport{}, err
	}
	return report, nil
}

func (c *Client) Dashboard(ctx context.Context) (docutrust.DashboardResponse, error) {
	var dashboard docutrust.DashboardResponse
	err := c.request(ctx, http.MethodGet, "/api/v1/dashboard", nil, &dashboard)
	if err != nil {
		return docutrust.DashboardResponse{}, err
	}
	return dashboard, nil
}
