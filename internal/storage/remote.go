package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/addictsagenda/agenda/internal/registry"
)

// RemoteStore persists every domain as fields of the authenticated user's
// document on the vault server, one field per storage key. The server
// merges each write into the document, so writes to different keys never
// clobber each other.
//
// Every operation resolves the session first. Without one, reads return
// domain defaults immediately (no request is made) and writes report
// ErrNotPersisted: there is no destination while unauthenticated.
type RemoteStore struct {
	baseURL string
	client  *http.Client
	session SessionSource
	log     *zap.Logger
}

// NewRemoteStore creates a RemoteStore talking to the vault server at
// baseURL. client may be nil, in which case http.DefaultClient is used.
func NewRemoteStore(baseURL string, client *http.Client, session SessionSource, log *zap.Logger) *RemoteStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteStore{baseURL: baseURL, client: client, session: session, log: log}
}

// Load fetches the domain's field from the user document, or returns the
// domain default when unauthenticated, absent, or on transport failure.
func (rs *RemoteStore) Load(ctx context.Context, d registry.Domain) json.RawMessage {
	desc := registry.Lookup(d)
	sess, ok := rs.session.Current()
	if !ok {
		return desc.Default
	}

	body, status, err := rs.do(ctx, sess, http.MethodGet, "/api/vault/"+desc.Key, nil)
	if err != nil {
		rs.log.Error("loading remote value", zap.String("key", desc.Key), zap.Error(err))
		return desc.Default
	}
	if status == http.StatusNotFound || status == http.StatusNoContent {
		return desc.Default
	}
	if status != http.StatusOK {
		rs.log.Error("loading remote value", zap.String("key", desc.Key), zap.Int("status", status))
		return desc.Default
	}
	return desc.Normalize(body)
}

// Save merge-writes the domain's field into the user document. Without a
// session it is a deliberate no-op reported as ErrNotPersisted.
func (rs *RemoteStore) Save(ctx context.Context, d registry.Domain, value json.RawMessage) error {
	desc := registry.Lookup(d)
	sess, ok := rs.session.Current()
	if !ok {
		return ErrNotPersisted
	}

	payload := desc.Normalize(value)
	_, status, err := rs.do(ctx, sess, http.MethodPut, "/api/vault/"+desc.Key, payload)
	if err != nil {
		rs.log.Error("saving remote value", zap.String("key", desc.Key), zap.Error(err))
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		err := fmt.Errorf("vault returned status %d", status)
		rs.log.Error("saving remote value", zap.String("key", desc.Key), zap.Error(err))
		return err
	}
	return nil
}

// LoadAll fetches the full user document, or an empty document when
// unauthenticated or on failure.
func (rs *RemoteStore) LoadAll(ctx context.Context) map[string]json.RawMessage {
	sess, ok := rs.session.Current()
	if !ok {
		return map[string]json.RawMessage{}
	}

	body, status, err := rs.do(ctx, sess, http.MethodGet, "/api/vault", nil)
	if err != nil || status != http.StatusOK {
		rs.log.Error("loading remote document", zap.Int("status", status), zap.Error(err))
		return map[string]json.RawMessage{}
	}

	doc := make(map[string]json.RawMessage)
	if err := json.Unmarshal(body, &doc); err != nil {
		rs.log.Error("decoding remote document", zap.Error(err))
		return map[string]json.RawMessage{}
	}
	out := make(map[string]json.RawMessage, len(doc))
	for key, raw := range doc {
		desc, known := registry.ByKey(key)
		if !known {
			continue
		}
		out[key] = desc.Normalize(raw)
	}
	return out
}

// DeleteAll deletes the entire user document. Irreversible.
func (rs *RemoteStore) DeleteAll(ctx context.Context) error {
	sess, ok := rs.session.Current()
	if !ok {
		return ErrNotPersisted
	}

	_, status, err := rs.do(ctx, sess, http.MethodDelete, "/api/vault", nil)
	if err != nil {
		rs.log.Error("deleting remote document", zap.Error(err))
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		err := fmt.Errorf("vault returned status %d", status)
		rs.log.Error("deleting remote document", zap.Error(err))
		return err
	}
	return nil
}

// do issues one authenticated request and returns the response body and
// status code.
func (rs *RemoteStore) do(ctx context.Context, sess Session, method, path string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rs.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := rs.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return data, resp.StatusCode, nil
}
