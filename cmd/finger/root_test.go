package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Lamia/internal/activitypub/webfinger"
)

type stubDiscoverer struct {
	doc        webfinger.Document
	err        error
	identifier string
}

func (s *stubDiscoverer) Discover(_ context.Context, identifier string) (webfinger.Document, error) {
	s.identifier = identifier
	return s.doc, s.err
}

func run(t *testing.T, factory discovererFunc, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(factory)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func unused(t *testing.T) discovererFunc {
	return func(webfinger.Config) webfinger.Discoverer {
		t.Fatal("discoverer should not be built")
		return nil
	}
}

func TestFinger_NormalizeOnly(t *testing.T) {
	out, err := run(t, unused(t), "--normalize-only", "https://example.com:8443/users/alice")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "example.com/users/alice", got["resource"])
	assert.Equal(t, "https://example.com", got["authority"])
	assert.Equal(t, "https://example.com/.well-known/webfinger", got["url"])
}

func TestFinger_NormalizeOnlyAllowPort(t *testing.T) {
	out, err := run(t, unused(t), "--normalize-only", "--allow-port", "alice@example.com:3000")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "alice@example.com:3000", got["resource"])
	assert.Equal(t, "https://example.com:3000", got["authority"])
}

func TestFinger_Discover(t *testing.T) {
	stub := &stubDiscoverer{doc: webfinger.Document{"subject": "acct:alice@example.com"}}
	var seen webfinger.Config

	out, err := run(t, func(c webfinger.Config) webfinger.Discoverer {
		seen = c
		return stub
	}, "--timeout", "3s", "--user-agent", "finger-test/1", "--allow-private", "acct:alice@example.com")
	require.NoError(t, err)

	assert.Equal(t, "acct:alice@example.com", stub.identifier)
	assert.Equal(t, 3*time.Second, seen.Timeout)
	assert.Equal(t, "finger-test/1", seen.UserAgent)
	assert.True(t, seen.AllowPrivate)
	assert.JSONEq(t, `{"subject":"acct:alice@example.com"}`, out)
}

func TestFinger_DiscoverError(t *testing.T) {
	stub := &stubDiscoverer{err: &webfinger.TransportError{
		Identifier: "alice@example.com",
		URL:        "https://example.com/.well-known/webfinger",
		Err:        errors.New("connection refused"),
	}}

	_, err := run(t, func(webfinger.Config) webfinger.Discoverer { return stub }, "alice@example.com")
	require.Error(t, err)
	assert.True(t, webfinger.IsTransportError(err))
}

func TestFinger_RequiresOneIdentifier(t *testing.T) {
	_, err := run(t, unused(t))
	assert.Error(t, err)

	_, err = run(t, unused(t), "a@example.com", "b@example.com")
	assert.Error(t, err)
}
