package prize

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/prize_address/internal/models"
	"github.com/GTDGit/prize_address/internal/utils"
)

func testPayload() *models.PrizePayload {
	return &models.PrizePayload{
		Site:        "ThaiDeal",
		Name:        "สมชาย ใจดี",
		Username:    "player01",
		Phone:       "0812345678",
		Provinces:   "กรุงเทพมหานคร",
		District:    "พระนคร",
		SubDistrict: "พระบรมมหาราชวัง",
		House:       "99/1",
		PostalCode:  "10200",
		Status:      models.PrizeStatusPending,
	}
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "pending", got["status"])
		assert.Equal(t, "กรุงเทพมหานคร", got["provinces"])
		assert.Contains(t, got, "subDistrict")
		assert.Contains(t, got, "postalCode")

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestSubmit_Success(t *testing.T) {
	srv, calls := newServer(t, http.StatusOK, `{"message":"ok","id":7}`)

	res, err := NewClient(srv.URL).Submit(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", res.Body["message"])
	assert.Equal(t, 1, *calls)
}

func TestSubmit_RejectedWithMessage(t *testing.T) {
	srv, calls := newServer(t, http.StatusBadRequest, `{"error":"bad phone"}`)

	_, err := NewClient(srv.URL).Submit(context.Background(), testPayload())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "bad phone", apiErr.Message)
	assert.Equal(t, 1, *calls, "no retry")
}

func TestSubmit_RejectedWithoutMessage(t *testing.T) {
	srv, _ := newServer(t, http.StatusCreated, `{"status":"created"}`)

	_, err := NewClient(srv.URL).Submit(context.Background(), testPayload())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "only 200 counts as success")
	assert.Equal(t, GenericErrorMessage, apiErr.Message)
}

func TestSubmit_NonJSONBody(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `<html>gateway</html>`)

	_, err := NewClient(srv.URL).Submit(context.Background(), testPayload())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestSubmit_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Submit(context.Background(), testPayload())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestNewClient_DefaultURL(t *testing.T) {
	assert.Equal(t, DefaultURL, NewClient("").url)
}

func TestSubmit_SignsBodyWhenSecretSet(t *testing.T) {
	var signature, unsigned string
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/signed" {
			signature = r.Header.Get(SignatureHeader)
			body, _ = io.ReadAll(r.Body)
		} else {
			unsigned = r.Header.Get(SignatureHeader)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL+"/signed").WithSigningSecret("s3cret").Submit(context.Background(), testPayload())
	require.NoError(t, err)
	_, err = NewClient(srv.URL+"/plain").Submit(context.Background(), testPayload())
	require.NoError(t, err)

	assert.True(t, utils.VerifySignature(body, signature, "s3cret"))
	assert.Empty(t, unsigned)
}
