package zohosign_test

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
	"golang.org/x/oauth2"

	"github.com/florianilch/signbridge/internal/zohosign"
)

var pdf = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

func newClient(t *testing.T, handler http.Handler) *zohosign.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok", TokenType: "Zoho-oauthtoken"})
	client, err := zohosign.New(srv.URL+"/api/v1", ts)
	require.NoError(t, err)
	return client
}

func TestFieldTypesReturnsBodyVerbatim(t *testing.T) {
	const body = `{"field_types":[{"field_type_id":"66919000000000173","field_category":"checkbox","is_mandatory":false,"field_type_name":"Checkbox"}],"code":0,"message":"Field types retrieved successfully","status":"success"}`

	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/fieldtypes", r.URL.Path)
		assert.Equal(t, "Zoho-oauthtoken tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, body)
	}))

	got, err := client.FieldTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestUnauthorizedIsDetectable(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"code":9041,"message":"Invalid Oauth token","status":"failure"}`)
	}))

	_, err := client.FieldTypes(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, zohosign.ErrUnauthorized)

	var apiErr *zohosign.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, int64(9041), apiErr.Code)
	assert.Equal(t, "Invalid Oauth token", apiErr.Message)
}

func TestFailureStatusWithOK(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":4001,"message":"Invalid data","status":"failure"}`)
	}))

	_, err := client.FieldTypes(context.Background())
	var apiErr *zohosign.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	assert.False(t, errors.Is(err, zohosign.ErrUnauthorized))
}

func TestCreateRequest(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/requests", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "contract.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))

		var data struct {
			Requests zohosign.CreateRequestData `json:"requests"`
		}
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("data")), &data))
		assert.Equal(t, "Alak", data.Requests.RequestName)
		require.Len(t, data.Requests.Actions, 1)
		assert.True(t, data.Requests.Actions[0].IsEmbedded)

		_, _ = io.WriteString(w, `{"requests":{"request_id":"request_id","actions":[{"action_id":"action_id","recipient_name":"Dummy","recipient_email":"dummy@email.in","action_type":"SIGN"}],"document_ids":[{"document_id":"document_id"}]},"status":"success"}`)
	}))

	created, err := client.CreateRequest(context.Background(),
		zohosign.Document{Filename: "contract.pdf", Content: pdf},
		zohosign.CreateRequestData{
			RequestName: "Alak",
			Actions:     []zohosign.NewAction{{RecipientName: "Dummy", RecipientEmail: "dummy@email.in", ActionType: "SIGN", IsEmbedded: true}},
		})
	require.NoError(t, err)
	assert.Equal(t, &zohosign.CreatedRequest{
		RequestID:  "request_id",
		DocumentID: "document_id",
		Action: zohosign.ActionRef{
			ActionID:       "action_id",
			RecipientName:  "Dummy",
			RecipientEmail: "dummy@email.in",
			ActionType:     "SIGN",
		},
	}, created)
}

func TestCreateRequestMissingIdentifiers(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"requests":{"request_id":"r1","actions":[]}}`)
	}))

	_, err := client.CreateRequest(context.Background(), zohosign.Document{Filename: "a.pdf", Content: pdf}, zohosign.CreateRequestData{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "action_id")
}

func TestSubmitRequest(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/requests/req-1/submit", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.JSONEq(t, `{"requests":{"actions":[{
			"action_id":"act-1","recipient_name":"Dummy","recipient_email":"dummy@email.in","action_type":"SIGN",
			"fields":[{"document_id":"doc-1","field_name":"Signature","field_type_name":"Signature","field_label":"Signature - 1",
				"field_category":"Signature","abs_width":"200","abs_height":"18","is_mandatory":true,"x_coord":"30","y_coord":"30","page_no":0}]
		}]}}`, r.FormValue("data"))
		_, _ = io.WriteString(w, `{"status":"success"}`)
	}))

	err := client.SubmitRequest(context.Background(), "req-1", zohosign.SubmitAction{
		ActionRef: zohosign.ActionRef{ActionID: "act-1", RecipientName: "Dummy", RecipientEmail: "dummy@email.in", ActionType: "SIGN"},
		Fields: []zohosign.Field{{
			DocumentID: "doc-1", FieldName: "Signature", FieldTypeName: "Signature", FieldLabel: "Signature - 1",
			FieldCategory: "Signature", AbsWidth: "200", AbsHeight: "18", IsMandatory: true, XCoord: "30", YCoord: "30",
		}},
	})
	require.NoError(t, err)
}

func TestEmbedToken(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/requests/req-1/actions/act-1/embedtoken", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "https://sign.zoho.in", r.FormValue("host"))
		_, _ = io.WriteString(w, `{"sign_url":"https://sign.example/sign-url","status":"success"}`)
	}))

	got, err := client.EmbedToken(context.Background(), "req-1", "act-1", "https://sign.zoho.in")
	require.NoError(t, err)
	assert.Equal(t, "https://sign.example/sign-url", got)
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"})
	_, err := zohosign.New("sign.zoho.in", ts)
	assert.Error(t, err)

	_, err = zohosign.New(zohosign.DefaultBaseURL, nil)
	assert.Error(t, err)
}
