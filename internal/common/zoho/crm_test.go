package zoho

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCRMServer(t *testing.T, known map[string]string) (*CRMClient, *[]Contact) {
	t.Helper()
	var created []Contact

	mux := http.NewServeMux()
	mux.HandleFunc("GET /Contacts/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Zoho-oauthtoken tok", r.Header.Get("Authorization"))
		id, ok := known[r.URL.Query().Get("email")]
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": []Contact{{ID: id}}})
	})
	mux.HandleFunc("POST /Contacts", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Data []Contact `json:"data"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		created = append(created, payload.Data...)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":[{"code":"SUCCESS","status":"success","details":{"id":"new-1"}}]}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewCRMClient(srv.URL+"/", "tok"), &created
}

func TestUpsertContact(t *testing.T) {
	ctx := context.Background()

	t.Run("existing contact", func(t *testing.T) {
		crm, created := newCRMServer(t, map[string]string{"ada@example.com": "c-9"})
		id, isNew, err := crm.UpsertContact(ctx, &Contact{Email: "ada@example.com", LastName: "Lovelace"})
		require.NoError(t, err)
		assert.Equal(t, "c-9", id)
		assert.False(t, isNew)
		assert.Empty(t, *created)
	})

	t.Run("new contact", func(t *testing.T) {
		crm, created := newCRMServer(t, nil)
		id, isNew, err := crm.UpsertContact(ctx, &Contact{Email: "bob@example.com", LastName: "Smith", Source: "Website"})
		require.NoError(t, err)
		assert.Equal(t, "new-1", id)
		assert.True(t, isNew)
		require.Len(t, *created, 1)
		assert.Equal(t, "Website", (*created)[0].Source)
	})
}

func TestCreateContactFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"status":"error","message":"duplicate data"}]}`))
	}))
	defer srv.Close()

	_, err := NewCRMClient(srv.URL, "tok").CreateContact(context.Background(), &Contact{Email: "x@y.z", LastName: "X"})
	assert.ErrorContains(t, err, "duplicate data")
}

func TestDefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewCRMClient("", "tok").baseURL)
}
