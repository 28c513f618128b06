package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/votes":
			json.NewDecoder(r.Body).Decode(&got)
			w.Write([]byte(`{"message":"Vote recorded"}`))
		default:
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"already voted on this answer"}`))
		}
	}))
	defer srv.Close()

	t.Log("Given the need to call the api from the wallet.")
	{
		var out bytes.Buffer
		body := map[string]string{"answerId": "a1"}
		if err := send(&out, http.MethodPost, srv.URL, "/votes", body); err != nil {
			t.Fatalf("\t%s\tShould be able to send the request: %v", failed, err)
		}
		if got["answerId"] != "a1" || !strings.Contains(out.String(), "Vote recorded") {
			t.Fatalf("\t%s\tShould post the body and print the response: %q", failed, out.String())
		}
		t.Logf("\t%s\tShould post the body and print the response.", success)

		out.Reset()
		err := send(&out, http.MethodPost, srv.URL, "/other", body)
		if err == nil || !strings.Contains(err.Error(), "already voted") || out.Len() != 0 {
			t.Fatalf("\t%s\tShould return the error body for a failed status: %v", failed, err)
		}
		t.Logf("\t%s\tShould return the error body for a failed status.", success)
	}
}
