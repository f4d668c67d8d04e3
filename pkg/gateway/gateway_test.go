package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"threadsync/pkg/models"
)

func TestFetchMessagesAttachesBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"messages": []models.RemoteMessage{
				{ID: "m-1", Conversation: "c1", Text: "hi", CreatedAt: time.Unix(10, 0).UTC()},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "sekrit", time.Second)
	msgs, err := c.FetchMessages(context.Background(), "c1", 50)
	if err != nil {
		t.Fatalf("FetchMessages: %v", err)
	}
	if gotAuth != "Bearer sekrit" {
		t.Fatalf("expected bearer credential, got %q", gotAuth)
	}
	if len(msgs) != 1 || msgs[0].ID != "m-1" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}

func TestFetchFailureMapsToFetchFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", time.Second)
	_, err := c.FetchMessages(context.Background(), "c1", 50)
	if !IsFetchFailed(err) {
		t.Fatalf("expected FetchFailed, got %v", err)
	}
	var re *RequestError
	if !errors.As(err, &re) || re.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500 in error, got %+v", re)
	}
	if IsSendFailed(err) || IsDeleteFailed(err) {
		t.Fatalf("error kind leaked across ops")
	}
}

func TestSendMessageConfirms(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var in struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"message": models.RemoteMessage{ID: "m-42", Conversation: "c1", Text: in.Text, CreatedAt: time.Unix(20, 0).UTC()},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", time.Second)
	rm, err := c.SendMessage(context.Background(), "c1", "hi")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if rm.ID != "m-42" || rm.Text != "hi" {
		t.Fatalf("unexpected confirmation: %+v", rm)
	}
}

func TestSendTimeoutIsSendFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", 50*time.Millisecond)
	_, err := c.SendMessage(context.Background(), "c1", "hi")
	if !IsSendFailed(err) {
		t.Fatalf("expected timeout to surface as SendFailed, got %v", err)
	}
}

func TestDeleteMessage(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", time.Second)
	if err := c.DeleteMessage(context.Background(), "m-9"); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}
	if gotPath != "/v1/messages/m-9" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
}

func TestDeleteRejectedIsDeleteFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", time.Second)
	if err := c.DeleteMessage(context.Background(), "m-9"); !IsDeleteFailed(err) {
		t.Fatalf("expected DeleteFailed, got %v", err)
	}
}
