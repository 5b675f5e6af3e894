package project

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDeleteProject(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "proj-token")
	if err := c.DeleteProject(context.Background(), "app-123"); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}

	if gotMethod != http.MethodDelete {
		t.Errorf("method = %q, want DELETE", gotMethod)
	}
	if gotPath != "/projects/app-123" {
		t.Errorf("path = %q, want /projects/app-123", gotPath)
	}
	if gotAuth != "Bearer proj-token" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
}

func TestDeleteProject_AlreadyGone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(srv.URL, "token")
	if err := c.DeleteProject(context.Background(), "missing"); err != nil {
		t.Fatalf("expected nil for 404, got %v", err)
	}
}

func TestDeleteProject_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "token")
	if err := c.DeleteProject(context.Background(), "app-1"); err == nil {
		t.Fatal("expected error for 500")
	}
}
