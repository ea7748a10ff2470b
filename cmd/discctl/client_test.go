package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClientNormalizesAddr(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"127.0.0.1:7391", "http://127.0.0.1:7391"},
		{"http://localhost:7391/", "http://localhost:7391"},
		{"", defaultAddr},
	}
	for _, tc := range cases {
		if got := newClient(tc.in).base; got != tc.want {
			t.Fatalf("newClient(%q).base = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no disc in drive"}`))
	}))
	defer ts.Close()

	err := newClient(ts.URL).getJSON("/api/cd/info", &struct{}{})
	if err == nil || !strings.Contains(err.Error(), "no disc in drive") {
		t.Fatalf("err = %v, want the api error message", err)
	}
}

func TestInfoCommandRendersTrackTable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/cd/info" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"fingerprint": "abc",
			"artist": "Miles Davis",
			"title": "Kind of Blue",
			"named": true,
			"tracks": [
				{"number": 1, "title": "So What", "duration_seconds": 565},
				{"number": 2, "title": "Freddie Freeloader", "duration_seconds": 586}
			]
		}`))
	}))
	defer ts.Close()

	addr := ts.URL
	jsonFlag := false
	cmd := newInfoCommand(&addr, &jsonFlag)
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("info: %v", err)
	}
	rendered := out.String()
	for _, want := range []string{"Miles Davis - Kind of Blue", "So What", "9:25", "2 tracks"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("output missing %q:\n%s", want, rendered)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[int]string{
		0:   "0:00",
		59:  "0:59",
		60:  "1:00",
		565: "9:25",
		-5:  "0:00",
	}
	for seconds, want := range cases {
		if got := formatDuration(seconds); got != want {
			t.Fatalf("formatDuration(%d) = %q, want %q", seconds, got, want)
		}
	}
}
