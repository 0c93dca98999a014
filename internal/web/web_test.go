package web

import (
	"bytes"
	"strings"
	"testing"
)

func TestPages(t *testing.T) {
	pages, err := NewPages()
	if err != nil {
		t.Fatalf("failed to parse templates: %v", err)
	}

	t.Run("RendersEachPage", func(t *testing.T) {
		cases := map[string]any{
			"index":    IndexData{PlaylistName: "Roadtrip"},
			"login":    LoginData{},
			"app":      AppData{PlaylistName: "Roadtrip", TrackCount: 3},
			"notready": nil,
		}

		for name, data := range cases {
			var buf bytes.Buffer
			if err := pages.Render(&buf, name, data); err != nil {
				t.Errorf("failed to render %s: %v", name, err)
			}
			if buf.Len() == 0 {
				t.Errorf("page %s rendered empty", name)
			}
		}
	})

	t.Run("UnknownPageFails", func(t *testing.T) {
		var buf bytes.Buffer
		if err := pages.Render(&buf, "missing", nil); err == nil {
			t.Error("expected error for unknown template")
		}
	})
}

func TestMagicLinkEmail(t *testing.T) {
	t.Run("CarriesLink", func(t *testing.T) {
		link := "https://app.example.com/login?code=abc123"
		body, err := MagicLinkEmail(link)
		if err != nil {
			t.Fatalf("failed to render email: %v", err)
		}

		if !strings.Contains(body, link) {
			t.Errorf("email body should contain the link, got: %s", body)
		}
		if !strings.Contains(body, "Sign in") {
			t.Error("email body should carry the call to action")
		}
	})

	t.Run("EscapesMarkup", func(t *testing.T) {
		body, err := MagicLinkEmail(`"><script>alert(1)</script>`)
		if err != nil {
			t.Fatalf("failed to render email: %v", err)
		}

		if strings.Contains(body, "<script>") {
			t.Error("link value should be escaped")
		}
	})
}
