package meta_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"postbeat/internal/services"
	"postbeat/internal/services/meta"
	"postbeat/internal/store"
	"postbeat/internal/testsupport"
)

func noSleep(context.Context, time.Duration) error { return nil }

func newTestClient(t *testing.T, handler http.Handler) (*meta.Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := testsupport.NewConfig(t)
	cfg.Meta.BaseURL = srv.URL
	cfg.Meta.UploadBaseURL = srv.URL + "/video-upload"

	client := meta.NewClient(cfg, nil)
	client.SetSleep(noSleep)
	client.SetPollBudget(time.Millisecond, 5)
	return client, srv
}

func TestPublishIGReel(t *testing.T) {
	var (
		containerParams map[string]string
		statusPolls     int
		publishedID     string
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/17890000000000000/media", func(w http.ResponseWriter, r *http.Request) {
		containerParams = map[string]string{
			"media_type": r.URL.Query().Get("media_type"),
			"video_url":  r.URL.Query().Get("video_url"),
			"caption":    r.URL.Query().Get("caption"),
		}
		fmt.Fprint(w, `{"id": "container-1"}`)
	})
	mux.HandleFunc("/container-1", func(w http.ResponseWriter, r *http.Request) {
		statusPolls++
		if statusPolls < 3 {
			fmt.Fprint(w, `{"status_code": "IN_PROGRESS"}`)
			return
		}
		fmt.Fprint(w, `{"status_code": "FINISHED"}`)
	})
	mux.HandleFunc("/17890000000000000/media_publish", func(w http.ResponseWriter, r *http.Request) {
		publishedID = r.URL.Query().Get("creation_id")
		fmt.Fprint(w, `{"id": "post-1"}`)
	})

	client, _ := newTestClient(t, mux)
	err := client.Publish(context.Background(), store.PlatformIGReel, "https://cdn.example/video.mp4", "A caption")
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if containerParams["media_type"] != "REELS" {
		t.Fatalf("expected REELS media type, got %q", containerParams["media_type"])
	}
	if containerParams["caption"] != "A caption" {
		t.Fatalf("expected caption forwarded, got %q", containerParams["caption"])
	}
	if publishedID != "container-1" {
		t.Fatalf("expected container published, got %q", publishedID)
	}
	if statusPolls != 3 {
		t.Fatalf("expected three status polls, got %d", statusPolls)
	}
}

func TestPublishIGStoryOmitsCaption(t *testing.T) {
	var query map[string][]string

	mux := http.NewServeMux()
	mux.HandleFunc("/17890000000000000/media", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		fmt.Fprint(w, `{"id": "container-2"}`)
	})
	mux.HandleFunc("/container-2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status_code": "FINISHED"}`)
	})
	mux.HandleFunc("/17890000000000000/media_publish", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": "post-2"}`)
	})

	client, _ := newTestClient(t, mux)
	err := client.Publish(context.Background(), store.PlatformIGStory, "https://cdn.example/video.mp4", "ignored")
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if got := query["media_type"]; len(got) != 1 || got[0] != "STORIES" {
		t.Fatalf("expected STORIES media type, got %v", got)
	}
	if _, present := query["caption"]; present {
		t.Fatal("stories must not carry a caption parameter")
	}
}

func TestPublishIGReelPollTimeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/17890000000000000/media", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": "container-slow"}`)
	})
	mux.HandleFunc("/container-slow", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status_code": "IN_PROGRESS"}`)
	})

	client, _ := newTestClient(t, mux)
	err := client.Publish(context.Background(), store.PlatformIGReel, "https://cdn.example/video.mp4", "caption")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("expected timeout detail in message, got %q", err.Error())
	}
}

func TestPublishIGReelContainerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/17890000000000000/media", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": "container-bad"}`)
	})
	mux.HandleFunc("/container-bad", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status_code": "ERROR", "status": "unsupported format"}`)
	})

	client, _ := newTestClient(t, mux)
	err := client.Publish(context.Background(), store.PlatformIGReel, "https://cdn.example/video.mp4", "caption")
	if err == nil {
		t.Fatal("expected container error")
	}
	if !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected container status detail, got %q", err.Error())
	}
}

func TestPublishFBReelThreePhase(t *testing.T) {
	var (
		phases     []string
		uploadAuth string
		fileURL    string
		finishDesc string
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/100000000000000/video_reels", func(w http.ResponseWriter, r *http.Request) {
		phase := r.URL.Query().Get("upload_phase")
		phases = append(phases, phase)
		switch phase {
		case "START":
			fmt.Fprint(w, `{"video_id": "vid-9"}`)
		case "FINISH":
			finishDesc = r.URL.Query().Get("description")
			if r.URL.Query().Get("video_id") != "vid-9" {
				http.Error(w, "wrong video id", http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, `{"success": true}`)
		default:
			http.Error(w, "unknown phase", http.StatusBadRequest)
		}
	})
	mux.HandleFunc("/video-upload/vid-9", func(w http.ResponseWriter, r *http.Request) {
		phases = append(phases, "UPLOAD")
		uploadAuth = r.Header.Get("Authorization")
		fileURL = r.Header.Get("file_url")
		fmt.Fprint(w, `{"success": true}`)
	})

	client, _ := newTestClient(t, mux)
	err := client.Publish(context.Background(), store.PlatformFBReel, "https://cdn.example/video.mp4", "Reel caption")
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	want := []string{"START", "UPLOAD", "FINISH"}
	if len(phases) != 3 || phases[0] != want[0] || phases[1] != want[1] || phases[2] != want[2] {
		t.Fatalf("unexpected phase order %v", phases)
	}
	if !strings.HasPrefix(uploadAuth, "OAuth ") {
		t.Fatalf("expected OAuth authorization on upload, got %q", uploadAuth)
	}
	if fileURL != "https://cdn.example/video.mp4" {
		t.Fatalf("expected file_url header, got %q", fileURL)
	}
	if finishDesc != "Reel caption" {
		t.Fatalf("expected caption on FINISH phase, got %q", finishDesc)
	}
}

func TestPublishFBFeed(t *testing.T) {
	var query map[string][]string

	mux := http.NewServeMux()
	mux.HandleFunc("/100000000000000/videos", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		fmt.Fprint(w, `{"id": "feed-1"}`)
	})

	client, _ := newTestClient(t, mux)
	err := client.Publish(context.Background(), store.PlatformFBFeed, "https://cdn.example/video.mp4", "Feed caption")
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if got := query["file_url"]; len(got) != 1 || got[0] != "https://cdn.example/video.mp4" {
		t.Fatalf("expected file_url parameter, got %v", got)
	}
	if got := query["description"]; len(got) != 1 || got[0] != "Feed caption" {
		t.Fatalf("expected description parameter, got %v", got)
	}
}

func TestExchangePageTokenUsesPageToken(t *testing.T) {
	var publishToken string

	mux := http.NewServeMux()
	mux.HandleFunc("/100000000000000", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token": "page-token-value"}`)
	})
	mux.HandleFunc("/100000000000000/videos", func(w http.ResponseWriter, r *http.Request) {
		publishToken = r.URL.Query().Get("access_token")
		fmt.Fprint(w, `{"id": "feed-2"}`)
	})

	client, _ := newTestClient(t, mux)
	client.ExchangePageToken(context.Background())
	if err := client.Publish(context.Background(), store.PlatformFBFeed, "https://cdn.example/v.mp4", ""); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if publishToken != "page-token-value" {
		t.Fatalf("expected page token used for publishing, got %q", publishToken)
	}
}

func TestExchangePageTokenFallsBackToUserToken(t *testing.T) {
	var publishToken string

	mux := http.NewServeMux()
	mux.HandleFunc("/100000000000000", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "denied"}}`, http.StatusForbidden)
	})
	mux.HandleFunc("/100000000000000/videos", func(w http.ResponseWriter, r *http.Request) {
		publishToken = r.URL.Query().Get("access_token")
		fmt.Fprint(w, `{"id": "feed-3"}`)
	})

	client, _ := newTestClient(t, mux)
	client.ExchangePageToken(context.Background())
	if err := client.Publish(context.Background(), store.PlatformFBFeed, "https://cdn.example/v.mp4", ""); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if publishToken != strings.Repeat("t", 64) {
		t.Fatalf("expected fallback to user token, got %q", publishToken)
	}
}

func TestPublishSurfacesGraphErrorDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/100000000000000/videos", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"message": "Invalid OAuth access token", "type": "OAuthException", "code": 190}}`)
	})

	client, _ := newTestClient(t, mux)
	err := client.Publish(context.Background(), store.PlatformFBFeed, "https://cdn.example/v.mp4", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Invalid OAuth access token") {
		t.Fatalf("expected graph error message surfaced, got %q", err.Error())
	}
}

func TestTokenLooksValid(t *testing.T) {
	cases := []struct {
		token string
		want  bool
	}{
		{"", false},
		{"short", false},
		{"YOUR_META_ACCESS_TOKEN_HERE_PLACEHOLDER_PADDING_XXXXXXXXXX", false},
		{strings.Repeat("a", 49), false},
		{strings.Repeat("a", 50), true},
	}
	for _, tc := range cases {
		if got := meta.TokenLooksValid(tc.token); got != tc.want {
			t.Fatalf("TokenLooksValid(%q) = %v, want %v", tc.token, got, tc.want)
		}
	}
}
