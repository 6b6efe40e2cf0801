package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRenderClipPollsUntilDone(t *testing.T) {
	var startReq clipStartRequest
	var polls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == "POST" && r.URL.Path == "/":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&startReq))
			fmt.Fprint(w, `{"id":"op-1"}`)
		case r.URL.Path == "/op-1":
			if polls.Add(1) < 2 {
				fmt.Fprint(w, `{"done":false}`)
				return
			}
			fmt.Fprintf(w, `{"done":true,"video_url":%q}`, "http://"+r.Host+"/video")
		case r.URL.Path == "/video":
			require.Equal(t, "Bearer clip-key", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "video/mp4")
			w.Write([]byte("mp4-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewClipProvider(srv.URL, "clip-key", "", "", time.Millisecond)

	var statuses []string
	video, err := p.RenderClip(context.Background(), ClipRequest{Prompt: "neon rain in Neo-Tokyo"}, func(s string) {
		statuses = append(statuses, s)
	})
	require.NoError(t, err)
	require.Equal(t, []byte("mp4-bytes"), video)

	require.Equal(t, "Cinematic high-quality movie scene: neon rain in Neo-Tokyo, 8k, photorealistic, highly detailed, dramatic lighting, professional cinematography", startReq.Prompt)
	require.Equal(t, "720p", startReq.Resolution)
	require.Equal(t, "16:9", startReq.AspectRatio)
	require.Equal(t, 1, startReq.ClipCount)

	require.Equal(t, "Initializing Cinematic Core...", statuses[0])
	require.Contains(t, statuses, "Calibrating Neural Frames...")
	require.Contains(t, statuses, "Rendering Cinematic Textures...")
}

func TestRenderClipOperationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == "POST" {
			fmt.Fprint(w, `{"id":"op-1"}`)
			return
		}
		fmt.Fprint(w, `{"done":true,"error":"Requested entity was not found."}`)
	}))
	defer srv.Close()

	p := NewClipProvider(srv.URL, "", "", "", time.Millisecond)

	_, err := p.RenderClip(context.Background(), ClipRequest{Prompt: "scene"}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Requested entity was not found")
}

func TestRenderClipValidatesFormat(t *testing.T) {
	p := NewClipProvider("http://unused.test", "", "", "", time.Millisecond)

	_, err := p.RenderClip(context.Background(), ClipRequest{Prompt: "scene", Resolution: "4K"}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "resolution")

	_, err = p.RenderClip(context.Background(), ClipRequest{Prompt: "scene", AspectRatio: "4:3"}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "aspect ratio")
}

func TestRenderClipRequiresEndpoint(t *testing.T) {
	p := NewClipProvider("", "", "", "", time.Millisecond)

	_, err := p.RenderClip(context.Background(), ClipRequest{Prompt: "scene"}, nil)
	require.Error(t, err)
}

func TestRenderClipCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == "POST" {
			fmt.Fprint(w, `{"id":"op-1"}`)
			return
		}
		fmt.Fprint(w, `{"done":false}`)
	}))
	defer srv.Close()

	p := NewClipProvider(srv.URL, "", "", "", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.RenderClip(ctx, ClipRequest{Prompt: "scene"}, nil)
	require.ErrorIs(t, err, context.Canceled)
}
