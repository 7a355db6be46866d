package popup

import (
	"testing"

	"github.com/featvid/featvid/internal/settings"
)

func TestNormalizeEmbedURL_Providers(t *testing.T) {
	defaults := settings.DefaultControls()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "youtube watch url",
			in:   "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want: "https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=0&controls=1&rel=0",
		},
		{
			name: "youtube short url",
			in:   "https://youtu.be/dQw4w9WgXcQ",
			want: "https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=0&controls=1&rel=0",
		},
		{
			name: "youtube embed url",
			in:   "https://www.youtube.com/embed/dQw4w9WgXcQ",
			want: "https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=0&controls=1&rel=0",
		},
		{
			name: "vimeo page url",
			in:   "https://vimeo.com/123456789",
			want: "https://player.vimeo.com/video/123456789?autoplay=0&controls=1&rel=0",
		},
		{
			name: "vimeo video path",
			in:   "https://vimeo.com/video/123456789",
			want: "https://player.vimeo.com/video/123456789?autoplay=0&controls=1&rel=0",
		},
		{
			name: "dailymotion url",
			in:   "https://www.dailymotion.com/video/x7tgad0",
			want: "https://www.dailymotion.com/embed/video/x7tgad0?autoplay=0&controls=1&rel=0",
		},
		{
			name: "unknown host passes through unchanged",
			in:   "https://example.com/watch/abc",
			want: "https://example.com/watch/abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeEmbedURL(tt.in, defaults); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeEmbedURL_ControlParameters(t *testing.T) {
	got := NormalizeEmbedURL("https://youtu.be/abc12345678", settings.Controls{
		Controls: true,
		Autoplay: true,
		Mute:     true,
	})
	want := "https://www.youtube.com/embed/abc12345678?autoplay=1&controls=1&mute=1&muted=1&rel=0"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizeEmbedURL_AllToggles(t *testing.T) {
	got := NormalizeEmbedURL("https://vimeo.com/55555", settings.Controls{
		Autoplay: true,
		Loop:     true,
		Mute:     true,
		PIP:      true,
	})
	want := "https://player.vimeo.com/video/55555?autoplay=1&controls=0&loop=1&mute=1&muted=1&picture-in-picture=1&rel=0"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizeEmbedURL_UnknownHostIgnoresControls(t *testing.T) {
	in := "https://videos.example.com/embed/42?theme=dark"
	got := NormalizeEmbedURL(in, settings.Controls{
		Controls: true,
		Autoplay: true,
		Loop:     true,
		Mute:     true,
		PIP:      true,
	})
	if got != in {
		t.Fatalf("got %q, want the input unchanged", got)
	}
}
