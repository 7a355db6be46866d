package popup

import (
	"regexp"
	"strings"

	"github.com/featvid/featvid/internal/settings"
)

var (
	youtubeRe     = regexp.MustCompile(`(?:youtube\.com/(?:watch\?v=|embed/)|youtu\.be/)([\w-]{11})`)
	vimeoRe       = regexp.MustCompile(`vimeo\.com/(?:video/)?(\d+)`)
	dailymotionRe = regexp.MustCompile(`dailymotion\.com/video/(\w+)`)
)

// NormalizeEmbedURL rewrites a pasted video page URL into the provider's
// embed form and appends the control parameters. URLs from unrecognized
// hosts come back unchanged.
func NormalizeEmbedURL(rawURL string, c settings.Controls) string {
	var base string
	if m := youtubeRe.FindStringSubmatch(rawURL); m != nil {
		base = "https://www.youtube.com/embed/" + m[1]
	} else if m := vimeoRe.FindStringSubmatch(rawURL); m != nil {
		base = "https://player.vimeo.com/video/" + m[1]
	} else if m := dailymotionRe.FindStringSubmatch(rawURL); m != nil {
		base = "https://www.dailymotion.com/embed/video/" + m[1]
	} else {
		return rawURL
	}

	params := []string{
		"autoplay=" + boolParam(c.Autoplay),
		"controls=" + boolParam(c.Controls),
	}
	if c.Loop {
		params = append(params, "loop=1")
	}
	if c.Mute {
		params = append(params, "mute=1", "muted=1")
	}
	if c.PIP {
		params = append(params, "picture-in-picture=1")
	}
	params = append(params, "rel=0")

	return base + "?" + strings.Join(params, "&")
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
