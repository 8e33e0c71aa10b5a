// Package metadata resolves YouTube links to display metadata (title,
// channel, thumbnail) through the public oEmbed endpoint.
package metadata

import (
	"regexp"
	"strings"
)

// MaxPlaylistVideos caps the ids packed into one generated playlist URL.
const MaxPlaylistVideos = 50

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/watch\?(?:[^#]*&)?v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
}

// ExtractVideoID returns the 11-character video id of a YouTube link, or ""
// when url is not one. music.youtube.com and m.youtube.com links match the
// watch pattern.
func ExtractVideoID(url string) string {
	url = strings.TrimSpace(url)
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}

// ThumbnailURL returns the max-resolution thumbnail URL for a video id.
func ThumbnailURL(videoID string) string {
	return "https://img.youtube.com/vi/" + videoID + "/maxresdefault.jpg"
}

// PlaylistURL builds an anonymous playlist from the video ids found in urls,
// keeping the first MaxPlaylistVideos. When no url carries a video id the
// first url is returned as is; an empty list yields "".
func PlaylistURL(urls []string) string {
	ids := make([]string, 0, len(urls))
	for _, u := range urls {
		if id := ExtractVideoID(u); id != "" {
			ids = append(ids, id)
			if len(ids) == MaxPlaylistVideos {
				break
			}
		}
	}
	if len(ids) == 0 {
		if len(urls) == 0 {
			return ""
		}
		return urls[0]
	}
	return "https://www.youtube.com/watch_videos?video_ids=" + strings.Join(ids, ",")
}
