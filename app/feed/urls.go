package feed

import (
	"net/url"
	"regexp"
	"strings"
)

const udemyImageBase = "https://img-c.udemycdn.com/course/750x422/"

// Size directories such as "150" or "240x135" in CDN paths. Course ids are
// longer numeric segments.
var cdnSizeSegment = regexp.MustCompile(`^(\d{1,4}|\d+x\d+)$`)

// ResolveURL makes ref absolute against base. Absolute http(s) URLs are
// returned unchanged, as is ref when either side fails to parse.
func ResolveURL(ref, base string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}

	return baseURL.ResolveReference(refURL).String()
}

// CleanImageURL removes the "/h" artifact some sources append and rewrites
// Udemy CDN links to the 750x422 course thumbnail.
func CleanImageURL(raw string) string {
	if raw == "" {
		return ""
	}

	cleaned := strings.TrimSuffix(raw, "/h")

	if !strings.Contains(cleaned, "udemycdn.com") {
		return cleaned
	}

	parts := strings.Split(cleaned, "/")
	if len(parts) < 2 {
		return cleaned
	}

	courseID := parts[len(parts)-2]
	imageName := parts[len(parts)-1]
	if cdnSizeSegment.MatchString(courseID) {
		return udemyImageBase + imageName
	}

	return udemyImageBase + courseID + "_" + imageName
}
