package publish

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTag is used when the request carries no usable tags.
	DefaultTag = "steemit"
	maxTags    = 5

	// maxPermlinkLen caps the permlink length, applied after the uniqueness
	// suffix is appended. Extremely long titles can therefore lose the
	// suffix and regain collision risk; the upstream behaviour does the
	// same and is kept for compatibility.
	maxPermlinkLen = 256
)

var (
	slugStripPattern  = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	tagStripPattern   = regexp.MustCompile(`[^a-z0-9-]`)
)

// NormalizeTags lowercases tags, strips characters outside [a-z0-9-], drops
// tags that become empty and keeps at most five, preserving order. A list
// with nothing usable becomes [DefaultTag].
func NormalizeTags(raw []string) []string {
	if len(raw) == 0 {
		return []string{DefaultTag}
	}

	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		cleaned := tagStripPattern.ReplaceAllString(strings.ToLower(t), "")
		if cleaned != "" {
			tags = append(tags, cleaned)
		}
	}
	if len(tags) == 0 {
		return []string{DefaultTag}
	}
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	return tags
}

// GeneratePermlink derives a unique URL-safe slug from the title: the
// lowercased title reduced to [a-z0-9-], or "post" when nothing survives
// (non-Latin titles), suffixed with the Unix timestamp and six random hex
// characters.
func GeneratePermlink(title string) string {
	slug := slugStripPattern.ReplaceAllString(strings.ToLower(title), "")
	slug = strings.Trim(whitespacePattern.ReplaceAllString(slug, "-"), "-")
	if slug == "" {
		slug = "post"
	}

	id := uuid.New()
	permlink := fmt.Sprintf("%s-%d-%s", slug, time.Now().Unix(), hex.EncodeToString(id[:3]))
	if len(permlink) > maxPermlinkLen {
		permlink = permlink[:maxPermlinkLen]
	}
	return permlink
}
