package publish

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// AppName identifies this gateway in json_metadata.
const AppName = "steem-gate/1.0"

// Metadata is the json_metadata side channel attached to a post, consumed
// by front-end clients.
type Metadata struct {
	Tags   []string `json:"tags"`
	App    string   `json:"app"`
	Format string   `json:"format"`
	Image  []string `json:"image,omitempty"`
	Links  []string `json:"links,omitempty"`
	Users  []string `json:"users,omitempty"`
}

// Account mentions: @ followed by a chain account name, not preceded by a
// word character or a slash (so URLs like example.com/@user don't count).
var mentionPattern = regexp.MustCompile(`(^|[^\w/])@([a-z][a-z0-9.-]{1,14}[a-z0-9])`)

// BuildMetadata assembles json_metadata for a post: the cleaned tags plus
// image URLs, links and account mentions extracted from the Markdown body.
func BuildMetadata(tags []string, body string) Metadata {
	meta := Metadata{Tags: tags, App: AppName, Format: "markdown"}

	source := []byte(body)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	seenImage := map[string]struct{}{}
	seenLink := map[string]struct{}{}
	addImage := func(dst string) {
		if dst == "" {
			return
		}
		if _, ok := seenImage[dst]; !ok {
			seenImage[dst] = struct{}{}
			meta.Image = append(meta.Image, dst)
		}
	}
	addLink := func(dst string) {
		if dst == "" {
			return
		}
		if _, ok := seenLink[dst]; !ok {
			seenLink[dst] = struct{}{}
			meta.Links = append(meta.Links, dst)
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Image:
			addImage(string(node.Destination))
		case *ast.Link:
			addLink(string(node.Destination))
		case *ast.AutoLink:
			addLink(string(node.URL(source)))
		}
		return ast.WalkContinue, nil
	})

	seenUser := map[string]struct{}{}
	for _, m := range mentionPattern.FindAllStringSubmatch(strings.ToLower(body), -1) {
		name := m[2]
		if _, ok := seenUser[name]; !ok {
			seenUser[name] = struct{}{}
			meta.Users = append(meta.Users, name)
		}
	}

	return meta
}
