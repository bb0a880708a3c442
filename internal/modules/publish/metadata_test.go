package publish

import (
	"reflect"
	"testing"
)

func TestBuildMetadataExtraction(t *testing.T) {
	body := "Intro with a mention of @alice.\n\n" +
		"![cover](https://img.example/cover.png)\n\n" +
		"See [the docs](https://docs.example/start) and <https://auto.example>.\n\n" +
		"Thanks again @alice and @bob-smith. Not a mention: https://site/@charlie\n\n" +
		"![cover](https://img.example/cover.png)\n"

	meta := BuildMetadata([]string{"go", "steem"}, body)

	if meta.App != AppName {
		t.Errorf("app = %q, want %q", meta.App, AppName)
	}
	if meta.Format != "markdown" {
		t.Errorf("format = %q", meta.Format)
	}
	if !reflect.DeepEqual(meta.Tags, []string{"go", "steem"}) {
		t.Errorf("tags = %v", meta.Tags)
	}
	if !reflect.DeepEqual(meta.Image, []string{"https://img.example/cover.png"}) {
		t.Errorf("image = %v", meta.Image)
	}
	if !reflect.DeepEqual(meta.Links, []string{"https://docs.example/start", "https://auto.example"}) {
		t.Errorf("links = %v", meta.Links)
	}
	if !reflect.DeepEqual(meta.Users, []string{"alice", "bob-smith"}) {
		t.Errorf("users = %v", meta.Users)
	}
}

func TestBuildMetadataPlainBody(t *testing.T) {
	meta := BuildMetadata([]string{DefaultTag}, "Just text, no markup at all.")
	if meta.Image != nil || meta.Links != nil || meta.Users != nil {
		t.Errorf("plain body produced extras: %+v", meta)
	}
}
