// Package content extracts caption metadata from intake folders.
//
// Each folder may carry a structured social_media_content.json file or a
// loosely formatted social_media_content.txt fallback. Parsing produces the
// platform captions used for publishing: a full caption for reels and feed
// posts, and a title-only caption for stories.
package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	jsonFileName = "social_media_content.json"
	txtFileName  = "social_media_content.txt"
)

// Metadata is the caption payload derived from a content file.
type Metadata struct {
	Title        string
	Description  string
	Hashtags     string
	ReelCaption  string
	StoryCaption string
}

// Empty reports whether no caption data was recovered.
func (m Metadata) Empty() bool {
	return m.Title == "" && m.Description == "" && m.Hashtags == ""
}

// ParseFolder reads caption metadata from folder, preferring the JSON file
// and falling back to the TXT format. A folder with neither file yields an
// empty Metadata and no error; captions stay blank in that case.
func ParseFolder(folder string) (Metadata, error) {
	jsonPath := filepath.Join(folder, jsonFileName)
	if _, err := os.Stat(jsonPath); err == nil {
		meta, err := parseJSON(jsonPath)
		if err == nil {
			return derive(meta), nil
		}
		// Malformed JSON falls through to the TXT file when present.
	}

	txtPath := filepath.Join(folder, txtFileName)
	if _, err := os.Stat(txtPath); err == nil {
		meta, err := parseTXT(txtPath)
		if err != nil {
			return Metadata{}, err
		}
		return derive(meta), nil
	}

	return Metadata{}, nil
}

type jsonContent struct {
	InstagramFacebook struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Hashtags    []string `json:"hashtags"`
	} `json:"instagram_facebook"`
}

func parseJSON(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	var payload jsonContent
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Metadata{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	section := payload.InstagramFacebook
	return Metadata{
		Title:       strings.TrimSpace(section.Title),
		Description: strings.TrimSpace(section.Description),
		Hashtags:    FormatHashtags(section.Hashtags),
	}, nil
}

// FormatHashtags joins tags into a single display string, prefixing each tag
// with # unless it already carries one.
func FormatHashtags(tags []string) string {
	formatted := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		formatted = append(formatted, tag)
	}
	return strings.Join(formatted, " ")
}

var (
	titlePattern    = regexp.MustCompile(`Title:\s*(.+)`)
	descPattern     = regexp.MustCompile(`(?s)Description:\s*\n(.+?)(?:\nHashtags:|\n\n\n|\z)`)
	hashtagsPattern = regexp.MustCompile(`(?s)Hashtags:\s*\n(.+?)(?:\n\n|\z)`)
)

func parseTXT(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	section := instagramSection(string(raw))

	var meta Metadata
	if match := titlePattern.FindStringSubmatch(section); match != nil {
		meta.Title = strings.TrimSpace(match[1])
	}
	if match := descPattern.FindStringSubmatch(section); match != nil {
		meta.Description = strings.TrimSpace(match[1])
	}
	if match := hashtagsPattern.FindStringSubmatch(section); match != nil {
		meta.Hashtags = strings.TrimSpace(match[1])
	}
	return meta, nil
}

// instagramSection isolates the Instagram/Facebook block when the file mixes
// per-network sections; otherwise the whole file is treated as one block.
func instagramSection(text string) string {
	if !strings.Contains(text, "INSTAGRAM") {
		return text
	}

	var (
		inSection bool
		lines     []string
	)
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "INSTAGRAM") {
			inSection = true
			continue
		}
		if inSection && (strings.Contains(line, "YOUTUBE") || strings.Contains(line, "======")) {
			break
		}
		if inSection {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func derive(meta Metadata) Metadata {
	parts := make([]string, 0, 3)
	for _, part := range []string{meta.Title, meta.Description, meta.Hashtags} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	meta.ReelCaption = strings.Join(parts, "\n\n")
	meta.StoryCaption = meta.Title
	return meta
}
