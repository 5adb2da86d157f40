package frontmatter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	frontmatterPattern = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---(?:\r?\n(.*))?$`)
	inlineTagPattern   = regexp.MustCompile(`(?:^|[\s(\[,])#([\p{L}\p{N}_\-/]+)`)
	numericTagPattern  = regexp.MustCompile(`^[0-9/]+$`)
)

// Frontmatter holds the metadata fields the tag tree cares about.
type Frontmatter struct {
	Title    string   `yaml:"title"`
	Aliases  []string `yaml:"aliases,flow"`
	Tags     TagList  `yaml:"tags,flow"`
	Created  string   `yaml:"created"`
	Modified string   `yaml:"modified"`
}

// TagList accepts tags written either as a YAML sequence or as a single
// comma or space separated string.
type TagList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TagList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var raw string
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*t = strings.FieldsFunc(raw, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*t = list
		return nil
	default:
		return fmt.Errorf("tags: unsupported yaml kind %d", value.Kind)
	}
}

// Parse extracts frontmatter from content and returns the parsed data and body
func Parse(content string) (*Frontmatter, string, error) {
	matches := frontmatterPattern.FindStringSubmatch(content)
	if len(matches) != 3 {
		// No frontmatter found
		return nil, content, nil
	}

	frontmatterStr := matches[1]
	bodyContent := matches[2]

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(frontmatterStr), &fm); err != nil {
		return nil, content, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	// Ensure arrays are never nil
	if fm.Aliases == nil {
		fm.Aliases = []string{}
	}
	if fm.Tags == nil {
		fm.Tags = TagList{}
	}

	return &fm, bodyContent, nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// ParseTimestamp parses a frontmatter timestamp string into time.Time
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ExtractInlineTags returns the #tags written in the body, skipping fenced
// code blocks. Purely numeric tags such as issue numbers are ignored.
func ExtractInlineTags(body string) []string {
	var tags []string
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence || strings.HasPrefix(trimmed, "# ") {
			continue
		}
		for _, m := range inlineTagPattern.FindAllStringSubmatch(line, -1) {
			tag := strings.Trim(m[1], "/")
			if tag == "" || numericTagPattern.MatchString(tag) {
				continue
			}
			tags = append(tags, tag)
		}
	}
	return tags
}

// ExtractTitle returns the text of the first level one heading, or "".
func ExtractTitle(body string) string {
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if !inFence && strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		}
	}
	return ""
}

// NormalizeTag strips a leading '#' and drops empty segments, so that
// "#issues//bugs/" becomes "issues/bugs".
func NormalizeTag(tag string) string {
	tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
	parts := strings.Split(tag, "/")
	kept := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "/")
}

// MergeTags combines multiple tag sources and removes duplicates
func MergeTags(sources ...[]string) []string {
	seen := make(map[string]bool)
	result := []string{}

	for _, tags := range sources {
		for _, tag := range tags {
			if tag != "" && !seen[tag] {
				seen[tag] = true
				result = append(result, tag)
			}
		}
	}

	return result
}
