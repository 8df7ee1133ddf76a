package frontmatter

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// headerRegex matches a leading YAML block; group 1 is the YAML text and is
// empty for a header with no lines ("---\n---")
var headerRegex = regexp.MustCompile(`(?s)^---\n(?:(.*?)\n)??---`)

// find returns the matched header block and its YAML text
func find(content string) (block, yamlText string, ok bool) {
	m := headerRegex.FindStringSubmatch(content)
	if m == nil {
		return "", "", false
	}
	return m[0], m[1], true
}

// Split separates the front matter from the body.
// header is the front matter block followed by "\n" (empty when the content
// has none) and body is everything after it, so header+body == content
// whenever the block is followed by a newline.
func Split(content string) (header, body string) {
	block, _, ok := find(content)
	if !ok {
		return "", content
	}
	rest := strings.TrimPrefix(content[len(block):], "\n")
	return block + "\n", rest
}

// Join reattaches a header produced by Split to a body
func Join(header, body string) string {
	return header + body
}

// Parse decodes the front matter into a map. Content without front matter
// gives an empty map.
func Parse(content string) (map[string]any, error) {
	fields := make(map[string]any)
	_, yamlText, ok := find(content)
	if !ok {
		return fields, nil
	}
	if err := yaml.Unmarshal([]byte(yamlText), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse front matter: %w", err)
	}
	if fields == nil {
		fields = make(map[string]any)
	}
	return fields, nil
}

// Get returns one front matter field rendered as a string
func Get(content, key string) (string, bool) {
	fields, err := Parse(content)
	if err != nil {
		return "", false
	}
	v, ok := fields[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// Update assigns each field of updates into the front matter, overwriting
// existing keys in place and appending new keys in sorted order. Content
// without front matter gets a new block, so Split of the result returns the
// original content as body.
func Update(content string, updates map[string]string) (string, error) {
	block, yamlText, ok := find(content)
	if !ok {
		doc := newMapping()
		setFields(doc, updates)
		out, err := encode(doc)
		if err != nil {
			return "", err
		}
		return delimiter + "\n" + out + "\n" + delimiter + "\n" + content, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(yamlText), &root); err != nil {
		return "", fmt.Errorf("failed to parse front matter: %w", err)
	}

	// the document node is encoded when present so its comments survive
	out := &root
	switch {
	case root.Kind == 0, root.Kind == yaml.DocumentNode && len(root.Content) == 0:
		// empty front matter
		out = newMapping()
		setFields(out, updates)
	case root.Kind == yaml.DocumentNode && len(root.Content) == 1 && root.Content[0].Kind == yaml.MappingNode:
		setFields(root.Content[0], updates)
	default:
		return "", fmt.Errorf("front matter is not a key/value mapping")
	}

	text, err := encode(out)
	if err != nil {
		return "", err
	}
	return delimiter + "\n" + text + "\n" + delimiter + content[len(block):], nil
}

func newMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func setFields(mapping *yaml.Node, updates map[string]string) {
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: updates[k]}
		replaced := false
		for i := 0; i+1 < len(mapping.Content); i += 2 {
			if mapping.Content[i].Value == k {
				value.HeadComment = mapping.Content[i+1].HeadComment
				value.LineComment = mapping.Content[i+1].LineComment
				mapping.Content[i+1] = value
				replaced = true
				break
			}
		}
		if !replaced {
			mapping.Content = append(mapping.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				value,
			)
		}
	}
}

func encode(node *yaml.Node) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
