package task

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// FrontMatter is an ordered mapping of front-matter keys to YAML values.
// Only title, priority, and created are interpreted by the system; every
// other field is carried through a rewrite untouched and in its original
// position.
type FrontMatter struct {
	keys   []string
	values map[string]*yaml.Node
}

// Len returns the number of fields.
func (fm *FrontMatter) Len() int {
	return len(fm.keys)
}

// Keys returns the field names in document order.
func (fm *FrontMatter) Keys() []string {
	out := make([]string, len(fm.keys))
	copy(out, fm.keys)
	return out
}

// Get returns the scalar value for a key, or "" if the key is absent or
// holds a non-scalar value.
func (fm *FrontMatter) Get(key string) string {
	n, ok := fm.values[key]
	if !ok || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

// Has reports whether a key is present.
func (fm *FrontMatter) Has(key string) bool {
	_, ok := fm.values[key]
	return ok
}

// Set stores a value for a key, overwriting in place if the key exists
// and appending otherwise.
func (fm *FrontMatter) Set(key string, value any) error {
	n := &yaml.Node{}
	if err := n.Encode(value); err != nil {
		return err
	}
	if fm.values == nil {
		fm.values = make(map[string]*yaml.Node)
	}
	if _, ok := fm.values[key]; !ok {
		fm.keys = append(fm.keys, key)
	}
	fm.values[key] = n
	return nil
}

// StringMap returns the fields as a plain map for JSON responses.
// Non-scalar values are rendered as their YAML text.
func (fm *FrontMatter) StringMap() map[string]string {
	out := make(map[string]string, len(fm.keys))
	for _, key := range fm.keys {
		n := fm.values[key]
		if n.Kind == yaml.ScalarNode {
			out[key] = n.Value
			continue
		}
		data, err := yaml.Marshal(n)
		if err != nil {
			out[key] = ""
			continue
		}
		out[key] = strings.TrimRight(string(data), "\n")
	}
	return out
}

// marshal renders the fields as a YAML mapping, ending with a newline.
// An empty front matter renders as the empty string.
func (fm *FrontMatter) marshal() ([]byte, error) {
	if len(fm.keys) == 0 {
		return nil, nil
	}
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range fm.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			fm.values[key],
		)
	}
	return yaml.Marshal(node)
}

// ParseDocument splits a task file into its front matter and body. The
// front matter is the block between a leading "---" line and the nearest
// following "---" line; the body is everything after that line. A
// document without such a block, or one whose block is not valid YAML,
// yields an empty front matter and the entire content as body.
func ParseDocument(content string) (FrontMatter, string) {
	var fm FrontMatter

	nl := strings.IndexByte(content, '\n')
	if nl < 0 || strings.TrimRight(content[:nl], "\r") != "---" {
		return fm, content
	}
	rest := content[nl+1:]

	offset := 0
	for {
		end := strings.IndexByte(rest[offset:], '\n')
		var line string
		if end < 0 {
			line = rest[offset:]
		} else {
			line = rest[offset : offset+end]
		}

		if strings.TrimRight(line, "\r") == "---" {
			block := ""
			if offset > 0 {
				block = rest[:offset-1]
			}
			body := ""
			if end >= 0 {
				body = rest[offset+end+1:]
			}

			parsed, ok := parseMapping(block)
			if !ok {
				return FrontMatter{}, content
			}
			return parsed, body
		}

		if end < 0 {
			return fm, content
		}
		offset += end + 1
	}
}

// parseMapping decodes a YAML mapping block preserving key order.
func parseMapping(block string) (FrontMatter, bool) {
	var fm FrontMatter

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return fm, false
	}
	if len(doc.Content) == 0 {
		return fm, true // empty block between delimiters
	}
	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return fm, false
	}

	fm.values = make(map[string]*yaml.Node, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		if _, ok := fm.values[key]; ok {
			continue // keep first occurrence of a duplicated key
		}
		fm.keys = append(fm.keys, key)
		fm.values[key] = mapping.Content[i+1]
	}
	return fm, true
}

// RenderDocument re-serializes a front matter and body back into the
// task file form. The body is appended verbatim after the closing
// delimiter line.
func RenderDocument(fm FrontMatter, body string) (string, error) {
	block, err := fm.marshal()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(block)
	b.WriteString("---\n")
	b.WriteString(body)
	return b.String(), nil
}
