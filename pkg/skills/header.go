package skills

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const headerMarker = "---"

var headerKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ParseDocument parses a skill document read from path. A header block is
// present only when the first line is the "---" marker; it must be closed by
// another marker line and hold one key: value pair per line. fallbackName
// becomes the identifier when the header does not set a name.
func ParseDocument(path, fallbackName string, content []byte) (*Skill, error) {
	text := strings.TrimPrefix(string(content), "\ufeff")
	lines := strings.Split(text, "\n")

	if trimLine(lines[0]) != headerMarker {
		return &Skill{
			Name: fallbackName,
			Body: text,
			Path: path,
		}, nil
	}

	closing := -1
	for i := 1; i < len(lines); i++ {
		if trimLine(lines[i]) == headerMarker {
			closing = i
			break
		}
	}
	if closing == -1 {
		return nil, &MalformedHeaderError{Path: path, Line: 1, Reason: "unterminated header, missing closing '---'"}
	}

	header, keys, err := parseHeader(path, lines[1:closing])
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(header.Name)
	if name == "" {
		name = fallbackName
	}

	extraKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := header.Extra[key]; ok {
			extraKeys = append(extraKeys, key)
		}
	}

	return &Skill{
		Name:        name,
		Description: strings.TrimSpace(header.Description),
		Body:        strings.TrimLeft(strings.Join(lines[closing+1:], "\n"), "\r\n"),
		Path:        path,
		HasHeader:   true,
		extraKeys:   extraKeys,
		extra:       header.Extra,
	}, nil
}

// parseHeader validates the lines between the header markers and decodes
// them into a Header. It also returns the keys in document order.
func parseHeader(path string, lines []string) (Header, []string, error) {
	values := make(map[string]interface{}, len(lines))
	seen := make(map[string]struct{}, len(lines))
	keys := make([]string, 0, len(lines))

	for i, raw := range lines {
		lineNo := i + 2 // the opening marker is line 1
		line := trimLine(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, rawValue, ok := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		if !ok || !headerKeyPattern.MatchString(key) {
			return Header{}, nil, &MalformedHeaderError{
				Path:   path,
				Line:   lineNo,
				Reason: fmt.Sprintf("expected 'key: value', got %q", line),
			}
		}

		folded := strings.ToLower(key)
		if _, dup := seen[folded]; dup {
			return Header{}, nil, &MalformedHeaderError{
				Path:   path,
				Line:   lineNo,
				Reason: fmt.Sprintf("duplicate header key %q", key),
			}
		}
		seen[folded] = struct{}{}

		value, err := decodeHeaderValue(rawValue)
		if err != nil {
			return Header{}, nil, &MalformedHeaderError{Path: path, Line: lineNo, Reason: err.Error()}
		}

		if folded == "name" || folded == "description" {
			key = folded
		}
		values[key] = value
		keys = append(keys, key)
	}

	var header Header
	if err := mapstructure.Decode(values, &header); err != nil {
		return Header{}, nil, &MalformedHeaderError{Path: path, Reason: errors.Wrap(err, "failed to decode header").Error()}
	}

	return header, keys, nil
}

// decodeHeaderValue returns the trimmed text after the colon. A value that
// is one quoted scalar is unquoted, and a value that is one flow list or
// mapping is rejected. Everything else, including "#", "&", "!" and "|",
// is kept as written.
func decodeHeaderValue(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "" || raw == "~":
		return "", nil
	case isQuotedScalar(raw):
		node, ok := decodeSingleNode(raw)
		if !ok || node.Kind != yaml.ScalarNode {
			return raw, nil
		}
		return node.Value, nil
	case isFlowCollection(raw):
		node, ok := decodeSingleNode(raw)
		if !ok {
			return raw, nil
		}
		switch node.Kind {
		case yaml.SequenceNode:
			return "", errors.New("value must be a scalar, got a list")
		case yaml.MappingNode:
			return "", errors.New("value must be a scalar, got a mapping")
		}
	}
	return raw, nil
}

func decodeSingleNode(raw string) (*yaml.Node, bool) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil || len(doc.Content) != 1 {
		return nil, false
	}
	return doc.Content[0], true
}

// isQuotedScalar reports whether raw opens and closes with the same quote and
// that quote is not closed earlier, so the quoted text spans the whole value.
func isQuotedScalar(raw string) bool {
	if len(raw) < 2 {
		return false
	}
	quote := raw[0]
	if (quote != '"' && quote != '\'') || raw[len(raw)-1] != quote {
		return false
	}

	inner := raw[1 : len(raw)-1]
	if quote == '\'' {
		return !strings.Contains(strings.ReplaceAll(inner, "''", ""), "'")
	}
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '\\':
			// a backslash right before the last quote escapes it
			if i == len(inner)-1 {
				return false
			}
			i++
		case '"':
			return false
		}
	}
	return true
}

func isFlowCollection(raw string) bool {
	first, last := raw[0], raw[len(raw)-1]
	return (first == '[' && last == ']') || (first == '{' && last == '}')
}

func trimLine(line string) string {
	return strings.TrimSpace(strings.TrimSuffix(line, "\r"))
}
