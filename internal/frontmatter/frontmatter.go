package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// body is always a suffix of content, so len(content)-len(body) is the byte
// offset where the body starts. If the document does not start with a
// delimiter line, had is false and body is the full input.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	closeLine := []byte("---" + nl)
	if bytes.HasPrefix(content[start:], closeLine) {
		return []byte{}, content[start+len(closeLine):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the last line without a trailing newline.
		tail := []byte(nl + "---")
		if bytes.HasSuffix(content, tail) {
			end := len(content) - len(tail)
			return content[start : end+len(nl)], content[len(content):], true, nil
		}
		return nil, content, false, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(frontmatter) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Directives are per-document checker settings read from the `mdlinkcheck`
// frontmatter key:
//
//	---
//	mdlinkcheck:
//	  skip: true
//	  ignore_targets: ["^generated/"]
//	---
type Directives struct {
	Skip          bool     `yaml:"skip"`
	IgnoreTargets []string `yaml:"ignore_targets"`
}

// ParseDirectives extracts Directives from raw frontmatter. Documents without
// the key yield the zero value.
func ParseDirectives(frontmatter []byte) (Directives, error) {
	var wrapper struct {
		Directives Directives `yaml:"mdlinkcheck"`
	}
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return Directives{}, nil
	}
	if err := yaml.Unmarshal(frontmatter, &wrapper); err != nil {
		return Directives{}, err
	}
	return wrapper.Directives, nil
}

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
