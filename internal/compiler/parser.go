package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/xdsai/persephone/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a story document.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Parser is responsible for converting raw bytes into a Story.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a story document. With FormatAuto, a document whose first
// non-blank byte is '{' is read as JSON and anything else as YAML.
func (p *Parser) Parse(data []byte, format Format) (*domain.Story, error) {
	if format == FormatAuto {
		format = sniff(data)
	}

	var story domain.Story
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &story); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidStory, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &story); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidStory, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", domain.ErrInvalidStory, format)
	}

	// A document without meta.state still starts in roam mode.
	if story.Meta.State.Flags == nil {
		story.Meta.State = domain.NewState()
	}
	return &story, nil
}

func sniff(data []byte) Format {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}
