package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Texter is implemented by results with a plain line rendering.
type Texter interface {
	Text() string
}

// Formatter writes a value in one format.
type Formatter interface {
	FormatToWriter(w io.Writer, v any) error
}

// YAMLFormatter formats values as YAML output.
type YAMLFormatter struct{}

// FormatToWriter writes YAML output to a writer.
func (YAMLFormatter) FormatToWriter(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return encoder.Close()
}

// JSONFormatter formats values as indented JSON output.
type JSONFormatter struct{}

// FormatToWriter writes JSON output to a writer.
func (JSONFormatter) FormatToWriter(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// TextFormatter writes Texter values as-is and everything else as YAML.
type TextFormatter struct{}

// FormatToWriter writes the text form of v to a writer.
func (TextFormatter) FormatToWriter(w io.Writer, v any) error {
	t, ok := v.(Texter)
	if !ok {
		return YAMLFormatter{}.FormatToWriter(w, v)
	}
	text := t.Text()
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err := io.WriteString(w, text)
	return err
}

// GetFormatter returns the formatter for a format.
func GetFormatter(f Format) (Formatter, error) {
	switch f {
	case FormatYAML:
		return YAMLFormatter{}, nil
	case FormatJSON:
		return JSONFormatter{}, nil
	case FormatText:
		return TextFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %q", f)
	}
}

// Write renders v to w in format f.
func Write(w io.Writer, f Format, v any) error {
	formatter, err := GetFormatter(f)
	if err != nil {
		return err
	}
	return formatter.FormatToWriter(w, v)
}
