package quote

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadDraftFile reads a form_data object from a YAML (or JSON) file, suitable
// for Form.Restore.
func LoadDraftFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}

	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse draft %s: %w", path, err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// WriteFormData writes a form_data object, such as Draft.Map or a draft
// fetched from the backend, as YAML.
func WriteFormData(path string, formData map[string]any) error {
	data, err := EncodeYAML(formData)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return nil
}

// EncodeYAML encodes a form_data object with two-space indentation.
func EncodeYAML(formData map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(formData); err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	return buf.Bytes(), nil
}
