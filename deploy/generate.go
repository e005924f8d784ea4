package deploy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Generated file names.
const (
	ManifestJSONFile = "deploy.json"
	ManifestYAMLFile = "deploy.yaml"
	DependenciesFile = "dependencies.json"
	DocsFile         = "DEPLOY.md"
)

// File is one generated artifact.
type File struct {
	Name    string
	Content []byte
}

// Render produces the artifacts for opts without touching the filesystem.
// Output is deterministic.
func Render(opts Options) ([]File, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	manifestName, manifest, err := encodeManifest(NewManifest(opts), opts.Format)
	if err != nil {
		return nil, err
	}
	deps, err := encodeJSON(NewDependencyManifest(opts))
	if err != nil {
		return nil, fmt.Errorf("encode dependencies: %w", err)
	}
	docs, err := RenderDocs(opts)
	if err != nil {
		return nil, err
	}

	return []File{
		{Name: manifestName, Content: manifest},
		{Name: DependenciesFile, Content: deps},
		{Name: DocsFile, Content: docs},
	}, nil
}

// Generate writes the artifacts into dir, creating it when missing, and
// returns the written paths.
func Generate(dir string, opts Options) ([]string, error) {
	files, err := Render(opts)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Content, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func encodeManifest(m Manifest, format string) (string, []byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return "", nil, fmt.Errorf("encode manifest: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", nil, fmt.Errorf("encode manifest: %w", err)
		}
		return ManifestYAMLFile, buf.Bytes(), nil
	default:
		data, err := encodeJSON(m)
		if err != nil {
			return "", nil, fmt.Errorf("encode manifest: %w", err)
		}
		return ManifestJSONFile, data, nil
	}
}

func encodeJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
