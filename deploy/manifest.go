// Package deploy generates the deployment artifacts for the chat service:
// the platform manifest, the dependency manifest and the deployment guide.
package deploy

import (
	"fmt"
	"sort"
)

// Output formats for the deployment manifest.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ProductionEnvVar is the single production-mode flag.
const ProductionEnvVar = "APP_ENV"

// Options control what is generated.
type Options struct {
	Name        string
	Backend     string
	MaxDuration int
	Format      string
}

// DefaultOptions returns the settings of a hosted deployment backed by Redis.
func DefaultOptions() Options {
	return Options{
		Name:        "mini-network-chat",
		Backend:     "redis",
		MaxDuration: 30,
		Format:      FormatJSON,
	}
}

// Validate reports unsupported option values.
func (o Options) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("name is required")
	}
	if o.MaxDuration <= 0 {
		return fmt.Errorf("max duration must be positive, got %d", o.MaxDuration)
	}
	if _, ok := storeClients[o.Backend]; !ok {
		return fmt.Errorf("unknown backend %q (want one of %v)", o.Backend, Backends())
	}
	switch o.Format {
	case FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unknown format %q", o.Format)
	}
	return nil
}

// Build is a build target.
type Build struct {
	Src string `json:"src" yaml:"src"`
	Use string `json:"use" yaml:"use"`
}

// Route maps a request path pattern to a destination.
type Route struct {
	Src  string `json:"src" yaml:"src"`
	Dest string `json:"dest" yaml:"dest"`
}

// Function holds per-function limits.
type Function struct {
	MaxDuration int `json:"maxDuration" yaml:"maxDuration"`
}

// Manifest is the platform deployment manifest.
type Manifest struct {
	Version   int                 `json:"version" yaml:"version"`
	Name      string              `json:"name" yaml:"name"`
	Builds    []Build             `json:"builds" yaml:"builds"`
	Routes    []Route             `json:"routes" yaml:"routes"`
	Functions map[string]Function `json:"functions" yaml:"functions"`
	Env       map[string]string   `json:"env" yaml:"env"`
}

// NewManifest builds the manifest: API paths go to the service, everything
// else goes to the static assets.
func NewManifest(opts Options) Manifest {
	return Manifest{
		Version: 2,
		Name:    opts.Name,
		Builds: []Build{
			{Src: "public/**/*", Use: "static"},
			{Src: "main.go", Use: "go"},
		},
		Routes: []Route{
			{Src: "/api/(.*)", Dest: "/api/$1"},
			{Src: "/(.*)", Dest: "/public/$1"},
		},
		Functions: map[string]Function{
			"api/**": {MaxDuration: opts.MaxDuration},
		},
		Env: map[string]string{
			ProductionEnvVar: "production",
		},
	}
}

// storeClients maps a backend to the client library it needs. The memory
// backend needs none.
var storeClients = map[string]map[string]string{
	"memory": {},
	"redis":  {"github.com/redis/go-redis/v9": "v9.17.1"},
	"sqlite": {"gorm.io/driver/sqlite": "v1.5.7"},
}

// Backends lists the supported backend names.
func Backends() []string {
	names := make([]string, 0, len(storeClients))
	for name := range storeClients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DependencyManifest lists what the deployed service needs.
type DependencyManifest struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Description  string            `json:"description"`
	Backend      string            `json:"backend"`
	Dependencies map[string]string `json:"dependencies"`
	Scripts      map[string]string `json:"scripts"`
}

// NewDependencyManifest declares the store client library for the backend.
func NewDependencyManifest(opts Options) DependencyManifest {
	deps := make(map[string]string, len(storeClients[opts.Backend]))
	for mod, version := range storeClients[opts.Backend] {
		deps[mod] = version
	}
	return DependencyManifest{
		Name:         opts.Name,
		Version:      "2.0.0",
		Description:  "Mini Network Chat - HTTP polling chat service",
		Backend:      opts.Backend,
		Dependencies: deps,
		Scripts: map[string]string{
			"dev":    "go run .",
			"build":  "go build -o bin/chat .",
			"deploy": "chatgen generate --out . && git push",
		},
	}
}
