package deploy

import (
	"bytes"
	"fmt"
	"text/template"
)

// EnvVar documents one configuration variable.
type EnvVar struct {
	Name        string
	Default     string
	Description string
}

// Endpoint documents one HTTP route.
type Endpoint struct {
	Method      string
	Path        string
	Description string
}

type docsData struct {
	Options
	Endpoints []Endpoint
	EnvVars   []EnvVar
	Client    string
}

// Endpoints returns the documented HTTP surface.
func Endpoints() []Endpoint {
	return []Endpoint{
		{"POST", "/api/join", "Join the chat with {\"username\"}"},
		{"POST", "/api/message", "Send {\"username\", \"message\"}"},
		{"GET", "/api/messages?since=ID", "Poll messages newer than ID"},
		{"POST", "/api/clear", "Remove all users and messages. Only served when ADMIN_CLEAR_ENABLED is true (off by default outside development)"},
		{"GET", "/health", "Health check"},
	}
}

// EnvVars returns the documented configuration for backend.
func EnvVars(backend string) []EnvVar {
	vars := []EnvVar{
		{ProductionEnvVar, "development", "Set to production in deployments"},
		{"HTTP_PORT", "3000", "Listen port"},
		{"STORE_BACKEND", "memory", "memory, redis or sqlite"},
		{"MAX_MESSAGES", "100", "Messages kept in the chat log"},
		{"REQUEST_TIMEOUT", "30s", "Per-request execution cap"},
		{"RATE_LIMIT_MAX", "30", "POST requests per client per window (0 disables)"},
		{"RATE_LIMIT_WINDOW", "1m", "Rate limit window"},
		{"BOT_ENABLED", "false", "Post occasional bot replies"},
		{"BOT_PROBABILITY", "0.3", "Chance that a message gets a bot reply"},
		{"BOT_DELAY", "1s", "Delay before a bot reply is posted"},
		{"STATIC_DIR", "./public", "Static assets served for non-API paths"},
		{"ADMIN_CLEAR_ENABLED", "true in development, false otherwise", "Expose POST /api/clear"},
	}
	switch backend {
	case "redis":
		vars = append(vars,
			EnvVar{"REDIS_ADDR", "localhost:6379", "Redis address"},
			EnvVar{"REDIS_PASSWORD", "", "Redis password"},
			EnvVar{"REDIS_DB", "0", "Redis database number"},
			EnvVar{"REDIS_KEY_PREFIX", "chat:", "Key namespace"},
		)
	case "sqlite":
		vars = append(vars, EnvVar{"DB_PATH", "./chat.db", "SQLite database file"})
	}
	return vars
}

var docsTemplate = template.Must(template.New("docs").Parse(`# {{.Name}} deployment

HTTP polling chat service. Clients join with a username, post messages and
poll ` + "`GET /api/messages?since=ID`" + ` for anything newer than the last id they saw.

## Endpoints

| Method | Path | Description |
|---|---|---|
{{- range .Endpoints}}
| {{.Method}} | ` + "`{{.Path}}`" + ` | {{.Description}} |
{{- end}}

Every response is JSON. Failures use ` + "`{\"success\": false, \"error\": \"...\"}`" + `
with status 400 (invalid input), 409 (username taken), 405 (wrong method),
429 (rate limited) or 500 (internal).

## Configuration

Store backend: **{{.Backend}}**{{if .Client}} (client library ` + "`{{.Client}}`" + `){{end}}.

| Variable | Default | Description |
|---|---|---|
{{- range .EnvVars}}
| ` + "`{{.Name}}`" + ` | {{if .Default}}` + "`{{.Default}}`" + `{{end}} | {{.Description}} |
{{- end}}

## Steps

1. Provision the store for the **{{.Backend}}** backend and export its variables.
2. Set ` + "`STORE_BACKEND={{.Backend}}`" + ` and ` + "`APP_ENV=production`" + `.
3. Deploy with the generated manifest. API functions run for at most {{.MaxDuration}}s.
4. Check ` + "`GET /health`" + ` returns ` + "`\"status\": \"healthy\"`" + `.
`))

// RenderDocs renders the deployment guide.
func RenderDocs(opts Options) ([]byte, error) {
	data := docsData{
		Options:   opts,
		Endpoints: Endpoints(),
		EnvVars:   EnvVars(opts.Backend),
	}
	for mod := range storeClients[opts.Backend] {
		data.Client = mod
	}

	var buf bytes.Buffer
	if err := docsTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render docs: %w", err)
	}
	return buf.Bytes(), nil
}
