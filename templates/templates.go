// Package templates embeds the HTML pages rendered by the web handlers.
package templates

import (
	"embed"
	"html/template"
)

//go:embed html
var files embed.FS

// Load parses every page with funcs available to them. Pages are named by
// their define blocks, e.g. "tasks/task_list.html".
func Load(funcs template.FuncMap) (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "html/*.html", "html/tasks/*.html")
}
