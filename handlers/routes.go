package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
)

// Route names, used to reverse URLs in handlers and templates.
const (
	RouteTaskList     = "task_list"
	RouteTaskDetail   = "task_detail"
	RouteTaskAdd      = "task_add"
	RouteTaskEdit     = "task_edit"
	RouteTaskDelete   = "task_delete"
	RouteTaskComplete = "task_complete"
)

// Route is a named URL pattern.
type Route struct {
	Name    string
	Methods []string
	Path    string
}

// Routes lists every named route served by the application.
var Routes = []Route{
	{Name: RouteTaskList, Methods: []string{http.MethodGet}, Path: "/"},
	{Name: RouteTaskAdd, Methods: []string{http.MethodGet, http.MethodPost}, Path: "/tasks/add/"},
	{Name: RouteTaskDetail, Methods: []string{http.MethodGet}, Path: "/tasks/:pk/"},
	{Name: RouteTaskEdit, Methods: []string{http.MethodGet, http.MethodPost}, Path: "/tasks/:pk/edit/"},
	{Name: RouteTaskDelete, Methods: []string{http.MethodPost}, Path: "/tasks/:pk/delete/"},
	{Name: RouteTaskComplete, Methods: []string{http.MethodPost}, Path: "/tasks/:pk/complete/"},
}

var routesByName = func() map[string]Route {
	m := make(map[string]Route, len(Routes))
	for _, r := range Routes {
		m[r.Name] = r
	}
	return m
}()

// URL reverses a route name into a path, filling its parameters with args
// in order.
func URL(name string, args ...any) (string, error) {
	route, ok := routesByName[name]
	if !ok {
		return "", fmt.Errorf("no route named %q", name)
	}

	segments := strings.Split(route.Path, "/")
	next := 0
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		if next >= len(args) {
			return "", fmt.Errorf("route %q: missing value for %s", name, seg)
		}
		segments[i] = url.PathEscape(fmt.Sprint(args[next]))
		next++
	}
	if next != len(args) {
		return "", fmt.Errorf("route %q: takes %d arguments, got %d", name, next, len(args))
	}
	return strings.Join(segments, "/"), nil
}

// MustURL is like URL but panics on error. Use it only with route names and
// argument counts known at compile time.
func MustURL(name string, args ...any) string {
	u, err := URL(name, args...)
	if err != nil {
		panic(err)
	}
	return u
}

// FuncMap exposes URL to templates as "url".
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"url": URL,
	}
}
