package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mytodolist/forms"
)

var errorMessages = map[int]string{
	http.StatusBadRequest:          "The submitted data could not be read.",
	http.StatusNotFound:            "The requested page was not found.",
	http.StatusMethodNotAllowed:    "This method is not allowed for the requested page.",
	http.StatusInternalServerError: "Something went wrong on our side. Please try again.",
}

// render writes an HTML page, adding the pending flash message to data.
func render(c *gin.Context, status int, name string, data gin.H) {
	data["flash"] = popFlash(c)
	c.HTML(status, name, data)
}

func renderForm(c *gin.Context, status int, form *forms.TaskForm) {
	title := "Add task"
	if form.Instance != nil {
		title = "Edit task"
	}
	render(c, status, TemplateTaskForm, gin.H{
		"title": title,
		"form":  form,
	})
}

func renderError(c *gin.Context, status int) {
	heading := http.StatusText(status)
	message, ok := errorMessages[status]
	if !ok {
		message = heading
	}
	c.Abort()
	render(c, status, TemplateError, gin.H{
		"title":   heading,
		"heading": heading,
		"message": message,
	})
}
