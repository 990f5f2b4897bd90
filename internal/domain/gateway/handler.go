// Package gateway serves the platform directory page. It links the other
// services but never proxies to them.
package gateway

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ServiceLink is one entry on the directory page.
type ServiceLink struct {
	Name        string
	Description string
	BaseURL     string
}

type Handler struct {
	links []ServiceLink
	page  *template.Template
}

var pageTemplate = template.Must(template.New("directory").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>Medical Records Platform</title>
  <style>
    body { font-family: sans-serif; max-width: 720px; margin: 3rem auto; }
    h1 { border-bottom: 2px solid #336; padding-bottom: 0.5rem; }
    li { margin: 0.75rem 0; }
    .desc { color: #555; font-size: 0.9rem; }
  </style>
</head>
<body>
  <h1>Medical Records Platform</h1>
  <ul>
  {{range .}}
    <li>
      <a href="{{.BaseURL}}">{{.Name}}</a>
      <div class="desc">{{.Description}} &mdash; <a href="{{.BaseURL}}/health">health</a></div>
    </li>
  {{end}}
  </ul>
</body>
</html>
`))

func NewHandler(identityURL, imagingURL, workflowURL, billingURL string) *Handler {
	return &Handler{
		page: pageTemplate,
		links: []ServiceLink{
			{Name: "Identity", Description: "users, patients, medical staff, login", BaseURL: identityURL},
			{Name: "Imaging", Description: "medical image upload and retrieval", BaseURL: imagingURL},
			{Name: "Workflow", Description: "diagnosis reports, tests, appointments, work logs", BaseURL: workflowURL},
			{Name: "Billing", Description: "billing records and statistics", BaseURL: billingURL},
		},
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Directory)
}

func (h *Handler) Directory(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	w.WriteHeader(http.StatusOK)
	if err := h.page.Execute(w, h.links); err != nil {
		return fmt.Errorf("rendering directory page: %w", err)
	}
	return nil
}
