// Package docs serves the OpenAPI description of the marina HTTP surface
// together with a Swagger UI page.
package docs

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIYAML []byte

const swaggerUIVersion = "5.17.14"

var swaggerPage = []byte(`<!DOCTYPE html>
<html lang="fr">
<head>
  <meta charset="utf-8">
  <title>API Port de Plaisance Russell</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@` + swaggerUIVersion + `/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@` + swaggerUIVersion + `/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function () {
      window.ui = SwaggerUIBundle({ url: "/docs/openapi.json", dom_id: "#swagger-ui" });
    };
  </script>
</body>
</html>
`)

// Handler serves the documentation routes.
type Handler struct {
	yamlDoc []byte
	jsonDoc []byte
}

// New converts the embedded YAML document to JSON once.
func New() (*Handler, error) {
	jsonDoc, err := yamlToJSON(openAPIYAML)
	if err != nil {
		return nil, err
	}
	return &Handler{yamlDoc: openAPIYAML, jsonDoc: jsonDoc}, nil
}

// Router registers /, /openapi.json and /openapi.yaml.
func Router(r chi.Router, h *Handler) {
	r.Get("/", h.UI)
	r.Get("/openapi.json", h.JSON)
	r.Get("/openapi.yaml", h.YAML)
}

func (h *Handler) UI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(swaggerPage)
}

func (h *Handler) JSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.jsonDoc)
}

func (h *Handler) YAML(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(h.yamlDoc)
}

func yamlToJSON(doc []byte) ([]byte, error) {
	var tree any
	if err := yaml.Unmarshal(doc, &tree); err != nil {
		return nil, fmt.Errorf("parse openapi yaml: %w", err)
	}
	normalized, err := stringKeys(tree)
	if err != nil {
		return nil, err
	}
	return json.Marshal(normalized)
}

// stringKeys rewrites maps with non-string keys, which encoding/json rejects.
func stringKeys(node any) (any, error) {
	switch v := node.(type) {
	case map[string]any:
		for key, value := range v {
			converted, err := stringKeys(value)
			if err != nil {
				return nil, err
			}
			v[key] = converted
		}
		return v, nil
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			converted, err := stringKeys(value)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(key)] = converted
		}
		return out, nil
	case []any:
		for i, value := range v {
			converted, err := stringKeys(value)
			if err != nil {
				return nil, err
			}
			v[i] = converted
		}
		return v, nil
	default:
		return v, nil
	}
}
