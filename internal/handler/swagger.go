package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/edudesk/edudesk-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"
)

const jsonMediaType = "application/json"

// OpenAPI3Spec represents an OpenAPI 3.0 spec structure
type OpenAPI3Spec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       map[string]interface{} `json:"info"`
	Servers    []Server               `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// Server represents an OpenAPI 3.0 server
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// RegisterDocs mounts the Swagger UI at /swagger/ and the OpenAPI 3.0 document at /openapi.json.
// Both are public; the documented /api/v1 routes still require a token.
func RegisterDocs(e *echo.Echo) {
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", ServeOpenAPI3Spec)
}

// transformRefs recursively transforms $ref from #/definitions/ to #/components/schemas/
// and converts Swagger 2.0 parameters to OpenAPI 3.0 format
func transformRefs(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		if _, hasIn := v["in"]; hasIn {
			if _, hasName := v["name"]; hasName {
				return transformParameter(v)
			}
		}

		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				result[key] = strings.Replace(ref, "#/definitions/", "#/components/schemas/", 1)
				continue
			}
			result[key] = transformRefs(value)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = transformRefs(item)
		}
		return result
	default:
		return data
	}
}

// transformParameter converts a Swagger 2.0 query or path parameter to OpenAPI 3.0 format
func transformParameter(param map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, field := range []string{"name", "in", "description", "required"} {
		if val, ok := param[field]; ok {
			result[field] = val
		}
	}

	// body parameters are lifted into requestBody by transformOperation
	if param["in"] == "body" {
		result["schema"] = transformRefs(param["schema"])
		return result
	}

	schema := make(map[string]interface{})
	for _, field := range []string{"type", "format", "enum", "default", "minimum", "maximum", "items"} {
		if val, ok := param[field]; ok {
			if field == "items" {
				schema[field] = transformRefs(val)
			} else {
				schema[field] = val
			}
		}
	}
	if len(schema) > 0 {
		result["schema"] = schema
	}
	return result
}

// transformOperation moves the body parameter into requestBody and wraps
// response schemas in a JSON media type
func transformOperation(op map[string]interface{}) map[string]interface{} {
	delete(op, "consumes")
	delete(op, "produces")

	if params, ok := op["parameters"].([]interface{}); ok {
		kept := make([]interface{}, 0, len(params))
		for _, p := range params {
			param, _ := p.(map[string]interface{})
			if param["in"] != "body" {
				kept = append(kept, p)
				continue
			}
			op["requestBody"] = map[string]interface{}{
				"description": param["description"],
				"required":    param["required"],
				"content": map[string]interface{}{
					jsonMediaType: map[string]interface{}{"schema": param["schema"]},
				},
			}
		}
		if len(kept) == 0 {
			delete(op, "parameters")
		} else {
			op["parameters"] = kept
		}
	}

	if responses, ok := op["responses"].(map[string]interface{}); ok {
		for _, r := range responses {
			resp, _ := r.(map[string]interface{})
			if schema, ok := resp["schema"]; ok {
				resp["content"] = map[string]interface{}{
					jsonMediaType: map[string]interface{}{"schema": schema},
				}
				delete(resp, "schema")
			}
		}
	}
	return op
}

// ServeOpenAPI3Spec serves the swagger spec converted to OpenAPI 3.0.
// The server URL follows the host the document was requested from.
func ServeOpenAPI3Spec(c echo.Context) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		log.Error().Err(err).Msg("Failed to read swagger doc")
		return NewInternalError(c, "Failed to read API documentation")
	}

	var swagger2 map[string]interface{}
	if err := json.Unmarshal([]byte(doc), &swagger2); err != nil {
		log.Error().Err(err).Msg("Failed to parse swagger doc")
		return NewInternalError(c, "Failed to read API documentation")
	}

	info, _ := swagger2["info"].(map[string]interface{})

	paths, _ := swagger2["paths"].(map[string]interface{})
	transformedPaths := transformRefs(paths).(map[string]interface{})
	for _, item := range transformedPaths {
		ops, _ := item.(map[string]interface{})
		for method, op := range ops {
			if operation, ok := op.(map[string]interface{}); ok {
				ops[method] = transformOperation(operation)
			}
		}
	}

	components := make(map[string]interface{})
	if secDefs, ok := swagger2["securityDefinitions"].(map[string]interface{}); ok {
		components["securitySchemes"] = secDefs
	}
	if definitions, ok := swagger2["definitions"].(map[string]interface{}); ok {
		components["schemas"] = transformRefs(definitions)
	}

	openapi3 := OpenAPI3Spec{
		OpenAPI: "3.0.3",
		Info:    info,
		Servers: []Server{
			{
				URL:         c.Scheme() + "://" + c.Request().Host + docs.SwaggerInfo.BasePath,
				Description: "Current host",
			},
		},
		Paths:      transformedPaths,
		Components: components,
	}

	return c.JSON(http.StatusOK, openapi3)
}
