package handler

import (
	"net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocs_SwaggerDocument(t *testing.T) {
	env := newTestEnv()
	RegisterDocs(env.e)

	rec := serve(env.e, http.MethodGet, "/swagger/doc.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	doc := decodeObject(t, rec)
	assert.Equal(t, "2.0", doc["swagger"])
	assert.Equal(t, "/api/v1", doc["basePath"])
	info := doc["info"].(map[string]interface{})
	assert.Equal(t, "EduDesk API", info["title"])
}

func TestDocs_OpenAPI3Conversion(t *testing.T) {
	env := newTestEnv()
	RegisterDocs(env.e)

	rec := serve(env.e, http.MethodGet, "/openapi.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "#/definitions/")

	doc := decodeObject(t, rec)
	assert.Equal(t, "3.0.3", doc["openapi"])

	servers := doc["servers"].([]interface{})
	require.Len(t, servers, 1)
	assert.Equal(t, "http://example.com/api/v1", servers[0].(map[string]interface{})["url"])

	paths := doc["paths"].(map[string]interface{})
	payment := paths["/payments/{id}"].(map[string]interface{})
	patch := payment["patch"].(map[string]interface{})

	// body parameter moved into requestBody, path parameter keeps a schema
	params := patch["parameters"].([]interface{})
	require.Len(t, params, 1)
	id := params[0].(map[string]interface{})
	assert.Equal(t, "path", id["in"])
	assert.Equal(t, map[string]interface{}{"type": "integer"}, id["schema"])

	body := patch["requestBody"].(map[string]interface{})
	bodySchema := body["content"].(map[string]interface{})["application/json"].(map[string]interface{})["schema"].(map[string]interface{})
	assert.Equal(t, "#/components/schemas/handler.UpdateAmountRequest", bodySchema["$ref"])

	ok := patch["responses"].(map[string]interface{})["200"].(map[string]interface{})
	okSchema := ok["content"].(map[string]interface{})["application/json"].(map[string]interface{})["schema"].(map[string]interface{})
	assert.Equal(t, "#/components/schemas/handler.PaymentResponse", okSchema["$ref"])

	components := doc["components"].(map[string]interface{})
	schemas := components["schemas"].(map[string]interface{})
	assert.Contains(t, schemas, "handler.ProblemDetails")
	assert.Contains(t, components["securitySchemes"], "BearerAuth")
}

func TestDocs_EveryRouteDocumented(t *testing.T) {
	env := newTestEnv()
	e := newRoutedServer(t, env, 600, 100)
	RegisterDocs(e)

	rec := serve(e, http.MethodGet, "/swagger/doc.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	paths := decodeObject(t, rec)["paths"].(map[string]interface{})

	param := regexp.MustCompile(`:(\w+)`)
	count := 0
	for _, r := range e.Routes() {
		// groups also register not-found catch-alls under their prefix
		if !strings.HasPrefix(r.Path, "/api/v1/") || r.Method == echo.RouteNotFound {
			continue
		}
		count++
		path := param.ReplaceAllString(strings.TrimPrefix(r.Path, "/api/v1"), "{$1}")
		item, ok := paths[path].(map[string]interface{})
		if !assert.True(t, ok, "%s is not documented", path) {
			continue
		}
		assert.Contains(t, item, strings.ToLower(r.Method), "%s %s is not documented", r.Method, path)
	}
	assert.Equal(t, 58, count)
}
