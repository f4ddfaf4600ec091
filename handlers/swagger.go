package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the registry service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>dayjob-registry — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the registry service endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "dayjob-registry", "version": "v0.1.0" },
  "paths": {
    "/api/registry": {
      "post": {
        "summary": "Verify a claimed publication against the chain and record it",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"type":{"type":"string","enum":["JOB","TALENT"]},"cid":{"type":"string"},"postId":{"type":"string"},"signature":{"type":"string"},"wallet":{"type":"string"}}}}}},
        "responses": { "201": { "description": "entry recorded" }, "403": { "description": "token gate denied" }, "409": { "description": "duplicate post id" }, "422": { "description": "proof verification failed" } }
      }
    },
    "/api/jobs": {
      "get": { "summary": "List hydrated job posts", "parameters": [{"name":"limit","in":"query","schema":{"type":"integer"}}], "responses": { "200": { "description": "job records" } } }
    },
    "/api/jobs/{id}": {
      "get": { "summary": "Fetch one job post", "responses": { "200": { "description": "job record" }, "404": { "description": "unknown post id" } } }
    },
    "/api/talent": {
      "get": { "summary": "List hydrated talent profiles", "parameters": [{"name":"limit","in":"query","schema":{"type":"integer"}}], "responses": { "200": { "description": "talent records" } } }
    },
    "/api/talent/{id}": {
      "get": { "summary": "Fetch one talent profile", "responses": { "200": { "description": "talent record" }, "404": { "description": "unknown post id" } } }
    },
    "/api/scan": {
      "get": { "summary": "Rebuild listings directly from chain memos, bypassing the registry", "parameters": [{"name":"type","in":"query","schema":{"type":"string","enum":["JOB","TALENT"]}},{"name":"limit","in":"query","schema":{"type":"integer"}}], "responses": { "200": { "description": "scanned records" } } }
    },
    "/api/ipfs": {
      "post": { "summary": "Pin listing JSON to IPFS", "responses": { "200": { "description": "cid returned" }, "500": { "description": "pin failed" } } }
    },
    "/api/gating/{wallet}": {
      "get": { "summary": "Precheck the JOB token gate for a wallet", "responses": { "200": { "description": "access flag and balance" } } }
    },
    "/api/admin/audit": {
      "post": { "summary": "Reconcile registry cache against chain state (operator JWT)", "responses": { "200": { "description": "audit reports" }, "401": { "description": "bad operator token" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
