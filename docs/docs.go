// Package docs registers the API's swagger document with swag.
// Regenerate the full document with: swag init -g cmd/docprocess-core/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "DocProcess OSS",
            "url": "https://github.com/custodia-labs/docprocess-core/issues"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/signup": {"post": {"tags": ["Auth"], "summary": "Create an account", "responses": {"201": {"description": "Created"}, "409": {"description": "Email already registered"}}}},
        "/auth/login": {"post": {"tags": ["Auth"], "summary": "Login", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}}},
        "/auth/refresh": {"post": {"tags": ["Auth"], "summary": "Refresh token", "responses": {"200": {"description": "OK"}}}},
        "/auth/logout": {"post": {"tags": ["Auth"], "summary": "Logout", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/me": {
            "get": {"tags": ["Users"], "summary": "Get current user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Users"], "summary": "Update profile", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/contexts": {"get": {"tags": ["Contexts"], "summary": "List contexts and the active one", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/contexts/active": {
            "get": {"tags": ["Contexts"], "summary": "Get the active context view", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Contexts"], "summary": "Switch the active context", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Unknown context"}}}
        },
        "/contexts/{id}/credits": {"post": {"tags": ["Billing"], "summary": "Purchase credits", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "403": {"description": "Not allowed"}}}},
        "/contexts/{id}/invoices": {"get": {"tags": ["Billing"], "summary": "List invoices", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/billing/pricing": {"get": {"tags": ["Billing"], "summary": "Current pricing", "responses": {"200": {"description": "OK"}}}},
        "/documents": {"get": {"tags": ["Documents"], "summary": "List the document ledger", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/documents/{id}": {"get": {"tags": ["Documents"], "summary": "Get a document", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
        "/uploads": {"post": {"tags": ["Uploads"], "summary": "Open an upload batch", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}},
        "/uploads/{id}": {
            "get": {"tags": ["Uploads"], "summary": "Get batch progress", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Uploads"], "summary": "Discard a batch", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/uploads/{id}/files": {"post": {"tags": ["Uploads"], "summary": "Add files to a batch", "consumes": ["multipart/form-data"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/uploads/{id}/files/{fileId}": {"delete": {"tags": ["Uploads"], "summary": "Remove a pending file", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}, "404": {"description": "Not found"}}}},
        "/uploads/{id}/start": {"post": {"tags": ["Uploads"], "summary": "Start uploading", "security": [{"BearerAuth": []}], "responses": {"202": {"description": "Accepted"}, "400": {"description": "Batch empty"}, "409": {"description": "Already started"}}}},
        "/organizations": {"post": {"tags": ["Organizations"], "summary": "Create an organization", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}},
        "/organizations/{id}/invitations": {"post": {"tags": ["Organizations"], "summary": "Invite a member", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}},
        "/invitations/{token}": {"get": {"tags": ["Invitations"], "summary": "View an invitation", "responses": {"200": {"description": "OK"}}}},
        "/helpers": {
            "get": {"tags": ["Helpers"], "summary": "List helper grants", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Helpers"], "summary": "Grant helper access", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT Bearer token. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "DocProcess Core API",
	Description:      "Multi-context document processing API. Upload PDFs as yourself, an organization or a principal you help, and pay per page in credits.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
