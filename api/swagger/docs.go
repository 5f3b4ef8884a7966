// Package swagger registers the OpenAPI document served at /swagger.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/{role}/ordenes/{family}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the cached orders of the family filtered by the page's search controls, each with its enabled actions",
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List orders",
                "parameters": [
                    {"type": "string", "description": "Role page (jefe-proyecto|gerencia|contabilidad)", "name": "role", "in": "path", "required": true},
                    {"type": "string", "description": "Order family (compra|servicio)", "name": "family", "in": "path", "required": true},
                    {"type": "string", "description": "Substring of numero_orden or nombre_proveedor", "name": "search", "in": "query"},
                    {"type": "string", "description": "Exact estado, TODOS for all", "name": "estado", "in": "query"},
                    {"type": "string", "description": "APROBADO, PENDIENTE or TODOS", "name": "aprobacion", "in": "query"},
                    {"type": "string", "description": "Order date yyyy-MM-dd", "name": "fecha", "in": "query"},
                    {"type": "boolean", "description": "Include soft-deleted orders (management only)", "name": "eliminadas", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/{role}/ordenes/{family}/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Get order",
                "parameters": [
                    {"type": "string", "name": "role", "in": "path", "required": true},
                    {"type": "string", "name": "family", "in": "path", "required": true},
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/{role}/ordenes/{family}/{id}/acciones/{action}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Runs approve, transfer, soft delete or restore. Without confirmed=true the call answers 428 with the confirmation prompt.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Execute order action",
                "parameters": [
                    {"type": "string", "name": "role", "in": "path", "required": true},
                    {"type": "string", "name": "family", "in": "path", "required": true},
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "action", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/handler.ActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.Response"}},
                    "428": {"description": "Precondition Required", "schema": {"$ref": "#/definitions/response.Response"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/{role}/ordenes/{family}/{id}/upload-file": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Upload operation file",
                "parameters": [
                    {"type": "string", "name": "role", "in": "path", "required": true},
                    {"type": "string", "name": "family", "in": "path", "required": true},
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "One to four PDF or image files", "name": "files", "in": "formData", "required": true},
                    {"type": "boolean", "name": "confirmed", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "428": {"description": "Precondition Required", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/{role}/ordenes/{family}/{id}/upload-comprobante-retencion": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Upload retention receipt",
                "parameters": [
                    {"type": "string", "name": "role", "in": "path", "required": true},
                    {"type": "string", "name": "family", "in": "path", "required": true},
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "Receipt file", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Receipt serial number", "name": "nro_serie", "in": "formData", "required": true},
                    {"type": "boolean", "name": "confirmed", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "428": {"description": "Precondition Required", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/drafts/{form}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["drafts"],
                "summary": "Get draft",
                "parameters": [{"type": "string", "name": "form", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["drafts"],
                "summary": "Save draft",
                "parameters": [
                    {"type": "string", "name": "form", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SaveDraftRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["drafts"],
                "summary": "Delete draft",
                "parameters": [{"type": "string", "name": "form", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/api/transition-logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transition-logs"],
                "summary": "List transition logs",
                "parameters": [
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Number of items per page (default 20)", "name": "limit", "in": "query"},
                    {"type": "string", "name": "family", "in": "query"},
                    {"type": "string", "name": "action", "in": "query"},
                    {"type": "string", "name": "outcome", "in": "query"},
                    {"type": "string", "name": "user_id", "in": "query"},
                    {"type": "integer", "name": "order_id", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object"}}
                }
            }
        }
    },
    "definitions": {
        "handler.ActionRequest": {
            "type": "object",
            "properties": {"confirmed": {"type": "boolean"}}
        },
        "handler.SaveDraftRequest": {
            "type": "object",
            "required": ["rows"],
            "properties": {"rows": {"type": "array", "items": {"type": "object"}}}
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "data": {},
                "details": {},
                "error": {"type": "string"},
                "status": {"type": "string"},
                "status_code": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Back-office Orders Gateway API",
	Description:      "Role-scoped order authorization pages backed by the Order API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
