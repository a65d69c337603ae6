// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/accrual/main.go -o docs
package docs

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
        "/healthz": {
            "get": {
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/readyz": {
            "get": {
                "tags": ["health"],
                "summary": "Readiness check",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/api/v1/jobs/daily-investment/run": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Run the daily investment accrual",
                "parameters": [
                    {
                        "description": "run options",
                        "name": "body",
                        "in": "body",
                        "schema": {"$ref": "#/definitions/service.ManualRunRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.runResultResponse"}},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/api/v1/jobs/runs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "List job runs",
                "parameters": [
                    {"type": "integer", "description": "limit", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "offset", "name": "offset", "in": "query"},
                    {"type": "string", "description": "job name", "name": "job_name", "in": "query"},
                    {"type": "string", "description": "cron, api or manual-test", "name": "source", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/jobs/runs/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Get a job run",
                "parameters": [
                    {"type": "integer", "description": "job run id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/system-settings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["system-settings"],
                "summary": "List system settings",
                "parameters": [
                    {"type": "string", "description": "key prefix", "name": "prefix", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/system-settings/switches": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["system-settings"],
                "summary": "List feature switches",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/system-settings/switches/{name}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["system-settings"],
                "summary": "Set a feature switch",
                "parameters": [
                    {"type": "string", "description": "switch name without the feature. prefix", "name": "name", "in": "path", "required": true},
                    {"description": "new value", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.putSwitchRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        }
    },
    "definitions": {
        "handler.putSwitchRequest": {
            "type": "object",
            "properties": {"enabled": {"type": "boolean"}}
        },
        "handler.runResultResponse": {
            "type": "object",
            "properties": {
                "completed": {"type": "integer"},
                "processed": {"type": "integer"},
                "total_applied": {"type": "string"}
            }
        },
        "service.ManualRunRequest": {
            "type": "object",
            "properties": {
                "dry_run": {"type": "boolean"},
                "force_credit_on_completion_only": {"type": "boolean"},
                "send_completion_emails": {"type": "boolean"},
                "send_increment_emails": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Accrual Service API",
	Description:      "Daily investment accrual runs, job history and feature switches.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
