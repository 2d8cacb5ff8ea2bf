package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Newsroom Console Gateway",
        "description": "Session, route guard, bulk import, polls and comments for the newsroom console",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Browser session and account"},
        {"name": "Articles", "description": "Article pages and view counting"},
        {"name": "Comments", "description": "Comment threads and ownership"},
        {"name": "Polls", "description": "Active poll and the vote ledger"},
        {"name": "Imports", "description": "Bulk article import and outcome reports"},
        {"name": "Status", "description": "Gateway status"}
    ],
    "paths": {
        "/status": {
            "get": {
                "tags": ["Status"],
                "summary": "Gateway counters",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/auth/session": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current session state",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionState"}}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}},
                    {"in": "query", "name": "from", "type": "string", "description": "Path to return to after login"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LoginOutcome"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register an account",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"in": "formData", "name": "fullName", "type": "string", "required": true},
                    {"in": "formData", "name": "username", "type": "string", "required": true},
                    {"in": "formData", "name": "email", "type": "string", "required": true},
                    {"in": "formData", "name": "password", "type": "string", "required": true},
                    {"in": "formData", "name": "avatar", "type": "file"}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log out",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/account": {
            "patch": {
                "tags": ["Auth"],
                "summary": "Update account details",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/UpdateAccountRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}}}
            }
        },
        "/account/password": {
            "post": {
                "tags": ["Auth"],
                "summary": "Change password",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/account/avatar": {
            "patch": {
                "tags": ["Auth"],
                "summary": "Replace avatar",
                "consumes": ["multipart/form-data"],
                "parameters": [{"in": "formData", "name": "avatar", "type": "file", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}}}
            }
        },
        "/account/cover-image": {
            "patch": {
                "tags": ["Auth"],
                "summary": "Replace cover image",
                "consumes": ["multipart/form-data"],
                "parameters": [{"in": "formData", "name": "coverImage", "type": "file", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}}}
            }
        },
        "/articles/{slug}": {
            "get": {
                "tags": ["Articles"],
                "summary": "Article page with related articles",
                "parameters": [{"in": "path", "name": "slug", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/comments/{articleId}": {
            "get": {
                "tags": ["Comments"],
                "summary": "List comments with delete permissions",
                "parameters": [{"in": "path", "name": "articleId", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Comments"],
                "summary": "Add a comment",
                "parameters": [
                    {"in": "path", "name": "articleId", "type": "string", "required": true},
                    {"in": "body", "name": "payload", "required": true, "schema": {"type": "object", "properties": {"content": {"type": "string"}}}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/comments/{articleId}/{commentId}": {
            "delete": {
                "tags": ["Comments"],
                "summary": "Delete a comment the session may delete",
                "parameters": [
                    {"in": "path", "name": "articleId", "type": "string", "required": true},
                    {"in": "path", "name": "commentId", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/polls/active": {
            "get": {
                "tags": ["Polls"],
                "summary": "Active poll with this browser's vote receipt",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/polls/{id}/vote": {
            "post": {
                "tags": ["Polls"],
                "summary": "Vote once",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "payload", "required": true, "schema": {"type": "object", "properties": {"optionId": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already voted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/imports": {
            "get": {
                "tags": ["Imports"],
                "summary": "Import pipeline state",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ImportView"}}}
            },
            "delete": {
                "tags": ["Imports"],
                "summary": "Reset the pipeline",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ImportView"}}}
            }
        },
        "/imports/template": {
            "get": {
                "tags": ["Imports"],
                "summary": "Download the CSV template",
                "produces": ["text/csv"],
                "responses": {"200": {"description": "CSV file"}}
            }
        },
        "/imports/file": {
            "post": {
                "tags": ["Imports"],
                "summary": "Accept and preview a CSV file",
                "consumes": ["multipart/form-data"],
                "parameters": [{"in": "formData", "name": "file", "type": "file", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ImportView"}},
                    "400": {"description": "Invalid or empty file", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/imports/submit": {
            "post": {
                "tags": ["Imports"],
                "summary": "Submit the batch in one request",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ImportView"}},
                    "409": {"description": "Submission in flight", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/imports/report": {
            "post": {
                "tags": ["Imports"],
                "summary": "Export the outcome",
                "parameters": [{"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/OutcomeReport"}}}
            }
        },
        "/reports/{token}": {
            "get": {
                "tags": ["Imports"],
                "summary": "Download an exported outcome",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"in": "path", "name": "token", "type": "string", "required": true}],
                "responses": {"200": {"description": "Report file"}}
            }
        }
    },
    "definitions": {
        "User": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "fullName": {"type": "string"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "avatar": {"type": "string"},
                "coverImage": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "editor", "reporter", "user"]}
            }
        },
        "SessionState": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/User"},
                "loading": {"type": "boolean"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "LoginOutcome": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/User"},
                "redirect": {"type": "string"}
            }
        },
        "UpdateAccountRequest": {
            "type": "object",
            "properties": {
                "fullName": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "oldPassword": {"type": "string"},
                "newPassword": {"type": "string"}
            }
        },
        "PreviewRow": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "category": {"type": "string"},
                "status": {"type": "string"},
                "tags": {"type": "string"},
                "missingRequired": {"type": "boolean"}
            }
        },
        "ImportFailure": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "ImportOutcome": {
            "type": "object",
            "properties": {
                "successful": {"type": "integer"},
                "failed": {"type": "integer"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/ImportFailure"}}
            }
        },
        "ImportView": {
            "type": "object",
            "properties": {
                "phase": {"type": "string", "enum": ["empty", "preview", "submitting", "outcome"]},
                "fileName": {"type": "string"},
                "fileSize": {"type": "integer"},
                "rowCount": {"type": "integer"},
                "preview": {"type": "array", "items": {"$ref": "#/definitions/PreviewRow"}},
                "outcome": {"$ref": "#/definitions/ImportOutcome"}
            }
        },
        "OutcomeReport": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "fileName": {"type": "string"},
                "downloadUrl": {"type": "string"},
                "expiresAt": {"type": "string", "format": "date-time"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
