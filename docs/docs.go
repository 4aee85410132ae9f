// Package docs registers the OpenAPI description of the chat API with swag.
// Regenerate with: swag init -g internal/http/router.go -o docs
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
        "/users": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Create a user",
                "operationId": "createUser",
                "parameters": [
                    {"description": "Profile", "name": "body", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/handlers.CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.User"}},
                    "400": {"description": "Missing name", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Storage unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Get a user",
                "operationId": "getUser",
                "parameters": [
                    {"minimum": 1, "type": "integer", "description": "User id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}},
                    "400": {"description": "Invalid id", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Unknown user", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "patch": {
                "description": "Merges the fields present in the body. An empty body or an unknown id reports updated=false.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Update a user",
                "operationId": "updateUser",
                "parameters": [
                    {"minimum": 1, "type": "integer", "description": "User id", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "body", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/domain.UserPatch"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.UpdateUserResponse"}},
                    "400": {"description": "Invalid id or body", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/messages": {
            "get": {
                "description": "Returns all messages oldest first, joined with their sender. Supports If-None-Match.",
                "produces": ["application/json"],
                "tags": ["Messages"],
                "summary": "List messages",
                "operationId": "listMessages",
                "parameters": [
                    {"type": "string", "description": "Return 304 if ETag matches", "name": "If-None-Match", "in": "header"},
                    {"minimum": 1, "type": "integer", "description": "Keep only the latest N", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListMessagesResponse"},
                            "headers": {"ETag": {"type": "string", "description": "Weak ETag for the collection"}}},
                    "304": {"description": "Not Modified", "schema": {"type": "string"}},
                    "503": {"description": "Storage unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Stores the message with status \"sent\" and schedules delivered (+1s) and read (+3s).",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Messages"],
                "summary": "Send a message",
                "operationId": "postMessage",
                "parameters": [
                    {"description": "Message", "name": "body", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/handlers.PostMessageRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.PostMessageResponse"}},
                    "400": {"description": "Empty or too long", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Unknown sender", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Storage unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/messages/events": {
            "get": {
                "description": "Server-sent events. A \"ready\" event opens the stream; each \"status\" event carries {message_id, status, at}. Slow readers drop events and should re-list.",
                "produces": ["text/event-stream"],
                "tags": ["Messages"],
                "summary": "Stream status changes",
                "operationId": "streamEvents",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/notify.Event"}}
                }
            }
        },
        "/messages/search": {
            "get": {
                "description": "Ranks messages by word overlap with q, best first.",
                "produces": ["application/json"],
                "tags": ["Messages"],
                "summary": "Search messages",
                "operationId": "searchMessages",
                "parameters": [
                    {"type": "string", "description": "Search text", "name": "q", "in": "query", "required": true},
                    {"maximum": 50, "minimum": 1, "type": "integer", "description": "Maximum results (default 10, max 50)", "name": "k", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SearchMessagesResponse"}},
                    "400": {"description": "Empty query", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Storage unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/messages/{id}": {
            "delete": {
                "description": "Cancels any pending status transitions and removes the message. Unknown ids report deleted=false.",
                "produces": ["application/json"],
                "tags": ["Messages"],
                "summary": "Delete a message",
                "operationId": "deleteMessage",
                "parameters": [
                    {"minimum": 1, "type": "integer", "description": "Message id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DeleteMessageResponse"}},
                    "400": {"description": "Invalid id", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Message": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "text": {"type": "string"},
                "timestamp": {"type": "string"},
                "status": {"type": "string", "enum": ["sent", "saved", "delivered", "read"]},
                "user_id": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "domain.MessageView": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "text": {"type": "string"},
                "timestamp": {"type": "string"},
                "status": {"type": "string", "enum": ["sent", "saved", "delivered", "read"]},
                "user_id": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "sender_name": {"type": "string"},
                "sender_profile_image": {"type": "string"}
            }
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "about": {"type": "string"},
                "subtitle": {"type": "string"},
                "profile_image": {"type": "string"},
                "last_seen": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "domain.UserPatch": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "about": {"type": "string"},
                "subtitle": {"type": "string"},
                "profile_image": {"type": "string"}
            }
        },
        "handlers.CreateUserRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string", "example": "You"},
                "about": {"type": "string", "example": "Hey there! I am using Thoughts."},
                "subtitle": {"type": "string", "example": "Notes to self"},
                "profile_image": {"type": "string", "example": "https://example.com/me.png"}
            }
        },
        "handlers.UpdateUserResponse": {
            "type": "object",
            "properties": {"updated": {"type": "boolean"}}
        },
        "handlers.PostMessageRequest": {
            "type": "object",
            "required": ["text", "user_id"],
            "properties": {
                "text": {"type": "string", "example": "hi"},
                "user_id": {"type": "integer", "minimum": 1, "example": 1}
            }
        },
        "handlers.PostMessageResponse": {
            "type": "object",
            "properties": {"message": {"$ref": "#/definitions/domain.Message"}}
        },
        "handlers.ListMessagesResponse": {
            "type": "object",
            "properties": {
                "messages": {"type": "array", "items": {"$ref": "#/definitions/domain.MessageView"}}
            }
        },
        "handlers.SearchMessagesResponse": {
            "type": "object",
            "properties": {
                "results": {"type": "array", "items": {"$ref": "#/definitions/search.Result"}}
            }
        },
        "search.Result": {
            "type": "object",
            "properties": {
                "message": {"$ref": "#/definitions/domain.MessageView"},
                "score": {"type": "number"}
            }
        },
        "handlers.DeleteMessageResponse": {
            "type": "object",
            "properties": {"deleted": {"type": "boolean"}}
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string", "example": "123e4567-e89b-12d3-a456-426614174000"},
                "code": {"type": "string", "example": "user_not_found"},
                "message": {"type": "string", "example": "user not found"}
            }
        },
        "notify.Event": {
            "type": "object",
            "properties": {
                "message_id": {"type": "integer"},
                "status": {"type": "string", "enum": ["sent", "saved", "delivered", "read"]},
                "at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Thoughts Chat API",
	Description:      "Local chat persistence with a simulated sent, delivered, read pipeline.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
