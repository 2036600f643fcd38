package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/auth/signin": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Sign in",
                "description": "Sign in with email and password and receive a session",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "credentials",
                        "required": true,
                        "schema": {"$ref": "#/definitions/SignInCredentials"}
                    }
                ],
                "responses": {
                    "200": {"description": "Session", "schema": {"$ref": "#/definitions/Session"}},
                    "401": {"description": "Invalid credentials"},
                    "422": {"description": "Credentials failed validation", "schema": {"$ref": "#/definitions/ValidationFailure"}}
                }
            }
        },
        "/auth/signup": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Sign up",
                "description": "Register a new account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "credentials",
                        "required": true,
                        "schema": {"$ref": "#/definitions/SignUpCredentials"}
                    }
                ],
                "responses": {
                    "201": {"description": "Session", "schema": {"$ref": "#/definitions/Session"}},
                    "409": {"description": "Email already registered"},
                    "422": {"description": "Credentials failed validation", "schema": {"$ref": "#/definitions/ValidationFailure"}}
                }
            }
        },
        "/notes": {
            "get": {
                "tags": ["Notes"],
                "summary": "List notes",
                "description": "List the caller's valid notes, most recently updated first, filtered by a case-insensitive content search",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "q", "type": "string", "description": "Search query; a leading # marks a tag search"}
                ],
                "responses": {
                    "200": {"description": "Notes", "schema": {"$ref": "#/definitions/NotesResponse"}},
                    "401": {"description": "No active session"}
                }
            }
        },
        "/notes/recent": {
            "get": {
                "tags": ["Notes"],
                "summary": "Recent notes",
                "description": "The five most recently updated notes",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Notes", "schema": {"$ref": "#/definitions/NotesResponse"}},
                    "401": {"description": "No active session"}
                }
            }
        },
        "/tasks": {
            "get": {
                "tags": ["Tasks"],
                "summary": "List tasks",
                "description": "List the caller's valid tasks, newest first",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Tasks", "schema": {"$ref": "#/definitions/TasksResponse"}},
                    "401": {"description": "No active session"}
                }
            }
        },
        "/tasks/{id}/status": {
            "put": {
                "tags": ["Tasks"],
                "summary": "Set task status",
                "consumes": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {
                        "in": "body",
                        "name": "status",
                        "required": true,
                        "schema": {"$ref": "#/definitions/UpdateTaskStatusRequest"}
                    }
                ],
                "responses": {
                    "204": {"description": "Status updated"},
                    "400": {"description": "Invalid status"},
                    "404": {"description": "Task not found"},
                    "502": {"description": "Store rejected the update"}
                }
            }
        },
        "/tasks/{id}/cycle": {
            "post": {
                "tags": ["Tasks"],
                "summary": "Cycle task status",
                "description": "Advance uncompleted to in_progress to completed and back, then return the refreshed task list",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Tasks", "schema": {"$ref": "#/definitions/TasksResponse"}},
                    "404": {"description": "Task not found"}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Dashboard",
                "description": "Recent notes, tasks, per-status counts and the number of overdue tasks",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Dashboard"},
                    "401": {"description": "No active session"}
                }
            }
        },
        "/calendar/validate": {
            "post": {
                "tags": ["Calendar"],
                "summary": "Validate calendar event",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "in": "body",
                        "name": "event",
                        "required": true,
                        "schema": {"$ref": "#/definitions/CalendarEvent"}
                    }
                ],
                "responses": {
                    "200": {"description": "Event is valid"},
                    "422": {"description": "Event failed validation", "schema": {"$ref": "#/definitions/ValidationFailure"}}
                }
            }
        }
    },
    "definitions": {
        "SignInCredentials": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "format": "email"},
                "password": {"type": "string", "minLength": 8}
            }
        },
        "SignUpCredentials": {
            "type": "object",
            "required": ["name", "email", "password", "confirmPassword"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string", "format": "email"},
                "password": {"type": "string", "minLength": 8},
                "confirmPassword": {"type": "string"}
            }
        },
        "Session": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_at": {"type": "string", "format": "date-time"},
                "user_id": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "Note": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "title": {"type": "string"},
                "content": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "related_type": {"type": "string"},
                "related_id": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "starred": {"type": "boolean"}
            }
        },
        "Task": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string", "enum": ["uncompleted", "in_progress", "completed"]},
                "importance": {"type": "string", "enum": ["high", "medium", "low"]},
                "dueDate": {"type": "string", "format": "date-time"},
                "category": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "CalendarEvent": {
            "type": "object",
            "required": ["title", "start", "end"],
            "properties": {
                "title": {"type": "string"},
                "start": {"type": "string", "format": "date-time"},
                "end": {"type": "string", "format": "date-time"},
                "allDay": {"type": "boolean"},
                "notes": {"type": "string"}
            }
        },
        "UpdateTaskStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["uncompleted", "in_progress", "completed"]}
            }
        },
        "NotesResponse": {
            "type": "object",
            "properties": {
                "query": {"type": "string"},
                "tag_mode": {"type": "boolean"},
                "total": {"type": "integer"},
                "notes": {"type": "array", "items": {"$ref": "#/definitions/Note"}}
            }
        },
        "TasksResponse": {
            "type": "object",
            "properties": {
                "tasks": {"type": "array", "items": {"$ref": "#/definitions/Task"}}
            }
        },
        "ValidationFailure": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "issues": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "path": {"type": "string"},
                            "message": {"type": "string"}
                        }
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type 'Bearer' followed by a space and the session access token"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "Dayboard API",
	Description:      "Notes, tasks and dashboard data for the Dayboard productivity app",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
