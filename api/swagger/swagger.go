package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ClassFlow API",
        "description": "Lesson-to-session assignment engine for class schedules",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Curriculum", "description": "Block templates and lesson definitions"},
        {"name": "Lessons", "description": "Per-class lesson instances"},
        {"name": "Sessions", "description": "Class session calendar"},
        {"name": "Assignments", "description": "Lesson-to-session pairing engine"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/blocks": {
            "get": {
                "tags": ["Curriculum"],
                "summary": "List block templates",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Curriculum"],
                "summary": "Create block template",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBlockRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/blocks/{id}": {
            "get": {
                "tags": ["Curriculum"],
                "summary": "Get block template with definitions",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Curriculum"],
                "summary": "Update block template",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateBlockRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Curriculum"],
                "summary": "Delete block template",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/blocks/{id}/rebalance": {
            "post": {
                "tags": ["Curriculum"],
                "summary": "Sync live classes to a block template",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lesson-definitions": {
            "post": {
                "tags": ["Curriculum"],
                "summary": "Create lesson definition",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateLessonDefinitionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lesson-definitions/{id}": {
            "put": {
                "tags": ["Curriculum"],
                "summary": "Update lesson definition",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateLessonDefinitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Curriculum"],
                "summary": "Delete lesson definition",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/class-blocks": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Instantiate a block template into a class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/InstantiateBlockRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/class-blocks/{id}": {
            "delete": {
                "tags": ["Lessons"],
                "summary": "Delete a class block",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/class-blocks/{id}/lessons": {
            "get": {
                "tags": ["Lessons"],
                "summary": "List a class block's lessons",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Create an ad hoc lesson",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAdHocLessonRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons/from-definition": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Copy a definition's parts into a class block",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateLessonFromDefinitionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons/{id}": {
            "patch": {
                "tags": ["Lessons"],
                "summary": "Update lesson content",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateLessonContentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Lessons"],
                "summary": "Delete lesson",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/lessons/{id}/session": {
            "put": {
                "tags": ["Assignments"],
                "summary": "Pin a lesson to a session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignLessonRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/sessions/generate": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Generate sessions from a weekly recurrence",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateSessionsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/status": {
            "patch": {
                "tags": ["Sessions"],
                "summary": "Update session status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSessionStatusRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/sessions/{id}/schedule": {
            "patch": {
                "tags": ["Sessions"],
                "summary": "Reschedule session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RescheduleSessionRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/sessions/{id}/substitute": {
            "patch": {
                "tags": ["Sessions"],
                "summary": "Assign or clear substitute coach",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignSubstituteRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/classes/{id}/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List a class's sessions",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}/auto-assign": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Recompute lesson pairings for a class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}/timeline": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Get class timeline",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateBlockRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "order_index": {"type": "integer"},
                "estimated_sessions": {"type": "integer"}
            }
        },
        "UpdateBlockRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "order_index": {"type": "integer"},
                "estimated_sessions": {"type": "integer"}
            }
        },
        "CreateLessonDefinitionRequest": {
            "type": "object",
            "required": ["block_id", "title"],
            "properties": {
                "block_id": {"type": "string"},
                "title": {"type": "string"},
                "summary": {"type": "string"},
                "order_index": {"type": "integer"},
                "slide_url": {"type": "string"},
                "make_up_instructions": {"type": "string"},
                "estimated_meeting_count": {"type": "integer"}
            }
        },
        "UpdateLessonDefinitionRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "summary": {"type": "string"},
                "order_index": {"type": "integer"},
                "slide_url": {"type": "string"},
                "make_up_instructions": {"type": "string"},
                "estimated_meeting_count": {"type": "integer"}
            }
        },
        "InstantiateBlockRequest": {
            "type": "object",
            "required": ["class_id", "block_id", "start_date", "end_date"],
            "properties": {
                "class_id": {"type": "string"},
                "block_id": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"}
            }
        },
        "CreateLessonFromDefinitionRequest": {
            "type": "object",
            "required": ["class_block_id", "lesson_definition_id"],
            "properties": {
                "class_block_id": {"type": "string"},
                "lesson_definition_id": {"type": "string"}
            }
        },
        "CreateAdHocLessonRequest": {
            "type": "object",
            "required": ["class_block_id", "title"],
            "properties": {
                "class_block_id": {"type": "string"},
                "title": {"type": "string"},
                "summary": {"type": "string"},
                "order_index": {"type": "integer"},
                "slide_url": {"type": "string"},
                "make_up_instructions": {"type": "string"}
            }
        },
        "UpdateLessonContentRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "summary": {"type": "string"},
                "order_index": {"type": "integer"},
                "slide_url": {"type": "string"},
                "make_up_instructions": {"type": "string"}
            }
        },
        "AssignLessonRequest": {
            "type": "object",
            "required": ["session_id"],
            "properties": {
                "session_id": {"type": "string"}
            }
        },
        "GenerateSessionsRequest": {
            "type": "object",
            "required": ["class_id", "start_date", "end_date", "days", "time"],
            "properties": {
                "class_id": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "days": {"type": "array", "items": {"type": "string"}},
                "time": {"type": "string"},
                "zoom_link": {"type": "string"}
            }
        },
        "UpdateSessionStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["SCHEDULED", "CANCELLED", "COMPLETED"]}
            }
        },
        "RescheduleSessionRequest": {
            "type": "object",
            "required": ["date_time"],
            "properties": {
                "date_time": {"type": "string", "format": "date-time"}
            }
        },
        "AssignSubstituteRequest": {
            "type": "object",
            "properties": {
                "substitute_coach_id": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
