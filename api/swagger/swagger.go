package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Exam Seating API",
        "description": "Exam seat allocation, plan lookup and printable exports",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Faculty sign in"},
        {"name": "Seating", "description": "Allocation and the current plan"},
        {"name": "Students", "description": "Public seat lookup"},
        {"name": "Exports", "description": "Room lists, attendance sheets and summaries"},
        {"name": "Faculty", "description": "Faculty directory administration"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Faculty sign in",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seating/allocate": {
            "post": {
                "tags": ["Seating"],
                "summary": "Generate seating plan",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AllocateSeatingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid layout or schedule", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Capacity exceeded or duplicate student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Roster schema error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seating/allocate/upload": {
            "post": {
                "tags": ["Seating"],
                "summary": "Generate seating plan from uploaded rosters",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "roster", "in": "formData", "type": "file", "required": true},
                    {"name": "layout", "in": "formData", "type": "string", "required": true},
                    {"name": "schedule", "in": "formData", "type": "string", "required": true},
                    {"name": "seed", "in": "formData", "type": "integer"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Upload too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seating/plan": {
            "get": {
                "tags": ["Seating"],
                "summary": "Current seating plan",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No plan", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Seating"],
                "summary": "Delete the current plan",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/seating/plan/assignments": {
            "get": {
                "tags": ["Seating"],
                "summary": "List plan assignments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "group", "in": "query", "type": "string"},
                    {"name": "room", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seating/plan/summary": {
            "get": {
                "tags": ["Seating"],
                "summary": "Room and branch occupancy",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seating/plan/dates": {
            "get": {
                "tags": ["Seating"],
                "summary": "Exam dates of the current plan",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seats/{hallTicket}": {
            "get": {
                "tags": ["Students"],
                "summary": "Find a student's seat",
                "parameters": [
                    {"name": "hallTicket", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not seated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seating/plan/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Request a plan export",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No plan", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seating/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/faculty/directory": {
            "put": {
                "tags": ["Faculty"],
                "summary": "Replace faculty directory",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceDirectoryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["facultyId", "secureKey"],
            "properties": {
                "facultyId": {"type": "string"},
                "secureKey": {"type": "string"}
            }
        },
        "Student": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "id": {"type": "string"},
                "group": {"type": "string"},
                "contact": {"type": "string"}
            }
        },
        "Room": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "benchCount": {"type": "integer"},
                "occupantsPerBench": {"type": "integer"}
            }
        },
        "Floor": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "rooms": {"type": "array", "items": {"$ref": "#/definitions/Room"}}
            }
        },
        "Block": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "floors": {"type": "array", "items": {"$ref": "#/definitions/Floor"}}
            }
        },
        "Layout": {
            "type": "object",
            "properties": {
                "blocks": {"type": "array", "items": {"$ref": "#/definitions/Block"}}
            }
        },
        "ExamSchedule": {
            "type": "object",
            "properties": {
                "startDate": {"type": "string", "example": "2024-05-01"},
                "endDate": {"type": "string", "example": "2024-05-03"},
                "dailyStartTime": {"type": "string", "example": "09:00"},
                "dailyEndTime": {"type": "string", "example": "12:00"},
                "reuseSamePlanAcrossDays": {"type": "boolean"}
            }
        },
        "RosterSource": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "AllocateSeatingRequest": {
            "type": "object",
            "properties": {
                "sources": {"type": "array", "items": {"$ref": "#/definitions/RosterSource"}},
                "students": {"type": "array", "items": {"$ref": "#/definitions/Student"}},
                "layout": {"$ref": "#/definitions/Layout"},
                "schedule": {"$ref": "#/definitions/ExamSchedule"},
                "seed": {"type": "integer"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "required": ["type", "format"],
            "properties": {
                "type": {"type": "string", "enum": ["room_list", "attendance_sheet", "summary"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            }
        },
        "FacultyMember": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["ADMIN", "FACULTY"]}
            }
        },
        "ReplaceDirectoryRequest": {
            "type": "object",
            "properties": {
                "secureKey": {"type": "string"},
                "secureKeyHash": {"type": "string"},
                "faculty": {"type": "array", "items": {"$ref": "#/definitions/FacultyMember"}}
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
