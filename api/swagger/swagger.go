package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "DocFlow API",
        "description": "Realm-scoped document review workflow service",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Documents", "description": "Document drafting and review workflow"},
        {"name": "Notifications", "description": "Workflow notifications"}
    ],
    "paths": {
        "/realms/{realm_id}/documents": {
            "get": {
                "tags": ["Documents"],
                "summary": "List documents visible to the caller",
                "parameters": [
                    {"name": "realm_id", "in": "path", "required": true, "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "creator_id", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Documents"],
                "summary": "Draft a new document",
                "parameters": [
                    {"name": "realm_id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateDocumentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/{id}": {
            "get": {
                "tags": ["Documents"],
                "summary": "Get document detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Documents"],
                "summary": "Update document fields",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateDocumentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/{id}/submit-for-review": {
            "post": {
                "tags": ["Documents"],
                "summary": "Submit a document for review",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitForReviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/{id}/review-action": {
            "post": {
                "tags": ["Documents"],
                "summary": "Approve or reject a pending document",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/{id}/review-history": {
            "get": {
                "tags": ["Documents"],
                "summary": "List a document's review history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/{id}/review-history/export": {
            "get": {
                "tags": ["Documents"],
                "summary": "Download a document's review history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List the caller's notifications",
                "parameters": [
                    {"name": "is_read", "in": "query", "type": "boolean"},
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/{id}": {
            "patch": {
                "tags": ["Notifications"],
                "summary": "Mark a notification read or unread",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkNotificationReadRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Document": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "realm_id": {"type": "string"},
                "creator_id": {"type": "string"},
                "last_editor_id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string", "enum": ["DRAFT", "PENDING_REVIEW", "REJECTED", "PUBLISHED", "ARCHIVED"]},
                "current_reviewer_id": {"type": "string"},
                "rejection_reason": {"type": "string"},
                "allowed_groups": {"type": "array", "items": {"type": "string"}},
                "published_at": {"type": "string"},
                "version": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "ReviewRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "document_id": {"type": "string"},
                "reviewer_id": {"type": "string"},
                "action": {"type": "string", "enum": ["APPROVE", "REJECT"]},
                "status": {"type": "string"},
                "rejection_reason": {"type": "string"},
                "realm_id": {"type": "string"},
                "reviewed_at": {"type": "string"}
            }
        },
        "Notification": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "sender_id": {"type": "string"},
                "recipient_id": {"type": "string"},
                "document_id": {"type": "string"},
                "type": {"type": "string"},
                "message": {"type": "string"},
                "is_read": {"type": "boolean"},
                "realm_id": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "CreateDocumentRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"}
            },
            "required": ["title"]
        },
        "UpdateDocumentRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "allowed_groups": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string"},
                "current_reviewer_id": {"type": "string"}
            }
        },
        "SubmitForReviewRequest": {
            "type": "object",
            "properties": {
                "reviewer_id": {"type": "string"}
            },
            "required": ["reviewer_id"]
        },
        "ReviewActionRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["APPROVE", "REJECT"]},
                "rejection_reason": {"type": "string"}
            },
            "required": ["action"]
        },
        "MarkNotificationReadRequest": {
            "type": "object",
            "properties": {
                "is_read": {"type": "boolean"}
            },
            "required": ["is_read"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
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
