package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Card Order API",
        "description": "Business-card order intake backed by an Excel worksheet",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Applications", "description": "Applicant order flow"},
        {"name": "Admin", "description": "Order administration"}
    ],
    "paths": {
        "/health": {
            "get": {"summary": "Liveness check", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {"200": {"description": "Ready"}, "503": {"description": "A dependency is unavailable"}}
            }
        },
        "/api/application-submit": {
            "post": {
                "tags": ["Applications"],
                "summary": "Submit a business-card order",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitApplicationRequest"}}
                ],
                "responses": {
                    "200": {"description": "Submitted", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Invalid form", "schema": {"$ref": "#/definitions/Envelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/application-confirm": {
            "get": {
                "tags": ["Applications"],
                "summary": "Fetch the draft awaiting the applicant's decision",
                "parameters": [
                    {"name": "applicationId", "in": "query", "required": true, "type": "string"},
                    {"name": "email", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Not awaiting confirmation", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/application-approve": {
            "post": {
                "tags": ["Applications"],
                "summary": "Approve the draft for production",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplicantRequest"}}
                ],
                "responses": {
                    "200": {"description": "Approved", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/application-modify": {
            "post": {
                "tags": ["Applications"],
                "summary": "Request changes to the draft",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ModificationRequest"}}
                ],
                "responses": {
                    "200": {"description": "Forwarded", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Missing reason", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/application-status": {
            "get": {
                "tags": ["Applications"],
                "summary": "Look up an order's status",
                "parameters": [
                    {"name": "applicationId", "in": "query", "required": true, "type": "string"},
                    {"name": "email", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Missing parameters", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/admin-login": {
            "post": {
                "tags": ["Admin"],
                "summary": "Authenticate the administrator",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token issued", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Bad credentials", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/admin-applications": {
            "get": {
                "tags": ["Admin"],
                "summary": "List applications",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "description": "Status name or label; empty or all for every row"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Unknown status", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/admin-detail": {
            "get": {
                "tags": ["Admin"],
                "summary": "Get one application",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "applicationId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/admin-status": {
            "post": {
                "tags": ["Admin"],
                "summary": "Change an application's status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "Changed", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Unknown status", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}},
                    "409": {"description": "Transition not allowed", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/admin-upload": {
            "post": {
                "tags": ["Admin"],
                "summary": "Upload a draft and send it to the applicant",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "applicationId", "in": "formData", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Delivered", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "No file", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "SubmitApplicationRequest": {
            "type": "object",
            "required": ["name", "email", "quantity", "sameAsExisting", "isLawyer"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "quantity": {"type": "integer"},
                "sameAsExisting": {"type": "string", "enum": ["Yes", "No"]},
                "isLawyer": {"type": "string", "enum": ["Lawyer", "Staff"]},
                "lawyerName": {"type": "string"},
                "remarks": {"type": "string"}
            }
        },
        "ApplicantRequest": {
            "type": "object",
            "required": ["applicationId", "email"],
            "properties": {
                "applicationId": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "ModificationRequest": {
            "type": "object",
            "required": ["applicationId", "email", "reason"],
            "properties": {
                "applicationId": {"type": "string"},
                "email": {"type": "string"},
                "reason": {"type": "string"}
            }
        },
        "UpdateStatusRequest": {
            "type": "object",
            "required": ["applicationId", "status"],
            "properties": {
                "applicationId": {"type": "string"},
                "status": {"type": "string", "enum": ["Requested", "DraftDelivered", "ModificationRequested", "InProduction", "Completed", "Deleted"]}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "object"},
                "applicationId": {"type": "string"},
                "message": {"type": "string"},
                "code": {"type": "string"}
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
