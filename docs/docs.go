// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/main.go
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
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Refresh tokens",
                "parameters": [
                    {"description": "Refresh token", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TokenResponse"}}
                }
            }
        },
        "/transactions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Create transaction",
                "parameters": [
                    {"description": "Transaction", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateTransactionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/transactions/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Update transaction",
                "parameters": [
                    {"type": "string", "description": "Transaction ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/transactions/{id}/attachment": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Upload transaction attachment",
                "parameters": [
                    {"type": "string", "description": "Transaction ID", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "Attachment", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/cash-register": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cash-register"],
                "summary": "Create cash register entry",
                "parameters": [
                    {"description": "Cash entry", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateCashEntryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/inventory": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["inventory"],
                "summary": "List inventory",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/parties": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["parties"],
                "summary": "Create party",
                "parameters": [
                    {"description": "Party", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PartyRequest"}}
                ],
                "responses": {"201": {"description": "Created"}}
            }
        }
    },
    "definitions": {
        "common.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        },
        "handlers.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "models.RefreshTokenRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {"refresh_token": {"type": "string"}}
        },
        "models.TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"},
                "refresh_token": {"type": "string"},
                "user_id": {"type": "string"},
                "token_id": {"type": "string"},
                "issued_at": {"type": "string"}
            }
        },
        "handlers.CreateTransactionRequest": {
            "type": "object",
            "required": ["type", "date"],
            "properties": {
                "type": {"type": "string", "enum": ["purchase", "sale", "expense"]},
                "date": {"type": "string"},
                "invoice_number": {"type": "string"},
                "party_id": {"type": "string"},
                "crop_id": {"type": "string"},
                "quantity": {"type": "number"},
                "rate": {"type": "number"},
                "amount": {"type": "number"},
                "payment_mode": {"type": "string", "enum": ["cash", "credit", "bank_transfer", "cheque"]},
                "payment_status": {"type": "string", "enum": ["pending", "completed"]},
                "quality": {"type": "string"},
                "notes": {"type": "string"},
                "category": {"type": "string"}
            }
        },
        "handlers.CreateCashEntryRequest": {
            "type": "object",
            "required": ["type", "description"],
            "properties": {
                "date": {"type": "string"},
                "type": {"type": "string", "enum": ["cash_in", "cash_out"]},
                "description": {"type": "string"},
                "reference": {"type": "string"},
                "amount": {"type": "number"},
                "party_id": {"type": "string"}
            }
        },
        "handlers.PartyRequest": {
            "type": "object",
            "required": ["name", "type", "phone"],
            "properties": {
                "name": {"type": "string"},
                "code": {"type": "string"},
                "type": {"type": "string"},
                "phone": {"type": "string"},
                "email": {"type": "string"},
                "opening_balance": {"type": "number"},
                "balance_type": {"type": "string", "enum": ["credit", "debit"]}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "AgroLedger API",
	Description:      "Crop trading bookkeeping: stock, party ledgers and the cash register.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
