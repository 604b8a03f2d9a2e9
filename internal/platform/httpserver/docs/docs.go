// Package docs registers the fulfillment OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/fulfillment/v1/applications/{application_id}/approve": {
            "post": {
                "tags": ["campaign-fulfillment"],
                "summary": "Approve a creator application",
                "parameters": [
                    {"type": "string", "name": "Idempotency-Key", "in": "header"},
                    {"type": "string", "name": "application_id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ErrorResponse"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ErrorResponse"}}}
            }
        },
        "/fulfillment/v1/applications/{application_id}/reject": {
            "post": {
                "tags": ["campaign-fulfillment"],
                "summary": "Reject a creator application",
                "parameters": [{"type": "string", "name": "application_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ErrorResponse"}}}
            }
        },
        "/fulfillment/v1/campaigns/{campaign_id}/products": {
            "post": {
                "tags": ["campaign-fulfillment"],
                "summary": "Add a product and backfill shipments for approved creators",
                "parameters": [{"type": "string", "name": "campaign_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "201": {"description": "Created"}}
            }
        },
        "/fulfillment/v1/shipments/status": {
            "get": {
                "tags": ["campaign-fulfillment"],
                "summary": "Shipment status for a campaign and creator",
                "parameters": [
                    {"type": "string", "name": "campaign_id", "in": "query", "required": true},
                    {"type": "string", "name": "creator_id", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}}
            }
        },
        "/fulfillment/v1/shipments/{shipment_id}/address": {
            "post": {"tags": ["campaign-fulfillment"], "summary": "Submit a shipping address", "parameters": [{"type": "string", "name": "shipment_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/fulfillment/v1/shipments/{shipment_id}/ship": {
            "post": {"tags": ["campaign-fulfillment"], "summary": "Mark a shipment shipped", "parameters": [{"type": "string", "name": "shipment_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/fulfillment/v1/shipments/{shipment_id}/deliver": {
            "post": {"tags": ["campaign-fulfillment"], "summary": "Confirm delivery", "parameters": [{"type": "string", "name": "shipment_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/fulfillment/v1/shipments/{shipment_id}/issue": {
            "post": {"tags": ["campaign-fulfillment"], "summary": "Flag a shipment issue", "parameters": [{"type": "string", "name": "shipment_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/fulfillment/v1/tasks/{task_id}": {
            "get": {"tags": ["campaign-fulfillment"], "summary": "Task detail with uploads and revisions", "parameters": [{"type": "string", "name": "task_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/fulfillment/v1/tasks/{task_id}/can-transition": {
            "get": {
                "tags": ["campaign-fulfillment"],
                "summary": "Check whether a task may move to a status",
                "parameters": [
                    {"type": "string", "name": "task_id", "in": "path", "required": true},
                    {"type": "string", "name": "to", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/fulfillment/v1/tasks/{task_id}/start": {
            "post": {"tags": ["campaign-fulfillment"], "summary": "Start work on a task", "parameters": [{"type": "string", "name": "task_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Shipment not delivered", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/fulfillment/v1/tasks/{task_id}/dispute": {
            "post": {"tags": ["campaign-fulfillment"], "summary": "Open a dispute", "parameters": [{"type": "string", "name": "task_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/fulfillment/v1/tasks/{task_id}/uploads": {
            "post": {
                "tags": ["campaign-fulfillment"],
                "summary": "Upload a deliverable",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"type": "string", "name": "task_id", "in": "path", "required": true},
                    {"type": "file", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "name": "deliverable_type", "in": "formData"}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}}
            }
        },
        "/fulfillment/v1/tasks/{task_id}/revisions": {
            "post": {"tags": ["campaign-fulfillment"], "summary": "Request a content revision", "parameters": [{"type": "string", "name": "task_id", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}}}
        },
        "/fulfillment/v1/tasks/{task_id}/approve": {
            "post": {
                "tags": ["campaign-fulfillment"],
                "summary": "Approve content and create the creator payment",
                "parameters": [
                    {"type": "string", "name": "Idempotency-Key", "in": "header"},
                    {"type": "string", "name": "task_id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/fulfillment/v1/payments": {
            "get": {
                "tags": ["campaign-fulfillment"],
                "summary": "List creator payments",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "creator_id", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/fulfillment/v1/payments/{payment_id}/paid": {
            "post": {"tags": ["campaign-fulfillment"], "summary": "Mark a payment paid", "parameters": [{"type": "string", "name": "payment_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/fulfillment/v1/payouts": {
            "post": {"tags": ["campaign-fulfillment"], "summary": "Create a batch payout", "parameters": [{"type": "string", "name": "Idempotency-Key", "in": "header"}], "responses": {"200": {"description": "Replayed"}, "201": {"description": "Created"}}}
        },
        "/fulfillment/v1/payouts/{batch_id}": {
            "get": {"tags": ["campaign-fulfillment"], "summary": "Get a batch payout", "parameters": [{"type": "string", "name": "batch_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/fulfillment/v1/changes": {
            "get": {"tags": ["campaign-fulfillment"], "summary": "Websocket stream of fulfillment events", "parameters": [{"type": "string", "name": "topic", "in": "query"}], "responses": {"101": {"description": "Switching Protocols"}}}
        }
    },
    "definitions": {
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "object"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Campaign Fulfillment API",
	Description:      "Application review, shipments, task lifecycle, content review and creator payouts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
