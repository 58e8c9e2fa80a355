// Package docs holds the OpenAPI description served at /swagger/index.html.
// Regenerate with: swag init -g cmd/order-service/main.go -o docs
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
        "/orders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List the caller's orders, newest first",
                "parameters": [
                    {"type": "string", "description": "owner account id", "name": "ownerId", "in": "query", "required": true},
                    {"type": "integer", "description": "page size (max 100)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.ListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Create an order from a cart snapshot",
                "parameters": [
                    {"description": "order", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/order.CreateOrderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/order.CreateOrderResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Get one of the caller's orders by order number or id",
                "parameters": [
                    {"type": "string", "description": "order number or id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "owner account id", "name": "ownerId", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.Order"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/admin/orders": {
            "get": {
                "security": [{"AdminToken": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "List all orders",
                "parameters": [
                    {"type": "integer", "description": "page size (max 100)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.ListResponse"}}
                }
            }
        },
        "/admin/orders/{id}": {
            "get": {
                "security": [{"AdminToken": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Get any order by order number or id",
                "parameters": [
                    {"type": "string", "description": "order number or id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.Order"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/admin/orders/{id}/status": {
            "put": {
                "security": [{"AdminToken": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Move an order along its fulfilment states",
                "parameters": [
                    {"type": "string", "description": "order number or id", "name": "id", "in": "path", "required": true},
                    {"description": "new status", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/order.UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/payment/create-order": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payment"],
                "summary": "Create a gateway payment intent for an online order",
                "parameters": [
                    {"description": "intent", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/payment.CreateIntentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/payment.Intent"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/payment/verify": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payment"],
                "summary": "Verify a signed gateway completion callback",
                "parameters": [
                    {"description": "callback fields", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/payment.VerifyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/payment.VerifyResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/payment/fail": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["payment"],
                "summary": "Record a declined payment so it can be retried",
                "parameters": [
                    {"description": "failure", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/payment.FailRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        }
    },
    "definitions": {
        "httpx.HTTPError": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "order not found"}}
        },
        "order.LineItem": {
            "type": "object",
            "properties": {
                "productId": {"type": "string"},
                "name": {"type": "string", "example": "Wireless Mouse"},
                "brand": {"type": "string"},
                "unitPrice": {"type": "string", "example": "500.00"},
                "quantity": {"type": "integer", "example": 2},
                "image": {"type": "string"}
            }
        },
        "order.ShippingAddress": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "address": {"type": "string"},
                "city": {"type": "string"},
                "state": {"type": "string"},
                "zipCode": {"type": "string"}
            }
        },
        "order.Payment": {
            "type": "object",
            "properties": {
                "method": {"type": "string", "enum": ["online", "cod"]},
                "status": {"type": "string", "enum": ["pending", "completed", "failed", "cancelled"]},
                "remoteOrderId": {"type": "string"},
                "remotePaymentId": {"type": "string"},
                "transactionId": {"type": "string"},
                "amount": {"type": "string"},
                "currency": {"type": "string"},
                "failureReason": {"type": "string"},
                "completedAt": {"type": "string"},
                "failedAt": {"type": "string"},
                "cancelledAt": {"type": "string"}
            }
        },
        "order.Order": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "orderId": {"type": "string", "example": "EVR-0192b7c4-5d6e-7f00-8a1b-2c3d4e5f6a7b"},
                "ownerId": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/order.LineItem"}},
                "subtotal": {"type": "string"},
                "tax": {"type": "string"},
                "shipping": {"type": "string"},
                "total": {"type": "string"},
                "shippingAddress": {"$ref": "#/definitions/order.ShippingAddress"},
                "orderStatus": {"type": "string", "enum": ["pending", "confirmed", "processing", "shipped", "delivered", "cancelled"]},
                "payment": {"$ref": "#/definitions/order.Payment"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "order.CreateOrderRequest": {
            "type": "object",
            "properties": {
                "ownerId": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/order.LineItem"}},
                "shippingAddress": {"$ref": "#/definitions/order.ShippingAddress"},
                "subtotal": {"type": "string", "example": "1300.00"},
                "total": {"type": "string", "example": "1300.00"},
                "paymentMethod": {"type": "string", "enum": ["online", "cod"]}
            }
        },
        "order.CreateOrderResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "orderId": {"type": "string"},
                "order": {"$ref": "#/definitions/order.Order"}
            }
        },
        "order.UpdateStatusRequest": {
            "type": "object",
            "properties": {
                "orderStatus": {"type": "string", "enum": ["pending", "confirmed", "processing", "shipped", "delivered", "cancelled"]}
            }
        },
        "order.ListResponse": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/order.Order"}}
            }
        },
        "payment.CreateIntentRequest": {
            "type": "object",
            "properties": {
                "orderId": {"type": "string"},
                "amount": {"type": "string", "example": "1300.00"},
                "ownerId": {"type": "string"}
            }
        },
        "payment.Intent": {
            "type": "object",
            "properties": {
                "orderId": {"type": "string"},
                "orderNumber": {"type": "string"},
                "remoteOrderId": {"type": "string"},
                "publishableKey": {"type": "string"},
                "amount": {"type": "integer", "example": 130000},
                "currency": {"type": "string", "example": "INR"},
                "description": {"type": "string"},
                "demo": {"type": "boolean"}
            }
        },
        "payment.VerifyRequest": {
            "type": "object",
            "properties": {
                "remoteOrderId": {"type": "string"},
                "remotePaymentId": {"type": "string"},
                "signature": {"type": "string"},
                "orderId": {"type": "string"},
                "ownerId": {"type": "string"}
            }
        },
        "payment.VerifyResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "orderId": {"type": "string"},
                "paymentId": {"type": "string"}
            }
        },
        "payment.FailRequest": {
            "type": "object",
            "properties": {
                "orderId": {"type": "string"},
                "ownerId": {"type": "string"},
                "remoteOrderId": {"type": "string"},
                "reason": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "AdminToken": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "EverCart Order Service",
	Description:      "Checkout orders and payment verification for the EverCart storefront.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
