// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
  "openapi": "3.1.0",
  "info": {
    "title": "{{.Title}}",
    "description": "{{escape .Description}}",
    "version": "{{.Version}}"
  },
  "servers": [{"url": "/api/v1"}],
  "paths": {
    "/locations": {
      "get": {"tags": ["locations"], "operationId": "listLocations", "summary": "List locations", "responses": {"200": {"$ref": "#/components/responses/Envelope"}}},
      "post": {"tags": ["locations"], "operationId": "createLocation", "summary": "Create a location",
        "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/CreateLocationRequest"}}}},
        "responses": {"201": {"$ref": "#/components/responses/Envelope"}, "400": {"$ref": "#/components/responses/Error"}, "409": {"$ref": "#/components/responses/Error"}}}
    },
    "/locations/{id}": {
      "parameters": [{"$ref": "#/components/parameters/LocationIDPath"}],
      "get": {"tags": ["locations"], "operationId": "getLocation", "summary": "Get a location", "responses": {"200": {"$ref": "#/components/responses/Envelope"}, "404": {"$ref": "#/components/responses/Error"}}},
      "patch": {"tags": ["locations"], "operationId": "updateLocation", "summary": "Activate, deactivate or reprioritize a location",
        "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/UpdateLocationRequest"}}}},
        "responses": {"200": {"$ref": "#/components/responses/Envelope"}, "400": {"$ref": "#/components/responses/Error"}, "404": {"$ref": "#/components/responses/Error"}}}
    },
    "/inventory/items/{product_id}/{location_id}": {
      "parameters": [{"$ref": "#/components/parameters/ProductID"}, {"$ref": "#/components/parameters/LocationID"}],
      "get": {"tags": ["inventory"], "operationId": "getInventoryItem", "summary": "Ledger entry of a product at a location", "responses": {"200": {"$ref": "#/components/responses/Envelope"}, "404": {"$ref": "#/components/responses/Error"}}}
    },
    "/inventory/items/{product_id}/{location_id}/thresholds": {
      "parameters": [{"$ref": "#/components/parameters/ProductID"}, {"$ref": "#/components/parameters/LocationID"}],
      "put": {"tags": ["inventory"], "operationId": "updateInventoryThresholds", "summary": "Set alert and reorder thresholds",
        "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Thresholds"}}}},
        "responses": {"200": {"$ref": "#/components/responses/Envelope"}, "400": {"$ref": "#/components/responses/Error"}, "404": {"$ref": "#/components/responses/Error"}}}
    },
    "/inventory/items/{product_id}/{location_id}/movements": {
      "parameters": [{"$ref": "#/components/parameters/ProductID"}, {"$ref": "#/components/parameters/LocationID"}],
      "get": {"tags": ["inventory"], "operationId": "listInventoryMovements", "summary": "Movement history in sequence order", "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
    },
    "/inventory/items/{product_id}/{location_id}/reconcile": {
      "parameters": [{"$ref": "#/components/parameters/ProductID"}, {"$ref": "#/components/parameters/LocationID"}],
      "get": {"tags": ["inventory"], "operationId": "reconcileInventoryItem", "summary": "Replay history against the item", "responses": {"200": {"$ref": "#/components/responses/Envelope"}, "404": {"$ref": "#/components/responses/Error"}}}
    },
    "/inventory/products/{product_id}/items": {
      "parameters": [{"$ref": "#/components/parameters/ProductID"}],
      "get": {"tags": ["inventory"], "operationId": "listInventoryByProduct", "summary": "Ledger entries of a product", "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
    },
    "/inventory/products/{product_id}/available": {
      "parameters": [{"$ref": "#/components/parameters/ProductID"}],
      "get": {"tags": ["inventory"], "operationId": "getProductAvailability", "summary": "Available quantity over all locations", "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
    },
    "/inventory/locations/{location_id}/items": {
      "parameters": [{"$ref": "#/components/parameters/LocationID"}],
      "get": {"tags": ["inventory"], "operationId": "listInventoryByLocation", "summary": "Ledger entries held at a location", "responses": {"200": {"$ref": "#/components/responses/Envelope"}, "404": {"$ref": "#/components/responses/Error"}}}
    },
    "/inventory/movements": {
      "post": {"tags": ["inventory"], "operationId": "recordInventoryMovement", "summary": "Record a purchase, sale, adjustment, loss or return",
        "parameters": [{"$ref": "#/components/parameters/Actor"}],
        "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/MovementRequest"}}}},
        "responses": {"201": {"$ref": "#/components/responses/Envelope"}, "400": {"$ref": "#/components/responses/Error"}, "404": {"$ref": "#/components/responses/Error"}, "422": {"$ref": "#/components/responses/Error"}}}
    },
    "/inventory/transfers": {
      "post": {"tags": ["inventory"], "operationId": "transferInventory", "summary": "Move stock between two locations",
        "parameters": [{"$ref": "#/components/parameters/Actor"}],
        "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/TransferRequest"}}}},
        "responses": {"201": {"$ref": "#/components/responses/Envelope"}, "400": {"$ref": "#/components/responses/Error"}, "422": {"$ref": "#/components/responses/Error"}}}
    },
    "/inventory/reservations": {
      "post": {"tags": ["reservations"], "operationId": "reserveInventory", "summary": "Reserve stock",
        "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ReservationRequest"}}}},
        "responses": {"200": {"$ref": "#/components/responses/Envelope"}, "400": {"$ref": "#/components/responses/Error"}}}
    },
    "/inventory/reservations/release": {
      "post": {"tags": ["reservations"], "operationId": "releaseInventory", "summary": "Give back reserved stock",
        "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ReservationRequest"}}}},
        "responses": {"200": {"$ref": "#/components/responses/Envelope"}, "422": {"$ref": "#/components/responses/Error"}}}
    },
    "/inventory/allocations": {
      "post": {"tags": ["reservations"], "operationId": "allocateInventory", "summary": "Reserve across locations in priority order",
        "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/AllocateRequest"}}}},
        "responses": {"200": {"$ref": "#/components/responses/Envelope"}, "400": {"$ref": "#/components/responses/Error"}}}
    },
    "/inventory/alerts": {
      "get": {"tags": ["alerts"], "operationId": "listStockAlerts", "summary": "Active stock alerts",
        "parameters": [{"name": "location_id", "in": "query", "schema": {"type": "string", "format": "uuid"}}],
        "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
    },
    "/inventory/forecast": {
      "get": {"tags": ["forecast"], "operationId": "getInventoryForecast", "summary": "Demand forecast and reorder advice",
        "parameters": [
          {"name": "product_id", "in": "query", "required": true, "schema": {"type": "string", "format": "uuid"}},
          {"name": "location_id", "in": "query", "required": true, "schema": {"type": "string", "format": "uuid"}},
          {"name": "period", "in": "query", "schema": {"type": "string", "enum": ["week", "month", "quarter"], "default": "month"}}
        ],
        "responses": {"200": {"$ref": "#/components/responses/Envelope"}, "400": {"$ref": "#/components/responses/Error"}, "404": {"$ref": "#/components/responses/Error"}}}
    },
    "/inventory/reorder-suggestions": {
      "get": {"tags": ["forecast"], "operationId": "listReorderSuggestions", "summary": "Draft purchase orders", "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
    }
  },
  "components": {
    "parameters": {
      "ProductID": {"name": "product_id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}},
      "LocationID": {"name": "location_id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}},
      "LocationIDPath": {"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}},
      "Actor": {"name": "X-Actor", "in": "header", "schema": {"type": "string"}}
    },
    "responses": {
      "Envelope": {"description": "Success", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Response"}}}},
      "Error": {"description": "Error", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Response"}}}}
    },
    "schemas": {
      "Response": {"type": "object", "properties": {
        "success": {"type": "boolean"},
        "data": {},
        "error": {"type": "object", "properties": {
          "code": {"type": "string"}, "message": {"type": "string"}, "request_id": {"type": "string"},
          "details": {"type": "array", "items": {"type": "object", "properties": {"field": {"type": "string"}, "message": {"type": "string"}}}}
        }}
      }},
      "CreateLocationRequest": {"type": "object", "required": ["name", "type"], "properties": {
        "code": {"type": "string"}, "name": {"type": "string"}, "address": {"type": "string"},
        "type": {"type": "string", "enum": ["warehouse", "store", "dropship", "supplier"]},
        "priority": {"type": "integer", "minimum": 0}
      }},
      "UpdateLocationRequest": {"type": "object", "properties": {"active": {"type": "boolean"}, "priority": {"type": "integer", "minimum": 0}}},
      "Thresholds": {"type": "object", "properties": {
        "low_stock_threshold": {"type": "integer"}, "reorder_point": {"type": "integer"}, "reorder_quantity": {"type": "integer"},
        "max_stock": {"type": "integer"}, "unit_cost": {"type": "string"}, "sku": {"type": "string"}
      }},
      "MovementRequest": {"type": "object", "required": ["product_id", "location_id", "type"], "properties": {
        "product_id": {"type": "string", "format": "uuid"}, "location_id": {"type": "string", "format": "uuid"},
        "type": {"type": "string", "enum": ["purchase", "sale", "adjustment", "loss", "return"]},
        "quantity": {"type": "integer"}, "counted_quantity": {"type": "integer"}, "delta": {"type": "integer"},
        "from_reserved": {"type": "boolean"}, "sku": {"type": "string"}, "unit_cost": {"type": "string"},
        "reason": {"type": "string"}, "reference": {"type": "string"}
      }},
      "TransferRequest": {"type": "object", "required": ["product_id", "from_location_id", "to_location_id", "quantity"], "properties": {
        "product_id": {"type": "string", "format": "uuid"}, "from_location_id": {"type": "string", "format": "uuid"},
        "to_location_id": {"type": "string", "format": "uuid"}, "quantity": {"type": "integer", "minimum": 1},
        "reason": {"type": "string"}, "reference": {"type": "string"}
      }},
      "ReservationRequest": {"type": "object", "required": ["product_id", "quantity"], "properties": {
        "product_id": {"type": "string", "format": "uuid"}, "location_id": {"type": "string", "format": "uuid"},
        "quantity": {"type": "integer", "minimum": 1}, "reference": {"type": "string"}
      }},
      "AllocateRequest": {"type": "object", "required": ["product_id", "quantity"], "properties": {
        "product_id": {"type": "string", "format": "uuid"}, "quantity": {"type": "integer", "minimum": 1}, "reference": {"type": "string"}
      }}
    }
  }
}`

// SwaggerInfo holds the document metadata
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Title:            "Inventory API",
	Description:      "Multi-location inventory ledger, reservations, allocation, alerts and forecasts",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
