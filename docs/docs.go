// Package docs registers the Swagger document served at /swagger/doc.json.
// Regenerate with `swag init -g cmd/main.go` after changing handler annotations.
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
        "/api/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Mock login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/services.LoginInput"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Validation error"}, "401": {"description": "Wrong staff PIN"}}
            }
        },
        "/api/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Current player",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/api/shops": {
            "get": {
                "tags": ["shops"],
                "summary": "List shops with live occupancy",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/shops/{shopID}": {
            "get": {
                "tags": ["shops"],
                "summary": "Shop detail with live occupancy",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "shopID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/shops/{shopID}/dashboard": {
            "get": {
                "tags": ["shops"],
                "summary": "Shop dashboard",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "shopID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/shops/{shopID}/tables": {
            "get": {
                "tags": ["tables"],
                "summary": "List tables of a shop with their head count",
                "parameters": [{"type": "string", "name": "shopID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["tables"],
                "summary": "Create a table",
                "parameters": [
                    {"type": "string", "name": "shopID", "in": "path", "required": true},
                    {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/services.CreateTableInput"}}
                ],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Name already used"}}
            }
        },
        "/api/shops/{shopID}/tables/{tableID}/seatings": {
            "get": {
                "tags": ["seatings"],
                "summary": "Players seated at a table",
                "parameters": [
                    {"type": "string", "name": "shopID", "in": "path", "required": true},
                    {"type": "string", "name": "tableID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["seatings"],
                "summary": "Check everyone out of a table",
                "parameters": [
                    {"type": "string", "name": "shopID", "in": "path", "required": true},
                    {"type": "string", "name": "tableID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/shops/{shopID}/tournaments": {
            "get": {
                "tags": ["tournaments"],
                "summary": "List tournaments of a shop",
                "parameters": [{"type": "string", "name": "shopID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["tournaments"],
                "summary": "Create a tournament",
                "parameters": [
                    {"type": "string", "name": "shopID", "in": "path", "required": true},
                    {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/services.CreateTournamentInput"}}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error or invalid blind structure"}}
            }
        },
        "/api/shops/{shopID}/tournaments/{tournamentID}/control": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["tournaments"],
                "summary": "Drive the tournament clock",
                "description": "action is one of start, pause, resume, break, next, end.",
                "parameters": [
                    {"type": "string", "name": "shopID", "in": "path", "required": true},
                    {"type": "string", "name": "tournamentID", "in": "path", "required": true},
                    {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/handlers.controlRequest"}}
                ],
                "responses": {"200": {"description": "Clock state"}, "409": {"description": "Action not allowed in the current state"}}
            }
        },
        "/api/seatings": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["seatings"],
                "summary": "Check in to a table",
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/services.CheckInInput"}}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "AlreadySeated, TableUnavailable, TableFull or SeatTaken"}}
            }
        },
        "/api/seatings/{seatingID}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["seatings"],
                "summary": "Leave the table",
                "parameters": [{"type": "string", "name": "seatingID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        }
    },
    "definitions": {
        "handlers.controlRequest": {
            "type": "object",
            "required": ["action"],
            "properties": {"action": {"type": "string", "enum": ["start", "pause", "resume", "break", "next", "end"]}}
        },
        "services.LoginInput": {
            "type": "object",
            "required": ["provider"],
            "properties": {
                "provider": {"type": "string", "enum": ["apple", "google", "phone"]},
                "email": {"type": "string"},
                "staffPin": {"type": "string"}
            }
        },
        "services.CheckInInput": {
            "type": "object",
            "required": ["shopId", "tableId"],
            "properties": {
                "shopId": {"type": "string"},
                "tableId": {"type": "string"},
                "seatNumber": {"type": "integer", "minimum": 1, "maximum": 10}
            }
        },
        "services.CreateTableInput": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "maxSeats": {"type": "integer", "minimum": 1, "maximum": 10}
            }
        },
        "blinds.Level": {
            "type": "object",
            "properties": {
                "level": {"type": "integer"},
                "smallBlind": {"type": "integer"},
                "bigBlind": {"type": "integer"},
                "ante": {"type": "integer"},
                "duration": {"type": "integer"},
                "isBreak": {"type": "boolean"}
            }
        },
        "services.CreateTournamentInput": {
            "type": "object",
            "required": ["name", "structure"],
            "properties": {
                "name": {"type": "string"},
                "structure": {"type": "array", "items": {"$ref": "#/definitions/blinds.Level"}},
                "entryFee": {"type": "integer"},
                "startingStack": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "PokerNow venue API",
	Description:      "Table occupancy, seat check-in and tournament clocks for poker venues.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
