// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/main.go -o docs
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
        "/tournaments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "List tournaments",
                "parameters": [
                    {"type": "string", "description": "UPCOMING, ONGOING or COMPLETED", "name": "status", "in": "query"},
                    {"type": "string", "description": "Sport", "name": "sport", "in": "query"},
                    {"type": "string", "description": "Organizer", "name": "organizer_id", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Create a tournament",
                "parameters": [
                    {"description": "Tournament", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateTournamentInput"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Tournament"}}}
            }
        },
        "/tournaments/{tournamentID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Tournament with teams and matches",
                "parameters": [{"type": "string", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/tournaments/{tournamentID}/teams": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["teams"],
                "summary": "Register a team",
                "parameters": [
                    {"type": "string", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true},
                    {"description": "Team", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.AddTeamInput"}}
                ],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/tournaments/{tournamentID}/start": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Generate fixtures and start the tournament",
                "parameters": [{"type": "string", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/tournaments/{tournamentID}/standings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Points table derived from completed matches",
                "parameters": [{"type": "string", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/matches/{matchID}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Update live score, status, details, time or venue",
                "parameters": [{"type": "string", "description": "Match ID", "name": "matchID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/matches/{matchID}/complete": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Record the final result and advance the winner",
                "parameters": [{"type": "string", "description": "Match ID", "name": "matchID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        }
    },
    "definitions": {
        "models.Tournament": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "sport": {"type": "string"},
                "format": {"type": "string"},
                "status": {"type": "string"},
                "organizer_id": {"type": "string"},
                "start_date": {"type": "string"}
            }
        },
        "services.CreateTournamentInput": {
            "type": "object",
            "required": ["name", "sport", "format", "start_date"],
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "sport": {"type": "string", "enum": ["Cricket", "Football", "Kabaddi", "Badminton", "Tennis", "Other"]},
                "format": {"type": "string", "enum": ["League", "Knockout", "GroupKnockout"]},
                "start_date": {"type": "string"},
                "location": {"type": "string"},
                "join_code": {"type": "string"}
            }
        },
        "services.AddTeamInput": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "captain_id": {"type": "string"},
                "player_ids": {"type": "array", "items": {"type": "string"}},
                "join_code": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Tornamate API",
	Description:      "Tournament fixtures, live scoring and standings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
