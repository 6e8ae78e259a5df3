package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TrendX Analytics API",
        "description": "Rankings, rollups and exports over competition engagement data",
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
        {"name": "Competitions", "description": "Per-competition overview, ranking and videos"},
        {"name": "Series", "description": "Daily and weekday publishing series"},
        {"name": "Global", "description": "Cross-competition rollups"},
        {"name": "Curation", "description": "Manual videos and cache control"},
        {"name": "Exports", "description": "CSV/PDF downloads and stored snapshots"}
    ],
    "paths": {
        "/competitions": {
            "get": {
                "tags": ["Competitions"],
                "summary": "List competitions",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/competitions/{id}/overview": {
            "get": {
                "tags": ["Competitions"],
                "summary": "Competition overview cards",
                "parameters": [{"$ref": "#/parameters/competitionId"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown competition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/competitions/{id}/ranking": {
            "get": {
                "tags": ["Competitions"],
                "summary": "Creator leaderboard",
                "parameters": [
                    {"$ref": "#/parameters/competitionId"},
                    {"name": "metric", "in": "query", "type": "string", "enum": ["views", "likes", "engagement", "videos"]},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "min_views", "in": "query", "type": "integer"},
                    {"$ref": "#/parameters/preset"},
                    {"$ref": "#/parameters/start"},
                    {"$ref": "#/parameters/end"},
                    {"$ref": "#/parameters/page"},
                    {"$ref": "#/parameters/pageSize"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "UNKNOWN_METRIC or INVALID_WINDOW", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/competitions/{id}/ranking/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a leaderboard",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"$ref": "#/parameters/competitionId"}, {"$ref": "#/parameters/format"}],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/competitions/{id}/videos": {
            "get": {
                "tags": ["Competitions"],
                "summary": "Competition video listing",
                "parameters": [
                    {"$ref": "#/parameters/competitionId"},
                    {"name": "platform", "in": "query", "type": "string", "enum": ["tiktok", "youtube", "instagram"]},
                    {"name": "link_only", "in": "query", "type": "boolean"},
                    {"name": "viral_only", "in": "query", "type": "boolean"},
                    {"$ref": "#/parameters/page"},
                    {"$ref": "#/parameters/pageSize"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/competitions/{id}/videos/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a video listing",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"$ref": "#/parameters/competitionId"}, {"$ref": "#/parameters/format"}],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/competitions/{id}/series/daily": {
            "get": {
                "tags": ["Series"],
                "summary": "Daily publishing series",
                "parameters": [{"$ref": "#/parameters/competitionId"}, {"$ref": "#/parameters/preset"}, {"$ref": "#/parameters/start"}, {"$ref": "#/parameters/end"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/competitions/{id}/series/weekday": {
            "get": {
                "tags": ["Series"],
                "summary": "Weekday publishing series",
                "parameters": [{"$ref": "#/parameters/competitionId"}, {"$ref": "#/parameters/preset"}, {"$ref": "#/parameters/start"}, {"$ref": "#/parameters/end"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/global/summary": {
            "get": {
                "tags": ["Global"],
                "summary": "System-wide rollup",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/global/series/daily": {
            "get": {
                "tags": ["Global"],
                "summary": "Daily series across competitions",
                "parameters": [{"$ref": "#/parameters/preset"}, {"$ref": "#/parameters/start"}, {"$ref": "#/parameters/end"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/global/top": {
            "get": {
                "tags": ["Global"],
                "summary": "Top creators and videos",
                "parameters": [
                    {"name": "n", "in": "query", "type": "integer"},
                    {"name": "metric", "in": "query", "type": "string", "enum": ["views", "likes", "engagement"]}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/manual-videos": {
            "get": {
                "tags": ["Curation"],
                "summary": "Curator-added videos",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "competition_id", "in": "query", "type": "integer"},
                    {"name": "reason", "in": "query", "type": "string"},
                    {"$ref": "#/parameters/page"},
                    {"$ref": "#/parameters/pageSize"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/manual-videos/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download curator-added videos",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"$ref": "#/parameters/format"}],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/cache/invalidate": {
            "post": {
                "tags": ["Curation"],
                "summary": "Drop cached aggregates",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/InvalidateRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a stored export snapshot",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportParams"}}],
                "responses": {"202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export snapshot status",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a stored snapshot",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "File"}, "403": {"description": "Expired or invalid token"}}
            }
        },
        "/system/metrics": {
            "get": {
                "tags": ["Global"],
                "summary": "Instrumentation snapshot",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "parameters": {
        "competitionId": {"name": "id", "in": "path", "required": true, "type": "integer"},
        "preset": {"name": "preset", "in": "query", "type": "string", "enum": ["all", "last_week", "last_month", "last_3_months"]},
        "start": {"name": "start", "in": "query", "type": "string", "description": "Unix seconds or YYYY-MM-DD"},
        "end": {"name": "end", "in": "query", "type": "string", "description": "Unix seconds or YYYY-MM-DD"},
        "page": {"name": "page", "in": "query", "type": "integer"},
        "pageSize": {"name": "page_size", "in": "query", "type": "integer", "enum": [25, 50, 100, 200]},
        "format": {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
    },
    "definitions": {
        "InvalidateRequest": {
            "type": "object",
            "properties": {"competition_id": {"type": "integer"}}
        },
        "ExportParams": {
            "type": "object",
            "required": ["kind", "format"],
            "properties": {
                "kind": {"type": "string", "enum": ["ranking", "videos", "manual"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "competition_id": {"type": "integer"},
                "metric": {"type": "string"},
                "limit": {"type": "integer"},
                "preset": {"type": "string"},
                "start": {"type": "string"},
                "end": {"type": "string"},
                "min_views": {"type": "integer"},
                "platform": {"type": "string"},
                "link_only": {"type": "boolean"},
                "viral_only": {"type": "boolean"},
                "reason": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"},
                "page_count": {"type": "integer"}
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
