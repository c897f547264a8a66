// Package docs registers the OpenAPI document of the ingest API with swag.
// Regenerate it from the handler annotations with `swag init -g cmd/server/main.go`.
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
        "/ingest/uploads": {
            "post": {
                "description": "Upload a CSV, ZIP or XLSX source and open a new ingest job",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["ingest"],
                "summary": "Upload a source file",
                "parameters": [
                    {"type": "file", "description": "Source file (csv, txt, zip or xlsx)", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Target dataset (disclosure or wage)", "name": "dataset", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Source uploaded", "schema": {"$ref": "#/definitions/handler.APIResponse"}},
                    "400": {"description": "Missing file, unknown dataset or unsupported type", "schema": {"$ref": "#/definitions/handler.APIResponse"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/handler.APIResponse"}},
                    "500": {"description": "Upload failed", "schema": {"$ref": "#/definitions/handler.APIResponse"}}
                }
            }
        },
        "/ingest/chunks": {
            "post": {
                "description": "Import the window after the cursor and return counts plus the cursor to resume from",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ingest"],
                "summary": "Process one ingest window",
                "parameters": [
                    {"description": "Chunk request", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.RunChunkRequest"}}
                ],
                "responses": {
                    "200": {"description": "Window processed", "schema": {"$ref": "#/definitions/handler.APIResponse"}},
                    "400": {"description": "Invalid request or cursor", "schema": {"$ref": "#/definitions/handler.APIResponse"}},
                    "404": {"description": "Source not found", "schema": {"$ref": "#/definitions/handler.APIResponse"}},
                    "422": {"description": "Source cannot be ingested", "schema": {"$ref": "#/definitions/handler.APIResponse"}},
                    "502": {"description": "Object storage read failed", "schema": {"$ref": "#/definitions/handler.APIResponse"}}
                }
            }
        },
        "/ingest/jobs/{job_id}": {
            "delete": {
                "description": "Delete the uploaded source and every derived object of a job",
                "produces": ["application/json"],
                "tags": ["ingest"],
                "summary": "Release a job",
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "job_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Job released", "schema": {"$ref": "#/definitions/handler.APIResponse"}},
                    "400": {"description": "Invalid job ID", "schema": {"$ref": "#/definitions/handler.APIResponse"}}
                }
            }
        },
        "/ingest/wage-areas/patch": {
            "post": {
                "description": "Download an allow-listed wage archive and set area names from its geography entry",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ingest"],
                "summary": "Backfill wage area names",
                "parameters": [
                    {"description": "Patch request", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.PatchAreasRequest"}}
                ],
                "responses": {
                    "200": {"description": "Area names patched", "schema": {"$ref": "#/definitions/handler.APIResponse"}},
                    "400": {"description": "Invalid request or host not allow-listed", "schema": {"$ref": "#/definitions/handler.APIResponse"}},
                    "422": {"description": "Archive has no geography entry", "schema": {"$ref": "#/definitions/handler.APIResponse"}},
                    "502": {"description": "Archive download failed", "schema": {"$ref": "#/definitions/handler.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/handler.APIError"},
                "success": {"type": "boolean"}
            }
        },
        "handler.RunChunkRequest": {
            "type": "object",
            "required": ["dataset", "dataset_year", "source_key"],
            "properties": {
                "cursor": {"$ref": "#/definitions/domain.IngestCursor"},
                "dataset": {"type": "string", "example": "disclosure"},
                "dataset_year": {"type": "integer", "example": 2024},
                "source_key": {"type": "string", "example": "jobs/5b1e.../source/LCA_Disclosure_Data_FY2024_Q4.csv"}
            }
        },
        "handler.PatchAreasRequest": {
            "type": "object",
            "required": ["archive_url", "dataset_year"],
            "properties": {
                "archive_url": {"type": "string", "example": "https://flag.dol.gov/sites/default/files/wages/OFLC_Wages_2024-25.zip"},
                "dataset_year": {"type": "integer", "example": 2024}
            }
        },
        "handler.ReleaseResponse": {
            "type": "object",
            "properties": {
                "job_id": {"type": "string", "example": "5b1e0c36-7d0e-4c55-9d8e-0f3f9d3b2a11"},
                "objects_deleted": {"type": "integer", "example": 3}
            }
        },
        "domain.IngestCursor": {
            "type": "object",
            "properties": {
                "mode": {"type": "string", "enum": ["byte", "row"]},
                "offset": {"type": "integer"},
                "line": {"type": "integer"},
                "mapping": {"type": "object"},
                "data_key": {"type": "string"},
                "geography_key": {"type": "string"},
                "encoding": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "lcaload API",
	Description:      "Resumable chunked ingest of LCA disclosures and prevailing wages.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
