// Package docs registers the OpenAPI document served under /swagger.
// Keep it in step with the @Router annotations in internal/handlers.
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
        "/api/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "Server is healthy", "schema": {"$ref": "#/definitions/models.HealthResponse"}},
                    "503": {"description": "Store still loading", "schema": {"$ref": "#/definitions/models.HealthResponse"}}
                }
            }
        },
        "/api/version": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Server version",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.VersionResponse"}}}
            }
        },
        "/api/photos": {
            "get": {
                "produces": ["application/json"],
                "tags": ["photos"],
                "summary": "List photos",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PhotoListResponse"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["photos"],
                "summary": "Add a photo",
                "parameters": [{"in": "body", "name": "photo", "required": true, "schema": {"$ref": "#/definitions/models.NewPhotoInput"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Photo"}},
                    "400": {"description": "Missing title or url", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/api/photos/upload": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["photos"],
                "summary": "Upload a photo",
                "parameters": [
                    {"type": "file", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "name": "title", "in": "formData"},
                    {"type": "string", "name": "description", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Photo"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/api/photos/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["photos"],
                "summary": "Get a photo",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Photo"}},
                    "404": {"description": "Photo not found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["photos"],
                "summary": "Delete a photo",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Photo not found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/api/photos/{id}/favorite": {
            "post": {
                "produces": ["application/json"],
                "tags": ["favorites"],
                "summary": "Toggle favorite",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Updated photo", "schema": {"$ref": "#/definitions/models.Photo"}},
                    "404": {"description": "Photo not found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/api/favorites": {
            "get": {
                "produces": ["application/json"],
                "tags": ["favorites"],
                "summary": "List favorites",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PhotoListResponse"}}}
            }
        },
        "/api/albums": {
            "get": {
                "produces": ["application/json"],
                "tags": ["albums"],
                "summary": "List albums",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AlbumListResponse"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["albums"],
                "summary": "Create an album",
                "parameters": [{"in": "body", "name": "album", "required": true, "schema": {"$ref": "#/definitions/models.NewAlbumInput"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Album"}},
                    "400": {"description": "Missing name", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/api/albums/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["albums"],
                "summary": "Get an album",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AlbumResponse"}},
                    "404": {"description": "Album not found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["albums"],
                "summary": "Replace an album",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "album", "required": true, "schema": {"$ref": "#/definitions/models.UpdateAlbumRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Album"}},
                    "400": {"description": "Missing name or unknown cover photo", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Album not found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["albums"],
                "summary": "Delete an album",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Album not found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/api/albums/{id}/photos": {
            "get": {
                "produces": ["application/json"],
                "tags": ["albums"],
                "summary": "List album photos",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PhotoListResponse"}},
                    "404": {"description": "Album not found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["albums"],
                "summary": "Add photos to an album",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "photos", "required": true, "schema": {"$ref": "#/definitions/models.AddPhotosRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AddPhotosResult"}},
                    "404": {"description": "Album not found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/api/albums/{id}/photos/{photoId}": {
            "put": {
                "tags": ["albums"],
                "summary": "Add a photo to an album",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "photoId", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Photo or album not found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["albums"],
                "summary": "Remove a photo from an album",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "photoId", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Photo, album or membership not found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.VersionResponse": {
            "type": "object",
            "properties": {
                "version": {"type": "string"},
                "gitCommit": {"type": "string"},
                "buildTime": {"type": "string"},
                "goVersion": {"type": "string"}
            }
        },
        "models.Photo": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "url": {"type": "string"},
                "description": {"type": "string"},
                "size": {"type": "string", "enum": ["regular", "wide", "tall"]},
                "favorite": {"type": "boolean"},
                "albumIds": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "models.Album": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "coverPhotoId": {"type": "integer"}
            }
        },
        "models.AlbumSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "coverPhotoId": {"type": "integer"},
                "photoCount": {"type": "integer"},
                "cover": {"$ref": "#/definitions/models.Photo"}
            }
        },
        "models.NewPhotoInput": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "url": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "models.NewAlbumInput": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "models.UpdateAlbumRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "coverPhotoId": {"type": "integer"}
            }
        },
        "models.AddPhotosRequest": {
            "type": "object",
            "properties": {"photoIds": {"type": "array", "items": {"type": "integer"}}}
        },
        "models.AddPhotosResult": {
            "type": "object",
            "properties": {
                "added": {"type": "array", "items": {"type": "integer"}},
                "notFound": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "models.AlbumResponse": {
            "type": "object",
            "properties": {
                "album": {"$ref": "#/definitions/models.Album"},
                "photos": {"type": "array", "items": {"$ref": "#/definitions/models.Photo"}}
            }
        },
        "models.PhotoListResponse": {
            "type": "object",
            "properties": {
                "photos": {"type": "array", "items": {"$ref": "#/definitions/models.Photo"}},
                "totalCount": {"type": "integer"}
            }
        },
        "models.AlbumListResponse": {
            "type": "object",
            "properties": {
                "albums": {"type": "array", "items": {"$ref": "#/definitions/models.AlbumSummary"}},
                "totalCount": {"type": "integer"}
            }
        },
        "models.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "version": {"type": "string"},
                "timestamp": {"type": "string"},
                "photos": {"type": "integer"},
                "favorites": {"type": "integer"},
                "albums": {"type": "integer"}
            }
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Gallery Server API",
	Description:      "Photos, favorites and albums of a single gallery profile.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
