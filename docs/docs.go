// Package docs Swagger 文档（swag 格式），由 /swagger/*any 提供
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
        "/api/decode": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["调试"],
                "summary": "解码一帧 ATU 上行",
                "parameters": [
                    {"description": "帧内容", "name": "request", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/api.DecodeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.DecodeResponse"}},
                    "400": {"description": "帧过短或编码错误", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/pins": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["定位点"],
                "summary": "查询定位点",
                "parameters": [
                    {"type": "integer", "description": "每页数量(0为全部)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "偏移量", "name": "offset", "in": "query"},
                    {"type": "boolean", "description": "每只羊仅返回最新一条", "name": "latest", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/api.PinView"}}}
                }
            }
        },
        "/api/pins/addPin": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["定位点"],
                "summary": "接收网络服务器上行事件并入库",
                "parameters": [
                    {"description": "上行事件", "name": "request", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/ingest.Uplink"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.PinView"}},
                    "400": {"description": "解码失败", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "409": {"description": "重复上行", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/pins/removePin/{genId}": {
            "delete": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["定位点"],
                "summary": "删除定位点",
                "parameters": [{"type": "string", "description": "定位点ID", "name": "genId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.PinView"}},
                    "404": {"description": "不存在", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/pins/{sheepId}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["定位点"],
                "summary": "查询羊只最新位置",
                "parameters": [{"type": "string", "description": "羊只名称", "name": "sheepId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.PinView"}},
                    "404": {"description": "不存在", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.DecodeRequest": {
            "type": "object",
            "properties": {
                "payload": {"type": "string"},
                "encoding": {"type": "string", "enum": ["hex", "base64"]},
                "fPort": {"type": "integer"},
                "report": {"type": "boolean"}
            }
        },
        "api.DecodeResponse": {
            "type": "object",
            "properties": {
                "telemetry": {"$ref": "#/definitions/atu.Telemetry"},
                "report": {"type": "object"}
            }
        },
        "api.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "api.PinView": {
            "type": "object",
            "properties": {
                "genId": {"type": "string"},
                "sheepId": {"type": "string"},
                "devEUI": {"type": "string"},
                "deviceName": {"type": "string"},
                "fCnt": {"type": "integer"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "accelero_x": {"type": "integer"},
                "sats": {"type": "integer"},
                "objectJSON": {"type": "string"},
                "createdAt": {"type": "string"},
                "date": {"type": "string", "example": "05/03/2024, 14:07:09"}
            }
        },
        "atu.Telemetry": {
            "type": "object",
            "properties": {
                "accelero_x": {"type": "integer"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "sats": {"type": "integer"},
                "name": {"type": "string", "example": "ATU"}
            }
        },
        "ingest.Uplink": {
            "type": "object",
            "properties": {
                "devEUI": {"type": "string"},
                "deviceName": {"type": "string"},
                "fPort": {"type": "integer"},
                "fCnt": {"type": "integer"},
                "data": {"type": "string", "description": "base64 原始帧"},
                "objectJSON": {"type": "string"},
                "variables": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Lamb Link API",
	Description:      "LoRaWAN 羊只定位与姿态告警服务",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
