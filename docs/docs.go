// Package docs registers the OpenAPI document served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://swagger.io/terms/",
        "contact": {
            "name": "API Support",
            "url": "http://www.swagger.io/support",
            "email": "support@swagger.io"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/generate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["推荐"],
                "summary": "生成下一篇推荐",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.SuggestionRequest"}}
                ],
                "responses": {
                    "200": {"description": "成功", "schema": {"$ref": "#/definitions/models.SuggestionResponse"}},
                    "400": {"description": "参数错误", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "405": {"description": "方法不允许", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "500": {"description": "生成失败", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/api/subscribe": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["线索"],
                "summary": "提交线索",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.LeadRequest"}}
                ],
                "responses": {
                    "200": {"description": "成功", "schema": {"$ref": "#/definitions/models.LeadResponse"}},
                    "400": {"description": "参数错误", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "405": {"description": "方法不允许", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "500": {"description": "未配置或转发失败", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/api/widget/track": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["组件"],
                "summary": "记录一次阅读（嵌入模式）",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.TrackRequest"}}
                ],
                "responses": {
                    "200": {"description": "成功", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "400": {"description": "参数错误", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "404": {"description": "文章不存在", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/api/catalog": {
            "get": {
                "produces": ["application/json"],
                "tags": ["组件"],
                "summary": "文章目录",
                "responses": {
                    "200": {"description": "成功", "schema": {"$ref": "#/definitions/models.CatalogResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["系统"],
                "summary": "健康检查",
                "responses": {
                    "200": {"description": "成功", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "503": {"description": "数据库不可用", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.APIResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 0},
                "message": {"type": "string", "example": "success"},
                "data": {}
            }
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Failed to generate suggestion."},
                "details": {"type": "string"}
            }
        },
        "models.SuggestionRequest": {
            "type": "object",
            "properties": {
                "history": {"type": "array", "items": {"type": "string"}},
                "dominantPersona": {"type": "string", "example": "Advanced Technical Innovation-Driven"},
                "availableArticleTitles": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.SuggestionResponse": {
            "type": "object",
            "properties": {
                "suggestion": {
                    "type": "object",
                    "properties": {
                        "title": {"type": "string"},
                        "reason": {"type": "string"}
                    }
                }
            }
        },
        "models.LeadRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "suggestedArticle": {"type": "string"},
                "hook": {"type": "string"},
                "subscribedToNewsletter": {"type": "boolean"}
            }
        },
        "models.LeadResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Success"}
            }
        },
        "models.TrackRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "headless-cms"},
                "clues": {"type": "object", "additionalProperties": {"type": "number"}}
            }
        },
        "models.CatalogResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 0},
                "message": {"type": "string", "example": "success"},
                "data": {"type": "array", "items": {"type": "object"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Next Read API",
	Description:      "「下一篇推荐」组件后端：基于读者画像的 LLM 推荐代理与线索提交代理",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
