package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Content Review API",
        "description": "Review schedules, owner reminders and review reports for CMS pages",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "in": "header",
            "name": "Authorization"
        }
    },
    "tags": [
        {
            "name": "Review",
            "description": "Per-page review status and settings"
        },
        {
            "name": "Site",
            "description": "Site-wide review defaults"
        },
        {
            "name": "Reports",
            "description": "Review reports and exports"
        },
        {
            "name": "Sweeps",
            "description": "Daily owner reminder sweep"
        }
    ],
    "paths": {
        "/pages/{id}/review": {
            "get": {
                "tags": [
                    "Review"
                ],
                "summary": "Review status of a page",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Page not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Review"
                ],
                "summary": "Mark a page as reviewed",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/SubmitReviewRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Not an owner of a page due for review",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/pages/{id}/review-settings": {
            "get": {
                "tags": [
                    "Review"
                ],
                "summary": "Review settings of a page",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "put": {
                "tags": [
                    "Review"
                ],
                "summary": "Update review settings of a page",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdatePageReviewSettingsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Administrators only",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/review/schedule": {
            "get": {
                "tags": [
                    "Review"
                ],
                "summary": "Review frequency presets",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/site/review-settings": {
            "get": {
                "tags": [
                    "Site"
                ],
                "summary": "Site review defaults",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "put": {
                "tags": [
                    "Site"
                ],
                "summary": "Update site review defaults",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateSiteReviewSettingsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Administrators only",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/reports/due-for-review": {
            "get": {
                "tags": [
                    "Reports"
                ],
                "summary": "Pages due for review",
                "produces": [
                    "application/json",
                    "text/csv",
                    "application/pdf"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "review_date_after",
                        "in": "query",
                        "type": "string",
                        "format": "date"
                    },
                    {
                        "name": "review_date_before",
                        "in": "query",
                        "type": "string",
                        "format": "date"
                    },
                    {
                        "name": "show_virtual",
                        "in": "query",
                        "type": "boolean"
                    },
                    {
                        "name": "owner_name",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "only_mine",
                        "in": "query",
                        "type": "boolean"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "json",
                            "csv",
                            "pdf"
                        ]
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/reports/without-schedule": {
            "get": {
                "tags": [
                    "Reports"
                ],
                "summary": "Pages without a review schedule",
                "produces": [
                    "application/json",
                    "text/csv",
                    "application/pdf"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "show_virtual",
                        "in": "query",
                        "type": "boolean"
                    },
                    {
                        "name": "owner_name",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "only_mine",
                        "in": "query",
                        "type": "boolean"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "json",
                            "csv",
                            "pdf"
                        ]
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sweeps": {
            "post": {
                "tags": [
                    "Sweeps"
                ],
                "summary": "Queue a review notification sweep",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sweeps/last": {
            "get": {
                "tags": [
                    "Sweeps"
                ],
                "summary": "Last review sweep report",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No sweep has run yet",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "SubmitReviewRequest": {
            "type": "object",
            "properties": {
                "note": {
                    "type": "string",
                    "maxLength": 4000
                }
            }
        },
        "UpdatePageReviewSettingsRequest": {
            "type": "object",
            "required": [
                "review_policy"
            ],
            "properties": {
                "review_policy": {
                    "type": "string",
                    "enum": [
                        "Inherit",
                        "Disabled",
                        "Custom"
                    ]
                },
                "review_period_days": {
                    "type": "integer",
                    "enum": [
                        0,
                        1,
                        7,
                        30,
                        60,
                        91,
                        121,
                        152,
                        183,
                        365
                    ]
                },
                "next_review_date": {
                    "type": "string",
                    "format": "date"
                },
                "owner_user_ids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "owner_group_ids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "UpdateSiteReviewSettingsRequest": {
            "type": "object",
            "properties": {
                "review_period_days": {
                    "type": "integer",
                    "enum": [
                        0,
                        1,
                        7,
                        30,
                        60,
                        91,
                        121,
                        152,
                        183,
                        365
                    ]
                },
                "review_from": {
                    "type": "string",
                    "format": "email"
                },
                "review_subject": {
                    "type": "string",
                    "maxLength": 255
                },
                "review_body": {
                    "type": "string"
                },
                "owner_user_ids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "owner_group_ids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
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
