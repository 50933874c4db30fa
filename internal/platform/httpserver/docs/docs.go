// Package docs registers the OpenAPI document served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {"post": {"tags": ["users"], "summary": "Register a user", "responses": {"201": {"description": "Created"}, "409": {"description": "Email or username taken"}}}},
        "/auth/authenticate": {"post": {"tags": ["users"], "summary": "Issue an access token and cookie", "responses": {"200": {"description": "OK"}, "401": {"description": "Bad credentials"}}}},
        "/auth/logout": {"post": {"tags": ["users"], "summary": "Clear the access cookie", "responses": {"204": {"description": "No Content"}}}},
        "/users/me": {
            "get": {"tags": ["users"], "summary": "Current user", "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["users"], "summary": "Update profile", "responses": {"200": {"description": "OK"}}}
        },
        "/users/search": {"get": {"tags": ["users"], "summary": "Search users by email or username", "parameters": [{"name": "q", "in": "query", "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/workspaces": {
            "get": {"tags": ["boards"], "summary": "Workspaces of the caller", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["boards"], "summary": "Create a workspace", "responses": {"201": {"description": "Created"}}}
        },
        "/workspaces/{workspaceId}": {
            "get": {"tags": ["boards"], "summary": "Workspace view", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "patch": {"tags": ["boards"], "summary": "Update a workspace", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["boards"], "summary": "Delete a workspace", "responses": {"204": {"description": "No Content"}}}
        },
        "/workspaces/{workspaceId}/invitations": {"post": {"tags": ["invitations"], "summary": "Invite to a workspace", "responses": {"201": {"description": "Created"}, "409": {"description": "Already member or pending"}}}},
        "/boards/{boardId}": {
            "get": {"tags": ["boards"], "summary": "Board summary", "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["boards"], "summary": "Update a board", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["boards"], "summary": "Delete a board", "responses": {"204": {"description": "No Content"}}}
        },
        "/boards/{boardId}/invitations": {"post": {"tags": ["invitations"], "summary": "Invite to a board", "responses": {"201": {"description": "Created"}}}},
        "/invitations": {"get": {"tags": ["invitations"], "summary": "Pending invitations of the caller", "responses": {"200": {"description": "OK"}}}},
        "/invitations/{invitationId}/accept": {"post": {"tags": ["invitations"], "summary": "Accept an invitation", "responses": {"200": {"description": "OK"}, "410": {"description": "Expired"}}}},
        "/invitations/{invitationId}/decline": {"post": {"tags": ["invitations"], "summary": "Decline an invitation", "responses": {"200": {"description": "OK"}}}},
        "/columns": {
            "get": {"tags": ["tasks"], "summary": "Board columns with ordered tasks", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["tasks"], "summary": "Create a column", "responses": {"201": {"description": "Created"}}}
        },
        "/columns/{columnId}/move": {"post": {"tags": ["tasks"], "summary": "Reorder a column", "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid neighbors"}}}},
        "/tasks": {"post": {"tags": ["tasks"], "summary": "Create a task", "responses": {"201": {"description": "Created"}}}},
        "/tasks/{taskId}/move": {"post": {"tags": ["tasks"], "summary": "Move a task", "responses": {"200": {"description": "OK"}}}},
        "/notifications": {"get": {"tags": ["notifications"], "summary": "Notifications of the caller", "responses": {"200": {"description": "OK"}}}},
        "/notifications/{notificationId}/status": {"patch": {"tags": ["notifications"], "summary": "Update a notification status", "responses": {"200": {"description": "OK"}}}},
        "/realtime/boards": {"get": {"tags": ["realtime"], "summary": "Board event stream", "produces": ["text/event-stream"], "responses": {"200": {"description": "Stream"}}}},
        "/realtime/me": {"get": {"tags": ["realtime"], "summary": "Personal notification stream", "produces": ["text/event-stream"], "responses": {"200": {"description": "Stream"}}}}
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Kanvas API",
	Description:      "Workspaces, boards, tasks and notifications behind the Kanvas gateway.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
