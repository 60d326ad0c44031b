// Package admin define los DTOs del surface administrativo.
package admin

import "time"

// DepartmentRequest es el body de PUT /admin/departments/{name} y de
// POST /admin/departments. En el PUT el name viene de la URL y el del
// body se ignora.
type DepartmentRequest struct {
	Name      string `json:"name,omitempty"`
	Label     string `json:"label,omitempty"`
	IsAllowed *bool  `json:"is_allowed,omitempty"`
}

// DepartmentResponse representa una entrada del allow-list.
type DepartmentResponse struct {
	Name      string    `json:"name"`
	Label     string    `json:"label,omitempty"`
	IsAllowed bool      `json:"is_allowed"`
	CreatedAt time.Time `json:"created_at"`
}

// DepartmentListResponse es la respuesta de GET /admin/departments.
type DepartmentListResponse struct {
	Departments []DepartmentResponse `json:"departments"`
}
