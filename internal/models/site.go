package models

import "strings"

// Site is a tenant/brand the form is served for. Name is matched
// case-insensitively against the last path segment of the form URL.
type Site struct {
	Name string `json:"name" db:"name"`
	Logo string `json:"logo" db:"logo"`
}

// LogoURL returns the public path of the site logo.
func (s Site) LogoURL() string {
	if s.Logo == "" {
		return ""
	}
	return "/logos/" + strings.TrimPrefix(s.Logo, "/")
}

// SiteResponse is the public API shape of a resolved site.
type SiteResponse struct {
	Name    string `json:"name"`
	Logo    string `json:"logo"`
	LogoURL string `json:"logoUrl"`
}

// ToResponse converts a Site to its API shape.
func (s Site) ToResponse() SiteResponse {
	return SiteResponse{Name: s.Name, Logo: s.Logo, LogoURL: s.LogoURL()}
}
