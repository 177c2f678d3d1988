package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"productshot/internal/catalog"
	"productshot/internal/imageurl"
)

// Generator produces product images for a request. Client, RPCClient and the
// retry decorator all satisfy it.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

type Settings struct {
	NumImages  int    `json:"numImages"`
	Resolution string `json:"resolution"`
}

type LogoType string

const (
	LogoNone  LogoType = "none"
	LogoImage LogoType = "image"
	LogoText  LogoType = "text"
)

// Logo configures the overlay the service composites onto every image.
// Content is the uploaded file name for image logos and the watermark text
// for text logos.
type Logo struct {
	Type             LogoType `json:"type"`
	Content          string   `json:"content,omitempty"`
	Position         string   `json:"position"`
	Size             int      `json:"size"`
	Opacity          int      `json:"opacity"`
	Rotation         int      `json:"rotation,omitempty"`
	SmartPositioning bool     `json:"smartPositioning,omitempty"`
	OffsetX          *int     `json:"offsetX,omitempty"`
	OffsetY          *int     `json:"offsetY,omitempty"`
	TextColor        string   `json:"textColor,omitempty"`
	Font             string   `json:"font,omitempty"`
}

const (
	MinLogoSize     = 5
	MaxLogoSize     = 50
	MinLogoRotation = -360
	MaxLogoRotation = 360
)

// Request is the body POSTed to the generation service. Nil Settings or Logo
// leave the choice to the service.
type Request struct {
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Style       string    `json:"style"`
	Angle       string    `json:"angle"`
	Color       string    `json:"color,omitempty"`
	Settings    *Settings `json:"settings,omitempty"`
	Logo        *Logo     `json:"logo,omitempty"`
}

// NewRequest returns a request carrying the form defaults.
func NewRequest(description string) Request {
	return Request{
		Description: description,
		Category:    catalog.DefaultCategory,
		Style:       catalog.DefaultStyle,
		Angle:       catalog.DefaultAngle,
		Settings: &Settings{
			NumImages:  catalog.DefaultImages,
			Resolution: catalog.DefaultResolution,
		},
	}
}

// Normalize clamps numeric fields into their allowed ranges. A "none" logo is
// dropped entirely.
func (r Request) Normalize() Request {
	r.Description = strings.TrimSpace(r.Description)
	r.Color = strings.TrimSpace(r.Color)

	if r.Settings != nil {
		s := *r.Settings
		s.NumImages = catalog.ClampNumImages(s.NumImages)
		if strings.TrimSpace(s.Resolution) == "" {
			s.Resolution = catalog.DefaultResolution
		}
		r.Settings = &s
	}

	if r.Logo != nil {
		if r.Logo.Type == "" || r.Logo.Type == LogoNone {
			r.Logo = nil
			return r
		}
		l := *r.Logo
		l.Size = catalog.Clamp(l.Size, MinLogoSize, MaxLogoSize)
		l.Opacity = catalog.Clamp(l.Opacity, 0, 100)
		l.Rotation = catalog.Clamp(l.Rotation, MinLogoRotation, MaxLogoRotation)
		if l.Position == "" {
			l.Position = "bottom-right"
		}
		r.Logo = &l
	}
	return r
}

// Validate rejects requests the form would never produce.
func (r Request) Validate() error {
	desc := strings.TrimSpace(r.Description)
	if desc == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidRequest)
	}
	if utf8.RuneCountInString(desc) > catalog.MaxDescriptionLength {
		return fmt.Errorf("%w: description must be at most %d characters", ErrInvalidRequest, catalog.MaxDescriptionLength)
	}
	if !catalog.IsCategory(r.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidRequest, r.Category)
	}
	if !catalog.IsStyle(r.Style) {
		return fmt.Errorf("%w: unknown style %q", ErrInvalidRequest, r.Style)
	}
	if !catalog.IsAngle(r.Angle) {
		return fmt.Errorf("%w: unknown angle %q", ErrInvalidRequest, r.Angle)
	}

	if r.Logo == nil {
		return nil
	}
	switch r.Logo.Type {
	case LogoNone, "":
		return nil
	case LogoImage, LogoText:
	default:
		return fmt.Errorf("%w: unknown logo type %q", ErrInvalidRequest, r.Logo.Type)
	}
	if strings.TrimSpace(r.Logo.Content) == "" {
		return fmt.Errorf("%w: logo content is required for %s logos", ErrInvalidRequest, r.Logo.Type)
	}
	if r.Logo.Position != "" && !catalog.IsLogoPosition(r.Logo.Position) {
		return fmt.Errorf("%w: unknown logo position %q", ErrInvalidRequest, r.Logo.Position)
	}
	return nil
}

// Metadata echoes what the service actually used. Settings is kept verbatim.
type Metadata struct {
	Prompt   string          `json:"prompt"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

type Response struct {
	Success  bool                `json:"success"`
	Images   []imageurl.ImageRef `json:"images"`
	Metadata Metadata            `json:"metadata"`
}
