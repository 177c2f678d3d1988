package types

import (
	"encoding/json"
	"time"

	"productshot/internal/catalog"
)

// ErrorResponse is returned on every failed request. Code carries the
// generation taxonomy (TIMEOUT, NETWORK_ERROR, HTTP_<status>, UNKNOWN_ERROR)
// or INVALID_REQUEST.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

type HealthResponse struct {
	Status    int   `json:"status"`
	TimeStamp int64 `json:"timestamp"`
}

type Limits struct {
	MinImages            int `json:"minImages" yaml:"minImages"`
	MaxImages            int `json:"maxImages" yaml:"maxImages"`
	MinDescriptionLength int `json:"minDescriptionLength" yaml:"minDescriptionLength"`
	MaxDescriptionLength int `json:"maxDescriptionLength" yaml:"maxDescriptionLength"`
	MaxLogoBytes         int `json:"maxLogoBytes" yaml:"maxLogoBytes"`
}

type Texts struct {
	Loading          string `json:"loading" yaml:"loading"`
	NoImages         string `json:"noImages" yaml:"noImages"`
	NoImagesSubtitle string `json:"noImagesSubtitle" yaml:"noImagesSubtitle"`
}

// OptionsResponse is everything a form needs to render its choices.
type OptionsResponse struct {
	Categories    []catalog.Option `json:"categories" yaml:"categories"`
	Styles        []catalog.Option `json:"styles" yaml:"styles"`
	Angles        []catalog.Option `json:"angles" yaml:"angles"`
	LogoPositions []catalog.Option `json:"logoPositions" yaml:"logoPositions"`
	Limits        Limits           `json:"limits" yaml:"limits"`
	Texts         Texts            `json:"texts" yaml:"texts"`
}

type Metadata struct {
	Prompt   string          `json:"prompt"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

type GenerateResponse struct {
	ID       string    `json:"id"`
	Images   []string  `json:"images"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

type StateResponse struct {
	Loading   bool      `json:"loading"`
	Error     *string   `json:"error"`
	Images    []string  `json:"images"`
	Metadata  *Metadata `json:"metadata,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UploadLogoResponse struct {
	Filename string `json:"filename"`
}

type GalleryRequest struct {
	ClientID string `json:"clientId"`
}

type GalleryResponse struct {
	JobID string `json:"jobId"`
}
