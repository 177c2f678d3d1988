// Package catalog holds the fixed option sets, limits and user-facing text
// shared by the generation client, the orchestrator and the API.
package catalog

type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

const (
	MinImages         = 1
	MaxImages         = 4
	DefaultImages     = 1
	DefaultResolution = "1024x1024"

	MinDescriptionLength = 10
	MaxDescriptionLength = 500

	DefaultCategory = "clothing"
	DefaultStyle    = "studio"
	DefaultAngle    = "front"
)

// User-facing messages.
const (
	TextLoading          = "Generating..."
	TextErrorGeneric     = "Something went wrong while generating images. Please try again."
	TextErrorNetwork     = "Network error. Please check your connection and try again."
	TextErrorTimeout     = "Request timed out. Please try again."
	TextErrorHttp        = "Failed to generate images"
	TextNoImages         = "No images generated yet"
	TextNoImagesSubtitle = "Fill out the form to start creating"
)

var Categories = []Option{
	{Value: "clothing", Label: "Clothing"},
	{Value: "footwear", Label: "Footwear"},
	{Value: "electronics", Label: "Electronics"},
	{Value: "furniture", Label: "Furniture"},
	{Value: "beauty", Label: "Beauty"},
	{Value: "jewelry", Label: "Jewelry"},
	{Value: "home-decor", Label: "Home Decor"},
	{Value: "toy", Label: "Toy"},
	{Value: "other", Label: "Other"},
}

var Styles = []Option{
	{Value: "studio", Label: "Studio"},
	{Value: "lifestyle", Label: "Lifestyle"},
	{Value: "nature", Label: "Nature"},
	{Value: "urban", Label: "Urban"},
	{Value: "minimalist", Label: "Minimalist"},
	{Value: "vintage", Label: "Vintage"},
}

var Angles = []Option{
	{Value: "front", Label: "Front View"},
	{Value: "side", Label: "Side View"},
	{Value: "back", Label: "Back View"},
	{Value: "top", Label: "Top View"},
	{Value: "bottom", Label: "Bottom View"},
	{Value: "45_degree", Label: "45 Degree"},
	{Value: "close_up", Label: "Close Up"},
	{Value: "wide", Label: "Wide Angle"},
	{Value: "eye_level", Label: "Eye Level"},
}

var LogoPositions = []Option{
	{Value: "center", Label: "Center"},
	{Value: "top-left", Label: "Top Left"},
	{Value: "top-center", Label: "Top Center"},
	{Value: "top-right", Label: "Top Right"},
	{Value: "middle-left", Label: "Middle Left"},
	{Value: "middle-right", Label: "Middle Right"},
	{Value: "bottom-left", Label: "Bottom Left"},
	{Value: "bottom-center", Label: "Bottom Center"},
	{Value: "bottom-right", Label: "Bottom Right"},
}

func contains(options []Option, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}

func IsCategory(v string) bool     { return contains(Categories, v) }
func IsStyle(v string) bool        { return contains(Styles, v) }
func IsAngle(v string) bool        { return contains(Angles, v) }
func IsLogoPosition(v string) bool { return contains(LogoPositions, v) }

// ClampNumImages keeps n inside [MinImages, MaxImages].
func ClampNumImages(n int) int {
	if n < MinImages {
		return MinImages
	}
	if n > MaxImages {
		return MaxImages
	}
	return n
}

// Clamp keeps v inside [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
