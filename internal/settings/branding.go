package settings

import "slices"

const (
	// BrandingSchemaKey identifies the branding schema document.
	BrandingSchemaKey = "branding_settings"

	// BrandingCategory is the settings category the branding keys are stored under.
	BrandingCategory = "branding"

	// BrandingVersion is bumped whenever a branding key, constraint or default changes.
	BrandingVersion = "1.2.0"

	hexColorPattern = "^#[0-9A-Fa-f]{6}$"
)

// Fonts offered by the site builder.
var fonts = []string{ //nolint:gochecknoglobals
	"Inter", "Roboto", "Open Sans", "Lato", "Montserrat", "Poppins", "Playfair Display",
}

// Branding returns the branding settings schema.
// Every call returns a fresh copy so callers can not alter the definition.
func Branding() *Schema {
	return &Schema{
		Key:      BrandingSchemaKey,
		Version:  BrandingVersion,
		Category: BrandingCategory,
		Fields: []Field{
			{
				Key:         "site_name",
				Type:        TypeString,
				Description: "Public name of the site",
				Constraints: Constraints{MaxLength: intPtr(100)},
				Default:     Str(""),
			},
			{
				Key:         "site_tagline",
				Type:        TypeString,
				Description: "Short tagline shown next to the site name",
				Constraints: Constraints{MaxLength: intPtr(160)},
				Default:     Str(""),
			},
			{
				Key:         "site_description",
				Type:        TypeString,
				Description: "Meta description used by search engines",
				Constraints: Constraints{MaxLength: intPtr(500)},
				Default:     Str(""),
			},
			{
				Key:         "site_logo",
				Type:        TypeString,
				Description: "Absolute URL of the logo",
				Constraints: Constraints{Format: "url", MaxLength: intPtr(2048)},
				Default:     Str(""),
			},
			{
				Key:         "site_favicon",
				Type:        TypeString,
				Description: "Absolute URL of the favicon",
				Constraints: Constraints{Format: "url", MaxLength: intPtr(2048)},
				Default:     Str(""),
			},
			{
				Key:         "color_primary",
				Type:        TypeString,
				Description: "Primary brand color",
				Constraints: Constraints{Pattern: hexColorPattern},
				Default:     Str("#3B82F6"),
			},
			{
				Key:         "color_secondary",
				Type:        TypeString,
				Description: "Secondary brand color",
				Constraints: Constraints{Pattern: hexColorPattern},
				Default:     Str("#1E293B"),
			},
			{
				Key:         "color_accent",
				Type:        TypeString,
				Description: "Accent color for calls to action",
				Constraints: Constraints{Pattern: hexColorPattern},
				Default:     Str("#F59E0B"),
			},
			{
				Key:         "font_heading",
				Type:        TypeString,
				Constraints: Constraints{Enum: slices.Clone(fonts)},
				Default:     Str("Inter"),
			},
			{
				Key:         "font_body",
				Type:        TypeString,
				Constraints: Constraints{Enum: slices.Clone(fonts)},
				Default:     Str("Inter"),
			},
			{
				Key:         "country",
				Type:        TypeString,
				Description: "ISO 3166-1 alpha-2 country code",
				Constraints: Constraints{MinLength: intPtr(2), MaxLength: intPtr(2), Pattern: "^[A-Z]{2}$"},
				Default:     Str("US"),
			},
			{
				Key:         "timezone",
				Type:        TypeString,
				Description: "IANA time zone name",
				Constraints: Constraints{Format: "timezone"},
				Default:     Str("UTC"),
			},
			{
				Key:         "language",
				Type:        TypeString,
				Constraints: Constraints{Enum: []string{"en", "fr", "de", "es", "it", "pt", "nl"}},
				Default:     Str("en"),
			},
			{
				Key:         "show_powered_by",
				Type:        TypeBoolean,
				Description: "Show the builder badge in the footer",
				Default:     Bool(true),
			},
			{
				Key:         "max_nav_items",
				Type:        TypeNumber,
				Description: "Maximum number of top level navigation entries",
				Constraints: Constraints{Minimum: floatPtr(1), Maximum: floatPtr(20)},
				Default:     Num(6),
			},
		},
	}
}

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }
