package patterns

// Preset names shipped with the engine.
const (
	POBox           = "po_box"
	UKPostcode      = "uk_postcode"
	USZip           = "us_zip"
	CAPostal        = "ca_postal"
	EmailBasic      = "email_basic"
	USPhone         = "us_phone"
	Profanity       = "profanity"
	NumericOnly     = "numeric_only"
	SuspiciousChars = "suspicious_chars"
)

// Preset is a named regular expression.
type Preset struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Source      string `json:"pattern" yaml:"pattern"`
}

// Builtin returns the preset definitions compiled by New, in listing order.
func Builtin() []Preset {
	return []Preset{
		{
			Name:        POBox,
			Description: "PO box and post office box addresses",
			Source:      `(?i)\b(p\.?\s*o\.?\s*box|post\s*office\s*box)\b`,
		},
		{
			Name:        UKPostcode,
			Description: "United Kingdom postcodes",
			Source:      `(?i)^[A-Z]{1,2}\d[A-Z\d]?\s*\d[A-Z]{2}$`,
		},
		{
			Name:        USZip,
			Description: "US ZIP and ZIP+4 codes",
			Source:      `^\d{5}(-\d{4})?$`,
		},
		{
			Name:        CAPostal,
			Description: "Canadian postal codes",
			Source:      `(?i)^[A-Z]\d[A-Z]\s*\d[A-Z]\d$`,
		},
		{
			Name:        EmailBasic,
			Description: "Loose email address shape",
			Source:      `^[^\s@]+@[^\s@]+\.[^\s@]+$`,
		},
		{
			Name:        USPhone,
			Description: "North American phone numbers",
			Source:      `^(\+1[-.\s]?)?(\(?\d{3}\)?[-.\s]?)?\d{3}[-.\s]?\d{4}$`,
		},
		{
			Name:        Profanity,
			Description: "Blocklisted words",
			Source:      `(?i)\b(badword1|badword2|offensive)\b`,
		},
		{
			Name:        NumericOnly,
			Description: "Digits only",
			Source:      `^\d+$`,
		},
		{
			Name:        SuspiciousChars,
			Description: "Markup and shell metacharacters",
			Source:      "[<>{}|\\\\^~\\[\\]`]",
		},
	}
}
