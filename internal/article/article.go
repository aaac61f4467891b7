package article

import "time"

// ImageRole identifies how an image URL was discovered. For an Image it is the
// primary discovery channel; for a Variant it names the declaration kind.
type ImageRole int

const (
	RoleUnknown ImageRole = 0
	RoleInline  ImageRole = 1
	RoleLead    ImageRole = 2
	RoleSocial  ImageRole = 3
	RoleMeta    ImageRole = 4

	RoleSrcsetVariant ImageRole = 10
	RoleSourceVariant ImageRole = 11
	RoleOpenGraph     ImageRole = 20
	RoleTwitterCard   ImageRole = 21
	RoleJSONLD        ImageRole = 30
)

func (r ImageRole) String() string {
	switch r {
	case RoleInline:
		return "inline"
	case RoleLead:
		return "lead"
	case RoleSocial:
		return "social"
	case RoleMeta:
		return "meta"
	case RoleSrcsetVariant:
		return "srcset"
	case RoleSourceVariant:
		return "source"
	case RoleOpenGraph:
		return "opengraph"
	case RoleTwitterCard:
		return "twittercard"
	case RoleJSONLD:
		return "jsonld"
	default:
		return "unknown"
	}
}

// ImageVariant is one alternate rendition of an image, declared in a srcset,
// a <source> element, a social meta tag, or a JSON-LD block.
type ImageVariant struct {
	URL      string    `json:"url"`
	Width    *int      `json:"width,omitempty"`
	Height   *int      `json:"height,omitempty"`
	MimeType string    `json:"mimeType,omitempty"`
	Role     ImageRole `json:"role"`

	// LocalPath and LocalURL are filled by the mirroring layer, never by the
	// extraction core.
	LocalPath string `json:"localPath,omitempty"`
	LocalURL  string `json:"localUrl,omitempty"`
}

// Image is one distinct image URL discovered in a document. URLs are unique
// per extraction, compared case-insensitively.
type Image struct {
	URL     string    `json:"url"`
	Alt     string    `json:"alt,omitempty"`
	Caption string    `json:"caption,omitempty"`
	Role    ImageRole `json:"role"`
	Width   *int      `json:"width,omitempty"`
	Height  *int      `json:"height,omitempty"`

	LocalPath string `json:"localPath,omitempty"`
	LocalURL  string `json:"localUrl,omitempty"`

	Variants []ImageVariant `json:"variants,omitempty"`
}

// Content is the result of one extraction. It is built once per call and not
// mutated afterwards by the extraction core; the mirroring layer may fill the
// Local* fields on images before the caller sees it.
type Content struct {
	Title          string     `json:"title"`
	TextContent    string     `json:"textContent"`
	Excerpt        string     `json:"excerpt"`
	SiteName       string     `json:"siteName"`
	URL            string     `json:"url"`
	Author         string     `json:"author"`
	PublishedTime  *time.Time `json:"publishedTime,omitempty"`
	ModifiedTime   *time.Time `json:"modifiedTime,omitempty"`
	DetectedLocale string     `json:"detectedLocale,omitempty"`
	Images         []Image    `json:"images,omitempty"`
}
