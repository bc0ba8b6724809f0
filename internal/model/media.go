package model

import "errors"

const (
	MaxImageSizeBytes   = 5 * 1024 * 1024 // 5MB per upload
	ProfileImageWidth   = 200
	ProfileImageHeight  = 200
	PortfolioImageWidth = 1600 // longest edge, aspect preserved
	ProfileImageFolder  = "profiles"
	PortfolioFolder     = "portfolios"
	ImageExt            = ".jpg"
	ImageCacheControl   = "public, max-age=31536000" // 1 year
)

// Supported image content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
)

var allowedImageTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeGIF:  {},
	ContentTypeWebP: {},
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
	CodeMediaDisabled    = "MEDIA_DISABLED"
)

// Domain errors for media operations
var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
	ErrMediaDisabled    = errors.New("image uploads are not configured")
)

// UploadResult represents the uploaded object location.
// URL is what gets stored as the image reference; Key is the bucket key.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// IsAllowedImageType reports if the provided content type is supported
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}
