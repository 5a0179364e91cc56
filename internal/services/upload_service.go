package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/photogallery/server/internal/models"
	"github.com/rwcarlsen/goexif/exif"
)

// PreparedUpload is an uploaded image encoded for storage in a photo record
type PreparedUpload struct {
	Title       string
	DataURL     string
	ContentType string
	Description *string // EXIF ImageDescription, if any
	Size        int64
}

// UploadService turns uploaded image files into data URLs. The image bytes
// are never decoded or resized.
type UploadService struct {
	allowedExtensions map[string]bool
	maxFileSizeBytes  int64
}

// NewUploadService creates a new UploadService
func NewUploadService(allowedExtensions []string, maxFileSizeMB int64) *UploadService {
	extSet := make(map[string]bool)
	if len(allowedExtensions) == 0 {
		for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".svg"} {
			extSet[ext] = true
		}
	} else {
		for _, ext := range allowedExtensions {
			extSet[strings.ToLower(ext)] = true
		}
	}

	return &UploadService{
		allowedExtensions: extSet,
		maxFileSizeBytes:  maxFileSizeMB * 1024 * 1024,
	}
}

// MaxFileSizeBytes returns the upload size limit
func (s *UploadService) MaxFileSizeBytes() int64 {
	return s.maxFileSizeBytes
}

// Prepare reads an uploaded file and encodes it as a data URL
func (s *UploadService) Prepare(r io.Reader, filename string) (*PreparedUpload, error) {
	name := sanitizeFilename(filename)
	ext := strings.ToLower(filepath.Ext(name))
	if ext != "" && !s.allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedMediaType, ext)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxFileSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, models.ErrEmptyUpload
	}
	if int64(len(data)) > s.maxFileSizeBytes {
		return nil, fmt.Errorf("%w: limit is %s", models.ErrFileTooLarge, humanize.IBytes(uint64(s.maxFileSizeBytes)))
	}

	contentType := detectImageType(data, ext)
	if contentType == "" {
		return nil, models.ErrUnsupportedMediaType
	}

	return &PreparedUpload{
		Title:       titleFromFilename(name),
		DataURL:     "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data),
		ContentType: contentType,
		Description: exifDescription(data),
		Size:        int64(len(data)),
	}, nil
}

// detectImageType sniffs the content and falls back to the extension.
// Returns "" when neither says image.
func detectImageType(data []byte, ext string) string {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}

	byExt := mime.TypeByExtension(ext)
	if i := strings.Index(byExt, ";"); i >= 0 {
		byExt = byExt[:i]
	}
	if strings.HasPrefix(byExt, "image/") {
		return byExt
	}
	return ""
}

// exifDescription returns the EXIF ImageDescription, or nil when the file
// has no EXIF block or the tag is blank.
func exifDescription(data []byte) *string {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	tag, err := x.Get(exif.ImageDescription)
	if err != nil {
		return nil
	}
	val, err := tag.StringVal()
	if err != nil {
		return nil
	}
	val = strings.TrimSpace(strings.Trim(val, "\x00"))
	if val == "" {
		return nil
	}
	return &val
}

// titleFromFilename derives a display title, e.g. "beach_day-2.jpg" -> "beach day 2"
func titleFromFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return "Untitled"
	}
	return base
}

// sanitizeFilename removes path components and invalid characters
func sanitizeFilename(filename string) string {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return ""
	}

	replacer := strings.NewReplacer(
		"..", "",
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	name = replacer.Replace(name)

	const maxLength = 200
	if len(name) > maxLength {
		ext := filepath.Ext(name)
		nameWithoutExt := strings.TrimSuffix(name, ext)
		if len(nameWithoutExt) > maxLength-len(ext) {
			nameWithoutExt = nameWithoutExt[:maxLength-len(ext)]
		}
		name = nameWithoutExt + ext
	}

	return name
}
