package contentController

import (
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"kalvi/config"
	"kalvi/database"
	"kalvi/middleware"
	"kalvi/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func safeLocalPath(filename string) (string, bool) {
	if filename == "" || strings.Contains(filename, "..") || strings.ContainsAny(filename, "/\\") {
		return "", false
	}
	return filepath.Join(config.AppConfig.UploadDir, filename), true
}

// GetFile streams a legacy local file from the upload directory.
func GetFile(c *fiber.Ctx) error {
	path, ok := safeLocalPath(c.Params("filename"))
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid filename!", nil)
	}

	if _, err := os.Stat(path); err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "File not found!", nil)
	}

	return serveLocalFile(c, path)
}

// DeleteFile removes a legacy local file.
func DeleteFile(c *fiber.Ctx) error {
	path, ok := safeLocalPath(c.Params("filename"))
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid filename!", nil)
	}

	if _, err := os.Stat(path); err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "File not found!", nil)
	}

	if err := os.Remove(path); err != nil {
		log.Printf("Failed to remove %s: %v", path, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete file!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "File deleted successfully!", nil)
}

// StreamContentFile serves a content item's payload. Resolution order:
// storage descriptor (redirect), file path (redirect when absolute URL,
// local stream otherwise, honoring Range), inline body.
func StreamContentFile(c *fiber.Ctx) error {
	contentID, err := c.ParamsInt("id")
	if err != nil || contentID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Content ID must be a positive number!", nil)
	}

	db := database.Database.Db

	var content models.Content
	if err := db.Where("id = ? AND is_deleted = ?", contentID, false).First(&content).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content not found!", nil)
	}

	// Atomic bump; a stale read here would drop concurrent views.
	db.Model(&models.Content{}).Where("id = ?", content.ID).
		UpdateColumn("views", gorm.Expr("views + 1"))

	switch content.Payload() {
	case models.PayloadStorage:
		if Store != nil && content.StoragePublicID != "" {
			if url, err := Store.SignedGetURL(content.StoragePublicID, 1*time.Hour); err == nil {
				return c.Redirect(url, fiber.StatusFound)
			}
		}
		return c.Redirect(content.StorageURL, fiber.StatusFound)

	case models.PayloadFilePath:
		if strings.HasPrefix(content.FilePath, "http://") || strings.HasPrefix(content.FilePath, "https://") {
			return c.Redirect(content.FilePath, fiber.StatusFound)
		}
		path, ok := safeLocalPath(filepath.Base(content.FilePath))
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "File not found!", nil)
		}
		if _, err := os.Stat(path); err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "File not found!", nil)
		}
		return serveLocalFile(c, path)

	case models.PayloadBody:
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(content.Body)

	default:
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "This content has no payload to serve!", nil)
	}
}

// serveLocalFile streams a file from disk with single-range HTTP Range
// support for media scrubbing.
func serveLocalFile(c *fiber.Ctx, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "File not found!", nil)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to read file!", nil)
	}
	size := info.Size()

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderAcceptRanges, "bytes")

	rangeHeader := c.Get(fiber.HeaderRange)
	if rangeHeader == "" {
		c.Set(fiber.HeaderContentLength, strconv.FormatInt(size, 10))
		return c.SendStream(file, int(size))
	}

	start, end, ok := parseRange(rangeHeader, size)
	if !ok {
		file.Close()
		c.Set(fiber.HeaderContentRange, fmt.Sprintf("bytes */%d", size))
		return c.SendStatus(fiber.StatusRequestedRangeNotSatisfiable)
	}

	length := end - start + 1
	c.Status(fiber.StatusPartialContent)
	c.Set(fiber.HeaderContentRange, fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	c.Set(fiber.HeaderContentLength, strconv.FormatInt(length, 10))

	section := io.NewSectionReader(file, start, length)
	return c.SendStream(readCloser{section, file}, int(length))
}

// readCloser pairs the section reader with the underlying file so the
// handle closes once the stream drains.
type readCloser struct {
	io.Reader
	closer io.Closer
}

func (rc readCloser) Close() error { return rc.closer.Close() }

// parseRange handles a single "bytes=start-end" range.
func parseRange(header string, size int64) (int64, int64, bool) {
	if !strings.HasPrefix(header, "bytes=") {
		return 0, 0, false
	}
	spec := strings.TrimPrefix(header, "bytes=")
	if strings.Contains(spec, ",") {
		return 0, 0, false
	}

	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	// Suffix form "-N": the final N bytes.
	if parts[0] == "" {
		n, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || n <= 0 {
			return 0, 0, false
		}
		if n > size {
			n = size
		}
		return size - n, size - 1, true
	}

	start, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || start < 0 || start >= size {
		return 0, 0, false
	}

	end := size - 1
	if parts[1] != "" {
		end, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil || end < start {
			return 0, 0, false
		}
		if end >= size {
			end = size - 1
		}
	}

	return start, end, true
}
