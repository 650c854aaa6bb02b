package downloadController

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"kalvi/config"
	"kalvi/database"
	"kalvi/middleware"
	"kalvi/models"
	"kalvi/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	mailer utils.Mailer
	store  utils.ObjectStore
)

// Init wires the mail and storage dependencies once at startup.
func Init(m utils.Mailer, s utils.ObjectStore) {
	mailer = m
	store = s
}

// DownloadRequest is the validated download body.
type DownloadRequest struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
}

func supportHint() string {
	return fmt.Sprintf(" For help call %s.", config.AppConfig.SupportPhone)
}

// DownloadContent handles a content download request. Privileged users get
// a direct locator; everyone else gets an email dispatch. Every attempt is
// audited: the log row is created on receipt and updated in place once the
// attempt reaches success or failure. No retries — a failed email is
// terminal for this request.
func DownloadContent(c *fiber.Ctx) error {
	contentID, err := c.ParamsInt("id")
	if err != nil || contentID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Content ID must be a positive number!", nil)
	}

	reqData, ok := c.Locals("validatedDownload").(*DownloadRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var content models.Content
	if err := db.Where("id = ? AND is_deleted = ?", contentID, false).First(&content).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content not found!", nil)
	}

	// Resolve the requester by id first, then by email.
	var user *models.User
	if reqData.UserID > 0 {
		var u models.User
		if err := db.Where("id = ? AND is_deleted = ?", reqData.UserID, false).First(&u).Error; err == nil {
			user = &u
		}
	}
	if user == nil && reqData.Email != "" {
		var u models.User
		if err := db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&u).Error; err == nil {
			user = &u
		}
	}

	logEntry := newDownloadLog(c, &content, user, reqData.Email)
	db.Create(&logEntry)

	// Privileged requesters skip email entirely.
	if user != nil && user.IsPrivileged() {
		locator := directLocator(&content)
		logEntry.Status = models.DownloadSuccess
		db.Save(&logEntry)
		incrementCounters(db, &content)
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Download ready!", fiber.Map{
			"locator": locator,
		})
	}

	email := reqData.Email
	if email == "" && user != nil {
		email = user.Email
	}
	if email == "" {
		logEntry.Status = models.DownloadFailed
		logEntry.ErrorMessage = "no email address on file"
		db.Save(&logEntry)
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "An email address is required to receive this content."+supportHint(), fiber.Map{
			"reference": logEntry.Reference,
		})
	}

	if err := dispatchContentEmail(email, &content); err != nil {
		logEntry.Status = models.DownloadFailed
		logEntry.ErrorMessage = err.Error()
		db.Save(&logEntry)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to send the email: "+err.Error()+supportHint(), fiber.Map{
			"reference": logEntry.Reference,
		})
	}

	logEntry.Status = models.DownloadSuccess
	logEntry.EmailSent = true
	logEntry.Email = email
	db.Save(&logEntry)

	incrementCounters(db, &content)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "The content has been emailed to "+email+"!", fiber.Map{
		"reference": logEntry.Reference,
	})
}

// dispatchContentEmail sends the content to the user: inline bodies go out
// as an HTML attachment, stored/linked payloads as a download link.
func dispatchContentEmail(email string, content *models.Content) error {
	if mailer == nil {
		return fmt.Errorf("no email provider configured")
	}

	subject := "Your study material: " + content.Title
	intro := fmt.Sprintf(`
		<p>Vanakkam!</p>
		<p>You requested <strong>%s</strong> (%s) from %s / %s.</p>`,
		content.Title, content.Type, content.ClassName, content.SubjectName)

	var attachment *utils.Attachment
	body := intro

	switch content.Payload() {
	case models.PayloadBody:
		attachment = &utils.Attachment{
			Filename: utils.CleanForFilename(content.Title) + ".html",
			MimeType: "text/html",
			Data:     []byte(content.Body),
		}
		body += "<p>Your material is attached to this email.</p>"

	case models.PayloadStorage:
		link := content.StorageURL
		if store != nil && content.StoragePublicID != "" {
			if signed, err := store.SignedGetURL(content.StoragePublicID, 24*time.Hour); err == nil {
				link = signed
			}
		}
		body += fmt.Sprintf(`<div class="info-box"><a href=%q>Download your file here</a> (link valid for 24 hours).</div>`, link)

	case models.PayloadFilePath:
		body += fmt.Sprintf(`<div class="info-box"><a href=%q>Download your file here</a>.</div>`, content.FilePath)

	default:
		return fmt.Errorf("content has no payload to deliver")
	}

	return mailer.Send(email, subject, utils.EmailTemplate("Your material is ready", body), attachment)
}

// directLocator gives a privileged user something immediately fetchable.
func directLocator(content *models.Content) string {
	if content.Payload() == models.PayloadStorage {
		if store != nil && content.StoragePublicID != "" {
			if url, err := store.SignedGetURL(content.StoragePublicID, 1*time.Hour); err == nil {
				return url
			}
		}
		if content.StorageURL != "" {
			return content.StorageURL
		}
	}
	if content.FilePath != "" {
		return content.FilePath
	}
	// Internal proxy endpoint serves inline bodies and local files.
	return "/api/content/" + strconv.FormatUint(uint64(content.ID), 10) + "/file"
}

// incrementCounters bumps both the content download counter and the
// lesson's per-type counter. Monotonic: nothing ever decrements these.
func incrementCounters(db *gorm.DB, content *models.Content) {
	db.Model(&models.Content{}).Where("id = ?", content.ID).
		UpdateColumn("downloads", gorm.Expr("downloads + 1"))

	column := models.CounterColumn(content.Type)
	db.Model(&models.Lesson{}).Where("id = ?", content.LessonID).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
}

func newDownloadLog(c *fiber.Ctx, content *models.Content, user *models.User, email string) models.DownloadLog {
	entry := models.DownloadLog{
		Reference:    uuid.NewString(),
		Email:        email,
		ContentID:    &content.ID,
		ContentTitle: content.Title,
		ContentType:  content.Type,
		ClassName:    content.ClassName,
		SubjectName:  content.SubjectName,
		UnitName:     content.UnitName,
		SubUnitName:  content.SubUnitName,
		LessonName:   content.LessonName,
		Status:       models.DownloadPending,
		ClientIP:     c.IP(),
	}
	if user != nil {
		entry.UserID = &user.ID
		if entry.Email == "" {
			entry.Email = user.Email
		}
	}
	return entry
}

// ExportRequest is the validated metadata of a PDF export dispatch.
type ExportRequest struct {
	Email    string `json:"email"`
	Title    string `json:"title"`
	LessonID string `json:"lessonId"`
}

// SendPDFExport emails a client-rendered PDF blob to the requester. Same
// audit and failure semantics as the content download path, independent of
// any Content record.
func SendPDFExport(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedExport").(*ExportRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "A PDF file is required!", nil)
	}

	db := database.Database.Db
	resolved := utils.ResolveHierarchy(db, reqData.LessonID, reqData.Title)

	logEntry := models.DownloadLog{
		Reference:    uuid.NewString(),
		Email:        reqData.Email,
		ContentTitle: reqData.Title,
		ContentType:  models.TypePDF,
		ClassName:    resolved.ClassName,
		SubjectName:  resolved.SubjectName,
		UnitName:     resolved.UnitName,
		SubUnitName:  resolved.SubUnitName,
		LessonName:   resolved.LessonName,
		Status:       models.DownloadPending,
		ClientIP:     c.IP(),
	}
	db.Create(&logEntry)

	src, err := fileHeader.Open()
	if err != nil {
		logEntry.Status = models.DownloadFailed
		logEntry.ErrorMessage = "could not read the uploaded PDF"
		db.Save(&logEntry)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to read the PDF!"+supportHint(), nil)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		logEntry.Status = models.DownloadFailed
		logEntry.ErrorMessage = "could not read the uploaded PDF"
		db.Save(&logEntry)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to read the PDF!"+supportHint(), nil)
	}

	if mailer == nil {
		logEntry.Status = models.DownloadFailed
		logEntry.ErrorMessage = "no email provider configured"
		db.Save(&logEntry)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Email is not configured."+supportHint(), nil)
	}

	body := fmt.Sprintf(`
		<p>Vanakkam!</p>
		<p>Your exported PDF <strong>%s</strong> is attached.</p>`, reqData.Title)

	attachment := &utils.Attachment{
		Filename: utils.CleanForFilename(reqData.Title) + ".pdf",
		MimeType: "application/pdf",
		Data:     data,
	}

	if err := mailer.Send(reqData.Email, "Your exported PDF: "+reqData.Title, utils.EmailTemplate("Your export is ready", body), attachment); err != nil {
		logEntry.Status = models.DownloadFailed
		logEntry.ErrorMessage = err.Error()
		db.Save(&logEntry)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to send the email: "+err.Error()+supportHint(), fiber.Map{
			"reference": logEntry.Reference,
		})
	}

	logEntry.Status = models.DownloadSuccess
	logEntry.EmailSent = true
	db.Save(&logEntry)

	// The export path keeps the legacy pdf counter moving when the lesson
	// actually resolves.
	if resolved.LessonID > 0 {
		db.Model(&models.Lesson{}).Where("id = ?", resolved.LessonID).
			UpdateColumn("pdf_downloads", gorm.Expr("pdf_downloads + 1"))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "The PDF has been emailed to "+reqData.Email+"!", fiber.Map{
		"reference": logEntry.Reference,
	})
}
