package downloadController_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kalvi/config"
	downloadController "kalvi/controllers/download"
	"kalvi/database"
	"kalvi/models"
	"kalvi/utils"
	downloadValidator "kalvi/validators/download"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sentMail struct {
	To         string
	Subject    string
	Attachment *utils.Attachment
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(to, subject, htmlBody string, attachment *utils.Attachment) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Attachment: attachment})
	return nil
}

type fakeStore struct{}

func (fakeStore) Upload(ctx context.Context, folder, name string, r io.Reader, size int64, contentType string) (*utils.StorageResult, error) {
	return nil, errors.New("not used")
}

func (fakeStore) Delete(publicID string) error { return nil }

func (fakeStore) SignedGetURL(publicID string, expires time.Duration) (string, error) {
	return "https://bucket.example/signed/" + publicID, nil
}

func (fakeStore) SignedPutURL(folder, name string, expires time.Duration) (string, string, error) {
	return "", "", errors.New("not used")
}

func setupApp(t *testing.T, mailer utils.Mailer) *fiber.App {
	t.Helper()

	config.AppConfig = &config.Config{SupportPhone: "+91 93618 61121"}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Class{}, &models.Subject{}, &models.Unit{},
		&models.SubUnit{}, &models.Lesson{}, &models.Content{},
		&models.DownloadLog{}, &models.CleanupTask{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.Database = database.DbInstance{Db: db}
	downloadController.Init(mailer, fakeStore{})

	app := fiber.New()
	app.Post("/api/content/:id/download", downloadValidator.Download(), downloadController.DownloadContent)
	app.Post("/api/export/send-pdf", downloadValidator.Export(), downloadController.SendPDFExport)
	return app
}

func seedContent(t *testing.T, body string) (models.Lesson, models.Content) {
	t.Helper()
	db := database.Database.Db

	lesson := models.Lesson{Name: "Lesson 1", SubUnitID: 1}
	if err := db.Create(&lesson).Error; err != nil {
		t.Fatalf("seed lesson: %v", err)
	}
	content := models.Content{
		LessonID:  lesson.ID,
		Type:      models.TypeNotes,
		Title:     "Decimal Notes",
		Body:      body,
		ClassName: "Class 6",
	}
	if err := db.Create(&content).Error; err != nil {
		t.Fatalf("seed content: %v", err)
	}
	return lesson, content
}

func seedUser(t *testing.T, role, email string) models.User {
	t.Helper()
	user := models.User{Name: "Tester", Email: email, Role: role, Password: "x"}
	if err := database.Database.Db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func postJSON(t *testing.T, app *fiber.App, target string, body interface{}) (*http.Response, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest("POST", target, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("POST %s: %v", target, err)
	}
	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, parsed
}

func lastLog(t *testing.T) models.DownloadLog {
	t.Helper()
	var entry models.DownloadLog
	if err := database.Database.Db.Order("id desc").First(&entry).Error; err != nil {
		t.Fatalf("no download log written: %v", err)
	}
	return entry
}

func TestDownload_PrivilegedDirectLocator(t *testing.T) {
	mailer := &fakeMailer{}
	app := setupApp(t, mailer)
	lesson, content := seedContent(t, "<p>notes</p>")
	admin := seedUser(t, models.RoleAdmin, "admin@kalvi.local")

	resp, parsed := postJSON(t, app, fmt.Sprintf("/api/content/%d/download", content.ID), fiber.Map{
		"user_id": admin.ID,
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var data map[string]interface{}
	json.Unmarshal(parsed.Data, &data)
	locator, _ := data["locator"].(string)
	if locator == "" {
		t.Fatal("privileged download returned no locator")
	}

	// No mail for privileged downloads.
	if len(mailer.sent) != 0 {
		t.Errorf("mailer called %d times, want 0", len(mailer.sent))
	}

	entry := lastLog(t)
	if entry.Status != models.DownloadSuccess {
		t.Errorf("log status = %q, want success", entry.Status)
	}
	if entry.EmailSent {
		t.Error("log claims an email was sent")
	}

	var reloaded models.Lesson
	database.Database.Db.First(&reloaded, lesson.ID)
	if reloaded.NotesDownloads != 1 {
		t.Errorf("notes_downloads = %d, want 1", reloaded.NotesDownloads)
	}
}

func TestDownload_NoEmailFails(t *testing.T) {
	mailer := &fakeMailer{}
	app := setupApp(t, mailer)
	_, content := seedContent(t, "<p>notes</p>")

	resp, parsed := postJSON(t, app, fmt.Sprintf("/api/content/%d/download", content.ID), fiber.Map{})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(parsed.Message, config.AppConfig.SupportPhone) {
		t.Errorf("message %q missing support phone", parsed.Message)
	}

	entry := lastLog(t)
	if entry.Status != models.DownloadFailed {
		t.Errorf("log status = %q, want failed", entry.Status)
	}
	if entry.Reference == "" {
		t.Error("log has no support reference")
	}
	var data map[string]interface{}
	json.Unmarshal(parsed.Data, &data)
	if data["reference"] != entry.Reference {
		t.Errorf("response reference = %v, want %q", data["reference"], entry.Reference)
	}
	if len(mailer.sent) != 0 {
		t.Errorf("mailer called %d times, want 0", len(mailer.sent))
	}
}

func TestDownload_EmailsInlineBodyAsAttachment(t *testing.T) {
	mailer := &fakeMailer{}
	app := setupApp(t, mailer)
	lesson, content := seedContent(t, "<h1>Decimals</h1>")

	resp, _ := postJSON(t, app, fmt.Sprintf("/api/content/%d/download", content.ID), fiber.Map{
		"email": "student@example.com",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("mailer called %d times, want 1", len(mailer.sent))
	}
	mail := mailer.sent[0]
	if mail.To != "student@example.com" {
		t.Errorf("mail to = %q", mail.To)
	}
	if mail.Attachment == nil || mail.Attachment.Filename != "Decimal_Notes.html" {
		t.Errorf("attachment = %+v, want Decimal_Notes.html", mail.Attachment)
	}

	entry := lastLog(t)
	if entry.Status != models.DownloadSuccess || !entry.EmailSent {
		t.Errorf("log = status %q emailSent %v, want success/true", entry.Status, entry.EmailSent)
	}

	var reloaded models.Lesson
	database.Database.Db.First(&reloaded, lesson.ID)
	if reloaded.NotesDownloads != 1 {
		t.Errorf("notes_downloads = %d, want 1", reloaded.NotesDownloads)
	}
}

func TestDownload_MailFailureIsTerminal(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp refused")}
	app := setupApp(t, mailer)
	lesson, content := seedContent(t, "<p>notes</p>")

	resp, parsed := postJSON(t, app, fmt.Sprintf("/api/content/%d/download", content.ID), fiber.Map{
		"email": "student@example.com",
	})
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if !strings.Contains(parsed.Message, "smtp refused") {
		t.Errorf("message %q missing provider error", parsed.Message)
	}

	entry := lastLog(t)
	if entry.Status != models.DownloadFailed || entry.EmailSent {
		t.Errorf("log = status %q emailSent %v, want failed/false", entry.Status, entry.EmailSent)
	}
	if entry.ErrorMessage != "smtp refused" {
		t.Errorf("log error = %q", entry.ErrorMessage)
	}

	// A failed attempt never moves the counters.
	var reloaded models.Lesson
	database.Database.Db.First(&reloaded, lesson.ID)
	if reloaded.NotesDownloads != 0 {
		t.Errorf("notes_downloads = %d, want 0", reloaded.NotesDownloads)
	}
}

func TestDownload_StoredPayloadGetsSignedLink(t *testing.T) {
	mailer := &fakeMailer{}
	app := setupApp(t, mailer)

	lesson := models.Lesson{Name: "Lesson 2", SubUnitID: 1}
	database.Database.Db.Create(&lesson)
	content := models.Content{
		LessonID: lesson.ID,
		Type:     models.TypeBook,
		Title:    "Stored Book",
		StorageInfo: models.StorageInfo{
			StorageURL:      "https://bucket.example/books/stored.pdf",
			StoragePublicID: "books/stored.pdf",
		},
	}
	database.Database.Db.Create(&content)

	resp, _ := postJSON(t, app, fmt.Sprintf("/api/content/%d/download", content.ID), fiber.Map{
		"email": "student@example.com",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("mailer called %d times, want 1", len(mailer.sent))
	}
	// Link mail, no attachment.
	if mailer.sent[0].Attachment != nil {
		t.Errorf("stored payload mail has attachment %+v", mailer.sent[0].Attachment)
	}
}

func TestDownload_ContentNotFound(t *testing.T) {
	app := setupApp(t, &fakeMailer{})

	resp, _ := postJSON(t, app, "/api/content/999/download", fiber.Map{})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	var count int64
	database.Database.Db.Model(&models.DownloadLog{}).Count(&count)
	if count != 0 {
		t.Errorf("download logs = %d for missing content, want 0", count)
	}
}

func exportRequest(t *testing.T, fields map[string]string, payload []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		w.WriteField(k, v)
	}
	part, err := w.CreateFormFile("file", "export.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(payload)
	w.Close()

	req := httptest.NewRequest("POST", "/api/export/send-pdf", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestSendPDFExport(t *testing.T) {
	mailer := &fakeMailer{}
	app := setupApp(t, mailer)

	payload := []byte("%PDF-1.4 export")
	req := exportRequest(t, map[string]string{
		"email": "student@example.com",
		"title": "My Worksheet Export",
	}, payload)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("mailer called %d times, want 1", len(mailer.sent))
	}
	mail := mailer.sent[0]
	if mail.Attachment == nil || mail.Attachment.Filename != "My_Worksheet_Export.pdf" {
		t.Fatalf("attachment = %+v", mail.Attachment)
	}
	if !bytes.Equal(mail.Attachment.Data, payload) {
		t.Error("attachment bytes do not match the uploaded PDF")
	}

	entry := lastLog(t)
	if entry.Status != models.DownloadSuccess || !entry.EmailSent {
		t.Errorf("log = status %q emailSent %v", entry.Status, entry.EmailSent)
	}
	if entry.ContentType != models.TypePDF {
		t.Errorf("log content type = %q, want pdf", entry.ContentType)
	}
}

func TestSendPDFExport_RequiresEmail(t *testing.T) {
	app := setupApp(t, &fakeMailer{})

	req := exportRequest(t, map[string]string{"title": "No Email Export"}, []byte("%PDF"))
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}
