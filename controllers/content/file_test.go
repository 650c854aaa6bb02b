package contentController_test

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"kalvi/config"
	contentController "kalvi/controllers/content"
	"kalvi/database"
	"kalvi/models"

	"github.com/gofiber/fiber/v2"
)

func setupFileApp(t *testing.T, store *fakeStore) *fiber.App {
	t.Helper()
	app := setupApp(t, store)
	app.Get("/api/files/:filename", contentController.GetFile)
	app.Delete("/api/files/:filename", contentController.DeleteFile)
	app.Get("/api/content/:id/file", contentController.StreamContentFile)

	dir := t.TempDir()
	config.AppConfig.UploadDir = dir
	return app
}

func itoaUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func writeUploadFile(t *testing.T, name, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(config.AppConfig.UploadDir, name), []byte(contents), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func TestGetFile_RejectsTraversal(t *testing.T) {
	app := setupFileApp(t, &fakeStore{})

	req := httptest.NewRequest("GET", "/api/files/..%2F..%2Fetc%2Fpasswd", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("traversal status = %d, want 400", resp.StatusCode)
	}
}

func TestGetFile_Serves(t *testing.T) {
	app := setupFileApp(t, &fakeStore{})
	writeUploadFile(t, "notes.txt", "hello kalvi")

	req := httptest.NewRequest("GET", "/api/files/notes.txt", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "hello kalvi" {
		t.Errorf("body = %q", body)
	}
	if resp.Header.Get("Accept-Ranges") != "bytes" {
		t.Error("Accept-Ranges header missing")
	}
}

func TestGetFile_RangeRequests(t *testing.T) {
	app := setupFileApp(t, &fakeStore{})
	writeUploadFile(t, "clip.mp4", "0123456789")

	cases := []struct {
		header    string
		status    int
		wantBody  string
		wantRange string
	}{
		{"bytes=0-3", fiber.StatusPartialContent, "0123", "bytes 0-3/10"},
		{"bytes=5-", fiber.StatusPartialContent, "56789", "bytes 5-9/10"},
		{"bytes=-2", fiber.StatusPartialContent, "89", "bytes 8-9/10"},
		{"bytes=4-99", fiber.StatusPartialContent, "456789", "bytes 4-9/10"},
		{"bytes=99-", fiber.StatusRequestedRangeNotSatisfiable, "", ""},
		{"bytes=0-1,4-5", fiber.StatusRequestedRangeNotSatisfiable, "", ""},
	}

	for _, tc := range cases {
		req := httptest.NewRequest("GET", "/api/files/clip.mp4", nil)
		req.Header.Set("Range", tc.header)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("range %q: %v", tc.header, err)
		}
		if resp.StatusCode != tc.status {
			t.Errorf("range %q: status = %d, want %d", tc.header, resp.StatusCode, tc.status)
			continue
		}
		if tc.status != fiber.StatusPartialContent {
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		if string(body) != tc.wantBody {
			t.Errorf("range %q: body = %q, want %q", tc.header, body, tc.wantBody)
		}
		if got := resp.Header.Get("Content-Range"); got != tc.wantRange {
			t.Errorf("range %q: Content-Range = %q, want %q", tc.header, got, tc.wantRange)
		}
	}
}

func TestDeleteFile(t *testing.T) {
	app := setupFileApp(t, &fakeStore{})
	writeUploadFile(t, "stale.pdf", "old")

	req := httptest.NewRequest("DELETE", "/api/files/stale.pdf", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if _, err := os.Stat(filepath.Join(config.AppConfig.UploadDir, "stale.pdf")); !os.IsNotExist(err) {
		t.Error("file still on disk after delete")
	}

	resp, _ = app.Test(httptest.NewRequest("DELETE", "/api/files/stale.pdf", nil), -1)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestStreamContentFile_InlineBody(t *testing.T) {
	app := setupFileApp(t, &fakeStore{})
	lesson := seedLesson(t)

	content := models.Content{
		LessonID: lesson.ID,
		Type:     models.TypeFlashcard,
		Title:    "Card",
		Body:     "<p>front</p>",
	}
	database.Database.Db.Create(&content)

	req := httptest.NewRequest("GET", "/api/content/"+itoaUint(content.ID)+"/file", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "<p>front</p>" {
		t.Errorf("body = %q", body)
	}

	// Serving counts as a view.
	var reloaded models.Content
	database.Database.Db.First(&reloaded, content.ID)
	if reloaded.Views != 1 {
		t.Errorf("views = %d, want 1", reloaded.Views)
	}

	// The bump is column-side, so every serve lands even when the row
	// was read before the previous write.
	if _, err := app.Test(httptest.NewRequest("GET", "/api/content/"+itoaUint(content.ID)+"/file", nil), -1); err != nil {
		t.Fatalf("second stream: %v", err)
	}
	database.Database.Db.First(&reloaded, content.ID)
	if reloaded.Views != 2 {
		t.Errorf("views after second serve = %d, want 2", reloaded.Views)
	}
}

func TestStreamContentFile_StorageRedirect(t *testing.T) {
	store := &fakeStore{}
	app := setupFileApp(t, store)
	lesson := seedLesson(t)

	content := models.Content{
		LessonID: lesson.ID,
		Type:     models.TypeBook,
		Title:    "Stored Book",
		StorageInfo: models.StorageInfo{
			StorageURL:      "https://bucket.example/books/b.pdf",
			StoragePublicID: "books/b.pdf",
		},
	}
	database.Database.Db.Create(&content)

	req := httptest.NewRequest("GET", "/api/content/"+itoaUint(content.ID)+"/file", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "https://bucket.example/signed/books/b.pdf" {
		t.Errorf("Location = %q, want the signed URL", loc)
	}
}

func TestStreamContentFile_NoPayload(t *testing.T) {
	app := setupFileApp(t, &fakeStore{})
	lesson := seedLesson(t)

	content := models.Content{
		LessonID: lesson.ID,
		Type:     models.TypeQuiz,
		Title:    "Empty Quiz",
	}
	database.Database.Db.Create(&content)

	req := httptest.NewRequest("GET", "/api/content/"+itoaUint(content.ID)+"/file", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
