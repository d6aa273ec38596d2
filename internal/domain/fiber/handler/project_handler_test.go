package handler_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/masykurm/talent-scout/internal/domain/fiber/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postResume(t *testing.T, app *fiber.App, filename string, content []byte) (int, string) {
	t.Helper()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("profile_url", "https://linkedin.com/in/jane-doe"))
	part, err := form.CreateFormFile("resume", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest("POST", "/projects/"+uuid.NewString()+"/candidates", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestAttachCandidateResumeRejections(t *testing.T) {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})
	h := handler.NewProjectHandler(nil)
	app.Post("/projects/:id/candidates", h.AttachCandidate)

	t.Run("a non-PDF resume fails the request", func(t *testing.T) {
		status, body := postResume(t, app, "resume.txt", []byte("plain text"))

		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.Contains(t, body, "only PDF is accepted")
		assert.Contains(t, body, `"success":false`, "a rejected resume must not report success")
	})

	t.Run("an oversized resume fails the request", func(t *testing.T) {
		status, body := postResume(t, app, "resume.pdf", make([]byte, 6*1024*1024))

		assert.Equal(t, fiber.StatusRequestEntityTooLarge, status)
		assert.Contains(t, body, "max 5MB", "the size check answers, not the transport limit")
	})
}
