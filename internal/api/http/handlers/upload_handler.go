package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/khushboocodes/QuickDesk/internal/storage"
	apperrors "github.com/khushboocodes/QuickDesk/pkg/util/errorutil"
)

// UploadsHandler accepts ticket attachments.
type UploadsHandler struct {
	files storage.Uploader
}

// NewUploadsHandler constructs handler.
func NewUploadsHandler(files storage.Uploader) *UploadsHandler {
	return &UploadsHandler{files: files}
}

// Upload handles POST /uploads with a multipart "file" field and returns
// the public URL of the stored file.
func (h *UploadsHandler) Upload(c *fiber.Ctx) error {
	if _, err := currentUser(c); err != nil {
		return err
	}
	uploaded, err := receiveFile(c, h.files)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": uploaded})
}

func receiveFile(c *fiber.Ctx, store storage.Uploader) (*storage.Uploaded, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, apperrors.NewFieldError("file", "multipart field \"file\" is required")
	}
	file, err := header.Open()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	defer file.Close()

	uploaded, err := store.Upload(c.UserContext(), header.Filename, file)
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		return nil, apperrors.NewFieldError("file", "file exceeds the size limit")
	case errors.Is(err, storage.ErrEmpty):
		return nil, apperrors.NewFieldError("file", "file is empty")
	case errors.Is(err, storage.ErrTypeNotAllowed):
		return nil, apperrors.NewFieldError("file", err.Error())
	case err != nil:
		return nil, err
	}
	return uploaded, nil
}
