package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/server/avatars"
	"github.com/gin-gonic/gin"
)

const (
	uploadKey = "httpapi.avatar"

	// multipartSlack bounds the non-file parts of an upload body.
	multipartSlack = 1 << 20
)

// avatarUpload is the dedicated error path for uploads. It streams the
// multipart body, takes the first part named "avatar", checks the file name
// before reading any content and then enforces the size limit. Rejections
// end the request with 400; an accepted file is handed to the next handler.
func avatarUpload(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := readAvatar(c, maxBytes)
		if err != nil {
			_, msg := statusAndMessage(err)
			abortWithError(c, http.StatusBadRequest, msg)
			return
		}
		c.Set(uploadKey, data)
		c.Next()
	}
}

func readAvatar(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartSlack)

	mr, err := c.Request.MultipartReader()
	if err != nil {
		return nil, common.ErrNotAnImage
	}

	for {
		part, err := mr.NextPart()
		if err != nil {
			return nil, uploadError(err)
		}
		if part.FormName() != common.AvatarFormField || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		if !avatars.AllowedFilename(part.FileName()) {
			return nil, common.ErrNotAnImage
		}

		data, err := io.ReadAll(io.LimitReader(part, maxBytes+1))
		if err != nil {
			return nil, uploadError(err)
		}
		if int64(len(data)) > maxBytes {
			return nil, common.ErrFileTooLarge
		}
		return data, nil
	}
}

// uploadError turns a body read failure into an upload rejection. Running
// out of parts means no file was sent.
func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return common.ErrFileTooLarge
	}
	return common.ErrNotAnImage
}

func uploadedAvatar(c *gin.Context) []byte {
	return c.MustGet(uploadKey).([]byte)
}
