package respond

import (
	"fmt"
	"io"
	"net/http"

	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/pdf-processor/internal/model"
)

// Error represents a standard structure for error responses.
type Error struct {
	Detail string `json:"detail"`
}

// JSON sends a JSON response with the specified HTTP status code and data.
// It uses the Gin context to encode the data into JSON format.
func JSON(c *ginext.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// OK sends a 200 OK JSON response with the operation result envelope.
func OK(c *ginext.Context, result model.Result) {
	JSON(c, http.StatusOK, result)
}

// Fail sends an error JSON response with the specified HTTP status code.
// The error message is carried in the detail field.
func Fail(c *ginext.Context, status int, err error) {
	JSON(c, status, Error{Detail: err.Error()})
}

// File streams raw file bytes as an octet-stream attachment.
func File(c *ginext.Context, filename string, size int64, reader io.Reader) {
	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filename),
	}
	c.DataFromReader(http.StatusOK, size, "application/octet-stream", reader, headers)
}
