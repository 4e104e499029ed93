package shared

import (
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

var jsonAPI = sonic.Config{
	UseNumber:        true,
	EscapeHTML:       false,
	SortMapKeys:      false,
	CompactMarshaler: true,
	NoNullSliceOrMap: true,
}.Froze()

var (
	unauthorizedResponse  = mustMarshal(ErrorResponse{Error: "Unauthorized"})
	forbiddenResponse     = mustMarshal(ErrorResponse{Error: "Forbidden"})
	tooManyResponse       = mustMarshal(ErrorResponse{Error: "Too many requests"})
	internalErrorResponse = mustMarshal(ErrorResponse{Error: "Internal Server Error"})
)

func mustMarshal(v interface{}) []byte {
	b, _ := jsonAPI.Marshal(v)
	return b
}

// ResponseData writes v as raw JSON with the given status.
func ResponseData(c *fiber.Ctx, httpCode int, v interface{}) error {
	body, err := jsonAPI.Marshal(v)
	if err != nil {
		return ResponseError(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	c.Status(httpCode)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(body)
}

// ResponseError writes {"error": message}. Internal detail never reaches the
// body; callers log it separately.
func ResponseError(c *fiber.Ctx, httpCode int, message string) error {
	c.Status(httpCode)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)

	if message == "" {
		switch httpCode {
		case fiber.StatusUnauthorized:
			return c.Send(unauthorizedResponse)
		case fiber.StatusForbidden:
			return c.Send(forbiddenResponse)
		case fiber.StatusTooManyRequests:
			return c.Send(tooManyResponse)
		case fiber.StatusInternalServerError:
			return c.Send(internalErrorResponse)
		}
	}

	body, _ := jsonAPI.Marshal(ErrorResponse{Error: message})
	return c.Send(body)
}
