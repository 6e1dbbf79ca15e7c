package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fieldops/internal/domain"
)

var statusByKind = map[domain.Kind]int{
	domain.KindValidation:        http.StatusBadRequest,
	domain.KindNotFound:          http.StatusNotFound,
	domain.KindInsufficientStock: http.StatusConflict,
	domain.KindSchema:            http.StatusUnprocessableEntity,
	domain.KindPersistence:       http.StatusInternalServerError,
	domain.KindExternalService:   http.StatusBadGateway,
}

// respondError writes err as {"error": ..., "kind": ...}. Server side
// failures are logged; user input errors are not.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	kind := domain.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}

	body := gin.H{"error": err.Error()}
	if kind != "" {
		body["kind"] = kind
	}
	c.JSON(status, body)
}

// flexString accepts either a JSON string or a JSON number, so form values
// can be posted as typed or as raw text.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(value)
	return err == nil && b
}
