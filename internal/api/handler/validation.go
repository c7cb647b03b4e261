package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/maraichr/catalograph/internal/lineage"
	"github.com/maraichr/catalograph/pkg/apierr"
)

// parseDepth reads ?depth=, defaulting when absent. Out-of-range values are
// rejected rather than clamped.
func parseDepth(r *http.Request) (int, *apierr.Error) {
	raw := strings.TrimSpace(r.URL.Query().Get("depth"))
	if raw == "" {
		return lineage.DefaultDepth, nil
	}
	depth, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.InvalidDepth(err)
	}
	if err := lineage.ValidateDepth(depth); err != nil {
		return 0, apierr.InvalidDepth(err)
	}
	return depth, nil
}

func validateQuestion(q string) *apierr.Error {
	if strings.TrimSpace(q) == "" {
		return apierr.QuestionRequired()
	}
	return nil
}

func validateCypher(c string) *apierr.Error {
	if strings.TrimSpace(c) == "" {
		return apierr.CypherRequired()
	}
	return nil
}
