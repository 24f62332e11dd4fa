package v1

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/madhava-poojari/jobs-admin-console/internal/marketplace"
	"github.com/madhava-poojari/jobs-admin-console/internal/translation"
	"github.com/madhava-poojari/jobs-admin-console/internal/utils"
)

const maxTranslateChars = 5000

type TranslateHandler struct {
	translator translation.Translator
	target     string
}

func NewTranslateHandler(t translation.Translator, target string) *TranslateHandler {
	if target == "" {
		target = "hi"
	}
	return &TranslateHandler{translator: t, target: target}
}

// POST /translate {text, target}
func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	if h.translator == nil {
		utils.WriteJSONResponse(w, http.StatusNotImplemented, false, "translation is not configured", nil, nil)
		return
	}
	var req struct {
		Text   string `json:"text"`
		Target string `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "Invalid request body", nil, err)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" || len(text) > maxTranslateChars {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "text is required", nil, nil)
		return
	}
	target := req.Target
	if target == "" {
		target = h.target
	}

	out, err := h.translator.Translate(r.Context(), text, target)
	if err != nil {
		utils.WriteJSONResponse(w, marketplace.StatusCode(err), false, "Translation failed", nil, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", map[string]string{
		"text":            text,
		"translated_text": out,
		"source":          translation.SourceLanguage,
		"target":          target,
	}, nil)
}
