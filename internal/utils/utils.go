package utils

import (
	"encoding/json"
	"net/http"

	"gorm.io/datatypes"

	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

// WriteJSONResponse writes the standard {success, message, data, error}
// envelope. An error value is rendered as its message.
func WriteJSONResponse(w http.ResponseWriter, status int, success bool, message string, data interface{}, errDetail interface{}) {
	writeEnvelope(w, status, models.APIResponse{
		Success: success,
		Message: message,
		Data:    data,
		Error:   errorDetail(errDetail),
	})
}

// WriteJSONList is WriteJSONResponse for paginated lists.
func WriteJSONList(w http.ResponseWriter, message string, data interface{}, meta *models.Meta) {
	writeEnvelope(w, http.StatusOK, models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

func writeEnvelope(w http.ResponseWriter, status int, resp models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func errorDetail(v interface{}) interface{} {
	switch e := v.(type) {
	case nil:
		return nil
	case error:
		return e.Error()
	}
	return v
}

func DatatypesJSONFromStrings(ss []string) datatypes.JSON {
	if ss == nil {
		ss = []string{}
	}
	b, _ := json.Marshal(ss)
	return datatypes.JSON(b)
}

// StringsFromDatatypesJSON tolerates null and malformed columns.
func StringsFromDatatypesJSON(j datatypes.JSON) []string {
	var arr []string
	if len(j) == 0 {
		return arr
	}
	_ = json.Unmarshal([]byte(j), &arr)
	return arr
}
