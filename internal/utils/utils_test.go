package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

func TestWriteJSONResponseRendersErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONResponse(rec, http.StatusBadGateway, false, "upstream failed", nil, errors.New("dial tcp"))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "dial tcp", body.Error)
}

func TestWriteJSONList(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONList(rec, "ok", []int{1, 2}, &models.Meta{Total: 2, Limit: 10, Page: 1, TotalPages: 1})
	assert.JSONEq(t, `{"success":true,"message":"ok","data":[1,2],"meta":{"total":2,"limit":10,"page":1,"totalPages":1}}`, rec.Body.String())
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	ok, err := ComparePasswordAndHash("s3cret", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ComparePasswordAndHash("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ComparePasswordAndHash("x", "not-a-hash")
	assert.Error(t, err)

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestGenerateOperatorID(t *testing.T) {
	id, err := GenerateOperatorID()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^OPR00[0-9A-Z]{5}$`), id)
	assert.Len(t, id, 10)
}

func TestDatatypesStrings(t *testing.T) {
	j := DatatypesJSONFromStrings([]string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, StringsFromDatatypesJSON(j))
	assert.Equal(t, "[]", string(DatatypesJSONFromStrings(nil)))
	assert.Empty(t, StringsFromDatatypesJSON(nil))
}

func TestRandomToken(t *testing.T) {
	a, b := RandomToken(), RandomToken()
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Len(t, GenerateRandomString(7), 7)
}
