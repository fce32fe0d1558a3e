package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almoxarifado/models"
)

func TestStatusMapping(t *testing.T) {
	cases := map[error]int{
		models.ErrItemNotFound:                                                    http.StatusNotFound,
		fmt.Errorf("wrap: %w", models.ErrPermissionDenied):                        http.StatusForbidden,
		models.ErrSelfModification:                                                http.StatusForbidden,
		&models.ValidationError{Fields: map[string]string{"name": "is required"}}: http.StatusUnprocessableEntity,
		models.ErrInvalidQuantity:                                                 http.StatusUnprocessableEntity,
		models.ErrMissingSector:                                                   http.StatusUnprocessableEntity,
		models.ErrInsufficientStock:                                               http.StatusConflict,
		models.ErrDuplicate:                                                       http.StatusConflict,
		models.ErrWarehouseInUse:                                                  http.StatusConflict,
		models.ErrUserHasHistory:                                                  http.StatusConflict,
		errors.New("disk on fire"):                                                http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, Status(err), err.Error())
	}
}

func TestMessageHidesUnexpectedErrors(t *testing.T) {
	assert.Equal(t, "unexpected error, please try again", Message(errors.New("sql: connection reset")))
	assert.Equal(t, "insufficient stock", Message(models.ErrInsufficientStock))
}

func TestRedirectsCarryFlash(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/app/items", nil)
	w := httptest.NewRecorder()
	WithStatus(w, r, "/app/items?page=2", "item saved")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/app/items?page=2&status=item+saved", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	WithError(w, r, "/app/items", models.ErrInsufficientStock)
	assert.Equal(t, "/app/items?error=insufficient+stock", w.Header().Get("Location"))
}

func TestJSONErrorIncludesFields(t *testing.T) {
	w := httptest.NewRecorder()
	JSONError(w, &models.ValidationError{Fields: map[string]string{"barcode": "is required"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "is required", body.Fields["barcode"])
}
