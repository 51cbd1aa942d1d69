// FilePath: api/resources/resources.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/secador-solar/sensorhub/api/middleware"
	"github.com/secador-solar/sensorhub/internal/errors"
	"github.com/secador-solar/sensorhub/internal/hubservice"
	"github.com/secador-solar/sensorhub/internal/models"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Controllers *ControllerHandlers
	Ensayos     *EnsayoHandlers
	Sensor      *SensorHandlers
	Auth        *AuthHandlers
}

// NewResources creates a new Resources instance
func NewResources(svc *hubservice.HubService) *Resources {
	return &Resources{
		Controllers: &ControllerHandlers{hubservice: svc},
		Ensayos:     &EnsayoHandlers{hubservice: svc},
		Sensor:      &SensorHandlers{hubservice: svc},
		Auth:        &AuthHandlers{hubservice: svc},
	}
}

// MessageResponse is returned by deletions.
type MessageResponse struct {
	Message      string      `json:"message"`
	DeletedEntry interface{} `json:"deleted_entry,omitempty"`
}

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// Helper functions

func getPaginationParams(r *http.Request) (models.Pagination, error) {
	page := models.DefaultPagination()
	if err := queryDecoder.Decode(&page, r.URL.Query()); err != nil {
		return page, errors.NewValidationError("invalid pagination parameters", err)
	}
	return page, nil
}

func decodeQuery(r *http.Request, dst interface{}) error {
	if err := queryDecoder.Decode(dst, r.URL.Query()); err != nil {
		return errors.NewValidationError("invalid query parameters", err)
	}
	return nil
}

func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.NewValidationError("invalid request body", err)
	}
	return nil
}

func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	middleware.WriteError(w, r, err)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	middleware.WriteJSON(w, code, payload)
}
