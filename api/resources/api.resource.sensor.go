// FilePath: api/resources/api.resource.sensor.go
package resources

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/secador-solar/sensorhub/internal/hubservice"
	"github.com/secador-solar/sensorhub/internal/models"
)

// SensorHandlers encapsulates the reading ingestion and query handlers
type SensorHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Submit a sensor reading
// @Description Controllers post one reading per sensor. The hub assigns the ensayo and timestamp.
// @Tags sensor
// @Accept json
// @Produce json
// @Param reading body models.ReadingCreate true "Reading"
// @Success 201 {object} models.Reading
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /sensor [post]
func (h *SensorHandlers) CreateReading(w http.ResponseWriter, r *http.Request) {
	var in models.ReadingCreate
	if err := decodeBody(r, &in); err != nil {
		respondWithError(w, r, err)
		return
	}

	reading, err := h.hubservice.RecordReading(r.Context(), in)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, reading)
}

// @Summary List readings
// @Description Newest first. Filters are combined.
// @Tags sensor
// @Produce json
// @Param controller_id query string false "Controller"
// @Param sensor_id query int false "Sensor (1-4)"
// @Param ensayo_id query string false "Ensayo"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows (1-1000)"
// @Success 200 {array} models.Reading
// @Failure 400 {object} errors.APIError
// @Router /sensor [get]
func (h *SensorHandlers) ListReadings(w http.ResponseWriter, r *http.Request) {
	var filters models.ReadingFilters
	if err := decodeQuery(r, &filters); err != nil {
		respondWithError(w, r, err)
		return
	}
	page, err := getPaginationParams(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	readings, err := h.hubservice.ListReadings(r.Context(), filters, page)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, readings)
}

// @Summary Latest reading
// @Tags sensor
// @Produce json
// @Success 200 {object} models.Reading
// @Failure 404 {object} errors.APIError
// @Router /sensor/latest [get]
func (h *SensorHandlers) GetLatestReading(w http.ResponseWriter, r *http.Request) {
	reading, err := h.hubservice.GetLatestReading(r.Context())
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reading)
}

// @Summary Get a reading by ID
// @Tags sensor
// @Produce json
// @Param id path string true "Reading ID"
// @Success 200 {object} models.Reading
// @Failure 404 {object} errors.APIError
// @Router /sensor/{id} [get]
func (h *SensorHandlers) GetReading(w http.ResponseWriter, r *http.Request) {
	reading, err := h.hubservice.GetReading(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reading)
}

// @Summary Delete a reading
// @Tags sensor
// @Produce json
// @Param id path string true "Reading ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.APIError
// @Router /sensor/{id} [delete]
// @Security BearerAuth
func (h *SensorHandlers) DeleteReading(w http.ResponseWriter, r *http.Request) {
	if err := h.hubservice.DeleteReading(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Reading deleted"})
}
