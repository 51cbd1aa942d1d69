// FilePath: api/resources/api.resource.ensayos.go
package resources

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/secador-solar/sensorhub/internal/hubservice"
	"github.com/secador-solar/sensorhub/internal/models"
)

// EnsayoHandlers encapsulates the ensayo-related HTTP handlers
type EnsayoHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Create an ensayo
// @Tags ensayos
// @Accept json
// @Produce json
// @Param ensayo body models.EnsayoInput true "Ensayo details"
// @Success 201 {object} models.Ensayo
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /ensayos [post]
// @Security BearerAuth
func (h *EnsayoHandlers) CreateEnsayo(w http.ResponseWriter, r *http.Request) {
	var in models.EnsayoInput
	if err := decodeBody(r, &in); err != nil {
		respondWithError(w, r, err)
		return
	}

	ensayo, err := h.hubservice.CreateEnsayo(r.Context(), in)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, ensayo)
}

// @Summary List ensayos
// @Tags ensayos
// @Produce json
// @Param controller_id query string false "Owning controller"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows (1-1000)"
// @Success 200 {array} models.Ensayo
// @Failure 400 {object} errors.APIError
// @Router /ensayos [get]
func (h *EnsayoHandlers) ListEnsayos(w http.ResponseWriter, r *http.Request) {
	var filters models.EnsayoFilters
	if err := decodeQuery(r, &filters); err != nil {
		respondWithError(w, r, err)
		return
	}
	page, err := getPaginationParams(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	ensayos, err := h.hubservice.ListEnsayos(r.Context(), filters, page)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ensayos)
}

// @Summary Get an ensayo by ID
// @Tags ensayos
// @Produce json
// @Param id path string true "Ensayo ID"
// @Success 200 {object} models.Ensayo
// @Failure 404 {object} errors.APIError
// @Router /ensayos/{id} [get]
func (h *EnsayoHandlers) GetEnsayo(w http.ResponseWriter, r *http.Request) {
	ensayo, err := h.hubservice.GetEnsayo(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ensayo)
}

// @Summary Update an ensayo
// @Description Omitted fields keep their stored value. Finalizado is terminal.
// @Tags ensayos
// @Accept json
// @Produce json
// @Param id path string true "Ensayo ID"
// @Param ensayo body models.EnsayoInput true "Fields to change"
// @Success 200 {object} models.Ensayo
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /ensayos/{id} [put]
// @Security BearerAuth
func (h *EnsayoHandlers) UpdateEnsayo(w http.ResponseWriter, r *http.Request) {
	var in models.EnsayoInput
	if err := decodeBody(r, &in); err != nil {
		respondWithError(w, r, err)
		return
	}

	ensayo, err := h.hubservice.UpdateEnsayo(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ensayo)
}

// @Summary Delete an ensayo
// @Description Generic ensayos cannot be deleted
// @Tags ensayos
// @Produce json
// @Param id path string true "Ensayo ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /ensayos/{id} [delete]
// @Security BearerAuth
func (h *EnsayoHandlers) DeleteEnsayo(w http.ResponseWriter, r *http.Request) {
	if err := h.hubservice.DeleteEnsayo(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Ensayo deleted"})
}
