// FilePath: api/resources/api.resource.controllers.go
package resources

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/secador-solar/sensorhub/internal/hubservice"
	"github.com/secador-solar/sensorhub/internal/models"
)

// ControllerHandlers encapsulates the controller-related HTTP handlers
type ControllerHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Register a controller
// @Description Create a controller together with its generic ensayo
// @Tags controller
// @Accept json
// @Produce json
// @Param controller body models.ControllerCreate true "Controller details"
// @Success 201 {object} models.ControllerCreated
// @Failure 400 {object} errors.APIError
// @Failure 401 {object} errors.APIError
// @Router /controller [post]
// @Security BearerAuth
func (h *ControllerHandlers) CreateController(w http.ResponseWriter, r *http.Request) {
	var in models.ControllerCreate
	if err := decodeBody(r, &in); err != nil {
		respondWithError(w, r, err)
		return
	}

	created, err := h.hubservice.CreateController(r.Context(), in)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// @Summary List controllers
// @Tags controller
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows (1-1000)"
// @Success 200 {array} models.Controller
// @Failure 400 {object} errors.APIError
// @Router /controller [get]
func (h *ControllerHandlers) ListControllers(w http.ResponseWriter, r *http.Request) {
	page, err := getPaginationParams(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	controllers, err := h.hubservice.ListControllers(r.Context(), page)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, controllers)
}

// @Summary Get a controller by ID
// @Tags controller
// @Produce json
// @Param id path string true "Controller ID"
// @Success 200 {object} models.Controller
// @Failure 404 {object} errors.APIError
// @Router /controller/{id} [get]
func (h *ControllerHandlers) GetController(w http.ResponseWriter, r *http.Request) {
	controller, err := h.hubservice.GetController(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, controller)
}

// @Summary Get controller status
// @Description Controller with its active ensayo, latest reading and connectivity
// @Tags controller
// @Produce json
// @Param id path string true "Controller ID"
// @Success 200 {object} models.ControllerStatus
// @Failure 404 {object} errors.APIError
// @Router /controller/{id}/status [get]
func (h *ControllerHandlers) GetControllerStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.hubservice.GetControllerStatus(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

// @Summary Rename a controller
// @Tags controller
// @Accept json
// @Produce json
// @Param id path string true "Controller ID"
// @Param body body models.ControllerNameUpdate true "New name"
// @Success 200 {object} models.Controller
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /controller/name-update/{id} [put]
// @Security BearerAuth
func (h *ControllerHandlers) UpdateControllerName(w http.ResponseWriter, r *http.Request) {
	var in models.ControllerNameUpdate
	if err := decodeBody(r, &in); err != nil {
		respondWithError(w, r, err)
		return
	}

	controller, err := h.hubservice.UpdateControllerName(r.Context(), mux.Vars(r)["id"], in.Name)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, controller)
}

// @Summary Switch the active ensayo
// @Description Start the given ensayo on the controller and stop the one running before
// @Tags controller
// @Accept json
// @Produce json
// @Param id path string true "Controller ID"
// @Param body body models.ControllerEnsayoUpdate true "Ensayo to activate"
// @Success 200 {object} models.ControllerSwitched
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /controller/update-test/{id} [put]
// @Security BearerAuth
func (h *ControllerHandlers) UpdateControllerEnsayo(w http.ResponseWriter, r *http.Request) {
	var in models.ControllerEnsayoUpdate
	if err := decodeBody(r, &in); err != nil {
		respondWithError(w, r, err)
		return
	}

	switched, err := h.hubservice.SwitchActiveEnsayo(r.Context(), mux.Vars(r)["id"], in.ActiveEnsayoID)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, switched)
}

// @Summary Delete a controller
// @Description Delete a controller, its readings and its generic ensayo
// @Tags controller
// @Produce json
// @Param id path string true "Controller ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /controller/{id} [delete]
// @Security BearerAuth
func (h *ControllerHandlers) DeleteController(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.hubservice.DeleteController(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Controller deleted", DeletedEntry: deleted})
}
