// FilePath: api/resources/api.resource.auth.go
package resources

import (
	"mime"
	"net/http"

	"github.com/secador-solar/sensorhub/internal/errors"
	"github.com/secador-solar/sensorhub/internal/hubservice"
	"github.com/secador-solar/sensorhub/internal/models"
)

// AuthHandlers encapsulates account registration and token issuance
type AuthHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Register an operator account
// @Tags auth
// @Accept json
// @Produce json
// @Param user body models.UserCreate true "Account"
// @Success 201 {object} models.User
// @Failure 400 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /register [post]
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var in models.UserCreate
	if err := decodeBody(r, &in); err != nil {
		respondWithError(w, r, err)
		return
	}

	user, err := h.hubservice.Register(r.Context(), in)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, user)
}

// @Summary Obtain an access token
// @Description Accepts an OAuth2 password form or a JSON body
// @Tags auth
// @Accept x-www-form-urlencoded
// @Accept json
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 200 {object} models.Token
// @Failure 401 {object} errors.APIError
// @Router /token [post]
func (h *AuthHandlers) Token(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	token, err := h.hubservice.Login(r.Context(), creds)
	if err != nil {
		if errors.IsAuth(err) {
			w.Header().Set("WWW-Authenticate", "Bearer")
		}
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, token)
}

func readCredentials(r *http.Request) (models.Credentials, error) {
	var creds models.Credentials

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return creds, decodeBody(r, &creds)
	}

	if err := r.ParseForm(); err != nil {
		return creds, errors.NewValidationError("invalid form body", err)
	}
	if err := queryDecoder.Decode(&creds, r.PostForm); err != nil {
		return creds, errors.NewValidationError("invalid form body", err)
	}
	if creds.Username == "" || creds.Password == "" {
		return creds, errors.NewValidationError("username and password are required", nil)
	}
	return creds, nil
}
