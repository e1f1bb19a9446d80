package handlers

import (
	"net/http"

	"github.com/Dias221467/chatterbox/internal/services"
	"github.com/Dias221467/chatterbox/pkg/middleware"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// actors checks that the user a request acts for is the authenticated caller.
// Requests without claims pass; the router only omits the auth middleware when
// authentication is disabled.
type actors struct {
	users *services.UserService
}

func (a actors) forbid(w http.ResponseWriter, r *http.Request, actor string) {
	log.WithFields(log.Fields{
		"path":  r.URL.Path,
		"actor": actor,
	}).Warn("Forbidden access attempt")
	writeError(w, http.StatusForbidden, "forbidden: you can only act as yourself")
}

// requireAuthID reports whether the caller is authID, writing 403 otherwise.
func (a actors) requireAuthID(w http.ResponseWriter, r *http.Request, authID string) bool {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil || claims.AuthID == authID {
		return true
	}
	a.forbid(w, r, authID)
	return false
}

// requireUser reports whether the caller is the user with id, writing the
// error response otherwise.
func (a actors) requireUser(w http.ResponseWriter, r *http.Request, id primitive.ObjectID) bool {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		return true
	}
	user, err := a.users.GetUserByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return false
	}
	if user.AuthID != claims.AuthID {
		a.forbid(w, r, id.Hex())
		return false
	}
	return true
}

// callerID returns the internal id of the caller. Without claims it falls back
// to the userId query parameter.
func (a actors) callerID(r *http.Request) (primitive.ObjectID, error) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		return services.ParseID(r.URL.Query().Get("userId"))
	}
	user, err := a.users.GetUserByAuthID(r.Context(), claims.AuthID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return user.ID, nil
}
