package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Dias221467/chatterbox/internal/services"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request payload: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid request: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidID),
		errors.Is(err, services.ErrNoFriendsToStartChat),
		errors.Is(err, services.ErrNotAFriend),
		errors.Is(err, services.ErrSelfFriendRequest):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrChatNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNotChatMember),
		errors.Is(err, services.ErrChatPending),
		errors.Is(err, services.ErrNotificationMismatch):
		return http.StatusForbidden
	case errors.Is(err, services.ErrDuplicateAuthID),
		errors.Is(err, services.ErrAlreadyFriends),
		errors.Is(err, services.ErrFriendRequestPending),
		errors.Is(err, services.ErrNotificationResolved),
		errors.Is(err, services.ErrNotificationDenied):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeServiceError writes err with its mapped status. Store failures are
// logged and answered without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err,
		}).Error("Request failed")
		writeError(w, status, "internal server error")
		return
	}
	log.WithFields(log.Fields{
		"path":  r.URL.Path,
		"error": err,
	}).Warn("Request rejected")
	writeError(w, status, err.Error())
}
