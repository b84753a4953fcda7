package authstub

import (
	"errors"
	"net/http"
	"time"

	apperrors "github.com/agbs2k8/eostre/internal/errors"
	"github.com/agbs2k8/eostre/users"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

type profileUpdate struct {
	DisplayName  *string `json:"display_name" validate:"omitempty,min=1,max=255"`
	PersonalName *string `json:"personal_name" validate:"omitempty,max=255"`
	FamilyNames  *string `json:"family_names" validate:"omitempty,max=255"`
}

type accountResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Active      bool   `json:"active"`
}

type accountUserResponse struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	Email        string        `json:"email"`
	CreatedDate  time.Time     `json:"created_date"`
	ModifiedDate time.Time     `json:"modified_date"`
	Grants       []users.Grant `json:"grants"`
}

// currentUser loads the user named by the token's sub claim, writing the
// error response when it cannot.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (*users.User, bool) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	user, err := s.repos.Users.GetByID(claims.Subject)
	if errors.Is(err, apperrors.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return nil, false
	}
	if err != nil {
		log.Err(err).Str("user_id", claims.Subject).Msg("failed to load user")
		writeError(w, http.StatusInternalServerError, "Unable to load user")
		return nil, false
	}
	return user, true
}

func (s *Server) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user.Profile())
}

func (s *Server) UpdateMeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req profileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated := *user
	if req.DisplayName != nil {
		updated.DisplayName = *req.DisplayName
	}
	if req.PersonalName != nil {
		updated.PersonalName = req.PersonalName
	}
	if req.FamilyNames != nil {
		updated.FamilyNames = req.FamilyNames
	}
	updated.ModifiedDate = NowTimeFunc().UTC()

	if err := s.repos.Users.Upsert(&updated); err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("failed to update user")
		writeError(w, http.StatusInternalServerError, "Unable to update user")
		return
	}
	log.Info().Str("user_id", user.ID).Msg("profile updated")
	writeJSON(w, http.StatusOK, updated.Profile())
}

func (s *Server) AuthorizedAccountsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	accounts := make([]accountResponse, 0)
	seen := make(map[string]bool)
	for _, g := range user.Grants {
		if !g.Active || g.RevokedDate != nil || seen[g.AccountID] {
			continue
		}
		seen[g.AccountID] = true
		accounts = append(accounts, accountResponse{
			ID:          g.AccountID,
			Name:        g.AccountName,
			DisplayName: g.AccountDisplayName,
			Active:      true,
		})
	}
	writeJSON(w, http.StatusOK, accounts)
}

// AccountUsersHandler lists the users holding an active grant on the token's
// account.
func (s *Server) AccountUsersHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok || claims.AccountID == "" {
		writeError(w, http.StatusForbidden, "No active account")
		return
	}

	all, err := s.repos.Users.List(0, 0)
	if err != nil {
		log.Err(err).Msg("failed to list users")
		writeError(w, http.StatusInternalServerError, "Unable to list users")
		return
	}

	members := make([]accountUserResponse, 0)
	for _, u := range all {
		var grants []users.Grant
		for _, g := range u.Grants {
			if g.AccountID == claims.AccountID && g.Active && g.RevokedDate == nil {
				grants = append(grants, g)
			}
		}
		if len(grants) == 0 || u.Deleted {
			continue
		}
		members = append(members, accountUserResponse{
			ID:           u.ID,
			Name:         u.Name,
			Type:         string(u.Type),
			Email:        u.PrimaryEmail(),
			CreatedDate:  u.CreatedDate,
			ModifiedDate: u.ModifiedDate,
			Grants:       grants,
		})
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) RolesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, seedRoles)
}

func (s *Server) HelloTokenHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Hello, " + claims.Username,
		"sub":        claims.Subject,
		"account_id": claims.AccountID,
		"exp":        claims.ExpiresAt.Unix(),
	})
}
