package authapi

import (
	"time"

	"taskboard/cmd/identity"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse is the wire shape of a user document. The password hash never
// leaves the server; field names follow the existing client contract.
type userResponse struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

func toUserResponse(u identity.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
