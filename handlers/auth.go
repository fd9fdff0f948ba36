package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/BlessPro/PongFocus/models"
	"github.com/BlessPro/PongFocus/responses"
	"github.com/BlessPro/PongFocus/utils"
)

type tokenRequest struct {
	Name string `json:"name"`
}

// IssueToken hands out a signed connection token for the display name in the
// request body. There is no account store; the token only pins the name the
// relay will use for this client.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	if h.cfg.JWTSecret == "" {
		utils.HandleError(w, responses.BadRequestError{Msg: "Token auth is not enabled."})
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.HandleError(w, responses.BadRequestError{Msg: "Invalid request."})
		return
	}

	if len(req.Name) < 1 || len(req.Name) > 50 {
		utils.HandleError(w, responses.BadRequestError{Msg: "Name must be between 1 and 50 characters."})
		return
	}

	claims := models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		},
		ID:   uuid.New().String(),
		Name: req.Name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		log.Println(err)
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to generate token."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"access_token": tokenString}))
}

// ValidateToken parses and verifies a connection token and returns its
// claims.
func ValidateToken(tokenStr, secret string) (*models.CustomClaims, error) {
	claims := &models.CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
