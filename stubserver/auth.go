package stubserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"qlink-client/model"
)

// stubUser is the stored account record.
type stubUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// handleRegister handles POST /api/auth/register. A created account is
// answered with 201; no session payload is returned.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.opTimeout)
	defer cancel()

	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Username == "" {
		sendJSONError(w, http.StatusBadRequest, errors.New("missing username"), "Username is required.")
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		sendJSONError(w, http.StatusBadRequest, errors.New("invalid email"), "Please provide a valid email address.")
		return
	}
	if len(req.Password) < 6 {
		sendJSONError(w, http.StatusBadRequest, errors.New("weak password"), "Password must be at least 6 characters.")
		return
	}

	// Check if email already exists
	emailKey := "user:email:" + req.Email
	if _, err := s.rdb.Get(ctx, emailKey).Result(); err != redis.Nil {
		if err == nil {
			sendJSONError(w, http.StatusConflict, errors.New("email exists"),
				"An account with this email already exists. Please login.")
			return
		}
		log.Error().Err(err).Msg("Failed to check email existence")
		sendJSONError(w, http.StatusInternalServerError, err, "Failed to process registration")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash password")
		sendJSONError(w, http.StatusInternalServerError, err, "Failed to process registration")
		return
	}

	user := stubUser{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		sendJSONError(w, http.StatusInternalServerError, err, "Failed to process registration")
		return
	}
	if err := s.rdb.Set(ctx, "user:"+user.ID, userJSON, 0).Err(); err != nil {
		log.Error().Err(err).Msg("Failed to store user")
		sendJSONError(w, http.StatusInternalServerError, err, "Failed to process registration")
		return
	}
	if err := s.rdb.Set(ctx, emailKey, user.ID, 0).Err(); err != nil {
		log.Error().Err(err).Msg("Failed to index user email")
		sendJSONError(w, http.StatusInternalServerError, err, "Failed to process registration")
		return
	}

	log.Info().Str("email", user.Email).Str("userID", user.ID).Msg("User registered")
	sendJSONSuccess(w, http.StatusCreated, model.RegisterResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

// handleLogin handles POST /api/auth/login and answers with the
// access_token/userId pair the client persists.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.opTimeout)
	defer cancel()

	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	userID, err := s.rdb.Get(ctx, "user:email:"+req.Email).Result()
	if err == redis.Nil {
		sendJSONError(w, http.StatusUnauthorized, errors.New("unknown email"), "Invalid email or password.")
		return
	} else if err != nil {
		log.Error().Err(err).Msg("Failed to look up user")
		sendJSONError(w, http.StatusInternalServerError, err, "Failed to process login")
		return
	}

	userData, err := s.rdb.Get(ctx, "user:"+userID).Result()
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Failed to load user")
		sendJSONError(w, http.StatusInternalServerError, err, "Failed to process login")
		return
	}

	var user stubUser
	if err := json.Unmarshal([]byte(userData), &user); err != nil {
		log.Error().Err(err).Msg("Failed to decode user record")
		sendJSONError(w, http.StatusInternalServerError, err, "Failed to process login")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		sendJSONError(w, http.StatusUnauthorized, errors.New("wrong password"), "Invalid email or password.")
		return
	}

	token, err := s.mintToken(user)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign token")
		sendJSONError(w, http.StatusInternalServerError, err, "Failed to process login")
		return
	}

	log.Info().Str("userID", user.ID).Msg("User logged in")
	sendJSONSuccess(w, http.StatusOK, model.LoginResponse{
		AccessToken: token,
		UserID:      user.ID,
	})
}

func (s *Server) mintToken(user stubUser) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// verifyBearer validates an Authorization header when one is present.
// The shorten endpoint accepts anonymous requests too; the client is
// expected to send the token, but the gate lives client-side.
func (s *Server) verifyBearer(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("malformed claims")
	}
	sub, _ := claims["sub"].(string)
	return sub, nil
}
