package stubserver

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"qlink-client/model"
	"qlink-client/validator"
)

const slugCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_"

// storedURL is the redis record behind one slug.
type storedURL struct {
	OriginalURL string    `json:"originalUrl"`
	Slug        string    `json:"slug"`
	UserID      string    `json:"userId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func generateSlug(length int) (string, error) {
	result := make([]byte, length)
	for i := range result {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slugCharset))))
		if err != nil {
			return "", err
		}
		result[i] = slugCharset[num.Int64()]
	}
	return string(result), nil
}

// handleShorten handles POST /api/shorten.
func (s *Server) handleShorten(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.opTimeout)
	defer cancel()

	userID, err := s.verifyBearer(r)
	if err != nil {
		sendJSONError(w, http.StatusUnauthorized, err, "Invalid or expired token")
		return
	}

	var req model.ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	// Same URL shape the client enforces.
	if errs := validator.Validate(model.FormShorten, map[string]string{model.FieldURL: req.OriginalURL}); len(errs) > 0 {
		sendJSONError(w, http.StatusBadRequest, errors.New("invalid url"), errs[model.FieldURL])
		return
	}

	slug, err := generateSlug(8)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate slug")
		sendJSONError(w, http.StatusInternalServerError, err, "Failed to shorten URL")
		return
	}

	record := storedURL{
		OriginalURL: req.OriginalURL,
		Slug:        slug,
		UserID:      userID,
		CreatedAt:   time.Now(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		sendJSONError(w, http.StatusInternalServerError, err, "Failed to shorten URL")
		return
	}
	if err := s.rdb.Set(ctx, "url:"+slug, data, 0).Err(); err != nil {
		log.Error().Err(err).Msg("Failed to store URL")
		sendJSONError(w, http.StatusInternalServerError, err, "Failed to shorten URL")
		return
	}

	base := s.cfg.BaseURL
	if base == "" {
		base = fmt.Sprintf("http://%s", r.Host)
	}
	shortURL := fmt.Sprintf("%s/%s", base, slug)

	log.Info().Str("slug", slug).Str("original", req.OriginalURL).Msg("Short URL created")
	sendJSONSuccess(w, http.StatusOK, model.ShortenResponse{ShortURL: shortURL})
}

// handleRedirect handles GET /{slug}.
func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.opTimeout)
	defer cancel()

	slug := mux.Vars(r)["slug"]

	data, err := s.rdb.Get(ctx, "url:"+slug).Bytes()
	if err == redis.Nil {
		sendJSONError(w, http.StatusNotFound, errors.New("not found"), "URL not found")
		return
	} else if err != nil {
		log.Error().Err(err).Msg("Failed to load URL record")
		sendJSONError(w, http.StatusInternalServerError, err, "Failed to resolve URL")
		return
	}

	var record storedURL
	if err := json.Unmarshal(data, &record); err != nil {
		log.Error().Err(err).Msg("Failed to decode URL record")
		sendJSONError(w, http.StatusInternalServerError, err, "Failed to resolve URL")
		return
	}

	target := record.OriginalURL
	// Schemeless targets still need an absolute Location header.
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "http://" + target
	}

	http.Redirect(w, r, target, http.StatusFound)
}
