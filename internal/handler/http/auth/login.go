package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"district-digest/internal/domain/entity"
	"district-digest/internal/handler/http/requestid"
	"district-digest/internal/handler/http/respond"
	authservice "district-digest/internal/service/auth"
)

// LoginHandler creates the session login endpoint used by the terminal client.
// On success it returns {success: true, token: "..."}; bad credentials return
// 401 with an error body so the client can surface the message verbatim.
//
// @Summary      ログイン
// @Description  ユーザー名とパスワードで認証し、セッショントークンを返します
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body entity.Credentials true "ログイン情報"
// @Success      200 {object} entity.LoginResult "ログイン結果"
// @Failure      400 {string} string "リクエストが不正"
// @Failure      401 {object} map[string]string "認証失敗"
// @Failure      429 {string} string "Too many requests - rate limit exceeded"
// @Router       /login [post]
func LoginHandler(authService *authservice.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := requestid.FromContext(r.Context())
		logger := slog.With(slog.String("request_id", requestID))

		var creds entity.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			logger.Warn("login failed",
				slog.String("reason", "invalid_request"),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()))
			RecordAuthRequest("unknown", "failure")
			RecordAuthDuration("unknown", time.Since(start).Seconds())
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		err := authService.ValidateCredentials(r.Context(), authservice.Credentials{
			Username: creds.Username,
			Password: creds.Password,
		})
		if err != nil {
			logger.Warn("login failed",
				slog.String("reason", "invalid_credentials"),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()))
			RecordAuthRequest("unknown", "failure")
			RecordAuthDuration("unknown", time.Since(start).Seconds())
			respond.Error(w, http.StatusUnauthorized, errors.New("Invalid username or password"))
			return
		}

		role, err := authService.GetProvider().IdentifyUser(r.Context(), creds.Username)
		if err != nil {
			logger.Warn("login failed",
				slog.String("reason", "role_identification_failed"),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()))
			RecordAuthRequest("unknown", "failure")
			RecordAuthDuration("unknown", time.Since(start).Seconds())
			respond.Error(w, http.StatusUnauthorized, errors.New("Invalid username or password"))
			return
		}

		signed, err := signToken(creds.Username, role)
		if err != nil {
			logger.Error("token generation failed",
				slog.String("error", err.Error()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()))
			RecordAuthRequest(role, "failure")
			RecordAuthDuration(role, time.Since(start).Seconds())
			http.Error(w, "token generation failed", http.StatusInternalServerError)
			return
		}

		logger.Info("login successful",
			slog.String("user", creds.Username),
			slog.String("role", role),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		RecordAuthRequest(role, "success")
		RecordAuthDuration(role, time.Since(start).Seconds())

		respond.JSON(w, http.StatusOK, entity.LoginResult{Success: true, Token: signed})
	}
}
