package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/openparish/parishboard/config"
	"github.com/openparish/parishboard/middleware"
	"github.com/openparish/parishboard/models"
	"github.com/openparish/parishboard/services"
	"github.com/openparish/parishboard/utils"
)

// AuthController handles registration, credential login, social
// sign-in, and profile self-service.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register creates a credential account. The role comes from the admin
// allow-list at creation time.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Email         string `json:"email" binding:"required"`
		Password      string `json:"password" binding:"required,min=8"`
		Confirm       string `json:"confirm"`
		Name          string `json:"name" binding:"required"`
		Nickname      string `json:"nickname"`
		CaptchaID     string `json:"captcha_id"`
		CaptchaAnswer string `json:"captcha_answer"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid email address")
		return
	}
	if req.Confirm != "" && req.Confirm != req.Password {
		utils.Error(ctx, http.StatusBadRequest, 40003, "passwords do not match")
		return
	}

	cfg := config.Get()
	if cfg.RegisterCaptchaEnabled && !utils.VerifyCaptcha(req.CaptchaID, req.CaptchaAnswer) {
		utils.Error(ctx, http.StatusBadRequest, 40004, "captcha verification failed")
		return
	}

	var existing models.User
	if err := a.db.Where("email = ?", email).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Nickname:     strings.TrimSpace(req.Nickname),
		Role:         services.DeriveRole(email, models.RoleUser, cfg.AdminEmails),
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create account")
		return
	}

	a.respondWithToken(ctx, user)
}

// Login verifies credentials and issues a session token. The role in
// the token is re-derived from the allow-list so configuration changes
// apply on the next login.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40005, "invalid request payload")
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}
	if user.PasswordHash == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "this account signs in through a social provider")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}

	a.respondWithToken(ctx, user)
}

// Captcha returns a fresh captcha id and base64 image for the
// registration form.
func (a *AuthController) Captcha(ctx *gin.Context) {
	id, b64, err := utils.GenerateCaptcha()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate captcha")
		return
	}
	utils.Success(ctx, gin.H{"captcha_id": id, "image": b64})
}

// Me returns the current user's account record.
func (a *AuthController) Me(ctx *gin.Context) {
	sess := middleware.GetSession(ctx)
	if sess == nil {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var user models.User
	if err := a.db.First(&user, sess.UserID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// UpdateProfile lets the user change their nickname.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	sess := middleware.GetSession(ctx)
	if sess == nil {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Nickname string `json:"nickname" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40006, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.First(&user, sess.UserID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}
	user.Nickname = strings.TrimSpace(req.Nickname)
	if err := a.db.Save(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to update profile")
		return
	}

	a.respondWithToken(ctx, user)
}

// CloseAccount deletes the caller's own account. Board history stays
// behind under the stored author name.
func (a *AuthController) CloseAccount(ctx *gin.Context) {
	sess := middleware.GetSession(ctx)
	if sess == nil {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if err := services.RemoveUser(a.db, sess.UserID); err != nil {
		serviceError(ctx, err, 50005, "failed to close account")
		return
	}
	utils.Success(ctx, gin.H{"message": "account closed"})
}

// OAuthRedirect generates a provider-specific authorization URL.
func (a *AuthController) OAuthRedirect(ctx *gin.Context) {
	provider := ctx.Param("provider")
	cfg, err := oauthConfig(provider)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40007, err.Error())
		return
	}

	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)

	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	utils.Success(ctx, gin.H{"authorization_url": url, "state": state})
}

// OAuthCallback exchanges the authorization code for a user identity
// and issues a session token. First sign-in creates the account with
// its role taken from the allow-list.
func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	provider := ctx.Param("provider")
	code := ctx.Query("code")
	state := ctx.Query("state")

	if code == "" || state == "" {
		utils.Error(ctx, http.StatusBadRequest, 40008, "missing code or state")
		return
	}
	if !utils.ConsumeState(state) {
		utils.Error(ctx, http.StatusBadRequest, 40009, "invalid or expired state")
		return
	}

	oCfg, err := oauthConfig(provider)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40007, err.Error())
		return
	}

	token, err := oCfg.Exchange(context.Background(), code)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "failed to exchange code")
		return
	}

	info, err := fetchOAuthUser(provider, token)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to fetch provider profile")
		return
	}

	user, err := a.findOrCreateOAuthUser(provider, info)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50007, "failed to persist user")
		return
	}

	a.respondWithToken(ctx, *user)
}

// respondWithToken derives the effective role, persists it when the
// allow-list overrides a stale stored value, and returns the token plus
// the user record.
func (a *AuthController) respondWithToken(ctx *gin.Context, user models.User) {
	cfg := config.Get()
	role := services.DeriveRole(user.Email, user.Role, cfg.AdminEmails)
	if role != user.Role {
		if err := a.db.Model(&user).Update("role", role).Error; err == nil {
			user.Role = role
		}
	}

	ttl := time.Duration(cfg.JWTTTLHours) * time.Hour
	token, err := utils.GenerateToken(user.ID, user.Email, user.Name, user.Nickname, role, ttl)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50008, "failed to generate token")
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": user})
}

type oauthUser struct {
	ID    string
	Email string
	Name  string
}

func (a *AuthController) findOrCreateOAuthUser(provider string, data *oauthUser) (*models.User, error) {
	var user models.User
	err := a.db.Where("provider = ? AND provider_id = ?", provider, data.ID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	email := strings.TrimSpace(strings.ToLower(data.Email))
	if email != "" {
		// Link the provider to an existing credential account with the
		// same email instead of creating a duplicate identity.
		if err := a.db.Where("email = ?", email).First(&user).Error; err == nil {
			updates := map[string]interface{}{"provider": provider, "provider_id": data.ID}
			if err := a.db.Model(&user).Updates(updates).Error; err != nil {
				return nil, err
			}
			return &user, nil
		}
	} else {
		// No email from the provider; synthesize a unique placeholder
		// so the unique index holds.
		email = fmt.Sprintf("%s-%s@users.noreply.local", provider, data.ID)
	}

	name := strings.TrimSpace(data.Name)
	if name == "" {
		name = provider + " user"
	}

	cfg := config.Get()
	user = models.User{
		Email:      email,
		Name:       name,
		Role:       services.DeriveRole(email, models.RoleUser, cfg.AdminEmails),
		Provider:   provider,
		ProviderID: data.ID,
	}
	if err := a.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func oauthConfig(provider string) (*oauth2.Config, error) {
	cfg := config.Get()
	switch strings.ToLower(provider) {
	case "google":
		if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
			return nil, fmt.Errorf("google oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  fmt.Sprintf("%s/api/v1/auth/oauth/google/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		}, nil
	case "github":
		if cfg.GitHubClientID == "" || cfg.GitHubClientSecret == "" {
			return nil, fmt.Errorf("github oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  fmt.Sprintf("%s/api/v1/auth/oauth/github/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func fetchOAuthUser(provider string, token *oauth2.Token) (*oauthUser, error) {
	switch strings.ToLower(provider) {
	case "google":
		return fetchGoogleUser(token)
	case "github":
		return fetchGitHubUser(token)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func fetchGoogleUser(token *oauth2.Token) (*oauthUser, error) {
	var payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := fetchJSON("https://www.googleapis.com/oauth2/v2/userinfo", token, &payload); err != nil {
		return nil, err
	}
	return &oauthUser{ID: payload.ID, Email: payload.Email, Name: payload.Name}, nil
}

func fetchGitHubUser(token *oauth2.Token) (*oauthUser, error) {
	var payload struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := fetchJSON("https://api.github.com/user", token, &payload); err != nil {
		return nil, err
	}
	name := payload.Name
	if name == "" {
		name = payload.Login
	}
	return &oauthUser{ID: strconv.FormatInt(payload.ID, 10), Email: payload.Email, Name: name}, nil
}

func fetchJSON(url string, token *oauth2.Token, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	token.SetAuthHeader(req)
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
