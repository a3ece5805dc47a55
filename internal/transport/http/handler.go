package http

import (
	"context"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Daryna22/contacts-service/internal/auth/dto"
	authErrors "github.com/Daryna22/contacts-service/internal/auth/errors"
	"github.com/Daryna22/contacts-service/internal/auth/model"
	"github.com/Daryna22/contacts-service/internal/auth/service"
	"github.com/Daryna22/contacts-service/internal/mail"
	"github.com/Daryna22/contacts-service/internal/repo"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const accountKey = "account"

type Handler struct {
	svc      service.AuthService
	accounts repo.AccountRepo
	contacts repo.ContactRepo
	cache    repo.IdentityCache
	mailer   mail.Sender
	v        *validator.Validate
	log      *zap.Logger
	baseURL  string
}

func NewHandler(
	svc service.AuthService,
	accounts repo.AccountRepo,
	contacts repo.ContactRepo,
	cache repo.IdentityCache,
	mailer mail.Sender,
	v *validator.Validate,
	log *zap.Logger,
	baseURL string,
) *Handler {
	return &Handler{
		svc:      svc,
		accounts: accounts,
		contacts: contacts,
		cache:    cache,
		mailer:   mailer,
		v:        v,
		log:      log,
		baseURL:  baseURL,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", h.signup)
	auth.POST("/signin", h.signin)
	auth.GET("/refresh_token", h.refresh)
	auth.GET("/confirmed_email/:token", h.confirmEmail)
	auth.POST("/request_email", h.requestEmail)

	users := api.Group("/users", h.requireAuth)
	users.GET("/me", h.me)
	users.PATCH("/avatar", h.updateAvatar)

	contacts := api.Group("/contacts", h.requireAuth)
	contacts.GET("", h.listContacts)
	contacts.GET("/search", h.listContacts)
	contacts.GET("/birthdays", h.upcomingBirthdays)
	contacts.GET("/:id", h.getContact)
	contacts.POST("", h.createContact)
	contacts.PUT("/:id", h.updateContact)
	contacts.DELETE("/:id", h.deleteContact)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})
}

// requireAuth resolves the Bearer access token into the caller's account.
func (h *Handler) requireAuth(c *gin.Context) {
	raw := bearerToken(c)
	if raw == "" {
		c.AbortWithStatusJSON(nethttp.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	account, err := h.svc.ResolveIdentity(c.Request.Context(), raw)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.Set(accountKey, account)
	c.Next()
}

func currentAccount(c *gin.Context) model.Account {
	return c.MustGet(accountKey).(model.Account)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

type accountResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
}

func toAccountResponse(a model.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Avatar:    a.Avatar,
		Confirmed: a.Confirmed,
		CreatedAt: a.CreatedAt,
	}
}

func (h *Handler) signup(c *gin.Context) {
	var body dto.SignupDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.svc.Signup(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.sendConfirmationAsync(account)

	c.JSON(nethttp.StatusCreated, gin.H{
		"user":   toAccountResponse(account),
		"detail": "User successfully created",
	})
}

func (h *Handler) signin(c *gin.Context) {
	var body dto.SigninDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.svc.Authenticate(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(nethttp.StatusOK, pair)
}

func (h *Handler) refresh(c *gin.Context) {
	raw := bearerToken(c)
	if raw == "" {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), raw)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(nethttp.StatusOK, pair)
}

func (h *Handler) confirmEmail(c *gin.Context) {
	email, err := h.svc.RedeemConfirmation(c.Param("token"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	account, err := h.accounts.GetByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "verification error"})
		return
	}

	// redeeming for an already-confirmed account is a no-op success
	if account.Confirmed {
		c.JSON(nethttp.StatusOK, gin.H{"message": "Your email is already confirmed"})
		return
	}

	if err := h.accounts.ConfirmEmail(c.Request.Context(), email); err != nil {
		h.handleError(c, err)
		return
	}

	// the cached snapshot still says unconfirmed; force a refresh
	if err := h.cache.Invalidate(c.Request.Context(), email); err != nil {
		h.log.Warn("cache invalidate failed", zap.Error(err))
	}

	c.JSON(nethttp.StatusOK, gin.H{"message": "Email confirmed"})
}

func (h *Handler) requestEmail(c *gin.Context) {
	var body dto.RequestEmailDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.v.Struct(body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// always the same answer, whether or not the account exists
	account, err := h.accounts.GetByEmail(c.Request.Context(), body.Email)
	if err == nil && !account.Confirmed {
		h.sendConfirmationAsync(account)
	}
	if err == nil && account.Confirmed {
		c.JSON(nethttp.StatusOK, gin.H{"message": "Your email is already confirmed"})
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{"message": "Check your email for confirmation."})
}

// sendConfirmationAsync fires the confirmation mail without blocking the
// request. A mail failure is logged and swallowed: signup and
// confirmation state never depend on delivery.
func (h *Handler) sendConfirmationAsync(account model.Account) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		tok, err := h.svc.IssueConfirmationToken(account.Email)
		if err != nil {
			h.log.Error("issue confirmation token", zap.Error(err))
			return
		}

		link := h.baseURL + "/api/auth/confirmed_email/" + tok
		if err := h.mailer.SendConfirmation(ctx, account.Email, account.Username, link); err != nil {
			h.log.Error("send confirmation mail", zap.Error(err))
		}
	}()
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(nethttp.StatusOK, toAccountResponse(currentAccount(c)))
}

func (h *Handler) updateAvatar(c *gin.Context) {
	account := currentAccount(c)

	var body dto.AvatarDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.v.Struct(body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.accounts.UpdateAvatar(c.Request.Context(), account.Email, body.Avatar)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// the cached snapshot still carries the old avatar; force a refresh
	if err := h.cache.Invalidate(c.Request.Context(), account.Email); err != nil {
		h.log.Warn("cache invalidate failed", zap.Error(err))
	}

	c.JSON(nethttp.StatusOK, toAccountResponse(updated))
}

func (h *Handler) listContacts(c *gin.Context) {
	account := currentAccount(c)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 0 {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid offset"})
		return
	}

	filter := repo.ContactFilter{
		FirstName: c.Query("first_name"),
		LastName:  c.Query("last_name"),
		Email:     c.Query("email"),
		Limit:     limit,
		Offset:    offset,
	}

	contacts, err := h.contacts.List(c.Request.Context(), account.ID, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(nethttp.StatusOK, contacts)
}

func (h *Handler) upcomingBirthdays(c *gin.Context) {
	account := currentAccount(c)

	contacts, err := h.contacts.UpcomingBirthdays(c.Request.Context(), account.ID, 7)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(nethttp.StatusOK, contacts)
}

func (h *Handler) getContact(c *gin.Context) {
	account := currentAccount(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}

	contact, err := h.contacts.GetByID(c.Request.Context(), account.ID, uint(id))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(nethttp.StatusOK, contact)
}

func (h *Handler) createContact(c *gin.Context) {
	account := currentAccount(c)

	contact, ok := h.bindContact(c)
	if !ok {
		return
	}
	contact.AccountID = account.ID

	created, err := h.contacts.Create(c.Request.Context(), contact)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(nethttp.StatusCreated, created)
}

func (h *Handler) updateContact(c *gin.Context) {
	account := currentAccount(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}

	contact, ok := h.bindContact(c)
	if !ok {
		return
	}
	contact.ID = uint(id)
	contact.AccountID = account.ID

	updated, err := h.contacts.Update(c.Request.Context(), contact)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(nethttp.StatusOK, updated)
}

func (h *Handler) deleteContact(c *gin.Context) {
	account := currentAccount(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}

	if err := h.contacts.Delete(c.Request.Context(), account.ID, uint(id)); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(nethttp.StatusNoContent)
}

func (h *Handler) bindContact(c *gin.Context) (model.Contact, bool) {
	var body dto.ContactDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": err.Error()})
		return model.Contact{}, false
	}
	if err := h.v.Struct(body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": err.Error()})
		return model.Contact{}, false
	}

	birthDate, err := time.Parse("2006-01-02", body.BirthDate)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "birth_date must be YYYY-MM-DD"})
		return model.Contact{}, false
	}

	return model.Contact{
		FirstName:      body.FirstName,
		LastName:       body.LastName,
		Email:          body.Email,
		PhoneNumber:    body.PhoneNumber,
		BirthDate:      birthDate,
		AdditionalInfo: body.AdditionalInfo,
	}, true
}

// handleError maps core error kinds to transport statuses; the core never
// sees HTTP.
func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case authErrors.IsInvalidArgument(err):
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": err.Error()})
	case authErrors.IsInvalidCredentials(err):
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "invalid email or password"})
	case authErrors.IsAccountNotConfirmed(err):
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "email not confirmed"})
	case authErrors.IsInvalidToken(err):
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "invalid token"})
	case authErrors.IsConfirmation(err):
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid token for email verification"})
	case authErrors.IsAlreadyExists(err):
		c.JSON(nethttp.StatusConflict, gin.H{"error": "account already exists"})
	case authErrors.IsNotFound(err):
		c.JSON(nethttp.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.log.Error("internal error", zap.Error(err))
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (h *Handler) abortWithError(c *gin.Context, err error) {
	h.handleError(c, err)
	c.Abort()
}
