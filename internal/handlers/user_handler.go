package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/MiguelSerea/taskmanagement/internal/interfaces"
	"github.com/MiguelSerea/taskmanagement/internal/managers"
	"github.com/MiguelSerea/taskmanagement/internal/schemas"
	"github.com/MiguelSerea/taskmanagement/internal/utils"
)

// resetRequestMessage is returned for every password reset request,
// whether or not the identifier belongs to an account. Keeping the body
// identical closes the account-enumeration oracle.
const resetRequestMessage = "If this account is registered and has an email address, you will receive instructions to reset your password."

type UserHdl interface {
	RegisterUser(c *gin.Context)
	LoginUser(c *gin.Context)
	RequestPasswordReset(c *gin.Context)
	ConfirmPasswordReset(c *gin.Context)
	GetProfile(c *gin.Context)
	CheckUsername(c *gin.Context)
}

type UserHandler struct {
	DatabaseManager managers.DatabaseMgr
	TokenManager    managers.TokenMgr
	ResetManager    managers.ResetTokenMgr
	MailManager     managers.MailMgr
	Validator       *utils.Validator
	FrontendURL     string
}

func NewUserHandler(databaseManager managers.DatabaseMgr, tokenManager managers.TokenMgr,
	resetManager managers.ResetTokenMgr, mailManager managers.MailMgr, frontendURL string) UserHdl {
	return &UserHandler{
		DatabaseManager: databaseManager,
		TokenManager:    tokenManager,
		ResetManager:    resetManager,
		MailManager:     mailManager,
		Validator:       utils.GetValidator(),
		FrontendURL:     frontendURL,
	}
}

// RegisterUser creates a new user account, issues a bearer token and sends a welcome mail.
func (handler *UserHandler) RegisterUser(c *gin.Context) {
	registrationRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.RegistrationRequest)

	// At least one identifier is needed to register and to log back in.
	if registrationRequest.Username == "" && registrationRequest.Email == "" {
		utils.WriteAndLogError(c, schemas.MissingContact, http.StatusBadRequest, errors.New("neither username nor email given"))
		return
	}

	email := strings.TrimSpace(strings.ToLower(registrationRequest.Email))
	if email != "" && !handler.Validator.VerifyEmail(email) {
		utils.WriteAndLogError(c, schemas.EmailUnreachable, http.StatusBadRequest, errors.New("email unreachable"))
		return
	}

	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	username := registrationRequest.Username
	if username == "" {
		if username, err = deriveUsername(c.Request.Context(), tx, email); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			return
		}
	}

	if err = checkUsernameEmailTaken(c, tx, username, email); err != nil {
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registrationRequest.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	userId := uuid.New()
	queryString := `INSERT INTO accounts.users (user_id, username, email, password_hash, first_name, last_name, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, true, now())`
	if _, err = tx.Exec(c.Request.Context(), queryString, userId, username, email,
		string(hashedPassword), registrationRequest.FirstName, registrationRequest.LastName); err != nil {
		// The pre-check races with concurrent registrations; the unique
		// index is what actually guarantees one winner.
		if customErr := duplicateKeyError(err); customErr != nil {
			utils.WriteAndLogError(c, customErr, http.StatusBadRequest, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	token, err := handler.TokenManager.IssueOrGet(c.Request.Context(), tx, userId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	user := &schemas.User{
		ID:        userId,
		Username:  username,
		Email:     email,
		FirstName: registrationRequest.FirstName,
		LastName:  registrationRequest.LastName,
		IsActive:  true,
	}

	if email != "" {
		if err = handler.MailManager.SendWelcomeMail(email, displayName(user)); err != nil {
			utils.WriteAndLogError(c, schemas.EmailNotSent, http.StatusInternalServerError, err)
			return
		}
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	utils.WriteAndLogResponse(c, &schemas.TokenDTO{Token: token, User: userToDTO(user)}, http.StatusCreated)
}

// LoginUser verifies the credentials and returns the user's bearer token.
// The identifier resolves by email when it contains an '@', by username otherwise.
func (handler *UserHandler) LoginUser(c *gin.Context) {
	loginRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.LoginRequest)
	pool := handler.DatabaseManager.GetPool()

	user, err := resolveUserByIdentifier(c.Request.Context(), pool, loginRequest.Identifier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Same response as a wrong password, see the error design notes.
			utils.WriteAndLogError(c, schemas.InvalidCredentials, http.StatusUnauthorized, errors.New("unknown identifier"))
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(loginRequest.Password)); err != nil {
		utils.WriteAndLogError(c, schemas.InvalidCredentials, http.StatusUnauthorized, err)
		return
	}

	if !user.IsActive {
		utils.WriteAndLogError(c, schemas.UserDeactivated, http.StatusForbidden, errors.New("account deactivated"))
		return
	}

	token, err := handler.TokenManager.IssueOrGet(c.Request.Context(), pool, user.ID)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	// Browsers additionally get the token as an HttpOnly cookie; the mobile
	// apps identify themselves via X-Platform and read it from the body.
	platform := c.GetHeader("X-Platform")
	if platform != "android" && platform != "ios" {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie("authToken", token, 3600*24*7, "/", "", c.Request.TLS != nil, true)
	}

	utils.WriteAndLogResponse(c, &schemas.TokenDTO{Token: token, User: userToDTO(user)}, http.StatusOK)
}

// RequestPasswordReset issues a reset token and mails the reset link.
// The response is identical for known and unknown identifiers.
func (handler *UserHandler) RequestPasswordReset(c *gin.Context) {
	resetRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.PasswordResetRequest)
	pool := handler.DatabaseManager.GetPool()

	user, err := resolveUserByIdentifier(c.Request.Context(), pool, resetRequest.Identifier)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			utils.LogMessageWithFieldsAndError(c, "error", "Error resolving reset identifier", err)
		}
		utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: resetRequestMessage}, http.StatusOK)
		return
	}

	if user.Email == "" {
		utils.LogMessageWithFields(c, "warn", "Password reset requested for account without email")
		utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: resetRequestMessage}, http.StatusOK)
		return
	}

	token, err := handler.ResetManager.Issue(c.Request.Context(), user.ID)
	if err != nil {
		utils.LogMessageWithFieldsAndError(c, "error", "Error issuing reset token", err)
		utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: resetRequestMessage}, http.StatusOK)
		return
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", handler.FrontendURL, token)
	if err := handler.MailManager.SendPasswordResetMail(user.Email, displayName(user), resetLink); err != nil {
		// Failing here would let a caller probe which addresses receive mail.
		utils.LogMessageWithFieldsAndError(c, "error", "Error sending reset mail", err)
	}

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: resetRequestMessage}, http.StatusOK)
}

// ConfirmPasswordReset consumes the reset token, sets the new password and
// revokes every bearer token of the user.
func (handler *UserHandler) ConfirmPasswordReset(c *gin.Context) {
	confirmRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.PasswordResetConfirmRequest)

	if confirmRequest.NewPassword != confirmRequest.ConfirmPassword {
		utils.WriteAndLogError(c, schemas.PasswordMismatch, http.StatusBadRequest, errors.New("passwords do not match"))
		return
	}

	// Claim the token before touching the password. A failure later burns
	// the token, which fails in the safe direction: the password is
	// unchanged and the user can request a fresh link.
	userID, err := handler.ResetManager.Consume(c.Request.Context(), confirmRequest.Token)
	if err != nil {
		if errors.Is(err, managers.ErrResetTokenInvalid) {
			utils.WriteAndLogError(c, schemas.InvalidResetToken, http.StatusBadRequest, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(confirmRequest.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	queryString := "UPDATE accounts.users SET password_hash = $1 WHERE user_id = $2"
	if _, err = tx.Exec(c.Request.Context(), queryString, string(hashedPassword), userID); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	// Old sessions must not survive a password reset.
	if err = handler.TokenManager.RevokeAll(c.Request.Context(), tx, userID); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "Password reset successfully"}, http.StatusOK)
}

// GetProfile returns the record of the authenticated caller.
func (handler *UserHandler) GetProfile(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString(utils.UserIdKey.String()))
	if err != nil {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, err)
		return
	}

	user, err := fetchUserByID(c.Request.Context(), handler.DatabaseManager.GetPool(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(c, userToDTO(user), http.StatusOK)
}

// CheckUsername reports whether a username is still available.
func (handler *UserHandler) CheckUsername(c *gin.Context) {
	checkRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.UsernameAvailabilityRequest)

	var exists bool
	row := handler.DatabaseManager.GetPool().QueryRow(c.Request.Context(),
		"SELECT EXISTS(SELECT 1 FROM accounts.users WHERE username = $1)", checkRequest.Username)
	if err := row.Scan(&exists); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	response := &schemas.UsernameAvailabilityDTO{Available: !exists, Message: "Username is available"}
	if exists {
		response.Message = "Username is already taken"
	}

	utils.WriteAndLogResponse(c, response, http.StatusOK)
}

// resolveUserByIdentifier loads a user by email when the identifier contains
// an '@', by username otherwise. Emails compare case-insensitively.
func resolveUserByIdentifier(ctx context.Context, q interfaces.Querier, identifier string) (*schemas.User, error) {
	identifier = strings.TrimSpace(identifier)

	queryString := `SELECT user_id, username, COALESCE(email, ''), password_hash, COALESCE(first_name, ''),
		COALESCE(last_name, ''), is_active FROM accounts.users WHERE username = $1`
	if strings.Contains(identifier, "@") {
		identifier = strings.ToLower(identifier)
		queryString = `SELECT user_id, username, COALESCE(email, ''), password_hash, COALESCE(first_name, ''),
		COALESCE(last_name, ''), is_active FROM accounts.users WHERE lower(email) = $1`
	}

	return scanUser(q.QueryRow(ctx, queryString, identifier))
}

// fetchUserByID loads a user by primary key.
func fetchUserByID(ctx context.Context, q interfaces.Querier, userID uuid.UUID) (*schemas.User, error) {
	queryString := `SELECT user_id, username, COALESCE(email, ''), password_hash, COALESCE(first_name, ''),
		COALESCE(last_name, ''), is_active FROM accounts.users WHERE user_id = $1`
	return scanUser(q.QueryRow(ctx, queryString, userID))
}

func scanUser(row pgx.Row) (*schemas.User, error) {
	user := &schemas.User{}
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.IsActive); err != nil {
		return nil, err
	}
	return user, nil
}

// checkUsernameEmailTaken checks if the username or email is taken.
func checkUsernameEmailTaken(c *gin.Context, q interfaces.Querier, username, email string) error {
	queryString := `SELECT username, COALESCE(email, '') FROM accounts.users
		WHERE username = $1 OR ($2 <> '' AND lower(email) = $2)`
	rows, err := q.Query(c.Request.Context(), queryString, username, email)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return err
	}
	defer rows.Close()

	if rows.Next() {
		var foundUsername string
		var foundEmail string

		if err := rows.Scan(&foundUsername, &foundEmail); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			return err
		}

		customErr := schemas.EmailTaken
		if foundUsername == username {
			customErr = schemas.UsernameTaken
		}

		err = errors.New("username or email taken")
		utils.WriteAndLogError(c, customErr, http.StatusBadRequest, err)
		return err
	}

	return nil
}

// deriveUsername builds a username from the email local part, suffixing the
// current user count when the plain form is taken.
func deriveUsername(ctx context.Context, q interfaces.Querier, email string) (string, error) {
	base := strings.SplitN(email, "@", 2)[0]

	var exists bool
	row := q.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM accounts.users WHERE username = $1)", base)
	if err := row.Scan(&exists); err != nil {
		return "", err
	}
	if !exists {
		return base, nil
	}

	var count int
	row = q.QueryRow(ctx, "SELECT COUNT(*) FROM accounts.users")
	if err := row.Scan(&count); err != nil {
		return "", err
	}

	return base + strconv.Itoa(count), nil
}

// duplicateKeyError maps a unique-constraint violation to the catalog error
// of the offending column, or nil for unrelated errors.
func duplicateKeyError(err error) *schemas.CustomError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "email") {
		return schemas.EmailTaken
	}
	return schemas.UsernameTaken
}

// displayName mirrors the frontend convention: first name when present,
// username otherwise.
func displayName(user *schemas.User) string {
	if user.FirstName != "" {
		return user.FirstName
	}
	return user.Username
}

func userToDTO(user *schemas.User) schemas.UserDTO {
	return schemas.UserDTO{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Name:      displayName(user),
	}
}
