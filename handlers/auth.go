package handlers

import (
	"errors"
	"strings"

	"habitxp/database"
	"habitxp/models"
	"habitxp/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token"`
}

type AuthResponse struct {
	Message       string  `json:"message"`
	Token         string  `json:"token"`
	UserID        uint    `json:"id_usuario"`
	Name          string  `json:"nome"`
	XPTotal       int     `json:"xp_total"`
	PhotoURL      *string `json:"foto_url"`
	EmailVerified bool    `json:"email_verificado"`
}

const bcryptCost = 10

// Register creates an email/password account.
// POST /api/auth/register
func Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Corpo da requisição inválido.")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "Nome, Email e senha são obrigatórios")
	}

	db := requestDB(c)

	var existing int64
	if err := db.Model(&models.User{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
		return serverError(c, "Erro ao registrar usuário", err)
	}
	if existing > 0 {
		return utils.JSONError(c, fiber.StatusConflict, "Email já cadastrado")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return serverError(c, "Erro ao registrar usuário", err)
	}
	hashStr := string(hash)

	user := models.User{
		Name:         req.Name,
		Email:        &req.Email,
		PasswordHash: &hashStr,
	}
	if err := db.Create(&user).Error; err != nil {
		// Lost a race with a concurrent registration.
		if database.IsDuplicateKey(err) {
			return utils.JSONError(c, fiber.StatusConflict, "Email já cadastrado")
		}
		return serverError(c, "Erro ao registrar usuário", err)
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return serverError(c, "Erro ao registrar usuário", err)
	}

	log.Info("user registered", "user_id", user.ID, "email", req.Email)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Usuário registrado com sucesso",
		"id_usuario": user.ID,
		"token":      token,
	})
}

// Login authenticates with email and password.
// POST /api/auth/login
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Corpo da requisição inválido.")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "Email e senha são obrigatórios")
	}

	var user models.User
	err := requestDB(c).Where("email = ?", req.Email).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return serverError(c, "Erro ao realizar login", err)
	}
	if err != nil || !user.HasPassword() {
		return utils.JSONError(c, fiber.StatusUnauthorized, "Credenciais inválidas ou use o Login Social")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return utils.JSONError(c, fiber.StatusUnauthorized, "Credenciais inválidas")
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return serverError(c, "Erro ao realizar login", err)
	}

	return c.JSON(AuthResponse{
		Message:       "Autenticado com sucesso",
		Token:         token,
		UserID:        user.ID,
		Name:          user.Name,
		XPTotal:       user.XPTotal,
		PhotoURL:      user.PhotoURL,
		EmailVerified: user.EmailVerified,
	})
}

// GoogleLogin signs in with a Google ID token, linking or creating the
// account in one transaction.
// POST /api/auth/google
func GoogleLogin(c *fiber.Ctx) error {
	var req GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Corpo da requisição inválido.")
	}
	if strings.TrimSpace(req.IDToken) == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "ID Token do Google é obrigatório.")
	}
	if googleVerifier == nil {
		return serverError(c, "Erro ao processar login com Google.", errors.New("google verifier not configured"))
	}

	identity, err := googleVerifier.Verify(c.UserContext(), req.IDToken)
	if err != nil {
		log.Warn("google token rejected", "error", err)
		return utils.JSONError(c, fiber.StatusUnauthorized, "Token do Google inválido ou expirado.")
	}

	var user models.User
	err = database.NewTxRunner(database.GetDB()).InTx(c.UserContext(), func(uow database.UnitOfWork) error {
		tx := uow.DB()

		q := tx.Where("google_id = ?", identity.Subject)
		if identity.Email != "" {
			q = q.Or("email = ?", strings.ToLower(identity.Email))
		}
		findErr := q.Order("id_usuario ASC").First(&user).Error
		if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		if findErr == nil {
			updates := map[string]interface{}{"google_id": identity.Subject}
			if strings.TrimSpace(user.Name) == "" && identity.Name != "" {
				updates["nome"] = identity.Name
				user.Name = identity.Name
			}
			if user.PhotoURL == nil && identity.Picture != "" {
				updates["foto_url"] = identity.Picture
				user.PhotoURL = utils.StringPtr(identity.Picture)
			}
			return tx.Model(&models.User{}).Where("id_usuario = ?", user.ID).Updates(updates).Error
		}

		subject := identity.Subject
		user = models.User{
			Name:          identity.Name,
			GoogleID:      &subject,
			PhotoURL:      utils.StringPtr(identity.Picture),
			EmailVerified: identity.EmailVerified,
		}
		if identity.Email != "" {
			email := strings.ToLower(identity.Email)
			user.Email = &email
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return serverError(c, "Erro ao processar login com Google.", err)
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return serverError(c, "Erro ao processar login com Google.", err)
	}

	return c.JSON(AuthResponse{
		Message:       "Login com Google realizado com sucesso.",
		Token:         token,
		UserID:        user.ID,
		Name:          user.Name,
		XPTotal:       user.XPTotal,
		PhotoURL:      user.PhotoURL,
		EmailVerified: identity.EmailVerified,
	})
}
