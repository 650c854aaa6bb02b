package authController

import (
	"log"
	"time"

	"kalvi/config"
	"kalvi/database"
	"kalvi/middleware"
	"kalvi/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginRequest is the validated login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func login(c *fiber.Ctx, roles ...string) error {
	reqData, ok := c.Locals("validatedLogin").(*LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var user models.User
	query := db.Where("email = ? AND is_deleted = ?", reqData.Email, false)
	if len(roles) > 0 {
		query = query.Where("role IN ?", roles)
	}
	if err := query.First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email or password!", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email or password!", nil)
	}

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	db.Model(&models.User{}).Where("id = ?", user.ID).Update("last_login", time.Now())

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful!", fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// Login authenticates regular and admin users.
func Login(c *fiber.Ctx) error {
	return login(c, models.RoleUser, models.RoleAdmin)
}

// WebmasterLogin authenticates webmaster accounts only.
func WebmasterLogin(c *fiber.Ctx) error {
	return login(c, models.RoleWebmaster)
}

// EnsureDefaultAdmin seeds a bootstrap admin account when the user table
// is empty, so a fresh install is reachable.
func EnsureDefaultAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("ChangeMe123!"), config.AppConfig.SaltRound)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:     "Administrator",
		Email:    "admin@kalvi.local",
		Role:     models.RoleAdmin,
		Password: string(hashed),
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("Seeded default admin account admin@kalvi.local. Change its password immediately.")
	return nil
}
