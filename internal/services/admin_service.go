package services

import (
	"fmt"
	"time"

	"digitizing/internal/authz"
	"digitizing/internal/models"
	"digitizing/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AdminService handles back-office authentication, admin account
// management and the dashboard summary.
type AdminService struct {
	adminRepo   repositories.AdminRepository
	orderRepo   repositories.OrderRepository
	paymentRepo repositories.PaymentRepository
	contactRepo repositories.ContactRepository
	jwtSecret   []byte
	tokenDurat  time.Duration
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	adminRepo repositories.AdminRepository,
	orderRepo repositories.OrderRepository,
	paymentRepo repositories.PaymentRepository,
	contactRepo repositories.ContactRepository,
	jwtSecret string,
) *AdminService {
	return &AdminService{
		adminRepo:   adminRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		contactRepo: contactRepo,
		jwtSecret:   []byte(jwtSecret),
		tokenDurat:  12 * time.Hour,
	}
}

// Login authenticates an admin and returns the account with a JWT
// token. Deactivated accounts cannot log in.
func (s *AdminService) Login(email, password string) (*models.AdminUser, string, error) {
	admin, err := s.adminRepo.GetByEmail(email)
	if err != nil {
		return nil, "", models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return nil, "", models.ErrInvalidCredentials
	}
	if !admin.IsActive {
		return nil, "", models.ErrInactiveAccount
	}

	now := time.Now()
	admin.LastLogin = &now
	if err := s.adminRepo.Update(admin); err != nil {
		return nil, "", fmt.Errorf("failed to record login: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"admin_id": admin.ID,
		"role":     string(admin.Role),
		"exp":      now.Add(s.tokenDurat).Unix(),
		"iat":      now.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return admin, tokenString, nil
}

// ValidateToken parses and validates an admin JWT token.
func (s *AdminService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// ListAdmins returns all admin accounts. Requires the admin role;
// managers are denied.
func (s *AdminService) ListAdmins(subject authz.Subject) ([]models.AdminUser, error) {
	if !authz.Can(subject, authz.ActionManageAdmins, authz.Resource{}) {
		return nil, models.ErrAccessDenied
	}
	return s.adminRepo.GetAll()
}

// CreateAdmin creates a new admin account. Requires the admin role.
func (s *AdminService) CreateAdmin(subject authz.Subject, admin *models.AdminUser) (*models.AdminUser, error) {
	if !authz.Can(subject, authz.ActionManageAdmins, authz.Resource{}) {
		return nil, models.ErrAccessDenied
	}

	if existing, err := s.adminRepo.GetByEmail(admin.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("email '%s': %w", admin.Email, models.ErrDuplicateEmail)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	admin.Password = string(hashedPassword)
	admin.IsActive = true

	if err := s.adminRepo.Create(admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// ToggleAdminStatus flips an admin account's active flag. Requires the
// admin role.
func (s *AdminService) ToggleAdminStatus(subject authz.Subject, adminID string) (*models.AdminUser, error) {
	if !authz.Can(subject, authz.ActionManageAdmins, authz.Resource{}) {
		return nil, models.ErrAccessDenied
	}

	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return nil, err
	}
	admin.IsActive = !admin.IsActive
	if err := s.adminRepo.Update(admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// ChangePassword updates the calling admin's own password after
// verifying the current one.
func (s *AdminService) ChangePassword(adminID, currentPassword, newPassword string) error {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", models.ErrValidation)
	}
	if len(newPassword) < 6 {
		return fmt.Errorf("new password must be at least 6 characters: %w", models.ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	admin.Password = string(hashedPassword)
	return s.adminRepo.Update(admin)
}

// DashboardStats computes the admin dashboard summary at read time.
func (s *AdminService) DashboardStats(subject authz.Subject) (*models.DashboardStats, error) {
	if !authz.Can(subject, authz.ActionReadStats, authz.Resource{}) {
		return nil, models.ErrAccessDenied
	}

	orders, err := s.orderRepo.GetAll(models.OrderFilters{})
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.GetAll(models.PaymentFilters{})
	if err != nil {
		return nil, err
	}
	contacts, err := s.contactRepo.GetAll(models.ContactFilters{})
	if err != nil {
		return nil, err
	}

	stats := &models.DashboardStats{TotalOrders: len(orders)}
	today := time.Now().Truncate(24 * time.Hour)
	for _, order := range orders {
		switch order.Status {
		case models.StatusPending:
			stats.PendingOrders++
			stats.ActiveOrders++
		case models.StatusQuoted, models.StatusPaid, models.StatusInProgress:
			stats.ActiveOrders++
		case models.StatusComplete:
			stats.CompletedOrders++
		}
		if !order.CreatedAt.Before(today) {
			stats.TodayOrders++
		}
	}
	for _, payment := range payments {
		switch payment.Status {
		case models.PaymentSucceeded:
			stats.TotalRevenue += payment.Amount
		case models.PaymentPending:
			stats.PendingPayments++
		}
	}
	for _, contact := range contacts {
		if contact.Status == models.ContactNew {
			stats.NewContacts++
		}
	}
	return stats, nil
}
