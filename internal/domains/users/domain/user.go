package domain

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/pet-adoption-api/internal/shared/actor"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

var (
	ErrEmptyName     = errors.New("name is required")
	ErrEmptyEmail    = errors.New("email is required")
	ErrInvalidEmail  = errors.New("email must contain '@'")
	ErrEmptyPassword = errors.New("password is required")
	ErrWeakPassword  = errors.New("password must be at least 6 characters")
)

// Address is the postal address kept on a profile.
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
}

// User is a registered account. Adopters and shelter admins share the type and differ by role.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Address      Address
	Role         actor.Role
}

// Profile groups the fields a user may edit about themselves.
type Profile struct {
	Name    string
	Email   string
	Phone   string
	Address Address
}

// NewUser builds a user with the user role and a hashed password.
func NewUser(id string, profile Profile, password string) (*User, error) {
	user := &User{ID: id, Role: actor.RoleUser}
	if err := user.UpdateProfile(profile); err != nil {
		return nil, err
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile validates and applies profile fields.
func (u *User) UpdateProfile(profile Profile) error {
	name := strings.TrimSpace(profile.Name)
	if name == "" {
		return ErrEmptyName
	}
	email, err := NormalizeEmail(profile.Email)
	if err != nil {
		return err
	}
	u.Name = name
	u.Email = email
	u.Phone = strings.TrimSpace(profile.Phone)
	u.Address = Address{
		Street:  strings.TrimSpace(profile.Address.Street),
		City:    strings.TrimSpace(profile.Address.City),
		State:   strings.TrimSpace(profile.Address.State),
		ZipCode: strings.TrimSpace(profile.Address.ZipCode),
	}
	return nil
}

// Profile returns the editable fields.
func (u *User) Profile() Profile {
	return Profile{Name: u.Name, Email: u.Email, Phone: u.Phone, Address: u.Address}
}

// SetPassword hashes the password with bcrypt.
func (u *User) SetPassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Promote grants the admin role.
func (u *User) Promote() {
	u.Role = actor.RoleAdmin
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == actor.RoleAdmin
}

// Actor returns the caller identity for this user.
func (u *User) Actor() actor.Actor {
	return actor.Actor{UserID: u.ID, Role: u.Role}
}

// Clone returns a copy.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	dup := *u
	return &dup
}

// NormalizeEmail trims, lowercases and validates an email address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrEmptyEmail
	}
	if !strings.Contains(email, "@") {
		return "", ErrInvalidEmail
	}
	return email, nil
}
