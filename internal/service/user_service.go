package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/db"
)

// CreateUser creates an operator with an already hashed password
func CreateUser(dbConn *gorm.DB, username, passwordHash string) (*db.User, error) {
	if username == "" || passwordHash == "" {
		return nil, fmt.Errorf("username and password cannot be empty")
	}

	user := db.User{
		Username: username,
		Password: passwordHash,
	}
	if err := dbConn.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username
func GetUserByUsername(dbConn *gorm.DB, username string) (*db.User, error) {
	var user db.User
	err := dbConn.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureOperator creates the operator unless it exists; force replaces an existing one.
// The bool reports whether a user was written.
func EnsureOperator(dbConn *gorm.DB, username, passwordHash string, force bool) (*db.User, bool, error) {
	existing, err := GetUserByUsername(dbConn, username)
	switch {
	case err == nil && !force:
		return existing, false, nil
	case err == nil:
		if err := dbConn.Delete(existing).Error; err != nil {
			return nil, false, fmt.Errorf("failed to delete existing user: %w", err)
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, fmt.Errorf("failed to check existing user: %w", err)
	}

	user, err := CreateUser(dbConn, username, passwordHash)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}
	return user, true, nil
}
