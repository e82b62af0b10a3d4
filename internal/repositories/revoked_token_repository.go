package repositories

import (
	"errors"
	"fmt"
	"time"

	"ledgervault/internal/models"

	"gorm.io/gorm"
)

type revokedTokenRepository struct {
	db *gorm.DB
}

func NewRevokedTokenRepository(db *gorm.DB) RevokedTokenRepositoryInterface {
	return &revokedTokenRepository{db: db}
}

// Revoke is idempotent: revoking the same jti twice is not an error.
func (r *revokedTokenRepository) Revoke(token *models.RevokedToken) error {
	if err := r.db.Create(token).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *revokedTokenRepository) IsRevoked(jti string) (bool, error) {
	var token models.RevokedToken
	err := r.db.Where("jti = ?", jti).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up revoked token: %w", err)
	}
	return true, nil
}

func (r *revokedTokenRepository) DeleteExpired() (int64, error) {
	result := r.db.Where("expires_at < ?", time.Now()).Delete(&models.RevokedToken{})
	return result.RowsAffected, result.Error
}
