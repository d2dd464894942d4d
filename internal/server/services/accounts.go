// Package services implements the application logic between the HTTP
// transport and the repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"sweatstreak/internal/common"
	"sweatstreak/internal/dbx"
	"sweatstreak/internal/server/auth"
	"sweatstreak/internal/server/config"
	"sweatstreak/internal/server/models"
	"sweatstreak/internal/server/repositories/repomanager"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AccountService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AccountService {
	return &AccountService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// checkPasswordRules enforces the signup password policy: at least 8
// characters with one capital letter and one digit.
func checkPasswordRules(password string) error {
	if len(password) < 8 {
		return common.ErrorWeakPassword
	}
	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasDigit {
		return common.ErrorWeakPassword
	}
	return nil
}

func (s *AccountService) SignUp(ctx context.Context, email, username, password string) (*models.Account, error) {

	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)

	if email == "" || username == "" || password == "" {
		return nil, fmt.Errorf("%w: email, username and password are required", common.ErrorValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: malformed email", common.ErrorValidation)
	}
	if err := checkPasswordRules(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	account := &models.Account{
		Email:                email,
		Username:             username,
		PasswordHash:         hash,
		NotificationsEnabled: true,
	}

	repo := s.repomanager.Accounts(s.db)

	account, err = repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrorDuplicate) {
			return nil, common.ErrorAccountTaken
		}
		return nil, fmt.Errorf("error creating account: %v", err)
	}

	return account, nil
}

// Login authenticates by username or email and issues a token pair.
func (s *AccountService) Login(ctx context.Context, identifier, password string) (*models.Account, *TokenPair, error) {

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByLogin(ctx, strings.TrimSpace(identifier))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorInvalidCredentials
		}
		return nil, nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)) != nil {
		return nil, nil, common.ErrorInvalidCredentials
	}

	pair, err := s.generateTokenPair(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}

	return account, pair, nil
}

func (s *AccountService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {

	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("error searching refresh token: %v", err)
	}

	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var tokenPair *TokenPair

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %v", err)
		}

		tokenPair, err = s.generateTokenPairTx(ctx, tx, token.AccountID)
		if err != nil {
			return fmt.Errorf("error generating token pair: %v", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return tokenPair, nil
}

// CurrentAccount resolves the account behind an authenticated request.
func (s *AccountService) CurrentAccount(ctx context.Context, accountID string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).GetByID(ctx, accountID)
}

func (s *AccountService) UpdateProfile(ctx context.Context, username, bio, avatarURL, location string) error {
	return s.repomanager.Accounts(s.db).UpdateProfile(ctx, username, bio, avatarURL, location)
}

func (s *AccountService) UpdateSettings(ctx context.Context, username string, isPrivate, notificationsEnabled bool) error {
	return s.repomanager.Accounts(s.db).UpdateSettings(ctx, username, isPrivate, notificationsEnabled)
}

// FindAccount looks up another user's account for friend search; the caller
// gets common.ErrorNotFound when the username does not exist.
func (s *AccountService) FindAccount(ctx context.Context, username string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).GetByUsername(ctx, strings.TrimSpace(username))
}

func (s *AccountService) generateAccessToken(accountID string) (string, error) {
	return auth.GenerateToken(accountID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *AccountService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *AccountService) generateTokenPair(ctx context.Context, accountID string) (*TokenPair, error) {
	return s.generateTokenPairTx(ctx, s.db, accountID)
}

func (s *AccountService) generateTokenPairTx(ctx context.Context, db dbx.DBTX, accountID string) (*TokenPair, error) {
	accessToken, err := s.generateAccessToken(accountID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}

	err = s.repomanager.RefreshTokens(db).Create(ctx, accountID, refreshToken, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
