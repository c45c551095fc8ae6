package repository

import (
	"context"
	"database/sql"
	"errors"

	"combatStore/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var ErrUserExists = errors.New("username or email already taken")

type UserRepository interface {
	GetProfileById(ctx context.Context, id uuid.UUID) (models.UserProfile, bool, error)
	GetProfileByUsername(ctx context.Context, username string) (models.UserProfile, bool, error)
	GetProfileByEmail(ctx context.Context, email string) (models.UserProfile, bool, error)
	GetAuthUserByEmail(ctx context.Context, email string) (models.AuthUser_db, bool, error)
	AddNewUser(ctx context.Context, profile models.UserProfile, passwordHash string) error
	EncryptPassword(userPass string) (hashedPassword string, err error)
	VerifyPassword(hashedPassword string, sentPassword string) bool
}

type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepository(conn *sqlx.DB) (UserRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	return &UserRepo{
		db: conn,
	}, nil
}

func (u *UserRepo) getProfile(ctx context.Context, op, where string, arg any) (uModel models.UserProfile, exists bool, err error) {
	err = u.db.GetContext(ctx, &uModel, "SELECT id, username, email, role FROM users WHERE "+where+" = $1", arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
			return
		}
		log.WithError(err).Error(op)
		err = models.NewStoreError(op, err)
		return
	}
	exists = true
	return
}

func (u *UserRepo) GetProfileById(ctx context.Context, id uuid.UUID) (models.UserProfile, bool, error) {
	return u.getProfile(ctx, "GetProfileById", "id", id)
}

func (u *UserRepo) GetProfileByUsername(ctx context.Context, username string) (models.UserProfile, bool, error) {
	return u.getProfile(ctx, "GetProfileByUsername", "username", username)
}

func (u *UserRepo) GetProfileByEmail(ctx context.Context, email string) (models.UserProfile, bool, error) {
	return u.getProfile(ctx, "GetProfileByEmail", "email", email)
}

func (u *UserRepo) GetAuthUserByEmail(ctx context.Context, email string) (aModel models.AuthUser_db, exists bool, err error) {
	err = u.db.GetContext(ctx, &aModel, "SELECT id, email, password_hash FROM auth_users WHERE email = $1", email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
			return
		}
		log.WithError(err).Error("GetAuthUserByEmail")
		err = models.NewStoreError("GetAuthUserByEmail", err)
		return
	}
	exists = true
	return
}

// AddNewUser writes the identity and its profile mirror in one transaction.
func (u *UserRepo) AddNewUser(ctx context.Context, profile models.UserProfile, passwordHash string) (err error) {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		log.WithError(err).Error("AddNewUser: begin")
		return models.NewStoreError("AddNewUser", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, "INSERT INTO auth_users (id, email, password_hash) VALUES ($1, $2, $3)",
		profile.Id, profile.Email, passwordHash)
	if err != nil {
		return u.insertError(err)
	}
	_, err = tx.NamedExecContext(ctx, "INSERT INTO users (id, username, email, role) VALUES (:id, :username, :email, :role)", profile)
	if err != nil {
		return u.insertError(err)
	}
	if err = tx.Commit(); err != nil {
		log.WithError(err).Error("AddNewUser: commit")
		return models.NewStoreError("AddNewUser", err)
	}
	return nil
}

func (u *UserRepo) insertError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrUserExists
	}
	log.WithError(err).Error("AddNewUser")
	return models.NewStoreError("AddNewUser", err)
}

func (u *UserRepo) EncryptPassword(userPass string) (hashedPassword string, err error) {
	var password []byte
	password, err = bcrypt.GenerateFromPassword([]byte(userPass), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).Error("EncryptPassword")
		err = models.NewStoreError("EncryptPassword", err)
		return
	}
	hashedPassword = string(password)
	return
}

func (u *UserRepo) VerifyPassword(hashedPassword string, sentPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(sentPassword))
	if err != nil {
		log.WithError(err).Debug("VerifyPassword")
	}
	return err == nil
}
