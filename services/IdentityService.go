package services

import (
	"context"
	"net/mail"
	"strings"

	"combatStore/entities"
	"combatStore/models"
	"combatStore/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const minPasswordLen = 6

type IdentityService struct {
	ur repository.UserRepository
	sr repository.SessionRepository
	cr repository.CartRepository
}

func NewIdentityService(uRepo repository.UserRepository, sRepo repository.SessionRepository, cRepo repository.CartRepository) IdentityService {
	return IdentityService{
		ur: uRepo,
		sr: sRepo,
		cr: cRepo,
	}
}

// SignIn resolves the username to its email, checks the password against the identity for that
// email and opens a session.
func (is *IdentityService) SignIn(ctx context.Context, creds models.Credentials) (profile models.UserProfile, sessionId string, err error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		err = errors.Wrap(models.ErrValidation, "username and password are required")
		return
	}

	byName, exists, err := is.ur.GetProfileByUsername(ctx, username)
	if err != nil {
		return
	}
	if !exists {
		log.WithField("username", username).Info("SignIn: unknown username")
		err = models.ErrUnauthenticated
		return
	}
	authUser, exists, err := is.ur.GetAuthUserByEmail(ctx, byName.Email)
	if err != nil {
		return
	}
	if !exists || !is.ur.VerifyPassword(authUser.PasswordHash, creds.Password) {
		log.WithField("username", username).Info("SignIn: wrong password")
		err = models.ErrUnauthenticated
		return
	}

	profile, exists, err = is.ur.GetProfileByEmail(ctx, authUser.Email)
	if err != nil {
		return
	}
	if !exists {
		err = models.ErrNotFound
		return
	}
	sessionId, err = is.sr.CreateSession(ctx, authUser.Id, authUser.Email)
	return
}

func (is *IdentityService) SignUp(ctx context.Context, data models.SignupData) (models.UserProfile, error) {
	return is.CreateUser(ctx, data, models.RoleUser)
}

// CreateUser writes the identity and its profile with the given role.
func (is *IdentityService) CreateUser(ctx context.Context, data models.SignupData, role models.Role) (profile models.UserProfile, err error) {
	if !role.Valid() {
		err = errors.Wrapf(models.ErrValidation, "unknown role %q", role)
		return
	}
	username := strings.TrimSpace(data.Username)
	if username == "" {
		err = errors.Wrap(models.ErrValidation, "username is required")
		return
	}
	email := strings.ToLower(strings.TrimSpace(data.Email))
	if _, e := mail.ParseAddress(email); e != nil {
		err = errors.Wrap(models.ErrValidation, "email is invalid")
		return
	}
	if len(data.Password) < minPasswordLen {
		err = errors.Wrapf(models.ErrValidation, "password must be at least %d characters", minPasswordLen)
		return
	}

	hash, err := is.ur.EncryptPassword(data.Password)
	if err != nil {
		return
	}
	profile = models.UserProfile{
		Id:       uuid.New(),
		Username: username,
		Email:    email,
		Role:     role,
	}
	err = is.ur.AddNewUser(ctx, profile, hash)
	if errors.Is(err, repository.ErrUserExists) {
		err = errors.Wrap(models.ErrValidation, repository.ErrUserExists.Error())
	}
	if err != nil {
		profile = models.UserProfile{}
	}
	return
}

// CurrentUser returns nil without error when the session is unknown or expired.
func (is *IdentityService) CurrentUser(ctx context.Context, sessionId string) (*entities.Session, error) {
	if sessionId == "" {
		return nil, nil
	}
	sess, exists, err := is.sr.GetSession(ctx, sessionId)
	if err != nil || !exists {
		return nil, err
	}
	return &sess, nil
}

func (is *IdentityService) Profile(ctx context.Context, userId uuid.UUID) (profile models.UserProfile, err error) {
	profile, exists, err := is.ur.GetProfileById(ctx, userId)
	if err != nil {
		return
	}
	if !exists {
		err = models.ErrNotFound
	}
	return
}

func (is *IdentityService) GetRole(ctx context.Context, userId uuid.UUID) (models.Role, error) {
	profile, err := is.Profile(ctx, userId)
	if err != nil {
		return "", err
	}
	return profile.Role, nil
}

func (is *IdentityService) Refresh(ctx context.Context, sessionId string) error {
	exists, err := is.sr.RefreshSession(ctx, sessionId)
	if err != nil {
		return err
	}
	if !exists {
		return models.ErrUnauthenticated
	}
	return nil
}

// Logout ends the session and drops the cart that belonged to it.
func (is *IdentityService) Logout(ctx context.Context, sess entities.Session) error {
	if err := is.cr.DeleteCart(ctx, sess.CartKey()); err != nil {
		return err
	}
	return is.sr.DeleteSession(ctx, sess.Id)
}
