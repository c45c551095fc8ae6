package repository

import (
	"context"
	"errors"
	"time"

	"combatStore/entities"
	"combatStore/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type SessionRepository interface {
	CreateSession(ctx context.Context, userId uuid.UUID, email string) (sessionId string, err error)
	GetSession(ctx context.Context, sessionId string) (sess entities.Session, exists bool, err error)
	DeleteSession(ctx context.Context, sessionId string) (err error)
	RefreshSession(ctx context.Context, sessionId string) (exists bool, err error)
}

type SessionRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionRepository(redis_conn *redis.Client, ttl time.Duration) (SessionRepository, error) {
	if redis_conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	return &SessionRepo{
		rdb: redis_conn,
		ttl: ttl,
	}, nil
}

func sessionKey(sessionId string) string {
	return "session:" + sessionId
}

func (s *SessionRepo) CreateSession(ctx context.Context, userId uuid.UUID, email string) (sessionId string, err error) {
	sessionId = uuid.NewString()
	key := sessionKey(sessionId)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "userId", userId.String(), "email", email)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		log.WithError(err).Error("CreateSession")
		err = models.NewStoreError("CreateSession", err)
		sessionId = ""
	}
	return
}

func (s *SessionRepo) GetSession(ctx context.Context, sessionId string) (sess entities.Session, exists bool, err error) {
	val, e := s.rdb.HGetAll(ctx, sessionKey(sessionId)).Result()
	if e != nil {
		log.WithError(e).Error("GetSession")
		err = models.NewStoreError("GetSession", e)
		return
	}
	if len(val) == 0 {
		return
	}
	userId, e := uuid.Parse(val["userId"])
	if e != nil {
		log.WithError(e).WithField("session", sessionId).Warn("GetSession: corrupt user id")
		return
	}
	sess = entities.Session{
		Id:     sessionId,
		UserId: userId,
		Email:  val["email"],
	}
	exists = true
	return
}

func (s *SessionRepo) DeleteSession(ctx context.Context, sessionId string) (err error) {
	err = s.rdb.Del(ctx, sessionKey(sessionId)).Err()
	if err != nil {
		log.WithError(err).Error("DeleteSession")
		err = models.NewStoreError("DeleteSession", err)
	}
	return
}

func (s *SessionRepo) RefreshSession(ctx context.Context, sessionId string) (exists bool, err error) {
	exists, err = s.rdb.Expire(ctx, sessionKey(sessionId), s.ttl).Result()
	if err != nil {
		log.WithError(err).Error("RefreshSession")
		err = models.NewStoreError("RefreshSession", err)
	}
	return
}
