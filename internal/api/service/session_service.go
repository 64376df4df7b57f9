package service

import (
	"time"

	"pmmbridge"
	"pmmbridge/internal/api/models"
	"pmmbridge/pkg"
)

// SessionStore persists workflow sessions keyed by their opaque identifier.
// Get returns (nil, nil) for an unknown or expired id.
type SessionStore interface {
	Get(id string) (*models.Session, error)
	Save(sess *models.Session) error
	Delete(id string) error
}

// RedisSessionStore keeps sessions in Redis with a sliding TTL. Secrets only
// ever live inside these values; they are never written to disk or logged.
type RedisSessionStore struct {
	ttl time.Duration
}

func NewRedisSessionStore() *RedisSessionStore {
	return &RedisSessionStore{ttl: pmmbridge.GetConfig().SessionConfig.TTL}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (slf *RedisSessionStore) Get(id string) (*models.Session, error) {
	var sess models.Session
	if err := pkg.RedisGet(sessionKey(id), &sess); err != nil {
		if pkg.IsRedisNil(err) {
			return nil, nil
		}
		return nil, err
	}
	return &sess, nil
}

func (slf *RedisSessionStore) Save(sess *models.Session) error {
	return pkg.RedisSet(sessionKey(sess.ID), sess, slf.ttl)
}

func (slf *RedisSessionStore) Delete(id string) error {
	return pkg.RedisDelete(sessionKey(id))
}
