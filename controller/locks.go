package controller

import (
	"time"

	uuid "github.com/satori/go.uuid"
)

type lock struct {
	token   string
	expires time.Time
}

// LockTable keeps match locks in memory. It isn't safe for concurrent use,
// callers guard it with their own mutex.
type LockTable map[string]*lock

// Lock takes or refreshes the lock on key. An empty token asks for a new one.
func (lt LockTable) Lock(key, token string) (string, error) {
	now := time.Now()

	l, ok := lt[key]
	if ok {
		// We have a lock token, if it's expired just delete it and continue as
		// if nothing happened.
		if l.expires.Before(now) {
			delete(lt, key)
		} else {
			// If the token is not expired and matched our active token, let's
			// just bump the expiration.
			if l.token == token {
				l.expires = now.Add(LockExpiry)
				return l.token, nil
			}
			// If it's not our token, we should throw an error.
			return "", ErrIsLocked
		}
	}
	if token == "" {
		token = uuid.NewV4().String()
	}
	// Lock was expired or non-existant, create a new token.
	lt[key] = &lock{
		token:   token,
		expires: now.Add(LockExpiry),
	}
	return token, nil
}

// Unlock releases key if token holds it or the lock has expired.
func (lt LockTable) Unlock(key, token string) error {
	l, ok := lt[key]
	// No lock? Don't care.
	if !ok {
		return nil
	}
	if l.expires.Before(time.Now()) || l.token == token {
		delete(lt, key)
		return nil
	}
	return ErrIsLocked
}

// IsLocked reports whether key holds a live lock.
func (lt LockTable) IsLocked(key string) bool {
	l, ok := lt[key]
	return ok && l.expires.After(time.Now())
}
