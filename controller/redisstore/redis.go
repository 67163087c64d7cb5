// Package redisstore is a controller.Store on top of redis.
//
// Keys:
//
//	match:<id>          JSON encoded match
//	match:<id>:frames   list of JSON encoded frames, in turn order
//	match:<id>:lock     lock token, expires after controller.LockExpiry
//	matches:running     set of running match ids
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis"
	"github.com/lightcycles/engine/controller"
	"github.com/lightcycles/engine/rules"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

const runningKey = "matches:running"

func matchKey(id string) string  { return fmt.Sprintf("match:%s", id) }
func framesKey(id string) string { return fmt.Sprintf("match:%s:frames", id) }
func lockKey(id string) string   { return fmt.Sprintf("match:%s:lock", id) }

// RedisStore stores matches in redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore will create a new instance of an underlying redis client, so it should not be re-created across "threads"
// - connectURL see: github.com/go-redis/redis/options.go for URL specifics
// The underlying redis client will be immediately tested for connectivity, so don't call this until you know redis can connect.
// Returns a new instance OR an error if unable (meaning an issue connecting to your redis URL)
func NewRedisStore(connectURL string) (*RedisStore, error) {
	o, err := redis.ParseURL(connectURL)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse redis URL")
	}

	client := redis.NewClient(o)

	// Validate it's connected
	err = client.Ping().Err()
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect")
	}

	return &RedisStore{client: client}, nil
}

// Close closes the underlying redis client.
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

// Lock will lock a specific match, returning a token that must be used to
// write frames to the match.
func (rs *RedisStore) Lock(ctx context.Context, key, token string) (string, error) {
	if token == "" {
		token = uuid.NewV4().String()
	}
	// A lock that expires straight away never needs to be written.
	if controller.LockExpiry <= 0 {
		return token, nil
	}

	ok, err := rs.client.SetNX(lockKey(key), token, controller.LockExpiry).Result()
	if err != nil {
		return "", errors.Wrap(err, "unable to take lock")
	}
	if ok {
		return token, nil
	}

	current, err := rs.client.Get(lockKey(key)).Result()
	if err == redis.Nil {
		// Expired in between, try once more.
		ok, err = rs.client.SetNX(lockKey(key), token, controller.LockExpiry).Result()
		if err != nil {
			return "", errors.Wrap(err, "unable to take lock")
		}
		if ok {
			return token, nil
		}
		return "", controller.ErrIsLocked
	}
	if err != nil {
		return "", errors.Wrap(err, "unable to read lock")
	}
	if current != token {
		return "", controller.ErrIsLocked
	}
	if err := rs.client.Expire(lockKey(key), controller.LockExpiry).Err(); err != nil {
		return "", errors.Wrap(err, "unable to refresh lock")
	}
	return token, nil
}

// Unlock will unlock a match if it is locked and the token used to lock it
// is correct.
func (rs *RedisStore) Unlock(ctx context.Context, key, token string) error {
	current, err := rs.client.Get(lockKey(key)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "unable to read lock")
	}
	if current != token {
		return controller.ErrIsLocked
	}
	return errors.Wrap(rs.client.Del(lockKey(key)).Err(), "unable to unlock")
}

// PopMatchID returns a match that is unlocked and running. Workers call this
// method to find matches to process.
func (rs *RedisStore) PopMatchID(ctx context.Context) (string, error) {
	ids, err := rs.client.SMembers(runningKey).Result()
	if err != nil {
		return "", errors.Wrap(err, "unable to list running matches")
	}
	for _, id := range ids {
		locked, err := rs.client.Exists(lockKey(id)).Result()
		if err != nil {
			return "", errors.Wrap(err, "unable to check lock")
		}
		if locked == 0 {
			return id, nil
		}
	}
	return "", controller.ErrNotFound
}

// SetMatchStatus is used to set a specific match status.
func (rs *RedisStore) SetMatchStatus(c context.Context, id string, status rules.MatchStatus) error {
	m, err := rs.GetMatch(c, id)
	if err != nil {
		return err
	}
	m.Status = status
	return rs.putMatch(m, nil, false)
}

// SetMatchWinner records the winning player number.
func (rs *RedisStore) SetMatchWinner(c context.Context, id string, winner int) error {
	m, err := rs.GetMatch(c, id)
	if err != nil {
		return err
	}
	m.Winner = winner
	return rs.putMatch(m, nil, false)
}

// CreateMatch will insert a match with the default frames.
func (rs *RedisStore) CreateMatch(c context.Context, m *rules.Match, frames []*rules.Frame) error {
	for i, f := range frames {
		if f.Turn != int64(i) {
			return controller.ErrInvalidSequence
		}
	}
	return rs.putMatch(m, frames, true)
}

// putMatch writes the match and keeps the running set in step with its
// status. With replaceFrames the frame list is replaced by frames.
func (rs *RedisStore) putMatch(m *rules.Match, frames []*rules.Frame, replaceFrames bool) error {
	data, err := json.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "unable to marshal match")
	}
	encoded := make([]interface{}, 0, len(frames))
	for _, f := range frames {
		frameData, err := json.Marshal(f)
		if err != nil {
			return errors.Wrap(err, "unable to marshal frame")
		}
		encoded = append(encoded, frameData)
	}

	_, err = rs.client.TxPipelined(func(pipe redis.Pipeliner) error {
		pipe.Set(matchKey(m.ID), data, 0)
		if replaceFrames {
			pipe.Del(framesKey(m.ID))
			if len(encoded) > 0 {
				pipe.RPush(framesKey(m.ID), encoded...)
			}
		}
		if m.Status == rules.MatchStatusRunning {
			pipe.SAdd(runningKey, m.ID)
		} else {
			pipe.SRem(runningKey, m.ID)
		}
		return nil
	})
	return errors.Wrap(err, "unable to write match")
}

// PushFrame will push a frame onto the list of frames.
func (rs *RedisStore) PushFrame(c context.Context, id string, f *rules.Frame) error {
	count, err := rs.frameCount(id)
	if err != nil {
		return err
	}
	if f.Turn != count {
		return controller.ErrInvalidSequence
	}

	data, err := json.Marshal(f)
	if err != nil {
		return errors.Wrap(err, "unable to marshal frame")
	}
	return errors.Wrap(rs.client.RPush(framesKey(id), data).Err(), "unable to push frame")
}

// ListFrames will list frames by an offset and limit, it supports negative
// offset.
func (rs *RedisStore) ListFrames(c context.Context, id string, limit, offset int) ([]*rules.Frame, error) {
	count, err := rs.frameCount(id)
	if err != nil {
		return nil, err
	}

	window := controller.FrameWindow(int(count), limit, offset)
	if window.Start == window.End {
		return nil, nil
	}
	values, err := rs.client.LRange(framesKey(id), int64(window.Start), int64(window.End-1)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "unable to list frames")
	}

	frames := make([]*rules.Frame, 0, len(values))
	for _, v := range values {
		f := &rules.Frame{}
		if err := json.Unmarshal([]byte(v), f); err != nil {
			return nil, errors.Wrap(err, "unable to unmarshal frame")
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// frameCount returns the number of frames of an existing match.
func (rs *RedisStore) frameCount(id string) (int64, error) {
	exists, err := rs.client.Exists(matchKey(id)).Result()
	if err != nil {
		return 0, errors.Wrap(err, "unable to check match")
	}
	if exists == 0 {
		return 0, controller.ErrNotFound
	}
	count, err := rs.client.LLen(framesKey(id)).Result()
	return count, errors.Wrap(err, "unable to count frames")
}

// GetMatch will fetch the match.
func (rs *RedisStore) GetMatch(c context.Context, id string) (*rules.Match, error) {
	data, err := rs.client.Get(matchKey(id)).Bytes()
	if err == redis.Nil {
		return nil, controller.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "unable to read match")
	}

	m := &rules.Match{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, errors.Wrap(err, "unable to unmarshal match")
	}
	return m, nil
}
