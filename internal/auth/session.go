package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps per-device wallet state: the login marker and
// the resumable Stacks session address. It is the device-storage
// analog for a stateless API.
//
// The login marker only records which address last logged in on the
// device. If the same address reconnects later, the marker still
// matches and the session is treated as logged in, even if a
// different person is now holding the wallet. That check is by
// address equality alone, matching the shipped behavior.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func loginKey(deviceID string) string  { return "pulse:login:" + deviceID }
func stacksKey(deviceID string) string { return "pulse:stacks:" + deviceID }

// MarkLoggedIn stores the address that explicitly logged in on this
// device.
func (s *SessionStore) MarkLoggedIn(ctx context.Context, deviceID, address string) error {
	return s.rdb.Set(ctx, loginKey(deviceID), address, s.ttl).Err()
}

// IsLoggedIn reports whether the connected address matches the
// device's stored login marker.
func (s *SessionStore) IsLoggedIn(ctx context.Context, deviceID, connectedAddress string) (bool, error) {
	stored, err := s.rdb.Get(ctx, loginKey(deviceID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored != "" && stored == connectedAddress, nil
}

// ClearLogin drops the marker, e.g. on disconnect or address change.
func (s *SessionStore) ClearLogin(ctx context.Context, deviceID string) error {
	return s.rdb.Del(ctx, loginKey(deviceID)).Err()
}

// SaveStacksAddress persists the device's Stacks-connected address so
// the session can be resumed without a fresh wallet pairing.
func (s *SessionStore) SaveStacksAddress(ctx context.Context, deviceID, address string) error {
	return s.rdb.Set(ctx, stacksKey(deviceID), address, s.ttl).Err()
}

// StacksAddress returns the resumable address, empty when none is
// stored.
func (s *SessionStore) StacksAddress(ctx context.Context, deviceID string) (string, error) {
	addr, err := s.rdb.Get(ctx, stacksKey(deviceID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return addr, err
}

func (s *SessionStore) ClearStacksAddress(ctx context.Context, deviceID string) error {
	return s.rdb.Del(ctx, stacksKey(deviceID)).Err()
}
