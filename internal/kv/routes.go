package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// proxyKeyPrefix namespaces proxy route mappings in Redis.
// The edge proxy reads `proxy:<host>` to resolve a deployed app URL.
const proxyKeyPrefix = "proxy:"

// ErrRouteNotFound indicates no proxy mapping exists for the host.
var ErrRouteNotFound = errors.New("proxy route not found")

// ProxyKey builds the Redis key for a deployed app's public host.
func ProxyKey(appName, domain string) string {
	return fmt.Sprintf("%s%s.%s", proxyKeyPrefix, appName, domain)
}

// SetProxyRoute maps an app's public host under the configured domain
// to its backing URL. Routes have no TTL; they live until the app is
// deleted or redeployed.
func (s *Store) SetProxyRoute(ctx context.Context, appName, targetURL string) error {
	if err := s.client.Set(ctx, ProxyKey(appName, s.domain), targetURL, 0).Err(); err != nil {
		return fmt.Errorf("set proxy route: %w", err)
	}
	return nil
}

// ProxyRoute resolves a public host to its backing URL. The host is the
// full hostname as the edge proxy sees it, domain included.
func (s *Store) ProxyRoute(ctx context.Context, host string) (string, error) {
	target, err := s.client.Get(ctx, proxyKeyPrefix+host).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrRouteNotFound
		}
		return "", fmt.Errorf("get proxy route: %w", err)
	}
	return target, nil
}

// DeleteProxyRoute removes the mapping for an app's public host.
func (s *Store) DeleteProxyRoute(ctx context.Context, appName string) error {
	if err := s.client.Del(ctx, ProxyKey(appName, s.domain)).Err(); err != nil {
		return fmt.Errorf("delete proxy route: %w", err)
	}
	return nil
}
