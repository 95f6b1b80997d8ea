package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hudsonargollo/agend4i-sub002/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CacheService fronts Redis for tenant lookups on the public booking
// path and for slot admission locks.
type CacheService interface {
	GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	SetTenantBySlug(ctx context.Context, tenant *models.Tenant, ttl time.Duration) error
	InvalidateTenant(ctx context.Context, slug string) error

	// AcquireSlotLock takes the admission right for an exact
	// (tenant, staff, interval) key. It does not block: a held lock
	// returns ok=false. The returned token must be passed to
	// ReleaseSlotLock so an expired lock is never released by a
	// later holder.
	AcquireSlotLock(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time, ttl time.Duration) (token string, ok bool, err error)
	ReleaseSlotLock(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time, token string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisCacheService{client: client}
}

func tenantKey(slug string) string {
	return fmt.Sprintf("agendai:tenant:%s", slug)
}

func slotLockKey(tenantID, staffID uuid.UUID, start, end time.Time) string {
	// Interval normalized to UTC unix seconds so equal slots always
	// collide on the same key regardless of the caller's zone.
	return fmt.Sprintf("agendai:slotlock:%s:%s:%d-%d",
		tenantID.String(), staffID.String(), start.UTC().Unix(), end.UTC().Unix())
}

// tenantCacheRecord is the Redis serialization of a tenant. The API
// model hides the WhatsApp API key from JSON responses, so the cache
// carries it in a separate field; reusing the response tags would strip
// the credential on every cache hit.
type tenantCacheRecord struct {
	Tenant         models.Tenant `json:"tenant"`
	WhatsAppAPIKey string        `json:"whatsapp_api_key"`
}

func marshalTenant(tenant *models.Tenant) ([]byte, error) {
	return json.Marshal(tenantCacheRecord{
		Tenant:         *tenant,
		WhatsAppAPIKey: tenant.WhatsAppAPIKey,
	})
}

func unmarshalTenant(data []byte) (*models.Tenant, error) {
	var record tenantCacheRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	tenant := record.Tenant
	tenant.WhatsAppAPIKey = record.WhatsAppAPIKey
	return &tenant, nil
}

func (r *redisCacheService) GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	data, err := r.client.Get(ctx, tenantKey(slug)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}
	return unmarshalTenant(data)
}

func (r *redisCacheService) SetTenantBySlug(ctx context.Context, tenant *models.Tenant, ttl time.Duration) error {
	data, err := marshalTenant(tenant)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, tenantKey(tenant.Slug), data, ttl).Err()
}

func (r *redisCacheService) InvalidateTenant(ctx context.Context, slug string) error {
	return r.client.Del(ctx, tenantKey(slug)).Err()
}

func (r *redisCacheService) AcquireSlotLock(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, slotLockKey(tenantID, staffID, start, end), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (r *redisCacheService) ReleaseSlotLock(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time, token string) error {
	return releaseScript.Run(ctx, r.client, []string{slotLockKey(tenantID, staffID, start, end)}, token).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
