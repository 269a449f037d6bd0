package storage

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/config"
)

func TestVectorKey(t *testing.T) {
	assert.Equal(t, "app:embedding:vector:abc123", VectorKey("abc123"))
}

func TestDecodeVector(t *testing.T) {
	tests := []struct {
		name string
		vals []interface{}
		ok   bool
	}{
		{name: "命中", vals: []interface{}{"[0.1,0.2]", "m1"}, ok: true},
		{name: "模型不一致", vals: []interface{}{"[0.1,0.2]", "m2"}},
		{name: "缺少向量", vals: []interface{}{nil, "m1"}},
		{name: "缺少版本", vals: []interface{}{"[0.1]", nil}},
		{name: "格式错误", vals: []interface{}{"not-json", "m1"}},
		{name: "空向量", vals: []interface{}{"[]", "m1"}},
		{name: "字段不足", vals: []interface{}{"[0.1]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := decodeVector(tt.vals, "m1")
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, []float64{0.1, 0.2}, v)
			}
		})
	}
}

func TestNewRedisFromClientTTL(t *testing.T) {
	r := NewRedisFromClient(nil, &config.RedisConfig{VectorTTLHours: 2})
	assert.Equal(t, float64(2), r.ttl.Hours())

	r = NewRedisFromClient(nil, nil)
	assert.Equal(t, float64(24), r.ttl.Hours())

	_, err := r.GetVectors(context.Background(), "m", []string{"k"})
	assert.Error(t, err, "未初始化的客户端应返回错误")
}

// TestRedisVectorRoundTrip 需要真实的 Redis，设置 REDIS_TEST_ADDR 后运行
func TestRedisVectorRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR 未设置，跳过 Redis 集成测试")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	r := NewRedisFromClient(client, &config.RedisConfig{VectorTTLHours: 1})
	keys := []string{"test-key-a", "test-key-b"}
	defer client.Del(ctx, VectorKey(keys[0]), VectorKey(keys[1]))

	require.NoError(t, r.SetVectors(ctx, "model-x", map[string][]float64{keys[0]: {1, 2, 3}}))

	got, err := r.GetVectors(ctx, "model-x", keys)
	require.NoError(t, err)
	assert.Equal(t, map[string][]float64{keys[0]: {1, 2, 3}}, got)

	got, err = r.GetVectors(ctx, "model-y", keys)
	require.NoError(t, err)
	assert.Empty(t, got, "模型版本不一致时视为未命中")

	ttl, err := client.TTL(ctx, VectorKey(keys[0])).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl.Seconds(), 0.0)
}
