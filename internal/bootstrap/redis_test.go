package bootstrap

import (
	"context"
	"testing"

	"github.com/minboot/ats-web/config"
	"github.com/minboot/ats-web/internal/testutil"
)

func TestNormalizeAddrs(t *testing.T) {
	got := normalizeAddrs([]string{" a:1 ", "", "  ", "b:2"})
	if len(got) != 2 || got[0] != "a:1" || got[1] != "b:2" {
		t.Fatalf("normalizeAddrs = %v", got)
	}
}

func TestClusterFallbackFromURI(t *testing.T) {
	addr, user, pass, tlsCfg, err := clusterFallbackFromURI("rediss://u:p@cache:6380/0", "default")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if addr != "cache:6380" || user != "u" || pass != "p" || tlsCfg == nil {
		t.Fatalf("got addr=%q user=%q pass=%q tls=%v", addr, user, pass, tlsCfg != nil)
	}

	addr, _, pass, _, err = clusterFallbackFromURI("cache:6379", "default")
	if err != nil || addr != "cache:6379" || pass != "default" {
		t.Fatalf("plain addr: %q %q %v", addr, pass, err)
	}
}

func TestNewDirectClient_RequiresURI(t *testing.T) {
	if _, _, err := newDirectClient(config.RedisConfig{URI: "  "}); err == nil {
		t.Fatal("expected error for empty uri")
	}
	if _, _, err := newSentinelClient(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without sentinel nodes")
	}
}

func TestConnectRedis(t *testing.T) {
	addr, ok := testutil.GetTestRedisAddr(t)
	if !ok {
		t.Skip("redis not available")
	}
	client, err := ConnectRedis(context.Background(), RedisConfig{
		Redis:  config.RedisConfig{URI: addr},
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("ConnectRedis: %v", err)
	}
	defer client.Close()
}
