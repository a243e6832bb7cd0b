package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EscrowPolicy carries operator-tunable settlement policy. The state machine
// itself is not configurable; only retention and query behaviour are.
type EscrowPolicy struct {
	ExpiryDays              int  `mapstructure:"expiryDays"`
	LeaderboardDefaultLimit int  `mapstructure:"leaderboardDefaultLimit"`
	LeaderboardMaxLimit     int  `mapstructure:"leaderboardMaxLimit"`
	NotifyOnExpiry          bool `mapstructure:"notifyOnExpiry"`
}

func DefaultEscrowPolicy() EscrowPolicy {
	return EscrowPolicy{
		ExpiryDays:              30,
		LeaderboardDefaultLimit: 20,
		LeaderboardMaxLimit:     100,
		NotifyOnExpiry:          true,
	}
}

// EscrowPolicyHolder exposes the current policy with hot reload.
type EscrowPolicyHolder struct {
	current atomic.Value // holds EscrowPolicy
}

func NewEscrowPolicyHolder() (*EscrowPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("escrow")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/udyogmart/config")
	v.AddConfigPath("/etc/udyogmart")
	v.AddConfigPath(".")

	v.SetEnvPrefix("UDYOGMART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultEscrowPolicy()
	v.SetDefault("escrow.expiryDays", defaults.ExpiryDays)
	v.SetDefault("escrow.leaderboardDefaultLimit", defaults.LeaderboardDefaultLimit)
	v.SetDefault("escrow.leaderboardMaxLimit", defaults.LeaderboardMaxLimit)
	v.SetDefault("escrow.notifyOnExpiry", defaults.NotifyOnExpiry)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg EscrowPolicy
	if err := v.UnmarshalKey("escrow", &cfg); err != nil {
		return nil, err
	}
	if err := validateEscrowPolicy(cfg); err != nil {
		return nil, err
	}

	holder := &EscrowPolicyHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated EscrowPolicy
		if err := v.UnmarshalKey("escrow", &updated); err != nil {
			log.Printf("[escrow-policy] reload failed: %v", err)
			return
		}
		if err := validateEscrowPolicy(updated); err != nil {
			log.Printf("[escrow-policy] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[escrow-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticEscrowPolicyHolder wraps a fixed policy with no file watching.
func NewStaticEscrowPolicyHolder(cfg EscrowPolicy) *EscrowPolicyHolder {
	holder := &EscrowPolicyHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *EscrowPolicyHolder) Get() EscrowPolicy {
	return h.current.Load().(EscrowPolicy)
}

func validateEscrowPolicy(cfg EscrowPolicy) error {
	if cfg.ExpiryDays <= 0 {
		return errors.New("escrow.expiryDays must be positive")
	}
	if cfg.LeaderboardDefaultLimit <= 0 || cfg.LeaderboardMaxLimit < cfg.LeaderboardDefaultLimit {
		return errors.New("escrow leaderboard limits are inconsistent")
	}
	return nil
}
