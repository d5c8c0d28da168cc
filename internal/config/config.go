package config

import (
	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/pkg/config"
)

type ServiceConfig struct {
	config.Config

	OrderEventsTopic string
	Shipping         domain.ShippingPolicy

	CSRFEnabled  bool
	CookieSecure bool
	AutoMigrate  bool
}

func Load() ServiceConfig {
	cfg := config.Load()

	return ServiceConfig{
		Config:           cfg,
		OrderEventsTopic: config.EnvDefault("ORDER_EVENTS_TOPIC", "order_events"),
		Shipping: domain.ShippingPolicy{
			FlatFee:       config.EnvInt64Default("SHIPPING_FLAT_FEE", domain.DefaultShippingFlatFee),
			FreeThreshold: config.EnvInt64Default("FREE_SHIPPING_THRESHOLD", domain.DefaultFreeShippingThreshold),
		},
		CSRFEnabled:  config.EnvBoolDefault("CSRF_ENABLED", true),
		CookieSecure: config.EnvBoolDefault("COOKIE_SECURE", false),
		AutoMigrate:  config.EnvBoolDefault("AUTO_MIGRATE", true),
	}
}

func (c ServiceConfig) Validate() error {
	return c.Config.Validate()
}
