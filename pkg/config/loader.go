package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu     sync.Mutex
	loaded = make(map[string]any)

	dotenvOnce sync.Once
)

// Load parses environment variables into cfg based on `env` field tags.
// The first call loads the default .env file (missing files are fine), and
// each struct type is parsed only once; later calls return the cached value.
//
//	type Config struct {
//		Secret string `env:"UNSUBSCRIBE_SECRET,required"`
//		AppURL string `env:"APP_BASE_URL" envDefault:"https://distribuia.com"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]().String()

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := loaded[key]; ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	loaded[key] = *cfg
	return nil
}

// MustLoad is Load that panics on failure, for configuration the service
// cannot start without.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}
