package configuration

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LoadEnvFromFile loads KEY=VALUE pairs from one or more dotenv files (e.g., config.env, .env).
// Missing files are skipped. Existing env vars are not overridden.
func LoadEnvFromFile(paths ...string) {
	for _, p := range paths {
		v := viper.New()
		v.SetConfigFile(p)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			continue
		}
		for _, key := range v.AllKeys() {
			name := strings.ToUpper(key)
			if _, exists := os.LookupEnv(name); !exists {
				_ = os.Setenv(name, v.GetString(key))
			}
		}
	}
}
