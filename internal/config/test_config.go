package config

func LoadTestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8081,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Name:     "leadcrm_test",
			User:     "test_user",
			Password: "test_password",
		},
		JWT: JWTConfig{
			Secret: "test-secret",
		},
		Cache: CacheConfig{
			TTLMinutes: 15,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		},
	}
}
