package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv          string
	LogLevel        string
	HTTPAddr        string
	MetricsAddr     string
	PublicBaseURL   string
	MySQLDSN        string
	RedisAddr       string
	RedisDB         int
	RedisPass       string
	HotelAPIBase    string
	HotelAPIHost    string
	HotelAPIKey     string
	HotelAPIRPS     int
	HotelAPITimeout time.Duration
	DefaultCurrency string
	CacheTTL        time.Duration
	WarmDests       []string
	WarmWorkers     int
	WarmWeekends    int
	RequestTimeout  time.Duration
	SearchTimeout   time.Duration
	ShutdownTimeout time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:          env("APP_ENV", "prod"),
		LogLevel:        env("LOG_LEVEL", "info"),
		HTTPAddr:        env("HTTP_ADDR", ":8000"),
		MetricsAddr:     env("METRICS_ADDR", ""),
		PublicBaseURL:   strings.TrimRight(env("PUBLIC_BASE_URL", "http://localhost:8000"), "/"),
		MySQLDSN:        env("MYSQL_DSN", ""),
		RedisAddr:       env("REDIS_ADDR", ""),
		RedisPass:       env("REDIS_PASSWORD", ""),
		RedisDB:         atoi("REDIS_DB", 0),
		HotelAPIBase:    strings.TrimRight(env("HOTEL_API_BASE_URL", "https://booking-com15.p.rapidapi.com"), "/"),
		HotelAPIHost:    env("HOTEL_API_HOST", "booking-com15.p.rapidapi.com"),
		HotelAPIKey:     env("HOTEL_API_KEY", ""),
		HotelAPIRPS:     atoi("HOTEL_API_RPS", 5),
		HotelAPITimeout: time.Duration(atoi("HOTEL_API_TIMEOUT_SECONDS", 20)) * time.Second,
		DefaultCurrency: env("DEFAULT_CURRENCY", "EUR"),
		CacheTTL:        time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		WarmDests:       splitList(env("WARM_DESTINATIONS", "Paris,London,Barcelona,Rome,Amsterdam,Lisbon")),
		WarmWorkers:     atoi("WARM_WORKERS", 4),
		WarmWeekends:    atoi("WARM_WEEKENDS", 2),
		RequestTimeout:  time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		SearchTimeout:   time.Duration(atoi("SEARCH_TIMEOUT_SECONDS", 8)) * time.Second,
		ShutdownTimeout: time.Duration(atoi("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 15 * time.Second
	}
	// the upstream budget must end before the route timeout so callers get mock data, not a 503
	if c.SearchTimeout <= 0 || c.SearchTimeout >= c.RequestTimeout {
		limit := c.RequestTimeout * 2 / 3
		log.Warn().Dur("search_timeout", c.SearchTimeout).Dur("request_timeout", c.RequestTimeout).
			Dur("using", limit).Msg("SEARCH_TIMEOUT_SECONDS must be below REQUEST_TIMEOUT_SECONDS")
		c.SearchTimeout = limit
	}
	if c.HotelAPIKey == "" {
		log.Warn().Msg("HOTEL_API_KEY is empty; searches will be served from mock data")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
