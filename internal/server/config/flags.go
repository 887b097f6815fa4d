package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophusers/internal/flagx"
)

var serverFlags = []string{
	"-a", "-g", "-m", "-d", "-s", "-t", "-bc", "-ms", "-as",
	"-u", "-p", "-b", "-r", "-e", "-ra", "-lr", "-lw", "-o",
	"-ll", "-lf", "-lb",
}

// parseFlags overlays command-line flags onto config.
//
// Supported flags:
//
//	-a string   HTTP bind address (":8080")
//	-g string   gRPC health bind address (":50051")
//	-m string   base path the REST routes are mounted under
//	-d string   PostgreSQL DSN
//	-s string   token HMAC secret
//	-t int      token validity, minutes
//	-bc int     bcrypt cost
//	-ms int     max avatar upload size, bytes
//	-as string  avatar storage: database | s3
//	-u -p -b -r -e  S3 user, password, bucket, region, base endpoint
//	-ra string  Redis address for login rate limiting
//	-lr int     login attempts per window (0 disables)
//	-lw int     login rate window, seconds
//	-o string   comma separated CORS origins
//	-tp string  comma separated trusted proxy IPs/CIDRs
//	-ll -lf -lb log level, format (json|text), backend (slog|zap)
//
// os.Args is filtered to the flags above first, so -c/-config and flags
// owned by other components do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run the HTTP API")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to run the gRPC health endpoint")
	fs.StringVar(&config.BasePath, "m", config.BasePath, "mount point of the REST routes")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token_validity_duration (in minutes)")

	fs.IntVar(&config.BcryptCost, "bc", config.BcryptCost, "bcrypt cost")
	fs.Int64Var(&config.MaxAvatarBytes, "ms", config.MaxAvatarBytes, "max avatar size in bytes")
	fs.StringVar(&config.AvatarStorage, "as", config.AvatarStorage, "avatar storage (database|s3)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.RedisAddr, "ra", config.RedisAddr, "redis address")
	fs.IntVar(&config.LoginRateLimit, "lr", config.LoginRateLimit, "login attempts per window")
	loginWindow := fs.Int("lw", int(config.LoginRateWindow.Seconds()), "login rate window (in seconds)")

	origins := fs.String("o", strings.Join(config.AllowedOrigins, ","), "comma separated CORS origins")
	proxies := fs.String("tp", strings.Join(config.TrustedProxies, ","), "comma separated trusted proxies")

	fs.StringVar(&config.LogLevel, "ll", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "lf", config.LogFormat, "log format (json|text)")
	fs.StringVar(&config.LogBackend, "lb", config.LogBackend, "log backend (slog|zap)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.LoginRateWindow = time.Duration(*loginWindow) * time.Second
	config.AllowedOrigins = flagx.SplitList(*origins)
	config.TrustedProxies = flagx.SplitList(*proxies)
}
