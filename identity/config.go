package identity

// Config holds identity-platform settings.
type Config struct {
	// JWTSecret signs session and magic-link tokens.
	JWTSecret string `env:"AUTH_JWT_SECRET,required"`
	// SiteURL is the public frontend origin magic links point at.
	SiteURL string `env:"SITE_URL" envDefault:"https://supplementsafetybible.com"`
}
