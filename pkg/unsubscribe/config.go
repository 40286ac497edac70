package unsubscribe

// Config holds the secret and the public base URL used to compose links.
// AppURL defaults to the production domain so links in emails resolve even
// when the override is absent.
type Config struct {
	Secret string `env:"UNSUBSCRIBE_SECRET,required"`
	AppURL string `env:"APP_BASE_URL" envDefault:"https://distribuia.com"`
}
