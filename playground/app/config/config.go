package config

type (
	// Config contains the playground configuration.
	//
	// @config prefix="PG" fields=true
	Config struct {
		Environment string
		Http        *HttpConfig
		Hello       *HelloConfig
	}

	HttpConfig struct {
		Host string
		Port int
	}

	HelloConfig struct {
		Greeting string
		Ticks    int
	}
)

func (c *Config) ApplyDefault() {
	if c.Environment == "" {
		c.Environment = "dev"
	}
}

func (c *HttpConfig) ApplyDefault() {
	if c.Port == 0 {
		c.Port = 8080
	}
}

func (c *HelloConfig) ApplyDefault() {
	if c.Greeting == "" {
		c.Greeting = "Hello"
	}
	if c.Ticks == 0 {
		c.Ticks = 2
	}
}
