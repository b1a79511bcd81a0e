package main

import (
	"net"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	driverFile  = "file"
	driverMySQL = "mysql"
)

// Only the envconfig-tagged fields also fall back to their unprefixed name.
type config struct {
	Host string `split_words:"true" default:"0.0.0.0"`
	Port string `envconfig:"port" default:"5000"`

	StoreDriver  string `split_words:"true" default:"file"`
	DataDir      string `split_words:"true" default:"."`
	ProductsFile string `split_words:"true" default:"productos_data.json"`
	SeafoodFile  string `split_words:"true" default:"mariscos_data.json"`
	MysqlDSN     string `split_words:"true" default:"precios:precios@tcp(127.0.0.1:3306)/precios"`

	ProductsAlwaysShift bool `split_words:"true" default:"false"`
	SeafoodAlwaysShift  bool `split_words:"true" default:"true"`

	LogLevel string `envconfig:"log_level" default:"info"`
	LogFile  string `envconfig:"log_file"`
}

// parseEnv reads PRECIOS_* variables; PORT, LOG_LEVEL and LOG_FILE are
// honoured unprefixed as well.
func parseEnv() (*config, error) {
	c := new(config)
	if err := envconfig.Process(appID, c); err != nil {
		return nil, errors.Wrap(err, "failed to parse env")
	}
	if c.StoreDriver != driverFile && c.StoreDriver != driverMySQL {
		return nil, errors.Errorf("unsupported store driver %q", c.StoreDriver)
	}
	return c, nil
}

func (c *config) address() string {
	return net.JoinHostPort(c.Host, c.Port)
}
