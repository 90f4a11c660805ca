package devops

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Config is the server configuration. Every field can come from the
// environment; when CONFIG_SSM_PARAMETER is set, a YAML document from SSM
// Parameter Store is loaded first and the environment overrides it.
type Config struct {
	DSN            string `yaml:"dsn"`
	Addr           string `yaml:"addr"`
	SigningSecret  string `yaml:"signingSecret"` // base64
	MaxConnections int    `yaml:"maxConnections"`
	MailFrom       string `yaml:"mailFrom"`
}

var (
	once    sync.Once
	cfg     Config
	loadErr error
)

func Load(ctx context.Context) (Config, error) {
	once.Do(func() {
		if param := os.Getenv("CONFIG_SSM_PARAMETER"); param != "" {
			if err := loadFromSSM(ctx, param); err != nil {
				loadErr = err
				return
			}
		}

		applyEnv()

		if cfg.Addr == "" {
			cfg.Addr = "0.0.0.0:8090"
		}
		if cfg.MaxConnections == 0 {
			cfg.MaxConnections = 10
		}
		if cfg.DSN == "" {
			loadErr = fmt.Errorf("DSN is not configured")
			return
		}
		if cfg.SigningSecret == "" {
			loadErr = fmt.Errorf("SIGNING_SECRET is not configured")
		}
	})

	return cfg, loadErr
}

func loadFromSSM(ctx context.Context, paramName string) error {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	client := ssm.NewFromConfig(awsCfg)

	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("get parameter: %w", err)
	}

	if err := yaml.Unmarshal([]byte(*out.Parameter.Value), &cfg); err != nil {
		return fmt.Errorf("unmarshal yaml: %w", err)
	}
	return nil
}

func applyEnv() {
	if v := os.Getenv("DSN"); v != "" {
		cfg.DSN = v
	}
	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("SIGNING_SECRET"); v != "" {
		cfg.SigningSecret = v
	}
	if v := os.Getenv("MAIL_FROM"); v != "" {
		cfg.MailFrom = v
	}
	if v := os.Getenv("MAX_CONNECTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxConnections = n
		}
	}
}
