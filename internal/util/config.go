package util

import "github.com/mxcd/go-config/config"

func InitConfig() error {
	err := config.LoadConfig([]config.Value{
		// version info
		config.String("DEPLOYMENT_IMAGE_TAG").NotEmpty().Default("development"),

		// logging config
		config.String("LOG_LEVEL").NotEmpty().Default("info"),

		// server config
		config.Bool("DEV").Default(false),
		config.Int("PORT").Default(8080),

		// orchestrator (retrieval backend) addressing
		config.String("ORCHESTRATOR_URL").NotEmpty(),
		config.String("ORCHESTRATOR_API_KEY").Default(""),

		// bound on a single backend call, e.g. "5s"
		config.String("BACKEND_TIMEOUT").Default("5s"),
		config.Int("MAX_DOCUMENT_BYTES").Default(32 << 20),
	})
	return err
}

func InitMockConfig() error {
	err := config.LoadConfig([]config.Value{
		config.String("LOG_LEVEL").NotEmpty().Default("info"),
		config.Bool("DEV").Default(false),

		config.Int("MOCK_PORT").Default(9090),
		// uploaded and seeded files expire after this duration, e.g. "1h"
		config.String("FILE_TTL").Default("1h"),
		// docgate URL used when rendering the seeded QR code
		config.String("PUBLIC_BASE_URL").Default("http://localhost:8080"),
		// key required on the upload route; empty disables the check
		config.String("MOCK_API_KEY").Default(""),
	})
	return err
}
