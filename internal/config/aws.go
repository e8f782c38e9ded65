package config

// AwsConfig selects the region for S3 uploads. Credentials come from
// the ambient default chain (env vars, shared config, instance roles).
type AwsConfig struct {
	Region string
}

func NewAwsConfig() *AwsConfig {
	return &AwsConfig{
		Region: getEnv("AWS_REGION", "us-east-1"),
	}
}
